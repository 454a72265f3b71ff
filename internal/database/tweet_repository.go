package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mfurutani/retweetd/internal/domain"
)

// uniqueViolation is the SQLSTATE PostgreSQL reports for duplicate-key inserts.
const uniqueViolation = "23505"

// TweetRepo implements domain.TweetRepository backed by PostgreSQL.
type TweetRepo struct {
	pool *pgxpool.Pool
}

func NewTweetRepo(pool *pgxpool.Pool) *TweetRepo {
	return &TweetRepo{pool: pool}
}

func (r *TweetRepo) Exists(ctx context.Context, tweetID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM tweets WHERE tweet_id = $1)`, tweetID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check tweet existence: %w", err)
	}
	return exists, nil
}

func (r *TweetRepo) Save(ctx context.Context, tw *domain.Tweet) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO tweets (tweet_id, user_name, user_screen_name, tweet_text, rt_count, client_name, posted_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	`, tw.TweetID, tw.UserName, tw.UserHandle, tw.Text, tw.RetweetCount, tw.ClientName, tw.PostedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.ErrAlreadyStored
		}
		return fmt.Errorf("failed to save tweet: %w", err)
	}
	return nil
}
