package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	"github.com/mfurutani/retweetd/internal/app"
	"github.com/mfurutani/retweetd/internal/config"
	"github.com/mfurutani/retweetd/internal/database"
	"github.com/mfurutani/retweetd/internal/domain"
	"github.com/mfurutani/retweetd/internal/filter"
	"github.com/mfurutani/retweetd/internal/logging"
	"github.com/mfurutani/retweetd/internal/redis"
	"github.com/mfurutani/retweetd/internal/server"
	"github.com/mfurutani/retweetd/internal/source"
	"github.com/mfurutani/retweetd/internal/twitter"
	goredis "github.com/redis/go-redis/v9"
)

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupDB(cfg *config.Config) *pgxpool.Pool {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := database.RunMigrations(ctx, db); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	return db
}

func setupRedis(ctx context.Context, cfg *config.Config) *goredis.Client {
	client, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	return client
}

func setupTwitter(cfg *config.Config) *twitter.Client {
	client, err := twitter.NewClient(twitter.Credentials{
		APIKey:       cfg.TwitterAPIKey,
		APISecret:    cfg.TwitterAPISecret,
		AccessToken:  cfg.TwitterAccessToken,
		AccessSecret: cfg.TwitterAccessSecret,
	})
	if err != nil {
		slog.Error("Failed to create Twitter client", "error", err)
		os.Exit(1)
	}
	return client
}

func runGracefulShutdown(srv *server.Server) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	// Initialize structured logging
	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port)

	pool := setupDB(cfg)
	defer pool.Close()

	lookback := time.Duration(cfg.LookbackHours) * time.Hour

	// Redis is optional; without it every seen-check goes to PostgreSQL.
	var redisClient *goredis.Client
	var cache domain.SeenCache
	if cfg.RedisURL != "" {
		redisClient = setupRedis(context.Background(), cfg)
		defer func() { _ = redisClient.Close() }()
		cache = redis.NewSeenCache(redisClient, lookback)
	}

	social := setupTwitter(cfg)
	slog.Info("Twitter client ready", "user_id", social.UserID())

	tweetRepo := database.NewTweetRepo(pool)

	timeline := source.NewTimeline(social, cfg.TimelinePageSize)
	search := source.NewSearch(social, clock, lookback, cfg.SearchSortOrder, cfg.SearchMaxResults, cfg.Denylist())
	trends := source.NewTrends(social, timeline, cfg.TrendWOEID)

	rules := filter.Rules{
		MinRetweetCount:    cfg.MinRetweetCount,
		SkipRetweetedPosts: cfg.SkipTimelineRetweets,
	}

	appSvc := app.NewService(tweetRepo, social, cache, timeline, search, trends, rules, cfg.Keywords(), clock)

	// Pass nil explicitly to avoid a typed-nil interface in the readiness check
	var srv *server.Server
	if redisClient != nil {
		srv = server.NewServer(cfg, appSvc, pool, redisClient)
	} else {
		srv = server.NewServer(cfg, appSvc, pool, nil)
	}

	done := runGracefulShutdown(srv)

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
