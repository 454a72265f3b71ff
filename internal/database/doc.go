// Package database provides PostgreSQL connectivity and the tweet repository.
//
// Uses pgx for connection pooling and tern for migrations. The tweets table
// carries a unique constraint on tweet_id: that constraint, not the in-memory
// pre-check, is what guarantees a post is amplified at most once.
package database
