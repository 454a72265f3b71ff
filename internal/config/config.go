// Package config loads the process-wide configuration once at startup.
// The resulting struct is read-only; components receive it explicitly and
// never reach for ambient state.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

type Config struct {
	AppEnv    string `env:"APP_ENV" default:"development"`
	Port      string `env:"PORT" default:"8080"`
	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`

	DatabaseURL string `env:"DATABASE_URL"`
	RedisURL    string `env:"REDIS_URL"`

	TwitterAPIKey       string `env:"TWITTER_API_KEY"`
	TwitterAPISecret    string `env:"TWITTER_API_SECRET"`
	TwitterAccessToken  string `env:"TWITTER_ACCESS_TOKEN"`
	TwitterAccessSecret string `env:"TWITTER_ACCESS_SECRET"`

	MinRetweetCount      int    `env:"MIN_RETWEET_COUNT" default:"10"`
	SkipTimelineRetweets bool   `env:"SKIP_TIMELINE_RETWEETS" default:"true"`
	DenylistTerms        string `env:"DENYLIST_TERMS"`
	SearchKeywords       string `env:"SEARCH_KEYWORDS"`
	LookbackHours        int    `env:"LOOKBACK_HOURS" default:"24"`
	SearchMaxResults     int    `env:"SEARCH_MAX_RESULTS" default:"100"`
	TimelinePageSize     int    `env:"TIMELINE_PAGE_SIZE" default:"200"`
	TrendWOEID           int    `env:"TREND_WOEID" default:"23424856"`
	SearchSortOrder      string `env:"SEARCH_SORT_ORDER" default:"relevancy"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	required := map[string]string{
		"DATABASE_URL":          cfg.DatabaseURL,
		"TWITTER_API_KEY":       cfg.TwitterAPIKey,
		"TWITTER_API_SECRET":    cfg.TwitterAPISecret,
		"TWITTER_ACCESS_TOKEN":  cfg.TwitterAccessToken,
		"TWITTER_ACCESS_SECRET": cfg.TwitterAccessSecret,
	}
	for name, value := range required {
		if value == "" {
			return fmt.Errorf("%s is required", name)
		}
	}

	if cfg.SearchSortOrder != "recency" && cfg.SearchSortOrder != "relevancy" {
		return fmt.Errorf("SEARCH_SORT_ORDER must be 'recency' or 'relevancy', got %q", cfg.SearchSortOrder)
	}
	if cfg.SearchMaxResults < 10 || cfg.SearchMaxResults > 100 {
		return fmt.Errorf("SEARCH_MAX_RESULTS must be between 10 and 100, got %d", cfg.SearchMaxResults)
	}
	if cfg.LookbackHours <= 0 {
		return fmt.Errorf("LOOKBACK_HOURS must be positive, got %d", cfg.LookbackHours)
	}
	if cfg.TimelinePageSize <= 0 {
		return fmt.Errorf("TIMELINE_PAGE_SIZE must be positive, got %d", cfg.TimelinePageSize)
	}

	return nil
}

// Denylist returns the configured denylist terms in insertion order.
func (c *Config) Denylist() []string {
	return splitList(c.DenylistTerms)
}

// Keywords returns the configured search keywords in insertion order.
func (c *Config) Keywords() []string {
	return splitList(c.SearchKeywords)
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
