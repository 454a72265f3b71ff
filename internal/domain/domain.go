package domain

import (
	"context"
	"time"
)

// --- Model types ---

// Tweet is one fetched post under evaluation for retweeting. TweetID is the
// platform-issued identifier and the sole deduplication key. Text has all
// line breaks stripped by the mapping step so substring matching cannot be
// defeated by embedded newlines.
type Tweet struct {
	TweetID      string
	UserName     string
	UserHandle   string
	Text         string
	RetweetCount int
	ClientName   string
	PostedAt     time.Time
}

// SearchParams describes one recent-search request.
type SearchParams struct {
	Query      string
	StartTime  time.Time
	SortOrder  string
	MaxResults int
}

// RunSummary reports the outcome of one pipeline run. Entry operations always
// acknowledge; operators diagnose failures from logs and these counts.
type RunSummary struct {
	Source    string `json:"source"`
	Fetched   int    `json:"fetched"`
	Eligible  int    `json:"eligible"`
	Retweeted int    `json:"retweeted"`
	Failed    int    `json:"failed"`
}

// --- Interfaces ---

// TweetRepository abstracts tweet persistence. Save returns ErrAlreadyStored
// when the tweet_id unique constraint rejects the insert.
type TweetRepository interface {
	Exists(ctx context.Context, tweetID string) (bool, error)
	Save(ctx context.Context, tw *Tweet) error
}

// SocialClient is the social platform API collaborator.
type SocialClient interface {
	HomeTimeline(ctx context.Context, pageSize int) ([]Tweet, error)
	SearchRecent(ctx context.Context, params SearchParams) ([]Tweet, error)
	Trends(ctx context.Context, woeid int) ([]string, error)
	Retweet(ctx context.Context, tweetID string) error
}

// SeenCache is an optional fast-path lookup for already-processed tweet IDs.
// A cache miss or cache error always falls through to the repository, which
// remains the source of truth.
type SeenCache interface {
	Has(ctx context.Context, tweetID string) (bool, error)
	Add(ctx context.Context, tweetID string) error
}

// AmplifyService is the application layer contract — handlers route all
// entry operations through here.
type AmplifyService interface {
	AmplifyTimeline(ctx context.Context) RunSummary
	AmplifySearch(ctx context.Context) RunSummary
	AmplifyTrends(ctx context.Context) RunSummary
}
