// Package source implements the three candidate retrievers: home timeline,
// keyword search, and trend-derived keywords.
//
// Each Fetch is a fresh call against the platform API; nothing is cached
// between invocations. The search retriever applies the keyword-presence and
// denylist rules inline because the upstream search also matches on author
// names and bios, producing false positives that must never reach the shared
// eligibility rules.
package source

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mfurutani/retweetd/internal/domain"
	"github.com/mfurutani/retweetd/internal/filter"
	"github.com/mfurutani/retweetd/internal/metrics"
)

// Drops inside the search retriever are always attributed to the "search"
// source, even when the trend path expands its keywords through it: the
// retriever is where the rejection happens.
const searchSource = "search"

// Timeline retrieves one page of the account's home feed, newest first.
type Timeline struct {
	client   domain.SocialClient
	pageSize int
}

func NewTimeline(client domain.SocialClient, pageSize int) *Timeline {
	return &Timeline{client: client, pageSize: pageSize}
}

func (t *Timeline) Fetch(ctx context.Context) ([]domain.Tweet, error) {
	return t.client.HomeTimeline(ctx, t.pageSize)
}

// Search retrieves recent tweets matching a keyword within the lookback
// window, dropping items that fail the keyword-presence or denylist rules.
type Search struct {
	client     domain.SocialClient
	clock      clockwork.Clock
	lookback   time.Duration
	sortOrder  string
	maxResults int
	denylist   []string
}

func NewSearch(client domain.SocialClient, clock clockwork.Clock, lookback time.Duration, sortOrder string, maxResults int, denylist []string) *Search {
	return &Search{
		client:     client,
		clock:      clock,
		lookback:   lookback,
		sortOrder:  sortOrder,
		maxResults: maxResults,
		denylist:   denylist,
	}
}

func (s *Search) Fetch(ctx context.Context, query string) ([]domain.Tweet, error) {
	params := domain.SearchParams{
		Query:      query,
		StartTime:  s.clock.Now().UTC().Add(-s.lookback),
		SortOrder:  s.sortOrder,
		MaxResults: s.maxResults,
	}

	tweets, err := s.client.SearchRecent(ctx, params)
	if err != nil {
		return nil, err
	}

	kept := make([]domain.Tweet, 0, len(tweets))
	for _, tw := range tweets {
		if !strings.Contains(tw.Text, query) {
			slog.Debug("search hit dropped", "tweet_id", tw.TweetID, "query", query, "reason", filter.ReasonKeyword)
			metrics.TweetsSkippedTotal.WithLabelValues(searchSource, filter.ReasonKeyword).Inc()
			continue
		}
		if filter.ContainsDenylisted(tw, s.denylist) {
			slog.Debug("search hit dropped", "tweet_id", tw.TweetID, "reason", filter.ReasonDenylist)
			metrics.TweetsSkippedTotal.WithLabelValues(searchSource, filter.ReasonDenylist).Inc()
			continue
		}
		kept = append(kept, tw)
	}
	return kept, nil
}

// Trends yields the region's trend names that the account's own timeline is
// currently talking about. Posts carrying the retweet marker are excluded
// from the scan unconditionally: trend relevance of retweeted posts by
// accounts outside the follow graph is unreliable.
type Trends struct {
	client   domain.SocialClient
	timeline *Timeline
	woeid    int
}

func NewTrends(client domain.SocialClient, timeline *Timeline, woeid int) *Trends {
	return &Trends{client: client, timeline: timeline, woeid: woeid}
}

func (tr *Trends) Keywords(ctx context.Context) ([]string, error) {
	names, err := tr.client.Trends(ctx, tr.woeid)
	if err != nil {
		return nil, err
	}

	tweets, err := tr.timeline.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	var kept []string
	for _, name := range names {
		if timelineMentions(tweets, name) {
			slog.Debug("trend keyword retained", "keyword", name)
			kept = append(kept, name)
		}
	}
	return kept, nil
}

func timelineMentions(tweets []domain.Tweet, keyword string) bool {
	for _, tw := range tweets {
		if strings.Contains(tw.Text, filter.RetweetMarker) {
			continue
		}
		if strings.Contains(tw.Text, keyword) {
			return true
		}
	}
	return false
}
