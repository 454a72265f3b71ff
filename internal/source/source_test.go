package source

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mfurutani/retweetd/internal/domain"
	"github.com/mfurutani/retweetd/internal/filter"
	"github.com/mfurutani/retweetd/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mock client ---

type mockClient struct {
	homeTimelineFn func(ctx context.Context, pageSize int) ([]domain.Tweet, error)
	searchRecentFn func(ctx context.Context, params domain.SearchParams) ([]domain.Tweet, error)
	trendsFn       func(ctx context.Context, woeid int) ([]string, error)
	retweetFn      func(ctx context.Context, tweetID string) error
}

func (m *mockClient) HomeTimeline(ctx context.Context, pageSize int) ([]domain.Tweet, error) {
	if m.homeTimelineFn != nil {
		return m.homeTimelineFn(ctx, pageSize)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockClient) SearchRecent(ctx context.Context, params domain.SearchParams) ([]domain.Tweet, error) {
	if m.searchRecentFn != nil {
		return m.searchRecentFn(ctx, params)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockClient) Trends(ctx context.Context, woeid int) ([]string, error) {
	if m.trendsFn != nil {
		return m.trendsFn(ctx, woeid)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockClient) Retweet(ctx context.Context, tweetID string) error {
	if m.retweetFn != nil {
		return m.retweetFn(ctx, tweetID)
	}
	return nil
}

// --- Timeline ---

func TestTimeline_FetchPassesPageSizeAndPreservesOrder(t *testing.T) {
	client := &mockClient{
		homeTimelineFn: func(_ context.Context, pageSize int) ([]domain.Tweet, error) {
			assert.Equal(t, 200, pageSize)
			return []domain.Tweet{{TweetID: "newest"}, {TweetID: "older"}}, nil
		},
	}

	tweets, err := NewTimeline(client, 200).Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, tweets, 2)
	assert.Equal(t, "newest", tweets[0].TweetID)
}

func TestTimeline_FetchPropagatesError(t *testing.T) {
	client := &mockClient{
		homeTimelineFn: func(_ context.Context, _ int) ([]domain.Tweet, error) {
			return nil, fmt.Errorf("api down")
		},
	}

	_, err := NewTimeline(client, 200).Fetch(context.Background())
	assert.Error(t, err)
}

// --- Search ---

func newTestSearch(client domain.SocialClient, denylist []string) (*Search, clockwork.Clock) {
	clock := clockwork.NewFakeClockAt(time.Date(2023, 6, 2, 12, 0, 0, 0, time.UTC))
	return NewSearch(client, clock, 24*time.Hour, "relevancy", 100, denylist), clock
}

func TestSearch_BuildsParamsWithLookback(t *testing.T) {
	var got domain.SearchParams
	client := &mockClient{
		searchRecentFn: func(_ context.Context, params domain.SearchParams) ([]domain.Tweet, error) {
			got = params
			return nil, nil
		},
	}

	s, _ := newTestSearch(client, nil)
	_, err := s.Fetch(context.Background(), "storm")
	require.NoError(t, err)

	assert.Equal(t, "storm", got.Query)
	assert.Equal(t, time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC), got.StartTime)
	assert.Equal(t, "relevancy", got.SortOrder)
	assert.Equal(t, 100, got.MaxResults)
}

func TestSearch_DropsTweetsWithoutKeywordInText(t *testing.T) {
	// The upstream search also matches author names and bios; "It is raining"
	// does not contain "storm" and must be dropped.
	client := &mockClient{
		searchRecentFn: func(_ context.Context, _ domain.SearchParams) ([]domain.Tweet, error) {
			return []domain.Tweet{
				{TweetID: "1", Text: "It is raining"},
				{TweetID: "2", Text: "storm incoming"},
			}, nil
		},
	}

	s, _ := newTestSearch(client, nil)
	tweets, err := s.Fetch(context.Background(), "storm")
	require.NoError(t, err)
	require.Len(t, tweets, 1)
	assert.Equal(t, "2", tweets[0].TweetID)
}

func TestSearch_KeywordAsSubstringIsKept(t *testing.T) {
	client := &mockClient{
		searchRecentFn: func(_ context.Context, _ domain.SearchParams) ([]domain.Tweet, error) {
			return []domain.Tweet{{TweetID: "1", Text: "It is raining"}}, nil
		},
	}

	s, _ := newTestSearch(client, nil)
	tweets, err := s.Fetch(context.Background(), "rain")
	require.NoError(t, err)
	assert.Len(t, tweets, 1)
}

func TestSearch_DropsDenylistedTweets(t *testing.T) {
	client := &mockClient{
		searchRecentFn: func(_ context.Context, _ domain.SearchParams) ([]domain.Tweet, error) {
			return []domain.Tweet{
				{TweetID: "1", Text: "storm report", ClientName: "spam-bot-3000"},
				{TweetID: "2", Text: "storm photos"},
			}, nil
		},
	}

	s, _ := newTestSearch(client, []string{"spam"})
	tweets, err := s.Fetch(context.Background(), "storm")
	require.NoError(t, err)
	require.Len(t, tweets, 1)
	assert.Equal(t, "2", tweets[0].TweetID)
}

func TestSearch_DropsAreCountedAsSkips(t *testing.T) {
	keywordBefore := testutil.ToFloat64(metrics.TweetsSkippedTotal.WithLabelValues(searchSource, filter.ReasonKeyword))
	denylistBefore := testutil.ToFloat64(metrics.TweetsSkippedTotal.WithLabelValues(searchSource, filter.ReasonDenylist))

	client := &mockClient{
		searchRecentFn: func(_ context.Context, _ domain.SearchParams) ([]domain.Tweet, error) {
			return []domain.Tweet{
				{TweetID: "1", Text: "It is raining"},
				{TweetID: "2", Text: "storm report", ClientName: "spam-bot-3000"},
				{TweetID: "3", Text: "storm photos"},
			}, nil
		},
	}

	s, _ := newTestSearch(client, []string{"spam"})
	tweets, err := s.Fetch(context.Background(), "storm")
	require.NoError(t, err)
	require.Len(t, tweets, 1)

	keywordAfter := testutil.ToFloat64(metrics.TweetsSkippedTotal.WithLabelValues(searchSource, filter.ReasonKeyword))
	denylistAfter := testutil.ToFloat64(metrics.TweetsSkippedTotal.WithLabelValues(searchSource, filter.ReasonDenylist))
	assert.Equal(t, keywordBefore+1, keywordAfter)
	assert.Equal(t, denylistBefore+1, denylistAfter)
}

func TestSearch_PropagatesAPIError(t *testing.T) {
	client := &mockClient{
		searchRecentFn: func(_ context.Context, _ domain.SearchParams) ([]domain.Tweet, error) {
			return nil, fmt.Errorf("rate limited")
		},
	}

	s, _ := newTestSearch(client, nil)
	_, err := s.Fetch(context.Background(), "storm")
	assert.Error(t, err)
}

// --- Trends ---

func TestTrends_KeepsKeywordPresentInTimeline(t *testing.T) {
	client := &mockClient{
		trendsFn: func(_ context.Context, woeid int) ([]string, error) {
			assert.Equal(t, 23424856, woeid)
			return []string{"Olympics", "Elections"}, nil
		},
		homeTimelineFn: func(_ context.Context, _ int) ([]domain.Tweet, error) {
			return []domain.Tweet{{TweetID: "1", Text: "watching the Olympics opening"}}, nil
		},
	}

	tr := NewTrends(client, NewTimeline(client, 200), 23424856)
	keywords, err := tr.Keywords(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Olympics"}, keywords)
}

func TestTrends_IgnoresRetweetMarkerPostsInScan(t *testing.T) {
	// A trend mentioned only inside a retweeted post must be dropped, even
	// though the skip-retweets config flag does not apply here.
	client := &mockClient{
		trendsFn: func(_ context.Context, _ int) ([]string, error) {
			return []string{"Olympics"}, nil
		},
		homeTimelineFn: func(_ context.Context, _ int) ([]domain.Tweet, error) {
			return []domain.Tweet{{TweetID: "1", Text: "RT @alice: Olympics are on"}}, nil
		},
	}

	tr := NewTrends(client, NewTimeline(client, 200), 23424856)
	keywords, err := tr.Keywords(context.Background())
	require.NoError(t, err)
	assert.Empty(t, keywords)
}

func TestTrends_PropagatesTrendAPIError(t *testing.T) {
	client := &mockClient{
		trendsFn: func(_ context.Context, _ int) ([]string, error) {
			return nil, fmt.Errorf("trends unavailable")
		},
	}

	tr := NewTrends(client, NewTimeline(client, 200), 23424856)
	_, err := tr.Keywords(context.Background())
	assert.Error(t, err)
}
