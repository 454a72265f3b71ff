package app

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jonboulle/clockwork"
	"github.com/mfurutani/retweetd/internal/domain"
	"github.com/mfurutani/retweetd/internal/filter"
	"github.com/mfurutani/retweetd/internal/metrics"
	"github.com/mfurutani/retweetd/internal/source"
)

// Source labels used in logs, metrics, and run summaries.
const (
	SourceTimeline = "timeline"
	SourceSearch   = "search"
	SourceTrend    = "trend"
)

// Pipeline stage labels for failure metrics.
const (
	stagePersist = "persist"
	stageRetweet = "retweet"
)

// Service is the application layer — the only component that references
// multiple domain collaborators. It orchestrates the three amplification
// use cases.
//
// Every candidate follows the same order: eligibility rules, persist,
// retweet. Persisting before acting means a crash between the two steps
// loses one retweet rather than allowing a duplicate on the next run.
type Service struct {
	tweets   domain.TweetRepository
	social   domain.SocialClient
	cache    domain.SeenCache
	timeline *source.Timeline
	search   *source.Search
	trends   *source.Trends
	rules    filter.Rules
	keywords []string
	clock    clockwork.Clock
}

// NewService creates the application layer service.
// cache may be nil when no seen-cache is configured.
func NewService(
	tweets domain.TweetRepository,
	social domain.SocialClient,
	cache domain.SeenCache,
	timeline *source.Timeline,
	search *source.Search,
	trends *source.Trends,
	rules filter.Rules,
	keywords []string,
	clock clockwork.Clock,
) *Service {
	return &Service{
		tweets:   tweets,
		social:   social,
		cache:    cache,
		timeline: timeline,
		search:   search,
		trends:   trends,
		rules:    rules,
		keywords: keywords,
		clock:    clock,
	}
}

// AmplifyTimeline runs the pipeline over one page of the home timeline.
func (s *Service) AmplifyTimeline(ctx context.Context) domain.RunSummary {
	summary := domain.RunSummary{Source: SourceTimeline}
	defer s.observeRun(SourceTimeline)()

	tweets, err := s.timeline.Fetch(ctx)
	if err != nil {
		metrics.TwitterAPIErrorsTotal.WithLabelValues("timeline").Inc()
		slog.Error("timeline fetch failed", "error", err)
		return summary
	}

	summary.Fetched = len(tweets)
	s.processBatch(ctx, &summary, tweets)
	return summary
}

// AmplifySearch runs the pipeline over recent search results for every
// configured keyword. A failing keyword is logged and skipped; the remaining
// keywords still run.
func (s *Service) AmplifySearch(ctx context.Context) domain.RunSummary {
	summary := domain.RunSummary{Source: SourceSearch}
	defer s.observeRun(SourceSearch)()

	s.searchAndProcess(ctx, &summary, s.keywords)
	return summary
}

// AmplifyTrends derives keywords from the region's current trends and runs
// the search pipeline over each of them.
func (s *Service) AmplifyTrends(ctx context.Context) domain.RunSummary {
	summary := domain.RunSummary{Source: SourceTrend}
	defer s.observeRun(SourceTrend)()

	keywords, err := s.trends.Keywords(ctx)
	if err != nil {
		metrics.TwitterAPIErrorsTotal.WithLabelValues("trends").Inc()
		slog.Error("trend keyword derivation failed", "error", err)
		return summary
	}

	s.searchAndProcess(ctx, &summary, keywords)
	return summary
}

func (s *Service) searchAndProcess(ctx context.Context, summary *domain.RunSummary, keywords []string) {
	for _, keyword := range keywords {
		tweets, err := s.search.Fetch(ctx, keyword)
		if err != nil {
			metrics.TwitterAPIErrorsTotal.WithLabelValues("search").Inc()
			slog.Error("search fetch failed", "keyword", keyword, "error", err)
			continue
		}

		summary.Fetched += len(tweets)
		s.processBatch(ctx, summary, tweets)
	}
}

// processBatch pushes each candidate through rules, persist, and retweet.
// One item's failure never aborts the batch.
func (s *Service) processBatch(ctx context.Context, summary *domain.RunSummary, tweets []domain.Tweet) {
	for _, tw := range tweets {
		eligible, reason, err := s.rules.Evaluate(ctx, tw, s.seen)
		if err != nil {
			slog.Warn("eligibility check failed, rejecting candidate", "tweet_id", tw.TweetID, "error", err)
			metrics.TweetsSkippedTotal.WithLabelValues(summary.Source, reason).Inc()
			continue
		}
		if !eligible {
			slog.Debug("candidate skipped", "tweet_id", tw.TweetID, "reason", reason)
			metrics.TweetsSkippedTotal.WithLabelValues(summary.Source, reason).Inc()
			continue
		}

		summary.Eligible++

		if err := s.tweets.Save(ctx, &tw); err != nil {
			if errors.Is(err, domain.ErrAlreadyStored) {
				// Lost the race against another run; the row is the
				// at-most-once guard, so never retweet here.
				slog.Debug("candidate already stored", "tweet_id", tw.TweetID)
				metrics.TweetsSkippedTotal.WithLabelValues(summary.Source, filter.ReasonSeen).Inc()
				continue
			}
			summary.Failed++
			metrics.PipelineFailuresTotal.WithLabelValues(summary.Source, stagePersist).Inc()
			slog.Error("persisting candidate failed", "tweet_id", tw.TweetID, "error", err)
			continue
		}

		s.markSeen(ctx, tw.TweetID)

		if err := s.social.Retweet(ctx, tw.TweetID); err != nil {
			summary.Failed++
			metrics.TwitterAPIErrorsTotal.WithLabelValues("retweet").Inc()
			metrics.PipelineFailuresTotal.WithLabelValues(summary.Source, stageRetweet).Inc()
			slog.Error("retweet failed", "tweet_id", tw.TweetID, "error", err)
			continue
		}

		summary.Retweeted++
		metrics.RetweetsTotal.WithLabelValues(summary.Source).Inc()
		slog.Info("retweeted",
			"tweet_id", tw.TweetID,
			"author", tw.UserHandle,
			"client", tw.ClientName,
			"rt_count", tw.RetweetCount,
			"text", tw.Text,
		)
	}
}

// seen consults the cache first when one is configured; cache errors fall
// through to the repository, which is the source of truth.
func (s *Service) seen(ctx context.Context, tweetID string) (bool, error) {
	if s.cache != nil {
		hit, err := s.cache.Has(ctx, tweetID)
		if err != nil {
			metrics.SeenCacheErrorsTotal.Inc()
			slog.Warn("seen cache lookup failed, falling back to database", "tweet_id", tweetID, "error", err)
		} else if hit {
			return true, nil
		}
	}

	return s.tweets.Exists(ctx, tweetID)
}

// markSeen populates the cache after a successful save. Best effort: the
// unique constraint already protects correctness.
func (s *Service) markSeen(ctx context.Context, tweetID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Add(ctx, tweetID); err != nil {
		metrics.SeenCacheErrorsTotal.Inc()
		slog.Warn("seen cache write failed", "tweet_id", tweetID, "error", err)
	}
}

func (s *Service) observeRun(src string) func() {
	start := s.clock.Now()
	return func() {
		metrics.RunDuration.WithLabelValues(src).Observe(s.clock.Since(start).Seconds())
	}
}
