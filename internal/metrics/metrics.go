// Package metrics exposes the Prometheus instrumentation for the retweet
// pipeline. All collectors are registered at init time via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Pipeline Metrics
var (
	// RetweetsTotal tracks successfully issued retweets by source
	RetweetsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retweetd_retweets_total",
			Help: "Total retweets successfully issued, by source",
		},
		[]string{"source"},
	)

	// TweetsSkippedTotal tracks candidates filtered before the retweet step
	TweetsSkippedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retweetd_tweets_skipped_total",
			Help: "Candidate tweets skipped, by source and reason",
		},
		[]string{"source", "reason"},
	)

	// PipelineFailuresTotal tracks persistence or retweet failures
	PipelineFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retweetd_pipeline_failures_total",
			Help: "Pipeline failures during persist or retweet, by source and stage",
		},
		[]string{"source", "stage"},
	)

	// RunDuration tracks end-to-end duration of a pipeline run
	RunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "retweetd_run_duration_seconds",
			Help:    "Duration of a full pipeline run in seconds",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"source"},
	)
)

// Twitter API Metrics
var (
	// TwitterAPIErrorsTotal tracks upstream API call failures by operation
	TwitterAPIErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retweetd_twitter_api_errors_total",
			Help: "Twitter API call failures, by operation",
		},
		[]string{"operation"},
	)
)

// Seen-Cache Metrics
var (
	// SeenCacheErrorsTotal tracks Redis seen-cache failures that fell
	// through to the database lookup
	SeenCacheErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "retweetd_seen_cache_errors_total",
			Help: "Seen-cache errors that fell back to the database",
		},
	)
)
