// Package filter implements the retweet-eligibility rules.
//
// Rules are pure decision logic over a Tweet and a previously-seen lookup.
// They run in a fixed order, cheapest first: existence check, numeric
// threshold, string scan. The denylist matcher is exposed separately because
// the search path applies it before tweets reach the shared rules.
package filter

import (
	"context"
	"strings"

	"github.com/mfurutani/retweetd/internal/domain"
)

// RetweetMarker is the literal sequence identifying a post that is itself a
// retweet of another user's post.
const RetweetMarker = "RT @"

// Rejection reasons, used in logs and as metric labels.
const (
	ReasonSeen      = "already_seen"
	ReasonThreshold = "below_threshold"
	ReasonMarker    = "retweet_of_retweet"
	ReasonKeyword   = "keyword_missing"
	ReasonDenylist  = "denylisted"
)

// Seen reports whether a tweet ID has already been processed.
type Seen func(ctx context.Context, tweetID string) (bool, error)

// Rules holds the configured eligibility thresholds.
type Rules struct {
	MinRetweetCount    int
	SkipRetweetedPosts bool
}

// Evaluate applies the shared rejection rules in order, short-circuiting on
// the first failing rule. The returned reason is empty when the tweet is
// eligible. An error from the seen lookup rejects the tweet: retweeting
// without a working dedup check risks double amplification.
func (r Rules) Evaluate(ctx context.Context, tw domain.Tweet, seen Seen) (bool, string, error) {
	already, err := seen(ctx, tw.TweetID)
	if err != nil {
		return false, ReasonSeen, err
	}
	if already {
		return false, ReasonSeen, nil
	}

	if tw.RetweetCount < r.MinRetweetCount {
		return false, ReasonThreshold, nil
	}

	// The marker match happens regardless of the flag; only the outcome is
	// gated. An operator may deliberately allow amplifying retweets.
	if strings.Contains(tw.Text, RetweetMarker) && r.SkipRetweetedPosts {
		return false, ReasonMarker, nil
	}

	return true, "", nil
}

// ContainsDenylisted reports whether any term is a literal case-sensitive
// substring of the tweet text, the posting client name, or the author name.
// It short-circuits on the first match; an empty term set never matches.
func ContainsDenylisted(tw domain.Tweet, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(tw.Text, term) {
			return true
		}
		if strings.Contains(tw.ClientName, term) {
			return true
		}
		if strings.Contains(tw.UserName, term) {
			return true
		}
	}
	return false
}
