package twitter

import (
	"strings"
	"time"

	"github.com/mfurutani/retweetd/internal/domain"
)

// Wire shapes for v2 responses. Posts and their authors arrive as separate
// indexed collections; mapping joins them by author_id.

type apiTweet struct {
	ID            string `json:"id"`
	Text          string `json:"text"`
	AuthorID      string `json:"author_id"`
	Source        string `json:"source"`
	CreatedAt     string `json:"created_at"`
	PublicMetrics struct {
		RetweetCount int `json:"retweet_count"`
	} `json:"public_metrics"`
}

type apiUser struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

type tweetEnvelope struct {
	Data     []apiTweet `json:"data"`
	Includes struct {
		Users []apiUser `json:"users"`
	} `json:"includes"`
	Errors []apiError `json:"errors"`
}

func (e *tweetEnvelope) err(operation string) error {
	if len(e.Errors) > 0 {
		return &APIError{Operation: operation, Errors: e.Errors}
	}
	return nil
}

var newlineStripper = strings.NewReplacer("\r\n", "", "\r", "", "\n", "")

// mapTweets converts raw API items into domain tweets. Missing or malformed
// fields degrade to zero values; a single bad item never fails the batch. An
// author missing from the includes leaves the name fields empty.
func mapTweets(data []apiTweet, users []apiUser) []domain.Tweet {
	byID := make(map[string]apiUser, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	tweets := make([]domain.Tweet, 0, len(data))
	for _, td := range data {
		author := byID[td.AuthorID]

		// Zero time when created_at is absent or malformed.
		postedAt, _ := time.Parse(time.RFC3339, td.CreatedAt)

		tweets = append(tweets, domain.Tweet{
			TweetID:      td.ID,
			UserName:     author.Name,
			UserHandle:   author.Username,
			Text:         newlineStripper.Replace(td.Text),
			RetweetCount: td.PublicMetrics.RetweetCount,
			ClientName:   td.Source,
			PostedAt:     postedAt,
		})
	}
	return tweets
}
