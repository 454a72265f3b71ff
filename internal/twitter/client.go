package twitter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/dghubble/oauth1"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/mfurutani/retweetd/internal/domain"
)

const (
	defaultBaseURL       = "https://api.twitter.com/2"
	defaultLegacyBaseURL = "https://api.twitter.com/1.1"

	// Fixed filters appended to every search query: Japanese posts only,
	// no retweets, no mentions.
	searchQuerySuffix = " lang:ja -is:retweet -has:mentions"

	timelineTweetFields = "public_metrics,created_at,source,author_id"
	searchTweetFields   = "public_metrics,referenced_tweets,created_at,source,author_id"
	userFields          = "name,username"
	timelineExpansions  = "referenced_tweets.id,author_id"
	searchExpansions    = "author_id,referenced_tweets.id"

	resolveUserTimeout = 15 * time.Second
)

// Credentials holds the OAuth1 user-context keys for the bot account.
type Credentials struct {
	APIKey       string
	APISecret    string
	AccessToken  string
	AccessSecret string
}

// Client talks to the Twitter API on behalf of a single account.
// It satisfies domain.SocialClient.
type Client struct {
	http      *retryablehttp.Client
	baseURL   string
	legacyURL string
	userID    string
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURLs overrides the v2 and v1.1 endpoints, used in tests.
func WithBaseURLs(base, legacy string) Option {
	return func(c *Client) {
		c.baseURL = base
		c.legacyURL = legacy
	}
}

// NewClient builds an OAuth1-signed client and resolves the account's own
// user ID, which timeline and retweet endpoints require in their paths.
func NewClient(creds Credentials, opts ...Option) (*Client, error) {
	oauthCfg := oauth1.NewConfig(creds.APIKey, creds.APISecret)
	token := oauth1.NewToken(creds.AccessToken, creds.AccessSecret)

	rc := retryablehttp.NewClient()
	rc.HTTPClient = oauthCfg.Client(oauth1.NoContext, token)
	rc.Logger = nil

	c := &Client{
		http:      rc,
		baseURL:   defaultBaseURL,
		legacyURL: defaultLegacyBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}

	ctx, cancel := context.WithTimeout(context.Background(), resolveUserTimeout)
	defer cancel()

	userID, err := c.me(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve own user id: %w", err)
	}
	c.userID = userID

	return c, nil
}

// UserID returns the bot account's resolved user ID.
func (c *Client) UserID() string {
	return c.userID
}

func (c *Client) me(ctx context.Context) (string, error) {
	body, err := c.get(ctx, "users/me", c.baseURL+"/users/me", nil)
	if err != nil {
		return "", err
	}

	var resp struct {
		Data apiUser `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to decode users/me response: %w", err)
	}
	if resp.Data.ID == "" {
		return "", fmt.Errorf("users/me returned no user")
	}
	return resp.Data.ID, nil
}

// HomeTimeline fetches one page of the account's reverse-chronological home
// feed, newest first.
func (c *Client) HomeTimeline(ctx context.Context, pageSize int) ([]domain.Tweet, error) {
	q := url.Values{}
	q.Set("max_results", strconv.Itoa(pageSize))
	q.Set("tweet.fields", timelineTweetFields)
	q.Set("user.fields", userFields)
	q.Set("expansions", timelineExpansions)

	endpoint := fmt.Sprintf("%s/users/%s/timelines/reverse_chronological", c.baseURL, c.userID)
	body, err := c.get(ctx, "timeline", endpoint, q)
	if err != nil {
		return nil, err
	}

	var env tweetEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("failed to decode timeline response: %w", err)
	}
	if err := env.err("timeline"); err != nil {
		return nil, err
	}
	return mapTweets(env.Data, env.Includes.Users), nil
}

// SearchRecent runs a recent-tweet search. The fixed query suffix is appended
// here so callers pass the bare keyword.
func (c *Client) SearchRecent(ctx context.Context, params domain.SearchParams) ([]domain.Tweet, error) {
	q := url.Values{}
	q.Set("query", params.Query+searchQuerySuffix)
	if !params.StartTime.IsZero() {
		q.Set("start_time", params.StartTime.Format(time.RFC3339))
	}
	q.Set("tweet.fields", searchTweetFields)
	q.Set("user.fields", userFields)
	q.Set("expansions", searchExpansions)
	q.Set("sort_order", params.SortOrder)
	q.Set("max_results", strconv.Itoa(params.MaxResults))

	body, err := c.get(ctx, "search", c.baseURL+"/tweets/search/recent", q)
	if err != nil {
		return nil, err
	}

	var env tweetEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}
	if err := env.err("search"); err != nil {
		return nil, err
	}
	return mapTweets(env.Data, env.Includes.Users), nil
}

// Trends returns the ranked trend names for a region (v1.1 WOEID endpoint).
func (c *Client) Trends(ctx context.Context, woeid int) ([]string, error) {
	q := url.Values{}
	q.Set("id", strconv.Itoa(woeid))

	body, err := c.get(ctx, "trends", c.legacyURL+"/trends/place.json", q)
	if err != nil {
		return nil, err
	}

	var resp []struct {
		Trends []struct {
			Name string `json:"name"`
		} `json:"trends"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode trends response: %w", err)
	}

	var names []string
	for _, place := range resp {
		for _, tr := range place.Trends {
			names = append(names, tr.Name)
		}
	}
	return names, nil
}

// Retweet retweets a single post by ID as the bot account.
func (c *Client) Retweet(ctx context.Context, tweetID string) error {
	payload, err := json.Marshal(map[string]string{"tweet_id": tweetID})
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/users/%s/retweets", c.baseURL, c.userID)
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := c.do("retweet", req)
	if err != nil {
		return err
	}

	var resp struct {
		Errors []apiError `json:"errors"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("failed to decode retweet response: %w", err)
	}
	if len(resp.Errors) > 0 {
		return &APIError{Operation: "retweet", Errors: resp.Errors}
	}
	return nil
}

func (c *Client) get(ctx context.Context, operation, endpoint string, q url.Values) ([]byte, error) {
	if q != nil {
		endpoint = endpoint + "?" + q.Encode()
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	return c.do(operation, req)
}

func (c *Client) do(operation string, req *retryablehttp.Request) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", operation, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", operation, err)
	}

	if resp.StatusCode >= 300 {
		// Error bodies carry the same errors array as partial failures.
		var payload struct {
			Errors []apiError `json:"errors"`
		}
		if json.Unmarshal(body, &payload) == nil && len(payload.Errors) > 0 {
			return nil, &APIError{Operation: operation, StatusCode: resp.StatusCode, Errors: payload.Errors}
		}
		return nil, &APIError{Operation: operation, StatusCode: resp.StatusCode}
	}

	return body, nil
}
