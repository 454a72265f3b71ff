package twitter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mfurutani/retweetd/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const meResponse = `{"data":{"id":"999","name":"Bot","username":"bot"}}`

// newTestClient spins up an httptest server answering /users/me plus the
// given handler, and returns a client pointed at it.
func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/users/me" {
			_, _ = w.Write([]byte(meResponse))
			return
		}
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := NewClient(Credentials{
		APIKey:       "k",
		APISecret:    "s",
		AccessToken:  "t",
		AccessSecret: "ts",
	}, WithBaseURLs(srv.URL, srv.URL))
	require.NoError(t, err)

	return client, srv
}

func TestNewClient_ResolvesOwnUserID(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	assert.Equal(t, "999", client.UserID())
}

func TestHomeTimeline_MapsResponse(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/999/timelines/reverse_chronological", r.URL.Path)
		assert.Equal(t, "50", r.URL.Query().Get("max_results"))
		assert.Equal(t, timelineTweetFields, r.URL.Query().Get("tweet.fields"))

		_, _ = w.Write([]byte(`{
			"data": [
				{"id":"1","text":"first","author_id":"u1","source":"WebApp","created_at":"2023-01-01T00:00:00Z","public_metrics":{"retweet_count":12}},
				{"id":"2","text":"second","author_id":"u2"}
			],
			"includes": {"users":[{"id":"u1","name":"Alice","username":"alice"}]}
		}`))
	})

	tweets, err := client.HomeTimeline(context.Background(), 50)
	require.NoError(t, err)
	require.Len(t, tweets, 2)
	assert.Equal(t, "Alice", tweets[0].UserName)
	assert.Equal(t, 12, tweets[0].RetweetCount)
	assert.Empty(t, tweets[1].UserName)
}

func TestHomeTimeline_ErrorPayloadReturnsAPIError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"errors":[{"title":"Forbidden","detail":"not allowed"}]}`))
	})

	_, err := client.HomeTimeline(context.Background(), 50)
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "timeline", apiErr.Operation)
	assert.Contains(t, apiErr.Error(), "not allowed")
}

func TestSearchRecent_BuildsRequestParams(t *testing.T) {
	start := time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC)

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tweets/search/recent", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "storm"+searchQuerySuffix, q.Get("query"))
		assert.Equal(t, "2023-06-01T12:00:00Z", q.Get("start_time"))
		assert.Equal(t, "relevancy", q.Get("sort_order"))
		assert.Equal(t, "100", q.Get("max_results"))
		assert.Equal(t, searchTweetFields, q.Get("tweet.fields"))

		_, _ = w.Write([]byte(`{"data":[{"id":"7","text":"storm warning","author_id":"u1"}],"includes":{"users":[]}}`))
	})

	tweets, err := client.SearchRecent(context.Background(), domain.SearchParams{
		Query:      "storm",
		StartTime:  start,
		SortOrder:  "relevancy",
		MaxResults: 100,
	})
	require.NoError(t, err)
	require.Len(t, tweets, 1)
	assert.Equal(t, "7", tweets[0].TweetID)
}

func TestTrends_FlattensPlaceResponse(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/trends/place.json", r.URL.Path)
		assert.Equal(t, "23424856", r.URL.Query().Get("id"))

		_, _ = w.Write([]byte(`[{"trends":[{"name":"Olympics"},{"name":"Rain"}]}]`))
	})

	names, err := client.Trends(context.Background(), 23424856)
	require.NoError(t, err)
	assert.Equal(t, []string{"Olympics", "Rain"}, names)
}

func TestRetweet_PostsTweetID(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/users/999/retweets", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "12345", body["tweet_id"])

		_, _ = w.Write([]byte(`{"data":{"retweeted":true}}`))
	})

	err := client.Retweet(context.Background(), "12345")
	assert.NoError(t, err)
}

func TestRetweet_ErrorPayload(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"errors":[{"message":"You have already retweeted this Tweet.","code":327}]}`))
	})

	err := client.Retweet(context.Background(), "12345")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already retweeted")
}

func TestDo_NonSuccessStatusReturnsAPIError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"errors":[{"title":"Unsupported Authentication"}]}`))
	})

	_, err := client.HomeTimeline(context.Background(), 10)
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
}
