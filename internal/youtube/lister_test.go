package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campworks/internal/retry"
)

func testRetryConfig() retry.Config {
	return retry.Config{
		MaxRetries:     3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
		Multiplier:     2.0,
	}
}

func newTestLister(srv *httptest.Server) *APILister {
	return &APILister{
		APIKey:      "test-key",
		BaseURL:     srv.URL,
		Client:      srv.Client(),
		RetryConfig: testRetryConfig(),
	}
}

func channelsBody() string {
	return `{"items":[{"contentDetails":{"relatedPlaylists":{"uploads":"UUplaylist"}}}]}`
}

func playlistPage(next string, ids ...string) string {
	type item struct {
		Snippet struct {
			Title       string `json:"title"`
			PublishedAt string `json:"publishedAt"`
		} `json:"snippet"`
		ContentDetails struct {
			VideoID string `json:"videoId"`
		} `json:"contentDetails"`
	}
	var payload struct {
		NextPageToken string `json:"nextPageToken,omitempty"`
		Items         []item `json:"items"`
	}
	payload.NextPageToken = next
	for _, id := range ids {
		var it item
		it.ContentDetails.VideoID = id
		it.Snippet.Title = "video " + id
		it.Snippet.PublishedAt = "2024-03-01T10:00:00Z"
		payload.Items = append(payload.Items, it)
	}
	b, _ := json.Marshal(payload)
	return string(b)
}

func TestAPIListerPaginates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/channels":
			w.Write([]byte(channelsBody()))
		case "/playlistItems":
			require.Equal(t, "UUplaylist", r.URL.Query().Get("playlistId"))
			switch r.URL.Query().Get("pageToken") {
			case "":
				w.Write([]byte(playlistPage("page2", "aaaaaaaaaaa", "bbbbbbbbbbb")))
			case "page2":
				w.Write([]byte(playlistPage("", "ccccccccccc")))
			default:
				t.Errorf("unexpected pageToken %q", r.URL.Query().Get("pageToken"))
			}
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	items, err := newTestLister(srv).ListAll(context.Background(), "UCchannel")
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "aaaaaaaaaaa", items[0].VideoID)
	assert.Equal(t, "https://www.youtube.com/watch?v=aaaaaaaaaaa", items[0].URL)
	assert.Equal(t, "video ccccccccccc", items[2].Title)
	assert.Equal(t, 2024, items[0].PublishedAt.Year())
}

func TestAPIListerAuthErrorAbortsWithoutRetry(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"message":"quotaExceeded"}}`))
	}))
	defer srv.Close()

	_, err := newTestLister(srv).ListAll(context.Background(), "UCchannel")
	require.Error(t, err)
	assert.True(t, IsAuthError(err), "expected an auth error, got %v", err)
	assert.Equal(t, 1, calls, "auth errors must not be retried")

	var srcErr *SourceError
	require.ErrorAs(t, err, &srcErr)
	assert.Equal(t, "api", srcErr.Source)
}

func TestAPIListerRetriesRateLimit(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/channels" {
			calls++
			if calls < 3 {
				w.Header().Set("Retry-After", "0")
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			w.Write([]byte(channelsBody()))
			return
		}
		w.Write([]byte(playlistPage("", "aaaaaaaaaaa")))
	}))
	defer srv.Close()

	l := newTestLister(srv)
	// an absent Retry-After means a 5s default; shrink it for the test
	l.RetryConfig.MaxBackoff = time.Millisecond

	items, err := l.ListAll(context.Background(), "UCchannel")
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, 3, calls)
}

func TestAPIListerChannelNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items":[]}`))
	}))
	defer srv.Close()

	_, err := newTestLister(srv).ListAll(context.Background(), "UCmissing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrChannelNotFound))
}

func TestAPIListerSkipsMalformedItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/channels" {
			w.Write([]byte(channelsBody()))
			return
		}
		// second item has no videoId, third has no title
		w.Write([]byte(`{"items":[
			{"snippet":{"title":"good"},"contentDetails":{"videoId":"aaaaaaaaaaa"}},
			{"snippet":{"title":"no id"},"contentDetails":{"videoId":""}},
			{"snippet":{"title":""},"contentDetails":{"videoId":"bbbbbbbbbbb"}}
		]}`))
	}))
	defer srv.Close()

	items, err := newTestLister(srv).ListAll(context.Background(), "UCchannel")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "aaaaaaaaaaa", items[0].VideoID)
}
