package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"campworks/internal/retry"
)

const (
	dataAPIBase = "https://www.googleapis.com/youtube/v3"

	// pageSize is the provider maximum for playlistItems.
	pageSize = 50

	// maxPages guards against unbounded pagination from a misbehaving
	// provider. 1000 pages x 50 items is far beyond any real channel here.
	maxPages = 1000
)

// APILister enumerates a channel's uploads playlist through the Data API.
type APILister struct {
	APIKey      string
	BaseURL     string // override for tests; empty means the real API
	Client      *http.Client
	RetryConfig retry.Config
}

// NewAPILister creates a lister for the given API key.
func NewAPILister(apiKey string) *APILister {
	return &APILister{
		APIKey:      apiKey,
		Client:      &http.Client{Timeout: 30 * time.Second},
		RetryConfig: retry.DefaultConfig(),
	}
}

func (l *APILister) base() string {
	if l.BaseURL != "" {
		return l.BaseURL
	}
	return dataAPIBase
}

// ListAll resolves the channel's uploads playlist and pages through it,
// returning every item. Auth failures and exhausted retries abort with an
// error so the caller can fall over to the feed source.
func (l *APILister) ListAll(ctx context.Context, channelID string) ([]Item, error) {
	playlistID, err := l.uploadsPlaylistID(ctx, channelID)
	if err != nil {
		return nil, &SourceError{Source: "api", Channel: channelID, Err: err}
	}

	var all []Item
	pageToken := ""
	for page := 1; ; page++ {
		if page > maxPages {
			log.Printf("[youtube] page ceiling (%d) reached for channel %s, stopping enumeration", maxPages, channelID)
			break
		}

		items, next, err := l.fetchPage(ctx, playlistID, pageToken)
		if err != nil {
			return nil, &SourceError{Source: "api", Channel: channelID, Err: err}
		}
		all = append(all, items...)

		log.Printf("[youtube] page %d: %d items, %d collected", page, len(items), len(all))

		if next == "" {
			break
		}
		pageToken = next
	}

	return all, nil
}

// uploadsPlaylistID resolves a channel ID to its uploads playlist ID.
func (l *APILister) uploadsPlaylistID(ctx context.Context, channelID string) (string, error) {
	q := url.Values{}
	q.Set("key", l.APIKey)
	q.Set("id", channelID)
	q.Set("part", "contentDetails")

	var playlistID string
	err := retry.Do(ctx, l.RetryConfig, apiErrorClassifier, l.logAttempt("channels"), func(ctx context.Context) error {
		var resp channelsResponse
		if err := l.getJSON(ctx, "/channels?"+q.Encode(), &resp); err != nil {
			return err
		}
		if len(resp.Items) == 0 {
			return ErrChannelNotFound
		}
		playlistID = resp.Items[0].ContentDetails.RelatedPlaylists.Uploads
		if playlistID == "" {
			return fmt.Errorf("channel %s has no uploads playlist", channelID)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return playlistID, nil
}

// fetchPage retrieves one page of the uploads playlist. Items that fail
// validation (missing video ID or title) are skipped as parse errors
// rather than propagated.
func (l *APILister) fetchPage(ctx context.Context, playlistID, pageToken string) ([]Item, string, error) {
	q := url.Values{}
	q.Set("key", l.APIKey)
	q.Set("playlistId", playlistID)
	q.Set("part", "snippet,contentDetails")
	q.Set("maxResults", strconv.Itoa(pageSize))
	if pageToken != "" {
		q.Set("pageToken", pageToken)
	}

	var items []Item
	var next string
	err := retry.Do(ctx, l.RetryConfig, apiErrorClassifier, l.logAttempt("playlistItems"), func(ctx context.Context) error {
		var resp playlistItemsResponse
		if err := l.getJSON(ctx, "/playlistItems?"+q.Encode(), &resp); err != nil {
			return err
		}

		items = items[:0]
		for _, raw := range resp.Items {
			it, ok := raw.toItem()
			if !ok {
				log.Printf("[youtube] skipping malformed playlist item (videoId=%q)", raw.ContentDetails.VideoID)
				continue
			}
			items = append(items, it)
		}
		next = resp.NextPageToken
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	return items, next, nil
}

// getJSON performs a GET against the Data API and decodes the response,
// turning non-2xx statuses into *APIError.
func (l *APILister) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.base()+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := l.Client.Do(req)
	if err != nil {
		return fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return newAPIError(resp, body)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

// newAPIError builds an APIError from a failed response, including the
// provider's error message and any Retry-After hint.
func newAPIError(resp *http.Response, body []byte) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		apiErr.Message = payload.Error.Message
	}

	if h := resp.Header.Get("Retry-After"); h != "" {
		if secs, err := strconv.Atoi(h); err == nil && secs > 0 {
			apiErr.RetryAfter = time.Duration(secs) * time.Second
		}
	}
	if apiErr.StatusCode == http.StatusTooManyRequests && apiErr.RetryAfter == 0 {
		apiErr.RetryAfter = 5 * time.Second
	}

	return apiErr
}

// apiErrorClassifier: 401/403 abort immediately (credential problem, the
// fallback source takes over); everything else is retried up to the bound.
func apiErrorClassifier(err error) bool {
	if err == nil {
		return false
	}
	if err == ErrChannelNotFound {
		return false
	}
	if IsAuthError(err) {
		return false
	}
	return true
}

func (l *APILister) logAttempt(op string) func(retry.Attempt) {
	return func(a retry.Attempt) {
		if a.State == retry.StateRetrying {
			log.Printf("[youtube] %s retry %d: %v", op, a.Number-1, a.Err)
		}
	}
}

// Wire types for the Data API, decoded strictly at the boundary.

type channelsResponse struct {
	Items []struct {
		ContentDetails struct {
			RelatedPlaylists struct {
				Uploads string `json:"uploads"`
			} `json:"relatedPlaylists"`
		} `json:"contentDetails"`
	} `json:"items"`
}

type playlistItemsResponse struct {
	NextPageToken string         `json:"nextPageToken"`
	Items         []playlistItem `json:"items"`
}

type playlistItem struct {
	Snippet struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		PublishedAt string `json:"publishedAt"`
		Thumbnails  struct {
			Default  thumbnail `json:"default"`
			Medium   thumbnail `json:"medium"`
			High     thumbnail `json:"high"`
			Standard thumbnail `json:"standard"`
			Maxres   thumbnail `json:"maxres"`
		} `json:"thumbnails"`
	} `json:"snippet"`
	ContentDetails struct {
		VideoID string `json:"videoId"`
	} `json:"contentDetails"`
}

type thumbnail struct {
	URL string `json:"url"`
}

// toItem validates and converts a raw playlist item. Items without a video
// ID or title fail closed and are skipped by the caller.
func (p playlistItem) toItem() (Item, bool) {
	videoID := p.ContentDetails.VideoID
	if videoID == "" || p.Snippet.Title == "" {
		return Item{}, false
	}

	it := Item{
		VideoID:     videoID,
		Title:       p.Snippet.Title,
		Description: p.Snippet.Description,
		URL:         WatchURL(videoID),
		ThumbnailURL: BestThumbnailURL(videoID, Thumbnails{
			Maxres:   p.Snippet.Thumbnails.Maxres.URL,
			Standard: p.Snippet.Thumbnails.Standard.URL,
			High:     p.Snippet.Thumbnails.High.URL,
			Medium:   p.Snippet.Thumbnails.Medium.URL,
			Default:  p.Snippet.Thumbnails.Default.URL,
		}),
	}

	if t, err := time.Parse(time.RFC3339, p.Snippet.PublishedAt); err == nil {
		it.PublishedAt = t
	}

	return it, true
}
