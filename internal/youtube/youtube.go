// Package youtube implements the channel synchronization pipeline: listing a
// channel's uploads through the Data API (with an RSS fallback), classifying
// each video as shorts or long-form, and reconciling the result against the
// stored catalog.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for channel listing.
var (
	ErrChannelNotFound = errors.New("youtube: channel not found")
	ErrNoVideos        = errors.New("youtube: channel returned no videos")
)

// Item is one fetched video, normalized across the API and feed sources.
type Item struct {
	VideoID      string
	Title        string
	Description  string
	URL          string
	ThumbnailURL string
	Format       string // set by classification, not by the listers
	PublishedAt  time.Time
}

// ChannelLister enumerates every video of a channel.
type ChannelLister interface {
	ListAll(ctx context.Context, channelID string) ([]Item, error)
}

// SourceError wraps a listing failure with the source that produced it.
type SourceError struct {
	Source  string // "api" or "feed"
	Channel string
	Err     error
}

func (e *SourceError) Error() string {
	return "youtube: " + e.Source + " listing " + e.Channel + ": " + e.Err.Error()
}

func (e *SourceError) Unwrap() error { return e.Err }

// APIError is a non-2xx response from the Data API.
type APIError struct {
	StatusCode int
	Message    string
	RetryAfter time.Duration // from the Retry-After header, 0 if absent
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("youtube api: HTTP %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("youtube api: HTTP %d", e.StatusCode)
}

// RetryDelay returns the provider-supplied backoff hint.
func (e *APIError) RetryDelay() (time.Duration, bool) {
	return e.RetryAfter, e.RetryAfter > 0
}

// IsAuthError reports whether err is a 401/403 from the API. Auth failures
// are never retried; the caller falls over to the feed source instead.
func IsAuthError(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 401 || apiErr.StatusCode == 403
	}
	return false
}

// IsRateLimited reports whether err is a 429 from the API.
func IsRateLimited(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429
	}
	return false
}
