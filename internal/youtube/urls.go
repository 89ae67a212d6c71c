package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"time"
)

// videoIDRegex matches the 11-char video ID in the usual URL shapes
// (watch?v=, youtu.be/, embed/, shorts/).
var videoIDRegex = regexp.MustCompile(`(?:youtu\.be/|v/|u/\w/|embed/|shorts/|watch\?v=|&v=)([A-Za-z0-9_-]{11})`)

// ExtractVideoID pulls the video ID out of a YouTube URL. Returns "" when
// the URL carries no recognizable ID.
func ExtractVideoID(rawURL string) string {
	m := videoIDRegex.FindStringSubmatch(rawURL)
	if m == nil {
		return ""
	}
	return m[1]
}

// WatchURL returns the canonical watch URL for a video ID.
func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

// Thumbnails holds the candidate thumbnail URLs returned by the Data API,
// highest resolution first.
type Thumbnails struct {
	Maxres   string
	Standard string
	High     string
	Medium   string
	Default  string
}

// BestThumbnailURL picks the highest-resolution thumbnail available,
// falling back to the hqdefault image that exists for every video.
func BestThumbnailURL(videoID string, t Thumbnails) string {
	for _, u := range []string{t.Maxres, t.Standard, t.High, t.Medium, t.Default} {
		if u != "" {
			return u
		}
	}
	return FallbackThumbnailURL(videoID)
}

// FallbackThumbnailURL returns the guaranteed-present hqdefault thumbnail.
func FallbackThumbnailURL(videoID string) string {
	return "https://img.youtube.com/vi/" + videoID + "/hqdefault.jpg"
}

const oembedURLTemplate = "https://www.youtube.com/oembed?url=%s&format=json"

// TitleFetcher looks up a video title via the public oEmbed endpoint.
// Used when an administrator adds a video by URL without typing a title.
type TitleFetcher struct {
	Client  *http.Client
	BaseURL string // override for tests; empty means the real endpoint
}

func NewTitleFetcher() *TitleFetcher {
	return &TitleFetcher{Client: &http.Client{Timeout: 5 * time.Second}}
}

func (f *TitleFetcher) FetchTitle(ctx context.Context, youtubeURL string) (string, error) {
	endpoint := fmt.Sprintf(oembedURLTemplate, url.QueryEscape(youtubeURL))
	if f.BaseURL != "" {
		endpoint = f.BaseURL + "?url=" + url.QueryEscape(youtubeURL) + "&format=json"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("oembed: build request: %w", err)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("oembed: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("oembed: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("oembed: read body: %w", err)
	}

	var payload struct {
		Title string `json:"title"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("oembed: decode: %w", err)
	}
	if payload.Title == "" {
		return "", fmt.Errorf("oembed: response has no title")
	}
	return payload.Title, nil
}
