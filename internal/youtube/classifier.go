package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"campworks/pkg/models"
)

// shortsMarker is the tag creators put on short-form uploads.
const shortsMarker = "#shorts"

// Classifier decides shorts vs long-form for one video.
//
// The title/description check runs first so the common self-tagged case
// costs no API call; only untagged videos trigger a duration lookup.
// A failed lookup defaults to long-form so one bad item never stops a sync.
type Classifier struct {
	APIKey  string
	BaseURL string // override for tests; empty means the real API
	Client  *http.Client

	// lookups counts duration lookups, for tests.
	lookups int
}

// NewClassifier creates a classifier. An empty API key disables the
// duration lookup, degrading to the marker check plus the long-form default.
func NewClassifier(apiKey string) *Classifier {
	return &Classifier{
		APIKey: apiKey,
		Client: &http.Client{Timeout: 5 * time.Second},
	}
}

// Classify returns models.VideoFormatShorts or models.VideoFormatLong.
func (c *Classifier) Classify(ctx context.Context, it Item) string {
	if hasShortsMarker(it.Title) || hasShortsMarker(it.Description) {
		return models.VideoFormatShorts
	}

	if c.APIKey == "" {
		return models.VideoFormatLong
	}

	seconds, err := c.lookupDurationSeconds(ctx, it.VideoID)
	if err != nil {
		log.Printf("[youtube] duration lookup for %s failed, defaulting to long-form: %v", it.VideoID, err)
		return models.VideoFormatLong
	}

	if seconds <= 60 {
		return models.VideoFormatShorts
	}
	return models.VideoFormatLong
}

// DurationLookups returns how many duration lookups have been made.
func (c *Classifier) DurationLookups() int { return c.lookups }

func hasShortsMarker(s string) bool {
	return strings.Contains(strings.ToLower(s), shortsMarker)
}

// lookupDurationSeconds queries the videos endpoint for the item's
// ISO-8601 duration and converts it to seconds.
func (c *Classifier) lookupDurationSeconds(ctx context.Context, videoID string) (int, error) {
	c.lookups++

	base := dataAPIBase
	if c.BaseURL != "" {
		base = c.BaseURL
	}

	q := url.Values{}
	q.Set("key", c.APIKey)
	q.Set("id", videoID)
	q.Set("part", "contentDetails")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/videos?"+q.Encode(), nil)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return 0, newAPIError(resp, body)
	}

	var payload struct {
		Items []struct {
			ContentDetails struct {
				Duration string `json:"duration"`
			} `json:"contentDetails"`
		} `json:"items"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return 0, fmt.Errorf("decode: %w", err)
	}
	if len(payload.Items) == 0 {
		return 0, fmt.Errorf("video %s not found", videoID)
	}

	return parseISODurationSeconds(payload.Items[0].ContentDetails.Duration)
}

var isoDurationRegex = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)

// parseISODurationSeconds parses the PT#H#M#S subset of ISO-8601 durations
// the Data API returns.
func parseISODurationSeconds(d string) (int, error) {
	m := isoDurationRegex.FindStringSubmatch(d)
	if m == nil {
		return 0, fmt.Errorf("malformed duration %q", d)
	}

	total := 0
	for i, mult := range []int{3600, 60, 1} {
		if m[i+1] == "" {
			continue
		}
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			return 0, fmt.Errorf("malformed duration %q", d)
		}
		total += n * mult
	}
	return total, nil
}
