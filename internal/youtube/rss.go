package youtube

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

const feedURLTemplate = "https://www.youtube.com/feeds/videos.xml?channel_id=%s"

// FeedLister enumerates a channel through the public Atom feed. It needs no
// credential, carries no thumbnail metadata (the hqdefault image is derived
// from the video ID) and returns only the most recent uploads, so it is the
// degraded path used when the Data API rejects or exhausts us.
type FeedLister struct {
	Client  *http.Client
	BaseURL string // override for tests; empty means the real feed endpoint
}

func NewFeedLister() *FeedLister {
	return &FeedLister{Client: &http.Client{Timeout: 15 * time.Second}}
}

// ListAll fetches and parses the channel feed. A fetch or parse failure here
// is fatal: there is no further fallback.
func (f *FeedLister) ListAll(ctx context.Context, channelID string) ([]Item, error) {
	feedURL := fmt.Sprintf(feedURLTemplate, channelID)
	if f.BaseURL != "" {
		feedURL = f.BaseURL + "?channel_id=" + channelID
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, &SourceError{Source: "feed", Channel: channelID, Err: err}
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, &SourceError{Source: "feed", Channel: channelID, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &SourceError{Source: "feed", Channel: channelID,
			Err: fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &SourceError{Source: "feed", Channel: channelID, Err: err}
	}

	var feed atomFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, &SourceError{Source: "feed", Channel: channelID,
			Err: fmt.Errorf("parse atom feed: %w", err)}
	}

	items := make([]Item, 0, len(feed.Entries))
	for _, entry := range feed.Entries {
		if entry.VideoID == "" || entry.Title == "" {
			log.Printf("[youtube] skipping malformed feed entry (videoId=%q)", entry.VideoID)
			continue
		}

		u := entry.Link.Href
		if u == "" {
			u = WatchURL(entry.VideoID)
		}

		items = append(items, Item{
			VideoID:      entry.VideoID,
			Title:        entry.Title,
			URL:          u,
			ThumbnailURL: FallbackThumbnailURL(entry.VideoID),
			PublishedAt:  entry.Published,
		})
	}

	return items, nil
}

type atomFeed struct {
	XMLName xml.Name    `xml:"feed"`
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	VideoID   string    `xml:"http://www.youtube.com/xml/schemas/2015 videoId"`
	Title     string    `xml:"title"`
	Link      atomLink  `xml:"link"`
	Published time.Time `xml:"published"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
}
