package youtube

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/time/rate"
)

// FormatClassifier decides shorts vs long-form for one item.
type FormatClassifier interface {
	Classify(ctx context.Context, it Item) string
}

// Summary is the outcome of one sync run, returned to the triggering
// administrator.
type Summary struct {
	Synced       int         `json:"synced"`
	Updated      int         `json:"updated"`
	Total        int         `json:"total"`
	Errors       int         `json:"errors"`
	ErrorDetails []ItemError `json:"errorDetails,omitempty"`
	Duration     string      `json:"duration"`
}

// Syncer drives one channel sync: enumerate (API first, feed on failure),
// classify each item, reconcile against the catalog, summarize. Everything
// runs sequentially on the caller's goroutine; the triggering request waits.
type Syncer struct {
	Primary    ChannelLister // nil when no API key is configured
	Fallback   ChannelLister
	Classifier FormatClassifier
	Reconciler *Reconciler
	ChannelID  string

	// Limiter paces duration lookups on the fallback path, where the
	// credential-less classifier is easy to rate-limit.
	Limiter *rate.Limiter
}

// NewSyncer wires the default pipeline for a channel.
func NewSyncer(apiKey, channelID string, store Store) *Syncer {
	var primary ChannelLister
	if apiKey != "" {
		primary = NewAPILister(apiKey)
	}
	return &Syncer{
		Primary:    primary,
		Fallback:   NewFeedLister(),
		Classifier: NewClassifier(apiKey),
		Reconciler: NewReconciler(store),
		ChannelID:  channelID,
		Limiter:    rate.NewLimiter(rate.Every(100*time.Millisecond), 1),
	}
}

// Sync runs the pipeline once. A channel that yields zero items is reported
// as ErrNoVideos so operators can tell "nothing to sync" from "sync broke";
// the reconciler is not invoked in that case.
func (s *Syncer) Sync(ctx context.Context) (*Summary, error) {
	start := time.Now()
	log.Printf("[youtube] sync started for channel %s", s.ChannelID)

	items, usedFallback, err := s.enumerate(ctx)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrNoVideos
	}

	for i := range items {
		if usedFallback && s.Limiter != nil {
			if err := s.Limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}
		items[i].Format = s.Classifier.Classify(ctx, items[i])
	}

	res := s.Reconciler.Reconcile(ctx, items)

	elapsed := time.Since(start)
	log.Printf("[youtube] sync finished: %d created, %d updated, %d errors in %s",
		res.Created, res.Updated, len(res.Errors), elapsed.Round(10*time.Millisecond))

	return &Summary{
		Synced:       res.Created,
		Updated:      res.Updated,
		Total:        len(items),
		Errors:       len(res.Errors),
		ErrorDetails: res.Errors,
		Duration:     fmt.Sprintf("%.2fs", elapsed.Seconds()),
	}, nil
}

// enumerate lists the channel through the primary source, substituting the
// feed source when the primary is unavailable or fails. A feed failure is
// fatal to the run.
func (s *Syncer) enumerate(ctx context.Context) ([]Item, bool, error) {
	if s.Primary != nil {
		items, err := s.Primary.ListAll(ctx, s.ChannelID)
		if err == nil {
			return items, false, nil
		}
		log.Printf("[youtube] primary enumeration failed, falling over to feed: %v", err)
	} else {
		log.Printf("[youtube] no API key configured, using feed enumeration")
	}

	items, err := s.Fallback.ListAll(ctx, s.ChannelID)
	if err != nil {
		return nil, true, fmt.Errorf("feed enumeration: %w", err)
	}
	return items, true, nil
}
