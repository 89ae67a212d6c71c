package youtube

import (
	"context"
	"fmt"
	"log"
	"time"

	"campworks/pkg/models"
)

// Store is the slice of the catalog the reconciler needs. Implemented by
// the video repository.
type Store interface {
	// FindByURLOrVideoID matches an entry by exact URL, or secondarily by
	// the video ID appearing inside a stored URL.
	FindByURLOrVideoID(ctx context.Context, url, videoID string) (*models.Video, error)
	Insert(ctx context.Context, v *models.Video) error
	// UpdateSynced overwrites the sync-owned fields of an entry. It must
	// leave videoType alone; a nil publishedAt keeps the stored value.
	UpdateSynced(ctx context.Context, id, title, thumbnailURL, format string, publishedAt *time.Time) error
}

// ItemError records one item that failed to persist.
type ItemError struct {
	Title string `json:"title"`
	Error string `json:"error"`
}

// ReconcileResult aggregates one reconciliation pass.
type ReconcileResult struct {
	Created int
	Updated int
	Errors  []ItemError
}

// Reconciler merges fetched items into the stored catalog.
type Reconciler struct {
	Store Store
	Now   func() time.Time
}

func NewReconciler(store Store) *Reconciler {
	return &Reconciler{Store: store, Now: time.Now}
}

// Reconcile upserts every item. On a match it refreshes title, thumbnail,
// format and (when present) the publish timestamp, leaving the curated
// videoType untouched. On a miss it inserts a new entry with videoType
// "other". A failing item is recorded and the batch continues.
func (r *Reconciler) Reconcile(ctx context.Context, items []Item) ReconcileResult {
	var res ReconcileResult

	for _, it := range items {
		if err := r.reconcileOne(ctx, it, &res); err != nil {
			log.Printf("[youtube] persist %q: %v", it.Title, err)
			res.Errors = append(res.Errors, ItemError{Title: it.Title, Error: err.Error()})
		}
	}

	return res
}

func (r *Reconciler) reconcileOne(ctx context.Context, it Item, res *ReconcileResult) error {
	existing, err := r.Store.FindByURLOrVideoID(ctx, it.URL, it.VideoID)
	if err != nil {
		return fmt.Errorf("lookup: %w", err)
	}

	if existing != nil {
		var publishedAt *time.Time
		if !it.PublishedAt.IsZero() {
			t := it.PublishedAt
			publishedAt = &t
		}
		if err := r.Store.UpdateSynced(ctx, existing.ID, it.Title, it.ThumbnailURL, it.Format, publishedAt); err != nil {
			return fmt.Errorf("update: %w", err)
		}
		res.Updated++
		return nil
	}

	publishedAt := it.PublishedAt
	if publishedAt.IsZero() {
		publishedAt = r.Now()
	}

	v := &models.Video{
		Title:        it.Title,
		YoutubeURL:   it.URL,
		ThumbnailURL: it.ThumbnailURL,
		VideoType:    models.VideoTypeOther,
		VideoFormat:  it.Format,
		PublishedAt:  &publishedAt,
	}
	if err := r.Store.Insert(ctx, v); err != nil {
		return fmt.Errorf("insert: %w", err)
	}
	res.Created++
	return nil
}
