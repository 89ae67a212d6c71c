package video

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"campworks/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

const videoColumns = `id, title, youtube_url, thumbnail_url, video_type, video_format, published_at, created_at, updated_at`

func scanVideo(row interface{ Scan(...any) error }) (*models.Video, error) {
	var v models.Video
	var publishedAt sql.NullTime
	if err := row.Scan(&v.ID, &v.Title, &v.YoutubeURL, &v.ThumbnailURL, &v.VideoType, &v.VideoFormat, &publishedAt, &v.CreatedAt, &v.UpdatedAt); err != nil {
		return nil, err
	}
	if publishedAt.Valid {
		t := publishedAt.Time
		v.PublishedAt = &t
	}
	return &v, nil
}

func (r *Repo) Count(ctx context.Context) (int, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM videos`)
	var total int
	if err := row.Scan(&total); err != nil {
		return 0, fmt.Errorf("count videos: %w", err)
	}
	return total, nil
}

// List returns videos newest first.
func (r *Repo) List(ctx context.Context, limit, offset int) ([]models.Video, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+videoColumns+`
		FROM videos
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	defer rows.Close()

	out := make([]models.Video, 0, limit)
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan video row: %w", err)
		}
		out = append(out, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

func (r *Repo) GetByID(ctx context.Context, id string) (*models.Video, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+videoColumns+`
		FROM videos
		WHERE id = ?
	`, id)

	v, err := scanVideo(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get video: %w", err)
	}
	return v, nil
}

// FindByURLOrVideoID matches by exact URL first, then by the video ID
// appearing anywhere in a stored URL. The substring match mirrors the
// historical reconciliation behavior; it is an approximation, not a key.
func (r *Repo) FindByURLOrVideoID(ctx context.Context, url, videoID string) (*models.Video, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+videoColumns+`
		FROM videos
		WHERE youtube_url = ? OR youtube_url LIKE ?
		LIMIT 1
	`, url, "%"+videoID+"%")

	v, err := scanVideo(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find video: %w", err)
	}
	return v, nil
}

// Insert stores a new video. An empty ID is assigned.
func (r *Repo) Insert(ctx context.Context, v *models.Video) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}

	var publishedAt any
	if v.PublishedAt != nil {
		publishedAt = v.PublishedAt.UTC()
	}

	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO videos (id, title, youtube_url, thumbnail_url, video_type, video_format, published_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, v.ID, v.Title, v.YoutubeURL, v.ThumbnailURL, v.VideoType, v.VideoFormat, publishedAt)
	if err != nil {
		return fmt.Errorf("insert video: %w", err)
	}
	return nil
}

// UpdateSynced overwrites the fields the channel sync owns. video_type is
// curator-assigned and deliberately not in the SET list. A nil publishedAt
// keeps the stored value.
func (r *Repo) UpdateSynced(ctx context.Context, id, title, thumbnailURL, format string, publishedAt *time.Time) error {
	var err error
	if publishedAt != nil {
		_, err = r.DB.ExecContext(ctx, `
			UPDATE videos
			SET title = ?, thumbnail_url = ?, video_format = ?, published_at = ?, updated_at = CURRENT_TIMESTAMP
			WHERE id = ?
		`, title, thumbnailURL, format, publishedAt.UTC(), id)
	} else {
		_, err = r.DB.ExecContext(ctx, `
			UPDATE videos
			SET title = ?, thumbnail_url = ?, video_format = ?, updated_at = CURRENT_TIMESTAMP
			WHERE id = ?
		`, title, thumbnailURL, format, id)
	}
	if err != nil {
		return fmt.Errorf("update synced video: %w", err)
	}
	return nil
}

// VideoUpdate carries the optional fields of an admin edit; nil means keep.
type VideoUpdate struct {
	Title        *string
	YoutubeURL   *string
	ThumbnailURL *string
	VideoType    *string
	VideoFormat  *string
}

func (r *Repo) Update(ctx context.Context, id string, upd VideoUpdate) (bool, error) {
	var sets []string
	var args []any

	add := func(col string, v *string) {
		if v != nil {
			sets = append(sets, col+" = ?")
			args = append(args, *v)
		}
	}
	add("title", upd.Title)
	add("youtube_url", upd.YoutubeURL)
	add("thumbnail_url", upd.ThumbnailURL)
	add("video_type", upd.VideoType)
	add("video_format", upd.VideoFormat)

	if len(sets) == 0 {
		return false, fmt.Errorf("update video: nothing to update")
	}

	sets = append(sets, "updated_at = CURRENT_TIMESTAMP")
	args = append(args, id)

	res, err := r.DB.ExecContext(ctx, `
		UPDATE videos SET `+strings.Join(sets, ", ")+` WHERE id = ?
	`, args...)
	if err != nil {
		return false, fmt.Errorf("update video: %w", err)
	}
	rows, _ := res.RowsAffected()
	return rows > 0, nil
}

func (r *Repo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM videos WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete video: %w", err)
	}
	rows, _ := res.RowsAffected()
	return rows > 0, nil
}
