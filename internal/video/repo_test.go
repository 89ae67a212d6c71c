package video

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campworks/pkg/database"
	"campworks/pkg/models"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db))
	return db
}

func seedVideo(t *testing.T, r *Repo, videoID, title string) *models.Video {
	t.Helper()
	v := &models.Video{
		Title:        title,
		YoutubeURL:   "https://www.youtube.com/watch?v=" + videoID,
		ThumbnailURL: "https://img.youtube.com/vi/" + videoID + "/hqdefault.jpg",
		VideoType:    models.VideoTypeOther,
		VideoFormat:  models.VideoFormatLong,
	}
	require.NoError(t, r.Insert(context.Background(), v))
	return v
}

func TestInsertAndGet(t *testing.T) {
	r := NewRepo(testDB(t))
	v := seedVideo(t, r, "aaaaaaaaaaa", "bed frame build")

	got, err := r.GetByID(context.Background(), v.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "bed frame build", got.Title)
	assert.Equal(t, models.VideoTypeOther, got.VideoType)
	assert.Nil(t, got.PublishedAt)
}

func TestGetMissingReturnsNil(t *testing.T) {
	r := NewRepo(testDB(t))
	got, err := r.GetByID(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFindByURLOrVideoID(t *testing.T) {
	r := NewRepo(testDB(t))
	v := seedVideo(t, r, "aaaaaaaaaaa", "bed frame build")

	// exact URL
	got, err := r.FindByURLOrVideoID(context.Background(), v.YoutubeURL, "aaaaaaaaaaa")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, v.ID, got.ID)

	// different URL shape, same video ID
	got, err = r.FindByURLOrVideoID(context.Background(), "https://youtu.be/aaaaaaaaaaa", "aaaaaaaaaaa")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, v.ID, got.ID)

	// unknown video
	got, err = r.FindByURLOrVideoID(context.Background(), "https://youtu.be/zzzzzzzzzzz", "zzzzzzzzzzz")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUpdateSyncedPreservesType(t *testing.T) {
	r := NewRepo(testDB(t))
	v := seedVideo(t, r, "aaaaaaaaaaa", "bed frame build")

	ok, err := r.Update(context.Background(), v.ID, VideoUpdate{VideoType: strPtr(models.VideoTypeCraft)})
	require.NoError(t, err)
	require.True(t, ok)

	published := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	err = r.UpdateSynced(context.Background(), v.ID, "bed frame build (4K)", "new.jpg", models.VideoFormatShorts, &published)
	require.NoError(t, err)

	got, err := r.GetByID(context.Background(), v.ID)
	require.NoError(t, err)
	assert.Equal(t, "bed frame build (4K)", got.Title)
	assert.Equal(t, models.VideoFormatShorts, got.VideoFormat)
	assert.Equal(t, models.VideoTypeCraft, got.VideoType, "sync must not touch the curated category")
	require.NotNil(t, got.PublishedAt)
	assert.Equal(t, published, got.PublishedAt.UTC())
}

func TestUpdateSyncedNilPublishedAtKeepsStored(t *testing.T) {
	r := NewRepo(testDB(t))
	published := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	v := &models.Video{
		Title:       "dated",
		YoutubeURL:  "https://www.youtube.com/watch?v=aaaaaaaaaaa",
		VideoType:   models.VideoTypeOther,
		VideoFormat: models.VideoFormatLong,
		PublishedAt: &published,
	}
	require.NoError(t, r.Insert(context.Background(), v))

	require.NoError(t, r.UpdateSynced(context.Background(), v.ID, "dated", "t.jpg", models.VideoFormatLong, nil))

	got, err := r.GetByID(context.Background(), v.ID)
	require.NoError(t, err)
	require.NotNil(t, got.PublishedAt)
	assert.Equal(t, published, got.PublishedAt.UTC())
}

func TestListNewestFirst(t *testing.T) {
	r := NewRepo(testDB(t))
	db := r.DB

	// distinct created_at values, oldest first
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"aaaaaaaaaaa", "bbbbbbbbbbb", "ccccccccccc"} {
		_, err := db.Exec(`
			INSERT INTO videos (id, title, youtube_url, created_at)
			VALUES (?, ?, ?, ?)
		`, id, "video "+id, "https://www.youtube.com/watch?v="+id, base.Add(time.Duration(i)*time.Hour))
		require.NoError(t, err)
	}

	total, err := r.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	videos, err := r.List(context.Background(), 2, 0)
	require.NoError(t, err)
	require.Len(t, videos, 2)
	assert.Equal(t, "ccccccccccc", videos[0].ID)
	assert.Equal(t, "bbbbbbbbbbb", videos[1].ID)

	videos, err = r.List(context.Background(), 2, 2)
	require.NoError(t, err)
	require.Len(t, videos, 1)
	assert.Equal(t, "aaaaaaaaaaa", videos[0].ID)
}

func TestDelete(t *testing.T) {
	r := NewRepo(testDB(t))
	v := seedVideo(t, r, "aaaaaaaaaaa", "doomed")

	ok, err := r.Delete(context.Background(), v.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.Delete(context.Background(), v.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func strPtr(s string) *string { return &s }
