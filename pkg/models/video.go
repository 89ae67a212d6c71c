package models

import "time"

// Curated video categories. Assigned by an administrator, never touched by
// the channel sync.
const (
	VideoTypeCraft   = "craft"
	VideoTypeLecture = "lecture"
	VideoTypeOther   = "other"
)

// Video formats, recomputed on every channel sync.
const (
	VideoFormatLong   = "video"
	VideoFormatShorts = "shorts"
)

// ValidVideoType reports whether t is one of the curated categories.
func ValidVideoType(t string) bool {
	switch t {
	case VideoTypeCraft, VideoTypeLecture, VideoTypeOther:
		return true
	}
	return false
}

// ValidVideoFormat reports whether f is one of the two formats.
func ValidVideoFormat(f string) bool {
	return f == VideoFormatLong || f == VideoFormatShorts
}

// Video is a catalog entry for one YouTube video shown on the site.
// YoutubeURL is the natural key used by the sync reconciler.
type Video struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	YoutubeURL   string     `json:"youtubeUrl"`
	ThumbnailURL string     `json:"thumbnailUrl"`
	VideoType    string     `json:"videoType"`
	VideoFormat  string     `json:"videoFormat"`
	PublishedAt  *time.Time `json:"publishedAt"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}
