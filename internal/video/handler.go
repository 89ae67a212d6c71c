package video

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"campworks/internal/auth"
	"campworks/internal/youtube"
	"campworks/pkg/models"
)

// SyncRunner triggers one channel sync. Satisfied by *youtube.Syncer.
type SyncRunner interface {
	Sync(ctx context.Context) (*youtube.Summary, error)
}

// TitleLookup resolves a video title from its URL. Satisfied by
// *youtube.TitleFetcher.
type TitleLookup interface {
	FetchTitle(ctx context.Context, youtubeURL string) (string, error)
}

type Handler struct {
	Repo   *Repo
	Tokens auth.TokenService
	Syncer SyncRunner
	Titles TitleLookup

	// Debug includes failure detail in error responses. Off in production.
	Debug bool
}

func NewHandler(repo *Repo, tokens auth.TokenService, syncer SyncRunner, titles TitleLookup) *Handler {
	return &Handler{Repo: repo, Tokens: tokens, Syncer: syncer, Titles: titles}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.list)
	rg.GET("/:id", h.getByID)

	admin := rg.Group("/admin", auth.AuthMiddleware(h.Tokens), auth.AdminOnly())
	admin.POST("", h.create)
	admin.POST("/sync", h.sync)
	admin.PUT("/:id", h.update)
	admin.PATCH("/:id/type", h.updateType)
	admin.DELETE("/:id", h.delete)
}

func (h *Handler) list(c *gin.Context) {
	page := parseInt(c.Query("page"), 1)
	limit := parseInt(c.Query("limit"), 20)
	if page < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "page must be >= 1"})
		return
	}
	if limit < 1 || limit > 1000 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "limit must be between 1 and 1000"})
		return
	}

	total, err := h.Repo.Count(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "count failed"})
		return
	}

	videos, err := h.Repo.List(c.Request.Context(), limit, (page-1)*limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "list failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"count":      len(videos),
		"totalCount": total,
		"totalPages": (total + limit - 1) / limit,
		"page":       page,
		"data":       videos,
	})
}

func (h *Handler) getByID(c *gin.Context) {
	v, err := h.Repo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "get failed"})
		return
	}
	if v == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "video not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": v})
}

type createReq struct {
	Title        string `json:"title"`
	YoutubeURL   string `json:"youtubeUrl"`
	ThumbnailURL string `json:"thumbnailUrl"`
	VideoType    string `json:"videoType"`
	VideoFormat  string `json:"videoFormat"`
}

func (h *Handler) create(c *gin.Context) {
	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid json"})
		return
	}

	rawURL := strings.TrimSpace(req.YoutubeURL)
	if rawURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "youtubeUrl required"})
		return
	}
	videoID := youtube.ExtractVideoID(rawURL)
	if videoID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "not a recognizable youtube url"})
		return
	}

	if existing, _ := h.Repo.FindByURLOrVideoID(c.Request.Context(), rawURL, videoID); existing != nil {
		c.JSON(http.StatusConflict, gin.H{"success": false, "message": "video already registered"})
		return
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		if h.Titles == nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "title required"})
			return
		}
		fetched, err := h.Titles.FetchTitle(c.Request.Context(), rawURL)
		if err != nil {
			log.Printf("[video] title lookup failed for %s: %v", videoID, err)
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "could not resolve video title, provide one"})
			return
		}
		title = fetched
	}

	thumbnail := strings.TrimSpace(req.ThumbnailURL)
	if thumbnail == "" {
		thumbnail = youtube.FallbackThumbnailURL(videoID)
	}

	videoType := req.VideoType
	if videoType == "" {
		videoType = models.VideoTypeOther
	}
	if !models.ValidVideoType(videoType) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "videoType must be craft, lecture or other"})
		return
	}

	format := req.VideoFormat
	if format == "" {
		format = models.VideoFormatLong
		if strings.Contains(rawURL, "/shorts/") {
			format = models.VideoFormatShorts
		}
	}
	if !models.ValidVideoFormat(format) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "videoFormat must be video or shorts"})
		return
	}

	v := models.Video{
		Title:        title,
		YoutubeURL:   rawURL,
		ThumbnailURL: thumbnail,
		VideoType:    videoType,
		VideoFormat:  format,
	}
	if err := h.Repo.Insert(c.Request.Context(), &v); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "create video failed"})
		return
	}

	created, err := h.Repo.GetByID(c.Request.Context(), v.ID)
	if err != nil || created == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "create video failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "video created", "data": created})
}

// sync runs the channel sync inline; the admin request waits for the whole
// batch and gets the run summary back.
func (h *Handler) sync(c *gin.Context) {
	if h.Syncer == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "message": "sync is not configured"})
		return
	}

	summary, err := h.Syncer.Sync(c.Request.Context())
	if err != nil {
		if errors.Is(err, youtube.ErrNoVideos) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "no videos found on the channel"})
			return
		}
		log.Printf("[video] sync failed: %v", err)
		resp := gin.H{"success": false, "message": "sync failed"}
		if h.Debug {
			resp["error"] = err.Error()
		}
		c.JSON(http.StatusInternalServerError, resp)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "sync completed",
		"data":    summary,
	})
}

type updateReq struct {
	Title        *string `json:"title"`
	YoutubeURL   *string `json:"youtubeUrl"`
	ThumbnailURL *string `json:"thumbnailUrl"`
	VideoType    *string `json:"videoType"`
	VideoFormat  *string `json:"videoFormat"`
}

func (h *Handler) update(c *gin.Context) {
	var req updateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid json"})
		return
	}

	var upd VideoUpdate
	upd.Title = req.Title
	upd.ThumbnailURL = req.ThumbnailURL
	if req.YoutubeURL != nil {
		u := strings.TrimSpace(*req.YoutubeURL)
		if youtube.ExtractVideoID(u) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "not a recognizable youtube url"})
			return
		}
		upd.YoutubeURL = &u
	}
	if req.VideoType != nil {
		if !models.ValidVideoType(*req.VideoType) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "videoType must be craft, lecture or other"})
			return
		}
		upd.VideoType = req.VideoType
	}
	if req.VideoFormat != nil {
		if !models.ValidVideoFormat(*req.VideoFormat) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "videoFormat must be video or shorts"})
			return
		}
		upd.VideoFormat = req.VideoFormat
	}

	if upd.Title == nil && upd.YoutubeURL == nil && upd.ThumbnailURL == nil && upd.VideoType == nil && upd.VideoFormat == nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "nothing to update"})
		return
	}

	ok, err := h.Repo.Update(c.Request.Context(), c.Param("id"), upd)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "update failed"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "video not found"})
		return
	}

	v, err := h.Repo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil || v == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "video updated", "data": v})
}

type updateTypeReq struct {
	VideoType string `json:"videoType"`
}

func (h *Handler) updateType(c *gin.Context) {
	var req updateTypeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid json"})
		return
	}
	if !models.ValidVideoType(req.VideoType) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "videoType must be craft, lecture or other"})
		return
	}

	ok, err := h.Repo.Update(c.Request.Context(), c.Param("id"), VideoUpdate{VideoType: &req.VideoType})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "update failed"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "video not found"})
		return
	}

	v, err := h.Repo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil || v == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "video type updated", "data": v})
}

func (h *Handler) delete(c *gin.Context) {
	ok, err := h.Repo.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "delete failed"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "video not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "video deleted"})
}

func parseInt(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
