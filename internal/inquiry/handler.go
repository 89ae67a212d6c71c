package inquiry

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"campworks/internal/auth"
	"campworks/pkg/models"
)

type Handler struct {
	Repo   *Repo
	Users  *auth.Repo
	Tokens auth.TokenService
}

func NewHandler(repo *Repo, users *auth.Repo, tokens auth.TokenService) *Handler {
	return &Handler{Repo: repo, Users: users, Tokens: tokens}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.list)
	rg.GET("/:id", h.getByID)
	rg.POST("", auth.AuthMiddleware(h.Tokens), h.create)
	rg.DELETE("/:id", auth.AuthMiddleware(h.Tokens), h.delete)

	admin := rg.Group("", auth.AuthMiddleware(h.Tokens), auth.AdminOnly())
	admin.PUT("/:id/answer", h.answer)
	admin.DELETE("/:id/answer", h.clearAnswer)
	admin.PATCH("/:id/status", h.updateStatus)
}

func (h *Handler) list(c *gin.Context) {
	page := parseInt(c.Query("page"), 1)
	limit := parseInt(c.Query("limit"), 20)
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	total, err := h.Repo.Count(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "count failed"})
		return
	}

	inquiries, err := h.Repo.List(c.Request.Context(), limit, (page-1)*limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "list failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"count":      len(inquiries),
		"totalCount": total,
		"totalPages": (total + limit - 1) / limit,
		"page":       page,
		"data":       inquiries,
	})
}

// getByID bumps the view counter before returning the inquiry, matching the
// board's "views" column semantics.
func (h *Handler) getByID(c *gin.Context) {
	id := c.Param("id")
	q, err := h.Repo.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "get failed"})
		return
	}
	if q == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "inquiry not found"})
		return
	}

	if err := h.Repo.IncrementViews(c.Request.Context(), id); err == nil {
		q.Views++
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": q})
}

type createReq struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
}

func (h *Handler) create(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "authentication required"})
		return
	}

	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid json"})
		return
	}

	title := strings.TrimSpace(req.Title)
	content := strings.TrimSpace(req.Content)
	if title == "" || content == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "title and content required"})
		return
	}

	u, err := h.Users.GetByID(c.Request.Context(), claims.UserID)
	if err != nil || u == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "unknown user"})
		return
	}

	phone := strings.TrimSpace(req.Phone)
	if phone == "" {
		phone = u.PhoneNumber
	}

	q := models.Inquiry{
		Title:      title,
		Content:    content,
		AuthorID:   u.ID,
		AuthorName: u.Name,
		Email:      strings.TrimSpace(req.Email),
		Phone:      phone,
	}
	if err := h.Repo.Create(c.Request.Context(), &q); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "create inquiry failed"})
		return
	}

	created, err := h.Repo.GetByID(c.Request.Context(), q.ID)
	if err != nil || created == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "create inquiry failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "inquiry created", "data": created})
}

type answerReq struct {
	Answer string `json:"answer"`
}

func (h *Handler) answer(c *gin.Context) {
	claims := auth.MustGetClaims(c)

	var req answerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid json"})
		return
	}
	answer := strings.TrimSpace(req.Answer)
	if answer == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "answer required"})
		return
	}

	ok, err := h.Repo.Answer(c.Request.Context(), c.Param("id"), answer, claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "answer failed"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "inquiry not found"})
		return
	}

	q, err := h.Repo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil || q == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "answer failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "inquiry answered", "data": q})
}

func (h *Handler) clearAnswer(c *gin.Context) {
	ok, err := h.Repo.ClearAnswer(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "clear answer failed"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "inquiry not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "answer removed"})
}

type statusReq struct {
	Status string `json:"status"`
}

func (h *Handler) updateStatus(c *gin.Context) {
	var req statusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid json"})
		return
	}
	if !models.ValidInquiryStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "status must be pending or answered"})
		return
	}

	ok, err := h.Repo.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "update failed"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "inquiry not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "status updated"})
}

// delete allows the author to remove their own inquiry; admins can remove any.
func (h *Handler) delete(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "authentication required"})
		return
	}

	q, err := h.Repo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "delete failed"})
		return
	}
	if q == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "inquiry not found"})
		return
	}
	if q.AuthorID != claims.UserID && !claims.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "not your inquiry"})
		return
	}

	ok, err := h.Repo.Delete(c.Request.Context(), q.ID)
	if err != nil || !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "delete failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "inquiry deleted"})
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
