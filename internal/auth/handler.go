package auth

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type Handler struct {
	Repo   *Repo
	Tokens TokenService
}

func NewHandler(repo *Repo, tokens TokenService) *Handler {
	return &Handler{Repo: repo, Tokens: tokens}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/login", h.login)
	rg.GET("/me", AuthMiddleware(h.Tokens), h.me)

	admin := rg.Group("/admin", AuthMiddleware(h.Tokens), AdminOnly())
	admin.GET("/all", h.list)
	admin.POST("", h.create)
	admin.GET("/:id", h.getByID)
	admin.PUT("/:id", h.update)
	admin.DELETE("/:id", h.delete)
}

// userResponse is a User without the password hash.
type userResponse struct {
	ID          string `json:"id"`
	UserID      string `json:"userId"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phoneNumber"`
	UserType    string `json:"userType"`
	CreatedAt   string `json:"createdAt"`
}

func toUserResponse(u *User) userResponse {
	return userResponse{
		ID:          u.ID,
		UserID:      u.LoginID,
		Name:        u.Name,
		PhoneNumber: u.PhoneNumber,
		UserType:    u.UserType,
		CreatedAt:   u.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

type loginReq struct {
	UserID   string `json:"userId"`
	Password string `json:"password"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid json"})
		return
	}

	loginID := strings.TrimSpace(req.UserID)
	if loginID == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "userId and password required"})
		return
	}

	u, err := h.Repo.GetByLoginID(c.Request.Context(), loginID)
	if err != nil || u == nil {
		// don't reveal which part failed
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "invalid credentials"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "invalid credentials"})
		return
	}

	token, exp, err := h.Tokens.Sign(u)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "token failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "login successful",
		"token":      token,
		"expires_at": exp.UTC().Format("2006-01-02T15:04:05Z07:00"),
		"data":       toUserResponse(u),
	})
}

func (h *Handler) me(c *gin.Context) {
	claims := MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "authentication required"})
		return
	}

	u, err := h.Repo.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "get failed"})
		return
	}
	if u == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "user not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": toUserResponse(u)})
}

func (h *Handler) list(c *gin.Context) {
	page := parseInt(c.Query("page"), 1)
	limit := parseInt(c.Query("limit"), 10)
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	total, err := h.Repo.Count(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "count failed"})
		return
	}

	users, err := h.Repo.List(c.Request.Context(), limit, (page-1)*limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "list failed"})
		return
	}

	out := make([]userResponse, 0, len(users))
	for i := range users {
		out = append(out, toUserResponse(&users[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"count":      len(out),
		"totalCount": total,
		"totalPages": (total + limit - 1) / limit,
		"page":       page,
		"data":       out,
	})
}

type createReq struct {
	UserID      string `json:"userId"`
	Password    string `json:"password"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phoneNumber"`
	UserType    string `json:"userType"`
}

func (h *Handler) create(c *gin.Context) {
	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid json"})
		return
	}

	loginID := strings.TrimSpace(req.UserID)
	name := strings.TrimSpace(req.Name)
	if loginID == "" || req.Password == "" || name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "userId, password and name required"})
		return
	}
	if len(req.Password) < 6 || len(req.Password) > 72 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "password must be 6-72 chars"})
		return
	}

	userType := req.UserType
	if userType == "" {
		userType = UserTypeCustomer
	}
	if !ValidUserType(userType) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "userType must be admin or customer"})
		return
	}

	if u, _ := h.Repo.GetByLoginID(c.Request.Context(), loginID); u != nil {
		c.JSON(http.StatusConflict, gin.H{"success": false, "message": "userId already exists"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "hash failed"})
		return
	}

	u := User{
		ID:           uuid.NewString(),
		LoginID:      loginID,
		PasswordHash: string(hash),
		Name:         name,
		PhoneNumber:  strings.TrimSpace(req.PhoneNumber),
		UserType:     userType,
	}

	if err := h.Repo.Create(c.Request.Context(), u); err != nil {
		// unique constraint also triggers here in races
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "create user failed"})
		return
	}

	created, err := h.Repo.GetByID(c.Request.Context(), u.ID)
	if err != nil || created == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "create user failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "user created",
		"data":    toUserResponse(created),
	})
}

func (h *Handler) getByID(c *gin.Context) {
	u, err := h.Repo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "get failed"})
		return
	}
	if u == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "user not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": toUserResponse(u)})
}

type updateReq struct {
	Password    *string `json:"password"`
	Name        *string `json:"name"`
	PhoneNumber *string `json:"phoneNumber"`
	UserType    *string `json:"userType"`
}

func (h *Handler) update(c *gin.Context) {
	var req updateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid json"})
		return
	}

	var upd UserUpdate
	if req.Password != nil {
		if len(*req.Password) < 6 || len(*req.Password) > 72 {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "password must be 6-72 chars"})
			return
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "hash failed"})
			return
		}
		s := string(hash)
		upd.PasswordHash = &s
	}
	upd.Name = req.Name
	upd.PhoneNumber = req.PhoneNumber
	if req.UserType != nil {
		if !ValidUserType(*req.UserType) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "userType must be admin or customer"})
			return
		}
		upd.UserType = req.UserType
	}

	if upd.PasswordHash == nil && upd.Name == nil && upd.PhoneNumber == nil && upd.UserType == nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "nothing to update"})
		return
	}

	ok, err := h.Repo.Update(c.Request.Context(), c.Param("id"), upd)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "update failed"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "user not found"})
		return
	}

	u, err := h.Repo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil || u == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "update failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "user updated", "data": toUserResponse(u)})
}

func (h *Handler) delete(c *gin.Context) {
	ok, err := h.Repo.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "delete failed"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "user not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "user deleted"})
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
