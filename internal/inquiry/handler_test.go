package inquiry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campworks/internal/auth"
)

func testRouter(t *testing.T) (*gin.Engine, *Handler, auth.TokenService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testDB(t)
	tokens := auth.TokenService{Secret: []byte("test-secret"), Issuer: "test", Duration: time.Hour}
	h := NewHandler(NewRepo(db), auth.NewRepo(db), tokens)

	router := gin.New()
	h.RegisterRoutes(router.Group("/api/inquiries"))
	return router, h, tokens
}

func signFor(t *testing.T, tokens auth.TokenService, id, userType string) string {
	t.Helper()
	token, _, err := tokens.Sign(&auth.User{ID: id, LoginID: id + "-login", UserType: userType})
	require.NoError(t, err)
	return token
}

func do(router *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreateRequiresAuth(t *testing.T) {
	router, _, _ := testRouter(t)
	w := do(router, http.MethodPost, "/api/inquiries", "", `{"title":"q","content":"c"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateUsesAuthorProfile(t *testing.T) {
	router, h, tokens := testRouter(t)
	seedUser(t, h.Repo.DB, "u1", "Kim")
	token := signFor(t, tokens, "u1", auth.UserTypeCustomer)

	w := do(router, http.MethodPost, "/api/inquiries", token,
		`{"title":"solar setup","content":"which panel?"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	inquiries, err := h.Repo.List(context.Background(), 10, 0)
	require.NoError(t, err)
	require.Len(t, inquiries, 1)
	assert.Equal(t, "u1", inquiries[0].AuthorID)
	assert.Equal(t, "Kim", inquiries[0].AuthorName)
}

func TestDeleteOnlyAuthorOrAdmin(t *testing.T) {
	router, h, tokens := testRouter(t)
	seedUser(t, h.Repo.DB, "u1", "Kim")
	seedUser(t, h.Repo.DB, "u2", "Lee")
	q := seedInquiry(t, h.Repo, "u1", "mine")

	// a stranger cannot delete it
	w := do(router, http.MethodDelete, "/api/inquiries/"+q.ID, signFor(t, tokens, "u2", auth.UserTypeCustomer), "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	// the author can
	w = do(router, http.MethodDelete, "/api/inquiries/"+q.ID, signFor(t, tokens, "u1", auth.UserTypeCustomer), "")
	assert.Equal(t, http.StatusOK, w.Code)

	// an admin can delete anyone's
	q2 := seedInquiry(t, h.Repo, "u1", "also mine")
	w = do(router, http.MethodDelete, "/api/inquiries/"+q2.ID, signFor(t, tokens, "admin1", auth.UserTypeAdmin), "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAnswerRequiresAdmin(t *testing.T) {
	router, h, tokens := testRouter(t)
	seedUser(t, h.Repo.DB, "u1", "Kim")
	q := seedInquiry(t, h.Repo, "u1", "pending")

	w := do(router, http.MethodPut, "/api/inquiries/"+q.ID+"/answer",
		signFor(t, tokens, "u1", auth.UserTypeCustomer), `{"answer":"nope"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestGetBumpsViews(t *testing.T) {
	router, h, _ := testRouter(t)
	seedUser(t, h.Repo.DB, "u1", "Kim")
	q := seedInquiry(t, h.Repo, "u1", "popular")

	w := do(router, http.MethodGet, "/api/inquiries/"+q.ID, "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"views":1`)

	w = do(router, http.MethodGet, "/api/inquiries/"+q.ID, "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"views":2`)
}
