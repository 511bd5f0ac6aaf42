package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruanmelo/agenda-api/internal/handler"
	"github.com/ruanmelo/agenda-api/internal/model"
	"github.com/ruanmelo/agenda-api/pkg/auth"
)

func setupAuthRouter(t *testing.T, role model.UserRole) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	jwtSvc := auth.NewJWTService("test-secret", time.Hour)
	m := NewAuthMiddleware(jwtSvc)

	u := &model.User{Email: "user@example.com", Role: role}
	u.ID = uuid.New()
	token, err := jwtSvc.GenerateToken(u)
	require.NoError(t, err)

	r := gin.New()
	protected := r.Group("/", m.Authenticate())
	protected.GET("/me", func(c *gin.Context) {
		session := handler.SessionFromContext(c)
		c.JSON(http.StatusOK, gin.H{"email": session.Email})
	})
	protected.GET("/admin", m.RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r, token
}

func doRequest(r *gin.Engine, path, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthenticate(t *testing.T) {
	r, token := setupAuthRouter(t, model.UserRoleClient)

	assert.Equal(t, http.StatusOK, doRequest(r, "/me", "Bearer "+token).Code)
	assert.Equal(t, http.StatusUnauthorized, doRequest(r, "/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, doRequest(r, "/me", token).Code)
	assert.Equal(t, http.StatusUnauthorized, doRequest(r, "/me", "Bearer garbage").Code)
	assert.Equal(t, http.StatusUnauthorized, doRequest(r, "/me", "Basic "+token).Code)
}

func TestRequireAdmin(t *testing.T) {
	r, clientToken := setupAuthRouter(t, model.UserRoleClient)
	assert.Equal(t, http.StatusForbidden, doRequest(r, "/admin", "Bearer "+clientToken).Code)

	r, adminToken := setupAuthRouter(t, model.UserRoleAdmin)
	assert.Equal(t, http.StatusOK, doRequest(r, "/admin", "Bearer "+adminToken).Code)
}
