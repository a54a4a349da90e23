package middleware

import (
	"net/http"
	"net/http/httptest"
	"puspa_backend/internal/config"
	"puspa_backend/internal/util"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "middleware-test-secret"

func newRouter(roles ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	cfg := &config.Config{JWT: config.JWTConfig{Secret: secret}}

	handlers := []gin.HandlerFunc{AuthMiddleware(cfg)}
	if roles != nil {
		handlers = append(handlers, RoleMiddleware(roles...))
	}
	handlers = append(handlers, func(c *gin.Context) {
		user := util.GetUserFromContext(c)
		c.JSON(http.StatusOK, gin.H{"user": user.UserID, "token": util.GetTokenFromContext(c)})
	})
	r.GET("/x", handlers...)
	return r
}

func sign(t *testing.T, role, key string, ttl time.Duration) string {
	t.Helper()
	tok, err := util.GenerateJWT(3, role, "a@puspa.test", key, ttl)
	require.NoError(t, err)
	return tok
}

func serve(r *gin.Engine, path, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	r := newRouter()
	valid := sign(t, "orangtua", secret, time.Hour)

	tests := []struct {
		name   string
		path   string
		header string
		code   int
	}{
		{"bearer", "/x", "Bearer " + valid, http.StatusOK},
		{"query", "/x?token=" + valid, "", http.StatusOK},
		{"missing", "/x", "", http.StatusUnauthorized},
		{"wrong key", "/x", "Bearer " + sign(t, "orangtua", "other-secret", time.Hour), http.StatusUnauthorized},
		{"expired", "/x", "Bearer " + sign(t, "orangtua", secret, -time.Minute), http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(r, tt.path, tt.header)
			assert.Equal(t, tt.code, w.Code)
		})
	}

	w := serve(r, "/x", "Bearer "+valid)
	assert.Contains(t, w.Body.String(), valid)
}

func TestRoleMiddleware(t *testing.T) {
	r := newRouter("terapis")

	assert.Equal(t, http.StatusOK, serve(r, "/x", "Bearer "+sign(t, "terapis", secret, time.Hour)).Code)
	assert.Equal(t, http.StatusOK, serve(r, "/x", "Bearer "+sign(t, util.RoleAdmin, secret, time.Hour)).Code)
	assert.Equal(t, http.StatusForbidden, serve(r, "/x", "Bearer "+sign(t, "orangtua", secret, time.Hour)).Code)
}
