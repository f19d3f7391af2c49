package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"blackwallet.backend/pkg/jwt"
	"blackwallet.backend/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw...)
	return r
}

func TestAuthMiddleware(t *testing.T) {
	svc := jwt.NewJWTService("secret", time.Minute, time.Hour)
	userID := uuid.New()
	pair, err := svc.GenerateTokenPair(userID, "a@mail.com")
	require.NoError(t, err)

	r := newTestRouter(AuthMiddleware(svc))
	r.GET("/me", func(c *gin.Context) {
		id, ok := GetUserID(c)
		require.True(t, ok)
		email, _ := GetUserEmail(c)
		ctxUser, _ := c.Request.Context().Value(logger.UserIDKey).(string)
		c.JSON(http.StatusOK, gin.H{"id": id, "email": email, "ctx": ctxUser})
	})

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"missing header", "", http.StatusUnauthorized, "Authorization header is required"},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, "Invalid authorization format"},
		{"garbage token", "Bearer nope", http.StatusUnauthorized, "Invalid token"},
		{"refresh token rejected", "Bearer " + pair.RefreshToken, http.StatusUnauthorized, "Invalid token"},
		{"access token", "Bearer " + pair.AccessToken, http.StatusOK, userID.String()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set(AuthorizationHeader, tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), tt.body)
		})
	}
}

func TestGetUserID_Missing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	_, ok := GetUserID(c)
	assert.False(t, ok)

	c.Set(UserIDKey, "not-a-uuid")
	_, ok = GetUserID(c)
	assert.False(t, ok)
}

func TestRequestIDMiddleware(t *testing.T) {
	r := newTestRouter(RequestIDMiddleware())
	r.GET("/x", func(c *gin.Context) {
		v, _ := c.Request.Context().Value(logger.RequestIDKey).(string)
		c.String(http.StatusOK, v)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-123", w.Body.String())
	assert.Equal(t, "req-123", w.Header().Get(RequestIDHeader))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	_, err := uuid.Parse(w.Body.String())
	assert.NoError(t, err)
}

func TestLoggerMiddleware_PassesThrough(t *testing.T) {
	r := newTestRouter(RequestIDMiddleware(), LoggerMiddleware())
	r.GET("/api/v1/approve", func(c *gin.Context) { c.Status(http.StatusTeapot) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/approve?code=secret", nil))
	assert.Equal(t, http.StatusTeapot, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
