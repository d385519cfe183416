package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"portal/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	logger.SetOutput(io.Discard)
}

func token(t *testing.T, sub, role string, secret []byte) string {
	t.Helper()
	tok, err := SignToken(Claims{
		Name:        "Asha",
		Role:        role,
		Designation: "Employee",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}, secret)
	require.NoError(t, err)
	return tok
}

func protectedRouter() *gin.Engine {
	r := gin.New()
	r.GET("/admin", RequireRole("admin", "founder"), func(c *gin.Context) {
		u := CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{"id": u.ID, "role": u.Role, "name": u.Name, "designation": u.Designation})
	})
	return r
}

func TestRequireRole(t *testing.T) {
	SetJWTSecret("test-secret")
	t.Cleanup(func() { SetJWTSecret("") })
	secret := []byte("test-secret")

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"bad scheme", "Token abc", http.StatusUnauthorized},
		{"garbage token", "Bearer abc", http.StatusUnauthorized},
		{"wrong secret", "Bearer " + token(t, "u1", "admin", []byte("other")), http.StatusUnauthorized},
		{"no subject", "Bearer " + token(t, "", "admin", secret), http.StatusUnauthorized},
		{"no role", "Bearer " + token(t, "u1", "", secret), http.StatusForbidden},
		{"wrong role", "Bearer " + token(t, "u1", "employee", secret), http.StatusForbidden},
		{"allowed", "Bearer " + token(t, "u1", "founder", secret), http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			protectedRouter().ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestRequireRole_CookieAndIdentity(t *testing.T) {
	SetJWTSecret("test-secret")
	t.Cleanup(func() { SetJWTSecret("") })

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: token(t, "u42", "admin", []byte("test-secret"))})
	w := httptest.NewRecorder()
	protectedRouter().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":"u42","role":"admin","name":"Asha","designation":"Employee"}`, w.Body.String())
}

func TestParseToken_RejectsNoneAlgorithm(t *testing.T) {
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		Role:             "admin",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u1"},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = ParseToken(unsigned, []byte("k"))
	assert.Error(t, err)
}

func TestGetJWTSecret_DevFallback(t *testing.T) {
	SetJWTSecret("")
	assert.Equal(t, []byte(devJWTSecret), GetJWTSecret())
	SetJWTSecret("s")
	assert.Equal(t, []byte("s"), GetJWTSecret())
	SetJWTSecret("")
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(0.001, 2)
	r := gin.New()
	r.Use(rl.Handler())
	r.POST("/x", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/x", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)

	// a different client has its own bucket
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/x", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRateLimiter_CleanupDropsIdle(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	now := time.Now()
	rl.now = func() time.Time { return now }
	rl.getLimiter("a")

	now = now.Add(2 * time.Minute)
	rl.getLimiter("b")
	rl.Cleanup(time.Minute)

	assert.Len(t, rl.visitors, 1)
	assert.Contains(t, rl.visitors, "b")
}

func TestRequestLogger_PassesThrough(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger())
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
