package middleware

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/gylounge/internal/helpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeValidator struct {
	claims *helpers.CustomClaims
	err    error
	got    string
}

func (f *fakeValidator) ValidateToken(token string) (*helpers.CustomClaims, error) {
	f.got = token
	return f.claims, f.err
}

func adminRouter(v TokenValidator) *gin.Engine {
	r := gin.New()
	r.GET("/admin", AdminAuth(v, discardLogger()), func(c *gin.Context) {
		admin := c.MustGet(AdminClaimsKey).(*helpers.AdminClaims)
		c.String(http.StatusOK, admin.UserID)
	})
	return r
}

func claimsWithRoles(roles ...string) *helpers.CustomClaims {
	c := &helpers.CustomClaims{Email: "ops@gylounge.com"}
	c.Subject = "user-1"
	c.AppMetadata.Roles = roles
	return c
}

func TestAdminAuth(t *testing.T) {
	tests := []struct {
		name      string
		validator TokenValidator
		header    string
		cookie    string
		want      int
	}{
		{"not configured", nil, "Bearer abc", "", http.StatusServiceUnavailable},
		{"missing token", &fakeValidator{claims: claimsWithRoles("admin")}, "", "", http.StatusUnauthorized},
		{"wrong scheme", &fakeValidator{claims: claimsWithRoles("admin")}, "Basic abc", "", http.StatusUnauthorized},
		{"invalid token", &fakeValidator{err: errors.New("expired")}, "Bearer abc", "", http.StatusUnauthorized},
		{"not admin", &fakeValidator{claims: claimsWithRoles("staff")}, "Bearer abc", "", http.StatusForbidden},
		{"admin header", &fakeValidator{claims: claimsWithRoles("admin")}, "bearer abc", "", http.StatusOK},
		{"admin cookie", &fakeValidator{claims: claimsWithRoles("admin")}, "", "abc", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "access_token", Value: tt.cookie})
			}
			w := httptest.NewRecorder()
			adminRouter(tt.validator).ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusOK {
				assert.Equal(t, "user-1", w.Body.String())
				assert.Equal(t, "abc", tt.validator.(*fakeValidator).got)
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(RequestIDKey)) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Equal(t, w.Header().Get("X-Request-ID"), w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-42")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-42", w.Body.String())
}

func TestErrorHandlerHidesDetails(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), ErrorHandler(discardLogger()))
	r.GET("/", func(c *gin.Context) { _ = c.Error(errors.New("pq: relation does not exist")) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "relation")
	assert.Contains(t, w.Body.String(), "request_id")
}

func TestRateLimitWithoutRedis(t *testing.T) {
	r := gin.New()
	r.POST("/booking", RateLimit(nil, RateLimitConfig{Capacity: 1}, discardLogger()), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/booking", nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
	}
}

func csrfRouter(key []byte) *gin.Engine {
	r := gin.New()
	r.POST("/booking", CSRF(key, false, []string{"http://localhost:3000"}), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestCSRF(t *testing.T) {
	key := []byte(strings.Repeat("k", 32))

	form := func() *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/booking", strings.NewReader("name=Ama"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return req
	}

	w := httptest.NewRecorder()
	csrfRouter(nil).ServeHTTP(w, form())
	assert.Equal(t, http.StatusNoContent, w.Code, "disabled without a key")

	w = httptest.NewRecorder()
	csrfRouter(key).ServeHTTP(w, form())
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "invalid csrf token")

	req := httptest.NewRequest(http.MethodPost, "/booking", strings.NewReader(`{"name":"Ama"}`))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	csrfRouter(key).ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code, "json is exempt")
}

func TestTrustedHosts(t *testing.T) {
	require.Equal(t, []string{"localhost:3000", "gylounge.com"},
		trustedHosts([]string{"http://localhost:3000", "gylounge.com"}))
}
