package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"perfume-catalog/internal/core/auth"
	"perfume-catalog/internal/core/ratelimit"
	"perfume-catalog/internal/domain"
	resp "perfume-catalog/internal/transport/http/response"
)

func init() { gin.SetMode(gin.TestMode) }

var jwter = &auth.JWTer{Secret: []byte("mw-secret"), Issuer: "test", TTL: time.Hour}

func tokenForRole(t *testing.T, roles ...string) string {
	t.Helper()
	tok, _, err := jwter.Issue(1, "tester", roles)
	require.NoError(t, err)
	return "Bearer " + tok
}

func guarded(a auth.Access) *gin.Engine {
	r := gin.New()
	r.GET("/x", Guard(jwter, a), func(c *gin.Context) {
		name := "anonymous"
		if cl, ok := ClaimsFrom(c); ok {
			name = cl.Username()
		}
		c.String(http.StatusOK, name)
	})
	return r
}

func do(r http.Handler, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGuard(t *testing.T) {
	admins := auth.RequiresAnyOf(domain.RoleAdmin)

	tests := []struct {
		name   string
		access auth.Access
		header string
		status int
		body   string
	}{
		{"public anonymous", auth.Public, "", http.StatusOK, "anonymous"},
		{"public with valid token keeps claims", auth.Public, tokenForRole(t, domain.RoleUser), http.StatusOK, "tester"},
		{"public with invalid token", auth.Public, "Bearer nope", http.StatusUnauthorized, ""},
		{"protected anonymous", admins, "", http.StatusUnauthorized, ""},
		{"role denied", admins, tokenForRole(t, domain.RoleUser), http.StatusForbidden, ""},
		{"role matched", admins, tokenForRole(t, domain.RoleAdmin), http.StatusOK, "tester"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(guarded(tt.access), tt.header)
			require.Equal(t, tt.status, w.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, w.Body.String())
				return
			}
			var body resp.ErrorBody
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.status, body.Status)
			assert.Equal(t, "/x", body.Path)
			assert.NotEmpty(t, body.Message)
		})
	}
}

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (ratelimit.Result, error) {
	return ratelimit.Result{}, errors.New("redis down")
}

func TestThrottle(t *testing.T) {
	r := gin.New()
	r.GET("/x", Throttle(ratelimit.NewMemory(1, time.Minute), "login", zap.NewNop()), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	assert.Equal(t, http.StatusNoContent, do(r, "").Code)
	w := do(r, "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	open := gin.New()
	open.GET("/x", Throttle(failingLimiter{}, "login", zap.NewNop()), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	assert.Equal(t, http.StatusNoContent, do(open, "").Code)
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(KeyRequestID)) })

	w := do(r, "")
	assert.Len(t, w.Body.String(), 36)
	assert.Equal(t, w.Body.String(), w.Header().Get(HeaderRequestID))

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(HeaderRequestID, "abc")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc", w.Body.String())
}

func TestMaskQuery(t *testing.T) {
	got := maskQuery(map[string][]string{"Password": {"x"}, "q": {"rose"}})
	assert.Equal(t, []string{"****"}, got["Password"])
	assert.Equal(t, []string{"rose"}, got["q"])
}

func TestMetrics(t *testing.T) {
	r := gin.New()
	r.Use(Metrics())
	r.GET("/metered/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for _, p := range []string{"/metered/1", "/metered/2", "/nowhere"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, p, nil))
	}

	w := httptest.NewRecorder()
	promhttp.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := w.Body.String()
	// 两次请求落在同一个路由模板上
	assert.Contains(t, body, `perfume_http_requests_total{method="GET",route="/metered/:id",status="204"} 2`)
	assert.Contains(t, body, `perfume_http_requests_total{method="GET",route="unmatched",status="404"}`)
	assert.Contains(t, body, `perfume_http_request_duration_seconds_count{method="GET",route="/metered/:id"} 2`)
	assert.Contains(t, body, "perfume_http_requests_in_flight 0")
	assert.NotContains(t, body, `route="/metered/1"`)
}
