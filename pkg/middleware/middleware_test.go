package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimitPerRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := NewRateLimiter(0.001, 2, time.Minute)
	t.Cleanup(rl.Stop)

	r := gin.New()
	r.POST("/api/auth/login", rl.Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.POST("/api/auth/send-otp", rl.Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	do := func(path string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, path, nil)
		req.RemoteAddr = "10.0.0.1:1234"
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, do("/api/auth/login"))
	assert.Equal(t, http.StatusOK, do("/api/auth/login"))
	assert.Equal(t, http.StatusTooManyRequests, do("/api/auth/login"))
	// 不同路由各自计数
	assert.Equal(t, http.StatusOK, do("/api/auth/send-otp"))
}

func TestCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS([]string{"https://unisphere.example.com"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	tests := []struct {
		name   string
		method string
		origin string
		allow  string
		status int
	}{
		{name: "allowed", method: http.MethodGet, origin: "https://unisphere.example.com", allow: "https://unisphere.example.com", status: http.StatusOK},
		{name: "foreign", method: http.MethodGet, origin: "https://evil.example.com", allow: "", status: http.StatusOK},
		{name: "preflight", method: http.MethodOptions, origin: "https://unisphere.example.com", allow: "https://unisphere.example.com", status: http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(tt.method, "/x", nil)
			req.Header.Set("Origin", tt.origin)
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.allow, w.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestBodyLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/x", BodyLimit(8), func(c *gin.Context) {
		var body map[string]string
		if err := c.ShouldBindJSON(&body); err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{"caption":"far too long"}`)))
	require.Equal(t, http.StatusBadRequest, w.Code)
}
