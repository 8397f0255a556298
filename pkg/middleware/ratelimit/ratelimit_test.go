package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestMiddlewareBlocksAfterBurst(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter := NewIPLimiter(0.001, 2)
	r := gin.New()
	r.Use(limiter.Middleware())
	r.POST("/submissions", func(c *gin.Context) { c.Status(http.StatusCreated) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/submissions", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusCreated, http.StatusCreated, http.StatusTooManyRequests}, codes)

	req := httptest.NewRequest(http.MethodPost, "/submissions", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestLimiterReusesBucketPerIP(t *testing.T) {
	limiter := NewIPLimiter(1, 1)
	assert.Same(t, limiter.Limiter("1.1.1.1"), limiter.Limiter("1.1.1.1"))
	assert.NotSame(t, limiter.Limiter("1.1.1.1"), limiter.Limiter("2.2.2.2"))
}
