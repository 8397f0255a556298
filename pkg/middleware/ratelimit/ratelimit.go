package ratelimit

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	appErrors "github.com/OB-39/Marathon-Chalenge-sub000/pkg/errors"
	"github.com/OB-39/Marathon-Chalenge-sub000/pkg/response"
)

const (
	cleanupThreshold = 10000
	staleAfter       = 10 * time.Minute
)

type ipEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPLimiter hands out one token bucket per client IP and prunes idle buckets
// once the map grows past cleanupThreshold.
type IPLimiter struct {
	mu  sync.Mutex
	ips map[string]*ipEntry
	r   rate.Limit
	b   int
	now func() time.Time
}

// NewIPLimiter builds a limiter allowing rps requests per second with the given burst.
func NewIPLimiter(rps float64, burst int) *IPLimiter {
	if rps <= 0 {
		rps = 5
	}
	if burst <= 0 {
		burst = 10
	}
	return &IPLimiter{ips: make(map[string]*ipEntry), r: rate.Limit(rps), b: burst, now: time.Now}
}

// Limiter returns the bucket for ip.
func (l *IPLimiter) Limiter(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if len(l.ips) > cleanupThreshold {
		for key, e := range l.ips {
			if now.Sub(e.lastSeen) > staleAfter {
				delete(l.ips, key)
			}
		}
	}

	e, ok := l.ips[ip]
	if !ok {
		e = &ipEntry{limiter: rate.NewLimiter(l.r, l.b)}
		l.ips[ip] = e
	}
	e.lastSeen = now
	return e.limiter
}

// Middleware rejects requests once the caller's bucket is empty.
func (l *IPLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Limiter(c.ClientIP()).Allow() {
			response.Error(c, appErrors.ErrTooManyRequests)
			c.Abort()
			return
		}
		c.Next()
	}
}
