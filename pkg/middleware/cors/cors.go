package cors

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// matcher answers whether an Origin header is allowed. An empty list or a "*"
// entry allows every origin.
type matcher struct {
	any     bool
	origins map[string]struct{}
}

func newMatcher(allowedOrigins []string) matcher {
	m := matcher{origins: make(map[string]struct{}, len(allowedOrigins))}
	for _, origin := range allowedOrigins {
		origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		if origin == "*" {
			m.any = true
			continue
		}
		if origin != "" {
			m.origins[strings.ToLower(origin)] = struct{}{}
		}
	}
	if len(m.origins) == 0 {
		m.any = true
	}
	return m
}

func (m matcher) allows(origin string) bool {
	if m.any {
		return true
	}
	_, ok := m.origins[strings.ToLower(strings.TrimRight(origin, "/"))]
	return ok
}

// New returns a CORS middleware for the REST API. Browsers send the cron
// secret and bearer token as custom headers, so both are allowed.
func New(allowedOrigins []string) gin.HandlerFunc {
	m := newMatcher(allowedOrigins)

	return func(c *gin.Context) {
		h := c.Writer.Header()
		origin := c.GetHeader("Origin")
		switch {
		case origin != "" && m.allows(origin):
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
		case origin == "" && m.any:
			h.Set("Access-Control-Allow-Origin", "*")
		}

		h.Add("Vary", "Origin")
		h.Set("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Requested-With, X-Request-ID, X-Cron-Secret")
		h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		h.Set("Access-Control-Max-Age", "600")
		h.Set("Access-Control-Expose-Headers", "X-Request-ID, Content-Disposition")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// OriginChecker applies the same allow list to WebSocket upgrades. Requests
// without an Origin header come from non-browser clients and are accepted.
func OriginChecker(allowedOrigins []string) func(*http.Request) bool {
	m := newMatcher(allowedOrigins)
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || m.allows(origin)
	}
}
