package middleware

import (
	"net/http"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/gin-gonic/gin"
)

const (
	corsAllowMethods  = "GET,POST,PUT,PATCH,DELETE,OPTIONS"
	corsAllowHeaders  = "Authorization, Content-Type, X-Request-Id"
	corsExposeHeaders = "X-Request-Id, Retry-After"
	corsMaxAge        = "600"
)

// CORS echoes allowed origins back with credentials enabled.
// Entries may be exact origins, "*" or a subdomain pattern such as "https://*.example.com".
// Preflight requests are answered here and never reach handlers.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	policy := newOriginPolicy(allowedOrigins)

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && policy.allows(origin) {
			h := c.Writer.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Add("Vary", "Origin")
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Set("Access-Control-Allow-Methods", corsAllowMethods)
			h.Set("Access-Control-Allow-Headers", corsAllowHeaders)
			h.Set("Access-Control-Expose-Headers", corsExposeHeaders)
			h.Set("Access-Control-Max-Age", corsMaxAge)
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

type originPolicy struct {
	any      bool
	exact    mapset.Set[string]
	suffixes []wildcard
}

type wildcard struct {
	scheme string
	suffix string
}

func newOriginPolicy(origins []string) originPolicy {
	p := originPolicy{exact: mapset.NewThreadUnsafeSet[string]()}
	for _, raw := range origins {
		o := strings.TrimRight(strings.TrimSpace(raw), "/")
		switch {
		case o == "":
		case o == "*":
			p.any = true
		case strings.Contains(o, "://*."):
			scheme, host, _ := strings.Cut(o, "://*")
			p.suffixes = append(p.suffixes, wildcard{scheme: scheme + "://", suffix: host})
		default:
			p.exact.Add(o)
		}
	}
	return p
}

func (p originPolicy) allows(origin string) bool {
	if p.any || p.exact.Contains(origin) {
		return true
	}
	for _, w := range p.suffixes {
		rest, ok := strings.CutPrefix(origin, w.scheme)
		if ok && len(rest) > len(w.suffix) && strings.HasSuffix(rest, w.suffix) {
			return true
		}
	}
	return false
}
