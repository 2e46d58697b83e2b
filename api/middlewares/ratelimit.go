package middlewares

import (
	"net/http"
	"sync"
	"time"

	ttlworker "github.com/FloatTech/ttl"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/moyoez/fileshare-go/tool"
)

// limiterTTL bounds how long an idle client's limiter is remembered, so the
// per-IP state cannot grow without bound under IP churn.
const limiterTTL = 10 * time.Minute

// RateLimit returns a per-client-IP limiter in requests per second. The
// reverse proxy normally rate-limits ahead of this service; this is the
// fallback for running without one. rps <= 0 disables limiting.
func RateLimit(rps int) gin.HandlerFunc {
	if rps <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	var mu sync.Mutex
	limiters := ttlworker.NewCache[string, *rate.Limiter](limiterTTL)
	limiterFor := func(ip string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()
		if l := limiters.Get(ip); l != nil {
			return l
		}
		l := rate.NewLimiter(rate.Limit(rps), rps*2)
		limiters.Set(ip, l)
		return l
	}

	return func(c *gin.Context) {
		if !limiterFor(c.ClientIP()).Allow() {
			tool.DefaultLogger.Warnf("Rate limit exceeded for %s", c.ClientIP())
			c.AbortWithStatusJSON(http.StatusTooManyRequests, tool.FastReturnError("Too many requests"))
			return
		}
		c.Next()
	}
}
