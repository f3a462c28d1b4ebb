package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/saemahesh/webinar-ai/pkg/response"
)

// RateLimit returns a per-client-IP token bucket limiter. Used on the public
// registration and join endpoints, which take unauthenticated traffic.
func RateLimit(rps float64, burst int) gin.HandlerFunc {
	type entry struct {
		limiter *rate.Limiter
		seen    time.Time
	}
	var mu sync.Mutex
	clients := make(map[string]*entry)

	// Drop idle buckets so the map does not grow without bound.
	go func() {
		for range time.Tick(5 * time.Minute) {
			mu.Lock()
			for ip, e := range clients {
				if time.Since(e.seen) > 10*time.Minute {
					delete(clients, ip)
				}
			}
			mu.Unlock()
		}
	}()

	return func(c *gin.Context) {
		ip := c.ClientIP()
		mu.Lock()
		e, ok := clients[ip]
		if !ok {
			e = &entry{limiter: rate.NewLimiter(rate.Limit(rps), burst)}
			clients[ip] = e
		}
		e.seen = time.Now()
		mu.Unlock()

		if !e.limiter.Allow() {
			response.TooManyRequests(c, "rate limit exceeded")
			c.Abort()
			return
		}
		c.Next()
	}
}
