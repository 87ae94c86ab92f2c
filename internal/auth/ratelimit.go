package auth

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// RateLimitMiddleware allows limit requests per client IP and path within
// window. Redis errors let the request through.
func RateLimitMiddleware(rdb *redis.Client, limit int, window time.Duration, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := fmt.Sprintf("rate_limit:%s:%s", c.FullPath(), c.ClientIP())
		ctx := c.Request.Context()

		count, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			log.WithError(err).Warn("[RateLimit] check failed, allowing request")
			c.Next()
			return
		}
		if count == 1 {
			if err := rdb.Expire(ctx, key, window).Err(); err != nil {
				log.WithError(err).Warn("[RateLimit] could not set expiry, resetting counter")
				rdb.Del(ctx, key)
				c.Next()
				return
			}
		}
		if count > int64(limit) {
			// a counter without expiry would lock the client out for good
			if ttl, err := rdb.TTL(ctx, key).Result(); err == nil && ttl == -1 {
				if err := rdb.Expire(ctx, key, window).Err(); err != nil {
					log.WithError(err).Warn("[RateLimit] could not repair expiry")
				}
			}
			c.Header("Retry-After", fmt.Sprintf("%d", int(window.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many attempts, try again later"})
			return
		}
		c.Next()
	}
}
