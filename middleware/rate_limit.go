package middleware

import (
	"fmt"
	"net/http"
	"time"

	"habitflow/cache"
	"habitflow/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RateLimitMiddleware ограничивает частоту запросов по IP через счётчик в Redis.
func RateLimitMiddleware(maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := cache.KeyRateLimit(c.ClientIP())

		count, err := cache.Default.IncrementCounter(key, window)
		if err != nil {
			// Redis лёг — пропускаем, лимит не повод ронять трафик.
			utils.Logger.Error("rate_limit_error", zap.Error(err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", maxRequests))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", max(0, maxRequests-int(count))))

		if count > int64(maxRequests) {
			utils.Logger.Warn("rate_limit_exceeded",
				zap.String("ip", c.ClientIP()),
				zap.Int64("count", count),
			)
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "Слишком много запросов. Попробуйте позже.",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
