package middleware

import (
	"bytes"
	"net/http"
	"time"

	"habitflow/cache"
	"habitflow/models"
	"habitflow/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CachedResponse struct {
	Status      int         `json:"status"`
	ContentType string      `json:"content_type"`
	Body        []byte      `json:"body"`
	Headers     http.Header `json:"headers"`
}

type bodyLogWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *bodyLogWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyLogWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// CacheMiddleware кэширует успешные GET-ответы per-пользователь. Сброс —
// только через граф инвалидации (cache/invalidate.go), не на местах вызова.
func CacheMiddleware(duration time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		userID := uint(0)
		if userInterface, exists := c.Get("user"); exists {
			if user, ok := userInterface.(models.User); ok {
				userID = user.ID
			}
		}

		cacheKey := cache.KeyResponse(userID, c.Request.URL.Path, c.Request.URL.RawQuery)

		var cachedResponse CachedResponse
		if err := cache.Default.Get(cacheKey, &cachedResponse); err == nil {
			for key, values := range cachedResponse.Headers {
				for _, value := range values {
					c.Header(key, value)
				}
			}
			c.Header("X-Cache", "HIT")
			c.Data(cachedResponse.Status, cachedResponse.ContentType, cachedResponse.Body)
			c.Abort()
			return
		}

		c.Header("X-Cache", "MISS")

		blw := &bodyLogWriter{body: bytes.NewBufferString(""), ResponseWriter: c.Writer}
		c.Writer = blw

		c.Next()

		// Кэшируем только успешные ответы
		if c.Writer.Status() == http.StatusOK {
			cachedResp := CachedResponse{
				Status:      c.Writer.Status(),
				ContentType: c.Writer.Header().Get("Content-Type"),
				Body:        blw.body.Bytes(),
				Headers:     c.Writer.Header(),
			}

			if err := cache.Default.Set(cacheKey, cachedResp, duration); err != nil {
				utils.Logger.Warn("cache_set_failed",
					zap.Error(err),
					zap.String("key", cacheKey),
				)
			}
		}
	}
}
