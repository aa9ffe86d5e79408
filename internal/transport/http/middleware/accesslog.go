package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"account-service/internal/core/logger"
)

// 敏感字段 key（query 中统一按 key 打码）
var sensitiveKeys = map[string]struct{}{
	"password": {}, "pwd": {}, "token": {}, "authorization": {},
	"secret": {}, "client_secret": {}, "access_token": {},
}

func mask(kv map[string][]string) map[string][]string {
	out := make(map[string][]string, len(kv))
	for k, v := range kv {
		if _, ok := sensitiveKeys[strings.ToLower(k)]; ok {
			out[k] = []string{"****"}
		} else {
			out[k] = v
		}
	}
	return out
}

func AccessLog(l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		status := c.Writer.Status()
		rec := logger.Record{
			Level:     zapcore.InfoLevel,
			Message:   "HTTP",
			RequestID: c.GetString(KeyRequestID),
			Method:    c.Request.Method,
			Path:      path,
			Status:    status,
			Latency:   time.Since(start),
			Attrs: map[string]any{
				"ip":    c.ClientIP(),
				"ua":    c.Request.UserAgent(),
				"query": mask(c.Request.URL.Query()),
				"size":  c.Writer.Size(),
			},
		}
		if u := CurrentUser(c); u != nil {
			rec.Attrs["user_id"] = u.ID
		}
		if len(c.Errors) > 0 {
			rec.Attrs["errors"] = c.Errors.String()
		}
		if status >= 500 {
			rec.Level = zapcore.ErrorLevel
		}
		rec.Write(l)
	}
}
