package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	resp "account-service/internal/transport/http/response"
)

// MaxBodyBytes rejects a declared Content-Length above n with 413 and caps the
// body reader for chunked uploads, whose overflow surfaces as a 422 bind error.
func MaxBodyBytes(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > n {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, resp.Error(resp.CodeTooLarge, ""))
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
	}
}
