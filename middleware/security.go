package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bioauth/utils"
)

// RequestSizeLimiter rejects bodies larger than maxSize. Chunked bodies are
// cut off by http.MaxBytesReader while the handler decodes them.
func RequestSizeLimiter(maxSize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxSize {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge,
				utils.ErrorResponse{Error: "request body too large"})
			return
		}

		var w http.ResponseWriter = c.Writer
		c.Request.Body = http.MaxBytesReader(w, c.Request.Body, maxSize)

		c.Next()
	}
}
