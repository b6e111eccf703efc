package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"bioauth/utils"
)

func EnhancedRecoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				Logger(c).Error("panic recovered",
					"panic", fmt.Sprint(err),
					"stack", string(debug.Stack()))
				utils.TrackError("http", "panic")
				if !c.Writer.Written() {
					c.AbortWithStatusJSON(http.StatusInternalServerError,
						utils.ErrorResponse{Error: "internal server error"})
					return
				}
				c.Abort()
			}
		}()
		c.Next()
	}
}
