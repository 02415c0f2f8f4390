package middleware

import (
	"github.com/gin-gonic/gin"
	"jobboard_chat/pkg/errors"
)

// ErrorHandler превращает ошибки, добавленные через c.Error, в JSON ответ
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last()
		statusCode := errors.HTTPStatusFromError(err.Err)

		message := err.Error()
		if statusCode >= 500 {
			// Детали внутренних ошибок остаются в логах
			message = errors.ErrInternalServer.Error()
		}

		c.JSON(statusCode, gin.H{
			"error": message,
		})
	}
}
