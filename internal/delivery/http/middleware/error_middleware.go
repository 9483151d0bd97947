package middleware

import (
	"errors"
	"net/http"

	"go-hiring-workflow/internal/delivery/http/response"
	"go-hiring-workflow/pkg/apperror"
	"go-hiring-workflow/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ErrorHandler maps errors appended to the gin context onto the standard
// response envelope. AppError codes and kinds pass through; anything else is
// logged server-side and reported as a generic 500 to avoid leaking internals.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last().Err
			var appErr *apperror.AppError
			if errors.As(err, &appErr) {
				response.ErrorWithKind(c, appErr.Code, string(appErr.Kind), appErr.Message)
			} else {
				logger.Log.Error("Unhandled error", "path", c.FullPath(), "error", err)
				response.Error(c, http.StatusInternalServerError, "An unexpected error occurred. Please try again later.", nil)
			}
		}
	}
}
