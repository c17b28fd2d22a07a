package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/chronicare/monitor-api/internal/handler"
	"github.com/chronicare/monitor-api/pkg/errors"
)

// Recovery converts panics into a generic server error response.
func Recovery(log *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().
					Interface("error", err).
					Str("stack", string(debug.Stack())).
					Str("method", c.Request.Method).
					Str("path", c.Request.URL.Path).
					Str("request_id", c.GetString(ContextRequestID)).
					Msg("request panic recovered")

				c.AbortWithStatusJSON(http.StatusInternalServerError, handler.Response{
					Success: false,
					Message: "internal server error",
					Error: &handler.ErrorBody{
						Code:    int(errors.ErrInternal),
						Message: "internal server error",
					},
				})
			}
		}()
		c.Next()
	}
}
