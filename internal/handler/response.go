package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chronicare/monitor-api/internal/access"
	"github.com/chronicare/monitor-api/internal/model"
	"github.com/chronicare/monitor-api/pkg/errors"
)

// ClaimsKey is the gin context key holding the verified token claims.
const ClaimsKey = "claims"

// Response wraps all API responses
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorBody  `json:"error,omitempty"`
}

// ErrorBody carries the error detail of a failed request.
type ErrorBody struct {
	Code    int      `json:"code"`
	Message string   `json:"message"`
	Fields  []string `json:"fields,omitempty"`
}

func RespondSuccess(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, Response{Success: true, Message: message, Data: data})
}

// RespondError maps the error taxonomy to HTTP statuses. Unclassified
// errors are surfaced as a generic server error without detail.
func RespondError(c *gin.Context, err error) {
	appErr, ok := errors.As(err)
	if !ok {
		appErr = errors.Internal(err)
	}

	status := http.StatusInternalServerError
	message := appErr.Message

	switch appErr.Code {
	case errors.ErrValidation:
		status = http.StatusBadRequest
	case errors.ErrNotFound:
		status = http.StatusNotFound
	case errors.ErrUnauthorized:
		status = http.StatusUnauthorized
	case errors.ErrForbidden:
		status = http.StatusForbidden
	case errors.ErrConflict, errors.ErrInvalidTransition, errors.ErrUnassignable:
		status = http.StatusConflict
	case errors.ErrInternal:
		message = "internal server error"
	}

	c.JSON(status, Response{
		Success: false,
		Message: message,
		Error: &ErrorBody{
			Code:    int(appErr.Code),
			Message: message,
			Fields:  appErr.Fields,
		},
	})
}

// CallerScope builds the access scope of the authenticated caller.
func CallerScope(c *gin.Context) (access.Scope, bool) {
	claims, ok := c.Get(ClaimsKey)
	if !ok {
		return access.Scope{}, false
	}
	tc, ok := claims.(*model.TokenClaims)
	if !ok {
		return access.Scope{}, false
	}
	return access.ForCaller(tc), true
}
