// Package utils holds small helpers shared by the HTTP handlers.
package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"authgate/internal/shared/errors"
)

// APIResponse is the uniform envelope of every JSON endpoint.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
}

type ErrorInfo struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// SuccessResponse sends a success envelope with the given payload.
func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, APIResponse{
		Success: true,
		Data:    data,
		Message: message,
	})
}

// ErrorResponse sends an error envelope with a plain message.
func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, APIResponse{
		Success: false,
		Error:   &ErrorInfo{Type: "error", Message: message},
	})
}

// ErrorResponseWithError maps a typed application error to its HTTP status.
// Unknown error types collapse to an opaque internal error so nothing from
// the lower layers leaks to clients.
func ErrorResponseWithError(c *gin.Context, err error) {
	if appErr := errors.GetAppError(err); appErr != nil {
		c.JSON(appErr.Code, APIResponse{
			Success: false,
			Error:   &ErrorInfo{Type: string(appErr.Type), Message: appErr.Message},
		})
		return
	}

	ErrorResponse(c, http.StatusInternalServerError, "internal server error")
}
