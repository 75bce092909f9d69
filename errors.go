// errors.go
package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// Error codes
const (
	ErrCodeValidation     = "VALIDATION_ERROR"
	ErrCodeAuthentication = "AUTHENTICATION_ERROR"
	ErrCodeNotFound       = "NOT_FOUND"
	ErrCodeInternal       = "INTERNAL_ERROR"
	ErrCodeUpstream       = "UPSTREAM_ERROR"
	ErrCodeRateLimit      = "RATE_LIMIT_EXCEEDED"
	ErrCodeBadRequest     = "BAD_REQUEST"
)

// RespondWithError writes a consistent error payload
func RespondWithError(c *gin.Context, statusCode int, errorCode, message, details string) {
	c.JSON(statusCode, ErrorResponse{
		Error:   message,
		Code:    errorCode,
		Details: details,
	})
}

// Specific error response helpers
func RespondBadRequest(c *gin.Context, message string) {
	RespondWithError(c, http.StatusBadRequest, ErrCodeBadRequest, message, "")
}

func RespondUnauthorized(c *gin.Context, message string) {
	RespondWithError(c, http.StatusUnauthorized, ErrCodeAuthentication, message, "")
}

func RespondNotFound(c *gin.Context, message string) {
	RespondWithError(c, http.StatusNotFound, ErrCodeNotFound, message, "")
}

func RespondInternalError(c *gin.Context, message string) {
	RespondWithError(c, http.StatusInternalServerError, ErrCodeInternal, message, "")
}

// RespondUpstreamError reports a failed call to an external collaborator
// (GitHub, LLM API). The body keeps the informal {"error": message} shape the
// clients already parse, but the status code is honest about the failure.
func RespondUpstreamError(c *gin.Context, err error) {
	c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
}
