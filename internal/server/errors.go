package server

import (
	"time"

	"github.com/gin-gonic/gin"
)

// ErrorCode is the machine readable kind of an API error
type ErrorCode string

const (
	ErrorCodeInvalidJSON    ErrorCode = "INVALID_JSON"
	ErrorCodeInvalidRequest ErrorCode = "INVALID_REQUEST"
	ErrorCodeParseFailure   ErrorCode = "PARSE_FAILURE"
	ErrorCodeInternalError  ErrorCode = "INTERNAL_ERROR"
)

// APIError is the body of every error response
type APIError struct {
	Error     string    `json:"error"`
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Position  *int      `json:"position,omitempty"` // Token the parser stopped at
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
}

// SendError writes a standardized error response
func SendError(c *gin.Context, statusCode int, code ErrorCode, message string) {
	sendError(c, statusCode, &APIError{Code: code, Message: message})
}

func sendError(c *gin.Context, statusCode int, apiErr *APIError) {
	apiErr.Error = "Request failed"
	apiErr.Timestamp = time.Now()
	if requestID, exists := c.Get(requestIDKey); exists {
		if id, ok := requestID.(string); ok {
			apiErr.RequestID = id
		}
	}
	c.JSON(statusCode, apiErr)
}
