package response

import "github.com/gin-gonic/gin"

// Body is the platform API response envelope. Every endpoint answers with
// the same shape: a logical success flag, a human-readable message, and an
// optional data payload.
type Body struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// OK sends a successful envelope with the given status code, message and data.
func OK(c *gin.Context, statusCode int, message string, data any) {
	c.JSON(statusCode, Body{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Fail sends a logical-failure envelope. The message is surfaced verbatim
// to the client.
func Fail(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, Body{
		Success: false,
		Message: message,
	})
}

// AbortFail aborts the middleware chain and sends a failure envelope.
func AbortFail(c *gin.Context, statusCode int, message string) {
	c.AbortWithStatusJSON(statusCode, Body{
		Success: false,
		Message: message,
	})
}
