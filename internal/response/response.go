package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response represents a standard API response
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// PaymentError is the error body of the payment creation endpoint
type PaymentError struct {
	ResultCode int         `json:"resultCode"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

// ValidationError lists every problem with a request body
type ValidationError struct {
	Error   string   `json:"error"`
	Details []string `json:"details"`
}

// Success returns a success response
func Success(data interface{}) Response {
	return Response{
		Success: true,
		Message: "success",
		Data:    data,
	}
}

// Error returns an error response
func Error(message string) Response {
	return Response{
		Success: false,
		Message: message,
	}
}

// SuccessJSON sends a success JSON response
func SuccessJSON(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Success(data))
}

// ErrorJSON sends an error JSON response
func ErrorJSON(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, Error(message))
}

// PaymentErrorJSON sends a payment error in the gateway's resultCode/message shape
func PaymentErrorJSON(c *gin.Context, statusCode, resultCode int, message string, details interface{}) {
	c.JSON(statusCode, PaymentError{ResultCode: resultCode, Message: message, Details: details})
}

// ValidationErrorJSON sends a 400 with the list of validation problems
func ValidationErrorJSON(c *gin.Context, details []string) {
	c.JSON(http.StatusBadRequest, ValidationError{Error: "Validation failed", Details: details})
}

// NoContent acknowledges with an empty 204
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
	c.Writer.WriteHeaderNow()
}
