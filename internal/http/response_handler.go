package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type responseHandler struct {
	logger Logger
}

// NewResponseHandler creates a new instance of ResponseHandler
func NewResponseHandler(logger Logger) ResponseHandler {
	return &responseHandler{
		logger: logger,
	}
}

// SuccessResponse sends a success response with optional data and message
func (h *responseHandler) SuccessResponse(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// ErrorResponse sends an error response with status code, error code, and message
func (h *responseHandler) ErrorResponse(c *gin.Context, status int, code, message string, err error) {
	if err != nil {
		h.logger.LogError(err, message)
	}
	h.fail(c, status, &Error{Code: code, Message: message})
}

// ValidationErrorResponse sends a validation error response
func (h *responseHandler) ValidationErrorResponse(c *gin.Context, field, message string) {
	h.fail(c, http.StatusBadRequest, &Error{
		Code:    "VALIDATION_ERROR",
		Message: message,
		Field:   field,
	})
}

// NotFoundResponse sends a not found error response
func (h *responseHandler) NotFoundResponse(c *gin.Context, message string) {
	h.fail(c, http.StatusNotFound, &Error{Code: "NOT_FOUND", Message: message})
}

// InternalErrorResponse sends an internal server error response
func (h *responseHandler) InternalErrorResponse(c *gin.Context, message string, err error) {
	if err != nil {
		h.logger.LogError(err, message)
	}
	h.fail(c, http.StatusInternalServerError, &Error{Code: "INTERNAL_ERROR", Message: message})
}

func (h *responseHandler) fail(c *gin.Context, status int, e *Error) {
	c.JSON(status, Response{
		Success: false,
		Error:   e,
	})
}
