package formatter

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"

	apperrors "github.com/consensuslabs/extformatter/internal/errors"
	"github.com/consensuslabs/extformatter/internal/http/middleware"
	"github.com/gin-gonic/gin"
)

// ResponseHandler defines the interface for handling HTTP responses
type ResponseHandler interface {
	SuccessResponse(c *gin.Context, data interface{}, message string)
	ErrorResponse(c *gin.Context, status int, code, message string, err error)
	ValidationErrorResponse(c *gin.Context, field, message string)
	InternalErrorResponse(c *gin.Context, message string, err error)
}

// ReformatRequest is the body of a reformat request
type ReformatRequest struct {
	Files []string `json:"files"`
}

// ReformatResult describes a completed reformat request
type ReformatResult struct {
	Files []string `json:"files"`
	Count int      `json:"count"`
}

// Handler exposes a formatter over HTTP
type Handler struct {
	formatter       CodeFormatter
	responseHandler ResponseHandler
	logger          Logger
}

// NewHandler creates a new formatter handler
func NewHandler(formatter CodeFormatter, responseHandler ResponseHandler, logger Logger) *Handler {
	return &Handler{
		formatter:       formatter,
		responseHandler: responseHandler,
		logger:          logger,
	}
}

// HandleCapabilities returns the capability flags of the configured formatter
func (h *Handler) HandleCapabilities(c *gin.Context) {
	h.responseHandler.SuccessResponse(c, CapabilitiesOf(h.formatter), "Formatter capabilities")
}

// HandleReformat queues every requested file and flushes the queue once
func (h *Handler) HandleReformat(c *gin.Context) {
	var req ReformatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.responseHandler.ValidationErrorResponse(c, "body", "Invalid request body")
		return
	}

	if len(req.Files) == 0 {
		h.responseHandler.ValidationErrorResponse(c, "files", apperrors.ErrMsgNoFiles)
		return
	}
	if !h.formatter.SupportsReformatFile() {
		h.responseHandler.ErrorResponse(c, http.StatusNotImplemented, "UNSUPPORTED_OPERATION",
			"Formatter cannot reformat single files", nil)
		return
	}

	files := make([]string, 0, len(req.Files))
	for _, file := range req.Files {
		if !filepath.IsAbs(file) {
			h.responseHandler.ValidationErrorResponse(c, "files", "File paths must be absolute: "+file)
			return
		}
		if !h.formatter.SupportsFileType(file) {
			h.responseHandler.ValidationErrorResponse(c, "files", apperrors.ErrMsgFileType+": "+file)
			return
		}
		if info, err := os.Stat(file); err != nil || info.IsDir() {
			h.responseHandler.ValidationErrorResponse(c, "files", apperrors.ErrMsgFileNotFound+": "+file)
			return
		}
		files = append(files, filepath.Clean(file))
	}

	queue := NewQueue(h.formatter, h.requestLogger(c))
	for _, file := range files {
		queue.Enqueue(ReformatFileCommand{File: file})
	}

	if err := queue.Flush(c.Request.Context()); err != nil {
		var formatterErr *apperrors.FormatterError
		if errors.As(err, &formatterErr) {
			h.responseHandler.ErrorResponse(c, http.StatusUnprocessableEntity, "FORMAT_FAILED", formatterErr.Error(), err)
			return
		}
		if errors.Is(err, apperrors.ErrOriginalModified) {
			h.responseHandler.ErrorResponse(c, http.StatusConflict, "FILE_MODIFIED",
				"File changed while it was being formatted", err)
			return
		}
		h.responseHandler.InternalErrorResponse(c, "Failed to reformat files", err)
		return
	}

	h.responseHandler.SuccessResponse(c, ReformatResult{Files: files, Count: len(files)}, "Files reformatted")
}

// requestLogger returns the logger the request middleware stored, which
// carries the request ID, or the handler's own logger outside the middleware
func (h *Handler) requestLogger(c *gin.Context) Logger {
	if v, exists := c.Get(middleware.LoggerKey); exists {
		if l, ok := v.(Logger); ok {
			return l
		}
	}
	return h.logger
}
