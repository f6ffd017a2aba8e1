package health

import (
	"net/http"
	"os/exec"

	"github.com/gin-gonic/gin"
)

// Status is the body of a successful health check
type Status struct {
	Formatter string `json:"formatter"`
	Path      string `json:"path"`
}

// Handler handles health check related endpoints
type Handler struct {
	responseHandler ResponseHandler
	executable      string
	lookPath        func(string) (string, error)
}

// NewHandler creates a health check handler that verifies the formatter
// executable can be resolved
func NewHandler(responseHandler ResponseHandler, executable string) *Handler {
	return &Handler{
		responseHandler: responseHandler,
		executable:      executable,
		lookPath:        exec.LookPath,
	}
}

// HandleHealthCheck reports whether the formatter executable is available
func (h *Handler) HandleHealthCheck(c *gin.Context) {
	path, err := h.lookPath(h.executable)
	if err != nil {
		h.responseHandler.ErrorResponse(c, http.StatusServiceUnavailable, "FORMATTER_UNAVAILABLE",
			"Formatter executable not found", err)
		return
	}
	h.responseHandler.SuccessResponse(c, Status{Formatter: h.executable, Path: path}, "Health check successful")
}
