package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/consensuslabs/extformatter/internal/logger"
	"github.com/consensuslabs/extformatter/testhelper"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestLoggerMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name     string
		status   int
		wantInfo int
		wantWarn int
	}{
		{name: "success", status: http.StatusOK, wantInfo: 1},
		{name: "client error", status: http.StatusBadRequest, wantWarn: 1},
		{name: "server error", status: http.StatusInternalServerError, wantWarn: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := testhelper.NewTestLogger(false)
			router := gin.New()
			router.Use(RequestLoggerMiddleware(log))
			router.GET("/test", func(c *gin.Context) {
				v, exists := c.Get(LoggerKey)
				assert.True(t, exists)
				assert.Implements(t, (*logger.Logger)(nil), v)
				c.Status(tt.status)
			})

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			_, err := uuid.Parse(w.Header().Get(RequestIDHeader))
			assert.NoError(t, err)

			assert.Len(t, log.GetInfoMessages(), tt.wantInfo)
			assert.Len(t, log.GetWarnMessages(), tt.wantWarn)

			entries := append(log.GetInfoMessages(), log.GetWarnMessages()...)
			require.Len(t, entries, 1)
			assert.Equal(t, w.Header().Get(RequestIDHeader), entries[0].Fields["requestID"])
			assert.Equal(t, "/test", entries[0].Fields["path"])
		})
	}
}
