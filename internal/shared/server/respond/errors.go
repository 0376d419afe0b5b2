package respond

import (
	"github.com/gin-gonic/gin"

	"transcript-analyzer/internal/shared/telemetry"
)

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// Error logs the failure and aborts with {"detail": detail}. code is a short
// machine label that only appears in logs.
func Error(c *gin.Context, status int, code, detail string) {
	fields := map[string]any{
		"status":     status,
		"code":       code,
		"detail":     detail,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
	}
	if status >= 500 {
		telemetry.Error("http.error", fields)
	} else {
		telemetry.Warn("http.error", fields)
	}

	c.AbortWithStatusJSON(status, ErrorResponse{Detail: detail})
}
