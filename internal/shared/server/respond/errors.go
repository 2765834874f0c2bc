package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"student-backend/internal/contract"
	"student-backend/internal/shared/telemetry"
)

// Error sends a standardized error response. detail is either a message
// string or a list of contract.Issue values.
func Error(c *gin.Context, status int, code string, detail any) {
	fields := map[string]any{
		"status":     status,
		"code":       code,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
	}
	if msg, ok := detail.(string); ok {
		fields["detail"] = msg
	}
	if teacherID := c.GetString("teacherId"); teacherID != "" {
		fields["teacher_id"] = teacherID
	}
	if status >= http.StatusInternalServerError {
		telemetry.Error("http.error", fields)
	} else {
		telemetry.Warn("http.error", fields)
	}

	c.AbortWithStatusJSON(status, contract.ErrorResponse{
		Code:   code,
		Detail: detail,
	})
}

// Validation sends a 422 with one issue per field path.
func Validation(c *gin.Context, issues []contract.Issue) {
	Error(c, http.StatusUnprocessableEntity, "validation_error", issues)
}

// Unauthorized sends a 401 carrying the bearer challenge.
func Unauthorized(c *gin.Context, detail string) {
	c.Header("WWW-Authenticate", "Bearer")
	Error(c, http.StatusUnauthorized, "unauthorized", detail)
}
