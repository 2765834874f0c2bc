package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"student-backend/internal/shared/auth"
	"student-backend/internal/shared/server/respond"
)

const (
	teacherIDKey    = "teacherId"
	teacherEmailKey = "teacherEmail"

	invalidToken = "Invalid token"
)

// TokenVerifier validates bearer tokens.
type TokenVerifier interface {
	Verify(token string) (auth.Claims, error)
}

// Auth requires a valid bearer token and stores the teacher identity in context.
func Auth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			c.Abort()
			return
		}

		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		scheme, token, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") {
			respond.Unauthorized(c, "Not authenticated")
			return
		}
		token = strings.TrimSpace(token)
		if token == "" {
			respond.Unauthorized(c, "Not authenticated")
			return
		}

		claims, err := verifier.Verify(token)
		if err != nil {
			respond.Unauthorized(c, invalidToken)
			return
		}

		c.Set(teacherIDKey, claims.TeacherID())
		if claims.Email != "" {
			c.Set(teacherEmailKey, claims.Email)
		}
		c.Next()
	}
}

// TeacherIDFromContext fetches the teacher ID set by the auth middleware.
func TeacherIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	return c.GetString(teacherIDKey)
}

// TeacherEmailFromContext fetches the teacher email set by the auth middleware.
func TeacherEmailFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	return c.GetString(teacherEmailKey)
}
