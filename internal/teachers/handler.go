package teachers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"student-backend/internal/contract"
	"student-backend/internal/records"
	"student-backend/internal/shared/server/middleware"
	"student-backend/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterPublicRoutes attaches signup and login.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.POST("/auth/signup", h.signup)
	rg.POST("/auth/login", h.login)
}

// RegisterRoutes attaches routes that need an authenticated teacher.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/auth/me", h.me)
}

func (h *Handler) signup(c *gin.Context) {
	var req contract.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "bad_request", "Invalid JSON body")
		return
	}
	tok, err := h.Svc.Signup(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.OK(c, tok)
}

func (h *Handler) login(c *gin.Context) {
	var req contract.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "bad_request", "Invalid JSON body")
		return
	}
	tok, err := h.Svc.Login(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.OK(c, tok)
}

func (h *Handler) me(c *gin.Context) {
	profile, err := h.Svc.Profile(c.Request.Context(), middleware.TeacherIDFromContext(c))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Unauthorized(c, "Teacher not found")
			return
		}
		h.writeError(c, err)
		return
	}
	respond.OK(c, profile)
}

func (h *Handler) writeError(c *gin.Context, err error) {
	var fe records.FieldErrors
	switch {
	case errors.As(err, &fe):
		respond.Validation(c, contract.IssuesFromFieldErrors(fe))
	case errors.Is(err, ErrEmailTaken):
		respond.Error(c, http.StatusBadRequest, "email_taken", "Email already registered")
	case errors.Is(err, ErrInvalidCredentials):
		respond.Error(c, http.StatusUnauthorized, "invalid_credentials", "Invalid email or password")
	default:
		respond.Error(c, http.StatusInternalServerError, "internal", "Unexpected server error")
	}
}
