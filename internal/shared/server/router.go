package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"student-backend/internal/predictions"
	"student-backend/internal/shared/config"
	"student-backend/internal/shared/metrics"
	"student-backend/internal/shared/server/middleware"
	"student-backend/internal/shared/server/respond"
	"student-backend/internal/teachers"
)

const predictRateGroup = "PREDICT"

// RouterDeps are the handlers and collaborators the router mounts.
type RouterDeps struct {
	Config            config.Config
	Verifier          middleware.TokenVerifier
	TeacherHandler    *teachers.Handler
	PredictionHandler *predictions.Handler
	Limiter           *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	r.GET("/", func(c *gin.Context) {
		respond.OK(c, gin.H{"message": "Welcome to Student Performance Analyzer!"})
	})
	r.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"status": "healthy"})
	})
	r.GET("/metrics", metrics.Handler())
	r.NoRoute(func(c *gin.Context) {
		respond.Error(c, http.StatusNotFound, "not_found", "Not Found")
	})

	if deps.TeacherHandler != nil {
		deps.TeacherHandler.RegisterPublicRoutes(&r.RouterGroup)
	}

	protected := r.Group("/")
	protected.Use(
		middleware.Auth(deps.Verifier),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules: map[string]middleware.RateLimitRule{
				predictRateGroup: middleware.PerMinute(deps.Config.PredictRatePerMin),
			},
			GroupFor: func(c *gin.Context) string {
				if c.Request.Method == http.MethodPost {
					return predictRateGroup
				}
				return ""
			},
			Limiter: deps.Limiter,
		}),
	)
	if deps.TeacherHandler != nil {
		deps.TeacherHandler.RegisterRoutes(protected)
	}
	if deps.PredictionHandler != nil {
		deps.PredictionHandler.RegisterRoutes(protected)
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
