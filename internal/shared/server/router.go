package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"workspace-backend/internal/analytics"
	"workspace-backend/internal/auth"
	"workspace-backend/internal/cards"
	"workspace-backend/internal/documents"
	"workspace-backend/internal/interactions"
	"workspace-backend/internal/notifications"
	"workspace-backend/internal/recommend"
	"workspace-backend/internal/services/health"
	"workspace-backend/internal/shared/config"
	"workspace-backend/internal/shared/metrics"
	"workspace-backend/internal/shared/server/middleware"
	"workspace-backend/internal/shared/server/respond"
	"workspace-backend/internal/users"
	"workspace-backend/internal/workspaces"
)

// RouterDeps carries the handlers mounted by NewRouter. Nil handlers are skipped.
type RouterDeps struct {
	Config        config.Config
	Verifier      middleware.TokenVerifier
	RateLimiter   *middleware.RateLimiter
	Health        *health.Service
	PasswordAuth  *auth.PasswordHandler
	GoogleAuth    *auth.GoogleService
	Users         *users.Handler
	Workspaces    *workspaces.Handler
	Documents     *documents.Handler
	Cards         *cards.Handler
	Interactions  *interactions.Handler
	Notifications *notifications.Handler
	Analytics     *analytics.Handler
	Recommend     *recommend.Handler
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
	r.GET("/metrics", metrics.Handler())

	limiter := deps.RateLimiter
	if limiter == nil {
		limiter = middleware.NewRateLimiter(nil)
	}
	limit := middleware.RateLimit(middleware.RateLimitConfig{
		Rules:    middleware.DefaultRules(),
		GroupFor: middleware.GroupForRoute,
		Limiter:  limiter,
	})

	api := r.Group("/api/v1")
	healthSvc := deps.Health
	if healthSvc == nil {
		healthSvc = health.NewService()
	}
	api.GET("/health", func(c *gin.Context) {
		report := healthSvc.Status(c.Request.Context())
		status := http.StatusOK
		if !report.OK {
			status = http.StatusServiceUnavailable
		}
		respond.JSON(c, status, report)
	})

	open := api.Group("", limit)
	public := api.Group("", middleware.OptionalAuth(deps.Verifier), limit)
	private := api.Group("", middleware.RequireAuth(deps.Verifier), limit)

	if deps.PasswordAuth != nil {
		deps.PasswordAuth.RegisterRoutes(open)
	}
	if deps.GoogleAuth != nil {
		deps.GoogleAuth.RegisterRoutes(open)
	}
	if deps.Users != nil {
		deps.Users.RegisterRoutes(private)
	}
	if deps.Workspaces != nil {
		deps.Workspaces.RegisterRoutes(private)
	}
	if deps.Documents != nil {
		deps.Documents.RegisterRoutes(private)
		deps.Documents.RegisterAIRoutes(private)
	}
	if deps.Cards != nil {
		deps.Cards.RegisterRoutes(public, private)
	}
	if deps.Interactions != nil {
		deps.Interactions.RegisterRoutes(private)
	}
	if deps.Notifications != nil {
		deps.Notifications.RegisterRoutes(private)
	}
	if deps.Analytics != nil {
		deps.Analytics.RegisterRoutes(private)
	}
	if deps.Recommend != nil {
		deps.Recommend.RegisterRoutes(public, private)
		deps.Recommend.RegisterAIRoutes(public)
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
