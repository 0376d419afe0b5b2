package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"transcript-analyzer/internal/services/health"
	"transcript-analyzer/internal/shared/metrics"
	"transcript-analyzer/internal/shared/server/middleware"
	"transcript-analyzer/internal/shared/server/respond"
)

// RouteRegistrar attaches a feature's routes.
type RouteRegistrar interface {
	RegisterRoutes(r gin.IRoutes)
}

// RouterDeps holds everything NewRouter wires together.
type RouterDeps struct {
	CORSAllowOrigins []string
	Metrics          *metrics.Recorder
	Health           *health.Service
	Handlers         []RouteRegistrar
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.CORSAllowOrigins),
		deps.Metrics.Middleware(),
	)

	healthSvc := deps.Health
	if healthSvc == nil {
		healthSvc = health.NewService()
	}
	r.GET("/health", func(c *gin.Context) {
		respond.OK(c, healthSvc.Status())
	})
	r.GET("/metrics", deps.Metrics.Handler())

	for _, h := range deps.Handlers {
		h.RegisterRoutes(r)
	}

	r.NoRoute(func(c *gin.Context) {
		respond.Error(c, http.StatusNotFound, "not_found", "Not Found")
	})
	r.NoMethod(func(c *gin.Context) {
		respond.Error(c, http.StatusMethodNotAllowed, "method_not_allowed", "Method Not Allowed")
	})
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
