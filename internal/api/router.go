package api

import (
	"net/http"

	"ipmon/internal/api/middleware"
	av1 "ipmon/internal/api/v1"
	"ipmon/internal/config"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Router handles all routing logic
type Router struct {
	engine *gin.Engine
	config *config.Config
	logger *zap.Logger
}

// NewRouter creates and configures a new router
func NewRouter(cfg *config.Config, api *av1.API, logger *zap.Logger) *Router {
	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := &Router{
		engine: gin.New(),
		config: cfg,
		logger: logger,
	}

	m := middleware.New(cfg.API.Token, logger)

	r.engine.Use(m.RequestID())
	r.engine.Use(m.Logger())
	r.engine.Use(m.Recovery())
	r.engine.Use(m.Secure())
	r.engine.NoRoute(m.NoRoute())

	v1Router := r.engine.Group("/api/v1")
	api.RegisterHealth(v1Router)

	protected := v1Router.Group("")
	protected.Use(m.Auth())
	api.RegisterRoutes(protected)

	return r
}

// Handler returns the HTTP handler
func (r *Router) Handler() http.Handler {
	return r.engine
}
