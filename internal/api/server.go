// Package api wires the HTTP surface: routing endpoint, organization
// management API and management auth.
package api

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/user/llm-router-go/internal/api/handler"
	"github.com/user/llm-router-go/internal/api/middleware"
	"github.com/user/llm-router-go/internal/service"
	"go.uber.org/zap"
)

// Server wraps the HTTP server and dependencies.
type Server struct {
	router *gin.Engine
	logger *zap.Logger
}

// ServerDeps holds all dependencies for the API server.
type ServerDeps struct {
	Engine      *service.RoutingEngine
	OrgService  *service.OrgService
	AuthService *service.AuthService
	RateLimit   *middleware.RateLimitConfig
	DB          *sql.DB
	Logger      *zap.Logger
}

// NewServer creates a new API server with all routes configured.
func NewServer(deps ServerDeps) *Server {
	logger := deps.Logger

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware.
	r.Use(gin.Recovery())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.RateLimit(deps.RateLimit))

	// Health check (no auth).
	healthHandler := handler.NewHealthHandler(deps.DB)
	r.GET("/api/health", healthHandler.Health)

	// Tenant-facing endpoints. Routing carries its own access-token auth;
	// the catalog is public.
	routeHandler := handler.NewRouteHandler(deps.Engine, logger)
	catalogHandler := handler.NewCatalogHandler()
	v1 := r.Group("/v1")
	{
		v1.POST("/route", routeHandler.Route)
		v1.GET("/models", catalogHandler.Models)
	}

	// Management auth endpoints.
	authHandler := handler.NewAuthHandler(deps.AuthService, logger)
	authGroup := r.Group("/api/auth")
	{
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/logout", authHandler.Logout)
		authGroup.GET("/me", middleware.RequireAuth(deps.AuthService), authHandler.Me)
	}

	// Organization management endpoints (session auth).
	orgHandler := handler.NewOrgHandler(deps.OrgService, logger)
	orgGroup := r.Group("/api/orgs")
	orgGroup.Use(middleware.RequireAuth(deps.AuthService))
	{
		orgGroup.POST("", orgHandler.Create)
		orgGroup.GET("/:org_id", orgHandler.Get)
		orgGroup.PATCH("/:org_id", orgHandler.Rename)
		orgGroup.DELETE("/:org_id", orgHandler.Delete)

		orgGroup.POST("/:org_id/models", orgHandler.RegisterModel)
		orgGroup.DELETE("/:org_id/models/:model_id", orgHandler.DeregisterModel)

		orgGroup.POST("/:org_id/routers", orgHandler.CreateRouter)
		orgGroup.PUT("/:org_id/routers/:router_id", orgHandler.UpdateRouter)
		orgGroup.DELETE("/:org_id/routers/:router_id", orgHandler.DeleteRouter)

		orgGroup.POST("/:org_id/tokens", orgHandler.MintToken)
		orgGroup.DELETE("/:org_id/tokens/:token", orgHandler.RevokeToken)
	}

	return &Server{router: r, logger: logger}
}

// Handler returns the underlying http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}
