package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/user/llm-router-go/internal/service"
	"go.uber.org/zap"
)

// RouteHandler serves the prompt routing endpoint.
type RouteHandler struct {
	engine *service.RoutingEngine
	logger *zap.Logger
}

// NewRouteHandler creates a RouteHandler.
func NewRouteHandler(engine *service.RoutingEngine, logger *zap.Logger) *RouteHandler {
	return &RouteHandler{engine: engine, logger: logger}
}

type routeRequest struct {
	Prompt string `json:"prompt"`
}

// Route handles POST /v1/route. The organization and router are addressed
// through the OrganizationID and RouterID headers; the access token comes
// from the Authorization header.
func (h *RouteHandler) Route(c *gin.Context) {
	orgID := c.GetHeader("OrganizationID")
	routerID := c.GetHeader("RouterID")
	if orgID == "" || routerID == "" {
		errorResponse(c, http.StatusBadRequest, "OrganizationID and RouterID headers are required")
		return
	}

	token := bearerToken(c.GetHeader("Authorization"))
	if token == "" {
		errorResponse(c, http.StatusUnauthorized, "missing access token")
		return
	}

	var req routeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.engine.Route(c.Request.Context(), orgID, routerID, token, req.Prompt)
	if err != nil {
		h.logger.Warn("routing decision failed",
			zap.String("org_id", orgID),
			zap.String("router_id", routerID),
			zap.Error(err))
		domainError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func bearerToken(header string) string {
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(header[len("Bearer "):])
	}
	return strings.TrimSpace(header)
}
