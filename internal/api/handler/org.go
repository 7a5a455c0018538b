package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/user/llm-router-go/internal/service"
	"go.uber.org/zap"
)

// OrgHandler serves the organization management endpoints.
type OrgHandler struct {
	orgs   *service.OrgService
	logger *zap.Logger
}

// NewOrgHandler creates an OrgHandler.
func NewOrgHandler(orgs *service.OrgService, logger *zap.Logger) *OrgHandler {
	return &OrgHandler{orgs: orgs, logger: logger}
}

type createOrgRequest struct {
	Name    string `json:"name" binding:"required"`
	OwnerID string `json:"owner_id" binding:"required"`
}

// Create handles POST /api/orgs.
func (h *OrgHandler) Create(c *gin.Context) {
	var req createOrgRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "name and owner_id are required")
		return
	}

	org, err := h.orgs.CreateOrganization(c.Request.Context(), req.Name, req.OwnerID)
	if err != nil {
		domainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, org)
}

// Get handles GET /api/orgs/:org_id.
func (h *OrgHandler) Get(c *gin.Context) {
	org, err := h.orgs.GetOrganization(c.Request.Context(), c.Param("org_id"))
	if err != nil {
		domainError(c, err)
		return
	}
	c.JSON(http.StatusOK, org)
}

type renameOrgRequest struct {
	Name string `json:"name" binding:"required"`
}

// Rename handles PATCH /api/orgs/:org_id.
func (h *OrgHandler) Rename(c *gin.Context) {
	var req renameOrgRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "name is required")
		return
	}

	if err := h.orgs.RenameOrganization(c.Request.Context(), c.Param("org_id"), req.Name); err != nil {
		domainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "renamed"})
}

// Delete handles DELETE /api/orgs/:org_id.
func (h *OrgHandler) Delete(c *gin.Context) {
	if err := h.orgs.DeleteOrganization(c.Request.Context(), c.Param("org_id")); err != nil {
		domainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// RegisterModel handles POST /api/orgs/:org_id/models.
func (h *OrgHandler) RegisterModel(c *gin.Context) {
	var req service.ModelInput
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "model_name and display_name are required")
		return
	}

	model, err := h.orgs.RegisterModel(c.Request.Context(), c.Param("org_id"), req)
	if err != nil {
		domainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, model)
}

// DeregisterModel handles DELETE /api/orgs/:org_id/models/:model_id.
func (h *OrgHandler) DeregisterModel(c *gin.Context) {
	if err := h.orgs.DeregisterModel(c.Request.Context(), c.Param("org_id"), c.Param("model_id")); err != nil {
		domainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// CreateRouter handles POST /api/orgs/:org_id/routers.
func (h *OrgHandler) CreateRouter(c *gin.Context) {
	var req service.RouterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "invalid router payload")
		return
	}

	router, err := h.orgs.CreateRouter(c.Request.Context(), c.Param("org_id"), req)
	if err != nil {
		domainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, router)
}

// UpdateRouter handles PUT /api/orgs/:org_id/routers/:router_id.
func (h *OrgHandler) UpdateRouter(c *gin.Context) {
	var req service.RouterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "invalid router payload")
		return
	}

	router, err := h.orgs.UpdateRouter(c.Request.Context(), c.Param("org_id"), c.Param("router_id"), req)
	if err != nil {
		domainError(c, err)
		return
	}
	c.JSON(http.StatusOK, router)
}

// DeleteRouter handles DELETE /api/orgs/:org_id/routers/:router_id.
func (h *OrgHandler) DeleteRouter(c *gin.Context) {
	if err := h.orgs.DeleteRouter(c.Request.Context(), c.Param("org_id"), c.Param("router_id")); err != nil {
		domainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

type mintTokenRequest struct {
	CreatedBy string   `json:"created_by"`
	Scopes    []string `json:"scopes" binding:"required"`
}

// MintToken handles POST /api/orgs/:org_id/tokens.
func (h *OrgHandler) MintToken(c *gin.Context) {
	var req mintTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "scopes are required")
		return
	}

	token, err := h.orgs.MintAccessToken(c.Request.Context(), c.Param("org_id"), req.CreatedBy, req.Scopes)
	if err != nil {
		domainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, token)
}

// RevokeToken handles DELETE /api/orgs/:org_id/tokens/:token.
func (h *OrgHandler) RevokeToken(c *gin.Context) {
	if err := h.orgs.RevokeAccessToken(c.Request.Context(), c.Param("org_id"), c.Param("token")); err != nil {
		domainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "revoked"})
}
