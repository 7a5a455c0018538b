package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/user/llm-router-go/internal/api/middleware"
	"github.com/user/llm-router-go/internal/service"
	"go.uber.org/zap"
)

// AuthHandler serves the management login endpoints.
type AuthHandler struct {
	auth   *service.AuthService
	logger *zap.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(auth *service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "username and password are required")
		return
	}

	token, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		domainError(c, err)
		return
	}

	c.SetCookie("session_token", token, service.SessionExpireHours*3600, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// Logout handles POST /api/auth/logout.
func (h *AuthHandler) Logout(c *gin.Context) {
	if token := middleware.GetSessionToken(c); token != "" {
		if err := h.auth.Logout(c.Request.Context(), token); err != nil {
			h.logger.Warn("failed to delete session", zap.Error(err))
		}
	}
	c.SetCookie("session_token", "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"status": "logged out"})
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(c *gin.Context) {
	admin := middleware.GetCurrentAdmin(c)
	if admin == nil {
		errorResponse(c, http.StatusUnauthorized, "not authenticated")
		return
	}
	c.JSON(http.StatusOK, admin)
}
