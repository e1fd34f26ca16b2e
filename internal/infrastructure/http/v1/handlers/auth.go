package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tradelink/internal/core/apperror"
	"tradelink/internal/core/appctx"
	"tradelink/internal/core/id"
	"tradelink/internal/domain/auth"
	"tradelink/internal/infrastructure/http/v1/dto"
	"tradelink/internal/infrastructure/http/v1/middleware"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	*BaseHandler
	service *auth.Service
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(base *BaseHandler, service *auth.Service) *AuthHandler {
	return &AuthHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.LoginRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.service.Login(ctx, req.Email, req.Password)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Register handles POST /auth/register
// Creating accounts is an administrative operation.
func (h *AuthHandler) Register(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.RegisterRequest
	if !h.BindJSON(c, &req) {
		return
	}

	user, err := h.service.Register(ctx, req.Email, req.Name, req.Password, req.Role)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

// Me handles GET /auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	ctx := c.Request.Context()

	userCtx := appctx.GetUser(ctx)
	if userCtx == nil {
		h.Error(c, apperror.NewUnauthorized("not authenticated"))
		return
	}

	userID, err := id.Parse(userCtx.UserID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid user id"))
		return
	}

	user, err := h.service.GetByID(ctx, userID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// RegisterRoutes registers auth routes.
func (h *AuthHandler) RegisterRoutes(public, protected *gin.RouterGroup) {
	// Public routes (no auth required)
	public.POST("/login", h.Login)

	// Protected routes (auth required)
	protected.GET("/me", h.Me)
	// NOTE: privileged; only admins may create accounts.
	protected.POST("/register", middleware.RequireRole(auth.RoleAdmin), h.Register)
}
