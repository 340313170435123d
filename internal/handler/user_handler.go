package handler

import (
	"net/http"

	"asset-backend/internal/middleware"
	"asset-backend/internal/model"
	"asset-backend/internal/service"
	"asset-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	svc service.UserService
}

func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/api/auth/login", h.Login)
	router.GET("/api/auth/me", middleware.RequireAuth(), h.Me)
	router.POST("/api/users", middleware.RequireRole(model.RoleAdmin), h.CreateUser)
}

// Login exchanges email+password for a JWT
func (h *UserHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	token, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		// Login failures come back as 401 regardless of kind.
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, token))
}

// Me returns the authenticated user's profile
func (h *UserHandler) Me(c *gin.Context) {
	userID, _ := c.Get("userID")
	userIDStr, _ := userID.(string)

	user, err := h.svc.GetUser(c.Request.Context(), userIDStr)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, user))
}

// CreateUser registers a new account (admin only)
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req service.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	user, err := h.svc.CreateUser(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, user))
}
