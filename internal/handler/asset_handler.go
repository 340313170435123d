package handler

import (
	"net/http"

	"asset-backend/internal/middleware"
	"asset-backend/internal/model"
	"asset-backend/internal/service"
	"asset-backend/pkg/pagination"
	"asset-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type AssetHandler struct {
	svc service.AssetService
}

func NewAssetHandler(svc service.AssetService) *AssetHandler {
	return &AssetHandler{svc: svc}
}

func (h *AssetHandler) RegisterRoutes(router *gin.RouterGroup) {
	assets := router.Group("/api/assets", middleware.RequireAuth())
	{
		assets.GET("", h.List)
		assets.GET("/metrics", h.Metrics)
		assets.GET("/:id", h.Get)
	}
	router.POST("/api/assets", middleware.RequireRole(model.RoleAdmin), h.Create)
}

// List returns catalog assets filtered by search text and mode
func (h *AssetHandler) List(c *gin.Context) {
	params := pagination.Parse(c)
	assets, total, err := h.svc.List(c.Request.Context(), service.AssetFilter{
		Search: c.Query("search"),
		Mode:   c.Query("mode"),
		Offset: params.Offset,
		Limit:  params.Limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": http.StatusOK,
		"data":   assets,
		"total":  total,
		"page":   params.Page,
		"limit":  params.Limit,
	})
}

// Metrics returns catalog counters for the dashboard
func (h *AssetHandler) Metrics(c *gin.Context) {
	metrics, err := h.svc.Metrics(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, metrics))
}

// Get returns one asset by id
func (h *AssetHandler) Get(c *gin.Context) {
	asset, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, asset))
}

// Create registers a new catalog asset (admin only)
func (h *AssetHandler) Create(c *gin.Context) {
	var in service.CreateAssetInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	asset, err := h.svc.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, asset))
}
