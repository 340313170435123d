package handler

import (
	"net/http"

	"asset-backend/internal/middleware"
	"asset-backend/internal/model"
	"asset-backend/internal/service"
	"asset-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type SyncHandler struct {
	svc service.SyncService
}

func NewSyncHandler(svc service.SyncService) *SyncHandler {
	return &SyncHandler{svc: svc}
}

func (h *SyncHandler) RegisterRoutes(router *gin.RouterGroup) {
	queue := router.Group("/api/sync-queue")
	{
		queue.GET("", middleware.RequireAuth(), h.List)
		queue.PUT("/:id/complete", middleware.RequireRole(model.RoleAdmin), h.Complete)
	}
}

// List returns outbox entries, optionally filtered by status
func (h *SyncHandler) List(c *gin.Context) {
	entries, err := h.svc.List(c.Request.Context(), c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, entries))
}

// Complete marks an entry as propagated downstream (admin only)
func (h *SyncHandler) Complete(c *gin.Context) {
	if err := h.svc.MarkSynced(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"synced": true}))
}
