package handler

import (
	"net/http"

	"asset-backend/internal/middleware"
	"asset-backend/internal/service"
	"asset-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

// RequestHandler serves one request variant; the same handler is mounted
// twice (demolish-requests, transfer-requests) with different services.
type RequestHandler struct {
	svc  service.RequestService
	slug string
}

func NewRequestHandler(svc service.RequestService, slug string) *RequestHandler {
	return &RequestHandler{svc: svc, slug: slug}
}

func (h *RequestHandler) RegisterRoutes(router *gin.RouterGroup) {
	requests := router.Group("/api/"+h.slug, middleware.RequireAuth())
	{
		requests.GET("", h.List)
		requests.POST("", h.CreateDraft)
		requests.GET("/:id", h.Get)
		requests.POST("/:id/items", h.AddItem)
		requests.POST("/:id/documents", h.AddDocument)
		requests.POST("/:id/submit", h.Submit)
		requests.POST("/:id/approval", h.ActOnApproval)
		requests.POST("/:id/receive", h.Receive)
	}
}

// List returns summaries, optionally filtered by status, newest first
func (h *RequestHandler) List(c *gin.Context) {
	summaries, err := h.svc.List(c.Request.Context(), c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, summaries))
}

// Get returns the full request detail including items, documents, steps and history
func (h *RequestHandler) Get(c *gin.Context) {
	req, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, req))
}

// CreateDraft opens a new DRAFT request for the authenticated user
func (h *RequestHandler) CreateDraft(c *gin.Context) {
	var in service.CreateRequestInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	in.CreatedByName = c.GetString("userName")

	req, err := h.svc.CreateDraft(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, req))
}

type addItemRequest struct {
	AssetID string `json:"asset_id" binding:"required"`
	Note    string `json:"note"`
}

// AddItem adds a catalog asset to a DRAFT request
func (h *RequestHandler) AddItem(c *gin.Context) {
	var body addItemRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	req, err := h.svc.AddItem(c.Request.Context(), c.Param("id"), body.AssetID, body.Note)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, req))
}

type addDocumentRequest struct {
	DocTypeCode string `json:"doc_type_code" binding:"required"`
	FileName    string `json:"file_name" binding:"required"`
}

// AddDocument attaches a document record to a DRAFT demolish request
func (h *RequestHandler) AddDocument(c *gin.Context) {
	var body addDocumentRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	req, err := h.svc.AddDocument(c.Request.Context(), c.Param("id"), body.DocTypeCode, body.FileName)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, req))
}

// Submit moves a DRAFT into the approval flow
func (h *RequestHandler) Submit(c *gin.Context) {
	req, err := h.svc.Submit(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, req))
}

type approvalActionRequest struct {
	Action  string `json:"action" binding:"required,oneof=APPROVE REJECT"`
	Comment string `json:"comment"`
}

// ActOnApproval applies an APPROVE or REJECT by the authenticated user
func (h *RequestHandler) ActOnApproval(c *gin.Context) {
	var body approvalActionRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	req, err := h.svc.ActOnApproval(c.Request.Context(), c.Param("id"), body.Action, c.GetString("userName"), body.Comment)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, req))
}

// Receive records physical receipt of an APPROVED demolish request
func (h *RequestHandler) Receive(c *gin.Context) {
	req, err := h.svc.Receive(c.Request.Context(), c.Param("id"), c.GetString("userName"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, req))
}
