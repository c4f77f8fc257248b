package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/naleksandarn/fermented-sausages/internal/curing/service"
	"github.com/naleksandarn/fermented-sausages/internal/curing/sse"
)

type BatchHandler struct {
	svc *service.BatchService
}

func NewBatchHandler(svc *service.BatchService) *BatchHandler {
	return &BatchHandler{svc: svc}
}

// Dashboard GET /api/v1/batches
func (h *BatchHandler) Dashboard(c *gin.Context) {
	rows, err := h.svc.Dashboard(c.Request.Context())
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, gin.H{"items": rows})
}

// Archived GET /api/v1/batches/archived
func (h *BatchHandler) Archived(c *gin.Context) {
	rows, err := h.svc.Archived(c.Request.Context())
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, gin.H{"items": rows})
}

// Get GET /api/v1/batches/:id
func (h *BatchHandler) Get(c *gin.Context) {
	batch, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, batch)
}

// Create POST /api/v1/batches
func (h *BatchHandler) Create(c *gin.Context) {
	var req service.CreateBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	batch, err := h.svc.Create(c.Request.Context(), &req)
	if err != nil {
		ServiceError(c, err)
		return
	}
	sse.PublishBatchUpdate(batch.ID, "created")
	Created(c, batch)
}

type moveBatchRequest struct {
	Chamber string `json:"chamber" binding:"required"`
}

// Move PUT /api/v1/batches/:id/move
func (h *BatchHandler) Move(c *gin.Context) {
	var req moveBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	batchID := c.Param("id")
	if err := h.svc.Move(c.Request.Context(), batchID, req.Chamber); err != nil {
		ServiceError(c, err)
		return
	}
	sse.PublishBatchUpdate(batchID, "moved")
	Success(c, gin.H{"chamber": req.Chamber})
}

// Delete DELETE /api/v1/batches/:id
func (h *BatchHandler) Delete(c *gin.Context) {
	batchID := c.Param("id")
	if err := h.svc.Delete(c.Request.Context(), batchID); err != nil {
		ServiceError(c, err)
		return
	}
	sse.PublishBatchUpdate(batchID, "deleted")
	Success(c, nil)
}

// TrolleyDetails GET /api/v1/batches/:id/trolleys
func (h *BatchHandler) TrolleyDetails(c *gin.Context) {
	rows, err := h.svc.TrolleyDetails(c.Request.Context(), c.Param("id"))
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, gin.H{"items": rows})
}

// MeasurementHistory GET /api/v1/batches/:id/history
func (h *BatchHandler) MeasurementHistory(c *gin.Context) {
	rows, err := h.svc.MeasurementHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, gin.H{"items": rows})
}
