package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/naleksandarn/fermented-sausages/internal/curing/service"
	"github.com/naleksandarn/fermented-sausages/internal/curing/sse"
)

// PackagingHandler serves the packaging station: picking a batch,
// resolving a scanned trolley, and weighing it out.
type PackagingHandler struct {
	batchSvc   *service.BatchService
	trolleySvc *service.TrolleyService
}

func NewPackagingHandler(batchSvc *service.BatchService, trolleySvc *service.TrolleyService) *PackagingHandler {
	return &PackagingHandler{batchSvc: batchSvc, trolleySvc: trolleySvc}
}

// Batches GET /api/v1/packaging/batches
func (h *PackagingHandler) Batches(c *gin.Context) {
	rows, err := h.trolleySvc.PackagingBatches(c.Request.Context())
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, gin.H{"items": rows})
}

// Unpacked GET /api/v1/packaging/batches/:id/trolleys
// Lists a batch's trolleys still waiting at the packaging station.
func (h *PackagingHandler) Unpacked(c *gin.Context) {
	items, err := h.trolleySvc.ListUnpacked(c.Request.Context(), c.Param("id"))
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, gin.H{"items": items})
}

// Lookup GET /api/v1/packaging/lookup?lot=X&trolley=N
func (h *PackagingHandler) Lookup(c *gin.Context) {
	lot := c.Query("lot")
	trolleyStr := c.Query("trolley")
	if lot == "" || trolleyStr == "" {
		BadRequest(c, "lot and trolley are required")
		return
	}
	trolleyNumber, err := strconv.Atoi(trolleyStr)
	if err != nil {
		BadRequest(c, "trolley must be a number")
		return
	}
	row, err := h.trolleySvc.PackagingLookup(c.Request.Context(), lot, trolleyNumber)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, row)
}

// Pack POST /api/v1/packaging/pack
func (h *PackagingHandler) Pack(c *gin.Context) {
	var req service.PackTrolleyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	result, err := h.batchSvc.Pack(c.Request.Context(), &req)
	if err != nil {
		ServiceError(c, err)
		return
	}
	if result.BatchClosed {
		sse.PublishBatchUpdate(result.TrolleyID, "batch_closed")
	}
	Success(c, result)
}
