package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/naleksandarn/fermented-sausages/internal/curing/service"
)

type MeasurementHandler struct {
	svc *service.RecorderService
}

func NewMeasurementHandler(svc *service.RecorderService) *MeasurementHandler {
	return &MeasurementHandler{svc: svc}
}

// Record POST /api/v1/measurements
// One submission from the weighing station; the service decides which
// writes it triggers.
func (h *MeasurementHandler) Record(c *gin.Context) {
	var sub service.Submission
	if err := c.ShouldBindJSON(&sub); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if err := h.svc.Record(c.Request.Context(), &sub); err != nil {
		ServiceError(c, err)
		return
	}
	Created(c, gin.H{"trolleyId": sub.TrolleyID})
}

// History GET /api/v1/trolleys/:id/measurements
func (h *MeasurementHandler) History(c *gin.Context) {
	rows, err := h.svc.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, gin.H{"items": rows})
}

// Update PUT /api/v1/measurements/:id
func (h *MeasurementHandler) Update(c *gin.Context) {
	var req service.CorrectMeasurementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	m, err := h.svc.Correct(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, m)
}

// Delete DELETE /api/v1/measurements/:id
func (h *MeasurementHandler) Delete(c *gin.Context) {
	if err := h.svc.Remove(c.Request.Context(), c.Param("id")); err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, nil)
}
