package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/naleksandarn/fermented-sausages/internal/curing/service"
)

type TrolleyHandler struct {
	svc *service.TrolleyService
}

func NewTrolleyHandler(svc *service.TrolleyService) *TrolleyHandler {
	return &TrolleyHandler{svc: svc}
}

// Add POST /api/v1/trolleys
func (h *TrolleyHandler) Add(c *gin.Context) {
	var req service.AddTrolleyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	trolley, err := h.svc.Add(c.Request.Context(), &req)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Created(c, trolley)
}

// Get GET /api/v1/trolleys/:id
func (h *TrolleyHandler) Get(c *gin.Context) {
	trolley, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, trolley)
}

// Delete DELETE /api/v1/trolleys/:id
func (h *TrolleyHandler) Delete(c *gin.Context) {
	if err := h.svc.Remove(c.Request.Context(), c.Param("id")); err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, nil)
}
