package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/naleksandarn/fermented-sausages/internal/curing/service"
)

type NotificationHandler struct {
	svc *service.NotifierService
}

func NewNotificationHandler(svc *service.NotifierService) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

// List GET /api/v1/notifications
// Returns the caller's role's unread notifications.
func (h *NotificationHandler) List(c *gin.Context) {
	role := GetUserRole(c)
	if role == "" {
		Unauthorized(c, "missing role")
		return
	}
	items, err := h.svc.ListUnread(c.Request.Context(), role)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, gin.H{"items": items})
}

// MarkRead PUT /api/v1/notifications/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	role := GetUserRole(c)
	if role == "" {
		Unauthorized(c, "missing role")
		return
	}
	if err := h.svc.MarkRead(c.Request.Context(), role); err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, nil)
}
