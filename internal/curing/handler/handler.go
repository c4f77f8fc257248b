package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/naleksandarn/fermented-sausages/internal/curing/service"
)

// Handlers bundles the HTTP handlers.
type Handlers struct {
	Auth         *AuthHandler
	User         *UserHandler
	Product      *ProductHandler
	Batch        *BatchHandler
	Trolley      *TrolleyHandler
	Measurement  *MeasurementHandler
	Packaging    *PackagingHandler
	Analytics    *AnalyticsHandler
	Notification *NotificationHandler
	SSE          *SSEHandler
}

func NewHandlers(svc *service.Services) *Handlers {
	return &Handlers{
		Auth:         NewAuthHandler(svc.Auth),
		User:         NewUserHandler(svc.User),
		Product:      NewProductHandler(svc.Product),
		Batch:        NewBatchHandler(svc.Batch),
		Trolley:      NewTrolleyHandler(svc.Trolley),
		Measurement:  NewMeasurementHandler(svc.Recorder),
		Packaging:    NewPackagingHandler(svc.Batch, svc.Trolley),
		Analytics:    NewAnalyticsHandler(svc.Analytics),
		Notification: NewNotificationHandler(svc.Notifier),
		SSE:          NewSSEHandler(),
	}
}

// Response is the common envelope.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Success writes a 200 envelope.
func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Created writes a 201 envelope.
func Created(c *gin.Context, data interface{}) {
	c.JSON(201, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Error writes an error envelope. The HTTP status is the application
// code divided by 100.
func Error(c *gin.Context, code int, message string) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = 500
	}
	c.JSON(statusCode, Response{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, message string) {
	Error(c, 40000, message)
}

func Unauthorized(c *gin.Context, message string) {
	Error(c, 40100, message)
}

func Forbidden(c *gin.Context, message string) {
	Error(c, 40300, message)
}

func NotFound(c *gin.Context, message string) {
	Error(c, 40400, message)
}

func Conflict(c *gin.Context, message string) {
	Error(c, 40900, message)
}

func InternalError(c *gin.Context, message string) {
	Error(c, 50000, message)
}

// ServiceError maps the service error taxonomy onto the envelope.
func ServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		NotFound(c, err.Error())
	case errors.Is(err, service.ErrConflict):
		Conflict(c, err.Error())
	case errors.Is(err, service.ErrValidation):
		BadRequest(c, err.Error())
	case errors.Is(err, service.ErrUnauthorized):
		Unauthorized(c, err.Error())
	default:
		InternalError(c, err.Error())
	}
}

// GetUserID reads the authenticated user's id from the request context.
func GetUserID(c *gin.Context) string {
	userID, _ := c.Get("user_id")
	if id, ok := userID.(string); ok {
		return id
	}
	return ""
}

// GetUserRole reads the authenticated user's role from the request
// context.
func GetUserRole(c *gin.Context) string {
	role, _ := c.Get("user_role")
	if r, ok := role.(string); ok {
		return r
	}
	return ""
}
