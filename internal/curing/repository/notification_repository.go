package repository

import (
	"context"

	"github.com/naleksandarn/fermented-sausages/internal/curing/entity"
	"gorm.io/gorm"
)

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// ListUnread returns the pending notifications for a role, newest first.
func (r *NotificationRepository) ListUnread(ctx context.Context, role string) ([]entity.Notification, error) {
	var ns []entity.Notification
	err := r.db.WithContext(ctx).
		Where("target_role = ? AND is_read = FALSE", role).
		Order("created_at DESC").
		Find(&ns).Error
	return ns, err
}

func (r *NotificationRepository) MarkRead(ctx context.Context, role string) error {
	return r.db.WithContext(ctx).Model(&entity.Notification{}).
		Where("target_role = ?", role).
		Update("is_read", true).Error
}

// ListUndispatched returns outbox rows awaiting delivery, oldest first.
func (r *NotificationRepository) ListUndispatched(ctx context.Context, limit int) ([]entity.Notification, error) {
	var ns []entity.Notification
	err := r.db.WithContext(ctx).
		Where("dispatched = FALSE").
		Order("created_at ASC").
		Limit(limit).
		Find(&ns).Error
	return ns, err
}

func (r *NotificationRepository) MarkDispatched(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&entity.Notification{}).
		Where("id = ?", id).
		Update("dispatched", true).Error
}
