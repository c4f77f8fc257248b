package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/naleksandarn/fermented-sausages/internal/curing/entity"
	"github.com/naleksandarn/fermented-sausages/internal/curing/repository"
	"github.com/naleksandarn/fermented-sausages/internal/curing/sse"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	notificationChannelPrefix = "curetrack:notifications:"
	dispatchInterval          = 2 * time.Second
	dispatchBatchSize         = 100
)

// NotifierService delivers outbox rows. Business transactions only
// insert notifications; this service picks up undispatched rows on a
// timer, publishes them to Redis and the SSE hub, and marks them
// dispatched. A crash between publish and mark re-delivers, so delivery
// is at-least-once.
type NotifierService struct {
	repo   *repository.NotificationRepository
	rdb    *redis.Client
	logger *zap.Logger
}

func NewNotifierService(repo *repository.NotificationRepository, rdb *redis.Client, logger *zap.Logger) *NotifierService {
	return &NotifierService{repo: repo, rdb: rdb, logger: logger}
}

// Start runs the dispatch loop until the context ends.
func (s *NotifierService) Start(ctx context.Context) {
	ticker := time.NewTicker(dispatchInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.DispatchPending(ctx); err != nil {
				s.logger.Warn("notification dispatch failed", zap.Error(err))
			}
		}
	}
}

// DispatchPending delivers one batch of undispatched notifications.
func (s *NotifierService) DispatchPending(ctx context.Context) error {
	pending, err := s.repo.ListUndispatched(ctx, dispatchBatchSize)
	if err != nil {
		return err
	}

	for _, n := range pending {
		payload, err := json.Marshal(n)
		if err != nil {
			s.logger.Error("marshal notification", zap.String("id", n.ID), zap.Error(err))
			continue
		}

		if err := s.rdb.Publish(ctx, notificationChannelPrefix+n.TargetRole, payload).Err(); err != nil {
			s.logger.Warn("publish notification",
				zap.String("id", n.ID),
				zap.String("role", n.TargetRole),
				zap.Error(err))
			// leave the row pending; the next tick retries
			continue
		}

		sse.PublishNotification(n.TargetRole, n.ID, n.Message)

		if err := s.repo.MarkDispatched(ctx, n.ID); err != nil {
			s.logger.Error("mark dispatched", zap.String("id", n.ID), zap.Error(err))
		}
	}
	return nil
}

// ListUnread returns a role's unread notifications, newest first.
func (s *NotifierService) ListUnread(ctx context.Context, role string) ([]entity.Notification, error) {
	return s.repo.ListUnread(ctx, role)
}

// MarkRead marks all of a role's notifications read.
func (s *NotifierService) MarkRead(ctx context.Context, role string) error {
	return s.repo.MarkRead(ctx, role)
}
