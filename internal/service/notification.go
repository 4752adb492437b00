package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/Skotchmaster/shopcore/internal/logging"
	"github.com/Skotchmaster/shopcore/internal/models"
	"github.com/Skotchmaster/shopcore/internal/mykafka"
	"github.com/Skotchmaster/shopcore/internal/repo"
	"github.com/Skotchmaster/shopcore/internal/socket"
	"github.com/Skotchmaster/shopcore/internal/util"
)

const (
	KindOrder     = "order"
	KindInfo      = "info"
	KindBroadcast = "broadcast"
)

// Pusher delivers frames to live client connections.
type Pusher interface {
	IsOnline(userID uint) bool
	EmitToUser(userID uint, event string, data any) int
	Broadcast(event string, data any) int
}

type NotificationService struct {
	Repo   *repo.GormRepo
	Hub    Pusher
	Events EventPublisher
}

type countPayload struct {
	Count int64 `json:"count"`
}

// Notify stores the notification and pushes it to the user's live connections.
// Only the database write can fail the call.
func (s *NotificationService) Notify(ctx context.Context, userID uint, message, kind string) (*models.Notification, error) {
	message = strings.TrimSpace(message)
	if userID == 0 {
		return nil, fail(ErrValidation, "user id is required")
	}
	if message == "" {
		return nil, fail(ErrValidation, "message is required")
	}
	if kind == "" {
		kind = KindInfo
	}

	n := &models.Notification{UserID: &userID, Message: message, Type: kind}
	if err := s.Repo.CreateNotification(ctx, n); err != nil {
		return nil, err
	}

	if s.Hub != nil && s.Hub.IsOnline(userID) {
		s.Hub.EmitToUser(userID, socket.EventNewNotification, n)
		s.pushCount(ctx, userID)
	}
	publish(ctx, s.Events, mykafka.TopicNotifications, strconv.FormatUint(uint64(userID), 10), "notification_created", n)
	return n, nil
}

func (s *NotificationService) Broadcast(ctx context.Context, message, kind string) (*models.Notification, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, fail(ErrValidation, "message is required")
	}
	if kind == "" {
		kind = KindBroadcast
	}

	n := &models.Notification{Message: message, Type: kind}
	if err := s.Repo.CreateNotification(ctx, n); err != nil {
		return nil, err
	}

	if s.Hub != nil {
		delivered := s.Hub.Broadcast(socket.EventNewNotification, n)
		logging.FromContext(ctx).Info("broadcast_pushed", "notification_id", n.ID, "connections", delivered)
	}
	publish(ctx, s.Events, mykafka.TopicNotifications, "broadcast", "notification_broadcast", n)
	return n, nil
}

func (s *NotificationService) List(ctx context.Context, userID uint, page, size int) (int64, []models.Notification, error) {
	offset, limit := util.Calculate(page, size)
	return s.Repo.ListNotifications(ctx, userID, offset, limit)
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	return s.Repo.CountUnread(ctx, userID)
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, id uint) (*models.Notification, error) {
	n, err := s.Repo.MarkNotificationRead(ctx, id, userID)
	if err != nil {
		return nil, notFound(err, "notification")
	}

	if s.Hub != nil && s.Hub.IsOnline(userID) {
		s.Hub.EmitToUser(userID, socket.EventNotificationRead, map[string]uint{"id": n.ID})
		s.pushCount(ctx, userID)
	}
	return n, nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	changed, err := s.Repo.MarkAllNotificationsRead(ctx, userID)
	if err != nil {
		return 0, err
	}
	if s.Hub != nil && s.Hub.IsOnline(userID) {
		s.Hub.EmitToUser(userID, socket.EventNotificationCount, countPayload{Count: 0})
	}
	return changed, nil
}

func (s *NotificationService) DeleteAll(ctx context.Context, userID uint) (int64, error) {
	deleted, err := s.Repo.DeleteNotifications(ctx, userID)
	if err != nil {
		return 0, err
	}
	if s.Hub != nil && s.Hub.IsOnline(userID) {
		s.Hub.EmitToUser(userID, socket.EventNotificationCount, countPayload{Count: 0})
	}
	return deleted, nil
}

func (s *NotificationService) pushCount(ctx context.Context, userID uint) {
	count, err := s.Repo.CountUnread(ctx, userID)
	if err != nil {
		logging.FromContext(ctx).Warn("unread_count_failed", "user_id", userID, "error", err)
		return
	}
	s.Hub.EmitToUser(userID, socket.EventNotificationCount, countPayload{Count: count})
}
