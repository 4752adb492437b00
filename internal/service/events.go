package service

import (
	"context"
	"time"

	"github.com/Skotchmaster/shopcore/internal/logging"
	"github.com/Skotchmaster/shopcore/internal/models"
	"github.com/Skotchmaster/shopcore/internal/mykafka"
)

const publishTimeout = 5 * time.Second

type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
}

// Notifier is the slice of NotificationService other services depend on.
type Notifier interface {
	Notify(ctx context.Context, userID uint, message, kind string) (*models.Notification, error)
}

// publish is best-effort: failures are logged and never returned.
func publish(ctx context.Context, p EventPublisher, topic, key, typ string, payload any) {
	if p == nil {
		return
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := p.PublishEvent(pctx, topic, key, mykafka.NewEvent(typ, payload)); err != nil {
		logging.FromContext(ctx).Error("kafka_publish_failed", "topic", topic, "type", typ, "error", err)
	}
}

// notify is best-effort: failures are logged and never returned.
func notify(ctx context.Context, n Notifier, userID uint, message, kind string) {
	if n == nil {
		return
	}
	if _, err := n.Notify(ctx, userID, message, kind); err != nil {
		logging.FromContext(ctx).Warn("notification_failed", "user_id", userID, "type", kind, "error", err)
	}
}
