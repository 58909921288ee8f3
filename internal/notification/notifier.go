// Package notification persists workflow notifications per recipient and
// fans them out to external channels.
package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"petition-service/internal/model"
)

// Message is one persisted notification together with the recipients that
// received a new delivery for it.
type Message struct {
	Notification model.Notification `json:"notification"`
	Recipients   []uuid.UUID        `json:"recipients"`
}

// Notifier pushes a message to an outside channel. Failures never roll back
// the stored notification.
type Notifier interface {
	Name() string
	Notify(ctx context.Context, msg Message) error
}

// Store is the persistence contract for notifications and their deliveries.
type Store interface {
	Create(ctx context.Context, n *model.Notification, deliveries []model.NotificationDelivery) ([]model.NotificationDelivery, error)
	ListForRecipient(ctx context.Context, recipientID uuid.UUID, unreadOnly bool, limit int) ([]model.NotificationView, error)
	MarkRead(ctx context.Context, notificationID, recipientID uuid.UUID, at time.Time) error
	CountUnread(ctx context.Context, recipientID uuid.UUID) (int64, error)
}

func logNotifyError(logger zerolog.Logger, err error, channel string, msg Message) {
	if err == nil {
		return
	}
	logger.Warn().
		Err(err).
		Str("notification_id", msg.Notification.ID.String()).
		Str("type", string(msg.Notification.Type)).
		Str("petition_number", msg.Notification.PetitionNumber).
		Str("channel", channel).
		Msg("failed to deliver notification")
}
