package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"petition-service/internal/model"
)

var ErrEmptyNotification = errors.New("notification type and petition are required")

// Dispatcher stores one delivery per recipient and then hands the message to
// the configured notifiers, either inline or through a worker queue.
type Dispatcher struct {
	store     Store
	logger    zerolog.Logger
	notifiers map[string]Notifier
	order     []string
	queue     *Queue
	onSent    func(kind string, recipients int)
	now       func() time.Time
}

func NewDispatcher(store Store, logger zerolog.Logger, notifiers ...Notifier) *Dispatcher {
	d := &Dispatcher{
		store:     store,
		logger:    logger.With().Str("component", "notification_dispatcher").Logger(),
		notifiers: make(map[string]Notifier, len(notifiers)),
		now:       time.Now,
	}
	for _, n := range notifiers {
		if n == nil {
			continue
		}
		if _, dup := d.notifiers[n.Name()]; dup {
			continue
		}
		d.notifiers[n.Name()] = n
		d.order = append(d.order, n.Name())
	}
	return d
}

// WithQueue moves notifier fan-out onto a worker pool. The caller owns the
// returned queue's Start and Stop.
func (d *Dispatcher) WithQueue(cfg QueueConfig) *Queue {
	d.queue = NewQueue("notifications", d.runJob, cfg, d.logger)
	return d.queue
}

// OnSent registers a hook called after deliveries are stored.
func (d *Dispatcher) OnSent(fn func(kind string, recipients int)) {
	d.onSent = fn
}

// Send records the notification for every distinct recipient. Recipients
// that already hold the same (petition, type) notification are skipped, so a
// retried workflow step never notifies twice.
func (d *Dispatcher) Send(ctx context.Context, n *model.Notification, recipients []uuid.UUID) error {
	if n == nil || n.Type == "" || n.PetitionID == uuid.Nil {
		return ErrEmptyNotification
	}
	unique := uniqueRecipients(recipients)
	if len(unique) == 0 {
		d.logger.Debug().Str("type", string(n.Type)).Str("petition_number", n.PetitionNumber).Msg("notification has no recipients")
		return nil
	}
	if n.Priority == "" {
		n.Priority = model.NotificationPriorityMedium
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = d.now()
	}

	deliveries := make([]model.NotificationDelivery, 0, len(unique))
	for _, id := range unique {
		deliveries = append(deliveries, model.NotificationDelivery{RecipientID: id})
	}
	created, err := d.store.Create(ctx, n, deliveries)
	if err != nil {
		d.logger.Error().Err(err).Str("type", string(n.Type)).Msg("failed to persist notification")
		return fmt.Errorf("persist notification: %w", err)
	}
	if len(created) == 0 {
		d.logger.Debug().Str("type", string(n.Type)).Str("petition_number", n.PetitionNumber).Msg("duplicate notification suppressed")
		return nil
	}

	if d.onSent != nil {
		d.onSent(string(n.Type), len(created))
	}

	msg := Message{Notification: *n, Recipients: make([]uuid.UUID, 0, len(created))}
	for _, c := range created {
		msg.Recipients = append(msg.Recipients, c.RecipientID)
	}
	d.fanOut(ctx, msg)
	return nil
}

func (d *Dispatcher) ListFor(ctx context.Context, recipientID uuid.UUID, unreadOnly bool, limit int) ([]model.NotificationView, error) {
	return d.store.ListForRecipient(ctx, recipientID, unreadOnly, limit)
}

func (d *Dispatcher) UnreadCount(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	return d.store.CountUnread(ctx, recipientID)
}

func (d *Dispatcher) MarkRead(ctx context.Context, notificationID, recipientID uuid.UUID) error {
	return d.store.MarkRead(ctx, notificationID, recipientID, d.now())
}

func (d *Dispatcher) fanOut(ctx context.Context, msg Message) {
	for _, name := range d.order {
		if d.queue != nil {
			if err := d.queue.Enqueue(Job{Channel: name, Message: msg}); err != nil {
				logNotifyError(d.logger, err, name, msg)
			}
			continue
		}
		logNotifyError(d.logger, d.notifiers[name].Notify(ctx, msg), name, msg)
	}
}

func (d *Dispatcher) runJob(ctx context.Context, job Job) error {
	notifier, ok := d.notifiers[job.Channel]
	if !ok {
		d.logger.Warn().Str("channel", job.Channel).Msg("no notifier for channel")
		return nil
	}
	err := notifier.Notify(ctx, job.Message)
	if errors.Is(err, ErrWebhookRejected) {
		// Resending the same payload gets the same 4xx.
		logNotifyError(d.logger, err, job.Channel, job.Message)
		return nil
	}
	return err
}

func uniqueRecipients(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
