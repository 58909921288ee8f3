package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// StreamAdder is the slice of the redis client the stream notifier needs.
type StreamAdder interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
}

// StreamNotifier appends every message to a redis stream so other services
// (SMS gateway, dashboards) can consume workflow events.
type StreamNotifier struct {
	client StreamAdder
	stream string
	maxLen int64
}

func NewStreamNotifier(client StreamAdder, stream string, maxLen int64) *StreamNotifier {
	if stream == "" {
		stream = "petition-notifications"
	}
	return &StreamNotifier{client: client, stream: stream, maxLen: maxLen}
}

func (s *StreamNotifier) Name() string { return "redis_stream" }

func (s *StreamNotifier) Notify(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(msg.Notification)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	recipients := make([]string, 0, len(msg.Recipients))
	for _, id := range msg.Recipients {
		recipients = append(recipients, id.String())
	}

	args := &redis.XAddArgs{
		Stream: s.stream,
		Values: map[string]interface{}{
			"notification_id": msg.Notification.ID.String(),
			"type":            string(msg.Notification.Type),
			"petition_id":     msg.Notification.PetitionID.String(),
			"petition_number": msg.Notification.PetitionNumber,
			"recipients":      strings.Join(recipients, ","),
			"payload":         string(payload),
		},
	}
	if s.maxLen > 0 {
		args.MaxLen = s.maxLen
		args.Approx = true
	}
	return s.client.XAdd(ctx, args).Err()
}
