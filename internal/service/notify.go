package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"petition-service/internal/model"
)

// notify hands a notification to the dispatcher after the petition write has
// committed. A dispatch failure is logged; the workflow change stands.
func notify(ctx context.Context, dispatcher Dispatcher, log zerolog.Logger, n *model.Notification, recipients ...uuid.UUID) {
	if dispatcher == nil || len(recipients) == 0 {
		return
	}
	if err := dispatcher.Send(ctx, n, recipients); err != nil {
		log.Error().Err(err).
			Str("type", string(n.Type)).
			Str("petition_number", n.PetitionNumber).
			Int("recipients", len(recipients)).
			Msg("failed to dispatch notification")
	}
}

func petitionNotification(kind model.NotificationType, priority model.NotificationPriority, p *model.Petition, title, format string, args ...interface{}) *model.Notification {
	return &model.Notification{
		Type:           kind,
		Priority:       priority,
		Title:          title,
		Message:        fmt.Sprintf(format, args...),
		PetitionID:     p.ID,
		PetitionNumber: p.Number,
	}
}

// priorityFor maps the petition urgency onto notification priority.
func priorityFor(tb model.TimeBound) model.NotificationPriority {
	switch tb {
	case model.TimeBoundImmediate, model.TimeBoundPriority:
		return model.NotificationPriorityHigh
	default:
		return model.NotificationPriorityMedium
	}
}
