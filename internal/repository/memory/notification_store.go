package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"petition-service/internal/model"
	"petition-service/internal/repository"
)

type NotificationStore struct {
	mu            sync.RWMutex
	notifications map[uuid.UUID]model.Notification
	deliveries    map[string]*model.NotificationDelivery
	byRecipient   map[uuid.UUID][]string
}

func NewNotificationStore() *NotificationStore {
	return &NotificationStore{
		notifications: make(map[uuid.UUID]model.Notification),
		deliveries:    make(map[string]*model.NotificationDelivery),
		byRecipient:   make(map[uuid.UUID][]string),
	}
}

// Create stores the notification together with every delivery whose dedupe
// key is new. It returns the deliveries that were actually inserted; when all
// of them already existed the notification itself is not kept.
func (s *NotificationStore) Create(ctx context.Context, n *model.Notification, deliveries []model.NotificationDelivery) ([]model.NotificationDelivery, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	created := make([]model.NotificationDelivery, 0, len(deliveries))
	for _, d := range deliveries {
		d.NotificationID = n.ID
		d.PetitionID = n.PetitionID
		d.Type = n.Type
		d.CreatedAt = n.CreatedAt
		key := d.DedupeKey()
		if _, exists := s.deliveries[key]; exists {
			continue
		}
		stored := d
		s.deliveries[key] = &stored
		s.byRecipient[d.RecipientID] = append(s.byRecipient[d.RecipientID], key)
		created = append(created, d)
	}
	if len(created) > 0 {
		s.notifications[n.ID] = *n
	}
	return created, nil
}

func (s *NotificationStore) ListForRecipient(ctx context.Context, recipientID uuid.UUID, unreadOnly bool, limit int) ([]model.NotificationView, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	out := make([]model.NotificationView, 0)
	for _, key := range s.byRecipient[recipientID] {
		d := s.deliveries[key]
		if unreadOnly && d.ReadAt != nil {
			continue
		}
		n, ok := s.notifications[d.NotificationID]
		if !ok {
			continue
		}
		view := model.NotificationView{Notification: n, Read: d.ReadAt != nil}
		if d.ReadAt != nil {
			at := *d.ReadAt
			view.ReadAt = &at
		}
		out = append(out, view)
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// MarkRead is idempotent: a second call keeps the first read timestamp.
func (s *NotificationStore) MarkRead(ctx context.Context, notificationID, recipientID uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range s.byRecipient[recipientID] {
		d := s.deliveries[key]
		if d.NotificationID != notificationID {
			continue
		}
		if d.ReadAt == nil {
			d.ReadAt = &at
		}
		return nil
	}
	return repository.ErrNotFound
}

func (s *NotificationStore) CountUnread(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, key := range s.byRecipient[recipientID] {
		if s.deliveries[key].ReadAt == nil {
			n++
		}
	}
	return n, nil
}
