package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"petition-service/internal/model"
)

// Inbox is the read side of the notification dispatcher.
type Inbox interface {
	ListFor(ctx context.Context, recipientID uuid.UUID, unreadOnly bool, limit int) ([]model.NotificationView, error)
	UnreadCount(ctx context.Context, recipientID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, notificationID, recipientID uuid.UUID) error
}

type NotificationList struct {
	Items  []model.NotificationView `json:"items"`
	Unread int64                    `json:"unread"`
}

type NotificationService struct {
	inbox Inbox
}

func NewNotificationService(inbox Inbox) *NotificationService {
	return &NotificationService{inbox: inbox}
}

// List returns a user's notifications. Only Admin may read another user's
// inbox.
func (s *NotificationService) List(ctx context.Context, actor model.Principal, userID *uuid.UUID, unreadOnly bool, limit int) (*NotificationList, error) {
	recipient := actor.UserID
	if userID != nil && *userID != actor.UserID {
		if !actor.IsAdmin() {
			return nil, fmt.Errorf("%w: cannot read another user's notifications", ErrPermissionDenied)
		}
		recipient = *userID
	}
	items, err := s.inbox.ListFor(ctx, recipient, unreadOnly, limit)
	if err != nil {
		return nil, err
	}
	unread, err := s.inbox.UnreadCount(ctx, recipient)
	if err != nil {
		return nil, err
	}
	return &NotificationList{Items: items, Unread: unread}, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, actor model.Principal, notificationID uuid.UUID) error {
	return translateStoreError(s.inbox.MarkRead(ctx, notificationID, actor.UserID))
}
