package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"petition-service/internal/model"
)

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create inserts the notification and its deliveries. Deliveries that collide
// on (petition_id, type, recipient_id) are skipped and the notification row
// is dropped again when nothing new was delivered.
func (r *NotificationRepository) Create(ctx context.Context, n *model.Notification, deliveries []model.NotificationDelivery) ([]model.NotificationDelivery, error) {
	created := make([]model.NotificationDelivery, 0, len(deliveries))
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if n.ID == uuid.Nil {
			n.ID = uuid.New()
		}
		if n.CreatedAt.IsZero() {
			n.CreatedAt = time.Now()
		}
		if err := tx.Omit(clause.Associations).Create(n).Error; err != nil {
			return err
		}

		for _, d := range deliveries {
			d.NotificationID = n.ID
			d.PetitionID = n.PetitionID
			d.Type = n.Type
			d.CreatedAt = n.CreatedAt
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&d)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected > 0 {
				created = append(created, d)
			}
		}

		if len(created) == 0 {
			return tx.Delete(&model.Notification{}, "id = ?", n.ID).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

type notificationRow struct {
	model.Notification
	ReadAt *time.Time
}

func (r *NotificationRepository) ListForRecipient(ctx context.Context, recipientID uuid.UUID, unreadOnly bool, limit int) ([]model.NotificationView, error) {
	query := r.db.WithContext(ctx).
		Table("notifications n").
		Select("n.*, d.read_at").
		Joins("JOIN notification_deliveries d ON d.notification_id = n.id").
		Where("d.recipient_id = ?", recipientID)
	if unreadOnly {
		query = query.Where("d.read_at IS NULL")
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []notificationRow
	if err := query.Order("n.created_at DESC").Scan(&rows).Error; err != nil {
		return nil, err
	}

	views := make([]model.NotificationView, 0, len(rows))
	for _, row := range rows {
		views = append(views, model.NotificationView{
			Notification: row.Notification,
			Read:         row.ReadAt != nil,
			ReadAt:       row.ReadAt,
		})
	}
	return views, nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, notificationID, recipientID uuid.UUID, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&model.NotificationDelivery{}).
		Where("notification_id = ? AND recipient_id = ?", notificationID, recipientID).
		Update("read_at", gorm.Expr("COALESCE(read_at, ?)", at))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *NotificationRepository) CountUnread(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&model.NotificationDelivery{}).
		Where("recipient_id = ? AND read_at IS NULL", recipientID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
