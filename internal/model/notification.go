package model

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationPetitionAssigned       NotificationType = "petition_assigned"
	NotificationInvestigationStarted   NotificationType = "investigation_started"
	NotificationInvestigationCompleted NotificationType = "investigation_completed"
	NotificationDecisionMade           NotificationType = "decision_made"
	NotificationPetitionClosed         NotificationType = "petition_closed"
)

type NotificationPriority string

const (
	NotificationPriorityLow    NotificationPriority = "low"
	NotificationPriorityMedium NotificationPriority = "medium"
	NotificationPriorityHigh   NotificationPriority = "high"
)

type Notification struct {
	ID             uuid.UUID            `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	Type           NotificationType     `gorm:"type:varchar(32);not null" json:"type"`
	Priority       NotificationPriority `gorm:"type:varchar(16);not null" json:"priority"`
	Title          string               `gorm:"type:text;not null" json:"title"`
	Message        string               `gorm:"type:text;not null" json:"message"`
	PetitionID     uuid.UUID            `gorm:"type:uuid;not null;index" json:"petition_id"`
	PetitionNumber string               `gorm:"type:varchar(32);not null" json:"petition_number"`
	CreatedAt      time.Time            `gorm:"autoCreateTime" json:"timestamp"`

	Deliveries []NotificationDelivery `gorm:"foreignKey:NotificationID" json:"-"`
}

func (Notification) TableName() string {
	return "notifications"
}

// NotificationDelivery is one recipient's copy of a notification. Read state
// lives here so that marking read for one officer leaves the others untouched.
type NotificationDelivery struct {
	NotificationID uuid.UUID        `gorm:"type:uuid;primaryKey" json:"notification_id"`
	RecipientID    uuid.UUID        `gorm:"type:uuid;primaryKey" json:"recipient_id"`
	PetitionID     uuid.UUID        `gorm:"type:uuid;not null" json:"petition_id"`
	Type           NotificationType `gorm:"type:varchar(32);not null" json:"type"`
	ReadAt         *time.Time       `json:"read_at"`
	CreatedAt      time.Time        `gorm:"autoCreateTime" json:"created_at"`
}

func (NotificationDelivery) TableName() string {
	return "notification_deliveries"
}

// DedupeKey identifies a delivery independently of the notification row so
// that a retried workflow event never pings the same recipient twice.
func (d NotificationDelivery) DedupeKey() string {
	return d.PetitionID.String() + "|" + string(d.Type) + "|" + d.RecipientID.String()
}

type NotificationView struct {
	Notification
	Read   bool       `json:"read"`
	ReadAt *time.Time `json:"read_at,omitempty"`
}
