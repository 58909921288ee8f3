package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PetitionStatusLog struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	PetitionID uuid.UUID       `gorm:"type:uuid;not null;index" json:"petition_id"`
	OldStatus  *PetitionStatus `gorm:"type:varchar(32)" json:"old_status"`
	NewStatus  PetitionStatus  `gorm:"type:varchar(32);not null" json:"new_status"`
	Event      string          `gorm:"type:varchar(32);not null" json:"event"`
	Note       string          `gorm:"type:text" json:"note"`
	ChangedBy  *uuid.UUID      `gorm:"type:uuid" json:"changed_by"`
	CreatedAt  time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (PetitionStatusLog) TableName() string {
	return "petition_status_log"
}

func (l *PetitionStatusLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
