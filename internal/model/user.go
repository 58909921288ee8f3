package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Designation string

const (
	DesignationDCP       Designation = "DCP"
	DesignationACP       Designation = "ACP"
	DesignationInspector Designation = "Inspector"
	DesignationOther     Designation = "Other"
)

type User struct {
	ID           uuid.UUID   `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	EmployeeID   string      `gorm:"type:varchar(32);not null;uniqueIndex" json:"employee_id"`
	Name         string      `gorm:"type:varchar(255);not null" json:"name"`
	Designation  Designation `gorm:"type:varchar(32);not null" json:"designation"`
	Role         UserRole    `gorm:"type:varchar(32);not null" json:"role"`
	Email        string      `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`
	Phone        string      `gorm:"type:varchar(32)" json:"phone"`
	PasswordHash string      `gorm:"type:text;not null" json:"-"`
	CreatedAt    time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// Handle is the derived "firstName/designation" user id shown in the UI.
func (u User) Handle() string {
	first := u.Name
	if fields := strings.Fields(u.Name); len(fields) > 0 {
		first = fields[0]
	}
	return first + "/" + string(u.Designation)
}

type Session struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	RevokedAt *time.Time `json:"revoked_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (Session) TableName() string {
	return "user_sessions"
}

func (s Session) Active(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}
