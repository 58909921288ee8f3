package model

import (
	"time"

	"github.com/google/uuid"
)

type OfficerBrief struct {
	ID          uuid.UUID   `json:"id"`
	EmployeeID  string      `json:"employee_id"`
	Name        string      `json:"name"`
	Designation Designation `json:"designation"`
	UserID      string      `json:"user_id"`
}

func NewOfficerBrief(u User) OfficerBrief {
	return OfficerBrief{
		ID:          u.ID,
		EmployeeID:  u.EmployeeID,
		Name:        u.Name,
		Designation: u.Designation,
		UserID:      u.Handle(),
	}
}

type UserProfile struct {
	ID          uuid.UUID   `json:"id"`
	EmployeeID  string      `json:"employee_id"`
	Name        string      `json:"name"`
	Designation Designation `json:"designation"`
	Role        UserRole    `json:"role"`
	Email       string      `json:"email"`
	Phone       string      `json:"phone"`
	UserID      string      `json:"user_id"`
}

func NewUserProfile(u User) UserProfile {
	return UserProfile{
		ID:          u.ID,
		EmployeeID:  u.EmployeeID,
		Name:        u.Name,
		Designation: u.Designation,
		Role:        u.Role,
		Email:       u.Email,
		Phone:       u.Phone,
		UserID:      u.Handle(),
	}
}

type PetitionRecord struct {
	Petition Petition       `json:"petition"`
	Officers []OfficerBrief `json:"officers"`
}

type CountEntry struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

type PetitionStats struct {
	Total       int64        `json:"total"`
	ByStatus    []CountEntry `json:"by_status"`
	ByType      []CountEntry `json:"by_type"`
	ByZone      []CountEntry `json:"by_zone"`
	ByDecision  []CountEntry `json:"by_decision"`
	ByTimeBound []CountEntry `json:"by_time_bound"`
	ByMonth     []CountEntry `json:"by_month"`
	GeneratedAt time.Time    `json:"generated_at"`
}
