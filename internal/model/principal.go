package model

import "github.com/google/uuid"

type UserRole string

const (
	UserRoleReception      UserRole = "Reception"
	UserRoleEnquiryOfficer UserRole = "EnquiryOfficer"
	UserRoleHOD            UserRole = "HOD"
	UserRoleAdmin          UserRole = "Admin"
)

func (r UserRole) Valid() bool {
	switch r {
	case UserRoleReception, UserRoleEnquiryOfficer, UserRoleHOD, UserRoleAdmin:
		return true
	}
	return false
}

type Principal struct {
	UserID    uuid.UUID
	SessionID uuid.UUID
	Role      UserRole
}

func (p Principal) IsReception() bool {
	return p.Role == UserRoleReception
}

func (p Principal) IsOfficer() bool {
	return p.Role == UserRoleEnquiryOfficer
}

// IsCommissioner reports whether the principal is the HOD (commissioner).
func (p Principal) IsCommissioner() bool {
	return p.Role == UserRoleHOD
}

func (p Principal) IsAdmin() bool {
	return p.Role == UserRoleAdmin
}
