package model

import "github.com/google/uuid"

type ScopeType string

const (
	ScopeAll      ScopeType = "ALL"
	ScopeAssigned ScopeType = "ASSIGNED"
)

// Scope limits which petitions a principal can read. Enquiry officers only
// see petitions they are assigned to; every other role sees the whole register.
type Scope struct {
	Type      ScopeType
	OfficerID *uuid.UUID
}

func ScopeFor(principal Principal) Scope {
	if principal.IsOfficer() {
		id := principal.UserID
		return Scope{Type: ScopeAssigned, OfficerID: &id}
	}
	return Scope{Type: ScopeAll}
}

func (s Scope) AllowsPetition(p *Petition) bool {
	if s.Type == ScopeAll {
		return true
	}
	if s.OfficerID == nil {
		return false
	}
	return p.IsAssignedTo(*s.OfficerID)
}
