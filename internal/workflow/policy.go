// Package workflow owns the petition lifecycle: which events exist, which
// roles may fire them and which status each event leads to.
package workflow

import (
	"errors"
	"fmt"

	"petition-service/internal/model"
)

var (
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidTransition = errors.New("invalid status transition")
)

type Event string

const (
	EventSubmit Event = "submit"
	EventAssign Event = "assign"
	EventReport Event = "report"
	EventDecide Event = "decide"
)

// statusNone is the status of a draft that has not been submitted yet.
const statusNone model.PetitionStatus = ""

type rule struct {
	from  model.PetitionStatus
	to    model.PetitionStatus
	roles []model.UserRole
}

// rules is the single guard table for the lifecycle. Admin is implied for
// every event and therefore not listed.
var rules = map[Event]rule{
	EventSubmit: {
		from:  statusNone,
		to:    model.PetitionStatusPending,
		roles: []model.UserRole{model.UserRoleReception},
	},
	EventAssign: {
		from:  model.PetitionStatusPending,
		to:    model.PetitionStatusUnderInvestigation,
		roles: []model.UserRole{model.UserRoleHOD},
	},
	EventReport: {
		from:  model.PetitionStatusUnderInvestigation,
		to:    model.PetitionStatusUnderInvestigation,
		roles: []model.UserRole{model.UserRoleEnquiryOfficer},
	},
	EventDecide: {
		from:  model.PetitionStatusUnderInvestigation,
		to:    model.PetitionStatusDecisionMade,
		roles: []model.UserRole{model.UserRoleHOD},
	},
}

type Decision struct {
	Allowed bool
	Reason  string
}

// Authorize is consulted by every mutating operation before the state
// machine runs.
func Authorize(role model.UserRole, event Event) Decision {
	r, ok := rules[event]
	if !ok {
		return Decision{Reason: fmt.Sprintf("unknown event %q", event)}
	}
	if role == model.UserRoleAdmin {
		return Decision{Allowed: true, Reason: "admin holds every permission"}
	}
	for _, allowed := range r.roles {
		if allowed == role {
			return Decision{Allowed: true, Reason: fmt.Sprintf("%s may %s", role, event)}
		}
	}
	return Decision{Reason: fmt.Sprintf("role %s may not %s a petition", role, event)}
}

// Target returns the status reached by firing event from the given status.
func Target(from model.PetitionStatus, event Event) (model.PetitionStatus, bool) {
	r, ok := rules[event]
	if !ok || r.from != from {
		return "", false
	}
	return r.to, true
}

// IsTerminal reports whether no event can leave the status.
func IsTerminal(status model.PetitionStatus) bool {
	for _, r := range rules {
		if r.from == status {
			return false
		}
	}
	return true
}
