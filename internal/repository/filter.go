package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"petition-service/internal/model"
)

var (
	ErrNotFound        = errors.New("record not found")
	ErrVersionConflict = errors.New("petition was modified concurrently")
	ErrDuplicate       = errors.New("record already exists")
)

const (
	defaultListLimit = 200
	maxListLimit     = 1000
)

// PetitionFilter narrows List results. Zero values mean "any".
type PetitionFilter struct {
	Scope      model.Scope
	Statuses   []model.PetitionStatus
	Types      []string
	ZonePrefix string
	TimeBounds []model.TimeBound
	OfficerID  *uuid.UUID
	CreatedBy  *uuid.UUID
	Search     string
	DateFrom   *time.Time
	DateTo     *time.Time
	Limit      int
	Offset     int
}

// EffectiveLimit clamps Limit into (0, maxListLimit].
func (f PetitionFilter) EffectiveLimit() int {
	switch {
	case f.Limit <= 0:
		return defaultListLimit
	case f.Limit > maxListLimit:
		return maxListLimit
	default:
		return f.Limit
	}
}

// Matches applies the filter to one petition in memory. The postgres
// repository expresses the same predicates in SQL.
func (f PetitionFilter) Matches(p *model.Petition) bool {
	if !f.Scope.AllowsPetition(p) {
		return false
	}
	if len(f.Statuses) > 0 && !containsStatus(f.Statuses, p.Status) {
		return false
	}
	if len(f.Types) > 0 && !containsFold(f.Types, p.Type) {
		return false
	}
	if f.ZonePrefix != "" && !zoneHasPrefix(p.Zone, f.ZonePrefix) {
		return false
	}
	if len(f.TimeBounds) > 0 && !containsTimeBound(f.TimeBounds, p.TimeBound) {
		return false
	}
	if f.OfficerID != nil && !p.IsAssignedTo(*f.OfficerID) {
		return false
	}
	if f.CreatedBy != nil && p.CreatedBy != *f.CreatedBy {
		return false
	}
	if f.DateFrom != nil && p.CreatedAt.Before(*f.DateFrom) {
		return false
	}
	if f.DateTo != nil && p.CreatedAt.After(*f.DateTo) {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		hay := strings.ToLower(strings.Join([]string{p.Number, p.PetitionerName, p.RespondentName, p.Subject, p.EncroachmentAddress}, " "))
		if !strings.Contains(hay, needle) {
			return false
		}
	}
	return true
}

func zoneHasPrefix(zone, prefix string) bool {
	zone, prefix = strings.ToLower(zone), strings.ToLower(strings.Trim(prefix, "/"))
	return zone == prefix || strings.HasPrefix(zone, prefix+"/")
}

func containsStatus(list []model.PetitionStatus, v model.PetitionStatus) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func containsTimeBound(list []model.TimeBound, v model.TimeBound) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func containsFold(list []string, v string) bool {
	for _, s := range list {
		if strings.EqualFold(s, v) {
			return true
		}
	}
	return false
}
