package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type PetitionStatus string

const (
	PetitionStatusPending            PetitionStatus = "Pending"
	PetitionStatusUnderInvestigation PetitionStatus = "Under Investigation"
	PetitionStatusDecisionMade       PetitionStatus = "Decision Made"
)

// ParsePetitionStatus accepts the display values as well as the legacy
// "Assigned" label, which is the same in-progress state.
func ParsePetitionStatus(raw string) (PetitionStatus, bool) {
	switch strings.ToLower(strings.Join(strings.Fields(strings.ReplaceAll(raw, "_", " ")), " ")) {
	case "pending":
		return PetitionStatusPending, true
	case "assigned", "under investigation", "underinvestigation":
		return PetitionStatusUnderInvestigation, true
	case "decision made", "decisionmade":
		return PetitionStatusDecisionMade, true
	default:
		return "", false
	}
}

type TimeBound string

const (
	TimeBoundPriority  TimeBound = "Priority"
	TimeBoundImmediate TimeBound = "Immediate"
	TimeBoundNormal    TimeBound = "Normal"
)

func (t TimeBound) Valid() bool {
	switch t {
	case TimeBoundPriority, TimeBoundImmediate, TimeBoundNormal:
		return true
	}
	return false
}

type DecisionOutcome string

const (
	DecisionApproved          DecisionOutcome = "Approved"
	DecisionDenied            DecisionOutcome = "Denied"
	DecisionPartiallyApproved DecisionOutcome = "Partially Approved"
	DecisionInvalid           DecisionOutcome = "Invalid"
)

func (d DecisionOutcome) Valid() bool {
	switch d {
	case DecisionApproved, DecisionDenied, DecisionPartiallyApproved, DecisionInvalid:
		return true
	}
	return false
}

type Recommendation string

const (
	RecommendationActionRequired   Recommendation = "Action Required"
	RecommendationNoActionRequired Recommendation = "No Action Required"
)

func (r Recommendation) Valid() bool {
	return r == RecommendationActionRequired || r == RecommendationNoActionRequired
}

// MaxAssignedOfficers bounds the number of enquiry officers on one petition.
const MaxAssignedOfficers = 3

type Petition struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	Number   string    `gorm:"type:varchar(32);not null;uniqueIndex" json:"petition_number"`
	Year     int       `gorm:"not null" json:"year"`
	Sequence int       `gorm:"not null" json:"sequence"`

	Type        string    `gorm:"type:varchar(128);not null" json:"type"`
	Zone        string    `gorm:"type:text;not null" json:"zone"`
	TimeBound   TimeBound `gorm:"type:varchar(16);not null;default:'Normal'" json:"time_bound"`
	Source      string    `gorm:"type:varchar(32)" json:"source,omitempty"`
	SubmittedBy string    `gorm:"type:varchar(32)" json:"submitted_by,omitempty"`
	ReceivedOn  time.Time `gorm:"type:date;not null" json:"received_on"`

	PetitionerName      string `gorm:"type:varchar(255);not null" json:"petitioner_name"`
	PetitionerPhone     string `gorm:"type:varchar(32);not null" json:"petitioner_phone"`
	PetitionerAddress   string `gorm:"type:text;not null" json:"petitioner_address"`
	RespondentName      string `gorm:"type:varchar(255)" json:"respondent_name"`
	RespondentPhone     string `gorm:"type:varchar(32)" json:"respondent_phone"`
	RespondentAddress   string `gorm:"type:text" json:"respondent_address"`
	EncroachmentAddress string `gorm:"type:text;not null" json:"encroachment_address"`

	Subject          string `gorm:"type:text;not null" json:"subject"`
	ComplaintDetails string `gorm:"type:text;not null" json:"complaint_details"`
	InitialRemark    string `gorm:"type:text" json:"initial_remark"`

	Status                 PetitionStatus   `gorm:"type:varchar(32);not null;default:'Pending'" json:"status"`
	AssignmentInstructions string           `gorm:"type:text" json:"assignment_instructions,omitempty"`
	AssignedBy             *uuid.UUID       `gorm:"type:uuid" json:"assigned_by,omitempty"`
	AssignedAt             *time.Time       `json:"assigned_at,omitempty"`
	InvestigationReport    string           `gorm:"type:text" json:"investigation_report,omitempty"`
	Recommendation         *Recommendation  `gorm:"type:varchar(32)" json:"recommendation,omitempty"`
	ReportedBy             *uuid.UUID       `gorm:"type:uuid" json:"reported_by,omitempty"`
	ReportedAt             *time.Time       `json:"reported_at,omitempty"`
	DecisionStatus         *DecisionOutcome `gorm:"type:varchar(32)" json:"decision_status"`
	DecisionRemarks        string           `gorm:"type:text" json:"decision_remarks,omitempty"`
	DecidedBy              *uuid.UUID       `gorm:"type:uuid" json:"decided_by,omitempty"`
	DecisionDate           *time.Time       `json:"decision_date,omitempty"`

	CreatedBy uuid.UUID `gorm:"type:uuid;not null" json:"created_by"`
	Version   int       `gorm:"not null;default:1" json:"version"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Assignments []PetitionAssignment `gorm:"foreignKey:PetitionID" json:"assignments"`
}

func (Petition) TableName() string {
	return "petitions"
}

// OfficerIDs lists the enquiry officers currently attached to the petition.
func (p *Petition) OfficerIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(p.Assignments))
	for _, a := range p.Assignments {
		ids = append(ids, a.OfficerID)
	}
	return ids
}

func (p *Petition) IsAssignedTo(officerID uuid.UUID) bool {
	for _, a := range p.Assignments {
		if a.OfficerID == officerID {
			return true
		}
	}
	return false
}

type PetitionAssignment struct {
	PetitionID uuid.UUID `gorm:"type:uuid;primaryKey" json:"petition_id"`
	OfficerID  uuid.UUID `gorm:"type:uuid;primaryKey" json:"officer_id"`
	AssignedBy uuid.UUID `gorm:"type:uuid;not null" json:"assigned_by"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (PetitionAssignment) TableName() string {
	return "petition_assignments"
}

// FormatPetitionNumber renders the human readable PTN#####/YYYY number.
func FormatPetitionNumber(year, sequence int) string {
	return fmt.Sprintf("PTN%05d/%d", sequence, year)
}
