package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"petition-service/internal/model"
	"petition-service/internal/workflow"
)

type AssignInput struct {
	OfficerIDs   []uuid.UUID     `json:"officer_ids"`
	Instructions string          `json:"instructions"`
	TimeBound    model.TimeBound `json:"time_bound"`
}

type AssignmentService struct {
	transitioner
	users      UserStore
	dispatcher Dispatcher
	log        zerolog.Logger
}

func NewAssignmentService(petitions PetitionStore, users UserStore, engine *workflow.Engine, dispatcher Dispatcher, log zerolog.Logger) *AssignmentService {
	return &AssignmentService{
		transitioner: transitioner{petitions: petitions, engine: engine, now: time.Now},
		users:        users,
		dispatcher:   dispatcher,
		log:          log.With().Str("component", "assignment_service").Logger(),
	}
}

// Assign attaches one to three enquiry officers to a Pending petition and
// moves it to Under Investigation. Each officer receives its own
// petition_assigned notification.
func (s *AssignmentService) Assign(ctx context.Context, actor model.Principal, petitionID uuid.UUID, in AssignInput) (*model.PetitionRecord, error) {
	if decision := workflow.Authorize(actor.Role, workflow.EventAssign); !decision.Allowed {
		return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, decision.Reason)
	}

	switch {
	case len(in.OfficerIDs) == 0:
		return nil, fmt.Errorf("%w: at least one officer is required", ErrInvalidInput)
	case len(in.OfficerIDs) > model.MaxAssignedOfficers:
		return nil, ErrTooManyAssignees
	}
	if len(uniqueIDs(in.OfficerIDs)) != len(in.OfficerIDs) {
		return nil, fmt.Errorf("%w: officer ids must be distinct", ErrInvalidInput)
	}
	if in.TimeBound != "" && !in.TimeBound.Valid() {
		return nil, fmt.Errorf("%w: unknown time bound %q", ErrInvalidInput, in.TimeBound)
	}
	if err := s.checkOfficers(ctx, in.OfficerIDs); err != nil {
		return nil, err
	}
	instructions := strings.TrimSpace(in.Instructions)

	petition, _, err := s.run(ctx, actor, petitionID, transitionStep{
		event: workflow.EventAssign,
		note:  instructions,
		check: func(p *model.Petition) error {
			if len(p.Assignments)+len(in.OfficerIDs) > model.MaxAssignedOfficers {
				return ErrTooManyAssignees
			}
			return nil
		},
		apply: func(p *model.Petition, now time.Time) error {
			for _, id := range in.OfficerIDs {
				if p.IsAssignedTo(id) {
					continue
				}
				p.Assignments = append(p.Assignments, model.PetitionAssignment{
					PetitionID: p.ID,
					OfficerID:  id,
					AssignedBy: actor.UserID,
					CreatedAt:  now,
				})
			}
			by, at := actor.UserID, now
			p.AssignedBy = &by
			p.AssignedAt = &at
			p.AssignmentInstructions = instructions
			if in.TimeBound != "" {
				p.TimeBound = in.TimeBound
			}
			return nil
		},
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("petition_number", petition.Number).
		Int("officers", len(in.OfficerIDs)).
		Msg("petition assigned")

	for _, officerID := range in.OfficerIDs {
		notify(ctx, s.dispatcher, s.log, petitionNotification(
			model.NotificationPetitionAssigned, priorityFor(petition.TimeBound), petition,
			"New petition assigned",
			"Petition %s (%s, %s) has been assigned to you for investigation.", petition.Number, petition.Type, petition.Zone,
		), officerID)
	}
	notify(ctx, s.dispatcher, s.log, petitionNotification(
		model.NotificationInvestigationStarted, model.NotificationPriorityLow, petition,
		"Investigation started",
		"Petition %s is now under investigation.", petition.Number,
	), petition.CreatedBy)

	return buildRecord(ctx, s.users, petition)
}

func (s *AssignmentService) checkOfficers(ctx context.Context, ids []uuid.UUID) error {
	users, err := s.users.ListByIDs(ctx, ids)
	if err != nil {
		return err
	}
	byID := make(map[uuid.UUID]model.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	for _, id := range ids {
		u, ok := byID[id]
		if !ok {
			return fmt.Errorf("%w: officer %s", ErrNotFound, id)
		}
		if u.Role != model.UserRoleEnquiryOfficer {
			return fmt.Errorf("%w: user %s is not an enquiry officer", ErrInvalidInput, u.Handle())
		}
	}
	return nil
}
