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

type DecideInput struct {
	Outcome string `json:"outcome"`
	Remarks string `json:"remarks"`
}

type DecisionService struct {
	transitioner
	users      UserStore
	dispatcher Dispatcher
	log        zerolog.Logger
}

func NewDecisionService(petitions PetitionStore, users UserStore, engine *workflow.Engine, dispatcher Dispatcher, log zerolog.Logger) *DecisionService {
	return &DecisionService{
		transitioner: transitioner{petitions: petitions, engine: engine, now: time.Now},
		users:        users,
		dispatcher:   dispatcher,
		log:          log.With().Str("component", "decision_service").Logger(),
	}
}

// Decide records the commissioner's final outcome. Decision Made is terminal.
func (s *DecisionService) Decide(ctx context.Context, actor model.Principal, petitionID uuid.UUID, in DecideInput) (*model.PetitionRecord, error) {
	if decision := workflow.Authorize(actor.Role, workflow.EventDecide); !decision.Allowed {
		return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, decision.Reason)
	}

	remarks := strings.TrimSpace(in.Remarks)
	raw := strings.TrimSpace(in.Outcome)
	if raw == "" || remarks == "" {
		return nil, ErrIncompleteDecision
	}
	outcome, ok := parseOutcome(raw)
	if !ok {
		return nil, fmt.Errorf("%w: unknown decision outcome %q", ErrInvalidInput, raw)
	}

	petition, _, err := s.run(ctx, actor, petitionID, transitionStep{
		event: workflow.EventDecide,
		note:  remarks,
		apply: func(p *model.Petition, now time.Time) error {
			by, at := actor.UserID, now
			p.DecisionStatus = &outcome
			p.DecisionRemarks = remarks
			p.DecidedBy = &by
			p.DecisionDate = &at
			return nil
		},
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("petition_number", petition.Number).
		Str("outcome", string(outcome)).
		Msg("decision recorded")

	notify(ctx, s.dispatcher, s.log, petitionNotification(
		model.NotificationDecisionMade, model.NotificationPriorityHigh, petition,
		"Decision made",
		"Petition %s was decided: %s. %s", petition.Number, outcome, remarks,
	), petition.CreatedBy)
	notify(ctx, s.dispatcher, s.log, petitionNotification(
		model.NotificationPetitionClosed, model.NotificationPriorityLow, petition,
		"Petition closed",
		"Petition %s has been closed with outcome %s.", petition.Number, outcome,
	), petition.OfficerIDs()...)

	return buildRecord(ctx, s.users, petition)
}

func parseOutcome(raw string) (model.DecisionOutcome, bool) {
	for _, o := range []model.DecisionOutcome{
		model.DecisionApproved,
		model.DecisionDenied,
		model.DecisionPartiallyApproved,
		model.DecisionInvalid,
	} {
		if strings.EqualFold(string(o), raw) {
			return o, true
		}
	}
	return "", false
}
