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

type ReportInput struct {
	Report         string `json:"report"`
	Recommendation string `json:"recommendation"`
}

type ReportService struct {
	transitioner
	users      UserStore
	dispatcher Dispatcher
	log        zerolog.Logger
}

func NewReportService(petitions PetitionStore, users UserStore, engine *workflow.Engine, dispatcher Dispatcher, log zerolog.Logger) *ReportService {
	return &ReportService{
		transitioner: transitioner{petitions: petitions, engine: engine, now: time.Now},
		users:        users,
		dispatcher:   dispatcher,
		log:          log.With().Str("component", "report_service").Logger(),
	}
}

// SubmitReport attaches an assigned officer's investigation report. The
// petition stays Under Investigation; every commissioner is notified.
func (s *ReportService) SubmitReport(ctx context.Context, actor model.Principal, petitionID uuid.UUID, in ReportInput) (*model.PetitionRecord, error) {
	if decision := workflow.Authorize(actor.Role, workflow.EventReport); !decision.Allowed {
		return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, decision.Reason)
	}

	report := strings.TrimSpace(in.Report)
	if report == "" {
		return nil, fmt.Errorf("%w: report is required", ErrInvalidInput)
	}
	recommendation := model.Recommendation(strings.TrimSpace(in.Recommendation))
	if !recommendation.Valid() {
		return nil, fmt.Errorf("%w: recommendation must be %q or %q", ErrInvalidInput,
			model.RecommendationActionRequired, model.RecommendationNoActionRequired)
	}

	petition, _, err := s.run(ctx, actor, petitionID, transitionStep{
		event: workflow.EventReport,
		note:  string(recommendation),
		check: func(p *model.Petition) error {
			if _, ok := workflow.Target(p.Status, workflow.EventReport); !ok {
				return fmt.Errorf("%w: cannot report on a petition in status %q", ErrInvalidStatus, p.Status)
			}
			if actor.IsOfficer() && !p.IsAssignedTo(actor.UserID) {
				return fmt.Errorf("%w: petition %s is not assigned to you", ErrPermissionDenied, p.Number)
			}
			return nil
		},
		apply: func(p *model.Petition, now time.Time) error {
			by, at := actor.UserID, now
			p.InvestigationReport = report
			p.Recommendation = &recommendation
			p.ReportedBy = &by
			p.ReportedAt = &at
			return nil
		},
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("petition_number", petition.Number).
		Str("recommendation", string(recommendation)).
		Msg("investigation report submitted")

	hods, err := s.users.ListByRole(ctx, model.UserRoleHOD)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to resolve commissioners for report notification")
	} else {
		recipients := make([]uuid.UUID, 0, len(hods))
		for _, u := range hods {
			recipients = append(recipients, u.ID)
		}
		notify(ctx, s.dispatcher, s.log, petitionNotification(
			model.NotificationInvestigationCompleted, priorityFor(petition.TimeBound), petition,
			"Investigation completed",
			"The investigation report for petition %s is ready: %s.", petition.Number, recommendation,
		), recipients...)
	}

	return buildRecord(ctx, s.users, petition)
}
