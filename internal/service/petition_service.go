package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"petition-service/internal/model"
	"petition-service/internal/repository"
	"petition-service/internal/workflow"
)

type CreatePetitionInput struct {
	Type                string          `json:"type" validate:"required,encroachment_type"`
	Zone                string          `json:"zone" validate:"required,zone"`
	TimeBound           model.TimeBound `json:"time_bound" validate:"omitempty,time_bound"`
	Source              string          `json:"source" validate:"omitempty,petition_source"`
	SubmittedBy         string          `json:"submitted_by" validate:"omitempty,submitter_type"`
	ReceivedOn          *time.Time      `json:"received_on"`
	PetitionerName      string          `json:"petitioner_name" validate:"required,max=255"`
	PetitionerPhone     string          `json:"petitioner_phone" validate:"required,min=7,max=20"`
	PetitionerAddress   string          `json:"petitioner_address" validate:"required"`
	RespondentName      string          `json:"respondent_name" validate:"max=255"`
	RespondentPhone     string          `json:"respondent_phone" validate:"max=20"`
	RespondentAddress   string          `json:"respondent_address"`
	EncroachmentAddress string          `json:"encroachment_address" validate:"required"`
	Subject             string          `json:"subject" validate:"required,max=500"`
	ComplaintDetails    string          `json:"complaint_details" validate:"required"`
	InitialRemark       string          `json:"initial_remark"`
}

func (in *CreatePetitionInput) trim() {
	for _, f := range []*string{
		&in.Type, &in.Zone, &in.Source, &in.SubmittedBy,
		&in.PetitionerName, &in.PetitionerPhone, &in.PetitionerAddress,
		&in.RespondentName, &in.RespondentPhone, &in.RespondentAddress,
		&in.EncroachmentAddress, &in.Subject, &in.ComplaintDetails, &in.InitialRemark,
	} {
		*f = strings.TrimSpace(*f)
	}
}

type PetitionListOptions struct {
	Statuses   []model.PetitionStatus
	Types      []string
	ZonePrefix string
	TimeBounds []model.TimeBound
	OfficerID  *uuid.UUID
	Search     string
	DateFrom   *time.Time
	DateTo     *time.Time
	Limit      int
	Offset     int
}

type PetitionService struct {
	transitioner
	users    UserStore
	validate *validator.Validate
	log      zerolog.Logger
}

func NewPetitionService(petitions PetitionStore, users UserStore, engine *workflow.Engine, validate *validator.Validate, log zerolog.Logger) *PetitionService {
	if validate == nil {
		validate = NewValidator()
	}
	return &PetitionService{
		transitioner: transitioner{petitions: petitions, engine: engine, now: time.Now},
		users:        users,
		validate:     validate,
		log:          log.With().Str("component", "petition_service").Logger(),
	}
}

// Create registers a new petition in Pending. The petition number is issued
// by the store in the same write as the insert.
func (s *PetitionService) Create(ctx context.Context, actor model.Principal, in CreatePetitionInput) (*model.PetitionRecord, error) {
	if decision := workflow.Authorize(actor.Role, workflow.EventSubmit); !decision.Allowed {
		return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, decision.Reason)
	}

	in.trim()
	if err := s.validate.Struct(in); err != nil {
		return nil, invalidInput(err)
	}
	zone, _ := model.NormalizeZone(in.Zone)
	kind, _ := model.NormalizeEncroachmentType(in.Type)
	source, _ := model.NormalizeSource(in.Source)
	submitter, _ := model.NormalizeSubmitter(in.SubmittedBy)
	timeBound := in.TimeBound
	if timeBound == "" {
		timeBound = model.TimeBoundNormal
	}

	now := s.now()
	receivedOn := now
	if in.ReceivedOn != nil {
		if in.ReceivedOn.After(now) {
			return nil, fmt.Errorf("%w: received_on cannot be in the future", ErrInvalidInput)
		}
		receivedOn = *in.ReceivedOn
	}

	petition := &model.Petition{
		Type:                kind,
		Zone:                zone,
		TimeBound:           timeBound,
		Source:              source,
		SubmittedBy:         submitter,
		ReceivedOn:          time.Date(receivedOn.Year(), receivedOn.Month(), receivedOn.Day(), 0, 0, 0, 0, receivedOn.Location()),
		PetitionerName:      in.PetitionerName,
		PetitionerPhone:     in.PetitionerPhone,
		PetitionerAddress:   in.PetitionerAddress,
		RespondentName:      in.RespondentName,
		RespondentPhone:     in.RespondentPhone,
		RespondentAddress:   in.RespondentAddress,
		EncroachmentAddress: in.EncroachmentAddress,
		Subject:             in.Subject,
		ComplaintDetails:    in.ComplaintDetails,
		InitialRemark:       in.InitialRemark,
		CreatedBy:           actor.UserID,
		CreatedAt:           now,
	}

	transition, err := s.engine.Fire(actor, petition, workflow.EventSubmit)
	if err != nil {
		return nil, err
	}

	entry := &model.PetitionStatusLog{
		NewStatus: transition.To,
		Event:     string(workflow.EventSubmit),
		Note:      in.InitialRemark,
		ChangedBy: &actor.UserID,
		CreatedAt: now,
	}
	if err := s.petitions.Create(ctx, petition, entry); err != nil {
		return nil, translateStoreError(err)
	}

	s.log.Info().
		Str("petition_id", petition.ID.String()).
		Str("petition_number", petition.Number).
		Str("zone", petition.Zone).
		Msg("petition submitted")

	return s.record(ctx, petition)
}

// Get returns the petition if the actor may see it. Petitions outside an
// officer's assignments are reported as not found.
func (s *PetitionService) Get(ctx context.Context, actor model.Principal, id uuid.UUID) (*model.PetitionRecord, error) {
	petition, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return s.record(ctx, petition)
}

func (s *PetitionService) List(ctx context.Context, actor model.Principal, opts PetitionListOptions) ([]model.PetitionRecord, error) {
	filter := repository.PetitionFilter{
		Scope:      model.ScopeFor(actor),
		Statuses:   opts.Statuses,
		Types:      opts.Types,
		ZonePrefix: opts.ZonePrefix,
		TimeBounds: opts.TimeBounds,
		OfficerID:  opts.OfficerID,
		Search:     strings.TrimSpace(opts.Search),
		DateFrom:   opts.DateFrom,
		DateTo:     opts.DateTo,
		Limit:      opts.Limit,
		Offset:     opts.Offset,
	}
	petitions, err := s.petitions.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0)
	for i := range petitions {
		ids = append(ids, petitions[i].OfficerIDs()...)
	}
	briefs, err := officerBriefs(ctx, s.users, ids)
	if err != nil {
		return nil, err
	}

	records := make([]model.PetitionRecord, 0, len(petitions))
	for _, p := range petitions {
		records = append(records, model.PetitionRecord{Petition: p, Officers: pickBriefs(briefs, p.OfficerIDs())})
	}
	return records, nil
}

func (s *PetitionService) History(ctx context.Context, actor model.Principal, id uuid.UUID) ([]model.PetitionStatusLog, error) {
	if _, err := s.load(ctx, actor, id); err != nil {
		return nil, err
	}
	return s.petitions.ListStatusLog(ctx, id)
}

func (s *PetitionService) load(ctx context.Context, actor model.Principal, id uuid.UUID) (*model.Petition, error) {
	petition, err := s.petitions.GetByID(ctx, id)
	if err != nil {
		return nil, translateStoreError(err)
	}
	if !model.ScopeFor(actor).AllowsPetition(petition) {
		return nil, ErrNotFound
	}
	return petition, nil
}

func (s *PetitionService) record(ctx context.Context, petition *model.Petition) (*model.PetitionRecord, error) {
	return buildRecord(ctx, s.users, petition)
}

func buildRecord(ctx context.Context, users UserStore, petition *model.Petition) (*model.PetitionRecord, error) {
	briefs, err := officerBriefs(ctx, users, petition.OfficerIDs())
	if err != nil {
		return nil, err
	}
	return &model.PetitionRecord{Petition: *petition, Officers: pickBriefs(briefs, petition.OfficerIDs())}, nil
}

func officerBriefs(ctx context.Context, users UserStore, ids []uuid.UUID) (map[uuid.UUID]model.OfficerBrief, error) {
	out := make(map[uuid.UUID]model.OfficerBrief)
	if len(ids) == 0 {
		return out, nil
	}
	found, err := users.ListByIDs(ctx, uniqueIDs(ids))
	if err != nil {
		return nil, err
	}
	for _, u := range found {
		out[u.ID] = model.NewOfficerBrief(u)
	}
	return out, nil
}

func pickBriefs(briefs map[uuid.UUID]model.OfficerBrief, ids []uuid.UUID) []model.OfficerBrief {
	out := make([]model.OfficerBrief, 0, len(ids))
	for _, id := range ids {
		if b, ok := briefs[id]; ok {
			out = append(out, b)
		}
	}
	return out
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
