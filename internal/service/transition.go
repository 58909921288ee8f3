package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"petition-service/internal/model"
	"petition-service/internal/workflow"
)

// transitioner runs one workflow event against a stored petition: load,
// check, fire, mutate and persist under the petition's engine lock, with the
// store's version check as a second line against lost updates.
type transitioner struct {
	petitions PetitionStore
	engine    *workflow.Engine
	now       func() time.Time
}

type transitionStep struct {
	event workflow.Event
	note  string
	// check runs on the loaded petition before the state machine.
	check func(p *model.Petition) error
	// apply writes the event's fields after the state machine accepted it.
	apply func(p *model.Petition, now time.Time) error
}

func (t *transitioner) run(ctx context.Context, actor model.Principal, petitionID uuid.UUID, step transitionStep) (*model.Petition, workflow.Transition, error) {
	if decision := workflow.Authorize(actor.Role, step.event); !decision.Allowed {
		return nil, workflow.Transition{}, fmt.Errorf("%w: %s", ErrPermissionDenied, decision.Reason)
	}

	var (
		updated    *model.Petition
		transition workflow.Transition
	)
	err := t.engine.Serialize(ctx, petitionID, func() error {
		petition, err := t.petitions.GetByID(ctx, petitionID)
		if err != nil {
			return translateStoreError(err)
		}
		version := petition.Version

		if step.check != nil {
			if err := step.check(petition); err != nil {
				return err
			}
		}

		transition, err = t.engine.Fire(actor, petition, step.event)
		if err != nil {
			return err
		}

		now := t.now()
		if step.apply != nil {
			if err := step.apply(petition, now); err != nil {
				return err
			}
		}

		from := transition.From
		entry := &model.PetitionStatusLog{
			PetitionID: petition.ID,
			OldStatus:  &from,
			NewStatus:  transition.To,
			Event:      string(step.event),
			Note:       step.note,
			ChangedBy:  &actor.UserID,
			CreatedAt:  now,
		}
		if err := t.petitions.UpdateWorkflow(ctx, petition, version, entry); err != nil {
			return translateStoreError(err)
		}
		updated = petition
		return nil
	})
	if err != nil {
		return nil, workflow.Transition{}, err
	}
	return updated, transition, nil
}
