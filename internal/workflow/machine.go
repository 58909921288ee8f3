package workflow

import (
	"github.com/felixgeelhaar/statekit"

	"petition-service/internal/model"
)

// machineContext carries the actor through guards and actions of one run.
type machineContext struct {
	Actor model.Principal
	Trail []model.PetitionStatus
}

const (
	stateDraft              statekit.StateID = "draft"
	statePending            statekit.StateID = "pending"
	stateUnderInvestigation statekit.StateID = "under_investigation"
	stateDecisionMade       statekit.StateID = "decision_made"
)

func stateID(status model.PetitionStatus) statekit.StateID {
	switch status {
	case model.PetitionStatusPending:
		return statePending
	case model.PetitionStatusUnderInvestigation:
		return stateUnderInvestigation
	case model.PetitionStatusDecisionMade:
		return stateDecisionMade
	default:
		return stateDraft
	}
}

func statusFromState(id statekit.StateID) model.PetitionStatus {
	switch id {
	case statePending:
		return model.PetitionStatusPending
	case stateUnderInvestigation:
		return model.PetitionStatusUnderInvestigation
	case stateDecisionMade:
		return model.PetitionStatusDecisionMade
	default:
		return statusNone
	}
}

const (
	evSubmit statekit.EventType = statekit.EventType(EventSubmit)
	evAssign statekit.EventType = statekit.EventType(EventAssign)
	evReport statekit.EventType = statekit.EventType(EventReport)
	evDecide statekit.EventType = statekit.EventType(EventDecide)
)

func newPetitionMachine() (*statekit.MachineConfig[*machineContext], error) {
	return statekit.NewMachine[*machineContext]("petition").
		WithInitial(stateDraft).
		WithContext(&machineContext{}).
		WithAction("track", trackState).
		WithGuard("authorized", guardAuthorized).
		State(stateDraft).
			OnEntry("track").
			On(evSubmit).Target(statePending).Guard("authorized").
			Done().
		State(statePending).
			OnEntry("track").
			On(evAssign).Target(stateUnderInvestigation).Guard("authorized").
			Done().
		State(stateUnderInvestigation).
			OnEntry("track").
			On(evReport).Target(stateUnderInvestigation).Guard("authorized").
			On(evDecide).Target(stateDecisionMade).Guard("authorized").
			Done().
		State(stateDecisionMade).
			Final().
			OnEntry("track").
			Done().
		Build()
}

func guardAuthorized(ctx *machineContext, event statekit.Event) bool {
	if ctx == nil {
		return false
	}
	return Authorize(ctx.Actor.Role, Event(event.Type)).Allowed
}

func trackState(ctx **machineContext, event statekit.Event) {
	if ctx == nil || *ctx == nil {
		return
	}
	if to, ok := event.Payload.(model.PetitionStatus); ok {
		(*ctx).Trail = append((*ctx).Trail, to)
	}
}
