package workflow

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/felixgeelhaar/statekit"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"petition-service/internal/model"
)

type Transition struct {
	Event Event
	From  model.PetitionStatus
	To    model.PetitionStatus
	Actor model.Principal
}

// Observer is notified after every applied transition.
type Observer interface {
	ObserveTransition(event string, from, to string)
}

type Engine struct {
	machine  *statekit.MachineConfig[*machineContext]
	locks    *keyedLocks
	observer Observer
	log      zerolog.Logger
}

func NewEngine(log zerolog.Logger, observer Observer) (*Engine, error) {
	machine, err := newPetitionMachine()
	if err != nil {
		return nil, fmt.Errorf("build petition machine: %w", err)
	}
	return &Engine{
		machine:  machine,
		locks:    newKeyedLocks(),
		observer: observer,
		log:      log.With().Str("component", "workflow").Logger(),
	}, nil
}

// Fire checks the policy and the lifecycle for event and, when both allow it,
// moves the petition to the target status. The petition is left untouched on
// error.
func (e *Engine) Fire(actor model.Principal, petition *model.Petition, event Event) (Transition, error) {
	decision := Authorize(actor.Role, event)
	if !decision.Allowed {
		return Transition{}, fmt.Errorf("%w: %s", ErrForbidden, decision.Reason)
	}

	from := petition.Status
	target, ok := Target(from, event)
	if !ok {
		return Transition{}, fmt.Errorf("%w: cannot %s a petition in status %q", ErrInvalidTransition, event, from)
	}

	reached, err := e.run(actor, from, event, target)
	if err != nil {
		return Transition{}, err
	}
	if reached != target {
		return Transition{}, fmt.Errorf("%w: %s from %q reached %q", ErrInvalidTransition, event, from, reached)
	}

	petition.Status = reached
	if e.observer != nil {
		e.observer.ObserveTransition(string(event), string(from), string(reached))
	}
	e.log.Debug().
		Str("petition_id", petition.ID.String()).
		Str("event", string(event)).
		Str("from", string(from)).
		Str("to", string(reached)).
		Msg("transition applied")

	return Transition{Event: event, From: from, To: reached, Actor: actor}, nil
}

func (e *Engine) run(actor model.Principal, from model.PetitionStatus, event Event, target model.PetitionStatus) (model.PetitionStatus, error) {
	mctx := &machineContext{Actor: actor}
	interp := statekit.NewInterpreter(e.machine)
	interp.UpdateContext(func(c **machineContext) {
		*c = mctx
	})
	interp.Start()
	defer interp.Stop()

	if from != statusNone {
		snapshot := statekit.Snapshot[*machineContext]{
			MachineID:    "petition",
			CurrentState: stateID(from),
			Context:      mctx,
			CreatedAt:    time.Now(),
		}
		if err := interp.Restore(snapshot); err != nil {
			return statusNone, fmt.Errorf("restore petition state %q: %w", from, err)
		}
	}

	interp.Send(statekit.Event{Type: statekit.EventType(event), Payload: target})
	return statusFromState(interp.State().Value), nil
}

// Serialize runs fn while holding the transition lock of one petition, so at
// most one transition per petition is in flight.
func (e *Engine) Serialize(ctx context.Context, petitionID uuid.UUID, fn func() error) error {
	release, err := e.locks.acquire(ctx, petitionID)
	if err != nil {
		return err
	}
	defer release()
	return fn()
}

type keyedLocks struct {
	mu    sync.Mutex
	slots map[uuid.UUID]*lockSlot
}

type lockSlot struct {
	ch   chan struct{}
	refs int
}

func newKeyedLocks() *keyedLocks {
	return &keyedLocks{slots: make(map[uuid.UUID]*lockSlot)}
}

func (k *keyedLocks) acquire(ctx context.Context, id uuid.UUID) (func(), error) {
	k.mu.Lock()
	slot, ok := k.slots[id]
	if !ok {
		slot = &lockSlot{ch: make(chan struct{}, 1)}
		k.slots[id] = slot
	}
	slot.refs++
	k.mu.Unlock()

	select {
	case slot.ch <- struct{}{}:
		return func() {
			<-slot.ch
			k.done(id, slot)
		}, nil
	case <-ctx.Done():
		k.done(id, slot)
		return nil, ctx.Err()
	}
}

func (k *keyedLocks) done(id uuid.UUID, slot *lockSlot) {
	k.mu.Lock()
	slot.refs--
	if slot.refs == 0 {
		delete(k.slots, id)
	}
	k.mu.Unlock()
}
