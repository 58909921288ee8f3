package workflow

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"petition-service/internal/model"
)

type observerStub struct {
	mu    sync.Mutex
	calls []string
}

func (o *observerStub) ObserveTransition(event, from, to string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls = append(o.calls, event+":"+from+"->"+to)
}

func newTestEngine(t *testing.T) (*Engine, *observerStub) {
	t.Helper()
	obs := &observerStub{}
	engine, err := NewEngine(zerolog.Nop(), obs)
	require.NoError(t, err)
	return engine, obs
}

func principal(role model.UserRole) model.Principal {
	return model.Principal{UserID: uuid.New(), Role: role}
}

func TestAuthorize(t *testing.T) {
	tests := []struct {
		role    model.UserRole
		event   Event
		allowed bool
	}{
		{model.UserRoleReception, EventSubmit, true},
		{model.UserRoleHOD, EventSubmit, false},
		{model.UserRoleEnquiryOfficer, EventSubmit, false},
		{model.UserRoleHOD, EventAssign, true},
		{model.UserRoleReception, EventAssign, false},
		{model.UserRoleEnquiryOfficer, EventReport, true},
		{model.UserRoleHOD, EventReport, false},
		{model.UserRoleHOD, EventDecide, true},
		{model.UserRoleEnquiryOfficer, EventDecide, false},
		{model.UserRoleAdmin, EventSubmit, true},
		{model.UserRoleAdmin, EventAssign, true},
		{model.UserRoleAdmin, EventReport, true},
		{model.UserRoleAdmin, EventDecide, true},
		{model.UserRoleAdmin, Event("close"), false},
	}
	for _, tt := range tests {
		t.Run(string(tt.role)+"/"+string(tt.event), func(t *testing.T) {
			decision := Authorize(tt.role, tt.event)
			assert.Equal(t, tt.allowed, decision.Allowed)
			assert.NotEmpty(t, decision.Reason)
		})
	}
}

func TestTargetAndTerminal(t *testing.T) {
	to, ok := Target("", EventSubmit)
	require.True(t, ok)
	assert.Equal(t, model.PetitionStatusPending, to)

	_, ok = Target(model.PetitionStatusPending, EventDecide)
	assert.False(t, ok)

	assert.True(t, IsTerminal(model.PetitionStatusDecisionMade))
	assert.False(t, IsTerminal(model.PetitionStatusPending))
}

func TestEngineFullLifecycle(t *testing.T) {
	engine, obs := newTestEngine(t)
	p := &model.Petition{ID: uuid.New()}

	tr, err := engine.Fire(principal(model.UserRoleReception), p, EventSubmit)
	require.NoError(t, err)
	assert.Equal(t, model.PetitionStatusPending, tr.To)
	assert.Equal(t, model.PetitionStatusPending, p.Status)

	_, err = engine.Fire(principal(model.UserRoleHOD), p, EventAssign)
	require.NoError(t, err)
	assert.Equal(t, model.PetitionStatusUnderInvestigation, p.Status)

	_, err = engine.Fire(principal(model.UserRoleEnquiryOfficer), p, EventReport)
	require.NoError(t, err)
	assert.Equal(t, model.PetitionStatusUnderInvestigation, p.Status)

	tr, err = engine.Fire(principal(model.UserRoleHOD), p, EventDecide)
	require.NoError(t, err)
	assert.Equal(t, model.PetitionStatusUnderInvestigation, tr.From)
	assert.Equal(t, model.PetitionStatusDecisionMade, p.Status)

	assert.Len(t, obs.calls, 4)
}

func TestEngineRejectsSkippedStage(t *testing.T) {
	engine, _ := newTestEngine(t)
	p := &model.Petition{ID: uuid.New(), Status: model.PetitionStatusPending}

	_, err := engine.Fire(principal(model.UserRoleHOD), p, EventDecide)
	require.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, model.PetitionStatusPending, p.Status)
}

func TestEngineDecisionIsTerminal(t *testing.T) {
	engine, _ := newTestEngine(t)
	p := &model.Petition{ID: uuid.New(), Status: model.PetitionStatusDecisionMade}

	for _, ev := range []Event{EventSubmit, EventAssign, EventReport, EventDecide} {
		_, err := engine.Fire(principal(model.UserRoleAdmin), p, ev)
		require.ErrorIs(t, err, ErrInvalidTransition, string(ev))
	}
	assert.Equal(t, model.PetitionStatusDecisionMade, p.Status)
}

func TestEngineForbiddenRole(t *testing.T) {
	engine, obs := newTestEngine(t)
	p := &model.Petition{ID: uuid.New(), Status: model.PetitionStatusPending}

	_, err := engine.Fire(principal(model.UserRoleReception), p, EventAssign)
	require.ErrorIs(t, err, ErrForbidden)
	assert.Equal(t, model.PetitionStatusPending, p.Status)
	assert.Empty(t, obs.calls)
}

func TestSerializeRunsOneAtATimePerPetition(t *testing.T) {
	engine, _ := newTestEngine(t)
	id := uuid.New()

	var active, maxActive int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := engine.Serialize(context.Background(), id, func() error {
				n := atomic.AddInt32(&active, 1)
				for {
					m := atomic.LoadInt32(&maxActive)
					if n <= m || atomic.CompareAndSwapInt32(&maxActive, m, n) {
						break
					}
				}
				time.Sleep(time.Millisecond)
				atomic.AddInt32(&active, -1)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), maxActive)
	assert.Empty(t, engine.locks.slots)
}

func TestSerializeHonoursContext(t *testing.T) {
	engine, _ := newTestEngine(t)
	id := uuid.New()

	hold := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_ = engine.Serialize(context.Background(), id, func() error {
			close(started)
			<-hold
			return nil
		})
	}()
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := engine.Serialize(ctx, id, func() error { return nil })
	require.ErrorIs(t, err, context.DeadlineExceeded)
	close(hold)
}
