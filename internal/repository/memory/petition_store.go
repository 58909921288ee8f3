// Package memory holds process-local implementations of the repository
// contracts. They back the service in STORE_DRIVER=memory mode and in tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"petition-service/internal/model"
	"petition-service/internal/repository"
)

type PetitionStore struct {
	mu        sync.RWMutex
	petitions map[uuid.UUID]*model.Petition
	sequences map[int]int
	logs      map[uuid.UUID][]model.PetitionStatusLog
}

func NewPetitionStore() *PetitionStore {
	return &PetitionStore{
		petitions: make(map[uuid.UUID]*model.Petition),
		sequences: make(map[int]int),
		logs:      make(map[uuid.UUID][]model.PetitionStatusLog),
	}
}

// Create issues the next sequence of the petition's creation year under the
// same lock as the insert, so numbers are never reused.
func (s *PetitionStore) Create(ctx context.Context, petition *model.Petition, log *model.PetitionStatusLog) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if petition.ID == uuid.Nil {
		petition.ID = uuid.New()
	}
	if petition.CreatedAt.IsZero() {
		petition.CreatedAt = time.Now()
	}
	petition.UpdatedAt = petition.CreatedAt
	year := petition.CreatedAt.Year()
	s.sequences[year]++
	petition.Year = year
	petition.Sequence = s.sequences[year]
	petition.Number = model.FormatPetitionNumber(year, petition.Sequence)
	petition.Version = 1

	s.petitions[petition.ID] = clonePetition(petition)
	if log != nil {
		s.appendLog(petition.ID, *log, petition.CreatedAt)
	}
	return nil
}

func (s *PetitionStore) GetByID(ctx context.Context, id uuid.UUID) (*model.Petition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.petitions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clonePetition(p), nil
}

func (s *PetitionStore) List(ctx context.Context, filter repository.PetitionFilter) ([]model.Petition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	matched := make([]model.Petition, 0)
	for _, p := range s.petitions {
		if filter.Matches(p) {
			matched = append(matched, *clonePetition(p))
		}
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].Sequence > matched[j].Sequence
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(matched) {
			return []model.Petition{}, nil
		}
		matched = matched[filter.Offset:]
	}
	if limit := filter.EffectiveLimit(); len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

// UpdateWorkflow replaces the mutable workflow fields when the stored version
// still equals expectedVersion. Identity and numbering are never overwritten.
func (s *PetitionStore) UpdateWorkflow(ctx context.Context, petition *model.Petition, expectedVersion int, log *model.PetitionStatusLog) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.petitions[petition.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if current.Version != expectedVersion {
		return repository.ErrVersionConflict
	}

	now := time.Now()
	next := clonePetition(petition)
	next.Number = current.Number
	next.Year = current.Year
	next.Sequence = current.Sequence
	next.CreatedAt = current.CreatedAt
	next.CreatedBy = current.CreatedBy
	next.Version = expectedVersion + 1
	next.UpdatedAt = now
	for i := range next.Assignments {
		next.Assignments[i].PetitionID = next.ID
		if next.Assignments[i].CreatedAt.IsZero() {
			next.Assignments[i].CreatedAt = now
		}
	}
	s.petitions[petition.ID] = next

	petition.Version = next.Version
	petition.UpdatedAt = now
	if log != nil {
		s.appendLog(petition.ID, *log, now)
	}
	return nil
}

func (s *PetitionStore) ListStatusLog(ctx context.Context, petitionID uuid.UUID) ([]model.PetitionStatusLog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	logs := s.logs[petitionID]
	out := make([]model.PetitionStatusLog, len(logs))
	copy(out, logs)
	return out, nil
}

func (s *PetitionStore) Stats(ctx context.Context) (*model.PetitionStats, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	all := make([]model.Petition, 0, len(s.petitions))
	for _, p := range s.petitions {
		all = append(all, *p)
	}
	s.mu.RUnlock()
	return repository.BuildStats(all, time.Now()), nil
}

func (s *PetitionStore) appendLog(petitionID uuid.UUID, entry model.PetitionStatusLog, at time.Time) {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	entry.PetitionID = petitionID
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = at
	}
	s.logs[petitionID] = append(s.logs[petitionID], entry)
}

func clonePetition(p *model.Petition) *model.Petition {
	c := *p
	if p.Assignments != nil {
		c.Assignments = make([]model.PetitionAssignment, len(p.Assignments))
		copy(c.Assignments, p.Assignments)
	}
	return &c
}
