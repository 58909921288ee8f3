package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"petition-service/internal/model"
	"petition-service/internal/repository"
)

// PetitionStore is the single authoritative petition register. Stores
// return repository.ErrNotFound for unknown ids and
// repository.ErrVersionConflict when the expected version no longer matches.
type PetitionStore interface {
	Create(ctx context.Context, petition *model.Petition, log *model.PetitionStatusLog) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Petition, error)
	List(ctx context.Context, filter repository.PetitionFilter) ([]model.Petition, error)
	UpdateWorkflow(ctx context.Context, petition *model.Petition, expectedVersion int, log *model.PetitionStatusLog) error
	ListStatusLog(ctx context.Context, petitionID uuid.UUID) ([]model.PetitionStatusLog, error)
	Stats(ctx context.Context) (*model.PetitionStats, error)
}

type UserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]model.User, error)
	ListByRole(ctx context.Context, role model.UserRole) ([]model.User, error)
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, user *model.User) error
}

type SessionStore interface {
	Create(ctx context.Context, session *model.Session) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Session, error)
	Revoke(ctx context.Context, id uuid.UUID, at time.Time) error
}

// Dispatcher delivers workflow notifications to their recipients.
type Dispatcher interface {
	Send(ctx context.Context, notification *model.Notification, recipients []uuid.UUID) error
}

// translateStoreError maps repository sentinels onto service errors.
func translateStoreError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrVersionConflict):
		return ErrConflict
	default:
		return err
	}
}
