package service

import (
	"context"
	"fmt"

	"petition-service/internal/model"
)

type OfficerService struct {
	users UserStore
}

func NewOfficerService(users UserStore) *OfficerService {
	return &OfficerService{users: users}
}

func (s *OfficerService) ListOfficers(ctx context.Context) ([]model.OfficerBrief, error) {
	users, err := s.users.ListByRole(ctx, model.UserRoleEnquiryOfficer)
	if err != nil {
		return nil, err
	}
	out := make([]model.OfficerBrief, 0, len(users))
	for _, u := range users {
		out = append(out, model.NewOfficerBrief(u))
	}
	return out, nil
}

type AnalyticsService struct {
	petitions PetitionStore
}

func NewAnalyticsService(petitions PetitionStore) *AnalyticsService {
	return &AnalyticsService{petitions: petitions}
}

// Summary is the register-wide dashboard. Enquiry officers only work their
// own assignments and do not see it.
func (s *AnalyticsService) Summary(ctx context.Context, actor model.Principal) (*model.PetitionStats, error) {
	if actor.IsOfficer() {
		return nil, fmt.Errorf("%w: analytics are not available to enquiry officers", ErrPermissionDenied)
	}
	return s.petitions.Stats(ctx)
}
