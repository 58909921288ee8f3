package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"petition-service/internal/auth"
	"petition-service/internal/model"
)

// DemoUsers is the initial directory: one account per role plus the enquiry
// officers the commissioner assigns from.
var DemoUsers = []model.User{
	{EmployeeID: "HYD-R-001", Name: "Lakshmi Reddy", Designation: model.DesignationOther, Role: model.UserRoleReception, Email: "reception@hydraa.gov.in", Phone: "9000000001"},
	{EmployeeID: "HYD-C-001", Name: "Ranganath Rao", Designation: model.DesignationDCP, Role: model.UserRoleHOD, Email: "commissioner@hydraa.gov.in", Phone: "9000000002"},
	{EmployeeID: "HYD-O-001", Name: "Suresh Kumar", Designation: model.DesignationACP, Role: model.UserRoleEnquiryOfficer, Email: "suresh.acp@hydraa.gov.in", Phone: "9000000003"},
	{EmployeeID: "HYD-O-002", Name: "Priya Sharma", Designation: model.DesignationInspector, Role: model.UserRoleEnquiryOfficer, Email: "priya.inspector@hydraa.gov.in", Phone: "9000000004"},
	{EmployeeID: "HYD-O-003", Name: "Venkat Naidu", Designation: model.DesignationInspector, Role: model.UserRoleEnquiryOfficer, Email: "venkat.inspector@hydraa.gov.in", Phone: "9000000005"},
	{EmployeeID: "HYD-A-001", Name: "Admin User", Designation: model.DesignationOther, Role: model.UserRoleAdmin, Email: "admin@hydraa.gov.in", Phone: "9000000006"},
}

// SeedUsers creates DemoUsers with the given password when the directory is
// empty. It returns the number of users created.
func SeedUsers(ctx context.Context, users UserStore, password string, log zerolog.Logger) (int, error) {
	if password == "" {
		return 0, nil
	}
	count, err := users.Count(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return 0, fmt.Errorf("hash seed password: %w", err)
	}
	created := 0
	for _, u := range DemoUsers {
		user := u
		user.PasswordHash = hash
		if err := users.Create(ctx, &user); err != nil {
			return created, fmt.Errorf("seed user %s: %w", user.Email, err)
		}
		created++
	}
	log.Info().Int("users", created).Msg("seeded demo users")
	return created, nil
}
