package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"petition-service/internal/auth"
	"petition-service/internal/model"
	"petition-service/internal/notification"
	"petition-service/internal/repository/memory"
	"petition-service/internal/workflow"
)

type fixture struct {
	petitions     *memory.PetitionStore
	users         *memory.UserStore
	sessions      *memory.SessionStore
	notifications *memory.NotificationStore
	dispatcher    *notification.Dispatcher

	petitionSvc   *PetitionService
	assignmentSvc *AssignmentService
	decisionSvc   *DecisionService
	reportSvc     *ReportService
	authSvc       *AuthService
	inbox         *NotificationService

	reception model.Principal
	hod       model.Principal
	admin     model.Principal
	officers  []model.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := zerolog.Nop()
	engine, err := workflow.NewEngine(log, nil)
	require.NoError(t, err)

	f := &fixture{
		petitions:     memory.NewPetitionStore(),
		users:         memory.NewUserStore(),
		sessions:      memory.NewSessionStore(),
		notifications: memory.NewNotificationStore(),
	}
	f.dispatcher = notification.NewDispatcher(f.notifications, log)

	f.petitionSvc = NewPetitionService(f.petitions, f.users, engine, NewValidator(), log)
	f.assignmentSvc = NewAssignmentService(f.petitions, f.users, engine, f.dispatcher, log)
	f.decisionSvc = NewDecisionService(f.petitions, f.users, engine, f.dispatcher, log)
	f.reportSvc = NewReportService(f.petitions, f.users, engine, f.dispatcher, log)
	f.authSvc = NewAuthService(f.users, f.sessions, auth.NewTokens("test-secret", time.Hour), log)
	f.inbox = NewNotificationService(f.dispatcher)

	f.reception = f.addUser(t, "Lakshmi Reddy", model.DesignationOther, model.UserRoleReception)
	f.hod = f.addUser(t, "Ranganath Rao", model.DesignationDCP, model.UserRoleHOD)
	f.admin = f.addUser(t, "Admin User", model.DesignationOther, model.UserRoleAdmin)
	for _, name := range []string{"Suresh Kumar", "Priya Sharma", "Venkat Naidu", "Anil Varma"} {
		p := f.addUser(t, name, model.DesignationInspector, model.UserRoleEnquiryOfficer)
		u, err := f.users.GetByID(context.Background(), p.UserID)
		require.NoError(t, err)
		f.officers = append(f.officers, *u)
	}
	return f
}

func (f *fixture) addUser(t *testing.T, name string, designation model.Designation, role model.UserRole) model.Principal {
	t.Helper()
	hash, err := auth.HashPassword("password123")
	require.NoError(t, err)
	user := &model.User{
		EmployeeID:   uuid.NewString()[:8],
		Name:         name,
		Designation:  designation,
		Role:         role,
		Email:        uuid.NewString() + "@hydraa.test",
		PasswordHash: hash,
	}
	require.NoError(t, f.users.Create(context.Background(), user))
	return model.Principal{UserID: user.ID, SessionID: uuid.New(), Role: role}
}

func (f *fixture) officer(i int) model.Principal {
	return model.Principal{UserID: f.officers[i].ID, SessionID: uuid.New(), Role: model.UserRoleEnquiryOfficer}
}

func sampleInput() CreatePetitionInput {
	return CreatePetitionInput{
		Type:                "Road Encroachment",
		Zone:                "Hyderabad/West/Gachibowli",
		PetitionerName:      "Rajesh Kumar",
		PetitionerPhone:     "9876543210",
		PetitionerAddress:   "Flat 4B, Gachibowli",
		RespondentName:      "Shop owner",
		EncroachmentAddress: "DLF Road, Gachibowli",
		Subject:             "Footpath encroached by shop extension",
		ComplaintDetails:    "A shop has extended its shed over the footpath.",
		InitialRemark:       "Walk-in complaint",
	}
}

func (f *fixture) submit(t *testing.T) *model.PetitionRecord {
	t.Helper()
	rec, err := f.petitionSvc.Create(context.Background(), f.reception, sampleInput())
	require.NoError(t, err)
	return rec
}

func (f *fixture) assign(t *testing.T, petitionID uuid.UUID, officers ...int) *model.PetitionRecord {
	t.Helper()
	ids := make([]uuid.UUID, 0, len(officers))
	for _, i := range officers {
		ids = append(ids, f.officers[i].ID)
	}
	rec, err := f.assignmentSvc.Assign(context.Background(), f.hod, petitionID, AssignInput{OfficerIDs: ids, Instructions: "Inspect the site"})
	require.NoError(t, err)
	return rec
}
