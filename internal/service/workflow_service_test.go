package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"petition-service/internal/model"
)

func TestAssignMovesToUnderInvestigationAndNotifiesEachOfficer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rec := f.submit(t)

	assigned := f.assign(t, rec.Petition.ID, 0, 1)

	assert.Equal(t, model.PetitionStatusUnderInvestigation, assigned.Petition.Status)
	assert.ElementsMatch(t, []uuid.UUID{f.officers[0].ID, f.officers[1].ID}, assigned.Petition.OfficerIDs())
	assert.Len(t, assigned.Officers, 2)
	assert.Equal(t, 2, assigned.Petition.Version)

	for _, i := range []int{0, 1} {
		views, err := f.dispatcher.ListFor(ctx, f.officers[i].ID, false, 0)
		require.NoError(t, err)
		require.Len(t, views, 1)
		assert.Equal(t, model.NotificationPetitionAssigned, views[0].Type)
		assert.Equal(t, rec.Petition.Number, views[0].PetitionNumber)
	}
	untouched, err := f.dispatcher.ListFor(ctx, f.officers[2].ID, false, 0)
	require.NoError(t, err)
	assert.Empty(t, untouched)

	receptionViews, err := f.dispatcher.ListFor(ctx, f.reception.UserID, false, 0)
	require.NoError(t, err)
	require.Len(t, receptionViews, 1)
	assert.Equal(t, model.NotificationInvestigationStarted, receptionViews[0].Type)
}

func TestAssignValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rec := f.submit(t)
	id := rec.Petition.ID

	_, err := f.assignmentSvc.Assign(ctx, f.hod, id, AssignInput{})
	assert.ErrorIs(t, err, ErrInvalidInput)

	four := []uuid.UUID{f.officers[0].ID, f.officers[1].ID, f.officers[2].ID, f.officers[3].ID}
	_, err = f.assignmentSvc.Assign(ctx, f.hod, id, AssignInput{OfficerIDs: four})
	assert.ErrorIs(t, err, ErrTooManyAssignees)

	_, err = f.assignmentSvc.Assign(ctx, f.hod, id, AssignInput{OfficerIDs: []uuid.UUID{f.officers[0].ID, f.officers[0].ID}})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.assignmentSvc.Assign(ctx, f.hod, id, AssignInput{OfficerIDs: []uuid.UUID{f.reception.UserID}})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.assignmentSvc.Assign(ctx, f.hod, id, AssignInput{OfficerIDs: []uuid.UUID{uuid.New()}})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.assignmentSvc.Assign(ctx, f.reception, id, AssignInput{OfficerIDs: []uuid.UUID{f.officers[0].ID}})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	stored, err := f.petitionSvc.Get(ctx, f.hod, id)
	require.NoError(t, err)
	assert.Equal(t, model.PetitionStatusPending, stored.Petition.Status)
	assert.Empty(t, stored.Petition.Assignments)
}

func TestAssignRejectedWhenThreeOfficersAlreadyAssigned(t *testing.T) {
	f := newFixture(t)
	rec := f.submit(t)
	f.assign(t, rec.Petition.ID, 0, 1, 2)

	_, err := f.assignmentSvc.Assign(context.Background(), f.hod, rec.Petition.ID, AssignInput{OfficerIDs: []uuid.UUID{f.officers[3].ID}})
	assert.ErrorIs(t, err, ErrTooManyAssignees)
}

func TestAssignAppliesTimeBound(t *testing.T) {
	f := newFixture(t)
	rec := f.submit(t)

	out, err := f.assignmentSvc.Assign(context.Background(), f.admin, rec.Petition.ID, AssignInput{
		OfficerIDs: []uuid.UUID{f.officers[0].ID},
		TimeBound:  model.TimeBoundImmediate,
	})
	require.NoError(t, err)
	assert.Equal(t, model.TimeBoundImmediate, out.Petition.TimeBound)
	require.NotNil(t, out.Petition.AssignedBy)
	assert.Equal(t, f.admin.UserID, *out.Petition.AssignedBy)
}

func TestConcurrentAssignmentsApplyOnce(t *testing.T) {
	f := newFixture(t)
	rec := f.submit(t)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.assignmentSvc.Assign(context.Background(), f.hod, rec.Petition.ID, AssignInput{OfficerIDs: []uuid.UUID{f.officers[i].ID}})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, ErrInvalidStatus)
	}
	assert.Equal(t, 1, succeeded)

	stored, err := f.petitionSvc.Get(context.Background(), f.hod, rec.Petition.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Petition.Assignments, 1)
	assert.Equal(t, 2, stored.Petition.Version)
}

func TestDecideRecordsOutcome(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rec := f.submit(t)
	f.assign(t, rec.Petition.ID, 0)

	decided, err := f.decisionSvc.Decide(ctx, f.hod, rec.Petition.ID, DecideInput{Outcome: "Approved", Remarks: "Remove within 15 days"})
	require.NoError(t, err)

	p := decided.Petition
	assert.Equal(t, model.PetitionStatusDecisionMade, p.Status)
	require.NotNil(t, p.DecisionStatus)
	assert.Equal(t, model.DecisionApproved, *p.DecisionStatus)
	assert.Equal(t, "Remove within 15 days", p.DecisionRemarks)
	require.NotNil(t, p.DecisionDate)
	assert.Equal(t, time.Now().Format("2006-01-02"), p.DecisionDate.Format("2006-01-02"))

	receptionViews, err := f.dispatcher.ListFor(ctx, f.reception.UserID, false, 0)
	require.NoError(t, err)
	types := make([]model.NotificationType, 0, len(receptionViews))
	for _, v := range receptionViews {
		types = append(types, v.Type)
	}
	assert.Contains(t, types, model.NotificationDecisionMade)

	officerViews, err := f.dispatcher.ListFor(ctx, f.officers[0].ID, false, 0)
	require.NoError(t, err)
	assert.Len(t, officerViews, 2)

	history, err := f.petitionSvc.History(ctx, f.hod, rec.Petition.ID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "decide", history[2].Event)
}

func TestDecideOnPendingIsInvalidTransition(t *testing.T) {
	f := newFixture(t)
	rec := f.submit(t)

	_, err := f.decisionSvc.Decide(context.Background(), f.hod, rec.Petition.ID, DecideInput{Outcome: "Approved", Remarks: "Remove within 15 days"})
	assert.ErrorIs(t, err, ErrInvalidStatus)

	stored, err := f.petitionSvc.Get(context.Background(), f.hod, rec.Petition.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.Petition.DecisionStatus)
}

func TestDecideValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rec := f.submit(t)
	f.assign(t, rec.Petition.ID, 0)
	id := rec.Petition.ID

	_, err := f.decisionSvc.Decide(ctx, f.hod, id, DecideInput{Outcome: "Approved"})
	assert.ErrorIs(t, err, ErrIncompleteDecision)

	_, err = f.decisionSvc.Decide(ctx, f.hod, id, DecideInput{Remarks: "No outcome"})
	assert.ErrorIs(t, err, ErrIncompleteDecision)

	_, err = f.decisionSvc.Decide(ctx, f.hod, id, DecideInput{Outcome: "Maybe", Remarks: "Unclear"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.decisionSvc.Decide(ctx, f.officer(0), id, DecideInput{Outcome: "Denied", Remarks: "Not mine to decide"})
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestDecisionIsTerminal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rec := f.submit(t)
	f.assign(t, rec.Petition.ID, 0)

	_, err := f.decisionSvc.Decide(ctx, f.hod, rec.Petition.ID, DecideInput{Outcome: "partially approved", Remarks: "Partial removal"})
	require.NoError(t, err)

	_, err = f.decisionSvc.Decide(ctx, f.admin, rec.Petition.ID, DecideInput{Outcome: "Denied", Remarks: "Second thoughts"})
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = f.reportSvc.SubmitReport(ctx, f.officer(0), rec.Petition.ID, ReportInput{Report: "Late report", Recommendation: "Action Required"})
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestSubmitReportNotifiesCommissioners(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rec := f.submit(t)
	f.assign(t, rec.Petition.ID, 0)

	out, err := f.reportSvc.SubmitReport(ctx, f.officer(0), rec.Petition.ID, ReportInput{
		Report:         "Shed extends 2m over the footpath",
		Recommendation: "Action Required",
	})
	require.NoError(t, err)
	assert.Equal(t, model.PetitionStatusUnderInvestigation, out.Petition.Status)
	require.NotNil(t, out.Petition.Recommendation)
	assert.Equal(t, model.RecommendationActionRequired, *out.Petition.Recommendation)

	views, err := f.dispatcher.ListFor(ctx, f.hod.UserID, false, 0)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, model.NotificationInvestigationCompleted, views[0].Type)
}

func TestSubmitReportRequiresAssignment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rec := f.submit(t)
	f.assign(t, rec.Petition.ID, 0)

	_, err := f.reportSvc.SubmitReport(ctx, f.officer(1), rec.Petition.ID, ReportInput{Report: "Not my case", Recommendation: "No Action Required"})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, err = f.reportSvc.SubmitReport(ctx, f.officer(0), rec.Petition.ID, ReportInput{Report: "x", Recommendation: "Later"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.reportSvc.SubmitReport(ctx, f.hod, rec.Petition.ID, ReportInput{Report: "x", Recommendation: "Action Required"})
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestSubmitReportOnPendingIsInvalidTransition(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rec := f.submit(t)

	_, err := f.reportSvc.SubmitReport(ctx, f.officer(0), rec.Petition.ID, ReportInput{Report: "Site inspected", Recommendation: "Action Required"})
	assert.ErrorIs(t, err, ErrInvalidStatus)
	assert.NotErrorIs(t, err, ErrPermissionDenied)
}
