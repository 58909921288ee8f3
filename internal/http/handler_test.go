package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"petition-service/internal/auth"
	"petition-service/internal/http/middleware"
	"petition-service/internal/model"
	"petition-service/internal/notification"
	"petition-service/internal/repository/memory"
	"petition-service/internal/service"
	"petition-service/internal/workflow"
)

const seedPassword = "hydraa@123"

type testServer struct {
	router *gin.Engine
	users  *memory.UserStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := zerolog.Nop()

	petitions := memory.NewPetitionStore()
	users := memory.NewUserStore()
	sessions := memory.NewSessionStore()
	dispatcher := notification.NewDispatcher(memory.NewNotificationStore(), log)
	engine, err := workflow.NewEngine(log, nil)
	require.NoError(t, err)

	_, err = service.SeedUsers(context.Background(), users, seedPassword, log)
	require.NoError(t, err)

	authService := service.NewAuthService(users, sessions, auth.NewTokens("handler-test-secret", time.Hour), log)
	handler := NewHandler(Services{
		Auth:          authService,
		Petitions:     service.NewPetitionService(petitions, users, engine, nil, log),
		Assignments:   service.NewAssignmentService(petitions, users, engine, dispatcher, log),
		Reports:       service.NewReportService(petitions, users, engine, dispatcher, log),
		Decisions:     service.NewDecisionService(petitions, users, engine, dispatcher, log),
		Notifications: service.NewNotificationService(dispatcher),
		Officers:      service.NewOfficerService(users),
		Analytics:     service.NewAnalyticsService(petitions),
	}, log)

	router := NewRouter(handler, middleware.Auth(authService), RouterConfig{Environment: "test", Log: log})
	return &testServer{router: router, users: users}
}

func (s *testServer) login(t *testing.T, email string) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": email, "password": seedPassword})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body struct {
		Data service.LoginResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Data.AccessToken
}

func (s *testServer) do(t *testing.T, method, path, token string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) userID(t *testing.T, email string) uuid.UUID {
	t.Helper()
	u, err := s.users.GetByEmail(context.Background(), email)
	require.NoError(t, err)
	return u.ID
}

func decodeRecord(t *testing.T, rec *httptest.ResponseRecorder) model.PetitionRecord {
	t.Helper()
	var body struct {
		Data model.PetitionRecord `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Data
}

func petitionPayload() map[string]interface{} {
	return map[string]interface{}{
		"type":                 "Road Encroachment",
		"zone":                 "Hyderabad/West/Gachibowli",
		"petitioner_name":      "Rajesh Kumar",
		"petitioner_phone":     "9876543210",
		"petitioner_address":   "Flat 4B, Gachibowli",
		"encroachment_address": "DLF Road, Gachibowli",
		"subject":              "Footpath encroached by shop extension",
		"complaint_details":    "A shop has extended its shed over the footpath.",
		"received_on":          time.Now().Format("2006-01-02"),
	}
}

func TestPetitionLifecycleOverHTTP(t *testing.T) {
	s := newTestServer(t)
	reception := s.login(t, "reception@hydraa.gov.in")
	hod := s.login(t, "commissioner@hydraa.gov.in")
	officer := s.login(t, "suresh.acp@hydraa.gov.in")

	rec := s.do(t, http.MethodPost, "/api/v1/petitions", reception, petitionPayload())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeRecord(t, rec)
	assert.Equal(t, model.PetitionStatusPending, created.Petition.Status)
	path := "/api/v1/petitions/" + created.Petition.ID.String()

	rec = s.do(t, http.MethodPatch, path+"/decide", hod, map[string]string{"outcome": "Approved", "remarks": "Remove within 15 days"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	suresh := s.userID(t, "suresh.acp@hydraa.gov.in")
	rec = s.do(t, http.MethodPatch, path+"/assign", hod, map[string]interface{}{
		"officer_ids":  []string{suresh.String()},
		"instructions": "Inspect within a week",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, model.PetitionStatusUnderInvestigation, decodeRecord(t, rec).Petition.Status)

	rec = s.do(t, http.MethodGet, "/api/v1/petitions", officer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Data struct {
			Items []model.PetitionRecord `json:"items"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Data.Items, 1)

	rec = s.do(t, http.MethodPatch, path+"/report", officer, map[string]string{"report": "Shed over footpath", "recommendation": "Action Required"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPatch, path+"/decide", hod, map[string]string{"outcome": "Approved"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = s.do(t, http.MethodPatch, path+"/decide", hod, map[string]string{"outcome": "Approved", "remarks": "Remove within 15 days"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decided := decodeRecord(t, rec)
	assert.Equal(t, model.PetitionStatusDecisionMade, decided.Petition.Status)
	require.NotNil(t, decided.Petition.DecisionStatus)
	assert.Equal(t, model.DecisionApproved, *decided.Petition.DecisionStatus)

	rec = s.do(t, http.MethodGet, path+"/history", reception, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var history struct {
		Data struct {
			Items []model.PetitionStatusLog `json:"items"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
	assert.Len(t, history.Data.Items, 4)
}

func TestErrorMapping(t *testing.T) {
	s := newTestServer(t)
	reception := s.login(t, "reception@hydraa.gov.in")
	hod := s.login(t, "commissioner@hydraa.gov.in")
	officer := s.login(t, "priya.inspector@hydraa.gov.in")

	rec := s.do(t, http.MethodPost, "/api/v1/petitions", hod, petitionPayload())
	assert.Equal(t, http.StatusForbidden, rec.Code)

	bad := petitionPayload()
	bad["zone"] = "Mumbai"
	rec = s.do(t, http.MethodPost, "/api/v1/petitions", reception, bad)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/petitions/"+uuid.NewString(), hod, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/petitions/not-a-uuid", hod, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	created := decodeRecord(t, s.do(t, http.MethodPost, "/api/v1/petitions", reception, petitionPayload()))
	ids := make([]string, 0, 4)
	for _, email := range []string{"suresh.acp@hydraa.gov.in", "priya.inspector@hydraa.gov.in", "venkat.inspector@hydraa.gov.in"} {
		ids = append(ids, s.userID(t, email).String())
	}
	ids = append(ids, uuid.NewString())
	rec = s.do(t, http.MethodPatch, "/api/v1/petitions/"+created.Petition.ID.String()+"/assign", hod, map[string]interface{}{"officer_ids": ids})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/analytics/summary", officer, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/notifications?userId="+s.userID(t, "suresh.acp@hydraa.gov.in").String(), hod, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/notifications/"+uuid.NewString()+"/read", hod, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListQueriesRejectMalformedValues(t *testing.T) {
	s := newTestServer(t)
	hod := s.login(t, "commissioner@hydraa.gov.in")

	for _, path := range []string{
		"/api/v1/notifications?limit=abc",
		"/api/v1/notifications?limit=-1",
		"/api/v1/notifications?unread=maybe",
		"/api/v1/petitions?limit=ten",
		"/api/v1/petitions?offset=-5",
	} {
		rec := s.do(t, http.MethodGet, path, hod, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
	}

	rec := s.do(t, http.MethodGet, "/api/v1/notifications?unread=true&limit=5", hod, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(t, http.MethodGet, "/api/v1/petitions?limit=10&offset=0", hod, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "reception@hydraa.gov.in", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token := s.login(t, "admin@hydraa.gov.in")
	rec = s.do(t, http.MethodGet, "/api/v1/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var me struct {
		Data model.UserProfile `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	assert.Equal(t, model.UserRoleAdmin, me.Data.Role)

	rec = s.do(t, http.MethodPost, "/api/v1/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPublicEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = s.do(t, http.MethodGet, "/api/v1/reference", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var ref struct {
		Data model.ReferenceData `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ref))
	assert.Contains(t, ref.Data.EncroachmentTypes, "Road Encroachment")

	token := s.login(t, "commissioner@hydraa.gov.in")
	rec = s.do(t, http.MethodGet, "/api/v1/officers", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var officers struct {
		Data struct {
			Items []model.OfficerBrief `json:"items"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &officers))
	assert.Len(t, officers.Data.Items, 3)
}
