package server

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/jobtrack/internal/db"
	"github.com/jonathan/jobtrack/internal/scoring"
	"github.com/jonathan/jobtrack/internal/server/middleware"
)

func authedRequest(method, target string, userID uuid.UUID) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	return req.WithContext(middleware.WithUserID(req.Context(), userID))
}

func authedJSONRequest(method, target, body string, userID uuid.UUID) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req.WithContext(middleware.WithUserID(req.Context(), userID))
}

func TestUserAndPathID(t *testing.T) {
	s := &Server{}
	userID := uuid.New()
	resourceID := uuid.New()

	req := authedRequest("GET", "/resumes/"+resourceID.String(), userID)
	req.SetPathValue("id", resourceID.String())
	rec := httptest.NewRecorder()

	gotUser, gotID, ok := s.userAndPathID(rec, req)
	require.True(t, ok)
	assert.Equal(t, userID, gotUser)
	assert.Equal(t, resourceID, gotID)
}

func TestUserAndPathID_Unauthenticated(t *testing.T) {
	s := &Server{}
	req := httptest.NewRequest("GET", "/resumes/abc", nil)
	req.SetPathValue("id", uuid.New().String())
	rec := httptest.NewRecorder()

	_, _, ok := s.userAndPathID(rec, req)
	assert.False(t, ok)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUserAndPathID_BadID(t *testing.T) {
	s := &Server{}
	req := authedRequest("GET", "/resumes/not-a-uuid", uuid.New())
	req.SetPathValue("id", "not-a-uuid")
	rec := httptest.NewRecorder()

	_, _, ok := s.userAndPathID(rec, req)
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNotFoundOrInternal(t *testing.T) {
	s := &Server{}

	rec := httptest.NewRecorder()
	s.notFoundOrInternal(rec, fmt.Errorf("resume abc: %w", db.ErrNotFound), "Resume")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	s.notFoundOrInternal(rec, errors.New("connection refused"), "Resume")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	// Infrastructure errors that merely mention "not found" stay 500.
	rec = httptest.NewRecorder()
	s.notFoundOrInternal(rec, errors.New("host not found"), "Resume")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestReportToMap(t *testing.T) {
	report := &scoring.ATSReport{
		Overall:     80,
		Format:      90,
		Keywords:    70,
		Clarity:     85,
		Suggestions: []string{"tighten bullets"},
	}

	m := reportToMap(report)
	assert.Equal(t, float64(80), m["overall"])
	assert.Equal(t, false, m["degraded"])
	assert.Len(t, m["suggestions"], 1)
}

func TestCreateReminder_AnchorValidation(t *testing.T) {
	s := &Server{}
	appID := uuid.New()
	contactID := uuid.New()

	tests := []struct {
		name string
		body string
	}{
		{"no anchor", `{"due_at":"2026-09-01T10:00:00Z","note":"follow up"}`},
		{"both anchors", `{"due_at":"2026-09-01T10:00:00Z","application_id":"` + appID.String() + `","contact_id":"` + contactID.String() + `"}`},
		{"missing due_at", `{"application_id":"` + appID.String() + `"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := authedJSONRequest("POST", "/reminders", tt.body, uuid.New())
			rec := httptest.NewRecorder()

			s.handleCreateReminder(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestThreadFromRequest(t *testing.T) {
	s := &Server{}
	appID := uuid.New()

	req := httptest.NewRequest("GET", "/chat/application/messages?application_id="+appID.String(), nil)
	req.SetPathValue("coach", "application")
	rec := httptest.NewRecorder()

	thread, ok := s.threadFromRequest(rec, req)
	require.True(t, ok)
	assert.Equal(t, "application", thread.Coach)
	require.NotNil(t, thread.ApplicationID)
	assert.Equal(t, appID, *thread.ApplicationID)
	assert.Nil(t, thread.ContactID)
}

func TestThreadFromRequest_UnknownCoach(t *testing.T) {
	s := &Server{}
	req := httptest.NewRequest("GET", "/chat/career/messages", nil)
	req.SetPathValue("coach", "career")
	rec := httptest.NewRecorder()

	_, ok := s.threadFromRequest(rec, req)
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestThreadFromRequest_MissingAnchor(t *testing.T) {
	s := &Server{}

	req := httptest.NewRequest("GET", "/chat/outreach/messages", nil)
	req.SetPathValue("coach", "outreach")
	rec := httptest.NewRecorder()
	_, ok := s.threadFromRequest(rec, req)
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest("GET", "/chat/application/messages", nil)
	req.SetPathValue("coach", "application")
	rec = httptest.NewRecorder()
	_, ok = s.threadFromRequest(rec, req)
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
