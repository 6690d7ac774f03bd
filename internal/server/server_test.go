package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/jobtrack/internal/db"
)

type fakeUserStore struct {
	existing    *db.User
	getErr      error
	upserted    bool
	upsertEmail string
	upsertName  string
}

func (f *fakeUserStore) GetUser(_ context.Context, _ uuid.UUID) (*db.User, error) {
	return f.existing, f.getErr
}

func (f *fakeUserStore) UpsertUser(_ context.Context, id uuid.UUID, email, name string) (*db.User, error) {
	f.upserted = true
	f.upsertEmail = email
	f.upsertName = name
	return &db.User{ID: id, Email: email, Name: name}, nil
}

type fakeProfileSource struct {
	email  string
	name   string
	err    error
	called bool
}

func (f *fakeProfileSource) Profile(_ context.Context, _ string) (string, string, error) {
	f.called = true
	return f.email, f.name, f.err
}

func TestProvisionUser_CreatesMissingRow(t *testing.T) {
	store := &fakeUserStore{}
	idp := &fakeProfileSource{email: "jane@example.com", name: "Jane"}

	err := provisionUser(context.Background(), store, idp, uuid.New(), "token")
	require.NoError(t, err)
	assert.True(t, idp.called)
	assert.True(t, store.upserted)
	assert.Equal(t, "jane@example.com", store.upsertEmail)
	assert.Equal(t, "Jane", store.upsertName)
}

func TestProvisionUser_ExistingRowSkipsProvider(t *testing.T) {
	store := &fakeUserStore{existing: &db.User{ID: uuid.New()}}
	idp := &fakeProfileSource{}

	err := provisionUser(context.Background(), store, idp, store.existing.ID, "token")
	require.NoError(t, err)
	assert.False(t, idp.called)
	assert.False(t, store.upserted)
}

func TestProvisionUser_ProviderError(t *testing.T) {
	store := &fakeUserStore{}
	idp := &fakeProfileSource{err: errors.New("token revoked")}

	err := provisionUser(context.Background(), store, idp, uuid.New(), "token")
	require.Error(t, err)
	assert.False(t, store.upserted)
}

func TestWithCORS_Wildcard(t *testing.T) {
	s := &Server{}
	handler := s.withCORS(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestWithCORS_ConfiguredOrigin(t *testing.T) {
	s := &Server{corsOrigin: "https://app.example.com"}
	handler := s.withCORS(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/auth/me", nil))

	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	assert.Equal(t, "Origin", rec.Header().Get("Vary"))
}

func TestWithCORS_Preflight(t *testing.T) {
	s := &Server{}
	called := false
	handler := s.withCORS(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("OPTIONS", "/resumes", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, called)
}
