package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCookie = "session"

type fakeClaims struct {
	userID uuid.UUID
}

func (c fakeClaims) GetUserID() uuid.UUID { return c.userID }

type fakeValidator struct {
	userID    uuid.UUID
	err       error
	lastToken string
}

func (v *fakeValidator) Verify(token string) (UserIDGetter, error) {
	v.lastToken = token
	if v.err != nil {
		return nil, v.err
	}
	return fakeClaims{userID: v.userID}, nil
}

func protectedHandler(t *testing.T, wantUserID uuid.UUID) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := GetUserID(r)
		require.NoError(t, err)
		assert.Equal(t, wantUserID, userID)
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuth_CookieToken(t *testing.T) {
	userID := uuid.New()
	validator := &fakeValidator{userID: userID}
	handler := Auth(validator, testCookie)(protectedHandler(t, userID))

	req := httptest.NewRequest("GET", "/me", nil)
	req.AddCookie(&http.Cookie{Name: testCookie, Value: "cookie-token"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "cookie-token", validator.lastToken)
}

func TestAuth_BearerFallback(t *testing.T) {
	userID := uuid.New()
	validator := &fakeValidator{userID: userID}
	handler := Auth(validator, testCookie)(protectedHandler(t, userID))

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer header-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "header-token", validator.lastToken)
}

func TestAuth_CookieWinsOverHeader(t *testing.T) {
	userID := uuid.New()
	validator := &fakeValidator{userID: userID}
	handler := Auth(validator, testCookie)(protectedHandler(t, userID))

	req := httptest.NewRequest("GET", "/me", nil)
	req.AddCookie(&http.Cookie{Name: testCookie, Value: "cookie-token"})
	req.Header.Set("Authorization", "Bearer header-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "cookie-token", validator.lastToken)
}

func TestAuth_CaseInsensitiveBearer(t *testing.T) {
	userID := uuid.New()
	validator := &fakeValidator{userID: userID}
	handler := Auth(validator, testCookie)(protectedHandler(t, userID))

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "bearer header-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuth_NoToken(t *testing.T) {
	validator := &fakeValidator{userID: uuid.New()}
	handler := Auth(validator, testCookie)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	req := httptest.NewRequest("GET", "/me", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_MalformedHeader(t *testing.T) {
	validator := &fakeValidator{userID: uuid.New()}
	handler := Auth(validator, testCookie)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	for _, header := range []string{"Basic abc", "Bearer", "Bearer a b"} {
		req := httptest.NewRequest("GET", "/me", nil)
		req.Header.Set("Authorization", header)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", header)
	}
}

func TestAuth_InvalidToken(t *testing.T) {
	validator := &fakeValidator{err: errors.New("token expired")}
	handler := Auth(validator, testCookie)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	req := httptest.NewRequest("GET", "/me", nil)
	req.AddCookie(&http.Cookie{Name: testCookie, Value: "expired"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_NilSubject(t *testing.T) {
	validator := &fakeValidator{userID: uuid.Nil}
	handler := Auth(validator, testCookie)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	req := httptest.NewRequest("GET", "/me", nil)
	req.AddCookie(&http.Cookie{Name: testCookie, Value: "token"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_TokenInContext(t *testing.T) {
	userID := uuid.New()
	validator := &fakeValidator{userID: userID}
	handler := Auth(validator, testCookie)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := GetToken(r)
		require.NoError(t, err)
		assert.Equal(t, "cookie-token", token)
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/me", nil)
	req.AddCookie(&http.Cookie{Name: testCookie, Value: "cookie-token"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetToken_Missing(t *testing.T) {
	req := httptest.NewRequest("GET", "/me", nil)
	_, err := GetToken(req)
	assert.Error(t, err)
}

func TestGetUserID_Missing(t *testing.T) {
	req := httptest.NewRequest("GET", "/me", nil)
	_, err := GetUserID(req)
	assert.Error(t, err)
}

func TestWithUserID(t *testing.T) {
	userID := uuid.New()
	req := httptest.NewRequest("GET", "/me", nil)
	req = req.WithContext(WithUserID(req.Context(), userID))

	got, err := GetUserID(req)
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}
