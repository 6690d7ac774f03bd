package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/jobtrack/internal/auth"
	"github.com/jonathan/jobtrack/internal/db"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", &ErrNotFound{Resource: "resume", ID: "abc"}, http.StatusNotFound},
		{"db not found", fmt.Errorf("resume abc: %w", db.ErrNotFound), http.StatusNotFound},
		{"validation", &ErrValidation{Field: "status", Message: "unknown"}, http.StatusBadRequest},
		{"email taken", &auth.ErrEmailTaken{Email: "a@b.c"}, http.StatusConflict},
		{"bad credentials", &auth.ErrInvalidCredentials{}, http.StatusUnauthorized},
		{"not confirmed", &auth.ErrNotConfirmed{Email: "a@b.c"}, http.StatusForbidden},
		{"code mismatch", &auth.ErrCodeMismatch{}, http.StatusBadRequest},
		{"password policy", &auth.ErrPasswordPolicy{Reason: "too short"}, http.StatusBadRequest},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
		{"wrapped", fmt.Errorf("login: %w", &auth.ErrInvalidCredentials{}), http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestErrNotFound_Message(t *testing.T) {
	err := &ErrNotFound{Resource: "contact", ID: "123"}
	assert.Equal(t, "contact not found: 123", err.Error())
}
