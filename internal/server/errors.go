package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/jobtrack/internal/auth"
	"github.com/jonathan/jobtrack/internal/db"
)

// ErrNotFound indicates a resource was not found or belongs to another user.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		notFound      *ErrNotFound
		validation    *ErrValidation
		emailTaken    *auth.ErrEmailTaken
		notConfirmed  *auth.ErrNotConfirmed
		codeMismatch  *auth.ErrCodeMismatch
		badPassword   *auth.ErrPasswordPolicy
		badCredential *auth.ErrInvalidCredentials
	)
	switch {
	case errors.As(err, &notFound), errors.Is(err, db.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &emailTaken):
		return http.StatusConflict
	case errors.As(err, &badCredential):
		return http.StatusUnauthorized
	case errors.As(err, &notConfirmed):
		return http.StatusForbidden
	case errors.As(err, &codeMismatch), errors.As(err, &badPassword):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
