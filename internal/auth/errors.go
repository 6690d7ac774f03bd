// Package auth wraps the Cognito identity provider: sign-up, login and
// local verification of the access tokens it issues.
package auth

import "fmt"

// ErrEmailTaken indicates the email is already registered with the user pool
type ErrEmailTaken struct {
	Email string
}

func (e *ErrEmailTaken) Error() string {
	return fmt.Sprintf("email already registered: %s", e.Email)
}

// ErrInvalidCredentials indicates the user pool rejected the credentials
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "invalid email or password"
}

// ErrNotConfirmed indicates the account exists but has not confirmed its email
type ErrNotConfirmed struct {
	Email string
}

func (e *ErrNotConfirmed) Error() string {
	return fmt.Sprintf("account not confirmed: %s", e.Email)
}

// ErrCodeMismatch indicates a wrong or expired confirmation code
type ErrCodeMismatch struct{}

func (e *ErrCodeMismatch) Error() string {
	return "invalid confirmation code"
}

// ErrPasswordPolicy indicates the password does not meet the pool's policy
type ErrPasswordPolicy struct {
	Reason string
}

func (e *ErrPasswordPolicy) Error() string {
	return fmt.Sprintf("password rejected: %s", e.Reason)
}
