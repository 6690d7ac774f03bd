package config

import (
	"fmt"
	"os"
	"strconv"
)

// DefaultSessionCookie is the name of the cookie carrying the access token.
const DefaultSessionCookie = "jobtrack_session"

// SessionConfig holds configuration for the session cookie issued on login.
type SessionConfig struct {
	CookieName string
	MaxAgeSecs int
	Secure     bool
}

// NewSessionConfig creates a session configuration from environment variables.
// It reads SESSION_COOKIE_NAME (default: jobtrack_session),
// SESSION_MAX_AGE_SECONDS (default: 3600, matching Cognito's access token
// lifetime) and SESSION_COOKIE_SECURE (default: true).
func NewSessionConfig() (*SessionConfig, error) {
	name := os.Getenv("SESSION_COOKIE_NAME")
	if name == "" {
		name = DefaultSessionCookie
	}

	maxAgeStr := os.Getenv("SESSION_MAX_AGE_SECONDS")
	if maxAgeStr == "" {
		maxAgeStr = "3600"
	}
	maxAge, err := strconv.Atoi(maxAgeStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_MAX_AGE_SECONDS: %v", err)
	}
	if maxAge < 1 {
		return nil, fmt.Errorf("SESSION_MAX_AGE_SECONDS must be at least 1, got: %d", maxAge)
	}

	secure := true
	if secureStr := os.Getenv("SESSION_COOKIE_SECURE"); secureStr != "" {
		secure, err = strconv.ParseBool(secureStr)
		if err != nil {
			return nil, fmt.Errorf("invalid SESSION_COOKIE_SECURE: %v", err)
		}
	}

	return &SessionConfig{
		CookieName: name,
		MaxAgeSecs: maxAge,
		Secure:     secure,
	}, nil
}
