// Package config provides environment-driven configuration for the server.
package config

import (
	"fmt"
	"os"
)

// CognitoConfig holds configuration for the Cognito user pool the
// authentication layer wraps.
type CognitoConfig struct {
	Region       string
	UserPoolID   string
	ClientID     string
	ClientSecret string
}

// NewCognitoConfig creates a Cognito configuration from environment variables.
// It reads COGNITO_REGION, COGNITO_USER_POOL_ID and COGNITO_CLIENT_ID
// (all required) and COGNITO_CLIENT_SECRET (optional, only for confidential
// app clients).
func NewCognitoConfig() (*CognitoConfig, error) {
	region := os.Getenv("COGNITO_REGION")
	if region == "" {
		return nil, fmt.Errorf("COGNITO_REGION is required but not set")
	}

	userPoolID := os.Getenv("COGNITO_USER_POOL_ID")
	if userPoolID == "" {
		return nil, fmt.Errorf("COGNITO_USER_POOL_ID is required but not set")
	}

	clientID := os.Getenv("COGNITO_CLIENT_ID")
	if clientID == "" {
		return nil, fmt.Errorf("COGNITO_CLIENT_ID is required but not set")
	}

	return &CognitoConfig{
		Region:       region,
		UserPoolID:   userPoolID,
		ClientID:     clientID,
		ClientSecret: os.Getenv("COGNITO_CLIENT_SECRET"),
	}, nil
}

// Issuer returns the token issuer URL for the user pool.
func (c *CognitoConfig) Issuer() string {
	return fmt.Sprintf("https://cognito-idp.%s.amazonaws.com/%s", c.Region, c.UserPoolID)
}

// JWKSURL returns the URL of the user pool's published signing keys.
func (c *CognitoConfig) JWKSURL() string {
	return c.Issuer() + "/.well-known/jwks.json"
}
