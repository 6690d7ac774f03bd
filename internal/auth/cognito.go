package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	appconfig "github.com/jonathan/jobtrack/internal/config"
)

// Tokens holds the token set returned by a successful authentication.
type Tokens struct {
	AccessToken  string `json:"access_token"`
	IDToken      string `json:"id_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int32  `json:"expires_in"`
}

// Cognito wraps the identity provider SDK. All credential handling is
// delegated to the user pool; nothing password-shaped is stored locally.
type Cognito struct {
	client *cognitoidentityprovider.Client
	cfg    *appconfig.CognitoConfig
}

// NewCognito creates a Cognito wrapper for the configured user pool.
func NewCognito(ctx context.Context, cfg *appconfig.CognitoConfig) (*Cognito, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return &Cognito{
		client: cognitoidentityprovider.NewFromConfig(awsCfg),
		cfg:    cfg,
	}, nil
}

// SignUp registers a new account with the user pool and returns the
// Cognito subject assigned to it.
func (c *Cognito) SignUp(ctx context.Context, email, password, name string) (string, error) {
	input := &cognitoidentityprovider.SignUpInput{
		ClientId: &c.cfg.ClientID,
		Username: &email,
		Password: &password,
		UserAttributes: []types.AttributeType{
			{Name: strPtr("email"), Value: &email},
			{Name: strPtr("name"), Value: &name},
		},
	}
	if hash := c.secretHash(email); hash != "" {
		input.SecretHash = &hash
	}

	out, err := c.client.SignUp(ctx, input)
	if err != nil {
		return "", mapCognitoError(err, email)
	}
	if out.UserSub == nil {
		return "", fmt.Errorf("sign up returned no subject")
	}
	return *out.UserSub, nil
}

// ConfirmSignUp confirms a freshly registered account with the emailed code.
func (c *Cognito) ConfirmSignUp(ctx context.Context, email, code string) error {
	input := &cognitoidentityprovider.ConfirmSignUpInput{
		ClientId:         &c.cfg.ClientID,
		Username:         &email,
		ConfirmationCode: &code,
	}
	if hash := c.secretHash(email); hash != "" {
		input.SecretHash = &hash
	}

	if _, err := c.client.ConfirmSignUp(ctx, input); err != nil {
		return mapCognitoError(err, email)
	}
	return nil
}

// Login authenticates with USER_PASSWORD_AUTH and returns the token set.
func (c *Cognito) Login(ctx context.Context, email, password string) (*Tokens, error) {
	params := map[string]string{
		"USERNAME": email,
		"PASSWORD": password,
	}
	if hash := c.secretHash(email); hash != "" {
		params["SECRET_HASH"] = hash
	}

	out, err := c.client.InitiateAuth(ctx, &cognitoidentityprovider.InitiateAuthInput{
		AuthFlow:       types.AuthFlowTypeUserPasswordAuth,
		ClientId:       &c.cfg.ClientID,
		AuthParameters: params,
	})
	if err != nil {
		return nil, mapCognitoError(err, email)
	}
	if out.AuthenticationResult == nil || out.AuthenticationResult.AccessToken == nil {
		return nil, fmt.Errorf("authentication returned no tokens")
	}

	result := out.AuthenticationResult
	tokens := &Tokens{
		AccessToken: *result.AccessToken,
		ExpiresIn:   result.ExpiresIn,
	}
	if result.IdToken != nil {
		tokens.IDToken = *result.IdToken
	}
	if result.RefreshToken != nil {
		tokens.RefreshToken = *result.RefreshToken
	}
	return tokens, nil
}

// Profile looks up the email and name attributes for the holder of an
// access token. Used to provision a local profile for tokens that were
// obtained from the pool directly rather than through this API's login.
func (c *Cognito) Profile(ctx context.Context, accessToken string) (email, name string, err error) {
	out, err := c.client.GetUser(ctx, &cognitoidentityprovider.GetUserInput{
		AccessToken: &accessToken,
	})
	if err != nil {
		return "", "", mapCognitoError(err, "")
	}

	for _, attr := range out.UserAttributes {
		if attr.Name == nil || attr.Value == nil {
			continue
		}
		switch *attr.Name {
		case "email":
			email = *attr.Value
		case "name":
			name = *attr.Value
		}
	}
	if email == "" {
		return "", "", fmt.Errorf("user pool returned no email attribute")
	}
	return email, name, nil
}

// secretHash computes the SECRET_HASH parameter for confidential app
// clients. Returns "" when the client has no secret.
func (c *Cognito) secretHash(username string) string {
	if c.cfg.ClientSecret == "" {
		return ""
	}
	mac := hmac.New(sha256.New, []byte(c.cfg.ClientSecret))
	mac.Write([]byte(username + c.cfg.ClientID))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// mapCognitoError converts SDK error types to this package's typed errors.
func mapCognitoError(err error, email string) error {
	var usernameExists *types.UsernameExistsException
	if errors.As(err, &usernameExists) {
		return &ErrEmailTaken{Email: email}
	}
	var notAuthorized *types.NotAuthorizedException
	if errors.As(err, &notAuthorized) {
		return &ErrInvalidCredentials{}
	}
	var userNotFound *types.UserNotFoundException
	if errors.As(err, &userNotFound) {
		// Same response as a bad password so login can't probe for accounts
		return &ErrInvalidCredentials{}
	}
	var notConfirmed *types.UserNotConfirmedException
	if errors.As(err, &notConfirmed) {
		return &ErrNotConfirmed{Email: email}
	}
	var codeMismatch *types.CodeMismatchException
	if errors.As(err, &codeMismatch) {
		return &ErrCodeMismatch{}
	}
	var expiredCode *types.ExpiredCodeException
	if errors.As(err, &expiredCode) {
		return &ErrCodeMismatch{}
	}
	var invalidPassword *types.InvalidPasswordException
	if errors.As(err, &invalidPassword) {
		return &ErrPasswordPolicy{Reason: invalidPassword.ErrorMessage()}
	}
	return fmt.Errorf("identity provider error: %w", err)
}

func strPtr(s string) *string { return &s }
