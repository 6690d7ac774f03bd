package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testIssuer   = "https://cognito-idp.us-east-1.amazonaws.com/us-east-1_test"
	testClientID = "test-client-id"
)

type verifierFixture struct {
	verifier *Verifier
	key      *rsa.PrivateKey
	kid      string
	server   *httptest.Server
}

func newVerifierFixture(t *testing.T) *verifierFixture {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	kid := "test-key-1"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		doc := map[string]any{
			"keys": []map[string]string{{
				"kid": kid,
				"kty": "RSA",
				"n":   base64.RawURLEncoding.EncodeToString(key.N.Bytes()),
				"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.E)).Bytes()),
			}},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(doc)
	}))
	t.Cleanup(server.Close)

	return &verifierFixture{
		verifier: NewVerifier(testIssuer, testClientID, server.URL),
		key:      key,
		kid:      kid,
		server:   server,
	}
}

func (f *verifierFixture) signToken(t *testing.T, claims *Claims, kid string) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = kid
	signed, err := token.SignedString(f.key)
	require.NoError(t, err)
	return signed
}

func validClaims(subject string) *Claims {
	return &Claims{
		TokenUse: "access",
		ClientID: testClientID,
		Username: subject,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    testIssuer,
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
}

func TestVerifier_ValidToken(t *testing.T) {
	f := newVerifierFixture(t)
	userID := uuid.New()

	token := f.signToken(t, validClaims(userID.String()), f.kid)

	claims, err := f.verifier.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.GetUserID())
	assert.Equal(t, "access", claims.TokenUse)
}

func TestVerifier_EmptyToken(t *testing.T) {
	f := newVerifierFixture(t)

	_, err := f.verifier.Verify("")
	assert.Error(t, err)
}

func TestVerifier_ExpiredToken(t *testing.T) {
	f := newVerifierFixture(t)

	claims := validClaims(uuid.New().String())
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))
	token := f.signToken(t, claims, f.kid)

	_, err := f.verifier.Verify(token)
	assert.Error(t, err)
}

func TestVerifier_WrongIssuer(t *testing.T) {
	f := newVerifierFixture(t)

	claims := validClaims(uuid.New().String())
	claims.Issuer = "https://evil.example.com"
	token := f.signToken(t, claims, f.kid)

	_, err := f.verifier.Verify(token)
	assert.Error(t, err)
}

func TestVerifier_WrongTokenUse(t *testing.T) {
	f := newVerifierFixture(t)

	claims := validClaims(uuid.New().String())
	claims.TokenUse = "id"
	token := f.signToken(t, claims, f.kid)

	_, err := f.verifier.Verify(token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token_use")
}

func TestVerifier_WrongClientID(t *testing.T) {
	f := newVerifierFixture(t)

	claims := validClaims(uuid.New().String())
	claims.ClientID = "some-other-client"
	token := f.signToken(t, claims, f.kid)

	_, err := f.verifier.Verify(token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "different client")
}

func TestVerifier_NonUUIDSubject(t *testing.T) {
	f := newVerifierFixture(t)

	token := f.signToken(t, validClaims("not-a-uuid"), f.kid)

	_, err := f.verifier.Verify(token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a UUID")
}

func TestVerifier_UnknownKid(t *testing.T) {
	f := newVerifierFixture(t)

	token := f.signToken(t, validClaims(uuid.New().String()), "rotated-away")

	_, err := f.verifier.Verify(token)
	assert.Error(t, err)
}

func TestVerifier_WrongSigningKey(t *testing.T) {
	f := newVerifierFixture(t)

	otherKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, validClaims(uuid.New().String()))
	token.Header["kid"] = f.kid
	signed, err := token.SignedString(otherKey)
	require.NoError(t, err)

	_, err = f.verifier.Verify(signed)
	assert.Error(t, err)
}

func TestClaims_GetUserID_Invalid(t *testing.T) {
	claims := &Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "nope"}}
	assert.Equal(t, uuid.Nil, claims.GetUserID())
}
