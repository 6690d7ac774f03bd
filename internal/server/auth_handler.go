package server

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/jonathan/jobtrack/internal/auth"
	"github.com/jonathan/jobtrack/internal/config"
	"github.com/jonathan/jobtrack/internal/db"
)

// AuthHandler handles signup, confirmation and login against the Cognito
// user pool, and manages the session cookie.
type AuthHandler struct {
	cognito  *auth.Cognito
	verifier *auth.Verifier
	db       *db.DB
	session  *config.SessionConfig
	validate *validator.Validate
}

// NewAuthHandler creates an AuthHandler wired to the server's services.
func NewAuthHandler(s *Server) *AuthHandler {
	return &AuthHandler{
		cognito:  s.cognito,
		verifier: s.verifier,
		db:       s.db,
		session:  s.session,
		validate: validator.New(),
	}
}

// SignupRequest is the request body for POST /auth/signup.
type SignupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"required,min=1,max=200"`
}

// ConfirmRequest is the request body for POST /auth/confirm.
type ConfirmRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,min=4,max=10"`
}

// LoginRequest is the request body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Signup registers a new account with the user pool and creates the local
// profile row. The account must be confirmed before it can log in.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid signup request: "+err.Error())
		return
	}

	sub, err := h.cognito.SignUp(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		writeError(w, HTTPStatus(err), err.Error())
		return
	}

	userID, err := uuid.Parse(sub)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Unexpected subject from identity provider")
		return
	}

	user, err := h.db.UpsertUser(r.Context(), userID, req.Email, req.Name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"user":   user,
		"status": "confirmation_required",
	})
}

// Confirm completes signup with the emailed confirmation code.
func (h *AuthHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	var req ConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid confirmation request: "+err.Error())
		return
	}

	if err := h.cognito.ConfirmSignUp(r.Context(), req.Email, req.Code); err != nil {
		writeError(w, HTTPStatus(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "confirmed"})
}

// Login authenticates against the user pool, refreshes the local profile
// row and issues the session cookie. The access token is also returned in
// the body for non-browser clients.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid login request: "+err.Error())
		return
	}

	tokens, err := h.cognito.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, HTTPStatus(err), err.Error())
		return
	}

	claims, err := h.verifier.Verify(tokens.AccessToken)
	if err != nil {
		log.Printf("Rejecting token the pool just issued: %v", err)
		writeError(w, http.StatusUnauthorized, "invalid access token")
		return
	}

	user, err := h.db.UpsertUser(r.Context(), claims.GetUserID(), req.Email, "")
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	maxAge := h.session.MaxAgeSecs
	if tokens.ExpiresIn > 0 {
		maxAge = int(tokens.ExpiresIn)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     h.session.CookieName,
		Value:    tokens.AccessToken,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.session.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"user":         user,
		"access_token": tokens.AccessToken,
		"expires_in":   maxAge,
	})
}

// Logout clears the session cookie. The access token itself stays valid
// until it expires; Cognito has no cheap server-side revocation for it.
func (h *AuthHandler) Logout(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.session.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.session.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

// writeJSON writes a JSON response. Package-level twin of Server.jsonResponse
// for handlers that don't hang off the Server struct.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// writeError writes an error JSON response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
