// Package server provides the HTTP REST API for the job application tracker.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/jobtrack/internal/auth"
	"github.com/jonathan/jobtrack/internal/coach"
	"github.com/jonathan/jobtrack/internal/config"
	"github.com/jonathan/jobtrack/internal/db"
	"github.com/jonathan/jobtrack/internal/llm"
	"github.com/jonathan/jobtrack/internal/scoring"
	"github.com/jonathan/jobtrack/internal/server/middleware"
	"github.com/jonathan/jobtrack/internal/server/ratelimit"
	"github.com/jonathan/jobtrack/internal/storage"
)

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	db          *db.DB
	store       *storage.Store
	llmClient   llm.Client
	scorer      *scoring.Scorer
	coach       *coach.Service
	cognito     *auth.Cognito
	verifier    *auth.Verifier
	session     *config.SessionConfig
	rateLimiter *ratelimit.Limiter
	authHandler *AuthHandler
	corsOrigin  string

	// knownUsers caches user IDs whose local profile row is confirmed to
	// exist, so ensureUser costs one lookup per user per process.
	knownUsers sync.Map
}

// Config holds server configuration
type Config struct {
	Port        int
	DatabaseURL string
	APIKey      string
}

// New creates a new server instance
func New(cfg Config) (*Server, error) {
	ctx := context.Background()

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	cognitoCfg, err := config.NewCognitoConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load Cognito config: %w", err)
	}
	cognito, err := auth.NewCognito(ctx, cognitoCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Cognito client: %w", err)
	}
	verifier := auth.NewVerifier(cognitoCfg.Issuer(), cognitoCfg.ClientID, cognitoCfg.JWKSURL())

	storageCfg, err := config.NewStorageConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load storage config: %w", err)
	}
	store, err := storage.NewStore(ctx, storageCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create object store: %w", err)
	}

	llmClient, err := llm.NewClient(ctx, llm.DefaultConfig(), cfg.APIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	sessionCfg, err := config.NewSessionConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load session config: %w", err)
	}

	s := &Server{
		db:        database,
		store:     store,
		llmClient: llmClient,
		scorer:    scoring.NewScorer(llmClient),
		coach:     coach.NewService(llmClient),
		cognito:   cognito,
		verifier:  verifier,
		session:   sessionCfg,

		// Credentialed CORS needs a concrete origin; browsers reject
		// cookies under a wildcard.
		corsOrigin: os.Getenv("CORS_ALLOWED_ORIGIN"),
	}
	s.rateLimiter = ratelimit.NewLimiter(ratelimit.LoadConfig())
	s.authHandler = NewAuthHandler(s)

	// Public routes
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /auth/signup", s.authHandler.Signup)
	mux.HandleFunc("POST /auth/confirm", s.authHandler.Confirm)
	mux.HandleFunc("POST /auth/login", s.authHandler.Login)
	mux.HandleFunc("POST /auth/logout", s.authHandler.Logout)

	// Authenticated routes
	protected := http.NewServeMux()

	// /auth/me falls through the public /auth/* patterns to the
	// protected catch-all, so it still requires a token.
	protected.HandleFunc("GET /auth/me", s.handleGetMe)
	protected.HandleFunc("PUT /users/me", s.handleUpdateMe)

	protected.HandleFunc("POST /resumes", s.handleUploadResume)
	protected.HandleFunc("GET /resumes", s.handleListResumes)
	protected.HandleFunc("GET /resumes/{id}", s.handleGetResume)
	protected.HandleFunc("PUT /resumes/{id}", s.handleUpdateResume)
	protected.HandleFunc("DELETE /resumes/{id}", s.handleDeleteResume)
	protected.HandleFunc("GET /resumes/{id}/download", s.handleDownloadResume)
	protected.HandleFunc("POST /resumes/{id}/score", s.handleScoreResume)

	protected.HandleFunc("POST /applications", s.handleCreateApplication)
	protected.HandleFunc("GET /applications", s.handleListApplications)
	protected.HandleFunc("GET /applications/{id}", s.handleGetApplication)
	protected.HandleFunc("PUT /applications/{id}", s.handleUpdateApplication)
	protected.HandleFunc("DELETE /applications/{id}", s.handleDeleteApplication)
	protected.HandleFunc("POST /applications/{id}/fetch-description", s.handleFetchDescription)
	protected.HandleFunc("POST /applications/{id}/match", s.handleMatchApplication)

	protected.HandleFunc("POST /contacts", s.handleCreateContact)
	protected.HandleFunc("GET /contacts", s.handleListContacts)
	protected.HandleFunc("GET /contacts/{id}", s.handleGetContact)
	protected.HandleFunc("PUT /contacts/{id}", s.handleUpdateContact)
	protected.HandleFunc("DELETE /contacts/{id}", s.handleDeleteContact)

	protected.HandleFunc("POST /contacts/{id}/interactions", s.handleCreateInteraction)
	protected.HandleFunc("GET /contacts/{id}/interactions", s.handleListInteractions)
	protected.HandleFunc("DELETE /interactions/{id}", s.handleDeleteInteraction)

	protected.HandleFunc("POST /reminders", s.handleCreateReminder)
	protected.HandleFunc("GET /reminders", s.handleListReminders)
	protected.HandleFunc("PUT /reminders/{id}", s.handleUpdateReminder)
	protected.HandleFunc("DELETE /reminders/{id}", s.handleDeleteReminder)

	protected.HandleFunc("POST /chat/{coach}/messages", s.handlePostChatMessage)
	protected.HandleFunc("GET /chat/{coach}/messages", s.handleListChatMessages)
	protected.HandleFunc("DELETE /chat/{coach}/messages", s.handleDeleteChatThread)

	authMW := middleware.Auth(verifierAdapter{verifier}, s.session.CookieName)
	mux.Handle("/", authMW(s.ensureUser(protected)))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withRateLimit(s.withLogging(s.withCORS(mux))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // LLM calls can be slow
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// verifierAdapter bridges auth.Verifier to the middleware interface.
type verifierAdapter struct {
	v *auth.Verifier
}

func (a verifierAdapter) Verify(token string) (middleware.UserIDGetter, error) {
	claims, err := a.v.Verify(token)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// userStore is the slice of the db layer that user provisioning needs.
type userStore interface {
	GetUser(ctx context.Context, userID uuid.UUID) (*db.User, error)
	UpsertUser(ctx context.Context, id uuid.UUID, email, name string) (*db.User, error)
}

// profileSource resolves an access token to the pool's profile attributes.
type profileSource interface {
	Profile(ctx context.Context, accessToken string) (email, name string, err error)
}

// ensureUser creates the local users row on the first authenticated request
// from a subject this API has never seen. Tokens obtained from the pool
// directly, without going through POST /auth/login, get a profile row too.
func (s *Server) ensureUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := middleware.GetUserID(r)
		if err != nil {
			s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		if _, seen := s.knownUsers.Load(userID); !seen {
			token, err := middleware.GetToken(r)
			if err != nil {
				s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			if err := provisionUser(r.Context(), s.db, s.cognito, userID, token); err != nil {
				s.errorResponse(w, HTTPStatus(err), "Failed to provision user: "+err.Error())
				return
			}
			s.knownUsers.Store(userID, struct{}{})
		}

		next.ServeHTTP(w, r)
	})
}

// provisionUser upserts the profile row for userID when it does not exist,
// pulling email and name from the identity provider.
func provisionUser(ctx context.Context, store userStore, idp profileSource, userID uuid.UUID, token string) error {
	user, err := store.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if user != nil {
		return nil
	}

	email, name, err := idp.Profile(ctx, token)
	if err != nil {
		return err
	}
	_, err = store.UpsertUser(ctx, userID, email, name)
	return err
}

// Start begins listening for requests
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	if s.llmClient != nil {
		_ = s.llmClient.Close()
	}
	s.db.Close()
	log.Println("Server stopped")
	return nil
}

// withCORS adds CORS headers. With CORS_ALLOWED_ORIGIN set, that origin is
// echoed and credentials are allowed, so the session cookie works
// cross-origin; otherwise the API answers any origin without credentials.
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.corsOrigin != "" {
			w.Header().Set("Access-Control-Allow-Origin", s.corsOrigin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Vary", "Origin")
		} else {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)

		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)
		if !allowed {
			s.setRateLimitHeaders(w, info)
			s.rateLimitResponse(w, info)
			return
		}

		s.setRateLimitHeaders(w, info)
		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// extractClientID extracts the client identifier from the request.
// Uses the IP from RemoteAddr; X-Forwarded-For would need a trusted proxy.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]interface{}{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		response["retry_after"] = int(info.RetryAfter.Seconds())
		w.Header().Set("Retry-After", fmt.Sprintf("%d", int(info.RetryAfter.Seconds())))
	}

	log.Printf("[rate-limit] Rate limit exceeded: Limit=%d Remaining=%d Reset=%s",
		info.Limit, info.Remaining, info.ResetTime.Format(time.RFC3339))

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
