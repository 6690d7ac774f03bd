package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/google/uuid"

	"github.com/jonathan/jobtrack/internal/db"
	"github.com/jonathan/jobtrack/internal/fetch"
	"github.com/jonathan/jobtrack/internal/server/middleware"
)

// ApplicationRequest is the request body for creating and updating
// job applications.
type ApplicationRequest struct {
	Company     string     `json:"company"`
	RoleTitle   string     `json:"role_title"`
	PostingURL  string     `json:"posting_url"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	AppliedAt   *db.Date   `json:"applied_at"`
	Notes       string     `json:"notes"`
	ResumeID    *uuid.UUID `json:"resume_id"`
}

func (s *Server) handleCreateApplication(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req ApplicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Company == "" || req.RoleTitle == "" {
		s.errorResponse(w, http.StatusBadRequest, "Company and role_title are required")
		return
	}
	if req.Status != "" && !db.ValidStatus(req.Status) {
		s.errorResponse(w, http.StatusBadRequest, "Invalid status: "+req.Status)
		return
	}
	if req.ResumeID != nil {
		if ok := s.resumeExists(w, r, userID, *req.ResumeID); !ok {
			return
		}
	}

	app := &db.Application{
		UserID:      userID,
		Company:     req.Company,
		RoleTitle:   req.RoleTitle,
		PostingURL:  req.PostingURL,
		Description: req.Description,
		Status:      req.Status,
		AppliedAt:   req.AppliedAt,
		Notes:       req.Notes,
		ResumeID:    req.ResumeID,
	}

	// A posting URL without a description gets a best-effort fetch now.
	// Failures are non-fatal; the fetch-description endpoint can retry.
	if app.Description == "" && app.PostingURL != "" {
		if text, err := fetchPostingText(r.Context(), app.PostingURL); err != nil {
			log.Printf("Posting fetch failed for %s: %v", app.PostingURL, err)
		} else {
			app.Description = text
		}
	}

	id, err := s.db.CreateApplication(r.Context(), app)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusCreated, map[string]string{"id": id.String()})
}

func (s *Server) handleListApplications(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	filters := db.ApplicationFilters{
		Status:  r.URL.Query().Get("status"),
		Company: r.URL.Query().Get("company"),
	}
	if filters.Status != "" && !db.ValidStatus(filters.Status) {
		s.errorResponse(w, http.StatusBadRequest, "Invalid status: "+filters.Status)
		return
	}

	apps, err := s.db.ListApplications(r.Context(), userID, filters)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"applications": apps,
		"count":        len(apps),
	})
}

func (s *Server) handleGetApplication(w http.ResponseWriter, r *http.Request) {
	userID, appID, ok := s.userAndPathID(w, r)
	if !ok {
		return
	}

	app, err := s.db.GetApplication(r.Context(), userID, appID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if app == nil {
		s.errorResponse(w, http.StatusNotFound, "Application not found")
		return
	}

	s.jsonResponse(w, http.StatusOK, app)
}

func (s *Server) handleUpdateApplication(w http.ResponseWriter, r *http.Request) {
	userID, appID, ok := s.userAndPathID(w, r)
	if !ok {
		return
	}

	app, err := s.db.GetApplication(r.Context(), userID, appID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if app == nil {
		s.errorResponse(w, http.StatusNotFound, "Application not found")
		return
	}

	var req ApplicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Company == "" || req.RoleTitle == "" {
		s.errorResponse(w, http.StatusBadRequest, "Company and role_title are required")
		return
	}
	if req.Status != "" && !db.ValidStatus(req.Status) {
		s.errorResponse(w, http.StatusBadRequest, "Invalid status: "+req.Status)
		return
	}
	if req.ResumeID != nil {
		if ok := s.resumeExists(w, r, userID, *req.ResumeID); !ok {
			return
		}
	}

	app.Company = req.Company
	app.RoleTitle = req.RoleTitle
	app.PostingURL = req.PostingURL
	app.Description = req.Description
	if req.Status != "" {
		app.Status = req.Status
	}
	app.AppliedAt = req.AppliedAt
	app.Notes = req.Notes
	app.ResumeID = req.ResumeID

	if err := s.db.UpdateApplication(r.Context(), app); err != nil {
		s.notFoundOrInternal(w, err, "Application")
		return
	}

	s.jsonResponse(w, http.StatusOK, app)
}

func (s *Server) handleDeleteApplication(w http.ResponseWriter, r *http.Request) {
	userID, appID, ok := s.userAndPathID(w, r)
	if !ok {
		return
	}

	if err := s.db.DeleteApplication(r.Context(), userID, appID); err != nil {
		s.notFoundOrInternal(w, err, "Application")
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// handleFetchDescription pulls the job description text from the
// application's posting URL and stores it on the row.
func (s *Server) handleFetchDescription(w http.ResponseWriter, r *http.Request) {
	userID, appID, ok := s.userAndPathID(w, r)
	if !ok {
		return
	}

	app, err := s.db.GetApplication(r.Context(), userID, appID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if app == nil {
		s.errorResponse(w, http.StatusNotFound, "Application not found")
		return
	}
	if app.PostingURL == "" {
		s.errorResponse(w, http.StatusBadRequest, "Application has no posting_url")
		return
	}

	text, err := fetchPostingText(r.Context(), app.PostingURL)
	if err != nil {
		s.errorResponse(w, http.StatusBadGateway, "Fetch failed: "+err.Error())
		return
	}
	if text == "" {
		s.errorResponse(w, http.StatusUnprocessableEntity, "No text could be extracted from the posting page")
		return
	}

	app.Description = text
	if err := s.db.UpdateApplication(r.Context(), app); err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"description": app.Description,
		"length":      len(app.Description),
	})
}

// handleMatchApplication scores the linked resume against the application's
// job description and persists the report.
func (s *Server) handleMatchApplication(w http.ResponseWriter, r *http.Request) {
	userID, appID, ok := s.userAndPathID(w, r)
	if !ok {
		return
	}

	app, err := s.db.GetApplication(r.Context(), userID, appID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if app == nil {
		s.errorResponse(w, http.StatusNotFound, "Application not found")
		return
	}
	if app.ResumeID == nil {
		s.errorResponse(w, http.StatusBadRequest, "Application has no linked resume")
		return
	}
	if app.Description == "" {
		s.errorResponse(w, http.StatusBadRequest, "Application has no job description; set one or call fetch-description first")
		return
	}

	resume, err := s.db.GetResume(r.Context(), userID, *app.ResumeID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if resume == nil {
		s.errorResponse(w, http.StatusNotFound, "Linked resume not found")
		return
	}
	if !resume.TextExtracted {
		s.errorResponse(w, http.StatusUnprocessableEntity, "No text could be extracted from the linked resume")
		return
	}

	report, err := s.scorer.ScoreMatch(r.Context(), resume.ExtractedText, app.Description)
	if err != nil {
		s.errorResponse(w, http.StatusBadGateway, "Scoring failed: "+err.Error())
		return
	}

	if err := s.db.SaveMatchReport(r.Context(), userID, appID, reportToMap(report)); err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, report)
}

// fetchPostingText retrieves a posting page and extracts its main text,
// falling back to a headless render for script-heavy boards.
func fetchPostingText(ctx context.Context, postingURL string) (string, error) {
	opts := fetch.DefaultOptions()
	opts.UseBrowser = true
	result, err := fetch.JobPosting(ctx, postingURL, opts)
	if err != nil {
		return "", err
	}
	return result.Text, nil
}

// resumeExists verifies the referenced resume belongs to the user, writing
// the error response when it doesn't.
func (s *Server) resumeExists(w http.ResponseWriter, r *http.Request, userID, resumeID uuid.UUID) bool {
	resume, err := s.db.GetResume(r.Context(), userID, resumeID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return false
	}
	if resume == nil {
		s.errorResponse(w, http.StatusBadRequest, "resume_id does not reference one of your resumes")
		return false
	}
	return true
}
