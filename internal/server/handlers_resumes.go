package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/jobtrack/internal/db"
	"github.com/jonathan/jobtrack/internal/ingestion"
	"github.com/jonathan/jobtrack/internal/server/middleware"
)

// maxResumeBytes caps resume uploads at 10 MB.
const maxResumeBytes = 10 << 20

// presignTTL is how long resume download links stay valid.
const presignTTL = 15 * time.Minute

// handleUploadResume accepts a multipart upload (field "file", optional
// field "label"), stores the file in object storage and extracts its text.
func (s *Server) handleUploadResume(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := r.ParseMultipartForm(maxResumeBytes); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid multipart form: "+err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Form field 'file' is required")
		return
	}
	defer func() { _ = file.Close() }()

	contentType := header.Header.Get("Content-Type")
	if !ingestion.SupportedType(contentType) {
		s.errorResponse(w, http.StatusUnsupportedMediaType,
			fmt.Sprintf("Unsupported file type %q: use PDF, DOCX or plain text", contentType))
		return
	}

	data, err := ingestion.ReadLimited(file, maxResumeBytes)
	if err != nil {
		s.errorResponse(w, http.StatusRequestEntityTooLarge, err.Error())
		return
	}
	if len(data) == 0 {
		s.errorResponse(w, http.StatusBadRequest, "Uploaded file is empty")
		return
	}

	resumeID := uuid.New()
	storageKey := fmt.Sprintf("resumes/%s/%s%s", userID, resumeID, ingestion.ExtensionFor(contentType))

	if err := s.store.Upload(r.Context(), storageKey, contentType, bytes.NewReader(data)); err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Storage error: "+err.Error())
		return
	}

	// Extraction failure is not fatal; the file is kept and the resume is
	// marked so scoring can refuse it with a clear message.
	text, extractErr := ingestion.ExtractText(contentType, data)
	if extractErr != nil {
		log.Printf("Text extraction failed for resume %s: %v", resumeID, extractErr)
	}
	text = strings.TrimSpace(text)

	resume := &db.Resume{
		UserID:        userID,
		Label:         r.FormValue("label"),
		FileName:      header.Filename,
		ContentType:   contentType,
		StorageKey:    storageKey,
		SizeBytes:     int64(len(data)),
		ExtractedText: text,
		TextExtracted: extractErr == nil && text != "",
	}

	id, err := s.db.CreateResume(r.Context(), resume)
	if err != nil {
		// Best effort: don't leave an orphaned object behind.
		if derr := s.store.Delete(r.Context(), storageKey); derr != nil {
			log.Printf("Failed to clean up object %s: %v", storageKey, derr)
		}
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusCreated, map[string]any{
		"id":             id.String(),
		"file_name":      resume.FileName,
		"size_bytes":     resume.SizeBytes,
		"text_extracted": resume.TextExtracted,
	})
}

func (s *Server) handleListResumes(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	resumes, err := s.db.ListResumes(r.Context(), userID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"resumes": resumes,
		"count":   len(resumes),
	})
}

func (s *Server) handleGetResume(w http.ResponseWriter, r *http.Request) {
	userID, resumeID, ok := s.userAndPathID(w, r)
	if !ok {
		return
	}

	resume, err := s.db.GetResume(r.Context(), userID, resumeID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if resume == nil {
		s.errorResponse(w, http.StatusNotFound, "Resume not found")
		return
	}

	s.jsonResponse(w, http.StatusOK, resume)
}

// UpdateResumeRequest is the request body for PUT /resumes/{id}.
type UpdateResumeRequest struct {
	Label string `json:"label"`
}

func (s *Server) handleUpdateResume(w http.ResponseWriter, r *http.Request) {
	userID, resumeID, ok := s.userAndPathID(w, r)
	if !ok {
		return
	}

	var req UpdateResumeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := s.db.UpdateResumeLabel(r.Context(), userID, resumeID, req.Label); err != nil {
		s.notFoundOrInternal(w, err, "Resume")
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (s *Server) handleDeleteResume(w http.ResponseWriter, r *http.Request) {
	userID, resumeID, ok := s.userAndPathID(w, r)
	if !ok {
		return
	}

	resume, err := s.db.GetResume(r.Context(), userID, resumeID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if resume == nil {
		s.errorResponse(w, http.StatusNotFound, "Resume not found")
		return
	}

	if err := s.db.DeleteResume(r.Context(), userID, resumeID); err != nil {
		s.notFoundOrInternal(w, err, "Resume")
		return
	}

	// Row is gone; a leaked object only costs storage.
	if err := s.store.Delete(r.Context(), resume.StorageKey); err != nil {
		log.Printf("Failed to delete object %s: %v", resume.StorageKey, err)
	}

	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// handleDownloadResume returns a time-limited presigned URL for the original file.
func (s *Server) handleDownloadResume(w http.ResponseWriter, r *http.Request) {
	userID, resumeID, ok := s.userAndPathID(w, r)
	if !ok {
		return
	}

	resume, err := s.db.GetResume(r.Context(), userID, resumeID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if resume == nil {
		s.errorResponse(w, http.StatusNotFound, "Resume not found")
		return
	}

	url, err := s.store.PresignDownload(r.Context(), resume.StorageKey, presignTTL)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Storage error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"url":        url,
		"file_name":  resume.FileName,
		"expires_in": int(presignTTL.Seconds()),
	})
}

// handleScoreResume runs the ATS score over the resume's extracted text and
// persists the report.
func (s *Server) handleScoreResume(w http.ResponseWriter, r *http.Request) {
	userID, resumeID, ok := s.userAndPathID(w, r)
	if !ok {
		return
	}

	resume, err := s.db.GetResume(r.Context(), userID, resumeID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if resume == nil {
		s.errorResponse(w, http.StatusNotFound, "Resume not found")
		return
	}
	if !resume.TextExtracted {
		s.errorResponse(w, http.StatusUnprocessableEntity, "No text could be extracted from this resume")
		return
	}

	report, err := s.scorer.ScoreResume(r.Context(), resume.ExtractedText)
	if err != nil {
		s.errorResponse(w, http.StatusBadGateway, "Scoring failed: "+err.Error())
		return
	}

	if err := s.db.SaveATSReport(r.Context(), userID, resumeID, reportToMap(report)); err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, report)
}

// reportToMap converts a scoring report to the JSONB map the db layer stores.
func reportToMap(report any) db.JSONMap {
	raw, err := json.Marshal(report)
	if err != nil {
		return db.JSONMap{}
	}
	var m db.JSONMap
	if err := json.Unmarshal(raw, &m); err != nil {
		return db.JSONMap{}
	}
	return m
}

// userAndPathID extracts the authenticated user and the {id} path value.
// Writes the error response and returns ok=false on failure.
func (s *Server) userAndPathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return uuid.Nil, uuid.Nil, false
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid ID")
		return uuid.Nil, uuid.Nil, false
	}
	return userID, id, true
}

// notFoundOrInternal maps the db layer's ErrNotFound to 404 and everything
// else to 500.
func (s *Server) notFoundOrInternal(w http.ResponseWriter, err error, resource string) {
	if errors.Is(err, db.ErrNotFound) {
		s.errorResponse(w, http.StatusNotFound, resource+" not found")
		return
	}
	s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
}
