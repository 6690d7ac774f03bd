package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/jobtrack/internal/db"
	"github.com/jonathan/jobtrack/internal/server/middleware"
)

// ReminderRequest is the request body for creating and updating reminders.
type ReminderRequest struct {
	ApplicationID *uuid.UUID `json:"application_id"`
	ContactID     *uuid.UUID `json:"contact_id"`
	DueAt         time.Time  `json:"due_at"`
	Note          string     `json:"note"`
	Done          bool       `json:"done"`
}

func (s *Server) handleCreateReminder(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req ReminderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.DueAt.IsZero() {
		s.errorResponse(w, http.StatusBadRequest, "due_at is required")
		return
	}
	if req.ApplicationID == nil && req.ContactID == nil {
		s.errorResponse(w, http.StatusBadRequest, "Link the reminder to an application or a contact")
		return
	}
	if req.ApplicationID != nil && req.ContactID != nil {
		s.errorResponse(w, http.StatusBadRequest, "Link a reminder to an application or a contact, not both")
		return
	}
	if !s.reminderTargetExists(w, r, userID, req.ApplicationID, req.ContactID) {
		return
	}

	reminder := &db.Reminder{
		UserID:        userID,
		ApplicationID: req.ApplicationID,
		ContactID:     req.ContactID,
		DueAt:         req.DueAt,
		Note:          req.Note,
	}

	id, err := s.db.CreateReminder(r.Context(), reminder)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusCreated, map[string]string{"id": id.String()})
}

func (s *Server) handleListReminders(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var filters db.ReminderFilters
	if doneStr := r.URL.Query().Get("done"); doneStr != "" {
		done, err := strconv.ParseBool(doneStr)
		if err != nil {
			s.errorResponse(w, http.StatusBadRequest, "Invalid done filter: "+doneStr)
			return
		}
		filters.Done = &done
	}
	if dueStr := r.URL.Query().Get("due"); dueStr != "" {
		due, err := strconv.ParseBool(dueStr)
		if err != nil {
			s.errorResponse(w, http.StatusBadRequest, "Invalid due filter: "+dueStr)
			return
		}
		filters.DueOnly = due
	}

	reminders, err := s.db.ListReminders(r.Context(), userID, filters)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"reminders": reminders,
		"count":     len(reminders),
	})
}

func (s *Server) handleUpdateReminder(w http.ResponseWriter, r *http.Request) {
	userID, reminderID, ok := s.userAndPathID(w, r)
	if !ok {
		return
	}

	var req ReminderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.DueAt.IsZero() {
		s.errorResponse(w, http.StatusBadRequest, "due_at is required")
		return
	}

	reminder := &db.Reminder{
		ID:     reminderID,
		UserID: userID,
		DueAt:  req.DueAt,
		Note:   req.Note,
		Done:   req.Done,
	}

	if err := s.db.UpdateReminder(r.Context(), reminder); err != nil {
		s.notFoundOrInternal(w, err, "Reminder")
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (s *Server) handleDeleteReminder(w http.ResponseWriter, r *http.Request) {
	userID, reminderID, ok := s.userAndPathID(w, r)
	if !ok {
		return
	}

	if err := s.db.DeleteReminder(r.Context(), userID, reminderID); err != nil {
		s.notFoundOrInternal(w, err, "Reminder")
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// reminderTargetExists verifies the linked application or contact belongs to
// the user. Writes the error response and returns false when it doesn't.
func (s *Server) reminderTargetExists(w http.ResponseWriter, r *http.Request, userID uuid.UUID, appID, contactID *uuid.UUID) bool {
	if appID != nil {
		app, err := s.db.GetApplication(r.Context(), userID, *appID)
		if err != nil {
			s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
			return false
		}
		if app == nil {
			s.errorResponse(w, http.StatusBadRequest, "application_id does not reference one of your applications")
			return false
		}
	}
	if contactID != nil {
		contact, err := s.db.GetContact(r.Context(), userID, *contactID)
		if err != nil {
			s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
			return false
		}
		if contact == nil {
			s.errorResponse(w, http.StatusBadRequest, "contact_id does not reference one of your contacts")
			return false
		}
	}
	return true
}
