package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/jonathan/jobtrack/internal/db"
	"github.com/jonathan/jobtrack/internal/server/middleware"
)

// ContactRequest is the request body for creating and updating contacts.
type ContactRequest struct {
	Name        string `json:"name"`
	Company     string `json:"company"`
	RoleTitle   string `json:"role_title"`
	Email       string `json:"email"`
	LinkedInURL string `json:"linkedin_url"`
	Warmth      string `json:"warmth"`
	Notes       string `json:"notes"`
}

func (s *Server) handleCreateContact(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req ContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" {
		s.errorResponse(w, http.StatusBadRequest, "Name is required")
		return
	}
	if req.Warmth != "" && !db.ValidWarmth(req.Warmth) {
		s.errorResponse(w, http.StatusBadRequest, "Invalid warmth: "+req.Warmth)
		return
	}

	contact := &db.Contact{
		UserID:      userID,
		Name:        req.Name,
		Company:     req.Company,
		RoleTitle:   req.RoleTitle,
		Email:       req.Email,
		LinkedInURL: req.LinkedInURL,
		Warmth:      req.Warmth,
		Notes:       req.Notes,
	}

	id, err := s.db.CreateContact(r.Context(), contact)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusCreated, map[string]string{"id": id.String()})
}

func (s *Server) handleListContacts(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	contacts, err := s.db.ListContacts(r.Context(), userID, r.URL.Query().Get("company"))
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"contacts": contacts,
		"count":    len(contacts),
	})
}

func (s *Server) handleGetContact(w http.ResponseWriter, r *http.Request) {
	userID, contactID, ok := s.userAndPathID(w, r)
	if !ok {
		return
	}

	contact, err := s.db.GetContact(r.Context(), userID, contactID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if contact == nil {
		s.errorResponse(w, http.StatusNotFound, "Contact not found")
		return
	}

	s.jsonResponse(w, http.StatusOK, contact)
}

func (s *Server) handleUpdateContact(w http.ResponseWriter, r *http.Request) {
	userID, contactID, ok := s.userAndPathID(w, r)
	if !ok {
		return
	}

	contact, err := s.db.GetContact(r.Context(), userID, contactID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if contact == nil {
		s.errorResponse(w, http.StatusNotFound, "Contact not found")
		return
	}

	var req ContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" {
		s.errorResponse(w, http.StatusBadRequest, "Name is required")
		return
	}
	if req.Warmth != "" && !db.ValidWarmth(req.Warmth) {
		s.errorResponse(w, http.StatusBadRequest, "Invalid warmth: "+req.Warmth)
		return
	}

	contact.Name = req.Name
	contact.Company = req.Company
	contact.RoleTitle = req.RoleTitle
	contact.Email = req.Email
	contact.LinkedInURL = req.LinkedInURL
	if req.Warmth != "" {
		contact.Warmth = req.Warmth
	}
	contact.Notes = req.Notes

	if err := s.db.UpdateContact(r.Context(), contact); err != nil {
		s.notFoundOrInternal(w, err, "Contact")
		return
	}

	s.jsonResponse(w, http.StatusOK, contact)
}

func (s *Server) handleDeleteContact(w http.ResponseWriter, r *http.Request) {
	userID, contactID, ok := s.userAndPathID(w, r)
	if !ok {
		return
	}

	if err := s.db.DeleteContact(r.Context(), userID, contactID); err != nil {
		s.notFoundOrInternal(w, err, "Contact")
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// InteractionRequest is the request body for POST /contacts/{id}/interactions.
type InteractionRequest struct {
	Kind       string     `json:"kind"`
	HappenedAt *time.Time `json:"happened_at"`
	Notes      string     `json:"notes"`
}

func (s *Server) handleCreateInteraction(w http.ResponseWriter, r *http.Request) {
	userID, contactID, ok := s.userAndPathID(w, r)
	if !ok {
		return
	}

	contact, err := s.db.GetContact(r.Context(), userID, contactID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if contact == nil {
		s.errorResponse(w, http.StatusNotFound, "Contact not found")
		return
	}

	var req InteractionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Kind != "" && !db.ValidKind(req.Kind) {
		s.errorResponse(w, http.StatusBadRequest, "Invalid kind: "+req.Kind)
		return
	}

	interaction := &db.Interaction{
		ContactID: contactID,
		UserID:    userID,
		Kind:      req.Kind,
		Notes:     req.Notes,
	}
	if req.HappenedAt != nil {
		interaction.HappenedAt = *req.HappenedAt
	}

	id, err := s.db.CreateInteraction(r.Context(), interaction)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusCreated, map[string]string{"id": id.String()})
}

func (s *Server) handleListInteractions(w http.ResponseWriter, r *http.Request) {
	userID, contactID, ok := s.userAndPathID(w, r)
	if !ok {
		return
	}

	contact, err := s.db.GetContact(r.Context(), userID, contactID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if contact == nil {
		s.errorResponse(w, http.StatusNotFound, "Contact not found")
		return
	}

	interactions, err := s.db.ListInteractions(r.Context(), userID, contactID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"interactions": interactions,
		"count":        len(interactions),
	})
}

func (s *Server) handleDeleteInteraction(w http.ResponseWriter, r *http.Request) {
	userID, interactionID, ok := s.userAndPathID(w, r)
	if !ok {
		return
	}

	if err := s.db.DeleteInteraction(r.Context(), userID, interactionID); err != nil {
		s.notFoundOrInternal(w, err, "Interaction")
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "deleted"})
}
