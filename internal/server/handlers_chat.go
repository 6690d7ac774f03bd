package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/jobtrack/internal/coach"
	"github.com/jonathan/jobtrack/internal/db"
	"github.com/jonathan/jobtrack/internal/server/middleware"
)

// ChatMessageRequest is the request body for POST /chat/{coach}/messages.
// application_id is required for the application coach, contact_id for the
// outreach coach.
type ChatMessageRequest struct {
	ApplicationID *uuid.UUID `json:"application_id"`
	ContactID     *uuid.UUID `json:"contact_id"`
	Message       string     `json:"message"`
}

func (s *Server) handlePostChatMessage(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	coachName := r.PathValue("coach")
	if !db.ValidCoach(coachName) {
		s.errorResponse(w, http.StatusBadRequest, "Unknown coach: "+coachName)
		return
	}

	var req ChatMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Message == "" {
		s.errorResponse(w, http.StatusBadRequest, "message is required")
		return
	}

	// Build the coach context and normalize the thread identity.
	var (
		thread   db.ChatThread
		appCtx   coach.ApplicationContext
		outCtx   coach.OutreachContext
		outreach = coachName == db.CoachOutreach
	)
	if outreach {
		if req.ContactID == nil {
			s.errorResponse(w, http.StatusBadRequest, "contact_id is required for the outreach coach")
			return
		}
		octx, ok := s.buildOutreachContext(w, r, userID, *req.ContactID)
		if !ok {
			return
		}
		outCtx = octx
		thread = db.ChatThread{Coach: coachName, ContactID: req.ContactID}
	} else {
		if req.ApplicationID == nil {
			s.errorResponse(w, http.StatusBadRequest, "application_id is required for the application coach")
			return
		}
		actx, ok := s.buildApplicationContext(w, r, userID, *req.ApplicationID)
		if !ok {
			return
		}
		appCtx = actx
		thread = db.ChatThread{Coach: coachName, ApplicationID: req.ApplicationID}
	}

	history, err := s.db.ListChatMessages(r.Context(), userID, thread, coach.HistoryLimit)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	coachHistory := make([]coach.Message, 0, len(history))
	for _, m := range history {
		coachHistory = append(coachHistory, coach.Message{Role: m.Role, Content: m.Content})
	}

	userMsg := &db.ChatMessage{
		UserID:        userID,
		Coach:         coachName,
		ApplicationID: thread.ApplicationID,
		ContactID:     thread.ContactID,
		Role:          db.RoleUser,
		Content:       req.Message,
	}
	if _, err := s.db.CreateChatMessage(r.Context(), userMsg); err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	stream, _ := strconv.ParseBool(r.URL.Query().Get("stream"))

	var sse *SSEWriter
	var onChunk func(string)
	if stream {
		sse, err = NewSSEWriter(w)
		if err != nil {
			s.errorResponse(w, http.StatusInternalServerError, err.Error())
			return
		}
		onChunk = sse.WriteChunk
	}

	var reply string
	if outreach {
		reply, err = s.coach.OutreachReply(r.Context(), outCtx, coachHistory, req.Message, onChunk)
	} else {
		reply, err = s.coach.ApplicationReply(r.Context(), appCtx, coachHistory, req.Message, onChunk)
	}
	if err != nil {
		if stream {
			sse.WriteError(err.Error())
			return
		}
		s.errorResponse(w, http.StatusBadGateway, "Coach failed: "+err.Error())
		return
	}

	assistantMsg := &db.ChatMessage{
		UserID:        userID,
		Coach:         coachName,
		ApplicationID: thread.ApplicationID,
		ContactID:     thread.ContactID,
		Role:          db.RoleAssistant,
		Content:       reply,
	}
	msgID, err := s.db.CreateChatMessage(r.Context(), assistantMsg)
	if err != nil {
		log.Printf("Failed to store assistant reply: %v", err)
		if stream {
			sse.WriteError("failed to store reply")
			return
		}
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	if stream {
		sse.WriteDone(msgID.String(), reply)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"id":      msgID.String(),
		"role":    db.RoleAssistant,
		"content": reply,
	})
}

func (s *Server) handleListChatMessages(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	thread, ok := s.threadFromRequest(w, r)
	if !ok {
		return
	}

	messages, err := s.db.ListChatMessages(r.Context(), userID, thread, 0)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"messages": messages,
		"count":    len(messages),
	})
}

func (s *Server) handleDeleteChatThread(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	thread, ok := s.threadFromRequest(w, r)
	if !ok {
		return
	}

	if err := s.db.DeleteChatThread(r.Context(), userID, thread); err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// threadFromRequest resolves the {coach} path value and the
// application_id/contact_id query parameters into a thread identity.
func (s *Server) threadFromRequest(w http.ResponseWriter, r *http.Request) (db.ChatThread, bool) {
	coachName := r.PathValue("coach")
	if !db.ValidCoach(coachName) {
		s.errorResponse(w, http.StatusBadRequest, "Unknown coach: "+coachName)
		return db.ChatThread{}, false
	}

	thread := db.ChatThread{Coach: coachName}
	if idStr := r.URL.Query().Get("application_id"); idStr != "" {
		id, err := uuid.Parse(idStr)
		if err != nil {
			s.errorResponse(w, http.StatusBadRequest, "Invalid application_id")
			return db.ChatThread{}, false
		}
		thread.ApplicationID = &id
	}
	if idStr := r.URL.Query().Get("contact_id"); idStr != "" {
		id, err := uuid.Parse(idStr)
		if err != nil {
			s.errorResponse(w, http.StatusBadRequest, "Invalid contact_id")
			return db.ChatThread{}, false
		}
		thread.ContactID = &id
	}

	if coachName == db.CoachOutreach && thread.ContactID == nil {
		s.errorResponse(w, http.StatusBadRequest, "contact_id is required for the outreach coach")
		return db.ChatThread{}, false
	}
	if coachName == db.CoachApplication && thread.ApplicationID == nil {
		s.errorResponse(w, http.StatusBadRequest, "application_id is required for the application coach")
		return db.ChatThread{}, false
	}

	return thread, true
}

// buildApplicationContext loads what the application coach needs to know.
func (s *Server) buildApplicationContext(w http.ResponseWriter, r *http.Request, userID, appID uuid.UUID) (coach.ApplicationContext, bool) {
	app, err := s.db.GetApplication(r.Context(), userID, appID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return coach.ApplicationContext{}, false
	}
	if app == nil {
		s.errorResponse(w, http.StatusNotFound, "Application not found")
		return coach.ApplicationContext{}, false
	}

	actx := coach.ApplicationContext{
		Company:        app.Company,
		Title:          app.RoleTitle,
		Status:         app.Status,
		JobDescription: app.Description,
	}
	if app.ResumeID != nil {
		resume, err := s.db.GetResume(r.Context(), userID, *app.ResumeID)
		if err != nil {
			s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
			return coach.ApplicationContext{}, false
		}
		if resume != nil && resume.TextExtracted {
			actx.ResumeText = resume.ExtractedText
		}
	}
	return actx, true
}

// buildOutreachContext loads what the outreach coach needs to know.
// The contact and its interaction log are independent queries, so they
// run concurrently.
func (s *Server) buildOutreachContext(w http.ResponseWriter, r *http.Request, userID, contactID uuid.UUID) (coach.OutreachContext, bool) {
	var (
		contact      *db.Contact
		interactions []db.Interaction
	)
	g, gctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		contact, err = s.db.GetContact(gctx, userID, contactID)
		return err
	})
	g.Go(func() error {
		var err error
		interactions, err = s.db.ListInteractions(gctx, userID, contactID)
		return err
	})
	if err := g.Wait(); err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return coach.OutreachContext{}, false
	}
	if contact == nil {
		s.errorResponse(w, http.StatusNotFound, "Contact not found")
		return coach.OutreachContext{}, false
	}

	octx := coach.OutreachContext{
		Name:    contact.Name,
		Company: contact.Company,
		Title:   contact.RoleTitle,
		Warmth:  contact.Warmth,
	}
	for _, in := range interactions {
		line := fmt.Sprintf("%s %s", in.HappenedAt.Format("2006-01-02"), in.Kind)
		if in.Notes != "" {
			line += ": " + in.Notes
		}
		octx.Interactions = append(octx.Interactions, line)
	}
	return octx, true
}
