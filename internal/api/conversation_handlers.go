package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/easybuydubai/leadflow/internal/flow"
	"github.com/easybuydubai/leadflow/internal/models"
)

// Flow endpoint response shapes, mirroring the frontend contract.

type startConversationResult struct {
	SessionID       string                   `json:"session_id"`
	Status          string                   `json:"status"`
	EstimatedTime   float64                  `json:"estimated_time"`
	Timeline        []models.TimelineEntry   `json:"timeline"`
	CurrentQuestion *models.Question         `json:"current_question"`
	Progress        models.Progress          `json:"progress"`
	Responses       map[string]models.Answer `json:"responses"`
}

type questionResult struct {
	Status         string                 `json:"status"`
	Question       *models.Question       `json:"question,omitempty"`
	Summary        *models.FlowSummary    `json:"summary,omitempty"`
	Categorization *models.Assessment     `json:"categorization,omitempty"`
	Timeline       []models.TimelineEntry `json:"timeline"`
	Progress       models.Progress        `json:"progress"`
}

type answerResult struct {
	SessionID      string                   `json:"session_id"`
	Status         string                   `json:"status"`
	NextQuestion   *models.Question         `json:"next_question,omitempty"`
	Summary        *models.FlowSummary      `json:"summary,omitempty"`
	Categorization *models.Assessment       `json:"categorization,omitempty"`
	Timeline       []models.TimelineEntry   `json:"timeline"`
	Progress       models.Progress          `json:"progress"`
	Responses      map[string]models.Answer `json:"responses,omitempty"`
}

type skipCategoryResult struct {
	SessionID    string                 `json:"session_id"`
	Status       string                 `json:"status"`
	NextQuestion *models.Question       `json:"next_question"`
	Timeline     []models.TimelineEntry `json:"timeline"`
	Progress     models.Progress        `json:"progress"`
}

type timelineResult struct {
	Timeline []models.TimelineEntry `json:"timeline"`
	Progress models.Progress        `json:"progress"`
}

type scheduleResult struct {
	Status        string             `json:"status"`
	Message       string             `json:"message"`
	Phone         string             `json:"phone"`
	PreferredTime string             `json:"preferred_time"`
	ProgressSaved models.FlowSummary `json:"progress_saved"`
}

type summaryResult struct {
	Summary        models.FlowSummary `json:"summary"`
	Categorization *models.Assessment `json:"categorization,omitempty"`
	IsComplete     bool               `json:"is_complete"`
}

// completeFlow runs categorization over a finished flow and persists the
// assessment best-effort.
func (s *Server) completeFlow(session *FlowSession) (models.FlowSummary, models.Assessment) {
	summary := session.Engine.Summary()
	assessment := flow.Categorize(session.Engine.Responses(), session.Engine.Notes())
	if err := s.st.SaveAssessment(session.ID, assessment); err != nil {
		slog.Warn("Server.completeFlow: failed to save assessment", "sessionID", session.ID, "error", err)
	}
	return summary, assessment
}

func (s *Server) startConversationHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	slog.Debug("Server.startConversationHandler: processing start request", "method", r.Method)
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		writeJSONResponse(w, http.StatusBadRequest, models.Error(models.ErrEmptySessionID.Error()))
		return
	}

	session, existed := s.sessions.GetOrCreate(sessionID)
	session.Mu.Lock()
	defer session.Mu.Unlock()

	if existed {
		// Re-entry restarts traversal but keeps everything collected so far.
		session.Engine.Restart()
	}

	result := startConversationResult{
		SessionID:       sessionID,
		Status:          "started",
		EstimatedTime:   session.Engine.EstimatedTotalTime(),
		Timeline:        session.Engine.Timeline(),
		CurrentQuestion: session.Engine.CurrentQuestion(),
		Progress:        session.Engine.Progress(),
		Responses:       session.Engine.Responses(),
	}
	persistSession(s.st, session)

	slog.Info("Server.startConversationHandler: conversation started", "sessionID", sessionID, "restarted", existed)
	writeJSONResponse(w, http.StatusOK, models.Success(result))
}

func (s *Server) currentQuestionHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sessionID := strings.TrimPrefix(r.URL.Path, "/api/conversation/question/")
	session := s.sessions.Get(sessionID)
	if session == nil {
		writeJSONResponse(w, http.StatusNotFound, models.Error("Session not found"))
		return
	}
	session.Mu.Lock()
	defer session.Mu.Unlock()

	question := session.Engine.CurrentQuestion()
	if question == nil && session.Engine.IsComplete() {
		summary, assessment := s.completeFlow(session)
		persistSession(s.st, session)
		writeJSONResponse(w, http.StatusOK, models.Success(questionResult{
			Status:         "complete",
			Summary:        &summary,
			Categorization: &assessment,
			Timeline:       session.Engine.Timeline(),
			Progress:       session.Engine.Progress(),
		}))
		return
	}

	persistSession(s.st, session)
	writeJSONResponse(w, http.StatusOK, models.Success(questionResult{
		Status:   "in_progress",
		Question: question,
		Timeline: session.Engine.Timeline(),
		Progress: session.Engine.Progress(),
	}))
}

func (s *Server) submitAnswerHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	slog.Debug("Server.submitAnswerHandler: processing answer", "method", r.Method)
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req models.AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.submitAnswerHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
		return
	}

	session := s.sessions.Get(req.SessionID)
	if session == nil {
		writeJSONResponse(w, http.StatusNotFound, models.Error("Session not found"))
		return
	}
	session.Mu.Lock()
	defer session.Mu.Unlock()

	session.Engine.SubmitAnswer(req.QuestionID, req.Answer, req.IsOther, req.OtherText)

	next := session.Engine.CurrentQuestion()
	if next == nil && session.Engine.IsComplete() {
		summary, assessment := s.completeFlow(session)
		persistSession(s.st, session)
		slog.Info("Server.submitAnswerHandler: flow complete", "sessionID", req.SessionID, "lead_score", assessment.LeadScore)
		writeJSONResponse(w, http.StatusOK, models.Success(answerResult{
			SessionID:      req.SessionID,
			Status:         "complete",
			Summary:        &summary,
			Categorization: &assessment,
			Timeline:       session.Engine.Timeline(),
			Progress:       session.Engine.Progress(),
		}))
		return
	}

	persistSession(s.st, session)
	writeJSONResponse(w, http.StatusOK, models.Success(answerResult{
		SessionID:    req.SessionID,
		Status:       "in_progress",
		NextQuestion: next,
		Timeline:     session.Engine.Timeline(),
		Progress:     session.Engine.Progress(),
		Responses:    session.Engine.Responses(),
	}))
}

func (s *Server) categoryNoteHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req models.CategoryNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.categoryNoteHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
		return
	}

	session := s.sessions.Get(req.SessionID)
	if session == nil {
		writeJSONResponse(w, http.StatusNotFound, models.Error("Session not found"))
		return
	}
	session.Mu.Lock()
	defer session.Mu.Unlock()

	session.Engine.AddNote(req.CategoryID, req.Note)
	persistSession(s.st, session)

	writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("Note added successfully", nil))
}

func (s *Server) skipCategoryHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/api/conversation/skip-category/")
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("session_id and category_id are required"))
		return
	}
	sessionID, categoryID := parts[0], models.CategoryID(parts[1])

	session := s.sessions.Get(sessionID)
	if session == nil {
		writeJSONResponse(w, http.StatusNotFound, models.Error("Session not found"))
		return
	}
	session.Mu.Lock()
	defer session.Mu.Unlock()

	session.Engine.SkipCategory(categoryID)
	next := session.Engine.CurrentQuestion()
	persistSession(s.st, session)

	slog.Info("Server.skipCategoryHandler: category skipped", "sessionID", sessionID, "category", categoryID)
	writeJSONResponse(w, http.StatusOK, models.Success(skipCategoryResult{
		SessionID:    sessionID,
		Status:       "skipped",
		NextQuestion: next,
		Timeline:     session.Engine.Timeline(),
		Progress:     session.Engine.Progress(),
	}))
}

func (s *Server) timelineHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sessionID := strings.TrimPrefix(r.URL.Path, "/api/conversation/timeline/")
	session := s.sessions.Get(sessionID)
	if session == nil {
		writeJSONResponse(w, http.StatusNotFound, models.Error("Session not found"))
		return
	}
	session.Mu.Lock()
	defer session.Mu.Unlock()

	writeJSONResponse(w, http.StatusOK, models.Success(timelineResult{
		Timeline: session.Engine.Timeline(),
		Progress: session.Engine.Progress(),
	}))
}

func (s *Server) scheduleLaterHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req models.ScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.scheduleLaterHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
		return
	}

	session := s.sessions.Get(req.SessionID)
	if session == nil {
		writeJSONResponse(w, http.StatusNotFound, models.Error("Session not found"))
		return
	}
	session.Mu.Lock()
	summary := session.Engine.Summary()
	persistSession(s.st, session)
	session.Mu.Unlock()

	canonicalTo, err := s.msgSvc.ValidateAndCanonicalizeRecipient(req.PhoneNumber)
	if err != nil {
		slog.Warn("Server.scheduleLaterHandler: recipient validation failed", "error", err, "original_to", req.PhoneNumber)
		writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
		return
	}

	// Courtesy message; the saved snapshot is the real continuation mechanism.
	body := fmt.Sprintf("Thanks for your interest in EasyBuy Dubai! We'll continue your property search at %s. Reply anytime to pick up where you left off.", req.PreferredTime)
	if err := s.msgSvc.SendMessage(r.Context(), canonicalTo, body); err != nil {
		slog.Error("Server.scheduleLaterHandler: failed to send message", "error", err, "to", canonicalTo)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to send confirmation message"))
		return
	}

	slog.Info("Server.scheduleLaterHandler: follow-up scheduled", "sessionID", req.SessionID, "to", canonicalTo)
	writeJSONResponse(w, http.StatusOK, models.Success(scheduleResult{
		Status:        "scheduled",
		Message:       fmt.Sprintf("We'll reach out to you on %s", req.ContactMethod),
		Phone:         canonicalTo,
		PreferredTime: req.PreferredTime,
		ProgressSaved: summary,
	}))
}

func (s *Server) summaryHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sessionID := strings.TrimPrefix(r.URL.Path, "/api/conversation/summary/")
	session := s.sessions.Get(sessionID)
	if session == nil {
		writeJSONResponse(w, http.StatusNotFound, models.Error("Session not found"))
		return
	}
	session.Mu.Lock()
	defer session.Mu.Unlock()

	summary := session.Engine.Summary()
	result := summaryResult{Summary: summary, IsComplete: summary.IsComplete}
	if summary.IsComplete {
		_, assessment := s.completeFlow(session)
		result.Categorization = &assessment
	}
	writeJSONResponse(w, http.StatusOK, models.Success(result))
}
