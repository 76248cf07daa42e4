package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/easybuydubai/leadflow/internal/models"
)

type chatSessionResult struct {
	SessionID    string               `json:"session_id"`
	CreatedAt    string               `json:"created_at"`
	MessageCount int                  `json:"message_count"`
	Messages     []models.ChatMessage `json:"messages"`
}

// requireChat guards chat endpoints when no AI backend is configured.
func (s *Server) requireChat(w http.ResponseWriter) bool {
	if s.chatSvc == nil {
		writeJSONResponse(w, http.StatusServiceUnavailable, models.Error(models.ErrAssistantDisabled.Error()))
		return false
	}
	return true
}

func (s *Server) chatMessageHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	slog.Debug("Server.chatMessageHandler: processing chat message", "method", r.Method)
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if !s.requireChat(w) {
		return
	}
	var req models.ChatMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.chatMessageHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
		return
	}

	result := s.chatSvc.ProcessMessage(r.Context(), req.SessionID, req.Message)
	writeJSONResponse(w, http.StatusOK, models.Success(result))
}

func (s *Server) createChatSessionHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if !s.requireChat(w) {
		return
	}

	session, err := s.chatSvc.CreateSession("")
	if err != nil {
		slog.Error("Server.createChatSessionHandler: failed to create session", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to create session"))
		return
	}

	slog.Info("Server.createChatSessionHandler: session created", "sessionID", session.ID)
	writeJSONResponse(w, http.StatusOK, models.Success(map[string]string{
		"session_id": session.ID,
		"status":     "created",
	}))
}

// chatSessionHandler serves GET (fetch) and DELETE (clear) for a single chat
// session addressed by path.
func (s *Server) chatSessionHandler(w http.ResponseWriter, r *http.Request) {
	if !s.requireChat(w) {
		return
	}
	sessionID := strings.TrimPrefix(r.URL.Path, "/api/chat/session/")
	if sessionID == "" {
		writeJSONResponse(w, http.StatusBadRequest, models.Error(models.ErrEmptySessionID.Error()))
		return
	}

	switch r.Method {
	case http.MethodGet:
		session, err := s.chatSvc.GetSession(sessionID)
		if err != nil {
			slog.Error("Server.chatSessionHandler: lookup failed", "sessionID", sessionID, "error", err)
			writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to get session"))
			return
		}
		if session == nil {
			writeJSONResponse(w, http.StatusNotFound, models.Error("Session not found"))
			return
		}
		writeJSONResponse(w, http.StatusOK, models.Success(chatSessionResult{
			SessionID:    session.ID,
			CreatedAt:    session.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
			MessageCount: len(session.Messages),
			Messages:     session.Messages,
		}))
	case http.MethodDelete:
		cleared, err := s.chatSvc.ClearSession(sessionID)
		if err != nil {
			slog.Error("Server.chatSessionHandler: clear failed", "sessionID", sessionID, "error", err)
			writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to clear session"))
			return
		}
		if !cleared {
			writeJSONResponse(w, http.StatusNotFound, models.Error("Session not found"))
			return
		}
		slog.Info("Server.chatSessionHandler: session cleared", "sessionID", sessionID)
		writeJSONResponse(w, http.StatusOK, models.Success(map[string]string{
			"status":     "cleared",
			"session_id": sessionID,
		}))
	default:
		w.Header().Set("Allow", "GET, DELETE")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) listChatSessionsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if !s.requireChat(w) {
		return
	}

	sessions, err := s.chatSvc.ListSessions()
	if err != nil {
		slog.Error("Server.listChatSessionsHandler: listing failed", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to list sessions"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(sessions))
}
