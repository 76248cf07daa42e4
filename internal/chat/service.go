// Package chat implements the free-form AI property assistant that runs
// alongside the structured qualification flow.
package chat

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	openai "github.com/openai/openai-go"

	"github.com/easybuydubai/leadflow/internal/genai"
	"github.com/easybuydubai/leadflow/internal/models"
	"github.com/easybuydubai/leadflow/internal/store"
)

const systemPrompt = `You are an AI assistant for EasyBuy Dubai, a revolutionary property buying platform in Dubai.

Your role is to:
1. Understand property requirements from potential buyers
2. Ask clarifying questions about their needs
3. Collect information about:
   - Property type (Apartment, Villa, Townhouse, Penthouse)
   - Budget range
   - Preferred locations in Dubai
   - Number of bedrooms
   - Timeline for purchase
   - Financing status (cash buyer, pre-approved, needs financing)
   - Any special requirements

Be friendly, professional, and helpful. Guide the conversation naturally to gather all necessary information.
Assure buyers that their information will only be shared with one dedicated expert - no spam calls.
Focus on understanding their needs without being pushy or salesy.

Remember: You're here to make property buying in Dubai pressure-free and efficient.`

const analysisPrompt = `Based on the conversation, extract and summarize the buyer's property requirements.

Return a JSON-like summary including:
- property_type
- budget_min
- budget_max
- locations (list)
- bedrooms
- timeline
- financing_status
- special_requirements (list)
- lead_score (0-100 based on readiness to buy)

If any information is missing, mark it as "Not specified".`

// Reply returned to the user when the assistant backend fails.
const errorReply = "I apologize, but I encountered an error. Please try again."

// Messages accumulate per exchange (user plus assistant); requirements are
// re-analyzed every analysisInterval messages once past the first exchange.
const analysisInterval = 5

// Service coordinates chat sessions between the store and the AI client.
type Service struct {
	st store.Store
	ai genai.ClientInterface
}

// NewService creates a chat service backed by the given store and AI client.
func NewService(st store.Store, ai genai.ClientInterface) *Service {
	return &Service{st: st, ai: ai}
}

// CreateSession registers a new chat session. When sessionID is empty a
// random UUID is assigned.
func (s *Service) CreateSession(sessionID string) (models.ChatSession, error) {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	session := models.ChatSession{ID: sessionID, CreatedAt: time.Now()}
	if err := s.st.CreateChatSession(session); err != nil {
		return models.ChatSession{}, fmt.Errorf("failed to create chat session: %w", err)
	}
	slog.Debug("Service.CreateSession: session created", "sessionID", sessionID)
	return session, nil
}

// GetSession returns a session with its message history, or nil when absent.
func (s *Service) GetSession(sessionID string) (*models.ChatSession, error) {
	return s.st.GetChatSession(sessionID)
}

// ProcessMessage records the user message, generates the assistant reply and
// periodically re-analyzes the conversation for lead qualification. On
// backend failure it returns an apology reply with the error attached rather
// than failing the request.
func (s *Service) ProcessMessage(ctx context.Context, sessionID, message string) models.ChatResult {
	if sessionID == "" {
		created, err := s.CreateSession("")
		if err != nil {
			return models.ChatResult{Response: errorReply, Error: err.Error()}
		}
		sessionID = created.ID
	}

	userMsg := models.ChatMessage{Role: models.ChatRoleUser, Content: message, Timestamp: time.Now()}
	if err := s.st.AddChatMessage(sessionID, userMsg); err != nil {
		slog.Error("Service.ProcessMessage: failed to record user message", "sessionID", sessionID, "error", err)
		return s.errorResult(sessionID, err)
	}

	session, err := s.st.GetChatSession(sessionID)
	if err != nil || session == nil {
		if err == nil {
			err = models.ErrSessionNotFound
		}
		return s.errorResult(sessionID, err)
	}

	history := buildAIMessages(session.Messages)
	reply, err := s.ai.GenerateWithMessages(ctx, history)
	if err != nil {
		slog.Error("Service.ProcessMessage: generation failed", "sessionID", sessionID, "error", err)
		return s.errorResult(sessionID, err)
	}

	assistantMsg := models.ChatMessage{Role: models.ChatRoleAssistant, Content: reply, Timestamp: time.Now()}
	if err := s.st.AddChatMessage(sessionID, assistantMsg); err != nil {
		slog.Error("Service.ProcessMessage: failed to record assistant message", "sessionID", sessionID, "error", err)
	}

	total := len(session.Messages) + 1
	result := models.ChatResult{SessionID: sessionID, Response: reply, MessageCount: total}

	if total > analysisInterval && total%analysisInterval == 0 {
		analysis, err := s.analyzeRequirements(ctx, history)
		if err != nil {
			slog.Warn("Service.ProcessMessage: requirements analysis failed", "sessionID", sessionID, "error", err)
		} else {
			result.LeadAnalysis = analysis
		}
	}

	slog.Debug("Service.ProcessMessage: message processed", "sessionID", sessionID, "messageCount", total)
	return result
}

// ClearSession deletes a session and reports whether it existed.
func (s *Service) ClearSession(sessionID string) (bool, error) {
	session, err := s.st.GetChatSession(sessionID)
	if err != nil {
		return false, err
	}
	if session == nil {
		return false, nil
	}
	if err := s.st.DeleteChatSession(sessionID); err != nil {
		return false, err
	}
	return true, nil
}

// ListSessions returns summary rows for all active sessions.
func (s *Service) ListSessions() ([]models.ChatSessionInfo, error) {
	return s.st.ListChatSessions()
}

// analyzeRequirements asks the model to summarize the buyer's requirements
// from the conversation so far.
func (s *Service) analyzeRequirements(ctx context.Context, history []openai.ChatCompletionMessageParamUnion) (string, error) {
	messages := append(append([]openai.ChatCompletionMessageParamUnion(nil), history...),
		openai.UserMessage(analysisPrompt))
	return s.ai.GenerateWithMessages(ctx, messages)
}

func (s *Service) errorResult(sessionID string, err error) models.ChatResult {
	count := 0
	if session, gerr := s.st.GetChatSession(sessionID); gerr == nil && session != nil {
		count = len(session.Messages)
	}
	return models.ChatResult{
		SessionID:    sessionID,
		Response:     errorReply,
		MessageCount: count,
		Error:        err.Error(),
	}
}

// buildAIMessages converts stored history into API messages, prefixed with
// the system prompt.
func buildAIMessages(history []models.ChatMessage) []openai.ChatCompletionMessageParamUnion {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+1)
	messages = append(messages, openai.SystemMessage(systemPrompt))
	for _, msg := range history {
		switch msg.Role {
		case models.ChatRoleAssistant:
			messages = append(messages, openai.AssistantMessage(msg.Content))
		default:
			messages = append(messages, openai.UserMessage(msg.Content))
		}
	}
	return messages
}
