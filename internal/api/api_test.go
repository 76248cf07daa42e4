package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	openai "github.com/openai/openai-go"

	"github.com/easybuydubai/leadflow/internal/chat"
	"github.com/easybuydubai/leadflow/internal/messaging"
	"github.com/easybuydubai/leadflow/internal/models"
	"github.com/easybuydubai/leadflow/internal/store"
)

type stubAI struct{}

func (stubAI) GenerateWithMessages(_ context.Context, _ []openai.ChatCompletionMessageParamUnion) (string, error) {
	return "stub reply", nil
}

// newTestServer builds a server over an in-memory store with the chat
// assistant enabled.
func newTestServer(t *testing.T) (*Server, store.Store) {
	t.Helper()
	st := store.NewInMemoryStore()
	chatSvc := chat.NewService(st, stubAI{})
	return NewServer(st, newStoreBackedSessions(st), chatSvc, &messaging.NoopService{}), st
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body interface{}) (*httptest.ResponseRecorder, models.APIResponse) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var envelope models.APIResponse
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
			t.Fatalf("failed to decode response envelope: %v (body %s)", err, rec.Body.String())
		}
	}
	return rec, envelope
}

// resultAs re-marshals the envelope's result into out.
func resultAs(t *testing.T, envelope models.APIResponse, out interface{}) {
	t.Helper()
	raw, err := json.Marshal(envelope.Result)
	if err != nil {
		t.Fatalf("failed to re-marshal result: %v", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		t.Fatalf("failed to decode result: %v", err)
	}
}

func TestStartConversation(t *testing.T) {
	s, _ := newTestServer(t)
	rec, envelope := doJSON(t, s.Handler(), http.MethodPost, "/api/conversation/start?session_id=s1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var result startConversationResult
	resultAs(t, envelope, &result)
	if result.Status != "started" {
		t.Errorf("expected started, got %s", result.Status)
	}
	if result.CurrentQuestion == nil || result.CurrentQuestion.ID != "profile_1" {
		t.Errorf("expected profile_1 as first question, got %v", result.CurrentQuestion)
	}
	if result.EstimatedTime != 10.0 {
		t.Errorf("expected 10 minute estimate, got %v", result.EstimatedTime)
	}
	if len(result.Timeline) != 10 {
		t.Errorf("expected 10 timeline entries, got %d", len(result.Timeline))
	}
}

func TestStartRequiresSessionID(t *testing.T) {
	s, _ := newTestServer(t)
	rec, _ := doJSON(t, s.Handler(), http.MethodPost, "/api/conversation/start", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestQuestionUnknownSession(t *testing.T) {
	s, _ := newTestServer(t)
	rec, envelope := doJSON(t, s.Handler(), http.MethodGet, "/api/conversation/question/nope", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
	if envelope.Status != string(models.APIStatusError) {
		t.Errorf("expected error envelope, got %s", envelope.Status)
	}
}

func TestSubmitAnswerAdvancesFlow(t *testing.T) {
	s, _ := newTestServer(t)
	doJSON(t, s.Handler(), http.MethodPost, "/api/conversation/start?session_id=s1", nil)

	rec, envelope := doJSON(t, s.Handler(), http.MethodPost, "/api/conversation/answer", models.AnswerRequest{
		SessionID:  "s1",
		QuestionID: "profile_1",
		Answer:     models.StringValue("already_here"),
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var result answerResult
	resultAs(t, envelope, &result)
	if result.Status != "in_progress" {
		t.Errorf("expected in_progress, got %s", result.Status)
	}
	if result.NextQuestion == nil || result.NextQuestion.ID != "profile_2" {
		t.Errorf("expected profile_2 next, got %v", result.NextQuestion)
	}
	if len(result.Responses) != 1 {
		t.Errorf("expected 1 recorded response, got %d", len(result.Responses))
	}
}

func TestFullFlowCompletion(t *testing.T) {
	s, st := newTestServer(t)
	doJSON(t, s.Handler(), http.MethodPost, "/api/conversation/start?session_id=s1", nil)

	// Walk the flow by always answering the question the API returns.
	session := s.sessions.Get("s1")
	var last answerResult
	for i := 0; i < 30; i++ {
		session.Mu.Lock()
		q := session.Engine.CurrentQuestion()
		session.Mu.Unlock()
		if q == nil {
			break
		}
		value := "test"
		if len(q.Options) > 0 {
			value = q.Options[0].Value
		}
		rec, envelope := doJSON(t, s.Handler(), http.MethodPost, "/api/conversation/answer", models.AnswerRequest{
			SessionID:  "s1",
			QuestionID: q.ID,
			Answer:     models.StringValue(value),
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("answer %s failed with %d: %s", q.ID, rec.Code, rec.Body.String())
		}
		resultAs(t, envelope, &last)
	}

	if last.Status != "complete" {
		t.Fatalf("expected complete, got %s", last.Status)
	}
	if last.Categorization == nil {
		t.Fatal("expected categorization on completion")
	}
	if last.Categorization.LeadScore <= 0 || last.Categorization.LeadScore > 100 {
		t.Errorf("lead score out of range: %d", last.Categorization.LeadScore)
	}
	if last.Summary == nil || !last.Summary.IsComplete {
		t.Error("expected complete summary")
	}

	// Completion persists the assessment.
	stored, err := st.GetAssessment("s1")
	if err != nil || stored == nil {
		t.Errorf("expected persisted assessment, got %v %v", stored, err)
	}
}

func TestCategoryNote(t *testing.T) {
	s, _ := newTestServer(t)
	doJSON(t, s.Handler(), http.MethodPost, "/api/conversation/start?session_id=s1", nil)

	rec, envelope := doJSON(t, s.Handler(), http.MethodPost, "/api/conversation/category-note", models.CategoryNoteRequest{
		SessionID:  "s1",
		CategoryID: models.CategoryBudget,
		Note:       "prefers off-plan payment terms",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if envelope.Message != "Note added successfully" {
		t.Errorf("unexpected message %q", envelope.Message)
	}

	rec, _ = doJSON(t, s.Handler(), http.MethodPost, "/api/conversation/category-note", models.CategoryNoteRequest{
		SessionID:  "s1",
		CategoryID: models.CategoryBudget,
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for empty note, got %d", rec.Code)
	}
}

func TestSkipCategory(t *testing.T) {
	s, _ := newTestServer(t)
	doJSON(t, s.Handler(), http.MethodPost, "/api/conversation/start?session_id=s1", nil)

	rec, envelope := doJSON(t, s.Handler(), http.MethodPost, "/api/conversation/skip-category/s1/profile", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var result skipCategoryResult
	resultAs(t, envelope, &result)
	if result.Status != "skipped" {
		t.Errorf("expected skipped, got %s", result.Status)
	}
	if result.NextQuestion == nil || result.NextQuestion.ID != "budget_1" {
		t.Errorf("expected budget_1 after skipping profile, got %v", result.NextQuestion)
	}
}

func TestTimelineEndpoint(t *testing.T) {
	s, _ := newTestServer(t)
	doJSON(t, s.Handler(), http.MethodPost, "/api/conversation/start?session_id=s1", nil)

	rec, envelope := doJSON(t, s.Handler(), http.MethodGet, "/api/conversation/timeline/s1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var result timelineResult
	resultAs(t, envelope, &result)
	if len(result.Timeline) != 10 {
		t.Errorf("expected 10 timeline entries, got %d", len(result.Timeline))
	}
	if result.Timeline[0].Status != models.TimelineStatusActive {
		t.Errorf("expected profile active, got %s", result.Timeline[0].Status)
	}
}

func TestScheduleLater(t *testing.T) {
	s, _ := newTestServer(t)
	doJSON(t, s.Handler(), http.MethodPost, "/api/conversation/start?session_id=s1", nil)

	rec, envelope := doJSON(t, s.Handler(), http.MethodPost, "/api/conversation/schedule-later", models.ScheduleRequest{
		SessionID:     "s1",
		PhoneNumber:   "+971 50 123 4567",
		PreferredTime: "tomorrow evening",
		ContactMethod: "whatsapp",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var result scheduleResult
	resultAs(t, envelope, &result)
	if result.Status != "scheduled" {
		t.Errorf("expected scheduled, got %s", result.Status)
	}
	if result.Phone != "+971501234567" {
		t.Errorf("expected canonicalized phone, got %s", result.Phone)
	}

	rec, _ = doJSON(t, s.Handler(), http.MethodPost, "/api/conversation/schedule-later", models.ScheduleRequest{
		SessionID:   "s1",
		PhoneNumber: "123",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for invalid phone, got %d", rec.Code)
	}
}

func TestSummaryEndpoint(t *testing.T) {
	s, _ := newTestServer(t)
	doJSON(t, s.Handler(), http.MethodPost, "/api/conversation/start?session_id=s1", nil)

	rec, envelope := doJSON(t, s.Handler(), http.MethodGet, "/api/conversation/summary/s1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var result summaryResult
	resultAs(t, envelope, &result)
	if result.IsComplete {
		t.Error("fresh session should not be complete")
	}
	if result.Categorization != nil {
		t.Error("incomplete flow should not carry a categorization")
	}
}

func TestSessionRestoredFromSnapshot(t *testing.T) {
	st := store.NewInMemoryStore()
	first := NewServer(st, newStoreBackedSessions(st), nil, &messaging.NoopService{})
	doJSON(t, first.Handler(), http.MethodPost, "/api/conversation/start?session_id=s1", nil)
	doJSON(t, first.Handler(), http.MethodPost, "/api/conversation/answer", models.AnswerRequest{
		SessionID:  "s1",
		QuestionID: "profile_1",
		Answer:     models.StringValue("already_here"),
	})

	// A fresh registry over the same store simulates a restart.
	second := NewServer(st, newStoreBackedSessions(st), nil, &messaging.NoopService{})
	rec, envelope := doJSON(t, second.Handler(), http.MethodGet, "/api/conversation/question/s1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected restored session, got %d", rec.Code)
	}
	var result questionResult
	resultAs(t, envelope, &result)
	if result.Question == nil || result.Question.ID != "profile_2" {
		t.Errorf("expected restored cursor at profile_2, got %v", result.Question)
	}
}

func TestChatMessageEndpoint(t *testing.T) {
	s, _ := newTestServer(t)
	rec, envelope := doJSON(t, s.Handler(), http.MethodPost, "/api/chat/message", models.ChatMessageRequest{
		Message: "looking for a 2br apartment",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var result models.ChatResult
	resultAs(t, envelope, &result)
	if result.Response != "stub reply" {
		t.Errorf("unexpected response %q", result.Response)
	}
	if result.SessionID == "" {
		t.Error("expected auto-created session id")
	}
}

func TestChatEndpointsWithoutAssistant(t *testing.T) {
	st := store.NewInMemoryStore()
	s := NewServer(st, newStoreBackedSessions(st), nil, &messaging.NoopService{})

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/chat/message"},
		{http.MethodPost, "/api/chat/session/create"},
		{http.MethodGet, "/api/chat/session/s1"},
		{http.MethodGet, "/api/chat/sessions"},
	}
	for _, p := range paths {
		rec, _ := doJSON(t, s.Handler(), p.method, p.path, nil)
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("%s %s: expected 503, got %d", p.method, p.path, rec.Code)
		}
	}
}

func TestChatSessionLifecycle(t *testing.T) {
	s, _ := newTestServer(t)

	_, envelope := doJSON(t, s.Handler(), http.MethodPost, "/api/chat/session/create", nil)
	var created map[string]string
	resultAs(t, envelope, &created)
	sessionID := created["session_id"]
	if sessionID == "" {
		t.Fatal("expected session id")
	}

	doJSON(t, s.Handler(), http.MethodPost, "/api/chat/message", models.ChatMessageRequest{
		SessionID: sessionID,
		Message:   "hello",
	})

	rec, envelope := doJSON(t, s.Handler(), http.MethodGet, fmt.Sprintf("/api/chat/session/%s", sessionID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var session chatSessionResult
	resultAs(t, envelope, &session)
	if session.MessageCount != 2 {
		t.Errorf("expected 2 messages, got %d", session.MessageCount)
	}

	rec, _ = doJSON(t, s.Handler(), http.MethodDelete, fmt.Sprintf("/api/chat/session/%s", sessionID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on delete, got %d", rec.Code)
	}
	rec, _ = doJSON(t, s.Handler(), http.MethodGet, fmt.Sprintf("/api/chat/session/%s", sessionID), nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestHealthAndRoot(t *testing.T) {
	s, _ := newTestServer(t)

	rec, envelope := doJSON(t, s.Handler(), http.MethodGet, "/api/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var health map[string]string
	resultAs(t, envelope, &health)
	if health["status"] != "healthy" {
		t.Errorf("unexpected health status %q", health["status"])
	}

	rec, _ = doJSON(t, s.Handler(), http.MethodGet, "/", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 at root, got %d", rec.Code)
	}
	rec, _ = doJSON(t, s.Handler(), http.MethodGet, "/nope", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown path, got %d", rec.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	s, _ := newTestServer(t)
	rec, _ := doJSON(t, s.Handler(), http.MethodGet, "/api/conversation/answer", nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", rec.Code)
	}
	if allow := rec.Header().Get("Allow"); allow != http.MethodPost {
		t.Errorf("expected Allow: POST, got %q", allow)
	}
}
