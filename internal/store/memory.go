// Package store provides storage backends for LeadFlow.
//
// This file implements the in-memory store used when no database is
// configured. It is the default for development and tests.
package store

import (
	"sync"
	"time"

	"github.com/easybuydubai/leadflow/internal/models"
)

// InMemoryStore keeps all records in process memory.
type InMemoryStore struct {
	mu          sync.RWMutex
	snapshots   map[string]models.FlowSnapshot
	sessions    map[string]models.ChatSession
	assessments map[string]models.Assessment
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		snapshots:   make(map[string]models.FlowSnapshot),
		sessions:    make(map[string]models.ChatSession),
		assessments: make(map[string]models.Assessment),
	}
}

func (s *InMemoryStore) SaveFlowSnapshot(sessionID string, snap models.FlowSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[sessionID] = snap
	return nil
}

func (s *InMemoryStore) GetFlowSnapshot(sessionID string) (*models.FlowSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snapshots[sessionID]
	if !ok {
		return nil, nil
	}
	return &snap, nil
}

func (s *InMemoryStore) DeleteFlowSnapshot(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.snapshots, sessionID)
	return nil
}

func (s *InMemoryStore) CreateChatSession(session models.ChatSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session
	return nil
}

func (s *InMemoryStore) GetChatSession(sessionID string) (*models.ChatSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, nil
	}
	// Copy the message slice so callers cannot mutate stored history.
	session.Messages = append([]models.ChatMessage(nil), session.Messages...)
	return &session, nil
}

func (s *InMemoryStore) AddChatMessage(sessionID string, msg models.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		session = models.ChatSession{ID: sessionID, CreatedAt: time.Now()}
	}
	session.Messages = append(session.Messages, msg)
	s.sessions[sessionID] = session
	return nil
}

func (s *InMemoryStore) DeleteChatSession(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

func (s *InMemoryStore) ListChatSessions() ([]models.ChatSessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	infos := make([]models.ChatSessionInfo, 0, len(s.sessions))
	for _, session := range s.sessions {
		info := models.ChatSessionInfo{
			ID:           session.ID,
			CreatedAt:    session.CreatedAt,
			MessageCount: len(session.Messages),
		}
		if n := len(session.Messages); n > 0 {
			last := session.Messages[n-1].Timestamp
			info.LastMessage = &last
		}
		infos = append(infos, info)
	}
	return infos, nil
}

func (s *InMemoryStore) SaveAssessment(sessionID string, assessment models.Assessment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assessments[sessionID] = assessment
	return nil
}

func (s *InMemoryStore) GetAssessment(sessionID string) (*models.Assessment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	assessment, ok := s.assessments[sessionID]
	if !ok {
		return nil, nil
	}
	return &assessment, nil
}

// Close is a no-op for the in-memory store.
func (s *InMemoryStore) Close() error {
	return nil
}
