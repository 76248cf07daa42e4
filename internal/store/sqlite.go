package store

import (
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/easybuydubai/leadflow/internal/models"
)

//go:embed migrations_sqlite.sql
var sqliteMigrations string

// SQLiteStore persists records in a local SQLite database. Snapshot and
// assessment payloads are stored as JSON text columns.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if necessary) the SQLite database at the
// configured path and applies migrations.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	dsn := cfg.SQLiteDSN
	if dsn == "" {
		return nil, fmt.Errorf("SQLite DSN is required")
	}

	if dir := filepath.Dir(dsn); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}
	if _, err := db.Exec(sqliteMigrations); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply SQLite migrations: %w", err)
	}

	slog.Debug("SQLiteStore initialized", "path", dsn)
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) SaveFlowSnapshot(sessionID string, snap models.FlowSnapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal flow snapshot: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO flow_snapshots (session_id, snapshot, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(session_id) DO UPDATE SET snapshot = excluded.snapshot, updated_at = excluded.updated_at`,
		sessionID, string(payload), time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to save flow snapshot: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetFlowSnapshot(sessionID string) (*models.FlowSnapshot, error) {
	var payload string
	err := s.db.QueryRow(`SELECT snapshot FROM flow_snapshots WHERE session_id = ?`, sessionID).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query flow snapshot: %w", err)
	}
	var snap models.FlowSnapshot
	if err := json.Unmarshal([]byte(payload), &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal flow snapshot: %w", err)
	}
	return &snap, nil
}

func (s *SQLiteStore) DeleteFlowSnapshot(sessionID string) error {
	if _, err := s.db.Exec(`DELETE FROM flow_snapshots WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("failed to delete flow snapshot: %w", err)
	}
	return nil
}

func (s *SQLiteStore) CreateChatSession(session models.ChatSession) error {
	_, err := s.db.Exec(
		`INSERT INTO chat_sessions (id, created_at) VALUES (?, ?)
		 ON CONFLICT(id) DO NOTHING`,
		session.ID, session.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create chat session: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetChatSession(sessionID string) (*models.ChatSession, error) {
	var session models.ChatSession
	err := s.db.QueryRow(`SELECT id, created_at FROM chat_sessions WHERE id = ?`, sessionID).
		Scan(&session.ID, &session.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query chat session: %w", err)
	}

	rows, err := s.db.Query(
		`SELECT role, content, sent_at FROM chat_messages WHERE session_id = ? ORDER BY id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query chat messages: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var msg models.ChatMessage
		if err := rows.Scan(&msg.Role, &msg.Content, &msg.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan chat message: %w", err)
		}
		session.Messages = append(session.Messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate chat messages: %w", err)
	}
	return &session, nil
}

func (s *SQLiteStore) AddChatMessage(sessionID string, msg models.ChatMessage) error {
	_, err := s.db.Exec(
		`INSERT INTO chat_sessions (id, created_at) VALUES (?, ?) ON CONFLICT(id) DO NOTHING`,
		sessionID, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to ensure chat session: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO chat_messages (session_id, role, content, sent_at) VALUES (?, ?, ?, ?)`,
		sessionID, msg.Role, msg.Content, msg.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to add chat message: %w", err)
	}
	return nil
}

func (s *SQLiteStore) DeleteChatSession(sessionID string) error {
	if _, err := s.db.Exec(`DELETE FROM chat_messages WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("failed to delete chat messages: %w", err)
	}
	if _, err := s.db.Exec(`DELETE FROM chat_sessions WHERE id = ?`, sessionID); err != nil {
		return fmt.Errorf("failed to delete chat session: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListChatSessions() ([]models.ChatSessionInfo, error) {
	rows, err := s.db.Query(
		`SELECT s.id, s.created_at, COUNT(m.id), MAX(m.sent_at)
		 FROM chat_sessions s LEFT JOIN chat_messages m ON m.session_id = s.id
		 GROUP BY s.id, s.created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to query chat sessions: %w", err)
	}
	defer rows.Close()

	var infos []models.ChatSessionInfo
	for rows.Next() {
		var info models.ChatSessionInfo
		var last sql.NullTime
		if err := rows.Scan(&info.ID, &info.CreatedAt, &info.MessageCount, &last); err != nil {
			return nil, fmt.Errorf("failed to scan chat session row: %w", err)
		}
		if last.Valid {
			t := last.Time
			info.LastMessage = &t
		}
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate chat sessions: %w", err)
	}
	return infos, nil
}

func (s *SQLiteStore) SaveAssessment(sessionID string, assessment models.Assessment) error {
	payload, err := json.Marshal(assessment)
	if err != nil {
		return fmt.Errorf("failed to marshal assessment: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO assessments (session_id, assessment, categorized_at) VALUES (?, ?, ?)
		 ON CONFLICT(session_id) DO UPDATE SET assessment = excluded.assessment, categorized_at = excluded.categorized_at`,
		sessionID, string(payload), assessment.CategorizedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save assessment: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetAssessment(sessionID string) (*models.Assessment, error) {
	var payload string
	err := s.db.QueryRow(`SELECT assessment FROM assessments WHERE session_id = ?`, sessionID).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query assessment: %w", err)
	}
	var assessment models.Assessment
	if err := json.Unmarshal([]byte(payload), &assessment); err != nil {
		return nil, fmt.Errorf("failed to unmarshal assessment: %w", err)
	}
	return &assessment, nil
}

// Close closes the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
