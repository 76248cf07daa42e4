package store

import (
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"

	"github.com/easybuydubai/leadflow/internal/models"
)

//go:embed migrations_postgres.sql
var postgresMigrations string

// Connection pool settings for the PostgreSQL backend.
const (
	DefaultMaxOpenConns    = 25
	DefaultMaxIdleConns    = 5
	DefaultConnMaxLifetime = 5 * time.Minute
)

// PostgresStore persists records in PostgreSQL. Snapshot and assessment
// payloads are stored as JSON text columns, matching the SQLite backend.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore connects to PostgreSQL with the configured DSN and applies
// migrations.
func NewPostgresStore(opts ...Option) (*PostgresStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.PostgresDSN == "" {
		return nil, fmt.Errorf("PostgreSQL DSN is required")
	}

	db, err := sql.Open("postgres", cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open PostgreSQL connection: %w", err)
	}
	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxIdleConns)
	db.SetConnMaxLifetime(DefaultConnMaxLifetime)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}
	if _, err := db.Exec(postgresMigrations); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply PostgreSQL migrations: %w", err)
	}

	slog.Debug("PostgresStore initialized")
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) SaveFlowSnapshot(sessionID string, snap models.FlowSnapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal flow snapshot: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO flow_snapshots (session_id, snapshot, updated_at) VALUES ($1, $2, $3)
		 ON CONFLICT (session_id) DO UPDATE SET snapshot = EXCLUDED.snapshot, updated_at = EXCLUDED.updated_at`,
		sessionID, string(payload), time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to save flow snapshot: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetFlowSnapshot(sessionID string) (*models.FlowSnapshot, error) {
	var payload string
	err := s.db.QueryRow(`SELECT snapshot FROM flow_snapshots WHERE session_id = $1`, sessionID).Scan(&payload)
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

func (s *PostgresStore) DeleteFlowSnapshot(sessionID string) error {
	if _, err := s.db.Exec(`DELETE FROM flow_snapshots WHERE session_id = $1`, sessionID); err != nil {
		return fmt.Errorf("failed to delete flow snapshot: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreateChatSession(session models.ChatSession) error {
	_, err := s.db.Exec(
		`INSERT INTO chat_sessions (id, created_at) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING`,
		session.ID, session.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create chat session: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetChatSession(sessionID string) (*models.ChatSession, error) {
	var session models.ChatSession
	err := s.db.QueryRow(`SELECT id, created_at FROM chat_sessions WHERE id = $1`, sessionID).
		Scan(&session.ID, &session.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query chat session: %w", err)
	}

	rows, err := s.db.Query(
		`SELECT role, content, sent_at FROM chat_messages WHERE session_id = $1 ORDER BY id`, sessionID)
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

func (s *PostgresStore) AddChatMessage(sessionID string, msg models.ChatMessage) error {
	_, err := s.db.Exec(
		`INSERT INTO chat_sessions (id, created_at) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING`,
		sessionID, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to ensure chat session: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO chat_messages (session_id, role, content, sent_at) VALUES ($1, $2, $3, $4)`,
		sessionID, msg.Role, msg.Content, msg.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to add chat message: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteChatSession(sessionID string) error {
	if _, err := s.db.Exec(`DELETE FROM chat_messages WHERE session_id = $1`, sessionID); err != nil {
		return fmt.Errorf("failed to delete chat messages: %w", err)
	}
	if _, err := s.db.Exec(`DELETE FROM chat_sessions WHERE id = $1`, sessionID); err != nil {
		return fmt.Errorf("failed to delete chat session: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListChatSessions() ([]models.ChatSessionInfo, error) {
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

func (s *PostgresStore) SaveAssessment(sessionID string, assessment models.Assessment) error {
	payload, err := json.Marshal(assessment)
	if err != nil {
		return fmt.Errorf("failed to marshal assessment: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO assessments (session_id, assessment, categorized_at) VALUES ($1, $2, $3)
		 ON CONFLICT (session_id) DO UPDATE SET assessment = EXCLUDED.assessment, categorized_at = EXCLUDED.categorized_at`,
		sessionID, string(payload), assessment.CategorizedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save assessment: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetAssessment(sessionID string) (*models.Assessment, error) {
	var payload string
	err := s.db.QueryRow(`SELECT assessment FROM assessments WHERE session_id = $1`, sessionID).Scan(&payload)
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

// Close closes the underlying connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
