// Package store provides storage backends for LeadFlow.
//
// It persists flow snapshots, chat sessions with their message history, and
// computed lead assessments. Backends: in-memory (default), SQLite, and
// PostgreSQL.
package store

import (
	"log/slog"
	"strings"

	"github.com/easybuydubai/leadflow/internal/models"
)

// Store is the persistence interface shared by all backends.
//
// Lookups return (nil, nil) when the record does not exist; persistence is
// best-effort by design and callers are expected to log and continue on
// write failures.
type Store interface {
	// SaveFlowSnapshot upserts the serialized flow state for a session.
	SaveFlowSnapshot(sessionID string, snap models.FlowSnapshot) error
	// GetFlowSnapshot returns the stored flow state, or nil when absent.
	GetFlowSnapshot(sessionID string) (*models.FlowSnapshot, error)
	// DeleteFlowSnapshot removes a session's flow state.
	DeleteFlowSnapshot(sessionID string) error

	// CreateChatSession records a new chat session.
	CreateChatSession(session models.ChatSession) error
	// GetChatSession returns a chat session with its messages, or nil when absent.
	GetChatSession(sessionID string) (*models.ChatSession, error)
	// AddChatMessage appends a message to a chat session's history.
	AddChatMessage(sessionID string, msg models.ChatMessage) error
	// DeleteChatSession removes a chat session and its messages.
	DeleteChatSession(sessionID string) error
	// ListChatSessions returns summary rows for all chat sessions.
	ListChatSessions() ([]models.ChatSessionInfo, error)

	// SaveAssessment upserts the categorization result for a session.
	SaveAssessment(sessionID string, assessment models.Assessment) error
	// GetAssessment returns the stored categorization, or nil when absent.
	GetAssessment(sessionID string) (*models.Assessment, error)

	// Close releases backend resources.
	Close() error
}

// Opts holds configuration options for store backends.
type Opts struct {
	PostgresDSN string
	SQLiteDSN   string
}

// Option defines a configuration option for store construction.
type Option func(*Opts)

// WithPostgresDSN configures a PostgreSQL backend with the given DSN.
func WithPostgresDSN(dsn string) Option {
	return func(o *Opts) { o.PostgresDSN = dsn }
}

// WithSQLiteDSN configures a SQLite backend with the given database path.
func WithSQLiteDSN(dsn string) Option {
	return func(o *Opts) { o.SQLiteDSN = dsn }
}

// DetectDSNType classifies a DSN as "postgres" or "sqlite". File paths are
// assumed to be SQLite databases.
func DetectDSNType(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") || strings.Contains(dsn, "host=") {
		return "postgres"
	}
	return "sqlite"
}

// New builds a store from the given options: PostgreSQL when a Postgres DSN
// is set, SQLite when a SQLite DSN is set, otherwise in-memory.
func New(opts ...Option) (Store, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	switch {
	case cfg.PostgresDSN != "":
		slog.Debug("store.New: using PostgreSQL backend")
		return NewPostgresStore(opts...)
	case cfg.SQLiteDSN != "":
		slog.Debug("store.New: using SQLite backend", "path", cfg.SQLiteDSN)
		return NewSQLiteStore(opts...)
	default:
		slog.Debug("store.New: no DSN configured, using in-memory backend")
		return NewInMemoryStore(), nil
	}
}
