// Package api provides HTTP handlers and the main API server logic for LeadFlow.
//
// It exposes RESTful endpoints for the guided qualification conversation, the
// AI chat assistant, and health reporting. The API integrates with the flow,
// chat, store, and messaging modules.
package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/easybuydubai/leadflow/internal/chat"
	"github.com/easybuydubai/leadflow/internal/genai"
	"github.com/easybuydubai/leadflow/internal/messaging"
	"github.com/easybuydubai/leadflow/internal/store"
)

// DefaultAddr is the listen address used when none is configured.
const DefaultAddr = ":8080"

// Opts holds configuration options for the API server.
type Opts struct {
	// Addr is the listen address (e.g. ":8080").
	Addr string
}

// Option defines a configuration option for the API server.
type Option func(*Opts)

// WithAddr sets the server listen address.
func WithAddr(addr string) Option {
	return func(o *Opts) { o.Addr = addr }
}

// Server wires the HTTP surface to the flow sessions, chat service, store and
// messaging modules.
type Server struct {
	addr     string
	mux      *http.ServeMux
	st       store.Store
	sessions FlowSessionStore
	chatSvc  *chat.Service
	msgSvc   messaging.Service
}

// NewServer constructs a server over already-built modules. chatSvc may be
// nil when no AI backend is configured; chat endpoints then report the
// assistant as unavailable.
func NewServer(st store.Store, sessions FlowSessionStore, chatSvc *chat.Service, msgSvc messaging.Service, opts ...Option) *Server {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}

	s := &Server{
		addr:     cfg.Addr,
		mux:      http.NewServeMux(),
		st:       st,
		sessions: sessions,
		chatSvc:  chatSvc,
		msgSvc:   msgSvc,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/api/conversation/start", s.startConversationHandler)
	s.mux.HandleFunc("/api/conversation/question/", s.currentQuestionHandler)
	s.mux.HandleFunc("/api/conversation/answer", s.submitAnswerHandler)
	s.mux.HandleFunc("/api/conversation/category-note", s.categoryNoteHandler)
	s.mux.HandleFunc("/api/conversation/skip-category/", s.skipCategoryHandler)
	s.mux.HandleFunc("/api/conversation/timeline/", s.timelineHandler)
	s.mux.HandleFunc("/api/conversation/schedule-later", s.scheduleLaterHandler)
	s.mux.HandleFunc("/api/conversation/summary/", s.summaryHandler)

	s.mux.HandleFunc("/api/chat/message", s.chatMessageHandler)
	s.mux.HandleFunc("/api/chat/session/create", s.createChatSessionHandler)
	s.mux.HandleFunc("/api/chat/session/", s.chatSessionHandler)
	s.mux.HandleFunc("/api/chat/sessions", s.listChatSessionsHandler)

	s.mux.HandleFunc("/api/health", s.healthHandler)
	s.mux.HandleFunc("/", s.rootHandler)
}

// Handler returns the server's HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Serve starts listening and blocks until the listener fails.
func (s *Server) Serve() error {
	slog.Info("Server.Serve: LeadFlow API listening", "addr", s.addr)
	return http.ListenAndServe(s.addr, s.mux)
}

// Run builds all modules from their options and starts the API server. It
// blocks until the server stops.
func Run(storeOpts []store.Option, genaiOpts []genai.Option, msgOpts []messaging.Option, apiOpts []Option) error {
	st, err := store.New(storeOpts...)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer st.Close()

	var chatSvc *chat.Service
	aiClient, err := genai.NewClient(genaiOpts...)
	if err != nil {
		slog.Warn("Run: AI client unavailable, chat assistant disabled", "error", err)
	} else {
		chatSvc = chat.NewService(st, aiClient)
	}

	msgSvc := messaging.New(msgOpts...)
	sessions := newStoreBackedSessions(st)

	server := NewServer(st, sessions, chatSvc, msgSvc, apiOpts...)
	return server.Serve()
}
