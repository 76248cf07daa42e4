package api

import (
	"log/slog"
	"sync"

	"github.com/easybuydubai/leadflow/internal/flow"
	"github.com/easybuydubai/leadflow/internal/store"
)

// FlowSessionStore maps session ids to live flow engines. Implementations
// must be safe for concurrent use; the returned session serializes access to
// its engine through its mutex.
type FlowSessionStore interface {
	// Get returns the session for id, or nil when unknown.
	Get(id string) *FlowSession
	// GetOrCreate returns the session for id, creating a fresh one when
	// unknown. The second result reports whether the session already existed.
	GetOrCreate(id string) (*FlowSession, bool)
	// Delete forgets a session.
	Delete(id string)
}

// FlowSession pairs an engine with the lock that serializes access to it.
// The engine itself performs no locking.
type FlowSession struct {
	ID string

	Mu     sync.Mutex
	Engine *flow.Engine
}

// storeBackedSessions keeps engines in memory and writes snapshots through to
// the store after each mutation. On a registry miss it attempts to restore
// the engine from a persisted snapshot, so sessions survive restarts when a
// database is configured.
type storeBackedSessions struct {
	mu       sync.Mutex
	sessions map[string]*FlowSession
	st       store.Store
}

func newStoreBackedSessions(st store.Store) *storeBackedSessions {
	return &storeBackedSessions{
		sessions: make(map[string]*FlowSession),
		st:       st,
	}
}

func (r *storeBackedSessions) Get(id string) *FlowSession {
	r.mu.Lock()
	defer r.mu.Unlock()
	if session, ok := r.sessions[id]; ok {
		return session
	}
	return r.restoreLocked(id)
}

func (r *storeBackedSessions) GetOrCreate(id string) (*FlowSession, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if session, ok := r.sessions[id]; ok {
		return session, true
	}
	if session := r.restoreLocked(id); session != nil {
		return session, true
	}
	session := &FlowSession{ID: id, Engine: flow.NewEngine()}
	r.sessions[id] = session
	return session, false
}

func (r *storeBackedSessions) Delete(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
	if err := r.st.DeleteFlowSnapshot(id); err != nil {
		slog.Warn("storeBackedSessions.Delete: failed to delete snapshot", "sessionID", id, "error", err)
	}
}

// restoreLocked loads a persisted snapshot into a fresh session. Caller holds
// r.mu. Returns nil when no snapshot exists or the load fails.
func (r *storeBackedSessions) restoreLocked(id string) *FlowSession {
	snap, err := r.st.GetFlowSnapshot(id)
	if err != nil {
		slog.Warn("storeBackedSessions.restoreLocked: snapshot lookup failed", "sessionID", id, "error", err)
		return nil
	}
	if snap == nil {
		return nil
	}
	session := &FlowSession{ID: id, Engine: flow.RestoreEngine(*snap)}
	r.sessions[id] = session
	slog.Debug("storeBackedSessions.restoreLocked: session restored from snapshot", "sessionID", id)
	return session
}

// persistSession writes the engine snapshot through to the store. Persistence
// is best-effort; failures are logged and the request proceeds.
func persistSession(st store.Store, session *FlowSession) {
	snap := session.Engine.Snapshot()
	if err := st.SaveFlowSnapshot(session.ID, snap); err != nil {
		slog.Warn("persistSession: failed to save snapshot", "sessionID", session.ID, "error", err)
	}
}
