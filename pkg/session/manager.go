package session

import (
	"fmt"
	"sync"
	"time"
)

// Manager holds one ReadModel per active session_id. It is the in-process
// registry the Orchestrator consults to enforce the per-session
// single-in-flight-plan rule (§5) — a session already StatusProcessing
// must queue, not run a second plan concurrently.
type Manager struct {
	models map[string]*ReadModel
	mu     sync.RWMutex
}

// NewManager creates an empty session manager.
func NewManager() *Manager {
	return &Manager{
		models: make(map[string]*ReadModel),
	}
}

// Hydrate registers (or replaces) the in-memory read model for a session,
// seeded from the durable conversation log. Called once at the start of
// handling a chat request.
func (m *Manager) Hydrate(sessionID string, messages []Message, activeDiagramID string) *ReadModel {
	m.mu.Lock()
	defer m.mu.Unlock()

	model := &ReadModel{
		SessionID:       sessionID,
		Messages:        messages,
		ActiveDiagramID: activeDiagramID,
		Status:          StatusIdle,
		UpdatedAt:       time.Now(),
	}
	m.models[sessionID] = model
	return model
}

// Get retrieves the in-memory read model for a session, if hydrated.
func (m *Manager) Get(sessionID string) (*ReadModel, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	model, ok := m.models[sessionID]
	if !ok {
		return nil, fmt.Errorf("session not hydrated: %s", sessionID)
	}
	return model, nil
}

// Release drops the in-memory read model once a chat request finishes
// processing; the durable log in Postgres is unaffected.
func (m *Manager) Release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.models, sessionID)
}

// CancelSession cancels the in-flight plan for a session, if any is
// registered locally. Returns false if the session has no in-flight plan
// on this process.
func (m *Manager) CancelSession(sessionID string) bool {
	m.mu.RLock()
	model, ok := m.models[sessionID]
	m.mu.RUnlock()
	if !ok {
		return false
	}
	return model.Cancel()
}
