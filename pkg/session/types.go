// Package session provides the request-scoped, in-memory read model that
// Planner and Styling Agent calls receive — a deep copy of the durable
// conversation log, never the ent-backed row itself (§3: "in-memory
// agents receive deep copies").
package session

import (
	"context"
	"sync"
	"time"
)

// MessageRole represents the role of a message sender.
type MessageRole string

const (
	RoleSystem    MessageRole = "system"
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Message is one entry in a session's conversation log.
type Message struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content"`
}

// Status tracks whether this session currently has a plan in flight.
// Sessions are cooperative and single-threaded (§5): at most one plan
// executes per session at a time.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusProcessing Status = "processing"
	StatusCancelled  Status = "cancelled"
)

// ReadModel is the in-memory, mutex-guarded view of one session handed to
// the Planner and Styling Agent. It is hydrated from the durable Session/
// Message ent rows at the start of handling a chat request and discarded
// afterward; it is never itself the source of truth.
type ReadModel struct {
	SessionID       string             `json:"session_id"`
	Messages        []Message          `json:"messages"`
	ActiveDiagramID string             `json:"active_diagram_id,omitempty"`
	Status          Status             `json:"status"`
	UpdatedAt       time.Time          `json:"updated_at"`
	mu              sync.RWMutex       // protects concurrent access to in-flight fields
	cancelFunc      context.CancelFunc `json:"-"`
}

// AddMessage appends a message (thread-safe).
func (r *ReadModel) AddMessage(role MessageRole, content string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.Messages = append(r.Messages, Message{Role: role, Content: content})
	r.UpdatedAt = time.Now()
}

// SetStatus updates the in-flight status (thread-safe).
func (r *ReadModel) SetStatus(status Status) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.Status = status
	r.UpdatedAt = time.Now()
}

// SetCancelFunc stores the cancel function for the plan currently executing
// against this session, if any.
func (r *ReadModel) SetCancelFunc(cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancelFunc = cancel
}

// Cancel aborts pending steps of the in-flight plan. Per §5, cancellation
// only stops steps not yet started; the plan record itself is never
// deleted, only its remaining executions are skipped.
func (r *ReadModel) Cancel() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cancelFunc != nil {
		r.cancelFunc()
		r.Status = StatusCancelled
		r.UpdatedAt = time.Now()
		return true
	}
	return false
}

// Clone returns a deep copy safe to hand to an agent or translator.
func (r *ReadModel) Clone() ReadModel {
	r.mu.RLock()
	defer r.mu.RUnlock()

	messages := make([]Message, len(r.Messages))
	copy(messages, r.Messages)

	return ReadModel{
		SessionID:       r.SessionID,
		Messages:        messages,
		ActiveDiagramID: r.ActiveDiagramID,
		Status:          r.Status,
		UpdatedAt:       r.UpdatedAt,
	}
}
