// Package events provides real-time event delivery via WebSocket and
// PostgreSQL NOTIFY/LISTEN for cross-pod distribution.
//
// ════════════════════════════════════════════════════════════════
// Event Lifecycle Patterns
// ════════════════════════════════════════════════════════════════
//
// Two lifecycle patterns recur across this package. Clients tell them
// apart by which events they see for a given thing.
//
// Pattern 1 — STREAMING (a plan step is in flight):
//
//   plan.step.status   {status: "running"}
//   stream.chunk       {delta: "..."}  (repeated, not persisted)
//   plan.step.status   {status: "completed" | "failed" | "skipped_due_to_upstream"}
//
//   A step is announced running while its tool call is outstanding.
//   Any LLM call the tool makes streams its own tokens via stream.chunk
//   (transient — lost on reconnect; the terminal plan.step.status event
//   carries the full output). Clients concatenate deltas locally for a
//   live typing effect.
//
// Pattern 2 — FIRE-AND-FORGET (one-shot state transitions):
//
//   diagram.version.created, diagram.rendered, styling_audit.created,
//   ingestion.progress
//
//   Published once, with final content. There is no follow-up event —
//   clients render on receipt.
//
// ════════════════════════════════════════════════════════════════
package events

import "strings"

// Persistent event types (stored in DB + NOTIFY).
const (
	// Plan lifecycle
	EventTypePlanCreated    = "plan.created"
	EventTypePlanStepStatus = "plan.step.status"

	// Diagram lifecycle
	EventTypeDiagramVersionCreated = "diagram.version.created"
	EventTypeDiagramRendered       = "diagram.rendered"

	// Styling Agent audit trail
	EventTypeStylingAuditCreated = "styling_audit.created"

	// Session lifecycle
	EventTypeSessionStatus = "session.status"

	// Chat lifecycle
	EventTypeChatCreated     = "chat.created"
	EventTypeChatUserMessage = "chat.user_message"
)

// Plan step status values (used in PlanStepStatusPayload.Status, mirrors
// ent/planexecution.Status).
const (
	StepStatusRunning              = "running"
	StepStatusCompleted            = "completed"
	StepStatusFailed               = "failed"
	StepStatusSkippedDueToUpstream = "skipped_due_to_upstream"
)

// Transient event types (NOTIFY only, no DB persistence).
const (
	// LLM streaming chunks — high-frequency, ephemeral.
	EventTypeStreamChunk = "stream.chunk"

	// Ingestion job queue depth / heartbeat, broadcast globally since jobs
	// aren't scoped to a session.
	EventTypeIngestionProgress = "ingestion.progress"
)

// GlobalSessionsChannel is the channel for session-level status events.
// The session list page subscribes to this for real-time updates.
const GlobalSessionsChannel = "sessions"

// GlobalIngestionChannel carries ingestion job queue events, which have
// no owning session to scope them to.
const GlobalIngestionChannel = "ingestion"

// SessionChannel returns the channel name for a specific session's events.
// Format: "session:{session_id}"
func SessionChannel(sessionID string) string {
	return "session:" + sessionID
}

// isKnownChannel reports whether channel is one of this runtime's channel
// namespaces: a per-session channel, or one of the two global channels.
// ConnectionManager rejects subscribe requests for anything else before a
// LISTEN is ever issued, so a typo'd or probing channel name can't hold a
// PG connection open on a channel nothing will ever publish to.
func isKnownChannel(channel string) bool {
	if channel == GlobalSessionsChannel || channel == GlobalIngestionChannel {
		return true
	}
	return strings.HasPrefix(channel, "session:")
}

// ClientMessage is the JSON structure for client → server WebSocket messages.
type ClientMessage struct {
	Action      string `json:"action"`                  // "subscribe", "unsubscribe", "catchup", "ping"
	Channel     string `json:"channel,omitempty"`       // Channel name (e.g., "session:abc-123")
	LastEventID *int   `json:"last_event_id,omitempty"` // For catchup
}
