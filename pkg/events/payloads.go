package events

// PlanCreatedPayload is the payload for plan.created events. Published
// the moment a Planner decision is persisted, before any step executes
// (§4.8: "persist a PlanRecord before execution").
type PlanCreatedPayload struct {
	Type      string `json:"type"`       // always EventTypePlanCreated
	PlanID    string `json:"plan_id"`    // plan record UUID
	SessionID string `json:"session_id"` // owning session
	Intent    string `json:"intent"`     // the Planner's stated intent
	StepCount int    `json:"step_count"`
	Timestamp string `json:"timestamp"` // RFC3339Nano
}

// PlanStepStatusPayload is the payload for plan.step.status events.
// Single event type for every step lifecycle transition (running,
// completed, failed, skipped_due_to_upstream).
type PlanStepStatusPayload struct {
	Type       string `json:"type"`                 // always EventTypePlanStepStatus
	PlanID     string `json:"plan_id"`              // owning plan
	SessionID  string `json:"session_id"`           // owning session
	StepIndex  int    `json:"step_index"`            // 0-based
	ToolID     string `json:"tool_id"`
	Status     string `json:"status"`                // running, completed, failed, skipped_due_to_upstream
	DurationMs int    `json:"duration_ms,omitempty"`
	Error      string `json:"error,omitempty"`
	Timestamp  string `json:"timestamp"` // RFC3339Nano
}

// StreamChunkPayload is the payload for stream.chunk transient events.
// Published for each LLM streaming token — high frequency, ephemeral.
type StreamChunkPayload struct {
	Type      string `json:"type"`      // always EventTypeStreamChunk
	EventID   string `json:"event_id"`  // parent plan step or message UUID
	Delta     string `json:"delta"`     // incremental text chunk
	Timestamp string `json:"timestamp"` // RFC3339Nano
}

// DiagramVersionCreatedPayload is the payload for diagram.version.created
// events, published whenever the IR Store commits a new version (§4.1).
type DiagramVersionCreatedPayload struct {
	Type          string `json:"type"` // always EventTypeDiagramVersionCreated
	DiagramID     string `json:"diagram_id"`
	Version       int    `json:"version"`
	ParentVersion *int   `json:"parent_version,omitempty"`
	DiagramType   string `json:"diagram_type"`
	Status        string `json:"status"` // proposed, validated, committed
	Timestamp     string `json:"timestamp"`
}

// DiagramRenderedPayload is the payload for diagram.rendered events,
// published when the Render Pipeline produces a RenderedArtifact.
type DiagramRenderedPayload struct {
	Type             string `json:"type"` // always EventTypeDiagramRendered
	IRVersionID      string `json:"ir_version_id"`
	RendererID       string `json:"renderer_id"`
	NeutralValidated bool   `json:"neutral_validated"`
	ErrorMessage     string `json:"error_message,omitempty"`
	DurationMs       int    `json:"duration_ms,omitempty"`
	Timestamp        string `json:"timestamp"`
}

// StylingAuditCreatedPayload is the payload for styling_audit.created
// events, fired when a Styling Agent interaction record is saved.
type StylingAuditCreatedPayload struct {
	Type      string `json:"type"` // always EventTypeStylingAuditCreated
	AuditID   string `json:"audit_id"`
	DiagramID string `json:"diagram_id"`
	PlanID    string `json:"plan_id,omitempty"`
	Mode      string `json:"mode"` // pre_render, post_svg
	Timestamp string `json:"timestamp"`
}

// SessionStatusPayload is the payload for session.status events.
// Published when a session transitions between lifecycle states.
type SessionStatusPayload struct {
	Type      string `json:"type"`       // always EventTypeSessionStatus
	SessionID string `json:"session_id"` // session UUID
	Status    string `json:"status"`     // new status (e.g. "idle", "processing", "cancelled")
	Timestamp string `json:"timestamp"`  // RFC3339Nano
}

// ChatCreatedPayload is the payload for chat.created events, published
// when a new session receives its first message.
type ChatCreatedPayload struct {
	Type      string `json:"type"` // always EventTypeChatCreated
	SessionID string `json:"session_id"`
	Timestamp string `json:"timestamp"`
}

// ChatUserMessagePayload is the payload for chat.user_message events,
// published when a user submits a message into an existing session.
type ChatUserMessagePayload struct {
	Type      string `json:"type"` // always EventTypeChatUserMessage
	SessionID string `json:"session_id"`
	MessageID string `json:"message_id"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// IngestionProgressPayload is the payload for ingestion.progress
// transient events, broadcast on GlobalIngestionChannel for the
// ingestion job queue's status panel.
type IngestionProgressPayload struct {
	Type      string `json:"type"` // always EventTypeIngestionProgress
	JobID     string `json:"job_id"`
	RepoURL   string `json:"repo_url"`
	Status    string `json:"status"` // queued, processing, complete, failed
	Timestamp string `json:"timestamp"`
}
