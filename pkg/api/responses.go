package api

import "github.com/diagramaut/diagramaut/ent"

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status        string                  `json:"status"`
	Version       string                  `json:"version"`
	Database      *healthDatabaseResponse `json:"database,omitempty"`
	Configuration ConfigurationStats      `json:"configuration"`
	PlanQueue     interface{}             `json:"plan_queue,omitempty"`
}

type healthDatabaseResponse struct {
	Status          string `json:"status"`
	OpenConnections int    `json:"open_connections"`
}

// ConfigurationStats mirrors config.ConfigStats for the health endpoint,
// grounded on pkg/api/responses.go's own ConfigurationStats.
type ConfigurationStats struct {
	Renderers    int `json:"renderers"`
	Routes       int `json:"routes"`
	LLMProviders int `json:"llm_providers"`
}

// CreateSessionResponse is the body of POST /api/sessions.
type CreateSessionResponse struct {
	SessionID string `json:"session_id"`
}

// SessionResponse is the body of GET /api/sessions/{id}.
type SessionResponse struct {
	SessionID       string              `json:"session_id"`
	ActiveDiagramID *string             `json:"active_diagram_id"`
	CreatedAt       string              `json:"created_at"`
	UpdatedAt       string              `json:"updated_at"`
	Messages        []MessageResponse   `json:"messages"`
}

// MessageResponse is one entry of SessionResponse.Messages.
type MessageResponse struct {
	MessageID    string                 `json:"message_id"`
	Role         string                 `json:"role"`
	Content      string                 `json:"content"`
	ResponseType *string                `json:"response_type,omitempty"`
	Envelope     map[string]interface{} `json:"envelope,omitempty"`
	CreatedAt    string                 `json:"created_at"`
}

func messageToResponse(m *ent.Message) MessageResponse {
	return MessageResponse{
		MessageID:    m.ID,
		Role:         string(m.Role),
		Content:      m.Content,
		ResponseType: m.ResponseType,
		Envelope:     m.Envelope,
		CreatedAt:    m.CreatedAt.Format(timeLayout),
	}
}

// IngestResponse is the body of POST /api/ingest and GET /api/ingest/{job_id}.
type IngestResponse struct {
	JobID   string                 `json:"job_id"`
	Status  string                 `json:"status"`
	Result  map[string]interface{} `json:"result,omitempty"`
	Error   string                 `json:"error,omitempty"`
}

// RenderResponse is the body of GET /api/diagram/render.
type RenderResponse struct {
	SVG string `json:"svg"`
}

// FeedbackResponse is the body of POST /api/feedback.
type FeedbackResponse struct {
	Status   string                 `json:"status"`
	ImageID  string                 `json:"image_id"`
	IR       map[string]interface{} `json:"ir"`
}

// IRHistoryEntry is one entry of GET /api/ir/{image_id}/history.
type IRHistoryEntry struct {
	Version       int  `json:"version"`
	ParentVersion *int `json:"parent_version,omitempty"`
	Status        string `json:"status"`
	CreatedAt     string `json:"created_at"`
}

// StylingAuditResponse is one entry of GET /api/diagrams/{id}/styling/audit.
type StylingAuditResponse struct {
	AuditID   string `json:"audit_id"`
	DiagramID string `json:"diagram_id"`
	Mode      string `json:"mode"`
	CreatedAt string `json:"created_at"`
}

func stylingAuditToResponse(row *ent.StylingAudit) StylingAuditResponse {
	return StylingAuditResponse{
		AuditID:   row.ID,
		DiagramID: row.DiagramID,
		Mode:      string(row.Mode),
		CreatedAt: row.CreatedAt.Format(timeLayout),
	}
}

// PlanResponse is the body of GET /api/plans/{id}.
type PlanResponse struct {
	PlanID     string                   `json:"plan_id"`
	SessionID  string                   `json:"session_id"`
	Intent     string                   `json:"intent"`
	Status     string                   `json:"status"`
	Steps      []map[string]interface{} `json:"steps"`
	Executions []PlanExecutionResponse  `json:"executions"`
}

// PlanExecutionResponse is one entry of PlanResponse.Executions.
type PlanExecutionResponse struct {
	StepIndex    int    `json:"step_index"`
	ToolID       string `json:"tool_id"`
	Status       string `json:"status"`
	DurationMs   int    `json:"duration_ms"`
	ErrorMessage string `json:"error_message,omitempty"`
}

const timeLayout = "2006-01-02T15:04:05.999999999Z07:00"

// ToolCatalogResponse is the body of POST /mcp/discover.
type ToolCatalogResponse struct {
	Tools []string `json:"tools"`
}

// ExecuteToolRequest is the body of POST /mcp/execute.
type ExecuteToolRequest struct {
	ToolID string                 `json:"tool_id"`
	Args   map[string]interface{} `json:"args"`
}
