package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPlanCreatedPayload(t *testing.T) {
	t.Run("creates plan created payload with all fields", func(t *testing.T) {
		payload := PlanCreatedPayload{
			Type:      EventTypePlanCreated,
			PlanID:    "plan-123",
			SessionID: "session-abc",
			Intent:    "add a load balancer in front of the web tier",
			StepCount: 3,
			Timestamp: time.Now().Format(time.RFC3339Nano),
		}

		assert.Equal(t, EventTypePlanCreated, payload.Type)
		assert.Equal(t, "plan-123", payload.PlanID)
		assert.Equal(t, "session-abc", payload.SessionID)
		assert.Equal(t, 3, payload.StepCount)
		assert.NotEmpty(t, payload.Timestamp)
	})
}

func TestPlanStepStatusPayload_Variants(t *testing.T) {
	t.Run("running step has no duration or error", func(t *testing.T) {
		payload := PlanStepStatusPayload{
			Type:      EventTypePlanStepStatus,
			PlanID:    "plan-1",
			SessionID: "session-1",
			StepIndex: 0,
			ToolID:    "diagram.ingest",
			Status:    StepStatusRunning,
			Timestamp: time.Now().Format(time.RFC3339Nano),
		}

		assert.Equal(t, StepStatusRunning, payload.Status)
		assert.Zero(t, payload.DurationMs)
		assert.Empty(t, payload.Error)
	})

	t.Run("completed step carries duration", func(t *testing.T) {
		payload := PlanStepStatusPayload{
			Type:       EventTypePlanStepStatus,
			PlanID:     "plan-1",
			SessionID:  "session-1",
			StepIndex:  0,
			ToolID:     "diagram.ingest",
			Status:     StepStatusCompleted,
			DurationMs: 842,
			Timestamp:  time.Now().Format(time.RFC3339Nano),
		}

		assert.Equal(t, StepStatusCompleted, payload.Status)
		assert.Equal(t, 842, payload.DurationMs)
	})

	t.Run("failed step carries error message", func(t *testing.T) {
		payload := PlanStepStatusPayload{
			Type:      EventTypePlanStepStatus,
			PlanID:    "plan-1",
			SessionID: "session-1",
			StepIndex: 1,
			ToolID:    "styling.apply",
			Status:    StepStatusFailed,
			Error:     "patch rejected: STALE_PARENT",
			Timestamp: time.Now().Format(time.RFC3339Nano),
		}

		assert.Equal(t, StepStatusFailed, payload.Status)
		assert.Contains(t, payload.Error, "STALE_PARENT")
	})

	t.Run("skipped step due to upstream failure", func(t *testing.T) {
		payload := PlanStepStatusPayload{
			Type:      EventTypePlanStepStatus,
			PlanID:    "plan-1",
			SessionID: "session-1",
			StepIndex: 2,
			ToolID:    "render.svg",
			Status:    StepStatusSkippedDueToUpstream,
			Timestamp: time.Now().Format(time.RFC3339Nano),
		}

		assert.Equal(t, StepStatusSkippedDueToUpstream, payload.Status)
	})
}

func TestStreamChunkPayload_Fields(t *testing.T) {
	t.Run("creates stream chunk payload", func(t *testing.T) {
		payload := StreamChunkPayload{
			Type:      EventTypeStreamChunk,
			EventID:   "step-123",
			Delta:     "Generating layout ",
			Timestamp: time.Now().Format(time.RFC3339Nano),
		}

		assert.Equal(t, EventTypeStreamChunk, payload.Type)
		assert.Equal(t, "step-123", payload.EventID)
		assert.Equal(t, "Generating layout ", payload.Delta)
	})

	t.Run("delta carries incremental content only", func(t *testing.T) {
		chunks := []string{"The ", "diagram ", "has ", "4 nodes."}

		var payloads []StreamChunkPayload
		for _, delta := range chunks {
			payloads = append(payloads, StreamChunkPayload{
				Type:      EventTypeStreamChunk,
				EventID:   "step-456",
				Delta:     delta,
				Timestamp: time.Now().Format(time.RFC3339Nano),
			})
		}

		assert.Len(t, payloads, 4)
		assert.Equal(t, "The ", payloads[0].Delta)
		assert.Equal(t, "4 nodes.", payloads[3].Delta)
	})
}

func TestDiagramVersionCreatedPayload_ParentVersion(t *testing.T) {
	t.Run("root version has no parent", func(t *testing.T) {
		payload := DiagramVersionCreatedPayload{
			Type:        EventTypeDiagramVersionCreated,
			DiagramID:   "diagram-1",
			Version:     1,
			DiagramType: "architecture",
			Status:      "proposed",
			Timestamp:   time.Now().Format(time.RFC3339Nano),
		}

		assert.Nil(t, payload.ParentVersion)
	})

	t.Run("subsequent version references parent", func(t *testing.T) {
		parent := 1
		payload := DiagramVersionCreatedPayload{
			Type:          EventTypeDiagramVersionCreated,
			DiagramID:     "diagram-1",
			Version:       2,
			ParentVersion: &parent,
			DiagramType:   "architecture",
			Status:        "committed",
			Timestamp:     time.Now().Format(time.RFC3339Nano),
		}

		require := assert.New(t)
		require.NotNil(payload.ParentVersion)
		require.Equal(1, *payload.ParentVersion)
		require.Equal(2, payload.Version)
	})
}

func TestDiagramRenderedPayload_Failure(t *testing.T) {
	payload := DiagramRenderedPayload{
		Type:             EventTypeDiagramRendered,
		IRVersionID:      "ir-1",
		RendererID:       "drawio",
		NeutralValidated: false,
		ErrorMessage:     "unsupported zone nesting depth",
		Timestamp:        time.Now().Format(time.RFC3339Nano),
	}

	assert.False(t, payload.NeutralValidated)
	assert.Contains(t, payload.ErrorMessage, "zone nesting")
}

func TestSessionStatusPayload_Transitions(t *testing.T) {
	statuses := []string{"idle", "processing", "cancelled"}

	for _, status := range statuses {
		payload := SessionStatusPayload{
			Type:      EventTypeSessionStatus,
			SessionID: "session-1",
			Status:    status,
			Timestamp: time.Now().Format(time.RFC3339Nano),
		}

		assert.Equal(t, status, payload.Status)
	}
}

func TestChatPayloads(t *testing.T) {
	t.Run("chat created carries only session_id", func(t *testing.T) {
		payload := ChatCreatedPayload{
			Type:      EventTypeChatCreated,
			SessionID: "session-new",
			Timestamp: time.Now().Format(time.RFC3339Nano),
		}

		assert.Equal(t, EventTypeChatCreated, payload.Type)
		assert.Equal(t, "session-new", payload.SessionID)
	})

	t.Run("chat user message carries message content", func(t *testing.T) {
		payload := ChatUserMessagePayload{
			Type:      EventTypeChatUserMessage,
			SessionID: "session-new",
			MessageID: "msg-1",
			Content:   "add a cache layer between the API and the database",
			Timestamp: time.Now().Format(time.RFC3339Nano),
		}

		assert.Equal(t, "msg-1", payload.MessageID)
		assert.Contains(t, payload.Content, "cache layer")
	})
}

func TestIngestionProgressPayload_Statuses(t *testing.T) {
	statuses := []string{"queued", "processing", "complete", "failed"}

	for _, status := range statuses {
		payload := IngestionProgressPayload{
			Type:      EventTypeIngestionProgress,
			JobID:     "job-1",
			RepoURL:   "https://example.com/infra.git",
			Status:    status,
			Timestamp: time.Now().Format(time.RFC3339Nano),
		}

		assert.Equal(t, status, payload.Status)
	}
}
