package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruncateIfNeeded(t *testing.T) {
	t.Run("passes through normal payload", func(t *testing.T) {
		payload, _ := json.Marshal(DiagramVersionCreatedPayload{
			Type:      EventTypeDiagramVersionCreated,
			DiagramID: "abc-123",
			Version:   1,
		})

		result, err := truncateIfNeeded(string(payload))
		require.NoError(t, err)
		assert.Contains(t, result, EventTypeDiagramVersionCreated)
		assert.Contains(t, result, "abc-123")
	})

	t.Run("truncates oversized payload", func(t *testing.T) {
		longDelta := make([]byte, 8000)
		for i := range longDelta {
			longDelta[i] = 'a'
		}
		payload, _ := json.Marshal(StreamChunkPayload{
			Type:    EventTypeStreamChunk,
			EventID: "evt-123",
			Delta:   string(longDelta),
		})

		result, err := truncateIfNeeded(string(payload))
		require.NoError(t, err)
		assert.Contains(t, result, "truncated")
		assert.Less(t, len(result), 8000)
	})

	t.Run("does not truncate small payload", func(t *testing.T) {
		payload, _ := json.Marshal(StreamChunkPayload{
			Type:  EventTypeStreamChunk,
			Delta: "hello",
		})

		result, err := truncateIfNeeded(string(payload))
		require.NoError(t, err)
		assert.NotContains(t, result, "truncated")
	})

	t.Run("truncated payload preserves key fields", func(t *testing.T) {
		longDelta := make([]byte, 8000)
		for i := range longDelta {
			longDelta[i] = 'x'
		}
		payload, _ := json.Marshal(StreamChunkPayload{
			Type:    EventTypeStreamChunk,
			EventID: "evt-456",
			Delta:   string(longDelta),
		})

		result, err := truncateIfNeeded(string(payload))
		require.NoError(t, err)

		assert.Contains(t, result, EventTypeStreamChunk)
		assert.Contains(t, result, "evt-456")
		assert.Contains(t, result, `"truncated":true`)
		assert.NotContains(t, result, "xxxx")
	})

	t.Run("boundary: payload just under limit is not truncated", func(t *testing.T) {
		base, _ := json.Marshal(StreamChunkPayload{Type: "t"})
		deltaSize := 7900 - len(base) - 20
		delta := make([]byte, deltaSize)
		for i := range delta {
			delta[i] = 'b'
		}
		payload, _ := json.Marshal(StreamChunkPayload{Type: "t", Delta: string(delta)})
		require.LessOrEqual(t, len(payload), 7900, "test payload should be under limit")

		result, err := truncateIfNeeded(string(payload))
		require.NoError(t, err)
		assert.NotContains(t, result, "truncated")
	})

	t.Run("empty JSON object", func(t *testing.T) {
		result, err := truncateIfNeeded("{}")
		require.NoError(t, err)
		assert.Equal(t, "{}", result)
	})
}

func TestInjectDBEventIDAndTruncate(t *testing.T) {
	t.Run("injects db_event_id into normal payload", func(t *testing.T) {
		payload, _ := json.Marshal(PlanStepStatusPayload{
			Type:      EventTypePlanStepStatus,
			SessionID: "sess-1",
			PlanID:    "plan-1",
			Status:    StepStatusCompleted,
		})

		result, err := injectDBEventIDAndTruncate(payload, 42)
		require.NoError(t, err)
		assert.Contains(t, result, `"db_event_id":42`)
		assert.Contains(t, result, "plan-1")
	})

	t.Run("truncated payload preserves db_event_id", func(t *testing.T) {
		longDelta := make([]byte, 8000)
		for i := range longDelta {
			longDelta[i] = 'x'
		}
		payload, _ := json.Marshal(StreamChunkPayload{
			Type:    EventTypeStreamChunk,
			EventID: "evt-456",
			Delta:   string(longDelta),
		})

		result, err := injectDBEventIDAndTruncate(payload, 42)
		require.NoError(t, err)
		assert.Contains(t, result, `"truncated":true`)
		assert.Contains(t, result, `"db_event_id":42`)
		assert.Contains(t, result, "evt-456")
	})

	t.Run("truncated payload without session_id keeps db_event_id", func(t *testing.T) {
		longDelta := make([]byte, 8000)
		for i := range longDelta {
			longDelta[i] = 'x'
		}
		payload, _ := json.Marshal(StreamChunkPayload{
			Type:    EventTypeStreamChunk,
			EventID: "evt-789",
			Delta:   string(longDelta),
		})

		result, err := injectDBEventIDAndTruncate(payload, 99)
		require.NoError(t, err)
		assert.Contains(t, result, `"truncated":true`)
		assert.Contains(t, result, `"db_event_id":99`)
	})
}

func TestNewEventPublisher(t *testing.T) {
	publisher := NewEventPublisher(nil)
	assert.NotNil(t, publisher)
	assert.Nil(t, publisher.db)
}

func TestPlanStepStatusPayload_JSON(t *testing.T) {
	payload := PlanStepStatusPayload{
		Type:      EventTypePlanStepStatus,
		PlanID:    "plan-456",
		SessionID: "sess-123",
		StepIndex: 1,
		ToolID:    "ir-store.put",
		Status:    StepStatusRunning,
		Timestamp: "2026-02-10T12:00:00Z",
	}

	data, err := json.Marshal(payload)
	require.NoError(t, err)

	var decoded PlanStepStatusPayload
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, EventTypePlanStepStatus, decoded.Type)
	assert.Equal(t, "sess-123", decoded.SessionID)
	assert.Equal(t, "plan-456", decoded.PlanID)
	assert.Equal(t, "ir-store.put", decoded.ToolID)
	assert.Equal(t, 1, decoded.StepIndex)
	assert.Equal(t, StepStatusRunning, decoded.Status)
	assert.Equal(t, "2026-02-10T12:00:00Z", decoded.Timestamp)
}

func TestPlanStepStatusPayload_EmptyError(t *testing.T) {
	payload := PlanStepStatusPayload{
		Type:      EventTypePlanStepStatus,
		SessionID: "sess-123",
		PlanID:    "plan-456",
		StepIndex: 1,
		Status:    StepStatusCompleted,
	}

	data, err := json.Marshal(payload)
	require.NoError(t, err)

	assert.NotContains(t, string(data), "error")
}

func TestIngestionProgressPayload_JSON(t *testing.T) {
	payload := IngestionProgressPayload{
		Type:      EventTypeIngestionProgress,
		JobID:     "job-1",
		RepoURL:   "https://example.com/repo.git",
		Status:    "processing",
		Timestamp: "2026-02-13T10:00:00Z",
	}

	data, err := json.Marshal(payload)
	require.NoError(t, err)

	var decoded IngestionProgressPayload
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, EventTypeIngestionProgress, decoded.Type)
	assert.Equal(t, "job-1", decoded.JobID)
	assert.Equal(t, "processing", decoded.Status)
}

func TestStylingAuditCreatedPayload_JSON(t *testing.T) {
	payload := StylingAuditCreatedPayload{
		Type:      EventTypeStylingAuditCreated,
		AuditID:   "audit-1",
		DiagramID: "diagram-1",
		PlanID:    "plan-1",
		Mode:      "pre_render",
		Timestamp: "2026-02-13T10:00:00Z",
	}

	data, err := json.Marshal(payload)
	require.NoError(t, err)

	var decoded StylingAuditCreatedPayload
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, EventTypeStylingAuditCreated, decoded.Type)
	assert.Equal(t, "audit-1", decoded.AuditID)
	assert.Equal(t, "diagram-1", decoded.DiagramID)
	assert.Equal(t, "pre_render", decoded.Mode)
}
