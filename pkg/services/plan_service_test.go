package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diagramaut/diagramaut/ent/message"
	"github.com/diagramaut/diagramaut/pkg/planner"
)

func TestCreatePlanRecord_RequiresSessionID(t *testing.T) {
	svc := NewPlanService(nil)
	_, err := svc.CreatePlanRecord(context.Background(), "", &planner.Plan{Steps: []planner.Step{{ToolID: "x"}}}, nil)
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
}

func TestCreatePlanRecord_RequiresSteps(t *testing.T) {
	svc := NewPlanService(nil)
	_, err := svc.CreatePlanRecord(context.Background(), "sess-1", &planner.Plan{Steps: nil}, nil)
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
}

func TestCreatePlanRecord_RequiresNonNilPlan(t *testing.T) {
	svc := NewPlanService(nil)
	_, err := svc.CreatePlanRecord(context.Background(), "sess-1", nil, nil)
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
}

func TestStepsToJSON_RoundTrips(t *testing.T) {
	steps := []planner.Step{
		{ToolID: "ir-store.put", Arguments: map[string]any{"diagram_id": "d1"}, SchemaVersion: "1"},
	}
	out, err := stepsToJSON(steps)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "ir-store.put", out[0]["tool_id"])
	assert.Equal(t, "1", out[0]["schema_version"])
}

func TestAppendMessage_RequiresSessionID(t *testing.T) {
	svc := NewMessageService(nil)
	_, err := svc.AppendMessage(context.Background(), "", message.RoleUser, "hi", "", nil)
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
}

func TestAppendMessage_RequiresValidRole(t *testing.T) {
	svc := NewMessageService(nil)
	_, err := svc.AppendMessage(context.Background(), "sess-1", message.Role("bogus"), "hi", "", nil)
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
}
