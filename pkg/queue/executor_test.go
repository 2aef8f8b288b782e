package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeSteps_Valid(t *testing.T) {
	planJSON := []map[string]interface{}{
		{"tool_id": "layout.apply", "arguments": map[string]interface{}{"algorithm": "dagre"}, "schema_version": "1"},
		{"tool_id": "render.svg", "schema_version": "1", "depends_on": []interface{}{"layout.apply"}},
	}

	steps, err := decodeSteps(planJSON)
	require.NoError(t, err)
	require.Len(t, steps, 2)
	assert.Equal(t, "layout.apply", steps[0].ToolID)
	assert.Equal(t, "dagre", steps[0].Arguments["algorithm"])
	assert.Equal(t, []string{"layout.apply"}, steps[1].DependsOn)
}

func TestDecodeSteps_Empty(t *testing.T) {
	steps, err := decodeSteps(nil)
	require.NoError(t, err)
	assert.Empty(t, steps)
}

func TestUpstreamFailed_NoDependencies(t *testing.T) {
	blockedBy, skip := upstreamFailed(nil, map[string]bool{})
	assert.False(t, skip)
	assert.Empty(t, blockedBy)
}

func TestUpstreamFailed_DependencySucceeded(t *testing.T) {
	succeeded := map[string]bool{"layout.apply": true}
	blockedBy, skip := upstreamFailed([]string{"layout.apply"}, succeeded)
	assert.False(t, skip)
	assert.Empty(t, blockedBy)
}

func TestUpstreamFailed_DependencyMissing(t *testing.T) {
	succeeded := map[string]bool{}
	blockedBy, skip := upstreamFailed([]string{"layout.apply"}, succeeded)
	assert.True(t, skip)
	assert.Equal(t, "layout.apply", blockedBy)
}

func TestUpstreamFailed_PartialDependencies(t *testing.T) {
	succeeded := map[string]bool{"layout.apply": true}
	blockedBy, skip := upstreamFailed([]string{"layout.apply", "render.svg"}, succeeded)
	assert.True(t, skip)
	assert.Equal(t, "render.svg", blockedBy)
}
