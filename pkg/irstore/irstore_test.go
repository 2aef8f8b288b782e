package irstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diagramaut/diagramaut/pkg/ir"
)

func TestToJSONSlice_Nodes(t *testing.T) {
	nodes := []ir.Node{
		{NodeID: "n1", Label: "API", Type: ir.NodeContainer, Confidence: 0.9},
		{NodeID: "n2", Label: "DB", Type: ir.NodeDataStore, Confidence: 0.8},
	}

	out, err := toJSONSlice(nodes)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "n1", out[0]["node_id"])
	assert.Equal(t, "API", out[0]["label"])
	assert.Equal(t, "n2", out[1]["node_id"])
}

func TestToJSONSlice_Empty(t *testing.T) {
	out, err := toJSONSlice([]ir.Edge{})
	require.NoError(t, err)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestToJSONSlice_Nil(t *testing.T) {
	var zones []ir.Zone
	out, err := toJSONSlice(zones)
	require.NoError(t, err)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestToJSONSlice_Unmarshalable(t *testing.T) {
	_, err := toJSONSlice(make(chan int))
	assert.Error(t, err)
}

// staleParent reproduces the comparison Put performs between a candidate's
// declared parent_version and a diagram's current latest_version, so the
// STALE_PARENT decision can be exercised without a live ent.Client.
func staleParent(expectedParent *int, currentLatest int) bool {
	return (expectedParent == nil && currentLatest != 0) || (expectedParent != nil && *expectedParent != currentLatest)
}

func TestStaleParent_NewDiagramNoParent(t *testing.T) {
	assert.False(t, staleParent(nil, 0))
}

func TestStaleParent_ExistingDiagramNoParentDeclared(t *testing.T) {
	assert.True(t, staleParent(nil, 3))
}

func TestStaleParent_ParentMatchesLatest(t *testing.T) {
	parent := 3
	assert.False(t, staleParent(&parent, 3))
}

func TestStaleParent_ParentBehindLatest(t *testing.T) {
	parent := 2
	assert.True(t, staleParent(&parent, 3))
}
