package irvalidate

import (
	"testing"

	"github.com/diagramaut/diagramaut/pkg/ir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validIR() *ir.IR {
	return &ir.IR{
		DiagramID:   "d1",
		Version:     1,
		DiagramType: ir.DiagramComponent,
		Nodes: []ir.Node{
			{NodeID: "api", Label: "API", Type: ir.NodeContainer, Confidence: 0.9},
			{NodeID: "db", Label: "DB", Type: ir.NodeDataStore, Confidence: 0.9},
		},
		Edges: []ir.Edge{
			{EdgeID: "e1", FromID: "api", ToID: "db", RelType: ir.RelDataFlow, Confidence: 0.8},
		},
	}
}

func TestValidate_Passes(t *testing.T) {
	assert.Empty(t, Validate(validIR()))
}

func TestValidate_OrphanEdge(t *testing.T) {
	d := validIR()
	d.Edges[0].ToID = "missing"

	errs := Validate(d)
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0].Error(), "orphan to_id")
}

func TestValidate_DuplicateNodeID(t *testing.T) {
	d := validIR()
	d.Nodes = append(d.Nodes, d.Nodes[0])

	errs := Validate(d)
	found := false
	for _, e := range errs {
		if e.Error() == `duplicate node_id "api"` {
			found = true
		}
	}
	assert.True(t, found, "expected a duplicate node_id error, got %v", errs)
}

func TestValidate_BadNodeID(t *testing.T) {
	d := validIR()
	d.Nodes[0].NodeID = "API Gateway!"

	errs := Validate(d)
	require.NotEmpty(t, errs)
}

func TestValidate_NoPartialAcceptance(t *testing.T) {
	d := validIR()
	d.Edges[0].ToID = "missing"
	d.Nodes[0].Confidence = 2.0

	errs := Validate(d)
	assert.GreaterOrEqual(t, len(errs), 2, "every violation should be collected, not just the first")
}

func TestValidateChain_AcceptsAcyclicChain(t *testing.T) {
	v1 := 1
	v2 := &ir.IR{DiagramID: "d1", Version: 2, ParentVersion: &v1}
	v1IR := &ir.IR{DiagramID: "d1", Version: 1, ParentVersion: nil}

	lookup := func(diagramID string, version int) (*ir.IR, bool, error) {
		if version == 1 {
			return v1IR, true, nil
		}
		return nil, false, nil
	}

	require.NoError(t, ValidateChain(v2, lookup))
}

func TestValidateChain_RejectsNonMonotoneVersion(t *testing.T) {
	v3 := 3
	child := &ir.IR{DiagramID: "d1", Version: 2, ParentVersion: &v3}
	parent := &ir.IR{DiagramID: "d1", Version: 3}

	lookup := func(diagramID string, version int) (*ir.IR, bool, error) {
		return parent, true, nil
	}

	err := ValidateChain(child, lookup)
	assert.Error(t, err)
}

func TestNormalizeID(t *testing.T) {
	assert.Equal(t, "auth_service", NormalizeID("Auth Service"))
	assert.Equal(t, "api_gw_v2", NormalizeID("API-GW v2"))
}
