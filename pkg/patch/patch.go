// Package patch implements the Patch Engine (§4.3): deterministic
// application of a closed set of IR mutations to a deep copy of the
// parent IR, never the stored version itself.
//
// Grounded on the teacher's pkg/config/merge.go (a deterministic,
// path-scoped merge of layered config — the same "only touch what your
// operation is declared to touch" discipline) and the enum-dispatch
// table style of pkg/agent/iteration.go.
package patch

import (
	"fmt"

	"github.com/diagramaut/diagramaut/pkg/apierr"
	"github.com/diagramaut/diagramaut/pkg/ir"
	"github.com/diagramaut/diagramaut/pkg/irvalidate"
)

// Op is one of the closed set of patch operations (§4.3).
type Op string

const (
	OpEditText           Op = "edit_text"
	OpReposition         Op = "reposition"
	OpStyle              Op = "style"
	OpHide               Op = "hide"
	OpShow               Op = "show"
	OpAnnotate           Op = "annotate"
	OpAddBlock           Op = "add_block"
	OpRemoveBlock        Op = "remove_block"
	OpUpdateNodeLabel    Op = "update_node_label"
	OpUpdateEdgeLabel    Op = "update_edge_label"
	OpDeleteNode         Op = "delete_node"
	OpDeleteEdge         Op = "delete_edge"
	OpMoveZone           Op = "move_zone"
	OpUpdateGlobalIntent Op = "update_global_intent"
	OpConvertDiagramType Op = "convert_diagram_type"
)

// Args is the argument bag for one patch operation. Only the fields
// relevant to Op are read; the rest are ignored.
type Args struct {
	NodeID      string                 `json:"node_id,omitempty"`
	EdgeID      string                 `json:"edge_id,omitempty"`
	ZoneID      string                 `json:"zone_id,omitempty"`
	BlockID     string                 `json:"block_id,omitempty"`
	Text        string                 `json:"text,omitempty"`
	Annotation  string                 `json:"annotation,omitempty"`
	TargetZone  string                 `json:"target_zone,omitempty"`
	DiagramType ir.DiagramType         `json:"diagram_type,omitempty"`
	Intent      map[string]interface{} `json:"intent,omitempty"`
	Block       *ir.Node               `json:"block,omitempty"`
}

// Operation is one entry in a patch list.
type Operation struct {
	Op   Op   `json:"op"`
	Args Args `json:"args"`
}

// Summary describes what a successful patch changed, for the audit trail.
type Summary struct {
	OpsApplied     int      `json:"ops_applied"`
	NodesRemoved   []string `json:"nodes_removed,omitempty"`
	EdgesRemoved   []string `json:"edges_removed,omitempty"`
	TypeConverted  bool     `json:"type_converted,omitempty"`
}

// allowedPaths documents, per operation, the only IR path it may write.
// This is the allow-list §4.3 requires: any op not in this table, or any
// handler that tries to touch more than its documented path, is a bug —
// the dispatch table below is the single place new ops get added.
var allowedPaths = map[Op]string{
	OpEditText:           "nodes[].label",
	OpReposition:         "metadata.layout_hints",
	OpStyle:              "nodeIntent | edgeIntent | globalIntent",
	OpHide:               "nodes[].hidden",
	OpShow:               "nodes[].hidden",
	OpAnnotate:           "metadata.annotations",
	OpAddBlock:           "nodes[] (append)",
	OpRemoveBlock:        "nodes[], edges[] (remove)",
	OpUpdateNodeLabel:    "nodes[].label",
	OpUpdateEdgeLabel:    "edges[].label",
	OpDeleteNode:         "nodes[], edges[] (remove)",
	OpDeleteEdge:         "edges[] (remove)",
	OpMoveZone:           "nodes[].zone",
	OpUpdateGlobalIntent: "globalIntent",
	OpConvertDiagramType: "diagram_type, edges[].rel_type, metadata",
}

type handler func(*ir.IR, Args) error

var dispatch = map[Op]handler{
	OpEditText:           applyEditText,
	OpReposition:         applyReposition,
	OpStyle:              applyStyle,
	OpHide:               applyHide,
	OpShow:               applyShow,
	OpAnnotate:           applyAnnotate,
	OpAddBlock:           applyAddBlock,
	OpRemoveBlock:        applyRemoveBlock,
	OpUpdateNodeLabel:    applyEditText,
	OpUpdateEdgeLabel:    applyUpdateEdgeLabel,
	OpDeleteNode:         applyDeleteNode,
	OpDeleteEdge:         applyDeleteEdge,
	OpMoveZone:           applyMoveZone,
	OpUpdateGlobalIntent: applyUpdateGlobalIntent,
	OpConvertDiagramType: applyConvertDiagramType,
}

// Apply runs a list of patch operations in order against a deep copy of
// parent, re-validates the result, and returns the new IR plus a summary.
// Purely functional: parent is never mutated (Patch purity, §8).
func Apply(parent *ir.IR, ops []Operation) (*ir.IR, *Summary, error) {
	working, err := parent.DeepCopy()
	if err != nil {
		return nil, nil, fmt.Errorf("copying parent IR: %w", err)
	}

	summary := &Summary{}
	for _, op := range ops {
		h, ok := dispatch[op.Op]
		if !ok {
			return nil, nil, apierr.New(apierr.PatchPathForbidden,
				fmt.Sprintf("unknown patch op %q", op.Op))
		}
		before := len(working.Nodes)
		beforeEdges := len(working.Edges)
		if err := h(working, op.Args); err != nil {
			return nil, nil, err
		}
		summary.OpsApplied++
		if op.Op == OpDeleteNode || op.Op == OpRemoveBlock {
			if len(working.Nodes) < before {
				summary.NodesRemoved = append(summary.NodesRemoved, op.Args.NodeID)
			}
		}
		if op.Op == OpDeleteEdge && len(working.Edges) < beforeEdges {
			summary.EdgesRemoved = append(summary.EdgesRemoved, op.Args.EdgeID)
		}
		if op.Op == OpConvertDiagramType {
			summary.TypeConverted = true
		}
	}

	parentVersion := parent.Version
	working.ParentVersion = &parentVersion
	working.Version = parent.Version + 1
	working.Status = ir.StatusProposed

	if errs := irvalidate.Validate(working); len(errs) > 0 {
		reasons := make([]string, len(errs))
		for i, e := range errs {
			reasons[i] = e.Error()
		}
		return nil, nil, apierr.WithReasons(apierr.ValidationFailed, "patch result failed IR validation", reasons)
	}

	return working, summary, nil
}
