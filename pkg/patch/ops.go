package patch

import (
	"fmt"

	"github.com/diagramaut/diagramaut/pkg/apierr"
	"github.com/diagramaut/diagramaut/pkg/ir"
)

func forbidden(op Op, reason string) error {
	return apierr.New(apierr.PatchPathForbidden, fmt.Sprintf("%s: %s (allowed path: %s)", op, reason, allowedPaths[op]))
}

func applyEditText(d *ir.IR, a Args) error {
	n := d.NodeByID(a.NodeID)
	if n == nil {
		return forbidden(OpEditText, fmt.Sprintf("node %q not found", a.NodeID))
	}
	n.Label = a.Text
	return nil
}

func applyReposition(d *ir.IR, a Args) error {
	// Metadata only — no layout coordinates ever enter the IR (§4.3).
	if d.Metadata == nil {
		d.Metadata = ir.Metadata{}
	}
	hints, _ := d.Metadata["layout_hints"].(map[string]interface{})
	if hints == nil {
		hints = map[string]interface{}{}
	}
	hints[a.NodeID] = a.Annotation
	d.Metadata["layout_hints"] = hints
	return nil
}

func applyStyle(d *ir.IR, a Args) error {
	if a.NodeID != "" {
		if d.NodeIntent == nil {
			d.NodeIntent = ir.Intent{}
		}
		d.NodeIntent[a.NodeID] = a.Intent
		return nil
	}
	if a.EdgeID != "" {
		if d.EdgeIntent == nil {
			d.EdgeIntent = ir.Intent{}
		}
		d.EdgeIntent[a.EdgeID] = a.Intent
		return nil
	}
	if d.GlobalIntent == nil {
		d.GlobalIntent = ir.Intent{}
	}
	for k, v := range a.Intent {
		d.GlobalIntent[k] = v
	}
	return nil
}

func setHidden(d *ir.IR, op Op, nodeID string, hidden bool) error {
	n := d.NodeByID(nodeID)
	if n == nil {
		return forbidden(op, fmt.Sprintf("node %q not found", nodeID))
	}
	n.Hidden = hidden
	return nil
}

func applyHide(d *ir.IR, a Args) error { return setHidden(d, OpHide, a.NodeID, true) }
func applyShow(d *ir.IR, a Args) error { return setHidden(d, OpShow, a.NodeID, false) }

func applyAnnotate(d *ir.IR, a Args) error {
	if d.Metadata == nil {
		d.Metadata = ir.Metadata{}
	}
	annotations, _ := d.Metadata["annotations"].(map[string]interface{})
	if annotations == nil {
		annotations = map[string]interface{}{}
	}
	key := a.NodeID
	if key == "" {
		key = a.EdgeID
	}
	annotations[key] = a.Annotation
	d.Metadata["annotations"] = annotations
	return nil
}

func applyAddBlock(d *ir.IR, a Args) error {
	if a.Block == nil {
		return forbidden(OpAddBlock, "no block payload supplied")
	}
	if d.NodeByID(a.Block.NodeID) != nil {
		return forbidden(OpAddBlock, fmt.Sprintf("node %q already exists", a.Block.NodeID))
	}
	d.Nodes = append(d.Nodes, *a.Block)
	return nil
}

// applyRemoveBlock removes a node and every edge that touches it.
// Dependent edges are removed first (determinism requirement, §4.3).
func applyRemoveBlock(d *ir.IR, a Args) error {
	return deleteNodeAndEdges(d, a.NodeID)
}

func applyDeleteNode(d *ir.IR, a Args) error {
	return deleteNodeAndEdges(d, a.NodeID)
}

func deleteNodeAndEdges(d *ir.IR, nodeID string) error {
	if d.NodeByID(nodeID) == nil {
		return forbidden(OpDeleteNode, fmt.Sprintf("node %q not found", nodeID))
	}

	keptEdges := d.Edges[:0]
	for _, e := range d.Edges {
		if e.FromID != nodeID && e.ToID != nodeID {
			keptEdges = append(keptEdges, e)
		}
	}
	d.Edges = keptEdges

	keptNodes := d.Nodes[:0]
	for _, n := range d.Nodes {
		if n.NodeID != nodeID {
			keptNodes = append(keptNodes, n)
		}
	}
	d.Nodes = keptNodes
	return nil
}

func applyDeleteEdge(d *ir.IR, a Args) error {
	if d.EdgeByID(a.EdgeID) == nil {
		return forbidden(OpDeleteEdge, fmt.Sprintf("edge %q not found", a.EdgeID))
	}
	kept := d.Edges[:0]
	for _, e := range d.Edges {
		if e.EdgeID != a.EdgeID {
			kept = append(kept, e)
		}
	}
	d.Edges = kept
	return nil
}

func applyUpdateEdgeLabel(d *ir.IR, a Args) error {
	e := d.EdgeByID(a.EdgeID)
	if e == nil {
		return forbidden(OpUpdateEdgeLabel, fmt.Sprintf("edge %q not found", a.EdgeID))
	}
	e.Label = a.Text
	return nil
}

func applyMoveZone(d *ir.IR, a Args) error {
	n := d.NodeByID(a.NodeID)
	if n == nil {
		return forbidden(OpMoveZone, fmt.Sprintf("node %q not found", a.NodeID))
	}
	n.Zone = a.TargetZone
	return nil
}

func applyUpdateGlobalIntent(d *ir.IR, a Args) error {
	if d.GlobalIntent == nil {
		d.GlobalIntent = ir.Intent{}
	}
	for k, v := range a.Intent {
		d.GlobalIntent[k] = v
	}
	return nil
}

// relTypeDowngradeTable rewrites rel_type when converting away from a
// temporally-ordered diagram type (sequence) to a structural one. Every
// other conversion direction is rel_type-preserving.
var relTypeDowngradeTable = map[ir.RelType]ir.RelType{
	ir.RelSync:  ir.RelSync,
	ir.RelAsync: ir.RelDataFlow,
}

// applyConvertDiagramType is deterministic (§4.3): it rewrites rel_type
// via a documented table and drops temporal metadata when downgrading
// from sequence to a structural diagram type.
func applyConvertDiagramType(d *ir.IR, a Args) error {
	if a.DiagramType == "" {
		return forbidden(OpConvertDiagramType, "no target diagram_type supplied")
	}

	downgrading := d.DiagramType == ir.DiagramSequence && a.DiagramType != ir.DiagramSequence
	if downgrading {
		for i := range d.Edges {
			if rewritten, ok := relTypeDowngradeTable[d.Edges[i].RelType]; ok {
				d.Edges[i].RelType = rewritten
			}
		}
		if d.Metadata != nil {
			delete(d.Metadata, "sequence_order")
			delete(d.Metadata, "temporal_markers")
		}
	}

	d.DiagramType = a.DiagramType
	return nil
}
