// Package irvalidate enforces the IR's structural and referential
// invariants (§4.2). Grounded on the teacher's pkg/config/validator.go: a
// pure, multi-error-collecting validator that returns every violation
// found rather than failing fast on the first one, so a caller can
// surface a complete error list to the LLM or the user in one pass.
package irvalidate

import (
	"fmt"
	"regexp"

	"github.com/diagramaut/diagramaut/pkg/ir"
)

var idPattern = regexp.MustCompile(`^[a-z0-9_]+$`)

var validNodeTypes = map[ir.NodeType]bool{
	ir.NodeSystem: true, ir.NodeContainer: true, ir.NodeComponent: true,
	ir.NodeDataStore: true, ir.NodeExternal: true, ir.NodeActor: true,
}

var validRelTypes = map[ir.RelType]bool{
	ir.RelSync: true, ir.RelAsync: true, ir.RelDataFlow: true,
	ir.RelReplication: true, ir.RelSecretDistribution: true,
	ir.RelMonitoring: true, ir.RelAuth: true, ir.RelControl: true,
}

var validDirections = map[ir.Direction]bool{
	"": true, ir.DirectionForward: true, ir.DirectionReverse: true,
	ir.DirectionBoth: true, ir.DirectionNone: true,
}

var validDiagramTypes = map[ir.DiagramType]bool{
	ir.DiagramContext: true, ir.DiagramContainer: true, ir.DiagramComponent: true,
	ir.DiagramSequence: true, ir.DiagramFlow: true, ir.DiagramStory: true,
}

// Validate checks a single IR in isolation: unique node IDs, resolvable
// edge endpoints, allowed enum values, and ID normalization. It does not
// walk parent_version chains — see ValidateChain for that, since acyclic
// parent chains are a property of the version graph, not of one IR.
//
// Returns an empty slice on success, per §4.2 ("non-empty list of error
// reasons; no partial acceptance").
func Validate(d *ir.IR) []error {
	var errs []error

	if d.DiagramID == "" {
		errs = append(errs, fmt.Errorf("diagram_id is required"))
	}
	if d.Version < 1 {
		errs = append(errs, fmt.Errorf("version must be >= 1, got %d", d.Version))
	}
	if !validDiagramTypes[d.DiagramType] {
		errs = append(errs, fmt.Errorf("diagram_type %q is not a recognized value", d.DiagramType))
	}

	seenNodes := make(map[string]bool, len(d.Nodes))
	for _, n := range d.Nodes {
		if !idPattern.MatchString(n.NodeID) {
			errs = append(errs, fmt.Errorf("node_id %q is not normalized (expected [a-z0-9_]+)", n.NodeID))
		}
		if seenNodes[n.NodeID] {
			errs = append(errs, fmt.Errorf("duplicate node_id %q", n.NodeID))
		}
		seenNodes[n.NodeID] = true
		if !validNodeTypes[n.Type] {
			errs = append(errs, fmt.Errorf("node %q has unrecognized type %q", n.NodeID, n.Type))
		}
		if n.Confidence < 0 || n.Confidence > 1 {
			errs = append(errs, fmt.Errorf("node %q confidence %v out of range [0,1]", n.NodeID, n.Confidence))
		}
	}

	seenEdges := make(map[string]bool, len(d.Edges))
	for _, e := range d.Edges {
		if !idPattern.MatchString(e.EdgeID) {
			errs = append(errs, fmt.Errorf("edge_id %q is not normalized (expected [a-z0-9_]+)", e.EdgeID))
		}
		if seenEdges[e.EdgeID] {
			errs = append(errs, fmt.Errorf("duplicate edge_id %q", e.EdgeID))
		}
		seenEdges[e.EdgeID] = true
		if !seenNodes[e.FromID] {
			errs = append(errs, fmt.Errorf("edge %q has orphan from_id %q", e.EdgeID, e.FromID))
		}
		if !seenNodes[e.ToID] {
			errs = append(errs, fmt.Errorf("edge %q has orphan to_id %q", e.EdgeID, e.ToID))
		}
		if !validRelTypes[e.RelType] {
			errs = append(errs, fmt.Errorf("edge %q has unrecognized rel_type %q", e.EdgeID, e.RelType))
		}
		if !validDirections[e.Direction] {
			errs = append(errs, fmt.Errorf("edge %q has unrecognized direction %q", e.EdgeID, e.Direction))
		}
		if e.Confidence < 0 || e.Confidence > 1 {
			errs = append(errs, fmt.Errorf("edge %q confidence %v out of range [0,1]", e.EdgeID, e.Confidence))
		}
	}

	for _, z := range d.Zones {
		if !idPattern.MatchString(z.ZoneID) {
			errs = append(errs, fmt.Errorf("zone_id %q is not normalized (expected [a-z0-9_]+)", z.ZoneID))
		}
	}

	return errs
}

// VersionLookup resolves the parent IR for a given diagram/parent_version
// pair. Supplied by the IR Store so ValidateChain can detect cycles
// without irvalidate depending on the store package.
type VersionLookup func(diagramID string, version int) (*ir.IR, bool, error)

// ValidateChain walks the parent_version chain starting at d and fails if
// it ever revisits a version already seen — the acyclic invariant that
// the version graph (not any single IR) must uphold.
func ValidateChain(d *ir.IR, lookup VersionLookup) error {
	seen := map[int]bool{d.Version: true}
	current := d
	for current.ParentVersion != nil {
		parentVersion := *current.ParentVersion
		if seen[parentVersion] {
			return fmt.Errorf("cycle detected in parent_version chain at version %d", parentVersion)
		}
		parent, ok, err := lookup(d.DiagramID, parentVersion)
		if err != nil {
			return fmt.Errorf("resolving parent_version %d: %w", parentVersion, err)
		}
		if !ok {
			return fmt.Errorf("parent_version %d does not exist for diagram %q", parentVersion, d.DiagramID)
		}
		if parent.Version >= current.Version {
			return fmt.Errorf("version must strictly increase along parent chain: %d is not > %d", current.Version, parent.Version)
		}
		seen[parentVersion] = true
		current = parent
	}
	return nil
}

// NormalizeID lowercases and replaces disallowed characters, matching the
// [a-z0-9_]+ ID format §3 mandates. It does not guarantee uniqueness —
// callers must still de-duplicate.
func NormalizeID(raw string) string {
	return normalizeIDPattern.ReplaceAllString(toLowerASCII(raw), "_")
}

var normalizeIDPattern = regexp.MustCompile(`[^a-z0-9_]+`)

func toLowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
