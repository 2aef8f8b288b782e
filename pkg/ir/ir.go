// Package ir defines the in-memory shape of the Diagram Intermediate
// Representation: the canonical, renderer-agnostic model every Planner
// decision, Styling Agent edit, and translator operates on.
package ir

// DiagramType is the kind of diagram an IR describes.
type DiagramType string

const (
	DiagramContext   DiagramType = "context"
	DiagramContainer DiagramType = "container"
	DiagramComponent DiagramType = "component"
	DiagramSequence  DiagramType = "sequence"
	DiagramFlow      DiagramType = "flow"
	DiagramStory     DiagramType = "story"
)

// NodeType is the role a node plays in the architecture being diagrammed.
type NodeType string

const (
	NodeSystem     NodeType = "system"
	NodeContainer  NodeType = "container"
	NodeComponent  NodeType = "component"
	NodeDataStore  NodeType = "data_store"
	NodeExternal   NodeType = "external"
	NodeActor      NodeType = "actor"
)

// RelType is the semantic relationship an edge expresses. Never a visual
// or layout concept — that lives in EdgeIntent.
type RelType string

const (
	RelSync                RelType = "sync"
	RelAsync               RelType = "async"
	RelDataFlow            RelType = "data_flow"
	RelReplication         RelType = "replication"
	RelSecretDistribution  RelType = "secret_distribution"
	RelMonitoring          RelType = "monitoring"
	RelAuth                RelType = "auth"
	RelControl             RelType = "control"
)

// Direction describes how an edge should be drawn between its endpoints.
type Direction string

const (
	DirectionForward Direction = "forward"
	DirectionReverse Direction = "reverse"
	DirectionBoth    Direction = "both"
	DirectionNone    Direction = "none"
)

// VersionStatus is the IR Store lifecycle state of one version (§4.13).
// Non-committed states never become visible to the chat surface.
type VersionStatus string

const (
	StatusProposed  VersionStatus = "proposed"
	StatusValidated VersionStatus = "validated"
	StatusCommitted VersionStatus = "committed"
)

// RenderingHints carries dialect-specific nudges that a translator MAY
// honor; it never substitutes for the translator's own layout rules and
// never contains coordinates or colors.
type RenderingHints struct {
	PlantUML string `json:"plantuml,omitempty"`
	Mermaid  string `json:"mermaid,omitempty"`
}

// Node is one architectural element of a diagram.
type Node struct {
	NodeID         string         `json:"node_id"`
	Label          string         `json:"label"`
	Role           string         `json:"role,omitempty"`
	Zone           string         `json:"zone,omitempty"`
	Type           NodeType       `json:"type"`
	ShapeHint      string         `json:"shape_hint,omitempty"`
	RenderingHints RenderingHints `json:"rendering_hints,omitempty"`
	Confidence     float64        `json:"confidence"`
	Hidden         bool           `json:"hidden,omitempty"`
}

// Edge is one relationship between two nodes.
type Edge struct {
	EdgeID     string    `json:"edge_id"`
	FromID     string    `json:"from_id"`
	ToID       string    `json:"to_id"`
	RelType    RelType   `json:"rel_type"`
	Direction  Direction `json:"direction,omitempty"`
	Label      string    `json:"label,omitempty"`
	Confidence float64   `json:"confidence"`
	Reason     string    `json:"reason,omitempty"`
}

// Zone is a visual grouping of nodes (e.g. a trust boundary or subsystem).
// ZoneOrder on the diagram determines the canonical translator ordering.
type Zone struct {
	ZoneID string `json:"zone_id"`
	Label  string `json:"label"`
}

// Intent carries mood/density/palette-level guidance — never concrete CSS
// or coordinates. Keyed loosely (map) because the vocabulary of intent
// keys is expected to grow without a schema migration.
type Intent map[string]interface{}

// Metadata is free-form bookkeeping: schema_version, validation warnings,
// timestamps recorded by callers rather than the IR itself.
type Metadata map[string]interface{}

// IR is one version of one diagram's content.
type IR struct {
	DiagramID     string        `json:"diagram_id"`
	Version       int           `json:"version"`
	ParentVersion *int          `json:"parent_version,omitempty"`
	DiagramType   DiagramType   `json:"diagram_type"`
	Nodes         []Node        `json:"nodes"`
	Edges         []Edge        `json:"edges"`
	Zones         []Zone        `json:"zones"`
	ZoneOrder     []string      `json:"zone_order,omitempty"`
	GlobalIntent  Intent        `json:"global_intent,omitempty"`
	NodeIntent    Intent        `json:"node_intent,omitempty"`
	EdgeIntent    Intent        `json:"edge_intent,omitempty"`
	Metadata      Metadata      `json:"metadata,omitempty"`
	Status        VersionStatus `json:"status,omitempty"`
}

// NodeByID returns the node with the given ID, or nil if absent.
func (d *IR) NodeByID(id string) *Node {
	for i := range d.Nodes {
		if d.Nodes[i].NodeID == id {
			return &d.Nodes[i]
		}
	}
	return nil
}

// EdgeByID returns the edge with the given ID, or nil if absent.
func (d *IR) EdgeByID(id string) *Edge {
	for i := range d.Edges {
		if d.Edges[i].EdgeID == id {
			return &d.Edges[i]
		}
	}
	return nil
}

// DeepCopy returns an independent copy of the IR via an encoding/json
// round-trip, matching the ent JSON-field copy idiom the teacher already
// relies on for its own JSON columns. Used by the Patch Engine so
// mutation never touches the caller's IR (Patch purity, §8).
func (d *IR) DeepCopy() (*IR, error) {
	return deepCopyJSON(d)
}
