package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// DiagramIRVersion holds the schema definition for one immutable version
// of a diagram's Intermediate Representation.
//
// Grounded on ent/schema/alertsession.go's append-only, never-soft-deleted
// style and ent/schema/llminteraction.go's raw-JSON payload columns.
type DiagramIRVersion struct {
	ent.Schema
}

// Fields of the DiagramIRVersion.
func (DiagramIRVersion) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			StorageKey("ir_version_id").
			Unique().
			Immutable(),
		field.String("diagram_id").
			Immutable(),
		field.Int("version").
			Immutable().
			Comment("monotonic >=1 within a diagram_id"),
		field.Int("parent_version").
			Optional().
			Nillable().
			Immutable().
			Comment("null on the initial version of a diagram"),
		field.Enum("diagram_type").
			Values("context", "container", "component", "sequence", "flow", "story").
			Immutable(),
		field.JSON("nodes", []map[string]interface{}{}).
			Immutable(),
		field.JSON("edges", []map[string]interface{}{}).
			Immutable(),
		field.JSON("zones", []map[string]interface{}{}).
			Immutable(),
		field.JSON("global_intent", map[string]interface{}{}).
			Optional().
			Immutable(),
		field.JSON("node_intent", map[string]interface{}{}).
			Optional().
			Immutable().
			Comment("defaults by node role"),
		field.JSON("edge_intent", map[string]interface{}{}).
			Optional().
			Immutable().
			Comment("defaults by edge rel_type"),
		field.JSON("metadata", map[string]interface{}{}).
			Optional().
			Comment("schema_version, validation warnings; mutable after write to record post-hoc validation notes"),
		field.Enum("status").
			Values("proposed", "validated", "committed").
			Default("proposed"),
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
	}
}

// Edges of the DiagramIRVersion.
func (DiagramIRVersion) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("diagram", Diagram.Type).
			Ref("ir_versions").
			Field("diagram_id").
			Unique().
			Required().
			Immutable(),
		edge.To("rendered_artifacts", RenderedArtifact.Type).
			Annotations(entsql.OnDelete(entsql.Cascade)),
	}
}

// Indexes of the DiagramIRVersion.
func (DiagramIRVersion) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("diagram_id", "version").
			Unique(),
		index.Fields("diagram_id", "parent_version"),
		index.Fields("status"),
	}
}
