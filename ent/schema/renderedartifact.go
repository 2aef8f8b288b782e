package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// RenderedArtifact holds the schema definition for the RenderedArtifact
// entity: one rendered SVG (or a render failure) for a given IR version
// and renderer choice. Committed alongside its DiagramIRVersion inside
// the same ent.Tx that IR Store's put() opens.
type RenderedArtifact struct {
	ent.Schema
}

// Fields of the RenderedArtifact.
func (RenderedArtifact) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			StorageKey("artifact_id").
			Unique().
			Immutable(),
		field.String("ir_version_id").
			Immutable(),
		field.String("renderer_id").
			Immutable().
			Comment("mermaid | structurizr | plantuml"),
		field.Text("dialect_text").
			Immutable().
			Comment("translator output fed to the renderer on stdin"),
		field.Text("svg").
			Optional().
			Nillable(),
		field.String("command").
			Immutable().
			Comment("recorded subprocess invocation, per §4.6"),
		field.Text("stderr").
			Optional().
			Nillable(),
		field.Bool("neutral_validated").
			Default(false),
		field.String("error_message").
			Optional().
			Nillable(),
		field.Int("duration_ms").
			Optional(),
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
	}
}

// Edges of the RenderedArtifact.
func (RenderedArtifact) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("ir_version", DiagramIRVersion.Type).
			Ref("rendered_artifacts").
			Field("ir_version_id").
			Unique().
			Required().
			Immutable(),
	}
}

// Indexes of the RenderedArtifact.
func (RenderedArtifact) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("ir_version_id", "renderer_id"),
	}
}
