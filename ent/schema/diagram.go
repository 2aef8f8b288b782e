package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
)

// Diagram holds the schema definition for the Diagram entity: the stable
// identity a diagram's version chain hangs off of. IR content itself
// lives in DiagramIRVersion rows keyed by diagram_id; this row only
// tracks identity and a denormalized latest-version pointer so
// `latest(diagram_id)` doesn't require a MAX(version) scan.
type Diagram struct {
	ent.Schema
}

// Fields of the Diagram.
func (Diagram) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			StorageKey("diagram_id").
			Unique().
			Immutable(),
		field.Int("latest_version").
			Default(0).
			Comment("denormalized cache of MAX(version) across this diagram's ir versions"),
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
	}
}

// Edges of the Diagram.
func (Diagram) Edges() []ent.Edge {
	return []ent.Edge{
		edge.To("ir_versions", DiagramIRVersion.Type).
			Annotations(entsql.OnDelete(entsql.Cascade)),
	}
}
