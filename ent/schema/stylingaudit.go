package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// StylingAudit holds the schema definition for the StylingAudit entity:
// an immutable record of one LLM-driven styling operation, merging the
// teacher's separate LLMInteraction and MCPInteraction tables into one
// row (ent/schema/llminteraction.go + ent/schema/mcpinteraction.go).
//
// Exactly one of {renderer_input_before/after} or {svg_before/after} is
// populated per row. Postgres has no native XOR-column constraint; the
// CHECK constraint enforcing this (via num_nonnulls) is added in a
// migration (see pkg/database/migrations), mirroring how
// ent/schema/alertsession.go's soft-delete partial index is applied via
// an entsql annotation rather than expressed as a Go-level invariant
// alone. No Go-level check runs before the insert
// (services.StylingAuditService.Create passes the fields through as
// given), so the DB constraint is the only guard.
type StylingAudit struct {
	ent.Schema
}

// Fields of the StylingAudit.
func (StylingAudit) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			StorageKey("audit_id").
			Unique().
			Immutable(),
		field.String("plan_id").
			Optional().
			Nillable().
			Immutable(),
		field.String("diagram_id").
			Immutable(),
		field.Enum("mode").
			Values("pre_render", "post_svg").
			Immutable(),
		field.Text("user_prompt").
			Optional().
			Nillable().
			Immutable(),
		field.JSON("extracted_intent", map[string]interface{}{}).
			Optional().
			Immutable(),
		field.JSON("styling_plan", map[string]interface{}{}).
			Optional().
			Immutable(),
		field.JSON("execution_steps", []map[string]interface{}{}).
			Optional().
			Immutable(),
		field.Text("agent_reasoning").
			Optional().
			Nillable().
			Immutable(),
		field.JSON("llm_diagram", map[string]interface{}{}).
			Optional().
			Immutable(),
		field.JSON("sanitized_diagram", map[string]interface{}{}).
			Optional().
			Immutable(),
		field.JSON("validation_warnings", []string{}).
			Optional().
			Immutable(),
		field.JSON("blocked_tokens", []string{}).
			Optional().
			Immutable(),
		field.Text("renderer_input_before").
			Optional().
			Nillable().
			Immutable(),
		field.Text("renderer_input_after").
			Optional().
			Nillable().
			Immutable(),
		field.Text("svg_before").
			Optional().
			Nillable().
			Immutable(),
		field.Text("svg_after").
			Optional().
			Nillable().
			Immutable(),
		field.Int("duration_ms").
			Optional(),
		field.String("error_message").
			Optional().
			Nillable(),
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
	}
}

// Indexes of the StylingAudit.
func (StylingAudit) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("diagram_id", "created_at"),
		index.Fields("plan_id"),
	}
}

// Annotations for PostgreSQL-specific features.
// The before/after-pair XOR CHECK constraint is added via migration,
// not here — see pkg/database/migrations.
func (StylingAudit) Annotations() []schema.Annotation {
	return []schema.Annotation{}
}
