package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// PlanExecution holds the schema definition for the PlanExecution entity
// (spec's "Execution Record"): one row per executed plan step, written
// progressively during execution rather than batched at the end —
// grounded on ent/schema/agentexecution.go.
type PlanExecution struct {
	ent.Schema
}

// Fields of the PlanExecution.
func (PlanExecution) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			StorageKey("execution_id").
			Unique().
			Immutable(),
		field.String("plan_id").
			Immutable(),
		field.Int("step_index").
			Immutable(),
		field.String("tool_id").
			Immutable(),
		field.JSON("arguments", map[string]interface{}{}).
			Immutable(),
		field.JSON("output", map[string]interface{}{}).
			Optional(),
		field.String("audit_id").
			Optional().
			Nillable(),
		field.Int("duration_ms").
			Optional(),
		field.Enum("status").
			Values("pending", "running", "completed", "failed", "skipped_due_to_upstream").
			Default("pending"),
		field.String("error_message").
			Optional().
			Nillable(),
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
		field.Time("completed_at").
			Optional().
			Nillable(),
	}
}

// Edges of the PlanExecution.
func (PlanExecution) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("plan", PlanRecord.Type).
			Ref("executions").
			Field("plan_id").
			Unique().
			Required().
			Immutable(),
	}
}

// Indexes of the PlanExecution.
func (PlanExecution) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("plan_id", "step_index").
			Unique(),
		index.Fields("status"),
	}
}
