package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// PlanRecord holds the schema definition for the PlanRecord entity:
// an append-only record of one Planner decision, persisted before any
// of its steps execute (I-TESTABLE: "p is persisted before the first
// mcp.execute for that plan is invoked").
//
// Renamed from, and structurally descended from, ent/schema/alertsession.go.
type PlanRecord struct {
	ent.Schema
}

// Fields of the PlanRecord.
func (PlanRecord) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			StorageKey("plan_id").
			Unique().
			Immutable(),
		field.String("session_id").
			Immutable(),
		field.Text("intent").
			Immutable(),
		field.JSON("plan_json", []map[string]interface{}{}).
			Immutable().
			Comment("ordered list of plan steps as emitted by the Planner"),
		field.JSON("plan_metadata", map[string]interface{}{}).
			Optional().
			Immutable().
			Comment("user_message, timestamps"),
		field.Bool("executed").
			Default(false),
		field.Enum("status").
			Values("created", "executing", "executed", "partially_executed", "failed").
			Default("created"),
		field.String("pod_id").
			Optional().
			Nillable().
			Comment("pod that claimed this plan; used by orphan detection"),
		field.Time("last_interaction_at").
			Optional().
			Nillable().
			Comment("heartbeat timestamp, updated while a worker is executing steps"),
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
		field.Time("completed_at").
			Optional().
			Nillable(),
	}
}

// Edges of the PlanRecord.
func (PlanRecord) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("session", Session.Type).
			Ref("plan_records").
			Field("session_id").
			Unique().
			Required().
			Immutable(),
		edge.To("executions", PlanExecution.Type).
			Annotations(entsql.OnDelete(entsql.Cascade)),
	}
}

// Indexes of the PlanRecord.
func (PlanRecord) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("session_id", "created_at"),
		index.Fields("status"),
	}
}
