package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// TimelineEvent holds the schema definition for the TimelineEvent entity:
// the persisted half of the background ingestion/plan progress event
// stream (pkg/events). Published over WebSocket on write and also kept
// so a client reconnecting mid-job can catch up via history rather than
// missing events, mirroring the teacher's TimelineEvent/ConnectionManager
// catchup design in pkg/events/manager.go.
type TimelineEvent struct {
	ent.Schema
}

// Fields of the TimelineEvent.
func (TimelineEvent) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			StorageKey("event_id").
			Unique().
			Immutable(),
		field.String("session_id").
			Optional().
			Nillable().
			Immutable(),
		field.String("job_id").
			Optional().
			Nillable().
			Immutable().
			Comment("set for ingestion-job progress events instead of session_id"),
		field.String("event_type").
			Immutable().
			Comment("e.g. plan.step_started, ingest.progress, diagram.committed"),
		field.Enum("status").
			Values("streaming", "completed", "failed").
			Default("completed"),
		field.Text("content").
			Optional(),
		field.JSON("metadata", map[string]interface{}{}).
			Optional(),
		field.Int("sequence_number").
			Comment("monotonic within the owning session_id or job_id channel"),
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
	}
}

// Indexes of the TimelineEvent.
func (TimelineEvent) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("session_id", "sequence_number"),
		index.Fields("job_id", "sequence_number"),
	}
}
