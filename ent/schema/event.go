package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Event holds the schema definition for the Event entity: a generic,
// channel-scoped transport row backing the WebSocket catchup mechanism
// in pkg/events. Distinct from TimelineEvent — TimelineEvent is the
// domain-shaped progress record a client renders; Event is the opaque
// envelope pkg/events persists purely so a reconnecting client can
// replay whatever was broadcast on its channel since its last seen ID.
//
// Grounded on the teacher's (implicit, not present in the retrieved
// pack) ent.Event backing pkg/services/event_service.go and
// pkg/events/catchup_adapter.go — auto-incrementing int ID so catchup
// can compare "since_id" cheaply, unlike every other entity in this
// schema which uses a string business key.
type Event struct {
	ent.Schema
}

// Fields of the Event.
func (Event) Fields() []ent.Field {
	return []ent.Field{
		field.String("session_id").
			Optional().
			Nillable().
			Immutable().
			Comment("nil for channel-global events such as ingestion progress"),
		field.String("channel").
			Immutable(),
		field.JSON("payload", map[string]interface{}{}).
			Immutable(),
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
	}
}

// Indexes of the Event.
func (Event) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("channel", "id"),
		index.Fields("session_id"),
	}
}
