package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Message holds the schema definition for the Message entity: one entry
// in a session's ordered conversation log.
type Message struct {
	ent.Schema
}

// Fields of the Message.
func (Message) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			StorageKey("message_id").
			Unique().
			Immutable(),
		field.String("session_id").
			Immutable(),
		field.Int("sequence_number").
			Comment("monotonic within a session, assigned at insert time"),
		field.Enum("role").
			Values("system", "user", "assistant").
			Immutable(),
		field.Text("content"),
		field.String("response_type").
			Optional().
			Nillable().
			Comment("envelope response_type when role=assistant"),
		field.JSON("envelope", map[string]interface{}{}).
			Optional().
			Comment("full unified response envelope, when role=assistant"),
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
	}
}

// Edges of the Message.
func (Message) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("session", Session.Type).
			Ref("messages").
			Field("session_id").
			Unique().
			Required().
			Immutable(),
	}
}

// Indexes of the Message.
func (Message) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("session_id", "sequence_number").
			Unique(),
	}
}
