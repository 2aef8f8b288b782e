package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// IngestionJob holds the schema definition for the IngestionJob entity.
// Same claim/heartbeat/terminal-status shape as ent/schema/alertsession.go,
// applied to repository ingestion instead of alert investigation.
type IngestionJob struct {
	ent.Schema
}

// Fields of the IngestionJob.
func (IngestionJob) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			StorageKey("job_id").
			Unique().
			Immutable(),
		field.String("repo_url").
			Immutable(),
		field.String("commit_hash").
			Optional().
			Nillable().
			Comment("resolved once cloning starts; nil while queued against a branch ref"),
		field.Enum("status").
			Values("queued", "processing", "complete", "failed").
			Default("queued"),
		field.JSON("result", map[string]interface{}{}).
			Optional().
			Comment("structural IR summary once complete"),
		field.String("error_message").
			Optional().
			Nillable(),
		field.String("pod_id").
			Optional().
			Nillable().
			Comment("for multi-replica coordination, mirrors alertsession.pod_id"),
		field.Time("last_interaction_at").
			Optional().
			Nillable().
			Comment("heartbeat timestamp, updated while a worker clones/extracts"),
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
		field.Time("started_at").
			Optional().
			Nillable(),
		field.Time("completed_at").
			Optional().
			Nillable(),
	}
}

// Indexes of the IngestionJob.
func (IngestionJob) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("repo_url", "commit_hash"),
		index.Fields("status"),
	}
}
