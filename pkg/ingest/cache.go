package ingest

import (
	"context"
	"fmt"

	"github.com/diagramaut/diagramaut/ent"
	"github.com/diagramaut/diagramaut/ent/ingestionjob"
)

// LookupCached returns a prior completed ingestion job for the same
// (repoURL, commitHash) pair, if one exists — mirroring
// pkg/runbook/cache.go's Get, but backed by the durable IngestionJob
// table instead of an in-memory TTL cache. The commit hash is the one the
// clone resolves, so a repeated ingestion of the same commit still clones
// the repository; only the extraction is skipped.
func LookupCached(ctx context.Context, client *ent.Client, repoURL, commitHash string) (*ent.IngestionJob, bool, error) {
	if commitHash == "" {
		return nil, false, nil
	}

	job, err := client.IngestionJob.Query().
		Where(
			ingestionjob.RepoURLEQ(repoURL),
			ingestionjob.CommitHashEQ(commitHash),
			ingestionjob.StatusEQ(ingestionjob.StatusComplete),
		).
		First(ctx)
	if err != nil {
		if ent.IsNotFound(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("querying ingestion cache: %w", err)
	}

	return job, true, nil
}
