package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/diagramaut/diagramaut/ent"
)

// IngestionService creates and reads IngestionJob rows. Grounded on
// SessionService.CreateSession's create-then-enqueue shape: the job is
// only ever persisted in status "queued" here, pkg/ingest.WorkerPool is
// the only thing that ever claims and advances it.
type IngestionService struct {
	client *ent.Client
}

// NewIngestionService creates a new IngestionService.
func NewIngestionService(client *ent.Client) *IngestionService {
	return &IngestionService{client: client}
}

// CreateJob enqueues a new ingestion job for repoURL.
func (s *IngestionService) CreateJob(ctx context.Context, repoURL string) (*ent.IngestionJob, error) {
	if repoURL == "" {
		return nil, NewValidationError("repo_url", "required")
	}

	job, err := s.client.IngestionJob.Create().
		SetID(uuid.NewString()).
		SetRepoURL(repoURL).
		Save(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating ingestion job: %w", err)
	}
	return job, nil
}

// GetJob retrieves an ingestion job by ID.
func (s *IngestionService) GetJob(ctx context.Context, jobID string) (*ent.IngestionJob, error) {
	job, err := s.client.IngestionJob.Get(ctx, jobID)
	if err != nil {
		if ent.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting ingestion job %q: %w", jobID, err)
	}
	return job, nil
}
