package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/diagramaut/diagramaut/ent/ingestionjob"
)

// runOrphanDetection periodically scans for ingestion jobs stuck in
// "processing" with a stale heartbeat, mirroring pkg/queue/orphan.go.
func (p *WorkerPool) runOrphanDetection(ctx context.Context) {
	ticker := time.NewTicker(p.config.OrphanDetectionInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stopCh:
			return
		case <-ticker.C:
			if err := p.detectAndRecoverOrphans(ctx); err != nil {
				slog.Error("Ingestion orphan detection failed", "error", err)
			}
		}
	}
}

func (p *WorkerPool) detectAndRecoverOrphans(ctx context.Context) error {
	threshold := time.Now().Add(-p.config.OrphanThreshold)

	orphans, err := p.client.IngestionJob.Query().
		Where(
			ingestionjob.StatusEQ(ingestionjob.StatusProcessing),
			ingestionjob.LastInteractionAtNotNil(),
			ingestionjob.LastInteractionAtLT(threshold),
		).
		All(ctx)
	if err != nil {
		return fmt.Errorf("querying orphaned ingestion jobs: %w", err)
	}

	recovered := 0
	for _, job := range orphans {
		podID := "unknown"
		if job.PodID != nil {
			podID = *job.PodID
		}
		if err := p.client.IngestionJob.UpdateOneID(job.ID).
			SetStatus(ingestionjob.StatusFailed).
			SetErrorMessage(fmt.Sprintf("orphaned: no heartbeat from pod %s", podID)).
			SetCompletedAt(time.Now()).
			Exec(ctx); err != nil {
			slog.Error("Failed to recover orphaned ingestion job", "job_id", job.ID, "error", err)
			continue
		}
		recovered++
	}

	p.mu.Lock()
	p.lastOrphanScan = time.Now()
	p.orphansRecovered += recovered
	p.mu.Unlock()

	return nil
}
