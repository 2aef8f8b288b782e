package queue

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/diagramaut/diagramaut/ent"
	"github.com/diagramaut/diagramaut/ent/planrecord"
)

// orphanState tracks orphan detection metrics (thread-safe). Mirrors
// pkg/queue/orphan.go's orphanState.
type orphanState struct {
	mu               sync.Mutex
	lastOrphanScan   time.Time
	orphansRecovered int
}

// runOrphanDetection periodically scans for orphaned plans. All pods run
// this independently — operations are idempotent.
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
				slog.Error("Orphan detection failed", "error", err)
			}
		}
	}
}

// detectAndRecoverOrphans finds executing plans with stale heartbeats and
// marks them failed — a crashed worker never leaves a plan claimed
// forever.
func (p *WorkerPool) detectAndRecoverOrphans(ctx context.Context) error {
	threshold := time.Now().Add(-p.config.OrphanThreshold)

	orphans, err := p.client.PlanRecord.Query().
		Where(
			planrecord.StatusEQ(planrecord.StatusExecuting),
			planrecord.LastInteractionAtNotNil(),
			planrecord.LastInteractionAtLT(threshold),
		).
		All(ctx)
	if err != nil {
		return fmt.Errorf("failed to query orphaned plans: %w", err)
	}

	if len(orphans) == 0 {
		p.orphans.mu.Lock()
		p.orphans.lastOrphanScan = time.Now()
		p.orphans.mu.Unlock()
		return nil
	}

	slog.Warn("Detected orphaned plans", "count", len(orphans))

	recovered := 0
	for _, plan := range orphans {
		if err := p.recoverOrphanedPlan(ctx, plan); err != nil {
			slog.Error("Failed to recover orphaned plan", "plan_id", plan.ID, "error", err)
			continue
		}
		recovered++
	}

	p.orphans.mu.Lock()
	p.orphans.lastOrphanScan = time.Now()
	p.orphans.orphansRecovered += recovered
	p.orphans.mu.Unlock()

	return nil
}

func (p *WorkerPool) recoverOrphanedPlan(ctx context.Context, plan *ent.PlanRecord) error {
	podID := "unknown"
	if plan.PodID != nil {
		podID = *plan.PodID
	}

	return markPlanFailed(ctx, p.client, plan.ID,
		fmt.Sprintf("orphaned: no heartbeat from pod %s", podID))
}

// CleanupStartupOrphans performs a one-time cleanup of plans owned by
// this pod that were executing when the pod previously crashed. Called
// once during startup, before the worker pool begins processing.
func CleanupStartupOrphans(ctx context.Context, client *ent.Client, podID string) error {
	orphans, err := client.PlanRecord.Query().
		Where(
			planrecord.StatusEQ(planrecord.StatusExecuting),
			planrecord.PodIDEQ(podID),
		).
		All(ctx)
	if err != nil {
		return fmt.Errorf("failed to query startup orphans: %w", err)
	}

	for _, plan := range orphans {
		if err := markPlanFailed(ctx, client, plan.ID,
			fmt.Sprintf("orphaned: pod %s restarted while plan was executing", podID)); err != nil {
			slog.Error("Failed to mark startup orphan", "plan_id", plan.ID, "error", err)
			continue
		}
		slog.Info("Startup orphan recovered", "plan_id", plan.ID)
	}

	return nil
}

func markPlanFailed(ctx context.Context, client *ent.Client, planID, reason string) error {
	now := time.Now()
	slog.Warn("Marking plan failed", "plan_id", planID, "reason", reason)
	return client.PlanRecord.UpdateOneID(planID).
		SetStatus(planrecord.StatusFailed).
		SetExecuted(true).
		SetCompletedAt(now).
		Exec(ctx)
}
