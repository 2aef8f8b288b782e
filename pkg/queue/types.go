// Package queue implements the Orchestrator (§4.8): a worker pool that
// claims persisted PlanRecords and executes their steps in order against
// the MCP Registry, writing PlanExecution rows progressively.
//
// Directly grounded on pkg/queue/{types,pool,worker,orphan}.go: the same
// claim-before-execute, heartbeat, and orphan-sweep shape, applied to
// PlanRecord/PlanExecution instead of AlertSession/AgentExecution.
package queue

import (
	"context"
	"errors"
	"time"

	"github.com/diagramaut/diagramaut/ent"
	"github.com/diagramaut/diagramaut/ent/planrecord"
)

// Sentinel errors for queue operations, mirroring pkg/queue/types.go.
var (
	ErrNoPlansAvailable = errors.New("no plans available")
	ErrAtCapacity       = errors.New("at capacity")
)

// PlanExecutor is the interface for plan processing. The executor owns
// the entire plan lifecycle: it iterates steps in order, calls the MCP
// Registry per step, and writes PlanExecution rows progressively — the
// worker only handles claiming, heartbeat, and terminal status update.
type PlanExecutor interface {
	Execute(ctx context.Context, plan *ent.PlanRecord) *Result
}

// Result is the terminal state of one plan's execution. Intermediate
// PlanExecution rows were already written to the DB during processing by
// the executor.
type Result struct {
	Status planrecord.Status
	Error  error
}

// PoolHealth mirrors pkg/queue/types.go's PoolHealth, scoped to plan
// processing instead of alert sessions.
type PoolHealth struct {
	IsHealthy        bool           `json:"is_healthy"`
	PodID            string         `json:"pod_id"`
	ActiveWorkers    int            `json:"active_workers"`
	TotalWorkers     int            `json:"total_workers"`
	ActivePlans      int            `json:"active_plans"`
	MaxConcurrent    int            `json:"max_concurrent"`
	QueueDepth       int            `json:"queue_depth"`
	WorkerStats      []WorkerHealth `json:"worker_stats"`
	LastOrphanScan   time.Time      `json:"last_orphan_scan"`
	OrphansRecovered int            `json:"orphans_recovered"`
}

// WorkerHealth mirrors pkg/queue/types.go's WorkerHealth.
type WorkerHealth struct {
	ID               string    `json:"id"`
	Status           string    `json:"status"`
	CurrentPlanID    string    `json:"current_plan_id,omitempty"`
	PlansProcessed   int       `json:"plans_processed"`
	LastActivity     time.Time `json:"last_activity"`
}

// Config bounds worker-pool behavior, mirroring config.QueueConfig's
// fields but scoped to what this package reads directly (the rest of the
// teacher's QueueConfig — Slack/runbook knobs — has no analog here).
type Config struct {
	WorkerCount             int
	MaxConcurrentPlans      int
	PlanTimeout             time.Duration
	PollInterval            time.Duration
	PollIntervalJitter      time.Duration
	HeartbeatInterval       time.Duration
	OrphanDetectionInterval time.Duration
	OrphanThreshold         time.Duration
}
