package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"entgo.io/ent/dialect/sql"

	"github.com/diagramaut/diagramaut/ent"
	"github.com/diagramaut/diagramaut/ent/planrecord"
)

// WorkerStatus represents the current state of a worker.
type WorkerStatus string

const (
	WorkerStatusIdle    WorkerStatus = "idle"
	WorkerStatusWorking WorkerStatus = "working"
)

// Worker is a single queue worker that polls for and processes
// PlanRecords. Directly grounded on pkg/queue/worker.go.
type Worker struct {
	id           string
	podID        string
	client       *ent.Client
	config       *Config
	planExecutor PlanExecutor
	pool         PlanRegistry
	stopCh       chan struct{}
	stopOnce     sync.Once
	wg           sync.WaitGroup

	mu             sync.RWMutex
	status         WorkerStatus
	currentPlanID  string
	plansProcessed int
	lastActivity   time.Time
}

// PlanRegistry is the subset of WorkerPool used by Worker for plan
// cancellation registration.
type PlanRegistry interface {
	RegisterPlan(planID string, cancel context.CancelFunc)
	UnregisterPlan(planID string)
}

// NewWorker creates a new queue worker.
func NewWorker(id, podID string, client *ent.Client, cfg *Config, executor PlanExecutor, pool PlanRegistry) *Worker {
	return &Worker{
		id:           id,
		podID:        podID,
		client:       client,
		config:       cfg,
		planExecutor: executor,
		pool:         pool,
		stopCh:       make(chan struct{}),
		status:       WorkerStatusIdle,
		lastActivity: time.Now(),
	}
}

// Start begins the worker polling loop in a goroutine.
func (w *Worker) Start(ctx context.Context) {
	w.wg.Add(1)
	go w.run(ctx)
}

// Stop signals the worker to stop and waits for it to finish.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
	w.wg.Wait()
}

// Health returns the current worker health status.
func (w *Worker) Health() WorkerHealth {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return WorkerHealth{
		ID:             w.id,
		Status:         string(w.status),
		CurrentPlanID:  w.currentPlanID,
		PlansProcessed: w.plansProcessed,
		LastActivity:   w.lastActivity,
	}
}

func (w *Worker) run(ctx context.Context) {
	defer w.wg.Done()

	log := slog.With("worker_id", w.id, "pod_id", w.podID)
	log.Info("Orchestrator worker started")

	for {
		select {
		case <-w.stopCh:
			log.Info("Worker shutting down")
			return
		case <-ctx.Done():
			log.Info("Context cancelled, worker shutting down")
			return
		default:
			if err := w.pollAndProcess(ctx); err != nil {
				if errors.Is(err, ErrNoPlansAvailable) || errors.Is(err, ErrAtCapacity) {
					w.sleep(w.pollInterval())
					continue
				}
				log.Error("Error processing plan", "error", err)
				w.sleep(time.Second)
			}
		}
	}
}

func (w *Worker) sleep(d time.Duration) {
	select {
	case <-w.stopCh:
	case <-time.After(d):
	}
}

// pollAndProcess checks capacity, claims a plan, and processes it.
func (w *Worker) pollAndProcess(ctx context.Context) error {
	activeCount, err := w.client.PlanRecord.Query().
		Where(planrecord.StatusEQ(planrecord.StatusExecuting)).
		Count(ctx)
	if err != nil {
		return fmt.Errorf("checking active plans: %w", err)
	}
	if activeCount >= w.config.MaxConcurrentPlans {
		return ErrAtCapacity
	}

	plan, err := w.claimNextPlan(ctx)
	if err != nil {
		return err
	}

	log := slog.With("plan_id", plan.ID, "worker_id", w.id)
	log.Info("Plan claimed")

	w.setStatus(WorkerStatusWorking, plan.ID)
	defer w.setStatus(WorkerStatusIdle, "")

	planCtx, cancelPlan := context.WithTimeout(ctx, w.config.PlanTimeout)
	defer cancelPlan()

	w.pool.RegisterPlan(plan.ID, cancelPlan)
	defer w.pool.UnregisterPlan(plan.ID)

	heartbeatCtx, cancelHeartbeat := context.WithCancel(planCtx)
	defer cancelHeartbeat()
	go w.runHeartbeat(heartbeatCtx, plan.ID)

	result := w.planExecutor.Execute(planCtx, plan)

	if result == nil {
		switch {
		case errors.Is(planCtx.Err(), context.DeadlineExceeded):
			result = &Result{Status: planrecord.StatusFailed, Error: fmt.Errorf("plan timed out after %v", w.config.PlanTimeout)}
		case errors.Is(planCtx.Err(), context.Canceled):
			result = &Result{Status: planrecord.StatusFailed, Error: context.Canceled}
		default:
			result = &Result{Status: planrecord.StatusFailed, Error: fmt.Errorf("executor returned nil result")}
		}
	}

	cancelHeartbeat()

	if err := w.updatePlanTerminalStatus(context.Background(), plan.ID, result); err != nil {
		log.Error("Failed to update plan terminal status", "error", err)
		return err
	}

	w.mu.Lock()
	w.plansProcessed++
	w.mu.Unlock()

	log.Info("Plan processing complete", "status", result.Status)
	return nil
}

// claimNextPlan atomically claims the next queued plan using FOR UPDATE
// SKIP LOCKED, mirroring pkg/queue/worker.go's claimNextSession.
func (w *Worker) claimNextPlan(ctx context.Context) (*ent.PlanRecord, error) {
	tx, err := w.client.Tx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	plan, err := tx.PlanRecord.Query().
		Where(planrecord.StatusEQ(planrecord.StatusCreated)).
		Order(ent.Asc(planrecord.FieldCreatedAt)).
		Limit(1).
		ForUpdate(sql.WithLockAction(sql.SkipLocked)).
		First(ctx)
	if err != nil {
		if ent.IsNotFound(err) {
			return nil, ErrNoPlansAvailable
		}
		return nil, fmt.Errorf("failed to query queued plan: %w", err)
	}

	now := time.Now()
	plan, err = plan.Update().
		SetStatus(planrecord.StatusExecuting).
		SetPodID(w.podID).
		SetLastInteractionAt(now).
		Save(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to claim plan: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit claim: %w", err)
	}

	return plan, nil
}

func (w *Worker) runHeartbeat(ctx context.Context, planID string) {
	ticker := time.NewTicker(w.config.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.client.PlanRecord.UpdateOneID(planID).
				SetLastInteractionAt(time.Now()).
				Exec(ctx); err != nil {
				slog.Warn("Heartbeat update failed", "plan_id", planID, "error", err)
			}
		}
	}
}

func (w *Worker) updatePlanTerminalStatus(ctx context.Context, planID string, result *Result) error {
	update := w.client.PlanRecord.UpdateOneID(planID).
		SetStatus(result.Status).
		SetExecuted(true).
		SetCompletedAt(time.Now())

	return update.Exec(ctx)
}

func (w *Worker) pollInterval() time.Duration {
	base := w.config.PollInterval
	jitter := w.config.PollIntervalJitter
	if jitter <= 0 {
		return base
	}
	offset := time.Duration(rand.Int64N(int64(2 * jitter)))
	return base - jitter + offset
}

func (w *Worker) setStatus(status WorkerStatus, planID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.status = status
	w.currentPlanID = planID
	w.lastActivity = time.Now()
}
