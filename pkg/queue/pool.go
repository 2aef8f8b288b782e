package queue

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/diagramaut/diagramaut/ent"
	"github.com/diagramaut/diagramaut/ent/planrecord"
)

// WorkerPool manages a pool of queue workers claiming PlanRecords.
// Directly grounded on pkg/queue/pool.go.
type WorkerPool struct {
	podID        string
	client       *ent.Client
	config       *Config
	planExecutor PlanExecutor
	workers      []*Worker
	stopCh       chan struct{}
	stopOnce     sync.Once
	wg           sync.WaitGroup

	activePlans map[string]context.CancelFunc
	mu          sync.RWMutex
	started     bool

	orphans orphanState
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(podID string, client *ent.Client, cfg *Config, executor PlanExecutor) *WorkerPool {
	return &WorkerPool{
		podID:        podID,
		client:       client,
		config:       cfg,
		planExecutor: executor,
		workers:      make([]*Worker, 0, cfg.WorkerCount),
		stopCh:       make(chan struct{}),
		activePlans:  make(map[string]context.CancelFunc),
	}
}

// Start spawns worker goroutines and the orphan detection background task.
func (p *WorkerPool) Start(ctx context.Context) error {
	if p.started {
		slog.Warn("Worker pool already started, ignoring duplicate Start call", "pod_id", p.podID)
		return nil
	}
	p.started = true

	slog.Info("Starting orchestrator worker pool", "pod_id", p.podID, "worker_count", p.config.WorkerCount)

	for i := 0; i < p.config.WorkerCount; i++ {
		workerID := fmt.Sprintf("%s-worker-%d", p.podID, i)
		worker := NewWorker(workerID, p.podID, p.client, p.config, p.planExecutor, p)
		p.workers = append(p.workers, worker)
		worker.Start(ctx)
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.runOrphanDetection(ctx)
	}()

	return nil
}

// Stop signals all workers to stop and waits for them to finish.
func (p *WorkerPool) Stop() {
	slog.Info("Stopping orchestrator worker pool gracefully")

	for _, worker := range p.workers {
		worker.Stop()
	}

	p.stopOnce.Do(func() { close(p.stopCh) })
	p.wg.Wait()

	slog.Info("Orchestrator worker pool stopped gracefully")
}

// RegisterPlan stores a cancel function for manual cancellation, per §5's
// "cancellation only stops steps not yet started".
func (p *WorkerPool) RegisterPlan(planID string, cancel context.CancelFunc) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.activePlans[planID] = cancel
}

// UnregisterPlan removes the cancel function when processing ends.
func (p *WorkerPool) UnregisterPlan(planID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.activePlans, planID)
}

// CancelPlan triggers context cancellation for a plan on this pod.
func (p *WorkerPool) CancelPlan(planID string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if cancel, ok := p.activePlans[planID]; ok {
		cancel()
		return true
	}
	return false
}

// Health returns the current health status of the pool.
func (p *WorkerPool) Health() *PoolHealth {
	ctx := context.Background()

	queueDepth, errQ := p.client.PlanRecord.Query().
		Where(planrecord.StatusEQ(planrecord.StatusCreated)).
		Count(ctx)
	if errQ != nil {
		slog.Error("Failed to query queue depth for health check", "pod_id", p.podID, "error", errQ)
	}

	activePlans, errA := p.client.PlanRecord.Query().
		Where(
			planrecord.StatusEQ(planrecord.StatusExecuting),
			planrecord.PodIDEQ(p.podID),
		).
		Count(ctx)
	if errA != nil {
		slog.Error("Failed to query active plans for health check", "pod_id", p.podID, "error", errA)
	}

	workerStats := make([]WorkerHealth, len(p.workers))
	activeWorkers := 0
	for i, worker := range p.workers {
		stats := worker.Health()
		workerStats[i] = stats
		if stats.Status == string(WorkerStatusWorking) {
			activeWorkers++
		}
	}

	dbHealthy := errQ == nil && errA == nil
	isHealthy := len(p.workers) > 0 && activePlans <= p.config.MaxConcurrentPlans && dbHealthy

	p.orphans.mu.Lock()
	lastOrphanScan := p.orphans.lastOrphanScan
	orphansRecovered := p.orphans.orphansRecovered
	p.orphans.mu.Unlock()

	return &PoolHealth{
		IsHealthy:        isHealthy,
		PodID:            p.podID,
		ActiveWorkers:    activeWorkers,
		TotalWorkers:     len(p.workers),
		ActivePlans:      activePlans,
		MaxConcurrent:    p.config.MaxConcurrentPlans,
		QueueDepth:       queueDepth,
		WorkerStats:      workerStats,
		LastOrphanScan:   lastOrphanScan,
		OrphansRecovered: orphansRecovered,
	}
}
