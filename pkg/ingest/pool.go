package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sync"
	"time"

	"entgo.io/ent/dialect/sql"

	"github.com/diagramaut/diagramaut/ent"
	"github.com/diagramaut/diagramaut/ent/ingestionjob"
	"github.com/diagramaut/diagramaut/pkg/apierr"
)

// WorkerPool manages a pool of ingestion workers claiming IngestionJob
// rows — the same claim/heartbeat/orphan shape as pkg/queue.WorkerPool,
// applied to repository ingestion instead of plan execution (§4.11:
// "a second WorkerPool instance").
type WorkerPool struct {
	podID  string
	client *ent.Client
	config *Config

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	mu              sync.Mutex
	lastOrphanScan  time.Time
	orphansRecovered int
}

// NewWorkerPool creates a new ingestion worker pool.
func NewWorkerPool(podID string, client *ent.Client, cfg *Config) *WorkerPool {
	return &WorkerPool{
		podID:  podID,
		client: client,
		config: cfg,
		stopCh: make(chan struct{}),
	}
}

// Start spawns the configured number of worker goroutines plus the
// orphan-detection sweep.
func (p *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < p.config.WorkerCount; i++ {
		p.wg.Add(1)
		go p.run(ctx, fmt.Sprintf("%s-ingest-worker-%d", p.podID, i))
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.runOrphanDetection(ctx)
	}()
}

// Stop signals all workers to stop and waits for them to finish.
func (p *WorkerPool) Stop() {
	p.stopOnce.Do(func() { close(p.stopCh) })
	p.wg.Wait()
}

func (p *WorkerPool) run(ctx context.Context, workerID string) {
	defer p.wg.Done()
	log := slog.With("worker_id", workerID, "pod_id", p.podID)
	log.Info("Ingestion worker started")

	for {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		default:
			if err := p.pollAndProcess(ctx, workerID); err != nil {
				if errors.Is(err, ErrNoJobsAvailable) || errors.Is(err, ErrAtCapacity) {
					p.sleep(p.pollInterval())
					continue
				}
				log.Error("Error processing ingestion job", "error", err)
				p.sleep(time.Second)
			}
		}
	}
}

func (p *WorkerPool) sleep(d time.Duration) {
	select {
	case <-p.stopCh:
	case <-time.After(d):
	}
}

func (p *WorkerPool) pollInterval() time.Duration {
	base := p.config.PollInterval
	jitter := p.config.PollIntervalJitter
	if jitter <= 0 {
		return base
	}
	offset := time.Duration(rand.Int64N(int64(2 * jitter)))
	return base - jitter + offset
}

func (p *WorkerPool) pollAndProcess(ctx context.Context, workerID string) error {
	active, err := p.client.IngestionJob.Query().
		Where(ingestionjob.StatusEQ(ingestionjob.StatusProcessing)).
		Count(ctx)
	if err != nil {
		return fmt.Errorf("checking active ingestion jobs: %w", err)
	}
	if active >= p.config.MaxConcurrentJobs {
		return ErrAtCapacity
	}

	job, err := p.claimNextJob(ctx)
	if err != nil {
		return err
	}

	log := slog.With("job_id", job.ID, "worker_id", workerID)
	log.Info("Ingestion job claimed")

	jobCtx, cancel := context.WithTimeout(ctx, p.config.JobTimeout)
	defer cancel()

	heartbeatCtx, cancelHeartbeat := context.WithCancel(jobCtx)
	go p.runHeartbeat(heartbeatCtx, job.ID)

	result := p.process(jobCtx, job)
	cancelHeartbeat()

	if err := p.finish(context.Background(), job.ID, result); err != nil {
		log.Error("Failed to persist ingestion result", "error", err)
		return err
	}

	log.Info("Ingestion job complete", "status", result.status)
	return nil
}

type jobResult struct {
	status ingestionjob.Status
	data   map[string]interface{}
	errMsg string
}

// process runs the actual clone + cache-lookup + extraction, grounded on
// clone.go/cache.go/extract.go.
func (p *WorkerPool) process(ctx context.Context, job *ent.IngestionJob) jobResult {
	cloneDir := filepath.Join(p.config.CloneDir, job.ID)
	defer os.RemoveAll(cloneDir)

	cloned, err := ShallowClone(ctx, job.RepoURL, cloneDir, p.config.JobTimeout)
	if err != nil {
		return jobResult{status: ingestionjob.StatusFailed, errMsg: err.Error()}
	}

	if cached, hit, err := LookupCached(ctx, p.client, job.RepoURL, cloned.CommitHash); err == nil && hit {
		return jobResult{status: ingestionjob.StatusComplete, data: cached.Result}
	}

	md, err := ExtractMetadata(ctx, cloned.Dir, 8)
	if err != nil {
		wrapped := apierr.New(apierr.IngestFailed, fmt.Sprintf("metadata extraction failed: %v", err))
		return jobResult{status: ingestionjob.StatusFailed, errMsg: wrapped.Error()}
	}

	raw, err := toResultMap(md)
	if err != nil {
		return jobResult{status: ingestionjob.StatusFailed, errMsg: err.Error()}
	}

	return jobResult{status: ingestionjob.StatusComplete, data: raw}
}

// claimNextJob atomically claims the next queued ingestion job using FOR
// UPDATE SKIP LOCKED, mirroring pkg/queue/worker.go's claimNextSession.
func (p *WorkerPool) claimNextJob(ctx context.Context) (*ent.IngestionJob, error) {
	tx, err := p.client.Tx(ctx)
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	job, err := tx.IngestionJob.Query().
		Where(ingestionjob.StatusEQ(ingestionjob.StatusQueued)).
		Order(ent.Asc(ingestionjob.FieldCreatedAt)).
		Limit(1).
		ForUpdate(sql.WithLockAction(sql.SkipLocked)).
		First(ctx)
	if err != nil {
		if ent.IsNotFound(err) {
			return nil, ErrNoJobsAvailable
		}
		return nil, fmt.Errorf("querying queued ingestion job: %w", err)
	}

	now := time.Now()
	job, err = job.Update().
		SetStatus(ingestionjob.StatusProcessing).
		SetPodID(p.podID).
		SetStartedAt(now).
		SetLastInteractionAt(now).
		Save(ctx)
	if err != nil {
		return nil, fmt.Errorf("claiming ingestion job: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing claim: %w", err)
	}

	return job, nil
}

func (p *WorkerPool) runHeartbeat(ctx context.Context, jobID string) {
	ticker := time.NewTicker(p.config.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := p.client.IngestionJob.UpdateOneID(jobID).
				SetLastInteractionAt(time.Now()).
				Exec(ctx); err != nil {
				slog.Warn("Ingestion heartbeat update failed", "job_id", jobID, "error", err)
			}
		}
	}
}

func (p *WorkerPool) finish(ctx context.Context, jobID string, result jobResult) error {
	update := p.client.IngestionJob.UpdateOneID(jobID).
		SetStatus(result.status).
		SetCompletedAt(time.Now())

	if result.data != nil {
		update = update.SetResult(result.data)
	}
	if result.errMsg != "" {
		update = update.SetErrorMessage(result.errMsg)
	}

	return update.Exec(ctx)
}
