// Package background runs ingestion tasks submitted over HTTP on a fixed
// worker pool, recording progress through durable run records.
package background

import (
	"context"
	"fmt"
	"sync"
	"time"

	"jobboard-api/internal/config"
	"jobboard-api/internal/ingest"
	"jobboard-api/internal/logging"
	"jobboard-api/pkg/models"
	"jobboard-api/pkg/utils"
)

const (
	DefaultMaxWorkers   = 4
	DefaultMaxQueueSize = 50

	MaxWorkers   = 100
	MaxQueueSize = 1000
)

// RunStore is the durable store for run records. Implemented by the
// Postgres store.
type RunStore interface {
	CreateRun(ctx context.Context, run *models.ScrapeRun) error
	MarkRunProcessing(ctx context.Context, id string) error
	CompleteRun(ctx context.Context, run *models.ScrapeRun) error
	GetRun(ctx context.Context, id string) (*models.ScrapeRun, error)
	DeleteRunsOlderThan(ctx context.Context, age time.Duration) (int64, error)
}

// IngestRunner executes one ingestion run end to end. Implemented by the
// ingest service.
type IngestRunner interface {
	Ingest(ctx context.Context, name, query, location string, limit int, postedByID *int64) (*ingest.IngestSummary, error)
}

// runExecution is one queued run waiting for a worker
type runExecution struct {
	Run    *models.ScrapeRun
	Cancel context.CancelFunc
	Ctx    context.Context
}

// TaskManager accepts ingestion runs, executes them on a worker pool and
// keeps their run records up to date.
type TaskManager struct {
	cfg    *config.Config
	runs   RunStore
	runner IngestRunner
	locker SourceLocker
	logger logging.Logger

	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	mu       sync.RWMutex
	running  bool
	taskChan chan *runExecution

	maxWorkers   int
	maxQueueSize int
}

// validatePoolConfig clamps pool settings to safe values
func validatePoolConfig(cfg *config.Config) (maxWorkers, maxQueueSize int, err error) {
	maxWorkers = cfg.BackgroundTasks.PoolSize
	if maxWorkers <= 0 {
		maxWorkers = DefaultMaxWorkers
	} else if maxWorkers > MaxWorkers {
		return 0, 0, fmt.Errorf("worker pool size (%d) exceeds maximum (%d)", maxWorkers, MaxWorkers)
	}

	maxQueueSize = cfg.BackgroundTasks.QueueSize
	if maxQueueSize <= 0 {
		maxQueueSize = DefaultMaxQueueSize
	} else if maxQueueSize > MaxQueueSize {
		return 0, 0, fmt.Errorf("queue size (%d) exceeds maximum (%d)", maxQueueSize, MaxQueueSize)
	}

	return maxWorkers, maxQueueSize, nil
}

// NewTaskManager creates a task manager
func NewTaskManager(cfg *config.Config, runs RunStore, runner IngestRunner, locker SourceLocker) *TaskManager {
	logger := logging.GetGlobalLogger()

	maxWorkers, maxQueueSize, err := validatePoolConfig(cfg)
	if err != nil {
		logger.Warn("Task manager configuration invalid, using defaults", map[string]interface{}{
			"error": err.Error(),
		})
		maxWorkers = DefaultMaxWorkers
		maxQueueSize = DefaultMaxQueueSize
	}

	return &TaskManager{
		cfg:          cfg,
		runs:         runs,
		runner:       runner,
		locker:       locker,
		logger:       logger,
		taskChan:     make(chan *runExecution, maxQueueSize),
		maxWorkers:   maxWorkers,
		maxQueueSize: maxQueueSize,
	}
}

// Start launches the worker pool and the cleanup routine
func (tm *TaskManager) Start(ctx context.Context) error {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	if tm.running {
		return fmt.Errorf("task manager already running")
	}

	tm.ctx, tm.cancel = context.WithCancel(ctx)
	tm.running = true

	for i := 0; i < tm.maxWorkers; i++ {
		tm.wg.Add(1)
		go tm.worker(i)
	}

	tm.wg.Add(1)
	go tm.cleanupRoutine()

	tm.logger.Info("Task manager started", map[string]interface{}{
		"max_workers":    tm.maxWorkers,
		"max_queue_size": tm.maxQueueSize,
	})
	return nil
}

// Stop stops the task manager gracefully, waiting for in-flight runs
// until ctx expires
func (tm *TaskManager) Stop(ctx context.Context) error {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	if !tm.running {
		return nil
	}

	tm.logger.Info("Stopping task manager...", map[string]interface{}{})

	tm.cancel()
	close(tm.taskChan)

	done := make(chan struct{})
	go func() {
		tm.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		tm.logger.Info("Task manager stopped gracefully", map[string]interface{}{})
	case <-ctx.Done():
		tm.logger.Warn("Task manager shutdown timed out", map[string]interface{}{})
	}

	tm.running = false
	return nil
}

// IsHealthy reports whether the manager is accepting work
func (tm *TaskManager) IsHealthy() bool {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	return tm.running && tm.ctx.Err() == nil
}

// SubmitIngestRun accepts a validated trigger, creates the run record and
// queues the run. Returns ErrSourceBusy when another run already holds the
// source lock.
func (tm *TaskManager) SubmitIngestRun(ctx context.Context, req models.TriggerScrapeRequest) (*models.ScrapeRun, error) {
	if !tm.IsHealthy() {
		return nil, fmt.Errorf("task manager is not healthy")
	}

	if err := tm.locker.Acquire(ctx, req.Source); err != nil {
		return nil, err
	}

	run := &models.ScrapeRun{
		ID:       utils.GenerateRunID(),
		Source:   req.Source,
		Query:    req.Query,
		Location: req.Location,
		Limit:    req.Limit,
		Status:   models.RunStatusAccepted,
	}
	if err := tm.runs.CreateRun(ctx, run); err != nil {
		tm.releaseLock(req.Source)
		return nil, fmt.Errorf("failed to create run record: %w", err)
	}

	taskCtx, cancel := context.WithCancel(tm.ctx)
	execution := &runExecution{Run: run, Ctx: taskCtx, Cancel: cancel}

	select {
	case tm.taskChan <- execution:
		tm.logger.Info("Ingestion run accepted", map[string]interface{}{
			"run_id": run.ID,
			"source": run.Source,
			"query":  run.Query,
		})
		return run, nil
	default:
		cancel()
		tm.failRun(run, fmt.Errorf("task queue is full"))
		tm.releaseLock(req.Source)
		return nil, fmt.Errorf("task queue is full")
	}
}

// GetRun returns the run record for a process id
func (tm *TaskManager) GetRun(ctx context.Context, id string) (*models.ScrapeRun, error) {
	return tm.runs.GetRun(ctx, id)
}

// worker drains the task channel until shutdown
func (tm *TaskManager) worker(workerID int) {
	defer tm.wg.Done()

	for {
		select {
		case <-tm.ctx.Done():
			return
		case execution, ok := <-tm.taskChan:
			if !ok {
				return
			}
			tm.processRun(workerID, execution)
		}
	}
}

// processRun executes one queued run and records the terminal outcome
func (tm *TaskManager) processRun(workerID int, execution *runExecution) {
	run := execution.Run
	defer execution.Cancel()
	defer tm.releaseLock(run.Source)

	started := time.Now()
	tm.logger.Info("Processing ingestion run", map[string]interface{}{
		"worker_id": workerID,
		"run_id":    run.ID,
		"source":    run.Source,
	})

	if err := tm.runs.MarkRunProcessing(execution.Ctx, run.ID); err != nil {
		tm.logger.Error("Failed to mark run as processing", map[string]interface{}{
			"run_id": run.ID,
			"error":  err.Error(),
		})
	}

	runCtx := execution.Ctx
	if timeout := tm.cfg.BackgroundTasks.TaskTimeout; timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(runCtx, timeout)
		defer cancel()
	}

	summary, err := tm.runner.Ingest(runCtx, run.Source, run.Query, run.Location, run.Limit, nil)
	if summary != nil {
		run.TotalFetched = summary.TotalFetched
		run.Saved = summary.Saved
		run.Duplicate = summary.Duplicate
		run.Failed = summary.Failed
		if summary.FetchError != "" && err == nil {
			run.Error = &summary.FetchError
		}
	}

	if err != nil {
		tm.logger.Error("Ingestion run failed", map[string]interface{}{
			"worker_id": workerID,
			"run_id":    run.ID,
			"source":    run.Source,
			"duration":  time.Since(started).String(),
			"error":     err.Error(),
		})
		tm.failRun(run, err)
		return
	}

	run.Status = models.RunStatusSuccess
	if completeErr := tm.runs.CompleteRun(context.Background(), run); completeErr != nil {
		tm.logger.Error("Failed to record run completion", map[string]interface{}{
			"run_id": run.ID,
			"error":  completeErr.Error(),
		})
	}

	tm.logger.Info("Ingestion run completed", map[string]interface{}{
		"worker_id": workerID,
		"run_id":    run.ID,
		"source":    run.Source,
		"saved":     run.Saved,
		"duplicate": run.Duplicate,
		"failed":    run.Failed,
		"duration":  time.Since(started).String(),
	})
}

func (tm *TaskManager) failRun(run *models.ScrapeRun, cause error) {
	msg := cause.Error()
	run.Status = models.RunStatusFailure
	run.Error = &msg
	if err := tm.runs.CompleteRun(context.Background(), run); err != nil {
		tm.logger.Error("Failed to record run failure", map[string]interface{}{
			"run_id": run.ID,
			"error":  err.Error(),
		})
	}
}

func (tm *TaskManager) releaseLock(source string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := tm.locker.Release(ctx, source); err != nil {
		tm.logger.Error("Failed to release source lock", map[string]interface{}{
			"source": source,
			"error":  err.Error(),
		})
	}
}

// cleanupRoutine periodically deletes old terminal run records
func (tm *TaskManager) cleanupRoutine() {
	defer tm.wg.Done()

	interval := tm.cfg.BackgroundTasks.CleanupInterval
	if interval <= 0 {
		interval = time.Hour
	}
	maxAge := tm.cfg.BackgroundTasks.MaxRunAge
	if maxAge <= 0 {
		maxAge = 24 * time.Hour
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-tm.ctx.Done():
			return
		case <-ticker.C:
			deleted, err := tm.runs.DeleteRunsOlderThan(context.Background(), maxAge)
			if err != nil {
				tm.logger.Error("Failed to clean up old run records", map[string]interface{}{
					"error": err.Error(),
				})
				continue
			}
			if deleted > 0 {
				tm.logger.Info("Cleaned up old run records", map[string]interface{}{
					"deleted": deleted,
				})
			}
		}
	}
}
