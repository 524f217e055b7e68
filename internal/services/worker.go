package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"alfredoptarigan/career-roadmap/internal/config"
	"alfredoptarigan/career-roadmap/internal/logger"
	"alfredoptarigan/career-roadmap/internal/models"
	"alfredoptarigan/career-roadmap/internal/repositories"
)

// PipelineRunner is the pipeline as seen by the worker.
type PipelineRunner interface {
	Run(ctx context.Context, in RunInput) (*RunResult, error)
}

// Worker executes queued pipeline runs in the background.
type Worker interface {
	Start(ctx context.Context)
	Stop()
	EnqueueRun(runID uuid.UUID)
	// ProcessRun executes one run synchronously.
	ProcessRun(ctx context.Context, runID uuid.UUID) error
}

type worker struct {
	runRepo      repositories.RunRepository
	pipeline     PipelineRunner
	queue        chan uuid.UUID
	concurrency  int
	pollInterval time.Duration
	log          *logger.Logger
	wg           sync.WaitGroup
	stopChan     chan struct{}
	stopOnce     sync.Once
}

func NewWorker(
	runRepo repositories.RunRepository,
	pipeline PipelineRunner,
	cfg config.WorkerConfig,
	log *logger.Logger,
) Worker {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 100
	}
	return &worker{
		runRepo:      runRepo,
		pipeline:     pipeline,
		queue:        make(chan uuid.UUID, queueSize),
		concurrency:  concurrency,
		pollInterval: cfg.PollInterval,
		log:          log,
		stopChan:     make(chan struct{}),
	}
}

func (w *worker) Start(ctx context.Context) {
	w.log.Info("🚀 Starting worker", "concurrency", w.concurrency)

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.processRuns(ctx, i+1)
	}

	if w.pollInterval > 0 {
		w.wg.Add(1)
		go w.pollPendingRuns(ctx)
	}

	w.log.Info("✅ Worker started successfully")
}

func (w *worker) Stop() {
	w.stopOnce.Do(func() {
		w.log.Info("🛑 Stopping worker...")
		close(w.stopChan)
		w.wg.Wait()
		w.log.Info("✅ Worker stopped")
	})
}

func (w *worker) EnqueueRun(runID uuid.UUID) {
	select {
	case w.queue <- runID:
		w.log.Info("📥 Run enqueued", "run", runID)
	case <-w.stopChan:
		w.log.Warn("⚠️  Worker stopped, cannot enqueue run", "run", runID)
	}
}

func (w *worker) ProcessRun(ctx context.Context, runID uuid.UUID) error {
	claimed, err := w.runRepo.ClaimQueued(runID)
	if err != nil {
		return err
	}
	run, err := w.runRepo.FindByID(runID)
	if err != nil {
		return err
	}
	if !claimed {
		w.log.Debug("run already picked up", "run", runID, "status", run.Status)
		return nil
	}

	result, err := w.pipeline.Run(ctx, RunInput{
		Text: run.JobDescription,
		OnState: func(state models.PipelineState) {
			if err := w.runRepo.UpdateState(runID, state); err != nil {
				w.log.Warn("⚠️  Failed to record run state", "run", runID, "state", state, "error", err)
			}
		},
	})
	if err != nil {
		if uerr := w.runRepo.UpdateError(runID, err.Error()); uerr != nil {
			w.log.Error("❌ Failed to record run error", "run", runID, "error", uerr)
		}
		return err
	}

	skills, err := EncodeJSON(result.Skills)
	if err != nil {
		return err
	}
	final, err := EncodeJSON(result.FinalRoadmap)
	if err != nil {
		return err
	}
	return w.runRepo.UpdateResult(runID, &repositories.RunResultData{
		OutputDir:    result.OutputDir,
		Degraded:     result.Degraded,
		SkillsJSON:   string(skills),
		FinalRoadmap: string(final),
	})
}

func (w *worker) processRuns(ctx context.Context, workerID int) {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopChan:
			w.log.Info("👷 Worker stopped", "worker", workerID)
			return
		case <-ctx.Done():
			return
		case runID := <-w.queue:
			w.log.Info("👷 Processing run", "worker", workerID, "run", runID)
			if err := w.ProcessRun(ctx, runID); err != nil {
				w.log.Error("❌ Run failed", "worker", workerID, "run", runID, "error", err)
			} else {
				w.log.Info("✅ Run completed", "worker", workerID, "run", runID)
			}
		}
	}
}

// pollPendingRuns re-enqueues queued runs, for example after a restart.
func (w *worker) pollPendingRuns(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			pending, err := w.runRepo.FindPending(10)
			if err != nil {
				w.log.Warn("⚠️  Failed to fetch pending runs", "error", err)
				continue
			}
			if len(pending) > 0 {
				w.log.Info("📋 Found pending runs", "count", len(pending))
			}
			for _, run := range pending {
				w.EnqueueRun(run.ID)
			}
		}
	}
}
