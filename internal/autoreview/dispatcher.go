package autoreview

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// SweepJob asks a worker to run one reviewer's auto-review pass.
type SweepJob struct {
	ReviewerID int64
}

// Runner is the orchestration surface the dispatcher drives; satisfied by
// Service.
type Runner interface {
	RunAutoReview(reviewerID int64) (int, int, error)
	ReviewersWithRules() ([]int64, error)
}

type Worker struct {
	ID         int
	WorkerPool chan chan SweepJob
	JobChannel chan SweepJob
	Logger     *slog.Logger
}

func NewWorker(id int, workerPool chan chan SweepJob, logger *slog.Logger) *Worker {
	return &Worker{
		ID:         id,
		WorkerPool: workerPool,
		JobChannel: make(chan SweepJob),
		Logger:     logger,
	}
}

func (w *Worker) Start(ctx context.Context, wg *sync.WaitGroup, processFunc func(SweepJob)) {
	wg.Add(1)
	go func() {
		defer wg.Done()

		for {

			w.WorkerPool <- w.JobChannel

			select {
			case job := <-w.JobChannel:
				w.Logger.Debug("worker processing sweep job", "worker_id", w.ID, "reviewer_id", job.ReviewerID)
				processFunc(job)
			case <-ctx.Done():
				w.Logger.Debug("worker shutting down", "worker_id", w.ID)
				return
			}
		}
	}()
}

// Dispatcher fans auto-review sweep jobs out over a bounded worker pool so a
// periodic sweep over many reviewers cannot pile up goroutines.
type Dispatcher struct {
	runner Runner
	logger *slog.Logger

	jobQueue   chan SweepJob
	workerPool chan chan SweepJob
	maxWorkers int
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	once       sync.Once
}

type DispatcherConfig struct {
	MaxWorkers     int
	JobQueueSize   int
	WorkerPoolSize int
}

func NewDispatcher(config DispatcherConfig, runner Runner, logger *slog.Logger) *Dispatcher {
	ctx, cancel := context.WithCancel(context.Background())

	maxWorkers := config.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = 4
	}

	jobQueueSize := config.JobQueueSize
	if jobQueueSize <= 0 {
		jobQueueSize = 100
	}

	workerPoolSize := config.WorkerPoolSize
	if workerPoolSize <= 0 {
		workerPoolSize = maxWorkers
	}

	d := &Dispatcher{
		runner: runner,
		logger: logger,

		maxWorkers: maxWorkers,
		jobQueue:   make(chan SweepJob, jobQueueSize),
		workerPool: make(chan chan SweepJob, workerPoolSize),
		ctx:        ctx,
		cancel:     cancel,
	}

	d.startWorkerPool()

	return d
}

func (d *Dispatcher) startWorkerPool() {
	d.once.Do(func() {

		for i := 0; i < d.maxWorkers; i++ {
			worker := NewWorker(i, d.workerPool, d.logger)
			worker.Start(d.ctx, &d.wg, d.processSweepJob)
		}

		d.wg.Add(1)
		go d.dispatch()

		d.logger.Info("auto-review worker pool started",
			"max_workers", d.maxWorkers,
			"queue_size", cap(d.jobQueue))
	})
}

func (d *Dispatcher) dispatch() {
	defer d.wg.Done()

	for {
		select {
		case job := <-d.jobQueue:

			select {
			case jobChannel := <-d.workerPool:

				select {
				case jobChannel <- job:

				case <-d.ctx.Done():
					d.logger.Info("dispatcher shutting down")
					return
				}
			case <-d.ctx.Done():
				d.logger.Info("dispatcher shutting down")
				return
			}
		case <-d.ctx.Done():
			d.logger.Info("dispatcher shutting down")
			return
		}
	}
}

func (d *Dispatcher) processSweepJob(job SweepJob) {
	eligible, resolved, err := d.runner.RunAutoReview(job.ReviewerID)
	if err != nil {
		d.logger.Error("auto-review sweep failed", "error", err, "reviewer_id", job.ReviewerID)
		return
	}

	if eligible < 0 {
		d.logger.Debug("auto-review sweep skipped",
			"reviewer_id", job.ReviewerID,
			"sentinel", eligible)
		return
	}

	d.logger.Info("auto-review sweep finished",
		"reviewer_id", job.ReviewerID,
		"eligible_count", eligible,
		"resolved_count", resolved)
}

// Enqueue schedules a single reviewer's sweep. A full queue rejects the job
// rather than blocking the caller.
func (d *Dispatcher) Enqueue(reviewerID int64) error {
	job := SweepJob{ReviewerID: reviewerID}

	select {
	case d.jobQueue <- job:
		d.logger.Debug("sweep job queued", "reviewer_id", reviewerID, "queue_length", len(d.jobQueue))
		return nil
	default:
		d.logger.Warn("sweep queue full, rejecting job",
			"reviewer_id", reviewerID,
			"queue_capacity", cap(d.jobQueue))
		return fmt.Errorf("auto-review queue full, please try again later")
	}
}

// Sweep enqueues a sweep job for every reviewer that has rules configured.
func (d *Dispatcher) Sweep() error {
	reviewers, err := d.runner.ReviewersWithRules()
	if err != nil {
		return err
	}

	d.logger.Info("starting auto-review sweep", "reviewer_count", len(reviewers))

	for _, reviewerID := range reviewers {
		if err := d.Enqueue(reviewerID); err != nil {
			d.logger.Warn("could not enqueue reviewer sweep", "error", err, "reviewer_id", reviewerID)
		}
	}

	return nil
}

func (d *Dispatcher) Shutdown() {
	d.logger.Info("shutting down auto-review dispatcher")
	d.cancel()
	d.wg.Wait()
	d.logger.Info("auto-review dispatcher shutdown complete")
}
