package taskrunner

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"clipz-ai/internal/appcore"
	"clipz-ai/log"
)

const (
	defaultQueueSize   = 128
	defaultConcurrency = 2
	defaultJobTimeout  = 15 * time.Minute
)

// Config controls in-process job runner behavior.
type Config struct {
	QueueSize   int
	Concurrency int
	// JobTimeout bounds a single render or publish job.
	JobTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		QueueSize:   defaultQueueSize,
		Concurrency: defaultConcurrency,
		JobTimeout:  defaultJobTimeout,
	}
}

type queuedJob struct {
	kind    appcore.JobKind
	jobID   string
	render  appcore.RenderPayload
	publish appcore.PublishPayload
}

// Runner executes queued jobs with in-memory workers.
type Runner struct {
	executor appcore.Executor
	recorder appcore.StageRecorder
	config   Config

	queue  chan queuedJob
	ctx    context.Context
	cancel context.CancelFunc

	workerWg sync.WaitGroup
	closed   atomic.Bool
}

var _ appcore.Submitter = (*Runner)(nil)

// New creates and starts a job runner. recorder may be nil.
func New(executor appcore.Executor, recorder appcore.StageRecorder, cfg Config) *Runner {
	cfg = normalizeConfig(cfg)
	ctx, cancel := context.WithCancel(context.Background())

	runner := &Runner{
		executor: executor,
		recorder: recorder,
		config:   cfg,
		queue:    make(chan queuedJob, cfg.QueueSize),
		ctx:      ctx,
		cancel:   cancel,
	}

	for i := 0; i < cfg.Concurrency; i++ {
		runner.workerWg.Add(1)
		go runner.worker(i + 1)
	}

	return runner
}

func normalizeConfig(cfg Config) Config {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = defaultJobTimeout
	}
	return cfg
}

// SubmitRender queues a clip render job.
func (r *Runner) SubmitRender(payload appcore.RenderPayload) error {
	if payload.Token == "" {
		return errors.New("render job token is required")
	}
	return r.submit(queuedJob{kind: appcore.JobKindRender, jobID: payload.JobID, render: payload})
}

// SubmitPublish queues a clip publish job.
func (r *Runner) SubmitPublish(payload appcore.PublishPayload) error {
	if payload.Token == "" || payload.Platform == "" {
		return errors.New("publish job token and platform are required")
	}
	return r.submit(queuedJob{kind: appcore.JobKindPublish, jobID: payload.JobID, publish: payload})
}

func (r *Runner) submit(job queuedJob) error {
	if r.closed.Load() {
		return appcore.ErrRunnerStopped
	}

	select {
	case <-r.ctx.Done():
		return appcore.ErrRunnerStopped
	case r.queue <- job:
		log.GetLogger().Info("[TaskRunner] job submitted",
			zap.String("job_id", job.jobID),
			zap.String("kind", string(job.kind)))
		return nil
	default:
		return appcore.ErrQueueFull
	}
}

func (r *Runner) worker(workerID int) {
	defer r.workerWg.Done()

	for {
		select {
		case <-r.ctx.Done():
			return
		default:
		}

		select {
		case <-r.ctx.Done():
			return
		case job := <-r.queue:
			r.processJob(workerID, job)
		}
	}
}

func (r *Runner) processJob(workerID int, job queuedJob) {
	ctx, cancel := context.WithTimeout(r.ctx, r.config.JobTimeout)
	defer cancel()

	msg, err := appcore.Run(ctx, r.executor, r.recorder, job.jobID, job.kind, job.render, job.publish)
	if err != nil {
		log.GetLogger().Error("[TaskRunner] job failed",
			zap.Int("worker_id", workerID),
			zap.String("job_id", job.jobID),
			zap.String("kind", string(job.kind)),
			zap.Error(err))
		return
	}

	log.GetLogger().Info("[TaskRunner] job completed",
		zap.Int("worker_id", workerID),
		zap.String("job_id", job.jobID),
		zap.String("kind", string(job.kind)),
		zap.String("message", msg))
}

// Close stops workers and rejects new jobs. Jobs still queued are dropped.
func (r *Runner) Close() {
	if !r.closed.CompareAndSwap(false, true) {
		return
	}

	r.cancel()
	r.workerWg.Wait()
}

// Pending returns the number of queued jobs waiting for workers.
func (r *Runner) Pending() int {
	return len(r.queue)
}
