package taskrunner

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"capgrid/internal/appcore"
	"capgrid/log"
	apperrors "capgrid/pkg/errors"
)

const (
	defaultQueueSize   = 128
	defaultConcurrency = 2
	eventBufferSize    = 32
)

var (
	ErrRunnerStopped = apperrors.ErrRunnerStopped
	ErrQueueFull     = apperrors.ErrQueueFull
)

// Config controls in-process task runner behavior.
type Config struct {
	QueueSize   int
	Concurrency int
}

// DefaultConfig returns a desktop-friendly default config.
func DefaultConfig() Config {
	return Config{
		QueueSize:   defaultQueueSize,
		Concurrency: defaultConcurrency,
	}
}

// Runner executes submitted jobs with in-memory workers.
type Runner struct {
	run    appcore.JobFunc
	config Config

	queue  chan *job
	ctx    context.Context
	cancel context.CancelFunc

	workerWg sync.WaitGroup
	closed   atomic.Bool
}

var _ appcore.Runner = (*Runner)(nil)

// New creates and starts a task runner that executes jobs with run.
func New(run appcore.JobFunc, cfg Config) *Runner {
	cfg = normalizeConfig(cfg)
	ctx, cancel := context.WithCancel(context.Background())

	runner := &Runner{
		run:    run,
		config: cfg,
		queue:  make(chan *job, cfg.QueueSize),
		ctx:    ctx,
		cancel: cancel,
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
	return cfg
}

// Submit queues req without blocking. ErrQueueFull is returned when every slot is taken.
func (r *Runner) Submit(ctx context.Context, req appcore.JobRequest) (appcore.JobHandle, error) {
	if req.ID == "" {
		return nil, apperrors.NewWithDetail(apperrors.CodeInvalidParams, "Invalid parameters", "job id is required")
	}
	if r.run == nil {
		return nil, errors.New("task runner has no job function")
	}
	if r.closed.Load() {
		return nil, ErrRunnerStopped
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	j := newJob(r.ctx, req)

	select {
	case <-r.ctx.Done():
		j.cancel()
		return nil, ErrRunnerStopped
	case r.queue <- j:
		j.emit(appcore.JobStageQueued, nil, "queued", nil)
		log.GetLogger().Info("[TaskRunner] job submitted",
			zap.String("job_id", req.ID),
			zap.Int("pending", len(r.queue)))
		return j, nil
	default:
		j.cancel()
		return nil, ErrQueueFull
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
		case j := <-r.queue:
			r.process(workerID, j)
		}
	}
}

func (r *Runner) process(workerID int, j *job) {
	started := time.Now()
	if err := j.ctx.Err(); err != nil {
		j.finish(appcore.JobResult{StartedAt: started}, apperrors.Wrap(apperrors.CodeJobCanceled, "Job canceled", err))
		return
	}

	j.emit(appcore.JobStageProcessing, nil, "started", nil)

	result, err := r.runSafely(j)
	result.StartedAt = started
	j.finish(result, err)

	if err != nil {
		log.GetLogger().Error("[TaskRunner] job failed",
			zap.Int("worker_id", workerID),
			zap.String("job_id", j.req.ID),
			zap.Error(err))
		return
	}

	log.GetLogger().Info("[TaskRunner] job completed",
		zap.Int("worker_id", workerID),
		zap.String("job_id", j.req.ID),
		zap.Duration("elapsed", time.Since(started)))
}

func (r *Runner) runSafely(j *job) (result appcore.JobResult, err error) {
	defer func() {
		if p := recover(); p != nil {
			const size = 64 << 10
			buf := make([]byte, size)
			buf = buf[:runtime.Stack(buf, false)]
			log.GetLogger().Error("[TaskRunner] job panic", zap.Any("panic", p), zap.ByteString("stack", buf))
			err = fmt.Errorf("job panic: %v", p)
		}
	}()

	return r.run(j.ctx, j.req, func(p appcore.JobProgress) {
		progress := p
		j.emit(p.Stage, &progress, p.Message, nil)
	})
}

// Close stops workers and rejects new jobs. Jobs still queued finish as canceled.
func (r *Runner) Close() {
	if !r.closed.CompareAndSwap(false, true) {
		return
	}

	r.cancel()
	r.workerWg.Wait()

	for {
		select {
		case j := <-r.queue:
			j.finish(appcore.JobResult{StartedAt: time.Now()}, ErrRunnerStopped)
		default:
			return
		}
	}
}

// Pending returns the number of queued jobs waiting for workers.
func (r *Runner) Pending() int {
	return len(r.queue)
}
