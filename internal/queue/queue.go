// Package queue runs caption jobs through Asynq when a Redis instance is configured.
// It satisfies the same appcore.Runner contract as the in-process task runner.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"capgrid/internal/appcore"
	"capgrid/log"
)

// Task type names
const (
	TypeCaptionJob = "caption:process"
	captionQueue   = "default"
)

// QueueConfig holds Redis configuration for Asynq
type QueueConfig struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	Concurrency   int
}

// DefaultConfig returns default queue configuration
func DefaultConfig() QueueConfig {
	return QueueConfig{
		RedisAddr:   "localhost:6379",
		RedisDB:     0,
		Concurrency: 3,
	}
}

// Queue manages task enqueueing and processing
type Queue struct {
	client    *asynq.Client
	inspector *asynq.Inspector
	server    *asynq.Server
	config    QueueConfig
}

var _ appcore.Runner = (*Queue)(nil)

// NewQueue creates a new Queue instance
func NewQueue(cfg QueueConfig) *Queue {
	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: cfg.Concurrency,
			Queues: map[string]int{
				captionQueue: 1,
			},
			RetryDelayFunc: func(n int, e error, t *asynq.Task) time.Duration {
				// Exponential backoff: 10s, 20s, 40s, 80s, ...
				return time.Duration(10<<uint(n)) * time.Second
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				log.GetLogger().Error("Task failed",
					zap.String("type", task.Type()),
					zap.ByteString("payload", task.Payload()),
					zap.Error(err))
			}),
		},
	)

	return &Queue{
		client:    asynq.NewClient(redisOpt),
		inspector: asynq.NewInspector(redisOpt),
		server:    server,
		config:    cfg,
	}
}

// NewCaptionTask encodes req as an Asynq task whose id is the job id.
func NewCaptionTask(req appcore.JobRequest) (*asynq.Task, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	return asynq.NewTask(TypeCaptionJob, data,
		asynq.TaskID(req.ID),
		asynq.MaxRetry(2),
		asynq.Timeout(30*time.Minute),
		asynq.Queue(captionQueue),
	), nil
}

// Submit enqueues req. Progress is not streamed back from remote workers; the
// returned handle only supports Cancel, and callers poll the job store.
func (q *Queue) Submit(ctx context.Context, req appcore.JobRequest) (appcore.JobHandle, error) {
	task, err := NewCaptionTask(req)
	if err != nil {
		return nil, err
	}

	info, err := q.client.EnqueueContext(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("failed to enqueue task: %w", err)
	}

	log.GetLogger().Info("Task enqueued",
		zap.String("job_id", req.ID),
		zap.String("queue_id", info.ID),
		zap.String("queue", info.Queue))

	return newRemoteHandle(info.ID, info.Queue, q.inspector), nil
}

// Close gracefully shuts down the queue
func (q *Queue) Close() error {
	if err := q.client.Close(); err != nil {
		return err
	}
	if err := q.inspector.Close(); err != nil {
		return err
	}
	q.server.Shutdown()
	return nil
}

// Server returns the underlying Asynq server for advanced usage
func (q *Queue) Server() *asynq.Server {
	return q.server
}
