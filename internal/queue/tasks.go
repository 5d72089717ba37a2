package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"capgrid/internal/appcore"
	"capgrid/log"
)

// TaskHandlers adapts an appcore.JobFunc to Asynq handlers.
type TaskHandlers struct {
	run appcore.JobFunc
}

func NewTaskHandlers(run appcore.JobFunc) *TaskHandlers {
	return &TaskHandlers{run: run}
}

// HandleCaptionJob decodes the job request and runs it in the worker goroutine.
// Malformed payloads are not retried.
func (h *TaskHandlers) HandleCaptionJob(ctx context.Context, t *asynq.Task) error {
	var req appcore.JobRequest
	if err := json.Unmarshal(t.Payload(), &req); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}
	if req.ID == "" {
		return fmt.Errorf("caption job without id: %w", asynq.SkipRetry)
	}

	log.GetLogger().Info("[Queue] Processing caption job",
		zap.String("job_id", req.ID),
		zap.String("input", req.InputPath))

	_, err := h.run(ctx, req, func(p appcore.JobProgress) {
		log.GetLogger().Debug("[Queue] progress",
			zap.String("job_id", req.ID),
			zap.String("stage", p.Stage.String()),
			zap.Float64("percent", p.Percent))
	})
	if err != nil {
		return err
	}

	log.GetLogger().Info("[Queue] Caption job completed", zap.String("job_id", req.ID))
	return nil
}

// RegisterHandlers registers all task handlers with the Asynq server mux
func (h *TaskHandlers) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeCaptionJob, h.HandleCaptionJob)
}

// StartWorker blocks serving caption jobs until the server is shut down.
func StartWorker(q *Queue, run appcore.JobFunc) error {
	mux := asynq.NewServeMux()
	NewTaskHandlers(run).RegisterHandlers(mux)

	log.GetLogger().Info("[Queue] Starting worker",
		zap.String("redis_addr", q.config.RedisAddr),
		zap.Int("concurrency", q.config.Concurrency))

	return q.server.Run(mux)
}
