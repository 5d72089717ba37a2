package taskrunner

import (
	"context"
	"errors"
	"sync"
	"time"

	"capgrid/internal/appcore"
)

// job is the runner side of an appcore.JobHandle.
type job struct {
	req    appcore.JobRequest
	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	finished bool
	events   chan appcore.JobEvent
	result   chan appcore.JobResult
}

var _ appcore.JobHandle = (*job)(nil)

func newJob(parent context.Context, req appcore.JobRequest) *job {
	ctx, cancel := context.WithCancel(parent)
	return &job{
		req:    req,
		ctx:    ctx,
		cancel: cancel,
		events: make(chan appcore.JobEvent, eventBufferSize),
		result: make(chan appcore.JobResult, 1),
	}
}

func (j *job) ID() string {
	return j.req.ID
}

func (j *job) Events() <-chan appcore.JobEvent {
	return j.events
}

func (j *job) Result() <-chan appcore.JobResult {
	return j.result
}

// Cancel stops the job if it is queued or running.
func (j *job) Cancel() error {
	j.cancel()
	return nil
}

// emit drops the event when nobody drains the buffer.
func (j *job) emit(stage appcore.JobStage, progress *appcore.JobProgress, message string, err error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.finished {
		return
	}
	select {
	case j.events <- appcore.JobEvent{
		JobID:      j.req.ID,
		Stage:      stage,
		Progress:   progress,
		Message:    message,
		Err:        err,
		OccurredAt: time.Now(),
	}:
	default:
	}
}

func (j *job) finish(result appcore.JobResult, err error) {
	stage := appcore.JobStageSucceeded
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled) || j.ctx.Err() != nil:
		stage = appcore.JobStageCanceled
	default:
		stage = appcore.JobStageFailed
	}

	result.JobID = j.req.ID
	result.Stage = stage
	result.Err = err
	result.FinishedAt = time.Now()

	j.emit(stage, nil, stage.String(), err)

	j.mu.Lock()
	j.finished = true
	close(j.events)
	j.mu.Unlock()

	j.result <- result
	close(j.result)
	j.cancel()
}
