package queue

import (
	"errors"

	"github.com/hibiken/asynq"

	"capgrid/internal/appcore"
)

// remoteHandle refers to a task living in Redis. Events and Result are closed
// immediately because remote workers report through the job store instead.
type remoteHandle struct {
	id        string
	queue     string
	inspector *asynq.Inspector
	events    chan appcore.JobEvent
	result    chan appcore.JobResult
}

func newRemoteHandle(id, queue string, inspector *asynq.Inspector) *remoteHandle {
	h := &remoteHandle{
		id:        id,
		queue:     queue,
		inspector: inspector,
		events:    make(chan appcore.JobEvent),
		result:    make(chan appcore.JobResult),
	}
	close(h.events)
	close(h.result)
	return h
}

func (h *remoteHandle) ID() string {
	return h.id
}

func (h *remoteHandle) Events() <-chan appcore.JobEvent {
	return h.events
}

func (h *remoteHandle) Result() <-chan appcore.JobResult {
	return h.result
}

// Cancel deletes the task while it waits, or signals the worker once it is active.
func (h *remoteHandle) Cancel() error {
	err := h.inspector.DeleteTask(h.queue, h.id)
	if err == nil {
		return nil
	}
	if errors.Is(err, asynq.ErrTaskNotFound) {
		return nil
	}
	return h.inspector.CancelProcessing(h.id)
}
