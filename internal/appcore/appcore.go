package appcore

import (
	"context"
	"time"
)

// JobRequest describes one caption job. InputPath is a subtitle file when the
// captions were not stored with the job; OutputDir receives extracted frames.
type JobRequest struct {
	ID         string            `json:"id"`
	InputPath  string            `json:"input_path,omitempty"`
	WorkingDir string            `json:"working_dir,omitempty"`
	OutputDir  string            `json:"output_dir,omitempty"`
	Args       map[string]any    `json:"args,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// ArgString returns Args[key] when it holds a string.
func (r JobRequest) ArgString(key string) string {
	v, _ := r.Args[key].(string)
	return v
}

// ArgBool returns Args[key] when it holds a bool.
func (r JobRequest) ArgBool(key string) bool {
	v, _ := r.Args[key].(bool)
	return v
}

type JobStage uint8

const (
	JobStageQueued JobStage = iota + 1
	JobStagePreparing
	JobStageProcessing
	JobStageFinalizing
	JobStageSucceeded
	JobStageFailed
	JobStageCanceled
)

func (s JobStage) String() string {
	switch s {
	case JobStageQueued:
		return "queued"
	case JobStagePreparing:
		return "preparing"
	case JobStageProcessing:
		return "processing"
	case JobStageFinalizing:
		return "finalizing"
	case JobStageSucceeded:
		return "succeeded"
	case JobStageFailed:
		return "failed"
	case JobStageCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

func (s JobStage) IsTerminal() bool {
	return s == JobStageSucceeded || s == JobStageFailed || s == JobStageCanceled
}

type JobProgress struct {
	Stage     JobStage
	Current   int64
	Total     int64
	Percent   float64
	Message   string
	UpdatedAt time.Time
}

type JobEvent struct {
	JobID      string
	Stage      JobStage
	Progress   *JobProgress
	Message    string
	Err        error
	OccurredAt time.Time
}

type JobResult struct {
	JobID      string
	Stage      JobStage
	OutputPath string
	Artifacts  map[string]string
	StartedAt  time.Time
	FinishedAt time.Time
	Err        error
}

// NewProgress fills Percent from current/total.
func NewProgress(stage JobStage, current, total int64, message string) JobProgress {
	p := JobProgress{Stage: stage, Current: current, Total: total, Message: message, UpdatedAt: time.Now()}
	if total > 0 {
		p.Percent = float64(current) * 100 / float64(total)
	}
	return p
}

// ProgressFunc receives progress updates while a job runs. It may be nil.
type ProgressFunc func(JobProgress)

// JobFunc executes one job. Runners call it from their worker goroutines.
type JobFunc func(ctx context.Context, req JobRequest, report ProgressFunc) (JobResult, error)

type JobHandle interface {
	ID() string
	Events() <-chan JobEvent
	Result() <-chan JobResult
	Cancel() error
}

type Runner interface {
	Submit(ctx context.Context, req JobRequest) (JobHandle, error)
}
