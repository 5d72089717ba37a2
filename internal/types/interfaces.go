package types

import (
	"context"
	"time"
)

// Describer turns a caption text into an image-style description.
type Describer interface {
	Describe(ctx context.Context, text string) (string, error)
}

// FrameExtractor grabs a single video frame at the given offset into outputPath.
type FrameExtractor interface {
	ExtractFrame(ctx context.Context, videoPath string, at time.Duration, outputPath string) error
}

// JobStore persists caption jobs and their output records.
type JobStore interface {
	SaveJob(job *CaptionJob) error
	GetJob(jobID string) (*CaptionJob, error)
	GetJobHistory(limit int) ([]CaptionJob, error)
	DeleteJob(jobID string) error
	MarkStaleJobs() (int64, error)
}
