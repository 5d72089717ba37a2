// Package mocks provides mock implementations of core interfaces for testing.
package mocks

import (
	"context"
	"time"

	"capgrid/internal/appcore"
	"capgrid/internal/types"

	"github.com/stretchr/testify/mock"
)

// MockDescriber is a mock implementation of types.Describer
type MockDescriber struct {
	mock.Mock
}

func (m *MockDescriber) Describe(ctx context.Context, text string) (string, error) {
	args := m.Called(ctx, text)
	return args.String(0), args.Error(1)
}

// MockFrameExtractor is a mock implementation of types.FrameExtractor
type MockFrameExtractor struct {
	mock.Mock
}

func (m *MockFrameExtractor) ExtractFrame(ctx context.Context, videoPath string, at time.Duration, outputPath string) error {
	args := m.Called(ctx, videoPath, at, outputPath)
	return args.Error(0)
}

// MockJobStore is a mock implementation of types.JobStore
type MockJobStore struct {
	mock.Mock
}

func (m *MockJobStore) SaveJob(job *types.CaptionJob) error {
	args := m.Called(job)
	return args.Error(0)
}

func (m *MockJobStore) GetJob(jobID string) (*types.CaptionJob, error) {
	args := m.Called(jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.CaptionJob), args.Error(1)
}

func (m *MockJobStore) GetJobHistory(limit int) ([]types.CaptionJob, error) {
	args := m.Called(limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.CaptionJob), args.Error(1)
}

func (m *MockJobStore) DeleteJob(jobID string) error {
	args := m.Called(jobID)
	return args.Error(0)
}

func (m *MockJobStore) MarkStaleJobs() (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}

// MockRunner is a mock implementation of appcore.Runner
type MockRunner struct {
	mock.Mock
}

func (m *MockRunner) Submit(ctx context.Context, req appcore.JobRequest) (appcore.JobHandle, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(appcore.JobHandle), args.Error(1)
}
