package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"capgrid/internal/appcore"
	"capgrid/internal/dto"
	"capgrid/internal/mocks"
	"capgrid/internal/types"
	apperrors "capgrid/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func workedExample() []types.RawCaption {
	return []types.RawCaption{
		{Start: "00:00:00.000", End: "00:00:02.000", Text: "hello world"},
		{Start: "00:00:01.000", End: "00:00:03.000", Text: "hello"},
		{Start: "00:00:02.500", End: "00:00:04.000", Text: "world peace"},
	}
}

func itemTexts(items []dto.CaptionItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Text
	}
	return out
}

func TestFilterCaptions(t *testing.T) {
	svc := &Service{}

	res, err := svc.FilterCaptions(dto.FilterCaptionsReq{Captions: workedExample()})
	require.NoError(t, err)

	assert.Equal(t, []string{"hello world", "world peace"}, itemTexts(res.Captions))
	assert.Equal(t, "00:00:02.500", res.Captions[1].Start)
	assert.Equal(t, 2.5, res.Captions[1].StartSeconds)
	assert.True(t, res.Converged)
}

func TestFilterCaptionsErrors(t *testing.T) {
	svc := &Service{}

	_, err := svc.FilterCaptions(dto.FilterCaptionsReq{Captions: []types.RawCaption{{Start: "1:2", End: "00:00:01.000", Text: "x"}}})
	assert.True(t, apperrors.IsParseError(err))

	_, err = svc.FilterCaptions(dto.FilterCaptionsReq{})
	assert.True(t, apperrors.Is(err, apperrors.CodeEmptySequence))
}

func TestResampleCaptions(t *testing.T) {
	svc := &Service{Options: Options{IntervalSeconds: 2}}

	res, err := svc.ResampleCaptions(dto.ResampleCaptionsReq{
		Captions: []types.RawCaption{{Start: "00:00:00.000", End: "00:00:04.000", Text: "a.b.c"}},
	})
	require.NoError(t, err)
	require.Len(t, res.Slots, 2)
	assert.Equal(t, "a", res.Slots[0].Text)
	assert.Equal(t, "0001_0000", res.Slots[1].FrameName)
	assert.Equal(t, "00:00:04.000", res.Slots[1].End)

	_, err = svc.ResampleCaptions(dto.ResampleCaptionsReq{Captions: workedExample(), IntervalSeconds: -1})
	assert.True(t, apperrors.Is(err, apperrors.CodeInvalidInterval))
}

func TestProcess(t *testing.T) {
	svc := &Service{Options: Options{IntervalSeconds: 2}}
	var progress []appcore.JobProgress

	res, err := svc.Process(context.Background(), dto.ProcessCaptionsReq{Captions: workedExample()}, func(p appcore.JobProgress) {
		progress = append(progress, p)
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"hello world", "world peace"}, itemTexts(res.Filtered))
	assert.Equal(t, []string{"hello world world peace", "hello world world peace"}, itemTexts(res.Slots))
	assert.Empty(t, res.FramesDir)
	assert.Equal(t, 3, res.Stats.InputCount)
	assert.Equal(t, 2, res.Stats.FilteredCount)
	assert.Equal(t, 2, res.Stats.SlotCount)
	assert.Zero(t, res.Stats.EmptySlotCount)
	assert.Greater(t, res.Stats.NeighbourSimilarity, 0.0)

	require.NotEmpty(t, progress)
	assert.Equal(t, appcore.JobStageFinalizing, progress[len(progress)-1].Stage)
	assert.Equal(t, 100.0, progress[len(progress)-1].Percent)
}

func TestProcessDropsExactDuplicates(t *testing.T) {
	svc := &Service{}
	raw := append(workedExample(), workedExample()[2])

	res, err := svc.Process(context.Background(), dto.ProcessCaptionsReq{Captions: raw, IntervalSeconds: 2}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Stats.DuplicateCount)
	assert.Equal(t, []string{"hello world", "world peace"}, itemTexts(res.Filtered))
}

func TestProcessFromVtt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "talk.vtt")
	require.NoError(t, os.WriteFile(path, []byte("WEBVTT\n\n00:00:00.000 --> 00:00:02.000\nhello world\n\n00:00:01.000 --> 00:00:03.000\nhello\n\n00:00:02.500 --> 00:00:04.000\nworld peace\n"), 0644))
	svc := &Service{}

	res, err := svc.Process(context.Background(), dto.ProcessCaptionsReq{VttPath: path, IntervalSeconds: 2}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"hello world", "world peace"}, itemTexts(res.Filtered))

	_, err = svc.Process(context.Background(), dto.ProcessCaptionsReq{}, nil)
	assert.True(t, apperrors.Is(err, apperrors.CodeInvalidParams))
}

func TestProcessWithFramesAndDescriptions(t *testing.T) {
	frames := new(mocks.MockFrameExtractor)
	describer := new(mocks.MockDescriber)
	dir := t.TempDir()

	frames.On("ExtractFrame", mock.Anything, "talk.mp4", time.Duration(0), filepath.Join(dir, "0000_0000.png")).Return(nil).Once()
	frames.On("ExtractFrame", mock.Anything, "talk.mp4", 2*time.Second, filepath.Join(dir, "0001_0000.png")).Return(nil).Once()
	describer.On("Describe", mock.Anything, "hello world world peace").Return("a sunny park", nil).Twice()

	svc := &Service{Frames: frames, Describer: describer}
	res, err := svc.Process(context.Background(), dto.ProcessCaptionsReq{
		Captions:        workedExample(),
		IntervalSeconds: 2,
		Describe:        true,
		VideoPath:       "talk.mp4",
		FramesDir:       dir,
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, dir, res.FramesDir)
	assert.Equal(t, "a sunny park", res.Slots[0].Description)
	assert.Equal(t, "a sunny park", res.Slots[1].Description)
	frames.AssertExpectations(t)
	describer.AssertExpectations(t)
}

func TestDescribeSlotsSkipsEmptyText(t *testing.T) {
	describer := new(mocks.MockDescriber)
	describer.On("Describe", mock.Anything, "a b").Return("letters", nil).Once()
	svc := &Service{Describer: describer}

	got, err := svc.DescribeSlots(context.Background(), []types.Caption{{Text: "a b"}, {Text: ""}, {Text: "  "}})
	require.NoError(t, err)
	assert.Equal(t, []string{"letters", "", ""}, got)
	describer.AssertExpectations(t)
}

func TestDescribeSlotsErrors(t *testing.T) {
	_, err := (&Service{}).DescribeSlots(context.Background(), []types.Caption{{Text: "x"}})
	assert.True(t, apperrors.Is(err, apperrors.CodeDescribeFailed))

	describer := new(mocks.MockDescriber)
	describer.On("Describe", mock.Anything, "x").Return("", apperrors.ErrDescribeRateLimited)
	_, err = (&Service{Describer: describer}).DescribeSlots(context.Background(), []types.Caption{{Text: "x"}})
	assert.True(t, apperrors.Is(err, apperrors.CodeDescribeRateLimited))

	plain := new(mocks.MockDescriber)
	plain.On("Describe", mock.Anything, "x").Return("", errors.New("connection reset"))
	_, err = (&Service{Describer: plain}).DescribeSlots(context.Background(), []types.Caption{{Text: "x"}})
	assert.True(t, apperrors.Is(err, apperrors.CodeDescribeFailed))
}

func TestExtractFramesStopsOnError(t *testing.T) {
	frames := new(mocks.MockFrameExtractor)
	frames.On("ExtractFrame", mock.Anything, "talk.mp4", time.Duration(0), mock.Anything).Return(apperrors.New(apperrors.CodeFrameExtract, "boom")).Once()
	svc := &Service{Frames: frames}

	err := svc.ExtractFrames(context.Background(), "talk.mp4", []types.Caption{{FrameName: "0000_0000"}, {Start: time.Second, FrameName: "0001_0000"}}, t.TempDir())
	assert.True(t, apperrors.Is(err, apperrors.CodeFrameExtract))
	frames.AssertNumberOfCalls(t, "ExtractFrame", 1)

	assert.ErrorIs(t, (&Service{}).ExtractFrames(context.Background(), "talk.mp4", nil, ""), apperrors.ErrFfmpegNotFound)
}

func TestNeighbourSimilarity(t *testing.T) {
	assert.Zero(t, NeighbourSimilarity(nil))
	assert.Zero(t, NeighbourSimilarity([]types.Caption{{Text: "solo"}}))
	assert.Equal(t, 1.0, NeighbourSimilarity([]types.Caption{{Text: "same"}, {Text: "same"}}))
	assert.Less(t, NeighbourSimilarity([]types.Caption{{Text: "abc"}, {Text: "xyz"}}), 0.5)
}
