package service

import (
	"context"
	"fmt"

	"capgrid/internal/appcore"
	"capgrid/internal/caption"
	"capgrid/internal/dto"
	"capgrid/internal/types"
	"capgrid/log"
	apperrors "capgrid/pkg/errors"
	"capgrid/pkg/vtt"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

type pipelineParams struct {
	IntervalSeconds float64
	MaxIterations   int
	Describe        bool
	VideoPath       string
	FramesDir       string
}

type pipelineOutput struct {
	Filtered []types.Caption
	Slots    []types.SlotDescription
	Stats    dto.CaptionStats
}

// FilterCaptions runs the dedup filter alone on the given raw captions.
func (s *Service) FilterCaptions(req dto.FilterCaptionsReq) (*dto.FilterCaptionsResData, error) {
	captions, err := caption.FromRaw(req.Captions)
	if err != nil {
		return nil, err
	}
	maxIterations := req.MaxIterations
	if maxIterations <= 0 {
		maxIterations = s.options().MaxIterations
	}

	res, err := caption.Filter(captions, maxIterations)
	if err != nil {
		return nil, err
	}
	return &dto.FilterCaptionsResData{
		Captions:   toItems(res.Captions, nil),
		Iterations: res.Iterations,
		Converged:  res.Converged,
	}, nil
}

// ResampleCaptions resamples the given raw captions without filtering them first.
// A zero interval falls back to the configured default.
func (s *Service) ResampleCaptions(req dto.ResampleCaptionsReq) (*dto.ResampleCaptionsResData, error) {
	captions, err := caption.FromRaw(req.Captions)
	if err != nil {
		return nil, err
	}
	interval := req.IntervalSeconds
	if interval == 0 {
		interval = s.options().IntervalSeconds
	}
	pattern := req.FrameNamePattern
	if pattern == "" {
		pattern = s.options().FrameNamePattern
	}

	slots, err := caption.ResampleSeconds(captions, interval)
	if err != nil {
		return nil, err
	}
	return &dto.ResampleCaptionsResData{Slots: toItems(caption.AssignFrameNames(slots, pattern), nil)}, nil
}

// Process loads, filters and resamples captions, then optionally extracts a frame
// and generates a description per slot.
func (s *Service) Process(ctx context.Context, req dto.ProcessCaptionsReq, report appcore.ProgressFunc) (*dto.ProcessCaptionsResData, error) {
	raw, err := loadRaw(req.Captions, req.VttPath)
	if err != nil {
		return nil, err
	}
	captions, err := caption.FromRaw(raw)
	if err != nil {
		return nil, err
	}

	params := s.params(req)
	out, err := s.runPipeline(ctx, captions, params, report)
	if err != nil {
		return nil, err
	}

	return &dto.ProcessCaptionsResData{
		Filtered:  toItems(out.Filtered, nil),
		Slots:     slotItems(out.Slots),
		FramesDir: lo.Ternary(params.VideoPath != "", params.FramesDir, ""),
		Stats:     out.Stats,
	}, nil
}

func (s *Service) params(req dto.ProcessCaptionsReq) pipelineParams {
	opts := s.options()
	p := pipelineParams{
		IntervalSeconds: req.IntervalSeconds,
		MaxIterations:   req.MaxIterations,
		Describe:        req.Describe,
		VideoPath:       req.VideoPath,
		FramesDir:       req.FramesDir,
	}
	if p.IntervalSeconds == 0 {
		p.IntervalSeconds = opts.IntervalSeconds
	}
	if p.MaxIterations <= 0 {
		p.MaxIterations = opts.MaxIterations
	}
	if p.VideoPath != "" && p.FramesDir == "" {
		p.FramesDir = "frames"
	}
	return p
}

func loadRaw(inline []types.RawCaption, vttPath string) ([]types.RawCaption, error) {
	if len(inline) > 0 {
		return inline, nil
	}
	if vttPath == "" {
		return nil, apperrors.NewWithDetail(apperrors.CodeInvalidParams, "Invalid parameters", "captions or vtt_path is required")
	}
	return vtt.ReadFile(vttPath)
}

func (s *Service) runPipeline(ctx context.Context, captions []types.Caption, p pipelineParams, report appcore.ProgressFunc) (*pipelineOutput, error) {
	opts := s.options()
	total := int64(2)
	if p.VideoPath != "" {
		total++
	}
	if p.Describe {
		total++
	}
	var done int64
	step := func(message string) error {
		if err := ctx.Err(); err != nil {
			return apperrors.Wrap(apperrors.CodeJobCanceled, "Job canceled", err)
		}
		if report != nil {
			report(appcore.NewProgress(appcore.JobStageProcessing, done, total, message))
		}
		done++
		return nil
	}

	unique := caption.DropExactDuplicates(captions)

	if err := step("Filtering captions"); err != nil {
		return nil, err
	}
	filtered, err := caption.Filter(unique, p.MaxIterations)
	if err != nil {
		return nil, err
	}

	if err = step("Resampling captions"); err != nil {
		return nil, err
	}
	resampled, err := caption.ResampleSeconds(filtered.Captions, p.IntervalSeconds)
	if err != nil {
		return nil, err
	}
	resampled = caption.AssignFrameNames(resampled, opts.FrameNamePattern)
	slots := lo.Map(resampled, func(c types.Caption, _ int) types.SlotDescription {
		return types.SlotDescription{Slot: c}
	})

	if p.VideoPath != "" {
		if err = step("Extracting frames"); err != nil {
			return nil, err
		}
		if err = s.ExtractFrames(ctx, p.VideoPath, resampled, p.FramesDir); err != nil {
			return nil, err
		}
	}

	if p.Describe {
		if err = step("Generating descriptions"); err != nil {
			return nil, err
		}
		descriptions, err := s.DescribeSlots(ctx, resampled)
		if err != nil {
			return nil, err
		}
		for i := range slots {
			slots[i].Description = descriptions[i]
		}
	}

	stats := computeStats(len(captions), len(unique), filtered, resampled)
	if report != nil {
		report(appcore.NewProgress(appcore.JobStageFinalizing, total, total, "Finalizing"))
	}

	log.GetLogger().Info("caption pipeline finished",
		zap.Int("input", stats.InputCount),
		zap.Int("filtered", stats.FilteredCount),
		zap.Int("iterations", stats.Iterations),
		zap.Int("slots", stats.SlotCount),
		zap.Int("empty_slots", stats.EmptySlotCount))

	return &pipelineOutput{Filtered: filtered.Captions, Slots: slots, Stats: stats}, nil
}

func toItem(c types.Caption, description string) dto.CaptionItem {
	return dto.CaptionItem{
		Start:        caption.FormatMillisClock(c.Start),
		End:          caption.FormatMillisClock(c.End),
		StartSeconds: c.Start.Seconds(),
		EndSeconds:   c.End.Seconds(),
		Text:         c.Text,
		FrameName:    c.FrameName,
		Description:  description,
	}
}

// toItems maps captions to API items; descriptions may be nil or index-aligned.
func toItems(captions []types.Caption, descriptions []string) []dto.CaptionItem {
	return lo.Map(captions, func(c types.Caption, i int) dto.CaptionItem {
		if i < len(descriptions) {
			return toItem(c, descriptions[i])
		}
		return toItem(c, "")
	})
}

func slotItems(slots []types.SlotDescription) []dto.CaptionItem {
	return lo.Map(slots, func(s types.SlotDescription, _ int) dto.CaptionItem {
		return toItem(s.Slot, s.Description)
	})
}

func frameFileName(c types.Caption, index int) string {
	if c.FrameName != "" {
		return c.FrameName + ".png"
	}
	return fmt.Sprintf(caption.DefaultFrameNamePattern+".png", index)
}
