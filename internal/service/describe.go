package service

import (
	"context"
	"path/filepath"
	"strings"

	"capgrid/internal/types"
	"capgrid/log"
	apperrors "capgrid/pkg/errors"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DescribeSlots returns one description per slot, index-aligned. Slots with
// blank text get an empty description without calling the describer.
func (s *Service) DescribeSlots(ctx context.Context, slots []types.Caption) ([]string, error) {
	if s.Describer == nil {
		return nil, apperrors.NewWithDetail(apperrors.CodeDescribeFailed, "Description generation failed", "describer not configured")
	}

	descriptions := make([]string, len(slots))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.options().DescribeConcurrency)

	for i, slot := range slots {
		if strings.TrimSpace(slot.Text) == "" {
			continue
		}
		i, text := i, slot.Text
		g.Go(func() error {
			desc, err := s.Describer.Describe(gctx, text)
			if err != nil {
				log.GetLogger().Error("describe slot failed", zap.Int("slot", i), zap.Error(err))
				return err
			}
			descriptions[i] = desc
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if apperrors.GetCode(err) != apperrors.CodeUnknown {
			return nil, err
		}
		return nil, apperrors.Wrap(apperrors.CodeDescribeFailed, "Description generation failed", err)
	}
	return descriptions, nil
}

// ExtractFrames writes one <frame_name>.png per slot into dir, grabbed at the slot start.
func (s *Service) ExtractFrames(ctx context.Context, videoPath string, slots []types.Caption, dir string) error {
	if s.Frames == nil {
		return apperrors.ErrFfmpegNotFound
	}
	for i, slot := range slots {
		if err := ctx.Err(); err != nil {
			return apperrors.Wrap(apperrors.CodeJobCanceled, "Job canceled", err)
		}
		out := filepath.Join(dir, frameFileName(slot, i))
		if err := s.Frames.ExtractFrame(ctx, videoPath, slot.Start, out); err != nil {
			return err
		}
	}
	log.GetLogger().Info("frames extracted", zap.String("video", videoPath), zap.String("dir", dir), zap.Int("count", len(slots)))
	return nil
}
