package ffmpeg

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"capgrid/internal/caption"
	"capgrid/log"
	apperrors "capgrid/pkg/errors"

	"go.uber.org/zap"
)

type runFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

// Extractor grabs still frames with the ffmpeg binary at Path.
type Extractor struct {
	Path string
	run  runFunc
}

func NewExtractor(path string) *Extractor {
	if path == "" {
		path = "ffmpeg"
	}
	return &Extractor{Path: path, run: combinedOutput}
}

func combinedOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// FrameArgs seeks before the input so only one frame is decoded.
func FrameArgs(videoPath string, at time.Duration, outputPath string) []string {
	return []string{
		"-hide_banner",
		"-y",
		"-ss", caption.FormatClock(at),
		"-i", videoPath,
		"-vframes", "1",
		outputPath,
	}
}

// ExtractFrame writes the frame shown at offset at into outputPath.
func (e *Extractor) ExtractFrame(ctx context.Context, videoPath string, at time.Duration, outputPath string) error {
	if _, err := os.Stat(videoPath); err != nil {
		return apperrors.WrapWithDetail(apperrors.CodeVideoNotFound, "Video not found", "path: "+videoPath, err)
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return apperrors.Wrap(apperrors.CodeFrameExtract, "Failed to create frame directory", err)
	}

	output, err := e.run(ctx, e.Path, FrameArgs(videoPath, at, outputPath)...)
	if err != nil {
		log.GetLogger().Error("extract frame failed", zap.Error(err), zap.String("video", videoPath), zap.Duration("at", at), zap.String("output", string(output)))
		return apperrors.WrapWithDetail(apperrors.CodeFrameExtract, "Frame extraction failed", "output: "+outputPath, err)
	}
	return nil
}
