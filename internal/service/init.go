package service

import (
	"sync"
	"time"

	"capgrid/config"
	"capgrid/internal/appcore"
	"capgrid/internal/caption"
	"capgrid/internal/deps"
	"capgrid/internal/storage"
	"capgrid/internal/types"
	"capgrid/log"
	"capgrid/pkg/ffmpeg"
	"capgrid/pkg/openai"

	"go.uber.org/zap"
)

// Options are the pipeline defaults applied when a request leaves a field zero.
type Options struct {
	IntervalSeconds     float64
	MaxIterations       int
	FrameNamePattern    string
	DescribeConcurrency int
}

func OptionsFromConfig(c config.Config) Options {
	return Options{
		IntervalSeconds:     c.App.IntervalSeconds,
		MaxIterations:       c.App.MaxIterations,
		FrameNamePattern:    c.App.FrameNamePattern,
		DescribeConcurrency: c.Describe.Concurrency,
	}
}

func DefaultOptions() Options {
	return Options{
		IntervalSeconds:     10,
		MaxIterations:       caption.DefaultMaxIterations,
		FrameNamePattern:    caption.DefaultFrameNamePattern,
		DescribeConcurrency: 2,
	}
}

type Service struct {
	Describer types.Describer
	Frames    types.FrameExtractor
	Jobs      types.JobStore
	Runner    appcore.Runner
	Options   Options

	handles sync.Map // job id -> appcore.JobHandle
}

// NewService wires collaborators from config.Conf. Runner is left for the caller
// because the runner itself needs the service's RunJob.
func NewService() *Service {
	svc := &Service{
		Jobs:    storage.NewJobStore(storage.DB),
		Options: OptionsFromConfig(config.Conf),
	}

	ffmpegPath, err := deps.ResolveFfmpeg(config.Conf.Frames.FfmpegPath)
	if err != nil {
		log.GetLogger().Warn("ffmpeg unavailable, frame extraction will fail", zap.Error(err))
		ffmpegPath = config.Conf.Frames.FfmpegPath
	}
	svc.Frames = ffmpeg.NewExtractor(ffmpegPath)

	if config.Conf.Describe.Enabled {
		svc.Describer = openai.NewClient(
			config.Conf.Describe.BaseUrl,
			config.Conf.Describe.ApiKey,
			openai.WithModel(config.Conf.Describe.Model),
			openai.WithRetry(config.Conf.Describe.MaxRetries, time.Duration(config.Conf.Describe.RetryWaitSeconds)*time.Second),
		)
	}
	log.GetLogger().Info("service initialized",
		zap.Bool("describe", svc.Describer != nil),
		zap.String("ffmpeg", ffmpegPath),
		zap.Float64("interval_seconds", svc.Options.IntervalSeconds))

	return svc
}

func (s *Service) options() Options {
	o := s.Options
	d := DefaultOptions()
	if o.IntervalSeconds == 0 {
		o.IntervalSeconds = d.IntervalSeconds
	}
	if o.MaxIterations <= 0 {
		o.MaxIterations = d.MaxIterations
	}
	if o.FrameNamePattern == "" {
		o.FrameNamePattern = d.FrameNamePattern
	}
	if o.DescribeConcurrency <= 0 {
		o.DescribeConcurrency = d.DescribeConcurrency
	}
	return o
}
