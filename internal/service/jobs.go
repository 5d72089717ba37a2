package service

import (
	"context"
	"os"
	"time"

	"capgrid/internal/appcore"
	"capgrid/internal/caption"
	"capgrid/internal/dto"
	"capgrid/internal/types"
	"capgrid/log"
	apperrors "capgrid/pkg/errors"
	"capgrid/pkg/vtt"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100

	argVideoPath = "video_path"
	argDescribe  = "describe"
)

// CreateJob persists a queued job for req and hands it to the runner.
// Inline captions are stored with the job; a vtt path is read when the job runs.
func (s *Service) CreateJob(ctx context.Context, req dto.ProcessCaptionsReq) (*dto.CreateCaptionJobResData, error) {
	if s.Jobs == nil {
		return nil, apperrors.NewWithDetail(apperrors.CodeDBError, "Database error", "job store not configured")
	}
	if s.Runner == nil {
		return nil, apperrors.ErrRunnerStopped
	}

	var inputs []types.Caption
	source := req.VttPath
	if len(req.Captions) > 0 {
		parsed, err := caption.FromRaw(req.Captions)
		if err != nil {
			return nil, err
		}
		inputs = parsed
		source = "inline"
	} else if req.VttPath == "" {
		return nil, apperrors.NewWithDetail(apperrors.CodeInvalidParams, "Invalid parameters", "captions or vtt_path is required")
	} else if _, err := os.Stat(req.VttPath); err != nil {
		return nil, apperrors.WrapWithDetail(apperrors.CodeSubtitleNotFound, "Subtitle not found", "path: "+req.VttPath, err)
	}

	params := s.params(req)
	if params.IntervalSeconds <= 0 {
		return nil, apperrors.ErrInvalidInterval
	}

	jobID := uuid.New().String()
	if params.VideoPath != "" && req.FramesDir == "" {
		dir, err := resolveFrameDir(jobID)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CodeUnknown, "Failed to resolve frame directory", err)
		}
		params.FramesDir = dir
	}

	job := &types.CaptionJob{
		JobId:           jobID,
		Source:          source,
		Status:          types.CaptionJobStatusQueued,
		StatusMsg:       "Queued",
		IntervalSeconds: params.IntervalSeconds,
		MaxIterations:   params.MaxIterations,
		InputCount:      len(inputs),
		Records:         records(jobID, types.CaptionRecordKindInput, inputs, nil),
	}
	if err := s.Jobs.SaveJob(job); err != nil {
		return nil, err
	}

	handle, err := s.Runner.Submit(ctx, appcore.JobRequest{
		ID:        jobID,
		InputPath: req.VttPath,
		OutputDir: params.FramesDir,
		Args: map[string]any{
			argVideoPath: params.VideoPath,
			argDescribe:  params.Describe,
		},
	})
	if err != nil {
		s.failJob(job, err)
		return nil, err
	}
	s.track(handle)

	log.GetLogger().Info("caption job created", zap.String("job_id", jobID), zap.String("source", source))
	return &dto.CreateCaptionJobResData{JobId: jobID}, nil
}

// track keeps the handle until its result is delivered so DeleteJob can cancel it.
func (s *Service) track(handle appcore.JobHandle) {
	s.handles.Store(handle.ID(), handle)
	go func() {
		for range handle.Result() {
		}
		s.handles.Delete(handle.ID())
	}()
}

// RunJob executes a stored job. It is the appcore.JobFunc given to runners.
func (s *Service) RunJob(ctx context.Context, req appcore.JobRequest, report appcore.ProgressFunc) (appcore.JobResult, error) {
	result := appcore.JobResult{JobID: req.ID, StartedAt: time.Now()}

	job, err := s.Jobs.GetJob(req.ID)
	if err != nil {
		return result, err
	}
	inputs := lo.Map(job.RecordsOfKind(types.CaptionRecordKindInput), func(r types.CaptionRecord, _ int) types.Caption {
		return r.Caption()
	})

	job.Status = types.CaptionJobStatusProcessing
	job.StatusMsg = "Processing"
	job.FailReason = ""
	s.saveStatus(job)

	if len(inputs) == 0 {
		raw, err := vtt.ReadFile(req.InputPath)
		if err != nil {
			s.abortJob(ctx, job, err)
			return result, err
		}
		if inputs, err = caption.FromRaw(raw); err != nil {
			s.abortJob(ctx, job, err)
			return result, err
		}
	}

	params := pipelineParams{
		IntervalSeconds: job.IntervalSeconds,
		MaxIterations:   job.MaxIterations,
		Describe:        req.ArgBool(argDescribe),
		VideoPath:       req.ArgString(argVideoPath),
		FramesDir:       req.OutputDir,
	}
	out, err := s.runPipeline(ctx, inputs, params, func(p appcore.JobProgress) {
		job.ProcessPct = uint8(p.Percent)
		job.StatusMsg = p.Message
		s.saveStatus(job)
		if report != nil {
			report(p)
		}
	})
	if err != nil {
		s.abortJob(ctx, job, err)
		return result, err
	}

	slots := lo.Map(out.Slots, func(sd types.SlotDescription, _ int) types.Caption { return sd.Slot })
	descriptions := lo.Map(out.Slots, func(sd types.SlotDescription, _ int) string { return sd.Description })

	job.Records = append(records(job.JobId, types.CaptionRecordKindInput, inputs, nil),
		records(job.JobId, types.CaptionRecordKindFiltered, out.Filtered, nil)...)
	job.Records = append(job.Records, records(job.JobId, types.CaptionRecordKindResampled, slots, descriptions)...)
	job.Status = types.CaptionJobStatusSuccess
	job.StatusMsg = "Completed"
	job.ProcessPct = 100
	job.InputCount = out.Stats.InputCount
	job.FilteredCount = out.Stats.FilteredCount
	job.SlotCount = out.Stats.SlotCount
	if err = s.Jobs.SaveJob(job); err != nil {
		return result, err
	}

	result.OutputPath = params.FramesDir
	if params.VideoPath != "" {
		result.Artifacts = map[string]string{"frames_dir": params.FramesDir}
	}
	result.FinishedAt = time.Now()
	return result, nil
}

func (s *Service) saveStatus(job *types.CaptionJob) {
	snapshot := *job
	snapshot.Records = nil
	if err := s.Jobs.SaveJob(&snapshot); err != nil {
		log.GetLogger().Error("save job status failed", zap.String("job_id", job.JobId), zap.Error(err))
	}
	job.Id = snapshot.Id
}

// abortJob records a failure unless the job was canceled, in which case it may
// already be deleted and must not be written back. Jobs interrupted by shutdown
// stay processing until RecoverStaleJobs runs.
func (s *Service) abortJob(ctx context.Context, job *types.CaptionJob, err error) {
	if ctx.Err() != nil {
		log.GetLogger().Warn("caption job canceled", zap.String("job_id", job.JobId), zap.Error(err))
		return
	}
	s.failJob(job, err)
}

func (s *Service) failJob(job *types.CaptionJob, err error) {
	job.Status = types.CaptionJobStatusFailed
	job.FailReason = err.Error()
	job.StatusMsg = "Failed"
	s.saveStatus(job)
	log.GetLogger().Error("caption job failed", zap.String("job_id", job.JobId), zap.Error(err))
}

func (s *Service) GetJob(jobID string) (*dto.CaptionJobResData, error) {
	if s.Jobs == nil {
		return nil, apperrors.ErrDBError
	}
	job, err := s.Jobs.GetJob(jobID)
	if err != nil {
		return nil, err
	}
	res := jobView(*job)
	res.Filtered = recordItems(job.RecordsOfKind(types.CaptionRecordKindFiltered))
	res.Slots = recordItems(job.RecordsOfKind(types.CaptionRecordKindResampled))
	return &res, nil
}

// JobHistory lists recent jobs, newest first, without their captions.
func (s *Service) JobHistory(limit int) ([]dto.CaptionJobResData, error) {
	if s.Jobs == nil {
		return nil, apperrors.ErrDBError
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	limit = lo.Min([]int{limit, maxHistoryLimit})

	jobs, err := s.Jobs.GetJobHistory(limit)
	if err != nil {
		return nil, err
	}
	return lo.Map(jobs, func(j types.CaptionJob, _ int) dto.CaptionJobResData { return jobView(j) }), nil
}

// DeleteJob cancels the job if it is still running and removes it with its artifacts.
func (s *Service) DeleteJob(jobID string) error {
	if s.Jobs == nil {
		return apperrors.ErrDBError
	}
	if _, err := s.Jobs.GetJob(jobID); err != nil {
		return err
	}
	if h, ok := s.handles.LoadAndDelete(jobID); ok {
		if err := h.(appcore.JobHandle).Cancel(); err != nil {
			log.GetLogger().Warn("cancel job failed", zap.String("job_id", jobID), zap.Error(err))
		}
	}
	if err := s.Jobs.DeleteJob(jobID); err != nil {
		return err
	}

	if dir, err := resolveJobDir(jobID); err == nil {
		if inside, _ := isInsideJobRoot(dir); inside {
			_ = os.RemoveAll(dir)
		}
	}
	log.GetLogger().Info("caption job deleted", zap.String("job_id", jobID))
	return nil
}

// RecoverStaleJobs fails jobs left processing by a previous process.
func (s *Service) RecoverStaleJobs() {
	if s.Jobs == nil {
		return
	}
	n, err := s.Jobs.MarkStaleJobs()
	if err != nil {
		log.GetLogger().Error("mark stale jobs failed", zap.Error(err))
		return
	}
	if n > 0 {
		log.GetLogger().Warn("stale jobs marked failed", zap.Int64("count", n))
	}
}

func records(jobID, kind string, captions []types.Caption, descriptions []string) []types.CaptionRecord {
	return lo.Map(captions, func(c types.Caption, i int) types.CaptionRecord {
		r := types.NewCaptionRecord(jobID, kind, i, c)
		if i < len(descriptions) {
			r.Description = descriptions[i]
		}
		return r
	})
}

func recordItems(rs []types.CaptionRecord) []dto.CaptionItem {
	return lo.Map(rs, func(r types.CaptionRecord, _ int) dto.CaptionItem {
		return toItem(r.Caption(), r.Description)
	})
}

func jobView(j types.CaptionJob) dto.CaptionJobResData {
	return dto.CaptionJobResData{
		JobId:           j.JobId,
		Source:          j.Source,
		Status:          types.CaptionJobStatusText(j.Status),
		StatusMsg:       j.StatusMsg,
		FailReason:      j.FailReason,
		ProcessPercent:  j.ProcessPct,
		IntervalSeconds: j.IntervalSeconds,
		MaxIterations:   j.MaxIterations,
		InputCount:      j.InputCount,
		FilteredCount:   j.FilteredCount,
		SlotCount:       j.SlotCount,
		CreateTime:      j.CreateTime.Format(time.RFC3339),
		UpdateTime:      j.UpdateTime.Format(time.RFC3339),
	}
}
