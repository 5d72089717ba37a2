package storage

import (
	"errors"

	"capgrid/internal/types"
	apperrors "capgrid/pkg/errors"

	"gorm.io/gorm"
)

// JobStore keeps caption jobs and their output records in sqlite.
type JobStore struct {
	db *gorm.DB
}

// NewJobStore uses db, or the global DB when db is nil.
func NewJobStore(db *gorm.DB) *JobStore {
	if db == nil {
		db = DB
	}
	return &JobStore{db: db}
}

var _ types.JobStore = (*JobStore)(nil)

func (s *JobStore) ready() error {
	if s == nil || s.db == nil {
		return apperrors.NewWithDetail(apperrors.CodeDBError, "Database error", "database not initialized")
	}
	return nil
}

// SaveJob upserts job by JobId. When job carries records they replace the stored ones.
func (s *JobStore) SaveJob(job *types.CaptionJob) error {
	if err := s.ready(); err != nil {
		return err
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var existing types.CaptionJob
		result := tx.Where("job_id = ?", job.JobId).First(&existing)
		switch {
		case result.Error == nil:
			job.Id = existing.Id
			job.CreateTime = existing.CreateTime
			if err := tx.Omit("Records").Save(job).Error; err != nil {
				return err
			}
		case errors.Is(result.Error, gorm.ErrRecordNotFound):
			if err := tx.Omit("Records").Create(job).Error; err != nil {
				return err
			}
		default:
			return result.Error
		}

		if len(job.Records) == 0 {
			return nil
		}
		if err := tx.Where("job_id = ?", job.JobId).Delete(&types.CaptionRecord{}).Error; err != nil {
			return err
		}
		for i := range job.Records {
			job.Records[i].Id = 0
			job.Records[i].JobId = job.JobId
		}
		return tx.Create(&job.Records).Error
	})
	if err != nil {
		return apperrors.Wrap(apperrors.CodeDBError, "Failed to save caption job", err)
	}
	return nil
}

func (s *JobStore) GetJob(jobID string) (*types.CaptionJob, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	var job types.CaptionJob
	err := s.db.Preload("Records", orderRecords).Where("job_id = ?", jobID).First(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewWithDetail(apperrors.CodeJobNotFound, "Caption job not found", "job_id: "+jobID)
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDBError, "Failed to load caption job", err)
	}
	return &job, nil
}

// GetJobHistory lists the newest jobs first, without their records.
func (s *JobStore) GetJobHistory(limit int) ([]types.CaptionJob, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	var jobs []types.CaptionJob
	if err := s.db.Order("create_time desc").Order("id desc").Limit(limit).Find(&jobs).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDBError, "Failed to list caption jobs", err)
	}
	return jobs, nil
}

func (s *JobStore) DeleteJob(jobID string) error {
	if err := s.ready(); err != nil {
		return err
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("job_id = ?", jobID).Delete(&types.CaptionRecord{}).Error; err != nil {
			return err
		}
		return tx.Where("job_id = ?", jobID).Delete(&types.CaptionJob{}).Error
	})
	if err != nil {
		return apperrors.Wrap(apperrors.CodeDBError, "Failed to delete caption job", err)
	}
	return nil
}

// MarkStaleJobs fails every job left processing by a previous run.
func (s *JobStore) MarkStaleJobs() (int64, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}
	result := s.db.Model(&types.CaptionJob{}).
		Where("status = ?", types.CaptionJobStatusProcessing).
		Updates(map[string]interface{}{
			"status":      types.CaptionJobStatusFailed,
			"fail_reason": "Job interrupted by server restart",
			"status_msg":  "Interrupted",
		})
	return result.RowsAffected, result.Error
}

func orderRecords(db *gorm.DB) *gorm.DB {
	return db.Order("kind asc").Order("seq asc")
}
