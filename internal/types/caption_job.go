package types

import "time"

const (
	CaptionJobStatusQueued     uint8 = 0
	CaptionJobStatusProcessing uint8 = 1
	CaptionJobStatusSuccess    uint8 = 2
	CaptionJobStatusFailed     uint8 = 3
)

// CaptionJobStatusText names a job status for API output.
func CaptionJobStatusText(status uint8) string {
	switch status {
	case CaptionJobStatusQueued:
		return "queued"
	case CaptionJobStatusProcessing:
		return "processing"
	case CaptionJobStatusSuccess:
		return "succeeded"
	case CaptionJobStatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

const (
	CaptionRecordKindInput     = "input"
	CaptionRecordKindFiltered  = "filtered"
	CaptionRecordKindResampled = "resampled"
)

// CaptionJob is the persisted state of one asynchronous caption processing run.
type CaptionJob struct {
	Id              uint64          `json:"-" gorm:"primaryKey;autoIncrement"`
	JobId           string          `json:"job_id" gorm:"uniqueIndex;size:64"`
	Source          string          `json:"source"`
	Status          uint8           `json:"status" gorm:"index"`
	StatusMsg       string          `json:"status_msg"`
	ProcessPct      uint8           `json:"process_pct"`
	FailReason      string          `json:"fail_reason"`
	IntervalSeconds float64         `json:"interval_seconds"`
	MaxIterations   int             `json:"max_iterations"`
	InputCount      int             `json:"input_count"`
	FilteredCount   int             `json:"filtered_count"`
	SlotCount       int             `json:"slot_count"`
	Records         []CaptionRecord `json:"records" gorm:"foreignKey:JobId;references:JobId;constraint:OnDelete:CASCADE"`
	CreateTime      time.Time       `json:"create_time" gorm:"autoCreateTime"`
	UpdateTime      time.Time       `json:"update_time" gorm:"autoUpdateTime"`
}

// CaptionRecord is one caption of a job's filtered or resampled output.
type CaptionRecord struct {
	Id          uint64 `json:"-" gorm:"primaryKey;autoIncrement"`
	JobId       string `json:"job_id" gorm:"index;size:64"`
	Kind        string `json:"kind" gorm:"size:16"`
	Seq         int    `json:"seq"`
	StartUs     int64  `json:"start_us"`
	EndUs       int64  `json:"end_us"`
	Text        string `json:"text"`
	FrameName   string `json:"frame_name"`
	Description string `json:"description"`
}

// RecordsOfKind returns the records of one kind, in stored order.
func (j *CaptionJob) RecordsOfKind(kind string) []CaptionRecord {
	var out []CaptionRecord
	for _, r := range j.Records {
		if r.Kind == kind {
			out = append(out, r)
		}
	}
	return out
}

// NewCaptionRecord stores c at microsecond precision.
func NewCaptionRecord(jobID, kind string, seq int, c Caption) CaptionRecord {
	return CaptionRecord{
		JobId:     jobID,
		Kind:      kind,
		Seq:       seq,
		StartUs:   c.Start.Microseconds(),
		EndUs:     c.End.Microseconds(),
		Text:      c.Text,
		FrameName: c.FrameName,
	}
}

func (r CaptionRecord) Caption() Caption {
	return Caption{
		Start:     time.Duration(r.StartUs) * time.Microsecond,
		End:       time.Duration(r.EndUs) * time.Microsecond,
		Text:      r.Text,
		FrameName: r.FrameName,
	}
}
