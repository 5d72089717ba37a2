package dto

import "capgrid/internal/types"

// CaptionItem is a caption as returned over the API, clocks in HH:MM:SS.fff.
type CaptionItem struct {
	Start        string  `json:"start"`
	End          string  `json:"end"`
	StartSeconds float64 `json:"start_seconds"`
	EndSeconds   float64 `json:"end_seconds"`
	Text         string  `json:"text"`
	FrameName    string  `json:"frame_name,omitempty"`
	Description  string  `json:"description,omitempty"`
}

type FilterCaptionsReq struct {
	Captions      []types.RawCaption `json:"captions"`
	MaxIterations int                `json:"max_iterations"`
}

type FilterCaptionsResData struct {
	Captions   []CaptionItem `json:"captions"`
	Iterations int           `json:"iterations"`
	Converged  bool          `json:"converged"`
}

type ResampleCaptionsReq struct {
	Captions         []types.RawCaption `json:"captions"`
	IntervalSeconds  float64            `json:"interval_seconds"`
	FrameNamePattern string             `json:"frame_name_pattern"`
}

type ResampleCaptionsResData struct {
	Slots []CaptionItem `json:"slots"`
}

// ProcessCaptionsReq runs the whole pipeline. Captions win over VttPath when both are set.
// Frames are extracted only when VideoPath is set.
type ProcessCaptionsReq struct {
	Captions        []types.RawCaption `json:"captions"`
	VttPath         string             `json:"vtt_path"`
	IntervalSeconds float64            `json:"interval_seconds"`
	MaxIterations   int                `json:"max_iterations"`
	Describe        bool               `json:"describe"`
	VideoPath       string             `json:"video_path"`
	FramesDir       string             `json:"frames_dir"`
}

type CaptionStats struct {
	InputCount          int     `json:"input_count"`
	DuplicateCount      int     `json:"duplicate_count"`
	FilteredCount       int     `json:"filtered_count"`
	Iterations          int     `json:"iterations"`
	Converged           bool    `json:"converged"`
	SlotCount           int     `json:"slot_count"`
	EmptySlotCount      int     `json:"empty_slot_count"`
	NeighbourSimilarity float64 `json:"neighbour_similarity"`
}

type ProcessCaptionsResData struct {
	Filtered  []CaptionItem `json:"filtered"`
	Slots     []CaptionItem `json:"slots"`
	FramesDir string        `json:"frames_dir,omitempty"`
	Stats     CaptionStats  `json:"stats"`
}

type CreateCaptionJobResData struct {
	JobId string `json:"job_id"`
}

type CaptionJobResData struct {
	JobId           string        `json:"job_id"`
	Source          string        `json:"source"`
	Status          string        `json:"status"`
	StatusMsg       string        `json:"status_msg"`
	FailReason      string        `json:"fail_reason,omitempty"`
	ProcessPercent  uint8         `json:"process_percent"`
	IntervalSeconds float64       `json:"interval_seconds"`
	MaxIterations   int           `json:"max_iterations"`
	InputCount      int           `json:"input_count"`
	FilteredCount   int           `json:"filtered_count"`
	SlotCount       int           `json:"slot_count"`
	Filtered        []CaptionItem `json:"filtered,omitempty"`
	Slots           []CaptionItem `json:"slots,omitempty"`
	CreateTime      string        `json:"create_time"`
	UpdateTime      string        `json:"update_time"`
}
