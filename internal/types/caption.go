package types

import "time"

// RawCaption is a caption as read from a subtitle file, times still in clock notation.
type RawCaption struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Text  string `json:"text"`
}

// Caption is a timed text interval measured from the start of the video.
// FrameName is a label attached by callers of the resampler, not part of identity.
type Caption struct {
	Start     time.Duration `json:"start"`
	End       time.Duration `json:"end"`
	Text      string        `json:"text"`
	FrameName string        `json:"frame_name,omitempty"`
}

// Equal compares start, end and text.
func (c Caption) Equal(other Caption) bool {
	return c.Start == other.Start && c.End == other.End && c.Text == other.Text
}

// Duration is End - Start.
func (c Caption) Duration() time.Duration {
	return c.End - c.Start
}

// CaptionsEqual reports element-wise Equal over two sequences.
func CaptionsEqual(a, b []Caption) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// SlotDescription pairs a resampled slot with the image description generated for it.
type SlotDescription struct {
	Slot        Caption
	Description string
}
