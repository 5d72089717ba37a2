package caption

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"capgrid/internal/types"
	apperrors "capgrid/pkg/errors"
)

// SecondsToDuration converts fractional seconds to the nearest nanosecond,
// saturating at the range of time.Duration.
func SecondsToDuration(seconds float64) time.Duration {
	ns := math.Round(seconds * float64(time.Second))
	switch {
	case ns >= math.MaxInt64:
		return time.Duration(math.MaxInt64)
	case ns <= math.MinInt64:
		return time.Duration(math.MinInt64)
	}
	return time.Duration(ns)
}

// ResampleSeconds is Resample with the interval given in seconds. Finite
// intervals beyond the Duration range give a single slot; positive intervals
// below one nanosecond are raised to one nanosecond.
func ResampleSeconds(captions []types.Caption, intervalSeconds float64) ([]types.Caption, error) {
	if math.IsNaN(intervalSeconds) || math.IsInf(intervalSeconds, 0) || intervalSeconds <= 0 {
		return nil, apperrors.NewWithDetail(apperrors.CodeInvalidInterval, "Resample interval must be positive", fmt.Sprintf("interval %v", intervalSeconds))
	}
	interval := SecondsToDuration(intervalSeconds)
	if interval < time.Nanosecond {
		interval = time.Nanosecond
	}
	return Resample(captions, interval)
}

// Resample re-buckets captions onto a grid of equal slots starting at zero and
// covering captions.last.End - captions.first.Start. The final slot ends exactly
// on that total and may be shorter than interval. Each slot carries the longest
// '.'-delimited phrase of the captions bracketing its start; see slotText.
func Resample(captions []types.Caption, interval time.Duration) ([]types.Caption, error) {
	if err := Validate(captions); err != nil {
		return nil, err
	}
	if interval <= 0 {
		return nil, apperrors.NewWithDetail(apperrors.CodeInvalidInterval, "Resample interval must be positive", fmt.Sprintf("interval %s", interval))
	}

	bounds := gridBoundaries(captions[len(captions)-1].End-captions[0].Start, interval)
	slots := make([]types.Caption, len(bounds)-1)
	for i := range slots {
		slots[i] = types.Caption{Start: bounds[i], End: bounds[i+1]}
		if text, ok := slotText(captions, slots[i].Start); ok {
			slots[i].Text = longestPhrase(text)
		}
	}
	return slots, nil
}

// gridBoundaries returns 0, step, 2*step, ... below total, then total itself.
// Each boundary is k*step in integer nanoseconds so nothing accumulates.
// total and step must be positive.
func gridBoundaries(total, step time.Duration) []time.Duration {
	count := int64(total / step)
	if total%step != 0 {
		count++
	}
	bounds := make([]time.Duration, 0, count+1)
	for k := int64(0); k < count; k++ {
		bounds = append(bounds, time.Duration(k)*step)
	}
	return append(bounds, total)
}

// slotText picks the candidate text for a slot starting at start: the joined text
// of the first consecutive pair whose starts bracket it, else the first caption's
// text when the slot begins before every caption or there is only one caption.
// ok is false when neither applies and the slot keeps empty text.
func slotText(captions []types.Caption, start time.Duration) (string, bool) {
	for i := 0; i+1 < len(captions); i++ {
		if captions[i].Start <= start && start <= captions[i+1].Start {
			return captions[i].Text + " " + captions[i+1].Text, true
		}
	}
	if len(captions) == 1 || start < captions[0].Start {
		return captions[0].Text, true
	}
	return "", false
}

// longestPhrase splits on '.' and returns the longest piece by rune count,
// the earliest one on ties.
func longestPhrase(text string) string {
	best := ""
	bestLen := 0
	for _, phrase := range strings.Split(text, ".") {
		if l := utf8.RuneCountInString(phrase); l > bestLen {
			best, bestLen = phrase, l
		}
	}
	return best
}

// AssignFrameNames returns copies of slots labelled with pattern formatted by index,
// "%04d_0000" when pattern is empty.
func AssignFrameNames(slots []types.Caption, pattern string) []types.Caption {
	if strings.TrimSpace(pattern) == "" {
		pattern = DefaultFrameNamePattern
	}
	out := make([]types.Caption, len(slots))
	for i, s := range slots {
		s.FrameName = fmt.Sprintf(pattern, i)
		out[i] = s
	}
	return out
}

const DefaultFrameNamePattern = "%04d_0000"
