// Package caption holds the pure transformations over caption sequences:
// clock parsing, the convergent dedup filter and the uniform resampler.
package caption

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	apperrors "capgrid/pkg/errors"
)

// HH:MM:SS.fraction, fraction of one to six digits.
var clockRe = regexp.MustCompile(`^(\d{1,2}):(\d{1,2}):(\d{1,2})\.(\d{1,6})$`)

// ParseClock converts an "HH:MM:SS.fff" clock string into an offset from the video start.
func ParseClock(s string) (time.Duration, error) {
	m := clockRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, apperrors.NewWithDetail(apperrors.CodeTimestampParse, "Malformed clock string", fmt.Sprintf("value %q", s))
	}

	hours, _ := strconv.Atoi(m[1])
	minutes, _ := strconv.Atoi(m[2])
	seconds, _ := strconv.Atoi(m[3])
	if minutes > 59 || seconds > 59 {
		return 0, apperrors.NewWithDetail(apperrors.CodeTimestampParse, "Clock field out of range", fmt.Sprintf("value %q", s))
	}

	// right-pad to microseconds: ".5" is 500ms, ".000123" is 123µs
	frac := m[4] + strings.Repeat("0", 6-len(m[4]))
	micros, _ := strconv.Atoi(frac)

	return time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds)*time.Second +
		time.Duration(micros)*time.Microsecond, nil
}

// FormatClock renders d as HH:MM:SS.ffffff, the form ffmpeg accepts for -ss.
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	hours := d / time.Hour
	d -= hours * time.Hour
	minutes := d / time.Minute
	d -= minutes * time.Minute
	seconds := d / time.Second
	d -= seconds * time.Second
	micros := d / time.Microsecond
	return fmt.Sprintf("%02d:%02d:%02d.%06d", int64(hours), int64(minutes), int64(seconds), int64(micros))
}

// FormatMillisClock renders d as HH:MM:SS.mmm, the WebVTT cue notation.
func FormatMillisClock(d time.Duration) string {
	full := FormatClock(d.Truncate(time.Millisecond))
	return full[:len(full)-3]
}
