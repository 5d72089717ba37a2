package caption

import (
	"fmt"

	"capgrid/internal/types"
	apperrors "capgrid/pkg/errors"

	"github.com/samber/lo"
)

// FromRaw parses clock strings of every raw triple. Text is kept verbatim.
func FromRaw(raw []types.RawCaption) ([]types.Caption, error) {
	out := make([]types.Caption, 0, len(raw))
	for i, r := range raw {
		start, err := ParseClock(r.Start)
		if err != nil {
			return nil, apperrors.WrapWithDetail(apperrors.CodeTimestampParse, "Malformed caption start", fmt.Sprintf("caption %d", i), err)
		}
		end, err := ParseClock(r.End)
		if err != nil {
			return nil, apperrors.WrapWithDetail(apperrors.CodeTimestampParse, "Malformed caption end", fmt.Sprintf("caption %d", i), err)
		}
		out = append(out, types.Caption{Start: start, End: end, Text: r.Text})
	}
	return out, nil
}

// ToRaw is the inverse of FromRaw using millisecond clocks.
func ToRaw(captions []types.Caption) []types.RawCaption {
	return lo.Map(captions, func(c types.Caption, _ int) types.RawCaption {
		return types.RawCaption{
			Start: FormatMillisClock(c.Start),
			End:   FormatMillisClock(c.End),
			Text:  c.Text,
		}
	})
}

// Validate rejects sequences the filter and resampler must not be given:
// empty input, intervals with end <= start and starts going backwards.
func Validate(captions []types.Caption) error {
	if len(captions) == 0 {
		return apperrors.ErrEmptySequence
	}
	for i, c := range captions {
		if c.Start < 0 {
			return apperrors.NewWithDetail(apperrors.CodeInvalidCaption, "Caption starts before the video", fmt.Sprintf("caption %d", i))
		}
		if c.End <= c.Start {
			return apperrors.NewWithDetail(apperrors.CodeInvalidCaption, "Caption end must be after start", fmt.Sprintf("caption %d: %s -> %s", i, c.Start, c.End))
		}
		if i > 0 && c.Start < captions[i-1].Start {
			return apperrors.NewWithDetail(apperrors.CodeInvalidCaption, "Captions are not ordered by start", fmt.Sprintf("caption %d", i))
		}
	}
	return nil
}

// DropExactDuplicates removes repeated (start, end, text) triples, keeping first occurrences in order.
func DropExactDuplicates(captions []types.Caption) []types.Caption {
	return lo.UniqBy(captions, func(c types.Caption) types.Caption {
		return types.Caption{Start: c.Start, End: c.End, Text: c.Text}
	})
}
