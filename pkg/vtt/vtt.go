// Package vtt reads WebVTT subtitle files into raw caption triples.
package vtt

import (
	"io"
	"os"
	"regexp"
	"strings"

	"capgrid/internal/caption"
	"capgrid/internal/types"
	apperrors "capgrid/pkg/errors"

	"github.com/asticode/go-astisub"
)

// Inline cue timestamps such as <00:00:03.000> or <01:02.500>, emitted per word
// in auto-generated captions. astisub keeps them in the item text.
var inlineTimestamp = regexp.MustCompile(`<(?:\d+:)?\d{2}:\d{2}\.\d{3}>`)

// ReadFile opens a .vtt file and returns its cues in file order.
func ReadFile(path string) ([]types.RawCaption, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.WrapWithDetail(apperrors.CodeSubtitleNotFound, "Subtitle not found", "path: "+path, err)
		}
		return nil, apperrors.WrapWithDetail(apperrors.CodeSubtitleRead, "Failed to open subtitle", "path: "+path, err)
	}
	defer f.Close()

	raw, err := Read(f)
	if err != nil {
		return nil, apperrors.WrapWithDetail(apperrors.CodeSubtitleRead, "Failed to read subtitle", "path: "+path, err)
	}
	return raw, nil
}

// Read parses WebVTT from r. Markup and inline timestamps are dropped and
// multi-line cue text is joined with single spaces.
func Read(r io.Reader) ([]types.RawCaption, error) {
	subs, err := astisub.ReadFromWebVTT(r)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeSubtitleRead, "Invalid WebVTT", err)
	}

	out := make([]types.RawCaption, 0, len(subs.Items))
	for _, item := range subs.Items {
		out = append(out, types.RawCaption{
			Start: caption.FormatMillisClock(item.StartAt),
			End:   caption.FormatMillisClock(item.EndAt),
			Text:  itemText(item),
		})
	}
	return out, nil
}

func itemText(item *astisub.Item) string {
	var sb strings.Builder
	for i, line := range item.Lines {
		if i > 0 {
			sb.WriteRune(' ')
		}
		for j, li := range line.Items {
			if j > 0 {
				sb.WriteRune(' ')
			}
			sb.WriteString(li.Text)
		}
	}
	text := inlineTimestamp.ReplaceAllString(sb.String(), " ")
	return strings.Join(strings.Fields(text), " ")
}
