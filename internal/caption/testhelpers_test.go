package caption

import (
	"time"

	"capgrid/internal/types"
)

func secs(s float64) time.Duration {
	return SecondsToDuration(s)
}

func mk(start, end float64, text string) types.Caption {
	return types.Caption{Start: secs(start), End: secs(end), Text: text}
}

// seqOf builds one-second captions in order, one per text.
func seqOf(texts ...string) []types.Caption {
	out := make([]types.Caption, len(texts))
	for i, text := range texts {
		out[i] = mk(float64(i), float64(i)+1.5, text)
	}
	return out
}

func texts(captions []types.Caption) []string {
	out := make([]string, len(captions))
	for i, c := range captions {
		out[i] = c.Text
	}
	return out
}
