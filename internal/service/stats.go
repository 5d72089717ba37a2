package service

import (
	"strings"

	"capgrid/internal/caption"
	"capgrid/internal/dto"
	"capgrid/internal/types"

	"github.com/samber/lo"
	"github.com/texttheater/golang-levenshtein/levenshtein"
)

func computeStats(inputCount, uniqueCount int, filtered caption.FilterResult, slots []types.Caption) dto.CaptionStats {
	return dto.CaptionStats{
		InputCount:     inputCount,
		DuplicateCount: inputCount - uniqueCount,
		FilteredCount:  len(filtered.Captions),
		Iterations:     filtered.Iterations,
		Converged:      filtered.Converged,
		SlotCount:      len(slots),
		EmptySlotCount: lo.CountBy(slots, func(c types.Caption) bool {
			return strings.TrimSpace(c.Text) == ""
		}),
		NeighbourSimilarity: NeighbourSimilarity(filtered.Captions),
	}
}

// NeighbourSimilarity is the mean Levenshtein ratio of adjacent caption texts,
// 0 for fewer than two captions. High values mean rolling overlap survived the filter.
func NeighbourSimilarity(captions []types.Caption) float64 {
	if len(captions) < 2 {
		return 0
	}
	var sum float64
	for i := 1; i < len(captions); i++ {
		sum += levenshtein.RatioForStrings([]rune(captions[i-1].Text), []rune(captions[i].Text), levenshtein.DefaultOptions)
	}
	return sum / float64(len(captions)-1)
}
