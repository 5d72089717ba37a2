package caption

import (
	"strings"

	"capgrid/internal/types"
)

// DefaultMaxIterations bounds FilterTimestamps when the caller passes a non-positive limit.
const DefaultMaxIterations = 10

// ReduceOnce runs one dedup pass over an ordered caption sequence.
//
// Interior captions whose text occurs inside either neighbour's text are dropped
// first. The survivors are then swept left to right, dropping any interior one
// whose text occurs inside "prev + ' ' + next" of its current neighbours.
// Finally the original first caption is put back unless its text is already
// contained in the new first element, and the original last caption is always
// appended. The input slice is never modified.
func ReduceOnce(seq []types.Caption) []types.Caption {
	n := len(seq)
	if n == 0 {
		return nil
	}

	kept := make([]types.Caption, 0, n)
	for i := 1; i < n-1; i++ {
		text := seq[i].Text
		if strings.Contains(seq[i-1].Text, text) || strings.Contains(seq[i+1].Text, text) {
			continue
		}
		kept = append(kept, seq[i])
	}
	kept = compactJoined(kept)

	out := make([]types.Caption, 0, len(kept)+2)
	first := seq[0]
	if len(kept) == 0 || !strings.Contains(kept[0].Text, first.Text) {
		out = append(out, first)
	}
	out = append(out, kept...)
	if n > 1 {
		out = append(out, seq[n-1])
	}
	return out
}

// compactJoined drops interior captions contained in the space-joined text of
// their neighbours. prev is always the last survivor, so removals shift context
// exactly as an in-place left-to-right deletion would.
func compactJoined(seq []types.Caption) []types.Caption {
	if len(seq) < 3 {
		return seq
	}

	out := make([]types.Caption, 0, len(seq))
	out = append(out, seq[0])
	for i := 1; i < len(seq)-1; i++ {
		prev := out[len(out)-1]
		next := seq[i+1]
		if strings.Contains(prev.Text+" "+next.Text, seq[i].Text) {
			continue
		}
		out = append(out, seq[i])
	}
	return append(out, seq[len(seq)-1])
}

// FilterTimestamps applies ReduceOnce until a pass returns a sequence equal to
// its input or maxIterations passes have run, and returns the last result.
func FilterTimestamps(seq []types.Caption, maxIterations int) []types.Caption {
	result, _ := filterTimestamps(seq, maxIterations)
	return result
}

// filterTimestamps also reports how many passes ran.
func filterTimestamps(seq []types.Caption, maxIterations int) ([]types.Caption, int) {
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}

	current := seq
	for pass := 1; pass <= maxIterations; pass++ {
		next := ReduceOnce(current)
		if types.CaptionsEqual(next, current) {
			return next, pass
		}
		current = next
	}
	return current, maxIterations
}

// FilterResult is the filter output plus the number of passes it took.
type FilterResult struct {
	Captions   []types.Caption
	Iterations int
	Converged  bool
}

// Filter validates seq and runs the fixed-point driver.
func Filter(seq []types.Caption, maxIterations int) (FilterResult, error) {
	if err := Validate(seq); err != nil {
		return FilterResult{}, err
	}

	captions, passes := filterTimestamps(seq, maxIterations)
	return FilterResult{
		Captions:   captions,
		Iterations: passes,
		Converged:  types.CaptionsEqual(ReduceOnce(captions), captions),
	}, nil
}
