package ledger

import "sort"

// CompareReason classifies why a set pairing is not comparable.
type CompareReason string

const (
	ReasonLoadMismatch   CompareReason = "load-mismatch"
	ReasonMissingPrev    CompareReason = "missing-prev"
	ReasonMissingCurrent CompareReason = "missing-current"
)

// SetComparison is the outcome for one set position pairing attempt.
type SetComparison struct {
	SetIndex   int           `json:"setIndex"`
	Current    *Entry        `json:"current"`
	Previous   *Entry        `json:"previous"`
	Comparable bool          `json:"comparable"`
	Reason     CompareReason `json:"reason,omitempty"`
	Delta      *float64      `json:"delta,omitempty"`
	Pct        *float64      `json:"pct,omitempty"`
}

// CompareBySet pairs a day's entries against a previous session's
// entries per set position, under the load tolerance. Candidates within
// a position are consumed in load-ascending order; every previous entry
// is consumed at most once. Previous entries left unpaired are reported
// as missing-current.
func CompareBySet(current, previous []Entry, toleranceKg float64) []SetComparison {
	currentByPos := indexBySetPosition(current)
	previousByPos := indexBySetPosition(previous)

	positions := make(map[int]bool)
	for pos := range currentByPos {
		positions[pos] = true
	}
	for pos := range previousByPos {
		positions[pos] = true
	}
	orderedPositions := make([]int, 0, len(positions))
	for pos := range positions {
		orderedPositions = append(orderedPositions, pos)
	}
	sort.Ints(orderedPositions)

	var results []SetComparison
	for _, pos := range orderedPositions {
		prevCandidates := previousByPos[pos]
		used := make([]bool, len(prevCandidates))

		for _, cur := range currentByPos[pos] {
			cur := cur
			result := SetComparison{SetIndex: pos, Current: &cur}

			matched := -1
			for i := range prevCandidates {
				if used[i] {
					continue
				}
				if IsComparableLoad(cur.LoadKg, prevCandidates[i].LoadKg, toleranceKg) {
					matched = i
					break
				}
			}

			if matched >= 0 {
				used[matched] = true
				prev := prevCandidates[matched]
				result.Previous = &prev
				result.Comparable = true
				delta := cur.Value - prev.Value
				result.Delta = &delta
				if prev.Value != 0 {
					pct := delta / prev.Value * 100
					result.Pct = &pct
				}
			} else {
				result.Comparable = false
				if len(prevCandidates) > 0 {
					result.Reason = ReasonLoadMismatch
					// attach the smallest-load unused candidate as context
					for i := range prevCandidates {
						if !used[i] {
							used[i] = true
							prev := prevCandidates[i]
							result.Previous = &prev
							break
						}
					}
				} else {
					result.Reason = ReasonMissingPrev
				}
			}

			results = append(results, result)
		}

		// previous sets that no current set consumed: absent today
		for i := range prevCandidates {
			if used[i] {
				continue
			}
			prev := prevCandidates[i]
			results = append(results, SetComparison{
				SetIndex:   pos,
				Previous:   &prev,
				Comparable: false,
				Reason:     ReasonMissingCurrent,
			})
		}
	}

	return results
}

// indexBySetPosition groups entries by set position, each position's
// candidates sorted by load ascending for deterministic pairing.
func indexBySetPosition(entries []Entry) map[int][]Entry {
	byPos := make(map[int][]Entry)
	for _, e := range entries {
		byPos[e.SetIndex] = append(byPos[e.SetIndex], e)
	}
	for pos := range byPos {
		candidates := byPos[pos]
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].LoadKg < candidates[j].LoadKg
		})
		byPos[pos] = candidates
	}
	return byPos
}
