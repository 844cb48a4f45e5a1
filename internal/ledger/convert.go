package ledger

import "math"

// MinutesToSeconds converts minutes to whole seconds, rounding to the
// nearest second. Non-finite or non-positive input yields 0.
func MinutesToSeconds(minutes float64) int {
	if math.IsNaN(minutes) || math.IsInf(minutes, 0) || minutes <= 0 {
		return 0
	}
	return int(math.Round(minutes * 60))
}
