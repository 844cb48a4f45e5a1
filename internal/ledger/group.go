package ledger

import "math"

const (
	// DefaultLoadStep quantizes loads into buckets when grouping.
	DefaultLoadStep = 0.5
	// DefaultLoadToleranceKg is the tolerance within which two loads
	// count as "the same set" across sessions. Plates rarely allow the
	// exact same load twice, so exact equality would be useless here.
	DefaultLoadToleranceKg = 2.0
)

// GroupKey identifies one (set position, rounded load) bucket.
type GroupKey struct {
	SetIndex int     `json:"setIndex"`
	LoadKg   float64 `json:"loadKg"`
}

func roundLoad(load, step float64) float64 {
	if step <= 0 {
		step = DefaultLoadStep
	}
	return math.Round(load/step) * step
}

// GroupByPosition buckets entries by (set position, load rounded to step).
func GroupByPosition(entries []Entry, step float64) map[GroupKey][]Entry {
	groups := make(map[GroupKey][]Entry)
	for _, e := range entries {
		key := GroupKey{SetIndex: e.SetIndex, LoadKg: roundLoad(e.LoadKg, step)}
		groups[key] = append(groups[key], e)
	}
	return groups
}

// BestPerGroup restricts entries to one metric and picks the maximum
// value per (set position, rounded load) bucket: the personal record
// for each slot. Ties keep the first-encountered entry.
func BestPerGroup(entries []Entry, metric Metric, step float64) map[GroupKey]Entry {
	best := make(map[GroupKey]Entry)
	for _, e := range entries {
		if e.Metric != metric {
			continue
		}
		key := GroupKey{SetIndex: e.SetIndex, LoadKg: roundLoad(e.LoadKg, step)}
		if current, ok := best[key]; !ok || e.Value > current.Value {
			best[key] = e
		}
	}
	return best
}

// IsComparableLoad reports whether two loads are within toleranceKg of
// each other. Non-positive tolerance falls back to the default 2 kg.
func IsComparableLoad(a, b, toleranceKg float64) bool {
	if toleranceKg <= 0 {
		toleranceKg = DefaultLoadToleranceKg
	}
	return math.Abs(a-b) <= toleranceKg
}
