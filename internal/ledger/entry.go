package ledger

import (
	"fmt"
)

// Metric is the dimension a single entry records.
type Metric string

const (
	MetricReps     Metric = "reps"
	MetricDuration Metric = "duration"
	MetricLoad     Metric = "load"
)

func (m Metric) String() string {
	return string(m)
}

func (m Metric) IsValid() bool {
	switch m {
	case MetricReps, MetricDuration, MetricLoad:
		return true
	default:
		return false
	}
}

// Unit returns the human-readable unit for the metric,
// used when rendering progress diff messages.
func (m Metric) Unit() string {
	switch m {
	case MetricReps:
		return "reps"
	case MetricDuration:
		return "s"
	case MetricLoad:
		return "kg"
	default:
		return ""
	}
}

// Entry is one canonical recorded measurement: an exercise, on a date,
// at a given set position and external load.
type Entry struct {
	ID           string  `json:"id"`
	Date         string  `json:"date"` // ISO day, e.g. 2024-01-31
	Exercise     string  `json:"exercise"`
	Metric       Metric  `json:"metric"`
	Value        float64 `json:"value"`
	SetIndex     int     `json:"setIndex"`
	SetCount     int     `json:"setCount,omitempty"`
	LoadKg       float64 `json:"loadKg"`
	BodyweightKg float64 `json:"bodyweightKg,omitempty"`
	Notes        string  `json:"notes,omitempty"`
	SourceDayID  string  `json:"sourceDayId"`
}

// IsValid tells whether the entry is storable at all. Zero or negative
// measurements are never kept in the ledger.
func (e Entry) IsValid() bool {
	return e.Exercise != "" &&
		e.Metric.IsValid() &&
		e.Value > 0 &&
		e.SetIndex >= 0
}

// IdentityKey is the composite key enforcing uniqueness:
// (date, exercise, metric, set position, quantized load).
// The load is quantized to 2 decimals, so 12.5 and 12.501 collapse
// into the same logical slot.
func (e Entry) IdentityKey() string {
	return fmt.Sprintf("%s|%s|%s|%d|%.2f", e.Date, e.Exercise, e.Metric, e.SetIndex, e.LoadKg)
}
