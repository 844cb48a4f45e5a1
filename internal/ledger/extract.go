package ledger

import (
	"fmt"
	"math"
	"strings"
)

// ExtractDay converts one raw day record into canonical entries.
// Records without a usable name, or not classified as done, emit nothing.
// The returned entries carry no IDs, the store assigns those on insert.
func ExtractDay(day RawDay) []Entry {
	sourceDayID := day.SourceDayID
	if sourceDayID == "" {
		sourceDayID = day.Date
	}

	var entries []Entry
	for _, raw := range day.Exercises {
		entries = append(entries, extractExercise(day.Date, sourceDayID, raw)...)
	}
	return entries
}

func extractExercise(date, sourceDayID string, raw RawExercise) []Entry {
	exercise := NormalizeExerciseName(raw.Name)
	if exercise == "" {
		return nil
	}
	if raw.DoneStatus() != StatusDone {
		return nil
	}

	notes := buildNotes(raw)

	base := Entry{
		Date:        date,
		Exercise:    exercise,
		LoadKg:      raw.WeightKg,
		Notes:       notes,
		SourceDayID: sourceDayID,
	}
	if raw.BodyweightKg > 0 {
		base.BodyweightKg = raw.BodyweightKg
	}
	if raw.Sets > 0 {
		base.SetCount = raw.Sets
	}

	var entries []Entry
	switch raw.Goal {
	case GoalReps:
		entries = perSetEntries(base, MetricReps, raw.DoneSets, raw.DoneCount, raw.Sets, raw.Reps)
	case GoalSeconds:
		entries = perSetEntries(base, MetricDuration, raw.DoneSets, raw.DoneCount, raw.Sets, raw.Seconds)
	case GoalEMOM:
		if raw.Minutes > 0 && raw.RepsPerMinute > 0 {
			entry := base
			entry.Metric = MetricReps
			entry.Value = raw.Minutes * raw.RepsPerMinute
			entry.SetIndex = 0
			entries = append(entries, entry)
		}
	case GoalCardio:
		if seconds := MinutesToSeconds(raw.Minutes); seconds > 0 {
			entry := base
			entry.Metric = MetricDuration
			entry.Value = float64(seconds)
			entry.SetIndex = 0
			entries = append(entries, entry)
		}
	}

	// a non-zero external load is recorded on its own, whatever the goal kind
	if raw.WeightKg != 0 {
		loadEntry := base
		loadEntry.Metric = MetricLoad
		loadEntry.Value = math.Abs(raw.WeightKg)
		loadEntry.SetIndex = 0
		entries = append(entries, loadEntry)
	}

	return entries
}

// perSetEntries reconstructs one entry per set position, preferring the
// recorded actual value and falling back to the planned per-set value.
// Sets past the recorded actuals fall back to the plan too: the exercise
// was marked done, so the planned value is assumed to have been met.
// The set total is bounded by done count and plan; recorded actuals
// beyond that bound are ignored.
func perSetEntries(base Entry, metric Metric, actuals []float64, doneCount, plannedSets int, planned float64) []Entry {
	total := doneCount
	if plannedSets > total {
		total = plannedSets
	}
	if total < 1 {
		total = 1
	}

	var entries []Entry
	for i := 0; i < total; i++ {
		value := resolveSetValue(actuals, i, planned)
		if value <= 0 {
			continue
		}
		entry := base
		entry.Metric = metric
		entry.Value = value
		entry.SetIndex = i
		entries = append(entries, entry)
	}
	return entries
}

// resolveSetValue is the prioritized fallback chain for a single set:
// positive recorded actual first, then the positive planned value, else 0.
func resolveSetValue(actuals []float64, setIndex int, planned float64) float64 {
	if setIndex < len(actuals) && actuals[setIndex] > 0 {
		return actuals[setIndex]
	}
	if planned > 0 {
		return planned
	}
	return 0
}

func buildNotes(raw RawExercise) string {
	var parts []string
	if raw.ToFailure {
		parts = append(parts, "to failure")
	}
	if raw.WeightKg != 0 {
		parts = append(parts, fmt.Sprintf("%+gkg", raw.WeightKg))
	}
	return strings.Join(parts, " · ")
}
