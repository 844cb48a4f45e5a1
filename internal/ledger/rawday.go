package ledger

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// GoalKind discriminates how a raw exercise record is turned into entries.
type GoalKind string

const (
	GoalReps    GoalKind = "reps"
	GoalSeconds GoalKind = "seconds"
	GoalEMOM    GoalKind = "emom"
	GoalCardio  GoalKind = "cardio"
)

func (g GoalKind) IsValid() bool {
	switch g {
	case GoalReps, GoalSeconds, GoalEMOM, GoalCardio:
		return true
	default:
		return false
	}
}

// FlexBool is a tri-state boolean that accepts the JSON forms the mobile
// clients have historically sent for the "done" flag: booleans, numbers
// (non-zero is true) and strings ("true", "1", "yes", "si").
type FlexBool struct {
	Set bool
	Val bool
}

func (b *FlexBool) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		b.Set = false
		b.Val = false
		return nil
	}

	var boolVal bool
	if err := json.Unmarshal(data, &boolVal); err == nil {
		b.Set = true
		b.Val = boolVal
		return nil
	}

	var numVal float64
	if err := json.Unmarshal(data, &numVal); err == nil {
		b.Set = true
		b.Val = numVal != 0
		return nil
	}

	var strVal string
	if err := json.Unmarshal(data, &strVal); err != nil {
		return err
	}
	switch strings.ToLower(strings.TrimSpace(strVal)) {
	case "true", "1", "yes", "y", "si", "sí":
		b.Set = true
		b.Val = true
	case "false", "0", "no", "n", "":
		b.Set = true
		b.Val = false
	default:
		// unknown word, leave it to the status classifier
		b.Set = false
		b.Val = false
	}
	return nil
}

func (b FlexBool) MarshalJSON() ([]byte, error) {
	if !b.Set {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatBool(b.Val)), nil
}

// RawExercise is one loosely-structured exercise record inside a day,
// exactly as the planner clients submit it. Most fields are optional.
type RawExercise struct {
	Name string   `json:"name"`
	Goal GoalKind `json:"goal"`

	// planned values
	Sets    int     `json:"sets,omitempty"`    // planned set count
	Reps    float64 `json:"reps,omitempty"`    // planned reps per set
	Seconds float64 `json:"seconds,omitempty"` // planned seconds per set

	// emom / cardio
	Minutes       float64 `json:"minutes,omitempty"`
	RepsPerMinute float64 `json:"repsPerMinute,omitempty"`

	// recorded actuals
	DoneSets  []float64 `json:"doneSets,omitempty"` // per-set actual values
	DoneCount int       `json:"doneCount,omitempty"`

	WeightKg     float64 `json:"weightKg,omitempty"` // external load, signed (negative = assisted)
	BodyweightKg float64 `json:"bodyweightKg,omitempty"`
	ToFailure    bool    `json:"toFailure,omitempty"`

	// done indicators, in precedence order
	Done   FlexBool `json:"done,omitempty"`
	Status string   `json:"status,omitempty"`
	Estado string   `json:"estado,omitempty"` // legacy spanish clients
}

// RawDay is one submitted day record: a date plus its raw exercises.
type RawDay struct {
	Date        string        `json:"date"`
	SourceDayID string        `json:"sourceDayId,omitempty"` // defaults to Date
	Exercises   []RawExercise `json:"exercises"`
}

// DoneStatus classifies how "done" was recorded for an exercise.
type DoneStatus int

const (
	StatusNotDone DoneStatus = iota
	StatusDone
	StatusPending
)

var (
	doneWords = map[string]bool{
		"done": true, "completed": true, "complete": true, "finished": true, "ok": true,
		"hecho": true, "hecha": true, "completado": true, "completada": true,
		"terminado": true, "terminada": true, "finalizado": true, "listo": true,
	}
	notDoneWords = map[string]bool{
		"not done": true, "skipped": true, "failed": true, "missed": true,
		"no hecho": true, "sin hacer": true, "saltado": true, "fallido": true,
		"incompleto": true, "no completado": true,
	}
	pendingWords = map[string]bool{
		"pending": true, "todo": true, "in progress": true, "planned": true,
		"pendiente": true, "en progreso": true, "por hacer": true, "planificado": true,
	}
)

// DoneStatus resolves the record's done indicators: an explicit flag wins,
// otherwise the status/estado text is matched against the three fixed
// vocabularies. Anything unmatched or absent counts as not done.
func (re RawExercise) DoneStatus() DoneStatus {
	if re.Done.Set {
		if re.Done.Val {
			return StatusDone
		}
		return StatusNotDone
	}

	status := re.Status
	if status == "" {
		status = re.Estado
	}
	status = strings.Join(strings.Fields(strings.ToLower(status)), " ")

	switch {
	case doneWords[status]:
		return StatusDone
	case pendingWords[status]:
		return StatusPending
	case notDoneWords[status]:
		return StatusNotDone
	default:
		return StatusNotDone
	}
}
