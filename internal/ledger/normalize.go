package ledger

import "strings"

// exerciseAliases folds known synonyms and regional spellings onto one
// canonical name. Keys are already lower-cased and whitespace-collapsed,
// lookup happens after that normalization step.
var exerciseAliases = map[string]string{
	// spanish variants (the mobile app used to log in spanish)
	"dominadas":      "pull-up",
	"flexiones":      "push-up",
	"sentadillas":    "squat",
	"sentadilla":     "squat",
	"fondos":         "dip",
	"zancadas":       "lunge",
	"plancha":        "plank",
	"press banca":    "bench press",
	"press de banca": "bench press",
	"peso muerto":    "deadlift",
	"remo":           "row",
	"press militar":  "overhead press",
	"curl de biceps": "biceps curl",
	"curl de bíceps": "biceps curl",
	"elevaciones":    "leg raise",
	"burpees":        "burpee",
	"abdominales":    "sit-up",

	// spelling variants
	"pullup":         "pull-up",
	"pull up":        "pull-up",
	"chinup":         "chin-up",
	"chin up":        "chin-up",
	"pushup":         "push-up",
	"push up":        "push-up",
	"situp":          "sit-up",
	"sit up":         "sit-up",
	"bench":          "bench press",
	"ohp":            "overhead press",
	"military press": "overhead press",
}

// NormalizeExerciseName canonicalizes a free-text exercise name:
// lower-cased, whitespace collapsed, known aliases folded onto one
// spelling. Empty input yields the empty string, which callers must
// treat as "no exercise".
func NormalizeExerciseName(name string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(name)), " ")
	if canonical, ok := exerciseAliases[normalized]; ok {
		return canonical
	}
	return normalized
}
