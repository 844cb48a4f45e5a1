package ledger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/2beens/gymledger/internal/ledger"
)

func TestNormalizeExerciseName(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "empty", input: "", expected: ""},
		{name: "whitespace only", input: "   \t ", expected: ""},
		{name: "lowercasing", input: "Bench Press", expected: "bench press"},
		{name: "whitespace collapse", input: "  bench   press ", expected: "bench press"},
		{name: "spanish alias", input: "Dominadas", expected: "pull-up"},
		{name: "spanish alias multiword", input: "press  de   banca", expected: "bench press"},
		{name: "spelling variant", input: "pullup", expected: "pull-up"},
		{name: "spelling variant spaced", input: "Push Up", expected: "push-up"},
		{name: "abbreviation", input: "OHP", expected: "overhead press"},
		{name: "unknown passes through", input: "Bulgarian Split Squat", expected: "bulgarian split squat"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ledger.NormalizeExerciseName(tc.input))
		})
	}
}
