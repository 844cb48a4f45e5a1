package ledger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2beens/gymledger/internal/ledger"
)

func TestCompareBySet_Comparable(t *testing.T) {
	current := []ledger.Entry{
		{Date: "2024-02-08", Exercise: "bench press", Metric: ledger.MetricReps, Value: 8, SetIndex: 0, LoadKg: 20},
	}
	previous := []ledger.Entry{
		{Date: "2024-02-01", Exercise: "bench press", Metric: ledger.MetricReps, Value: 7, SetIndex: 0, LoadKg: 21},
	}

	comparisons := ledger.CompareBySet(current, previous, ledger.DefaultLoadToleranceKg)
	require.Len(t, comparisons, 1)

	c := comparisons[0]
	assert.Equal(t, 0, c.SetIndex)
	assert.True(t, c.Comparable)
	assert.Empty(t, c.Reason)
	require.NotNil(t, c.Current)
	require.NotNil(t, c.Previous)
	require.NotNil(t, c.Delta)
	assert.Equal(t, float64(1), *c.Delta)
	require.NotNil(t, c.Pct)
	assert.InDelta(t, 14.29, *c.Pct, 0.01)
}

func TestCompareBySet_LoadMismatch(t *testing.T) {
	current := []ledger.Entry{
		{Date: "2024-02-08", Exercise: "squat", Metric: ledger.MetricReps, Value: 5, SetIndex: 0, LoadKg: 80},
	}
	previous := []ledger.Entry{
		{Date: "2024-02-01", Exercise: "squat", Metric: ledger.MetricReps, Value: 8, SetIndex: 0, LoadKg: 60},
	}

	comparisons := ledger.CompareBySet(current, previous, 2)
	require.Len(t, comparisons, 1)

	c := comparisons[0]
	assert.False(t, c.Comparable)
	assert.Equal(t, ledger.ReasonLoadMismatch, c.Reason)
	assert.Nil(t, c.Delta)
	assert.Nil(t, c.Pct)
	// the mismatched previous set is still attached as context
	require.NotNil(t, c.Previous)
	assert.Equal(t, float64(60), c.Previous.LoadKg)
}

func TestCompareBySet_MissingPrev(t *testing.T) {
	current := []ledger.Entry{
		{Date: "2024-02-08", Exercise: "squat", Metric: ledger.MetricReps, Value: 5, SetIndex: 2, LoadKg: 80},
	}

	comparisons := ledger.CompareBySet(current, nil, 2)
	require.Len(t, comparisons, 1)
	assert.False(t, comparisons[0].Comparable)
	assert.Equal(t, ledger.ReasonMissingPrev, comparisons[0].Reason)
	assert.Nil(t, comparisons[0].Previous)
}

func TestCompareBySet_MissingCurrent(t *testing.T) {
	previous := []ledger.Entry{
		{Date: "2024-02-01", Exercise: "squat", Metric: ledger.MetricReps, Value: 8, SetIndex: 0, LoadKg: 60},
		{Date: "2024-02-01", Exercise: "squat", Metric: ledger.MetricReps, Value: 6, SetIndex: 1, LoadKg: 60},
	}
	current := []ledger.Entry{
		{Date: "2024-02-08", Exercise: "squat", Metric: ledger.MetricReps, Value: 9, SetIndex: 0, LoadKg: 61},
	}

	comparisons := ledger.CompareBySet(current, previous, 2)
	require.Len(t, comparisons, 2)

	assert.True(t, comparisons[0].Comparable)
	assert.Equal(t, 0, comparisons[0].SetIndex)

	// set 1 was done last time, not today
	assert.False(t, comparisons[1].Comparable)
	assert.Equal(t, 1, comparisons[1].SetIndex)
	assert.Equal(t, ledger.ReasonMissingCurrent, comparisons[1].Reason)
	assert.Nil(t, comparisons[1].Current)
	require.NotNil(t, comparisons[1].Previous)
}

func TestCompareBySet_CandidatesConsumedOnce(t *testing.T) {
	// two current sets at the same position (different loads), one
	// previous candidate: only the first pairing consumes it
	current := []ledger.Entry{
		{Date: "2024-02-08", Exercise: "squat", Metric: ledger.MetricReps, Value: 8, SetIndex: 0, LoadKg: 60},
		{Date: "2024-02-08", Exercise: "squat", Metric: ledger.MetricReps, Value: 5, SetIndex: 0, LoadKg: 61},
	}
	previous := []ledger.Entry{
		{Date: "2024-02-01", Exercise: "squat", Metric: ledger.MetricReps, Value: 7, SetIndex: 0, LoadKg: 60},
	}

	comparisons := ledger.CompareBySet(current, previous, 2)
	require.Len(t, comparisons, 2)

	assert.True(t, comparisons[0].Comparable)
	assert.False(t, comparisons[1].Comparable)
	assert.Equal(t, ledger.ReasonLoadMismatch, comparisons[1].Reason)
	assert.Nil(t, comparisons[1].Previous)
}

func TestCompareBySet_PairsInLoadAscendingOrder(t *testing.T) {
	// candidates within a position pair load-ascending, so the light
	// current set takes the light previous set
	current := []ledger.Entry{
		{Date: "2024-02-08", Exercise: "squat", Metric: ledger.MetricReps, Value: 8, SetIndex: 0, LoadKg: 62},
		{Date: "2024-02-08", Exercise: "squat", Metric: ledger.MetricReps, Value: 10, SetIndex: 0, LoadKg: 60},
	}
	previous := []ledger.Entry{
		{Date: "2024-02-01", Exercise: "squat", Metric: ledger.MetricReps, Value: 9, SetIndex: 0, LoadKg: 61},
		{Date: "2024-02-01", Exercise: "squat", Metric: ledger.MetricReps, Value: 7, SetIndex: 0, LoadKg: 63},
	}

	comparisons := ledger.CompareBySet(current, previous, 2)
	require.Len(t, comparisons, 2)

	first := comparisons[0]
	require.NotNil(t, first.Current)
	assert.Equal(t, float64(60), first.Current.LoadKg)
	require.NotNil(t, first.Previous)
	assert.Equal(t, float64(61), first.Previous.LoadKg)

	second := comparisons[1]
	require.NotNil(t, second.Current)
	assert.Equal(t, float64(62), second.Current.LoadKg)
	require.NotNil(t, second.Previous)
	assert.Equal(t, float64(63), second.Previous.LoadKg)
}
