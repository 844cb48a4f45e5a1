package ledger_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/2beens/gymledger/internal/ledger"
)

func TestMinutesToSeconds(t *testing.T) {
	assert.Equal(t, 150, ledger.MinutesToSeconds(2.5))
	assert.Equal(t, 60, ledger.MinutesToSeconds(1))
	assert.Equal(t, 20, ledger.MinutesToSeconds(0.333))
	assert.Equal(t, 0, ledger.MinutesToSeconds(0))
	assert.Equal(t, 0, ledger.MinutesToSeconds(-1))
	assert.Equal(t, 0, ledger.MinutesToSeconds(math.NaN()))
	assert.Equal(t, 0, ledger.MinutesToSeconds(math.Inf(1)))
	assert.Equal(t, 0, ledger.MinutesToSeconds(math.Inf(-1)))
}
