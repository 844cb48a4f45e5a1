//go:build integration_test || all_tests

package ledger_test

import (
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2beens/gymledger/internal/ledger"
	testingpkg "github.com/2beens/gymledger/pkg/testing"
)

func TestRedisStorage_SetGetDel_Integration(t *testing.T) {
	ctx, rdb := testingpkg.GetRedisClientAndCtx(t)
	storage := ledger.NewRedisStorage(rdb)

	key := "gymledger::test::" + gofakeit.UUID()
	payload := []byte(gofakeit.Sentence(10))

	require.NoError(t, storage.Set(ctx, key, payload))

	got, err := storage.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	require.NoError(t, storage.Del(ctx, key))
	got, err = storage.Get(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, got)
}
