package Ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Gaadi/Store"
)

func TestTransactionsByPersonOrdering(t *testing.T) {
	ctx := context.Background()
	mem := Store.NewMemory()

	day := func(d int) time.Time {
		return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
	}
	created := func(h int) time.Time {
		return time.Date(2024, 3, 20, h, 0, 0, 0, time.UTC)
	}

	entries := []PersonTransaction{
		{ID: "t1", PersonRef: "p1", Kind: KindSale, Amount: 100, Date: day(5), CreatedAt: created(1), Status: StatusCompleted},
		{ID: "t2", PersonRef: "p1", Kind: KindSale, Amount: 200, Date: day(9), CreatedAt: created(2), Status: StatusCompleted},
		// Same date as t2, created later: must sort first among the tie.
		{ID: "t3", PersonRef: "p1", Kind: KindSale, Amount: 300, Date: day(9), CreatedAt: created(3), Status: StatusCompleted},
		{ID: "other", PersonRef: "p2", Kind: KindSale, Amount: 999, Date: day(1), CreatedAt: created(0), Status: StatusCompleted},
	}
	for i := range entries {
		require.NoError(t, mem.Put(ctx, CollectionTransactions, entries[i].ID, &entries[i]))
	}

	got, err := TransactionsByPerson(ctx, mem, "p1")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "t3", got[0].ID)
	assert.Equal(t, "t2", got[1].ID)
	assert.Equal(t, "t1", got[2].ID)
}

func TestTransactionsByPersonEmpty(t *testing.T) {
	got, err := TransactionsByPerson(context.Background(), Store.NewMemory(), "nobody")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
