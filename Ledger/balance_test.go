package Ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustEntry(t *testing.T, kind TransactionKind, amount int64) *PersonTransaction {
	t.Helper()
	entry, err := NewTransaction(EntryInput{
		PersonRef:     "p1",
		Kind:          kind,
		Amount:        amount,
		PaymentMethod: MethodCash,
		CashAmount:    amount,
	})
	require.NoError(t, err)
	return entry
}

func TestSignedContribution(t *testing.T) {
	cases := []struct {
		kind TransactionKind
		want int64
	}{
		{KindSale, 100},
		{KindEmiPayment, 100},
		{KindPurchase, -100},
		{KindBrokerFee, -100},
	}
	for _, tc := range cases {
		entry := mustEntry(t, tc.kind, 100)
		assert.Equal(t, tc.want, SignedContribution(entry), string(tc.kind))

		rev := entry.Reversal()
		assert.Equal(t, -tc.want, SignedContribution(rev), string(tc.kind)+" reversal")
	}
}

func TestRecomputeMatchesFold(t *testing.T) {
	person := &Person{ID: "p1", OpeningBalance: 1000, Balance: 1000}

	entries := []PersonTransaction{
		*mustEntry(t, KindSale, 8000),
		*mustEntry(t, KindPurchase, 3000),
		*mustEntry(t, KindEmiPayment, 500),
		*mustEntry(t, KindBrokerFee, 200),
	}
	for i := range entries {
		person.Balance += SignedContribution(&entries[i])
	}
	assert.Equal(t, int64(1000+8000-3000+500-200), person.Balance)
	assert.NoError(t, Recompute(person, entries))
}

func TestRecomputeDetectsDrift(t *testing.T) {
	person := &Person{ID: "p1", Balance: 999}
	entry := mustEntry(t, KindSale, 5000)

	err := Recompute(person, []PersonTransaction{*entry})
	require.Error(t, err)

	var drift *BalanceDriftError
	require.ErrorAs(t, err, &drift)
	assert.Equal(t, int64(5000), drift.Expected)
	assert.Equal(t, int64(999), drift.Stored)
	assert.Equal(t, "p1", drift.PersonID)
}

func TestRecomputeCancelledPairNetsToZero(t *testing.T) {
	person := &Person{ID: "p1"}

	entry := mustEntry(t, KindSale, 5000)
	rev := entry.Reversal()
	person.Balance += SignedContribution(entry)
	person.Balance += SignedContribution(rev)
	assert.Equal(t, int64(0), person.Balance)

	entry.Status = StatusCancelled
	assert.NoError(t, Recompute(person, []PersonTransaction{*entry, *rev}))
}
