package Ledger

// SignedContribution is the single sign table for balance arithmetic.
// SALE and EMI_PAYMENT move money toward the dealer and count positive;
// PURCHASE and BROKER_FEE count negative. A reversing entry contributes
// the negation of the entry it reverses. Every balance computation in
// the system goes through this function.
func SignedContribution(t *PersonTransaction) int64 {
	var sign int64
	switch t.Kind {
	case KindSale, KindEmiPayment:
		sign = 1
	case KindPurchase, KindBrokerFee:
		sign = -1
	default:
		return 0
	}
	if t.ReversalOf != "" {
		sign = -sign
	}
	return sign * t.Amount
}

// Recompute re-derives the person's balance from scratch and compares it
// with the stored value. Cancelled originals still count because their
// reversing entries are in the same list. Disagreement is returned as a
// BalanceDriftError and left for manual reconciliation.
func Recompute(p *Person, entries []PersonTransaction) error {
	expected := p.OpeningBalance
	for i := range entries {
		expected += SignedContribution(&entries[i])
	}
	if expected != p.Balance {
		return &BalanceDriftError{PersonID: p.ID, Expected: expected, Stored: p.Balance}
	}
	return nil
}
