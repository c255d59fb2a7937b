package Ledger

import "fmt"

// ValidateSplit checks that a payment method breakdown reconciles to the
// stated total. For MIXED the three sub-amounts must sum to the total
// exactly; for a single method the matching sub-amount must equal the
// total and the other two must be zero. Pure predicate, consulted before
// any ledger entry is constructed.
func ValidateSplit(total int64, method PaymentMethod, cash, bank, credit int64) error {
	if total <= 0 {
		return ErrInvalidAmount
	}
	if cash < 0 || bank < 0 || credit < 0 {
		return &SplitMismatchError{Expected: total, Actual: cash + bank + credit}
	}

	var actual, rest int64
	switch method {
	case MethodCash:
		actual, rest = cash, bank+credit
	case MethodBank:
		actual, rest = bank, cash+credit
	case MethodCredit:
		actual, rest = credit, cash+bank
	case MethodMixed:
		actual, rest = cash+bank+credit, 0
	default:
		return fmt.Errorf("unknown payment method %q", method)
	}

	if actual != total || rest != 0 {
		return &SplitMismatchError{Expected: total, Actual: actual}
	}
	return nil
}
