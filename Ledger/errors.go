package Ledger

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidAmount rejects non-positive amounts on money-movement
	// records.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrScheduleComplete rejects payments against a schedule with no
	// remaining installments.
	ErrScheduleComplete = errors.New("installment schedule already complete")

	// ErrAlreadyCancelled rejects a second cancellation of the same entry.
	ErrAlreadyCancelled = errors.New("transaction already cancelled")

	// ErrVehicleUnavailable rejects selling a vehicle that is not in stock.
	ErrVehicleUnavailable = errors.New("vehicle is not in stock")

	// ErrNotEmiSale rejects installment payments against a full-payment sale.
	ErrNotEmiSale = errors.New("sale is not EMI-based")
)

// SplitMismatchError reports a payment breakdown that does not reconcile
// to the stated total. Amounts are whole currency units; no rounding
// tolerance is applied.
type SplitMismatchError struct {
	Expected int64
	Actual   int64
}

func (e *SplitMismatchError) Error() string {
	return fmt.Sprintf("payment split mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// BalanceDriftError reports disagreement between a stored balance and
// the value derived from the person's ledger entries. Drift is surfaced
// for manual reconciliation, never auto-corrected.
type BalanceDriftError struct {
	PersonID string
	Expected int64
	Stored   int64
}

func (e *BalanceDriftError) Error() string {
	return fmt.Sprintf("balance drift for person %s: expected %d, stored %d", e.PersonID, e.Expected, e.Stored)
}

// LoadError wraps a backing-store failure on the read path. Transient;
// the caller may retry.
type LoadError struct {
	Op    string
	Cause error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Cause)
}

func (e *LoadError) Unwrap() error { return e.Cause }
