package Ledger

import (
	"time"

	"github.com/google/uuid"
)

// EntryInput is the tuple a new ledger entry is built from. ID is an
// optional idempotency key: a caller retrying a failed write passes the
// same id so the entry cannot be applied twice.
type EntryInput struct {
	ID            string
	PersonRef     string
	Kind          TransactionKind
	Amount        int64
	PaymentMethod PaymentMethod
	CashAmount    int64
	BankAmount    int64
	CreditAmount  int64
	RelatedRef    string
	Date          time.Time
	OrderNumber   string
}

// NewTransaction constructs a validated, immutable ledger entry. The
// amount must be positive and the payment split must reconcile; on
// success the entry is COMPLETED with a creation timestamp and either
// the caller's idempotency key or a fresh id.
func NewTransaction(in EntryInput) (*PersonTransaction, error) {
	if in.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if _, err := ParseTransactionKind(string(in.Kind)); err != nil {
		return nil, err
	}
	if err := ValidateSplit(in.Amount, in.PaymentMethod, in.CashAmount, in.BankAmount, in.CreditAmount); err != nil {
		return nil, err
	}

	date := in.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}

	id := in.ID
	if id == "" {
		id = uuid.NewString()
	}

	return &PersonTransaction{
		ID:            id,
		Kind:          in.Kind,
		PersonRef:     in.PersonRef,
		RelatedRef:    in.RelatedRef,
		Amount:        in.Amount,
		PaymentMethod: in.PaymentMethod,
		CashAmount:    in.CashAmount,
		BankAmount:    in.BankAmount,
		CreditAmount:  in.CreditAmount,
		Date:          date,
		OrderNumber:   in.OrderNumber,
		Status:        StatusCompleted,
		CreatedAt:     time.Now().UTC(),
	}, nil
}

// Reversal builds the entry that undoes t. The original is not mutated
// here; marking it CANCELLED is the caller's write.
func (t *PersonTransaction) Reversal() *PersonTransaction {
	rev := *t
	rev.ID = uuid.NewString()
	rev.ReversalOf = t.ID
	rev.Status = StatusCompleted
	rev.CreatedAt = time.Now().UTC()
	return &rev
}
