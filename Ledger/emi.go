package Ledger

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// NewEmiSchedule computes the installment plan for an EMI sale. Interest
// is simple, applied once over the full term:
//
//	priceWithInterest = (totalPrice - downPayment) * (1 + rate/100)
//
// The fixed installment is priceWithInterest / count rounded half-up;
// the final installment absorbs the rounding difference. The first due
// date is one period after the sale date.
func NewEmiSchedule(saleRef string, totalPrice, downPayment int64, interestRate float64, frequency PaymentFrequency, installmentsCount int, saleDate time.Time) (*EmiDetails, error) {
	if installmentsCount <= 0 {
		return nil, errors.New("installments count must be positive")
	}
	if downPayment < 0 || interestRate < 0 {
		return nil, ErrInvalidAmount
	}
	principal := totalPrice - downPayment
	if principal <= 0 {
		return nil, ErrInvalidAmount
	}
	if _, err := ParsePaymentFrequency(string(frequency)); err != nil {
		return nil, err
	}

	rate := decimal.NewFromFloat(interestRate).Div(decimal.NewFromInt(100))
	priceWithInterest := decimal.NewFromInt(principal).
		Mul(decimal.NewFromInt(1).Add(rate)).
		Round(0).IntPart()
	installment := decimal.NewFromInt(priceWithInterest).
		DivRound(decimal.NewFromInt(int64(installmentsCount)), 0).IntPart()

	return &EmiDetails{
		ID:                    uuid.NewString(),
		VehicleSaleRef:        saleRef,
		InterestRate:          interestRate,
		Frequency:             frequency,
		InstallmentsCount:     installmentsCount,
		InstallmentAmount:     installment,
		PriceWithInterest:     priceWithInterest,
		NextDueDate:           frequency.Advance(saleDate),
		RemainingInstallments: installmentsCount,
		PaidInstallments:      0,
		PendingExtraBalance:   0,
		CreatedAt:             time.Now().UTC(),
	}, nil
}

// State derives the schedule lifecycle from its counters.
func (d *EmiDetails) State() ScheduleState {
	switch {
	case d.RemainingInstallments == 0:
		return ScheduleCompleted
	case d.PaidInstallments > 0:
		return ScheduleInProgress
	default:
		return ScheduleScheduled
	}
}

// NextDueAmount is what the upcoming installment actually costs. The
// final installment settles whatever remains of priceWithInterest after
// the fixed installments, absorbing the division rounding.
func (d *EmiDetails) NextDueAmount() int64 {
	if d.RemainingInstallments == 1 {
		return d.PriceWithInterest - d.InstallmentAmount*int64(d.InstallmentsCount-1)
	}
	return d.InstallmentAmount
}

// carriedCredit is the money already received but not yet consumed by an
// installment. PendingExtraBalance stores an overpayment remainder as a
// positive value and a shortfall toward the current installment as a
// negative value; both represent unconsumed credit.
func (d *EmiDetails) carriedCredit() int64 {
	if d.PendingExtraBalance < 0 {
		return d.NextDueAmount() + d.PendingExtraBalance
	}
	return d.PendingExtraBalance
}

// ApplyPayment folds one payment event into the schedule. The effective
// amount is the payment plus any carried credit; it consumes as many full
// installments as it covers (cascading), advancing the due date one
// period per installment. A remainder below the next due amount is
// carried forward: negative when no installment was consumed this event,
// positive otherwise. Returns true when the schedule just completed.
func ApplyPayment(d *EmiDetails, paidAmount int64, paymentDate time.Time) (bool, error) {
	if d.RemainingInstallments == 0 {
		return false, ErrScheduleComplete
	}
	if paidAmount <= 0 {
		return false, ErrInvalidAmount
	}

	effective := paidAmount + d.carriedCredit()
	consumed := 0
	for d.RemainingInstallments > 0 && effective >= d.NextDueAmount() {
		effective -= d.NextDueAmount()
		d.PaidInstallments++
		d.RemainingInstallments--
		d.NextDueDate = d.Frequency.Advance(d.NextDueDate)
		consumed++
	}

	if consumed == 0 {
		d.PendingExtraBalance = effective - d.NextDueAmount()
	} else {
		d.PendingExtraBalance = effective
	}

	paid := paymentDate
	if paid.IsZero() {
		paid = time.Now().UTC()
	}
	d.LastPaidDate = &paid

	return d.RemainingInstallments == 0, nil
}
