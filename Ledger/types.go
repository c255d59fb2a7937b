package Ledger

import (
	"fmt"
	"time"
)

// Collection names under which ledger records are persisted.
const (
	CollectionPersons      = "persons"
	CollectionTransactions = "person_transactions"
	CollectionVehicles     = "vehicles"
	CollectionPurchases    = "purchases"
	CollectionSales        = "vehicle_sales"
	CollectionEmiDetails   = "emi_details"
	CollectionCapital      = "capital_transactions"
)

// PersonType distinguishes the party variants the dealer trades with.
type PersonType string

const (
	PersonCustomer  PersonType = "CUSTOMER"
	PersonBroker    PersonType = "BROKER"
	PersonMiddleMan PersonType = "MIDDLEMAN"
)

func ParsePersonType(s string) (PersonType, error) {
	switch PersonType(s) {
	case PersonCustomer, PersonBroker, PersonMiddleMan:
		return PersonType(s), nil
	}
	return "", fmt.Errorf("unknown person type %q", s)
}

// TransactionKind tags a ledger entry with the money-movement event that
// produced it.
type TransactionKind string

const (
	KindPurchase   TransactionKind = "PURCHASE"
	KindSale       TransactionKind = "SALE"
	KindEmiPayment TransactionKind = "EMI_PAYMENT"
	KindBrokerFee  TransactionKind = "BROKER_FEE"
)

func ParseTransactionKind(s string) (TransactionKind, error) {
	switch TransactionKind(s) {
	case KindPurchase, KindSale, KindEmiPayment, KindBrokerFee:
		return TransactionKind(s), nil
	}
	return "", fmt.Errorf("unknown transaction kind %q", s)
}

// PaymentMethod describes how a payment was made. Mixed carries a
// cash/bank/credit breakdown that must reconcile to the total.
type PaymentMethod string

const (
	MethodCash   PaymentMethod = "CASH"
	MethodBank   PaymentMethod = "BANK"
	MethodCredit PaymentMethod = "CREDIT"
	MethodMixed  PaymentMethod = "MIXED"
)

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch PaymentMethod(s) {
	case MethodCash, MethodBank, MethodCredit, MethodMixed:
		return PaymentMethod(s), nil
	}
	return "", fmt.Errorf("unknown payment method %q", s)
}

type TransactionStatus string

const (
	StatusCompleted TransactionStatus = "COMPLETED"
	StatusPending   TransactionStatus = "PENDING"
	StatusCancelled TransactionStatus = "CANCELLED"
)

type SaleStatus string

const (
	SaleActive    SaleStatus = "ACTIVE"
	SaleCompleted SaleStatus = "COMPLETED"
)

type VehicleStatus string

const (
	VehicleInStock VehicleStatus = "IN_STOCK"
	VehicleSold    VehicleStatus = "SOLD"
)

// PaymentFrequency is the spacing between EMI due dates.
type PaymentFrequency string

const (
	FrequencyMonthly   PaymentFrequency = "MONTHLY"
	FrequencyQuarterly PaymentFrequency = "QUARTERLY"
	FrequencyYearly    PaymentFrequency = "YEARLY"
)

func ParsePaymentFrequency(s string) (PaymentFrequency, error) {
	switch PaymentFrequency(s) {
	case FrequencyMonthly, FrequencyQuarterly, FrequencyYearly:
		return PaymentFrequency(s), nil
	}
	return "", fmt.Errorf("unknown payment frequency %q", s)
}

// Advance returns t moved forward by one period.
func (f PaymentFrequency) Advance(t time.Time) time.Time {
	switch f {
	case FrequencyQuarterly:
		return t.AddDate(0, 3, 0)
	case FrequencyYearly:
		return t.AddDate(1, 0, 0)
	default:
		return t.AddDate(0, 1, 0)
	}
}

// ScheduleState is the lifecycle of an EMI schedule, derived from its
// counters rather than stored.
type ScheduleState string

const (
	ScheduleScheduled  ScheduleState = "SCHEDULED"
	ScheduleInProgress ScheduleState = "IN_PROGRESS"
	ScheduleCompleted  ScheduleState = "COMPLETED"
)
