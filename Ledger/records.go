package Ledger

import "time"

// All amounts are signed whole currency units held in int64, so ledger
// arithmetic is exact. Field names in the json tags are the persistence
// contract shared with the mobile clients.

// Person is a customer, broker or middle-man carrying a running balance.
// Positive balance means the person owes the dealer, negative means the
// dealer owes the person. The balance only changes through ledger entry
// application; display fields may be edited freely.
type Person struct {
	ID             string     `json:"id"`
	Type           PersonType `json:"type"`
	Name           string     `json:"name"`
	Phone          string     `json:"phone,omitempty"`
	Address        string     `json:"address,omitempty"`
	IDProofImages  []string   `json:"idProofImages,omitempty"`
	OpeningBalance int64      `json:"openingBalance"`
	Balance        int64      `json:"balance"`
	Version        int64      `json:"version"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// PersonTransaction is one recorded money-movement event. Entries are
// immutable once COMPLETED; an "edit" is a reversing entry plus the
// CANCELLED marker on the original.
type PersonTransaction struct {
	ID            string            `json:"id"`
	Kind          TransactionKind   `json:"kind"`
	PersonRef     string            `json:"personRef"`
	RelatedRef    string            `json:"relatedRef,omitempty"`
	Amount        int64             `json:"amount"`
	PaymentMethod PaymentMethod     `json:"paymentMethod"`
	CashAmount    int64             `json:"cashAmount"`
	BankAmount    int64             `json:"bankAmount"`
	CreditAmount  int64             `json:"creditAmount"`
	Date          time.Time         `json:"date"`
	OrderNumber   string            `json:"orderNumber,omitempty"`
	Status        TransactionStatus `json:"status"`
	ReversalOf    string            `json:"reversalOf,omitempty"`
	CreatedAt     time.Time         `json:"createdAt"`
}

// Vehicle is one unit of dealer stock.
type Vehicle struct {
	ID             string        `json:"id"`
	Make           string        `json:"make"`
	Model          string        `json:"model"`
	Year           int           `json:"year,omitempty"`
	RegistrationNo string        `json:"registrationNo,omitempty"`
	ChassisNo      string        `json:"chassisNo,omitempty"`
	Price          int64         `json:"price"`
	Status         VehicleStatus `json:"status"`
	Images         []string      `json:"images,omitempty"`
	CreatedAt      time.Time     `json:"createdAt"`
}

// Purchase records the acquisition of a vehicle from a seller, possibly
// through a broker or middle-man. Read-only after creation apart from
// metadata corrections.
type Purchase struct {
	ID            string        `json:"id"`
	VehicleRef    string        `json:"vehicleRef"`
	SellerRef     string        `json:"sellerRef"`
	BrokerRef     string        `json:"brokerRef,omitempty"`
	GrandTotal    int64         `json:"grandTotal"`
	GstAmount     int64         `json:"gstAmount"`
	OrderNumber   string        `json:"orderNumber,omitempty"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	CashAmount    int64         `json:"cashAmount"`
	BankAmount    int64         `json:"bankAmount"`
	CreditAmount  int64         `json:"creditAmount"`
	Date          time.Time     `json:"date"`
	CreatedAt     time.Time     `json:"createdAt"`
}

// VehicleSale records the disposition of a vehicle to a customer, either
// paid in full or on an installment plan.
type VehicleSale struct {
	ID            string     `json:"id"`
	CustomerRef   string     `json:"customerRef"`
	VehicleRef    string     `json:"vehicleRef"`
	TotalAmount   int64      `json:"totalAmount"`
	Emi           bool       `json:"emi"`
	Status        SaleStatus `json:"status"`
	EmiDetailsRef string     `json:"emiDetailsRef,omitempty"`
	Date          time.Time  `json:"date"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// EmiDetails is the installment schedule owned by a single VehicleSale.
// Invariants: PaidInstallments+RemainingInstallments == InstallmentsCount,
// and InstallmentAmount*InstallmentsCount approximates PriceWithInterest
// with the rounding difference absorbed by the final installment.
type EmiDetails struct {
	ID                    string           `json:"id"`
	VehicleSaleRef        string           `json:"vehicleSaleRef"`
	InterestRate          float64          `json:"interestRate"`
	Frequency             PaymentFrequency `json:"frequency"`
	InstallmentsCount     int              `json:"installmentsCount"`
	InstallmentAmount     int64            `json:"installmentAmount"`
	PriceWithInterest     int64            `json:"priceWithInterest"`
	NextDueDate           time.Time        `json:"nextDueDate"`
	RemainingInstallments int              `json:"remainingInstallments"`
	PaidInstallments      int              `json:"paidInstallments"`
	LastPaidDate          *time.Time       `json:"lastPaidDate,omitempty"`
	LastEntryRef          string           `json:"lastEntryRef,omitempty"`
	PendingExtraBalance   int64            `json:"pendingExtraBalance"`
	CreatedAt             time.Time        `json:"createdAt"`
}

// CapitalTransaction is the dealer-capital audit record written when
// funds are committed to a purchase.
type CapitalTransaction struct {
	ID          string    `json:"id"`
	PurchaseRef string    `json:"purchaseRef"`
	Amount      int64     `json:"amount"`
	Date        time.Time `json:"date"`
	CreatedAt   time.Time `json:"createdAt"`
}
