package Ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"Gaadi/Store"
)

// Service orchestrates ledger writes against the document store. Writes
// are single-writer per person and per sale: a keyed mutex is held
// across each read-modify-write, because the store offers no cross-
// document transaction. Reads run lock-free and tolerate eventually
// consistent views.
type Service struct {
	store Store.Store
	log   zerolog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewService(store Store.Store, log zerolog.Logger) *Service {
	return &Service{
		store: store,
		log:   log.With().Str("component", "ledger").Logger(),
		locks: make(map[string]*sync.Mutex),
	}
}

func (s *Service) lockFor(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	return l
}

// applyEntry persists the entry and folds it into the person's balance.
// Caller must hold the person lock. If an entry with the same id is
// already stored the call is a no-op, which makes caller retries after a
// failed write safe.
func (s *Service) applyEntry(ctx context.Context, person *Person, entry *PersonTransaction) error {
	if _, err := s.store.Get(ctx, CollectionTransactions, entry.ID); err == nil {
		s.log.Warn().Str("transaction", entry.ID).Msg("entry already applied, skipping")
		return nil
	} else if !errors.Is(err, Store.ErrNotFound) {
		return err
	}

	if err := s.store.Put(ctx, CollectionTransactions, entry.ID, entry); err != nil {
		return err
	}

	person.Balance += SignedContribution(entry)
	person.Version++
	return s.store.Put(ctx, CollectionPersons, person.ID, person)
}

// RegisterPerson creates a person record. The opening balance is the one
// direct balance write allowed; everything after goes through entries.
func (s *Service) RegisterPerson(ctx context.Context, p *Person) error {
	if _, err := ParsePersonType(string(p.Type)); err != nil {
		return err
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.Balance = p.OpeningBalance
	p.Version = 1
	p.CreatedAt = time.Now().UTC()
	return s.store.Put(ctx, CollectionPersons, p.ID, p)
}

func (s *Service) GetPerson(ctx context.Context, id string) (*Person, error) {
	var p Person
	if err := Store.GetAs(ctx, s.store, CollectionPersons, id, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdatePersonDetails edits display fields only; the balance is never
// touched by form edits.
func (s *Service) UpdatePersonDetails(ctx context.Context, id, name, phone, address string, idProofImages []string) (*Person, error) {
	lock := s.lockFor("person:" + id)
	lock.Lock()
	defer lock.Unlock()

	p, err := s.GetPerson(ctx, id)
	if err != nil {
		return nil, err
	}
	if name != "" {
		p.Name = name
	}
	if phone != "" {
		p.Phone = phone
	}
	if address != "" {
		p.Address = address
	}
	if idProofImages != nil {
		p.IDProofImages = idProofImages
	}
	p.Version++
	if err := s.store.Put(ctx, CollectionPersons, id, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) ListPersons(ctx context.Context, personType PersonType) ([]Person, error) {
	var filters []Store.Filter
	if personType != "" {
		filters = append(filters, Store.Filter{Field: "type", Op: "==", Value: string(personType)})
	}
	docs, err := s.store.Query(ctx, CollectionPersons, filters, &Store.Order{Field: "name"})
	if err != nil {
		return nil, &LoadError{Op: "load persons", Cause: err}
	}
	persons := make([]Person, 0, len(docs))
	for _, doc := range docs {
		var p Person
		if err := doc.Decode(&p); err != nil {
			return nil, &LoadError{Op: "decode person", Cause: err}
		}
		persons = append(persons, p)
	}
	return persons, nil
}

func (s *Service) SaveVehicle(ctx context.Context, v *Vehicle) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
		v.CreatedAt = time.Now().UTC()
	}
	if v.Status == "" {
		v.Status = VehicleInStock
	}
	return s.store.Put(ctx, CollectionVehicles, v.ID, v)
}

func (s *Service) GetVehicle(ctx context.Context, id string) (*Vehicle, error) {
	var v Vehicle
	if err := Store.GetAs(ctx, s.store, CollectionVehicles, id, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *Service) ListVehicles(ctx context.Context, status VehicleStatus) ([]Vehicle, error) {
	var filters []Store.Filter
	if status != "" {
		filters = append(filters, Store.Filter{Field: "status", Op: "==", Value: string(status)})
	}
	docs, err := s.store.Query(ctx, CollectionVehicles, filters, &Store.Order{Field: "createdAt", Desc: true})
	if err != nil {
		return nil, &LoadError{Op: "load vehicles", Cause: err}
	}
	vehicles := make([]Vehicle, 0, len(docs))
	for _, doc := range docs {
		var v Vehicle
		if err := doc.Decode(&v); err != nil {
			return nil, &LoadError{Op: "decode vehicle", Cause: err}
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, nil
}

// PurchaseInput describes a vehicle acquisition. EntryID is an optional
// idempotency key for the PURCHASE ledger entry; callers retrying a
// failed request reuse it so the seller's balance moves once.
type PurchaseInput struct {
	EntryID       string
	VehicleRef    string
	SellerRef     string
	BrokerRef     string
	BrokerFee     int64
	GrandTotal    int64
	GstAmount     int64
	OrderNumber   string
	PaymentMethod PaymentMethod
	CashAmount    int64
	BankAmount    int64
	CreditAmount  int64
	Date          time.Time
}

// RecordPurchase writes the Purchase document, a PURCHASE ledger entry
// against the seller, the dealer-capital audit record, and, when a
// broker took a fee, a BROKER_FEE entry against the broker.
func (s *Service) RecordPurchase(ctx context.Context, in PurchaseInput) (*Purchase, error) {
	if err := ValidateSplit(in.GrandTotal, in.PaymentMethod, in.CashAmount, in.BankAmount, in.CreditAmount); err != nil {
		return nil, err
	}

	vehicle, err := s.GetVehicle(ctx, in.VehicleRef)
	if err != nil {
		return nil, fmt.Errorf("resolve vehicle %s: %w", in.VehicleRef, err)
	}

	date := in.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}

	purchase := &Purchase{
		ID:            uuid.NewString(),
		VehicleRef:    in.VehicleRef,
		SellerRef:     in.SellerRef,
		BrokerRef:     in.BrokerRef,
		GrandTotal:    in.GrandTotal,
		GstAmount:     in.GstAmount,
		OrderNumber:   in.OrderNumber,
		PaymentMethod: in.PaymentMethod,
		CashAmount:    in.CashAmount,
		BankAmount:    in.BankAmount,
		CreditAmount:  in.CreditAmount,
		Date:          date,
		CreatedAt:     time.Now().UTC(),
	}

	entry, err := NewTransaction(EntryInput{
		ID:            in.EntryID,
		PersonRef:     in.SellerRef,
		Kind:          KindPurchase,
		Amount:        in.GrandTotal,
		PaymentMethod: in.PaymentMethod,
		CashAmount:    in.CashAmount,
		BankAmount:    in.BankAmount,
		CreditAmount:  in.CreditAmount,
		RelatedRef:    purchase.ID,
		Date:          date,
		OrderNumber:   in.OrderNumber,
	})
	if err != nil {
		return nil, err
	}

	lock := s.lockFor("person:" + in.SellerRef)
	lock.Lock()
	seller, err := s.GetPerson(ctx, in.SellerRef)
	if err != nil {
		lock.Unlock()
		return nil, fmt.Errorf("resolve seller %s: %w", in.SellerRef, err)
	}
	if err := s.store.Put(ctx, CollectionPurchases, purchase.ID, purchase); err != nil {
		lock.Unlock()
		return nil, err
	}
	if err := s.applyEntry(ctx, seller, entry); err != nil {
		lock.Unlock()
		return nil, err
	}
	lock.Unlock()

	capital := &CapitalTransaction{
		ID:          uuid.NewString(),
		PurchaseRef: purchase.ID,
		Amount:      in.GrandTotal,
		Date:        date,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.store.Put(ctx, CollectionCapital, capital.ID, capital); err != nil {
		return nil, err
	}

	vehicle.Status = VehicleInStock
	if err := s.store.Put(ctx, CollectionVehicles, vehicle.ID, vehicle); err != nil {
		return nil, err
	}

	if in.BrokerRef != "" && in.BrokerFee > 0 {
		if err := s.recordBrokerFee(ctx, in.BrokerRef, in.BrokerFee, purchase.ID, date); err != nil {
			return nil, err
		}
	}

	s.log.Info().Str("purchase", purchase.ID).Str("seller", in.SellerRef).
		Int64("grandTotal", in.GrandTotal).Msg("purchase recorded")
	return purchase, nil
}

// Broker fees are paid out in cash.
func (s *Service) recordBrokerFee(ctx context.Context, brokerRef string, fee int64, relatedRef string, date time.Time) error {
	entry, err := NewTransaction(EntryInput{
		PersonRef:     brokerRef,
		Kind:          KindBrokerFee,
		Amount:        fee,
		PaymentMethod: MethodCash,
		CashAmount:    fee,
		RelatedRef:    relatedRef,
		Date:          date,
	})
	if err != nil {
		return err
	}

	lock := s.lockFor("person:" + brokerRef)
	lock.Lock()
	defer lock.Unlock()

	broker, err := s.GetPerson(ctx, brokerRef)
	if err != nil {
		return fmt.Errorf("resolve broker %s: %w", brokerRef, err)
	}
	return s.applyEntry(ctx, broker, entry)
}

func (s *Service) GetPurchase(ctx context.Context, id string) (*Purchase, error) {
	var p Purchase
	if err := Store.GetAs(ctx, s.store, CollectionPurchases, id, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Service) ListPurchases(ctx context.Context) ([]Purchase, error) {
	docs, err := s.store.Query(ctx, CollectionPurchases, nil, &Store.Order{Field: "date", Desc: true})
	if err != nil {
		return nil, &LoadError{Op: "load purchases", Cause: err}
	}
	purchases := make([]Purchase, 0, len(docs))
	for _, doc := range docs {
		var p Purchase
		if err := doc.Decode(&p); err != nil {
			return nil, &LoadError{Op: "decode purchase", Cause: err}
		}
		purchases = append(purchases, p)
	}
	return purchases, nil
}

// SaleInput describes a vehicle disposition. For EMI sales the payment
// split covers the down payment; for full-payment sales it covers the
// total. EntryID is an optional idempotency key for the SALE ledger
// entry.
type SaleInput struct {
	EntryID           string
	CustomerRef       string
	VehicleRef        string
	TotalAmount       int64
	Emi               bool
	DownPayment       int64
	InterestRate      float64
	Frequency         PaymentFrequency
	InstallmentsCount int
	PaymentMethod     PaymentMethod
	CashAmount        int64
	BankAmount        int64
	CreditAmount      int64
	OrderNumber       string
	Date              time.Time
}

// RecordSale writes the VehicleSale, creates the EMI schedule when
// installment-based, records the SALE ledger entry for the money
// actually received at sale time, and marks the vehicle SOLD.
func (s *Service) RecordSale(ctx context.Context, in SaleInput) (*VehicleSale, *EmiDetails, error) {
	if in.TotalAmount <= 0 {
		return nil, nil, ErrInvalidAmount
	}

	paidNow := in.TotalAmount
	if in.Emi {
		paidNow = in.DownPayment
	}
	if paidNow > 0 {
		if err := ValidateSplit(paidNow, in.PaymentMethod, in.CashAmount, in.BankAmount, in.CreditAmount); err != nil {
			return nil, nil, err
		}
	}

	vehicle, err := s.GetVehicle(ctx, in.VehicleRef)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve vehicle %s: %w", in.VehicleRef, err)
	}
	if vehicle.Status != VehicleInStock {
		return nil, nil, ErrVehicleUnavailable
	}

	date := in.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}

	sale := &VehicleSale{
		ID:          uuid.NewString(),
		CustomerRef: in.CustomerRef,
		VehicleRef:  in.VehicleRef,
		TotalAmount: in.TotalAmount,
		Emi:         in.Emi,
		Status:      SaleActive,
		Date:        date,
		CreatedAt:   time.Now().UTC(),
	}

	var details *EmiDetails
	if in.Emi {
		details, err = NewEmiSchedule(sale.ID, in.TotalAmount, in.DownPayment, in.InterestRate, in.Frequency, in.InstallmentsCount, date)
		if err != nil {
			return nil, nil, err
		}
		sale.EmiDetailsRef = details.ID
	}

	lock := s.lockFor("person:" + in.CustomerRef)
	lock.Lock()
	defer lock.Unlock()

	customer, err := s.GetPerson(ctx, in.CustomerRef)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve customer %s: %w", in.CustomerRef, err)
	}

	if details != nil {
		if err := s.store.Put(ctx, CollectionEmiDetails, details.ID, details); err != nil {
			return nil, nil, err
		}
	}
	if err := s.store.Put(ctx, CollectionSales, sale.ID, sale); err != nil {
		return nil, nil, err
	}

	if paidNow > 0 {
		entry, err := NewTransaction(EntryInput{
			ID:            in.EntryID,
			PersonRef:     in.CustomerRef,
			Kind:          KindSale,
			Amount:        paidNow,
			PaymentMethod: in.PaymentMethod,
			CashAmount:    in.CashAmount,
			BankAmount:    in.BankAmount,
			CreditAmount:  in.CreditAmount,
			RelatedRef:    sale.ID,
			Date:          date,
			OrderNumber:   in.OrderNumber,
		})
		if err != nil {
			return nil, nil, err
		}
		if err := s.applyEntry(ctx, customer, entry); err != nil {
			return nil, nil, err
		}
	}

	vehicle.Status = VehicleSold
	if err := s.store.Put(ctx, CollectionVehicles, vehicle.ID, vehicle); err != nil {
		return nil, nil, err
	}

	s.log.Info().Str("sale", sale.ID).Str("customer", in.CustomerRef).
		Bool("emi", in.Emi).Int64("totalAmount", in.TotalAmount).Msg("sale recorded")
	return sale, details, nil
}

func (s *Service) GetSale(ctx context.Context, id string) (*VehicleSale, *EmiDetails, error) {
	var sale VehicleSale
	if err := Store.GetAs(ctx, s.store, CollectionSales, id, &sale); err != nil {
		return nil, nil, err
	}
	if sale.EmiDetailsRef == "" {
		return &sale, nil, nil
	}
	var details EmiDetails
	if err := Store.GetAs(ctx, s.store, CollectionEmiDetails, sale.EmiDetailsRef, &details); err != nil {
		if errors.Is(err, Store.ErrNotFound) {
			// Dangling reference; surface the sale anyway.
			return &sale, nil, nil
		}
		return nil, nil, err
	}
	return &sale, &details, nil
}

func (s *Service) ListSales(ctx context.Context) ([]VehicleSale, error) {
	docs, err := s.store.Query(ctx, CollectionSales, nil, &Store.Order{Field: "date", Desc: true})
	if err != nil {
		return nil, &LoadError{Op: "load sales", Cause: err}
	}
	sales := make([]VehicleSale, 0, len(docs))
	for _, doc := range docs {
		var sale VehicleSale
		if err := doc.Decode(&sale); err != nil {
			return nil, &LoadError{Op: "decode sale", Cause: err}
		}
		sales = append(sales, sale)
	}
	return sales, nil
}

// EmiPaymentInput describes one installment payment against a sale.
// EntryID is an optional idempotency key for the EMI_PAYMENT ledger
// entry; a retry carrying the same id is a no-op once the entry exists.
type EmiPaymentInput struct {
	EntryID       string
	SaleRef       string
	Amount        int64
	PaymentMethod PaymentMethod
	CashAmount    int64
	BankAmount    int64
	CreditAmount  int64
	Date          time.Time
}

// RecordEmiPayment advances the installment schedule, records the
// EMI_PAYMENT ledger entry, and completes the sale when the last
// installment is consumed.
func (s *Service) RecordEmiPayment(ctx context.Context, in EmiPaymentInput) (*EmiDetails, *PersonTransaction, error) {
	if err := ValidateSplit(in.Amount, in.PaymentMethod, in.CashAmount, in.BankAmount, in.CreditAmount); err != nil {
		return nil, nil, err
	}

	saleLock := s.lockFor("sale:" + in.SaleRef)
	saleLock.Lock()
	defer saleLock.Unlock()

	var sale VehicleSale
	if err := Store.GetAs(ctx, s.store, CollectionSales, in.SaleRef, &sale); err != nil {
		return nil, nil, fmt.Errorf("resolve sale %s: %w", in.SaleRef, err)
	}
	if !sale.Emi || sale.EmiDetailsRef == "" {
		return nil, nil, ErrNotEmiSale
	}

	var details EmiDetails
	if err := Store.GetAs(ctx, s.store, CollectionEmiDetails, sale.EmiDetailsRef, &details); err != nil {
		return nil, nil, fmt.Errorf("resolve emi details %s: %w", sale.EmiDetailsRef, err)
	}

	// A retry carrying an idempotency key whose entry is already on the
	// ledger has nothing left to do; the schedule must not advance twice.
	if in.EntryID != "" {
		if existing, err := s.GetTransaction(ctx, in.EntryID); err == nil {
			s.log.Warn().Str("transaction", in.EntryID).Msg("payment already recorded, skipping")
			return &details, existing, nil
		} else if !errors.Is(err, Store.ErrNotFound) {
			return nil, nil, err
		}
	}

	date := in.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}

	entry, err := NewTransaction(EntryInput{
		ID:            in.EntryID,
		PersonRef:     sale.CustomerRef,
		Kind:          KindEmiPayment,
		Amount:        in.Amount,
		PaymentMethod: in.PaymentMethod,
		CashAmount:    in.CashAmount,
		BankAmount:    in.BankAmount,
		CreditAmount:  in.CreditAmount,
		RelatedRef:    sale.ID,
		Date:          date,
	})
	if err != nil {
		return nil, nil, err
	}

	// The schedule is advanced and persisted before the money moves, and
	// it remembers which entry advanced it. A retry whose first attempt
	// died between the two writes finds its own id on the schedule, skips
	// re-advancing it, and only replays the missing ledger entry.
	var completed bool
	if in.EntryID != "" && details.LastEntryRef == in.EntryID {
		completed = details.RemainingInstallments == 0
	} else {
		completed, err = ApplyPayment(&details, in.Amount, date)
		if err != nil {
			return nil, nil, err
		}
		details.LastEntryRef = entry.ID
		if err := s.store.Put(ctx, CollectionEmiDetails, details.ID, &details); err != nil {
			return nil, nil, err
		}
	}

	personLock := s.lockFor("person:" + sale.CustomerRef)
	personLock.Lock()
	customer, err := s.GetPerson(ctx, sale.CustomerRef)
	if err != nil {
		personLock.Unlock()
		return nil, nil, fmt.Errorf("resolve customer %s: %w", sale.CustomerRef, err)
	}
	if err := s.applyEntry(ctx, customer, entry); err != nil {
		personLock.Unlock()
		return nil, nil, err
	}
	personLock.Unlock()

	if completed {
		sale.Status = SaleCompleted
		if err := s.store.Put(ctx, CollectionSales, sale.ID, &sale); err != nil {
			return nil, nil, err
		}
		s.log.Info().Str("sale", sale.ID).Msg("installment schedule completed")
	}

	return &details, entry, nil
}

func (s *Service) GetTransaction(ctx context.Context, id string) (*PersonTransaction, error) {
	var t PersonTransaction
	if err := Store.GetAs(ctx, s.store, CollectionTransactions, id, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// CancelTransaction voids an entry by writing its reversing twin and
// flipping the original's status to CANCELLED. History is never rewritten;
// the reversal pair stays on the ledger.
func (s *Service) CancelTransaction(ctx context.Context, id string) (*PersonTransaction, error) {
	original, err := s.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}
	if original.Status == StatusCancelled {
		return nil, ErrAlreadyCancelled
	}

	lock := s.lockFor("person:" + original.PersonRef)
	lock.Lock()
	defer lock.Unlock()

	person, err := s.GetPerson(ctx, original.PersonRef)
	if err != nil {
		return nil, fmt.Errorf("resolve person %s: %w", original.PersonRef, err)
	}

	reversal := original.Reversal()
	if err := s.applyEntry(ctx, person, reversal); err != nil {
		return nil, err
	}

	original.Status = StatusCancelled
	if err := s.store.Put(ctx, CollectionTransactions, original.ID, original); err != nil {
		return nil, err
	}

	s.log.Info().Str("transaction", id).Str("reversal", reversal.ID).Msg("transaction cancelled")
	return reversal, nil
}

// TransactionsByPerson exposes the query service through the orchestrator.
func (s *Service) TransactionsByPerson(ctx context.Context, personID string) ([]PersonTransaction, error) {
	return TransactionsByPerson(ctx, s.store, personID)
}

func (s *Service) ListTransactions(ctx context.Context) ([]PersonTransaction, error) {
	docs, err := s.store.Query(ctx, CollectionTransactions, nil, &Store.Order{Field: "date", Desc: true})
	if err != nil {
		return nil, &LoadError{Op: "load transactions", Cause: err}
	}
	entries := make([]PersonTransaction, 0, len(docs))
	for _, doc := range docs {
		var t PersonTransaction
		if err := doc.Decode(&t); err != nil {
			return nil, &LoadError{Op: "decode transaction", Cause: err}
		}
		entries = append(entries, t)
	}
	return entries, nil
}

func (s *Service) ListCapital(ctx context.Context) ([]CapitalTransaction, error) {
	docs, err := s.store.Query(ctx, CollectionCapital, nil, &Store.Order{Field: "date", Desc: true})
	if err != nil {
		return nil, &LoadError{Op: "load capital transactions", Cause: err}
	}
	capital := make([]CapitalTransaction, 0, len(docs))
	for _, doc := range docs {
		var c CapitalTransaction
		if err := doc.Decode(&c); err != nil {
			return nil, &LoadError{Op: "decode capital transaction", Cause: err}
		}
		capital = append(capital, c)
	}
	return capital, nil
}

// AuditBalances recomputes every person's balance from their entries and
// reports drift. Findings are logged and returned; stored balances are
// left untouched for manual reconciliation.
func (s *Service) AuditBalances(ctx context.Context) ([]*BalanceDriftError, error) {
	persons, err := s.ListPersons(ctx, "")
	if err != nil {
		return nil, err
	}

	var drifts []*BalanceDriftError
	for i := range persons {
		p := &persons[i]
		entries, err := TransactionsByPerson(ctx, s.store, p.ID)
		if err != nil {
			return drifts, err
		}
		if err := Recompute(p, entries); err != nil {
			var drift *BalanceDriftError
			if errors.As(err, &drift) {
				s.log.Error().Str("person", p.ID).
					Int64("expected", drift.Expected).
					Int64("stored", drift.Stored).
					Msg("balance drift detected")
				drifts = append(drifts, drift)
				continue
			}
			return drifts, err
		}
	}
	return drifts, nil
}
