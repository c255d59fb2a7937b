package Ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Gaadi/Store"
)

// flakyStore fails a limited number of Puts against one collection to
// simulate transient store outages mid-operation.
type flakyStore struct {
	Store.Store
	failCollection string
	failures       int
}

func (f *flakyStore) Put(ctx context.Context, collection, id string, doc interface{}) error {
	if collection == f.failCollection && f.failures > 0 {
		f.failures--
		return errors.New("transient write failure")
	}
	return f.Store.Put(ctx, collection, id, doc)
}

type fixture struct {
	svc   *Service
	store *Store.MemoryStore
	ctx   context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mem := Store.NewMemory()
	return &fixture{
		svc:   NewService(mem, zerolog.Nop()),
		store: mem,
		ctx:   context.Background(),
	}
}

func (f *fixture) person(t *testing.T, personType PersonType, name string) *Person {
	t.Helper()
	p := &Person{Type: personType, Name: name}
	require.NoError(t, f.svc.RegisterPerson(f.ctx, p))
	return p
}

func (f *fixture) vehicle(t *testing.T) *Vehicle {
	t.Helper()
	v := &Vehicle{Make: "Maruti", Model: "Swift", Year: 2019, Price: 450000}
	require.NoError(t, f.svc.SaveVehicle(f.ctx, v))
	return v
}

func TestRegisterPersonOpeningBalance(t *testing.T) {
	f := newFixture(t)
	p := &Person{Type: PersonCustomer, Name: "Asha", OpeningBalance: 1500}
	require.NoError(t, f.svc.RegisterPerson(f.ctx, p))

	got, err := f.svc.GetPerson(f.ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1500), got.Balance)
	assert.Equal(t, int64(1), got.Version)
}

func TestRegisterPersonRejectsUnknownType(t *testing.T) {
	f := newFixture(t)
	err := f.svc.RegisterPerson(f.ctx, &Person{Type: "DEALER", Name: "x"})
	assert.Error(t, err)
}

func TestRecordPurchase(t *testing.T) {
	f := newFixture(t)
	seller := f.person(t, PersonCustomer, "Ravi")
	broker := f.person(t, PersonBroker, "Iqbal")
	v := f.vehicle(t)

	purchase, err := f.svc.RecordPurchase(f.ctx, PurchaseInput{
		VehicleRef:    v.ID,
		SellerRef:     seller.ID,
		BrokerRef:     broker.ID,
		BrokerFee:     5000,
		GrandTotal:    400000,
		GstAmount:     36000,
		OrderNumber:   "PO-7",
		PaymentMethod: MethodMixed,
		CashAmount:    100000,
		BankAmount:    300000,
	})
	require.NoError(t, err)

	gotSeller, err := f.svc.GetPerson(f.ctx, seller.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(-400000), gotSeller.Balance)

	gotBroker, err := f.svc.GetPerson(f.ctx, broker.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(-5000), gotBroker.Balance)

	capital, err := f.svc.ListCapital(f.ctx)
	require.NoError(t, err)
	require.Len(t, capital, 1)
	assert.Equal(t, purchase.ID, capital[0].PurchaseRef)
	assert.Equal(t, int64(400000), capital[0].Amount)

	gotVehicle, err := f.svc.GetVehicle(f.ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, VehicleInStock, gotVehicle.Status)
}

func TestRecordPurchaseSplitMismatch(t *testing.T) {
	f := newFixture(t)
	seller := f.person(t, PersonCustomer, "Ravi")
	v := f.vehicle(t)

	_, err := f.svc.RecordPurchase(f.ctx, PurchaseInput{
		VehicleRef:    v.ID,
		SellerRef:     seller.ID,
		GrandTotal:    400000,
		PaymentMethod: MethodCash,
		CashAmount:    350000,
	})
	var mismatch *SplitMismatchError
	require.ErrorAs(t, err, &mismatch)

	// Nothing was written.
	gotSeller, err := f.svc.GetPerson(f.ctx, seller.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), gotSeller.Balance)
}

func TestRecordSaleFullPayment(t *testing.T) {
	f := newFixture(t)
	customer := f.person(t, PersonCustomer, "Asha")
	v := f.vehicle(t)

	sale, details, err := f.svc.RecordSale(f.ctx, SaleInput{
		CustomerRef:   customer.ID,
		VehicleRef:    v.ID,
		TotalAmount:   500000,
		PaymentMethod: MethodBank,
		BankAmount:    500000,
	})
	require.NoError(t, err)
	assert.Nil(t, details)
	assert.Equal(t, SaleActive, sale.Status)

	gotCustomer, err := f.svc.GetPerson(f.ctx, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(500000), gotCustomer.Balance)

	gotVehicle, err := f.svc.GetVehicle(f.ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, VehicleSold, gotVehicle.Status)

	// The vehicle cannot be sold twice.
	_, _, err = f.svc.RecordSale(f.ctx, SaleInput{
		CustomerRef:   customer.ID,
		VehicleRef:    v.ID,
		TotalAmount:   500000,
		PaymentMethod: MethodBank,
		BankAmount:    500000,
	})
	assert.ErrorIs(t, err, ErrVehicleUnavailable)
}

func TestRecordSaleEmi(t *testing.T) {
	f := newFixture(t)
	customer := f.person(t, PersonCustomer, "Asha")
	v := f.vehicle(t)

	sale, details, err := f.svc.RecordSale(f.ctx, SaleInput{
		CustomerRef:       customer.ID,
		VehicleRef:        v.ID,
		TotalAmount:       100000,
		Emi:               true,
		DownPayment:       20000,
		InterestRate:      0,
		Frequency:         FrequencyMonthly,
		InstallmentsCount: 10,
		PaymentMethod:     MethodCash,
		CashAmount:        20000,
		Date:              time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.NotNil(t, details)
	assert.Equal(t, sale.EmiDetailsRef, details.ID)
	assert.Equal(t, int64(8000), details.InstallmentAmount)

	gotCustomer, err := f.svc.GetPerson(f.ctx, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(20000), gotCustomer.Balance)
}

func TestRecordEmiPaymentToCompletion(t *testing.T) {
	f := newFixture(t)
	customer := f.person(t, PersonCustomer, "Asha")
	v := f.vehicle(t)

	sale, _, err := f.svc.RecordSale(f.ctx, SaleInput{
		CustomerRef:       customer.ID,
		VehicleRef:        v.ID,
		TotalAmount:       100000,
		Emi:               true,
		DownPayment:       20000,
		Frequency:         FrequencyMonthly,
		InstallmentsCount: 10,
		PaymentMethod:     MethodCash,
		CashAmount:        20000,
	})
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		details, entry, err := f.svc.RecordEmiPayment(f.ctx, EmiPaymentInput{
			SaleRef:       sale.ID,
			Amount:        8000,
			PaymentMethod: MethodCash,
			CashAmount:    8000,
		})
		require.NoError(t, err)
		assert.Equal(t, KindEmiPayment, entry.Kind)
		assert.Equal(t, i+1, details.PaidInstallments)
	}

	gotSale, gotDetails, err := f.svc.GetSale(f.ctx, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, SaleCompleted, gotSale.Status)
	assert.Equal(t, ScheduleCompleted, gotDetails.State())

	// Down payment plus ten installments.
	gotCustomer, err := f.svc.GetPerson(f.ctx, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(100000), gotCustomer.Balance)

	_, _, err = f.svc.RecordEmiPayment(f.ctx, EmiPaymentInput{
		SaleRef:       sale.ID,
		Amount:        8000,
		PaymentMethod: MethodCash,
		CashAmount:    8000,
	})
	assert.ErrorIs(t, err, ErrScheduleComplete)
}

func TestRecordEmiPaymentOnFullSale(t *testing.T) {
	f := newFixture(t)
	customer := f.person(t, PersonCustomer, "Asha")
	v := f.vehicle(t)

	sale, _, err := f.svc.RecordSale(f.ctx, SaleInput{
		CustomerRef:   customer.ID,
		VehicleRef:    v.ID,
		TotalAmount:   500000,
		PaymentMethod: MethodBank,
		BankAmount:    500000,
	})
	require.NoError(t, err)

	_, _, err = f.svc.RecordEmiPayment(f.ctx, EmiPaymentInput{
		SaleRef:       sale.ID,
		Amount:        8000,
		PaymentMethod: MethodCash,
		CashAmount:    8000,
	})
	assert.ErrorIs(t, err, ErrNotEmiSale)
}

// newFlakyEmiFixture builds a service over a flakyStore with an EMI sale
// already recorded: 100000 total, 20000 down, ten installments of 8000.
func newFlakyEmiFixture(t *testing.T) (*Service, *flakyStore, *Person, *VehicleSale) {
	t.Helper()
	flaky := &flakyStore{Store: Store.NewMemory()}
	svc := NewService(flaky, zerolog.Nop())
	ctx := context.Background()

	customer := &Person{Type: PersonCustomer, Name: "Asha"}
	require.NoError(t, svc.RegisterPerson(ctx, customer))
	v := &Vehicle{Make: "Maruti", Model: "Swift", Price: 450000}
	require.NoError(t, svc.SaveVehicle(ctx, v))

	sale, _, err := svc.RecordSale(ctx, SaleInput{
		CustomerRef:       customer.ID,
		VehicleRef:        v.ID,
		TotalAmount:       100000,
		Emi:               true,
		DownPayment:       20000,
		Frequency:         FrequencyMonthly,
		InstallmentsCount: 10,
		PaymentMethod:     MethodCash,
		CashAmount:        20000,
	})
	require.NoError(t, err)
	return svc, flaky, customer, sale
}

func TestRecordEmiPaymentRetryAfterFailedScheduleWrite(t *testing.T) {
	svc, flaky, customer, sale := newFlakyEmiFixture(t)
	ctx := context.Background()

	flaky.failCollection = CollectionEmiDetails
	flaky.failures = 1

	payment := EmiPaymentInput{
		EntryID:       "emi-key-1",
		SaleRef:       sale.ID,
		Amount:        8000,
		PaymentMethod: MethodCash,
		CashAmount:    8000,
	}
	_, _, err := svc.RecordEmiPayment(ctx, payment)
	require.Error(t, err)

	// The failed attempt must not have moved any money.
	got, err := svc.GetPerson(ctx, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(20000), got.Balance)

	details, entry, err := svc.RecordEmiPayment(ctx, payment)
	require.NoError(t, err)
	assert.Equal(t, "emi-key-1", entry.ID)
	assert.Equal(t, 1, details.PaidInstallments)

	// One logical payment: down payment plus a single installment.
	got, err = svc.GetPerson(ctx, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(28000), got.Balance)
}

func TestRecordEmiPaymentRetryAfterFailedEntryWrite(t *testing.T) {
	svc, flaky, customer, sale := newFlakyEmiFixture(t)
	ctx := context.Background()

	flaky.failCollection = CollectionTransactions
	flaky.failures = 1

	payment := EmiPaymentInput{
		EntryID:       "emi-key-2",
		SaleRef:       sale.ID,
		Amount:        8000,
		PaymentMethod: MethodCash,
		CashAmount:    8000,
	}
	_, _, err := svc.RecordEmiPayment(ctx, payment)
	require.Error(t, err)

	// The schedule advanced but the entry write died; the retry must not
	// advance the schedule again, only replay the missing entry.
	details, _, err := svc.RecordEmiPayment(ctx, payment)
	require.NoError(t, err)
	assert.Equal(t, 1, details.PaidInstallments)
	assert.Equal(t, 9, details.RemainingInstallments)

	got, err := svc.GetPerson(ctx, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(28000), got.Balance)
}

func TestRecordEmiPaymentDuplicateSubmit(t *testing.T) {
	svc, _, customer, sale := newFlakyEmiFixture(t)
	ctx := context.Background()

	payment := EmiPaymentInput{
		EntryID:       "emi-key-3",
		SaleRef:       sale.ID,
		Amount:        8000,
		PaymentMethod: MethodCash,
		CashAmount:    8000,
	}
	_, _, err := svc.RecordEmiPayment(ctx, payment)
	require.NoError(t, err)

	// Resubmitting the same key is a no-op returning the stored entry.
	details, entry, err := svc.RecordEmiPayment(ctx, payment)
	require.NoError(t, err)
	assert.Equal(t, "emi-key-3", entry.ID)
	assert.Equal(t, 1, details.PaidInstallments)

	got, err := svc.GetPerson(ctx, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(28000), got.Balance)
}

func TestRecordPurchaseEntryKeyAppliesOnce(t *testing.T) {
	flaky := &flakyStore{Store: Store.NewMemory()}
	svc := NewService(flaky, zerolog.Nop())
	ctx := context.Background()

	seller := &Person{Type: PersonCustomer, Name: "Ravi"}
	require.NoError(t, svc.RegisterPerson(ctx, seller))
	v := &Vehicle{Make: "Maruti", Model: "Swift", Price: 450000}
	require.NoError(t, svc.SaveVehicle(ctx, v))

	// The capital write fails after the entry is applied; the retry
	// carries the same key, so the seller is debited exactly once.
	flaky.failCollection = CollectionCapital
	flaky.failures = 1

	purchase := PurchaseInput{
		EntryID:       "purchase-key-1",
		VehicleRef:    v.ID,
		SellerRef:     seller.ID,
		GrandTotal:    400000,
		PaymentMethod: MethodBank,
		BankAmount:    400000,
	}
	_, err := svc.RecordPurchase(ctx, purchase)
	require.Error(t, err)

	_, err = svc.RecordPurchase(ctx, purchase)
	require.NoError(t, err)

	got, err := svc.GetPerson(ctx, seller.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(-400000), got.Balance)
}

func TestApplyEntryIdempotent(t *testing.T) {
	f := newFixture(t)
	customer := f.person(t, PersonCustomer, "Asha")

	entry, err := NewTransaction(EntryInput{
		PersonRef:     customer.ID,
		Kind:          KindSale,
		Amount:        5000,
		PaymentMethod: MethodCash,
		CashAmount:    5000,
	})
	require.NoError(t, err)

	p, err := f.svc.GetPerson(f.ctx, customer.ID)
	require.NoError(t, err)
	require.NoError(t, f.svc.applyEntry(f.ctx, p, entry))

	// A retry with the same entry id must not double-count.
	p, err = f.svc.GetPerson(f.ctx, customer.ID)
	require.NoError(t, err)
	require.NoError(t, f.svc.applyEntry(f.ctx, p, entry))

	got, err := f.svc.GetPerson(f.ctx, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), got.Balance)
}

func TestCancelTransaction(t *testing.T) {
	f := newFixture(t)
	customer := f.person(t, PersonCustomer, "Asha")
	v := f.vehicle(t)

	_, _, err := f.svc.RecordSale(f.ctx, SaleInput{
		CustomerRef:   customer.ID,
		VehicleRef:    v.ID,
		TotalAmount:   500000,
		PaymentMethod: MethodBank,
		BankAmount:    500000,
	})
	require.NoError(t, err)

	entries, err := f.svc.TransactionsByPerson(f.ctx, customer.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	reversal, err := f.svc.CancelTransaction(f.ctx, entries[0].ID)
	require.NoError(t, err)
	assert.Equal(t, entries[0].ID, reversal.ReversalOf)

	gotCustomer, err := f.svc.GetPerson(f.ctx, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), gotCustomer.Balance)

	original, err := f.svc.GetTransaction(f.ctx, entries[0].ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, original.Status)

	_, err = f.svc.CancelTransaction(f.ctx, entries[0].ID)
	assert.ErrorIs(t, err, ErrAlreadyCancelled)
}

func TestAuditBalances(t *testing.T) {
	f := newFixture(t)
	customer := f.person(t, PersonCustomer, "Asha")
	seller := f.person(t, PersonCustomer, "Ravi")
	v := f.vehicle(t)

	_, err := f.svc.RecordPurchase(f.ctx, PurchaseInput{
		VehicleRef:    v.ID,
		SellerRef:     seller.ID,
		GrandTotal:    400000,
		PaymentMethod: MethodBank,
		BankAmount:    400000,
	})
	require.NoError(t, err)

	_, _, err = f.svc.RecordSale(f.ctx, SaleInput{
		CustomerRef:   customer.ID,
		VehicleRef:    v.ID,
		TotalAmount:   500000,
		PaymentMethod: MethodBank,
		BankAmount:    500000,
	})
	require.NoError(t, err)

	drifts, err := f.svc.AuditBalances(f.ctx)
	require.NoError(t, err)
	assert.Empty(t, drifts)

	// Corrupt a stored balance behind the service's back.
	corrupted, err := f.svc.GetPerson(f.ctx, customer.ID)
	require.NoError(t, err)
	corrupted.Balance += 12345
	require.NoError(t, f.store.Put(f.ctx, CollectionPersons, corrupted.ID, corrupted))

	drifts, err = f.svc.AuditBalances(f.ctx)
	require.NoError(t, err)
	require.Len(t, drifts, 1)
	assert.Equal(t, customer.ID, drifts[0].PersonID)
	assert.Equal(t, int64(500000), drifts[0].Expected)
	assert.Equal(t, int64(512345), drifts[0].Stored)

	// Drift is reported, never auto-corrected.
	stored, err := f.svc.GetPerson(f.ctx, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(512345), stored.Balance)
}
