package Controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"Gaadi/Ledger"
)

// SaleController handles vehicle sale and installment payment endpoints.
type SaleController struct {
	Svc *Ledger.Service
}

func NewSaleController(svc *Ledger.Service) *SaleController {
	return &SaleController{Svc: svc}
}

type CreateSaleInput struct {
	EntryID           string  `json:"entry_id"`
	CustomerRef       string  `json:"customer_ref" validate:"required"`
	VehicleRef        string  `json:"vehicle_ref" validate:"required"`
	TotalAmount       int64   `json:"total_amount" validate:"required,gt=0"`
	Emi               bool    `json:"emi"`
	DownPayment       int64   `json:"down_payment" validate:"min=0"`
	InterestRate      float64 `json:"interest_rate" validate:"min=0"`
	Frequency         string  `json:"frequency"`
	InstallmentsCount int     `json:"installments_count" validate:"min=0"`
	PaymentMethod     string  `json:"payment_method" validate:"required,oneof=CASH BANK CREDIT MIXED"`
	CashAmount        int64   `json:"cash_amount" validate:"min=0"`
	BankAmount        int64   `json:"bank_amount" validate:"min=0"`
	CreditAmount      int64   `json:"credit_amount" validate:"min=0"`
	OrderNumber       string  `json:"order_number"`
	Date              string  `json:"date"`
}

func (c *SaleController) CreateSale(ctx *fiber.Ctx) error {
	var input CreateSaleInput
	if !parseBody(ctx, &input) {
		return nil
	}

	method, err := Ledger.ParsePaymentMethod(input.PaymentMethod)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	frequency := Ledger.FrequencyMonthly
	if input.Emi && input.Frequency != "" {
		frequency, err = Ledger.ParsePaymentFrequency(input.Frequency)
		if err != nil {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
	}

	var date time.Time
	if input.Date != "" {
		date, err = time.Parse("2006-01-02", input.Date)
		if err != nil {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid date format. Use YYYY-MM-DD"})
		}
	}

	sale, details, err := c.Svc.RecordSale(ctx.Context(), Ledger.SaleInput{
		EntryID:           input.EntryID,
		CustomerRef:       input.CustomerRef,
		VehicleRef:        input.VehicleRef,
		TotalAmount:       input.TotalAmount,
		Emi:               input.Emi,
		DownPayment:       input.DownPayment,
		InterestRate:      input.InterestRate,
		Frequency:         frequency,
		InstallmentsCount: input.InstallmentsCount,
		PaymentMethod:     method,
		CashAmount:        input.CashAmount,
		BankAmount:        input.BankAmount,
		CreditAmount:      input.CreditAmount,
		OrderNumber:       input.OrderNumber,
		Date:              date,
	})
	if err != nil {
		return respondError(ctx, err)
	}

	response := fiber.Map{"sale": sale}
	if details != nil {
		response["emi_details"] = details
	}
	return ctx.Status(fiber.StatusCreated).JSON(response)
}

func (c *SaleController) GetSales(ctx *fiber.Ctx) error {
	sales, err := c.Svc.ListSales(ctx.Context())
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(sales)
}

func (c *SaleController) GetSale(ctx *fiber.Ctx) error {
	sale, details, err := c.Svc.GetSale(ctx.Context(), ctx.Params("id"))
	if err != nil {
		return respondError(ctx, err)
	}

	response := fiber.Map{"sale": sale}
	if details != nil {
		response["emi_details"] = details
		response["schedule_state"] = details.State()
		response["next_due_amount"] = details.NextDueAmount()
	}
	return ctx.JSON(response)
}

type EmiPaymentInput struct {
	EntryID       string `json:"entry_id"`
	Amount        int64  `json:"amount" validate:"required,gt=0"`
	PaymentMethod string `json:"payment_method" validate:"required,oneof=CASH BANK CREDIT MIXED"`
	CashAmount    int64  `json:"cash_amount" validate:"min=0"`
	BankAmount    int64  `json:"bank_amount" validate:"min=0"`
	CreditAmount  int64  `json:"credit_amount" validate:"min=0"`
	Date          string `json:"date"`
}

// CreateEmiPayment applies one installment payment to the sale's
// schedule and records the matching ledger entry.
func (c *SaleController) CreateEmiPayment(ctx *fiber.Ctx) error {
	var input EmiPaymentInput
	if !parseBody(ctx, &input) {
		return nil
	}

	method, err := Ledger.ParsePaymentMethod(input.PaymentMethod)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var date time.Time
	if input.Date != "" {
		date, err = time.Parse("2006-01-02", input.Date)
		if err != nil {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid date format. Use YYYY-MM-DD"})
		}
	}

	details, entry, err := c.Svc.RecordEmiPayment(ctx.Context(), Ledger.EmiPaymentInput{
		EntryID:       input.EntryID,
		SaleRef:       ctx.Params("id"),
		Amount:        input.Amount,
		PaymentMethod: method,
		CashAmount:    input.CashAmount,
		BankAmount:    input.BankAmount,
		CreditAmount:  input.CreditAmount,
		Date:          date,
	})
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"emi_details":    details,
		"transaction":    entry,
		"schedule_state": details.State(),
	})
}
