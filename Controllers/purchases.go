package Controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"Gaadi/Ledger"
)

// PurchaseController handles vehicle acquisition endpoints.
type PurchaseController struct {
	Svc *Ledger.Service
}

func NewPurchaseController(svc *Ledger.Service) *PurchaseController {
	return &PurchaseController{Svc: svc}
}

type CreatePurchaseInput struct {
	EntryID       string `json:"entry_id"`
	VehicleRef    string `json:"vehicle_ref" validate:"required"`
	SellerRef     string `json:"seller_ref" validate:"required"`
	BrokerRef     string `json:"broker_ref"`
	BrokerFee     int64  `json:"broker_fee" validate:"min=0"`
	GrandTotal    int64  `json:"grand_total" validate:"required,gt=0"`
	GstAmount     int64  `json:"gst_amount" validate:"min=0"`
	OrderNumber   string `json:"order_number"`
	PaymentMethod string `json:"payment_method" validate:"required,oneof=CASH BANK CREDIT MIXED"`
	CashAmount    int64  `json:"cash_amount" validate:"min=0"`
	BankAmount    int64  `json:"bank_amount" validate:"min=0"`
	CreditAmount  int64  `json:"credit_amount" validate:"min=0"`
	Date          string `json:"date"`
}

func (c *PurchaseController) CreatePurchase(ctx *fiber.Ctx) error {
	var input CreatePurchaseInput
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

	purchase, err := c.Svc.RecordPurchase(ctx.Context(), Ledger.PurchaseInput{
		EntryID:       input.EntryID,
		VehicleRef:    input.VehicleRef,
		SellerRef:     input.SellerRef,
		BrokerRef:     input.BrokerRef,
		BrokerFee:     input.BrokerFee,
		GrandTotal:    input.GrandTotal,
		GstAmount:     input.GstAmount,
		OrderNumber:   input.OrderNumber,
		PaymentMethod: method,
		CashAmount:    input.CashAmount,
		BankAmount:    input.BankAmount,
		CreditAmount:  input.CreditAmount,
		Date:          date,
	})
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.Status(fiber.StatusCreated).JSON(purchase)
}

func (c *PurchaseController) GetPurchases(ctx *fiber.Ctx) error {
	purchases, err := c.Svc.ListPurchases(ctx.Context())
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(purchases)
}

func (c *PurchaseController) GetPurchase(ctx *fiber.Ctx) error {
	purchase, err := c.Svc.GetPurchase(ctx.Context(), ctx.Params("id"))
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(purchase)
}

// GetCapitalTransactions lists the dealer-capital audit records.
func (c *PurchaseController) GetCapitalTransactions(ctx *fiber.Ctx) error {
	capital, err := c.Svc.ListCapital(ctx.Context())
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(capital)
}
