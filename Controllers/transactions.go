package Controllers

import (
	"github.com/gofiber/fiber/v2"

	"Gaadi/Ledger"
)

// TransactionController handles direct ledger entry endpoints.
type TransactionController struct {
	Svc *Ledger.Service
}

func NewTransactionController(svc *Ledger.Service) *TransactionController {
	return &TransactionController{Svc: svc}
}

func (c *TransactionController) GetTransaction(ctx *fiber.Ctx) error {
	entry, err := c.Svc.GetTransaction(ctx.Context(), ctx.Params("id"))
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(entry)
}

// CancelTransaction voids an entry through a reversal pair. History is
// never deleted or edited in place.
func (c *TransactionController) CancelTransaction(ctx *fiber.Ctx) error {
	reversal, err := c.Svc.CancelTransaction(ctx.Context(), ctx.Params("id"))
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(fiber.Map{
		"message":  "Transaction cancelled",
		"reversal": reversal,
	})
}
