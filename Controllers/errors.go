package Controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"Gaadi/Ledger"
	"Gaadi/Store"
)

// respondError maps engine errors onto HTTP responses. Validation
// failures are the caller's to fix (400), missing references are 404,
// conflicting state is 409, store trouble is 500 and may be retried.
func respondError(ctx *fiber.Ctx, err error) error {
	var mismatch *Ledger.SplitMismatchError
	var drift *Ledger.BalanceDriftError
	var load *Ledger.LoadError

	switch {
	case errors.Is(err, Store.ErrNotFound):
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Record not found"})
	case errors.As(err, &mismatch):
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":    "Payment split does not reconcile to the total",
			"expected": mismatch.Expected,
			"actual":   mismatch.Actual,
		})
	case errors.Is(err, Ledger.ErrInvalidAmount):
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Amount must be positive"})
	case errors.Is(err, Ledger.ErrScheduleComplete):
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Installment schedule is already complete"})
	case errors.Is(err, Ledger.ErrAlreadyCancelled):
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Transaction is already cancelled"})
	case errors.Is(err, Ledger.ErrVehicleUnavailable):
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Vehicle is not in stock"})
	case errors.Is(err, Ledger.ErrNotEmiSale):
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Sale is not EMI-based"})
	case errors.As(err, &drift):
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":    "Balance drift detected",
			"expected": drift.Expected,
			"stored":   drift.Stored,
		})
	case errors.As(err, &load):
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load records"})
	default:
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
}
