package Controllers

import (
	"github.com/gofiber/fiber/v2"

	"Gaadi/Ledger"
)

// PersonController handles customer/broker/middle-man endpoints.
type PersonController struct {
	Svc *Ledger.Service
}

func NewPersonController(svc *Ledger.Service) *PersonController {
	return &PersonController{Svc: svc}
}

type CreatePersonInput struct {
	Type           string   `json:"type" validate:"required,oneof=CUSTOMER BROKER MIDDLEMAN"`
	Name           string   `json:"name" validate:"required"`
	Phone          string   `json:"phone"`
	Address        string   `json:"address"`
	IDProofImages  []string `json:"id_proof_images"`
	OpeningBalance int64    `json:"opening_balance"`
}

func (c *PersonController) CreatePerson(ctx *fiber.Ctx) error {
	var input CreatePersonInput
	if !parseBody(ctx, &input) {
		return nil
	}

	personType, err := Ledger.ParsePersonType(input.Type)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	person := &Ledger.Person{
		Type:           personType,
		Name:           input.Name,
		Phone:          input.Phone,
		Address:        input.Address,
		IDProofImages:  input.IDProofImages,
		OpeningBalance: input.OpeningBalance,
	}
	if err := c.Svc.RegisterPerson(ctx.Context(), person); err != nil {
		return respondError(ctx, err)
	}

	return ctx.Status(fiber.StatusCreated).JSON(person)
}

// GetPersons lists persons, optionally filtered by ?type=CUSTOMER.
func (c *PersonController) GetPersons(ctx *fiber.Ctx) error {
	var personType Ledger.PersonType
	if q := ctx.Query("type"); q != "" {
		parsed, err := Ledger.ParsePersonType(q)
		if err != nil {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		personType = parsed
	}

	persons, err := c.Svc.ListPersons(ctx.Context(), personType)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(persons)
}

func (c *PersonController) GetPerson(ctx *fiber.Ctx) error {
	person, err := c.Svc.GetPerson(ctx.Context(), ctx.Params("id"))
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(person)
}

type UpdatePersonInput struct {
	Name          string   `json:"name"`
	Phone         string   `json:"phone"`
	Address       string   `json:"address"`
	IDProofImages []string `json:"id_proof_images"`
}

// UpdatePerson edits display fields only; balances move through ledger
// entries exclusively.
func (c *PersonController) UpdatePerson(ctx *fiber.Ctx) error {
	var input UpdatePersonInput
	if !parseBody(ctx, &input) {
		return nil
	}

	person, err := c.Svc.UpdatePersonDetails(ctx.Context(), ctx.Params("id"),
		input.Name, input.Phone, input.Address, input.IDProofImages)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(person)
}

// GetPersonBalance returns the stored balance alongside the value
// re-derived from the ledger so drift is visible at the point of use.
func (c *PersonController) GetPersonBalance(ctx *fiber.Ctx) error {
	id := ctx.Params("id")
	person, err := c.Svc.GetPerson(ctx.Context(), id)
	if err != nil {
		return respondError(ctx, err)
	}

	entries, err := c.Svc.TransactionsByPerson(ctx.Context(), id)
	if err != nil {
		return respondError(ctx, err)
	}

	derived := person.OpeningBalance
	for i := range entries {
		derived += Ledger.SignedContribution(&entries[i])
	}

	return ctx.JSON(fiber.Map{
		"person_id": id,
		"name":      person.Name,
		"balance":   person.Balance,
		"derived":   derived,
		"drift":     person.Balance != derived,
	})
}

func (c *PersonController) GetPersonTransactions(ctx *fiber.Ctx) error {
	entries, err := c.Svc.TransactionsByPerson(ctx.Context(), ctx.Params("id"))
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(entries)
}
