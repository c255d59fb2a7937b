package Controllers

import (
	"github.com/gofiber/fiber/v2"

	"Gaadi/Ledger"
)

// VehicleController handles dealer stock endpoints.
type VehicleController struct {
	Svc *Ledger.Service
}

func NewVehicleController(svc *Ledger.Service) *VehicleController {
	return &VehicleController{Svc: svc}
}

type CreateVehicleInput struct {
	Make           string `json:"make" validate:"required"`
	Model          string `json:"model" validate:"required"`
	Year           int    `json:"year"`
	RegistrationNo string `json:"registration_no"`
	ChassisNo      string `json:"chassis_no"`
	Price          int64  `json:"price" validate:"min=0"`
}

func (c *VehicleController) CreateVehicle(ctx *fiber.Ctx) error {
	var input CreateVehicleInput
	if !parseBody(ctx, &input) {
		return nil
	}

	vehicle := &Ledger.Vehicle{
		Make:           input.Make,
		Model:          input.Model,
		Year:           input.Year,
		RegistrationNo: input.RegistrationNo,
		ChassisNo:      input.ChassisNo,
		Price:          input.Price,
	}
	if err := c.Svc.SaveVehicle(ctx.Context(), vehicle); err != nil {
		return respondError(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(vehicle)
}

// GetVehicles lists stock, optionally filtered by ?status=IN_STOCK.
func (c *VehicleController) GetVehicles(ctx *fiber.Ctx) error {
	status := Ledger.VehicleStatus(ctx.Query("status"))
	vehicles, err := c.Svc.ListVehicles(ctx.Context(), status)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(vehicles)
}

func (c *VehicleController) GetVehicle(ctx *fiber.Ctx) error {
	vehicle, err := c.Svc.GetVehicle(ctx.Context(), ctx.Params("id"))
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(vehicle)
}

type UpdateVehicleInput struct {
	Make           string `json:"make"`
	Model          string `json:"model"`
	Year           int    `json:"year"`
	RegistrationNo string `json:"registration_no"`
	ChassisNo      string `json:"chassis_no"`
	Price          int64  `json:"price"`
}

func (c *VehicleController) UpdateVehicle(ctx *fiber.Ctx) error {
	vehicle, err := c.Svc.GetVehicle(ctx.Context(), ctx.Params("id"))
	if err != nil {
		return respondError(ctx, err)
	}

	var input UpdateVehicleInput
	if !parseBody(ctx, &input) {
		return nil
	}

	if input.Make != "" {
		vehicle.Make = input.Make
	}
	if input.Model != "" {
		vehicle.Model = input.Model
	}
	if input.Year != 0 {
		vehicle.Year = input.Year
	}
	if input.RegistrationNo != "" {
		vehicle.RegistrationNo = input.RegistrationNo
	}
	if input.ChassisNo != "" {
		vehicle.ChassisNo = input.ChassisNo
	}
	if input.Price != 0 {
		vehicle.Price = input.Price
	}

	if err := c.Svc.SaveVehicle(ctx.Context(), vehicle); err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(vehicle)
}
