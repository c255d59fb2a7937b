package Controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"Gaadi/Ledger"
)

// AnalyticsController handles dealership-wide summary endpoints.
type AnalyticsController struct {
	Svc *Ledger.Service
}

func NewAnalyticsController(svc *Ledger.Service) *AnalyticsController {
	return &AnalyticsController{Svc: svc}
}

// Summary returns the overall money picture: totals in, totals out, and
// the net position across every ledger entry.
func (c *AnalyticsController) Summary(ctx *fiber.Ctx) error {
	entries, err := c.Svc.ListTransactions(ctx.Context())
	if err != nil {
		return respondError(ctx, err)
	}

	persons, err := c.Svc.ListPersons(ctx.Context(), "")
	if err != nil {
		return respondError(ctx, err)
	}

	var totalIn, totalOut int64
	for i := range entries {
		signed := Ledger.SignedContribution(&entries[i])
		if signed > 0 {
			totalIn += signed
		} else {
			totalOut += signed
		}
	}

	return ctx.JSON(fiber.Map{
		"person_count": len(persons),
		"total_in":     totalIn,
		"total_out":    totalOut,
		"net":          totalIn + totalOut,
	})
}

// MonthlyTransactions returns entry totals grouped by month for the last
// twelve months. Grouping happens in Go rather than in the store; the
// document store has no aggregation surface.
func (c *AnalyticsController) MonthlyTransactions(ctx *fiber.Ctx) error {
	type MonthlyData struct {
		Month string `json:"month"`
		In    int64  `json:"in"`
		Out   int64  `json:"out"`
		Net   int64  `json:"net"`
	}

	endDate := time.Now().UTC()
	startDate := endDate.AddDate(-1, 0, 0)

	entries, err := c.Svc.ListTransactions(ctx.Context())
	if err != nil {
		return respondError(ctx, err)
	}

	monthlySummary := make(map[string]*MonthlyData)
	for i := 0; i < 12; i++ {
		date := endDate.AddDate(0, -i, 0)
		monthlySummary[date.Format("2006-01")] = &MonthlyData{
			Month: date.Format("Jan 2006"),
		}
	}

	for i := range entries {
		entry := &entries[i]
		if entry.Date.Before(startDate) || entry.Date.After(endDate) {
			continue
		}
		data, exists := monthlySummary[entry.Date.Format("2006-01")]
		if !exists {
			continue
		}
		signed := Ledger.SignedContribution(entry)
		if signed > 0 {
			data.In += signed
		} else {
			data.Out += signed
		}
		data.Net = data.In + data.Out
	}

	response := make([]MonthlyData, 0, 12)
	for i := 11; i >= 0; i-- {
		date := endDate.AddDate(0, -i, 0)
		if data, exists := monthlySummary[date.Format("2006-01")]; exists {
			response = append(response, *data)
		}
	}

	return ctx.JSON(response)
}

// OutstandingEmi lists every active installment sale with what is still
// due on it.
func (c *AnalyticsController) OutstandingEmi(ctx *fiber.Ctx) error {
	sales, err := c.Svc.ListSales(ctx.Context())
	if err != nil {
		return respondError(ctx, err)
	}

	type OutstandingSale struct {
		SaleID                string    `json:"sale_id"`
		CustomerRef           string    `json:"customer_ref"`
		NextDueDate           time.Time `json:"next_due_date"`
		NextDueAmount         int64     `json:"next_due_amount"`
		RemainingInstallments int       `json:"remaining_installments"`
	}

	outstanding := make([]OutstandingSale, 0)
	for i := range sales {
		sale := &sales[i]
		if !sale.Emi || sale.Status != Ledger.SaleActive {
			continue
		}
		_, details, err := c.Svc.GetSale(ctx.Context(), sale.ID)
		if err != nil {
			return respondError(ctx, err)
		}
		if details == nil || details.State() == Ledger.ScheduleCompleted {
			continue
		}
		outstanding = append(outstanding, OutstandingSale{
			SaleID:                sale.ID,
			CustomerRef:           sale.CustomerRef,
			NextDueDate:           details.NextDueDate,
			NextDueAmount:         details.NextDueAmount(),
			RemainingInstallments: details.RemainingInstallments,
		})
	}

	return ctx.JSON(outstanding)
}
