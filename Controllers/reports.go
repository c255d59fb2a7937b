package Controllers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"

	"Gaadi/Ledger"
)

// ReportController produces Excel exports of ledger data.
type ReportController struct {
	Svc *Ledger.Service
}

func NewReportController(svc *Ledger.Service) *ReportController {
	return &ReportController{Svc: svc}
}

// ExportPersonLedger streams an xlsx statement of one person's ledger:
// every entry with its signed effect, plus a running balance column
// seeded from the opening balance.
func (c *ReportController) ExportPersonLedger(ctx *fiber.Ctx) error {
	id := ctx.Params("id")
	person, err := c.Svc.GetPerson(ctx.Context(), id)
	if err != nil {
		return respondError(ctx, err)
	}

	entries, err := c.Svc.TransactionsByPerson(ctx.Context(), id)
	if err != nil {
		return respondError(ctx, err)
	}

	file := excelize.NewFile()
	defer file.Close()

	sheet := "Ledger"
	file.SetSheetName("Sheet1", sheet)

	headers := map[string]string{
		"A1": "Date",
		"B1": "Kind",
		"C1": "Order No",
		"D1": "Method",
		"E1": "Amount",
		"F1": "Status",
		"G1": "Running Balance",
	}
	for cell, value := range headers {
		file.SetCellValue(sheet, cell, value)
	}
	file.SetColWidth(sheet, "A", "A", 14)
	file.SetColWidth(sheet, "B", "D", 16)
	file.SetColWidth(sheet, "E", "G", 18)

	// Entries come back newest-first; the statement reads oldest-first.
	running := person.OpeningBalance
	row := 2
	for i := len(entries) - 1; i >= 0; i-- {
		entry := &entries[i]
		running += Ledger.SignedContribution(entry)

		file.SetCellValue(sheet, fmt.Sprintf("A%v", row), entry.Date.Format("2006-01-02"))
		file.SetCellValue(sheet, fmt.Sprintf("B%v", row), string(entry.Kind))
		file.SetCellValue(sheet, fmt.Sprintf("C%v", row), entry.OrderNumber)
		file.SetCellValue(sheet, fmt.Sprintf("D%v", row), string(entry.PaymentMethod))
		file.SetCellValue(sheet, fmt.Sprintf("E%v", row), Ledger.SignedContribution(entry))
		file.SetCellValue(sheet, fmt.Sprintf("F%v", row), string(entry.Status))
		file.SetCellValue(sheet, fmt.Sprintf("G%v", row), running)
		row++
	}

	file.SetCellValue(sheet, fmt.Sprintf("F%v", row), "Closing Balance")
	file.SetCellValue(sheet, fmt.Sprintf("G%v", row), running)

	buffer, err := file.WriteToBuffer()
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to generate report"})
	}

	ctx.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", "ledger-"+person.Name+".xlsx"))
	return ctx.Send(buffer.Bytes())
}
