package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/financepro/financepro/internal/domain"
)

const sheetName = "Relatório"

// WriteExcel writes a formatted spreadsheet: title, totals block, then the
// tabular body in the same column order as the CSV export.
func WriteExcel(w io.Writer, title string, transactions []domain.Transaction) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return err
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	f.SetCellValue(sheetName, "A1", title)

	totals := Summarize(transactions)
	f.SetCellValue(sheetName, "A3", "Receitas")
	f.SetCellValue(sheetName, "B3", FormatBRL(totals.Income))
	f.SetCellValue(sheetName, "A4", "Despesas")
	f.SetCellValue(sheetName, "B4", FormatBRL(totals.Expense))
	f.SetCellValue(sheetName, "A5", "Saldo")
	f.SetCellValue(sheetName, "B5", FormatBRL(totals.Balance))

	const headerRow = 7
	for i, h := range csvHeader {
		cell, err := excelize.CoordinatesToCellName(i+1, headerRow)
		if err != nil {
			return err
		}
		f.SetCellValue(sheetName, cell, h)
	}

	for i, tx := range transactions {
		row := headerRow + 1 + i
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), tx.Date)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), string(tx.Type))
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), tx.Category)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), tx.Description)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), tx.Amount.StringFixed(2))
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), tx.PaymentMethod)
	}

	return f.Write(w)
}
