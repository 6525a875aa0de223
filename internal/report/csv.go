package report

import (
	"encoding/csv"
	"io"

	"github.com/financepro/financepro/internal/domain"
)

// csvHeader fixes the export column order.
var csvHeader = []string{"Date", "Type", "Category", "Description", "Amount", "Method"}

// WriteCSV writes the transactions as semicolon-separated values. The
// semicolon keeps the file openable in spreadsheet apps configured for
// locales where the comma is the decimal separator.
func WriteCSV(w io.Writer, transactions []domain.Transaction) error {
	cw := csv.NewWriter(w)
	cw.Comma = ';'

	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, tx := range transactions {
		record := []string{
			tx.Date,
			string(tx.Type),
			tx.Category,
			tx.Description,
			tx.Amount.StringFixed(2),
			tx.PaymentMethod,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
