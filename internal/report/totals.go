package report

import (
	"github.com/shopspring/decimal"

	"github.com/financepro/financepro/internal/domain"
)

// Totals are the three headline figures shown on the dashboard.
type Totals struct {
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Balance decimal.Decimal `json:"balance"`
}

// Summarize computes income, expense and balance over the list. Amounts are
// stored unsigned; the type field decides which bucket each one lands in.
func Summarize(transactions []domain.Transaction) Totals {
	var income, expense decimal.Decimal
	for _, tx := range transactions {
		switch tx.Type {
		case domain.TypeIncome:
			income = income.Add(tx.Amount)
		case domain.TypeExpense:
			expense = expense.Add(tx.Amount)
		}
	}
	return Totals{
		Income:  income,
		Expense: expense,
		Balance: income.Sub(expense),
	}
}
