package report

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// FormatBRL renders a decimal amount as localized Brazilian currency,
// e.g. 1234.5 -> "R$1.234,50".
func FormatBRL(amount decimal.Decimal) string {
	cents := amount.Round(2).Shift(2).IntPart()
	return money.New(cents, money.BRL).Display()
}
