// Package report builds filtered views, totals and export documents over a
// transaction list. Everything here is a pure transformation; no remote
// calls, no mutation of the input slices.
package report

import (
	"github.com/financepro/financepro/internal/domain"
)

// Filter narrows a transaction list. Zero-value fields are inactive; active
// fields combine conjunctively.
type Filter struct {
	Category      string
	Type          domain.TransactionType
	PaymentMethod string
	From          string // inclusive, YYYY-MM-DD
	To            string // inclusive, YYYY-MM-DD
}

// matches reports whether every active criterion accepts the transaction.
// Date strings compare lexicographically, which is chronological for the
// fixed YYYY-MM-DD format.
func (f Filter) matches(tx domain.Transaction) bool {
	if f.Category != "" && tx.Category != f.Category {
		return false
	}
	if f.Type != "" && tx.Type != f.Type {
		return false
	}
	if f.PaymentMethod != "" && tx.PaymentMethod != f.PaymentMethod {
		return false
	}
	if f.From != "" && tx.Date < f.From {
		return false
	}
	if f.To != "" && tx.Date > f.To {
		return false
	}
	return true
}

// Apply returns the transactions accepted by the filter, preserving order.
// The result is always non-nil.
func (f Filter) Apply(transactions []domain.Transaction) []domain.Transaction {
	out := make([]domain.Transaction, 0, len(transactions))
	for _, tx := range transactions {
		if f.matches(tx) {
			out = append(out, tx)
		}
	}
	return out
}
