package domain

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestTransactionAmountRoundTrip(t *testing.T) {
	tx := Transaction{
		ID:            "tx-1",
		Date:          "2024-03-01",
		Category:      "Aluguel",
		Description:   "Aluguel do escritório",
		Amount:        decimal.RequireFromString("150.50"),
		PaymentMethod: "Boleto",
		Type:          TypeExpense,
	}

	raw, err := json.Marshal(tx)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var got Transaction
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if !got.Amount.Equal(decimal.RequireFromString("150.50")) {
		t.Errorf("amount drifted: got %s, want 150.50", got.Amount)
	}
	if got.Date != "2024-03-01" {
		t.Errorf("date changed: got %q, want 2024-03-01", got.Date)
	}
}

func TestSignedAmount(t *testing.T) {
	tests := []struct {
		name string
		typ  TransactionType
		want string
	}{
		{name: "expense is negative", typ: TypeExpense, want: "-99.9"},
		{name: "income is positive", typ: TypeIncome, want: "99.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := Transaction{Amount: decimal.RequireFromString("99.90"), Type: tt.typ}
			if got := tx.SignedAmount(); got.String() != tt.want {
				t.Errorf("SignedAmount() = %s, want %s", got, tt.want)
			}
			// Stored magnitude stays positive regardless of type.
			if tx.Amount.IsNegative() {
				t.Error("stored amount must never be negative")
			}
		})
	}
}

func TestDefaultCategories(t *testing.T) {
	cats := DefaultCategories()
	if len(cats) != 4 {
		t.Fatalf("expected 4 default categories, got %d", len(cats))
	}

	wantNames := map[string]TransactionType{
		"Vendas":   TypeIncome,
		"Serviços": TypeIncome,
		"Salários": TypeExpense,
		"Aluguel":  TypeExpense,
	}
	for _, c := range cats {
		typ, ok := wantNames[c.Name]
		if !ok {
			t.Errorf("unexpected default category %q", c.Name)
			continue
		}
		if c.Type != typ {
			t.Errorf("category %q has type %s, want %s", c.Name, c.Type, typ)
		}
	}
}
