package store

import (
	"context"
	"math/big"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/financepro/financepro/internal/domain"
	"github.com/financepro/financepro/internal/logger"
)

// degraded returns a store with no backend, the single explicit degraded
// mode the design supports.
func degraded(t *testing.T) *Store {
	t.Helper()
	return NewWithClient(nil, "", logger.New())
}

func TestDegradedModeReads(t *testing.T) {
	s := degraded(t)
	ctx := context.Background()

	if s.Configured() {
		t.Fatal("store with nil client must report unconfigured")
	}

	cats := s.ListCategories(ctx, "user-1")
	if len(cats) != 4 {
		t.Errorf("expected the 4 built-in default categories, got %d", len(cats))
	}

	txs := s.ListTransactions(ctx, "user-1")
	if len(txs) != 0 {
		t.Errorf("expected empty transaction list, got %d", len(txs))
	}
	if txs == nil {
		t.Error("expected empty slice, not nil")
	}
}

func TestDegradedModeWritesReturnFailureSentinels(t *testing.T) {
	s := degraded(t)
	ctx := context.Background()

	tx := domain.Transaction{
		Date:          "2024-03-01",
		Category:      "Aluguel",
		Description:   "Aluguel",
		Amount:        decimal.RequireFromString("150.50"),
		PaymentMethod: "Boleto",
		Type:          domain.TypeExpense,
	}

	if got := s.AddTransaction(ctx, "user-1", tx); got != nil {
		t.Error("AddTransaction must return nil when unconfigured")
	}
	if got := s.UpdateTransaction(ctx, "user-1", "tx-1", tx); got != nil {
		t.Error("UpdateTransaction must return nil when unconfigured")
	}
	if s.DeleteTransaction(ctx, "user-1", "tx-1") {
		t.Error("DeleteTransaction must report failure when unconfigured")
	}
	if got := s.AddCategory(ctx, "user-1", "Marketing", domain.TypeExpense); got != nil {
		t.Error("AddCategory must return nil when unconfigured")
	}
	if s.DeleteCategory(ctx, "user-1", "cat-1") {
		t.Error("DeleteCategory must report failure when unconfigured")
	}

	res := s.CreateBackupSnapshot(ctx, "user-1", domain.BackupSnapshot{})
	if res.Success {
		t.Error("CreateBackupSnapshot must fail when unconfigured")
	}
}

func TestTransactionRowRoundTrip(t *testing.T) {
	tx := domain.Transaction{
		ID:             "tx-1",
		Date:           "2024-03-01",
		Category:       "Fornecedores",
		Description:    "Papelaria",
		Amount:         decimal.RequireFromString("150.50"),
		PaymentMethod:  "Pix",
		Type:           domain.TypeExpense,
		Attachment:     "aGVsbG8=",
		AttachmentName: "nota.jpg",
	}

	row, err := toTransactionRow("user-1", tx)
	if err != nil {
		t.Fatalf("toTransactionRow: %v", err)
	}
	if row.UserID != "user-1" {
		t.Errorf("row not scoped to owner: %q", row.UserID)
	}

	got := toDomainTransaction(row)
	if !got.Amount.Equal(tx.Amount) {
		t.Errorf("amount drifted through NUMERIC mapping: got %s, want %s", got.Amount, tx.Amount)
	}
	if got.Date != tx.Date {
		t.Errorf("date changed: got %q, want %q", got.Date, tx.Date)
	}
	if got.Attachment != tx.Attachment || got.AttachmentName != tx.AttachmentName {
		t.Error("attachment fields lost in row mapping")
	}
}

func TestUpdateParamsKeepColumnTypes(t *testing.T) {
	tx := domain.Transaction{
		Date:          "2024-03-01",
		Category:      "Aluguel",
		Description:   "Aluguel",
		Amount:        decimal.RequireFromString("150.50"),
		PaymentMethod: "Boleto",
		Type:          domain.TypeExpense,
	}

	row, err := toTransactionRow("user-1", tx)
	if err != nil {
		t.Fatalf("toTransactionRow: %v", err)
	}

	values := make(map[string]interface{})
	for _, p := range updateTransactionParams(row, "user-1", "tx-1") {
		values[p.Name] = p.Value
	}

	day, ok := values["date"].(civil.Date)
	if !ok {
		t.Fatalf("date param is %T, want civil.Date", values["date"])
	}
	if day.String() != tx.Date {
		t.Errorf("date param = %s, want %s", day, tx.Date)
	}

	amount, ok := values["amount"].(*big.Rat)
	if !ok {
		t.Fatalf("amount param is %T, want *big.Rat", values["amount"])
	}
	if !tx.Amount.Equal(decimal.NewFromBigRat(amount, 2)) {
		t.Errorf("amount param = %s, want %s", amount, tx.Amount)
	}

	if values["transaction_id"] != "tx-1" || values["user_id"] != "user-1" {
		t.Error("identifier params not bound")
	}
}

func TestTransactionRowRejectsBadDate(t *testing.T) {
	_, err := toTransactionRow("user-1", domain.Transaction{Date: "01/03/2024"})
	if err == nil {
		t.Error("expected error for non-ISO date")
	}
}
