package store

import (
	"math/big"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/financepro/financepro/internal/domain"
)

// TransactionRow is the financepro.transactions table shape.
type TransactionRow struct {
	TransactionID string `bigquery:"transaction_id"` // REQUIRED
	UserID        string `bigquery:"user_id"`        // REQUIRED

	Date          civil.Date `bigquery:"date"`           // REQUIRED
	Category      string     `bigquery:"category"`       // REQUIRED, denormalized name
	Description   string     `bigquery:"description"`    // REQUIRED
	Amount        *big.Rat   `bigquery:"amount"`         // REQUIRED NUMERIC, positive magnitude
	PaymentMethod string     `bigquery:"payment_method"` // REQUIRED
	Type          string     `bigquery:"type"`           // REQUIRED, INCOME | EXPENSE

	Attachment     bigquery.NullString `bigquery:"attachment"`      // NULLABLE, base64
	AttachmentName bigquery.NullString `bigquery:"attachment_name"` // NULLABLE

	CreatedTS time.Time `bigquery:"created_ts"` // REQUIRED
}

// CategoryRow is the financepro.categories table shape.
type CategoryRow struct {
	CategoryID string    `bigquery:"category_id"` // REQUIRED
	UserID     string    `bigquery:"user_id"`     // REQUIRED
	Name       string    `bigquery:"name"`        // REQUIRED
	Type       string    `bigquery:"type"`        // REQUIRED, INCOME | EXPENSE
	CreatedTS  time.Time `bigquery:"created_ts"`  // REQUIRED
}

// BackupRow is the financepro.backups table shape. Write-only from the
// application's perspective.
type BackupRow struct {
	BackupID  string            `bigquery:"backup_id"`  // REQUIRED
	UserID    string            `bigquery:"user_id"`    // REQUIRED
	Payload   bigquery.NullJSON `bigquery:"payload"`    // REQUIRED JSON snapshot
	Type      string            `bigquery:"type"`       // REQUIRED, e.g. AUTO_BACKUP
	CreatedTS time.Time         `bigquery:"created_ts"` // REQUIRED
}

// toTransactionRow maps a domain transaction onto the table shape.
func toTransactionRow(userID string, tx domain.Transaction) (*TransactionRow, error) {
	day, err := civil.ParseDate(tx.Date)
	if err != nil {
		return nil, err
	}
	row := &TransactionRow{
		TransactionID: tx.ID,
		UserID:        userID,
		Date:          day,
		Category:      tx.Category,
		Description:   tx.Description,
		Amount:        tx.Amount.Rat(),
		PaymentMethod: tx.PaymentMethod,
		Type:          string(tx.Type),
		CreatedTS:     time.Now().UTC(),
	}
	if tx.Attachment != "" {
		row.Attachment = bigquery.NullString{StringVal: tx.Attachment, Valid: true}
	}
	if tx.AttachmentName != "" {
		row.AttachmentName = bigquery.NullString{StringVal: tx.AttachmentName, Valid: true}
	}
	return row, nil
}

// toDomainTransaction maps a table row back into the domain shape. NUMERIC
// amounts come back as rationals and are rounded to currency precision.
func toDomainTransaction(row *TransactionRow) domain.Transaction {
	amount := decimal.Zero
	if row.Amount != nil {
		amount = decimal.NewFromBigRat(row.Amount, 2)
	}
	return domain.Transaction{
		ID:             row.TransactionID,
		Date:           row.Date.String(),
		Category:       row.Category,
		Description:    row.Description,
		Amount:         amount,
		PaymentMethod:  row.PaymentMethod,
		Type:           domain.TransactionType(row.Type),
		Attachment:     row.Attachment.StringVal,
		AttachmentName: row.AttachmentName.StringVal,
	}
}

func toDomainCategory(row *CategoryRow) domain.Category {
	return domain.Category{
		ID:   row.CategoryID,
		Name: row.Name,
		Type: domain.TransactionType(row.Type),
	}
}
