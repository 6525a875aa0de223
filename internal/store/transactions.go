package store

import (
	"context"

	"cloud.google.com/go/bigquery"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"

	"github.com/financepro/financepro/internal/domain"
)

// ListTransactions returns the user's transactions ordered by date
// descending. Any remote failure yields an empty list.
func (s *Store) ListTransactions(ctx context.Context, userID string) []domain.Transaction {
	if s.client == nil {
		return []domain.Transaction{}
	}

	q := s.client.Query(`
		SELECT
			transaction_id,
			user_id,
			date,
			category,
			description,
			amount,
			payment_method,
			type,
			attachment,
			attachment_name,
			created_ts
		FROM ` + s.qualified(transactionsTable) + `
		WHERE user_id = @user_id
		ORDER BY date DESC, created_ts DESC
	`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to list transactions")
		return []domain.Transaction{}
	}

	var out []domain.Transaction
	for {
		var row TransactionRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			s.log.Warn().Err(err).Msg("Failed to read transaction row")
			return []domain.Transaction{}
		}
		out = append(out, toDomainTransaction(&row))
	}
	if out == nil {
		out = []domain.Transaction{}
	}
	return out
}

// AddTransaction inserts one transaction scoped to the user. Returns the
// stored transaction with its assigned identifier, or nil on failure.
func (s *Store) AddTransaction(ctx context.Context, userID string, tx domain.Transaction) *domain.Transaction {
	if s.client == nil {
		return nil
	}

	tx.ID = uuid.New().String()
	row, err := toTransactionRow(userID, tx)
	if err != nil {
		s.log.Warn().Err(err).Str("date", tx.Date).Msg("Rejected transaction with invalid date")
		return nil
	}

	inserter := s.table(transactionsTable).Inserter()
	if err := inserter.Put(ctx, []*TransactionRow{row}); err != nil {
		s.log.Warn().Err(err).Msg("Failed to insert transaction")
		return nil
	}
	return &tx
}

// UpdateTransaction replaces the mutable fields of one transaction, filtered
// by both identifier and owner. Returns the updated transaction or nil.
func (s *Store) UpdateTransaction(ctx context.Context, userID, id string, tx domain.Transaction) *domain.Transaction {
	if s.client == nil {
		return nil
	}

	row, err := toTransactionRow(userID, tx)
	if err != nil {
		s.log.Warn().Err(err).Str("date", tx.Date).Msg("Rejected transaction with invalid date")
		return nil
	}

	err = s.runDML(ctx, `
		UPDATE `+s.qualified(transactionsTable)+`
		SET date = @date,
		    category = @category,
		    description = @description,
		    amount = @amount,
		    payment_method = @payment_method,
		    type = @type,
		    attachment = @attachment,
		    attachment_name = @attachment_name
		WHERE transaction_id = @transaction_id
		  AND user_id = @user_id
	`, updateTransactionParams(row, userID, id))
	if err != nil {
		s.log.Warn().Err(err).Str("transaction_id", id).Msg("Failed to update transaction")
		return nil
	}

	tx.ID = id
	return &tx
}

// updateTransactionParams binds the row's already-typed column values. The
// DATE and NUMERIC columns take civil.Date and *big.Rat directly; string
// renderings are not coerced in DML assignment.
func updateTransactionParams(row *TransactionRow, userID, id string) []bigquery.QueryParameter {
	return []bigquery.QueryParameter{
		{Name: "date", Value: row.Date},
		{Name: "category", Value: row.Category},
		{Name: "description", Value: row.Description},
		{Name: "amount", Value: row.Amount},
		{Name: "payment_method", Value: row.PaymentMethod},
		{Name: "type", Value: row.Type},
		{Name: "attachment", Value: row.Attachment.StringVal},
		{Name: "attachment_name", Value: row.AttachmentName.StringVal},
		{Name: "transaction_id", Value: id},
		{Name: "user_id", Value: userID},
	}
}

// DeleteTransaction removes one transaction, filtered by both identifier and
// owner. Reports success as a boolean; failures are swallowed.
func (s *Store) DeleteTransaction(ctx context.Context, userID, id string) bool {
	if s.client == nil {
		return false
	}

	err := s.runDML(ctx, `
		DELETE FROM `+s.qualified(transactionsTable)+`
		WHERE transaction_id = @transaction_id
		  AND user_id = @user_id
	`, []bigquery.QueryParameter{
		{Name: "transaction_id", Value: id},
		{Name: "user_id", Value: userID},
	})
	if err != nil {
		s.log.Warn().Err(err).Str("transaction_id", id).Msg("Failed to delete transaction")
		return false
	}
	return true
}
