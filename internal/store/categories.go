package store

import (
	"context"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"

	"github.com/financepro/financepro/internal/domain"
)

// ListCategories returns the user's categories ordered alphabetically.
// When unconfigured, on remote failure, or when the user has none yet, it
// serves the built-in defaults so the forms always have something to offer.
func (s *Store) ListCategories(ctx context.Context, userID string) []domain.Category {
	if s.client == nil {
		return domain.DefaultCategories()
	}

	q := s.client.Query(`
		SELECT
			category_id,
			user_id,
			name,
			type,
			created_ts
		FROM ` + s.qualified(categoriesTable) + `
		WHERE user_id = @user_id
		ORDER BY name
	`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to list categories")
		return domain.DefaultCategories()
	}

	var out []domain.Category
	for {
		var row CategoryRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			s.log.Warn().Err(err).Msg("Failed to read category row")
			return domain.DefaultCategories()
		}
		out = append(out, toDomainCategory(&row))
	}
	if len(out) == 0 {
		return domain.DefaultCategories()
	}
	return out
}

// AddCategory inserts one category scoped to the user, or returns nil.
func (s *Store) AddCategory(ctx context.Context, userID, name string, typ domain.TransactionType) *domain.Category {
	if s.client == nil {
		return nil
	}

	row := &CategoryRow{
		CategoryID: uuid.New().String(),
		UserID:     userID,
		Name:       name,
		Type:       string(typ),
		CreatedTS:  time.Now().UTC(),
	}

	inserter := s.table(categoriesTable).Inserter()
	if err := inserter.Put(ctx, []*CategoryRow{row}); err != nil {
		s.log.Warn().Err(err).Str("name", name).Msg("Failed to insert category")
		return nil
	}

	cat := toDomainCategory(row)
	return &cat
}

// UpdateCategory renames or retypes one category, filtered by identifier and
// owner. Existing transactions keep the old name string.
func (s *Store) UpdateCategory(ctx context.Context, userID, id, name string, typ domain.TransactionType) *domain.Category {
	if s.client == nil {
		return nil
	}

	err := s.runDML(ctx, `
		UPDATE `+s.qualified(categoriesTable)+`
		SET name = @name, type = @type
		WHERE category_id = @category_id
		  AND user_id = @user_id
	`, []bigquery.QueryParameter{
		{Name: "name", Value: name},
		{Name: "type", Value: string(typ)},
		{Name: "category_id", Value: id},
		{Name: "user_id", Value: userID},
	})
	if err != nil {
		s.log.Warn().Err(err).Str("category_id", id).Msg("Failed to update category")
		return nil
	}

	return &domain.Category{ID: id, Name: name, Type: typ}
}

// DeleteCategory removes one category, filtered by identifier and owner.
// It never touches transactions referencing the category by name.
func (s *Store) DeleteCategory(ctx context.Context, userID, id string) bool {
	if s.client == nil {
		return false
	}

	err := s.runDML(ctx, `
		DELETE FROM `+s.qualified(categoriesTable)+`
		WHERE category_id = @category_id
		  AND user_id = @user_id
	`, []bigquery.QueryParameter{
		{Name: "category_id", Value: id},
		{Name: "user_id", Value: userID},
	})
	if err != nil {
		s.log.Warn().Err(err).Str("category_id", id).Msg("Failed to delete category")
		return false
	}
	return true
}
