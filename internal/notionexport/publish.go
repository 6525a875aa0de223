package notionexport

import (
	"context"
	"fmt"

	"github.com/jomei/notionapi"
	"github.com/rs/zerolog"

	"github.com/financepro/financepro/internal/domain"
	"github.com/financepro/financepro/internal/report"
)

// Result summarizes one publish run.
type Result struct {
	Created int
	Deleted int
	Skipped int
}

// Publish pushes the filtered transactions into the Notion database. Pages
// already present for a transaction ID are left alone; pages whose ID is no
// longer in the published set are archived. Per-page failures are logged and
// the run continues.
func Publish(ctx context.Context, client NotionService, databaseID string, transactions []domain.Transaction, filter report.Filter, log zerolog.Logger) (Result, error) {
	var res Result

	selected := filter.Apply(transactions)
	valid := make(map[string]bool, len(selected))
	for _, tx := range selected {
		valid[tx.ID] = true
	}

	pages, err := queryAllPages(ctx, client, databaseID)
	if err != nil {
		return res, fmt.Errorf("query existing pages: %w", err)
	}

	existing := make(map[string]bool, len(pages))
	for _, page := range pages {
		txID := extractTransactionID(page)

		if txID == "" || !valid[txID] {
			if err := client.DeletePage(ctx, string(page.ID)); err != nil {
				log.Warn().Err(err).Str("page_id", string(page.ID)).Msg("Failed to archive stale page")
				continue
			}
			res.Deleted++
			continue
		}
		existing[txID] = true
	}

	for _, tx := range selected {
		if existing[tx.ID] {
			res.Skipped++
			continue
		}

		props := TransactionToNotionProperties(tx)
		page, err := client.CreatePage(ctx, databaseID, props)
		if err != nil {
			log.Warn().Err(err).Str("transaction_id", tx.ID).Msg("Failed to create page")
			continue
		}
		log.Info().Str("transaction_id", tx.ID).Str("page_id", string(page.ID)).Msg("Published transaction")
		res.Created++
	}

	log.Info().
		Int("created", res.Created).
		Int("deleted", res.Deleted).
		Int("skipped", res.Skipped).
		Int("total", len(selected)).
		Msg("Publish completed")

	return res, nil
}

// queryAllPages pages through the whole database.
func queryAllPages(ctx context.Context, client NotionService, databaseID string) ([]notionapi.Page, error) {
	var all []notionapi.Page
	var cursor notionapi.Cursor

	for {
		req := &notionapi.DatabaseQueryRequest{PageSize: 100}
		if cursor != "" {
			req.StartCursor = cursor
		}

		resp, err := client.QueryDatabase(ctx, databaseID, req)
		if err != nil {
			return nil, err
		}
		all = append(all, resp.Results...)

		if !resp.HasMore {
			break
		}
		cursor = resp.NextCursor
	}

	return all, nil
}
