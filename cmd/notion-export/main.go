// Command notion-export publishes a date-ranged transaction report into a
// Notion database.
package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/financepro/financepro/internal/domain"
	"github.com/financepro/financepro/internal/logger"
	"github.com/financepro/financepro/internal/notionexport"
	"github.com/financepro/financepro/internal/report"
	"github.com/financepro/financepro/internal/store"
)

func main() {
	log := logger.New()

	userID := flag.String("user", "", "Owner user ID (required)")
	fromStr := flag.String("from", "", "Start date in YYYY-MM-DD format (required)")
	toStr := flag.String("to", "", "End date in YYYY-MM-DD format (required)")
	notionToken := flag.String("notion-token", "", "Notion API token (required)")
	notionDBID := flag.String("notion-db-id", "", "Notion database ID (required)")
	flag.Parse()

	if *userID == "" {
		log.Fatal().Msg("Error: --user is required")
	}
	if *fromStr == "" || *toStr == "" {
		log.Fatal().Msg("Error: --from and --to are required")
	}
	if *notionToken == "" {
		log.Fatal().Msg("Error: --notion-token is required")
	}
	if *notionDBID == "" {
		log.Fatal().Msg("Error: --notion-db-id is required")
	}

	from, err := time.Parse(domain.DateFormat, *fromStr)
	if err != nil {
		log.Fatal().Err(err).Str("from", *fromStr).Msg("Error: invalid from format, expected YYYY-MM-DD")
	}
	to, err := time.Parse(domain.DateFormat, *toStr)
	if err != nil {
		log.Fatal().Err(err).Str("to", *toStr).Msg("Error: invalid to format, expected YYYY-MM-DD")
	}
	if to.Before(from) {
		log.Fatal().Msg("Error: to must be after from")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	log.Info().
		Str("from", *fromStr).
		Str("to", *toStr).
		Msg("Starting Notion export")

	recordStore := store.New(ctx, log)
	defer recordStore.Close()
	if !recordStore.Configured() {
		log.Fatal().Msg("BigQuery is not configured")
	}

	transactions := recordStore.ListTransactions(ctx, *userID)
	filter := report.Filter{From: *fromStr, To: *toStr}

	client := notionexport.NewNotionClient(*notionToken)
	res, err := notionexport.Publish(ctx, client, *notionDBID, transactions, filter, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Export failed")
	}

	fmt.Printf("Export completed: %d created, %d skipped, %d archived.\n", res.Created, res.Skipped, res.Deleted)
}
