// Command migrate provisions the BigQuery dataset and tables. Safe to run
// repeatedly: existing datasets and tables are left untouched.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/googleapi"
)

var (
	projectID = flag.String("project", "", "GCP project ID (required)")
	datasetID = flag.String("dataset", "financepro", "BigQuery dataset ID")
	location  = flag.String("location", "US", "Dataset location")
)

func main() {
	flag.Parse()

	if *projectID == "" {
		log.Fatal("Error: -project flag is required. Please specify your GCP project ID.")
	}

	ctx := context.Background()
	client, err := bigquery.NewClient(ctx, *projectID)
	if err != nil {
		log.Fatalf("Failed to create BigQuery client: %v", err)
	}
	defer client.Close()

	log.Printf("Connected to BigQuery project: %s, dataset: %s", *projectID, *datasetID)

	dataset := client.Dataset(*datasetID)
	if err := ensureDataset(ctx, dataset); err != nil {
		log.Fatalf("Failed to ensure dataset: %v", err)
	}

	for name, schema := range tableSchemas() {
		if err := ensureTable(ctx, dataset, name, schema); err != nil {
			log.Fatalf("Failed to ensure table %s: %v", name, err)
		}
	}

	log.Println("Database is up to date.")
}

// tableSchemas defines the three application tables.
func tableSchemas() map[string]bigquery.Schema {
	return map[string]bigquery.Schema{
		"transactions": {
			{Name: "transaction_id", Type: bigquery.StringFieldType, Required: true},
			{Name: "user_id", Type: bigquery.StringFieldType, Required: true},
			{Name: "date", Type: bigquery.DateFieldType, Required: true},
			{Name: "category", Type: bigquery.StringFieldType, Required: true},
			{Name: "description", Type: bigquery.StringFieldType, Required: true},
			{Name: "amount", Type: bigquery.NumericFieldType, Required: true},
			{Name: "payment_method", Type: bigquery.StringFieldType, Required: true},
			{Name: "type", Type: bigquery.StringFieldType, Required: true},
			{Name: "attachment", Type: bigquery.StringFieldType},
			{Name: "attachment_name", Type: bigquery.StringFieldType},
			{Name: "created_ts", Type: bigquery.TimestampFieldType, Required: true},
		},
		"categories": {
			{Name: "category_id", Type: bigquery.StringFieldType, Required: true},
			{Name: "user_id", Type: bigquery.StringFieldType, Required: true},
			{Name: "name", Type: bigquery.StringFieldType, Required: true},
			{Name: "type", Type: bigquery.StringFieldType, Required: true},
			{Name: "created_ts", Type: bigquery.TimestampFieldType, Required: true},
		},
		"backups": {
			{Name: "backup_id", Type: bigquery.StringFieldType, Required: true},
			{Name: "user_id", Type: bigquery.StringFieldType, Required: true},
			{Name: "payload", Type: bigquery.JSONFieldType, Required: true},
			{Name: "type", Type: bigquery.StringFieldType, Required: true},
			{Name: "created_ts", Type: bigquery.TimestampFieldType, Required: true},
		},
	}
}

func ensureDataset(ctx context.Context, dataset *bigquery.Dataset) error {
	if _, err := dataset.Metadata(ctx); err == nil {
		log.Printf("  [SKIP] dataset %s (already exists)", dataset.DatasetID)
		return nil
	} else if !isNotFound(err) {
		return fmt.Errorf("checking dataset: %w", err)
	}

	if err := dataset.Create(ctx, &bigquery.DatasetMetadata{Location: *location}); err != nil {
		return fmt.Errorf("creating dataset: %w", err)
	}
	log.Printf("  [OK]   dataset %s created", dataset.DatasetID)
	return nil
}

func ensureTable(ctx context.Context, dataset *bigquery.Dataset, name string, schema bigquery.Schema) error {
	table := dataset.Table(name)
	if _, err := table.Metadata(ctx); err == nil {
		log.Printf("  [SKIP] table %s (already exists)", name)
		return nil
	} else if !isNotFound(err) {
		return fmt.Errorf("checking table: %w", err)
	}

	if err := table.Create(ctx, &bigquery.TableMetadata{Schema: schema}); err != nil {
		return fmt.Errorf("creating table: %w", err)
	}
	log.Printf("  [OK]   table %s created", name)
	return nil
}

func isNotFound(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound
}
