package main

import (
	"testing"

	"cloud.google.com/go/bigquery"
)

func TestTableSchemasCoverRequiredColumns(t *testing.T) {
	required := map[string][]string{
		"transactions": {"transaction_id", "user_id", "date", "category", "description", "amount", "payment_method", "type", "created_ts"},
		"categories":   {"category_id", "user_id", "name", "type", "created_ts"},
		"backups":      {"backup_id", "user_id", "payload", "type", "created_ts"},
	}

	schemas := tableSchemas()
	for table, cols := range required {
		schema, ok := schemas[table]
		if !ok {
			t.Fatalf("missing schema for table %s", table)
		}

		fields := make(map[string]*bigquery.FieldSchema)
		for _, f := range schema {
			fields[f.Name] = f
		}

		for _, col := range cols {
			f, ok := fields[col]
			if !ok {
				t.Errorf("%s: missing column %s", table, col)
				continue
			}
			if !f.Required {
				t.Errorf("%s.%s must be REQUIRED", table, col)
			}
		}
	}
}

func TestAttachmentColumnsAreNullable(t *testing.T) {
	for _, f := range tableSchemas()["transactions"] {
		if f.Name == "attachment" || f.Name == "attachment_name" {
			if f.Required {
				t.Errorf("%s must be NULLABLE", f.Name)
			}
		}
	}
}
