// Package store is the record access layer: it translates the in-memory
// entities to and from the remote BigQuery row shape and scopes every
// operation to the owning user.
//
// The error contract is deliberate: remote failures are logged and converted
// into sentinel returns (empty list, nil entity, false result) so callers
// degrade instead of branching on errors. When no project is configured the
// store runs in degraded mode - reads serve built-in defaults, writes are
// no-ops reporting failure.
package store

import (
	"context"
	"errors"
	"fmt"
	"os"

	"cloud.google.com/go/bigquery"
	"github.com/rs/zerolog"
	"google.golang.org/api/googleapi"

	"github.com/financepro/financepro/internal/logger"
)

const (
	transactionsTable = "transactions"
	categoriesTable   = "categories"
	backupsTable      = "backups"

	defaultDataset = "financepro"
)

// Store is the concrete record access layer backed by BigQuery. A nil client
// means degraded mode.
type Store struct {
	client  *bigquery.Client
	dataset string
	log     zerolog.Logger
}

// New creates a Store from the environment. FINANCEPRO_PROJECT (or
// GOOGLE_CLOUD_PROJECT) selects the project; when neither is set the store
// starts unconfigured and every operation degrades per the package contract.
func New(ctx context.Context, log zerolog.Logger) *Store {
	s := &Store{
		dataset: defaultDataset,
		log:     logger.Component(log, "store"),
	}
	if ds := os.Getenv("FINANCEPRO_DATASET"); ds != "" {
		s.dataset = ds
	}

	project := os.Getenv("FINANCEPRO_PROJECT")
	if project == "" {
		project = os.Getenv("GOOGLE_CLOUD_PROJECT")
	}
	if project == "" {
		s.log.Warn().Msg("No project configured - running in degraded mode with default data")
		return s
	}

	client, err := bigquery.NewClient(ctx, project)
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to create BigQuery client - running in degraded mode")
		return s
	}
	s.client = client
	return s
}

// NewWithClient creates a Store around an existing client. Pass nil to get a
// degraded store, which tests rely on.
func NewWithClient(client *bigquery.Client, dataset string, log zerolog.Logger) *Store {
	if dataset == "" {
		dataset = defaultDataset
	}
	return &Store{client: client, dataset: dataset, log: logger.Component(log, "store")}
}

// Configured reports whether a remote backend is reachable at all. The
// presentation layer surfaces this once, at the authentication screen.
func (s *Store) Configured() bool {
	return s.client != nil
}

// Close releases the underlying client.
func (s *Store) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

func (s *Store) table(name string) *bigquery.Table {
	return s.client.Dataset(s.dataset).Table(name)
}

func (s *Store) qualified(name string) string {
	return fmt.Sprintf("`%s.%s`", s.dataset, name)
}

// runDML executes a parameterized DML statement and waits for completion.
func (s *Store) runDML(ctx context.Context, stmt string, params []bigquery.QueryParameter) error {
	q := s.client.Query(stmt)
	q.Parameters = params

	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("run query: %w", err)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("wait for job: %w", err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("job error: %w", err)
	}
	return nil
}

// isTableMissing detects the remote "relation does not exist" class of error
// so the backup loop can report it distinctly instead of spamming the log.
func isTableMissing(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == 404
	}
	return false
}
