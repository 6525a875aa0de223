package store

import (
	"context"
	"encoding/json"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/google/uuid"

	"github.com/financepro/financepro/internal/domain"
)

// BackupTypeAuto tags snapshots written by the periodic backup loop.
const BackupTypeAuto = "AUTO_BACKUP"

// BackupResult reports one snapshot attempt. TableMissing distinguishes a
// backend that was never provisioned with the backups table from a transient
// failure, so the loop can stay quiet about it.
type BackupResult struct {
	Success      bool
	TableMissing bool
}

// CreateBackupSnapshot inserts one full denormalized snapshot of the user's
// collections. Failures never propagate; the result carries everything the
// caller is allowed to know.
func (s *Store) CreateBackupSnapshot(ctx context.Context, userID string, snapshot domain.BackupSnapshot) BackupResult {
	if s.client == nil {
		return BackupResult{}
	}

	payload, err := json.Marshal(snapshot)
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to encode backup payload")
		return BackupResult{}
	}

	row := &BackupRow{
		BackupID:  uuid.New().String(),
		UserID:    userID,
		Payload:   bigquery.NullJSON{JSONVal: string(payload), Valid: true},
		Type:      BackupTypeAuto,
		CreatedTS: time.Now().UTC(),
	}

	inserter := s.table(backupsTable).Inserter()
	if err := inserter.Put(ctx, []*BackupRow{row}); err != nil {
		if isTableMissing(err) {
			return BackupResult{TableMissing: true}
		}
		s.log.Warn().Err(err).Msg("Failed to insert backup snapshot")
		return BackupResult{}
	}

	return BackupResult{Success: true}
}
