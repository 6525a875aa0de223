package state

import (
	"context"
	"time"

	"github.com/financepro/financepro/internal/domain"
)

// backupLoop writes a full snapshot once after a startup delay, then on a
// fixed cadence until the session ends. It only runs when the backend is
// configured.
func (c *Controller) backupLoop(ctx context.Context) {
	select {
	case <-ctx.Done():
		return
	case <-time.After(c.backupDelay):
		c.performBackup(ctx)
	}

	ticker := time.NewTicker(c.backupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.performBackup(ctx)
		}
	}
}

// performBackup inserts one snapshot of the current collections. Skips when
// there is nothing to snapshot and skips the whole tick when the previous
// snapshot has not resolved yet, so slow remote calls never stack up.
// Failures are swallowed; the only observable outcomes are the in-progress
// flag and the last-success timestamp.
func (c *Controller) performBackup(ctx context.Context) {
	user := c.User()
	if user == nil {
		return
	}

	txs := c.Transactions()
	if len(txs) == 0 {
		return
	}
	cats := c.Categories()

	if !c.backingUp.CompareAndSwap(false, true) {
		c.log.Debug().Msg("Previous backup still in flight, skipping tick")
		return
	}
	defer c.backingUp.Store(false)

	snapshot := domain.BackupSnapshot{
		Timestamp:         c.now().UTC(),
		TransactionsCount: len(txs),
		CategoriesCount:   len(cats),
		Transactions:      txs,
		Categories:        cats,
	}

	result := c.store.CreateBackupSnapshot(ctx, user.ID, snapshot)
	switch {
	case result.Success:
		c.mu.Lock()
		c.lastBackup = c.now()
		c.mu.Unlock()
		c.log.Debug().Int("transactions", len(txs)).Msg("Backup snapshot stored")
	case result.TableMissing:
		// Backend was never provisioned with the backups table; stay quiet.
	default:
		c.log.Debug().Msg("Backup snapshot not stored this cycle")
	}
}
