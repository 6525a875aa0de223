package state

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/financepro/financepro/internal/domain"
	"github.com/financepro/financepro/internal/report"
)

// reminderTitle is the fixed notification title for due payments.
const reminderTitle = "Lembrete de Pagamento"

// notifiedSet is the durable record of which transactions were already
// notified, keyed to a single calendar day. Keeping the day on the record
// prunes old identifiers automatically: a set loaded on a later day is
// discarded, so the file never grows across days.
type notifiedSet struct {
	Date string   `json:"date"`
	IDs  []string `json:"ids"`
}

// reminderLoop checks once immediately when the session starts with a
// non-empty list, then on a fixed cadence until the session ends.
func (c *Controller) reminderLoop(ctx context.Context) {
	if len(c.Transactions()) > 0 {
		c.checkReminders(ctx)
	}

	ticker := time.NewTicker(c.reminderInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.checkReminders(ctx)
		}
	}
}

// checkReminders dispatches one notification per expense due today that has
// not been notified yet, then persists the updated notified-set. With no
// matches the set is not rewritten.
func (c *Controller) checkReminders(ctx context.Context) {
	today := c.now().Format(domain.DateFormat)
	notified := c.loadNotified(today)

	var due []domain.Transaction
	for _, tx := range c.Transactions() {
		if tx.Type == domain.TypeExpense && tx.Date == today && !notified[tx.ID] {
			due = append(due, tx)
		}
	}
	if len(due) == 0 {
		return
	}

	for _, tx := range due {
		body := fmt.Sprintf("Hoje vence: %s (%s)", tx.Description, report.FormatBRL(tx.Amount))
		c.gateway.Send(ctx, reminderTitle, body)
		notified[tx.ID] = true
	}

	c.saveNotified(today, notified)
	c.log.Info().Int("count", len(due)).Msg("Dispatched payment reminders")
}

// loadNotified reads the notified-set for the given day. A missing,
// corrupted or stale (different day) file is treated as empty; the reminder
// loop must never crash over local storage.
func (c *Controller) loadNotified(today string) map[string]bool {
	out := make(map[string]bool)
	if c.notifiedPath == "" {
		return out
	}

	raw, err := os.ReadFile(c.notifiedPath)
	if err != nil {
		return out
	}

	var set notifiedSet
	if err := json.Unmarshal(raw, &set); err != nil {
		c.log.Warn().Err(err).Msg("Notified-set file corrupted, treating as empty")
		return out
	}
	if set.Date != today {
		return out
	}
	for _, id := range set.IDs {
		out[id] = true
	}
	return out
}

// saveNotified persists the notified-set for the given day. Failures are
// logged and swallowed; the worst outcome is a duplicate reminder after a
// restart.
func (c *Controller) saveNotified(today string, notified map[string]bool) {
	if c.notifiedPath == "" {
		return
	}

	set := notifiedSet{Date: today, IDs: make([]string, 0, len(notified))}
	for id := range notified {
		set.IDs = append(set.IDs, id)
	}

	raw, err := json.Marshal(set)
	if err != nil {
		c.log.Warn().Err(err).Msg("Failed to encode notified-set")
		return
	}
	if err := os.MkdirAll(filepath.Dir(c.notifiedPath), 0o755); err != nil {
		c.log.Warn().Err(err).Msg("Failed to create notified-set directory")
		return
	}
	if err := os.WriteFile(c.notifiedPath, raw, 0o600); err != nil {
		c.log.Warn().Err(err).Msg("Failed to persist notified-set")
	}
}
