// Package state holds the authoritative in-memory collections for the active
// session and orchestrates the two background loops (payment reminders and
// periodic backups) against them.
//
// Concurrency model: the collections are guarded by one mutex and mutated
// only by whole-slice replacement through the controller's own entry points.
// The loops re-read the current slices on every tick instead of capturing
// them at setup time, so a long-lived loop never observes a stale list.
package state

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/financepro/financepro/internal/domain"
	"github.com/financepro/financepro/internal/logger"
	"github.com/financepro/financepro/internal/notify"
	"github.com/financepro/financepro/internal/store"
)

// Default loop cadences. Intervals vastly exceed the expected duration of a
// single check or snapshot; the backup loop still carries an explicit
// overlap guard for slow networks.
const (
	DefaultReminderInterval = 30 * time.Minute
	DefaultBackupInterval   = 10 * time.Minute
	DefaultBackupDelay      = 30 * time.Second
)

// RecordStore is the slice of the record access layer the controller needs.
// All methods follow the sentinel-on-failure contract of the store package.
type RecordStore interface {
	Configured() bool

	ListTransactions(ctx context.Context, userID string) []domain.Transaction
	AddTransaction(ctx context.Context, userID string, tx domain.Transaction) *domain.Transaction
	UpdateTransaction(ctx context.Context, userID, id string, tx domain.Transaction) *domain.Transaction
	DeleteTransaction(ctx context.Context, userID, id string) bool

	ListCategories(ctx context.Context, userID string) []domain.Category
	AddCategory(ctx context.Context, userID, name string, typ domain.TransactionType) *domain.Category
	UpdateCategory(ctx context.Context, userID, id, name string, typ domain.TransactionType) *domain.Category
	DeleteCategory(ctx context.Context, userID, id string) bool

	CreateBackupSnapshot(ctx context.Context, userID string, snapshot domain.BackupSnapshot) store.BackupResult
}

// BackupStatus is what the presentation layer may know about the backup
// loop: an in-progress flag and the last successful snapshot time.
type BackupStatus struct {
	InProgress bool      `json:"inProgress"`
	LastTime   time.Time `json:"lastTime"`
}

// Controller owns the in-memory state for one active session.
type Controller struct {
	store        RecordStore
	gateway      notify.Gateway
	log          zerolog.Logger
	notifiedPath string

	reminderInterval time.Duration
	backupInterval   time.Duration
	backupDelay      time.Duration
	now              func() time.Time

	mu           sync.RWMutex
	user         *domain.User
	transactions []domain.Transaction
	categories   []domain.Category
	lastBackup   time.Time

	backingUp  atomic.Bool
	loopCancel context.CancelFunc
}

// NewController creates a controller. notifiedPath is the local file that
// persists the reminder notified-set across restarts.
func NewController(recordStore RecordStore, gateway notify.Gateway, notifiedPath string, log zerolog.Logger) *Controller {
	return &Controller{
		store:            recordStore,
		gateway:          gateway,
		log:              logger.Component(log, "state"),
		notifiedPath:     notifiedPath,
		reminderInterval: DefaultReminderInterval,
		backupInterval:   DefaultBackupInterval,
		backupDelay:      DefaultBackupDelay,
		now:              time.Now,
	}
}

// StartSession binds a signed-in user, loads their collections and starts
// the background loops. Any previous session is torn down first.
func (c *Controller) StartSession(ctx context.Context, user domain.User) {
	c.EndSession()

	c.mu.Lock()
	c.user = &user
	c.mu.Unlock()

	c.Load(ctx)

	loopCtx, cancel := context.WithCancel(context.Background())
	c.mu.Lock()
	c.loopCancel = cancel
	c.mu.Unlock()

	go c.reminderLoop(loopCtx)
	if c.store.Configured() {
		go c.backupLoop(loopCtx)
	}

	c.log.Info().Str("user_id", user.ID).Msg("Session started")
}

// Load fetches the user's categories and transactions from the remote store
// and replaces the in-memory collections.
func (c *Controller) Load(ctx context.Context) {
	c.mu.RLock()
	user := c.user
	c.mu.RUnlock()
	if user == nil {
		return
	}

	var (
		wg   sync.WaitGroup
		txs  []domain.Transaction
		cats []domain.Category
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		txs = c.store.ListTransactions(ctx, user.ID)
	}()
	go func() {
		defer wg.Done()
		cats = c.store.ListCategories(ctx, user.ID)
	}()
	wg.Wait()

	c.mu.Lock()
	c.transactions = txs
	c.categories = cats
	c.mu.Unlock()
}

// EndSession stops the loops and clears the in-memory state. Remote state is
// untouched; in-flight remote calls resolve and their results are discarded.
func (c *Controller) EndSession() {
	c.mu.Lock()
	cancel := c.loopCancel
	c.loopCancel = nil
	c.user = nil
	c.transactions = nil
	c.categories = nil
	c.lastBackup = time.Time{}
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// User returns the active session's user, or nil.
func (c *Controller) User() *domain.User {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.user == nil {
		return nil
	}
	u := *c.user
	return &u
}

// Transactions returns a copy of the current transaction list.
func (c *Controller) Transactions() []domain.Transaction {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Transaction, len(c.transactions))
	copy(out, c.transactions)
	return out
}

// Categories returns a copy of the current category list.
func (c *Controller) Categories() []domain.Category {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Category, len(c.categories))
	copy(out, c.categories)
	return out
}

// Backup returns the status indicator for the backup loop.
func (c *Controller) Backup() BackupStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return BackupStatus{
		InProgress: c.backingUp.Load(),
		LastTime:   c.lastBackup,
	}
}

// AddTransaction writes the transaction remotely and, only on confirmed
// success, prepends it to the in-memory list. No optimistic update, so no
// rollback is ever needed.
func (c *Controller) AddTransaction(ctx context.Context, tx domain.Transaction) *domain.Transaction {
	user := c.User()
	if user == nil {
		return nil
	}

	saved := c.store.AddTransaction(ctx, user.ID, tx)
	if saved == nil {
		return nil
	}

	c.mu.Lock()
	next := make([]domain.Transaction, 0, len(c.transactions)+1)
	next = append(next, *saved)
	next = append(next, c.transactions...)
	c.transactions = next
	c.mu.Unlock()
	return saved
}

// UpdateTransaction writes remotely first, then replaces the entry in place.
func (c *Controller) UpdateTransaction(ctx context.Context, id string, tx domain.Transaction) *domain.Transaction {
	user := c.User()
	if user == nil {
		return nil
	}

	updated := c.store.UpdateTransaction(ctx, user.ID, id, tx)
	if updated == nil {
		return nil
	}

	c.mu.Lock()
	next := make([]domain.Transaction, len(c.transactions))
	for i, t := range c.transactions {
		if t.ID == id {
			next[i] = *updated
		} else {
			next[i] = t
		}
	}
	c.transactions = next
	c.mu.Unlock()
	return updated
}

// DeleteTransaction deletes remotely first, then filters the entry out.
func (c *Controller) DeleteTransaction(ctx context.Context, id string) bool {
	user := c.User()
	if user == nil {
		return false
	}

	if !c.store.DeleteTransaction(ctx, user.ID, id) {
		return false
	}

	c.mu.Lock()
	next := make([]domain.Transaction, 0, len(c.transactions))
	for _, t := range c.transactions {
		if t.ID != id {
			next = append(next, t)
		}
	}
	c.transactions = next
	c.mu.Unlock()
	return true
}

// AddCategory mirrors the remote insert into the in-memory list.
func (c *Controller) AddCategory(ctx context.Context, name string, typ domain.TransactionType) *domain.Category {
	user := c.User()
	if user == nil {
		return nil
	}

	saved := c.store.AddCategory(ctx, user.ID, name, typ)
	if saved == nil {
		return nil
	}

	c.mu.Lock()
	next := make([]domain.Category, 0, len(c.categories)+1)
	next = append(next, c.categories...)
	next = append(next, *saved)
	c.categories = next
	c.mu.Unlock()
	return saved
}

// UpdateCategory renames or retypes a category. Transactions referencing the
// old name keep it; the reference is a denormalized string.
func (c *Controller) UpdateCategory(ctx context.Context, id, name string, typ domain.TransactionType) *domain.Category {
	user := c.User()
	if user == nil {
		return nil
	}

	updated := c.store.UpdateCategory(ctx, user.ID, id, name, typ)
	if updated == nil {
		return nil
	}

	c.mu.Lock()
	next := make([]domain.Category, len(c.categories))
	for i, cat := range c.categories {
		if cat.ID == id {
			next[i] = *updated
		} else {
			next[i] = cat
		}
	}
	c.categories = next
	c.mu.Unlock()
	return updated
}

// DeleteCategory removes the category from the list. It never cascades into
// transactions; those keep the orphaned category name.
func (c *Controller) DeleteCategory(ctx context.Context, id string) bool {
	user := c.User()
	if user == nil {
		return false
	}

	if !c.store.DeleteCategory(ctx, user.ID, id) {
		return false
	}

	c.mu.Lock()
	next := make([]domain.Category, 0, len(c.categories))
	for _, cat := range c.categories {
		if cat.ID != id {
			next = append(next, cat)
		}
	}
	c.categories = next
	c.mu.Unlock()
	return true
}
