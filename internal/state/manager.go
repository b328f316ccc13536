// Package state implements the domain state manager: the single source of
// truth for the active identity's transactions, budgets and categories.
// Every mutation updates the in-memory collection, synchronously writes the
// full collection back through the storage adapter, and then notifies
// subscribers. Switching identity discards the in-memory state entirely
// before the new identity's data is loaded, so nothing leaks across scopes.
package state

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

// Logical keys under which the three collections are persisted per identity.
const (
	keyTransactions = "transactions"
	keyBudgets      = "budgets"
	keyCategories   = "categories"
)

type Manager struct {
	mu     sync.Mutex
	store  *storage.Adapter
	logger *log.Logger

	identity     string
	transactions []core.Transaction
	budgets      []core.Budget
	categories   []core.Category

	subs   []func()
	lastID int64
}

// NewManager creates a manager with no active identity: empty transactions
// and budgets, seeded default categories, nothing persisted.
func NewManager(store *storage.Adapter, logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.NewFromEnv(log.ComponentState)
	}
	m := &Manager{
		store:  store,
		logger: logger,
	}
	m.resetLocked()
	return m
}

// Subscribe registers fn to run after every state change (mutation,
// identity switch, import, clear). Callbacks run synchronously outside the
// manager lock; they must read state via Snapshot, never cached slices.
func (m *Manager) Subscribe(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs = append(m.subs, fn)
}

// OnIdentityChange discards the in-memory collections and loads the new
// identity's persisted state. An empty label means no identity: empty
// transactions and budgets, default categories. Suitable as an
// identity.Holder subscriber.
func (m *Manager) OnIdentityChange(label string) {
	m.mu.Lock()
	m.identity = label
	if label == "" {
		m.resetLocked()
	} else {
		m.reloadLocked()
	}
	m.mu.Unlock()

	m.logger.Info("State reloaded", log.FieldIdentity, label,
		log.FieldOperation, log.OpReload)
	m.notify()
}

// Identity returns the label the manager is currently scoped to.
func (m *Manager) Identity() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.identity
}

// Snapshot returns a copy of the three collections. Slices are always
// non-nil so they serialize as JSON arrays.
func (m *Manager) Snapshot() core.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return core.Snapshot{
		Transactions: append([]core.Transaction{}, m.transactions...),
		Budgets:      append([]core.Budget{}, m.budgets...),
		Categories:   append([]core.Category{}, m.categories...),
	}
}

// AddTransaction generates an id, prepends the transaction (newest first)
// and persists the collection. Input validation belongs to the caller.
func (m *Manager) AddTransaction(in core.TransactionInput) core.Transaction {
	m.mu.Lock()
	txn := core.Transaction{
		ID:          m.nextIDLocked("txn"),
		Type:        in.Type,
		Amount:      in.Amount,
		Category:    in.Category,
		Description: in.Description,
		Date:        in.Date,
	}
	m.transactions = append([]core.Transaction{txn}, m.transactions...)
	m.persistLocked(keyTransactions, m.transactions)
	m.mu.Unlock()

	m.notify()
	return txn
}

// UpdateTransaction merges the patch into the matching entry. Unknown ids
// are a silent no-op; the return value reports whether anything changed.
func (m *Manager) UpdateTransaction(id string, patch core.TransactionPatch) bool {
	m.mu.Lock()
	found := false
	for i := range m.transactions {
		if m.transactions[i].ID == id {
			patch.Apply(&m.transactions[i])
			found = true
			break
		}
	}
	if found {
		m.persistLocked(keyTransactions, m.transactions)
	}
	m.mu.Unlock()

	if found {
		m.notify()
	}
	return found
}

// DeleteTransaction removes the entry by id; unknown ids are a no-op.
func (m *Manager) DeleteTransaction(id string) bool {
	m.mu.Lock()
	found := false
	kept := m.transactions[:0]
	for _, t := range m.transactions {
		if t.ID == id {
			found = true
			continue
		}
		kept = append(kept, t)
	}
	m.transactions = kept
	if found {
		m.persistLocked(keyTransactions, m.transactions)
	}
	m.mu.Unlock()

	if found {
		m.notify()
	}
	return found
}

// AddBudget appends a budget with a generated id and persists.
func (m *Manager) AddBudget(in core.BudgetInput) core.Budget {
	m.mu.Lock()
	b := core.Budget{
		ID:       m.nextIDLocked("budget"),
		Category: in.Category,
		Amount:   in.Amount,
		Period:   in.Period,
		Color:    in.Color,
	}
	m.budgets = append(m.budgets, b)
	m.persistLocked(keyBudgets, m.budgets)
	m.mu.Unlock()

	m.notify()
	return b
}

func (m *Manager) UpdateBudget(id string, patch core.BudgetPatch) bool {
	m.mu.Lock()
	found := false
	for i := range m.budgets {
		if m.budgets[i].ID == id {
			patch.Apply(&m.budgets[i])
			found = true
			break
		}
	}
	if found {
		m.persistLocked(keyBudgets, m.budgets)
	}
	m.mu.Unlock()

	if found {
		m.notify()
	}
	return found
}

func (m *Manager) DeleteBudget(id string) bool {
	m.mu.Lock()
	found := false
	kept := m.budgets[:0]
	for _, b := range m.budgets {
		if b.ID == id {
			found = true
			continue
		}
		kept = append(kept, b)
	}
	m.budgets = kept
	if found {
		m.persistLocked(keyBudgets, m.budgets)
	}
	m.mu.Unlock()

	if found {
		m.notify()
	}
	return found
}

// AddCategory appends a category with a generated id and persists.
// Duplicate names are allowed; the join to transactions and budgets is by
// name and stays a soft reference either way.
func (m *Manager) AddCategory(in core.CategoryInput) core.Category {
	m.mu.Lock()
	c := core.Category{
		ID:    m.nextIDLocked("cat"),
		Name:  in.Name,
		Type:  in.Type,
		Color: in.Color,
		Icon:  in.Icon,
	}
	m.categories = append(m.categories, c)
	m.persistLocked(keyCategories, m.categories)
	m.mu.Unlock()

	m.notify()
	return c
}

func (m *Manager) UpdateCategory(id string, patch core.CategoryPatch) bool {
	m.mu.Lock()
	found := false
	for i := range m.categories {
		if m.categories[i].ID == id {
			patch.Apply(&m.categories[i])
			found = true
			break
		}
	}
	if found {
		m.persistLocked(keyCategories, m.categories)
	}
	m.mu.Unlock()

	if found {
		m.notify()
	}
	return found
}

// DeleteCategory removes the category only. Transactions and budgets that
// reference its name keep it; there is no cascade.
func (m *Manager) DeleteCategory(id string) bool {
	m.mu.Lock()
	found := false
	kept := m.categories[:0]
	for _, c := range m.categories {
		if c.ID == id {
			found = true
			continue
		}
		kept = append(kept, c)
	}
	m.categories = kept
	if found {
		m.persistLocked(keyCategories, m.categories)
	}
	m.mu.Unlock()

	if found {
		m.notify()
	}
	return found
}

// Export produces the single-document export of the current state.
func (m *Manager) Export() core.Export {
	snap := m.Snapshot()
	return core.Export{
		Transactions: snap.Transactions,
		Budgets:      snap.Budgets,
		Categories:   snap.Categories,
		ExportDate:   time.Now().UTC(),
	}
}

// Import replaces the full state with the document's collections and
// persists them to the active scope. The whole import is rejected when any
// of the three collections is missing; partial imports are not supported.
func (m *Manager) Import(doc core.Export) error {
	if err := doc.Validate(); err != nil {
		return fmt.Errorf("import rejected: %w", err)
	}

	m.mu.Lock()
	m.transactions = append([]core.Transaction{}, doc.Transactions...)
	m.budgets = append([]core.Budget{}, doc.Budgets...)
	m.categories = append([]core.Category{}, doc.Categories...)
	m.writeLocked(keyTransactions, m.transactions)
	m.writeLocked(keyBudgets, m.budgets)
	m.writeLocked(keyCategories, m.categories)
	m.mu.Unlock()

	m.logger.Info("Import applied",
		log.FieldIdentity, m.Identity(),
		log.FieldOperation, log.OpImport,
		"transactions", len(doc.Transactions),
		"budgets", len(doc.Budgets),
		"categories", len(doc.Categories))
	m.notify()
	return nil
}

// ClearAll deletes the active scope's persisted collections and resets the
// in-memory state to empty transactions/budgets and default categories.
func (m *Manager) ClearAll() {
	m.mu.Lock()
	for _, key := range []string{keyTransactions, keyBudgets, keyCategories} {
		if err := m.store.Delete(m.identity, key); err != nil {
			m.logger.Warn("Clear failed", log.FieldStoreKey, key, log.FieldError, err)
		}
	}
	m.resetLocked()
	m.mu.Unlock()

	m.logger.Info("State cleared", log.FieldIdentity, m.Identity(),
		log.FieldOperation, log.OpClear)
	m.notify()
}

// resetLocked installs the no-data state: empty transactions and budgets,
// seeded default categories.
func (m *Manager) resetLocked() {
	m.transactions = []core.Transaction{}
	m.budgets = []core.Budget{}
	m.categories = DefaultCategories()
}

// reloadLocked loads the active identity's collections from storage.
// Missing or corrupt data falls back to empty collections, or to the
// default seed for categories.
func (m *Manager) reloadLocked() {
	m.transactions = loadCollection(m, keyTransactions, []core.Transaction{})
	m.budgets = loadCollection(m, keyBudgets, []core.Budget{})
	m.categories = loadCollection(m, keyCategories, DefaultCategories())
}

// loadCollection reads one persisted collection, falling back on missing
// data and on parse errors alike. Corrupt values are logged and treated as
// "no prior data"; they are never surfaced.
func loadCollection[T any](m *Manager, logicalKey string, fallback []T) []T {
	var out []T
	found, err := m.store.Read(m.identity, logicalKey, &out)
	if err != nil {
		if errors.Is(err, storage.ErrParse) {
			m.logger.Warn("Discarding corrupt stored collection",
				log.FieldStoreKey, logicalKey, log.FieldIdentity, m.identity)
		} else {
			m.logger.Warn("Read failed, using fallback",
				log.FieldStoreKey, logicalKey, log.FieldError, err)
		}
		return fallback
	}
	if !found || out == nil {
		return fallback
	}
	return out
}

// persistLocked writes a collection for the active identity. With no
// identity the state is ephemeral and nothing is written. Write failures
// are logged, never propagated: persistence is best effort.
func (m *Manager) persistLocked(logicalKey string, v any) {
	if m.identity == "" {
		return
	}
	m.writeLocked(logicalKey, v)
}

// writeLocked writes a collection for the active scope, including the
// anonymous (bare-key) scope. Used by Import, which targets whatever scope
// is active.
func (m *Manager) writeLocked(logicalKey string, v any) {
	if err := m.store.Write(m.identity, logicalKey, v); err != nil {
		m.logger.Warn("Persist failed", log.FieldStoreKey, logicalKey, log.FieldError, err)
	}
}

// nextIDLocked produces a prefixed, time-based id that is strictly
// increasing within this process, matching the original id scheme
// (txn-<millis>) while ruling out same-millisecond collisions.
func (m *Manager) nextIDLocked(prefix string) string {
	now := time.Now().UnixMilli()
	if now <= m.lastID {
		now = m.lastID + 1
	}
	m.lastID = now
	return fmt.Sprintf("%s-%d", prefix, now)
}

func (m *Manager) notify() {
	m.mu.Lock()
	subs := append([](func())(nil), m.subs...)
	m.mu.Unlock()

	for _, fn := range subs {
		fn()
	}
}
