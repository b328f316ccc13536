package services

import (
	"context"
	"errors"
	"fmt"

	"fintrack/internal/core"
	"fintrack/internal/events"
	"fintrack/internal/log"
	"fintrack/internal/state"
)

// ErrNotFound reports an operation against an id that is not in the
// current collections.
var ErrNotFound = errors.New("not found")

// Tracker orchestrates tracker operations across the state manager and the
// change-event publisher. Mutations apply to local state first; publishing
// is best effort and never fails the operation.
type Tracker struct {
	state        *state.Manager
	eventsClient *events.Client
	logger       *log.Logger
}

func NewTracker(st *state.Manager, eventsClient *events.Client, logger *log.Logger) *Tracker {
	if logger == nil {
		logger = log.NewFromEnv(log.ComponentService)
	}
	return &Tracker{
		state:        st,
		eventsClient: eventsClient,
		logger:       logger,
	}
}

// Snapshot returns the current collections.
func (t *Tracker) Snapshot() core.Snapshot {
	return t.state.Snapshot()
}

// CreateTransaction validates the input, records the transaction and
// publishes a change message.
func (t *Tracker) CreateTransaction(ctx context.Context, in core.TransactionInput) (core.Transaction, error) {
	if err := in.Validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("validate transaction: %w", err)
	}

	txn := t.state.AddTransaction(in)
	t.publishChange(ctx, events.EntityTransaction, events.ActionCreated, txn.ID)
	return txn, nil
}

func (t *Tracker) UpdateTransaction(ctx context.Context, id string, patch core.TransactionPatch) error {
	if err := patch.Validate(); err != nil {
		return fmt.Errorf("validate transaction patch: %w", err)
	}
	if !t.state.UpdateTransaction(id, patch) {
		return ErrNotFound
	}
	t.publishChange(ctx, events.EntityTransaction, events.ActionUpdated, id)
	return nil
}

func (t *Tracker) DeleteTransaction(ctx context.Context, id string) error {
	if !t.state.DeleteTransaction(id) {
		return ErrNotFound
	}
	t.publishChange(ctx, events.EntityTransaction, events.ActionDeleted, id)
	return nil
}

func (t *Tracker) CreateBudget(ctx context.Context, in core.BudgetInput) (core.Budget, error) {
	if err := in.Validate(); err != nil {
		return core.Budget{}, fmt.Errorf("validate budget: %w", err)
	}

	b := t.state.AddBudget(in)
	t.publishChange(ctx, events.EntityBudget, events.ActionCreated, b.ID)
	return b, nil
}

func (t *Tracker) UpdateBudget(ctx context.Context, id string, patch core.BudgetPatch) error {
	if err := patch.Validate(); err != nil {
		return fmt.Errorf("validate budget patch: %w", err)
	}
	if !t.state.UpdateBudget(id, patch) {
		return ErrNotFound
	}
	t.publishChange(ctx, events.EntityBudget, events.ActionUpdated, id)
	return nil
}

func (t *Tracker) DeleteBudget(ctx context.Context, id string) error {
	if !t.state.DeleteBudget(id) {
		return ErrNotFound
	}
	t.publishChange(ctx, events.EntityBudget, events.ActionDeleted, id)
	return nil
}

func (t *Tracker) CreateCategory(ctx context.Context, in core.CategoryInput) (core.Category, error) {
	if err := in.Validate(); err != nil {
		return core.Category{}, fmt.Errorf("validate category: %w", err)
	}

	c := t.state.AddCategory(in)
	t.publishChange(ctx, events.EntityCategory, events.ActionCreated, c.ID)
	return c, nil
}

func (t *Tracker) UpdateCategory(ctx context.Context, id string, patch core.CategoryPatch) error {
	if err := patch.Validate(); err != nil {
		return fmt.Errorf("validate category patch: %w", err)
	}
	if !t.state.UpdateCategory(id, patch) {
		return ErrNotFound
	}
	t.publishChange(ctx, events.EntityCategory, events.ActionUpdated, id)
	return nil
}

func (t *Tracker) DeleteCategory(ctx context.Context, id string) error {
	if !t.state.DeleteCategory(id) {
		return ErrNotFound
	}
	t.publishChange(ctx, events.EntityCategory, events.ActionDeleted, id)
	return nil
}

// Export returns the full state as a dated document.
func (t *Tracker) Export(ctx context.Context) core.Export {
	doc := t.state.Export()
	t.logger.InfoContext(ctx, "Exported state",
		log.FieldOperation, log.OpExport,
		log.FieldCount, len(doc.Transactions)+len(doc.Budgets)+len(doc.Categories))
	return doc
}

// Import replaces the full state with the document and publishes a single
// imported message.
func (t *Tracker) Import(ctx context.Context, doc core.Export) error {
	if err := t.state.Import(doc); err != nil {
		return err
	}
	t.publishChange(ctx, events.EntityAll, events.ActionImported, "")
	return nil
}

// ClearAll deletes the active identity's data and publishes a cleared
// message.
func (t *Tracker) ClearAll(ctx context.Context) {
	t.state.ClearAll()
	t.publishChange(ctx, events.EntityAll, events.ActionCleared, "")
}

func (t *Tracker) publishChange(ctx context.Context, entity, action, id string) {
	if t.eventsClient == nil {
		t.logger.Debug("Events client not available, skipping change message")
		return
	}

	identity := t.state.Identity()
	msg := events.NewChangeMessage(entity, action, id, identity)
	if err := t.eventsClient.PublishChange(ctx, msg); err != nil {
		t.logger.WarnContext(ctx, "Failed to publish change message",
			"entity", entity, "action", action, log.FieldError, err)
		// Don't fail the request, the mutation is already applied locally
	}
}

// Close closes the event publisher connection.
func (t *Tracker) Close() error {
	if t.eventsClient != nil {
		if err := t.eventsClient.Close(); err != nil {
			return fmt.Errorf("close events client: %w", err)
		}
	}
	return nil
}
