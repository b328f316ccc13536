package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Expense TransactionType = "expense"
	Income  TransactionType = "income"

	Weekly  BudgetPeriod = "weekly"
	Monthly BudgetPeriod = "monthly"
	Yearly  BudgetPeriod = "yearly"
)

type (
	TransactionType string

	BudgetPeriod string

	// Transaction is a single recorded income or expense event.
	Transaction struct {
		ID          string          `json:"id"`
		Type        TransactionType `json:"type"`
		Amount      float64         `json:"amount"`
		Category    string          `json:"category"`
		Description string          `json:"description"`
		Date        time.Time       `json:"date"`
	}

	// Budget is a spending cap for a category over a period. The period is
	// informational only; nothing enforces a rollover. Spent amounts are
	// always derived from transactions, never stored here.
	Budget struct {
		ID       string       `json:"id"`
		Category string       `json:"category"`
		Amount   float64      `json:"amount"`
		Period   BudgetPeriod `json:"period"`
		Color    string       `json:"color"`
	}

	// Category groups transactions and budgets. The join key is Name, not
	// ID: transactions and budgets reference categories by name and nothing
	// prevents duplicate names across different ids.
	Category struct {
		ID    string          `json:"id"`
		Name  string          `json:"name"`
		Type  TransactionType `json:"type"`
		Color string          `json:"color"`
		Icon  string          `json:"icon,omitempty"`
	}
)

// Input types carry everything but the generated id.
type (
	TransactionInput struct {
		Type        TransactionType `json:"type"`
		Amount      float64         `json:"amount"`
		Category    string          `json:"category"`
		Description string          `json:"description"`
		Date        time.Time       `json:"date"`
	}

	BudgetInput struct {
		Category string       `json:"category"`
		Amount   float64      `json:"amount"`
		Period   BudgetPeriod `json:"period"`
		Color    string       `json:"color"`
	}

	CategoryInput struct {
		Name  string          `json:"name"`
		Type  TransactionType `json:"type"`
		Color string          `json:"color"`
		Icon  string          `json:"icon,omitempty"`
	}
)

// Patch types hold partial updates; nil fields are left untouched.
type (
	TransactionPatch struct {
		Type        *TransactionType `json:"type,omitempty"`
		Amount      *float64         `json:"amount,omitempty"`
		Category    *string          `json:"category,omitempty"`
		Description *string          `json:"description,omitempty"`
		Date        *time.Time       `json:"date,omitempty"`
	}

	BudgetPatch struct {
		Category *string       `json:"category,omitempty"`
		Amount   *float64      `json:"amount,omitempty"`
		Period   *BudgetPeriod `json:"period,omitempty"`
		Color    *string       `json:"color,omitempty"`
	}

	CategoryPatch struct {
		Name  *string          `json:"name,omitempty"`
		Type  *TransactionType `json:"type,omitempty"`
		Color *string          `json:"color,omitempty"`
		Icon  *string          `json:"icon,omitempty"`
	}
)

// Snapshot is a read-only copy of the three collections.
type Snapshot struct {
	Transactions []Transaction `json:"transactions"`
	Budgets      []Budget      `json:"budgets"`
	Categories   []Category    `json:"categories"`
}

// Export is the single-document export/import format.
type Export struct {
	Transactions []Transaction `json:"transactions"`
	Budgets      []Budget      `json:"budgets"`
	Categories   []Category    `json:"categories"`
	ExportDate   time.Time     `json:"exportDate"`
}

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidType        = errors.New("invalid transaction type")
	ErrInvalidPeriod      = errors.New("invalid budget period")
	ErrEmptyDescription   = errors.New("empty description")
	ErrEmptyCategory      = errors.New("empty category")
	ErrEmptyName          = errors.New("empty name")
	ErrZeroDate           = errors.New("date cannot be zero")
	ErrDescriptionTooLong = errors.New("description too long (max 200 characters)")
	ErrMissingSection     = errors.New("missing export section")
)

func (tt TransactionType) Validate() error {
	switch tt {
	case Expense, Income:
		return nil
	default:
		return ErrInvalidType
	}
}

func (bp BudgetPeriod) Validate() error {
	switch bp {
	case Weekly, Monthly, Yearly:
		return nil
	default:
		return ErrInvalidPeriod
	}
}

func (in TransactionInput) Validate() error {
	if err := in.Type.Validate(); err != nil {
		return err
	}
	if in.Amount <= 0 {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(in.Category) == "" {
		return ErrEmptyCategory
	}
	if strings.TrimSpace(in.Description) == "" {
		return ErrEmptyDescription
	}
	if len(in.Description) > 200 {
		return ErrDescriptionTooLong
	}
	if in.Date.IsZero() {
		return ErrZeroDate
	}
	return nil
}

func (in BudgetInput) Validate() error {
	if strings.TrimSpace(in.Category) == "" {
		return ErrEmptyCategory
	}
	if in.Amount <= 0 {
		return ErrInvalidAmount
	}
	if err := in.Period.Validate(); err != nil {
		return err
	}
	return nil
}

func (in CategoryInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return ErrEmptyName
	}
	if err := in.Type.Validate(); err != nil {
		return err
	}
	return nil
}

// Validate checks that all three collections were present in the document.
// A missing (or null) array rejects the whole import; empty arrays are fine.
func (e Export) Validate() error {
	if e.Transactions == nil || e.Budgets == nil || e.Categories == nil {
		return ErrMissingSection
	}
	return nil
}

// Validate checks the set fields of the patch; nil fields pass.
func (p TransactionPatch) Validate() error {
	if p.Type != nil {
		if err := p.Type.Validate(); err != nil {
			return err
		}
	}
	if p.Amount != nil && *p.Amount <= 0 {
		return ErrInvalidAmount
	}
	if p.Category != nil && strings.TrimSpace(*p.Category) == "" {
		return ErrEmptyCategory
	}
	if p.Description != nil {
		if strings.TrimSpace(*p.Description) == "" {
			return ErrEmptyDescription
		}
		if len(*p.Description) > 200 {
			return ErrDescriptionTooLong
		}
	}
	if p.Date != nil && p.Date.IsZero() {
		return ErrZeroDate
	}
	return nil
}

// Validate checks the set fields of the patch; nil fields pass.
func (p BudgetPatch) Validate() error {
	if p.Category != nil && strings.TrimSpace(*p.Category) == "" {
		return ErrEmptyCategory
	}
	if p.Amount != nil && *p.Amount <= 0 {
		return ErrInvalidAmount
	}
	if p.Period != nil {
		if err := p.Period.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks the set fields of the patch; nil fields pass.
func (p CategoryPatch) Validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return ErrEmptyName
	}
	if p.Type != nil {
		if err := p.Type.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Apply merges the non-nil patch fields into t.
func (p TransactionPatch) Apply(t *Transaction) {
	if p.Type != nil {
		t.Type = *p.Type
	}
	if p.Amount != nil {
		t.Amount = *p.Amount
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Date != nil {
		t.Date = *p.Date
	}
}

// Apply merges the non-nil patch fields into b.
func (p BudgetPatch) Apply(b *Budget) {
	if p.Category != nil {
		b.Category = *p.Category
	}
	if p.Amount != nil {
		b.Amount = *p.Amount
	}
	if p.Period != nil {
		b.Period = *p.Period
	}
	if p.Color != nil {
		b.Color = *p.Color
	}
}

// Apply merges the non-nil patch fields into c.
func (p CategoryPatch) Apply(c *Category) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Type != nil {
		c.Type = *p.Type
	}
	if p.Color != nil {
		c.Color = *p.Color
	}
	if p.Icon != nil {
		c.Icon = *p.Icon
	}
}
