package state

import "fintrack/internal/core"

// defaultCategories is the fixed seed used whenever an identity has no
// persisted categories, or when no identity is active at all.
var defaultCategories = []core.Category{
	{ID: "cat-1", Name: "Food & Dining", Type: core.Expense, Color: "#0D9488"},
	{ID: "cat-2", Name: "Transportation", Type: core.Expense, Color: "#4F46E5"},
	{ID: "cat-3", Name: "Housing", Type: core.Expense, Color: "#059669"},
	{ID: "cat-4", Name: "Entertainment", Type: core.Expense, Color: "#B45309"},
	{ID: "cat-5", Name: "Utilities", Type: core.Expense, Color: "#BE185D"},
	{ID: "cat-6", Name: "Salary", Type: core.Income, Color: "#047857"},
	{ID: "cat-7", Name: "Investments", Type: core.Income, Color: "#1D4ED8"},
	{ID: "cat-8", Name: "Gifts", Type: core.Income, Color: "#7C3AED"},
}

// DefaultCategories returns a fresh copy of the seed set.
func DefaultCategories() []core.Category {
	out := make([]core.Category, len(defaultCategories))
	copy(out, defaultCategories)
	return out
}
