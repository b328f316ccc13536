// Package analytics derives read-only figures from domain snapshots. Every
// function is pure: it takes collections in and returns values out, with no
// caching and no stored state, so results always match the current data.
package analytics

import (
	"math"
	"sort"
	"time"

	"fintrack/internal/core"
)

// Totals holds the aggregate money flows of a set of transactions.
type Totals struct {
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
	Balance  float64 `json:"balance"`
}

// CategoryTotal is one category's summed expense amount.
type CategoryTotal struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
}

// BudgetStatus pairs a budget with its consumption over a set of
// transactions.
type BudgetStatus struct {
	Budget    core.Budget `json:"budget"`
	Spent     float64     `json:"spent"`
	Remaining float64     `json:"remaining"`
	Percent   int         `json:"percent"`
}

// DailyPoint holds one calendar day's expense and income totals.
type DailyPoint struct {
	Day      time.Time `json:"day"`
	Expenses float64   `json:"expenses"`
	Income   float64   `json:"income"`
}

// Compute sums income and expenses in a single pass. Balance is income
// minus expenses and may be negative.
func Compute(txns []core.Transaction) Totals {
	var t Totals
	for _, txn := range txns {
		switch txn.Type {
		case core.Income:
			t.Income += txn.Amount
		case core.Expense:
			t.Expenses += txn.Amount
		}
	}
	t.Balance = t.Income - t.Expenses
	return t
}

// Balance is a shorthand for Compute(txns).Balance.
func Balance(txns []core.Transaction) float64 {
	return Compute(txns).Balance
}

// CategoryTotals sums expense transactions per category. Categories appear
// in the order their first transaction occurs in txns; income transactions
// are ignored.
func CategoryTotals(txns []core.Transaction) []CategoryTotal {
	index := map[string]int{}
	var out []CategoryTotal
	for _, txn := range txns {
		if txn.Type != core.Expense {
			continue
		}
		i, ok := index[txn.Category]
		if !ok {
			i = len(out)
			index[txn.Category] = i
			out = append(out, CategoryTotal{Category: txn.Category})
		}
		out[i].Total += txn.Amount
	}
	return out
}

// BudgetConsumption reports each budget against the expenses recorded in
// its category. Percent is clamped to 100; a zero-amount budget with any
// spending counts as fully consumed. Remaining may go negative when the
// budget is exceeded.
func BudgetConsumption(budgets []core.Budget, txns []core.Transaction) []BudgetStatus {
	spentBy := map[string]float64{}
	for _, txn := range txns {
		if txn.Type == core.Expense {
			spentBy[txn.Category] += txn.Amount
		}
	}

	out := make([]BudgetStatus, 0, len(budgets))
	for _, b := range budgets {
		spent := spentBy[b.Category]
		status := BudgetStatus{
			Budget:    b,
			Spent:     spent,
			Remaining: b.Amount - spent,
		}
		switch {
		case b.Amount > 0:
			pct := int(math.Round(spent / b.Amount * 100))
			if pct > 100 {
				pct = 100
			}
			status.Percent = pct
		case spent > 0:
			status.Percent = 100
		}
		out = append(out, status)
	}
	return out
}

// DailySeries buckets expense and income totals into the last days
// calendar days ending at ref. Buckets cover one calendar day in ref's
// location and are returned oldest first; days without transactions hold
// zero. Bucket lookup goes by calendar date, so days shortened or
// stretched by DST transitions still count as one bucket.
func DailySeries(txns []core.Transaction, days int, ref time.Time) []DailyPoint {
	if days <= 0 {
		return []DailyPoint{}
	}

	loc := ref.Location()
	refDay := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, loc)

	out := make([]DailyPoint, days)
	index := make(map[string]int, days)
	for i := range out {
		out[i].Day = refDay.AddDate(0, 0, i-days+1)
		index[out[i].Day.Format("2006-01-02")] = i
	}

	for _, txn := range txns {
		i, ok := index[txn.Date.In(loc).Format("2006-01-02")]
		if !ok {
			continue
		}
		switch txn.Type {
		case core.Expense:
			out[i].Expenses += txn.Amount
		case core.Income:
			out[i].Income += txn.Amount
		}
	}
	return out
}

// SavingsRate is the share of income kept after expenses, rounded to the
// nearest whole percent. With no income the rate is zero regardless of
// spending.
func SavingsRate(txns []core.Transaction) float64 {
	t := Compute(txns)
	if t.Income == 0 {
		return 0
	}
	return math.Round(t.Balance / t.Income * 100)
}

// SortByDate returns a copy of txns ordered newest first. Equal dates keep
// their relative order.
func SortByDate(txns []core.Transaction) []core.Transaction {
	out := append([]core.Transaction{}, txns...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out
}

// SortByDateAscending returns a copy of txns ordered oldest first. Equal
// dates keep their relative order.
func SortByDateAscending(txns []core.Transaction) []core.Transaction {
	out := append([]core.Transaction{}, txns...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// Filter keeps transactions matching the given type and category. An empty
// typ or category matches everything on that axis.
func Filter(txns []core.Transaction, typ core.TransactionType, category string) []core.Transaction {
	out := []core.Transaction{}
	for _, txn := range txns {
		if typ != "" && txn.Type != typ {
			continue
		}
		if category != "" && txn.Category != category {
			continue
		}
		out = append(out, txn)
	}
	return out
}

// Recent returns the n most recent transactions by date.
func Recent(txns []core.Transaction, n int) []core.Transaction {
	sorted := SortByDate(txns)
	if n < 0 {
		n = 0
	}
	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}

// TopBudgets returns up to n budget statuses, most consumed first. Equal
// percentages keep the budgets' stored order.
func TopBudgets(budgets []core.Budget, txns []core.Transaction, n int) []BudgetStatus {
	all := BudgetConsumption(budgets, txns)
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Percent > all[j].Percent
	})
	if n < 0 {
		n = 0
	}
	if n > len(all) {
		n = len(all)
	}
	return all[:n]
}
