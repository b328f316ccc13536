package http

import (
	"net/http"
	"time"

	"fintrack/internal/analytics"
	"fintrack/internal/core"
)

const (
	dashboardRecentCount = 5
	dashboardBudgetCount = 4
	dashboardSeriesDays  = 7
)

// dashboardResponse aggregates the figures the overview screen needs in a
// single round trip.
type dashboardResponse struct {
	Totals         analytics.Totals          `json:"totals"`
	SavingsRate    float64                   `json:"savingsRate"`
	Recent         []core.Transaction        `json:"recentTransactions"`
	Budgets        []analytics.BudgetStatus  `json:"budgets"`
	ByCategory     []analytics.CategoryTotal `json:"spendingByCategory"`
	DailySpending  []analytics.DailyPoint    `json:"dailySpending"`
	TransactionCnt int                       `json:"transactionCount"`
}

// handleDashboard serves GET /api/dashboard. All figures are derived from
// the current snapshot on every request.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		MethodNotAllowedError("GET").Write(w)
		return
	}

	snap := s.tracker.Snapshot()

	resp := dashboardResponse{
		Totals:         analytics.Compute(snap.Transactions),
		SavingsRate:    analytics.SavingsRate(snap.Transactions),
		Recent:         analytics.Recent(snap.Transactions, dashboardRecentCount),
		Budgets:        analytics.TopBudgets(snap.Budgets, snap.Transactions, dashboardBudgetCount),
		ByCategory:     analytics.CategoryTotals(snap.Transactions),
		DailySpending:  analytics.DailySeries(snap.Transactions, dashboardSeriesDays, time.Now()),
		TransactionCnt: len(snap.Transactions),
	}

	NewJSONResponse().Payload(resp).Write(w)
}

// reportsResponse holds the full derived-analytics view, with a
// configurable daily window.
type reportsResponse struct {
	Totals        analytics.Totals          `json:"totals"`
	SavingsRate   float64                   `json:"savingsRate"`
	ByCategory    []analytics.CategoryTotal `json:"spendingByCategory"`
	Budgets       []analytics.BudgetStatus  `json:"budgets"`
	DailySpending []analytics.DailyPoint    `json:"dailySpending"`
}

// handleReports serves GET /api/reports. The optional days parameter sizes
// the daily spending window (default 7, capped at 366).
func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		MethodNotAllowedError("GET").Write(w)
		return
	}

	days := queryInt(r, "days", dashboardSeriesDays)
	if days < 1 {
		days = dashboardSeriesDays
	}
	if days > 366 {
		days = 366
	}

	snap := s.tracker.Snapshot()
	txns := analytics.Filter(snap.Transactions,
		core.TransactionType(r.URL.Query().Get("type")),
		r.URL.Query().Get("category"))

	resp := reportsResponse{
		Totals:        analytics.Compute(txns),
		SavingsRate:   analytics.SavingsRate(txns),
		ByCategory:    analytics.CategoryTotals(txns),
		Budgets:       analytics.BudgetConsumption(snap.Budgets, txns),
		DailySpending: analytics.DailySeries(txns, days, time.Now()),
	}

	NewJSONResponse().Payload(resp).Write(w)
}
