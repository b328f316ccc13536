package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/identity"
	"fintrack/internal/services"
	"fintrack/internal/state"
	"fintrack/internal/storage"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	manager := state.NewManager(storage.NewAdapter(storage.NewMemoryKV()), nil)
	holder := identity.NewHolder()
	holder.Subscribe(manager.OnIdentityChange)
	tracker := services.NewTracker(manager, nil, nil)
	return NewServer(":0", tracker, holder, nil)
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response body: %v\nbody: %s", err, rec.Body.String())
	}
	return v
}

func sampleTransaction() map[string]any {
	return map[string]any{
		"type":        "expense",
		"amount":      45.50,
		"category":    "Food & Dining",
		"description": "groceries",
		"date":        time.Date(2025, 8, 30, 10, 0, 0, 0, time.UTC).Format(time.RFC3339),
	}
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		rec := doJSON(t, s, http.MethodGet, path, nil)
		if rec.Code != http.StatusOK {
			t.Errorf("%s status = %d, want 200", path, rec.Code)
		}
	}
}

func TestTransactionCRUD(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/transactions", sampleTransaction())
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body: %s", rec.Code, rec.Body.String())
	}
	created := decodeBody[core.Transaction](t, rec)
	if created.ID == "" {
		t.Fatal("expected generated id in response")
	}

	rec = doJSON(t, s, http.MethodGet, "/api/transactions", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	listed := decodeBody[[]core.Transaction](t, rec)
	if len(listed) != 1 || listed[0].ID != created.ID {
		t.Fatalf("list = %+v, want the created transaction", listed)
	}

	rec = doJSON(t, s, http.MethodPatch, "/api/transactions/"+created.ID, map[string]any{"amount": 60.0})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("update status = %d, body: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, s, http.MethodGet, "/api/transactions", nil)
	listed = decodeBody[[]core.Transaction](t, rec)
	if listed[0].Amount != 60 {
		t.Errorf("amount after patch = %v, want 60", listed[0].Amount)
	}

	rec = doJSON(t, s, http.MethodDelete, "/api/transactions/"+created.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}

	rec = doJSON(t, s, http.MethodDelete, "/api/transactions/"+created.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", rec.Code)
	}
}

func TestTransactionValidationErrors(t *testing.T) {
	s := newTestServer(t)

	body := sampleTransaction()
	body["amount"] = -5
	rec := doJSON(t, s, http.MethodPost, "/api/transactions", body)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("negative amount status = %d, want 422, body: %s", rec.Code, rec.Body.String())
	}

	body = sampleTransaction()
	body["type"] = "transfer"
	rec = doJSON(t, s, http.MethodPost, "/api/transactions", body)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("bad type status = %d, want 422", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/transactions", bytes.NewBufferString("{not json"))
	rec2 := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec2, req)
	if rec2.Code != http.StatusBadRequest {
		t.Errorf("malformed body status = %d, want 400", rec2.Code)
	}
}

func TestTransactionListFilters(t *testing.T) {
	s := newTestServer(t)

	doJSON(t, s, http.MethodPost, "/api/transactions", sampleTransaction())
	income := sampleTransaction()
	income["type"] = "income"
	income["category"] = "Salary"
	doJSON(t, s, http.MethodPost, "/api/transactions", income)

	rec := doJSON(t, s, http.MethodGet, "/api/transactions?type=income", nil)
	listed := decodeBody[[]core.Transaction](t, rec)
	if len(listed) != 1 || listed[0].Type != core.Income {
		t.Errorf("type filter = %+v, want one income entry", listed)
	}

	rec = doJSON(t, s, http.MethodGet, "/api/transactions?category=Salary", nil)
	listed = decodeBody[[]core.Transaction](t, rec)
	if len(listed) != 1 || listed[0].Category != "Salary" {
		t.Errorf("category filter = %+v, want the salary entry", listed)
	}
}

func TestTransactionStringAmounts(t *testing.T) {
	s := newTestServer(t)

	body := sampleTransaction()
	body["amount"] = "45,50"
	rec := doJSON(t, s, http.MethodPost, "/api/transactions", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("string amount status = %d, body: %s", rec.Code, rec.Body.String())
	}
	created := decodeBody[core.Transaction](t, rec)
	if created.Amount != 45.50 {
		t.Errorf("amount = %v, want 45.50", created.Amount)
	}

	rec = doJSON(t, s, http.MethodPatch, "/api/transactions/"+created.ID, map[string]any{"amount": "60.25"})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("string amount patch status = %d, body: %s", rec.Code, rec.Body.String())
	}
	rec = doJSON(t, s, http.MethodGet, "/api/transactions", nil)
	if listed := decodeBody[[]core.Transaction](t, rec); listed[0].Amount != 60.25 {
		t.Errorf("amount after patch = %v, want 60.25", listed[0].Amount)
	}

	body = sampleTransaction()
	body["amount"] = "-5"
	rec = doJSON(t, s, http.MethodPost, "/api/transactions", body)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("negative string amount status = %d, want 400", rec.Code)
	}
}

func TestTransactionListSortOrder(t *testing.T) {
	s := newTestServer(t)

	older := sampleTransaction()
	older["description"] = "older"
	older["date"] = time.Date(2025, 8, 28, 10, 0, 0, 0, time.UTC).Format(time.RFC3339)
	doJSON(t, s, http.MethodPost, "/api/transactions", older)
	doJSON(t, s, http.MethodPost, "/api/transactions", sampleTransaction())

	rec := doJSON(t, s, http.MethodGet, "/api/transactions?sort=asc", nil)
	listed := decodeBody[[]core.Transaction](t, rec)
	if listed[0].Description != "older" {
		t.Errorf("ascending order starts with %q, want older", listed[0].Description)
	}

	rec = doJSON(t, s, http.MethodGet, "/api/transactions?sort=desc", nil)
	listed = decodeBody[[]core.Transaction](t, rec)
	if listed[0].Description != "groceries" {
		t.Errorf("descending order starts with %q, want groceries", listed[0].Description)
	}
}

func TestBudgetEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/budgets", map[string]any{
		"category": "Food & Dining",
		"amount":   500.0,
		"period":   "monthly",
		"color":    "#0D9488",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create budget status = %d, body: %s", rec.Code, rec.Body.String())
	}
	created := decodeBody[core.Budget](t, rec)

	doJSON(t, s, http.MethodPost, "/api/transactions", sampleTransaction())

	rec = doJSON(t, s, http.MethodGet, "/api/budgets?status=true", nil)
	statuses := decodeBody[[]map[string]any](t, rec)
	if len(statuses) != 1 {
		t.Fatalf("expected 1 budget status, got %d", len(statuses))
	}
	if spent := statuses[0]["spent"].(float64); spent != 45.50 {
		t.Errorf("spent = %v, want 45.50", spent)
	}

	rec = doJSON(t, s, http.MethodDelete, "/api/budgets/"+created.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("delete budget status = %d", rec.Code)
	}
}

func TestCategoryEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodGet, "/api/categories", nil)
	cats := decodeBody[[]core.Category](t, rec)
	if len(cats) != 8 {
		t.Fatalf("default categories = %d, want 8", len(cats))
	}

	rec = doJSON(t, s, http.MethodPost, "/api/categories", map[string]any{
		"name":  "Pets",
		"type":  "expense",
		"color": "#111111",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create category status = %d, body: %s", rec.Code, rec.Body.String())
	}
	created := decodeBody[core.Category](t, rec)

	name := "Pet Care"
	rec = doJSON(t, s, http.MethodPatch, "/api/categories/"+created.ID, map[string]any{"name": name})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("update category status = %d", rec.Code)
	}
}

func TestIdentityEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodGet, "/identity", nil)
	body := decodeBody[map[string]any](t, rec)
	if body["active"].(bool) {
		t.Error("expected no active identity initially")
	}

	// Data created before any identity is ephemeral
	doJSON(t, s, http.MethodPost, "/api/transactions", sampleTransaction())

	rec = doJSON(t, s, http.MethodPost, "/identity", map[string]any{"identity": "alice"})
	if rec.Code != http.StatusOK {
		t.Fatalf("set identity status = %d", rec.Code)
	}

	// Switching identity swaps in alice's (empty) collections
	rec = doJSON(t, s, http.MethodGet, "/api/transactions", nil)
	if listed := decodeBody[[]core.Transaction](t, rec); len(listed) != 0 {
		t.Errorf("alice should start empty, got %d transactions", len(listed))
	}

	doJSON(t, s, http.MethodPost, "/api/transactions", sampleTransaction())

	rec = doJSON(t, s, http.MethodDelete, "/identity", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("clear identity status = %d", rec.Code)
	}
	rec = doJSON(t, s, http.MethodGet, "/api/transactions", nil)
	if listed := decodeBody[[]core.Transaction](t, rec); len(listed) != 0 {
		t.Errorf("anonymous state should be empty, got %d", len(listed))
	}

	// alice's data survives the round trip
	doJSON(t, s, http.MethodPost, "/identity", map[string]any{"identity": "alice"})
	rec = doJSON(t, s, http.MethodGet, "/api/transactions", nil)
	if listed := decodeBody[[]core.Transaction](t, rec); len(listed) != 1 {
		t.Errorf("alice's transactions = %d, want 1", len(listed))
	}

	rec = doJSON(t, s, http.MethodPost, "/identity", map[string]any{"identity": "  "})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("blank identity status = %d, want 422", rec.Code)
	}
}

func TestDashboard(t *testing.T) {
	s := newTestServer(t)

	doJSON(t, s, http.MethodPost, "/api/transactions", sampleTransaction())
	income := sampleTransaction()
	income["type"] = "income"
	income["category"] = "Salary"
	income["amount"] = 2500.0
	doJSON(t, s, http.MethodPost, "/api/transactions", income)

	rec := doJSON(t, s, http.MethodGet, "/api/dashboard", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("dashboard status = %d", rec.Code)
	}
	resp := decodeBody[dashboardResponse](t, rec)

	if resp.Totals.Balance != 2454.50 {
		t.Errorf("balance = %v, want 2454.50", resp.Totals.Balance)
	}
	if resp.TransactionCnt != 2 {
		t.Errorf("transaction count = %d, want 2", resp.TransactionCnt)
	}
	if len(resp.DailySpending) != dashboardSeriesDays {
		t.Errorf("daily buckets = %d, want %d", len(resp.DailySpending), dashboardSeriesDays)
	}
	if len(resp.Recent) != 2 {
		t.Errorf("recent = %d, want 2", len(resp.Recent))
	}
}

func TestDashboardBudgetsMostConsumedFirst(t *testing.T) {
	s := newTestServer(t)

	doJSON(t, s, http.MethodPost, "/api/budgets", map[string]any{
		"category": "Entertainment",
		"amount":   1000.0,
		"period":   "monthly",
		"color":    "#0D9488",
	})
	doJSON(t, s, http.MethodPost, "/api/budgets", map[string]any{
		"category": "Food & Dining",
		"amount":   50.0,
		"period":   "monthly",
		"color":    "#F59E0B",
	})
	doJSON(t, s, http.MethodPost, "/api/transactions", sampleTransaction()) // 45.50 Food & Dining

	rec := doJSON(t, s, http.MethodGet, "/api/dashboard", nil)
	resp := decodeBody[dashboardResponse](t, rec)
	if len(resp.Budgets) != 2 {
		t.Fatalf("budgets = %d, want 2", len(resp.Budgets))
	}
	if resp.Budgets[0].Budget.Category != "Food & Dining" || resp.Budgets[0].Percent != 91 {
		t.Errorf("first budget = %s (%d%%), want Food & Dining (91%%)",
			resp.Budgets[0].Budget.Category, resp.Budgets[0].Percent)
	}
}

func TestReportsWindow(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodGet, "/api/reports?days=30", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("reports status = %d", rec.Code)
	}
	resp := decodeBody[reportsResponse](t, rec)
	if len(resp.DailySpending) != 30 {
		t.Errorf("daily buckets = %d, want 30", len(resp.DailySpending))
	}

	rec = doJSON(t, s, http.MethodGet, "/api/reports?days=100000", nil)
	resp = decodeBody[reportsResponse](t, rec)
	if len(resp.DailySpending) != 366 {
		t.Errorf("capped daily buckets = %d, want 366", len(resp.DailySpending))
	}
}

func TestExportImportClear(t *testing.T) {
	s := newTestServer(t)
	doJSON(t, s, http.MethodPost, "/api/transactions", sampleTransaction())

	rec := doJSON(t, s, http.MethodGet, "/api/export", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("export status = %d", rec.Code)
	}
	doc := decodeBody[core.Export](t, rec)
	if len(doc.Transactions) != 1 || doc.ExportDate.IsZero() {
		t.Fatalf("unexpected export document: %+v", doc)
	}

	// Import into a fresh server
	other := newTestServer(t)
	rec = doJSON(t, other, http.MethodPost, "/api/import", doc)
	if rec.Code != http.StatusOK {
		t.Fatalf("import status = %d, body: %s", rec.Code, rec.Body.String())
	}
	counts := decodeBody[map[string]int](t, rec)
	if counts["transactions"] != 1 {
		t.Errorf("imported transactions = %d, want 1", counts["transactions"])
	}

	// A document with a missing section is rejected wholesale
	rec = doJSON(t, other, http.MethodPost, "/api/import", map[string]any{
		"transactions": []any{},
		"budgets":      []any{},
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("partial import status = %d, want 422", rec.Code)
	}

	rec = doJSON(t, other, http.MethodPost, "/api/clear", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("clear status = %d", rec.Code)
	}
	rec = doJSON(t, other, http.MethodGet, "/api/transactions", nil)
	if listed := decodeBody[[]core.Transaction](t, rec); len(listed) != 0 {
		t.Errorf("transactions after clear = %d, want 0", len(listed))
	}
}

func TestMethodNotAllowed(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodDelete, "/api/transactions", nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
	if allow := rec.Header().Get("Allow"); allow != "GET, POST" {
		t.Errorf("Allow header = %q, want %q", allow, "GET, POST")
	}
}

func TestSecurityHeaders(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodGet, "/api/transactions", nil)
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
	}
	if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q, want DENY", got)
	}
}
