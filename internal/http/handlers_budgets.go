package http

import (
	"net/http"

	"fintrack/internal/analytics"
	"fintrack/internal/log"
)

// handleBudgets serves GET (list, optionally with consumption) and POST
// (create) on /api/budgets.
func (s *Server) handleBudgets(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		snap := s.tracker.Snapshot()
		if r.URL.Query().Get("status") == "true" {
			NewJSONResponse().
				Payload(analytics.BudgetConsumption(snap.Budgets, snap.Transactions)).
				Write(w)
			return
		}
		NewJSONResponse().Payload(snap.Budgets).Write(w)

	case http.MethodPost:
		var p budgetPayload
		if err := decodeJSON(r, &p); err != nil {
			BadRequestError(err.Error()).Write(w)
			return
		}

		b, err := s.tracker.CreateBudget(r.Context(), p.input())
		if err != nil {
			s.logger.WarnContext(r.Context(), "Create budget rejected", log.FieldError, err)
			FromError(err).Write(w)
			return
		}
		NewJSONResponse().Status(http.StatusCreated).Payload(b).Write(w)

	default:
		MethodNotAllowedError("GET, POST").Write(w)
	}
}

// handleBudgetByID serves PUT/PATCH and DELETE on /api/budgets/{id}.
func (s *Server) handleBudgetByID(w http.ResponseWriter, r *http.Request) {
	id := pathID(r.URL.Path, "/api/budgets/")
	if id == "" {
		NotFoundError("missing budget id").Write(w)
		return
	}

	switch r.Method {
	case http.MethodPut, http.MethodPatch:
		var p budgetPatchPayload
		if err := decodeJSON(r, &p); err != nil {
			BadRequestError(err.Error()).Write(w)
			return
		}
		if err := s.tracker.UpdateBudget(r.Context(), id, p.patch()); err != nil {
			FromError(err).Write(w)
			return
		}
		NewJSONResponse().Status(http.StatusNoContent).Write(w)

	case http.MethodDelete:
		if err := s.tracker.DeleteBudget(r.Context(), id); err != nil {
			FromError(err).Write(w)
			return
		}
		NewJSONResponse().Status(http.StatusNoContent).Write(w)

	default:
		MethodNotAllowedError("PUT, PATCH, DELETE").Write(w)
	}
}
