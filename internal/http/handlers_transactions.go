package http

import (
	"net/http"

	"fintrack/internal/analytics"
	"fintrack/internal/core"
	"fintrack/internal/log"
)

// handleTransactions serves GET (list, with optional type/category/limit
// filters) and POST (create) on /api/transactions.
func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listTransactions(w, r)
	case http.MethodPost:
		s.createTransaction(w, r)
	default:
		MethodNotAllowedError("GET, POST").Write(w)
	}
}

func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request) {
	snap := s.tracker.Snapshot()

	txns := analytics.Filter(snap.Transactions,
		core.TransactionType(r.URL.Query().Get("type")),
		r.URL.Query().Get("category"))

	switch r.URL.Query().Get("sort") {
	case "asc":
		txns = analytics.SortByDateAscending(txns)
	case "desc":
		txns = analytics.SortByDate(txns)
	}

	if limit := queryInt(r, "limit", 0); limit > 0 {
		txns = analytics.Recent(txns, limit)
	}

	NewJSONResponse().Payload(txns).Write(w)
}

func (s *Server) createTransaction(w http.ResponseWriter, r *http.Request) {
	var p transactionPayload
	if err := decodeJSON(r, &p); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	txn, err := s.tracker.CreateTransaction(r.Context(), p.input())
	if err != nil {
		s.logger.WarnContext(r.Context(), "Create transaction rejected", log.FieldError, err)
		FromError(err).Write(w)
		return
	}

	NewJSONResponse().Status(http.StatusCreated).Payload(txn).Write(w)
}

// handleTransactionByID serves PUT/PATCH (partial update) and DELETE on
// /api/transactions/{id}.
func (s *Server) handleTransactionByID(w http.ResponseWriter, r *http.Request) {
	id := pathID(r.URL.Path, "/api/transactions/")
	if id == "" {
		NotFoundError("missing transaction id").Write(w)
		return
	}

	switch r.Method {
	case http.MethodPut, http.MethodPatch:
		var p transactionPatchPayload
		if err := decodeJSON(r, &p); err != nil {
			BadRequestError(err.Error()).Write(w)
			return
		}
		if err := s.tracker.UpdateTransaction(r.Context(), id, p.patch()); err != nil {
			FromError(err).Write(w)
			return
		}
		NewJSONResponse().Status(http.StatusNoContent).Write(w)

	case http.MethodDelete:
		if err := s.tracker.DeleteTransaction(r.Context(), id); err != nil {
			FromError(err).Write(w)
			return
		}
		NewJSONResponse().Status(http.StatusNoContent).Write(w)

	default:
		MethodNotAllowedError("PUT, PATCH, DELETE").Write(w)
	}
}
