package http

import (
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

// handleExport serves GET /api/export: the three collections plus a date
// stamp, suitable for re-import.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		MethodNotAllowedError("GET").Write(w)
		return
	}

	doc := s.tracker.Export(r.Context())
	NewJSONResponse().
		Header("Content-Disposition", `attachment; filename="fintrack-export.json"`).
		Payload(doc).
		Write(w)
}

// handleImport serves POST /api/import. The document replaces all three
// collections; a missing section rejects the whole import and leaves the
// current state untouched.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		MethodNotAllowedError("POST").Write(w)
		return
	}

	var doc core.Export
	if err := decodeJSON(r, &doc); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	if err := s.tracker.Import(r.Context(), doc); err != nil {
		s.logger.WarnContext(r.Context(), "Import rejected", log.FieldError, err)
		FromError(err).Write(w)
		return
	}

	snap := s.tracker.Snapshot()
	NewJSONResponse().Payload(struct {
		Transactions int `json:"transactions"`
		Budgets      int `json:"budgets"`
		Categories   int `json:"categories"`
	}{
		Transactions: len(snap.Transactions),
		Budgets:      len(snap.Budgets),
		Categories:   len(snap.Categories),
	}).Write(w)
}

// handleClear serves POST /api/clear: deletes the active identity's stored
// data and resets in-memory state to the defaults.
func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		MethodNotAllowedError("POST").Write(w)
		return
	}

	s.tracker.ClearAll(r.Context())
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}
