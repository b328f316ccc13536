package http

import (
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

// handleCategories serves GET (list) and POST (create) on /api/categories.
func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		NewJSONResponse().Payload(s.tracker.Snapshot().Categories).Write(w)

	case http.MethodPost:
		var in core.CategoryInput
		if err := decodeJSON(r, &in); err != nil {
			BadRequestError(err.Error()).Write(w)
			return
		}

		c, err := s.tracker.CreateCategory(r.Context(), in)
		if err != nil {
			s.logger.WarnContext(r.Context(), "Create category rejected", log.FieldError, err)
			FromError(err).Write(w)
			return
		}
		NewJSONResponse().Status(http.StatusCreated).Payload(c).Write(w)

	default:
		MethodNotAllowedError("GET, POST").Write(w)
	}
}

// handleCategoryByID serves PUT/PATCH and DELETE on /api/categories/{id}.
// Deleting a category leaves transactions and budgets that reference it
// untouched.
func (s *Server) handleCategoryByID(w http.ResponseWriter, r *http.Request) {
	id := pathID(r.URL.Path, "/api/categories/")
	if id == "" {
		NotFoundError("missing category id").Write(w)
		return
	}

	switch r.Method {
	case http.MethodPut, http.MethodPatch:
		var patch core.CategoryPatch
		if err := decodeJSON(r, &patch); err != nil {
			BadRequestError(err.Error()).Write(w)
			return
		}
		if err := s.tracker.UpdateCategory(r.Context(), id, patch); err != nil {
			FromError(err).Write(w)
			return
		}
		NewJSONResponse().Status(http.StatusNoContent).Write(w)

	case http.MethodDelete:
		if err := s.tracker.DeleteCategory(r.Context(), id); err != nil {
			FromError(err).Write(w)
			return
		}
		NewJSONResponse().Status(http.StatusNoContent).Write(w)

	default:
		MethodNotAllowedError("PUT, PATCH, DELETE").Write(w)
	}
}
