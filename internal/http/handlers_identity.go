package http

import (
	"net/http"
	"strings"

	"fintrack/internal/log"
)

type identityBody struct {
	Identity string `json:"identity"`
}

// handleIdentity serves GET (current), POST (set) and DELETE (clear) on
// /identity. Setting or clearing the identity swaps the visible
// collections through the state manager's subscription.
func (s *Server) handleIdentity(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		label, ok := s.holder.Current()
		NewJSONResponse().Payload(struct {
			Identity string `json:"identity"`
			Active   bool   `json:"active"`
		}{Identity: label, Active: ok}).Write(w)

	case http.MethodPost:
		var body identityBody
		if err := decodeJSON(r, &body); err != nil {
			BadRequestError(err.Error()).Write(w)
			return
		}
		label := strings.TrimSpace(body.Identity)
		if label == "" {
			UnprocessableEntityError("identity cannot be empty").Write(w)
			return
		}

		s.holder.Set(label)
		s.logger.InfoContext(r.Context(), "Identity set", log.FieldIdentity, label)
		NewJSONResponse().Payload(identityBody{Identity: label}).Write(w)

	case http.MethodDelete:
		s.holder.Clear()
		s.logger.InfoContext(r.Context(), "Identity cleared")
		NewJSONResponse().Status(http.StatusNoContent).Write(w)

	default:
		MethodNotAllowedError("GET, POST, DELETE").Write(w)
	}
}
