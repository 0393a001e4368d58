package server

import (
	"encoding/json"
	"net/http"

	"github.com/jrsteele09/go-photos-proxy/internal/errors"
	"github.com/rs/zerolog"
)

// errorResponse is the body of every failed request.
type errorResponse struct {
	Error   errors.Kind `json:"error"`
	Message string      `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError renders err as {"error": kind, "message": text} with the kind's status code.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := errors.KindOf(err)
	status := errors.HTTPStatus(kind)

	event := zerolog.Ctx(r.Context()).Debug()
	if status >= http.StatusInternalServerError {
		event = zerolog.Ctx(r.Context()).Error()
	}
	event.Err(err).Str("kind", string(kind)).Msg("request failed")

	writeJSON(w, status, errorResponse{Error: kind, Message: errors.MessageOf(err)})
}

// redirectToClient sends the browser to a page of the browser application.
func (s *Server) redirectToClient(w http.ResponseWriter, r *http.Request, path string) {
	http.Redirect(w, r, s.config.GetClientURL()+path, http.StatusFound)
}
