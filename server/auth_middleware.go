package server

import (
	"context"
	"net/http"

	"github.com/jrsteele09/go-photos-proxy/sessions"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// ContextKeySession stores the request's sessions.Context
const ContextKeySession ContextKey = "session"

// SessionMiddleware loads the session cookie once per request. It never rejects; protected
// handlers decide through the gate.
func (s *Server) SessionMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sc := s.sessions.Load(r)
		next(w, r.WithContext(context.WithValue(r.Context(), ContextKeySession, sc)))
	}
}

// sessionContext returns the session loaded by SessionMiddleware, or nil.
func sessionContext(r *http.Request) sessions.Context {
	sc, _ := r.Context().Value(ContextKeySession).(sessions.Context)
	return sc
}
