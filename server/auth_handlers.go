package server

import (
	"context"
	"net/http"

	"github.com/jrsteele09/go-photos-proxy/credentials"
	"github.com/jrsteele09/go-photos-proxy/internal/errors"
	"github.com/jrsteele09/go-photos-proxy/sessions"
	"github.com/rs/zerolog"
)

type authURLResponse struct {
	AuthURL string `json:"authUrl"`
}

type authStatusResponse struct {
	IsAuthenticated bool            `json:"isAuthenticated"`
	Source          sessions.Source `json:"source,omitempty"`
}

type userResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	ProfilePicture string `json:"profilePicture"`
}

type successResponse struct {
	Success bool `json:"success"`
}

func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// AuthURLHandler returns the consent URL. It has no side effects.
func (s *Server) AuthURLHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authURL, err := s.identity.AuthURL()
		if err != nil {
			writeError(w, r, errors.Wrap(errors.KindInternal, err, "failed to generate auth URL"))
			return
		}
		writeJSON(w, http.StatusOK, authURLResponse{AuthURL: authURL})
	}
}

// AuthStatusHandler reports whether the session resolves to an identity. It never fails.
func (s *Server) AuthStatusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		binding, err := sessions.Resolve(sessionContext(r))
		if err != nil {
			writeJSON(w, http.StatusOK, authStatusResponse{IsAuthenticated: false})
			return
		}
		writeJSON(w, http.StatusOK, authStatusResponse{IsAuthenticated: true, Source: binding.Source})
	}
}

// CurrentUserHandler returns the profile of the signed in user. Durable sessions read the
// credential record; a session whose record has gone is destroyed.
func (s *Server) CurrentUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		binding, err := sessions.Resolve(sessionContext(r))
		if err != nil {
			writeError(w, r, err)
			return
		}

		if binding.Source == sessions.SourceEphemeral {
			writeJSON(w, http.StatusOK, newUserResponse(binding.Identity, binding.Profile))
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), s.config.GetStoreTimeout())
		defer cancel()

		record, err := s.credentials.Get(ctx, binding.Identity)
		switch {
		case errors.Is(err, credentials.ErrNotFound):
			zerolog.Ctx(r.Context()).Info().Str("identity", binding.Identity).Msg("credential record missing, ending session")
			if err := s.sessions.Destroy(w, r); err != nil {
				zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to destroy session")
			}
			writeError(w, r, errors.Wrap(errors.KindUnauthenticated, err, "not authenticated"))
		case err != nil:
			writeError(w, r, errors.Wrap(errors.KindStoreUnavailable, err, "credential store unavailable"))
		default:
			writeJSON(w, http.StatusOK, newUserResponse(record.ID, record.Profile))
		}
	}
}

func newUserResponse(id string, p credentials.Profile) userResponse {
	return userResponse{ID: id, Name: p.DisplayName, Email: p.Email, ProfilePicture: p.AvatarURL}
}

// LogoutHandler ends the session. Logging out without a session succeeds.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.sessions.Destroy(w, r); err != nil {
			writeError(w, r, errors.Wrap(errors.KindInternal, err, "failed to log out"))
			return
		}
		writeJSON(w, http.StatusOK, successResponse{Success: true})
	}
}

// PreflightHandler answers OPTIONS requests not already answered by CorsMiddleware.
func (s *Server) PreflightHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}
}
