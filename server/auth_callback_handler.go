package server

import (
	"context"
	"net/http"
	"time"

	"github.com/jrsteele09/go-photos-proxy/credentials"
	"github.com/jrsteele09/go-photos-proxy/identity"
	"github.com/jrsteele09/go-photos-proxy/internal/errors"
	"github.com/jrsteele09/go-photos-proxy/sessions"
	"github.com/rs/zerolog"
)

// OAuthCallbackHandler completes the authorization-code flow and establishes the session.
func (s *Server) OAuthCallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		logger := zerolog.Ctx(ctx)

		if errorParam := r.FormValue("error"); errorParam != "" {
			logger.Info().Str("error", errorParam).Str("description", r.FormValue("error_description")).
				Msg("authorization declined by provider")
			writeError(w, r, errors.New(errors.KindInvalidCode, "Invalid authorization code"))
			return
		}

		grant, err := s.identity.Exchange(ctx, r.FormValue("code"), r.FormValue("state"))
		if err != nil {
			writeError(w, r, err)
			return
		}

		sc := s.persistGrant(ctx, grant)
		if err := s.sessions.Save(w, r, sc); err != nil {
			writeError(w, r, errors.Wrap(errors.KindInternal, err, "failed to establish session"))
			return
		}

		logger.Info().Str("identity", grant.Identity).Str("source", string(sourceOf(sc))).Msg("user authorized")
		s.redirectToClient(w, r, RouteAuthSuccess)
	}
}

// persistGrant stores the grant as a credential record and returns a durable session for it.
// Any store failure degrades to an ephemeral session carrying the grant itself.
func (s *Server) persistGrant(ctx context.Context, grant identity.Grant) sessions.Context {
	logger := zerolog.Ctx(ctx)
	ephemeral := sessions.Ephemeral{Identity: grant.Identity, Profile: grant.Profile, Tokens: grant.Tokens}

	storeCtx, cancel := context.WithTimeout(ctx, s.config.GetStoreTimeout())
	defer cancel()

	existing, err := s.credentials.Get(storeCtx, grant.Identity)
	if err != nil && !errors.Is(err, credentials.ErrNotFound) {
		logger.Warn().Err(err).Str("identity", grant.Identity).Msg("credential store unavailable, using ephemeral session")
		return ephemeral
	}

	now := time.Now()
	record := &credentials.Record{
		ID:        grant.Identity,
		Profile:   grant.Profile,
		Tokens:    grant.Tokens,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if existing != nil {
		record.CreatedAt = existing.CreatedAt
		if record.Tokens.RefreshToken == "" {
			record.Tokens.RefreshToken = existing.Tokens.RefreshToken
		}
	}

	if err := s.credentials.Upsert(storeCtx, record); err != nil {
		logger.Warn().Err(err).Str("identity", grant.Identity).Msg("failed to persist credentials, using ephemeral session")
		return ephemeral
	}
	return sessions.Durable{Identity: grant.Identity}
}

func sourceOf(sc sessions.Context) sessions.Source {
	binding, err := sessions.Resolve(sc)
	if err != nil {
		return ""
	}
	return binding.Source
}
