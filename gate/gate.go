// Package gate authorizes protected operations: it resolves the session, obtains a usable
// access token and runs the operation with it.
package gate

import (
	"context"

	"github.com/jrsteele09/go-photos-proxy/internal/errors"
	"github.com/jrsteele09/go-photos-proxy/media"
	"github.com/jrsteele09/go-photos-proxy/sessions"
	"github.com/jrsteele09/go-photos-proxy/token"
	"github.com/rs/zerolog"
)

// TokenSource hands out valid access tokens for durable identities.
type TokenSource interface {
	EnsureValid(ctx context.Context, identity string) (token.Valid, error)
}

var _ TokenSource = (*token.Manager)(nil)

// Grant is the authorization an operation runs under.
type Grant struct {
	AccessToken string
	Source      sessions.Source
	Identity    string
}

type Gate struct {
	tokens TokenSource
}

func New(tokens TokenSource) *Gate {
	return &Gate{tokens: tokens}
}

// Authorize rejects before any upstream call when the session has no usable credential.
// Ephemeral bundles are used verbatim, even when expired; the upstream decides.
func (g *Gate) Authorize(ctx context.Context, sc sessions.Context) (Grant, error) {
	binding, err := sessions.Resolve(sc)
	if err != nil {
		return Grant{}, err
	}

	if binding.Source == sessions.SourceEphemeral {
		return Grant{AccessToken: binding.Tokens.AccessToken, Source: binding.Source, Identity: binding.Identity}, nil
	}

	valid, err := g.tokens.EnsureValid(ctx, binding.Identity)
	if err != nil {
		if errors.IsKind(err, errors.KindStoreUnavailable) {
			zerolog.Ctx(ctx).Warn().Err(err).Str("identity", binding.Identity).
				Msg("credential store unavailable during token check")
			return Grant{}, errors.Wrap(errors.KindUnauthenticated, err, "not authenticated")
		}
		return Grant{}, err
	}
	return Grant{AccessToken: valid.AccessToken, Source: binding.Source, Identity: binding.Identity}, nil
}

// Do authorizes and then runs op. An upstream rejection of the token is reported as
// unauthenticated and is not retried.
func (g *Gate) Do(ctx context.Context, sc sessions.Context, op func(ctx context.Context, accessToken string) error) error {
	grant, err := g.Authorize(ctx, sc)
	if err != nil {
		return err
	}

	err = op(ctx, grant.AccessToken)
	if errors.Is(err, media.ErrUnauthorized) {
		zerolog.Ctx(ctx).Info().Str("identity", grant.Identity).Str("source", string(grant.Source)).
			Msg("upstream rejected access token")
		return errors.Wrap(errors.KindUnauthenticated, err, "not authenticated")
	}
	return err
}
