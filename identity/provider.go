// Package identity talks to the identity provider: consent URL, authorization-code exchange,
// refresh and profile lookup.
package identity

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jrsteele09/go-photos-proxy/credentials"
	"github.com/jrsteele09/go-photos-proxy/internal/config"
	"github.com/jrsteele09/go-photos-proxy/internal/errors"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	ScopePhotosReadOnly = "https://www.googleapis.com/auth/photoslibrary.readonly"
	ScopeProfile        = "profile"
	ScopeEmail          = "email"
	ScopeOpenID         = "openid"
)

// Grant is the outcome of a successful authorization-code exchange.
type Grant struct {
	Identity string
	Profile  credentials.Profile
	Tokens   credentials.TokenBundle
}

// ProfileFetcher looks up who owns a freshly issued token.
type ProfileFetcher interface {
	FetchProfile(ctx context.Context, ts oauth2.TokenSource) (identity string, profile credentials.Profile, err error)
}

// Provider never mutates its oauth2 template; every call works on a copy so concurrent
// exchanges and refreshes for different identities share no token state.
type Provider struct {
	template oauth2.Config
	states   *StateSigner
	profiles ProfileFetcher
}

func NewProvider(cfg config.OAuthConfig, states *StateSigner, profiles ProfileFetcher) *Provider {
	endpoint := google.Endpoint
	if cfg.GetAuthURL() != "" {
		endpoint.AuthURL = cfg.GetAuthURL()
	}
	if cfg.GetTokenURL() != "" {
		endpoint.TokenURL = cfg.GetTokenURL()
	}

	scopes := []string{ScopePhotosReadOnly, ScopeProfile, ScopeEmail}
	if cfg.GetProfileSource() == config.ProfileSourceOIDC {
		scopes = append([]string{ScopeOpenID}, scopes...)
	}

	return &Provider{
		template: oauth2.Config{
			ClientID:     cfg.GetGoogleClientID(),
			ClientSecret: cfg.GetGoogleClientSecret(),
			RedirectURL:  cfg.GetGoogleRedirectURI(),
			Endpoint:     endpoint,
			Scopes:       scopes,
		},
		states:   states,
		profiles: profiles,
	}
}

func (p *Provider) config() *oauth2.Config {
	c := p.template
	c.Scopes = append([]string(nil), p.template.Scopes...)
	return &c
}

// AuthURL returns the consent URL. Offline access with a forced consent prompt makes the
// provider issue a refresh token on every authorization.
func (p *Provider) AuthURL() (string, error) {
	state, err := p.states.Issue()
	if err != nil {
		return "", errors.Wrap(errors.KindInternal, err, "could not create authorization state")
	}
	return p.config().AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	), nil
}

func (p *Provider) Exchange(ctx context.Context, code, state string) (Grant, error) {
	if code == "" {
		return Grant{}, errors.New(errors.KindInvalidCode, "invalid authorization code")
	}
	if err := p.states.Verify(state); err != nil {
		return Grant{}, errors.Wrap(errors.KindInvalidCode, err, "invalid authorization state")
	}

	cfg := p.config()
	tok, err := cfg.Exchange(ctx, code)
	if err != nil {
		if rejectedByProvider(err) {
			return Grant{}, errors.Wrap(errors.KindInvalidCode, err, "invalid authorization code")
		}
		return Grant{}, errors.Wrap(errors.KindProviderError, err, "failed to authenticate with Google")
	}

	id, profile, err := p.profiles.FetchProfile(ctx, cfg.TokenSource(ctx, tok))
	if err != nil {
		return Grant{}, errors.Wrap(errors.KindProviderError, err, "failed to get user information from Google")
	}
	if id == "" || profile.Email == "" || profile.DisplayName == "" {
		zerolog.Ctx(ctx).Warn().Str("identity", id).Msg("identity provider returned an incomplete profile")
		return Grant{}, errors.New(errors.KindProviderError, "failed to get user information from Google")
	}

	return Grant{
		Identity: id,
		Profile:  profile,
		Tokens:   credentials.FromOAuth2(tok, ""),
	}, nil
}

// Refresh builds a one-off token source holding only refreshToken.
func (p *Provider) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	tok, err := p.config().TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		return nil, fmt.Errorf("[Provider Refresh] %w", err)
	}
	return tok, nil
}

func rejectedByProvider(err error) bool {
	var re *oauth2.RetrieveError
	if !errors.As(err, &re) {
		return false
	}
	if re.ErrorCode == "invalid_grant" || re.ErrorCode == "invalid_request" {
		return true
	}
	return re.Response != nil && re.Response.StatusCode >= http.StatusBadRequest && re.Response.StatusCode < http.StatusInternalServerError &&
		re.Response.StatusCode != http.StatusUnauthorized
}
