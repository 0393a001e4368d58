package config

import "time"

const (
	googleClientIDVar     = "GOOGLE_CLIENT_ID"
	googleClientSecretVar = "GOOGLE_CLIENT_SECRET"
	googleRedirectURIVar  = "GOOGLE_REDIRECT_URI"
	profileSourceVar      = "PROFILE_SOURCE"

	ProfileSourcePeople = "people"
	ProfileSourceOIDC   = "oidc"
)

type OAuthConfig interface {
	GetGoogleClientID() string
	GetGoogleClientSecret() string
	GetGoogleRedirectURI() string
	// GetAuthURL and GetTokenURL are empty unless the provider endpoints are overridden.
	GetAuthURL() string
	GetTokenURL() string
	GetProfileSource() string
	GetOIDCIssuer() string
	GetPeopleEndpoint() string
	GetStateTTL() time.Duration
	GetTokenCoalesceRefresh() bool
	GetTokenPersistTimeout() time.Duration
}

type OAuth struct {
	v values
}

var _ OAuthConfig = OAuth{}

func (o OAuth) GetGoogleClientID() string {
	return o.v.GoogleClientID
}

func (o OAuth) GetGoogleClientSecret() string {
	return o.v.GoogleClientSecret
}

func (o OAuth) GetGoogleRedirectURI() string {
	return o.v.GoogleRedirectURI
}

func (o OAuth) GetAuthURL() string {
	return o.v.OAuthAuthURL
}

func (o OAuth) GetTokenURL() string {
	return o.v.OAuthTokenURL
}

func (o OAuth) GetProfileSource() string {
	return o.v.ProfileSource
}

func (o OAuth) GetOIDCIssuer() string {
	return o.v.OIDCIssuer
}

func (o OAuth) GetPeopleEndpoint() string {
	return o.v.PeopleEndpoint
}

func (o OAuth) GetStateTTL() time.Duration {
	if o.v.StateTTL <= 0 {
		return 10 * time.Minute
	}
	return o.v.StateTTL
}

func (o OAuth) GetTokenCoalesceRefresh() bool {
	return o.v.TokenCoalesceRefresh
}

func (o OAuth) GetTokenPersistTimeout() time.Duration {
	if o.v.TokenPersistTimeout <= 0 {
		return 5 * time.Second
	}
	return o.v.TokenPersistTimeout
}
