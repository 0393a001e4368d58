package identity

import (
	"context"
	"fmt"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/jrsteele09/go-photos-proxy/credentials"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"
	people "google.golang.org/api/people/v1"
)

const personFields = "names,emailAddresses,photos"

var (
	_ ProfileFetcher = (*PeopleProfiles)(nil)
	_ ProfileFetcher = (*OIDCProfiles)(nil)
)

// PeopleProfiles reads the profile from the People API "people/me" resource.
type PeopleProfiles struct {
	endpoint string
}

// NewPeopleProfiles uses the public People API unless endpoint is set.
func NewPeopleProfiles(endpoint string) *PeopleProfiles {
	return &PeopleProfiles{endpoint: endpoint}
}

func (p *PeopleProfiles) FetchProfile(ctx context.Context, ts oauth2.TokenSource) (string, credentials.Profile, error) {
	opts := []option.ClientOption{option.WithTokenSource(ts)}
	if p.endpoint != "" {
		opts = append(opts, option.WithEndpoint(p.endpoint))
	}
	svc, err := people.NewService(ctx, opts...)
	if err != nil {
		return "", credentials.Profile{}, fmt.Errorf("[PeopleProfiles FetchProfile] creating service: %w", err)
	}

	person, err := svc.People.Get("people/me").PersonFields(personFields).Context(ctx).Do()
	if err != nil {
		return "", credentials.Profile{}, fmt.Errorf("[PeopleProfiles FetchProfile] %w", err)
	}

	var profile credentials.Profile
	if len(person.Names) > 0 {
		profile.DisplayName = person.Names[0].DisplayName
	}
	if len(person.EmailAddresses) > 0 {
		profile.Email = person.EmailAddresses[0].Value
	}
	if len(person.Photos) > 0 {
		profile.AvatarURL = person.Photos[0].Url
	}
	return strings.TrimPrefix(person.ResourceName, "people/"), profile, nil
}

// OIDCProfiles reads the profile from the issuer's userinfo endpoint found by discovery.
type OIDCProfiles struct {
	provider *oidc.Provider
}

func NewOIDCProfiles(ctx context.Context, issuer string) (*OIDCProfiles, error) {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("[NewOIDCProfiles] discovery for %s: %w", issuer, err)
	}
	return &OIDCProfiles{provider: provider}, nil
}

func (o *OIDCProfiles) FetchProfile(ctx context.Context, ts oauth2.TokenSource) (string, credentials.Profile, error) {
	info, err := o.provider.UserInfo(ctx, ts)
	if err != nil {
		return "", credentials.Profile{}, fmt.Errorf("[OIDCProfiles FetchProfile] %w", err)
	}

	var claims struct {
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := info.Claims(&claims); err != nil {
		return "", credentials.Profile{}, fmt.Errorf("[OIDCProfiles FetchProfile] decoding claims: %w", err)
	}

	return info.Subject, credentials.Profile{
		DisplayName: claims.Name,
		Email:       info.Email,
		AvatarURL:   claims.Picture,
	}, nil
}
