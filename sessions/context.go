// Package sessions holds the per-browser session context and resolves it to a credential source.
package sessions

import (
	"github.com/jrsteele09/go-photos-proxy/credentials"
	"github.com/jrsteele09/go-photos-proxy/internal/errors"
)

// Context is what an authorized session carries. It is exactly one of Durable or Ephemeral;
// a nil Context means there is no authorized session.
type Context interface {
	sessionContext()
}

// Durable references a credential record held in the credential store.
type Durable struct {
	Identity string
}

// Ephemeral carries the grant itself, used when the credential store was unavailable at
// authorization time. It is never refreshed.
type Ephemeral struct {
	Identity string
	Profile  credentials.Profile
	Tokens   credentials.TokenBundle
}

func (Durable) sessionContext()   {}
func (Ephemeral) sessionContext() {}

type Source string

const (
	SourceDurable   Source = "durable"
	SourceEphemeral Source = "ephemeral"
)

// Binding names the identity a request acts as and where its credentials come from.
// Profile and Tokens are only populated for ephemeral bindings.
type Binding struct {
	Source   Source
	Identity string
	Profile  credentials.Profile
	Tokens   credentials.TokenBundle
}

func Resolve(c Context) (Binding, error) {
	switch sc := c.(type) {
	case Durable:
		if sc.Identity != "" {
			return Binding{Source: SourceDurable, Identity: sc.Identity}, nil
		}
	case *Durable:
		if sc != nil && sc.Identity != "" {
			return Binding{Source: SourceDurable, Identity: sc.Identity}, nil
		}
	case Ephemeral:
		return resolveEphemeral(sc)
	case *Ephemeral:
		if sc != nil {
			return resolveEphemeral(*sc)
		}
	}
	return Binding{}, errors.New(errors.KindUnauthenticated, "not authenticated")
}

func resolveEphemeral(e Ephemeral) (Binding, error) {
	if e.Tokens.AccessToken == "" {
		return Binding{}, errors.New(errors.KindUnauthenticated, "not authenticated")
	}
	return Binding{Source: SourceEphemeral, Identity: e.Identity, Profile: e.Profile, Tokens: e.Tokens}, nil
}
