package config

import "time"

const (
	sessionSecretVar = "SESSION_SECRET"

	MinSessionSecretLength = 32
)

type SessionConfig interface {
	GetSessionSecret() string
	GetSessionTTL() time.Duration
	GetSessionCookieName() string
	GetSessionSecure() bool
}

type Session struct {
	v values
}

var _ SessionConfig = Session{}

func (s Session) GetSessionSecret() string {
	return s.v.SessionSecret
}

func (s Session) GetSessionTTL() time.Duration {
	if s.v.SessionTTL <= 0 {
		return 14 * 24 * time.Hour
	}
	return s.v.SessionTTL
}

func (s Session) GetSessionCookieName() string {
	return s.v.SessionCookie
}

// GetSessionSecure defaults to secure cookies everywhere except DEV.
func (s Session) GetSessionSecure() bool {
	if s.v.SessionSecure != nil {
		return *s.v.SessionSecure
	}
	return s.v.Env != "" && s.v.Env != "DEV"
}
