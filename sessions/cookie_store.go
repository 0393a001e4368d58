package sessions

import (
	"crypto/sha256"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
	"github.com/jrsteele09/go-photos-proxy/credentials"
	"github.com/jrsteele09/go-photos-proxy/internal/config"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/hkdf"
)

// Cookie value keys. Only primitive values are stored so no gob registration is needed.
const (
	keyDurableID    = "durable_id"
	keyEphemeralID  = "ephemeral_id"
	keyCreatedAt    = "created_at"
	keyAccessToken  = "access_token"
	keyRefreshToken = "refresh_token"
	keyScope        = "scope"
	keyTokenType    = "token_type"
	keyExpiry       = "expiry"
	keyName         = "name"
	keyEmail        = "email"
	keyAvatar       = "avatar"
)

// DeriveKey expands secret into a size byte key bound to purpose.
func DeriveKey(secret []byte, purpose string, size int) ([]byte, error) {
	key := make([]byte, size)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, []byte(purpose)), key); err != nil {
		return nil, fmt.Errorf("[DeriveKey] %s: %w", purpose, err)
	}
	return key, nil
}

// CookieStore keeps the session Context in an authenticated, encrypted cookie.
type CookieStore struct {
	store   *sessions.CookieStore
	name    string
	ttl     time.Duration
	secure  bool
	nowFunc func() time.Time
}

func NewCookieStore(cfg config.SessionConfig) (*CookieStore, error) {
	secret := []byte(cfg.GetSessionSecret())
	if len(secret) < config.MinSessionSecretLength {
		return nil, fmt.Errorf("[NewCookieStore] session secret must be at least %d bytes", config.MinSessionSecretLength)
	}
	hashKey, err := DeriveKey(secret, "session-cookie-hash", 64)
	if err != nil {
		return nil, err
	}
	blockKey, err := DeriveKey(secret, "session-cookie-block", 32)
	if err != nil {
		return nil, err
	}

	s := &CookieStore{
		store:   sessions.NewCookieStore(hashKey, blockKey),
		name:    cfg.GetSessionCookieName(),
		ttl:     cfg.GetSessionTTL(),
		secure:  cfg.GetSessionSecure(),
		nowFunc: time.Now,
	}
	s.store.MaxAge(int(s.ttl.Seconds()))
	s.store.Options = s.options(int(s.ttl.Seconds()))
	return s, nil
}

// WithNowFunc overrides the clock used for the absolute session lifetime.
func (s *CookieStore) WithNowFunc(now func() time.Time) *CookieStore {
	s.nowFunc = now
	return s
}

func (s *CookieStore) options(maxAge int) *sessions.Options {
	return &sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// Load returns the request's session Context, or nil when there is no valid session.
// Tampered, undecodable and expired cookies all read as no session.
func (s *CookieStore) Load(r *http.Request) Context {
	logger := zerolog.Ctx(r.Context())

	session, err := s.store.Get(r, s.name)
	if err != nil {
		logger.Debug().Err(err).Msg("discarding unreadable session cookie")
		return nil
	}
	if session.IsNew {
		return nil
	}

	created := time.Unix(int64Value(session.Values, keyCreatedAt), 0)
	if !s.nowFunc().Before(created.Add(s.ttl)) {
		logger.Debug().Time("created_at", created).Msg("session expired")
		return nil
	}
	return decode(session.Values)
}

// Save replaces whatever the session held with c.
func (s *CookieStore) Save(w http.ResponseWriter, r *http.Request, c Context) error {
	session, _ := s.store.Get(r, s.name)
	session.Values = encode(c, s.nowFunc())
	session.Options = s.options(int(s.ttl.Seconds()))
	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("[CookieStore Save] %w", err)
	}
	return nil
}

// Destroy expires the session cookie. Destroying an absent session is not an error.
func (s *CookieStore) Destroy(w http.ResponseWriter, r *http.Request) error {
	session, _ := s.store.Get(r, s.name)
	session.Values = map[interface{}]interface{}{}
	session.Options = s.options(-1)
	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("[CookieStore Destroy] %w", err)
	}
	return nil
}

func encode(c Context, now time.Time) map[interface{}]interface{} {
	values := map[interface{}]interface{}{keyCreatedAt: now.Unix()}

	switch sc := c.(type) {
	case Durable:
		values[keyDurableID] = sc.Identity
	case Ephemeral:
		values[keyEphemeralID] = sc.Identity
		values[keyAccessToken] = sc.Tokens.AccessToken
		values[keyRefreshToken] = sc.Tokens.RefreshToken
		values[keyScope] = sc.Tokens.Scope
		values[keyTokenType] = sc.Tokens.TokenType
		values[keyExpiry] = sc.Tokens.Expiry.UnixMilli()
		values[keyName] = sc.Profile.DisplayName
		values[keyEmail] = sc.Profile.Email
		values[keyAvatar] = sc.Profile.AvatarURL
	}
	return values
}

// decode prefers a durable reference; any bundle stored alongside one is ignored.
func decode(values map[interface{}]interface{}) Context {
	if id := stringValue(values, keyDurableID); id != "" {
		return Durable{Identity: id}
	}

	accessToken := stringValue(values, keyAccessToken)
	if accessToken == "" {
		return nil
	}
	return Ephemeral{
		Identity: stringValue(values, keyEphemeralID),
		Profile: credentials.Profile{
			DisplayName: stringValue(values, keyName),
			Email:       stringValue(values, keyEmail),
			AvatarURL:   stringValue(values, keyAvatar),
		},
		Tokens: credentials.TokenBundle{
			AccessToken:  accessToken,
			RefreshToken: stringValue(values, keyRefreshToken),
			Scope:        stringValue(values, keyScope),
			TokenType:    stringValue(values, keyTokenType),
			Expiry:       time.UnixMilli(int64Value(values, keyExpiry)),
		},
	}
}

func stringValue(values map[interface{}]interface{}, key string) string {
	s, _ := values[key].(string)
	return s
}

func int64Value(values map[interface{}]interface{}, key string) int64 {
	n, _ := values[key].(int64)
	return n
}
