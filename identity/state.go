package identity

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/go-photos-proxy/internal/errors"
)

const stateIssuer = "photos-proxy"

// StateSigner issues and verifies the OAuth state parameter as a short-lived HS256 JWT.
// Verification is stateless, so issuing a consent URL has no server-side effect.
type StateSigner struct {
	key     []byte
	ttl     time.Duration
	nowFunc func() time.Time
}

func NewStateSigner(key []byte, ttl time.Duration) *StateSigner {
	return &StateSigner{key: key, ttl: ttl, nowFunc: time.Now}
}

// WithNowFunc returns a copy of the signer using now as its clock.
func (s *StateSigner) WithNowFunc(now func() time.Time) *StateSigner {
	c := *s
	c.nowFunc = now
	return &c
}

func (s *StateSigner) Issue() (string, error) {
	now := s.nowFunc()
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Issuer:    stateIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("[StateSigner Issue] signing state: %w", err)
	}
	return signed, nil
}

func (s *StateSigner) Verify(state string) error {
	if state == "" {
		return errors.Wrapf(errors.ErrInvalidState, "[StateSigner Verify] missing state")
	}
	_, err := jwt.ParseWithClaims(state, &jwt.RegisteredClaims{}, func(*jwt.Token) (interface{}, error) {
		return s.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(stateIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.nowFunc),
	)
	if err != nil {
		return fmt.Errorf("[StateSigner Verify] %v: %w", err, errors.ErrInvalidState)
	}
	return nil
}
