package credentials_test

import (
	"context"
	"testing"
	"time"

	"github.com/jrsteele09/go-photos-proxy/credentials"
	"github.com/jrsteele09/go-photos-proxy/internal/errors"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestTokenBundle_Expired(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	require.False(t, credentials.TokenBundle{Expiry: now.Add(time.Second)}.Expired(now))
	require.True(t, credentials.TokenBundle{Expiry: now}.Expired(now), "expiry equal to now is expired")
	require.True(t, credentials.TokenBundle{Expiry: now.Add(-time.Second)}.Expired(now))
	require.True(t, credentials.TokenBundle{}.Expired(now), "zero expiry is expired")
}

func TestTokenBundle_StringRedacts(t *testing.T) {
	b := credentials.TokenBundle{AccessToken: "secret-access", RefreshToken: "secret-refresh"}
	require.NotContains(t, b.String(), "secret")
	require.Contains(t, b.String(), "[REDACTED]")
	require.Contains(t, credentials.TokenBundle{}.String(), "refresh:absent")
}

func TestFromOAuth2(t *testing.T) {
	expiry := time.Now().Add(time.Hour)
	tok := (&oauth2.Token{AccessToken: "new-access", TokenType: "Bearer", Expiry: expiry}).
		WithExtra(map[string]interface{}{"scope": "photos profile"})

	t.Run("carries previous refresh token", func(t *testing.T) {
		b := credentials.FromOAuth2(tok, "old-refresh")
		require.Equal(t, "new-access", b.AccessToken)
		require.Equal(t, "old-refresh", b.RefreshToken)
		require.Equal(t, "photos profile", b.Scope)
		require.Equal(t, "Bearer", b.TokenType)
		require.True(t, b.Expiry.Equal(expiry))
	})

	t.Run("prefers issued refresh token", func(t *testing.T) {
		issued := *tok
		issued.RefreshToken = "new-refresh"
		b := credentials.FromOAuth2(&issued, "old-refresh")
		require.Equal(t, "new-refresh", b.RefreshToken)
	})
}

func TestInMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := credentials.NewInMemoryStore()

	_, err := s.Get(ctx, "missing")
	require.True(t, errors.Is(err, credentials.ErrNotFound))

	created := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	rec := &credentials.Record{
		ID:        "user-1",
		Profile:   credentials.Profile{DisplayName: "Ada", Email: "ada@example.com"},
		Tokens:    credentials.TokenBundle{AccessToken: "a1", RefreshToken: "r1"},
		CreatedAt: created,
	}
	require.NoError(t, s.Upsert(ctx, rec))

	got, err := s.Get(ctx, "user-1")
	require.NoError(t, err)
	require.Equal(t, "a1", got.Tokens.AccessToken)
	require.True(t, got.CreatedAt.Equal(created))

	got.Tokens.AccessToken = "mutated"
	again, err := s.Get(ctx, "user-1")
	require.NoError(t, err)
	require.Equal(t, "a1", again.Tokens.AccessToken, "returned records are copies")

	update := rec.Clone()
	update.Tokens.AccessToken = "a2"
	update.CreatedAt = time.Time{}
	require.NoError(t, s.Upsert(ctx, update))

	again, err = s.Get(ctx, "user-1")
	require.NoError(t, err)
	require.Equal(t, "a2", again.Tokens.AccessToken)
	require.True(t, again.CreatedAt.Equal(created), "CreatedAt survives updates")
}
