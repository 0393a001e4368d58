package sqlitestore_test

import (
	"context"
	"testing"
	"time"

	"github.com/jrsteele09/go-photos-proxy/credentials"
	"github.com/jrsteele09/go-photos-proxy/credentials/sqlitestore"
	"github.com/jrsteele09/go-photos-proxy/internal/errors"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*sqlitestore.Store, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := sqlitestore.New(dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, dir
}

func testRecord() *credentials.Record {
	return &credentials.Record{
		ID:      "113456",
		Profile: credentials.Profile{DisplayName: "Grace", Email: "grace@example.com", AvatarURL: "https://example.com/a.png"},
		Tokens: credentials.TokenBundle{
			AccessToken:  "access-1",
			RefreshToken: "refresh-1",
			Scope:        "photoslibrary.readonly",
			TokenType:    "Bearer",
			Expiry:       time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		},
	}
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	require.NoError(t, s.Upsert(ctx, testRecord()))

	got, err := s.Get(ctx, "113456")
	require.NoError(t, err)
	require.Equal(t, testRecord().Profile, got.Profile)
	require.Equal(t, "access-1", got.Tokens.AccessToken)
	require.Equal(t, "refresh-1", got.Tokens.RefreshToken)
	require.True(t, got.Tokens.Expiry.Equal(testRecord().Tokens.Expiry))
	require.False(t, got.CreatedAt.IsZero())
}

func TestStore_UpsertReplacesTokensKeepsCreatedAt(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	require.NoError(t, s.Upsert(ctx, testRecord()))
	first, err := s.Get(ctx, "113456")
	require.NoError(t, err)

	update := testRecord()
	update.Tokens.AccessToken = "access-2"
	update.Tokens.Expiry = update.Tokens.Expiry.Add(time.Hour)
	require.NoError(t, s.Upsert(ctx, update))

	second, err := s.Get(ctx, "113456")
	require.NoError(t, err)
	require.Equal(t, "access-2", second.Tokens.AccessToken)
	require.True(t, second.Tokens.Expiry.Equal(update.Tokens.Expiry))
	require.True(t, first.CreatedAt.Equal(second.CreatedAt))
}

func TestStore_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := sqlitestore.New(dir)
	require.NoError(t, err)
	require.NoError(t, s.Upsert(ctx, testRecord()))
	require.NoError(t, s.Close())

	reopened, err := sqlitestore.New(dir)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(ctx, "113456")
	require.NoError(t, err)
	require.Equal(t, "refresh-1", got.Tokens.RefreshToken)
}

func TestStore_NotFound(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.Get(context.Background(), "nobody")
	require.True(t, errors.Is(err, credentials.ErrNotFound))
}

func TestStore_Unavailable(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	require.NoError(t, s.Close())

	_, err := s.Get(ctx, "113456")
	require.True(t, errors.Is(err, credentials.ErrStoreUnavailable))
	require.False(t, errors.Is(err, credentials.ErrNotFound))

	err = s.Upsert(ctx, testRecord())
	require.True(t, errors.Is(err, credentials.ErrStoreUnavailable))
}

func TestNew_RequiresDir(t *testing.T) {
	_, err := sqlitestore.New("")
	require.Error(t, err)
}
