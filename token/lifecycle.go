package token

import (
	"context"
	"sync"
	"time"

	"github.com/jrsteele09/go-photos-proxy/credentials"
	"github.com/jrsteele09/go-photos-proxy/internal/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

const defaultPersistTimeout = 5 * time.Second

// Refresher exchanges a refresh token for a new access token at the identity provider.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error)
}

// Valid is a bearer token that was unexpired when EnsureValid returned it.
type Valid struct {
	AccessToken string
	Expiry      time.Time
}

// Manager hands out valid access tokens for durable identities, refreshing lazily on expiry.
type Manager struct {
	store          credentials.Store
	refresher      Refresher
	nowFunc        func() time.Time
	persistTimeout time.Duration
	coalesce       bool

	group   singleflight.Group
	pending sync.WaitGroup
}

type ManagerOption func(*Manager)

func WithNowFunc(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowFunc = now
	}
}

// WithCoalescing collapses concurrent refreshes of one identity into a single provider call.
// Without it concurrent callers may each refresh; the last persist wins.
func WithCoalescing(enabled bool) ManagerOption {
	return func(m *Manager) {
		m.coalesce = enabled
	}
}

// WithPersistTimeout bounds the detached retry of a failed persist.
func WithPersistTimeout(d time.Duration) ManagerOption {
	return func(m *Manager) {
		if d > 0 {
			m.persistTimeout = d
		}
	}
}

func NewManager(store credentials.Store, refresher Refresher, opts ...ManagerOption) *Manager {
	m := &Manager{
		store:          store,
		refresher:      refresher,
		nowFunc:        time.Now,
		persistTimeout: defaultPersistTimeout,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// EnsureValid returns a usable access token for identity. An unexpired token is returned as-is
// without contacting the provider.
func (m *Manager) EnsureValid(ctx context.Context, identity string) (Valid, error) {
	rec, err := m.store.Get(ctx, identity)
	switch {
	case errors.Is(err, credentials.ErrNotFound):
		return Valid{}, errors.Wrap(errors.KindUnauthenticated, err, "no credential record for identity")
	case err != nil:
		return Valid{}, errors.Wrap(errors.KindStoreUnavailable, err, "credential store unavailable")
	}

	if !rec.Tokens.Expired(m.nowFunc()) {
		return Valid{AccessToken: rec.Tokens.AccessToken, Expiry: rec.Tokens.Expiry}, nil
	}
	if !rec.Tokens.Refreshable() {
		return Valid{}, errors.New(errors.KindRefreshUnavailable, "access token expired and no refresh token is held")
	}

	if !m.coalesce {
		return m.refresh(ctx, rec)
	}

	// Shared callers must not be cancelled by whichever request started the refresh.
	shared := context.WithoutCancel(ctx)
	v, err, _ := m.group.Do(identity, func() (interface{}, error) {
		return m.refresh(shared, rec)
	})
	if err != nil {
		return Valid{}, err
	}
	return v.(Valid), nil
}

func (m *Manager) refresh(ctx context.Context, rec *credentials.Record) (Valid, error) {
	logger := zerolog.Ctx(ctx)

	tok, err := m.refresher.Refresh(ctx, rec.Tokens.RefreshToken)
	if err != nil {
		logger.Warn().Err(err).Str("identity", rec.ID).Msg("token refresh rejected by provider")
		return Valid{}, errors.Wrap(errors.KindUpstreamRefreshFailed, err, "identity provider rejected the refresh")
	}

	// A refresh replaces the bundle's token values only; the granted scope is the record's.
	fresh := credentials.FromOAuth2(tok, rec.Tokens.RefreshToken)
	fresh.Scope = rec.Tokens.Scope

	updated := rec.Clone()
	updated.Tokens = fresh
	if err := m.store.Upsert(ctx, updated); err != nil {
		logger.Warn().Err(err).Str("identity", rec.ID).Msg("persisting refreshed token failed, retrying in background")
		m.retryPersist(ctx, updated)
	}

	return Valid{AccessToken: fresh.AccessToken, Expiry: fresh.Expiry}, nil
}

// retryPersist makes one further attempt that outlives the request but not persistTimeout.
func (m *Manager) retryPersist(ctx context.Context, rec *credentials.Record) {
	logger := zerolog.Ctx(ctx).With().Str("identity", rec.ID).Logger()
	detached, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.persistTimeout)

	m.pending.Add(1)
	go func() {
		defer m.pending.Done()
		defer cancel()

		if err := m.store.Upsert(detached, rec); err != nil {
			logger.Error().Err(err).Msg("refreshed token not persisted; stored token is stale until next expiry")
			return
		}
		logger.Info().Msg("refreshed token persisted on retry")
	}()
}

// Close waits for outstanding persist retries.
func (m *Manager) Close() {
	m.pending.Wait()
	log.Debug().Msg("token manager closed")
}
