package sessions

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jrsteele09/go-photos-proxy/internal/config"
	"github.com/stretchr/testify/require"
)

func TestLoad_DurableTakesPrecedenceOverBundle(t *testing.T) {
	t.Setenv("SESSION_SECRET", "0123456789abcdef0123456789abcdef")
	cfg, err := config.Load("")
	require.NoError(t, err)
	s, err := NewCookieStore(cfg)
	require.NoError(t, err)

	// A payload holding both shapes at once, as a stale cookie might.
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	session, _ := s.store.Get(req, s.name)
	session.Values = map[interface{}]interface{}{
		keyCreatedAt:   time.Now().Unix(),
		keyDurableID:   "113456",
		keyEphemeralID: "999",
		keyAccessToken: "stale-access",
		keyExpiry:      time.Now().Add(time.Hour).UnixMilli(),
	}
	require.NoError(t, session.Save(req, w))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range w.Result().Cookies() {
		r.AddCookie(c)
	}

	got := s.Load(r)
	require.Equal(t, Durable{Identity: "113456"}, got)

	b, err := Resolve(got)
	require.NoError(t, err)
	require.Equal(t, SourceDurable, b.Source)
	require.Empty(t, b.Tokens.AccessToken)
}
