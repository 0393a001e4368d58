package server_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jrsteele09/go-photos-proxy/credentials"
	credentialsrepofake "github.com/jrsteele09/go-photos-proxy/credentials/repofake"
	"github.com/jrsteele09/go-photos-proxy/gate"
	"github.com/jrsteele09/go-photos-proxy/identity"
	"github.com/jrsteele09/go-photos-proxy/internal/config"
	"github.com/jrsteele09/go-photos-proxy/media"
	"github.com/jrsteele09/go-photos-proxy/search"
	"github.com/jrsteele09/go-photos-proxy/server"
	"github.com/jrsteele09/go-photos-proxy/sessions"
	"github.com/jrsteele09/go-photos-proxy/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	clientURL  = "http://app.example.com"
	identityID = "113456"
)

// google fakes the token endpoint, the People API and the Photos Library API.
type google struct {
	srv           *httptest.Server
	refreshCalls  atomic.Int32
	mediaCalls    atomic.Int32
	emptyCategory atomic.Bool
}

func newGoogle(t *testing.T) *google {
	t.Helper()
	g := &google{}
	g.emptyCategory.Store(true)
	mux := http.NewServeMux()
	mux.HandleFunc("POST /token", g.token)
	mux.HandleFunc("GET /v1/people/me", g.me)
	mux.HandleFunc("GET /v1/mediaItems", g.list)
	mux.HandleFunc("POST /v1/mediaItems:search", g.search)
	mux.HandleFunc("GET /v1/mediaItems/{id}", g.item)
	g.srv = httptest.NewServer(mux)
	t.Cleanup(g.srv.Close)
	return g
}

func (g *google) token(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Form.Get("grant_type") == "authorization_code" && r.Form.Get("code") == "good-code":
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token":  "access-1",
			"refresh_token": "refresh-1",
			"token_type":    "Bearer",
			"expires_in":    3600,
		})
	case r.Form.Get("grant_type") == "refresh_token":
		g.refreshCalls.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "access-2",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	default:
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
	}
}

func (g *google) me(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"resourceName":   "people/" + identityID,
		"names":          []map[string]string{{"displayName": "Grace Hopper"}},
		"emailAddresses": []map[string]string{{"value": "grace@example.com"}},
		"photos":         []map[string]string{{"url": "https://example.com/grace.png"}},
	})
}

// authorized accepts the tokens the fake token endpoint issues.
func (g *google) authorized(w http.ResponseWriter, r *http.Request) bool {
	g.mediaCalls.Add(1)
	switch r.Header.Get("Authorization") {
	case "Bearer access-1", "Bearer access-2":
		w.Header().Set("Content-Type", "application/json")
		return true
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":{"code":401,"message":"invalid credentials","status":"UNAUTHENTICATED"}}`))
	return false
}

func (g *google) list(w http.ResponseWriter, r *http.Request) {
	if !g.authorized(w, r) {
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"mediaItems": []map[string]string{
			{"id": "1", "filename": "cat.jpg"},
			{"id": "2", "filename": "catalog.png"},
			{"id": "3", "filename": "dog.jpg"},
		},
		"nextPageToken": "listing-2",
	})
}

func (g *google) search(w http.ResponseWriter, r *http.Request) {
	if !g.authorized(w, r) {
		return
	}
	if g.emptyCategory.Load() {
		_, _ = w.Write([]byte(`{}`))
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"mediaItems": []map[string]string{{"id": "4", "filename": "alps.jpg"}},
	})
}

func (g *google) item(w http.ResponseWriter, r *http.Request) {
	if !g.authorized(w, r) {
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]string{"id": r.PathValue("id"), "filename": "cat.jpg"})
}

type fixture struct {
	google  *google
	store   *credentialsrepofake.FakeStore
	tokens  *token.Manager
	app     *httptest.Server
	browser *http.Client
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	g := newGoogle(t)

	t.Setenv("CONFIG_FILE", "")
	t.Setenv("ENV", "TEST")
	t.Setenv("SESSION_SECURE", "false")
	t.Setenv("CLIENT_URL", clientURL)
	t.Setenv("GOOGLE_CLIENT_ID", "client-id")
	t.Setenv("GOOGLE_CLIENT_SECRET", "client-secret")
	t.Setenv("GOOGLE_REDIRECT_URI", "http://localhost:8080/auth/google/callback")
	t.Setenv("OAUTH_TOKEN_URL", g.srv.URL+"/token")
	t.Setenv("SESSION_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("MEDIA_BASE_URL", g.srv.URL)
	t.Setenv("MEDIA_RATE_LIMIT", "0")

	cfg, err := config.Load("")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	stateKey, err := sessions.DeriveKey([]byte(cfg.GetSessionSecret()), "oauth-state", 32)
	require.NoError(t, err)
	provider := identity.NewProvider(cfg, identity.NewStateSigner(stateKey, time.Minute), identity.NewPeopleProfiles(g.srv.URL+"/"))

	cookies, err := sessions.NewCookieStore(cfg)
	require.NoError(t, err)

	store := credentialsrepofake.NewFakeStore()
	manager := token.NewManager(store, provider)
	t.Cleanup(manager.Close)

	library := media.NewClient(cfg)
	srv, err := server.New(cfg, server.Services{
		Identity:    provider,
		Sessions:    cookies,
		Credentials: store,
		Gate:        gate.New(manager),
		Media:       library,
		Searcher:    search.NewSearcher(library, search.WithConfig(cfg)),
	})
	require.NoError(t, err)

	app := httptest.NewServer(srv)
	t.Cleanup(app.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	browser := &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	return &fixture{google: g, store: store, tokens: manager, app: app, browser: browser}
}

func (f *fixture) do(t *testing.T, method, path string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, f.app.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := f.browser.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	decoded := map[string]interface{}{}
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	}
	return resp, decoded
}

// login runs the consent round trip: fetch the auth URL, then hit the callback with its state.
func (f *fixture) login(t *testing.T) {
	t.Helper()
	resp, body := f.do(t, http.MethodGet, server.RouteAuthGoogle, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	authURL, err := url.Parse(body["authUrl"].(string))
	require.NoError(t, err)
	state := authURL.Query().Get("state")
	require.NotEmpty(t, state)

	q := url.Values{"code": {"good-code"}, "state": {state}}
	resp, _ = f.do(t, http.MethodGet, server.RouteAuthCallback+"?"+q.Encode(), nil)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, clientURL+server.RouteAuthSuccess, resp.Header.Get("Location"))
}

func TestEphemeralSessionWhenStoreIsDown(t *testing.T) {
	f := newFixture(t)
	f.store.SetUnavailable(true)

	f.login(t)

	resp, body := f.do(t, http.MethodGet, server.RouteAuthStatus, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, true, body["isAuthenticated"])
	require.Equal(t, string(sessions.SourceEphemeral), body["source"])

	getsBefore := f.store.Gets()
	resp, body = f.do(t, http.MethodGet, server.RoutePhotos, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, body["mediaItems"], 3)
	require.Equal(t, "listing-2", body["nextPageToken"])

	require.Equal(t, int32(0), f.google.refreshCalls.Load(), "ephemeral sessions are never refreshed")
	require.Equal(t, getsBefore, f.store.Gets(), "ephemeral sessions do not consult the store")

	resp, body = f.do(t, http.MethodGet, server.RouteAuthUser, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, identityID, body["id"])
	require.Equal(t, "Grace Hopper", body["name"])
}

func TestDurableSession(t *testing.T) {
	f := newFixture(t)
	f.login(t)

	record := f.store.Record(identityID)
	require.NotNil(t, record)
	require.Equal(t, "refresh-1", record.Tokens.RefreshToken)
	require.Equal(t, "grace@example.com", record.Profile.Email)

	resp, body := f.do(t, http.MethodGet, server.RouteAuthStatus, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, true, body["isAuthenticated"])
	require.Equal(t, string(sessions.SourceDurable), body["source"])

	resp, body = f.do(t, http.MethodGet, server.RouteAuthUser, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, identityID, body["id"])
	assert.Equal(t, "Grace Hopper", body["name"])
	assert.Equal(t, "grace@example.com", body["email"])
	assert.Equal(t, "https://example.com/grace.png", body["profilePicture"])

	resp, body = f.do(t, http.MethodGet, "/photos/abc", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "abc", body["id"])
	require.Equal(t, int32(0), f.google.refreshCalls.Load())

	resp, body = f.do(t, http.MethodPost, server.RouteAuthLogout, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, true, body["success"])

	_, body = f.do(t, http.MethodGet, server.RouteAuthStatus, nil)
	require.Equal(t, false, body["isAuthenticated"])
	_, hasSource := body["source"]
	require.False(t, hasSource)
}

func TestDurableSession_RefreshesExpiredToken(t *testing.T) {
	f := newFixture(t)
	f.login(t)

	record := f.store.Record(identityID)
	record.Tokens.Expiry = time.Now().Add(-time.Minute)
	f.store.Seed(record)

	resp, _ := f.do(t, http.MethodGet, server.RoutePhotos, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, int32(1), f.google.refreshCalls.Load())

	updated := f.store.Record(identityID)
	require.Equal(t, "access-2", updated.Tokens.AccessToken)
	require.Equal(t, "refresh-1", updated.Tokens.RefreshToken)
	require.Equal(t, "Grace Hopper", updated.Profile.DisplayName)
}

func TestRelogin_KeepsRecordCreation(t *testing.T) {
	f := newFixture(t)
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	f.store.Seed(&credentials.Record{
		ID:        identityID,
		Tokens:    credentials.TokenBundle{AccessToken: "old", RefreshToken: "refresh-0"},
		CreatedAt: created,
	})

	f.login(t)

	record := f.store.Record(identityID)
	require.True(t, record.CreatedAt.Equal(created))
	require.Equal(t, "access-1", record.Tokens.AccessToken)
	require.Equal(t, "refresh-1", record.Tokens.RefreshToken)
}

func TestCurrentUser_StoreUnavailable(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	f.store.SetUnavailable(true)

	resp, body := f.do(t, http.MethodGet, server.RouteAuthUser, nil)
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	require.Equal(t, "store_unavailable", body["error"])

	f.store.SetUnavailable(false)
	resp, _ = f.do(t, http.MethodGet, server.RouteAuthUser, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, "the session survives a store outage")
}

func TestProtectedRoutes_RequireSession(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		method string
		path   string
		body   interface{}
	}{
		{http.MethodGet, server.RoutePhotos, nil},
		{http.MethodGet, server.RoutePhotosSearch + "?query=cat", nil},
		{http.MethodPost, server.RoutePhotosSearch, map[string]string{"query": "cat"}},
		{http.MethodGet, "/photos/abc", nil},
		{http.MethodGet, server.RouteAuthUser, nil},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			resp, body := f.do(t, tt.method, tt.path, tt.body)
			require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			require.Equal(t, "unauthenticated", body["error"])
			require.NotEmpty(t, body["message"])
		})
	}
	require.Equal(t, int32(0), f.google.mediaCalls.Load(), "rejected before any upstream call")
}

func TestSearch(t *testing.T) {
	f := newFixture(t)
	f.login(t)

	t.Run("category miss falls back to filename match", func(t *testing.T) {
		resp, body := f.do(t, http.MethodPost, server.RoutePhotosSearch, map[string]interface{}{"query": "cat", "pageSize": 10})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, string(search.StrategySubstring), body["strategy"])
		items := body["mediaItems"].([]interface{})
		require.Len(t, items, 2)
		require.Equal(t, "cat.jpg", items[0].(map[string]interface{})["filename"])
		require.Equal(t, "catalog.png", items[1].(map[string]interface{})["filename"])
		require.Equal(t, "listing-2", body["nextPageToken"])
	})

	t.Run("category hit", func(t *testing.T) {
		f.google.emptyCategory.Store(false)
		defer f.google.emptyCategory.Store(true)

		resp, body := f.do(t, http.MethodGet, server.RoutePhotosSearch+"?query=sunset+over+mountains", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, string(search.StrategyCategory), body["strategy"])
		require.Len(t, body["mediaItems"], 1)
	})

	t.Run("no match is an empty list", func(t *testing.T) {
		resp, body := f.do(t, http.MethodGet, server.RoutePhotosSearch+"?query=xyzzy", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, []interface{}{}, body["mediaItems"])
	})

	t.Run("invalid parameters", func(t *testing.T) {
		resp, body := f.do(t, http.MethodGet, server.RoutePhotosSearch+"?query=cat&pageSize=lots", nil)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		require.Equal(t, "invalid_request", body["error"])

		resp, body = f.do(t, http.MethodGet, server.RoutePhotosSearch+"?query=cat&strategy=random", nil)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		require.Equal(t, "invalid_request", body["error"])
	})
}

func TestCallback_Failures(t *testing.T) {
	f := newFixture(t)

	resp, body := f.do(t, http.MethodGet, server.RouteAuthCallback+"?code=good-code&state=forged", nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "invalid_code", body["error"])

	resp, body = f.do(t, http.MethodGet, server.RouteAuthCallback+"?error=access_denied", nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "invalid_code", body["error"])

	_, body = f.do(t, http.MethodGet, server.RouteAuthStatus, nil)
	require.Equal(t, false, body["isAuthenticated"])
}

func TestHealthAndCors(t *testing.T) {
	f := newFixture(t)

	resp, body := f.do(t, http.MethodGet, server.RouteHealth, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "ok", body["status"])
	require.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	req, err := http.NewRequest(http.MethodOptions, f.app.URL+server.RoutePhotos, nil)
	require.NoError(t, err)
	req.Header.Set("Origin", clientURL)
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	resp, err = f.browser.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	require.Equal(t, clientURL, resp.Header.Get("Access-Control-Allow-Origin"))
	require.Equal(t, "true", resp.Header.Get("Access-Control-Allow-Credentials"))

	req.Header.Set("Origin", "http://evil.example.com")
	resp, err = f.browser.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}
