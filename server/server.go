package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-photos-proxy/credentials"
	"github.com/jrsteele09/go-photos-proxy/gate"
	"github.com/jrsteele09/go-photos-proxy/identity"
	"github.com/jrsteele09/go-photos-proxy/internal/config"
	"github.com/jrsteele09/go-photos-proxy/media"
	"github.com/jrsteele09/go-photos-proxy/search"
	"github.com/jrsteele09/go-photos-proxy/sessions"
	"github.com/rs/zerolog/log"
)

// Authenticator runs the authorization-code flow against the identity provider.
type Authenticator interface {
	AuthURL() (string, error)
	Exchange(ctx context.Context, code, state string) (identity.Grant, error)
}

// SessionStore persists the session Context between requests.
type SessionStore interface {
	Load(r *http.Request) sessions.Context
	Save(w http.ResponseWriter, r *http.Request, c sessions.Context) error
	Destroy(w http.ResponseWriter, r *http.Request) error
}

// MediaLibrary is the upstream media API used by the listing and item routes.
type MediaLibrary interface {
	List(ctx context.Context, accessToken string, pageSize int, pageToken string) (media.Page, error)
	Get(ctx context.Context, accessToken, id string) (media.MediaItem, error)
}

var (
	_ Authenticator = (*identity.Provider)(nil)
	_ SessionStore  = (*sessions.CookieStore)(nil)
	_ MediaLibrary  = (*media.Client)(nil)
)

// Services are the components the HTTP layer delegates to.
type Services struct {
	Identity    Authenticator
	Sessions    SessionStore
	Credentials credentials.Store
	Gate        *gate.Gate
	Media       MediaLibrary
	Searcher    *search.Searcher
}

type Server struct {
	env    string // Environment (e.g., "DEV", "PROD")
	mux    *http.ServeMux
	routes []string
	config config.Config

	identity    Authenticator
	sessions    SessionStore
	credentials credentials.Store
	gate        *gate.Gate
	media       MediaLibrary
	searcher    *search.Searcher
}

func New(config config.Config, svc Services) (*Server, error) {
	if svc.Identity == nil || svc.Sessions == nil || svc.Credentials == nil ||
		svc.Gate == nil || svc.Media == nil || svc.Searcher == nil {
		return nil, fmt.Errorf("[Server New] all services are required")
	}

	s := &Server{
		env:         config.GetEnv(),
		mux:         http.NewServeMux(),
		config:      config,
		identity:    svc.Identity,
		sessions:    svc.Sessions,
		credentials: svc.Credentials,
		gate:        svc.Gate,
		media:       svc.Media,
		searcher:    svc.Searcher,
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	paddedMethod := fmt.Sprintf(" %-7s", method)
	color, ok := methodColors[method]
	if !ok {
		color = Gray
	}
	log.Info().Msgf("[%-19s] %s", color+paddedMethod+ResetColor, path)
}
