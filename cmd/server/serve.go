package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-photos-proxy/credentials"
	"github.com/jrsteele09/go-photos-proxy/credentials/redisstore"
	"github.com/jrsteele09/go-photos-proxy/credentials/sqlitestore"
	"github.com/jrsteele09/go-photos-proxy/gate"
	"github.com/jrsteele09/go-photos-proxy/identity"
	"github.com/jrsteele09/go-photos-proxy/internal/config"
	"github.com/jrsteele09/go-photos-proxy/media"
	"github.com/jrsteele09/go-photos-proxy/search"
	"github.com/jrsteele09/go-photos-proxy/server"
	"github.com/jrsteele09/go-photos-proxy/sessions"
	"github.com/jrsteele09/go-photos-proxy/token"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(configPath)
		},
	}
}

func serve(path string) error {
	c, err := config.Load(path)
	if err != nil {
		return err
	}
	setupLogging(c)
	if err := c.Validate(); err != nil {
		return err
	}

	displayAppname(c.GetAppName())

	store, closeStore, err := newCredentialStore(c)
	if err != nil {
		return err
	}
	defer closeStore()

	provider, err := newIdentityProvider(c)
	if err != nil {
		return err
	}

	cookies, err := sessions.NewCookieStore(c)
	if err != nil {
		return err
	}

	tokens := token.NewManager(store, provider,
		token.WithCoalescing(c.GetTokenCoalesceRefresh()),
		token.WithPersistTimeout(c.GetTokenPersistTimeout()),
	)
	defer tokens.Close()

	library := media.NewClient(c)
	handler, err := server.New(c, server.Services{
		Identity:    provider,
		Sessions:    cookies,
		Credentials: store,
		Gate:        gate.New(tokens),
		Media:       library,
		Searcher:    search.NewSearcher(library, search.WithConfig(c)),
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              c.GetPort(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		errs <- listenAndServe(srv)
	}()

	select {
	case err := <-errs:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(srv)
}

func setupLogging(c config.Config) {
	level, err := zerolog.ParseLevel(c.GetLogLevel())
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if c.GetEnv() == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
	log.Logger = log.With().Str("app", c.GetAppName()).Logger()
	zerolog.DefaultContextLogger = &log.Logger
}

// newCredentialStore returns the configured backend and a function releasing it.
func newCredentialStore(c config.StoreConfig) (credentials.Store, func(), error) {
	switch c.GetStoreBackend() {
	case config.StoreBackendRedis:
		store := redisstore.New(redisstore.Options{
			Addr:     c.GetRedisAddr(),
			Password: c.GetRedisPassword(),
			DB:       c.GetRedisDB(),
			Prefix:   c.GetRedisPrefix(),
			Timeout:  c.GetStoreTimeout(),
		})
		ctx, cancel := context.WithTimeout(context.Background(), c.GetStoreTimeout())
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			// Sign-ins degrade to ephemeral sessions until Redis is reachable.
			log.Warn().Err(err).Str("addr", c.GetRedisAddr()).Msg("redis unreachable at startup")
		}
		log.Info().Str("backend", "redis").Str("addr", c.GetRedisAddr()).Msg("credential store ready")
		return store, closer("redis", store.Close), nil

	case config.StoreBackendSQLite:
		store, err := sqlitestore.New(c.GetSQLiteDir())
		if err != nil {
			return nil, nil, fmt.Errorf("[newCredentialStore] %w", err)
		}
		log.Info().Str("backend", "sqlite").Str("path", store.Path()).Msg("credential store ready")
		return store, closer("sqlite", store.Close), nil

	default:
		log.Info().Str("backend", "memory").Msg("credential store ready; records are lost on restart")
		return credentials.NewInMemoryStore(), func() {}, nil
	}
}

func closer(name string, closeFn func() error) func() {
	return func() {
		if err := closeFn(); err != nil {
			log.Err(err).Str("backend", name).Msg("closing credential store")
		}
	}
}

func newIdentityProvider(c config.Config) (*identity.Provider, error) {
	key, err := sessions.DeriveKey([]byte(c.GetSessionSecret()), "oauth-state", 32)
	if err != nil {
		return nil, err
	}
	states := identity.NewStateSigner(key, c.GetStateTTL())

	var profiles identity.ProfileFetcher
	switch c.GetProfileSource() {
	case config.ProfileSourceOIDC:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		profiles, err = identity.NewOIDCProfiles(ctx, c.GetOIDCIssuer())
		if err != nil {
			return nil, err
		}
	default:
		profiles = identity.NewPeopleProfiles(c.GetPeopleEndpoint())
	}
	return identity.NewProvider(c, states, profiles), nil
}

func listenAndServe(srv *http.Server) error {
	log.Info().Msgf("Server listening on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(srv *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	log.Info().Msg("Server stopped")
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
