// Package webd serves a read-only view of a history store over HTTP,
// with movement events pushed over a websocket.
package webd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/event"
	"github.com/gorilla/mux"
	"github.com/jellydator/ttlcache/v3"
	"github.com/olahol/melody"
	"github.com/rotblauer/catwatch/catdb"
	"github.com/rotblauer/catwatch/events"
	"github.com/rotblauer/catwatch/history"
	"github.com/rotblauer/catwatch/params"
)

// StoreSource returns the store to serve.
type StoreSource func() (*history.Store, error)

type WebDaemon struct {
	Config *params.WebDaemonConfig

	source         StoreSource
	started        time.Time
	logger         *slog.Logger
	melodyInstance *melody.Melody
	movements      chan events.Movement
	movementsSub   event.Subscription
	responses      *ttlcache.Cache[string, []byte]
	closeOnce      sync.Once
}

// NewWebDaemon serves the store returned by source.
func NewWebDaemon(config *params.WebDaemonConfig, source StoreSource) *WebDaemon {
	if config == nil {
		config = params.DefaultWebDaemonConfig()
	}
	return &WebDaemon{
		Config:  config,
		source:  source,
		started: time.Now(),
		logger:  slog.With("d", "web"),
		responses: ttlcache.New[string, []byte](
			ttlcache.WithTTL[string, []byte](config.CacheTTL),
			ttlcache.WithDisableTouchOnHit[string, []byte]()),
	}
}

// NewLiveWebDaemon serves a store that is being written to.
func NewLiveWebDaemon(config *params.WebDaemonConfig, store *history.Store) *WebDaemon {
	return NewWebDaemon(config, func() (*history.Store, error) {
		return store, nil
	})
}

// NewFileWebDaemon serves the store persisted at config.StorePath,
// reloading it at most once per config.CacheTTL.
func NewFileWebDaemon(config *params.WebDaemonConfig) *WebDaemon {
	if config == nil {
		config = params.DefaultWebDaemonConfig()
	}
	loaded := ttlcache.New[string, *history.Store](
		ttlcache.WithTTL[string, *history.Store](config.CacheTTL),
		ttlcache.WithDisableTouchOnHit[string, *history.Store]())
	return NewWebDaemon(config, func() (*history.Store, error) {
		if item := loaded.Get(config.StorePath); item != nil {
			return item.Value(), nil
		}
		backend, err := catdb.Open(config.StorePath, nil, true)
		if err != nil {
			return nil, err
		}
		defer backend.Close()
		st, err := backend.Load()
		if err != nil {
			return nil, err
		}
		loaded.Set(config.StorePath, st, ttlcache.DefaultTTL)
		return st, nil
	})
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *WebDaemon) Run(ctx context.Context) error {
	listener, err := net.Listen(s.Config.Network, s.Config.Address)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	return s.Serve(ctx, listener)
}

func (s *WebDaemon) Serve(ctx context.Context, listener net.Listener) error {
	server := &http.Server{
		Handler:           s.NewRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	defer s.Close()

	errs := make(chan error, 1)
	go func() {
		s.logger.Info("Starting web daemon", "address", listener.Addr().String())
		errs <- server.Serve(listener)
	}()

	select {
	case err := <-errs:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	// Hijacked websocket connections aren't shut down by the server.
	s.Close()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info("Web daemon stopped")
	return nil
}

// Close stops the websocket hub and its event subscription.
// It is safe to call more than once; melody blocks on a second Close.
func (s *WebDaemon) Close() {
	s.closeOnce.Do(func() {
		if s.movementsSub != nil {
			s.movementsSub.Unsubscribe()
		}
		if s.melodyInstance != nil {
			_ = s.melodyInstance.Close()
		}
	})
}

func (s *WebDaemon) NewRouter() *mux.Router {
	s.initMelody()

	router := mux.NewRouter().StrictSlash(false)
	router.Use(s.loggingMiddleware)

	// Handle websocket. Browsers can't set headers on it, so the token
	// usually comes in the api_token query parameter.
	socketRoutes := router.NewRoute().Subrouter()
	socketRoutes.Use(s.tokenAuthenticationMiddleware)
	socketRoutes.Path("/socat").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = s.melodyInstance.HandleRequest(w, r)
	})

	apiRoutes := router.NewRoute().Subrouter()

	// All API routes use permissive CORS settings.
	apiRoutes.Use(permissiveCorsMiddleware)

	// /ping is a simple server healthcheck endpoint
	apiRoutes.Path("/ping").HandlerFunc(pingPong)

	apiJSONRoutes := apiRoutes.NewRoute().Subrouter()
	apiJSONRoutes.Use(contentTypeMiddlewareFunc("application/json"))
	apiJSONRoutes.Path("/status").HandlerFunc(s.statusReport).Methods(http.MethodGet)

	peopleRoutes := apiJSONRoutes.NewRoute().Subrouter()
	peopleRoutes.Use(s.tokenAuthenticationMiddleware)
	peopleRoutes.Path("/people").HandlerFunc(s.handlePeople).Methods(http.MethodGet)
	peopleRoutes.Path("/summary").HandlerFunc(s.handleSummary).Methods(http.MethodGet)
	peopleRoutes.Path("/people/{name}/last").HandlerFunc(s.handleLast).Methods(http.MethodGet)
	peopleRoutes.Path("/people/{name}/history").HandlerFunc(s.handleHistory).Methods(http.MethodGet)

	geoRoutes := apiRoutes.NewRoute().Subrouter()
	geoRoutes.Use(contentTypeMiddlewareFunc("application/geo+json"))
	geoRoutes.Use(s.tokenAuthenticationMiddleware)
	geoRoutes.Path("/people/{name}/geojson").HandlerFunc(s.handleGeoJSON).Methods(http.MethodGet)

	return router
}
