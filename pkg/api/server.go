// Package api exposes the comparison engine over HTTP: one endpoint per
// CLI operation, plus health and metrics. It is a thin shell; all
// semantics live in the engine.
package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/protosign/pkg/engine"
	"github.com/platinummonkey/protosign/pkg/httputil"
	"github.com/platinummonkey/protosign/pkg/observability"
)

// Server hosts the HTTP facade.
type Server struct {
	engine   *engine.Engine
	log      logrus.FieldLogger
	registry *prometheus.Registry
	router   *mux.Router
	version  string
}

// NewServer wires the routes and middleware.
func NewServer(eng *engine.Engine, log logrus.FieldLogger, registry *prometheus.Registry, version string) *Server {
	s := &Server{
		engine:   eng,
		log:      log,
		registry: registry,
		router:   mux.NewRouter(),
		version:  version,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(httputil.RequestIDMiddleware)
	s.router.Use(httputil.LoggingMiddleware(s.log))
	s.router.Use(httputil.RecoveryMiddleware(s.log))

	v1 := s.router.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/breaking", s.handleBreaking).Methods("POST")
	v1.HandleFunc("/compare", s.handleCompare).Methods("POST")
	v1.HandleFunc("/fingerprint", s.handleFingerprint).Methods("POST")

	s.router.HandleFunc("/healthz", observability.HealthHandler(s.version)).Methods("GET")
	if s.registry != nil {
		s.router.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})).Methods("GET")
	}
}

// Handler returns the root handler for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe runs the server until shutdown.
func (s *Server) ListenAndServe(addr string) error {
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	shutdown := observability.NewShutdownManager(s.log, httpServer, 0)
	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	s.log.WithField("addr", addr).Info("listening")

	waitCh := make(chan error, 1)
	go func() { waitCh <- shutdown.Wait() }()
	select {
	case err := <-errCh:
		return err
	case err := <-waitCh:
		return err
	}
}
