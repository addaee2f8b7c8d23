package observability

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
)

// ShutdownManager drains an HTTP server on SIGINT/SIGTERM.
type ShutdownManager struct {
	log     logrus.FieldLogger
	server  *http.Server
	timeout time.Duration
}

// NewShutdownManager creates a shutdown manager for a server.
func NewShutdownManager(log logrus.FieldLogger, server *http.Server, timeout time.Duration) *ShutdownManager {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &ShutdownManager{log: log, server: server, timeout: timeout}
}

// Wait blocks until a termination signal arrives, then shuts the server
// down gracefully within the configured timeout.
func (sm *ShutdownManager) Wait() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop
	sm.log.WithField("signal", sig.String()).Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), sm.timeout)
	defer cancel()
	return sm.server.Shutdown(ctx)
}
