package apiserver

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/konsumhq/konsum/pkg/logger"
	"github.com/konsumhq/konsum/pkg/store"
	"github.com/konsumhq/konsum/pkg/supervisor"
)

const shutdownTimeout = 30 * time.Second

// Lifecycle owns the listening server, the data store and the supervisor
// notifier. Stop is idempotent; a second invocation is a no-op.
type Lifecycle struct {
	server   *http.Server
	store    store.Store
	notifier supervisor.Notifier

	stopOnce sync.Once
	done     chan struct{}
}

func NewLifecycle(server *http.Server, st store.Store, notifier supervisor.Notifier) *Lifecycle {
	return &Lifecycle{
		server:   server,
		store:    st,
		notifier: notifier,
		done:     make(chan struct{}),
	}
}

// Stop notifies the supervisor, releases the listening socket after draining
// in-flight requests, and closes the store.
func (l *Lifecycle) Stop() {
	l.stopOnce.Do(func() {
		if err := l.notifier.Notify(supervisor.StateStopping); err != nil {
			logger.Error(errors.Wrap(err, "failed to notify supervisor"))
		}

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := l.server.Shutdown(ctx); err != nil {
			logger.Error(errors.Wrap(err, "failed to shut down server"))
		}

		if err := l.store.Close(); err != nil {
			logger.Error(errors.Wrap(err, "failed to close store"))
		}

		close(l.done)
	})
}

// Reload notifies the supervisor. Re-reading the configuration is not
// implemented yet.
func (l *Lifecycle) Reload() {
	if err := l.notifier.Notify(supervisor.StateReloading); err != nil {
		logger.Error(errors.Wrap(err, "failed to notify supervisor"))
	}
}

// Done is closed once Stop has completed.
func (l *Lifecycle) Done() <-chan struct{} {
	return l.done
}
