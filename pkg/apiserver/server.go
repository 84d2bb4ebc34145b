package apiserver

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/konsumhq/konsum/pkg/auth"
	"github.com/konsumhq/konsum/pkg/config"
	"github.com/konsumhq/konsum/pkg/handlers"
	"github.com/konsumhq/konsum/pkg/logger"
	"github.com/konsumhq/konsum/pkg/store/sqlitestore"
	"github.com/konsumhq/konsum/pkg/supervisor"
)

type APIServerParams struct {
	Version    string
	ConfigFile string
}

// Start brings up the gateway and blocks until it has been stopped, either
// by a signal or through the admin stop route.
func Start(params *APIServerParams) error {
	cfg, err := config.Load(params.ConfigFile)
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}
	cfg.Version = params.Version

	if cfg.PrivateKey() == nil {
		return errors.New("no private key configured, cannot issue tokens")
	}

	st, err := sqlitestore.Open(cfg.Database.Path)
	if err != nil {
		return errors.Wrapf(err, "failed to open store %s", cfg.Database.Path)
	}

	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.HTTP.Port))
	if err != nil {
		st.Close()
		return errors.Wrapf(err, "failed to listen on port %d", cfg.HTTP.Port)
	}

	r := mux.NewRouter()
	r.Use(handlers.LoggingMiddleware)

	srv := &http.Server{Handler: r}

	notifier := supervisor.New()
	lifecycle := NewLifecycle(srv, st, notifier)

	handler := handlers.NewHandler(cfg, st, auth.NewConfigAuthenticator(cfg), lifecycle)
	handlers.RegisterRoutes(r, cfg, handler)

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-signals
		logger.Infof("received %v, stopping", sig)
		lifecycle.Stop()
	}()

	if err := notifier.Notify(supervisor.StateReady); err != nil {
		logger.Error(errors.Wrap(err, "failed to notify supervisor"))
	}

	logger.Infof("listening on %s", listener.Addr())

	if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "failed to serve")
	}

	// Serve returns as soon as Shutdown is initiated; wait for the drain.
	<-lifecycle.Done()

	return nil
}
