package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/Flarenzy/node-inventory/internal/auth"
	appdb "github.com/Flarenzy/node-inventory/internal/db"
	"github.com/Flarenzy/node-inventory/internal/domain"
	apihttp "github.com/Flarenzy/node-inventory/internal/http"
	"github.com/Flarenzy/node-inventory/internal/inventory"
	"github.com/Flarenzy/node-inventory/internal/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func newAuthenticator(ctx context.Context, cfg Config) (auth.Authenticator, error) {
	if !cfg.AuthEnabled {
		return nil, nil
	}
	authenticator, err := auth.NewKeycloakAuthenticator(ctx, auth.Config{
		Enabled:  cfg.AuthEnabled,
		Issuer:   cfg.Issuer,
		Audience: cfg.Audience,
		JWKSURL:  cfg.JWKSURL,
	})
	if err != nil {
		return nil, err
	}
	return authenticator, nil
}

// Run listens on cfg.Port and serves until ctx is cancelled.
func Run(ctx context.Context, cfg Config) error {
	listener, err := net.Listen("tcp", fmt.Sprintf(":%s", cfg.Port))
	if err != nil {
		return fmt.Errorf("listen on port %s: %w", cfg.Port, err)
	}
	return Serve(ctx, cfg, listener)
}

// Serve wires the service onto listener. It owns the listener and returns
// once the server has shut down.
func Serve(ctx context.Context, cfg Config, listener net.Listener) error {
	logger := slog.Default()

	authenticator, err := newAuthenticator(ctx, cfg)
	if err != nil {
		return err
	}

	pool, err := appdb.NewPool(ctx, cfg.DSN)
	if err != nil {
		return err
	}
	defer pool.Close()

	if cfg.MigrateOnStart {
		if err := appdb.MigrateUp(pool); err != nil {
			return err
		}
		logger.InfoContext(ctx, "migrations applied")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	var service domain.NodeService = inventory.NewNodeService(appdb.NewNodeRepository(pool), cfg.searchConfig())
	service = domain.NewLoggingNodeService(logger, service)
	service = observability.NewMetricsNodeService(observability.NewMetrics(registry), service)

	opts := []apihttp.Option{
		apihttp.WithMetrics(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})),
	}
	if cfg.RequiredRole != "" {
		opts = append(opts, apihttp.WithRequiredRole(cfg.RequiredRole))
	}
	api := apihttp.NewAPI(logger, pool, service, authenticator, opts...)

	server := &http.Server{
		Handler:      api.Router(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.InfoContext(ctx, "serving", "addr", listener.Addr().String())
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}
