package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/Flarenzy/node-inventory/internal/auth"
	"github.com/Flarenzy/node-inventory/internal/domain"
	httpSwagger "github.com/swaggo/http-swagger"
)

type HealthChecker interface {
	Ping(ctx context.Context) error
}

type API struct {
	Logger        *slog.Logger
	health        HealthChecker
	service       domain.NodeService
	authenticator auth.Authenticator
	requiredRole  string
	metrics       http.Handler
}

type Option func(*API)

// WithRequiredRole rejects authenticated callers lacking the realm role.
func WithRequiredRole(role string) Option {
	return func(a *API) {
		a.requiredRole = role
	}
}

// WithMetrics exposes h on /metrics.
func WithMetrics(h http.Handler) Option {
	return func(a *API) {
		a.metrics = h
	}
}

func NewAPI(logger *slog.Logger, health HealthChecker, service domain.NodeService, authenticator auth.Authenticator, opts ...Option) *API {
	if logger == nil {
		logger = slog.Default()
	}
	a := &API{
		Logger:        logger,
		health:        health,
		service:       service,
		authenticator: authenticator,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *API) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", a.handleHealthz)
	mux.HandleFunc("/readyz", a.handleReadyz)
	mux.Handle("GET /swagger/", httpSwagger.WrapHandler)
	if a.metrics != nil {
		mux.Handle("GET /metrics", a.metrics)
	}

	mux.HandleFunc("GET /api/v1/nodes", a.handleSearchNodes)
	mux.HandleFunc("POST /api/v1/nodes", a.handleCreateNode)
	mux.HandleFunc("GET /api/v1/nodes/{vid}", a.handleGetNode)
	mux.HandleFunc("PATCH /api/v1/nodes/{vid}", a.handleUpdateNode)
	mux.HandleFunc("DELETE /api/v1/nodes/{vid}", a.handleDeleteNode)
	mux.HandleFunc("GET /api/v1/nodes/{vid}/history/{field}", a.handleNodeHistory)

	return a.requestIDMiddleware(a.authMiddleware(mux))
}
