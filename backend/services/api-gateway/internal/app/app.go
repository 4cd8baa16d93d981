package app

import (
	"context"

	"go.uber.org/zap"

	"evolve/backend/services/api-gateway/internal/clients"
	"evolve/backend/services/api-gateway/internal/config"
	httpserver "evolve/backend/services/api-gateway/internal/http"
	"evolve/backend/services/api-gateway/internal/http/handlers"
	"evolve/backend/services/api-gateway/internal/http/middleware"
)

// App wires API gateway dependencies.
type App struct {
	server *httpserver.Server
	logger *zap.Logger
}

// New constructs application graph.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	httpClient := clients.NewDefaultHTTPClient(cfg.HTTPTimeout())

	authClient := clients.NewAuthClient(cfg.Services.AuthURL, httpClient)
	stationsClient := clients.NewStationsClient(cfg.Services.StationsURL, httpClient)

	stationsHandlers, err := handlers.NewStationsHandlers(stationsClient, cfg.Services.StationsURL, logger)
	if err != nil {
		return nil, err
	}

	router := httpserver.NewRouter(httpserver.RouterDeps{
		AuthHandlers:       handlers.NewAuthHandlers(authClient, logger),
		StationsHandlers:   stationsHandlers,
		CalculatorHandlers: handlers.NewCalculatorHandlers(stationsClient, logger),
		HealthHandler:      handlers.NewHealthHandler(),
	})

	server := httpserver.NewServer(
		cfg.HTTPAddress(),
		router,
		logger,
		middleware.RecoveryMiddleware(logger),
		middleware.LoggingMiddleware(logger),
	)

	return &App{
		server: server,
		logger: logger,
	}, nil
}

// Run starts serving HTTP traffic.
func (a *App) Run(ctx context.Context) error {
	return a.server.Run(ctx)
}

// Close releases resources (none yet).
func (a *App) Close() {}
