package app

import (
	"context"
	"database/sql"
	"errors"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	libdb "evolve/backend/libs/db"
	libredis "evolve/backend/libs/redis"
	"evolve/backend/migrations"
	"evolve/backend/services/stations-service/internal/clients"
	"evolve/backend/services/stations-service/internal/config"
	"evolve/backend/services/stations-service/internal/geocoder"
	httpserver "evolve/backend/services/stations-service/internal/http"
	"evolve/backend/services/stations-service/internal/http/handlers"
	"evolve/backend/services/stations-service/internal/http/middleware"
	"evolve/backend/services/stations-service/internal/metrics"
	redisstore "evolve/backend/services/stations-service/internal/redis"
	"evolve/backend/services/stations-service/internal/repository"
	"evolve/backend/services/stations-service/internal/service"
	"evolve/backend/services/stations-service/internal/statusfeed"
)

// App wires stations-service dependencies.
type App struct {
	server      *httpserver.Server
	hub         *statusfeed.Hub
	db          *sql.DB
	redisClient *redis.Client
	logger      *zap.Logger
}

// New constructs the application graph.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	sqlDB, err := libdb.NewPostgresDB(ctx, cfg.Database.DSN, libdb.PoolOptions{MaxOpenConns: cfg.Database.MaxOpenConns})
	if err != nil {
		return nil, err
	}

	if cfg.Database.Migrate {
		if err := libdb.Migrate(ctx, sqlDB, migrations.FS, logger); err != nil {
			sqlDB.Close()
			return nil, err
		}
	}

	metrics.Init()

	// The search cache is optional: without redis every search goes upstream.
	var searchCache service.SearchCache
	redisClient, err := libredis.NewRedisClient(libredis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	switch {
	case errors.Is(err, libredis.ErrDisabled):
		logger.Info("search cache disabled")
	case err != nil:
		logger.Warn("redis unavailable, search cache disabled", zap.Error(err))
		redisClient = nil
	default:
		searchCache = redisstore.NewSearchCache(redisClient, cfg.Redis.TTL)
	}

	geo := geocoder.NewNominatim(
		cfg.Geocoder.BaseURL,
		cfg.Geocoder.UserAgent,
		clients.NewDefaultHTTPClient(cfg.Geocoder.Timeout),
		logger.Named("geocoder"),
	)
	nrel := clients.NewNRELClient(
		cfg.NREL.APIKey,
		cfg.NREL.BaseURL,
		clients.NewDefaultHTTPClient(cfg.NREL.Timeout),
		geo,
		logger.Named("nrel"),
	)
	if cfg.NREL.APIKey == "" {
		logger.Warn("NREL_API_KEY not set, station searches will report the service as unavailable")
	}

	statusRepo := repository.NewStationStatusRepository(sqlDB)
	vehicleRepo := repository.NewVehicleRepository(sqlDB)
	level2Repo := repository.NewLevel2Repository(sqlDB)

	hub := statusfeed.NewHub(logger.Named("statusfeed"))

	stationsService := service.NewStationsService(nrel, statusRepo, searchCache, hub, logger)
	calculatorService := service.NewCalculatorService(vehicleRepo, level2Repo, logger)

	router := httpserver.NewRouter(httpserver.RouterDeps{
		StationsHandlers:   handlers.NewStationsHandlers(stationsService, logger),
		CalculatorHandlers: handlers.NewCalculatorHandlers(calculatorService, logger),
		StatusFeed:         hub.ServeWS,
		Metrics:            promhttp.Handler(),
		HealthHandler:      handlers.NewHealthHandler(),
	}, middleware.Authenticate(cfg.JWT.Secret, logger))

	server := httpserver.NewServer(cfg.HTTPAddress(), router, logger,
		middleware.Recover(logger),
		middleware.Logging(logger),
	)

	return &App{
		server:      server,
		hub:         hub,
		db:          sqlDB,
		redisClient: redisClient,
		logger:      logger,
	}, nil
}

// Run starts the status feed and the HTTP server.
func (a *App) Run(ctx context.Context) error {
	go a.hub.Run(ctx)
	return a.server.Run(ctx)
}

// Close releases resources.
func (a *App) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("failed to close db", zap.Error(err))
		}
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warn("failed to close redis", zap.Error(err))
		}
	}
}
