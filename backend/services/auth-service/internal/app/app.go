package app

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	libdb "evolve/backend/libs/db"
	"evolve/backend/migrations"
	appconfig "evolve/backend/services/auth-service/internal/config"
	httpserver "evolve/backend/services/auth-service/internal/http"
	"evolve/backend/services/auth-service/internal/http/handlers"
	"evolve/backend/services/auth-service/internal/password"
	"evolve/backend/services/auth-service/internal/repository"
	"evolve/backend/services/auth-service/internal/service"
)

// App wires dependencies for the auth service.
type App struct {
	server *httpserver.Server
	db     *sql.DB
	logger *zap.Logger
}

// New builds application graph.
func New(ctx context.Context, cfg *appconfig.Config, logger *zap.Logger) (*App, error) {
	sqlDB, err := libdb.NewPostgresDB(ctx, cfg.Database.DSN, libdb.PoolOptions{})
	if err != nil {
		return nil, err
	}

	if cfg.Database.Migrate {
		if err := libdb.Migrate(ctx, sqlDB, migrations.FS, logger); err != nil {
			sqlDB.Close()
			return nil, err
		}
	}

	userRepo := repository.NewUserRepository(sqlDB)
	hasher := password.NewBcryptHasher(cfg.BcryptCost)
	tokenSvc := service.NewTokenService(cfg.JWT.Secret, cfg.JWTExpiration())
	authSvc := service.NewAuthService(userRepo, hasher, tokenSvc, logger)

	routes := httpserver.Routes{
		Register: handlers.NewRegisterHandler(authSvc, logger),
		Login:    handlers.NewLoginHandler(authSvc, logger),
		Me:       handlers.NewMeHandler(tokenSvc, logger),
		Health:   handlers.NewHealthHandler(),
	}

	router := httpserver.NewRouter(routes)
	server := httpserver.NewServer(cfg.HTTPAddress(), router, logger)

	return &App{
		server: server,
		db:     sqlDB,
		logger: logger,
	}, nil
}

// Run starts serving HTTP traffic until context cancellation.
func (a *App) Run(ctx context.Context) error {
	return a.server.Run(ctx)
}

// Close releases acquired resources.
func (a *App) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("failed to close db", zap.Error(err))
		}
	}
}
