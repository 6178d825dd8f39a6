package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/phrazzld/taskboard-api/internal/config"
	"github.com/phrazzld/taskboard-api/internal/platform/breaker"
	"github.com/phrazzld/taskboard-api/internal/platform/memory"
	"github.com/phrazzld/taskboard-api/internal/platform/mongo"
	"github.com/phrazzld/taskboard-api/internal/platform/postgres"
	"github.com/phrazzld/taskboard-api/internal/service"
	"github.com/phrazzld/taskboard-api/internal/service/auth"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// application holds the wired dependencies of the server.
type application struct {
	config *config.Config
	logger *slog.Logger

	tasks store.TaskStore
	users store.UserStore

	userService      service.UserService
	taskService      service.TaskService
	dashboardService service.DashboardService
	jwtService       auth.JWTService

	closeStores func(context.Context) error
}

// newApplication opens the configured store backend and builds the services.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	tasks, users, closeStores, err := openStores(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	app, err := buildApplication(cfg, logger, tasks, users)
	if err != nil {
		_ = closeStores(context.Background())
		return nil, err
	}
	app.closeStores = closeStores
	return app, nil
}

// buildApplication wraps the stores in circuit breakers and creates the services.
func buildApplication(cfg *config.Config, logger *slog.Logger, tasks store.TaskStore, users store.UserStore) (*application, error) {
	tasks = breaker.NewTaskStore(tasks, cfg.Breaker, logger)
	users = breaker.NewUserStore(users, cfg.Breaker, logger)

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT service: %w", err)
	}

	cost := cfg.Auth.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}

	userService, err := service.NewUserService(users, tasks, auth.NewBcryptHasher(cost), cfg.Auth.AdminJoinCode, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create user service: %w", err)
	}
	taskService, err := service.NewTaskService(tasks, users, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create task service: %w", err)
	}
	dashboardService, err := service.NewDashboardService(tasks, logger, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create dashboard service: %w", err)
	}

	return &application{
		config:           cfg,
		logger:           logger,
		tasks:            tasks,
		users:            users,
		userService:      userService,
		taskService:      taskService,
		dashboardService: dashboardService,
		jwtService:       jwtService,
		closeStores:      func(context.Context) error { return nil },
	}, nil
}

// openStores connects the backend selected by cfg.Database.Driver. The
// returned function releases its connections.
func openStores(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
) (store.TaskStore, store.UserStore, func(context.Context) error, error) {
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		db, err := postgres.Open(ctx, cfg.Database.URL, logger)
		if err != nil {
			return nil, nil, nil, err
		}
		closeDB := func(context.Context) error { return db.Close() }
		return postgres.NewPostgresTaskStore(db, logger), postgres.NewPostgresUserStore(db, logger), closeDB, nil

	case config.DriverMongo:
		db, disconnect, err := mongo.Connect(ctx, cfg.Database.URL, cfg.Database.MongoDatabase, logger)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := mongo.EnsureIndexes(ctx, db); err != nil {
			_ = disconnect(context.Background())
			return nil, nil, nil, fmt.Errorf("failed to create mongodb indexes: %w", err)
		}
		return mongo.NewTaskStore(db, logger), mongo.NewUserStore(db, logger), disconnect, nil

	case config.DriverMemory:
		logger.Warn("using in-memory stores; data is lost on restart")
		noop := func(context.Context) error { return nil }
		return memory.NewTaskStore(logger), memory.NewUserStore(logger), noop, nil

	default:
		return nil, nil, nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}

// runMigrations applies a goose command to the configured PostgreSQL database.
func runMigrations(ctx context.Context, cfg *config.Config, command string, logger *slog.Logger) error {
	if cfg.Database.Driver != config.DriverPostgres {
		return errors.New("migrations require the postgres database driver")
	}

	db, err := postgres.Open(ctx, cfg.Database.URL, logger)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	return postgres.Migrate(ctx, db, command, logger)
}

// cleanup releases the store connections.
func (app *application) cleanup(ctx context.Context) {
	if err := app.closeStores(ctx); err != nil {
		app.logger.Error("failed to close stores", slog.String("error", err.Error()))
	}
}
