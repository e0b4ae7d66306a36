// Package server initializes and runs the inventory server: database setup,
// migrations, the bootstrap admin account, and the HTTP endpoint with
// graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"golang.org/x/sync/errgroup"

	"github.com/mzarins/invsync/internal/logging"
	"github.com/mzarins/invsync/internal/server/config"
	"github.com/mzarins/invsync/internal/server/httpapi"
	"github.com/mzarins/invsync/internal/server/inventory"
	"github.com/mzarins/invsync/internal/server/migrations"
	"github.com/mzarins/invsync/internal/server/users"
)

type App struct {
	config           *config.Config
	logger           logging.Logger
	db               *sql.DB
	userService      *users.Service
	inventoryService *inventory.Service
}

func runMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	if err := runMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("db migration error: %w", err)
	}

	userService := users.NewService(users.NewPostgresRepository(db), cfg)
	inventoryService := inventory.NewService(inventory.NewPostgresRepository(db))

	if err := userService.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		return nil, fmt.Errorf("admin bootstrap error: %w", err)
	}

	return &App{
		config:           cfg,
		logger:           logger,
		db:               db,
		userService:      userService,
		inventoryService: inventoryService,
	}, nil
}

func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	app.logger.Info(ctx, "starting app")

	srv := httpapi.NewServer(app.config.EndpointAddr, app.logger, app.userService, app.inventoryService)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(ctx)
	})

	err := g.Wait()
	if closeErr := app.db.Close(); closeErr != nil {
		app.logger.Error(ctx, "db close error", "error", closeErr)
	}
	return err
}
