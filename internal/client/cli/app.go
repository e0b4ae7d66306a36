// Package cli is the interactive terminal front end for the field client:
// a small REPL over the auth and inventory services, with a background
// connectivity watcher that triggers reconciliation when the server returns.
package cli

import (
	"bufio"
	"context"
	"log/slog"
	"os"

	"github.com/mzarins/invsync/internal/client/api"
	"github.com/mzarins/invsync/internal/client/config"
	"github.com/mzarins/invsync/internal/client/replica"
	"github.com/mzarins/invsync/internal/client/services"
	appsync "github.com/mzarins/invsync/internal/client/sync"
	"github.com/mzarins/invsync/internal/logging"
)

type App struct {
	config    *config.Config
	auth      *services.AuthService
	inventory *services.InventoryService
	monitor   *appsync.Monitor
	logger    logging.Logger
	reader    *bufio.Reader
}

func NewApp(cfg *config.Config) (*App, error) {
	ctx := context.Background()

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	db, err := replica.InitDatabase(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	repo := replica.NewSQLiteRepository(db)
	apiClient := api.NewHTTPClient(cfg.ServerEndpointAddr, cfg.RequestTimeout)
	keys := appsync.NewKeyedMutex()
	engine := appsync.NewEngine(apiClient, repo, keys, logger)

	app := &App{
		config: cfg,
		logger: logger,
		reader: bufio.NewReader(os.Stdin),
	}

	app.auth = services.NewAuthService(apiClient, repo, logger)

	// Regained connectivity triggers a reconciliation run; a run already in
	// flight absorbs the trigger.
	app.monitor = appsync.NewMonitor(apiClient, cfg.PingInterval, logger, func(ctx context.Context) {
		if app.auth.LoggedIn() {
			_, _, _ = engine.RunIfIdle(ctx)
		}
	})

	app.inventory = services.NewInventoryService(apiClient, repo, engine, keys, app.monitor.Online, logger)

	return app, nil
}

func (a *App) isLoggedIn() bool {
	return a.auth.LoggedIn()
}

func (a *App) status() string {
	mode := "offline"
	if a.monitor.Online() {
		mode = "online"
	}
	if user := a.auth.CurrentUser(); user != nil {
		return user.Username + " (" + mode + ")"
	}
	return "not logged in (" + mode + ")"
}

// Run restores a cached session if one exists, starts the connectivity
// watcher, and hands control to the REPL until the user exits or ctx ends.
func (a *App) Run(ctx context.Context) {
	if resumed, err := a.auth.Resume(ctx); err == nil && resumed {
		printlnFn("Resumed session for", a.auth.CurrentUser().Username)
	}

	go a.monitor.Run(ctx)

	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.status, scanner)
}
