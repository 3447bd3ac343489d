// Package userservice initializes and runs the identity service: Postgres
// with embedded migrations, the authentication and user-management
// services, avatar storage, the HTTP endpoint, and the background
// expired-token cleanup.
package userservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/chatapp/internal/logging"
	"github.com/dmitrijs2005/chatapp/internal/userservice/config"
	"github.com/dmitrijs2005/chatapp/internal/userservice/handlers"
	"github.com/dmitrijs2005/chatapp/internal/userservice/repositories/repomanager"
	"github.com/dmitrijs2005/chatapp/internal/userservice/services"
	"github.com/dmitrijs2005/chatapp/internal/userservice/storage"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	cleanup *services.CleanupWorker
	server  *http.Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewJSONLogger()

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	repos := repomanager.NewPostgresRepositoryManager()
	if err := repos.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	avatars, err := storage.NewS3Storage(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("storage init error: %w", err)
	}
	if err := avatars.EnsureBucket(ctx); err != nil {
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	authService := services.NewAuthService(db, repos, cfg, logger)
	userService := services.NewUserService(db, repos, logger)
	cleanup := services.NewCleanupWorker(db, repos, cfg.CleanupInterval, logger)

	mux := http.NewServeMux()
	handlers.New(authService, userService, avatars, logger).Register(mux)

	return &App{
		config:  cfg,
		logger:  logger,
		db:      db,
		cleanup: cleanup,
		server:  &http.Server{Addr: cfg.EndpointAddr, Handler: mux},
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting user service", "addr", app.config.EndpointAddr)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.cleanup.Run(ctx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.logger.Error(ctx, "http server error", "error", err.Error())
			cancelFunc()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.server.Shutdown(shutdownCtx); err != nil {
		app.logger.Error(ctx, "shutdown error", "error", err.Error())
	}

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err.Error())
	}

	app.logger.Info(ctx, "user service stopped")
}
