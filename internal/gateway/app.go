// Package gateway initializes and runs the API gateway: CORS, the JWT
// authentication filter, and the reverse proxy to downstream services.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"

	"github.com/dmitrijs2005/chatapp/internal/gateway/config"
	"github.com/dmitrijs2005/chatapp/internal/gateway/filter"
	"github.com/dmitrijs2005/chatapp/internal/gateway/proxy"
	"github.com/dmitrijs2005/chatapp/internal/logging"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	config *config.Config
	logger logging.Logger
	server *http.Server
}

func NewApp(cfg *config.Config) (*App, error) {
	logger := logging.NewJSONLogger()

	p, err := proxy.New(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("proxy init error: %w", err)
	}

	f := filter.New(cfg.SecretKey, cfg.ExemptPathPrefixes, logger)

	// CORS sits outermost so preflights are answered before the
	// authentication check; the filter then guards everything the proxy
	// would forward.
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: false,
	})
	handler := c.Handler(f.Middleware(p))

	return &App{
		config: cfg,
		logger: logger,
		server: &http.Server{Addr: cfg.EndpointAddr, Handler: handler},
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

	app.logger.Info(ctx, "starting gateway", "addr", app.config.EndpointAddr)

	app.initSignalHandler(cancelFunc)

	go func() {
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

	app.logger.Info(ctx, "gateway stopped")
}
