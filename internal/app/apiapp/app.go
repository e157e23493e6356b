package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/darktohka/confessions-bot/internal/app/bootstrap"
	"github.com/darktohka/confessions-bot/internal/config"
	confsvc "github.com/darktohka/confessions-bot/internal/services/confession"
	"github.com/darktohka/confessions-bot/internal/services/modauth"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	httpRouter http.Handler
}

// New wires the admin API over the process-wide components. It never opens
// the store files itself; the caller's bootstrap owns them.
func New(cfg config.Config, log *zap.Logger, comps *bootstrap.Components, deliverer confsvc.Deliverer) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}
	if comps == nil {
		return nil, fmt.Errorf("components are nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log)

	tokenManager := modauth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTAccessTTL)

	RegisterRoutes(r, Dependencies{
		ConfessionService: comps.Service,
		StatsService:      comps.StatsService,
		Deliverer:         deliverer,
		TokenManager:      tokenManager,
		Logger:            log,
	})

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		httpRouter: r,
	}, nil
}

func (a *App) Run() error {
	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	return a.server.Shutdown(ctx)
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}
