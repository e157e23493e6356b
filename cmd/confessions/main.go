// Command confessions runs the admin API and the Telegram bot in one
// process. Both surfaces share a single in-memory store, which is the only
// writer of the state files.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/darktohka/confessions-bot/internal/app/apiapp"
	"github.com/darktohka/confessions-bot/internal/app/bootstrap"
	"github.com/darktohka/confessions-bot/internal/app/botapp"
	"github.com/darktohka/confessions-bot/internal/config"
	"github.com/darktohka/confessions-bot/internal/infra/logger"
	confsvc "github.com/darktohka/confessions-bot/internal/services/confession"
)

func main() {
	_ = godotenv.Load()

	cfgPath := os.Getenv("APP_CONFIG")
	if cfgPath == "" {
		cfgPath = "configs/config.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = log.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	comps, err := bootstrap.Build(cfg, log)
	if err != nil {
		log.Fatal("build shared components", zap.Error(err))
	}
	defer comps.Close()

	var (
		bot       *botapp.App
		deliverer confsvc.Deliverer
	)
	if cfg.Bot.Token != "" {
		bot, err = botapp.New(cfg, log, comps)
		if err != nil {
			log.Fatal("create bot app", zap.Error(err))
		}
		deliverer = bot.Deliverer()
	} else {
		log.Warn("no bot token configured, publishing is disabled")
	}

	api, err := apiapp.New(cfg, log, comps, deliverer)
	if err != nil {
		log.Fatal("create api app", zap.Error(err))
	}

	errCh := make(chan error, 2)
	go func() {
		errCh <- api.Run()
	}()
	if bot != nil {
		go func() {
			errCh <- bot.Run(ctx)
		}()
	}

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := api.Shutdown(shutdownCtx); err != nil {
			log.Error("shutdown api app", zap.Error(err))
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("serving failed", zap.Error(err))
		}
	}
}
