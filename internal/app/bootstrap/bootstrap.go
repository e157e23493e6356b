// Package bootstrap builds the state and services shared by the serving
// surfaces. The store files have exactly one owning process; every surface
// in that process works through the same in-memory store, so a save from
// one can never clobber a write from another.
package bootstrap

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/darktohka/confessions-bot/internal/config"
	"github.com/darktohka/confessions-bot/internal/infra/logger"
	"github.com/darktohka/confessions-bot/internal/services/audit"
	confsvc "github.com/darktohka/confessions-bot/internal/services/confession"
	"github.com/darktohka/confessions-bot/internal/services/cooldown"
	"github.com/darktohka/confessions-bot/internal/services/review"
	"github.com/darktohka/confessions-bot/internal/services/stats"
	"github.com/darktohka/confessions-bot/internal/store"
)

type Components struct {
	Store        *store.Store
	StatsService *stats.Service
	Service      *confsvc.Service

	auditSink *zap.Logger
}

func Build(cfg config.Config, log *zap.Logger) (*Components, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	st, err := store.New(cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("open policy store: %w", err)
	}
	statsService, err := stats.NewService(cfg.Store.StatsPath)
	if err != nil {
		return nil, fmt.Errorf("open button stats: %w", err)
	}

	auditSink, err := logger.NewFileSink(cfg.Audit.Path)
	if err != nil {
		return nil, fmt.Errorf("open audit sink: %w", err)
	}
	auditLog, err := audit.NewLog(auditSink)
	if err != nil {
		return nil, err
	}

	gate, err := cooldown.NewGate(st)
	if err != nil {
		return nil, err
	}
	queue, err := review.NewQueue(st)
	if err != nil {
		return nil, err
	}
	service, err := confsvc.NewService(st, gate, queue, auditLog, log, func() int64 {
		return time.Now().Unix()
	})
	if err != nil {
		return nil, err
	}

	return &Components{
		Store:        st,
		StatsService: statsService,
		Service:      service,
		auditSink:    auditSink,
	}, nil
}

func (c *Components) Close() {
	if c.auditSink != nil {
		_ = c.auditSink.Sync()
	}
}
