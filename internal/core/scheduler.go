package core

// scheduler.go runs the catalog and order syncs in the background.
//
// The scheduler is long-running and context-aware for graceful shutdown.
// It logs failures but never stops because of them; a failed sync leaves
// the previous state in place and the next tick tries again.

import (
	"context"
	"log/slog"
	"time"
)

// SchedulerConfig holds the background sync settings.
// A zero interval disables that sync.
type SchedulerConfig struct {
	CatalogOnStart  bool          // Run a catalog sync immediately
	CatalogInterval time.Duration // How often to sync the catalog
	OrdersInterval  time.Duration // How often to sync orders from the bot
}

// StartScheduler runs syncs until ctx is cancelled. It blocks; run it in
// its own goroutine.
func (s *Service) StartScheduler(ctx context.Context, cfg SchedulerConfig) {
	slog.Info("sync scheduler started",
		"catalog_on_start", cfg.CatalogOnStart,
		"catalog_interval", cfg.CatalogInterval.String(),
		"orders_interval", cfg.OrdersInterval.String(),
	)

	if cfg.CatalogOnStart {
		s.runCatalogJob(ctx)
	}

	catalogTick := tickerChan(cfg.CatalogInterval)
	ordersTick := tickerChan(cfg.OrdersInterval)
	defer catalogTick.stop()
	defer ordersTick.stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("sync scheduler stopped")
			return
		case <-catalogTick.c:
			s.runCatalogJob(ctx)
		case <-ordersTick.c:
			s.runOrdersJob(ctx)
		}
	}
}

type tick struct {
	c    <-chan time.Time
	stop func()
}

// tickerChan returns a ticker for d, or a channel that never fires when d
// is not positive.
func tickerChan(d time.Duration) tick {
	if d <= 0 {
		return tick{stop: func() {}}
	}
	t := time.NewTicker(d)
	return tick{c: t.C, stop: t.Stop}
}

// runCatalogJob syncs the catalog unless another sync holds the slot. A
// tick never waits for the slot; the next tick tries again.
func (s *Service) runCatalogJob(ctx context.Context) {
	if !s.limiter.TryAcquire("catalog") {
		slog.Debug("scheduled catalog sync skipped, another sync is running")
		return
	}
	defer s.limiter.Release()

	if _, err := s.syncCatalog(ctx, ""); err != nil {
		slog.Error("scheduled catalog sync failed", "error", err, "code", MapError(err).Code)
	}
}

func (s *Service) runOrdersJob(ctx context.Context) {
	token := s.shop.Settings().TelegramToken
	if token == "" {
		slog.Debug("scheduled order sync skipped, bot token not set")
		return
	}
	if !s.limiter.TryAcquire("orders") {
		slog.Debug("scheduled order sync skipped, another sync is running")
		return
	}
	defer s.limiter.Release()

	if _, err := s.syncOrders(ctx, token); err != nil {
		slog.Error("scheduled order sync failed", "error", err, "code", MapError(err).Code)
	}
}
