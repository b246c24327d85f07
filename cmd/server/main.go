package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/leopold/internal/adminauth"
	"github.com/JonMunkholm/leopold/internal/assistant"
	"github.com/JonMunkholm/leopold/internal/config"
	"github.com/JonMunkholm/leopold/internal/core"
	"github.com/JonMunkholm/leopold/internal/csvimport"
	"github.com/JonMunkholm/leopold/internal/logging"
	"github.com/JonMunkholm/leopold/internal/sheets"
	"github.com/JonMunkholm/leopold/internal/shop"
	"github.com/JonMunkholm/leopold/internal/store"
	"github.com/JonMunkholm/leopold/internal/telegram"
	"github.com/JonMunkholm/leopold/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded", "config", cfg.String())
	for _, w := range cfg.Warnings() {
		slog.Warn("insecure configuration", "warning", w)
	}

	// Background jobs stop when jobCtx is cancelled
	jobCtx, cancelJobs := context.WithCancel(context.Background())
	defer cancelJobs()

	kv, closeKV, err := openKV(jobCtx, cfg)
	if err != nil {
		slog.Error("failed to open state store", "backend", cfg.Store.Backend, "error", err)
		os.Exit(1)
	}
	defer closeKV()

	shopState, err := store.Open(jobCtx, kv, shop.Settings{
		TelegramToken:  cfg.Telegram.Token,
		TelegramChatID: cfg.Telegram.ChatID,
	})
	if err != nil {
		slog.Error("failed to load shop state", "error", err)
		os.Exit(1)
	}

	service, err := newService(jobCtx, cfg, shopState)
	if err != nil {
		slog.Error("failed to create service", "error", err)
		os.Exit(1)
	}

	server := web.NewServer(service, web.Options{
		ReadTimeout:        cfg.Server.ReadTimeout,
		WriteTimeout:       cfg.Server.WriteTimeout,
		IdleTimeout:        cfg.Server.IdleTimeout,
		RequestTimeout:     cfg.Server.RequestTimeout,
		TrustedProxies:     cfg.Security.TrustedProxies,
		CORSAllowedOrigins: cfg.Security.CORSAllowedOrigins,
		RateLimitEnabled:   cfg.Rate.Enabled,
		RequestsPerMinute:  cfg.Rate.RequestsPerMinute,
		Burst:              cfg.Rate.Burst,
		AssistantPerMinute: cfg.Rate.AssistantPerMinute,
	})

	// Start sync scheduler with config values
	go service.StartScheduler(jobCtx, core.SchedulerConfig{
		CatalogOnStart:  cfg.Sheet.SyncOnStart,
		CatalogInterval: cfg.Sheet.SyncInterval,
		OrdersInterval:  cfg.Telegram.SyncInterval,
	})

	// Graceful shutdown
	done := make(chan struct{})
	go func() {
		defer close(done)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		// Stop background jobs
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}

		// Wait for a running sync and pending order notifications
		if status := service.SyncStatus(); status.Busy {
			slog.Info("waiting for sync to complete", "sync", status.Running)
		}
		if err := service.Shutdown(shutdownCtx); err != nil {
			slog.Warn("background work did not complete in time", "error", err)
		}
	}()

	if err := server.Start(jobCtx, cfg.Server.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	<-done
	slog.Info("server stopped")
}

// newService wires the upstream clients and the admin authenticator.
func newService(ctx context.Context, cfg *config.Config, shopState *store.Shop) (*core.Service, error) {
	keywords, err := csvimport.LoadKeywordTable(cfg.Sheet.KeywordsFile)
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Shop.Location()
	if err != nil {
		return nil, err
	}

	auth, err := adminauth.NewAuthenticator(cfg.Admin.Login, cfg.Admin.Password)
	if err != nil {
		return nil, err
	}
	sessions, err := adminauth.NewSessions(cfg.Admin.SessionSecret, cfg.Admin.SessionTTL)
	if err != nil {
		return nil, err
	}

	ai, err := assistant.NewClient(ctx, assistant.Config{
		BaseURL:   cfg.Assistant.APIURL,
		APIKey:    cfg.Assistant.APIKey,
		TextModel: cfg.Assistant.TextModel,
		TTSModel:  cfg.Assistant.TTSModel,
		Voice:     cfg.Assistant.Voice,
		Timeout:   cfg.Assistant.Timeout,
	})
	if err != nil {
		return nil, err
	}
	if !ai.Enabled() {
		slog.Warn("GEMINI_API_KEY is not set; assistant endpoints will fail")
	}

	return core.NewService(core.Deps{
		Shop:      shopState,
		Sheets:    sheets.NewSource(cfg.Sheet.URL, cfg.Sheet.MaxBytes, cfg.Sheet.Timeout),
		Bot:       telegram.NewClient(cfg.Telegram.APIURL, cfg.Telegram.Timeout),
		Assistant: ai,
		Auth:      auth,
		Sessions:  sessions,
	}, core.Options{
		Keywords:    keywords,
		Location:    loc,
		PageSize:    cfg.Shop.PageSize,
		SyncMaxWait: cfg.Shop.SyncMaxWait,
	})
}

// openKV connects the configured state backend. The returned func releases it.
func openKV(ctx context.Context, cfg *config.Config) (store.KV, func(), error) {
	switch strings.ToLower(cfg.Store.Backend) {
	case config.BackendPostgres:
		pool, err := store.OpenPool(ctx, cfg.Store.DatabaseURL, store.PoolOptions{
			MaxConns:        cfg.Store.MaxConns,
			MinConns:        cfg.Store.MinConns,
			MaxConnLifetime: cfg.Store.MaxConnLifetime,
			MaxConnIdleTime: cfg.Store.MaxConnIdleTime,
		})
		if err != nil {
			return nil, nil, err
		}

		// Log which database we connected to
		if u, err := url.Parse(cfg.Store.DatabaseURL); err == nil {
			slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
		}

		pg := store.NewPostgres(pool)
		if err := pg.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		go purgeExpired(ctx, pg, cfg.Store.PurgeInterval)
		return pg, pool.Close, nil

	case config.BackendRedis:
		rdb, err := store.OpenRedis(ctx, cfg.Store.RedisURL, cfg.Store.KeyPrefix)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("connected to redis", "prefix", cfg.Store.KeyPrefix)
		return rdb, func() { rdb.Close() }, nil

	default:
		slog.Info("using in-memory state")
		return store.NewMemory(), func() {}, nil
	}
}

// purgeExpired deletes expired session rows until ctx is cancelled.
func purgeExpired(ctx context.Context, pg *store.Postgres, every time.Duration) {
	if every <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := pg.PurgeExpired(ctx)
			if err != nil {
				slog.Warn("purge expired keys failed", "error", err)
				continue
			}
			if n > 0 {
				slog.Debug("purged expired keys", "count", n)
			}
		}
	}
}
