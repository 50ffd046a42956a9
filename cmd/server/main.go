package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/JonMunkholm/tableview/internal/config"
	"github.com/JonMunkholm/tableview/internal/logging"
	"github.com/JonMunkholm/tableview/internal/pgsource"
	"github.com/JonMunkholm/tableview/internal/service"
	"github.com/JonMunkholm/tableview/internal/store"
	"github.com/JonMunkholm/tableview/internal/web"
)

func main() {
	// Overload lets .env win over the inherited environment
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("configuration loaded", "config", cfg.String())

	st, err := store.Open(cfg.Store.Path, uint64(cfg.Store.CacheSize))
	if err != nil {
		return fmt.Errorf("open settings store: %w", err)
	}
	slog.Info("settings store opened", "path", st.BasePath())

	svc := service.New(service.NewRegistry(), st, service.Options{
		Layout:               cfg.View.Layout(),
		MaxViews:             cfg.View.MaxSessions,
		SessionTTL:           cfg.View.SessionTTL,
		MaxUploadSize:        cfg.View.MaxUploadSize,
		MaxConcurrentUploads: cfg.View.MaxConcurrentUploads,
		UploadWait:           cfg.View.UploadWait,
		AuditSize:            cfg.View.AuditSize,
	})

	if cfg.Database.Enabled() {
		pool, err := openDatabase(ctx, cfg.Database)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer pool.Close()

		if err := registerTables(svc, pool, cfg.Database.Tables); err != nil {
			return err
		}
	}
	slog.Info("sources registered", "count", svc.Registry().Len())

	server := web.NewServer(svc, cfg.Server)
	go svc.StartSyncScheduler(ctx, cfg.View.SyncInterval)

	errc := make(chan error, 1)
	go func() { errc <- server.Start() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	slog.Info("server stopped")
	return nil
}

// registerTables serves each DB_TABLES entry as a source.
func registerTables(svc *service.Service, pool *pgxpool.Pool, tables []string) error {
	specs, err := pgsource.ParseTableSpecs(tables)
	if err != nil {
		return fmt.Errorf("invalid DB_TABLES: %w", err)
	}
	if err := svc.RegisterTables(pool, specs); err != nil {
		return fmt.Errorf("register tables: %w", err)
	}
	for _, spec := range specs {
		slog.Debug("table registered", "source", spec.Source(), "key", spec.Key)
	}
	return nil
}

// openDatabase creates and pings a connection pool.
func openDatabase(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, err
	}
	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	if u, err := url.Parse(cfg.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	} else {
		slog.Info("connected to database")
	}
	return pool, nil
}
