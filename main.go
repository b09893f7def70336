// Command jobly serves the Jobly job-board API.
//
// Start-up order:
//
//  1. Configuration (defaults, jobly.yaml, .env, environment, flags)
//  2. Structured logger
//  3. Optional migrations
//  4. Database pool with logging and metrics hooks, retried until reachable
//  5. Repositories, token issuer and router
//  6. HTTP server with graceful shutdown on SIGINT/SIGTERM
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	// Blank-import the drivers so they self-register with database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/Skryldev/jobly/api"
	"github.com/Skryldev/jobly/auth"
	"github.com/Skryldev/jobly/config"
	"github.com/Skryldev/jobly/db"
	"github.com/Skryldev/jobly/migrations"
	"github.com/Skryldev/jobly/repo"
)

func main() {
	// ── 1. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	// ── 2. Structured logger ──────────────────────────────────────────────
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	if cfg.SlogLevel() > slog.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		fatalf("jobly: %v", err)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	// ── 3. Migrations ─────────────────────────────────────────────────────
	if cfg.AutoMigrate {
		if err := migrations.Up(cfg.MigrationURL()); err != nil {
			return err
		}
		slog.Info("migrations applied")
	}

	// ── 4. Database ───────────────────────────────────────────────────────
	counters := &db.QueryCounters{}
	hooks := []db.Hook{
		db.NewLogHook(db.LogHookConfig{
			Logger:             logger,
			SlowQueryThreshold: cfg.SlowQueryThreshold,
			LogArgs:            cfg.LogQueryArgs,
		}),
		db.NewMetricsHook(counters),
	}

	var database *db.DB
	err := db.WithRetry(ctx, db.RetryConfig{MaxAttempts: 10, Delay: 2 * time.Second}, func() error {
		var err error
		database, err = cfg.OpenDB(hooks...)
		if err != nil {
			slog.Warn("database not reachable yet", "err", err)
		}
		return err
	})
	if err != nil {
		return err
	}
	defer database.Close()

	slog.Info("database connected", "driver", cfg.Driver, "dialect", database.Dialect().String())

	// ── 5. Repositories and router ────────────────────────────────────────
	router := api.NewRouter(api.Deps{
		Companies:   repo.NewCompanyRepo(database),
		Jobs:        repo.NewJobRepo(database),
		Users:       repo.NewUserRepo(database, auth.NewHasher(cfg.BcryptCost)),
		Tokens:      auth.NewTokens(cfg.SecretKey, cfg.TokenTTL),
		Store:       database,
		Counters:    counters,
		Logger:      logger,
		CORSOrigins: cfg.CORSOrigins,
	})

	// ── 6. HTTP server ────────────────────────────────────────────────────
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	stats := counters.Snapshot()
	slog.Info("stopped", "queries", stats.Total, "failed", stats.Failed, "avg", stats.AvgDuration)
	return nil
}

func fatalf(format string, args ...any) {
	slog.Error(fmt.Sprintf(format, args...))
	os.Exit(1)
}
