package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/healthchain/portal/internal/config"
	"github.com/healthchain/portal/internal/platform/db"
	"github.com/healthchain/portal/internal/platform/kv"
	"github.com/healthchain/portal/internal/platform/metrics"
	"github.com/healthchain/portal/internal/server"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "healthchain-server",
		Short:        "HealthChain.AI claims portal API server",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(analyticsCmd())
	return rootCmd
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations for the postgres store",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			pool, err := openMigrationPool(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			count, err := db.NewMigrator(pool, db.Migrations()).Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migration(s) successfully.\n", count)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			pool, err := openMigrationPool(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			statuses, err := db.NewMigrator(pool, db.Migrations()).Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}
			printMigrationStatus(cmd, statuses)
			return nil
		},
	})

	return cmd
}

func printMigrationStatus(cmd *cobra.Command, statuses []db.MigrationStatus) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
	fmt.Fprintln(out, "---------- ---------------------------------------- ---------- --------------------")
	for _, s := range statuses {
		status := "pending"
		appliedAt := ""
		if s.Applied {
			status = "applied"
			if s.AppliedAt != nil {
				appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
			}
		}
		fmt.Fprintf(out, "%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
	}
}

func openMigrationPool(ctx context.Context) (*pgxpool.Pool, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required for migrations")
	}
	return db.NewPool(ctx, db.PoolConfig{
		URL:      cfg.DatabaseURL,
		MaxConns: cfg.DBMaxConns,
		MinConns: cfg.DBMinConns,
	})
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the demo accounts, claims and alerts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(func(ctx context.Context, svcs *server.Services) error {
				report, err := svcs.Seed(ctx)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Accounts created: %d (already present: %d)\n", report.Accounts, report.AccountsExisting)
				fmt.Fprintf(out, "Claims written:   %d\n", report.Claims)
				fmt.Fprintf(out, "Alerts created:   %d\n", report.Alerts)
				fmt.Fprintf(out, "Analytics rebuilt from %d claim(s). Demo password: %s\n", report.ClaimsCounted, server.DemoPassword)
				return nil
			})
		},
	}
}

func analyticsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Maintain dashboard counters",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "rebuild",
		Short: "Recompute dashboard counters from stored claims",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(func(ctx context.Context, svcs *server.Services) error {
				n, err := svcs.Analytics.Rebuild(ctx, svcs.Claims)
				if err != nil {
					return fmt.Errorf("rebuild failed: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Rebuilt analytics from %d claim(s).\n", n)
				return nil
			})
		},
	})
	return cmd
}

// withServices opens the configured store, builds the domain services and
// runs fn against them.
func withServices(fn func(ctx context.Context, svcs *server.Services) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger, closeLog := newLogger(cfg, os.Stderr)
	defer closeLog.Close()

	ctx := context.Background()
	store, pool, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore(logger, store, pool)

	svcs := server.NewServices(cfg, store, server.NewStrategy(cfg), nil, logger)
	return fn(ctx, svcs)
}

// openStore opens the KV backend named by KV_BACKEND. The pool is non-nil
// only for the postgres backend.
func openStore(ctx context.Context, cfg *config.Config) (kv.Store, *pgxpool.Pool, error) {
	var pool *pgxpool.Pool
	if cfg.KVBackend == kv.BackendPostgres {
		p, err := db.NewPool(ctx, db.PoolConfig{
			URL:      cfg.DatabaseURL,
			MaxConns: cfg.DBMaxConns,
			MinConns: cfg.DBMinConns,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("connect to database: %w", err)
		}
		pool = p
	}

	store, err := kv.New(ctx, kv.Config{
		Backend:  cfg.KVBackend,
		RedisURL: cfg.RedisURL,
		Pool:     pool,
	})
	if err != nil {
		if pool != nil {
			pool.Close()
		}
		return nil, nil, fmt.Errorf("open %s store: %w", cfg.KVBackend, err)
	}
	return store, pool, nil
}

func closeStore(logger zerolog.Logger, store kv.Store, pool *pgxpool.Pool) {
	if err := store.Close(); err != nil {
		logger.Warn().Err(err).Msg("failed to close store")
	}
	if pool != nil {
		pool.Close()
	}
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		bootLogger := bootstrapLogger()
		bootLogger.Fatal().Err(err).Msg("failed to load config")
	}
	logger, closeLog := newLogger(cfg, os.Stdout)
	defer closeLog.Close()

	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}
	if cfg.UsesDevSecret() {
		logger.Warn().Msg("JWT_SECRET is not set; signing tokens with the development secret")
	}

	ctx := context.Background()
	store, pool, err := openStore(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open store")
	}
	defer closeStore(logger, store, pool)
	logger.Info().Str("backend", cfg.KVBackend).Msg("store ready")

	m := metrics.New()
	svcs := server.NewServices(cfg, store, server.NewStrategy(cfg), m, logger)

	if cfg.AnalyticsRebuildOnStart {
		n, err := svcs.Analytics.Rebuild(ctx, svcs.Claims)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to rebuild analytics")
		}
		logger.Info().Int("claims", n).Msg("analytics rebuilt")
	}

	opts := server.Options{
		Config:   cfg,
		Services: svcs,
		Logger:   logger,
		Metrics:  m,
	}
	if pool != nil {
		opts.DB = pool
	}
	e := server.New(opts)

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().
			Str("addr", addr).
			Str("prefix", cfg.APIPrefix).
			Str("scoring", cfg.ScoringStrategy).
			Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}
