package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eventconnect/server/internal/api"
	"github.com/eventconnect/server/internal/config"
	"github.com/eventconnect/server/internal/metrics"
	"github.com/eventconnect/server/internal/storage/postgres"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	// Server flags (override config/env)
	serverHost string
	serverPort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the EventConnect HTTP server",
	Long: `Start the EventConnect HTTP server and begin accepting API requests.

The server will:
- Load configuration from environment variables
- Connect to PostgreSQL and start serving the event API
- Handle graceful shutdown on SIGINT/SIGTERM

Examples:
  # Start with default configuration (from env vars)
  server serve

  # Start on a specific host and port
  server serve --host 127.0.0.1 --port 9090

  # Start with debug logging
  server serve --log-level debug`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serverHost, "host", "", "server host address (default: 0.0.0.0)")
	serveCmd.Flags().IntVar(&serverPort, "port", 0, "server port (default: 8080)")
}

func runServer() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	if serverHost != "" {
		cfg.Server.Host = serverHost
	}
	if serverPort != 0 {
		cfg.Server.Port = serverPort
	}

	logger := config.NewLogger(cfg.Logging)
	logger.Info().Msg("starting EventConnect server")

	metrics.Init(Version, GitCommit)

	pool, err := newPool(cfg, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	// Collect pool stats every 15 seconds.
	dbCollector := metrics.NewDBCollector(pool)
	collectorCtx, collectorCancel := context.WithCancel(context.Background())
	go dbCollector.Start(collectorCtx, 15*time.Second)
	defer collectorCancel()
	defer dbCollector.Stop()

	repo, err := postgres.NewRepository(pool)
	if err != nil {
		return fmt.Errorf("repository init failed: %w", err)
	}

	handler := api.NewRouter(cfg, logger, pool, api.Stores{
		Users:       repo.Users(),
		Events:      repo.Events(),
		Memberships: repo.Memberships(),
		UsersTx:     postgres.NewUsersTx(repo),
		EventsTx:    postgres.NewEventsTx(repo),
	})

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	return gracefulShutdown(server, logger)
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}

	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFormat != "" {
		cfg.Logging.Format = logFormat
	}

	return cfg, nil
}

func newPool(cfg config.Config, logger zerolog.Logger) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("database config invalid: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.Database.MaxConnections)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	logger.Info().Int("max_conns", cfg.Database.MaxConnections).Msg("database connected")
	return pool, nil
}

func gracefulShutdown(server *http.Server, logger zerolog.Logger) error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("shutdown error")
		return err
	}

	logger.Info().Msg("server stopped")
	return nil
}
