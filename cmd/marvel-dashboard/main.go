package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/Sternrassler/marvel-extractor/internal/config"
	"github.com/Sternrassler/marvel-extractor/pkg/dashboard"
	"github.com/Sternrassler/marvel-extractor/pkg/events"
	"github.com/Sternrassler/marvel-extractor/pkg/logging"
	"github.com/Sternrassler/marvel-extractor/pkg/transform"
)

const shutdownTimeout = 5 * time.Second

func main() {
	var (
		configPath = flag.String("config", "", "YAML configuration file (empty: environment only)")
		csvPath    = flag.String("csv", "", "CSV file to serve (default: <output-dir>/characters.csv)")
	)
	flag.Parse()

	// .env is a development convenience; deployments set real variables.
	_ = godotenv.Load()

	cfg := config.MustLoad(*configPath)

	logging.Setup(logging.Config{
		Level:  logging.LogLevel(cfg.LogLevel),
		Pretty: cfg.LogPretty,
		Output: os.Stderr,
	})

	if err := run(context.Background(), cfg, *csvPath); err != nil {
		log.Error().Err(err).Msg("Dashboard failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, csvPath string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	source, cleanup, err := rowSource(cfg, csvPath)
	if err != nil {
		return err
	}
	defer cleanup()

	server, err := dashboard.NewServer(source, cfg.DashboardPort)
	if err != nil {
		return fmt.Errorf("create dashboard: %w", err)
	}

	// A missing CSV or empty table is fine on first start; the dashboard
	// serves its empty state until an extraction lands.
	if err := server.Reload(ctx); err != nil {
		log.Warn().Err(err).Msg("Initial load failed, waiting for data")
	}

	unwatch, err := watchExtractions(ctx, cfg, server)
	if err != nil {
		return err
	}
	defer unwatch()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down dashboard")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("dashboard server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return server.Stop(shutdownCtx)
}

// rowSource picks where the dashboard reads its rows from: Postgres when a
// DSN is configured, the extraction CSV otherwise.
func rowSource(cfg config.Config, csvPath string) (dashboard.Source, func(), error) {
	if cfg.PostgresDSN != "" {
		store, err := transform.Open(cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open store: %w", err)
		}

		log.Info().Msg("Serving rows from Postgres")
		return dashboard.StoreSource{Store: store}, func() { store.Close() }, nil
	}

	if csvPath == "" {
		csvPath = filepath.Join(cfg.OutputDir, "characters.csv")
	}

	log.Info().Str("path", csvPath).Msg("Serving rows from CSV")
	return dashboard.CSVSource{Path: csvPath}, func() {}, nil
}

// watchExtractions subscribes to extraction completion events and reloads
// the dashboard when they arrive. Without NATS the dashboard still serves,
// it just never refreshes on its own.
func watchExtractions(ctx context.Context, cfg config.Config, server *dashboard.Server) (func(), error) {
	noop := func() {}

	if cfg.NATSAddr == "" {
		return noop, nil
	}

	nc, err := nats.Connect(cfg.NATSAddr)
	if err != nil {
		log.Warn().Err(err).Str("addr", cfg.NATSAddr).Msg("NATS unavailable, live reload disabled")
		return noop, nil
	}

	listener, err := events.NewListener(nc, server.Reload, 0)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create listener: %w", err)
	}

	if err := listener.Start(ctx); err != nil {
		nc.Close()
		return nil, fmt.Errorf("start listener: %w", err)
	}

	log.Info().Str("addr", cfg.NATSAddr).Msg("Reloading on extraction events")

	return func() {
		listener.Stop()
		nc.Close()
	}, nil
}
