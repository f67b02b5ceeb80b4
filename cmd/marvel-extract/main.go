package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/Sternrassler/marvel-extractor/internal/config"
	"github.com/Sternrassler/marvel-extractor/pkg/cache"
	"github.com/Sternrassler/marvel-extractor/pkg/client"
	"github.com/Sternrassler/marvel-extractor/pkg/events"
	"github.com/Sternrassler/marvel-extractor/pkg/extractor"
	"github.com/Sternrassler/marvel-extractor/pkg/logging"
	"github.com/Sternrassler/marvel-extractor/pkg/pagination"
	"github.com/Sternrassler/marvel-extractor/pkg/sink"
	"github.com/Sternrassler/marvel-extractor/pkg/transform"
)

type options struct {
	dataset     string
	characterID int
	limit       int
	output      string
}

func main() {
	var (
		configPath  = flag.String("config", "", "YAML configuration file (empty: environment only)")
		dataset     = flag.String("dataset", "characters", "dataset to extract: characters or comics")
		characterID = flag.Int("character-id", 0, "extract the comics of one character instead of a dataset")
		limit       = flag.Int("limit", 0, "records to extract (0: full collection)")
		output      = flag.String("output", "", "output file path (default: derived from dataset)")
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

	opts := options{
		dataset:     *dataset,
		characterID: *characterID,
		limit:       *limit,
		output:      *output,
	}

	if err := run(context.Background(), cfg, opts); err != nil {
		log.Error().Err(err).Msg("Extraction failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, opts options) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().
		Str("dataset", datasetName(opts)).
		Int("limit", opts.limit).
		Msg("Starting marvel-extract")

	if cfg.MetricsPort > 0 {
		metricsServer := startMetricsServer(cfg.MetricsPort)
		defer metricsServer.Close()
	}

	marvelClient, err := client.New(client.Config{
		BaseURL:   cfg.BaseURL,
		Timeout:   cfg.RequestTimeout,
		UserAgent: "marvel-extractor/1.0",
	})
	if err != nil {
		return fmt.Errorf("create gateway client: %w", err)
	}
	defer marvelClient.Close()

	fetchCfg := pagination.Config{
		Throttle: cfg.ThrottleDelay,
		Retry: pagination.RetryPolicy{
			Interval:    cfg.RetryInterval,
			MaxAttempts: cfg.RetryMaxAttempts,
		},
		Cache: pageCache(ctx, cfg),
	}

	fetcher, err := pagination.NewFetcher(marvelClient, fetchCfg)
	if err != nil {
		return fmt.Errorf("create fetcher: %w", err)
	}

	session, err := extractor.NewSession(cfg.PublicKey, cfg.PrivateKey, fetcher)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	records, err := extract(ctx, session, opts)
	if err != nil {
		return err
	}

	destination := outputPath(cfg.OutputDir, opts)
	if err := sink.NewFileSink().Persist(ctx, records, destination); err != nil {
		return fmt.Errorf("persist records: %w", err)
	}

	if opts.dataset == extractor.DatasetCharacters && opts.characterID == 0 {
		if err := tabulate(ctx, cfg, records); err != nil {
			return err
		}
	}

	announce(cfg, events.ExtractionCompleted{
		Dataset:    datasetName(opts),
		Records:    len(records),
		Path:       destination,
		FinishedAt: time.Now().UTC(),
	})

	log.Info().
		Str("dataset", datasetName(opts)).
		Int("records", len(records)).
		Str("path", destination).
		Msg("Extraction finished")

	return nil
}

// extract runs the requested retrieval against the gateway.
func extract(ctx context.Context, session *extractor.Session, opts options) ([]json.RawMessage, error) {
	if opts.characterID > 0 {
		return session.CharacterComics(ctx, opts.characterID, opts.limit)
	}
	return session.Collection(ctx, opts.dataset, opts.limit)
}

// tabulate projects character records onto rows, writes the CSV companion
// file and, when configured, stores the rows in Postgres.
func tabulate(ctx context.Context, cfg config.Config, records []json.RawMessage) error {
	rows, err := transform.Rows(records)
	if err != nil {
		return fmt.Errorf("tabulate characters: %w", err)
	}

	csvPath := filepath.Join(cfg.OutputDir, "characters.csv")
	if err := transform.WriteCSVFile(csvPath, rows); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	log.Info().Str("path", csvPath).Int("rows", len(rows)).Msg("CSV written")

	if cfg.PostgresDSN == "" {
		return nil
	}

	store, err := transform.Open(cfg.PostgresDSN)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	if err := store.Migrate(ctx); err != nil {
		return err
	}
	if err := store.Save(ctx, rows); err != nil {
		return err
	}

	return nil
}

// pageCache builds the optional Redis-backed page cache. A missing or
// unreachable Redis disables caching instead of failing the run.
func pageCache(ctx context.Context, cfg config.Config) pagination.PageCache {
	if cfg.RedisAddr == "" {
		return nil
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("Redis unavailable, page cache disabled")
		redisClient.Close()
		return nil
	}

	log.Info().Str("addr", cfg.RedisAddr).Msg("Page cache enabled")
	return cache.NewPageStore(cache.NewManager(redisClient), cfg.CacheTTL)
}

// announce publishes the completion event when NATS is configured. Event
// delivery is best effort; the extracted data is already on disk.
func announce(cfg config.Config, event events.ExtractionCompleted) {
	if cfg.NATSAddr == "" {
		return
	}

	publisher, err := events.NewPublisher(cfg.NATSAddr)
	if err != nil {
		log.Warn().Err(err).Str("addr", cfg.NATSAddr).Msg("NATS unavailable, completion event dropped")
		return
	}
	defer publisher.Close()

	if err := publisher.PublishExtractionCompleted(event); err != nil {
		log.Warn().Err(err).Msg("Completion event dropped")
	}
}

func startMetricsServer(port int) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("Metrics listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn().Err(err).Msg("Metrics server stopped")
		}
	}()

	return server
}

// datasetName labels the extraction for logs and events.
func datasetName(opts options) string {
	if opts.characterID > 0 {
		return fmt.Sprintf("character-%d-comics", opts.characterID)
	}
	return opts.dataset
}

// outputPath derives the destination file unless one was given.
func outputPath(outputDir string, opts options) string {
	if opts.output != "" {
		return opts.output
	}
	return filepath.Join(outputDir, datasetName(opts)+".json")
}
