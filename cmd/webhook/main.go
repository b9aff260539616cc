package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"webhook_feed/internal/config"
	"webhook_feed/internal/dispatcher"
	"webhook_feed/internal/geofence"
	"webhook_feed/internal/metrics"
	"webhook_feed/internal/poller"
	"webhook_feed/internal/rarity"
	"webhook_feed/internal/storage"
	"webhook_feed/internal/subscriber"
	"webhook_feed/internal/transform"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	log := newLogger(cfg.LogLevel)

	subs, err := subscriber.Parse(cfg.WebhookURL)
	if err != nil {
		log.Error("parse webhook receivers", "error", err)
		os.Exit(1)
	}

	areas, err := geofence.LoadFile(cfg.AreasFile)
	if err != nil {
		log.Error("load areas", "path", cfg.AreasFile, "error", err)
		os.Exit(1)
	}
	log.Debug("loaded areas", "names", areas.Names())
	excluded := areas.Resolve(cfg.ExcludedAreas)
	if len(excluded) > 0 {
		log.Info("excluding areas from webhooks", "count", len(excluded))
	}

	if dir := filepath.Dir(cfg.DatabasePath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			log.Error("create data directory", "path", dir, "error", err)
			os.Exit(1)
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, err := storage.NewSQLite(ctx, cfg.DatabasePath)
	if err != nil {
		log.Error("open database", "path", cfg.DatabasePath, "error", err)
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	collector := metrics.NewCollector()
	if cfg.MetricsAddr != "" {
		srv := newMetricsServer(cfg.MetricsAddr, collector)
		go func() {
			log.Info("serving metrics", "addr", cfg.MetricsAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics server", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
			defer done()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	rare := rarity.New(store, log.With("component", "rarity"))
	rare.SetRefreshInterval(cfg.RarityRefresh)
	go rare.Run(ctx)

	opts := transform.Options{
		Rarity:        rare,
		Flavor:        transform.ParseFlavor(cfg.QuestFlavor),
		SubmitExRaids: cfg.SubmitExRaids,
	}
	if len(excluded) > 0 {
		opts.Excluded = excluded
	}
	tr := transform.New(opts, log.With("component", "transform"))

	d := dispatcher.New(&http.Client{}, dispatcher.Options{
		ChunkSize:   cfg.MaxPayloadSize,
		Timeout:     cfg.Timeout,
		Concurrency: cfg.Concurrency,
	}, collector, log.With("component", "dispatcher"))

	p := poller.New(store, tr, d, subs, poller.Options{
		Interval:  cfg.WorkerInterval,
		StartTime: cfg.StartTime,
	}, collector, log.With("component", "poller"))

	log.Info("starting webhook engine",
		"subscribers", subs.Len(), "quest_flavor", opts.Flavor, "fetch", subs.FetchSet().Types)

	p.Run(ctx)

	log.Info("webhook engine stopped")
}

func newMetricsServer(addr string, collector *metrics.Collector) *http.Server {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collector, collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
