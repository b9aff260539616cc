// Package config handles application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the application configuration.
type Config struct {
	WebhookURL     string
	WorkerInterval time.Duration
	MaxPayloadSize int
	StartTime      int64
	SubmitExRaids  bool
	ExcludedAreas  string
	QuestFlavor    string
	Timeout        time.Duration
	Concurrency    int
	AreasFile      string
	DatabasePath   string
	LogLevel       string
	MetricsAddr    string
	RarityRefresh  time.Duration
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	url := os.Getenv("WEBHOOK_URL")
	if url == "" {
		return nil, errors.New("WEBHOOK_URL is required")
	}

	interval, err := envInt("WEBHOOK_WORKER_INTERVAL", 10)
	if err != nil {
		return nil, err
	}
	if interval <= 0 {
		return nil, fmt.Errorf("WEBHOOK_WORKER_INTERVAL must be positive, got %d", interval)
	}

	maxPayload, err := envInt("WEBHOOK_MAX_PAYLOAD_SIZE", 0)
	if err != nil {
		return nil, err
	}
	if maxPayload < 0 {
		return nil, fmt.Errorf("WEBHOOK_MAX_PAYLOAD_SIZE must not be negative, got %d", maxPayload)
	}

	startTime, err := envInt("WEBHOOK_START_TIME", 0)
	if err != nil {
		return nil, err
	}

	submitExRaids := false
	if raw := os.Getenv("WEBHOOK_SUBMIT_EXRAIDS"); raw != "" {
		submitExRaids, err = strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid WEBHOOK_SUBMIT_EXRAIDS %q: %w", raw, err)
		}
	}

	timeout, err := envDuration("WEBHOOK_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}

	concurrency, err := envInt("WEBHOOK_CONCURRENCY", 4)
	if err != nil {
		return nil, err
	}
	if concurrency <= 0 {
		return nil, fmt.Errorf("WEBHOOK_CONCURRENCY must be positive, got %d", concurrency)
	}

	rarityRefresh, err := envDuration("RARITY_REFRESH_INTERVAL", time.Hour)
	if err != nil {
		return nil, err
	}

	return &Config{
		WebhookURL:     url,
		WorkerInterval: time.Duration(interval) * time.Second,
		MaxPayloadSize: maxPayload,
		StartTime:      int64(startTime),
		SubmitExRaids:  submitExRaids,
		ExcludedAreas:  os.Getenv("WEBHOOK_EXCLUDED_AREAS"),
		QuestFlavor:    envOrDefault("QUEST_WEBHOOK_FLAVOR", "default"),
		Timeout:        timeout,
		Concurrency:    concurrency,
		AreasFile:      os.Getenv("AREAS_FILE"),
		DatabasePath:   DatabasePath(),
		LogLevel:       envOrDefault("LOG_LEVEL", "info"),
		MetricsAddr:    os.Getenv("METRICS_ADDR"),
		RarityRefresh:  rarityRefresh,
	}, nil
}

// DefaultDatabasePath is used when DATABASE_PATH is unset.
const DefaultDatabasePath = "./data/mad.db"

// DatabasePath returns the store location shared by the worker and the
// migration tool.
func DatabasePath() string {
	return envOrDefault("DATABASE_PATH", DefaultDatabasePath)
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", key, d)
	}
	return d, nil
}
