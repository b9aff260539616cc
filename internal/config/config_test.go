package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

var envKeys = []string{
	"WEBHOOK_URL", "WEBHOOK_WORKER_INTERVAL", "WEBHOOK_MAX_PAYLOAD_SIZE", "WEBHOOK_START_TIME",
	"WEBHOOK_SUBMIT_EXRAIDS", "WEBHOOK_EXCLUDED_AREAS", "QUEST_WEBHOOK_FLAVOR", "WEBHOOK_TIMEOUT",
	"WEBHOOK_CONCURRENCY", "AREAS_FILE", "DATABASE_PATH", "LOG_LEVEL", "METRICS_ADDR",
	"RARITY_REFRESH_INTERVAL",
}

func defaults(url string) *Config {
	return &Config{
		WebhookURL:     url,
		WorkerInterval: 10 * time.Second,
		QuestFlavor:    "default",
		Timeout:        5 * time.Second,
		Concurrency:    4,
		DatabasePath:   "./data/mad.db",
		LogLevel:       "info",
		RarityRefresh:  time.Hour,
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		want    *Config
		wantErr bool
	}{
		{
			name:    "missing webhook url",
			env:     map[string]string{},
			wantErr: true,
		},
		{
			name: "url only, defaults applied",
			env:  map[string]string{"WEBHOOK_URL": "http://a.example/hook"},
			want: defaults("http://a.example/hook"),
		},
		{
			name: "all values set",
			env: map[string]string{
				"WEBHOOK_URL":              "[raid]http://a, http://b",
				"WEBHOOK_WORKER_INTERVAL":  "30",
				"WEBHOOK_MAX_PAYLOAD_SIZE": "50",
				"WEBHOOK_START_TIME":       "1700000000",
				"WEBHOOK_SUBMIT_EXRAIDS":   "true",
				"WEBHOOK_EXCLUDED_AREAS":   "park*, downtown",
				"QUEST_WEBHOOK_FLAVOR":     "poracle",
				"WEBHOOK_TIMEOUT":          "2s",
				"WEBHOOK_CONCURRENCY":      "8",
				"AREAS_FILE":               "/etc/areas.yaml",
				"DATABASE_PATH":            "/tmp/mad.db",
				"LOG_LEVEL":                "debug",
				"METRICS_ADDR":             ":9090",
				"RARITY_REFRESH_INTERVAL":  "15m",
			},
			want: &Config{
				WebhookURL:     "[raid]http://a, http://b",
				WorkerInterval: 30 * time.Second,
				MaxPayloadSize: 50,
				StartTime:      1700000000,
				SubmitExRaids:  true,
				ExcludedAreas:  "park*, downtown",
				QuestFlavor:    "poracle",
				Timeout:        2 * time.Second,
				Concurrency:    8,
				AreasFile:      "/etc/areas.yaml",
				DatabasePath:   "/tmp/mad.db",
				LogLevel:       "debug",
				MetricsAddr:    ":9090",
				RarityRefresh:  15 * time.Minute,
			},
		},
		{
			name:    "zero interval",
			env:     map[string]string{"WEBHOOK_URL": "http://a", "WEBHOOK_WORKER_INTERVAL": "0"},
			wantErr: true,
		},
		{
			name:    "non-numeric interval",
			env:     map[string]string{"WEBHOOK_URL": "http://a", "WEBHOOK_WORKER_INTERVAL": "ten"},
			wantErr: true,
		},
		{
			name:    "negative payload size",
			env:     map[string]string{"WEBHOOK_URL": "http://a", "WEBHOOK_MAX_PAYLOAD_SIZE": "-1"},
			wantErr: true,
		},
		{
			name:    "invalid bool",
			env:     map[string]string{"WEBHOOK_URL": "http://a", "WEBHOOK_SUBMIT_EXRAIDS": "maybe"},
			wantErr: true,
		},
		{
			name:    "invalid timeout",
			env:     map[string]string{"WEBHOOK_URL": "http://a", "WEBHOOK_TIMEOUT": "5"},
			wantErr: true,
		},
		{
			name:    "zero concurrency",
			env:     map[string]string{"WEBHOOK_URL": "http://a", "WEBHOOK_CONCURRENCY": "0"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Clear relevant env vars
			for _, key := range envKeys {
				t.Setenv(key, "")
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			got, err := Load()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Load() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDatabasePath(t *testing.T) {
	t.Setenv("DATABASE_PATH", "")
	if diff := cmp.Diff(DefaultDatabasePath, DatabasePath()); diff != "" {
		t.Errorf("default path mismatch (-want +got):\n%s", diff)
	}

	t.Setenv("DATABASE_PATH", "/var/lib/webhook/mad.db")
	if diff := cmp.Diff("/var/lib/webhook/mad.db", DatabasePath()); diff != "" {
		t.Errorf("env path mismatch (-want +got):\n%s", diff)
	}
}
