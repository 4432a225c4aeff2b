package config

import (
	"strings"
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name: "empty search url",
			mutate: func(cfg *Config) {
				cfg.SearchURL = ""
			},
			wantErr: "search URL",
		},
		{
			name: "search url without host",
			mutate: func(cfg *Config) {
				cfg.SearchURL = "http://"
			},
			wantErr: "search URL",
		},
		{
			name: "search url with query",
			mutate: func(cfg *Config) {
				cfg.SearchURL = "https://themesinfo.com/?s=1"
			},
			wantErr: "query string",
		},
		{
			name: "negative timeout",
			mutate: func(cfg *Config) {
				cfg.Timeout = -1 * time.Second
			},
			wantErr: "timeout",
		},
		{
			name: "negative page delay",
			mutate: func(cfg *Config) {
				cfg.PageDelay = -time.Millisecond
			},
			wantErr: "page delay",
		},
		{
			name: "zero chunk size",
			mutate: func(cfg *Config) {
				cfg.ChunkSize = 0
			},
			wantErr: "chunk size",
		},
		{
			name: "empty output dir",
			mutate: func(cfg *Config) {
				cfg.OutputDir = ""
			},
			wantErr: "output dir",
		},
		{
			name: "unknown report format",
			mutate: func(cfg *Config) {
				cfg.ReportFormat = "xml"
			},
			wantErr: "report format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate, got %v", err)
	}
	if cfg.ChunkSize != 8192 {
		t.Fatalf("chunk size = %d, want 8192", cfg.ChunkSize)
	}
	if cfg.PageDelay != time.Second {
		t.Fatalf("page delay = %v, want 1s", cfg.PageDelay)
	}
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("THEMEFINDER_TEST_STRING", "  ./downloads ")
	t.Setenv("THEMEFINDER_TEST_INT", "32")
	t.Setenv("THEMEFINDER_TEST_BAD_INT", "many")
	t.Setenv("THEMEFINDER_TEST_DURATION", "250ms")
	t.Setenv("THEMEFINDER_TEST_BLANK", "   ")

	if got, ok := EnvString("THEMEFINDER_TEST_STRING"); !ok || got != "./downloads" {
		t.Fatalf("EnvString = %q/%v, want ./downloads/true", got, ok)
	}
	if _, ok := EnvString("THEMEFINDER_TEST_BLANK"); ok {
		t.Fatalf("blank variable should be treated as unset")
	}
	if _, ok := EnvString("THEMEFINDER_TEST_MISSING"); ok {
		t.Fatalf("missing variable should be unset")
	}

	if got, ok, err := EnvInt("THEMEFINDER_TEST_INT"); err != nil || !ok || got != 32 {
		t.Fatalf("EnvInt = %d/%v/%v, want 32/true/nil", got, ok, err)
	}
	if _, _, err := EnvInt("THEMEFINDER_TEST_BAD_INT"); err == nil {
		t.Fatalf("expected parse error for non-numeric value")
	}
	if _, ok, err := EnvInt("THEMEFINDER_TEST_MISSING"); ok || err != nil {
		t.Fatalf("missing int should be unset without error, got %v/%v", ok, err)
	}

	if got, ok, err := EnvDuration("THEMEFINDER_TEST_DURATION"); err != nil || !ok || got != 250*time.Millisecond {
		t.Fatalf("EnvDuration = %v/%v/%v, want 250ms/true/nil", got, ok, err)
	}
	if _, _, err := EnvDuration("THEMEFINDER_TEST_INT"); err == nil {
		t.Fatalf("expected parse error for duration without unit")
	}
}
