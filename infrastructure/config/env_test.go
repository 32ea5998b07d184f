package config

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	domainconfig "github.com/aiera-inc/aiera-mcp/domain/config"
)

func TestExpandEnv(t *testing.T) {
	t.Parallel()

	lookup := env(map[string]string{
		"HOST":  "redis.internal",
		"EMPTY": "",
	})

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "addr: ${HOST}:6379", "addr: redis.internal:6379"},
		{"default unused", "${HOST:-localhost}", "redis.internal"},
		{"default for unset", "${MISSING:-localhost}", "localhost"},
		{"default for empty", "${EMPTY:-localhost}", "localhost"},
		{"unset becomes empty", "key: ${MISSING}", "key: "},
		{"bare dollar kept", "price: $5", "price: $5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := ExpandEnv(tt.input, lookup); got != tt.want {
				t.Errorf("ExpandEnv(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestExpandEnvStrict(t *testing.T) {
	t.Parallel()

	lookup := env(map[string]string{"SET": "1"})

	if _, err := ExpandEnvStrict("${SET} ${UNSET}", lookup); !errors.Is(err, domainconfig.ErrMissingEnvVar) {
		t.Errorf("ExpandEnvStrict() error = %v, want ErrMissingEnvVar", err)
	}
	got, err := ExpandEnvStrict("${SET} ${UNSET:-x}", lookup)
	if err != nil {
		t.Fatalf("ExpandEnvStrict() error = %v", err)
	}
	if got != "1 x" {
		t.Errorf("ExpandEnvStrict() = %q, want %q", got, "1 x")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Parallel()

	cfg := domainconfig.Default()
	err := ApplyEnv(cfg, env(map[string]string{
		EnvBaseURL:                 "https://staging.aiera.com/api",
		EnvAPIKey:                  "k",
		EnvDefaultPageSize:         "20",
		EnvMaxPageSize:             "40",
		EnvHTTPTimeout:             "12.5",
		EnvMaxKeepaliveConnections: "4",
		EnvMaxConnections:          "8",
		EnvKeepaliveExpiry:         "1m",
		EnvLogLevel:                "WARN",
		EnvTransport:               "stdio",
		EnvToolsInclude:            "events, find_filings,,",
		EnvRedisAddr:               "localhost:6379",
		EnvToolsExclude:            "  ",
	}))
	if err != nil {
		t.Fatalf("ApplyEnv() error = %v", err)
	}

	if cfg.Aiera.BaseURL != "https://staging.aiera.com/api" || cfg.Aiera.APIKey != "k" {
		t.Errorf("Aiera = %+v", cfg.Aiera)
	}
	if cfg.Aiera.DefaultPageSize != 20 || cfg.Aiera.MaxPageSize != 40 {
		t.Errorf("page sizes = %d/%d", cfg.Aiera.DefaultPageSize, cfg.Aiera.MaxPageSize)
	}
	if cfg.HTTP.Timeout.Duration() != 12500*time.Millisecond {
		t.Errorf("HTTP.Timeout = %v", cfg.HTTP.Timeout.Duration())
	}
	if cfg.HTTP.MaxKeepaliveConnections != 4 || cfg.HTTP.MaxConnections != 8 {
		t.Errorf("pool = %d/%d", cfg.HTTP.MaxKeepaliveConnections, cfg.HTTP.MaxConnections)
	}
	if cfg.HTTP.KeepaliveExpiry.Duration() != time.Minute {
		t.Errorf("KeepaliveExpiry = %v", cfg.HTTP.KeepaliveExpiry.Duration())
	}
	if cfg.Logging.Level != "WARN" || cfg.Server.Transport != "stdio" {
		t.Errorf("level/transport = %q/%q", cfg.Logging.Level, cfg.Server.Transport)
	}
	if diff := cmp.Diff([]string{"events", "find_filings"}, cfg.Tools.Include); diff != "" {
		t.Errorf("Tools.Include mismatch (-want +got):\n%s", diff)
	}
	if cfg.Tools.Exclude != nil {
		t.Errorf("Tools.Exclude = %v, want blank override ignored", cfg.Tools.Exclude)
	}
	if cfg.Vocabulary.Redis.Addr != "localhost:6379" || cfg.Cache.Redis.Addr != "localhost:6379" {
		t.Errorf("redis addr not applied: %q %q", cfg.Vocabulary.Redis.Addr, cfg.Cache.Redis.Addr)
	}
}

func TestApplyEnv_InvalidDuration(t *testing.T) {
	t.Parallel()

	err := ApplyEnv(domainconfig.Default(), env(map[string]string{EnvHTTPTimeout: "forever"}))
	if !errors.Is(err, domainconfig.ErrInvalidEnv) {
		t.Errorf("ApplyEnv() error = %v, want ErrInvalidEnv", err)
	}
}
