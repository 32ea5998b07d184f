package config

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"
)

func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := Default()
	if cfg.Aiera.BaseURL != "https://premium.aiera.com/api" {
		t.Errorf("BaseURL = %q", cfg.Aiera.BaseURL)
	}
	if cfg.Aiera.DefaultPageSize != 50 || cfg.Aiera.MaxPageSize != 100 {
		t.Errorf("page sizes = %d/%d, want 50/100", cfg.Aiera.DefaultPageSize, cfg.Aiera.MaxPageSize)
	}
	if cfg.HTTP.Timeout.Duration() != 30*time.Second {
		t.Errorf("HTTP.Timeout = %v, want 30s", cfg.HTTP.Timeout.Duration())
	}
	if cfg.HTTP.MaxKeepaliveConnections != 10 || cfg.HTTP.MaxConnections != 20 {
		t.Errorf("pool = %d/%d, want 10/20", cfg.HTTP.MaxKeepaliveConnections, cfg.HTTP.MaxConnections)
	}
	if cfg.Server.Transport != TransportStreamableHTTP {
		t.Errorf("Transport = %q, want %q", cfg.Server.Transport, TransportStreamableHTTP)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want info", cfg.Logging.Level)
	}
	if errs := NewValidator().Validate(cfg); errs.HasErrors() {
		t.Errorf("Default() invalid: %v", errs)
	}
}

func TestNormalizeTransport(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"stdio", TransportStdio, true},
		{" SSE ", TransportSSE, true},
		{"streamable-http", TransportStreamableHTTP, true},
		{"http", TransportStreamableHTTP, true},
		{"carrier-pigeon", TransportStreamableHTTP, false},
		{"", TransportStreamableHTTP, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, ok := NormalizeTransport(tt.in)
			if got != tt.want || ok != tt.ok {
				t.Errorf("NormalizeTransport(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestParseDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"30s", 30 * time.Second, false},
		{"1m30s", 90 * time.Second, false},
		{"30", 30 * time.Second, false},
		{"2.5", 2500 * time.Millisecond, false},
		{"soon", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, err := ParseDuration(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDuration(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, ErrInvalidDuration) {
					t.Errorf("error = %v, want ErrInvalidDuration", err)
				}
				return
			}
			if got.Duration() != tt.want {
				t.Errorf("ParseDuration(%q) = %v, want %v", tt.in, got.Duration(), tt.want)
			}
		})
	}
}

func TestDuration_JSON(t *testing.T) {
	t.Parallel()

	var v struct {
		D Duration `json:"d"`
	}
	if err := json.Unmarshal([]byte(`{"d":"45s"}`), &v); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if v.D.Duration() != 45*time.Second {
		t.Errorf("D = %v, want 45s", v.D.Duration())
	}

	out, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(out) != `{"d":"45s"}` {
		t.Errorf("Marshal() = %s", out)
	}

	if err := json.Unmarshal([]byte(`{"d":"nope"}`), &v); err == nil {
		t.Error("Unmarshal() expected error for bad duration")
	}
}

func TestDuration_YAML(t *testing.T) {
	t.Parallel()

	var v struct {
		D Duration `yaml:"d"`
	}
	if err := yaml.Unmarshal([]byte("d: 2m\n"), &v); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if v.D.Duration() != 2*time.Minute {
		t.Errorf("D = %v, want 2m", v.D.Duration())
	}
}

func TestRedisConfig_Enabled(t *testing.T) {
	t.Parallel()

	if (RedisConfig{}).Enabled() {
		t.Error("empty RedisConfig reported enabled")
	}
	if !(RedisConfig{Addr: "localhost:6379"}).Enabled() {
		t.Error("RedisConfig with addr reported disabled")
	}
}

func TestValidator_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
		paths  []string
	}{
		{
			name:   "valid default",
			mutate: func(*Config) {},
		},
		{
			name:   "bad base url",
			mutate: func(c *Config) { c.Aiera.BaseURL = "not a url" },
			paths:  []string{"aiera.base_url"},
		},
		{
			name:   "default page size above max",
			mutate: func(c *Config) { c.Aiera.DefaultPageSize = 200 },
			paths:  []string{"aiera.default_page_size"},
		},
		{
			name:   "unknown transport",
			mutate: func(c *Config) { c.Server.Transport = "grpc" },
			paths:  []string{"server.transport"},
		},
		{
			name: "stdio needs no addr",
			mutate: func(c *Config) {
				c.Server.Transport = TransportStdio
				c.Server.Addr = ""
			},
		},
		{
			name:   "http needs addr",
			mutate: func(c *Config) { c.Server.Addr = "" },
			paths:  []string{"server.addr"},
		},
		{
			name: "include and exclude",
			mutate: func(c *Config) {
				c.Tools.Include = []string{"find_events"}
				c.Tools.Exclude = []string{"get_event"}
			},
			paths: []string{"tools"},
		},
		{
			name: "blank exclude ignored",
			mutate: func(c *Config) {
				c.Tools.Include = []string{"find_events"}
				c.Tools.Exclude = []string{" "}
			},
		},
		{
			name:   "threshold out of range",
			mutate: func(c *Config) { c.Correction.AutoCorrectThreshold = 1.5 },
			paths:  []string{"correction.auto_correct_threshold"},
		},
		{
			name: "redis cache without addr",
			mutate: func(c *Config) {
				c.Cache.Enabled = true
				c.Cache.Backend = "redis"
			},
			paths: []string{"cache.redis.addr"},
		},
		{
			name:   "otlp without endpoint",
			mutate: func(c *Config) { c.Tracing.Exporter = "otlp" },
			paths:  []string{"tracing.endpoint"},
		},
		{
			name:   "watch without file",
			mutate: func(c *Config) { c.Vocabulary.Watch = true },
			paths:  []string{"vocabulary.file"},
		},
		{
			name:   "bad log level",
			mutate: func(c *Config) { c.Logging.Level = "loud" },
			paths:  []string{"logging.level"},
		},
	}

	v := NewValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := Default()
			tt.mutate(cfg)

			errs := v.Validate(cfg)
			var got []string
			for _, e := range errs {
				got = append(got, e.Path)
			}
			if diff := cmp.Diff(tt.paths, got); diff != "" {
				t.Errorf("Validate() paths mismatch (-want +got):\n%s\nerrors: %v", diff, errs)
			}
		})
	}
}

func TestValidationErrors_Error(t *testing.T) {
	t.Parallel()

	errs := ValidationErrors{
		{Path: "aiera.base_url", Message: "must be a valid URL"},
		{Path: "server.transport", Message: "must be one of [stdio sse streamable-http]"},
	}
	want := "2 validation errors:\n  - aiera.base_url: must be a valid URL\n  - server.transport: must be one of [stdio sse streamable-http]"
	if got := errs.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(errs, ErrValidationFailed) {
		t.Error("errors.Is(errs, ErrValidationFailed) = false")
	}
	if got := (ValidationErrors{{Message: "bare"}}).Error(); got != "bare" {
		t.Errorf("Error() = %q, want bare", got)
	}
}
