// Package config loads server configuration from files and the environment.
package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aiera-inc/aiera-mcp/domain/config"
)

// Loader loads server configuration. Files are decoded over the defaults,
// then environment overrides are applied, then the result is validated.
type Loader struct {
	// ExpandEnv enables ${VAR} expansion in file contents.
	ExpandEnv bool
	// StrictEnv fails if referenced env vars are missing.
	StrictEnv bool
	// Validate enables configuration validation.
	Validate bool
	// Overrides applies AIERA_* style environment overrides.
	Overrides bool
	// LookupEnv reads the environment. Defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)

	warnings []string
}

// NewLoader creates a new configuration loader with default settings.
func NewLoader() *Loader {
	return &Loader{
		ExpandEnv: true,
		StrictEnv: false,
		Validate:  true,
		Overrides: true,
		LookupEnv: os.LookupEnv,
	}
}

// LoaderOption configures the loader.
type LoaderOption func(*Loader)

// WithEnvExpansion enables or disables environment variable expansion.
func WithEnvExpansion(enabled bool) LoaderOption {
	return func(l *Loader) {
		l.ExpandEnv = enabled
	}
}

// WithStrictEnv enables strict environment variable checking.
func WithStrictEnv(enabled bool) LoaderOption {
	return func(l *Loader) {
		l.StrictEnv = enabled
	}
}

// WithValidation enables or disables configuration validation.
func WithValidation(enabled bool) LoaderOption {
	return func(l *Loader) {
		l.Validate = enabled
	}
}

// WithOverrides enables or disables environment overrides.
func WithOverrides(enabled bool) LoaderOption {
	return func(l *Loader) {
		l.Overrides = enabled
	}
}

// WithLookupEnv replaces the environment lookup.
func WithLookupEnv(lookup func(string) (string, bool)) LoaderOption {
	return func(l *Loader) {
		l.LookupEnv = lookup
	}
}

// NewLoaderWithOptions creates a loader with the specified options.
func NewLoaderWithOptions(opts ...LoaderOption) *Loader {
	l := NewLoader()
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Format represents a configuration file format.
type Format string

const (
	// FormatYAML is the YAML format.
	FormatYAML Format = "yaml"
	// FormatJSON is the JSON format.
	FormatJSON Format = "json"
)

// FormatOf returns the format implied by a file extension.
func FormatOf(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %s", config.ErrUnsupportedFormat, ext)
	}
}

// LoadFile loads configuration from a file path. An empty path yields the
// defaults with environment overrides applied.
func (l *Loader) LoadFile(path string) (*config.Config, error) {
	if path == "" {
		return l.finish(config.Default())
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("failed to access config file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", config.ErrInvalidFormat, path)
	}

	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	return l.Load(f, format)
}

// Load loads configuration from a reader.
func (l *Loader) Load(r io.Reader, format Format) (*config.Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if l.ExpandEnv {
		expanded, err := newExpander(l.lookup(), l.StrictEnv).Expand(string(data))
		if err != nil {
			return nil, err
		}
		data = []byte(expanded)
	}

	cfg := config.Default()
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("%w: %v", config.ErrInvalidFormat, err)
		}
	case FormatJSON:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("%w: %v", config.ErrInvalidFormat, err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", config.ErrUnsupportedFormat, format)
	}

	return l.finish(cfg)
}

// LoadString loads configuration from a string.
func (l *Loader) LoadString(content string, format Format) (*config.Config, error) {
	return l.Load(strings.NewReader(content), format)
}

func (l *Loader) finish(cfg *config.Config) (*config.Config, error) {
	if l.Overrides {
		if err := ApplyEnv(cfg, l.lookup()); err != nil {
			return nil, err
		}
	}
	l.warnings = Normalize(cfg)

	if l.Validate {
		if errs := config.NewValidator().Validate(cfg); errs.HasErrors() {
			return nil, errs
		}
	}
	return cfg, nil
}

func (l *Loader) lookup() func(string) (string, bool) {
	if l.LookupEnv == nil {
		return os.LookupEnv
	}
	return l.LookupEnv
}

// Warnings returns the notes produced by the last load, such as an
// unknown transport falling back to the default.
func (l *Loader) Warnings() []string {
	return append([]string(nil), l.warnings...)
}

// Normalize canonicalizes case-insensitive settings in place. An unknown
// transport falls back to streamable-http with a warning.
func Normalize(cfg *config.Config) []string {
	var warnings []string

	cfg.Logging.Level = strings.ToLower(strings.TrimSpace(cfg.Logging.Level))
	cfg.Aiera.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.Aiera.BaseURL), "/")

	transport, ok := config.NormalizeTransport(cfg.Server.Transport)
	if !ok {
		warnings = append(warnings, fmt.Sprintf("unknown transport %q, using %s", cfg.Server.Transport, transport))
	}
	cfg.Server.Transport = transport

	return warnings
}
