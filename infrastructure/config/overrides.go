package config

import (
	"fmt"
	"strconv"
	"strings"

	domainconfig "github.com/aiera-inc/aiera-mcp/domain/config"
)

// Environment variables that override file settings.
const (
	EnvBaseURL                 = "AIERA_BASE_URL"
	EnvAPIKey                  = "AIERA_API_KEY"
	EnvDefaultPageSize         = "DEFAULT_PAGE_SIZE"
	EnvMaxPageSize             = "DEFAULT_MAX_PAGE_SIZE"
	EnvHTTPTimeout             = "HTTP_TIMEOUT"
	EnvMaxKeepaliveConnections = "HTTP_MAX_KEEPALIVE_CONNECTIONS"
	EnvMaxConnections          = "HTTP_MAX_CONNECTIONS"
	EnvKeepaliveExpiry         = "HTTP_KEEPALIVE_EXPIRY"
	EnvLogLevel                = "LOG_LEVEL"
	EnvTransport               = "MCP_TRANSPORT"
	EnvToolsInclude            = "AIERA_TOOLS_INCLUDE"
	EnvToolsExclude            = "AIERA_TOOLS_EXCLUDE"
	EnvRedisAddr               = "REDIS_ADDR"
)

type override struct {
	name  string
	apply func(cfg *domainconfig.Config, value string) error
}

var overrides = []override{
	{EnvBaseURL, func(c *domainconfig.Config, v string) error { c.Aiera.BaseURL = v; return nil }},
	{EnvAPIKey, func(c *domainconfig.Config, v string) error { c.Aiera.APIKey = v; return nil }},
	{EnvDefaultPageSize, intOverride(func(c *domainconfig.Config) *int { return &c.Aiera.DefaultPageSize })},
	{EnvMaxPageSize, intOverride(func(c *domainconfig.Config) *int { return &c.Aiera.MaxPageSize })},
	{EnvHTTPTimeout, durationOverride(func(c *domainconfig.Config) *domainconfig.Duration { return &c.HTTP.Timeout })},
	{EnvMaxKeepaliveConnections, intOverride(func(c *domainconfig.Config) *int { return &c.HTTP.MaxKeepaliveConnections })},
	{EnvMaxConnections, intOverride(func(c *domainconfig.Config) *int { return &c.HTTP.MaxConnections })},
	{EnvKeepaliveExpiry, durationOverride(func(c *domainconfig.Config) *domainconfig.Duration { return &c.HTTP.KeepaliveExpiry })},
	{EnvLogLevel, func(c *domainconfig.Config, v string) error { c.Logging.Level = v; return nil }},
	{EnvTransport, func(c *domainconfig.Config, v string) error { c.Server.Transport = v; return nil }},
	{EnvToolsInclude, func(c *domainconfig.Config, v string) error { c.Tools.Include = splitNames(v); return nil }},
	{EnvToolsExclude, func(c *domainconfig.Config, v string) error { c.Tools.Exclude = splitNames(v); return nil }},
	{EnvRedisAddr, func(c *domainconfig.Config, v string) error {
		c.Vocabulary.Redis.Addr = v
		c.Cache.Redis.Addr = v
		return nil
	}},
}

// ApplyEnv applies environment overrides to cfg. Empty values are ignored.
func ApplyEnv(cfg *domainconfig.Config, lookup func(string) (string, bool)) error {
	for _, o := range overrides {
		v, ok := lookup(o.name)
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		if err := o.apply(cfg, strings.TrimSpace(v)); err != nil {
			return fmt.Errorf("%w: %s: %v", domainconfig.ErrInvalidEnv, o.name, err)
		}
	}
	return nil
}

func intOverride(field func(*domainconfig.Config) *int) func(*domainconfig.Config, string) error {
	return func(c *domainconfig.Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*field(c) = n
		return nil
	}
}

func durationOverride(field func(*domainconfig.Config) *domainconfig.Duration) func(*domainconfig.Config, string) error {
	return func(c *domainconfig.Config, v string) error {
		d, err := domainconfig.ParseDuration(v)
		if err != nil {
			return err
		}
		*field(c) = d
		return nil
	}
}

func splitNames(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
