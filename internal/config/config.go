package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/churnscope/churnscope/internal/engine"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultHTTPPort        = 8080
	DefaultReportTTL       = 30 * time.Minute
	DefaultRefreshInterval = 10 * time.Minute
	DefaultRankingTopN     = 10
)

// Config is the top-level configuration for churnd.
type Config struct {
	Server ServerConfig `yaml:"server"`
}

// ServerConfig holds all server-side settings.
type ServerConfig struct {
	// HTTPPort is the port the REST API, WebSocket hub and /metrics listen
	// on (default 8080).
	HTTPPort int `yaml:"http_port"`

	// Auth configures how the server authenticates incoming REST clients.
	Auth AuthConfig `yaml:"auth"`

	// Report controls the analysis layout and refresh cadence.
	Report ReportConfig `yaml:"report"`

	// Sources is the list of customer tables to analyze.
	Sources []Source `yaml:"sources"`

	// Alerts holds rule definitions and webhook delivery targets.
	Alerts AlertsConfig `yaml:"alerts"`
}

// AuthConfig controls client authentication.
type AuthConfig struct {
	// Mode is one of: apikey | none. Default "none".
	Mode string `yaml:"mode"`

	// Header is the HTTP header carrying the key (default "x-api-key").
	Header string `yaml:"header"`

	// KeyEnv is the environment variable holding the expected API key.
	KeyEnv string `yaml:"key_env"`
}

// Key returns the expected API key resolved from the environment.
func (a AuthConfig) Key() string {
	if a.KeyEnv == "" {
		return ""
	}
	return os.Getenv(a.KeyEnv)
}

// EffectiveHeader returns the configured header name or the default.
func (a AuthConfig) EffectiveHeader() string {
	if a.Header == "" {
		return "x-api-key"
	}
	return a.Header
}

// ReportConfig controls what each analysis run computes and how often.
type ReportConfig struct {
	// TTL is how long a report stays live without a refresh (default 30m).
	TTL time.Duration `yaml:"ttl"`

	// RefreshInterval is how often sources are reloaded and reports
	// recomputed (default 10m).
	RefreshInterval time.Duration `yaml:"refresh_interval"`

	// Attributes is the segment set; empty means the default set.
	Attributes []string `yaml:"attributes"`

	// Cross is the attribute pair for the two-dimension breakdown.
	// Empty means [contract, internet_service].
	Cross []string `yaml:"cross"`

	// Ranking lists the categories entering the driver ranking; empty means
	// Contract / Internet Service / Payment Method.
	Ranking []engine.CategoryDef `yaml:"ranking"`

	// TopN truncates the driver ranking (default 10).
	TopN int `yaml:"top_n"`
}

// Source describes one customer table to analyze.
type Source struct {
	// ID is a unique, human-readable identifier for this source.
	ID string `yaml:"id"`

	// Type is the loader type: csv | postgres.
	Type string `yaml:"type"`

	// Path is the CSV file path. Used when Type == "csv".
	Path string `yaml:"path"`

	// DSNEnv names the environment variable holding the Postgres DSN.
	// Used when Type == "postgres".
	DSNEnv string `yaml:"dsn_env"`

	// Table is the Postgres table name. Used when Type == "postgres".
	Table string `yaml:"table"`
}

// DSN returns the Postgres DSN resolved from the environment.
func (s Source) DSN() string {
	if s.DSNEnv == "" {
		return ""
	}
	return os.Getenv(s.DSNEnv)
}

// AlertsConfig holds alerting rules and webhook delivery targets.
type AlertsConfig struct {
	Rules    []AlertRule     `yaml:"rules"`
	Webhooks []WebhookConfig `yaml:"webhooks"`
}

// AlertRule defines one threshold-based alert condition.
type AlertRule struct {
	// Name is the human-readable alert identifier, used as part of the
	// deduplication key.
	Name string `yaml:"name"`

	// Attribute scopes the rule to one segment dimension ("contract",
	// "payment_method", …). Empty means the rule runs against the report's
	// global fields instead of per-segment ones.
	Attribute string `yaml:"attribute"`

	// Condition is a simple expression. Per-segment fields:
	// "churn_rate > 40", "churned_customers > 500". Global fields:
	// "overall_churn_rate > 30", "revenue_at_risk_monthly > 100000",
	// "revenue_at_risk_annual > 1000000".
	Condition string `yaml:"condition"`

	// Severity is one of: critical | warning | info.
	Severity string `yaml:"severity"`

	// Cooldown suppresses re-fires for this duration after an alert fires.
	// Defaults to 15 minutes if zero.
	Cooldown time.Duration `yaml:"cooldown"`
}

// WebhookConfig defines one webhook delivery target.
type WebhookConfig struct {
	// Type is one of: teams | slack | http.
	Type string `yaml:"type"`

	// URLEnv is the name of the environment variable that holds the webhook URL.
	URLEnv string `yaml:"url_env"`
}

// URL returns the webhook URL resolved from the environment.
func (w WebhookConfig) URL() string {
	if w.URLEnv == "" {
		return ""
	}
	return os.Getenv(w.URLEnv)
}

// Load reads, defaults and validates the config file at path.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %q: %w", path, err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.HTTPPort == 0 {
		c.Server.HTTPPort = DefaultHTTPPort
	}
	if c.Server.Auth.Mode == "" {
		c.Server.Auth.Mode = "none"
	}
	if c.Server.Report.TTL == 0 {
		c.Server.Report.TTL = DefaultReportTTL
	}
	if c.Server.Report.RefreshInterval == 0 {
		c.Server.Report.RefreshInterval = DefaultRefreshInterval
	}
	if c.Server.Report.TopN == 0 {
		c.Server.Report.TopN = DefaultRankingTopN
	}
	if len(c.Server.Report.Cross) == 0 {
		c.Server.Report.Cross = []string{"contract", "internet_service"}
	}
}

// Validate rejects configurations that cannot work at runtime.
func (c *Config) Validate() error {
	switch c.Server.Auth.Mode {
	case "none", "apikey":
	default:
		return fmt.Errorf("auth.mode must be \"none\" or \"apikey\", got %q", c.Server.Auth.Mode)
	}

	if len(c.Server.Sources) == 0 {
		return fmt.Errorf("at least one source is required")
	}
	seen := make(map[string]bool, len(c.Server.Sources))
	for i, src := range c.Server.Sources {
		if src.ID == "" {
			return fmt.Errorf("sources[%d]: id is required", i)
		}
		if seen[src.ID] {
			return fmt.Errorf("sources[%d]: duplicate id %q", i, src.ID)
		}
		seen[src.ID] = true
		switch src.Type {
		case "csv":
			if src.Path == "" {
				return fmt.Errorf("source %q: path is required for csv", src.ID)
			}
		case "postgres":
			if src.DSNEnv == "" || src.Table == "" {
				return fmt.Errorf("source %q: dsn_env and table are required for postgres", src.ID)
			}
		default:
			return fmt.Errorf("source %q: type must be \"csv\" or \"postgres\", got %q", src.ID, src.Type)
		}
	}

	if len(c.Server.Report.Cross) != 2 {
		return fmt.Errorf("report.cross must name exactly two attributes")
	}
	return nil
}
