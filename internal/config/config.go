// Package config loads metalab settings from YAML with environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"solana-metadata-lab/internal/classify"
	"solana-metadata-lab/internal/metadata"
	"solana-metadata-lab/internal/solana"
)

// Config is the top-level metalab configuration.
type Config struct {
	Solana   SolanaConfig   `yaml:"solana"`
	Classify ClassifyConfig `yaml:"classify"`
	Storage  StorageConfig  `yaml:"storage"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// SolanaConfig configures the ledger clients.
type SolanaConfig struct {
	RPCEndpoint string `yaml:"rpc_endpoint"`
	WSEndpoint  string `yaml:"ws_endpoint"`
	ProgramID   string `yaml:"program_id"`
	Timeout     string `yaml:"timeout"`
	MaxRetries  int    `yaml:"max_retries"`
}

// URI filter modes.
const (
	URIFilterSubstring = "substring"
	URIFilterHost      = "host"
	URIFilterNone      = "none"
)

// ClassifyConfig configures the classifier.
type ClassifyConfig struct {
	URIFilter   string `yaml:"uri_filter"` // substring, host, none
	URIMarker   string `yaml:"uri_marker"`
	LenientUTF8 bool   `yaml:"lenient_utf8"`
	Workers     int    `yaml:"workers"` // 0 = GOMAXPROCS
}

// StorageConfig selects the record and run stores.
type StorageConfig struct {
	PostgresDSN   string `yaml:"postgres_dsn"`
	ClickhouseDSN string `yaml:"clickhouse_dsn"`
	UseMemory     bool   `yaml:"use_memory"`
}

// MetricsConfig configures the Prometheus endpoint served by watch.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// DefaultConfig returns a configuration that runs against mainnet with
// in-memory storage.
func DefaultConfig() *Config {
	return &Config{
		Solana: SolanaConfig{
			RPCEndpoint: "https://api.mainnet-beta.solana.com",
			WSEndpoint:  "wss://api.mainnet-beta.solana.com",
			ProgramID:   metadata.TokenMetadataProgramID.String(),
			Timeout:     "30s",
			MaxRetries:  3,
		},
		Classify: ClassifyConfig{
			URIFilter: URIFilterSubstring,
			URIMarker: classify.DefaultURIMarker,
		},
		Storage: StorageConfig{
			UseMemory: true,
		},
		Metrics: MetricsConfig{
			Addr: ":9090",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields defaults.
// Environment overrides are applied in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("METALAB_RPC_ENDPOINT"); v != "" {
		c.Solana.RPCEndpoint = v
	}
	if v := os.Getenv("METALAB_WS_ENDPOINT"); v != "" {
		c.Solana.WSEndpoint = v
	}
	if v := os.Getenv("METALAB_PROGRAM_ID"); v != "" {
		c.Solana.ProgramID = v
	}

	// Either DSN switches off the in-memory stores.
	if v := os.Getenv("METALAB_POSTGRES_DSN"); v != "" {
		c.Storage.PostgresDSN = v
		c.Storage.UseMemory = false
	}
	if v := os.Getenv("METALAB_CLICKHOUSE_DSN"); v != "" {
		c.Storage.ClickhouseDSN = v
		c.Storage.UseMemory = false
	}
}

// Validate checks the configuration for values the clients would reject.
func (c *Config) Validate() error {
	if c.Solana.RPCEndpoint == "" {
		return fmt.Errorf("solana.rpc_endpoint is required")
	}
	if _, err := solana.ParsePubkey(c.Solana.ProgramID); err != nil {
		return fmt.Errorf("solana.program_id: %w", err)
	}
	if _, err := time.ParseDuration(c.Solana.Timeout); err != nil {
		return fmt.Errorf("solana.timeout: %w", err)
	}
	if c.Solana.MaxRetries < 0 {
		return fmt.Errorf("solana.max_retries must be >= 0, got %d", c.Solana.MaxRetries)
	}

	switch c.Classify.URIFilter {
	case URIFilterSubstring, URIFilterHost:
		if c.Classify.URIMarker == "" {
			return fmt.Errorf("classify.uri_marker is required for uri_filter %q", c.Classify.URIFilter)
		}
	case URIFilterNone:
	default:
		return fmt.Errorf("invalid classify.uri_filter: %q (valid: %s, %s, %s)",
			c.Classify.URIFilter, URIFilterSubstring, URIFilterHost, URIFilterNone)
	}
	if c.Classify.Workers < 0 {
		return fmt.Errorf("classify.workers must be >= 0, got %d", c.Classify.Workers)
	}

	if !c.Storage.UseMemory && (c.Storage.PostgresDSN == "" || c.Storage.ClickhouseDSN == "") {
		return fmt.Errorf("storage.postgres_dsn and storage.clickhouse_dsn are required unless storage.use_memory is set")
	}

	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}

	return nil
}

// GetTimeout returns the RPC timeout as a duration.
func (c *Config) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Solana.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// LogLevel returns the configured zap level, info if unparseable.
func (c *Config) LogLevel() zapcore.Level {
	lvl, err := zapcore.ParseLevel(c.Logging.Level)
	if err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}

// ClassifierConfig builds the classify.Config these settings describe.
func (c *Config) ClassifierConfig() (classify.Config, error) {
	programID, err := solana.ParsePubkey(c.Solana.ProgramID)
	if err != nil {
		return classify.Config{}, fmt.Errorf("solana.program_id: %w", err)
	}

	cfg := classify.Config{
		ProgramID:   programID,
		LenientUTF8: c.Classify.LenientUTF8,
		Workers:     c.Classify.Workers,
	}

	switch c.Classify.URIFilter {
	case URIFilterSubstring:
		cfg.URIFilter = classify.SubstringFilter(c.Classify.URIMarker)
	case URIFilterHost:
		cfg.URIFilter = classify.HostFilter(c.Classify.URIMarker)
	case URIFilterNone:
		cfg.URIFilter = classify.NoFilter
	default:
		return classify.Config{}, fmt.Errorf("invalid classify.uri_filter: %q", c.Classify.URIFilter)
	}

	return cfg, nil
}
