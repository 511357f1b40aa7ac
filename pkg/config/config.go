// Package config provides configuration loading and validation for the
// pricing oracle.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables consulted when the ledger section leaves a field
// unset. They match the conductor's conventional deployment variables.
const (
	EnvHost      = "HOLOCHAIN_HOST"
	EnvAdminPort = "HOLOCHAIN_ADMIN_PORT"
	EnvAppPort   = "HOLOCHAIN_APP_PORT"
	EnvAppID     = "HOLOCHAIN_APP_ID"
	EnvRoleName  = "HOLOCHAIN_ROLE_NAME"
)

// Load loads configuration from YAML file and environment variables.
func Load(path string) (*Config, error) {
	// Validate and sanitize path
	cleanPath := filepath.Clean(path)
	absPath, err := filepath.Abs(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("invalid config path: %w", err)
	}

	// Read config file
	data, err := os.ReadFile(absPath) // #nosec G304 -- Path sanitized with filepath.Clean and filepath.Abs
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in YAML
	expanded := os.ExpandEnv(string(data))

	// Parse YAML
	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Apply defaults
	applyDefaults(&cfg)

	return &cfg, nil
}

// applyDefaults sets default values for optional fields.
func applyDefaults(cfg *Config) {
	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stderr"
	}

	// Metrics defaults
	if cfg.Metrics.Enabled && cfg.Metrics.Addr == "" {
		cfg.Metrics.Addr = ":9091"
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}

	// Source defaults: a config without a sources section queries every
	// built-in source. The keyed ones disable themselves at startup when
	// their API key env is unset.
	if len(cfg.Sources.Token) == 0 {
		cfg.Sources.Token = []SourceConfig{
			{Name: "geckoterminal"},
			{Name: "coingecko"},
			{Name: "coinmarketcap"},
		}
	}
	if len(cfg.Sources.Forex) == 0 {
		cfg.Sources.Forex = []SourceConfig{
			{Name: "twelve_data"},
			{Name: "coinapi"},
			{Name: "frankfurter"},
		}
	}

	// Forex symbols are ISO codes; providers key their responses uppercase.
	for i, sym := range cfg.Forex.Symbols {
		cfg.Forex.Symbols[i] = strings.ToUpper(sym)
	}

	// Ledger defaults: unset fields fall back to the conductor environment
	// variables, then to the conventional local conductor values.
	if cfg.Ledger.Host == "" {
		cfg.Ledger.Host = envString(EnvHost, "127.0.0.1")
	}
	if cfg.Ledger.AdminPort == 0 {
		cfg.Ledger.AdminPort = envPort(EnvAdminPort, 30000)
	}
	if cfg.Ledger.AppPort == 0 {
		cfg.Ledger.AppPort = envPort(EnvAppPort, 30001)
	}
	if cfg.Ledger.AppID == "" {
		cfg.Ledger.AppID = envString(EnvAppID, "bridging-app")
	}
	if cfg.Ledger.RoleName == "" {
		cfg.Ledger.RoleName = envString(EnvRoleName, "alliance")
	}
	if cfg.Ledger.ZomeName == "" {
		cfg.Ledger.ZomeName = "transactor"
	}
	if cfg.Ledger.SigningKeyEnv == "" {
		cfg.Ledger.SigningKeyEnv = "HOLOCHAIN_SIGNING_KEY"
	}
	if cfg.Ledger.Timeout.ToDuration() == 0 {
		cfg.Ledger.Timeout = Duration(30 * time.Second)
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envPort(key string, fallback uint16) uint16 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	port, err := strconv.ParseUint(v, 10, 16)
	if err != nil {
		return fallback
	}
	return uint16(port)
}

// GetString retrieves a string value from the source configuration.
func (sc *SourceConfig) GetString(key, defaultValue string) string {
	if val, ok := sc.Config[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return defaultValue
}

// GetStringSlice retrieves a string slice from source config.
func (sc *SourceConfig) GetStringSlice(key string) []string {
	if val, ok := sc.Config[key]; ok {
		if slice, ok := val.([]interface{}); ok {
			result := make([]string, 0, len(slice))
			for _, item := range slice {
				if str, ok := item.(string); ok {
					result = append(result, str)
				}
			}
			return result
		}
	}
	return nil
}

// GetInt retrieves an integer from source config.
func (sc *SourceConfig) GetInt(key string, defaultValue int) int {
	if val, ok := sc.Config[key]; ok {
		if i, ok := val.(int); ok {
			return i
		}
	}
	return defaultValue
}

// GetBool retrieves a boolean from source config.
func (sc *SourceConfig) GetBool(key string, defaultValue bool) bool {
	if val, ok := sc.Config[key]; ok {
		if b, ok := val.(bool); ok {
			return b
		}
	}
	return defaultValue
}

// RealUnits returns the units that carry their own market identity, in
// declaration order.
func (c *Config) RealUnits() []Unit {
	units := make([]Unit, 0, len(c.Units))
	for _, u := range c.Units {
		if !u.IsProxy() {
			units = append(units, u)
		}
	}
	return units
}

// ProxyUnits returns the units priced by proxy, in declaration order.
func (c *Config) ProxyUnits() []Unit {
	units := make([]Unit, 0, len(c.Units))
	for _, u := range c.Units {
		if u.IsProxy() {
			units = append(units, u)
		}
	}
	return units
}

// UnitByIndex returns the configured unit with the given index, or nil.
func (c *Config) UnitByIndex(index uint32) *Unit {
	for i := range c.Units {
		if c.Units[i].UnitIndex == index {
			return &c.Units[i]
		}
	}
	return nil
}

// ReferenceByID returns the price reference with the given id, or nil.
func (c *Config) ReferenceByID(id string) *PriceReference {
	for i := range c.References {
		if c.References[i].ID == id {
			return &c.References[i]
		}
	}
	return nil
}
