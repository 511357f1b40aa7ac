package config

import "time"

// Config is the root configuration structure
type Config struct {
	Logging    LoggingConfig    `yaml:"logging"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Ledger     LedgerConfig     `yaml:"ledger"`
	Sources    SourcesConfig    `yaml:"sources"`
	Forex      ForexConfig      `yaml:"forex"`
	References []PriceReference `yaml:"price_references"`
	Units      []Unit           `yaml:"units"`
}

// Unit describes one accounting unit published to the ledger. A unit either
// carries its own market identity (chain + contract) or proxies the price of
// another unit or price reference.
type Unit struct {
	UnitIndex uint32      `yaml:"unit_index"`
	Name      string      `yaml:"name"`
	Chain     string      `yaml:"chain"`
	Contract  string      `yaml:"contract"`
	Decimals  *uint8      `yaml:"decimals,omitempty"`
	Proxy     *PriceProxy `yaml:"proxy,omitempty"`
}

// IsProxy reports whether the unit takes its price from another unit or
// reference instead of its own market.
func (u *Unit) IsProxy() bool {
	return u.Proxy != nil
}

// PriceProxy points a unit at the price of another unit or of a price
// reference. Exactly one of the two fields must be set.
type PriceProxy struct {
	UseUnit      *uint32 `yaml:"use_unit,omitempty"`
	UseReference *string `yaml:"use_reference,omitempty"`
}

// PriceReference describes an asset that is fetched and aggregated only so
// proxy units can borrow its price. References are never published themselves.
type PriceReference struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Chain    string `yaml:"chain"`
	Contract string `yaml:"contract"`
	Decimals *uint8 `yaml:"decimals,omitempty"`
}

// SourcesConfig lists the token and forex sources to query.
type SourcesConfig struct {
	Token []SourceConfig `yaml:"token"`
	Forex []SourceConfig `yaml:"forex"`
}

// SourceConfig configures a single price source
type SourceConfig struct {
	Name    string                 `yaml:"name"`
	Enabled *bool                  `yaml:"enabled,omitempty"`
	Config  map[string]interface{} `yaml:"config"`
}

// IsEnabled reports whether the source should be instantiated. Sources are
// enabled unless explicitly disabled.
func (sc *SourceConfig) IsEnabled() bool {
	return sc.Enabled == nil || *sc.Enabled
}

// ForexConfig configures foreign exchange rate aggregation
type ForexConfig struct {
	Symbols []string `yaml:"symbols"`
}

// LedgerConfig configures the Holochain conductor connection
type LedgerConfig struct {
	Host          string   `yaml:"host"`
	AdminPort     uint16   `yaml:"admin_port"`
	AppPort       uint16   `yaml:"app_port"`
	AppID         string   `yaml:"app_id"`
	RoleName      string   `yaml:"role_name"`
	ZomeName      string   `yaml:"zome_name"`
	SigningKeyEnv string   `yaml:"signing_key_env"`
	Timeout       Duration `yaml:"timeout"`
}

// MetricsConfig configures Prometheus metrics
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	Path    string `yaml:"path"`
}

// LoggingConfig configures logging
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Duration is a wrapper around time.Duration for YAML parsing
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	td, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(td)
	return nil
}

// ToDuration converts Duration to time.Duration
func (d Duration) ToDuration() time.Duration {
	return time.Duration(d)
}
