package config

import (
	"fmt"
	"strings"
)

// Validate checks configuration for errors
func Validate(cfg *Config) error {
	if err := validateLoggingConfig(&cfg.Logging); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	if err := validateReferences(cfg.References); err != nil {
		return err
	}

	if err := validateUnits(cfg); err != nil {
		return err
	}

	if err := validateSources(&cfg.Sources); err != nil {
		return err
	}

	if err := validateForex(&cfg.Forex); err != nil {
		return err
	}

	return nil
}

func validateReferences(refs []PriceReference) error {
	seen := make(map[string]struct{}, len(refs))
	for i, ref := range refs {
		if ref.ID == "" {
			return fmt.Errorf("price_references[%d]: %w", i, ErrReferenceIDRequired)
		}
		if _, dup := seen[ref.ID]; dup {
			return fmt.Errorf("price_references[%d]: %w: %s", i, ErrDuplicateReferenceID, ref.ID)
		}
		seen[ref.ID] = struct{}{}
		if ref.Chain == "" || ref.Contract == "" {
			return fmt.Errorf("price_references[%d] (%s): %w", i, ref.ID, ErrReferenceMarketRequired)
		}
	}
	return nil
}

func validateUnits(cfg *Config) error {
	if len(cfg.Units) == 0 {
		return ErrNoUnits
	}

	seen := make(map[uint32]struct{}, len(cfg.Units))
	for i, unit := range cfg.Units {
		if unit.Name == "" {
			return fmt.Errorf("units[%d]: %w", i, ErrUnitNameRequired)
		}
		if _, dup := seen[unit.UnitIndex]; dup {
			return fmt.Errorf("units[%d] (%s): %w: %d", i, unit.Name, ErrDuplicateUnitIndex, unit.UnitIndex)
		}
		seen[unit.UnitIndex] = struct{}{}

		if unit.Proxy == nil {
			if unit.Chain == "" || unit.Contract == "" {
				return fmt.Errorf("units[%d] (%s): %w", i, unit.Name, ErrUnitMarketRequired)
			}
			continue
		}

		if err := validateProxy(cfg, &unit); err != nil {
			return fmt.Errorf("units[%d] (%s): %w", i, unit.Name, err)
		}
	}
	return nil
}

// validateProxy enforces the proxy target rules: exactly one target kind,
// the target exists in the config, and a unit never proxies itself. Target
// existence is checked against the config, not against fetch results, so a
// proxy whose target fails at runtime is a diagnostic, not a config error.
func validateProxy(cfg *Config, unit *Unit) error {
	proxy := unit.Proxy
	switch {
	case proxy.UseUnit == nil && proxy.UseReference == nil:
		return ErrProxyTargetRequired
	case proxy.UseUnit != nil && proxy.UseReference != nil:
		return ErrProxyTargetAmbiguous
	case proxy.UseUnit != nil:
		if *proxy.UseUnit == unit.UnitIndex {
			return ErrProxySelfReference
		}
		if cfg.UnitByIndex(*proxy.UseUnit) == nil {
			return fmt.Errorf("%w: unit %d", ErrProxyTargetUnknown, *proxy.UseUnit)
		}
	default:
		if cfg.ReferenceByID(*proxy.UseReference) == nil {
			return fmt.Errorf("%w: reference %q", ErrProxyTargetUnknown, *proxy.UseReference)
		}
	}
	return nil
}

func validateSources(cfg *SourcesConfig) error {
	if err := validateSourceList("token", cfg.Token); err != nil {
		return err
	}
	return validateSourceList("forex", cfg.Forex)
}

func validateSourceList(kind string, list []SourceConfig) error {
	seen := make(map[string]struct{}, len(list))
	for i, src := range list {
		if src.Name == "" {
			return fmt.Errorf("sources.%s[%d]: %w", kind, i, ErrSourceNameRequired)
		}
		name := strings.ToLower(src.Name)
		if _, dup := seen[name]; dup {
			return fmt.Errorf("sources.%s[%d]: %w: %s", kind, i, ErrDuplicateSource, src.Name)
		}
		seen[name] = struct{}{}
	}
	return nil
}

func validateForex(cfg *ForexConfig) error {
	seen := make(map[string]struct{}, len(cfg.Symbols))
	for i, sym := range cfg.Symbols {
		if sym == "" {
			return fmt.Errorf("forex.symbols[%d]: %w", i, ErrForexSymbolRequired)
		}
		upper := strings.ToUpper(sym)
		if _, dup := seen[upper]; dup {
			return fmt.Errorf("forex.symbols[%d]: %w: %s", i, ErrDuplicateForexSymbol, sym)
		}
		seen[upper] = struct{}{}
	}
	return nil
}

func validateLoggingConfig(cfg *LoggingConfig) error {
	// Validate level
	validLevels := []string{"debug", "info", "warn", "error"}
	levelValid := false
	for _, l := range validLevels {
		if strings.ToLower(cfg.Level) == l {
			levelValid = true
			break
		}
	}
	if !levelValid {
		return fmt.Errorf("%w: %s (must be one of: %s)", ErrInvalidLogLevel, cfg.Level, strings.Join(validLevels, ", "))
	}

	// Validate format
	format := strings.ToLower(cfg.Format)
	if format != "json" && format != "text" {
		return fmt.Errorf("%w: %s (must be 'json' or 'text')", ErrInvalidLogFormat, cfg.Format)
	}

	return nil
}
