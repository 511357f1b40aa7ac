package app

import (
	"github.com/unytco/pricing-oracle/pkg/config"
	"github.com/unytco/pricing-oracle/pkg/logging"
	"github.com/unytco/pricing-oracle/pkg/sources"
)

// buildTokenSources instantiates the enabled token sources. A source that
// cannot be created, most commonly because its API key env is unset, is
// skipped with a warning so the rest of the run proceeds.
func (a *App) buildTokenSources(logger *logging.Logger) []sources.TokenSource {
	list := make([]sources.TokenSource, 0, len(a.cfg.Sources.Token))
	for _, sc := range a.cfg.Sources.Token {
		if !sc.IsEnabled() {
			logger.Debug("Token source disabled", "source", sc.Name)
			continue
		}

		cfg := sc.Config
		if cfg == nil {
			cfg = make(map[string]interface{})
		}
		cfg["logger"] = logger

		src, err := sources.CreateToken(sc.Name, cfg)
		if err != nil {
			logger.Warn("Token source unavailable", "source", sc.Name, "error", err)
			continue
		}
		list = append(list, src)
	}
	return list
}

// buildForexSources instantiates the enabled forex sources with the same
// skip-on-failure behavior as token sources.
func (a *App) buildForexSources(logger *logging.Logger) []sources.ForexSource {
	list := make([]sources.ForexSource, 0, len(a.cfg.Sources.Forex))
	for _, sc := range a.cfg.Sources.Forex {
		if !sc.IsEnabled() {
			logger.Debug("Forex source disabled", "source", sc.Name)
			continue
		}

		cfg := sc.Config
		if cfg == nil {
			cfg = make(map[string]interface{})
		}
		cfg["logger"] = logger

		src, err := sources.CreateForex(sc.Name, cfg)
		if err != nil {
			logger.Warn("Forex source unavailable", "source", sc.Name, "error", err)
			continue
		}
		list = append(list, src)
	}
	return list
}

// filterUnits narrows units to a single index when one was requested.
func filterUnits(units []config.Unit, only *uint32) []config.Unit {
	if only == nil {
		return units
	}
	filtered := make([]config.Unit, 0, 1)
	for _, u := range units {
		if u.UnitIndex == *only {
			filtered = append(filtered, u)
		}
	}
	return filtered
}

func unitAsset(u config.Unit) sources.Asset {
	return sources.Asset{
		Name:     u.Name,
		Chain:    u.Chain,
		Contract: u.Contract,
		Decimals: u.Decimals,
	}
}

func referenceAsset(r config.PriceReference) sources.Asset {
	return sources.Asset{
		Name:     r.Name,
		Chain:    r.Chain,
		Contract: r.Contract,
		Decimals: r.Decimals,
	}
}
