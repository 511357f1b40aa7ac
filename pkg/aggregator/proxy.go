package aggregator

import (
	"fmt"
	"sort"

	"github.com/unytco/pricing-oracle/pkg/config"
	"github.com/unytco/pricing-oracle/pkg/metrics"
)

// ResolveProxies resolves proxy units against the accumulated results and
// the reference aggregates, appending one cloned Result per proxy that
// resolves. The returned slice is the input plus the appended proxies.
//
// Proxies are processed in the given order and each lookup sees results
// appended by earlier proxies, so a chained proxy resolves only when its
// target appears earlier in the list. There is no topological ordering or
// cycle detection here; the configuration is validated upstream and chains
// are expected to be declared dependency-first. A proxy whose target is
// absent is skipped with a diagnostic.
func (a *Aggregator) ResolveProxies(proxyUnits []config.Unit, results []Result, references map[string]Result) []Result {
	for i := range proxyUnits {
		unit := &proxyUnits[i]
		if unit.Proxy == nil {
			continue
		}

		var (
			target *Result
			from   string
		)
		switch {
		case unit.Proxy.UseUnit != nil:
			from = fmt.Sprintf("unit %d", *unit.Proxy.UseUnit)
			for j := range results {
				if results[j].UnitIndex == *unit.Proxy.UseUnit {
					target = &results[j]
					break
				}
			}
		case unit.Proxy.UseReference != nil:
			from = fmt.Sprintf("reference %q", *unit.Proxy.UseReference)
			if ref, ok := references[*unit.Proxy.UseReference]; ok {
				target = &ref
			}
		}

		if target == nil {
			a.logger.Warn("Proxy target not found or not fetched",
				"unit", unit.UnitIndex, "name", unit.Name, "target", from)
			metrics.RecordProxyResolution("missing")
			continue
		}

		proxied := cloneResult(*target)
		proxied.UnitIndex = unit.UnitIndex
		proxied.Name = unit.Name
		proxied.Contract = unit.Contract
		proxied.Sources = []string{"proxy"}

		a.logger.Info("Proxied unit price",
			"unit", unit.UnitIndex, "name", unit.Name,
			"from", from, "price", proxied.AvgPriceUSD, "valid", proxied.Valid)
		metrics.RecordProxyResolution("resolved")

		results = append(results, proxied)
	}

	return results
}

// SortByUnitIndex orders results by unit index in place.
func SortByUnitIndex(results []Result) {
	sort.Slice(results, func(i, j int) bool {
		return results[i].UnitIndex < results[j].UnitIndex
	})
}

// cloneResult copies a result so overwriting the proxy identity leaves the
// target untouched. Optional fields get fresh pointers; the quote audit
// trail is shared, it is never mutated after aggregation.
func cloneResult(r Result) Result {
	clone := r
	if r.Volume24h != nil {
		v := *r.Volume24h
		clone.Volume24h = &v
	}
	if r.PriceChange24h != nil {
		c := *r.PriceChange24h
		clone.PriceChange24h = &c
	}
	clone.Sources = append([]string(nil), r.Sources...)
	return clone
}
