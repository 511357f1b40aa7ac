package aggregator

import (
	"math"
	"time"

	"github.com/unytco/pricing-oracle/pkg/metrics"
)

// ForexDeviationThreshold is the relative deviation beyond which a forex
// source's rate is flagged. Unlike unit aggregation it never gates
// inclusion.
const ForexDeviationThreshold = 0.01

type sourceRate struct {
	source string
	rate   float64
}

// AggregateForexRates reduces per-source rate maps into one averaged rate
// per symbol.
//
// A failed source is dropped whole with a diagnostic. Rates that are not
// finite and strictly positive are dropped as if never reported. A symbol
// no source reported is omitted from the output entirely. Output order
// follows the requested symbols order.
func (a *Aggregator) AggregateForexRates(symbols []string, results []SourceRates) []ForexRate {
	start := time.Now()
	defer func() {
		metrics.RecordAggregation("forex", time.Since(start))
	}()

	bySymbol := make(map[string][]sourceRate, len(symbols))
	for _, res := range results {
		if res.Err != nil {
			a.logger.Warn("Forex source failed, its rates are ignored",
				"source", res.Source, "error", res.Err)
			continue
		}
		for _, symbol := range symbols {
			rate, ok := res.Rates[symbol]
			if !ok {
				continue
			}
			normalized, ok := normalizeForeignPerUSD(rate)
			if !ok {
				continue
			}
			bySymbol[symbol] = append(bySymbol[symbol], sourceRate{source: res.Source, rate: normalized})
		}
	}

	aggregated := make([]ForexRate, 0, len(symbols))
	for _, symbol := range symbols {
		values := bySymbol[symbol]
		if len(values) == 0 {
			a.logger.Warn("Forex symbol missing from all sources, omitted",
				"symbol", symbol)
			metrics.RecordForexSymbol("dropped")
			continue
		}

		var sum float64
		for _, v := range values {
			sum += v.rate
		}
		avg := sum / float64(len(values))

		if len(values) > 1 {
			for _, v := range values {
				deviation := math.Abs(v.rate-avg) / avg
				if deviation > ForexDeviationThreshold {
					a.logger.Warn("Forex rate deviates from average",
						"symbol", symbol,
						"source", v.source,
						"rate", v.rate,
						"deviation_pct", deviation*100,
						"average", avg)
				}
			}
		}

		aggregated = append(aggregated, ForexRate{
			Symbol:        symbol,
			Name:          CurrencyName(symbol),
			ForeignPerUSD: avg,
		})
		metrics.RecordForexSymbol("aggregated")
	}

	return aggregated
}

// normalizeForeignPerUSD accepts a raw rate only if it is finite and
// strictly positive.
func normalizeForeignPerUSD(rate float64) (float64, bool) {
	if math.IsNaN(rate) || math.IsInf(rate, 0) || rate <= 0 {
		return 0, false
	}
	return rate, true
}
