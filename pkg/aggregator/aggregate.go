// Package aggregator reduces per-source quotes into per-unit results and
// resolves proxy units against them.
package aggregator

import (
	"math"
	"strconv"
	"time"

	"github.com/unytco/pricing-oracle/pkg/logging"
	"github.com/unytco/pricing-oracle/pkg/metrics"
	"github.com/unytco/pricing-oracle/pkg/sources"
)

// DeviationThreshold is the maximum relative deviation of a single source
// price from the cross-source average before the unit is invalidated.
const DeviationThreshold = 0.01 // 1%

// Aggregator reduces quotes and forex rates and resolves proxies.
type Aggregator struct {
	logger *logging.Logger
}

// New creates an Aggregator that emits diagnostics through logger.
func New(logger *logging.Logger) *Aggregator {
	return &Aggregator{logger: logger}
}

// Aggregate reduces the quotes for one unit into a Result.
//
// With no quotes the result is invalid with a zero average. With a single
// quote the cross-check is skipped and the result is valid. With two or more
// quotes the result is valid only if every quote stays within
// DeviationThreshold of the arithmetic mean; one outlier invalidates the
// whole unit.
func (a *Aggregator) Aggregate(unitIndex uint32, quotes []sources.Quote) Result {
	start := time.Now()
	defer func() {
		metrics.RecordAggregation("unit", time.Since(start))
	}()

	result := Result{
		UnitIndex: unitIndex,
		Sources:   make([]string, 0, len(quotes)),
		Quotes:    quotes,
	}
	for _, q := range quotes {
		result.Sources = append(result.Sources, q.Source)
	}

	if len(quotes) == 0 {
		metrics.RecordUnitAggregated("empty")
		return result
	}

	result.Name = quotes[0].Name
	result.Contract = quotes[0].Contract

	var sum float64
	for _, q := range quotes {
		sum += q.PriceUSD
	}
	avg := sum / float64(len(quotes))
	result.AvgPriceUSD = avg

	if len(quotes) < 2 {
		a.logger.Warn("Only one source, skipping cross-check",
			"unit", unitIndex, "name", result.Name)
		result.Valid = true
		metrics.RecordUnitAggregated("valid")
	} else {
		allWithin := true
		for _, q := range quotes {
			deviation := math.Abs(q.PriceUSD-avg) / avg
			if deviation <= DeviationThreshold {
				continue
			}
			a.logger.Warn("Source price deviates from average",
				"unit", unitIndex,
				"name", result.Name,
				"source", q.Source,
				"price", q.PriceUSD,
				"deviation_pct", deviation*100,
				"average", avg)
			allWithin = false
		}
		if allWithin {
			a.logger.Info("All sources within deviation threshold",
				"unit", unitIndex, "name", result.Name,
				"sources", len(quotes), "average", avg)
			metrics.RecordUnitAggregated("valid")
		} else {
			metrics.RecordUnitAggregated("invalid")
			metrics.RecordDeviationRejection(strconv.FormatUint(uint64(unitIndex), 10))
		}
		result.Valid = allWithin
	}

	result.Volume24h = aggregateOptional(quotes, func(q sources.Quote) *float64 { return q.Volume24h })
	result.PriceChange24h = aggregateOptional(quotes, func(q sources.Quote) *float64 { return q.PriceChange24h })

	return result
}

// aggregateOptional averages an optional field over only the quotes that
// supplied it. Returns nil when no quote did.
func aggregateOptional(quotes []sources.Quote, field func(sources.Quote) *float64) *float64 {
	var sum float64
	var n int
	for _, q := range quotes {
		if v := field(q); v != nil {
			sum += *v
			n++
		}
	}
	if n == 0 {
		return nil
	}
	avg := sum / float64(n)
	return &avg
}
