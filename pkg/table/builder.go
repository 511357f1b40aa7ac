// Package table builds the conversion table published to the ledger and
// renders run results for humans.
package table

import (
	"fmt"
	"strconv"

	"github.com/unytco/pricing-oracle/pkg/aggregator"
	"github.com/unytco/pricing-oracle/pkg/ledger"
	"github.com/unytco/pricing-oracle/pkg/logging"
	"github.com/unytco/pricing-oracle/pkg/metrics"
)

// Build assembles a ConversionTable from aggregated results and forex
// rates. Invalid units are omitted with a warning; a price that cannot be
// represented as fuel fails the whole build. A nil globalDefinition is
// replaced by the zero hash sentinel.
func Build(results []aggregator.Result, rates []aggregator.ForexRate, globalDefinition ledger.ActionHash, logger *logging.Logger) (*ConversionTable, error) {
	t := &ConversionTable{
		ReferenceUnit: ReferenceUnit{Symbol: "$", Name: "US Dollar"},
		Data:          make(map[string]ConversionData, len(results)),
		ForexRates:    make([]ForexRate, 0, len(rates)),
	}

	for _, r := range results {
		if !r.Valid {
			logger.Warn("Invalid unit omitted from conversion table",
				"unit", r.UnitIndex, "name", r.Name)
			continue
		}

		price, err := ledger.NewFuelFromFloat(r.AvgPriceUSD)
		if err != nil {
			return nil, fmt.Errorf("unit %d price: %w", r.UnitIndex, err)
		}

		var volume, netChange string
		if r.Volume24h != nil {
			volume = fmt.Sprintf("%.2f", *r.Volume24h)
		}
		if r.PriceChange24h != nil {
			netChange = fmt.Sprintf("%.4f", *r.PriceChange24h)
		}

		contract := r.Contract
		t.Data[strconv.FormatUint(uint64(r.UnitIndex), 10)] = ConversionData{
			CurrentPrice: price,
			Volume:       volume,
			NetChange:    netChange,
			Sources:      r.Sources,
			Contract:     &contract,
		}
	}

	for _, rate := range rates {
		fuel, err := ledger.NewFuelFromFloat(rate.ForeignPerUSD)
		if err != nil {
			return nil, fmt.Errorf("forex rate %s: %w", rate.Symbol, err)
		}
		t.ForexRates = append(t.ForexRates, ForexRate{
			Symbol: rate.Symbol,
			Name:   rate.Name,
			Rate:   fuel,
		})
	}

	if len(globalDefinition) == 0 {
		globalDefinition = ledger.ZeroActionHash()
	}
	t.GlobalDefinition = globalDefinition

	metrics.RecordTableUnits(len(t.Data))
	return t, nil
}
