package aggregator

import (
	"github.com/unytco/pricing-oracle/pkg/sources"
)

// Result is the cross-source aggregate for one unit. Name and Contract come
// from the first contributing quote; Sources is the full ordered list of
// contributing source names, not deduplicated. Quotes retains the raw
// per-source observations for auditing.
type Result struct {
	UnitIndex      uint32
	Name           string
	Contract       string
	AvgPriceUSD    float64
	Volume24h      *float64
	PriceChange24h *float64
	Sources        []string
	Valid          bool
	Quotes         []sources.Quote
}

// ForexRate is the aggregated rate for one currency symbol, expressed as
// units of foreign currency per one USD.
type ForexRate struct {
	Symbol        string
	Name          string
	ForeignPerUSD float64
}

// SourceRates carries one forex source's outcome for a run: either the
// fetched symbol to rate mapping or the error that sank the whole source.
type SourceRates struct {
	Source string
	Rates  map[string]float64
	Err    error
}
