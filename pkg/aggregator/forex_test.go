package aggregator

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unytco/pricing-oracle/pkg/logging"
)

func TestAggregateForexRates_AveragesAcrossSources(t *testing.T) {
	agg := New(logging.NewNoopLogger())

	rates := agg.AggregateForexRates([]string{"EUR", "NOK"}, []SourceRates{
		{Source: "twelve_data", Rates: map[string]float64{"EUR": 0.92, "NOK": 10.50}},
		{Source: "coinapi", Rates: map[string]float64{"EUR": 0.94, "NOK": 10.70}},
	})

	require.Len(t, rates, 2)
	assert.Equal(t, "EUR", rates[0].Symbol)
	assert.Equal(t, "Euro", rates[0].Name)
	assert.InDelta(t, 0.93, rates[0].ForeignPerUSD, 1e-12)
	assert.Equal(t, "NOK", rates[1].Symbol)
	assert.Equal(t, "Norwegian Krone", rates[1].Name)
	assert.InDelta(t, 10.60, rates[1].ForeignPerUSD, 1e-12)
}

func TestAggregateForexRates_FailedSourceIgnored(t *testing.T) {
	agg := New(logging.NewNoopLogger())

	rates := agg.AggregateForexRates([]string{"EUR"}, []SourceRates{
		{Source: "twelve_data", Err: errors.New("quota exceeded")},
		{Source: "coinapi", Rates: map[string]float64{"EUR": 0.94}},
	})

	require.Len(t, rates, 1)
	assert.Equal(t, 0.94, rates[0].ForeignPerUSD)
}

func TestAggregateForexRates_MissingSymbolOmitted(t *testing.T) {
	agg := New(logging.NewNoopLogger())

	// CHF is requested but no source reports it; the output holds the
	// symbols that resolved, in request order, with no placeholder
	rates := agg.AggregateForexRates([]string{"CHF", "EUR"}, []SourceRates{
		{Source: "coinapi", Rates: map[string]float64{"EUR": 0.94}},
	})

	require.Len(t, rates, 1)
	assert.Equal(t, "EUR", rates[0].Symbol)
}

func TestAggregateForexRates_RejectsUnusableValues(t *testing.T) {
	agg := New(logging.NewNoopLogger())

	rates := agg.AggregateForexRates([]string{"EUR", "JPY"}, []SourceRates{
		{Source: "a", Rates: map[string]float64{"EUR": math.NaN(), "JPY": -150}},
		{Source: "b", Rates: map[string]float64{"EUR": math.Inf(1), "JPY": 0}},
		{Source: "c", Rates: map[string]float64{"EUR": 0.95, "JPY": 155}},
	})

	require.Len(t, rates, 2)
	assert.Equal(t, 0.95, rates[0].ForeignPerUSD)
	assert.Equal(t, 155.0, rates[1].ForeignPerUSD)
}

func TestAggregateForexRates_AllValuesUnusableOmitsSymbol(t *testing.T) {
	agg := New(logging.NewNoopLogger())

	rates := agg.AggregateForexRates([]string{"EUR"}, []SourceRates{
		{Source: "a", Rates: map[string]float64{"EUR": -1}},
		{Source: "b", Rates: map[string]float64{"EUR": math.NaN()}},
	})

	assert.Empty(t, rates)
}

func TestCurrencyName_Unknown(t *testing.T) {
	assert.Equal(t, "US Dollar", CurrencyName("USD"))
	assert.Equal(t, "Unknown Currency", CurrencyName("XXX"))
}
