package table

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unytco/pricing-oracle/pkg/aggregator"
	"github.com/unytco/pricing-oracle/pkg/config"
	"github.com/unytco/pricing-oracle/pkg/ledger"
	"github.com/unytco/pricing-oracle/pkg/logging"
	"github.com/unytco/pricing-oracle/pkg/sources"
)

func floatPtr(v float64) *float64 {
	return &v
}

func validResult(index uint32, name string, price float64) aggregator.Result {
	return aggregator.Result{
		UnitIndex:   index,
		Name:        name,
		Contract:    "0xcontract",
		AvgPriceUSD: price,
		Sources:     []string{"geckoterminal", "coingecko"},
		Valid:       true,
	}
}

func TestBuild_ValidUnits(t *testing.T) {
	logger := logging.NewNoopLogger()

	full := validResult(1, "alpha", 2.5)
	full.Volume24h = floatPtr(1234.5)
	full.PriceChange24h = floatPtr(-0.5)

	invalid := validResult(2, "beta", 10)
	invalid.Valid = false

	bare := validResult(3, "gamma", 0.1)

	table, err := Build([]aggregator.Result{full, invalid, bare}, nil, nil, logger)
	require.NoError(t, err)

	assert.Equal(t, "$", table.ReferenceUnit.Symbol)
	assert.Equal(t, "US Dollar", table.ReferenceUnit.Name)

	require.Len(t, table.Data, 2)
	require.Contains(t, table.Data, "1")
	require.Contains(t, table.Data, "3")
	assert.NotContains(t, table.Data, "2", "invalid unit must be omitted")

	entry := table.Data["1"]
	assert.Equal(t, "2.5", entry.CurrentPrice.String())
	assert.Equal(t, "1234.50", entry.Volume)
	assert.Equal(t, "-0.5000", entry.NetChange)
	assert.Equal(t, []string{"geckoterminal", "coingecko"}, entry.Sources)
	require.NotNil(t, entry.Contract)
	assert.Equal(t, "0xcontract", *entry.Contract)

	assert.Equal(t, "0.1", table.Data["3"].CurrentPrice.String())
}

func TestBuild_FromAggregatedRunWithProxy(t *testing.T) {
	logger := logging.NewNoopLogger()
	agg := aggregator.New(logger)

	quote := func(source string, price float64) sources.Quote {
		return sources.Quote{
			Name:     "HOT",
			Chain:    "ethereum",
			Contract: "0xhot",
			PriceUSD: price,
			Source:   source,
		}
	}

	results := []aggregator.Result{
		agg.Aggregate(1, []sources.Quote{quote("geckoterminal", 2.5), quote("coingecko", 2.5)}),
		agg.Aggregate(2, nil),
	}

	target := uint32(1)
	proxies := []config.Unit{{
		UnitIndex: 3,
		Name:      "WrappedHOT",
		Contract:  "0xwrapped",
		Proxy:     &config.PriceProxy{UseUnit: &target},
	}}

	results = agg.ResolveProxies(proxies, results, nil)
	aggregator.SortByUnitIndex(results)

	table, err := Build(results, nil, nil, logger)
	require.NoError(t, err)

	require.Len(t, table.Data, 2)
	assert.NotContains(t, table.Data, "2", "unit without quotes must not be published")

	assert.Equal(t, "2.5", table.Data["1"].CurrentPrice.String())

	proxied := table.Data["3"]
	assert.Equal(t, "2.5", proxied.CurrentPrice.String())
	assert.Equal(t, []string{"proxy"}, proxied.Sources)
	require.NotNil(t, proxied.Contract)
	assert.Equal(t, "0xwrapped", *proxied.Contract)
}

func TestBuild_AbsentOptionalsEmpty(t *testing.T) {
	logger := logging.NewNoopLogger()

	table, err := Build([]aggregator.Result{validResult(1, "alpha", 5)}, nil, nil, logger)
	require.NoError(t, err)

	entry := table.Data["1"]
	assert.Equal(t, "", entry.Volume)
	assert.Equal(t, "", entry.NetChange)
}

func TestBuild_ForexRates(t *testing.T) {
	logger := logging.NewNoopLogger()

	rates := []aggregator.ForexRate{
		{Symbol: "EUR", Name: "Euro", ForeignPerUSD: 0.93},
		{Symbol: "NOK", Name: "Norwegian Krone", ForeignPerUSD: 10.6},
	}

	table, err := Build(nil, rates, nil, logger)
	require.NoError(t, err)

	require.Len(t, table.ForexRates, 2)
	assert.Equal(t, "EUR", table.ForexRates[0].Symbol)
	assert.Equal(t, "Euro", table.ForexRates[0].Name)
	assert.Equal(t, "0.93", table.ForexRates[0].Rate.String())
	assert.Equal(t, "NOK", table.ForexRates[1].Symbol)
	assert.Equal(t, "10.6", table.ForexRates[1].Rate.String())
}

func TestBuild_NilGlobalDefinitionUsesZeroSentinel(t *testing.T) {
	logger := logging.NewNoopLogger()

	table, err := Build(nil, nil, nil, logger)
	require.NoError(t, err)

	assert.True(t, table.GlobalDefinition.IsZero())
}

func TestBuild_KeepsGlobalDefinition(t *testing.T) {
	logger := logging.NewNoopLogger()

	hash := ledger.ZeroActionHash()
	hash[10] = 0x7f

	table, err := Build(nil, nil, hash, logger)
	require.NoError(t, err)

	assert.Equal(t, hash, table.GlobalDefinition)
	assert.False(t, table.GlobalDefinition.IsZero())
}

func TestBuild_UnrepresentablePriceFails(t *testing.T) {
	logger := logging.NewNoopLogger()

	bad := validResult(1, "alpha", math.NaN())

	_, err := Build([]aggregator.Result{bad}, nil, nil, logger)
	require.Error(t, err)
	assert.ErrorIs(t, err, ledger.ErrInvalidAmount)
}

func TestBuild_UnrepresentableForexRateFails(t *testing.T) {
	logger := logging.NewNoopLogger()

	rates := []aggregator.ForexRate{{Symbol: "EUR", Name: "Euro", ForeignPerUSD: math.Inf(1)}}

	_, err := Build(nil, rates, nil, logger)
	require.Error(t, err)
	assert.ErrorIs(t, err, ledger.ErrInvalidAmount)
}
