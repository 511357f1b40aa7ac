package table

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unytco/pricing-oracle/pkg/aggregator"
	"github.com/unytco/pricing-oracle/pkg/logging"
)

func TestFprintResults(t *testing.T) {
	full := validResult(1, "alpha", 2.5)
	full.Volume24h = floatPtr(1234.5)
	full.PriceChange24h = floatPtr(3.25)

	invalid := validResult(7, "beta", 0.42)
	invalid.Valid = false
	invalid.Sources = []string{"coingecko"}

	var buf bytes.Buffer
	FprintResults(&buf, []aggregator.Result{full, invalid})
	out := buf.String()

	assert.Contains(t, out, "Index")
	assert.Contains(t, out, "Price (USD)")
	assert.Contains(t, out, strings.Repeat("-", 90))

	assert.Contains(t, out, "2.50000000")
	assert.Contains(t, out, "1234.50")
	assert.Contains(t, out, "+3.2500%")
	assert.Contains(t, out, "geckoterminal, coingecko")
	assert.Contains(t, out, "yes")

	// Absent optionals render as a dash placeholder, invalid units as NO.
	assert.Contains(t, out, "—")
	assert.Contains(t, out, "NO")
	assert.Contains(t, out, "0.42000000")
}

func TestFprintJSON(t *testing.T) {
	logger := logging.NewNoopLogger()

	result := validResult(1, "alpha", 2.5)
	rates := []aggregator.ForexRate{{Symbol: "EUR", Name: "Euro", ForeignPerUSD: 0.93}}

	table, err := Build([]aggregator.Result{result}, rates, nil, logger)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, FprintJSON(&buf, table))
	assert.True(t, strings.HasSuffix(buf.String(), "\n"))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	ref, ok := decoded["reference_unit"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "$", ref["symbol"])
	assert.Equal(t, "US Dollar", ref["name"])

	data, ok := decoded["data"].(map[string]interface{})
	require.True(t, ok)
	entry, ok := data["1"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "2.5", entry["current_price"], "prices travel as decimal strings")

	forex, ok := decoded["forex_rates"].([]interface{})
	require.True(t, ok)
	require.Len(t, forex, 1)

	globalDef, ok := decoded["global_definition"].(string)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(globalDef, "u"))

	// Unset additional data marshals as JSON null.
	assert.Nil(t, decoded["additional_data"])
}
