package ledger

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func TestNewFuelFromString(t *testing.T) {
	f, err := NewFuelFromString("2.5")
	require.NoError(t, err)
	assert.Equal(t, "2.5", f.String())

	f, err = NewFuelFromString("-0.0001")
	require.NoError(t, err)
	assert.Equal(t, "-0.0001", f.String())

	_, err = NewFuelFromString("not a number")
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestNewFuelFromFloat(t *testing.T) {
	tests := []struct {
		value    float64
		expected string
	}{
		{2.5, "2.5"},
		{0.1, "0.1"},
		{1, "1"},
		{0, "0"},
		{-3.25, "-3.25"},
	}

	for _, tt := range tests {
		f, err := NewFuelFromFloat(tt.value)
		require.NoError(t, err)
		assert.Equal(t, tt.expected, f.String())
	}
}

func TestNewFuelFromFloat_Unrepresentable(t *testing.T) {
	_, err := NewFuelFromFloat(math.NaN())
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = NewFuelFromFloat(math.Inf(1))
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = NewFuelFromFloat(math.Inf(-1))
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestFuelJSON(t *testing.T) {
	f, err := NewFuelFromString("10.5")
	require.NoError(t, err)

	data, err := json.Marshal(f)
	require.NoError(t, err)
	assert.Equal(t, `"10.5"`, string(data), "amounts travel as decimal strings")

	var parsed Fuel
	require.NoError(t, json.Unmarshal(data, &parsed))
	assert.Equal(t, "10.5", parsed.String())
}

func TestFuelMsgpackRoundTrip(t *testing.T) {
	f, err := NewFuelFromString("0.000042")
	require.NoError(t, err)

	data, err := msgpack.Marshal(&f)
	require.NoError(t, err)

	var decoded Fuel
	require.NoError(t, msgpack.Unmarshal(data, &decoded))
	assert.Equal(t, "0.000042", decoded.String())
}

func TestFuelMsgpack_RejectsInvalidString(t *testing.T) {
	data, err := msgpack.Marshal("garbage")
	require.NoError(t, err)

	var decoded Fuel
	err = msgpack.Unmarshal(data, &decoded)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}
