package ledger

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/vmihailenco/msgpack/v5"
)

// Fuel is the ledger's decimal amount type. It travels as its canonical
// decimal string in both JSON and msgpack, never as a binary float.
type Fuel struct {
	decimal.Decimal
}

var (
	_ msgpack.CustomEncoder = (*Fuel)(nil)
	_ msgpack.CustomDecoder = (*Fuel)(nil)
)

// NewFuelFromString parses a decimal string into a Fuel amount.
func NewFuelFromString(s string) (Fuel, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Fuel{}, fmt.Errorf("%w: %q: %v", ErrInvalidAmount, s, err)
	}
	return Fuel{Decimal: d}, nil
}

// NewFuelFromFloat converts an aggregated float into a Fuel amount by way
// of its shortest round-trip decimal string. This is the only place a
// binary float crosses into the published representation, and a value that
// does not parse (NaN, infinity) is a hard error.
func NewFuelFromFloat(v float64) (Fuel, error) {
	return NewFuelFromString(strconv.FormatFloat(v, 'f', -1, 64))
}

// EncodeMsgpack implements msgpack.CustomEncoder.
func (f *Fuel) EncodeMsgpack(enc *msgpack.Encoder) error {
	return enc.EncodeString(f.String())
}

// DecodeMsgpack implements msgpack.CustomDecoder.
func (f *Fuel) DecodeMsgpack(dec *msgpack.Decoder) error {
	s, err := dec.DecodeString()
	if err != nil {
		return err
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidAmount, s, err)
	}
	f.Decimal = d
	return nil
}
