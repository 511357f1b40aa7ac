package table

import (
	"github.com/unytco/pricing-oracle/pkg/ledger"
)

// ConversionTable is the entry published to the ledger. Field names and
// encodings match the transactor zome's expected input.
type ConversionTable struct {
	ReferenceUnit    ReferenceUnit             `json:"reference_unit" msgpack:"reference_unit"`
	Data             map[string]ConversionData `json:"data" msgpack:"data"`
	ForexRates       []ForexRate               `json:"forex_rates" msgpack:"forex_rates"`
	AdditionalData   []byte                    `json:"additional_data" msgpack:"additional_data"`
	GlobalDefinition ledger.ActionHash         `json:"global_definition" msgpack:"global_definition"`
}

// ReferenceUnit names the currency all prices are expressed in.
type ReferenceUnit struct {
	Symbol string `json:"symbol" msgpack:"symbol"`
	Name   string `json:"name" msgpack:"name"`
}

// ConversionData is one unit's pricing entry. Volume and NetChange are
// pre-formatted strings, empty when the underlying value was absent.
type ConversionData struct {
	CurrentPrice ledger.Fuel `json:"current_price" msgpack:"current_price"`
	Volume       string      `json:"volume" msgpack:"volume"`
	NetChange    string      `json:"net_change" msgpack:"net_change"`
	Sources      []string    `json:"sources" msgpack:"sources"`
	Contract     *string     `json:"contract" msgpack:"contract"`
}

// ForexRate is one published currency rate, foreign units per USD.
type ForexRate struct {
	Symbol string      `json:"symbol" msgpack:"symbol"`
	Name   string      `json:"name" msgpack:"name"`
	Rate   ledger.Fuel `json:"rate" msgpack:"rate"`
}
