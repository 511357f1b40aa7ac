// Package sources provides price source interfaces and implementations.
package sources

import (
	"context"
	"time"
)

// Asset identifies one fetchable market: a configured unit or price
// reference projected down to what adapters need to query an API.
type Asset struct {
	Name     string
	Chain    string
	Contract string
	Decimals *uint8
}

// Quote is a single source's observation of an asset's USD market.
// PriceUSD is always present; the remaining market fields are nil when the
// source does not report them.
type Quote struct {
	Name           string    `json:"name"`
	Chain          string    `json:"chain"`
	Contract       string    `json:"contract"`
	PriceUSD       float64   `json:"price_usd"`
	MarketCap      *float64  `json:"market_cap,omitempty"`
	Volume24h      *float64  `json:"volume_24h,omitempty"`
	Liquidity      *float64  `json:"liquidity,omitempty"`
	PriceChange24h *float64  `json:"price_change_24h,omitempty"`
	Source         string    `json:"source"`
	Timestamp      time.Time `json:"timestamp"`
}

// TokenSource fetches a USD quote for a single asset.
type TokenSource interface {
	// Name returns the unique name of this source
	Name() string

	// FetchQuote fetches the current USD quote for the asset
	FetchQuote(ctx context.Context, asset Asset) (Quote, error)
}

// ForexSource fetches foreign currency rates expressed as units of foreign
// currency per one USD. Implementations may return a partial map when the
// provider cuts them off mid-run; an empty map is an error.
type ForexSource interface {
	// Name returns the unique name of this source
	Name() string

	// FetchRates fetches rates for the given ISO currency symbols
	FetchRates(ctx context.Context, symbols []string) (map[string]float64, error)
}

// TokenFactory is a function that creates a new TokenSource instance
type TokenFactory func(config map[string]interface{}) (TokenSource, error)

// ForexFactory is a function that creates a new ForexSource instance
type ForexFactory func(config map[string]interface{}) (ForexSource, error)
