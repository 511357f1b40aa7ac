// Package token implements token price source adapters.
package token

import (
	"github.com/unytco/pricing-oracle/pkg/sources"
)

func init() {
	// Register all token sources
	sources.RegisterToken("geckoterminal", NewGeckoTerminalFromConfig)
	sources.RegisterToken("coingecko", NewCoinGeckoFromConfig)
	sources.RegisterToken("coinmarketcap", NewCoinMarketCapFromConfig)
}
