// Package forex implements foreign exchange rate source adapters.
package forex

import (
	"github.com/unytco/pricing-oracle/pkg/sources"
)

func init() {
	// Register all forex sources
	sources.RegisterForex("twelve_data", NewTwelveDataFromConfig)
	sources.RegisterForex("coinapi", NewCoinAPIFromConfig)
	sources.RegisterForex("frankfurter", NewFrankfurterFromConfig)
}
