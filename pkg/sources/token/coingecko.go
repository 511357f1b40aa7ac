package token

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/unytco/pricing-oracle/pkg/sources"
)

const coinGeckoBaseURL = "https://api.coingecko.com/api/v3"

// CoinGeckoEnvAPIKey is the environment variable holding the CoinGecko demo
// API key.
const CoinGeckoEnvAPIKey = "COINGECKO_API_KEY"

// CoinGeckoSource fetches token prices from the CoinGecko simple token price
// API. Requires a (demo) API key.
type CoinGeckoSource struct {
	*sources.BaseSource

	baseURL string
	apiKey  string
}

type coinGeckoTokenPrice struct {
	USD          *float64 `json:"usd"`
	USDMarketCap *float64 `json:"usd_market_cap"`
	USD24hVol    *float64 `json:"usd_24h_vol"`
	USD24hChange *float64 `json:"usd_24h_change"`
}

// NewCoinGeckoFromConfig creates a new CoinGeckoSource from config.
func NewCoinGeckoFromConfig(config map[string]interface{}) (sources.TokenSource, error) {
	logger := sources.GetLoggerFromConfig(config)

	apiKey := sources.APIKeyFromConfig(config, CoinGeckoEnvAPIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("%w: set %s", sources.ErrAPIKeyRequired, CoinGeckoEnvAPIKey)
	}

	baseURL := coinGeckoBaseURL
	if raw, ok := config["base_url"].(string); ok && raw != "" {
		baseURL = raw
	}

	return &CoinGeckoSource{
		BaseSource: sources.NewBaseSource("coingecko", sources.TimeoutFromConfig(config), logger),
		baseURL:    baseURL,
		apiKey:     apiKey,
	}, nil
}

// coinGeckoPlatformID maps a configured chain to a CoinGecko asset platform.
func coinGeckoPlatformID(chain string) string {
	switch chain {
	case "ethereum", "sepolia":
		return "ethereum"
	default:
		return chain
	}
}

// FetchQuote fetches the current USD quote for the asset.
func (s *CoinGeckoSource) FetchQuote(ctx context.Context, asset sources.Asset) (sources.Quote, error) {
	platform := coinGeckoPlatformID(asset.Chain)

	params := url.Values{}
	params.Set("contract_addresses", asset.Contract)
	params.Set("vs_currencies", "usd")
	params.Set("include_market_cap", "true")
	params.Set("include_24hr_vol", "true")
	params.Set("include_24hr_change", "true")

	reqURL := fmt.Sprintf("%s/simple/token_price/%s?%s", s.baseURL, platform, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return sources.Quote{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("x-cg-demo-api-key", s.apiKey)

	// Response is keyed by lowercased contract address.
	var data map[string]coinGeckoTokenPrice
	if err := s.DoJSON(req, &data); err != nil {
		return sources.Quote{}, err
	}

	entry, ok := data[strings.ToLower(asset.Contract)]
	if !ok {
		return sources.Quote{}, fmt.Errorf("%w: no data for contract %s", sources.ErrAssetNotFound, asset.Contract)
	}
	if entry.USD == nil {
		return sources.Quote{}, fmt.Errorf("%w: missing usd price", sources.ErrInvalidResponse)
	}

	quote := sources.Quote{
		Name:           asset.Name,
		Chain:          asset.Chain,
		Contract:       asset.Contract,
		PriceUSD:       *entry.USD,
		MarketCap:      entry.USDMarketCap,
		Volume24h:      entry.USD24hVol,
		PriceChange24h: entry.USD24hChange,
		Source:         s.Name(),
		Timestamp:      time.Now(),
	}

	s.Logger().Debug("Fetched quote", "source", s.Name(), "asset", asset.Name, "price", quote.PriceUSD)
	return quote, nil
}
