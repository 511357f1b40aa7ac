package token

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/unytco/pricing-oracle/pkg/sources"
)

const geckoTerminalBaseURL = "https://api.geckoterminal.com/api/v2"

// GeckoTerminalSource fetches token prices from the GeckoTerminal API
// (free, no API key).
// https://www.geckoterminal.com/dex-api
type GeckoTerminalSource struct {
	*sources.BaseSource

	baseURL string
}

// Numeric fields arrive as JSON strings; null stays nil.
type geckoTerminalResponse struct {
	Data struct {
		Attributes struct {
			PriceUSD  *string `json:"price_usd"`
			VolumeUSD struct {
				H24 *string `json:"h24"`
			} `json:"volume_usd"`
			TotalReserveInUSD *string `json:"total_reserve_in_usd"`
			MarketCapUSD      *string `json:"market_cap_usd"`
		} `json:"attributes"`
	} `json:"data"`
}

// NewGeckoTerminalFromConfig creates a new GeckoTerminalSource from config.
func NewGeckoTerminalFromConfig(config map[string]interface{}) (sources.TokenSource, error) {
	logger := sources.GetLoggerFromConfig(config)

	baseURL := geckoTerminalBaseURL
	if raw, ok := config["base_url"].(string); ok && raw != "" {
		baseURL = raw
	}

	return &GeckoTerminalSource{
		BaseSource: sources.NewBaseSource("geckoterminal", sources.TimeoutFromConfig(config), logger),
		baseURL:    baseURL,
	}, nil
}

// geckoNetworkID maps a configured chain to a GeckoTerminal network id.
func geckoNetworkID(chain string) string {
	switch chain {
	case "ethereum", "sepolia":
		return "eth"
	default:
		return chain
	}
}

// FetchQuote fetches the current USD quote for the asset.
func (s *GeckoTerminalSource) FetchQuote(ctx context.Context, asset sources.Asset) (sources.Quote, error) {
	url := fmt.Sprintf("%s/networks/%s/tokens/%s", s.baseURL, geckoNetworkID(asset.Chain), asset.Contract)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return sources.Quote{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	var data geckoTerminalResponse
	if err := s.DoJSON(req, &data); err != nil {
		return sources.Quote{}, err
	}

	attrs := data.Data.Attributes
	price, err := parseStringFloat(attrs.PriceUSD)
	if err != nil {
		return sources.Quote{}, fmt.Errorf("%w: missing price_usd", sources.ErrInvalidResponse)
	}

	quote := sources.Quote{
		Name:      asset.Name,
		Chain:     asset.Chain,
		Contract:  asset.Contract,
		PriceUSD:  price,
		MarketCap: parseOptionalStringFloat(attrs.MarketCapUSD),
		Volume24h: parseOptionalStringFloat(attrs.VolumeUSD.H24),
		Liquidity: parseOptionalStringFloat(attrs.TotalReserveInUSD),
		Source:    s.Name(),
		Timestamp: time.Now(),
	}

	s.Logger().Debug("Fetched quote", "source", s.Name(), "asset", asset.Name, "price", price)
	return quote, nil
}

func parseStringFloat(s *string) (float64, error) {
	if s == nil {
		return 0, fmt.Errorf("%w: value missing", sources.ErrInvalidResponse)
	}
	return strconv.ParseFloat(*s, 64)
}

func parseOptionalStringFloat(s *string) *float64 {
	if s == nil {
		return nil
	}
	v, err := strconv.ParseFloat(*s, 64)
	if err != nil {
		return nil
	}
	return &v
}
