package token

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/unytco/pricing-oracle/pkg/sources"
)

const coinMarketCapBaseURL = "https://pro-api.coinmarketcap.com"

// CoinMarketCapEnvAPIKey is the environment variable holding the
// CoinMarketCap API key.
const CoinMarketCapEnvAPIKey = "COINMARKETCAP_API_KEY"

// CoinMarketCapSource fetches token prices from the CoinMarketCap v2 quotes
// API by contract address. Requires an API key.
type CoinMarketCapSource struct {
	*sources.BaseSource

	baseURL string
	apiKey  string
}

// The v2 endpoint keys data by CoinMarketCap id and may nest entries in
// per-id arrays, so data is kept raw and flattened after decoding.
type coinMarketCapResponse struct {
	Data json.RawMessage `json:"data"`
}

type cmcToken struct {
	ContractAddress string              `json:"contract_address"`
	Platform        *cmcPlatform        `json:"platform"`
	Quote           map[string]cmcQuote `json:"quote"`
}

type cmcPlatform struct {
	Slug            string `json:"slug"`
	TokenAddress    string `json:"token_address"`
	ContractAddress string `json:"contract_address"`
}

type cmcQuote struct {
	Price            *float64 `json:"price"`
	MarketCap        *float64 `json:"market_cap"`
	Volume24h        *float64 `json:"volume_24h"`
	PercentChange24h *float64 `json:"percent_change_24h"`
}

// NewCoinMarketCapFromConfig creates a new CoinMarketCapSource from config.
func NewCoinMarketCapFromConfig(config map[string]interface{}) (sources.TokenSource, error) {
	logger := sources.GetLoggerFromConfig(config)

	apiKey := sources.APIKeyFromConfig(config, CoinMarketCapEnvAPIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("%w: set %s", sources.ErrAPIKeyRequired, CoinMarketCapEnvAPIKey)
	}

	baseURL := coinMarketCapBaseURL
	if raw, ok := config["base_url"].(string); ok && raw != "" {
		baseURL = raw
	}

	return &CoinMarketCapSource{
		BaseSource: sources.NewBaseSource("coinmarketcap", sources.TimeoutFromConfig(config), logger),
		baseURL:    baseURL,
		apiKey:     apiKey,
	}, nil
}

// cmcPlatformSlug maps a configured chain to a CoinMarketCap platform slug.
func cmcPlatformSlug(chain string) string {
	switch chain {
	case "ethereum", "sepolia":
		return "ethereum"
	default:
		return chain
	}
}

// FetchQuote fetches the current USD quote for the asset.
func (s *CoinMarketCapSource) FetchQuote(ctx context.Context, asset sources.Asset) (sources.Quote, error) {
	params := url.Values{}
	params.Set("address", asset.Contract)
	params.Set("skip_invalid", "true")

	reqURL := fmt.Sprintf("%s/v2/cryptocurrency/quotes/latest?%s", s.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return sources.Quote{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-CMC_PRO_API_KEY", s.apiKey)

	var data coinMarketCapResponse
	if err := s.DoJSON(req, &data); err != nil {
		return sources.Quote{}, err
	}

	token := extractBestToken(flattenTokenEntries(data.Data), asset.Contract, cmcPlatformSlug(asset.Chain))
	if token == nil {
		return sources.Quote{}, fmt.Errorf("%w: no matching token for contract %s", sources.ErrAssetNotFound, asset.Contract)
	}

	usd, ok := token.Quote["USD"]
	if !ok {
		usd, ok = token.Quote["usd"]
	}
	if !ok || usd.Price == nil {
		return sources.Quote{}, fmt.Errorf("%w: missing USD quote", sources.ErrInvalidResponse)
	}

	quote := sources.Quote{
		Name:           asset.Name,
		Chain:          asset.Chain,
		Contract:       asset.Contract,
		PriceUSD:       *usd.Price,
		MarketCap:      usd.MarketCap,
		Volume24h:      usd.Volume24h,
		PriceChange24h: usd.PercentChange24h,
		Source:         s.Name(),
		Timestamp:      time.Now(),
	}

	s.Logger().Debug("Fetched quote", "source", s.Name(), "asset", asset.Name, "price", quote.PriceUSD)
	return quote, nil
}

// flattenTokenEntries normalizes the data field into a flat token list. The
// field is an array, an object of arrays, or an object of objects depending
// on the query. Object keys are walked in sorted order so the fallback pick
// below is deterministic.
func flattenTokenEntries(raw json.RawMessage) []cmcToken {
	if len(raw) == 0 {
		return nil
	}

	var arr []cmcToken
	if err := json.Unmarshal(raw, &arr); err == nil {
		return arr
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil
	}

	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var tokens []cmcToken
	for _, k := range keys {
		var nested []cmcToken
		if err := json.Unmarshal(obj[k], &nested); err == nil {
			tokens = append(tokens, nested...)
			continue
		}
		var single cmcToken
		if err := json.Unmarshal(obj[k], &single); err == nil {
			tokens = append(tokens, single)
		}
	}
	return tokens
}

// extractBestToken picks the entry whose contract matches on the expected
// platform. A contract match with an unknown platform is accepted, and the
// first entry serves as fallback when nothing matches.
func extractBestToken(tokens []cmcToken, contract, expectedPlatform string) *cmcToken {
	var fallback *cmcToken

	for i := range tokens {
		token := &tokens[i]
		if fallback == nil {
			fallback = token
		}

		if !strings.EqualFold(tokenContractAddress(token), contract) {
			continue
		}

		if token.Platform == nil || token.Platform.Slug == "" ||
			strings.EqualFold(token.Platform.Slug, expectedPlatform) {
			return token
		}
	}

	return fallback
}

func tokenContractAddress(token *cmcToken) string {
	if token.ContractAddress != "" {
		return token.ContractAddress
	}
	if token.Platform != nil {
		if token.Platform.TokenAddress != "" {
			return token.Platform.TokenAddress
		}
		return token.Platform.ContractAddress
	}
	return ""
}
