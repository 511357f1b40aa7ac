package forex

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/unytco/pricing-oracle/pkg/sources"
)

const coinAPIBaseURL = "https://rest.coinapi.io"

// CoinAPIEnvAPIKey is the environment variable holding the CoinAPI key.
const CoinAPIEnvAPIKey = "COINAPI_API_KEY"

// CoinAPISource fetches USD/XXX rates from the CoinAPI exchange rate
// endpoint, one request per symbol. Requires an API key.
type CoinAPISource struct {
	*sources.BaseSource

	baseURL string
	apiKey  string
}

type coinAPIRateResponse struct {
	Rate *float64 `json:"rate"`
}

// NewCoinAPIFromConfig creates a new CoinAPISource from config.
func NewCoinAPIFromConfig(config map[string]interface{}) (sources.ForexSource, error) {
	logger := sources.GetLoggerFromConfig(config)

	apiKey := sources.APIKeyFromConfig(config, CoinAPIEnvAPIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("%w: set %s", sources.ErrAPIKeyRequired, CoinAPIEnvAPIKey)
	}

	baseURL := coinAPIBaseURL
	if raw, ok := config["base_url"].(string); ok && raw != "" {
		baseURL = raw
	}

	return &CoinAPISource{
		BaseSource: sources.NewBaseSource("coinapi", sources.TimeoutFromConfig(config), logger),
		baseURL:    baseURL,
		apiKey:     apiKey,
	}, nil
}

// FetchRates fetches rates for the given ISO currency symbols.
func (s *CoinAPISource) FetchRates(ctx context.Context, symbols []string) (map[string]float64, error) {
	rates := make(map[string]float64, len(symbols))

	for _, symbol := range symbols {
		if symbol == "USD" {
			rates[symbol] = 1.0
			continue
		}

		reqURL := fmt.Sprintf("%s/v1/exchangerate/USD/%s", s.baseURL, symbol)
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request for USD/%s: %w", symbol, err)
		}
		req.Header.Set("X-CoinAPI-Key", s.apiKey)

		resp, err := s.Client().Do(req)
		if err != nil {
			return nil, fmt.Errorf("request failed for USD/%s: %w", symbol, err)
		}
		body, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read response for USD/%s: %w", symbol, err)
		}

		if resp.StatusCode != http.StatusOK {
			if isCoinAPIQuotaError(string(body)) {
				s.Logger().Warn("Quota reached, returning partial rates",
					"source", s.Name(), "symbol", symbol, "rates", len(rates))
				break
			}
			s.Logger().Warn("Rate fetch failed, symbol skipped",
				"source", s.Name(), "symbol", symbol, "status", resp.StatusCode)
			continue
		}

		var data coinAPIRateResponse
		if err := json.Unmarshal(body, &data); err != nil {
			return nil, fmt.Errorf("parse failed for USD/%s: %w", symbol, err)
		}
		if data.Rate == nil {
			s.Logger().Warn("Missing rate, symbol skipped", "source", s.Name(), "symbol", symbol)
			continue
		}

		rates[symbol] = *data.Rate
	}

	if len(rates) == 0 {
		return nil, fmt.Errorf("%w: %s", sources.ErrNoRates, s.Name())
	}

	return rates, nil
}

func isCoinAPIQuotaError(message string) bool {
	msg := strings.ToLower(message)
	return strings.Contains(msg, "quota exceeded") ||
		strings.Contains(msg, "insufficient usage credits") ||
		strings.Contains(msg, "subscription") ||
		strings.Contains(msg, "forbidden")
}
