package forex

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/unytco/pricing-oracle/pkg/sources"
)

const twelveDataBaseURL = "https://api.twelvedata.com"

// TwelveDataEnvAPIKey is the environment variable holding the Twelve Data
// API key.
const TwelveDataEnvAPIKey = "TWELVE_DATA_API_KEY"

// TwelveDataSource fetches USD/XXX rates from the Twelve Data price API,
// one request per symbol. Requires an API key.
//
// The free tier cuts off mid-run once credits are spent; rates collected
// before the cutoff are returned as a partial result.
type TwelveDataSource struct {
	*sources.BaseSource

	baseURL string
	apiKey  string
}

// The price endpoint returns either {"price": "1.234"} or an error object
// with a message field.
type twelveDataPriceResponse struct {
	Price   string `json:"price"`
	Message string `json:"message"`
}

// NewTwelveDataFromConfig creates a new TwelveDataSource from config.
func NewTwelveDataFromConfig(config map[string]interface{}) (sources.ForexSource, error) {
	logger := sources.GetLoggerFromConfig(config)

	apiKey := sources.APIKeyFromConfig(config, TwelveDataEnvAPIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("%w: set %s", sources.ErrAPIKeyRequired, TwelveDataEnvAPIKey)
	}

	baseURL := twelveDataBaseURL
	if raw, ok := config["base_url"].(string); ok && raw != "" {
		baseURL = raw
	}

	return &TwelveDataSource{
		BaseSource: sources.NewBaseSource("twelve_data", sources.TimeoutFromConfig(config), logger),
		baseURL:    baseURL,
		apiKey:     apiKey,
	}, nil
}

// FetchRates fetches rates for the given ISO currency symbols.
func (s *TwelveDataSource) FetchRates(ctx context.Context, symbols []string) (map[string]float64, error) {
	rates := make(map[string]float64, len(symbols))

	for _, symbol := range symbols {
		if symbol == "USD" {
			rates[symbol] = 1.0
			continue
		}

		pair := "USD/" + symbol

		params := url.Values{}
		params.Set("symbol", pair)
		params.Set("apikey", s.apiKey)

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/price?"+params.Encode(), nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request for %s: %w", pair, err)
		}

		resp, err := s.Client().Do(req)
		if err != nil {
			return nil, fmt.Errorf("request failed for %s: %w", pair, err)
		}
		body, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read response for %s: %w", pair, err)
		}

		if resp.StatusCode != http.StatusOK {
			if isTwelveDataQuotaError(string(body)) {
				s.Logger().Warn("Quota reached, returning partial rates",
					"source", s.Name(), "pair", pair, "rates", len(rates))
				break
			}
			s.Logger().Warn("Rate fetch failed, symbol skipped",
				"source", s.Name(), "pair", pair, "status", resp.StatusCode)
			continue
		}

		var data twelveDataPriceResponse
		if err := json.Unmarshal(body, &data); err != nil {
			return nil, fmt.Errorf("parse failed for %s: %w", pair, err)
		}

		if data.Message != "" {
			if isTwelveDataQuotaError(data.Message) {
				s.Logger().Warn("Quota reached, returning partial rates",
					"source", s.Name(), "pair", pair, "rates", len(rates))
				break
			}
			s.Logger().Warn("Rate fetch failed, symbol skipped",
				"source", s.Name(), "pair", pair, "error", data.Message)
			continue
		}

		if data.Price == "" {
			s.Logger().Warn("Missing price, symbol skipped", "source", s.Name(), "pair", pair)
			continue
		}
		rate, err := strconv.ParseFloat(data.Price, 64)
		if err != nil {
			s.Logger().Warn("Invalid rate, symbol skipped",
				"source", s.Name(), "pair", pair, "value", data.Price)
			continue
		}

		rates[symbol] = rate
	}

	if len(rates) == 0 {
		return nil, fmt.Errorf("%w: %s", sources.ErrNoRates, s.Name())
	}

	return rates, nil
}

func isTwelveDataQuotaError(message string) bool {
	msg := strings.ToLower(message)
	return strings.Contains(msg, "run out of api credits") ||
		strings.Contains(msg, "current limit") ||
		strings.Contains(msg, "quota") ||
		strings.Contains(msg, "credits")
}
