package forex

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/unytco/pricing-oracle/pkg/sources"
)

const frankfurterBaseURL = "https://api.frankfurter.app"

// FrankfurterSource fetches USD/XXX rates from the Frankfurter API in a
// single bulk request (free, no API key, ECB reference rates).
// https://www.frankfurter.app/docs/
type FrankfurterSource struct {
	*sources.BaseSource

	baseURL string
}

type frankfurterResponse struct {
	Amount float64            `json:"amount"`
	Base   string             `json:"base"`
	Date   string             `json:"date"`
	Rates  map[string]float64 `json:"rates"`
}

// NewFrankfurterFromConfig creates a new FrankfurterSource from config.
func NewFrankfurterFromConfig(config map[string]interface{}) (sources.ForexSource, error) {
	logger := sources.GetLoggerFromConfig(config)

	baseURL := frankfurterBaseURL
	if raw, ok := config["base_url"].(string); ok && raw != "" {
		baseURL = raw
	}

	return &FrankfurterSource{
		BaseSource: sources.NewBaseSource("frankfurter", sources.TimeoutFromConfig(config), logger),
		baseURL:    baseURL,
	}, nil
}

// FetchRates fetches rates for the given ISO currency symbols. Rates are
// quoted from USD, so the response values are already units of foreign
// currency per USD. Symbols the API does not know are absent from the
// result.
func (s *FrankfurterSource) FetchRates(ctx context.Context, symbols []string) (map[string]float64, error) {
	rates := make(map[string]float64, len(symbols))

	foreign := make([]string, 0, len(symbols))
	for _, symbol := range symbols {
		if symbol == "USD" {
			rates[symbol] = 1.0
			continue
		}
		foreign = append(foreign, symbol)
	}

	if len(foreign) > 0 {
		reqURL := fmt.Sprintf("%s/latest?from=USD&to=%s", s.baseURL, strings.Join(foreign, ","))
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		var data frankfurterResponse
		if err := s.DoJSON(req, &data); err != nil {
			return nil, err
		}

		for symbol, rate := range data.Rates {
			rates[symbol] = rate
		}
	}

	if len(rates) == 0 {
		return nil, fmt.Errorf("%w: %s", sources.ErrNoRates, s.Name())
	}

	s.Logger().Debug("Fetched rates", "source", s.Name(), "count", len(rates))
	return rates, nil
}
