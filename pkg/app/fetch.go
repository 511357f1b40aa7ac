package app

import (
	"context"
	"sync"
	"time"

	"github.com/unytco/pricing-oracle/pkg/aggregator"
	"github.com/unytco/pricing-oracle/pkg/logging"
	"github.com/unytco/pricing-oracle/pkg/metrics"
	"github.com/unytco/pricing-oracle/pkg/sources"
)

// fetchQuotes queries every token source for one asset concurrently and
// returns the successful quotes in source order. Failures are dropped with
// a warning; the aggregator decides what a thin quorum means.
func fetchQuotes(ctx context.Context, srcs []sources.TokenSource, asset sources.Asset, logger *logging.Logger) []sources.Quote {
	type slot struct {
		quote sources.Quote
		err   error
	}
	slots := make([]slot, len(srcs))

	var wg sync.WaitGroup
	for i, src := range srcs {
		wg.Add(1)
		go func(i int, src sources.TokenSource) {
			defer wg.Done()
			start := time.Now()
			quote, err := src.FetchQuote(ctx, asset)

			status := "ok"
			if err != nil {
				status = "error"
			}
			metrics.RecordSourceFetch(src.Name(), status, time.Since(start))
			slots[i] = slot{quote: quote, err: err}
		}(i, src)
	}
	wg.Wait()

	quotes := make([]sources.Quote, 0, len(srcs))
	for i, src := range srcs {
		if slots[i].err != nil {
			logger.Warn("Source fetch failed",
				"source", src.Name(), "asset", asset.Name, "error", slots[i].err)
			continue
		}
		logger.Info("Source quote",
			"source", src.Name(), "asset", asset.Name, "price_usd", slots[i].quote.PriceUSD)
		quotes = append(quotes, slots[i].quote)
	}
	return quotes
}

// fetchForexRates queries every forex source concurrently. Results keep
// source order; errors stay attached so the aggregator can report them.
func fetchForexRates(ctx context.Context, srcs []sources.ForexSource, symbols []string) []aggregator.SourceRates {
	results := make([]aggregator.SourceRates, len(srcs))

	var wg sync.WaitGroup
	for i, src := range srcs {
		wg.Add(1)
		go func(i int, src sources.ForexSource) {
			defer wg.Done()
			start := time.Now()
			rates, err := src.FetchRates(ctx, symbols)

			status := "ok"
			if err != nil {
				status = "error"
			}
			metrics.RecordSourceFetch(src.Name(), status, time.Since(start))
			results[i] = aggregator.SourceRates{Source: src.Name(), Rates: rates, Err: err}
		}(i, src)
	}
	wg.Wait()
	return results
}
