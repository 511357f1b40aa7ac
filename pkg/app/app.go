// Package app orchestrates one oracle pass: fetch quotes and forex rates,
// aggregate and cross-check them, resolve proxy units, and emit or submit
// the resulting conversion table.
package app

import (
	"context"
	"fmt"
	"os"

	"github.com/oklog/ulid/v2"

	"github.com/unytco/pricing-oracle/pkg/aggregator"
	"github.com/unytco/pricing-oracle/pkg/config"
	"github.com/unytco/pricing-oracle/pkg/ledger"
	"github.com/unytco/pricing-oracle/pkg/logging"
	"github.com/unytco/pricing-oracle/pkg/table"
)

// RunOptions selects what a run covers and what happens to its results.
// Submit and DryRun are mutually exclusive; the CLI enforces that before
// Run is called.
type RunOptions struct {
	// Output picks the default emission: "table" or "json".
	Output string
	// Unit restricts fetching to a single unit index when set.
	Unit *uint32
	// Submit publishes the conversion table to the ledger.
	Submit bool
	// DryRun prints the conversion table without touching the ledger.
	DryRun bool
}

// App wires configuration and logging into the run pipeline.
type App struct {
	cfg    *config.Config
	logger *logging.Logger
}

// New creates an App.
func New(cfg *config.Config, logger *logging.Logger) *App {
	return &App{cfg: cfg, logger: logger}
}

// Run executes one full oracle pass.
//
// Price references are always fetched, even under a unit filter, so proxy
// units can resolve against them. Real units are fetched and aggregated in
// declaration order; proxies resolve afterwards against everything
// aggregated so far, so a proxy declared after its target sees it.
func (a *App) Run(ctx context.Context, opts RunOptions) error {
	logger := a.logger.With("run_id", ulid.Make().String())
	agg := aggregator.New(logger)

	logger.Info("Loaded configuration",
		"units", len(a.cfg.Units),
		"price_references", len(a.cfg.References))

	tokenSources := a.buildTokenSources(logger)
	if len(tokenSources) == 0 {
		return ErrNoTokenSources
	}
	logger.Info("Registered token sources", "count", len(tokenSources))

	references := make(map[string]aggregator.Result, len(a.cfg.References))
	for _, ref := range a.cfg.References {
		logger.Info("Fetching price reference", "reference", ref.ID, "name", ref.Name)
		quotes := fetchQuotes(ctx, tokenSources, referenceAsset(ref), logger)
		references[ref.ID] = agg.Aggregate(0, quotes)
	}

	results := make([]aggregator.Result, 0, len(a.cfg.Units))
	for _, unit := range filterUnits(a.cfg.RealUnits(), opts.Unit) {
		logger.Info("Fetching prices for unit", "unit", unit.UnitIndex, "name", unit.Name)
		quotes := fetchQuotes(ctx, tokenSources, unitAsset(unit), logger)
		results = append(results, agg.Aggregate(unit.UnitIndex, quotes))
	}

	var forexRates []aggregator.ForexRate
	if len(a.cfg.Forex.Symbols) > 0 {
		forexSources := a.buildForexSources(logger)
		if len(forexSources) == 0 {
			logger.Warn("No forex sources available, skipping forex rates")
		} else {
			rateResults := fetchForexRates(ctx, forexSources, a.cfg.Forex.Symbols)
			forexRates = agg.AggregateForexRates(a.cfg.Forex.Symbols, rateResults)
		}
	}

	results = agg.ResolveProxies(filterUnits(a.cfg.ProxyUnits(), opts.Unit), results, references)
	aggregator.SortByUnitIndex(results)

	return a.emit(ctx, opts, results, forexRates, logger)
}

// emit routes aggregated results to the selected destination. The dry-run
// and plain JSON paths never touch the ledger, so their tables carry the
// zero global definition sentinel.
func (a *App) emit(ctx context.Context, opts RunOptions, results []aggregator.Result, forexRates []aggregator.ForexRate, logger *logging.Logger) error {
	if opts.DryRun {
		t, err := table.Build(results, forexRates, nil, logger)
		if err != nil {
			return err
		}
		fmt.Println("--- Dry-run: ConversionTable that would be submitted ---")
		return table.PrintJSON(t)
	}

	if opts.Submit {
		return a.submit(ctx, results, forexRates, logger)
	}

	if opts.Output == "json" {
		t, err := table.Build(results, forexRates, nil, logger)
		if err != nil {
			return err
		}
		return table.PrintJSON(t)
	}

	table.PrintResults(results)
	return nil
}

// submit connects to the conductor, stamps the table with the current
// global definition, and publishes it. A missing global definition fails
// the run rather than silently publishing the zero sentinel.
func (a *App) submit(ctx context.Context, results []aggregator.Result, forexRates []aggregator.ForexRate, logger *logging.Logger) error {
	signingKey, err := ledger.ParseSigningKey(os.Getenv(a.cfg.Ledger.SigningKeyEnv))
	if err != nil {
		return fmt.Errorf("%s: %w", a.cfg.Ledger.SigningKeyEnv, err)
	}

	client, err := ledger.Connect(ctx, ledger.Config{
		Host:       a.cfg.Ledger.Host,
		AdminPort:  a.cfg.Ledger.AdminPort,
		AppPort:    a.cfg.Ledger.AppPort,
		AppID:      a.cfg.Ledger.AppID,
		RoleName:   a.cfg.Ledger.RoleName,
		ZomeName:   a.cfg.Ledger.ZomeName,
		Timeout:    a.cfg.Ledger.Timeout.ToDuration(),
		SigningKey: signingKey,
	}, logger.ZerologLogger())
	if err != nil {
		return err
	}
	defer client.Close()

	globalDef, err := client.FetchGlobalDefinition(ctx)
	if err != nil {
		return fmt.Errorf("fetching current global definition: %w", err)
	}

	t, err := table.Build(results, forexRates, globalDef, logger)
	if err != nil {
		return err
	}
	fmt.Println("--- ConversionTable to submit ---")
	if err := table.PrintJSON(t); err != nil {
		return err
	}

	hash, err := client.SubmitConversionTable(ctx, t)
	if err != nil {
		return fmt.Errorf("submitting conversion table: %w", err)
	}
	fmt.Printf("Submitted ConversionTable: %s\n", hash)
	return nil
}
