package table

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/unytco/pricing-oracle/pkg/aggregator"
)

// FprintResults writes a fixed-width summary of the aggregated results.
// Absent optional values print as a dash placeholder.
func FprintResults(w io.Writer, results []aggregator.Result) {
	fmt.Fprintf(w, "\n%-8s %-12s %-16s %-14s %-14s %-8s %s\n",
		"Index", "Name", "Price (USD)", "Volume 24h", "Change 24h%", "Valid", "Sources")
	fmt.Fprintln(w, strings.Repeat("-", 90))

	for _, r := range results {
		vol := "—"
		if r.Volume24h != nil {
			vol = fmt.Sprintf("%.2f", *r.Volume24h)
		}
		change := "—"
		if r.PriceChange24h != nil {
			change = fmt.Sprintf("%+.4f%%", *r.PriceChange24h)
		}
		valid := "yes"
		if !r.Valid {
			valid = "NO"
		}
		fmt.Fprintf(w, "%-8d %-12s %-16.8f %-14s %-14s %-8s %s\n",
			r.UnitIndex, r.Name, r.AvgPriceUSD, vol, change, valid,
			strings.Join(r.Sources, ", "))
	}
	fmt.Fprintln(w)
}

// PrintResults writes the results summary to stdout.
func PrintResults(results []aggregator.Result) {
	FprintResults(os.Stdout, results)
}

// FprintJSON writes the conversion table as indented JSON.
func FprintJSON(w io.Writer, t *ConversionTable) error {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding conversion table: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// PrintJSON writes the conversion table to stdout.
func PrintJSON(t *ConversionTable) error {
	return FprintJSON(os.Stdout, t)
}
