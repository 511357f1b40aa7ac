package cli

import (
	"github.com/spf13/cobra"

	"github.com/unytco/pricing-oracle/pkg/app"
)

var (
	runOutput string
	runUnit   uint32
	runSubmit bool
	runDryRun bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Fetch prices, build the ConversionTable, and print or submit it",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.RunOptions{
			Output: runOutput,
			Submit: runSubmit,
			DryRun: runDryRun,
		}
		if cmd.Flags().Changed("unit") {
			unit := runUnit
			opts.Unit = &unit
		}

		return app.New(getConfig(), getLogger()).Run(cmd.Context(), opts)
	},
}

func init() {
	runCmd.Flags().StringVarP(&runOutput, "output", "o", "table", `Output format: "table" or "json"`)
	runCmd.Flags().Uint32VarP(&runUnit, "unit", "u", 0, "Only fetch for a specific unit index")
	runCmd.Flags().BoolVar(&runSubmit, "submit", false, "Submit the ConversionTable to the ledger")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "Build and print the ConversionTable without connecting to the ledger")
	runCmd.MarkFlagsMutuallyExclusive("submit", "dry-run")
}
