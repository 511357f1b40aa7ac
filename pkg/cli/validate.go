package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration and print a summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfig()

		fmt.Fprintf(cmd.OutOrStdout(),
			"Configuration OK: %d unit(s) (%d by proxy), %d price reference(s), %d token source(s), %d forex source(s), %d forex symbol(s)\n",
			len(cfg.Units),
			len(cfg.ProxyUnits()),
			len(cfg.References),
			len(cfg.Sources.Token),
			len(cfg.Sources.Forex),
			len(cfg.Forex.Symbols))
		return nil
	},
}
