package main

import (
	"github.com/spf13/cobra"

	"github.com/vesla0x1/reentrancy-analyzer/internal/config"
	"github.com/vesla0x1/reentrancy-analyzer/internal/ui"
)

const version = "1.0.0"

var (
	flagVerbose bool
	flagNoColor bool
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "reentrancy-analyzer",
		Short:   "Detects reentrancy patterns in compiled Solidity contracts",
		Version: version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			ui.NoColor(flagNoColor)
			ui.PrintBanner(version)
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable colored output")

	root.AddCommand(newAnalyzeCmd())
	return root
}

// loadConfig surfaces config load failures as a cobra-friendly error rather
// than panicking; defaults still apply if nothing overrides them.
func loadConfig() (*config.Config, error) {
	return config.Load()
}
