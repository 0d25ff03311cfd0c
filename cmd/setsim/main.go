package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ludo-technologies/setsim/internal/logging"
	"github.com/ludo-technologies/setsim/internal/version"
)

// globalOptions holds the persistent flags shared by every subcommand
type globalOptions struct {
	verbose bool
	quiet   bool
	logFile string
}

var globals globalOptions

var rootCmd = &cobra.Command{
	Use:   "setsim",
	Short: "Approximate Jaccard similarity of labeled integer sets",
	Long: `setsim estimates the Jaccard similarity between many labeled sets of
integers using MinHash signatures, and reports every pair of sets whose
estimated distance (1 - similarity) is within a threshold.

Datasets can be JSON, YAML or TOML objects mapping a label to its elements,
CSV files of label,element rows, or directories of files holding
whitespace-separated integers.`,
	Version:           version.Short(),
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupLogging,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&globals.verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&globals.quiet, "quiet", "q", false, "Only log errors")
	rootCmd.PersistentFlags().StringVar(&globals.logFile, "log-file", "", "Also write JSON logs to this file (rotated)")

	rootCmd.AddCommand(NewPairsCmd())
	rootCmd.AddCommand(NewMatrixCmd())
	rootCmd.AddCommand(NewInitCmd())
	rootCmd.AddCommand(NewVersionCmd())
}

func setupLogging(cmd *cobra.Command, args []string) error {
	return logging.Setup(logging.Options{
		Verbose: globals.verbose,
		Quiet:   globals.quiet,
		Console: cmd.ErrOrStderr(),
		File:    globals.logFile,
	})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		printError(rootCmd.ErrOrStderr(), err)
		os.Exit(1)
	}
}
