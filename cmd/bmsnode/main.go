// bmsnode is the firmware core's desktop-host analogue: a single binary
// running the INIT/PROCESSING/CONFIG state machine, the HTTP dashboard,
// and the demo battery adapter, for development and integration testing
// away from real LTC6804 hardware.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/salmatx/bmsnode/internal/logging"
)

var version = "0.1.0"

func main() {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:     "bmsnode",
		Short:   "Battery management telemetry node",
		Version: version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logging.SetLevel(slog.LevelDebug)
			}
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	runCmd := newRunCmd()
	rootCmd.RunE = runCmd.RunE
	rootCmd.Flags().AddFlagSet(runCmd.Flags())
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(newValidateConfigCmd())
	rootCmd.AddCommand(newDemoAdapterCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
