// portflow — command line tool to run, validate, inspect, and store
// dataflow definitions.
//
// Usage:
//
//	portflow <command> [flags] [args]
//
// Commands:
//
//	run       Execute a flow file
//	validate  Check a flow file without running it
//	inspect   Print the structure of a flow file
//	library   Manage the local flow library
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/portflow/portflow/internal/infrastructure/telemetry"
)

// version is set through ldflags at build time.
var version = "dev"

func main() {
	// Optional .env for LOG_LEVEL, LOG_FORMAT, PORTFLOW_* settings.
	_ = godotenv.Load()
	telemetry.SetupLogger()

	rootCmd := &cobra.Command{
		Use:           "portflow",
		Short:         "portflow — dataflow execution tool",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newRunCmd(),
		newValidateCmd(),
		newInspectCmd(),
		newLibraryCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
