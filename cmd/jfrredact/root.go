package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	verbose bool
	jsonOut bool
	logFile string
)

var rootCmd = &cobra.Command{
	Use:   "jfrredact",
	Short: "Redact sensitive content from JFR recordings and text logs",
	Long: `jfrredact rewrites Java Flight Recorder recordings and companion text
logs (like HotSpot crash reports) so they can be shared: usernames,
hostnames, addresses and other sensitive values are discovered, redacted or
pseudonymized while the recording stays readable by standard JFR tooling.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output results as JSON")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write logs to this file (rotated) instead of stderr")
}

func printInfo(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format, args...)
}

func printVerbose(format string, args ...any) {
	if verbose {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
