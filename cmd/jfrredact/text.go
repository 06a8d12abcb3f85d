package main

import (
	"github.com/spf13/cobra"
)

func init() {
	cmd := newTextCmd()
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "YAML policy file (defaults apply when omitted)")
	cmd.Flags().StringVar(&decisionsPath, "decisions", "", "Replay persisted decisions from this YAML file")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output path (default: <input>.redacted)")
	rootCmd.AddCommand(cmd)
}

func newTextCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "text <log.txt> [more.txt...]",
		Short: "Redact UTF-8 text logs line by line",
		Long: `The text command runs the same discovery and redaction pipeline over
line-oriented text files such as HotSpot crash reports. Line endings are
preserved byte for byte.

Example:
  jfrredact text hs_err_pid1234.log
  jfrredact text -c policy.yaml -o clean.log hs_err_pid1234.log`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRedact(args, true)
		},
	}
}
