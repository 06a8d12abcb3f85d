package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	pkgredact "github.com/parttimenerd/jfr-redact-sub000/pkg/redact"
	"github.com/parttimenerd/jfr-redact-sub000/redact"
)

var (
	configPath    string
	decisionsPath string
	outputPath    string
)

func init() {
	cmd := newRedactCmd()
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "YAML policy file (defaults apply when omitted)")
	cmd.Flags().StringVar(&decisionsPath, "decisions", "", "Replay persisted decisions from this YAML file")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output path (default: <input>.redacted.jfr)")
	rootCmd.AddCommand(cmd)
}

func newRedactCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "redact <recording.jfr> [more.jfr...]",
		Short: "Redact one or more JFR recordings",
		Long: `The redact command transcodes JFR recordings through the discovery and
redaction pipeline and writes new recordings that remain readable by
standard JFR tooling.

Example:
  jfrredact redact recording.jfr
  jfrredact redact -c policy.yaml -o clean.jfr recording.jfr
  jfrredact redact --decisions decisions.yaml recording.jfr`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRedact(args, false)
		},
	}
}

func runRedact(args []string, text bool) error {
	cfg, err := loadConfigFlag()
	if err != nil {
		return err
	}
	if logFile == "" {
		logFile = cfg.General.LogFile
	}
	log := buildLogger(cfg.General.LogLevel)
	defer func() { _ = log.Sync() }()

	if outputPath != "" && len(args) > 1 {
		return fmt.Errorf("--output cannot be combined with multiple inputs")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p := pkgredact.NewProcessor(pkgredact.Options{
		Config:       cfg,
		DecisionFile: decisionsPath,
		Log:          log,
	})
	for i, in := range args {
		if i > 0 {
			// Discovered values do not leak between independent inputs.
			p.Reset()
		}
		out := outputPath
		if out == "" {
			out = defaultOutput(in, text)
		}
		printVerbose("Redacting %s -> %s\n", in, out)
		var err error
		if text {
			err = p.ProcessText(ctx, in, out)
		} else {
			err = p.ProcessRecording(ctx, in, out)
		}
		if err != nil {
			return err
		}
		printInfo("Wrote %s\n", out)
	}
	return reportStats(p.Stats())
}

func defaultOutput(in string, text bool) string {
	if text {
		return in + ".redacted"
	}
	return in + ".redacted.jfr"
}

func loadConfigFlag() (*pkgredact.Config, error) {
	if configPath == "" {
		return pkgredact.DefaultConfig(), nil
	}
	return pkgredact.LoadConfig(configPath)
}

func reportStats(s redact.Snapshot) error {
	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	}
	printInfo("\nEvents: %d processed, %d written, %d removed; %d fields redacted\n",
		s.EventsProcessed, s.EventsWritten, s.EventsRemoved, s.FieldsRedacted)
	if verbose {
		for _, e := range s.ByCategory {
			printInfo("  %-20s %d\n", e.Key, e.Count)
		}
		for _, e := range s.RemovedByType {
			printInfo("  removed %-20s %d\n", e.Key, e.Count)
		}
	}
	return nil
}
