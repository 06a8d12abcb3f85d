package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/parttimenerd/jfr-redact-sub000/internal/reader"
)

func init() {
	rootCmd.AddCommand(newInfoCmd())
}

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <recording.jfr>",
		Short: "Show chunk, type and event statistics of a recording",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(args[0])
		},
	}
}

type infoReport struct {
	Path       string           `json:"path"`
	Chunks     int              `json:"chunks"`
	Types      int              `json:"types"`
	Events     int64            `json:"events"`
	EventTypes map[string]int64 `json:"event_types"`
}

func runInfo(path string) error {
	rec, err := reader.Open(path)
	if err != nil {
		return err
	}
	defer rec.Close()

	report := infoReport{Path: path, Chunks: len(rec.Chunks), EventTypes: map[string]int64{}}
	for _, ch := range rec.Chunks {
		report.Types += len(ch.Types)
	}
	cur := rec.Events()
	for {
		ev, ok, err := cur.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		report.Events++
		report.EventTypes[ev.Type.Name]++
	}

	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	fmt.Printf("Recording: %s\n", path)
	fmt.Printf("  Chunks: %d\n", report.Chunks)
	fmt.Printf("  Types:  %d\n", report.Types)
	fmt.Printf("  Events: %d\n", report.Events)
	names := make([]string, 0, len(report.EventTypes))
	for n := range report.EventTypes {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool {
		if report.EventTypes[names[i]] != report.EventTypes[names[j]] {
			return report.EventTypes[names[i]] > report.EventTypes[names[j]]
		}
		return names[i] < names[j]
	})
	for _, n := range names {
		fmt.Printf("    %-40s %d\n", n, report.EventTypes[n])
	}
	return nil
}
