package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/hupe1980/neardup"
	"github.com/hupe1980/neardup/corpus"
)

var runFlags struct {
	bands      int
	rows       int
	threshold  float64
	seed       int64
	workers    int
	bruteForce bool
	showTerms  bool
	verbose    bool
}

var runCmd = &cobra.Command{
	Use:   "run <corpus.jsonl[.gz|.zst|.lz4]>",
	Short: "Detect near-duplicates in a JSONL corpus",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		records, err := corpus.ReadRecords(args[0])
		if err != nil {
			return fmt.Errorf("read corpus: %w", err)
		}

		m, vocab, err := corpus.Build(records)
		if err != nil {
			return fmt.Errorf("build matrix: %w", err)
		}

		cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()

		fmt.Printf("%s\n", cyan("=== neardup ==="))
		fmt.Printf("documents: %d  vocabulary: %d  bands: %d  rows: %d  threshold: %g\n\n",
			m.Rows(), vocab.Size(), runFlags.bands, runFlags.rows, runFlags.threshold)

		opts := []neardup.Option{
			neardup.WithBands(runFlags.bands),
			neardup.WithRowsPerBand(runFlags.rows),
			neardup.WithThreshold(runFlags.threshold),
			neardup.WithSeed(runFlags.seed),
			neardup.WithWorkers(runFlags.workers),
		}
		if runFlags.verbose {
			opts = append(opts, neardup.WithLogger(neardup.NewTextLogger(slog.LevelDebug)))
		}

		start := time.Now()
		result, err := neardup.FindNearDuplicates(ctx, m, opts...)
		if err != nil {
			return err
		}
		lshDur := time.Since(start)

		yellow := color.New(color.FgYellow).SprintFunc()
		green := color.New(color.FgGreen).SprintFunc()

		fmt.Printf("%s\n", yellow("Duplicates:"))
		if len(result.Records) == 0 {
			fmt.Printf("  %s\n", gray("none found"))
		}
		for _, rec := range result.Records {
			fmt.Printf("  %s %s  distance %.6f\n",
				green(displayID(records, int(rec.ID1))),
				green(displayID(records, int(rec.ID2))),
				rec.Distance,
			)
			if runFlags.showTerms {
				shared := corpus.SharedTerms(m, int(rec.ID1), int(rec.ID2), vocab)
				fmt.Printf("    %s %s\n", gray("shared:"), strings.Join(shared, " "))
			}
		}
		fmt.Printf("\n%d duplicates, %d raw candidates, %s\n",
			len(result.Records), result.RawCandidateCount, lshDur.Round(time.Millisecond))

		if runFlags.bruteForce {
			start = time.Now()
			exact, err := neardup.BruteForce(ctx, m, runFlags.threshold)
			if err != nil {
				return err
			}
			bfDur := time.Since(start)

			recall := 1.0
			if len(exact) > 0 {
				recall = float64(len(result.Records)) / float64(len(exact))
			}
			fmt.Printf("brute force: %d duplicates, %s, recall %.3f\n",
				len(exact), bfDur.Round(time.Millisecond), recall)
		}

		return nil
	},
}

func displayID(records []corpus.Record, i int) string {
	if records[i].ID != "" {
		return records[i].ID
	}
	return fmt.Sprintf("#%d", i)
}

func init() {
	runCmd.Flags().IntVarP(&runFlags.bands, "bands", "b", 8, "number of signature bands")
	runCmd.Flags().IntVarP(&runFlags.rows, "rows", "r", 16, "sign bits per band")
	runCmd.Flags().Float64VarP(&runFlags.threshold, "threshold", "d", 0.1, "maximum cosine distance")
	runCmd.Flags().Int64Var(&runFlags.seed, "seed", 1, "projection seed")
	runCmd.Flags().IntVar(&runFlags.workers, "workers", 0, "worker count (0 = GOMAXPROCS)")
	runCmd.Flags().BoolVar(&runFlags.bruteForce, "brute-force", false, "also run the exact O(N^2) baseline and report recall")
	runCmd.Flags().BoolVar(&runFlags.showTerms, "shared-terms", false, "print the terms each duplicate pair shares")
	runCmd.Flags().BoolVarP(&runFlags.verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.AddCommand(runCmd)
}
