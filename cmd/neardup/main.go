// Command neardup finds near-duplicate documents in a JSONL corpus.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "neardup",
	Short: "Near-duplicate detection for text corpora via LSH",
	Long: `neardup detects near-duplicate documents in a corpus without comparing
all pairs, using random-hyperplane locality-sensitive hashing over
bag-of-words vectors.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
