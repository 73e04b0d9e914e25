package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ludo-technologies/docsim/internal/version"
	"github.com/ludo-technologies/docsim/service"
)

// NewRootCmd creates the docsim root command with all subcommands attached
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "docsim",
		Short: "Near-duplicate document detection with MinHash and LSH",
		Long: `docsim finds near-duplicate documents in a text corpus.

Every document is reduced to word n-gram shingles, summarised by a MinHash
signature and indexed with locality-sensitive hashing. Candidate pairs that
collide in at least one band are verified with exact Jaccard similarity, so
reported similarities are never estimates.

Commands:
  • query  - documents similar to one document
  • pairs  - every near-duplicate pair in the corpus
  • index  - build the index and save it as a snapshot`,
		Version:       version.Short(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "Configuration file (toml, yaml or json)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "", "Log format: text, json")

	rootCmd.AddCommand(NewQueryCmd())
	rootCmd.AddCommand(NewPairsCmd())
	rootCmd.AddCommand(NewIndexCmd())
	rootCmd.AddCommand(NewInitCmd())
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

// reportError prints err with its category and recovery suggestions
func reportError(w io.Writer, err error) {
	categorizer := service.NewErrorCategorizer()
	categorized := categorizer.Categorize(err)
	fmt.Fprintf(w, "Error: %v\n", err)
	if categorized == nil {
		return
	}
	fmt.Fprintf(w, "\n%s\n", categorized.Category)
	for _, suggestion := range categorizer.GetRecoverySuggestions(categorized.Category) {
		fmt.Fprintf(w, "  • %s\n", suggestion)
	}
}

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		reportError(os.Stderr, err)
		os.Exit(1)
	}
}
