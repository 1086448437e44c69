package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/arxiv-digest/internal/arxiv"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [date | start:end]",
	Short: "List the papers of a day or range without enriching them",
	Long: `Fetch queries the arXiv API for every configured category, applies the
keyword rules and cross-category deduplication, and prints the papers whose
latest update falls within the target (default yesterday, UTC).`,
	Args: cobra.MaximumNArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return bindFlags(cmd, map[string]string{
			"fetch.categories":  "categories",
			"fetch.max_results": "max-results",
		})
	},
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().StringSlice("categories", nil, "arXiv categories to fetch (default cs.DC,cs.AI,cs.LG)")
	fetchCmd.Flags().Int("max-results", 2000, "maximum entries requested per category")
	fetchCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	target, err := targetArg(args)
	if err != nil {
		return err
	}
	cfg := loadPipelineConfig()

	client := &arxiv.Client{HTTP: &http.Client{Timeout: cfg.Fetch.Timeout}}
	res, err := arxiv.Fetch(cmd.Context(), client, cfg.Fetch, slog.Default())
	if err != nil {
		return err
	}
	papers := arxiv.FilterByTarget(res.Papers, target)

	fmt.Fprintf(os.Stderr, "%s: %d fetched, %d in range, %d duplicates, %d rejected by keyword rules\n",
		target, len(res.Papers), len(papers), res.Duplicates, res.Rejected)

	asJSON, _ := cmd.Flags().GetBool("json")
	if asJSON {
		return arxiv.FormatJSON(papers, cmd.OutOrStdout())
	}
	arxiv.FormatTable(papers, cmd.OutOrStdout())
	return nil
}
