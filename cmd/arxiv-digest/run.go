package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/arxiv-digest/internal/arxiv"
	"github.com/pdiddy/arxiv-digest/internal/dates"
	"github.com/pdiddy/arxiv-digest/internal/enrich"
	"github.com/pdiddy/arxiv-digest/internal/pdftext"
	"github.com/pdiddy/arxiv-digest/internal/pipeline"
	"github.com/pdiddy/arxiv-digest/internal/report"
	"github.com/pdiddy/arxiv-digest/internal/store"
)

// aiTimeout bounds a single model API call.
const aiTimeout = 2 * time.Minute

var runCmd = &cobra.Command{
	Use:   "run [date | start:end]",
	Short: "Fetch, enrich and report the papers of a day or range",
	Long: `Run executes the full digest for one day (YYYY-MM-DD) or an inclusive range
(YYYY-MM-DD:YYYY-MM-DD); the default is yesterday (UTC).

Papers are fetched once for all configured categories, filtered by the day of
their latest update, enriched by the configured model through a bounded
worker pool, cached, and the interested ones are written into the weekly
report under the daily directory. Papers already in the cache are not sent
to the model again.`,
	Args: cobra.MaximumNArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return bindFlags(cmd, map[string]string{
			"enrich.workers":   "workers",
			"enrich.provider":  "provider",
			"enrich.model":     "model",
			"enrich.extractor": "extractor",
			"fetch.categories": "categories",
			"report.daily_dir": "daily-dir",
			"store.path":       "db",
			"store.disabled":   "no-cache",
			"max_papers":       "max-papers",
		})
	},
	RunE: runDigest,
}

func init() {
	runCmd.Flags().Int("workers", 10, "number of papers enriched concurrently")
	runCmd.Flags().Int("max-papers", 0, "process at most this many papers per day (0 = all)")
	runCmd.Flags().StringSlice("categories", nil, "arXiv categories to fetch (default cs.DC,cs.AI,cs.LG)")
	runCmd.Flags().String("provider", "deepseek", "model provider: deepseek, openai, anthropic")
	runCmd.Flags().String("model", "", "model identifier (default depends on provider)")
	runCmd.Flags().String("extractor", "native", "first-page extractor: native or pdftotext")
	runCmd.Flags().String("daily-dir", "docs/daily", "directory of weekly reports")
	runCmd.Flags().String("db", "data/digest.db", "enrichment cache database")
	runCmd.Flags().Bool("no-cache", false, "enrich every paper even if cached")

	rootCmd.AddCommand(runCmd)
}

// targetArg parses the optional date argument, defaulting to yesterday.
func targetArg(args []string) (dates.Target, error) {
	if len(args) == 0 {
		return dates.ParseTarget(dates.Yesterday(time.Now()))
	}
	return dates.ParseTarget(args[0])
}

func runDigest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	target, err := targetArg(args)
	if err != nil {
		return err
	}

	cfg := loadPipelineConfig()
	if cfg.Enrich.APIKey == "" {
		return missingKeyError(cfg.Enrich.Provider)
	}

	classifier, err := enrich.NewClassifier(cfg.Enrich.AIConfig, &http.Client{Timeout: aiTimeout})
	if err != nil {
		return err
	}
	extractor, err := pdftext.NewExtractor(ctx, cfg.Enrich.Extractor)
	if err != nil {
		return err
	}

	logger := slog.Default()
	p := &pipeline.Pipeline{
		Lister:   &arxiv.Client{HTTP: &http.Client{Timeout: cfg.Fetch.Timeout}},
		Enricher: enrich.NewEnricher(classifier, extractor, cfg.Enrich, cfg.Fetch.UserAgent, logger),
		Reporter: report.NewWriter(cfg.Report.DailyDir, logger),
		Config:   cfg,
		Logger:   logger,
		Out:      cmd.OutOrStdout(),
	}

	if !cfg.Store.Disabled {
		st, err := store.NewStore(cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close()
		logger.Debug("using enrichment cache", "path", st.Path())
		p.Cache = st
	}

	fmt.Fprintf(os.Stderr, "Processing %s with %s (%d workers)\n", target, cfg.Enrich.Provider, cfg.Enrich.Workers)
	_, err = p.Run(ctx, target)
	return err
}
