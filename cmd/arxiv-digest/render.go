package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/pdiddy/arxiv-digest/internal/dates"
	"github.com/pdiddy/arxiv-digest/internal/report"
	"github.com/pdiddy/arxiv-digest/internal/store"
)

var renderCmd = &cobra.Command{
	Use:   "render <date | start:end>",
	Short: "Rebuild report sections from the cache",
	Long: `Render rewrites the date sections of the weekly reports from the
enrichment cache, without calling arXiv or the model. Use it after editing
the report format or to restore a section.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return bindFlags(cmd, map[string]string{
			"report.daily_dir": "daily-dir",
			"store.path":       "db",
		})
	},
	RunE: runRender,
}

func init() {
	renderCmd.Flags().String("daily-dir", "docs/daily", "directory of weekly reports")
	renderCmd.Flags().String("db", "data/digest.db", "enrichment cache database")

	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	target, err := dates.ParseTarget(args[0])
	if err != nil {
		return err
	}
	cfg := loadPipelineConfig()

	st, err := store.NewStore(cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	w := report.NewWriter(cfg.Report.DailyDir, slog.Default())
	out := cmd.OutOrStdout()
	for _, day := range target.Days() {
		date := dates.Format(day)
		papers, err := st.ListByDay(ctx, date)
		if err != nil {
			return err
		}
		if len(papers) == 0 {
			fmt.Fprintf(out, "%s: nothing cached\n", date)
			continue
		}

		res, err := w.Update(ctx, day, papers)
		if err != nil {
			return fmt.Errorf("rendering %s: %w", date, err)
		}
		if res.Path == "" {
			fmt.Fprintf(out, "%s: no interested papers\n", date)
			continue
		}
		fmt.Fprintf(out, "%s: %d entries written to %s\n", date, res.Entries, res.Path)
	}
	return nil
}
