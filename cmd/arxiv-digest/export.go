package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/arxiv-digest/internal/dates"
	"github.com/pdiddy/arxiv-digest/internal/store"
)

var exportCmd = &cobra.Command{
	Use:   "export [date | start:end]",
	Short: "Export cached enrichments as YAML or JSON",
	Long: `Export writes the cached enrichments for the target (default: everything)
to stdout or a file. Filters select interested papers or a single tag.
With --stats only a summary of the cache is printed.`,
	Args: cobra.MaximumNArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return bindFlags(cmd, map[string]string{"store.path": "db"})
	},
	RunE: runExport,
}

func init() {
	exportCmd.Flags().String("db", "data/digest.db", "enrichment cache database")
	exportCmd.Flags().String("format", "yaml", "output format: yaml or json")
	exportCmd.Flags().StringP("output", "o", "", "write to this file instead of stdout")
	exportCmd.Flags().Bool("interested", false, "only papers marked interested")
	exportCmd.Flags().String("tag", "", "only papers carrying this tag")
	exportCmd.Flags().Int("limit", 0, "maximum number of papers (0 = all)")
	exportCmd.Flags().Bool("stats", false, "print cache statistics instead of papers")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := loadPipelineConfig()

	st, err := store.NewStore(cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	if stats, _ := cmd.Flags().GetBool("stats"); stats {
		s, err := st.Stats(ctx)
		if err != nil {
			return err
		}
		return yaml.NewEncoder(cmd.OutOrStdout()).Encode(s)
	}

	var opts store.QueryOptions
	if len(args) == 1 {
		target, err := dates.ParseTarget(args[0])
		if err != nil {
			return err
		}
		opts.From = dates.Format(target.Start)
		opts.To = dates.Format(target.End)
	}
	opts.InterestedOnly, _ = cmd.Flags().GetBool("interested")
	opts.Tag, _ = cmd.Flags().GetString("tag")
	opts.Limit, _ = cmd.Flags().GetInt("limit")

	var w io.Writer = cmd.OutOrStdout()
	if path, _ := cmd.Flags().GetString("output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
		defer f.Close()
		w = f
	}

	format, _ := cmd.Flags().GetString("format")
	var n int
	switch format {
	case "yaml", "yml":
		n, err = st.ExportYAML(ctx, w, opts)
	case "json":
		n, err = st.ExportJSON(ctx, w, opts)
	default:
		return fmt.Errorf("unknown format %q: use yaml or json", format)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "exported %d papers from %s\n", n, st.Path())
	return nil
}
