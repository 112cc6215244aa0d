package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"datascope/adapters/charts"
	"datascope/adapters/llm"
	"datascope/adapters/loader"
	"datascope/app"
	"datascope/domain/render"
	"datascope/internal"
	statsengine "datascope/internal/analysis"
	"datascope/internal/config"
	"datascope/internal/preview"
	"datascope/internal/testkit"
	"datascope/ports"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := newRootCmd()
	rootCmd.AddCommand(
		newSampleCmd(),
		newServeCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var outputDir string
	var noCharts bool
	var noAI bool

	cmd := &cobra.Command{
		Use:   "datascope [file]",
		Short: "Analyze a tabular dataset and build an HTML report",
		Long: `datascope loads a CSV, TSV, Excel or JSON file, computes summary
statistics and correlations, renders a chart catalogue, and assembles a
self-contained HTML report next to the charts.

Set OPENAI_API_KEY to add a plain-language narrative to the report.

Example: datascope orders.csv -o report_out`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return runAnalyze(cmd, path, outputDir, noCharts, noAI)
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "output directory (default from OUTPUT_DIR)")
	cmd.Flags().BoolVar(&noCharts, "no-charts", false, "skip chart rendering")
	cmd.Flags().BoolVar(&noAI, "no-ai", false, "skip the narrative even when a key is configured")

	return cmd
}

func runAnalyze(cmd *cobra.Command, path, outputDir string, noCharts, noAI bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if noCharts {
		cfg.Charts.Enabled = false
	}
	if noAI {
		cfg.AI.Enabled = false
	}
	logger := internal.NewLogger(internal.ParseLogLevel(cfg.Log.Level), os.Stderr)

	if path == "" {
		path, err = promptForPath(cmd.InOrStdin(), cmd.OutOrStdout())
		if err != nil {
			return err
		}
	}

	var renderer ports.ChartRenderer
	if cfg.Charts.Enabled {
		renderer = charts.NewPlotRenderer(render.Config{
			DPI:     cfg.Charts.DPI,
			Palette: render.DefaultConfig().Palette,
		})
	}
	narrative := llm.NewInsightGenerator(llm.Config{
		APIKey:      cfg.AI.APIKey,
		Model:       cfg.AI.Model,
		BaseURL:     cfg.AI.BaseURL,
		Temperature: cfg.AI.Temperature,
		MaxTokens:   cfg.AI.MaxTokens,
		Timeout:     cfg.AI.Timeout(),
	}, logger)

	pipeline := app.NewPipeline(loader.NewDataReader(logger), narrative, renderer, cfg, logger)
	res, err := pipeline.Run(cmd.Context(), app.RunRequest{
		InputPath: path,
		OutputDir: outputDir,
	})
	if err != nil {
		return err
	}

	printResult(cmd.OutOrStdout(), res)
	return nil
}

// promptForPath asks for a file interactively when none was given on the
// command line. Surrounding quotes from drag-and-drop paths are stripped.
func promptForPath(in io.Reader, out io.Writer) (string, error) {
	fmt.Fprint(out, "File to analyze: ")
	scanner := bufio.NewScanner(in)
	if !scanner.Scan() {
		return "", fmt.Errorf("no input file given")
	}
	path := strings.Trim(strings.TrimSpace(scanner.Text()), `"'`)
	if path == "" {
		return "", fmt.Errorf("no input file given")
	}
	return path, nil
}

func printResult(w io.Writer, res *app.RunResult) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "=== Dataset ===")
	fmt.Fprint(w, statsengine.FormatSummary(res.Summary))

	fmt.Fprintln(w)
	fmt.Fprintln(w, "=== Numeric columns ===")
	fmt.Fprint(w, statsengine.FormatDescribe(res.Describe))

	if len(res.Categorical) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "=== Categorical columns ===")
		fmt.Fprint(w, statsengine.FormatCategorical(res.Categorical))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "=== Correlations ===")
	fmt.Fprint(w, statsengine.FormatCorrelation(res.Correlation))

	for _, vc := range res.ValueCounts {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "=== Top values: %s ===\n", vc.Column)
		fmt.Fprint(w, statsengine.FormatValueCounts(vc))
	}

	if res.HasNarrative {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "=== Insights ===")
		fmt.Fprintln(w, res.Narrative)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Report: %s (%d charts) in %s\n",
		res.Report.Path, len(res.Artifacts), res.Duration.Round(time.Millisecond))
}

func newSampleCmd() *cobra.Command {
	var rows int
	var seed int64
	var out string

	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Generate a synthetic retail orders CSV for trying the analyzer",
		Long: `Generate a seeded synthetic retail orders table with correlated
numeric columns and a sprinkle of missing values.

Example: datascope sample --rows 500 -o demo_orders.csv`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			genCfg := testkit.DefaultSalesConfig()
			if rows > 0 {
				genCfg.Rows = rows
			}
			genCfg.Seed = seed

			if err := testkit.NewSalesDataGenerator(genCfg).WriteCSV(out); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "sample written: %s (%d rows)\n", out, genCfg.Rows)
			return nil
		},
	}

	cmd.Flags().IntVar(&rows, "rows", 200, "number of data rows")
	cmd.Flags().Int64Var(&seed, "seed", 42, "random seed")
	cmd.Flags().StringVarP(&out, "out", "o", "sample_orders.csv", "output file")

	return cmd
}

func newServeCmd() *cobra.Command {
	var addr string
	var dir string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a generated report directory over HTTP",
		Long: `Serve the report directory for local inspection. The root path
redirects to the report page.

Example: datascope serve --dir analysis_report --addr :8077`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := internal.NewLogger(internal.ParseLogLevel(cfg.Log.Level), os.Stderr)

			serveDir := dir
			if serveDir == "" {
				serveDir = cfg.Output.Dir
			}
			srv, err := preview.NewServer(preview.Config{Addr: addr, Dir: serveDir}, logger)
			if err != nil {
				return err
			}
			return srv.ListenAndServe(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8077", "listen address")
	cmd.Flags().StringVarP(&dir, "dir", "d", "", "report directory (default from OUTPUT_DIR)")

	return cmd
}
