package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rg0now/exam-trend-report/pkg/analyzer"
	"github.com/rg0now/exam-trend-report/pkg/config"
	"github.com/rg0now/exam-trend-report/pkg/dataset"
	"github.com/rg0now/exam-trend-report/pkg/export"
	"github.com/rg0now/exam-trend-report/pkg/models"
	"github.com/rg0now/exam-trend-report/pkg/output"
	"github.com/rg0now/exam-trend-report/pkg/render"
	"github.com/rg0now/exam-trend-report/pkg/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// app carries state resolved by the root command for its subcommands.
type app struct {
	verbose    bool
	configPath string
	envFile    string
	dataPath   string

	cfg    *config.Config
	logger *zap.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "exam-report",
		Short: "Generate trend reports from a student's exam history",
		Long: `Generate an academic performance report from a student's exam history:
score and rank tables, per-subject trend narratives, charts and a summary.

The dataset is read from --data (YAML or JSON); without it the built-in
sample is used.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Verbose (debug) logging")
	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "TOML config file")
	rootCmd.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "Env file with EXAM_REPORT_* variables")
	rootCmd.PersistentFlags().StringVarP(&a.dataPath, "data", "d", "", "Dataset file (.yaml, .yml or .json)")

	rootCmd.AddCommand(renderCmd(a))
	rootCmd.AddCommand(analyzeCmd(a))
	rootCmd.AddCommand(summaryCmd(a))
	rootCmd.AddCommand(exportCmd(a))
	rootCmd.AddCommand(serveCmd(a))

	return rootCmd
}

// setup loads config and builds the logger.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	if err := config.LoadEnvFile(a.envFile); err != nil {
		return err
	}

	cfg, err := config.LoadFromFiles(a.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if a.dataPath != "" {
		cfg.Report.DataPath = a.dataPath
	}
	a.cfg = cfg

	zapCfg := zap.NewProductionConfig()
	level, err := zapcore.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.Logging.Level, err)
	}
	if a.verbose {
		level = zapcore.DebugLevel
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	a.logger, err = zapCfg.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

func (a *app) loadDataset() (models.Dataset, error) {
	ds, err := dataset.Load(a.cfg.Report.DataPath)
	if err != nil {
		return models.Dataset{}, err
	}
	source := a.cfg.Report.DataPath
	if source == "" {
		source = "built-in sample"
	}
	a.logger.Debug("dataset loaded",
		zap.String("source", source),
		zap.String("student", ds.Student),
		zap.Int("exams", len(ds.Exams)))
	return ds, nil
}

func (a *app) buildReport() (*render.Report, error) {
	ds, err := a.loadDataset()
	if err != nil {
		return nil, err
	}
	b := render.NewBuilder(a.cfg, analyzer.NewAnalyzer(a.logger), a.logger)
	return b.Build(ds)
}

// renderCmd writes the HTML report.
func renderCmd(a *app) *cobra.Command {
	var outputFile string

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the HTML report",
		Long: `Render the full report as a standalone HTML page.

Examples:
  # Render the sample report
  exam-report render --output=report.html

  # Render a student's dataset to stdout
  exam-report render --data=student.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := a.buildReport()
			if err != nil {
				return err
			}

			if outputFile == "" || outputFile == "-" {
				return render.WriteHTML(cmd.OutOrStdout(), report)
			}

			f, err := os.Create(outputFile)
			if err != nil {
				return fmt.Errorf("failed to create output file: %w", err)
			}
			defer f.Close()

			if err := render.WriteHTML(f, report); err != nil {
				return err
			}
			a.logger.Info("report written", zap.String("path", outputFile), zap.String("report_id", report.ID))
			return f.Close()
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output HTML file (default: stdout)")

	return cmd
}

// analyzeCmd emits analyses as JSON lines.
func analyzeCmd(a *app) *cobra.Command {
	var (
		outputFile string
		metric     string
		subject    string
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Write trend analyses as JSON lines",
		Long: `Run every trend analysis and write one JSON object per line.

Examples:
  # All analyses to a file
  exam-report analyze --output=analyses.jsonl

  # Only math class rank
  exam-report analyze --metric=class_rank --subject=math`,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := newResultFilter(metric, subject)
			if err != nil {
				return err
			}

			ds, err := a.loadDataset()
			if err != nil {
				return err
			}

			var w *output.Writer
			if outputFile == "" || outputFile == "-" {
				w = output.NewStreamWriter(cmd.OutOrStdout())
			} else if w, err = output.NewWriter(outputFile); err != nil {
				return err
			}
			defer w.Close()

			results := filter.apply(analyzer.NewAnalyzer(a.logger).AnalyzeAll(ds))
			if err := w.WriteResults(results); err != nil {
				return err
			}

			output.PrintSummary(cmd.ErrOrStderr(), output.GenerateSummary(results))
			return w.Close()
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (JSONL format, default: stdout)")
	cmd.Flags().StringVar(&metric, "metric", "", "Only this metric (score, class_rank, school_rank, total_score, total_school_rank)")
	cmd.Flags().StringVar(&subject, "subject", "", "Only this subject (id or Chinese name)")

	return cmd
}

// summaryCmd prints the trend distribution.
func summaryCmd(a *app) *cobra.Command {
	var inputFile string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print a trend summary",
		Long: `Print the trend distribution, either of a JSONL file written by
analyze or of the current dataset.

Examples:
  exam-report summary --input=analyses.jsonl`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				results []models.AnalysisResult
				err     error
			)
			if inputFile != "" {
				results, err = output.LoadResults(inputFile)
				if err != nil {
					return fmt.Errorf("failed to load results: %w", err)
				}
			} else {
				ds, err := a.loadDataset()
				if err != nil {
					return err
				}
				results = analyzer.NewAnalyzer(a.logger).AnalyzeAll(ds)
			}

			output.PrintSummary(cmd.OutOrStdout(), output.GenerateSummary(results))
			return nil
		},
	}

	cmd.Flags().StringVarP(&inputFile, "input", "i", "", "Input JSONL file with analysis results")

	return cmd
}

// exportCmd writes the xlsx workbook.
func exportCmd(a *app) *cobra.Command {
	var outputFile string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export tables and narratives to an Excel workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := a.buildReport()
			if err != nil {
				return err
			}
			if err := export.Save(outputFile, report); err != nil {
				return err
			}
			a.logger.Info("workbook written", zap.String("path", outputFile), zap.String("report_id", report.ID))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "report.xlsx", "Output xlsx file")

	return cmd
}

// serveCmd serves the report over HTTP until interrupted.
func serveCmd(a *app) *cobra.Command {
	var (
		host string
		port int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the report and JSON analyses over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("host") {
				a.cfg.Server.Host = host
			}
			if cmd.Flags().Changed("port") {
				a.cfg.Server.Port = port
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}

			ds, err := a.loadDataset()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return server.New(ds, a.cfg, a.logger).Run(ctx)
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "Listen host (overrides config)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Listen port (overrides config)")

	return cmd
}

// resultFilter narrows analyses by metric and subject; zero values match all.
type resultFilter struct {
	metric  models.Metric
	subject models.Subject
}

func newResultFilter(metric, subject string) (resultFilter, error) {
	var f resultFilter
	if metric != "" {
		f.metric = models.Metric(metric)
		if !f.metric.Valid() {
			return f, fmt.Errorf("unknown metric %q", metric)
		}
	}
	if subject != "" {
		s, err := models.ParseSubject(subject)
		if err != nil {
			return f, err
		}
		f.subject = s
	}
	return f, nil
}

func (f resultFilter) apply(results []models.AnalysisResult) []models.AnalysisResult {
	out := make([]models.AnalysisResult, 0, len(results))
	for _, r := range results {
		if f.metric != "" && r.Metric != f.metric {
			continue
		}
		if f.subject != "" && r.Subject != f.subject {
			continue
		}
		out = append(out, r)
	}
	return out
}
