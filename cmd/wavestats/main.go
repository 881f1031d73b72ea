package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"wavestats/adapters/ingest"
	"wavestats/adapters/tabular"
	"wavestats/app"
	"wavestats/domain/core"
	"wavestats/domain/summary"
	"wavestats/internal"
	"wavestats/internal/config"
	"wavestats/internal/errors"
	"wavestats/internal/notify"
	"wavestats/internal/testkit"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error [%s]: %v\n", errors.GetCode(err), err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "wavestats",
		Short:         "Flatten wave analysis summaries into tabular files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newExportCmd(),
		newDemoCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

// exportFlags override values from the loaded configuration when set.
type exportFlags struct {
	configPath string
	input      string
	outDir     string
	format     string
	logLevel   string
	sequential bool
}

func (f *exportFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.configPath, "config", "", "YAML configuration file (default: $WAVESTATS_CONFIG)")
	cmd.Flags().StringVarP(&f.outDir, "out", "o", "", "Output directory")
	cmd.Flags().StringVarP(&f.format, "format", "f", "", "Output format: csv or xlsx")
	cmd.Flags().StringVar(&f.logLevel, "log-level", "", "Log level: ERROR, WARN, INFO, DEBUG or TRACE")
	cmd.Flags().BoolVar(&f.sequential, "sequential", false, "Export views one at a time")
}

func (f *exportFlags) load(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("input") {
		cfg.Run.Input = f.input
	}
	if cmd.Flags().Changed("out") {
		cfg.Output.Dir = f.outDir
	}
	if cmd.Flags().Changed("format") {
		cfg.Output.Format = strings.ToLower(f.format)
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Logging.Level = strings.ToUpper(f.logLevel)
	}
	if f.sequential {
		cfg.Run.Parallel = false
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newExportCmd() *cobra.Command {
	var flags exportFlags

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export every view of an analysis result document",
		Long: `Read an analysis result document (JSON) and write the involvement,
origin and test-result tables of every view.

Empty tables are skipped: no file is written for them.

Example: wavestats export --input results.json --out results --format xlsx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load(cmd)
			if err != nil {
				return err
			}
			if cfg.Run.Input == "" {
				return errors.InvalidInput("no input document: pass --input or set WAVESTATS_RUN_INPUT")
			}

			analysis, err := ingest.ReadFile(cfg.Run.Input)
			if err != nil {
				return classify(err)
			}
			return runExport(cmd.Context(), cmd.OutOrStdout(), cfg, analysis)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&flags.input, "input", "i", "", "Analysis result document (JSON)")

	return cmd
}

func newDemoCmd() *cobra.Command {
	var flags exportFlags
	var seed int64
	var waves int

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Export a synthetic analysis",
		Long: `Generate a deterministic synthetic analysis covering every view and
export it. Useful for checking output layout without upstream data.

Example: wavestats demo --seed 7 --waves 50 --out demo_results`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load(cmd)
			if err != nil {
				return err
			}
			if waves < 0 {
				return errors.InvalidInput("--waves must not be negative")
			}
			return runExport(cmd.Context(), cmd.OutOrStdout(), cfg, testkit.New(seed).Analysis(waves))
		},
	}

	flags.register(cmd)
	cmd.Flags().Int64Var(&seed, "seed", 42, "Random seed for the synthetic waves")
	cmd.Flags().IntVar(&waves, "waves", 30, "Waves per stage and group")

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "wavestats %s\n", version)
		},
	}
}

func runExport(ctx context.Context, out io.Writer, cfg *config.Config, analysis *summary.Analysis) error {
	logger := internal.NewLogger(internal.ParseLogLevel(cfg.Logging.Level))
	defer logger.Sync()

	exporter, err := tabular.NewExporter(cfg.Output.Format, cfg.Output.Dir)
	if err != nil {
		return errors.ConfigInvalid(err.Error())
	}

	svc := app.NewExportService(exporter,
		app.WithNotifier(notify.NewZapNotifier(logger.Zap())),
		app.WithParallel(cfg.Run.Parallel),
	)

	logger.Info("exporting views to %s (%s)", cfg.Output.Dir, cfg.Output.Format)
	run, err := svc.ExportAll(ctx, analysis)
	if err != nil {
		logger.Error("export failed: %v", err)
		return classify(err)
	}

	printRun(out, run)
	return nil
}

// classify attaches an error code for the exit message.
func classify(err error) error {
	switch {
	case core.IsMalformedInput(err):
		return errors.WithCode(errors.CodeInvalidInput, err)
	case core.IsExportFailure(err):
		return errors.WithCode(errors.CodeExportFailed, err)
	case stderrors.Is(err, fs.ErrNotExist):
		return errors.WithCode(errors.CodeInvalidInput, err)
	default:
		return err
	}
}

var viewOrder = []app.ViewName{
	app.ViewPerProtocol,
	app.ViewTreatment,
	app.ViewOverall,
	app.ViewProtoSpecific,
	app.ViewWithinGroup,
	app.ViewMeta,
}

func printRun(out io.Writer, run *app.RunResult) {
	fmt.Fprintf(out, "run %s started %s, finished in %s\n",
		run.RunID, run.StartedAt.Time().Format(time.RFC3339), run.Duration.Round(time.Millisecond))
	for _, name := range viewOrder {
		view, ok := run.Views[name]
		if !ok {
			continue
		}
		if len(view.Artifacts()) == 0 {
			fmt.Fprintf(out, "%s: nothing to save\n", name)
			continue
		}
		fmt.Fprintf(out, "%s results saved to:\n", name)

		keys := make([]string, 0, len(view.Tables))
		for key, a := range view.Tables {
			if a != nil {
				keys = append(keys, key)
			}
		}
		sort.Strings(keys)
		for _, key := range keys {
			a := view.Tables[key]
			fmt.Fprintf(out, "  %s: %s (%d rows, sha256 %s)\n", key, a.Path, a.Rows, shortHash(a.Fingerprint))
		}
	}
}

func shortHash(h core.Hash) string {
	s := h.String()
	if len(s) > 12 {
		return s[:12]
	}
	return s
}
