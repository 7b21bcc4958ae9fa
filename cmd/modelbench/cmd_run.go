package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/modelbench/modelbench/internal/config"
	"github.com/modelbench/modelbench/internal/executor"
	"github.com/modelbench/modelbench/internal/inference"
	"github.com/modelbench/modelbench/internal/models"
	"github.com/modelbench/modelbench/internal/orchestration"
	"github.com/modelbench/modelbench/internal/regression"
	"github.com/modelbench/modelbench/internal/reporting"
	"github.com/modelbench/modelbench/internal/suites"
)

type runOptions struct {
	configFile string
	overrides  []string

	modelNames []string
	catalog    string
	configTags []string

	includeSuites []string
	excludeSuites []string
	suiteDir      string
	exclusions    []string

	workers int
	repeats int

	output       string
	csvOut       string
	junit        string
	saveBaseline bool
	gate         bool
	detail       bool
	noProgress   bool
}

func newRunCommand() *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the benchmark matrix and report composite scores",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBenchmark(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.configFile, "config", "c", "modelbench.yaml", "Path to the settings file")
	flags.StringArrayVar(&opts.overrides, "set", nil, "Override a setting (key=value, repeatable)")
	flags.StringSliceVarP(&opts.modelNames, "models", "m", nil, "Model names to benchmark")
	flags.StringVar(&opts.catalog, "catalog", "", "Model catalog YAML (overrides --models metadata)")
	flags.StringSliceVar(&opts.configTags, "configs", nil, "Configuration templates to run (default: all)")
	flags.StringSliceVarP(&opts.includeSuites, "suites", "s", nil, "Suites to run (default: all)")
	flags.StringSliceVar(&opts.excludeSuites, "exclude-suites", nil, "Suites to skip")
	flags.StringVar(&opts.suiteDir, "suite-dir", "", "Directory of additional suite YAML files")
	flags.StringArrayVar(&opts.exclusions, "exclude", nil, "Exclude a matrix cell (model or model:config, repeatable)")
	flags.IntVar(&opts.workers, "workers", 0, "Worker pool size (default from settings)")
	flags.IntVar(&opts.repeats, "repeats", 0, "Override the per-configuration repeat count")
	flags.StringVarP(&opts.output, "output", "o", "", "Write the full snapshot JSON to this path")
	flags.StringVar(&opts.csvOut, "csv", "", "Write per-case results as CSV to this path")
	flags.StringVar(&opts.junit, "junit", "", "Write the baseline comparison as JUnit XML")
	flags.BoolVar(&opts.saveBaseline, "save-baseline", true, "Persist this run as a baseline snapshot")
	flags.BoolVar(&opts.gate, "gate", false, "Exit non-zero when a suite regresses against the baseline")
	flags.BoolVar(&opts.detail, "detail", false, "Print per-suite rows for every cell")
	flags.BoolVar(&opts.noProgress, "no-progress", false, "Disable the progress spinner")

	return cmd
}

func runBenchmark(cmd *cobra.Command, opts *runOptions) error {
	settings, err := config.Load(opts.configFile)
	if err != nil {
		return err
	}
	overrides, err := parseOverrides(opts.overrides)
	if err != nil {
		return err
	}
	if err := settings.ApplyOverrides(overrides); err != nil {
		return err
	}
	if opts.workers > 0 {
		settings.Workers = opts.workers
	}

	modelSpecs, err := resolveModels(opts, settings)
	if err != nil {
		return err
	}
	configs, err := config.ConfigByTag(opts.configTags)
	if err != nil {
		return err
	}
	suiteSpecs, err := resolveSuites(opts, settings)
	if err != nil {
		return err
	}
	exclusions, err := parseExclusions(opts.exclusions)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	exec := executor.New(
		inference.NewOpenAIClient(settings.BaseURL),
		executor.WithTimeout(settings.Timeout()),
		executor.WithRateLimit(settings.RequestsPerSecond),
	)

	runnerOpts := []orchestration.RunnerOption{
		orchestration.WithWorkers(settings.Workers),
		orchestration.WithRepeatOverride(opts.repeats),
	}
	var progress *progressReporter
	if !opts.noProgress {
		progress = newProgressReporter(cmd.ErrOrStderr())
		runnerOpts = append(runnerOpts, orchestration.WithProgressListener(progress.listen))
		progress.start()
	}

	snap, runErr := orchestration.NewRunner(exec, runnerOpts...).Run(ctx, orchestration.MatrixSpec{
		Models:     modelSpecs,
		Configs:    configs,
		Suites:     suiteSpecs,
		Exclusions: exclusions,
	})
	if progress != nil {
		progress.stop()
	}
	if snap == nil {
		return runErr
	}

	out := cmd.OutOrStdout()
	reporting.PrintSummary(out, snap)
	if opts.detail {
		for _, cell := range snap.Cells {
			reporting.PrintCellDetail(out, cell)
		}
	}
	reporting.PrintIdempotencyFailures(out, snap)

	if opts.output != "" {
		if err := reporting.WriteSnapshotJSON(opts.output, snap); err != nil {
			return err
		}
	}
	if opts.csvOut != "" {
		if err := reporting.WriteCaseCSV(opts.csvOut, snap); err != nil {
			return err
		}
	}

	if errors.Is(runErr, context.Canceled) || errors.Is(runErr, context.DeadlineExceeded) {
		// Partial results were printed; do not pollute the baseline store
		// or gate on an incomplete run.
		return fmt.Errorf("run interrupted: results are partial")
	}

	store, err := regression.NewStore(settings.BaselineDir)
	if err != nil {
		return err
	}
	baseline, err := store.LoadLatest()
	if err != nil {
		return err
	}

	var report regression.Report
	if baseline != nil {
		report = regression.Compare(baseline, snap)
		fmt.Fprintln(out)
		reporting.PrintRegressions(out, report)
		if opts.junit != "" {
			if err := reporting.WriteJUnitXML(opts.junit, report, snap.Timestamp); err != nil {
				return err
			}
		}
	}

	if opts.saveBaseline {
		path, err := store.Save(snap)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "\nbaseline saved: %s\n", path)
	}

	if opts.gate && report.AnyRegressed() {
		return &RegressionError{Count: len(report.Regressed())}
	}
	return nil
}

func resolveModels(opts *runOptions, settings config.Settings) ([]models.ModelSpec, error) {
	catalogPath := opts.catalog
	if catalogPath == "" {
		catalogPath = settings.Catalog
	}

	if catalogPath != "" {
		catalog, err := models.LoadCatalog(catalogPath)
		if err != nil {
			return nil, err
		}
		if len(opts.modelNames) == 0 {
			return catalog.Models, nil
		}
		specs := make([]models.ModelSpec, 0, len(opts.modelNames))
		for _, name := range opts.modelNames {
			spec := catalog.ByName(name)
			if spec == nil {
				return nil, fmt.Errorf("model %q not in catalog %s", name, catalogPath)
			}
			specs = append(specs, *spec)
		}
		return specs, nil
	}

	if len(opts.modelNames) == 0 {
		return nil, fmt.Errorf("no models selected: pass --models or a --catalog")
	}
	specs := make([]models.ModelSpec, 0, len(opts.modelNames))
	for _, name := range opts.modelNames {
		specs = append(specs, models.ModelSpec{Name: name, ContextWindow: 8192})
	}
	return specs, nil
}

func resolveSuites(opts *runOptions, settings config.Settings) ([]models.SuiteSpec, error) {
	registry, err := suites.NewRegistry()
	if err != nil {
		return nil, err
	}
	suiteDir := opts.suiteDir
	if suiteDir == "" {
		suiteDir = settings.SuiteDir
	}
	if suiteDir != "" {
		if err := registry.LoadDir(suiteDir); err != nil {
			return nil, err
		}
	}
	return registry.Select(opts.includeSuites, opts.excludeSuites)
}

func parseOverrides(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --set %q: want key=value", pair)
		}
		out[key] = value
	}
	return out, nil
}

func parseExclusions(raw []string) ([]orchestration.Exclusion, error) {
	out := make([]orchestration.Exclusion, 0, len(raw))
	for _, item := range raw {
		model, configTag, _ := strings.Cut(item, ":")
		if model == "" {
			return nil, fmt.Errorf("invalid --exclude %q: want model or model:config", item)
		}
		out = append(out, orchestration.Exclusion{Model: model, ConfigTag: configTag})
	}
	return out, nil
}
