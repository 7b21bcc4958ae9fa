package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/modelbench/modelbench/internal/config"
	"github.com/modelbench/modelbench/internal/models"
	"github.com/modelbench/modelbench/internal/regression"
	"github.com/modelbench/modelbench/internal/reporting"
)

type compareOptions struct {
	configFile string
	baseline   string
	current    string
	output     string
	junit      string
	gate       bool
}

func newCompareCommand() *cobra.Command {
	opts := &compareOptions{}

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare two run snapshots and classify per-suite movement",
		Long: `Compare aligns two snapshots by (model, config, suite) and classifies each
suite as improved, stable, or regressed. Without explicit paths the two most
recent snapshots in the baseline directory are compared.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompare(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.configFile, "config", "c", "modelbench.yaml", "Path to the settings file")
	flags.StringVar(&opts.baseline, "baseline", "", "Baseline snapshot file (default: second newest)")
	flags.StringVar(&opts.current, "current", "", "Current snapshot file (default: newest)")
	flags.StringVarP(&opts.output, "output", "o", "", "Write the comparison as JSON to this path")
	flags.StringVar(&opts.junit, "junit", "", "Write the comparison as JUnit XML")
	flags.BoolVar(&opts.gate, "gate", false, "Exit non-zero when a suite regressed")

	return cmd
}

func runCompare(cmd *cobra.Command, opts *compareOptions) error {
	settings, err := config.Load(opts.configFile)
	if err != nil {
		return err
	}
	store, err := regression.NewStore(settings.BaselineDir)
	if err != nil {
		return err
	}

	baseline, current, err := loadPair(store, opts)
	if err != nil {
		return err
	}

	report := regression.Compare(baseline, current)
	reporting.PrintRegressions(cmd.OutOrStdout(), report)

	if opts.output != "" {
		if err := reporting.WriteRegressionJSON(opts.output, report); err != nil {
			return err
		}
	}
	if opts.junit != "" {
		timestamp := current.Timestamp
		if timestamp.IsZero() {
			timestamp = time.Now().UTC()
		}
		if err := reporting.WriteJUnitXML(opts.junit, report, timestamp); err != nil {
			return err
		}
	}

	if opts.gate && report.AnyRegressed() {
		return &RegressionError{Count: len(report.Regressed())}
	}
	return nil
}

func loadPair(store *regression.Store, opts *compareOptions) (baseline, current *models.Snapshot, err error) {
	if opts.baseline != "" && opts.current != "" {
		if baseline, err = store.Load(opts.baseline); err != nil {
			return nil, nil, err
		}
		if current, err = store.Load(opts.current); err != nil {
			return nil, nil, err
		}
		return baseline, current, nil
	}
	if opts.baseline != "" || opts.current != "" {
		return nil, nil, fmt.Errorf("--baseline and --current must be given together")
	}

	paths, err := store.List()
	if err != nil {
		return nil, nil, err
	}
	if len(paths) < 2 {
		return nil, nil, fmt.Errorf("need at least two snapshots to compare, found %d", len(paths))
	}
	if baseline, err = store.Load(paths[len(paths)-2]); err != nil {
		return nil, nil, err
	}
	if current, err = store.Load(paths[len(paths)-1]); err != nil {
		return nil, nil, err
	}
	return baseline, current, nil
}
