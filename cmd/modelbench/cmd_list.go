package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/modelbench/modelbench/internal/config"
	"github.com/modelbench/modelbench/internal/models"
	"github.com/modelbench/modelbench/internal/suites"
)

type listOptions struct {
	configFile string
	catalog    string
	suiteDir   string
}

func newListCommand() *cobra.Command {
	opts := &listOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog models, built-in suites, and configuration templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := listSuites(cmd.OutOrStdout(), opts); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout())
			return listConfigs(cmd.OutOrStdout())
		},
	}
	cmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "modelbench.yaml", "Path to the settings file")
	cmd.PersistentFlags().StringVar(&opts.catalog, "catalog", "", "Model catalog YAML")
	cmd.PersistentFlags().StringVar(&opts.suiteDir, "suite-dir", "", "Directory of additional suite YAML files")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "models",
			Short: "List the models in the catalog",
			RunE: func(cmd *cobra.Command, args []string) error {
				return listModels(cmd.OutOrStdout(), opts)
			},
		},
		&cobra.Command{
			Use:   "suites",
			Short: "List the available benchmark suites",
			RunE: func(cmd *cobra.Command, args []string) error {
				return listSuites(cmd.OutOrStdout(), opts)
			},
		},
		&cobra.Command{
			Use:   "configs",
			Short: "List the standard configuration templates",
			RunE: func(cmd *cobra.Command, args []string) error {
				return listConfigs(cmd.OutOrStdout())
			},
		},
	)
	return cmd
}

func listModels(out io.Writer, opts *listOptions) error {
	catalogPath := opts.catalog
	if catalogPath == "" {
		settings, err := config.Load(opts.configFile)
		if err != nil {
			return err
		}
		catalogPath = settings.Catalog
	}
	if catalogPath == "" {
		return fmt.Errorf("no catalog configured: pass --catalog or set catalog in the settings file")
	}
	catalog, err := models.LoadCatalog(catalogPath)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MODEL\tSIZE_B\tCONTEXT\tROLES\tQUANTIZATIONS\t")
	for _, spec := range catalog.Models {
		size := "-"
		if spec.SizeB > 0 {
			size = fmt.Sprintf("%.1f", spec.SizeB)
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t\n",
			spec.Name, size, spec.ContextWindow,
			joinOrDash(spec.Roles), joinOrDash(spec.RecommendedQuantizations))
	}
	return tw.Flush()
}

func listSuites(out io.Writer, opts *listOptions) error {
	registry, err := suites.NewRegistry()
	if err != nil {
		return err
	}
	if opts.suiteDir != "" {
		if err := registry.LoadDir(opts.suiteDir); err != nil {
			return err
		}
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SUITE\tKIND\tWEIGHT\tCASES\t")
	for _, spec := range registry.All() {
		weight := fmt.Sprintf("%.1f", spec.EffectiveWeight())
		if spec.Exempt {
			weight = "exempt"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t\n", spec.ID, spec.Kind, weight, len(spec.Cases))
	}
	return tw.Flush()
}

func listConfigs(out io.Writer) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CONFIG\tTEMP\tTOP_P\tNUM_CTX\tSYSTEM\t")
	for _, cfg := range config.StandardConfigs() {
		fmt.Fprintf(tw, "%s\t%.1f\t%.1f\t%d\t%s\t\n",
			cfg.Tag, cfg.Temperature, cfg.TopP, cfg.NumCtx, cfg.SystemStyle)
	}
	return tw.Flush()
}

func joinOrDash(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ",")
}
