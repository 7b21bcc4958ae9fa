package main

import (
	"log/slog"

	"github.com/spf13/cobra"
)

var version = "dev"

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "modelbench",
		Short: "modelbench - benchmark harness for locally served language models",
		Long: `modelbench runs capability benchmarks against language models served by a
local OpenAI-compatible endpoint (such as Ollama), scores the responses on a
shared rubric, and tracks composite scores across runs so capability
regressions surface before a model swap ships.`,
		Version:      version,
		SilenceUsage: true,
	}

	debugLogging := cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if *debugLogging {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
	}

	cmd.AddCommand(newRunCommand())
	cmd.AddCommand(newCompareCommand())
	cmd.AddCommand(newListCommand())

	return cmd
}

func execute() error {
	return newRootCommand().Execute()
}
