package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/pucklab/puckcast/internal/config"
	"github.com/pucklab/puckcast/internal/csvio"
	"github.com/pucklab/puckcast/internal/features"
	"github.com/pucklab/puckcast/internal/table"
	"github.com/pucklab/puckcast/internal/telemetry"
)

func runFeatures(cmd *cobra.Command, args []string) error {
	input, _ := cmd.Flags().GetString("input")
	output, _ := cmd.Flags().GetString("output")
	configPath, _ := cmd.Flags().GetString("config")
	parallelism, _ := cmd.Flags().GetInt("parallelism")

	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	t, err := csvio.Read(input)
	if err != nil {
		return err
	}
	log.Info().Str("input", input).Int("rows", t.Len()).
		Int("columns", len(t.Columns())).Msg("table loaded")

	groupPasses, tablePasses, err := cfg.BuildPasses()
	if err != nil {
		return err
	}

	metrics := telemetry.NewRegistry()
	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		return err
	}

	grouper := table.NewGrouper(cfg.Grouping, log.Logger)
	pipeline := features.NewPipeline(grouper, groupPasses, tablePasses, log.Logger,
		features.WithMetrics(metrics),
		features.WithParallelism(parallelism),
	)

	result, err := pipeline.Run(cmd.Context(), t)
	if err != nil {
		return err
	}
	log.Info().Str("run_id", result.RunID).
		Int("new_columns", len(result.NewColumns)).
		Int("skipped_rows", result.RowsSkipped).
		Dur("elapsed", result.Elapsed).
		Msg("features computed")

	if err := csvio.Write(output, result.Table); err != nil {
		return err
	}
	log.Info().Str("output", output).Msg("enriched table written")
	return nil
}
