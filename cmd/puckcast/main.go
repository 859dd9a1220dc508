package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const (
	appName = "puckcast"
	version = "v0.4.0"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	if term.IsTerminal(int(os.Stderr.Fd())) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}

	rootCmd := &cobra.Command{
		Use:     appName,
		Short:   "Temporal feature engineering for game-log prediction models",
		Version: version,
		Long: `puckcast turns chronological per-team game logs into feature-enriched
tables (rolling statistics, exponential averages, lags, streaks, rest days,
strength metrics, Elo ratings) and partitions them into leakage-free
train/test folds.`,
	}

	featuresCmd := &cobra.Command{
		Use:   "features",
		Short: "Enrich a game-log CSV with derived features",
		Long:  "Group rows by team, order them in time, and append the configured feature columns",
		RunE:  runFeatures,
	}
	featuresCmd.Flags().String("input", "", "Input CSV path (required)")
	featuresCmd.Flags().String("output", "", "Output CSV path (required)")
	featuresCmd.Flags().String("config", "", "Pipeline YAML config (defaults to the stock pipeline)")
	featuresCmd.Flags().Int("parallelism", 0, "Max groups processed concurrently (0 = GOMAXPROCS)")
	featuresCmd.MarkFlagRequired("input")
	featuresCmd.MarkFlagRequired("output")

	splitCmd := &cobra.Command{
		Use:   "split",
		Short: "Partition a table into train/test folds",
		Long:  "Expanding-window chronological folds, or a seeded stratified split when no timestamp is available",
		RunE:  runSplit,
	}
	splitCmd.Flags().String("input", "", "Input CSV path (required)")
	splitCmd.Flags().String("out-dir", "folds", "Directory for fold CSVs")
	splitCmd.Flags().String("mode", "time", "Split mode (time|stratified)")
	splitCmd.Flags().String("timestamp-column", "date", "Timestamp column for chronological folds")
	splitCmd.Flags().Int("n-splits", 5, "Number of chronological folds")
	splitCmd.Flags().Float64("test-fraction", 0.2, "Test window fraction")
	splitCmd.Flags().String("target-column", "", "Target column for stratified mode")
	splitCmd.Flags().Int64("seed", 42, "Random seed for stratified mode")
	splitCmd.MarkFlagRequired("input")

	ratingCmd := &cobra.Command{
		Use:   "rating",
		Short: "Fit Elo ratings over a game log",
		Long:  "Walk the game log chronologically, annotate pre-game ratings and win probabilities, and print rankings",
		RunE:  runRating,
	}
	ratingCmd.Flags().String("input", "", "Game-log CSV path (required)")
	ratingCmd.Flags().String("config", "", "Pipeline YAML config with a rating section")
	ratingCmd.Flags().String("output", "", "Optional output CSV with rating columns appended")
	ratingCmd.Flags().String("eval", "", "Optional held-out game-log CSV to evaluate against")
	ratingCmd.Flags().Int("top-n", 10, "Number of ranked teams to print")
	ratingCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(featuresCmd, splitCmd, ratingCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
