package main

import (
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/pucklab/puckcast/internal/csvio"
	"github.com/pucklab/puckcast/internal/split"
)

func runSplit(cmd *cobra.Command, args []string) error {
	input, _ := cmd.Flags().GetString("input")
	outDir, _ := cmd.Flags().GetString("out-dir")
	mode, _ := cmd.Flags().GetString("mode")

	t, err := csvio.Read(input)
	if err != nil {
		return err
	}

	var folds []split.Fold
	switch mode {
	case "time":
		tsColumn, _ := cmd.Flags().GetString("timestamp-column")
		nSplits, _ := cmd.Flags().GetInt("n-splits")
		testFraction, _ := cmd.Flags().GetFloat64("test-fraction")

		splitter, err := split.NewTimeSeriesSplitter(tsColumn, nSplits, testFraction, log.Logger)
		if err != nil {
			return err
		}
		folds, err = splitter.Split(t)
		if err != nil {
			return err
		}
	case "stratified":
		target, _ := cmd.Flags().GetString("target-column")
		if target == "" {
			return fmt.Errorf("stratified mode requires --target-column")
		}
		testFraction, _ := cmd.Flags().GetFloat64("test-fraction")
		seed, _ := cmd.Flags().GetInt64("seed")

		splitter, err := split.NewStratifiedSplitter(target, testFraction, seed, log.Logger)
		if err != nil {
			return err
		}
		fold, err := splitter.Split(t)
		if err != nil {
			return err
		}
		folds = []split.Fold{fold}
	default:
		return fmt.Errorf("unknown split mode %q (want time or stratified)", mode)
	}

	columns := t.Columns()
	for _, fold := range folds {
		trainPath := filepath.Join(outDir, fmt.Sprintf("fold_%d_train.csv", fold.Index))
		testPath := filepath.Join(outDir, fmt.Sprintf("fold_%d_test.csv", fold.Index))
		if err := csvio.WriteRows(trainPath, columns, fold.Train); err != nil {
			return err
		}
		if err := csvio.WriteRows(testPath, columns, fold.Test); err != nil {
			return err
		}
		log.Info().Int("fold", fold.Index).
			Int("train", fold.TrainSize).Int("test", fold.TestSize).
			Msg("fold written")
	}
	return nil
}
