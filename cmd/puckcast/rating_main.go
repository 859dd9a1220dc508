package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/pucklab/puckcast/internal/config"
	"github.com/pucklab/puckcast/internal/csvio"
	"github.com/pucklab/puckcast/internal/rating"
)

func runRating(cmd *cobra.Command, args []string) error {
	input, _ := cmd.Flags().GetString("input")
	output, _ := cmd.Flags().GetString("output")
	evalPath, _ := cmd.Flags().GetString("eval")
	topN, _ := cmd.Flags().GetInt("top-n")
	configPath, _ := cmd.Flags().GetString("config")

	params := rating.DefaultParams()
	columns := rating.DefaultGameColumns()
	if configPath != "" {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if cfg.Rating != nil {
			params = cfg.Rating.Params
			columns = cfg.Rating.Columns
		}
	}

	t, err := csvio.Read(input)
	if err != nil {
		return err
	}

	model := rating.NewModel(params, columns, log.Logger)
	if err := model.Fit(t); err != nil {
		return err
	}

	for i, tr := range model.Rankings(topN) {
		fmt.Fprintf(os.Stdout, "%2d. %-28s %7.1f\n", i+1, tr.Team, tr.Rating)
	}

	if evalPath != "" {
		evalTable, err := csvio.Read(evalPath)
		if err != nil {
			return err
		}
		metrics, err := model.Evaluate(evalTable)
		if err != nil {
			return err
		}
		log.Info().
			Float64("rmse", metrics.RMSE).
			Float64("mae", metrics.MAE).
			Float64("r2", metrics.R2).
			Float64("brier", metrics.Brier).
			Float64("accuracy", metrics.Accuracy).
			Int("games", metrics.Games).
			Msg("evaluation complete")
	}

	if output != "" {
		if err := csvio.Write(output, t); err != nil {
			return err
		}
		log.Info().Str("output", output).Msg("annotated game log written")
	}
	return nil
}
