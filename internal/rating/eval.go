package rating

import (
	"fmt"
	"math"

	"github.com/pucklab/puckcast/internal/stats"
	"github.com/pucklab/puckcast/internal/table"
)

// Metrics summarizes a fitted model against a held-out game log.
type Metrics struct {
	RMSE     float64 `json:"rmse"`
	MAE      float64 `json:"mae"`
	R2       float64 `json:"r2"`
	Brier    float64 `json:"brier"`
	Accuracy float64 `json:"accuracy"`
	Games    int     `json:"games"`
}

// Evaluate scores the model's home-goal predictions and win probabilities
// over a test table. R2 is 0 when the actuals carry no variance.
func (m *Model) Evaluate(t *table.RowTable) (Metrics, error) {
	games, err := m.chronological(t)
	if err != nil {
		return Metrics{}, err
	}
	if len(games) == 0 {
		return Metrics{}, fmt.Errorf("%w: no evaluable games", table.ErrInsufficientData)
	}

	var (
		predicted []float64
		actual    []float64
		brierSum  float64
		correct   int
	)
	for _, g := range games {
		homeAdj, awayAdj := m.adjustedRatings(g)
		prob := ExpectedScore(homeAdj, awayAdj)
		expectedDiff := (prob - 0.5) * 12
		predicted = append(predicted, 3+expectedDiff/2)
		actual = append(actual, g.homeGoals)

		homeWon := 0.0
		if g.homeGoals > g.awayGoals {
			homeWon = 1
		}
		brierSum += (prob - homeWon) * (prob - homeWon)
		if (prob > 0.5) == (homeWon == 1) {
			correct++
		}
	}

	n := float64(len(games))
	sse, absSum := 0.0, 0.0
	for i := range predicted {
		d := predicted[i] - actual[i]
		sse += d * d
		absSum += math.Abs(d)
	}

	r2 := 0.0
	if variance := stats.PopVariance(actual); variance > 0 {
		r2 = 1 - sse/(variance*n)
	}

	return Metrics{
		RMSE:     math.Sqrt(sse / n),
		MAE:      absSum / n,
		R2:       r2,
		Brier:    brierSum / n,
		Accuracy: float64(correct) / n,
		Games:    len(games),
	}, nil
}
