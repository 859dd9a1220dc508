package rating

import (
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pucklab/puckcast/internal/table"
)

func gameLog(games ...[]string) *table.RowTable {
	tbl := table.NewRowTable()
	for i, g := range games {
		r := table.NewRecord(i)
		r.Set("date", table.Str(g[0]))
		r.Set("home_team", table.Str(g[1]))
		r.Set("away_team", table.Str(g[2]))
		r.Set("home_goals", table.FromString(g[3]))
		r.Set("away_goals", table.FromString(g[4]))
		tbl.Append(r)
	}
	return tbl
}

func TestExpectedScoreSymmetry(t *testing.T) {
	assert.InDelta(t, 0.5, ExpectedScore(1500, 1500), 1e-12)
	assert.InDelta(t, 1.0, ExpectedScore(1700, 1500)+ExpectedScore(1500, 1700), 1e-12)
	assert.Greater(t, ExpectedScore(1700, 1500), 0.5)
}

func TestFitMovesRatingsTowardWinner(t *testing.T) {
	tbl := gameLog(
		[]string{"2025-01-01", "Boston", "Providence", "4", "1"},
		[]string{"2025-01-05", "Boston", "Providence", "3", "2"},
	)
	params := DefaultParams()
	params.HomeAdvantage = 0
	m := NewModel(params, DefaultGameColumns(), zerolog.Nop())

	require.NoError(t, m.Fit(tbl))
	assert.Greater(t, m.Rating("Boston"), m.Rating("Providence"))
}

func TestFitConservesRatingWithoutMOV(t *testing.T) {
	tbl := gameLog(
		[]string{"2025-01-01", "Boston", "Providence", "4", "1"},
		[]string{"2025-01-03", "Providence", "Quinnipiac", "2", "3"},
	)
	params := DefaultParams()
	params.MOVMultiplier = 0
	m := NewModel(params, DefaultGameColumns(), zerolog.Nop())

	require.NoError(t, m.Fit(tbl))
	total := m.Rating("Boston") + m.Rating("Providence") + m.Rating("Quinnipiac")
	assert.InDelta(t, 3*params.InitialRating, total, 1e-9,
		"zero-sum updates conserve total rating")
}

func TestFitAnnotatesPreGameRatings(t *testing.T) {
	tbl := gameLog(
		[]string{"2025-01-01", "Boston", "Providence", "4", "1"},
		[]string{"2025-01-05", "Boston", "Providence", "1", "2"},
	)
	m := NewModel(DefaultParams(), DefaultGameColumns(), zerolog.Nop())
	require.NoError(t, m.Fit(tbl))

	first, second := tbl.Rows[0], tbl.Rows[1]

	pre, ok := first.Float("home_elo_pre")
	require.True(t, ok)
	assert.Equal(t, 1500.0, pre, "first game sees the initial rating")

	pre2, ok := second.Float("home_elo_pre")
	require.True(t, ok)
	assert.Greater(t, pre2, 1500.0, "second game sees the first game's result only")

	prob, ok := first.Float("home_win_prob")
	require.True(t, ok)
	assert.Greater(t, prob, 0.5, "home advantage favors the home side")

	assert.True(t, tbl.HasColumn("home_win_prob"))
}

func TestFitOrdersGamesChronologically(t *testing.T) {
	// Input order is reversed; the later game must still see the earlier
	// game's update.
	tbl := gameLog(
		[]string{"2025-01-05", "Boston", "Providence", "3", "2"},
		[]string{"2025-01-01", "Boston", "Providence", "4", "1"},
	)
	m := NewModel(DefaultParams(), DefaultGameColumns(), zerolog.Nop())
	require.NoError(t, m.Fit(tbl))

	pre, ok := tbl.Rows[1].Float("home_elo_pre")
	require.True(t, ok)
	assert.Equal(t, 1500.0, pre, "chronologically first game starts from scratch")

	pre, ok = tbl.Rows[0].Float("home_elo_pre")
	require.True(t, ok)
	assert.Greater(t, pre, 1500.0)
}

func TestBackToBackPenaltyLowersWinProbability(t *testing.T) {
	params := DefaultParams()
	params.BackToBackPenalty = 50

	rested := table.NewRecord(0)
	rested.Set("home_team", table.Str("Boston"))
	rested.Set("away_team", table.Str("Providence"))
	rested.Set("home_goals", table.Num(0))
	rested.Set("away_goals", table.Num(0))
	rested.SetNum("home_rest", 3)
	rested.SetNum("away_rest", 3)

	tired := table.NewRecord(1)
	tired.Set("home_team", table.Str("Boston"))
	tired.Set("away_team", table.Str("Providence"))
	tired.Set("home_goals", table.Num(0))
	tired.Set("away_goals", table.Num(0))
	tired.SetNum("home_rest", 1)
	tired.SetNum("away_rest", 3)

	m := NewModel(params, DefaultGameColumns(), zerolog.Nop())
	_, restedProb, err := m.PredictWinner(rested)
	require.NoError(t, err)
	_, tiredProb, err := m.PredictWinner(tired)
	require.NoError(t, err)

	assert.Greater(t, restedProb, tiredProb)
}

func TestDivisionTierSeeding(t *testing.T) {
	tbl := gameLog([]string{"2025-01-01", "Boston", "Providence", "2", "1"})
	tbl.Rows[0].Set("division", table.Str("D1"))

	m := NewModel(DefaultParams(), DefaultGameColumns(), zerolog.Nop())
	require.NoError(t, m.Fit(tbl))

	pre, _ := tbl.Rows[0].Float("home_elo_pre")
	assert.Equal(t, 1600.0, pre, "top division seeds 100 above initial")
}

func TestSeasonCarryover(t *testing.T) {
	params := DefaultParams()
	params.SeasonCarryover = 0.5
	m := NewModel(params, DefaultGameColumns(), zerolog.Nop())
	m.ratings["Boston"] = 1700

	m.ApplyCarryover()
	assert.InDelta(t, 1600.0, m.Rating("Boston"), 1e-12)
}

func TestOutcomeColumnOvertimeDiscount(t *testing.T) {
	tbl := gameLog([]string{"2025-01-01", "Boston", "Providence", "3", "2"})
	tbl.Rows[0].Set("home_outcome", table.Str("OTW"))

	params := DefaultParams()
	params.HomeAdvantage = 0
	params.MOVMultiplier = 0
	m := NewModel(params, DefaultGameColumns(), zerolog.Nop())
	require.NoError(t, m.Fit(tbl))

	// An OT win earns 0.75 against an expectation of 0.5: +8 with k=32.
	assert.InDelta(t, 1508.0, m.Rating("Boston"), 1e-9)
	assert.InDelta(t, 1492.0, m.Rating("Providence"), 1e-9)
}

func TestRankings(t *testing.T) {
	m := NewModel(DefaultParams(), DefaultGameColumns(), zerolog.Nop())
	m.ratings["Boston"] = 1650
	m.ratings["Providence"] = 1550
	m.ratings["Quinnipiac"] = 1600

	ranked := m.Rankings(2)
	require.Len(t, ranked, 2)
	assert.Equal(t, "Boston", ranked[0].Team)
	assert.Equal(t, "Quinnipiac", ranked[1].Team)
}

func TestEvaluateMetrics(t *testing.T) {
	var games [][]string
	for i := 0; i < 10; i++ {
		home, away := "4", "2"
		if i%3 == 0 {
			home, away = "1", "3"
		}
		games = append(games, []string{fmt.Sprintf("2025-01-%02d", i+1), "Boston", "Providence", home, away})
	}
	train := gameLog(games...)

	m := NewModel(DefaultParams(), DefaultGameColumns(), zerolog.Nop())
	require.NoError(t, m.Fit(train))

	test := gameLog([]string{"2025-02-01", "Boston", "Providence", "4", "2"})
	metrics, err := m.Evaluate(test)
	require.NoError(t, err)

	assert.Equal(t, 1, metrics.Games)
	assert.Greater(t, metrics.RMSE, 0.0)
	assert.Greater(t, metrics.MAE, 0.0)
	assert.GreaterOrEqual(t, metrics.Brier, 0.0)
	assert.LessOrEqual(t, metrics.Brier, 1.0)
}

func TestEvaluateEmptyTable(t *testing.T) {
	m := NewModel(DefaultParams(), DefaultGameColumns(), zerolog.Nop())
	empty := gameLog()
	empty.AddColumn("home_team")
	empty.AddColumn("away_team")
	empty.AddColumn("home_goals")
	empty.AddColumn("away_goals")

	_, err := m.Evaluate(empty)
	assert.ErrorIs(t, err, table.ErrInsufficientData)
}
