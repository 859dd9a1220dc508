// Package rating maintains running Elo ratings over a chronological game
// log. Ratings update game by game, so each game's pre-update ratings are
// leakage-free features for that game.
package rating

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pucklab/puckcast/internal/table"
)

// Contextual adjustment constants: travel fatigue per 1000 miles on the
// road, and rating cost per key injury.
const (
	travelPenaltyPer1000Miles = 15.0
	injuryPenalty             = 25.0
)

// Params are the Elo hyperparameters.
type Params struct {
	KFactor             float64 `yaml:"k_factor"`
	HomeAdvantage       float64 `yaml:"home_advantage"`
	InitialRating       float64 `yaml:"initial_rating"`
	MOVMultiplier       float64 `yaml:"mov_multiplier"`
	MOVMethod           string  `yaml:"mov_method"` // "linear" or "logarithmic"
	SeasonCarryover     float64 `yaml:"season_carryover"`
	OTWinMultiplier     float64 `yaml:"ot_win_multiplier"`
	RestAdvantagePerDay float64 `yaml:"rest_advantage_per_day"`
	BackToBackPenalty   float64 `yaml:"b2b_penalty"`
}

// DefaultParams returns the conventional starting point.
func DefaultParams() Params {
	return Params{
		KFactor:         32,
		HomeAdvantage:   100,
		InitialRating:   1500,
		MOVMethod:       "logarithmic",
		SeasonCarryover: 0.75,
		OTWinMultiplier: 0.75,
	}
}

// Columns names the game-log columns the model reads. Home/away teams and
// goals are required; the rest are optional context.
type Columns struct {
	Timestamp    string `yaml:"timestamp"`
	HomeTeam     string `yaml:"home_team"`
	AwayTeam     string `yaml:"away_team"`
	HomeGoals    string `yaml:"home_goals"`
	AwayGoals    string `yaml:"away_goals"`
	Outcome      string `yaml:"outcome"`
	HomeRest     string `yaml:"home_rest"`
	AwayRest     string `yaml:"away_rest"`
	TravelDist   string `yaml:"travel_distance"`
	HomeInjuries string `yaml:"home_injuries"`
	AwayInjuries string `yaml:"away_injuries"`
	Division     string `yaml:"division"`
	Season       string `yaml:"season"`
}

// DefaultGameColumns returns the conventional game-log column names.
func DefaultGameColumns() Columns {
	return Columns{
		Timestamp:    "date",
		HomeTeam:     "home_team",
		AwayTeam:     "away_team",
		HomeGoals:    "home_goals",
		AwayGoals:    "away_goals",
		Outcome:      "home_outcome",
		HomeRest:     "home_rest",
		AwayRest:     "away_rest",
		TravelDist:   "travel_distance",
		HomeInjuries: "home_injuries",
		AwayInjuries: "away_injuries",
		Division:     "division",
		Season:       "season",
	}
}

// Model holds running Elo state.
type Model struct {
	params  Params
	cols    Columns
	ratings map[string]float64
	log     zerolog.Logger
}

// NewModel creates an Elo model.
func NewModel(params Params, cols Columns, logger zerolog.Logger) *Model {
	if params.InitialRating == 0 {
		params.InitialRating = 1500
	}
	if params.KFactor == 0 {
		params.KFactor = 32
	}
	return &Model{
		params:  params,
		cols:    cols,
		ratings: make(map[string]float64),
		log:     logger,
	}
}

// Rating returns a team's current rating, the initial rating for teams not
// yet seen.
func (m *Model) Rating(team string) float64 {
	if r, ok := m.ratings[team]; ok {
		return r
	}
	return m.params.InitialRating
}

// ExpectedScore is the classic Elo win expectation for a against b.
func ExpectedScore(a, b float64) float64 {
	return 1 / (1 + math.Pow(10, (b-a)/400))
}

// initialRatingFor seeds a team by division tier: the top tier starts 100
// points above the initial rating, the third tier 100 below.
func (m *Model) initialRatingFor(division string) float64 {
	switch strings.ToUpper(division) {
	case "D1":
		return m.params.InitialRating + 100
	case "D3":
		return m.params.InitialRating - 100
	default:
		return m.params.InitialRating
	}
}

// movMultiplier scales the update by margin of victory.
func (m *Model) movMultiplier(goalDiff float64) float64 {
	if m.params.MOVMultiplier == 0 {
		return 1
	}
	if m.params.MOVMethod == "linear" {
		return 1 + math.Abs(goalDiff)*m.params.MOVMultiplier
	}
	return 1 + math.Log(math.Abs(goalDiff)+1)*m.params.MOVMultiplier
}

// adjustForContext applies home advantage, back-to-back penalty, travel
// fatigue, and injuries to a base rating.
func (m *Model) adjustForContext(elo float64, isHome bool, restDays, travelDist, injuries float64) float64 {
	adjusted := elo
	if isHome {
		adjusted += m.params.HomeAdvantage
	}
	if restDays <= 1 {
		adjusted -= m.params.BackToBackPenalty
	}
	if !isHome && travelDist > 0 {
		adjusted -= travelDist / 1000 * travelPenaltyPer1000Miles
	}
	adjusted -= injuries * injuryPenalty
	return adjusted
}

// game is one parsed game-log row.
type game struct {
	row       *table.Record
	homeTeam  string
	awayTeam  string
	homeGoals float64
	awayGoals float64
	homeRest  float64
	awayRest  float64
	travel    float64
	homeInj   float64
	awayInj   float64
	season    string
}

func (m *Model) parseGame(row *table.Record) (game, error) {
	g := game{row: row, homeRest: 2, awayRest: 2}
	var ok bool
	if g.homeTeam, ok = row.Str(m.cols.HomeTeam); !ok {
		return g, fmt.Errorf("row %d: missing home team", row.Seq)
	}
	if g.awayTeam, ok = row.Str(m.cols.AwayTeam); !ok {
		return g, fmt.Errorf("row %d: missing away team", row.Seq)
	}
	if g.homeGoals, ok = row.Float(m.cols.HomeGoals); !ok {
		return g, fmt.Errorf("row %d: missing home goals", row.Seq)
	}
	if g.awayGoals, ok = row.Float(m.cols.AwayGoals); !ok {
		return g, fmt.Errorf("row %d: missing away goals", row.Seq)
	}
	if v, ok := row.Float(m.cols.HomeRest); ok {
		g.homeRest = v
	}
	if v, ok := row.Float(m.cols.AwayRest); ok {
		g.awayRest = v
	}
	if v, ok := row.Float(m.cols.TravelDist); ok {
		g.travel = v
	}
	if v, ok := row.Float(m.cols.HomeInjuries); ok {
		g.homeInj = v
	}
	if v, ok := row.Float(m.cols.AwayInjuries); ok {
		g.awayInj = v
	}
	g.season, _ = row.Str(m.cols.Season)
	return g, nil
}

// adjustedRatings returns both teams' context-adjusted ratings, including
// the rest differential advantage.
func (m *Model) adjustedRatings(g game) (home, away float64) {
	home = m.adjustForContext(m.Rating(g.homeTeam), true, g.homeRest, 0, g.homeInj)
	away = m.adjustForContext(m.Rating(g.awayTeam), false, g.awayRest, g.travel, g.awayInj)
	home += (g.homeRest - g.awayRest) * m.params.RestAdvantagePerDay
	return home, away
}

// actualScore converts a game's outcome to the home side's score in [0, 1].
// Overtime results are discounted by the OT multiplier.
func (m *Model) actualScore(g game) float64 {
	if outcome, ok := g.row.Str(m.cols.Outcome); ok {
		switch strings.ToUpper(strings.TrimSpace(outcome)) {
		case "RW", "W", "1", "WIN":
			return 1
		case "OTW":
			return m.params.OTWinMultiplier
		case "OTL":
			return 1 - m.params.OTWinMultiplier
		default:
			return 0
		}
	}
	if g.homeGoals > g.awayGoals {
		return 1
	}
	return 0
}

// update applies one game's result to both ratings.
func (m *Model) update(g game) {
	homeAdj, awayAdj := m.adjustedRatings(g)
	expected := ExpectedScore(homeAdj, awayAdj)
	actual := m.actualScore(g)

	k := m.params.KFactor * m.movMultiplier(g.homeGoals-g.awayGoals)
	m.ratings[g.homeTeam] = m.Rating(g.homeTeam) + k*(actual-expected)
	m.ratings[g.awayTeam] = m.Rating(g.awayTeam) + k*((1-actual)-(1-expected))
}

// ApplyCarryover regresses every rating toward the initial rating by the
// season carryover factor, for use at season boundaries.
func (m *Model) ApplyCarryover() {
	c := m.params.SeasonCarryover
	if c <= 0 || c >= 1 {
		return
	}
	for team, r := range m.ratings {
		m.ratings[team] = c*r + (1-c)*m.params.InitialRating
	}
}

// Fit walks the game log in chronological order, seeding unseen teams (by
// division tier when a division column exists), annotating each row with
// the pre-update ratings and home win probability, and updating after each
// game. Season changes apply the carryover regression. Rows with malformed
// timestamps are excluded and logged, per the grouper's policy.
func (m *Model) Fit(t *table.RowTable) error {
	games, err := m.chronological(t)
	if err != nil {
		return err
	}

	season := ""
	for _, g := range games {
		if g.season != "" && season != "" && g.season != season {
			m.ApplyCarryover()
			m.log.Info().Str("season", g.season).Msg("season boundary, carryover applied")
		}
		if g.season != "" {
			season = g.season
		}

		m.seed(g)
		homeAdj, awayAdj := m.adjustedRatings(g)
		g.row.SetNum("home_elo_pre", m.Rating(g.homeTeam))
		g.row.SetNum("away_elo_pre", m.Rating(g.awayTeam))
		g.row.SetNum("home_win_prob", ExpectedScore(homeAdj, awayAdj))
		m.update(g)
	}

	t.AddColumn("home_elo_pre")
	t.AddColumn("away_elo_pre")
	t.AddColumn("home_win_prob")
	m.log.Info().Int("games", len(games)).Int("teams", len(m.ratings)).Msg("elo fit complete")
	return nil
}

// seed ensures both teams have ratings before the game is scored.
func (m *Model) seed(g game) {
	if _, ok := m.ratings[g.homeTeam]; !ok {
		division, _ := g.row.Str(m.cols.Division)
		m.ratings[g.homeTeam] = m.initialRatingFor(division)
	}
	if _, ok := m.ratings[g.awayTeam]; !ok {
		m.ratings[g.awayTeam] = m.params.InitialRating
	}
}

// chronological parses and time-orders the game log.
func (m *Model) chronological(t *table.RowTable) ([]game, error) {
	for _, col := range []string{m.cols.HomeTeam, m.cols.AwayTeam, m.cols.HomeGoals, m.cols.AwayGoals} {
		if !t.HasColumn(col) {
			return nil, table.UnknownColumnError(col)
		}
	}

	games := make([]game, 0, t.Len())
	for _, row := range t.Rows {
		if m.cols.Timestamp != "" && !row.HasTime {
			raw, ok := row.Str(m.cols.Timestamp)
			if !ok {
				m.log.Warn().Int("seq", row.Seq).Msg("game has no timestamp, excluded from fit")
				continue
			}
			ts, err := table.ParseTimestamp(raw)
			if err != nil {
				m.log.Warn().Int("seq", row.Seq).Str("value", raw).
					Msg("malformed timestamp, excluded from fit")
				continue
			}
			row.Timestamp = ts
			row.HasTime = true
		}
		g, err := m.parseGame(row)
		if err != nil {
			return nil, err
		}
		games = append(games, g)
	}

	sort.SliceStable(games, func(i, j int) bool {
		a, b := games[i].row, games[j].row
		if a.Timestamp.Equal(b.Timestamp) {
			return a.Seq < b.Seq
		}
		return a.Timestamp.Before(b.Timestamp)
	})
	return games, nil
}

// PredictGoals converts the home win probability into expected goals per
// side, anchored on a league average of three goals per team and a twelve
// goal swing across the probability range.
func (m *Model) PredictGoals(row *table.Record) (home, away float64, err error) {
	g, err := m.parseGame(row)
	if err != nil {
		return 0, 0, err
	}
	homeAdj, awayAdj := m.adjustedRatings(g)
	prob := ExpectedScore(homeAdj, awayAdj)
	expectedDiff := (prob - 0.5) * 12
	return 3 + expectedDiff/2, 3 - expectedDiff/2, nil
}

// PredictWinner names the favored team and its win probability.
func (m *Model) PredictWinner(row *table.Record) (team string, prob float64, err error) {
	g, err := m.parseGame(row)
	if err != nil {
		return "", 0, err
	}
	homeAdj, awayAdj := m.adjustedRatings(g)
	homeProb := ExpectedScore(homeAdj, awayAdj)
	if homeProb > 0.5 {
		return g.homeTeam, homeProb, nil
	}
	return g.awayTeam, 1 - homeProb, nil
}

// TeamRating pairs a team with its rating for rankings output.
type TeamRating struct {
	Team   string
	Rating float64
}

// Rankings returns teams sorted by rating, highest first; topN <= 0 returns
// all.
func (m *Model) Rankings(topN int) []TeamRating {
	out := make([]TeamRating, 0, len(m.ratings))
	for team, r := range m.ratings {
		out = append(out, TeamRating{Team: team, Rating: r})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Rating == out[j].Rating {
			return out[i].Team < out[j].Team
		}
		return out[i].Rating > out[j].Rating
	})
	if topN > 0 && topN < len(out) {
		out = out[:topN]
	}
	return out
}
