package features

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/pucklab/puckcast/internal/stats"
	"github.com/pucklab/puckcast/internal/table"
)

// NeutralWinRate is the defined value for any win-rate style metric whose
// denominator is zero: a team with no games is treated as average, never as
// a division-by-zero failure.
const NeutralWinRate = 0.5

// ColumnMap names the input columns the strength passes read. Zero fields
// fall back to the defaults.
type ColumnMap struct {
	GoalsFor     string `yaml:"goals_for"`
	GoalsAgainst string `yaml:"goals_against"`
	Wins         string `yaml:"wins"`
	Losses       string `yaml:"losses"`
	GamesPlayed  string `yaml:"games_played"`
	Result       string `yaml:"result"`
	GoalDiff     string `yaml:"goal_differential"`
	Opponent     string `yaml:"opponent"`
	Conference   string `yaml:"conference"`
	Division     string `yaml:"division"`
}

// DefaultColumns returns the conventional game-log column names.
func DefaultColumns() ColumnMap {
	return ColumnMap{
		GoalsFor:     "goals_for",
		GoalsAgainst: "goals_against",
		Wins:         "wins",
		Losses:       "losses",
		GamesPlayed:  "games_played",
		Result:       "result",
		GoalDiff:     "goal_differential",
		Opponent:     "opponent",
		Conference:   "conference",
		Division:     "division",
	}
}

func (c ColumnMap) withDefaults() ColumnMap {
	d := DefaultColumns()
	if c.GoalsFor == "" {
		c.GoalsFor = d.GoalsFor
	}
	if c.GoalsAgainst == "" {
		c.GoalsAgainst = d.GoalsAgainst
	}
	if c.Wins == "" {
		c.Wins = d.Wins
	}
	if c.Losses == "" {
		c.Losses = d.Losses
	}
	if c.GamesPlayed == "" {
		c.GamesPlayed = d.GamesPlayed
	}
	if c.Result == "" {
		c.Result = d.Result
	}
	if c.GoalDiff == "" {
		c.GoalDiff = d.GoalDiff
	}
	if c.Opponent == "" {
		c.Opponent = d.Opponent
	}
	if c.Conference == "" {
		c.Conference = d.Conference
	}
	if c.Division == "" {
		c.Division = d.Division
	}
	return c
}

// winPct reads a row's record as wins/(wins+losses), NeutralWinRate when the
// team has no decided games.
func winPct(row *table.Record, cols ColumnMap) float64 {
	wins, _ := row.Float(cols.Wins)
	losses, _ := row.Float(cols.Losses)
	if wins+losses == 0 {
		return NeutralWinRate
	}
	return wins / (wins + losses)
}

// PythagoreanPass derives the Pythagorean win expectation per row:
// GF^2/(GF^2+GA^2), left unset unless both totals are positive. When games
// played and actual wins are present it also emits expected_wins and
// luck_factor = wins - expected_wins.
type PythagoreanPass struct {
	Cols ColumnMap
}

// NewPythagoreanPass builds the pass with the given column names.
func NewPythagoreanPass(cols ColumnMap) *PythagoreanPass {
	return &PythagoreanPass{Cols: cols.withDefaults()}
}

func (p *PythagoreanPass) Name() string { return "pythagorean" }

func (p *PythagoreanPass) Requires() []string {
	return []string{p.Cols.GoalsFor, p.Cols.GoalsAgainst}
}

func (p *PythagoreanPass) Produces() []string {
	return []string{"pythagorean_expectation", "expected_wins", "luck_factor"}
}

func (p *PythagoreanPass) ApplyGroup(entity string, rows []*table.Record) error {
	for _, row := range rows {
		gf, okF := row.Float(p.Cols.GoalsFor)
		ga, okA := row.Float(p.Cols.GoalsAgainst)
		if !okF || !okA || gf <= 0 || ga <= 0 {
			continue
		}
		exp := gf * gf / (gf*gf + ga*ga)
		row.SetNum("pythagorean_expectation", exp)

		gp, okGP := row.Float(p.Cols.GamesPlayed)
		if !okGP {
			continue
		}
		expectedWins := exp * gp
		row.SetNum("expected_wins", expectedWins)
		if wins, okW := row.Float(p.Cols.Wins); okW {
			row.SetNum("luck_factor", wins-expectedWins)
		}
	}
	return nil
}

// ConsistencyPass measures scoring steadiness: population mean and standard
// deviation of a scoring column, coefficient_of_variation = std/mean (unset
// when the mean is zero), and consistency_score = 1 - CV. ScopeSeason
// broadcasts the whole group's numbers to every row; ScopeAsOf restricts
// each row to its prefix of the series.
type ConsistencyPass struct {
	Column string
	Scope  Scope
}

// NewConsistencyPass builds the pass over a scoring column.
func NewConsistencyPass(column string, scope Scope) *ConsistencyPass {
	return &ConsistencyPass{Column: column, Scope: scope}
}

func (p *ConsistencyPass) Name() string {
	return fmt.Sprintf("consistency(%s,%s)", p.Column, p.Scope)
}

func (p *ConsistencyPass) Requires() []string { return []string{p.Column} }

func (p *ConsistencyPass) Produces() []string {
	return []string{"scoring_mean", "scoring_std", "coefficient_of_variation", "consistency_score"}
}

func (p *ConsistencyPass) ApplyGroup(entity string, rows []*table.Record) error {
	if p.Scope == ScopeAsOf {
		var prefix []float64
		for _, row := range rows {
			if v, ok := row.Float(p.Column); ok {
				prefix = append(prefix, v)
			}
			setConsistency(row, prefix)
		}
		return nil
	}

	var values []float64
	for _, row := range rows {
		if v, ok := row.Float(p.Column); ok {
			values = append(values, v)
		}
	}
	for _, row := range rows {
		setConsistency(row, values)
	}
	return nil
}

func setConsistency(row *table.Record, values []float64) {
	if len(values) == 0 {
		return
	}
	mean := stats.Mean(values)
	std := stats.PopStd(values)
	row.SetNum("scoring_mean", mean)
	row.SetNum("scoring_std", std)
	if mean == 0 {
		return
	}
	cv := std / mean
	row.SetNum("coefficient_of_variation", cv)
	row.SetNum("consistency_score", 1-cv)
}

// ClutchPass computes the win rate restricted to close games, those with
// |goal differential| <= 1. ScopeSeason broadcasts one rate per group;
// ScopeAsOf uses each row's prefix. A group with no close games gets the
// neutral rate.
type ClutchPass struct {
	Cols  ColumnMap
	Scope Scope
}

// NewClutchPass builds the pass.
func NewClutchPass(cols ColumnMap, scope Scope) *ClutchPass {
	return &ClutchPass{Cols: cols.withDefaults(), Scope: scope}
}

func (p *ClutchPass) Name() string {
	return fmt.Sprintf("clutch(%s)", p.Scope)
}

func (p *ClutchPass) Requires() []string {
	return []string{p.Cols.Result, p.Cols.GoalDiff}
}

func (p *ClutchPass) Produces() []string { return []string{"clutch_factor"} }

func (p *ClutchPass) ApplyGroup(entity string, rows []*table.Record) error {
	closeGames, closeWins := 0, 0
	rate := func() float64 {
		if closeGames == 0 {
			return NeutralWinRate
		}
		return float64(closeWins) / float64(closeGames)
	}

	tally := func(row *table.Record) {
		gd, ok := row.Float(p.Cols.GoalDiff)
		if !ok || math.Abs(gd) > 1 {
			return
		}
		win, ok := parseOutcome(row.Get(p.Cols.Result))
		if !ok {
			return
		}
		closeGames++
		if win {
			closeWins++
		}
	}

	if p.Scope == ScopeAsOf {
		for _, row := range rows {
			tally(row)
			row.SetNum("clutch_factor", rate())
		}
		return nil
	}

	for _, row := range rows {
		tally(row)
	}
	for _, row := range rows {
		row.SetNum("clutch_factor", rate())
	}
	return nil
}

// ScheduleStrengthPass computes strength of schedule: the mean of the win
// totals of an entity's opponents across its games. ScopeSeason reads each
// opponent's final win total; ScopeAsOf reads the opponent's win total as of
// the current row's timestamp, and covers only games up to that row.
type ScheduleStrengthPass struct {
	Cols  ColumnMap
	Scope Scope
}

// NewScheduleStrengthPass builds the pass.
func NewScheduleStrengthPass(cols ColumnMap, scope Scope) *ScheduleStrengthPass {
	return &ScheduleStrengthPass{Cols: cols.withDefaults(), Scope: scope}
}

func (p *ScheduleStrengthPass) Name() string {
	return fmt.Sprintf("strength_of_schedule(%s)", p.Scope)
}

func (p *ScheduleStrengthPass) Requires() []string {
	return []string{p.Cols.Opponent, p.Cols.Wins}
}

func (p *ScheduleStrengthPass) Produces() []string {
	return []string{"strength_of_schedule"}
}

func (p *ScheduleStrengthPass) Apply(gs *table.GroupedSeries) error {
	if p.Scope == ScopeAsOf {
		return p.applyAsOf(gs)
	}

	// Season variant: each opponent contributes its final win total.
	finalWins := make(map[string]float64, gs.NumGroups())
	for _, key := range gs.Keys() {
		rows := gs.Rows(key)
		for i := len(rows) - 1; i >= 0; i-- {
			if w, ok := rows[i].Float(p.Cols.Wins); ok {
				finalWins[key] = w
				break
			}
		}
	}

	for _, key := range gs.Keys() {
		rows := gs.Rows(key)
		var opponents []float64
		for _, row := range rows {
			opp, ok := row.Str(p.Cols.Opponent)
			if !ok {
				continue
			}
			if w, known := finalWins[opp]; known {
				opponents = append(opponents, w)
			}
		}
		if len(opponents) == 0 {
			continue
		}
		sos := stats.Mean(opponents)
		for _, row := range rows {
			row.SetNum("strength_of_schedule", sos)
		}
	}
	return nil
}

func (p *ScheduleStrengthPass) applyAsOf(gs *table.GroupedSeries) error {
	for _, key := range gs.Keys() {
		rows := gs.Rows(key)
		var opponents []string
		for i, row := range rows {
			if opp, ok := row.Str(p.Cols.Opponent); ok {
				opponents = append(opponents, opp)
			}
			if len(opponents) == 0 || !row.HasTime {
				continue
			}
			var wins []float64
			for _, opp := range opponents {
				if w, ok := p.winsAsOf(gs, opp, row.Timestamp); ok {
					wins = append(wins, w)
				}
			}
			if len(wins) > 0 {
				rows[i].SetNum("strength_of_schedule", stats.Mean(wins))
			}
		}
	}
	return nil
}

// winsAsOf reads an opponent's win total from its latest row at or before ts.
func (p *ScheduleStrengthPass) winsAsOf(gs *table.GroupedSeries, opponent string, ts time.Time) (float64, bool) {
	rows := gs.Rows(opponent)
	if len(rows) == 0 {
		return 0, false
	}
	idx := sort.Search(len(rows), func(i int) bool {
		return rows[i].Timestamp.After(ts)
	})
	for i := idx - 1; i >= 0; i-- {
		if w, ok := rows[i].Float(p.Cols.Wins); ok {
			return w, true
		}
	}
	return 0, false
}

// HeadToHeadPass computes h2h_win_rate: the entity's win rate against the
// specific opponent of each row, keyed by the unordered pairing with a
// directed numerator. ScopeSeason uses every meeting in the table;
// ScopeAsOf uses strictly earlier meetings only and reports the neutral
// rate for a first meeting.
type HeadToHeadPass struct {
	Cols  ColumnMap
	Scope Scope
}

// NewHeadToHeadPass builds the pass.
func NewHeadToHeadPass(cols ColumnMap, scope Scope) *HeadToHeadPass {
	return &HeadToHeadPass{Cols: cols.withDefaults(), Scope: scope}
}

func (p *HeadToHeadPass) Name() string {
	return fmt.Sprintf("head_to_head(%s)", p.Scope)
}

func (p *HeadToHeadPass) Requires() []string {
	return []string{p.Cols.Opponent, p.Cols.Result}
}

func (p *HeadToHeadPass) Produces() []string { return []string{"h2h_win_rate"} }

func (p *HeadToHeadPass) Apply(gs *table.GroupedSeries) error {
	for _, key := range gs.Keys() {
		rows := gs.Rows(key)

		type record struct{ games, wins int }
		totals := make(map[string]*record)
		if p.Scope == ScopeSeason {
			for _, row := range rows {
				opp, win, ok := p.meeting(row)
				if !ok {
					continue
				}
				rec := totals[opp]
				if rec == nil {
					rec = &record{}
					totals[opp] = rec
				}
				rec.games++
				if win {
					rec.wins++
				}
			}
			for _, row := range rows {
				opp, _, ok := p.meeting(row)
				if !ok {
					continue
				}
				rec := totals[opp]
				row.SetNum("h2h_win_rate", float64(rec.wins)/float64(rec.games))
			}
			continue
		}

		// As-of: rate over strictly earlier meetings with this opponent.
		for _, row := range rows {
			opp, win, ok := p.meeting(row)
			if !ok {
				continue
			}
			rec := totals[opp]
			if rec == nil {
				rec = &record{}
				totals[opp] = rec
			}
			rate := NeutralWinRate
			if rec.games > 0 {
				rate = float64(rec.wins) / float64(rec.games)
			}
			row.SetNum("h2h_win_rate", rate)
			rec.games++
			if win {
				rec.wins++
			}
		}
	}
	return nil
}

func (p *HeadToHeadPass) meeting(row *table.Record) (opponent string, win bool, ok bool) {
	opponent, ok = row.Str(p.Cols.Opponent)
	if !ok {
		return "", false, false
	}
	win, ok = parseOutcome(row.Get(p.Cols.Result))
	return opponent, win, ok
}

// ConferenceAdjustPass computes mean win percentage per conference and per
// division and the conference-relative adjustment
// adjusted_win_pct = win_pct / conference_avg * 0.5, unset when the
// conference average is zero. Also emits each row's own win_pct. Rows
// without a conference or division value skip that side of the output.
type ConferenceAdjustPass struct {
	Cols  ColumnMap
	Scope Scope
}

// NewConferenceAdjustPass builds the pass.
func NewConferenceAdjustPass(cols ColumnMap, scope Scope) *ConferenceAdjustPass {
	return &ConferenceAdjustPass{Cols: cols.withDefaults(), Scope: scope}
}

func (p *ConferenceAdjustPass) Name() string {
	return fmt.Sprintf("conference_adjust(%s)", p.Scope)
}

func (p *ConferenceAdjustPass) Requires() []string {
	return []string{p.Cols.Wins, p.Cols.Losses}
}

func (p *ConferenceAdjustPass) Produces() []string {
	return []string{"win_pct", "conference_avg_win_pct", "division_avg_win_pct", "adjusted_win_pct"}
}

// memberRow is one row's win percentage inside a conference or division,
// kept in time order for the as-of variant.
type memberRow struct {
	ts      time.Time
	hasTime bool
	pct     float64
}

func (p *ConferenceAdjustPass) Apply(gs *table.GroupedSeries) error {
	conferences := p.collect(gs, p.Cols.Conference)
	divisions := p.collect(gs, p.Cols.Division)

	for _, key := range gs.Keys() {
		for _, row := range gs.Rows(key) {
			pct := winPct(row, p.Cols)
			row.SetNum("win_pct", pct)

			if conf, ok := row.Str(p.Cols.Conference); ok {
				if avg, known := p.average(conferences[conf], row); known {
					row.SetNum("conference_avg_win_pct", avg)
					if avg != 0 {
						row.SetNum("adjusted_win_pct", pct/avg*0.5)
					}
				}
			}
			if div, ok := row.Str(p.Cols.Division); ok {
				if avg, known := p.average(divisions[div], row); known {
					row.SetNum("division_avg_win_pct", avg)
				}
			}
		}
	}
	return nil
}

func (p *ConferenceAdjustPass) collect(gs *table.GroupedSeries, column string) map[string][]memberRow {
	members := make(map[string][]memberRow)
	for _, key := range gs.Keys() {
		for _, row := range gs.Rows(key) {
			group, ok := row.Str(column)
			if !ok {
				continue
			}
			members[group] = append(members[group], memberRow{
				ts:      row.Timestamp,
				hasTime: row.HasTime,
				pct:     winPct(row, p.Cols),
			})
		}
	}
	for _, rows := range members {
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].ts.Before(rows[j].ts) })
	}
	return members
}

func (p *ConferenceAdjustPass) average(members []memberRow, row *table.Record) (float64, bool) {
	if len(members) == 0 {
		return 0, false
	}
	if p.Scope == ScopeSeason {
		total := 0.0
		for _, m := range members {
			total += m.pct
		}
		return total / float64(len(members)), true
	}

	if !row.HasTime {
		return 0, false
	}
	total, n := 0.0, 0
	for _, m := range members {
		if m.hasTime && m.ts.After(row.Timestamp) {
			break
		}
		total += m.pct
		n++
	}
	if n == 0 {
		return 0, false
	}
	return total / float64(n), true
}

// StrengthIndexPass emits two composite ratings per row. strength_index is
// the basic form win_rate*50 + goal_diff*0.5. strength_index_enhanced blends
// win rate (30%), goal differential per game (20%), Pythagorean expectation
// (30%), goals for per game (10%), and goals against per game (10%), each
// component normalized so the composite lands on a 0-100 scale.
type StrengthIndexPass struct {
	Cols ColumnMap
}

// NewStrengthIndexPass builds the pass.
func NewStrengthIndexPass(cols ColumnMap) *StrengthIndexPass {
	return &StrengthIndexPass{Cols: cols.withDefaults()}
}

func (p *StrengthIndexPass) Name() string { return "strength_index" }

func (p *StrengthIndexPass) Requires() []string {
	return []string{p.Cols.Wins, p.Cols.Losses, p.Cols.GoalDiff}
}

func (p *StrengthIndexPass) Produces() []string {
	return []string{"strength_index", "strength_index_enhanced"}
}

// Per-game normalization bounds: six goals per game covers the observed
// scoring range, a differential of +/-3 per game covers blowout seasons.
const (
	perGameGoalCeiling = 6.0
	perGameDiffRange   = 3.0
)

func (p *StrengthIndexPass) ApplyGroup(entity string, rows []*table.Record) error {
	for _, row := range rows {
		rate := winPct(row, p.Cols)
		gd, _ := row.Float(p.Cols.GoalDiff)
		row.SetNum("strength_index", rate*50+gd*0.5)

		gp, okGP := row.Float(p.Cols.GamesPlayed)
		if !okGP || gp <= 0 {
			continue
		}
		gf, _ := row.Float(p.Cols.GoalsFor)
		ga, _ := row.Float(p.Cols.GoalsAgainst)

		pyth := NeutralWinRate
		if gf > 0 && ga > 0 {
			pyth = gf * gf / (gf*gf + ga*ga)
		}

		gdPerGame := stats.Clamp01((gd/gp + perGameDiffRange) / (2 * perGameDiffRange))
		gfPerGame := stats.Clamp01(gf / gp / perGameGoalCeiling)
		gaPerGame := 1 - stats.Clamp01(ga/gp/perGameGoalCeiling)

		enhanced := rate*30 + gdPerGame*20 + pyth*30 + gfPerGame*10 + gaPerGame*10
		row.SetNum("strength_index_enhanced", enhanced)
	}
	return nil
}
