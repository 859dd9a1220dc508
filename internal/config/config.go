// Package config loads the puckcast pipeline configuration from YAML and
// assembles the configured feature passes.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pucklab/puckcast/internal/features"
	"github.com/pucklab/puckcast/internal/rating"
	"github.com/pucklab/puckcast/internal/table"
)

// Config is the full pipeline configuration.
type Config struct {
	Grouping table.GrouperConfig `yaml:"grouping"`

	Rolling []RollingConfig `yaml:"rolling"`
	EWMA    []EWMAConfig    `yaml:"ewma"`
	Lags    []LagConfig     `yaml:"lags"`

	Streaks  *StreakConfig   `yaml:"streaks"`
	RestDays bool            `yaml:"rest_days"`
	Strength *StrengthConfig `yaml:"strength"`

	Split  SplitConfig   `yaml:"split"`
	Rating *RatingConfig `yaml:"rating"`
}

// RollingConfig configures one rolling-window pass.
type RollingConfig struct {
	Column string          `yaml:"column"`
	Window int             `yaml:"window"`
	Stats  []features.Stat `yaml:"stats"`
}

// EWMAConfig configures one EWMA pass; exactly one of alpha or span must be
// set.
type EWMAConfig struct {
	Column string  `yaml:"column"`
	Alpha  float64 `yaml:"alpha"`
	Span   float64 `yaml:"span"`
}

// LagConfig configures one lag pass.
type LagConfig struct {
	Column  string `yaml:"column"`
	Periods []int  `yaml:"periods"`
}

// StreakConfig configures the streak pass.
type StreakConfig struct {
	ResultColumn string `yaml:"result_column"`
}

// StrengthConfig configures the strength metric passes.
type StrengthConfig struct {
	Scope         features.Scope     `yaml:"scope"`
	Columns       features.ColumnMap `yaml:"columns"`
	ScoringColumn string             `yaml:"scoring_column"`
}

// SplitConfig configures both splitters.
type SplitConfig struct {
	NSplits      int     `yaml:"n_splits"`
	TestFraction float64 `yaml:"test_fraction"`
	TargetColumn string  `yaml:"target_column"`
	Seed         int64   `yaml:"seed"`
}

// RatingConfig configures the Elo pass.
type RatingConfig struct {
	Params  rating.Params  `yaml:"params"`
	Columns rating.Columns `yaml:"columns"`
}

// Load reads, parses, and validates a YAML config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the stock configuration used when no file is given.
func Default() *Config {
	cfg := &Config{
		Grouping: table.GrouperConfig{EntityColumn: "team", TimestampColumn: "date"},
		Rolling: []RollingConfig{
			{Column: "goals_for", Window: 5, Stats: []features.Stat{features.StatMean, features.StatStd}},
			{Column: "goals_against", Window: 5, Stats: []features.Stat{features.StatMean}},
		},
		EWMA:     []EWMAConfig{{Column: "goals_for", Span: 10}},
		Lags:     []LagConfig{{Column: "goals_for", Periods: []int{1, 2, 3}}},
		Streaks:  &StreakConfig{ResultColumn: "result"},
		RestDays: true,
		Strength: &StrengthConfig{Scope: features.ScopeSeason},
		Split:    SplitConfig{NSplits: 5, TestFraction: 0.2, Seed: 42},
	}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Split.NSplits == 0 {
		c.Split.NSplits = 5
	}
	if c.Split.TestFraction == 0 {
		c.Split.TestFraction = 0.2
	}
	if c.Strength != nil {
		if c.Strength.Scope == "" {
			c.Strength.Scope = features.ScopeSeason
		}
		if c.Strength.ScoringColumn == "" {
			c.Strength.ScoringColumn = "goals_for"
		}
	}
	if c.Rating != nil {
		if c.Rating.Params == (rating.Params{}) {
			c.Rating.Params = rating.DefaultParams()
		}
		if c.Rating.Columns == (rating.Columns{}) {
			c.Rating.Columns = rating.DefaultGameColumns()
		}
	}
}

// Validate rejects configurations the pipeline cannot run.
func (c *Config) Validate() error {
	for _, r := range c.Rolling {
		if r.Column == "" {
			return fmt.Errorf("rolling: column is required")
		}
		if r.Window <= 0 {
			return fmt.Errorf("rolling %q: window must be positive, got %d", r.Column, r.Window)
		}
		for _, s := range r.Stats {
			if !features.ValidStat(s) {
				return fmt.Errorf("rolling %q: unknown statistic %q", r.Column, s)
			}
		}
	}
	for _, e := range c.EWMA {
		if e.Column == "" {
			return fmt.Errorf("ewma: column is required")
		}
		if (e.Alpha == 0) == (e.Span == 0) {
			return fmt.Errorf("ewma %q: exactly one of alpha or span must be set", e.Column)
		}
	}
	for _, l := range c.Lags {
		if l.Column == "" {
			return fmt.Errorf("lags: column is required")
		}
		for _, k := range l.Periods {
			if k <= 0 {
				return fmt.Errorf("lags %q: period must be positive, got %d", l.Column, k)
			}
		}
	}
	if c.Streaks != nil && c.Streaks.ResultColumn == "" {
		return fmt.Errorf("streaks: result_column is required")
	}
	if c.Strength != nil {
		switch c.Strength.Scope {
		case features.ScopeSeason, features.ScopeAsOf:
		default:
			return fmt.Errorf("strength: scope must be %q or %q, got %q",
				features.ScopeSeason, features.ScopeAsOf, c.Strength.Scope)
		}
	}
	if c.Split.NSplits <= 0 {
		return fmt.Errorf("split: n_splits must be positive, got %d", c.Split.NSplits)
	}
	if c.Split.TestFraction <= 0 || c.Split.TestFraction >= 1 {
		return fmt.Errorf("split: test_fraction must be in (0, 1), got %g", c.Split.TestFraction)
	}
	return nil
}

// BuildPasses assembles the configured passes in dependency order.
func (c *Config) BuildPasses() ([]features.GroupPass, []features.TablePass, error) {
	var groupPasses []features.GroupPass
	var tablePasses []features.TablePass

	for _, r := range c.Rolling {
		pass, err := features.NewRollingPass(r.Column, r.Window, r.Stats...)
		if err != nil {
			return nil, nil, err
		}
		groupPasses = append(groupPasses, pass)
	}
	for _, e := range c.EWMA {
		var pass *features.EWMAPass
		var err error
		if e.Alpha != 0 {
			pass, err = features.NewEWMAPass(e.Column, e.Alpha)
		} else {
			pass, err = features.NewEWMAPassFromSpan(e.Column, e.Span)
		}
		if err != nil {
			return nil, nil, err
		}
		groupPasses = append(groupPasses, pass)
	}
	for _, l := range c.Lags {
		pass, err := features.NewLagPass(l.Column, l.Periods)
		if err != nil {
			return nil, nil, err
		}
		groupPasses = append(groupPasses, pass)
	}
	if c.Streaks != nil {
		groupPasses = append(groupPasses, features.NewStreakPass(c.Streaks.ResultColumn))
	}
	if c.RestDays {
		groupPasses = append(groupPasses, features.NewRestPass())
	}
	if c.Strength != nil {
		cols := c.Strength.Columns
		scope := c.Strength.Scope
		groupPasses = append(groupPasses,
			features.NewPythagoreanPass(cols),
			features.NewConsistencyPass(c.Strength.ScoringColumn, scope),
			features.NewClutchPass(cols, scope),
			features.NewStrengthIndexPass(cols),
		)
		tablePasses = append(tablePasses,
			features.NewScheduleStrengthPass(cols, scope),
			features.NewHeadToHeadPass(cols, scope),
			features.NewConferenceAdjustPass(cols, scope),
		)
	}
	return groupPasses, tablePasses, nil
}
