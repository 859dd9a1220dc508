package features

import (
	"fmt"

	"github.com/pucklab/puckcast/internal/stats"
	"github.com/pucklab/puckcast/internal/table"
)

// Stat names a rolling-window statistic.
type Stat string

const (
	StatMean Stat = "mean"
	StatSum  Stat = "sum"
	StatMin  Stat = "min"
	StatMax  Stat = "max"
	StatStd  Stat = "std" // population standard deviation
)

// ValidStat reports whether s names a supported statistic.
func ValidStat(s Stat) bool {
	switch s {
	case StatMean, StatSum, StatMin, StatMax, StatStd:
		return true
	}
	return false
}

// RollingPass computes rolling-window statistics over one numeric column.
// The window at row i covers rows [max(0, i-w+1) .. i] of the group: it
// always includes the current row and shrinks at the start of a series.
// Non-numeric and absent cells are excluded from the statistic; an empty
// effective window leaves the output unset.
type RollingPass struct {
	Column string
	Window int
	Stats  []Stat
}

// NewRollingPass builds a rolling pass for the given column and window.
func NewRollingPass(column string, window int, stts ...Stat) (*RollingPass, error) {
	if window <= 0 {
		return nil, fmt.Errorf("rolling window must be positive, got %d", window)
	}
	if len(stts) == 0 {
		stts = []Stat{StatMean}
	}
	for _, s := range stts {
		if !ValidStat(s) {
			return nil, fmt.Errorf("unknown rolling statistic %q", s)
		}
	}
	return &RollingPass{Column: column, Window: window, Stats: stts}, nil
}

func (p *RollingPass) Name() string {
	return fmt.Sprintf("rolling(%s,w=%d)", p.Column, p.Window)
}

func (p *RollingPass) Requires() []string { return []string{p.Column} }

func (p *RollingPass) Produces() []string {
	out := make([]string, 0, len(p.Stats))
	for _, s := range p.Stats {
		out = append(out, p.outputColumn(s))
	}
	return out
}

func (p *RollingPass) outputColumn(s Stat) string {
	return fmt.Sprintf("%s_roll%d_%s", p.Column, p.Window, s)
}

func (p *RollingPass) ApplyGroup(entity string, rows []*table.Record) error {
	for i, row := range rows {
		start := i - p.Window + 1
		if start < 0 {
			start = 0
		}
		var window []float64
		for _, r := range rows[start : i+1] {
			if v, ok := r.Float(p.Column); ok {
				window = append(window, v)
			}
		}
		if len(window) == 0 {
			continue
		}
		for _, s := range p.Stats {
			row.SetNum(p.outputColumn(s), applyStat(s, window))
		}
	}
	return nil
}

func applyStat(s Stat, window []float64) float64 {
	switch s {
	case StatSum:
		return stats.Sum(window)
	case StatMin:
		return stats.Min(window)
	case StatMax:
		return stats.Max(window)
	case StatStd:
		return stats.PopStd(window)
	default:
		return stats.Mean(window)
	}
}
