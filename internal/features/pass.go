// Package features turns grouped, time-ordered game logs into enriched rows:
// rolling statistics, exponential averages, lags, streaks, rest days, and
// strength metrics. Passes declare the columns they read and write so a
// pipeline can be validated before any row is touched.
package features

import "github.com/pucklab/puckcast/internal/table"

// GroupPass computes features for one entity's rows at a time. A value at
// row i is a function of that group's rows 0..i only; implementations must
// never read rows i+1..end or another group's rows.
type GroupPass interface {
	Name() string
	Requires() []string
	Produces() []string
	ApplyGroup(entity string, rows []*table.Record) error
}

// TablePass computes features that aggregate across groups (strength of
// schedule, head-to-head, conference averages). It runs after all group
// passes have completed.
type TablePass interface {
	Name() string
	Requires() []string
	Produces() []string
	Apply(gs *table.GroupedSeries) error
}

// Scope selects between the season-level variant of an aggregate, computed
// over the whole table including games later than the current row, and the
// as-of variant restricted to games at or before the current row's
// timestamp. Season aggregates look ahead and must not feed models that
// require leakage-free features.
type Scope string

const (
	ScopeSeason Scope = "season"
	ScopeAsOf   Scope = "as_of"
)
