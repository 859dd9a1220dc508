package table

import (
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
)

// WholeTableKey is the synthetic group key used when no entity column is
// configured and the whole table is treated as one series.
const WholeTableKey = "_all"

// timestampLayouts are tried in order when parsing timestamp cells.
var timestampLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"01/02/2006",
}

// ParseTimestamp parses a timestamp cell, trying ISO 8601 date, RFC3339, and
// common date-time layouts.
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedTimestamp, s)
}

// GroupedSeries maps entity keys to their rows, each group sorted ascending
// by timestamp with input order breaking ties. Every windowed, lag, and
// streak computation relies on this ordering and must obtain it from a
// Grouper rather than trust input order.
type GroupedSeries struct {
	keys   []string
	groups map[string][]*Record

	// Skipped counts rows excluded from grouped output because their
	// timestamp could not be parsed. They remain in the flat table.
	Skipped int
}

// Keys returns group keys in first-seen order.
func (gs *GroupedSeries) Keys() []string { return gs.keys }

// Rows returns the time-ordered rows of one group.
func (gs *GroupedSeries) Rows(key string) []*Record { return gs.groups[key] }

// NumGroups returns the number of groups.
func (gs *GroupedSeries) NumGroups() int { return len(gs.keys) }

// Len returns the total number of grouped rows.
func (gs *GroupedSeries) Len() int {
	n := 0
	for _, rows := range gs.groups {
		n += len(rows)
	}
	return n
}

// GrouperConfig names the columns that identify and order a series.
type GrouperConfig struct {
	// EntityColumn is the grouping key column. Empty means the whole table
	// is one series under WholeTableKey.
	EntityColumn string `yaml:"entity_column"`

	// TimestampColumn orders rows within a group. Empty means rows are
	// ordered by input position instead.
	TimestampColumn string `yaml:"timestamp_column"`
}

// Grouper partitions a RowTable into per-entity, time-ordered series.
type Grouper struct {
	cfg GrouperConfig
	log zerolog.Logger
}

// NewGrouper creates a grouper.
func NewGrouper(cfg GrouperConfig, logger zerolog.Logger) *Grouper {
	return &Grouper{cfg: cfg, log: logger}
}

// Group partitions and sorts the table. Rows whose timestamp cannot be
// parsed are excluded from the grouped output, counted in Skipped, and
// logged; the flat table is left untouched. Configured columns that the
// table does not carry at all are a caller error.
func (g *Grouper) Group(t *RowTable) (*GroupedSeries, error) {
	if g.cfg.EntityColumn != "" && !t.HasColumn(g.cfg.EntityColumn) {
		return nil, UnknownColumnError(g.cfg.EntityColumn)
	}
	if g.cfg.TimestampColumn != "" && !t.HasColumn(g.cfg.TimestampColumn) {
		return nil, UnknownColumnError(g.cfg.TimestampColumn)
	}

	gs := &GroupedSeries{groups: make(map[string][]*Record)}
	for _, row := range t.Rows {
		if g.cfg.TimestampColumn != "" {
			raw, ok := row.Str(g.cfg.TimestampColumn)
			if !ok {
				gs.Skipped++
				g.log.Warn().Int("seq", row.Seq).Str("column", g.cfg.TimestampColumn).
					Msg("row has no timestamp, excluded from grouped series")
				continue
			}
			ts, err := ParseTimestamp(raw)
			if err != nil {
				gs.Skipped++
				g.log.Warn().Int("seq", row.Seq).Str("value", raw).
					Msg("malformed timestamp, excluded from grouped series")
				continue
			}
			row.Timestamp = ts
			row.HasTime = true
		}

		key := WholeTableKey
		if g.cfg.EntityColumn != "" {
			if s, ok := row.Str(g.cfg.EntityColumn); ok {
				key = s
			}
		}
		row.Entity = key
		if _, seen := gs.groups[key]; !seen {
			gs.keys = append(gs.keys, key)
		}
		gs.groups[key] = append(gs.groups[key], row)
	}

	for _, key := range gs.keys {
		rows := gs.groups[key]
		sort.SliceStable(rows, func(i, j int) bool {
			if rows[i].HasTime && rows[j].HasTime && !rows[i].Timestamp.Equal(rows[j].Timestamp) {
				return rows[i].Timestamp.Before(rows[j].Timestamp)
			}
			return rows[i].Seq < rows[j].Seq
		})
	}

	if gs.Skipped > 0 {
		g.log.Info().Int("skipped", gs.Skipped).Int("grouped", gs.Len()).
			Msg("grouping complete with excluded rows")
	}
	return gs, nil
}
