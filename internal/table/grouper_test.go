package table

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gameRow(seq int, team, date string) *Record {
	r := NewRecord(seq)
	r.Set("team", Str(team))
	r.Set("date", Str(date))
	return r
}

func TestGrouperOrdersWithinGroup(t *testing.T) {
	tbl := NewRowTable()
	tbl.Append(gameRow(0, "Boston", "2025-01-10"))
	tbl.Append(gameRow(1, "Boston", "2025-01-02"))
	tbl.Append(gameRow(2, "Providence", "2025-01-05"))
	tbl.Append(gameRow(3, "Boston", "2025-01-07"))

	g := NewGrouper(GrouperConfig{EntityColumn: "team", TimestampColumn: "date"}, zerolog.Nop())
	gs, err := g.Group(tbl)
	require.NoError(t, err)

	require.Equal(t, []string{"Boston", "Providence"}, gs.Keys())
	boston := gs.Rows("Boston")
	require.Len(t, boston, 3)
	for i := 1; i < len(boston); i++ {
		assert.False(t, boston[i].Timestamp.Before(boston[i-1].Timestamp),
			"rows must be ascending in time")
	}
	assert.Equal(t, 1, boston[0].Seq)
	assert.Equal(t, 3, boston[1].Seq)
	assert.Equal(t, 0, boston[2].Seq)
}

func TestGrouperStableTies(t *testing.T) {
	tbl := NewRowTable()
	tbl.Append(gameRow(0, "Boston", "2025-01-02"))
	tbl.Append(gameRow(1, "Boston", "2025-01-02"))
	tbl.Append(gameRow(2, "Boston", "2025-01-02"))

	g := NewGrouper(GrouperConfig{EntityColumn: "team", TimestampColumn: "date"}, zerolog.Nop())
	gs, err := g.Group(tbl)
	require.NoError(t, err)

	rows := gs.Rows("Boston")
	require.Len(t, rows, 3)
	for i, row := range rows {
		assert.Equal(t, i, row.Seq, "equal timestamps keep input order")
	}
}

func TestGrouperExcludesMalformedTimestamps(t *testing.T) {
	tbl := NewRowTable()
	tbl.Append(gameRow(0, "Boston", "2025-01-02"))
	tbl.Append(gameRow(1, "Boston", "not-a-date"))
	tbl.Append(gameRow(2, "Boston", "2025-01-04"))

	g := NewGrouper(GrouperConfig{EntityColumn: "team", TimestampColumn: "date"}, zerolog.Nop())
	gs, err := g.Group(tbl)
	require.NoError(t, err)

	assert.Len(t, gs.Rows("Boston"), 2, "malformed row excluded from grouped series")
	assert.Equal(t, 1, gs.Skipped)
	assert.Equal(t, 3, tbl.Len(), "flat table untouched")
}

func TestGrouperUnknownColumn(t *testing.T) {
	tbl := NewRowTable()
	tbl.Append(gameRow(0, "Boston", "2025-01-02"))

	g := NewGrouper(GrouperConfig{EntityColumn: "franchise", TimestampColumn: "date"}, zerolog.Nop())
	_, err := g.Group(tbl)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownColumn)
	assert.Contains(t, err.Error(), "franchise")
}

func TestGrouperWholeTableWithoutEntity(t *testing.T) {
	tbl := NewRowTable()
	tbl.Append(gameRow(0, "Boston", "2025-01-02"))
	tbl.Append(gameRow(1, "Providence", "2025-01-01"))

	g := NewGrouper(GrouperConfig{TimestampColumn: "date"}, zerolog.Nop())
	gs, err := g.Group(tbl)
	require.NoError(t, err)

	require.Equal(t, []string{WholeTableKey}, gs.Keys())
	rows := gs.Rows(WholeTableKey)
	require.Len(t, rows, 2)
	assert.Equal(t, 1, rows[0].Seq, "whole-table series still sorted by time")
}

func TestGrouperSequenceOrderWithoutTimestamp(t *testing.T) {
	tbl := NewRowTable()
	for seq, team := range []string{"Boston", "Boston", "Boston"} {
		r := NewRecord(seq)
		r.Set("team", Str(team))
		tbl.Append(r)
	}

	g := NewGrouper(GrouperConfig{EntityColumn: "team"}, zerolog.Nop())
	gs, err := g.Group(tbl)
	require.NoError(t, err)

	rows := gs.Rows("Boston")
	require.Len(t, rows, 3)
	for i, row := range rows {
		assert.Equal(t, i, row.Seq)
		assert.False(t, row.HasTime)
	}
}

func TestParseTimestampLayouts(t *testing.T) {
	for _, ok := range []string{"2025-01-02", "2025-01-02T15:04:05Z", "2025-01-02 15:04:05", "01/02/2025"} {
		_, err := ParseTimestamp(ok)
		assert.NoError(t, err, ok)
	}
	_, err := ParseTimestamp("yesterday")
	assert.ErrorIs(t, err, ErrMalformedTimestamp)
}
