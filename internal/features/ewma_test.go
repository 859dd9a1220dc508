package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pucklab/puckcast/internal/table"
)

func TestEWMARecursion(t *testing.T) {
	rows := numericRows("gf", 4, 8, 6)
	pass, err := NewEWMAPass("gf", 0.5)
	require.NoError(t, err)

	require.NoError(t, pass.ApplyGroup("Boston", rows))
	assert.Equal(t, []float64{4, 6, 6}, floats(t, rows, "gf_ewma"))
}

func TestEWMAAlphaFromSpan(t *testing.T) {
	pass, err := NewEWMAPassFromSpan("gf", 9)
	require.NoError(t, err)
	assert.InDelta(t, 0.2, pass.Alpha, 1e-12)
}

func TestEWMACarriesThroughAbsentCells(t *testing.T) {
	rows := []*table.Record{table.NewRecord(0), table.NewRecord(1), table.NewRecord(2)}
	rows[0].SetNum("gf", 4)
	rows[2].SetNum("gf", 8)

	pass, err := NewEWMAPass("gf", 0.5)
	require.NoError(t, err)
	require.NoError(t, pass.ApplyGroup("Boston", rows))

	got, ok := rows[1].Float("gf_ewma")
	require.True(t, ok)
	assert.Equal(t, 4.0, got, "absent cell carries the previous average")

	got, _ = rows[2].Float("gf_ewma")
	assert.Equal(t, 6.0, got)
}

func TestEWMALeadingAbsentCellsStayUnset(t *testing.T) {
	rows := []*table.Record{table.NewRecord(0), table.NewRecord(1)}
	rows[1].SetNum("gf", 8)

	pass, err := NewEWMAPass("gf", 0.5)
	require.NoError(t, err)
	require.NoError(t, pass.ApplyGroup("Boston", rows))

	assert.True(t, rows[0].Get("gf_ewma").IsAbsent())
	got, _ := rows[1].Float("gf_ewma")
	assert.Equal(t, 8.0, got)
}

func TestEWMARejectsBadConfig(t *testing.T) {
	_, err := NewEWMAPass("gf", 0)
	assert.Error(t, err)
	_, err = NewEWMAPass("gf", 1.5)
	assert.Error(t, err)
	_, err = NewEWMAPassFromSpan("gf", -1)
	assert.Error(t, err)
}
