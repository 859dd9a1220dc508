package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pucklab/puckcast/internal/table"
)

func resultRows(results ...string) []*table.Record {
	rows := make([]*table.Record, len(results))
	for i, res := range results {
		rows[i] = table.NewRecord(i)
		rows[i].Set("result", table.Str(res))
	}
	return rows
}

func TestStreakDetection(t *testing.T) {
	rows := resultRows("W", "W", "L", "L", "L", "W")
	pass := NewStreakPass("result")
	require.NoError(t, pass.ApplyGroup("Boston", rows))

	assert.Equal(t, []float64{1, 2, 1, 2, 3, 1}, floats(t, rows, "streak_length"))
	assert.Equal(t, []float64{1, 1, -1, -1, -1, 1}, floats(t, rows, "streak_type"))
}

func TestStreakFlags(t *testing.T) {
	rows := resultRows("W", "W", "L", "L")
	pass := NewStreakPass("result")
	require.NoError(t, pass.ApplyGroup("Boston", rows))

	assert.Equal(t, []float64{0, 1, 0, 0}, floats(t, rows, "is_win_streak"))
	assert.Equal(t, []float64{0, 0, 0, 1}, floats(t, rows, "is_loss_streak"))
}

func TestStreakNumericOutcomes(t *testing.T) {
	rows := numericRows("result", 1, 1, 0)
	pass := NewStreakPass("result")
	require.NoError(t, pass.ApplyGroup("Boston", rows))

	assert.Equal(t, []float64{1, 2, 1}, floats(t, rows, "streak_length"))
	assert.Equal(t, []float64{1, 1, -1}, floats(t, rows, "streak_type"))
}

func TestStreakBreaksOnUnreadableOutcome(t *testing.T) {
	rows := resultRows("W", "postponed", "W")
	pass := NewStreakPass("result")
	require.NoError(t, pass.ApplyGroup("Boston", rows))

	assert.True(t, rows[1].Get("streak_length").IsAbsent())
	got, _ := rows[2].Float("streak_length")
	assert.Equal(t, 1.0, got, "streak restarts after an unreadable outcome")
}

func TestStreakOvertimeResults(t *testing.T) {
	rows := resultRows("OTW", "W", "OTL")
	pass := NewStreakPass("result")
	require.NoError(t, pass.ApplyGroup("Boston", rows))

	assert.Equal(t, []float64{1, 2, 1}, floats(t, rows, "streak_length"))
	assert.Equal(t, []float64{1, 1, -1}, floats(t, rows, "streak_type"))
}
