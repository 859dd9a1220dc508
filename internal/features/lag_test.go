package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLagIdentity(t *testing.T) {
	rows := numericRows("gf", 10, 20, 30, 40)
	pass, err := NewLagPass("gf", []int{1})
	require.NoError(t, err)

	require.NoError(t, pass.ApplyGroup("Boston", rows))

	assert.True(t, rows[0].Get("gf_lag1").IsAbsent(), "first row has no past")
	for i := 1; i < len(rows); i++ {
		want, _ := rows[i-1].Float("gf")
		got, ok := rows[i].Float("gf_lag1")
		require.True(t, ok)
		assert.Equal(t, want, got)
	}
}

func TestLagMultiplePeriods(t *testing.T) {
	rows := numericRows("gf", 10, 20, 30, 40)
	pass, err := NewLagPass("gf", []int{2, 3})
	require.NoError(t, err)
	require.NoError(t, pass.ApplyGroup("Boston", rows))

	assert.True(t, rows[1].Get("gf_lag2").IsAbsent())
	got, _ := rows[3].Float("gf_lag2")
	assert.Equal(t, 20.0, got)
	got, _ = rows[3].Float("gf_lag3")
	assert.Equal(t, 10.0, got)
}

func TestLagDoesNotCrossGroups(t *testing.T) {
	boston := numericRows("gf", 10, 20)
	providence := numericRows("gf", 99, 98)

	pass, err := NewLagPass("gf", []int{1})
	require.NoError(t, err)
	require.NoError(t, pass.ApplyGroup("Boston", boston))
	require.NoError(t, pass.ApplyGroup("Providence", providence))

	assert.True(t, providence[0].Get("gf_lag1").IsAbsent(),
		"a group's first row never sees another group's values")
	got, _ := providence[1].Float("gf_lag1")
	assert.Equal(t, 99.0, got)
}

func TestLagRejectsBadPeriods(t *testing.T) {
	_, err := NewLagPass("gf", nil)
	assert.Error(t, err)
	_, err = NewLagPass("gf", []int{0})
	assert.Error(t, err)
	_, err = NewLagPass("gf", []int{-2})
	assert.Error(t, err)
}
