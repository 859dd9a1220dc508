package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueFromString(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantNum float64
		numeric bool
		absent  bool
	}{
		{name: "integer", input: "42", wantNum: 42, numeric: true},
		{name: "float", input: "3.5", wantNum: 3.5, numeric: true},
		{name: "negative", input: "-2", wantNum: -2, numeric: true},
		{name: "text", input: "Boston"},
		{name: "empty is absent", input: "", absent: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := FromString(tt.input)
			assert.Equal(t, tt.absent, v.IsAbsent())

			f, ok := v.Float()
			assert.Equal(t, tt.numeric, ok)
			if tt.numeric {
				assert.Equal(t, tt.wantNum, f)
			}
		})
	}
}

func TestValueRoundTrip(t *testing.T) {
	assert.Equal(t, "3.5", FromString("3.5").String())
	assert.Equal(t, "Boston", FromString("Boston").String())
	assert.Equal(t, "", FromString("").String())
	assert.Equal(t, "0.25", Num(0.25).String())
}

func TestRecordSetIsAddOnly(t *testing.T) {
	r := NewRecord(0)
	require.True(t, r.Set("goals_for", Num(3)))
	assert.False(t, r.Set("goals_for", Num(9)), "existing field must not be overwritten")

	v, ok := r.Float("goals_for")
	require.True(t, ok)
	assert.Equal(t, 3.0, v)

	r.Overwrite("goals_for", Num(9))
	v, _ = r.Float("goals_for")
	assert.Equal(t, 9.0, v, "Overwrite is the explicit escape hatch")
}

func TestRowTableColumns(t *testing.T) {
	tbl := NewRowTable()
	r := NewRecord(0)
	r.Set("team", Str("Boston"))
	r.Set("goals_for", Num(3))
	tbl.Append(r)

	assert.True(t, tbl.HasColumn("team"))
	assert.False(t, tbl.HasColumn("rest_days"))

	tbl.AddColumn("rest_days")
	tbl.AddColumn("rest_days") // idempotent
	assert.True(t, tbl.HasColumn("rest_days"))

	cols := tbl.Columns()
	assert.Equal(t, "rest_days", cols[len(cols)-1])
	assert.Equal(t, 1, tbl.Len())
}
