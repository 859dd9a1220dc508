package features

import (
	"fmt"

	"github.com/pucklab/puckcast/internal/table"
)

// LagPass emits shifted-by-k views of a column: for each period k,
// <column>_lag<k> at row i is the column's value at row i-k of the same
// group, unset when i < k. Lags never cross group boundaries.
type LagPass struct {
	Column  string
	Periods []int
}

// NewLagPass builds a lag pass; every period must be a positive integer.
func NewLagPass(column string, periods []int) (*LagPass, error) {
	if len(periods) == 0 {
		return nil, fmt.Errorf("lag pass needs at least one period")
	}
	for _, k := range periods {
		if k <= 0 {
			return nil, fmt.Errorf("lag period must be positive, got %d", k)
		}
	}
	return &LagPass{Column: column, Periods: periods}, nil
}

func (p *LagPass) Name() string {
	return fmt.Sprintf("lag(%s,%v)", p.Column, p.Periods)
}

func (p *LagPass) Requires() []string { return []string{p.Column} }

func (p *LagPass) Produces() []string {
	out := make([]string, 0, len(p.Periods))
	for _, k := range p.Periods {
		out = append(out, fmt.Sprintf("%s_lag%d", p.Column, k))
	}
	return out
}

func (p *LagPass) ApplyGroup(entity string, rows []*table.Record) error {
	for _, k := range p.Periods {
		out := fmt.Sprintf("%s_lag%d", p.Column, k)
		for i := k; i < len(rows); i++ {
			v := rows[i-k].Get(p.Column)
			if v.IsAbsent() {
				continue
			}
			rows[i].Set(out, v)
		}
	}
	return nil
}
