package features

import (
	"fmt"

	"github.com/pucklab/puckcast/internal/table"
)

// EWMAPass computes an exponentially weighted moving average of one column:
// e[0] = x[0], e[i] = alpha*x[i] + (1-alpha)*e[i-1]. The recursion restarts
// at each group boundary; absent cells carry the previous average forward
// without updating it.
type EWMAPass struct {
	Column string
	Alpha  float64
}

// NewEWMAPass builds an EWMA pass from a smoothing factor in (0, 1].
func NewEWMAPass(column string, alpha float64) (*EWMAPass, error) {
	if alpha <= 0 || alpha > 1 {
		return nil, fmt.Errorf("ewma alpha must be in (0, 1], got %g", alpha)
	}
	return &EWMAPass{Column: column, Alpha: alpha}, nil
}

// NewEWMAPassFromSpan derives alpha = 2/(span+1) from a span.
func NewEWMAPassFromSpan(column string, span float64) (*EWMAPass, error) {
	if span <= 0 {
		return nil, fmt.Errorf("ewma span must be positive, got %g", span)
	}
	return NewEWMAPass(column, 2/(span+1))
}

func (p *EWMAPass) Name() string {
	return fmt.Sprintf("ewma(%s,alpha=%g)", p.Column, p.Alpha)
}

func (p *EWMAPass) Requires() []string { return []string{p.Column} }

func (p *EWMAPass) Produces() []string {
	return []string{p.Column + "_ewma"}
}

func (p *EWMAPass) ApplyGroup(entity string, rows []*table.Record) error {
	out := p.Column + "_ewma"
	ewma := 0.0
	seeded := false
	for _, row := range rows {
		x, ok := row.Float(p.Column)
		switch {
		case !ok && !seeded:
			continue
		case !ok:
			// carry the previous average without updating
		case !seeded:
			ewma = x
			seeded = true
		default:
			ewma = p.Alpha*x + (1-p.Alpha)*ewma
		}
		row.SetNum(out, ewma)
	}
	return nil
}
