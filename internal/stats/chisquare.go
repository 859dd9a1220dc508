package stats

import (
	"errors"
	"fmt"
)

// ErrBadDistribution indicates observed/expected counts that cannot form a
// chi-square statistic.
var ErrBadDistribution = errors.New("bad distribution")

// ChiSquare returns the chi-square goodness-of-fit statistic and its degrees
// of freedom for observed counts against expected counts. Every expected
// count must be positive.
func ChiSquare(observed, expected []float64) (float64, int, error) {
	if len(observed) != len(expected) {
		return 0, 0, fmt.Errorf("%w: %d observed vs %d expected cells",
			ErrBadDistribution, len(observed), len(expected))
	}
	if len(observed) < 2 {
		return 0, 0, fmt.Errorf("%w: need at least 2 cells", ErrBadDistribution)
	}

	chi2 := 0.0
	for i, exp := range expected {
		if exp <= 0 {
			return 0, 0, fmt.Errorf("%w: non-positive expected count at cell %d", ErrBadDistribution, i)
		}
		d := observed[i] - exp
		chi2 += d * d / exp
	}
	return chi2, len(observed) - 1, nil
}
