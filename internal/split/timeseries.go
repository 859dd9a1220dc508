package split

import (
	"fmt"
	"math"
	"sort"

	"github.com/rs/zerolog"

	"github.com/pucklab/puckcast/internal/table"
)

// TimeSeriesSplitter produces expanding-window, chronology-respecting folds:
// the table is sorted by timestamp, the test window size is
// floor(total * TestFraction), and successive folds shift the same-sized
// test window later while the training prefix grows. A candidate fold whose
// training prefix would be empty is skipped; a configuration yielding no
// usable fold at all is ErrInsufficientData.
type TimeSeriesSplitter struct {
	TimestampColumn string
	NSplits         int
	TestFraction    float64

	log zerolog.Logger
}

// NewTimeSeriesSplitter creates a chronological splitter.
func NewTimeSeriesSplitter(timestampColumn string, nSplits int, testFraction float64, logger zerolog.Logger) (*TimeSeriesSplitter, error) {
	if nSplits <= 0 {
		return nil, fmt.Errorf("n_splits must be positive, got %d", nSplits)
	}
	if testFraction <= 0 || testFraction >= 1 {
		return nil, fmt.Errorf("test_fraction must be in (0, 1), got %g", testFraction)
	}
	return &TimeSeriesSplitter{
		TimestampColumn: timestampColumn,
		NSplits:         nSplits,
		TestFraction:    testFraction,
		log:             logger,
	}, nil
}

// Split sorts the whole table by timestamp and cuts the folds. Rows whose
// timestamp cannot be parsed are excluded from the sorted view and logged,
// matching the grouper's policy.
func (s *TimeSeriesSplitter) Split(t *table.RowTable) ([]Fold, error) {
	if !t.HasColumn(s.TimestampColumn) {
		return nil, table.UnknownColumnError(s.TimestampColumn)
	}

	rows := make([]*table.Record, 0, t.Len())
	for _, row := range t.Rows {
		if !row.HasTime {
			raw, ok := row.Str(s.TimestampColumn)
			if !ok {
				s.log.Warn().Int("seq", row.Seq).Msg("row has no timestamp, excluded from split")
				continue
			}
			ts, err := table.ParseTimestamp(raw)
			if err != nil {
				s.log.Warn().Int("seq", row.Seq).Str("value", raw).
					Msg("malformed timestamp, excluded from split")
				continue
			}
			row.Timestamp = ts
			row.HasTime = true
		}
		rows = append(rows, row)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Timestamp.Equal(rows[j].Timestamp) {
			return rows[i].Seq < rows[j].Seq
		}
		return rows[i].Timestamp.Before(rows[j].Timestamp)
	})

	total := len(rows)
	testSize := int(math.Floor(float64(total) * s.TestFraction))
	if testSize == 0 {
		return nil, fmt.Errorf("%w: %d rows cannot fill a test window of fraction %g",
			table.ErrInsufficientData, total, s.TestFraction)
	}

	var folds []Fold
	for i := 0; i < s.NSplits; i++ {
		trainEnd := total - testSize*(s.NSplits-i)
		if trainEnd <= 0 {
			s.log.Warn().Int("fold", i).Int("train_end", trainEnd).
				Msg("skipping fold with empty training window")
			continue
		}
		testEnd := trainEnd + testSize
		folds = append(folds, newFold(len(folds)+1, rows[:trainEnd], rows[trainEnd:testEnd]))
	}

	if len(folds) == 0 {
		return nil, fmt.Errorf("%w: %d rows cannot produce %d folds with test size %d",
			table.ErrInsufficientData, total, s.NSplits, testSize)
	}

	s.log.Info().Int("folds", len(folds)).Int("test_size", testSize).Int("rows", total).
		Msg("time-series folds built")
	return folds, nil
}
