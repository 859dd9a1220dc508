package split

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/rs/zerolog"

	"github.com/pucklab/puckcast/internal/table"
)

// StratifiedSplitter produces a class-balanced train/test split when no
// chronology is available: rows are grouped by the target column's value,
// each class is shuffled with a seeded deterministic source, and the first
// (1 - TestFraction) of each class goes to train. Class proportions in both
// halves match the source up to integer rounding.
type StratifiedSplitter struct {
	TargetColumn string
	TestFraction float64
	Seed         int64

	log zerolog.Logger
}

// NewStratifiedSplitter creates a stratified splitter.
func NewStratifiedSplitter(targetColumn string, testFraction float64, seed int64, logger zerolog.Logger) (*StratifiedSplitter, error) {
	if testFraction <= 0 || testFraction >= 1 {
		return nil, fmt.Errorf("test_fraction must be in (0, 1), got %g", testFraction)
	}
	return &StratifiedSplitter{
		TargetColumn: targetColumn,
		TestFraction: testFraction,
		Seed:         seed,
		log:          logger,
	}, nil
}

// Split partitions the table. The same seed over the same table always
// yields the same partition.
func (s *StratifiedSplitter) Split(t *table.RowTable) (Fold, error) {
	if !t.HasColumn(s.TargetColumn) {
		return Fold{}, table.UnknownColumnError(s.TargetColumn)
	}

	classes := make(map[string][]*table.Record)
	for _, row := range t.Rows {
		label, ok := row.Str(s.TargetColumn)
		if !ok {
			s.log.Warn().Int("seq", row.Seq).Msg("row has no target value, excluded from split")
			continue
		}
		classes[label] = append(classes[label], row)
	}
	if len(classes) == 0 {
		return Fold{}, fmt.Errorf("%w: no rows carry target column %q",
			table.ErrInsufficientData, s.TargetColumn)
	}

	// Iterate classes in sorted label order so the seed fully determines
	// the outcome.
	labels := make([]string, 0, len(classes))
	for label := range classes {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	rng := rand.New(rand.NewSource(s.Seed))
	var train, test []*table.Record
	for _, label := range labels {
		rows := classes[label]
		shuffled := make([]*table.Record, len(rows))
		copy(shuffled, rows)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})

		testN := int(math.Round(float64(len(shuffled)) * s.TestFraction))
		cut := len(shuffled) - testN
		train = append(train, shuffled[:cut]...)
		test = append(test, shuffled[cut:]...)
	}

	s.log.Info().Int("classes", len(labels)).Int("train", len(train)).Int("test", len(test)).
		Msg("stratified split built")
	return newFold(1, train, test), nil
}
