// Package split partitions an enriched table into train/test folds, either
// chronologically with expanding windows or stratified by a target class.
package split

import "github.com/pucklab/puckcast/internal/table"

// Fold is one train/test partition. For chronological folds every train
// row's timestamp is at or before every test row's timestamp.
type Fold struct {
	Index     int
	Train     []*table.Record
	Test      []*table.Record
	TrainSize int
	TestSize  int
}

func newFold(index int, train, test []*table.Record) Fold {
	return Fold{
		Index:     index,
		Train:     train,
		Test:      test,
		TrainSize: len(train),
		TestSize:  len(test),
	}
}
