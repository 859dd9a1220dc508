package table

import "time"

// Record is one observation: one team, one game. Identity and time live in
// fixed fields; every named numeric or categorical column lives in Fields.
// Feature passes only ever add fields; original fields are never overwritten
// except through Overwrite.
type Record struct {
	Entity    string
	Timestamp time.Time
	HasTime   bool
	Seq       int // original input position, stable sort tiebreak

	Fields map[string]Value
}

// NewRecord creates an empty record at the given input position.
func NewRecord(seq int) *Record {
	return &Record{Seq: seq, Fields: make(map[string]Value)}
}

// Get returns the named field; absent fields return the zero Value.
func (r *Record) Get(column string) Value {
	return r.Fields[column]
}

// Float returns the named field as a number.
func (r *Record) Float(column string) (float64, bool) {
	return r.Fields[column].Float()
}

// Str returns the named field as a string.
func (r *Record) Str(column string) (string, bool) {
	return r.Fields[column].Str()
}

// Set adds a field. Existing fields are left untouched; the return reports
// whether the field was written.
func (r *Record) Set(column string, v Value) bool {
	if _, ok := r.Fields[column]; ok {
		return false
	}
	r.Fields[column] = v
	return true
}

// SetNum adds a numeric field, add-only like Set.
func (r *Record) SetNum(column string, f float64) bool {
	return r.Set(column, Num(f))
}

// Overwrite replaces a field unconditionally. Reserved for explicit
// normalization steps.
func (r *Record) Overwrite(column string, v Value) {
	r.Fields[column] = v
}

// RowTable is an ordered sequence of records sharing column names. Not every
// row populates every column; absence is not an error.
type RowTable struct {
	Rows []*Record

	cols   []string
	colSet map[string]struct{}
}

// NewRowTable creates an empty table.
func NewRowTable() *RowTable {
	return &RowTable{colSet: make(map[string]struct{})}
}

// Append adds a row and folds its field names into the column set.
func (t *RowTable) Append(r *Record) {
	t.Rows = append(t.Rows, r)
	for name := range r.Fields {
		t.AddColumn(name)
	}
}

// AddColumn registers a column name. Idempotent; insertion order is kept for
// output.
func (t *RowTable) AddColumn(name string) {
	if t.colSet == nil {
		t.colSet = make(map[string]struct{})
	}
	if _, ok := t.colSet[name]; ok {
		return
	}
	t.colSet[name] = struct{}{}
	t.cols = append(t.cols, name)
}

// Columns returns the known column names in first-seen order.
func (t *RowTable) Columns() []string {
	out := make([]string, len(t.cols))
	copy(out, t.cols)
	return out
}

// HasColumn reports whether any row has ever carried the column.
func (t *RowTable) HasColumn(name string) bool {
	_, ok := t.colSet[name]
	return ok
}

// Len returns the row count.
func (t *RowTable) Len() int { return len(t.Rows) }
