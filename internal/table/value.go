package table

import "strconv"

type valueKind uint8

const (
	kindAbsent valueKind = iota
	kindNumber
	kindString
)

// Value is a single cell: a number, a raw string, or absent. Input
// collaborators deliver every cell as a string; FromString decides whether it
// is numeric. The zero Value is absent.
type Value struct {
	raw  string
	num  float64
	kind valueKind
}

// Num returns a numeric Value.
func Num(f float64) Value {
	return Value{num: f, kind: kindNumber}
}

// Str returns a string Value. An empty string is absent.
func Str(s string) Value {
	if s == "" {
		return Value{}
	}
	return Value{raw: s, kind: kindString}
}

// FromString parses a raw cell. Numeric strings become numbers but retain
// their original text for round-tripping; empty cells are absent.
func FromString(s string) Value {
	if s == "" {
		return Value{}
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return Value{raw: s, num: f, kind: kindNumber}
	}
	return Value{raw: s, kind: kindString}
}

// Float reports the numeric value, if the cell holds one.
func (v Value) Float() (float64, bool) {
	if v.kind != kindNumber {
		return 0, false
	}
	return v.num, true
}

// Str reports the cell as a string. Numbers report their original or
// formatted text.
func (v Value) Str() (string, bool) {
	switch v.kind {
	case kindString:
		return v.raw, true
	case kindNumber:
		return v.text(), true
	default:
		return "", false
	}
}

// IsAbsent reports whether the cell is empty.
func (v Value) IsAbsent() bool { return v.kind == kindAbsent }

// String renders the cell for output; absent cells render empty.
func (v Value) String() string {
	switch v.kind {
	case kindString:
		return v.raw
	case kindNumber:
		return v.text()
	default:
		return ""
	}
}

func (v Value) text() string {
	if v.raw != "" {
		return v.raw
	}
	return strconv.FormatFloat(v.num, 'g', -1, 64)
}
