// Package table holds the in-memory tabular structure moved between the
// object store and the report aggregator.
package table

import (
	"fmt"
	"strconv"
)

// Frame is an ordered set of named columns with row-major cells.
// A cell is one of string, float64, int64 or nil (missing).
type Frame struct {
	Columns []string
	Rows    [][]any
	// Kinds optionally declares the storage type per column, parallel to
	// Columns. KindAuto or a missing entry means infer from the cells.
	Kinds []Kind
}

// Kind is the declared storage type of a column.
type Kind int

const (
	KindAuto Kind = iota
	KindString
	KindDouble
	KindInt64
)

// SetKind declares the storage type of a column. It reports false when the
// column does not exist.
func (f *Frame) SetKind(column string, k Kind) bool {
	idx := f.Index(column)
	if idx < 0 {
		return false
	}
	if len(f.Kinds) < len(f.Columns) {
		kinds := make([]Kind, len(f.Columns))
		copy(kinds, f.Kinds)
		f.Kinds = kinds
	}
	f.Kinds[idx] = k
	return true
}

// KindOf returns the declared kind of the column at idx.
func (f *Frame) KindOf(idx int) Kind {
	if idx < 0 || idx >= len(f.Kinds) {
		return KindAuto
	}
	return f.Kinds[idx]
}

// New returns an empty frame with the given columns.
func New(columns ...string) *Frame {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Frame{Columns: cols}
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	if f == nil {
		return 0
	}
	return len(f.Rows)
}

// Empty reports whether the frame has no rows.
func (f *Frame) Empty() bool {
	return f.Len() == 0
}

// Index returns the position of a column or -1.
func (f *Frame) Index(column string) int {
	for i, c := range f.Columns {
		if c == column {
			return i
		}
	}
	return -1
}

// Append adds a row. The row must have one cell per column.
func (f *Frame) Append(cells ...any) error {
	if len(cells) != len(f.Columns) {
		return fmt.Errorf("row has %d cells, frame has %d columns", len(cells), len(f.Columns))
	}
	row := make([]any, len(cells))
	copy(row, cells)
	f.Rows = append(f.Rows, row)
	return nil
}

// Column returns every cell of the named column.
func (f *Frame) Column(column string) ([]any, bool) {
	idx := f.Index(column)
	if idx < 0 {
		return nil, false
	}
	out := make([]any, len(f.Rows))
	for i, row := range f.Rows {
		out[i] = row[idx]
	}
	return out, true
}

// SameColumns reports whether the frame holds exactly the given column
// multiset, in any order.
func (f *Frame) SameColumns(columns ...string) bool {
	if len(f.Columns) != len(columns) {
		return false
	}
	counts := make(map[string]int, len(columns))
	for _, c := range columns {
		counts[c]++
	}
	for _, c := range f.Columns {
		counts[c]--
		if counts[c] < 0 {
			return false
		}
	}
	return true
}

// Concat stacks frames vertically. The resulting columns are the union of
// all input columns in first-seen order; cells absent from a frame are nil.
func Concat(frames ...*Frame) *Frame {
	out := &Frame{}
	pos := make(map[string]int)
	for _, f := range frames {
		if f == nil {
			continue
		}
		for _, c := range f.Columns {
			if _, ok := pos[c]; !ok {
				pos[c] = len(out.Columns)
				out.Columns = append(out.Columns, c)
			}
		}
	}
	for _, f := range frames {
		if f == nil {
			continue
		}
		for _, row := range f.Rows {
			merged := make([]any, len(out.Columns))
			for i, c := range f.Columns {
				merged[pos[c]] = row[i]
			}
			out.Rows = append(out.Rows, merged)
		}
	}
	return out
}

// FormatCell renders a cell the way it is written to CSV.
func FormatCell(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	default:
		return fmt.Sprint(t)
	}
}
