package table

import (
	"bytes"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/parquet-go/parquet-go"
)

// WriteParquet encodes the frame as a single parquet file. Every column is
// optional and the file schema keeps the frame's column order. A column
// uses its declared Kind; undeclared columns are inferred from the non-nil
// cells: all float64 becomes DOUBLE, all int64 becomes INT64, anything else
// is written as UTF8 strings.
func WriteParquet(w io.Writer, f *Frame) error {
	kinds := make([]Kind, len(f.Columns))
	for i := range f.Columns {
		if kinds[i] = f.KindOf(i); kinds[i] == KindAuto {
			kinds[i] = inferKind(f, i)
		}
	}

	schema, err := schemaOf(f.Columns, kinds)
	if err != nil {
		return err
	}
	leaves := make([]int, len(f.Columns))
	for i, col := range f.Columns {
		leaf, ok := schema.Lookup(col)
		if !ok {
			return fmt.Errorf("parquet: column %q missing from schema", col)
		}
		leaves[i] = leaf.ColumnIndex
	}

	rows := make([]parquet.Row, 0, len(f.Rows))
	for _, cells := range f.Rows {
		row := make(parquet.Row, len(f.Columns))
		for i, cell := range cells {
			idx := leaves[i]
			if cell == nil {
				row[idx] = parquet.NullValue().Level(0, 0, idx)
				continue
			}
			v, err := convert(kinds[i], cell)
			if err != nil {
				return fmt.Errorf("parquet: column %q: %w", f.Columns[i], err)
			}
			row[idx] = parquet.ValueOf(v).Level(0, 1, idx)
		}
		rows = append(rows, row)
	}

	writer := parquet.NewWriter(w, schema)
	if _, err := writer.WriteRows(rows); err != nil {
		return fmt.Errorf("parquet: write rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("parquet: close writer: %w", err)
	}
	return nil
}

// EncodeParquet is WriteParquet into a fresh buffer.
func EncodeParquet(f *Frame) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteParquet(&buf, f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// schemaOf builds the schema from a generated struct type. Struct fields
// keep their declaration order in parquet-go, a Group would sort by name.
func schemaOf(columns []string, kinds []Kind) (*parquet.Schema, error) {
	seen := make(map[string]struct{}, len(columns))
	fields := make([]reflect.StructField, len(columns))
	for i, col := range columns {
		if col == "" || strings.ContainsAny(col, `,"`) {
			return nil, fmt.Errorf("parquet: unsupported column name %q", col)
		}
		if _, dup := seen[col]; dup {
			return nil, fmt.Errorf("parquet: duplicate column %q", col)
		}
		seen[col] = struct{}{}
		fields[i] = reflect.StructField{
			Name: fmt.Sprintf("F%d", i),
			Type: goType(kinds[i]),
			Tag:  reflect.StructTag(fmt.Sprintf(`parquet:"%s,optional"`, col)),
		}
	}
	return parquet.SchemaOf(reflect.New(reflect.StructOf(fields)).Interface()), nil
}

func inferKind(f *Frame, col int) Kind {
	kind, seen := KindString, false
	for _, row := range f.Rows {
		var k Kind
		switch row[col].(type) {
		case nil:
			continue
		case float64:
			k = KindDouble
		case int64:
			k = KindInt64
		default:
			return KindString
		}
		switch {
		case !seen:
			kind, seen = k, true
		case kind != k:
			// int64 and float64 mixed in one column widen to double
			kind = KindDouble
		}
	}
	return kind
}

func goType(k Kind) reflect.Type {
	switch k {
	case KindDouble:
		return reflect.TypeOf(float64(0))
	case KindInt64:
		return reflect.TypeOf(int64(0))
	default:
		return reflect.TypeOf("")
	}
}

func convert(k Kind, v any) (any, error) {
	switch k {
	case KindDouble:
		switch t := v.(type) {
		case int64:
			return float64(t), nil
		case float64:
			return t, nil
		}
		return nil, fmt.Errorf("cell %v is not a double", v)
	case KindInt64:
		if t, ok := v.(int64); ok {
			return t, nil
		}
		return nil, fmt.Errorf("cell %v is not an int64", v)
	}
	return FormatCell(v), nil
}
