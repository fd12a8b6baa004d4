package table

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
)

// naTokens are the cell values read as missing, in addition to the empty
// cell. They match the default missing-value markers of pandas.read_csv.
var naTokens = map[string]struct{}{
	"#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {},
	"-NaN": {}, "-nan": {}, "1.#IND": {}, "1.#QNAN": {}, "<NA>": {},
	"N/A": {}, "NA": {}, "NULL": {}, "NaN": {}, "None": {}, "n/a": {},
	"nan": {}, "null": {},
}

// IsNA reports whether a raw CSV cell stands for a missing value.
func IsNA(cell string) bool {
	if cell == "" {
		return true
	}
	_, ok := naTokens[cell]
	return ok
}

// ReadCSV decodes a CSV document with a header row. Empty cells and the
// usual missing-value markers (NA, NaN, null, ...) become nil, every other
// cell is kept as a string.
func ReadCSV(r io.Reader) (*Frame, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return &Frame{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	f := New(header...)
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}
		if len(record) != len(header) {
			return nil, fmt.Errorf("csv line %d: got %d fields, header has %d", line, len(record), len(header))
		}
		row := make([]any, len(record))
		for i, cell := range record {
			if !IsNA(cell) {
				row[i] = cell
			}
		}
		f.Rows = append(f.Rows, row)
	}
	return f, nil
}

// WriteCSV encodes the frame with a header row and no index column.
func WriteCSV(w io.Writer, f *Frame) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(f.Columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	record := make([]string, len(f.Columns))
	for _, row := range f.Rows {
		for i, cell := range row {
			record[i] = FormatCell(cell)
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// EncodeCSV is WriteCSV into a fresh buffer.
func EncodeCSV(f *Frame) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
