package repository

import "fmt"

// Format is the encoding of a stored table.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatParquet Format = "parquet"
)

// IsValidFormat returns true if f can be written.
func IsValidFormat(f Format) bool {
	switch f {
	case FormatCSV, FormatParquet:
		return true
	default:
		return false
	}
}

// DefaultFormat returns the default report encoding.
func DefaultFormat() Format { return FormatParquet }

// ParseFormat converts a raw string to a Format. An empty string yields the
// default; anything unsupported wraps ErrWrongFormat.
func ParseFormat(s string) (Format, error) {
	if s == "" {
		return DefaultFormat(), nil
	}
	f := Format(s)
	if !IsValidFormat(f) {
		return "", fmt.Errorf("the file format %s is not supported to be written to s3: %w", s, ErrWrongFormat)
	}
	return f, nil
}

// ContentType returns the MIME type used when uploading.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv"
	case FormatParquet:
		return "application/vnd.apache.parquet"
	default:
		return "application/octet-stream"
	}
}
