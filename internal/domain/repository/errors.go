package repository

import "errors"

var (
	// ErrWrongFormat is returned when a table is written with an encoding
	// other than csv or parquet.
	ErrWrongFormat = errors.New("the file format is not supported to be written to s3")
	// ErrMissingColumn is returned when a configured source column is absent
	// from the extracted data.
	ErrMissingColumn = errors.New("configured source column is missing")
	// ErrWrongMetaFile is returned when the watermark table does not have
	// the expected schema or holds an unparsable date.
	ErrWrongMetaFile = errors.New("wrong meta file")
)
