package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("csv")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	f, err = ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatParquet, f)

	_, err = ParseFormat("xlsx")
	assert.ErrorIs(t, err, ErrWrongFormat)
	assert.Contains(t, err.Error(), "xlsx")
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "text/csv", FormatCSV.ContentType())
	assert.Equal(t, "application/vnd.apache.parquet", FormatParquet.ContentType())
	assert.Equal(t, "application/octet-stream", Format("xlsx").ContentType())
}
