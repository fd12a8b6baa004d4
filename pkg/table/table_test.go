package table

import (
	"bytes"
	"strings"
	"testing"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCSV(t *testing.T) {
	in := "ISIN,Date,StartPrice\nAT0000A0E9W5,2021-04-15,20.19\nAT0000A0E9W5,,18.27\n"

	f, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)

	assert.Equal(t, []string{"ISIN", "Date", "StartPrice"}, f.Columns)
	require.Equal(t, 2, f.Len())
	assert.Equal(t, []any{"AT0000A0E9W5", "2021-04-15", "20.19"}, f.Rows[0])
	assert.Nil(t, f.Rows[1][1])
}

func TestReadCSVMissingMarkers(t *testing.T) {
	in := "a,b,c,d\nNaN,NA,null,x\nN/A,#N/A,None,inf\n"

	f, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, [][]any{{nil, nil, nil, "x"}, {nil, nil, nil, "inf"}}, f.Rows)
	assert.False(t, IsNA("nA"))
}

func TestReadCSVEmptyDocument(t *testing.T) {
	f, err := ReadCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.True(t, f.Empty())
	assert.Empty(t, f.Columns)
}

func TestReadCSVRaggedRow(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("a,b\n1\n"))
	require.Error(t, err)
}

func TestWriteCSVRoundTrip(t *testing.T) {
	f := New("source_date", "processed_at", "n")
	require.NoError(t, f.Append("2021-04-15", "2021-04-20 10:00:00", 1.5))
	require.NoError(t, f.Append("2021-04-16", nil, int64(3)))

	data, err := EncodeCSV(f)
	require.NoError(t, err)
	assert.Equal(t, "source_date,processed_at,n\n2021-04-15,2021-04-20 10:00:00,1.5\n2021-04-16,,3\n", string(data))

	back, err := ReadCSV(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, f.Columns, back.Columns)
	assert.Equal(t, []any{"2021-04-16", nil, "3"}, back.Rows[1])
}

func TestAppendWrongWidth(t *testing.T) {
	f := New("a", "b")
	require.Error(t, f.Append("x"))
	assert.Equal(t, 0, f.Len())
}

func TestSameColumns(t *testing.T) {
	f := New("source_date", "processed_at")
	assert.True(t, f.SameColumns("processed_at", "source_date"))
	assert.False(t, f.SameColumns("source_date"))
	assert.False(t, f.SameColumns("source_date", "datetime_of_processing"))
	assert.False(t, New("a", "a").SameColumns("a", "b"))
}

func TestConcatUnionsColumns(t *testing.T) {
	a := New("x", "y")
	require.NoError(t, a.Append("1", "2"))
	b := New("y", "z")
	require.NoError(t, b.Append("3", "4"))

	out := Concat(a, nil, b)
	assert.Equal(t, []string{"x", "y", "z"}, out.Columns)
	assert.Equal(t, [][]any{{"1", "2", nil}, {nil, "3", "4"}}, out.Rows)
}

func TestConcatNothing(t *testing.T) {
	out := Concat()
	assert.True(t, out.Empty())
	assert.Empty(t, out.Columns)
}

func TestColumn(t *testing.T) {
	f := New("a", "b")
	require.NoError(t, f.Append("1", "2"))
	require.NoError(t, f.Append("3", nil))

	col, ok := f.Column("b")
	require.True(t, ok)
	assert.Equal(t, []any{"2", nil}, col)

	_, ok = f.Column("c")
	assert.False(t, ok)
}

func TestWriteParquet(t *testing.T) {
	f := New("isin", "date", "opening_price_eur", "daily_traded_volume", "change_prev_closing_%")
	require.NoError(t, f.Append("AT0000A0E9W5", "2021-04-17", 20.21, int64(1088), 10.62))
	require.NoError(t, f.Append("AT0000A0E9W5", "2021-04-18", 20.58, int64(10286), nil))

	data, err := EncodeParquet(f)
	require.NoError(t, err)

	file, err := parquet.OpenFile(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	assert.Equal(t, int64(2), file.NumRows())

	for _, col := range f.Columns {
		_, ok := file.Schema().Lookup(col)
		assert.True(t, ok, col)
	}
}

func TestWriteParquetDuplicateColumn(t *testing.T) {
	f := New("a", "a")
	require.NoError(t, f.Append("1", "2"))
	require.Error(t, WriteParquet(&bytes.Buffer{}, f))
}

func TestInferKind(t *testing.T) {
	f := New("s", "d", "i", "mixed", "nils")
	require.NoError(t, f.Append("x", 1.0, int64(1), int64(1), nil))
	require.NoError(t, f.Append(nil, 2.0, int64(2), 2.5, nil))

	assert.Equal(t, KindString, inferKind(f, 0))
	assert.Equal(t, KindDouble, inferKind(f, 1))
	assert.Equal(t, KindInt64, inferKind(f, 2))
	assert.Equal(t, KindDouble, inferKind(f, 3))
	assert.Equal(t, KindString, inferKind(f, 4))
}

func TestWriteParquetKeepsColumnOrder(t *testing.T) {
	cols := []string{"isin", "date", "opening_price_eur", "closing_price_eur", "minimum_price_eur", "maximum_price_eur", "daily_traded_volume", "change_prev_closing_%"}
	f := New(cols...)
	require.NoError(t, f.Append("AT0000A0E9W5", "2021-04-17", 20.21, 20.21, 18.21, 20.42, 633.0, nil))

	data, err := EncodeParquet(f)
	require.NoError(t, err)

	file, err := parquet.OpenFile(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	var got []string
	for _, field := range file.Schema().Fields() {
		got = append(got, field.Name())
	}
	assert.Equal(t, cols, got)
}

func TestWriteParquetDeclaredKinds(t *testing.T) {
	f := New("isin", "change")
	require.True(t, f.SetKind("change", KindDouble))
	assert.False(t, f.SetKind("missing", KindDouble))
	require.NoError(t, f.Append("AT0000A0E9W5", nil))
	require.NoError(t, f.Append("DE000A0D6554", nil))

	data, err := EncodeParquet(f)
	require.NoError(t, err)

	file, err := parquet.OpenFile(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	change, ok := file.Schema().Lookup("change")
	require.True(t, ok)
	assert.Equal(t, parquet.Double, change.Node.Type().Kind())
	assert.True(t, change.Node.Optional())

	isin, ok := file.Schema().Lookup("isin")
	require.True(t, ok)
	assert.Equal(t, parquet.ByteArray, isin.Node.Type().Kind())
}

func TestWriteParquetDeclaredKindMismatch(t *testing.T) {
	f := New("price")
	f.SetKind("price", KindDouble)
	require.NoError(t, f.Append("abc"))
	require.Error(t, WriteParquet(&bytes.Buffer{}, f))
}

func TestWriteParquetRejectsTagBreakingName(t *testing.T) {
	f := New("a,b")
	require.Error(t, WriteParquet(&bytes.Buffer{}, f))
}
