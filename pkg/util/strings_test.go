package util

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFloat(t *testing.T) {
	cases := []struct {
		in   any
		want float64
		ok   bool
	}{
		{"20.19", 20.19, true},
		{" 877 ", 877, true},
		{1.5, 1.5, true},
		{int64(3), 3, true},
		{"abc", 0, false},
		{"", 0, false},
		{nil, 0, false},
		{"NaN", 0, false},
		{"nan", 0, false},
		{"inf", 0, false},
		{"-Inf", 0, false},
		{"1e400", 0, false},
		{math.NaN(), 0, false},
		{math.Inf(1), 0, false},
	}
	for _, c := range cases {
		got, ok := ParseFloat(c.in)
		assert.Equal(t, c.ok, ok, c.in)
		assert.Equal(t, c.want, got, c.in)
	}
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a:9092", "b:9092"}, SplitList(" a:9092, ,b:9092 "))
	assert.Empty(t, SplitList(""))
}
