package usecase

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"XetraPull/internal/repository"
	"XetraPull/pkg/util"
)

const sourceHeader = "ISIN,Mnemonic,Date,Time,StartPrice,EndPrice,MinPrice,MaxPrice,TradedVolume"

var sourceRows = map[string][]string{
	"2021-04-15": {"AT0000A0E9W5,SANT,2021-04-15,12:00,20.19,18.45,18.20,20.33,877"},
	"2021-04-16": {"AT0000A0E9W5,SANT,2021-04-16,15:00,18.27,21.19,18.27,21.34,987"},
	"2021-04-17": {
		"AT0000A0E9W5,SANT,2021-04-17,13:00,20.21,18.27,18.21,20.42,633",
		"AT0000A0E9W5,SANT,2021-04-17,14:00,18.27,21.19,18.27,21.34,455",
	},
	"2021-04-18": {
		"AT0000A0E9W5,SANT,2021-04-18,07:00,20.58,19.27,18.89,20.58,9066",
		"AT0000A0E9W5,SANT,2021-04-18,08:00,19.27,21.14,19.27,21.14,1220",
	},
	"2021-04-19": {
		"AT0000A0E9W5,SANT,2021-04-19,07:00,23.58,23.58,23.58,23.58,1035",
		"AT0000A0E9W5,SANT,2021-04-19,08:00,23.58,24.22,23.31,24.34,1028",
		"AT0000A0E9W5,SANT,2021-04-19,09:00,24.22,22.21,22.21,25.01,1523",
	},
}

func testSourceColumns() SourceColumns {
	return SourceColumns{
		All:        strings.Split(sourceHeader, ","),
		ISIN:       "ISIN",
		Date:       "Date",
		Time:       "Time",
		StartPrice: "StartPrice",
		MinPrice:   "MinPrice",
		MaxPrice:   "MaxPrice",
		TradedVol:  "TradedVolume",
	}
}

func testTargetColumns() TargetColumns {
	return TargetColumns{
		ISIN:              "isin",
		Date:              "date",
		OpeningPrice:      "opening_price_eur",
		ClosingPrice:      "closing_price_eur",
		MinimumPrice:      "minimum_price_eur",
		MaximumPrice:      "maximum_price_eur",
		DailyTradedVolume: "daily_traded_volume",
		ChangePrevClosing: "change_prev_closing_%",
	}
}

func csvDoc(rows ...string) []byte {
	return []byte(sourceHeader + "\n" + strings.Join(rows, "\n") + "\n")
}

// seedSource writes one object per source row, keyed under its date prefix.
func seedSource(store *repository.MemoryTableStore, dates ...string) {
	for _, d := range dates {
		for i, row := range sourceRows[d] {
			store.PutObject(fmt.Sprintf("%s/%s_BINS_XETR%02d.csv", d, d, i), csvDoc(row))
		}
	}
}

func fixedClock(t *testing.T, s string) func() time.Time {
	t.Helper()
	ts, err := time.Parse(util.TimestampLayout, s)
	if err != nil {
		t.Fatalf("bad clock %q: %v", s, err)
	}
	return func() time.Time { return ts }
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := util.ParseDate(s)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func dayList(t *testing.T, ss ...string) []time.Time {
	t.Helper()
	out := make([]time.Time, len(ss))
	for i, s := range ss {
		out[i] = mustDate(t, s)
	}
	return out
}
