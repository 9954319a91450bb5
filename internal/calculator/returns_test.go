package calculator

import (
	"errors"
	"math"
	"testing"
	"time"

	"CAPMSentinel/internal/model"
)

var jan2020 = time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)

func TestResampleMonthEnd_KeepsLastObservation(t *testing.T) {
	s := model.PriceSeries{Symbol: "X", Points: []model.PricePoint{
		{Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), AdjClose: 10},
		{Date: time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), AdjClose: 11},
		{Date: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), AdjClose: 12},
		{Date: time.Date(2024, 2, 27, 0, 0, 0, 0, time.UTC), AdjClose: 13},
	}}
	got := ResampleMonthEnd(s)
	if len(got) != 2 {
		t.Fatalf("expected 2 months, got %d", len(got))
	}
	if got[0].AdjClose != 11 || got[1].AdjClose != 13 {
		t.Errorf("expected closes 11 and 13, got %.0f and %.0f", got[0].AdjClose, got[1].AdjClose)
	}
	if want := time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC); !got[1].Date.Equal(want) {
		t.Errorf("expected leap-year month end %s, got %s", want, got[1].Date)
	}
}

func TestBuildReturnTable_LogReturns(t *testing.T) {
	asset := monthlySeries("A", jan2020, []float64{100, 110, 99})
	index := monthlySeries("I", jan2020, []float64{50, 50.5, 51})

	table, err := BuildReturnTable(asset, index)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if table.Len() != 2 {
		t.Fatalf("expected 2 periods (first dropped), got %d", table.Len())
	}
	recs := table.Records()
	if want := math.Log(110.0 / 100.0); math.Abs(recs[0].AssetReturn-want) > tolerance {
		t.Errorf("asset return: expected %.6f, got %.6f", want, recs[0].AssetReturn)
	}
	if want := math.Log(51 / 50.5); math.Abs(recs[1].IndexReturn-want) > tolerance {
		t.Errorf("index return: expected %.6f, got %.6f", want, recs[1].IndexReturn)
	}
	if recs[0].AssetClose != 110 || recs[0].IndexClose != 50.5 {
		t.Errorf("unexpected closes %.2f / %.2f", recs[0].AssetClose, recs[0].IndexClose)
	}
	if !recs[0].Period.Equal(time.Date(2020, 2, 29, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("expected first period 2020-02-29, got %s", recs[0].Period)
	}
}

func TestBuildReturnTable_InnerJoinDropsMissingMonth(t *testing.T) {
	index := monthlySeries("I", jan2020, []float64{100, 101, 102, 103, 104})
	full := monthlySeries("A", jan2020, []float64{200, 202, 204, 206, 208})
	// Asset has no observation at all in March.
	asset := model.PriceSeries{Symbol: "A"}
	for _, p := range full.Points {
		if p.Date.Month() != time.March {
			asset.Points = append(asset.Points, p)
		}
	}

	table, err := BuildReturnTable(asset, index)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if table.Len() != 3 {
		t.Fatalf("expected Feb, Apr, May periods, got %d", table.Len())
	}
	for _, r := range table.Records() {
		if r.Period.Month() == time.March {
			t.Fatal("March must not appear in the aligned table")
		}
		if math.IsNaN(r.AssetReturn) || math.IsNaN(r.IndexReturn) {
			t.Fatalf("undefined return at %s", r.Period)
		}
	}
	apr := table.Records()[1]
	if want := math.Log(206.0 / 202.0); math.Abs(apr.AssetReturn-want) > tolerance {
		t.Errorf("April asset return should span from February: expected %.6f, got %.6f", want, apr.AssetReturn)
	}
}

func TestBuildReturnTable_Insufficient(t *testing.T) {
	tests := []struct {
		name  string
		asset model.PriceSeries
		index model.PriceSeries
	}{
		{"empty asset", model.PriceSeries{Symbol: "A"}, monthlySeries("I", jan2020, []float64{1, 2, 3})},
		{"empty index", monthlySeries("A", jan2020, []float64{1, 2, 3}), model.PriceSeries{Symbol: "I"}},
		{"no overlap", monthlySeries("A", jan2020, []float64{1, 2, 3}),
			monthlySeries("I", jan2020.AddDate(1, 0, 0), []float64{1, 2, 3})},
		{"one period", monthlySeries("A", jan2020, []float64{1, 2}), monthlySeries("I", jan2020, []float64{1, 2})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildReturnTable(tt.asset, tt.index)
			if !errors.Is(err, ErrInsufficientData) {
				t.Errorf("expected ErrInsufficientData, got %v", err)
			}
		})
	}
}

func TestBuildReturnTable_MalformedSeries(t *testing.T) {
	asset := monthlySeries("A", jan2020, []float64{100, -1, 120})
	index := monthlySeries("I", jan2020, []float64{100, 101, 102})
	if _, err := BuildReturnTable(asset, index); !errors.Is(err, model.ErrMalformedSeries) {
		t.Errorf("expected ErrMalformedSeries, got %v", err)
	}
}
