package calculator

import (
	"math"
	"testing"
	"time"

	"CAPMSentinel/internal/model"
)

const tolerance = 1e-9

// pricesFromReturns compounds log returns from a starting price.
func pricesFromReturns(start float64, returns []float64) []float64 {
	prices := []float64{start}
	for _, r := range returns {
		prices = append(prices, prices[len(prices)-1]*math.Exp(r))
	}
	return prices
}

// monthlySeries places one observation on the 28th of consecutive months.
func monthlySeries(symbol string, first time.Time, prices []float64) model.PriceSeries {
	s := model.PriceSeries{Symbol: symbol}
	for i, p := range prices {
		d := time.Date(first.Year(), first.Month()+time.Month(i), 28, 0, 0, 0, 0, time.UTC)
		s.Points = append(s.Points, model.PricePoint{Date: d, AdjClose: p})
	}
	return s
}

// tableFromReturns builds a table directly from return columns.
func tableFromReturns(t *testing.T, index, asset []float64) *model.AlignedReturnTable {
	t.Helper()
	records := make([]model.ReturnRecord, len(index))
	for i := range index {
		records[i] = model.ReturnRecord{
			Period:      MonthEnd(time.Date(2020, time.Month(i+1), 1, 0, 0, 0, 0, time.UTC)),
			IndexReturn: index[i],
			AssetReturn: asset[i],
		}
	}
	table, err := model.NewAlignedReturnTable(records)
	if err != nil {
		t.Fatalf("build table: %v", err)
	}
	return table
}

func scale(xs []float64, k float64) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = k * x
	}
	return out
}
