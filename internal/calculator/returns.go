package calculator

import (
	"fmt"
	"math"
	"time"

	"CAPMSentinel/internal/model"
)

// MinPeriods is the smallest table either estimator accepts.
const MinPeriods = 2

// BuildReturnTable resamples both daily series to month-end, inner-joins them on
// month, converts to log returns and drops the first (undefined) period.
func BuildReturnTable(asset, index model.PriceSeries) (*model.AlignedReturnTable, error) {
	if asset.Len() == 0 {
		return nil, fmt.Errorf("%w: no prices for %s", ErrInsufficientData, asset.Symbol)
	}
	if index.Len() == 0 {
		return nil, fmt.Errorf("%w: no prices for %s", ErrInsufficientData, index.Symbol)
	}
	if err := asset.Validate(); err != nil {
		return nil, err
	}
	if err := index.Validate(); err != nil {
		return nil, err
	}

	joined := joinMonths(ResampleMonthEnd(asset), ResampleMonthEnd(index))
	if len(joined) == 0 {
		return nil, fmt.Errorf("%w: %s and %s share no months", ErrInsufficientData, asset.Symbol, index.Symbol)
	}

	records := make([]model.ReturnRecord, 0, len(joined)-1)
	for i := 1; i < len(joined); i++ {
		prev, cur := joined[i-1], joined[i]
		records = append(records, model.ReturnRecord{
			Period:      cur.period,
			AssetClose:  cur.asset,
			IndexClose:  cur.index,
			AssetReturn: math.Log(cur.asset / prev.asset),
			IndexReturn: math.Log(cur.index / prev.index),
		})
	}
	if len(records) < MinPeriods {
		return nil, fmt.Errorf("%w: %d monthly periods after alignment, need %d", ErrInsufficientData, len(records), MinPeriods)
	}
	return model.NewAlignedReturnTable(records)
}

// ResampleMonthEnd keeps the last observation of each calendar month, dated at
// the month's final calendar day. The series must already be ascending.
func ResampleMonthEnd(s model.PriceSeries) []model.PricePoint {
	var out []model.PricePoint
	for _, p := range s.Points {
		me := MonthEnd(p.Date)
		if n := len(out); n > 0 && out[n-1].Date.Equal(me) {
			out[n-1].AdjClose = p.AdjClose
			continue
		}
		out = append(out, model.PricePoint{Date: me, AdjClose: p.AdjClose})
	}
	return out
}

// MonthEnd returns midnight UTC on the last day of t's month.
func MonthEnd(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC)
}

type monthClose struct {
	period time.Time
	asset  float64
	index  float64
}

// joinMonths keeps only months present in both resampled series.
func joinMonths(asset, index []model.PricePoint) []monthClose {
	var out []monthClose
	i, j := 0, 0
	for i < len(asset) && j < len(index) {
		a, b := asset[i].Date, index[j].Date
		switch {
		case a.Before(b):
			i++
		case b.Before(a):
			j++
		default:
			out = append(out, monthClose{period: a, asset: asset[i].AdjClose, index: index[j].AdjClose})
			i++
			j++
		}
	}
	return out
}
