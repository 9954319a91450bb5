package model

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrMalformedSeries is returned when a price series breaks its ordering or price invariants.
var ErrMalformedSeries = errors.New("malformed price series")

// PricePoint is one daily adjusted-close observation.
type PricePoint struct {
	Date     time.Time
	AdjClose float64
}

// PriceSeries holds daily adjusted-close prices for one symbol, dates ascending.
type PriceSeries struct {
	Symbol string
	Points []PricePoint
}

// Len returns the number of observations.
func (s PriceSeries) Len() int { return len(s.Points) }

// Validate checks that dates are strictly ascending and every price is positive and finite.
// An empty series is valid here; callers decide whether emptiness is an error.
func (s PriceSeries) Validate() error {
	for i, p := range s.Points {
		if math.IsNaN(p.AdjClose) || math.IsInf(p.AdjClose, 0) || p.AdjClose <= 0 {
			return fmt.Errorf("%w: %s price %v at %s", ErrMalformedSeries, s.Symbol, p.AdjClose, p.Date.Format(time.DateOnly))
		}
		if i > 0 && !p.Date.After(s.Points[i-1].Date) {
			return fmt.Errorf("%w: %s dates not strictly ascending at %s", ErrMalformedSeries, s.Symbol, p.Date.Format(time.DateOnly))
		}
	}
	return nil
}
