package collector

import (
	"context"
	"errors"
	"time"

	"CAPMSentinel/internal/model"
)

// ErrNoData is returned when the provider has no prices for the requested range.
var ErrNoData = errors.New("no price data returned")

// Fetcher retrieves daily adjusted-close prices for [start, end).
type Fetcher interface {
	FetchAdjustedCloses(ctx context.Context, symbol string, start, end time.Time) (model.PriceSeries, error)
	Name() string
}
