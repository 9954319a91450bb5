package collector

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"CAPMSentinel/internal/model"
)

// Options selects and configures a price provider.
type Options struct {
	Provider string // "yahoo" or "alphavantage"
	BaseURL  string
	APIKey   string
	Proxy    string
}

// New builds the Fetcher named by opts.Provider.
func New(opts Options, logger *zap.Logger) (Fetcher, error) {
	switch opts.Provider {
	case "", "yahoo":
		f := NewYahooFetcher(opts.Proxy, logger)
		if opts.BaseURL != "" {
			f.BaseURL = opts.BaseURL
		}
		return f, nil
	case "alphavantage":
		if opts.APIKey == "" {
			return nil, fmt.Errorf("alphavantage requires an api key")
		}
		f := NewAlphaVantageFetcher(opts.APIKey, opts.Proxy, logger)
		if opts.BaseURL != "" {
			f.BaseURL = opts.BaseURL
		}
		return f, nil
	default:
		return nil, fmt.Errorf("unknown data provider %q", opts.Provider)
	}
}

// MockFetcher returns controllable data for development and testing.
// Series maps a symbol to fixed data; other symbols get GenerateDailySeries with beta 1.
type MockFetcher struct {
	Series map[string]model.PriceSeries
	Errors map[string]error

	mu    sync.Mutex
	calls []string
}

func (m *MockFetcher) Name() string { return "mock" }

// Calls returns the symbols requested so far.
func (m *MockFetcher) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *MockFetcher) FetchAdjustedCloses(_ context.Context, symbol string, start, end time.Time) (model.PriceSeries, error) {
	m.mu.Lock()
	m.calls = append(m.calls, symbol)
	m.mu.Unlock()
	if err, ok := m.Errors[symbol]; ok {
		return model.PriceSeries{}, err
	}
	if s, ok := m.Series[symbol]; ok {
		return s, nil
	}
	return GenerateDailySeries(symbol, start, end, 100, 1.0), nil
}

// GenerateDailySeries produces weekday prices between start and end whose
// log returns scale with beta against a shared synthetic market path.
func GenerateDailySeries(symbol string, start, end time.Time, basePrice, beta float64) model.PriceSeries {
	s := model.PriceSeries{Symbol: symbol}
	logPrice := math.Log(basePrice)
	day := 0
	for d := dateOnly(start); d.Before(end); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		market := 0.0004 + 0.01*math.Sin(float64(day)/7)
		logPrice += beta * market
		s.Points = append(s.Points, model.PricePoint{Date: d, AdjClose: math.Exp(logPrice)})
		day++
	}
	return s
}
