package analyzer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"CAPMSentinel/internal/calculator"
	"CAPMSentinel/internal/collector"
	"CAPMSentinel/internal/model"
)

// Request describes one estimation. Symbols are provider tickers, already
// adjusted with model.AdjustTicker where needed.
type Request struct {
	StockSymbol  string
	IndexSymbol  string
	Start        time.Time
	End          time.Time
	RiskFreeRate float64
}

// Validate checks the request against the current time.
func (r Request) Validate(now time.Time) error {
	if strings.TrimSpace(r.StockSymbol) == "" {
		return errors.New("stock symbol is required")
	}
	if strings.TrimSpace(r.IndexSymbol) == "" {
		return errors.New("index symbol is required")
	}
	if !r.End.After(r.Start) {
		return fmt.Errorf("end date %s must be after start date %s",
			r.End.Format(time.DateOnly), r.Start.Format(time.DateOnly))
	}
	if r.End.After(now) {
		return fmt.Errorf("end date %s is in the future", r.End.Format(time.DateOnly))
	}
	if math.IsNaN(r.RiskFreeRate) || r.RiskFreeRate < 0 || r.RiskFreeRate > 1 {
		return fmt.Errorf("risk-free rate %v must be within [0, 1]", r.RiskFreeRate)
	}
	return nil
}

// Analyzer runs the retrieval, return construction and estimation stages.
// It holds no per-run state and may be shared between goroutines.
type Analyzer struct {
	fetcher collector.Fetcher
	logger  *zap.Logger
}

func NewAnalyzer(fetcher collector.Fetcher, logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{fetcher: fetcher, logger: logger}
}

// RunAnalysis returns the CAPM parameters for req.
func (a *Analyzer) RunAnalysis(ctx context.Context, req Request) (model.CAPMParameters, error) {
	res, err := a.Analyze(ctx, req)
	if err != nil {
		return model.CAPMParameters{}, err
	}
	return res.Params, nil
}

// Analyze returns the parameters together with the aligned return table.
func (a *Analyzer) Analyze(ctx context.Context, req Request) (*model.Analysis, error) {
	asset, err := a.fetch(ctx, req.StockSymbol, req.Start, req.End)
	if err != nil {
		return nil, err
	}
	index, err := a.fetch(ctx, req.IndexSymbol, req.Start, req.End)
	if err != nil {
		return nil, err
	}

	table, err := calculator.BuildReturnTable(asset, index)
	if err != nil {
		return nil, fmt.Errorf("build returns for %s vs %s: %w", req.StockSymbol, req.IndexSymbol, err)
	}
	params, err := calculator.Estimate(table, req.RiskFreeRate)
	if err != nil {
		return nil, fmt.Errorf("estimate %s vs %s: %w", req.StockSymbol, req.IndexSymbol, err)
	}

	a.logger.Info("analysis complete",
		zap.String("stock", req.StockSymbol),
		zap.String("index", req.IndexSymbol),
		zap.Int("periods", table.Len()),
		zap.Float64("beta", params.BetaRegression),
		zap.Float64("alpha", params.AlphaRegression),
	)
	return &model.Analysis{
		StockSymbol: req.StockSymbol,
		IndexSymbol: req.IndexSymbol,
		Start:       req.Start,
		End:         req.End,
		Table:       table,
		Params:      params,
	}, nil
}

func (a *Analyzer) fetch(ctx context.Context, symbol string, start, end time.Time) (model.PriceSeries, error) {
	s, err := a.fetcher.FetchAdjustedCloses(ctx, symbol, start, end)
	if err != nil {
		a.logger.Warn("price retrieval failed", zap.String("symbol", symbol), zap.Error(err))
		return model.PriceSeries{}, &DataRetrievalError{Symbol: symbol, Err: err}
	}
	if s.Len() == 0 {
		return model.PriceSeries{}, &DataRetrievalError{Symbol: symbol, Err: collector.ErrNoData}
	}
	if err := s.Validate(); err != nil {
		return model.PriceSeries{}, &DataRetrievalError{Symbol: symbol, Err: err}
	}
	a.logger.Debug("prices retrieved", zap.String("symbol", symbol), zap.Int("points", s.Len()))
	return s, nil
}

// LookbackRequest builds a request covering the given number of years up to
// the start of today (UTC).
func LookbackRequest(stock, index string, years int, riskFree float64, now time.Time) Request {
	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return Request{
		StockSymbol:  stock,
		IndexSymbol:  index,
		Start:        end.AddDate(-years, 0, 0),
		End:          end,
		RiskFreeRate: riskFree,
	}
}
