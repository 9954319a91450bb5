package model

import "time"

// MonthsInYear annualizes a mean monthly log return.
const MonthsInYear = 12

// CAPMParameters is the result of one analysis run.
type CAPMParameters struct {
	BetaCovariance  float64 `json:"beta_covariance"`
	BetaRegression  float64 `json:"beta_regression"`
	AlphaRegression float64 `json:"alpha_regression"`
	ExpectedReturn  float64 `json:"expected_return"`
	RiskFreeRate    float64 `json:"risk_free_rate"`
}

// Point is an (x, y) pair handed to a chart renderer.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PlotData is the scatter of (index, asset) returns plus the fitted CAPM line.
type PlotData struct {
	Scatter []Point `json:"scatter"`
	Line    []Point `json:"line"`
}

// Analysis bundles what the presentation side needs from one run.
type Analysis struct {
	StockSymbol string
	IndexSymbol string
	Start       time.Time
	End         time.Time
	Table       *AlignedReturnTable
	Params      CAPMParameters
}

// AnalysisRecord is the persisted summary of a run.
type AnalysisRecord struct {
	ID              string
	RecordedAt      time.Time
	StockSymbol     string
	IndexSymbol     string
	Start           time.Time
	End             time.Time
	Periods         int
	BetaCovariance  float64
	BetaRegression  float64
	AlphaRegression float64
	ExpectedReturn  float64
	RiskFreeRate    float64
	Tier            string
}
