package recorder

import (
	"context"

	"CAPMSentinel/internal/model"
)

// Recorder persists analysis results for later lookup.
type Recorder interface {
	// RecordAnalysis stores rec, assigning ID and RecordedAt when they are empty.
	RecordAnalysis(ctx context.Context, rec *model.AnalysisRecord) error
	// RecentAnalyses returns up to limit records for stock, newest first.
	RecentAnalyses(ctx context.Context, stock string, limit int) ([]model.AnalysisRecord, error)
	Close() error
}

// NewRecord summarises a finished analysis for storage.
func NewRecord(a *model.Analysis, tier string) *model.AnalysisRecord {
	return &model.AnalysisRecord{
		StockSymbol:     a.StockSymbol,
		IndexSymbol:     a.IndexSymbol,
		Start:           a.Start,
		End:             a.End,
		Periods:         a.Table.Len(),
		BetaCovariance:  a.Params.BetaCovariance,
		BetaRegression:  a.Params.BetaRegression,
		AlphaRegression: a.Params.AlphaRegression,
		ExpectedReturn:  a.Params.ExpectedReturn,
		RiskFreeRate:    a.Params.RiskFreeRate,
		Tier:            tier,
	}
}
