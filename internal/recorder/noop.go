package recorder

import (
	"context"

	"CAPMSentinel/internal/model"
)

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordAnalysis(_ context.Context, _ *model.AnalysisRecord) error { return nil }
func (n *NoopRecorder) RecentAnalyses(_ context.Context, _ string, _ int) ([]model.AnalysisRecord, error) {
	return nil, nil
}
func (n *NoopRecorder) Close() error { return nil }
