package model

import (
	"fmt"
	"math"
	"time"
)

// ReturnRecord is one month-end period of the aligned table.
type ReturnRecord struct {
	Period      time.Time
	AssetClose  float64
	IndexClose  float64
	AssetReturn float64
	IndexReturn float64
}

// AlignedReturnTable is the immutable month-end return table both estimators consume.
// Periods are strictly ascending and every return is finite.
type AlignedReturnTable struct {
	records []ReturnRecord
}

// NewAlignedReturnTable copies records into a table, rejecting unordered periods or undefined returns.
func NewAlignedReturnTable(records []ReturnRecord) (*AlignedReturnTable, error) {
	for i, r := range records {
		if !isFinite(r.AssetReturn) || !isFinite(r.IndexReturn) {
			return nil, fmt.Errorf("period %s: undefined return", r.Period.Format(time.DateOnly))
		}
		if i > 0 && !r.Period.After(records[i-1].Period) {
			return nil, fmt.Errorf("period %s: periods not strictly ascending", r.Period.Format(time.DateOnly))
		}
	}
	cp := make([]ReturnRecord, len(records))
	copy(cp, records)
	return &AlignedReturnTable{records: cp}, nil
}

// Len returns the number of periods.
func (t *AlignedReturnTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.records)
}

// Records returns a copy of all periods.
func (t *AlignedReturnTable) Records() []ReturnRecord {
	cp := make([]ReturnRecord, t.Len())
	if t != nil {
		copy(cp, t.records)
	}
	return cp
}

// AssetReturns returns the asset log-return column.
func (t *AlignedReturnTable) AssetReturns() []float64 {
	out := make([]float64, t.Len())
	for i := range out {
		out[i] = t.records[i].AssetReturn
	}
	return out
}

// IndexReturns returns the index log-return column.
func (t *AlignedReturnTable) IndexReturns() []float64 {
	out := make([]float64, t.Len())
	for i := range out {
		out[i] = t.records[i].IndexReturn
	}
	return out
}

// Start returns the first period, or the zero time for an empty table.
func (t *AlignedReturnTable) Start() time.Time {
	if t.Len() == 0 {
		return time.Time{}
	}
	return t.records[0].Period
}

// End returns the last period, or the zero time for an empty table.
func (t *AlignedReturnTable) End() time.Time {
	if t.Len() == 0 {
		return time.Time{}
	}
	return t.records[len(t.records)-1].Period
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
