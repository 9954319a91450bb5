package strategy

import (
	"math"
	"strings"
	"testing"
	"time"

	"CAPMSentinel/internal/model"
)

func analysisWith(t *testing.T, index, asset []float64, params model.CAPMParameters) *model.Analysis {
	t.Helper()
	records := make([]model.ReturnRecord, len(index))
	p := time.Date(2020, 1, 31, 0, 0, 0, 0, time.UTC)
	for i := range index {
		records[i] = model.ReturnRecord{
			Period:      time.Date(p.Year(), p.Month()+time.Month(i)+1, 0, 0, 0, 0, 0, time.UTC),
			AssetClose:  1,
			IndexClose:  1,
			AssetReturn: asset[i],
			IndexReturn: index[i],
		}
	}
	table, err := model.NewAlignedReturnTable(records)
	if err != nil {
		t.Fatalf("build table: %v", err)
	}
	return &model.Analysis{Table: table, Params: params}
}

// wave returns n index returns with a clean asset = beta*index relationship.
func wave(n int, beta float64) (index, asset []float64) {
	for i := 0; i < n; i++ {
		x := 0.03 * math.Sin(float64(i))
		index = append(index, x)
		asset = append(asset, beta*x)
	}
	return index, asset
}

func TestMapTier(t *testing.T) {
	tests := []struct {
		beta float64
		want string
	}{
		{-0.3, "Inverse"},
		{0, "Low sensitivity"},
		{0.49, "Low sensitivity"},
		{0.5, "Defensive"},
		{0.89, "Defensive"},
		{0.9, "Market-like"},
		{1.0, "Market-like"},
		{1.1, "Aggressive"},
		{1.49, "Aggressive"},
		{1.5, "Highly aggressive"},
		{3.2, "Highly aggressive"},
	}
	for _, tt := range tests {
		if got := mapTier(tt.beta).Label; got != tt.want {
			t.Errorf("mapTier(%v): expected %q, got %q", tt.beta, tt.want, got)
		}
	}
}

func TestEvaluate_CleanAnalysis(t *testing.T) {
	index, asset := wave(36, 1.2)
	a := analysisWith(t, index, asset, model.CAPMParameters{BetaCovariance: 1.2, BetaRegression: 1.2})

	as := Evaluate(a, 12)
	if as.Tier.Label != "Aggressive" {
		t.Errorf("expected Aggressive, got %s", as.Tier.Label)
	}
	if len(as.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", as.Warnings)
	}
	if math.Abs(as.RSquared-1) > 1e-9 {
		t.Errorf("expected R² of 1, got %v", as.RSquared)
	}
}

func TestEvaluate_SmallSample(t *testing.T) {
	index, asset := wave(6, 0.7)
	a := analysisWith(t, index, asset, model.CAPMParameters{BetaCovariance: 0.7, BetaRegression: 0.7})

	as := Evaluate(a, 0)
	if len(as.Warnings) != 1 || !strings.Contains(as.Warnings[0], "only 6 monthly periods") {
		t.Errorf("expected small-sample warning, got %v", as.Warnings)
	}
	if as.Tier.Label != "Defensive" {
		t.Errorf("expected Defensive, got %s", as.Tier.Label)
	}
}

func TestEvaluate_EstimatorDisagreement(t *testing.T) {
	index, asset := wave(24, 1.0)
	a := analysisWith(t, index, asset, model.CAPMParameters{BetaCovariance: 1.01, BetaRegression: 1.0})

	as := Evaluate(a, 12)
	if len(as.Warnings) != 1 || !strings.Contains(as.Warnings[0], "disagree") {
		t.Errorf("expected disagreement warning, got %v", as.Warnings)
	}
}

func TestEvaluate_WeakFit(t *testing.T) {
	index, _ := wave(24, 1.0)
	asset := make([]float64, len(index))
	for i := range asset {
		asset[i] = 0.05 * math.Cos(float64(7*i))
	}
	a := analysisWith(t, index, asset, model.CAPMParameters{BetaCovariance: 0.01, BetaRegression: 0.01})

	as := Evaluate(a, 12)
	found := false
	for _, w := range as.Warnings {
		if strings.Contains(w, "weak fit") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected weak-fit warning, got %v (R² %v)", as.Warnings, as.RSquared)
	}
}
