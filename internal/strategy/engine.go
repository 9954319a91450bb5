package strategy

import "CAPMSentinel/internal/model"

// Tiers maps a regression beta to its sensitivity band, highest first.
var Tiers = []struct {
	MinBeta float64
	Tier    model.BetaTier
}{
	{1.5, model.BetaTier{Label: "Highly aggressive", Description: "amplifies index moves by half again or more"}},
	{1.1, model.BetaTier{Label: "Aggressive", Description: "moves more than the index"}},
	{0.9, model.BetaTier{Label: "Market-like", Description: "tracks the index closely"}},
	{0.5, model.BetaTier{Label: "Defensive", Description: "moves less than the index"}},
	{0.0, model.BetaTier{Label: "Low sensitivity", Description: "weakly tied to the index"}},
}

// DefaultTier is the band for negative betas.
var DefaultTier = model.BetaTier{Label: "Inverse", Description: "tends to move against the index"}

// DefaultMinPeriods is the sample size below which estimates are flagged.
const DefaultMinPeriods = 12

func mapTier(beta float64) model.BetaTier {
	for _, t := range Tiers {
		if beta >= t.MinBeta {
			return t.Tier
		}
	}
	return DefaultTier
}

// Evaluate interprets a finished analysis. minPeriods <= 0 uses DefaultMinPeriods.
func Evaluate(a *model.Analysis, minPeriods int) *model.Assessment {
	if minPeriods <= 0 {
		minPeriods = DefaultMinPeriods
	}
	as := &model.Assessment{
		Tier:     mapTier(a.Params.BetaRegression),
		RSquared: rSquared(a),
	}
	for _, check := range []func() string{
		func() string { return checkSampleSize(a.Table.Len(), minPeriods) },
		func() string { return checkEstimatorAgreement(a.Params) },
		func() string { return checkFit(as.RSquared) },
	} {
		if w := check(); w != "" {
			as.Warnings = append(as.Warnings, w)
		}
	}
	return as
}
