package strategy

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"CAPMSentinel/internal/model"
)

const (
	agreementTolerance = 1e-6
	weakFitRSquared    = 0.1
)

func checkSampleSize(periods, minPeriods int) string {
	if periods >= minPeriods {
		return ""
	}
	return fmt.Sprintf("only %d monthly periods (< %d), estimates are noisy", periods, minPeriods)
}

// checkEstimatorAgreement flags covariance and regression betas that differ,
// which should only happen through numerical trouble.
func checkEstimatorAgreement(p model.CAPMParameters) string {
	diff := math.Abs(p.BetaCovariance - p.BetaRegression)
	if diff <= agreementTolerance*math.Max(1, math.Abs(p.BetaRegression)) {
		return ""
	}
	return fmt.Sprintf("beta estimators disagree: covariance %.6f vs regression %.6f", p.BetaCovariance, p.BetaRegression)
}

func checkFit(r2 float64) string {
	if math.IsNaN(r2) || r2 >= weakFitRSquared {
		return ""
	}
	return fmt.Sprintf("weak fit (R² %.2f), the index explains little of the stock's movement", r2)
}

// rSquared is the coefficient of determination of the fitted CAPM line.
func rSquared(a *model.Analysis) float64 {
	if a.Table.Len() < 2 {
		return math.NaN()
	}
	return stat.RSquared(a.Table.IndexReturns(), a.Table.AssetReturns(), nil, a.Params.AlphaRegression, a.Params.BetaRegression)
}
