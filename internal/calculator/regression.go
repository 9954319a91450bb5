package calculator

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"CAPMSentinel/internal/model"
)

// Regress fits asset = beta*index + alpha by ordinary least squares.
func Regress(table *model.AlignedReturnTable) (beta, alpha float64, err error) {
	if err := checkEstimable(table); err != nil {
		return 0, 0, err
	}
	alpha, beta = stat.LinearRegression(table.IndexReturns(), table.AssetReturns(), nil, false)
	if !isFinite(alpha) || !isFinite(beta) {
		return 0, 0, fmt.Errorf("%w: regression coefficients are not finite", ErrDegenerateInput)
	}
	return beta, alpha, nil
}

// ExpectedReturn applies the Security Market Line to a mean monthly index log return.
// Annualizing by a plain x12 ignores compounding; it is kept as the documented convention.
func ExpectedReturn(riskFree, beta, meanMonthlyIndexReturn float64) float64 {
	return riskFree + beta*(meanMonthlyIndexReturn*model.MonthsInYear-riskFree)
}

// Estimate runs both beta estimators and the expected-return projection.
func Estimate(table *model.AlignedReturnTable, riskFree float64) (model.CAPMParameters, error) {
	betaCov, err := CovarianceBeta(table)
	if err != nil {
		return model.CAPMParameters{}, fmt.Errorf("covariance beta: %w", err)
	}
	betaReg, alpha, err := Regress(table)
	if err != nil {
		return model.CAPMParameters{}, fmt.Errorf("regression: %w", err)
	}

	expected := ExpectedReturn(riskFree, betaReg, stat.Mean(table.IndexReturns(), nil))
	if !isFinite(expected) {
		return model.CAPMParameters{}, fmt.Errorf("%w: expected return is not finite (risk-free rate %v)", ErrDegenerateInput, riskFree)
	}

	return model.CAPMParameters{
		BetaCovariance:  betaCov,
		BetaRegression:  betaReg,
		AlphaRegression: alpha,
		ExpectedReturn:  expected,
		RiskFreeRate:    riskFree,
	}, nil
}
