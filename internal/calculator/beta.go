package calculator

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"CAPMSentinel/internal/model"
)

// flatTolerance bounds the spread of index returns treated as constant.
const flatTolerance = 1e-12

// CovarianceBeta computes Cov(asset, index) / Var(index) with N-1 sample estimators.
func CovarianceBeta(table *model.AlignedReturnTable) (float64, error) {
	if err := checkEstimable(table); err != nil {
		return 0, err
	}
	x := table.IndexReturns()
	y := table.AssetReturns()

	beta := stat.Covariance(y, x, nil) / stat.Variance(x, nil)
	if !isFinite(beta) {
		return 0, fmt.Errorf("%w: covariance beta is not finite", ErrDegenerateInput)
	}
	return beta, nil
}

// checkEstimable enforces the preconditions shared by both estimators.
func checkEstimable(table *model.AlignedReturnTable) error {
	if n := table.Len(); n < MinPeriods {
		return fmt.Errorf("%w: %d periods, need %d", ErrInsufficientData, n, MinPeriods)
	}
	x := table.IndexReturns()
	lo, hi := floats.Min(x), floats.Max(x)
	scale := math.Max(1, math.Max(math.Abs(lo), math.Abs(hi)))
	if hi-lo <= flatTolerance*scale {
		return fmt.Errorf("%w: index returns are constant across %d periods", ErrDegenerateInput, len(x))
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
