package calculator

import "CAPMSentinel/internal/model"

// BuildPlotData returns the return scatter and the fitted line y = beta*x + alpha
// evaluated at every index return, in period order.
func BuildPlotData(table *model.AlignedReturnTable, alpha, beta float64) model.PlotData {
	x := table.IndexReturns()
	y := table.AssetReturns()
	pd := model.PlotData{
		Scatter: make([]model.Point, len(x)),
		Line:    make([]model.Point, len(x)),
	}
	for i := range x {
		pd.Scatter[i] = model.Point{X: x[i], Y: y[i]}
		pd.Line[i] = model.Point{X: x[i], Y: beta*x[i] + alpha}
	}
	return pd
}
