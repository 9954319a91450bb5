package notifier

import (
	"fmt"
	"html"
	"math"
	"strings"
	"time"

	"CAPMSentinel/internal/model"
)

// FormatAnalysisReport formats one CAPM analysis into a Telegram message.
func FormatAnalysisReport(a *model.Analysis, as *model.Assessment) string {
	var b strings.Builder
	p := a.Params

	b.WriteString(fmt.Sprintf("📊 <b>CAPM %s</b> vs %s\n", html.EscapeString(a.StockSymbol), html.EscapeString(a.IndexSymbol)))
	b.WriteString(fmt.Sprintf("%s → %s | %d monthly periods\n\n",
		a.Start.Format(time.DateOnly), a.End.Format(time.DateOnly), a.Table.Len()))

	b.WriteString(fmt.Sprintf("Calculated Beta: %.4f\n", p.BetaCovariance))
	b.WriteString(fmt.Sprintf("Beta from Regression: %.4f\n", p.BetaRegression))
	b.WriteString(fmt.Sprintf("Alpha from Regression: %.4f\n", p.AlphaRegression))
	b.WriteString(fmt.Sprintf("Expected Annual Return: %.2f%% (rf %.2f%%)\n\n", p.ExpectedReturn*100, p.RiskFreeRate*100))

	if as != nil {
		b.WriteString(fmt.Sprintf("📈 <b>%s</b>: %s\n", as.Tier.Label, as.Tier.Description))
		if !math.IsNaN(as.RSquared) {
			b.WriteString(fmt.Sprintf("R²: %.2f\n", as.RSquared))
		}
		for _, w := range as.Warnings {
			b.WriteString(fmt.Sprintf("⚠️ %s\n", html.EscapeString(w)))
		}
	}
	return b.String()
}

// FormatHistory lists stored analyses, newest first.
func FormatHistory(stock string, records []model.AnalysisRecord) string {
	if len(records) == 0 {
		return fmt.Sprintf("No stored analyses for %s", html.EscapeString(stock))
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🗂 <b>History %s</b>\n\n", html.EscapeString(records[0].StockSymbol)))
	for _, r := range records {
		b.WriteString(fmt.Sprintf("%s vs %s: β %.4f, α %.4f, E[r] %.2f%% (%s)\n",
			r.RecordedAt.Format("2006-01-02 15:04"), html.EscapeString(r.IndexSymbol),
			r.BetaRegression, r.AlphaRegression, r.ExpectedReturn*100, r.Tier))
	}
	return b.String()
}

// FormatFailure reports an analysis that could not complete.
func FormatFailure(stock, index string, err error) string {
	return fmt.Sprintf("❌ CAPM %s vs %s failed: %s", html.EscapeString(stock), html.EscapeString(index), html.EscapeString(err.Error()))
}

// FormatWatchlist lists the configured watchlist entries.
func FormatWatchlist(entries []string) string {
	if len(entries) == 0 {
		return "Watchlist is empty"
	}
	var b strings.Builder
	b.WriteString("👀 <b>Watchlist</b>\n\n")
	for _, e := range entries {
		b.WriteString("• " + html.EscapeString(e) + "\n")
	}
	return b.String()
}

// HelpText lists the supported commands.
func HelpText() string {
	return "Available commands:\n" +
		"• /capm STOCK [INDEX] [YEARS]\n" +
		"• /history STOCK\n" +
		"• /watchlist\n" +
		"Indices: NSEI (Nifty 50), BSESN (Sensex), GSPC (S&amp;P 500)"
}
