package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"

	"CAPMSentinel/internal/model"
)

const yahooBaseURL = "https://query1.finance.yahoo.com"

// YahooFetcher implements Fetcher using the Yahoo Finance chart API.
type YahooFetcher struct {
	BaseURL string
	Client  *http.Client
	Logger  *zap.Logger
}

// NewYahooFetcher creates a new Yahoo Finance fetcher.
func NewYahooFetcher(proxyURL string, logger *zap.Logger) *YahooFetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &YahooFetcher{
		BaseURL: yahooBaseURL,
		Client:  newHTTPClient(proxyURL),
		Logger:  logger,
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

// yahooChart is the response structure from the chart API. Null values decode to nil.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol    string `json:"symbol"`
				GMTOffset int64  `json:"gmtoffset"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				AdjClose []struct {
					AdjClose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// FetchAdjustedCloses downloads daily bars and keeps the adjusted close.
func (f *YahooFetcher) FetchAdjustedCloses(ctx context.Context, symbol string, start, end time.Time) (model.PriceSeries, error) {
	q := url.Values{}
	q.Set("period1", strconv.FormatInt(start.Unix(), 10))
	q.Set("period2", strconv.FormatInt(end.Unix(), 10))
	q.Set("interval", "1d")
	q.Set("events", "div|split")
	q.Set("includeAdjustedClose", "true")
	u := fmt.Sprintf("%s/v8/finance/chart/%s?%s", f.BaseURL, url.PathEscape(symbol), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return model.PriceSeries{}, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return model.PriceSeries{}, fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.PriceSeries{}, fmt.Errorf("yahoo read body: %w", err)
	}

	// Unknown symbols come back as 404 with a chart.error payload.
	var chart yahooChart
	decodeErr := json.Unmarshal(body, &chart)
	if decodeErr == nil && chart.Chart.Error != nil {
		return model.PriceSeries{}, fmt.Errorf("yahoo api error for %s: %s", symbol, chart.Chart.Error.Description)
	}
	if resp.StatusCode != http.StatusOK {
		return model.PriceSeries{}, fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode, string(body))
	}
	if decodeErr != nil {
		return model.PriceSeries{}, fmt.Errorf("yahoo decode: %w", decodeErr)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 {
		return model.PriceSeries{}, fmt.Errorf("yahoo %s: %w", symbol, ErrNoData)
	}

	result := chart.Chart.Result[0]
	if len(result.Indicators.AdjClose) == 0 {
		return model.PriceSeries{}, fmt.Errorf("yahoo %s: response has no adjusted close", symbol)
	}
	adj := result.Indicators.AdjClose[0].AdjClose
	if len(adj) != len(result.Timestamp) {
		return model.PriceSeries{}, fmt.Errorf("yahoo %s: %d timestamps but %d prices", symbol, len(result.Timestamp), len(adj))
	}

	series := model.PriceSeries{Symbol: symbol, Points: make([]model.PricePoint, 0, len(adj))}
	for i, ts := range result.Timestamp {
		if adj[i] == nil {
			continue // holidays and halted sessions
		}
		// Shift to exchange local time so the calendar date matches the session.
		date := dateOnly(time.Unix(ts+result.Meta.GMTOffset, 0).UTC())
		series.Points = append(series.Points, model.PricePoint{Date: date, AdjClose: *adj[i]})
	}
	sort.SliceStable(series.Points, func(i, j int) bool { return series.Points[i].Date.Before(series.Points[j].Date) })
	series.Points = dedupeDates(series.Points)

	if len(series.Points) == 0 {
		return model.PriceSeries{}, fmt.Errorf("yahoo %s: %w", symbol, ErrNoData)
	}
	f.Logger.Debug("yahoo prices fetched",
		zap.String("symbol", symbol),
		zap.Int("points", len(series.Points)),
		zap.Time("first", series.Points[0].Date),
		zap.Time("last", series.Points[len(series.Points)-1].Date))
	return series, nil
}

// dedupeDates keeps the last point for each date of an ascending slice.
func dedupeDates(points []model.PricePoint) []model.PricePoint {
	out := points[:0]
	for _, p := range points {
		if n := len(out); n > 0 && out[n-1].Date.Equal(p.Date) {
			out[n-1] = p
			continue
		}
		out = append(out, p)
	}
	return out
}
