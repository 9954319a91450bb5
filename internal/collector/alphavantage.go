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
	"golang.org/x/time/rate"

	"CAPMSentinel/internal/model"
)

const alphaVantageBaseURL = "https://www.alphavantage.co"

// AlphaVantageFetcher implements Fetcher using TIME_SERIES_DAILY_ADJUSTED.
// Requests are throttled to the free-tier quota.
type AlphaVantageFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
	Limiter *rate.Limiter
	Logger  *zap.Logger
}

// NewAlphaVantageFetcher creates a fetcher allowing five requests per minute.
func NewAlphaVantageFetcher(apiKey, proxyURL string, logger *zap.Logger) *AlphaVantageFetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AlphaVantageFetcher{
		BaseURL: alphaVantageBaseURL,
		APIKey:  apiKey,
		Client:  newHTTPClient(proxyURL),
		Limiter: rate.NewLimiter(rate.Every(time.Minute/5), 5),
		Logger:  logger,
	}
}

func (f *AlphaVantageFetcher) Name() string { return "alphavantage" }

// avDaily is the expected JSON shape. Error payloads replace the series with a message key.
type avDaily struct {
	TimeSeries   map[string]map[string]string `json:"Time Series (Daily)"`
	ErrorMessage string                       `json:"Error Message"`
	Note         string                       `json:"Note"`
	Information  string                       `json:"Information"`
}

const avAdjustedCloseKey = "5. adjusted close"

// FetchAdjustedCloses downloads the full daily adjusted history and trims it to [start, end).
func (f *AlphaVantageFetcher) FetchAdjustedCloses(ctx context.Context, symbol string, start, end time.Time) (model.PriceSeries, error) {
	if f.Limiter != nil {
		if err := f.Limiter.Wait(ctx); err != nil {
			return model.PriceSeries{}, fmt.Errorf("alphavantage rate limit wait: %w", err)
		}
	}

	q := url.Values{}
	q.Set("function", "TIME_SERIES_DAILY_ADJUSTED")
	q.Set("symbol", symbol)
	q.Set("outputsize", "full")
	q.Set("datatype", "json")
	q.Set("apikey", f.APIKey)
	endpoint := fmt.Sprintf("%s/query?%s", f.BaseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return model.PriceSeries{}, err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return model.PriceSeries{}, fmt.Errorf("alphavantage fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return model.PriceSeries{}, fmt.Errorf("alphavantage: status %d, body: %s", resp.StatusCode, string(body))
	}

	var daily avDaily
	if err := json.NewDecoder(resp.Body).Decode(&daily); err != nil {
		return model.PriceSeries{}, fmt.Errorf("alphavantage decode: %w", err)
	}
	switch {
	case daily.ErrorMessage != "":
		return model.PriceSeries{}, fmt.Errorf("alphavantage api error for %s: %s", symbol, daily.ErrorMessage)
	case daily.Note != "":
		return model.PriceSeries{}, fmt.Errorf("alphavantage throttled: %s", daily.Note)
	case len(daily.TimeSeries) == 0 && daily.Information != "":
		return model.PriceSeries{}, fmt.Errorf("alphavantage: %s", daily.Information)
	}

	from, to := dateOnly(start), dateOnly(end)
	series := model.PriceSeries{Symbol: symbol}
	for day, values := range daily.TimeSeries {
		date, err := time.ParseInLocation(time.DateOnly, day, time.UTC)
		if err != nil {
			return model.PriceSeries{}, fmt.Errorf("alphavantage %s: bad date %q: %w", symbol, day, err)
		}
		if date.Before(from) || !date.Before(to) {
			continue
		}
		raw, ok := values[avAdjustedCloseKey]
		if !ok {
			return model.PriceSeries{}, fmt.Errorf("alphavantage %s: %s missing on %s", symbol, avAdjustedCloseKey, day)
		}
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return model.PriceSeries{}, fmt.Errorf("alphavantage %s: parse price on %s: %w", symbol, day, err)
		}
		series.Points = append(series.Points, model.PricePoint{Date: date, AdjClose: price})
	}
	if len(series.Points) == 0 {
		return model.PriceSeries{}, fmt.Errorf("alphavantage %s: %w", symbol, ErrNoData)
	}

	// Ensure chronological order
	sort.Slice(series.Points, func(i, j int) bool { return series.Points[i].Date.Before(series.Points[j].Date) })

	f.Logger.Debug("alphavantage prices fetched", zap.String("symbol", symbol), zap.Int("points", len(series.Points)))
	return series, nil
}
