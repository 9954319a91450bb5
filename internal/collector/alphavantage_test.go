package collector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const avOK = `{
  "Meta Data": {"2. Symbol": "IBM"},
  "Time Series (Daily)": {
    "2024-02-01": {"4. close": "186.0", "5. adjusted close": "180.5"},
    "2024-01-31": {"4. close": "183.6", "5. adjusted close": "178.2"},
    "2024-01-02": {"4. close": "163.5", "5. adjusted close": "158.9"},
    "2023-12-29": {"4. close": "163.4", "5. adjusted close": "158.8"}
  }
}`

func newTestAlphaVantage(t *testing.T, body string) *AlphaVantageFetcher {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/query", r.URL.Path)
		assert.Equal(t, "TIME_SERIES_DAILY_ADJUSTED", r.URL.Query().Get("function"))
		assert.Equal(t, "test-key", r.URL.Query().Get("apikey"))
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	f := NewAlphaVantageFetcher("test-key", "", zap.NewNop())
	f.BaseURL = srv.URL
	return f
}

func TestAlphaVantageFetcher_TrimsAndSorts(t *testing.T) {
	f := newTestAlphaVantage(t, avOK)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	s, err := f.FetchAdjustedCloses(context.Background(), "IBM", start, end)
	require.NoError(t, err)

	require.Equal(t, 2, s.Len(), "end date is exclusive and 2023 is out of range")
	assert.Equal(t, 158.9, s.Points[0].AdjClose)
	assert.Equal(t, 178.2, s.Points[1].AdjClose)
	assert.NoError(t, s.Validate())
}

func TestAlphaVantageFetcher_ErrorPayloads(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"invalid symbol", `{"Error Message": "Invalid API call."}`},
		{"throttled", `{"Note": "Thank you for using Alpha Vantage! Our standard API rate limit is 25 requests per day."}`},
		{"premium", `{"Information": "This is a premium endpoint."}`},
		{"empty range", `{"Time Series (Daily)": {"2001-01-02": {"5. adjusted close": "1"}}}`},
		{"bad price", `{"Time Series (Daily)": {"2024-01-02": {"5. adjusted close": "n/a"}}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTestAlphaVantage(t, tt.body)
			_, err := f.FetchAdjustedCloses(context.Background(), "IBM",
				time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
			assert.Error(t, err)
		})
	}
}

func TestAlphaVantageFetcher_CancelledWhileThrottled(t *testing.T) {
	f := newTestAlphaVantage(t, avOK)
	f.Limiter.SetBurst(0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.FetchAdjustedCloses(ctx, "IBM", time.Now().AddDate(-1, 0, 0), time.Now())
	assert.Error(t, err)
}
