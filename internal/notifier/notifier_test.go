package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CAPMSentinel/internal/model"
)

func newTestNotifier(t *testing.T, h http.HandlerFunc) *TelegramNotifier {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	n := NewTelegramNotifier("TOKEN", "42", "", nil)
	n.APIBase = srv.URL
	n.Backoff = time.Millisecond
	return n
}

func TestSend_PostsHTMLMessage(t *testing.T) {
	var got map[string]string
	n := newTestNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botTOKEN/sendMessage", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"ok":true}`))
	})

	require.NoError(t, n.Send(context.Background(), "<b>hi</b>"))
	assert.Equal(t, "42", got["chat_id"])
	assert.Equal(t, "HTML", got["parse_mode"])
	assert.Equal(t, "<b>hi</b>", got["text"])
}

func TestSendWithRetry(t *testing.T) {
	var calls atomic.Int32
	n := newTestNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, `{"ok":false}`, http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	})

	require.NoError(t, n.SendWithRetry(context.Background(), "x", 3))
	assert.Equal(t, int32(3), calls.Load())

	calls.Store(-100)
	err := n.SendWithRetry(context.Background(), "x", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all 2 attempts failed")
}

func TestStartPolling_DispatchesCommands(t *testing.T) {
	var (
		mu      sync.Mutex
		replies []string
		served  atomic.Bool
	)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	n := newTestNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/getUpdates"):
			if served.Swap(true) {
				w.Write([]byte(`{"ok":true,"result":[]}`))
				return
			}
			w.Write([]byte(`{"ok":true,"result":[
				{"update_id":7,"message":{"text":" /capm AAPL GSPC "}},
				{"update_id":8}
			]}`))
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			mu.Lock()
			replies = append(replies, body["text"])
			mu.Unlock()
			w.Write([]byte(`{"ok":true}`))
			cancel()
		}
	})

	done := make(chan struct{})
	go func() {
		n.StartPolling(ctx, func(_ context.Context, cmd string) string { return "ack " + cmd })
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("polling did not stop")
	}
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"ack /capm AAPL GSPC"}, replies)
}

func testAnalysis(t *testing.T) *model.Analysis {
	t.Helper()
	table, err := model.NewAlignedReturnTable([]model.ReturnRecord{
		{Period: time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), AssetClose: 1, IndexClose: 1, AssetReturn: 0.02, IndexReturn: 0.01},
		{Period: time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), AssetClose: 1, IndexClose: 1, AssetReturn: -0.02, IndexReturn: -0.01},
	})
	require.NoError(t, err)
	return &model.Analysis{
		StockSymbol: "M&M.NS",
		IndexSymbol: "^NSEI",
		Start:       time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC),
		End:         time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Table:       table,
		Params: model.CAPMParameters{
			BetaCovariance: 2, BetaRegression: 2, AlphaRegression: 0, ExpectedReturn: 0.155, RiskFreeRate: 0.05,
		},
	}
}

func TestFormatAnalysisReport(t *testing.T) {
	as := &model.Assessment{
		Tier:     model.BetaTier{Label: "Highly aggressive", Description: "amplifies"},
		RSquared: 1,
		Warnings: []string{"only 2 monthly periods (< 12), estimates are noisy"},
	}
	msg := FormatAnalysisReport(testAnalysis(t), as)

	assert.Contains(t, msg, "M&amp;M.NS")
	assert.Contains(t, msg, "Calculated Beta: 2.0000")
	assert.Contains(t, msg, "Beta from Regression: 2.0000")
	assert.Contains(t, msg, "Alpha from Regression: 0.0000")
	assert.Contains(t, msg, "Expected Annual Return: 15.50%")
	assert.Contains(t, msg, "2 monthly periods")
	assert.Contains(t, msg, "Highly aggressive")
	assert.Contains(t, msg, "R²: 1.00")
	assert.Contains(t, msg, "&lt; 12")

	as.RSquared = math.NaN()
	assert.NotContains(t, FormatAnalysisReport(testAnalysis(t), as), "R²")
	assert.NotContains(t, FormatAnalysisReport(testAnalysis(t), nil), "⚠️")
}

func TestFormatHistory(t *testing.T) {
	assert.Equal(t, "No stored analyses for AAPL", FormatHistory("AAPL", nil))

	msg := FormatHistory("aapl", []model.AnalysisRecord{{
		RecordedAt:     time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
		StockSymbol:    "AAPL",
		IndexSymbol:    "^GSPC",
		BetaRegression: 1.25,
		ExpectedReturn: 0.1,
		Tier:           "Aggressive",
	}})
	assert.Contains(t, msg, "History AAPL")
	assert.Contains(t, msg, "2024-05-01 09:00 vs ^GSPC: β 1.2500")
	assert.Contains(t, msg, "E[r] 10.00% (Aggressive)")
}

func TestFormatFailureAndWatchlist(t *testing.T) {
	msg := FormatFailure("X", "^NSEI", errors.New("a < b"))
	assert.Contains(t, msg, "a &lt; b")

	assert.Equal(t, "Watchlist is empty", FormatWatchlist(nil))
	assert.Contains(t, FormatWatchlist([]string{"AAPL vs GSPC"}), "• AAPL vs GSPC")
	assert.Contains(t, HelpText(), "/capm STOCK [INDEX] [YEARS]")
}
