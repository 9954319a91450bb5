package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"CAPMSentinel/internal/analyzer"
	"CAPMSentinel/internal/config"
	"CAPMSentinel/internal/model"
	"CAPMSentinel/internal/notifier"
	"CAPMSentinel/internal/recorder"
	"CAPMSentinel/internal/strategy"
)

const (
	sendRetries  = 3
	historyLimit = 5
	maxYears     = 30
)

// Scheduler runs the watchlist on a cron schedule and answers chat commands.
type Scheduler struct {
	Cron     *cron.Cron
	Analyzer *analyzer.Analyzer
	Notifier notifier.Sender
	Recorder recorder.Recorder
	Config   *config.Config
	Logger   *zap.Logger
	Ctx      context.Context
	Now      func() time.Time
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, cfg *config.Config, an *analyzer.Analyzer, sender notifier.Sender, rec recorder.Recorder, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Analyzer: an,
		Notifier: sender,
		Recorder: rec,
		Config:   cfg,
		Logger:   logger,
		Ctx:      ctx,
		Now:      time.Now,
	}
}

// RegisterAll registers the watchlist analysis task.
func (s *Scheduler) RegisterAll(analysisCron string) error {
	if _, err := s.Cron.AddFunc(analysisCron, s.watchlistTask); err != nil {
		return fmt.Errorf("register analysis task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.Logger.Info("scheduler started")
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.Logger.Info("scheduler stopped")
}

func (s *Scheduler) watchlistTask() {
	if err := s.RunWatchlist(s.Ctx); err != nil {
		s.Logger.Error("watchlist run finished with failures", zap.Error(err))
	}
}

// RunWatchlist analyses every watchlist entry, at most analysis.concurrency at
// a time, and pushes one report per entry. Failed entries are reported and
// joined into the returned error; they do not stop the others.
func (s *Scheduler) RunWatchlist(ctx context.Context) error {
	s.Logger.Info("running watchlist analysis", zap.Int("entries", len(s.Config.Watchlist)))

	var (
		mu       sync.Mutex
		failures []error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, s.Config.Analysis.Concurrency))
	for _, item := range s.Config.Watchlist {
		item := item
		g.Go(func() error {
			rf := s.Config.Analysis.RiskFreeRate
			if item.RiskFreeRate != nil {
				rf = *item.RiskFreeRate
			}
			report, err := s.analyze(gctx, item.Stock, item.Index, item.LookbackYears, rf)
			if err != nil {
				mu.Lock()
				failures = append(failures, fmt.Errorf("%s: %w", item.Stock, err))
				mu.Unlock()
				report = notifier.FormatFailure(item.Stock, item.Index, err)
			}
			s.trySend(gctx, report)
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(failures...)
}

// analyze resolves the index, adjusts the ticker, runs and records one analysis.
func (s *Scheduler) analyze(ctx context.Context, stock, indexCode string, years int, rf float64) (string, error) {
	index, err := model.LookupIndex(indexCode)
	if err != nil {
		return "", err
	}
	req := analyzer.LookbackRequest(model.AdjustTicker(stock, index), index.Ticker, years, rf, s.Now())
	if err := req.Validate(s.Now()); err != nil {
		return "", err
	}

	res, err := s.Analyzer.Analyze(ctx, req)
	if err != nil {
		s.Logger.Warn("analysis failed", zap.String("stock", req.StockSymbol), zap.String("index", req.IndexSymbol), zap.Error(err))
		return "", err
	}
	assessment := strategy.Evaluate(res, s.Config.Analysis.MinPeriods)

	if err := s.Recorder.RecordAnalysis(ctx, recorder.NewRecord(res, assessment.Tier.Label)); err != nil {
		s.Logger.Error("record analysis", zap.String("stock", req.StockSymbol), zap.Error(err))
	}
	return notifier.FormatAnalysisReport(res, assessment), nil
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.HelpText()
	}
	// Commands may be addressed as /capm@SomeBot in group chats.
	name, _, _ := strings.Cut(strings.ToLower(fields[0]), "@")
	args := fields[1:]

	switch name {
	case "/capm":
		return s.handleCAPM(ctx, args)
	case "/history":
		return s.handleHistory(ctx, args)
	case "/watchlist":
		entries := make([]string, 0, len(s.Config.Watchlist))
		for _, w := range s.Config.Watchlist {
			entries = append(entries, fmt.Sprintf("%s vs %s (%dy)", w.Stock, w.Index, w.LookbackYears))
		}
		return notifier.FormatWatchlist(entries)
	default:
		return notifier.HelpText()
	}
}

func (s *Scheduler) handleCAPM(ctx context.Context, args []string) string {
	if len(args) == 0 || len(args) > 3 {
		return "Usage: /capm STOCK [INDEX] [YEARS]"
	}
	stock := args[0]
	indexCode := s.Config.Analysis.DefaultIndex
	years := s.Config.Analysis.LookbackYears
	if len(args) >= 2 {
		indexCode = args[1]
	}
	if len(args) == 3 {
		n, err := strconv.Atoi(args[2])
		if err != nil || n < 1 || n > maxYears {
			return fmt.Sprintf("YEARS must be a whole number between 1 and %d", maxYears)
		}
		years = n
	}

	report, err := s.analyze(ctx, stock, indexCode, years, s.Config.Analysis.RiskFreeRate)
	if err != nil {
		return notifier.FormatFailure(stock, indexCode, err)
	}
	return report
}

func (s *Scheduler) handleHistory(ctx context.Context, args []string) string {
	if len(args) != 1 {
		return "Usage: /history STOCK"
	}
	records, err := s.Recorder.RecentAnalyses(ctx, args[0], historyLimit)
	if err == nil && len(records) == 0 {
		// Fall back to the ticker as adjusted for the default index.
		if index, lerr := model.LookupIndex(s.Config.Analysis.DefaultIndex); lerr == nil {
			if adjusted := model.AdjustTicker(args[0], index); !strings.EqualFold(adjusted, args[0]) {
				records, err = s.Recorder.RecentAnalyses(ctx, adjusted, historyLimit)
			}
		}
	}
	if err != nil {
		s.Logger.Error("load history", zap.String("stock", args[0]), zap.Error(err))
		return "History is unavailable right now"
	}
	return notifier.FormatHistory(strings.ToUpper(args[0]), records)
}

func (s *Scheduler) trySend(ctx context.Context, text string) {
	if err := s.Notifier.SendWithRetry(ctx, text, sendRetries); err != nil {
		s.Logger.Error("send notification", zap.Error(err))
	}
}
