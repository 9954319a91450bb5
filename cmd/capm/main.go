package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"CAPMSentinel/internal/analyzer"
	"CAPMSentinel/internal/calculator"
	"CAPMSentinel/internal/collector"
	"CAPMSentinel/internal/config"
	"CAPMSentinel/internal/logging"
	"CAPMSentinel/internal/model"
	"CAPMSentinel/internal/recorder"
	"CAPMSentinel/internal/strategy"
)

type options struct {
	configPath string
	stock      string
	index      string
	start      string
	end        string
	years      int
	riskFree   float64
	plotPath   string
	noRecord   bool
}

func parseFlags(args []string, cfg *config.Config) (options, error) {
	var o options
	fs := flag.NewFlagSet("capm", flag.ContinueOnError)
	fs.StringVar(&o.stock, "stock", "", "stock ticker, e.g. HDFCBANK or AAPL")
	fs.StringVar(&o.index, "index", cfg.Analysis.DefaultIndex, "market index: NSEI, BSESN or GSPC")
	fs.StringVar(&o.start, "start", "", "start date YYYY-MM-DD (default: -years before end)")
	fs.StringVar(&o.end, "end", "", "end date YYYY-MM-DD, exclusive (default: today)")
	fs.IntVar(&o.years, "years", cfg.Analysis.LookbackYears, "lookback in years when -start is not set")
	fs.Float64Var(&o.riskFree, "rf", cfg.Analysis.RiskFreeRate, "annual risk-free rate as a decimal")
	fs.StringVar(&o.plotPath, "plot", "", "write scatter and fitted line as JSON to this file")
	fs.BoolVar(&o.noRecord, "no-record", false, "do not store the result in the history database")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if o.stock == "" {
		return o, errors.New("-stock is required")
	}
	return o, nil
}

// buildRequest applies the ticker rule and resolves the date window.
func buildRequest(o options, now time.Time) (analyzer.Request, error) {
	index, err := model.LookupIndex(o.index)
	if err != nil {
		return analyzer.Request{}, err
	}
	req := analyzer.LookbackRequest(model.AdjustTicker(o.stock, index), index.Ticker, o.years, o.riskFree, now)
	if o.end != "" {
		if req.End, err = time.Parse(time.DateOnly, o.end); err != nil {
			return analyzer.Request{}, fmt.Errorf("parse -end: %w", err)
		}
		req.Start = req.End.AddDate(-o.years, 0, 0)
	}
	if o.start != "" {
		if req.Start, err = time.Parse(time.DateOnly, o.start); err != nil {
			return analyzer.Request{}, fmt.Errorf("parse -start: %w", err)
		}
	}
	return req, req.Validate(now)
}

func main() {
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("config validation", zap.Error(err))
	}
	o, err := parseFlags(os.Args[1:], cfg)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, o, logger); err != nil {
		logger.Error("analysis failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, o options, logger *zap.Logger) error {
	req, err := buildRequest(o, time.Now())
	if err != nil {
		return err
	}

	fetcher, err := collector.New(collector.Options{
		Provider: cfg.DataSource.Provider,
		BaseURL:  cfg.DataSource.BaseURL,
		APIKey:   cfg.DataSource.APIKey,
		Proxy:    cfg.Proxy,
	}, logger.Named("collector"))
	if err != nil {
		return err
	}

	res, err := analyzer.NewAnalyzer(fetcher, logger.Named("analyzer")).Analyze(ctx, req)
	if err != nil {
		var dre *analyzer.DataRetrievalError
		if errors.As(err, &dre) {
			return fmt.Errorf("could not load prices for %s (check the ticker and dates): %w", dre.Symbol, dre.Err)
		}
		return err
	}
	assessment := strategy.Evaluate(res, cfg.Analysis.MinPeriods)

	printResult(res, assessment)

	if o.plotPath != "" {
		if err := writePlot(o.plotPath, res); err != nil {
			return err
		}
		logger.Info("plot data written", zap.String("path", o.plotPath))
	}

	if !o.noRecord && cfg.Database.SQLitePath != "" {
		rec, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, logger.Named("recorder"))
		if err != nil {
			logger.Warn("history not recorded", zap.Error(err))
			return nil
		}
		defer rec.Close()
		if err := rec.RecordAnalysis(ctx, recorder.NewRecord(res, assessment.Tier.Label)); err != nil {
			logger.Warn("history not recorded", zap.Error(err))
		}
	}
	return nil
}

func printResult(res *model.Analysis, as *model.Assessment) {
	p := res.Params
	fmt.Printf("%s vs %s, %s to %s (%d monthly periods)\n",
		res.StockSymbol, res.IndexSymbol, res.Start.Format(time.DateOnly), res.End.Format(time.DateOnly), res.Table.Len())
	fmt.Printf("Calculated Beta: %.4f\n", p.BetaCovariance)
	fmt.Printf("Beta from Regression: %.4f\n", p.BetaRegression)
	fmt.Printf("Alpha from Regression: %.4f\n", p.AlphaRegression)
	fmt.Printf("Expected Annual Return: %.4f\n", p.ExpectedReturn)
	fmt.Printf("Profile: %s (%s)\n", as.Tier.Label, as.Tier.Description)
	for _, w := range as.Warnings {
		fmt.Printf("Warning: %s\n", w)
	}
}

func writePlot(path string, res *model.Analysis) error {
	data := calculator.BuildPlotData(res.Table, res.Params.AlphaRegression, res.Params.BetaRegression)
	out, err := json.MarshalIndent(struct {
		Stock string `json:"stock"`
		Index string `json:"index"`
		model.PlotData
	}{res.StockSymbol, res.IndexSymbol, data}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode plot data: %w", err)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("write plot data: %w", err)
	}
	return nil
}
