package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"CAPMSentinel/internal/analyzer"
	"CAPMSentinel/internal/collector"
	"CAPMSentinel/internal/config"
	"CAPMSentinel/internal/logging"
	"CAPMSentinel/internal/notifier"
	"CAPMSentinel/internal/recorder"
	"CAPMSentinel/internal/scheduler"
)

func main() {
	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logging.MustNew("info", "console").Fatal("load config", zap.Error(err))
	}
	logger := logging.MustNew(cfg.Log.Level, cfg.Log.Format)
	defer logger.Sync()
	logger.Info("CAPMSentinel bot starting", zap.String("config", cfgPath))

	if err := cfg.ValidateBot(); err != nil {
		logger.Fatal("config validation", zap.Error(err))
	}

	// Init fetcher
	fetcher, err := collector.New(collector.Options{
		Provider: cfg.DataSource.Provider,
		BaseURL:  cfg.DataSource.BaseURL,
		APIKey:   cfg.DataSource.APIKey,
		Proxy:    cfg.Proxy,
	}, logger.Named("collector"))
	if err != nil {
		logger.Fatal("init fetcher", zap.Error(err))
	}
	logger.Info("data source ready", zap.String("provider", fetcher.Name()))

	an := analyzer.NewAnalyzer(fetcher, logger.Named("analyzer"))

	// Init Telegram notifier
	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, logger.Named("telegram"))

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, logger.Named("recorder"))
		if err != nil {
			logger.Warn("init sqlite recorder failed, using noop", zap.Error(err))
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := scheduler.NewScheduler(ctx, cfg, an, tn, rec, logger.Named("scheduler"))
	if err := sched.RegisterAll(cfg.Schedule.AnalysisCron); err != nil {
		logger.Fatal("register cron tasks", zap.Error(err))
	}
	sched.Start()
	defer sched.Stop()

	go tn.StartPolling(ctx, sched.HandleCommand)
	logger.Info("telegram polling started")

	if os.Getenv("RUN_ON_START") == "true" {
		logger.Info("RUN_ON_START enabled, analysing watchlist now")
		go func() {
			if err := sched.RunWatchlist(ctx); err != nil {
				logger.Error("watchlist run finished with failures", zap.Error(err))
			}
		}()
	}

	logger.Info("CAPMSentinel is running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutdown signal received, stopping...")
	cancel()
}
