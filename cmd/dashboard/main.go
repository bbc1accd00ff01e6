package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"LeverageGauge/internal/api"
	"LeverageGauge/internal/cache"
	"LeverageGauge/internal/collector"
	"LeverageGauge/internal/config"
	"LeverageGauge/internal/logger"
	"LeverageGauge/internal/metrics"
	"LeverageGauge/internal/notifier"
	"LeverageGauge/internal/recorder"
	"LeverageGauge/internal/scheduler"
)

func main() {
	// Load config
	cfgPath := config.DefaultPath
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("config validation: %v", err)
	}
	logger.Infof("LeverageGauge starting...")

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// History cache
	store, err := cache.Open(cfg.CacheOptions())
	if err != nil {
		logger.Warnf("open %s cache failed, using in-memory cache: %v", cfg.Cache.Backend, err)
		store = cache.NewMemoryStore()
	}
	defer store.Close()
	hc := cache.NewHistoryCache(store, cfg.Cache.Key, cfg.Cache.Freshness, cache.WithMetrics(m))

	// Provider and collector
	fetcher := collector.NewAlphaVantageFetcher(cfg.Provider.BaseURL, cfg.Provider.APIKey, cfg.Proxy, cfg.Provider.Timeout, m)
	if !cfg.HasCredential() {
		if cfg.Demo {
			logger.Warnf("no API key configured, demo mode serves synthetic data")
		} else {
			logger.Warnf("no API key configured, dashboard will show no data")
		}
	}
	col := collector.NewCollector(fetcher, hc, cfg.CollectorOptions(), m)
	logger.Infof("data source: %s", fetcher.Name())

	// Recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			logger.Warnf("init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Context for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Telegram notifier
	var tn *notifier.TelegramNotifier
	var n notifier.Notifier
	if cfg.Telegram.Enabled {
		tn, err = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		if err != nil {
			logger.Warnf("init telegram notifier failed, notifications disabled: %v", err)
		} else {
			n = tn
		}
	}

	// Scheduler
	sched := scheduler.NewScheduler(ctx, col, rec, n, m)
	if err := sched.Register(cfg.Schedule.RefreshCron); err != nil {
		logger.Fatalf("register cron tasks: %v", err)
	}

	srv := api.NewServer(cfg.Server.Addr, api.NewRouter(sched, rec, reg))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx)
	})
	g.Go(func() error {
		sched.Start()
		<-gctx.Done()
		sched.Stop()
		return nil
	})
	if tn != nil {
		g.Go(func() error {
			tn.ListenForCommands(gctx, sched.HandleCommand)
			return nil
		})
	}

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		logger.Infof("RUN_ON_START enabled, executing refresh now")
		go sched.RunNow()
	}

	logger.Infof("LeverageGauge is running on %s. Press Ctrl+C to stop.", cfg.Server.Addr)
	if err := g.Wait(); err != nil {
		logger.Errorf("shutdown with error: %v", err)
	}
	logger.Infof("LeverageGauge stopped")
}
