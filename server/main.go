package main

import (
	"context"
	"errors"
	nhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"go-token-swap/config"
	"go-token-swap/exchange"
	"go-token-swap/history"
	"go-token-swap/http"
	"go-token-swap/metrics"
	"go-token-swap/notify"
	"go-token-swap/orchestrator"
	"go-token-swap/prices"
)

func main() {
	w := log.NewSyncWriter(os.Stderr)
	logger := log.NewLogfmtLogger(w)
	logger = log.With(logger, "ts", log.DefaultTimestampUTC, "caller", log.DefaultCaller)

	cfg, err := config.Load(os.Getenv(config.PathEnv))
	if err != nil {
		level.Error(logger).Log("msg", "loading config", "err", err)
		os.Exit(1)
	}
	logger = level.NewFilter(logger, level.Allow(level.ParseDefault(cfg.LogLevel, level.InfoValue())))

	var store history.Store = history.NewMemStore()
	if cfg.History.Path != "" {
		levelStore, err := history.OpenLevelStore(cfg.History.Path)
		if err != nil {
			level.Error(logger).Log("msg", "opening history store", "err", err)
			os.Exit(1)
		}
		store = levelStore
	}
	defer store.Close()

	historyService := history.NewService(store, log.With(logger, "component", "history"))
	historyService = history.NewLoggingService(level.Debug(log.With(logger, "component", "history")), historyService)

	pricesService := prices.NewService(cfg.Feed.URL, cfg.Feed.Timeout, cfg.Feed.MinInterval)
	pricesService = prices.NewLoggingService(level.Debug(log.With(logger, "component", "prices_rest")), pricesService)
	feed := prices.NewFeed(cfg.Feed.RefreshEvery, cfg.Feed.StaleAfter, log.With(logger, "component", "prices_feed"), pricesService)

	m := metrics.New("swap")

	notifier := notify.NewLogNotifier(log.With(logger, "component", "notify"))
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaNotifier := notify.NewKafkaNotifier(cfg.Kafka.Brokers, cfg.Kafka.Topic, log.With(logger, "component", "kafka"))
		defer kafkaNotifier.Close()
		notifier = notify.Multi(notifier, kafkaNotifier)
	}

	swapper := orchestrator.New(orchestrator.Config{
		History:  historyService,
		Settler:  orchestrator.NewRandom(cfg.Swap.Seed, cfg.Swap.SuccessProbability),
		Notifier: notifier,
		Metrics:  m,
		Delay:    cfg.Swap.Delay,
		Logger:   log.With(logger, "component", "orchestrator"),
	})
	feed.Subscribe(swapper.OnFeed)
	feed.Subscribe(m.FeedFetched)

	// conversions refetch when the cached quotes are stale
	exchangeService := exchange.NewService(func(ctx context.Context) (exchange.Prices, error) {
		if _, err := feed.Quotes(ctx); err != nil {
			return nil, err
		}
		return swapper.Snapshot(), nil
	})
	exchangeService = exchange.NewLoggingService(log.With(logger, "component", "exchange"), exchangeService)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go feed.Run(ctx)

	handler := http.NewServer(swapper, exchangeService, historyService, m.Handler(), log.With(logger, "component", "http"))
	server := &nhttp.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		level.Info(logger).Log("msg", "listening", "addr", cfg.HTTP.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, nhttp.ErrServerClosed) {
			level.Error(logger).Log("msg", "http server", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		level.Error(logger).Log("msg", "shutdown", "err", err)
	}
}
