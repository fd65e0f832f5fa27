package di

import (
	"fmt"

	"BandTrader/internal/domain/models"
	"BandTrader/internal/domain/repository"
	"BandTrader/internal/handler/api"
	internalrepo "BandTrader/internal/repository"
	"BandTrader/internal/service/alpaca"
	"BandTrader/internal/usecase"
	pkgcache "BandTrader/pkg/cache"
	"BandTrader/pkg/config"
	pkgkafka "BandTrader/pkg/kafka"
	"BandTrader/pkg/logger"
	"BandTrader/pkg/metrics"
	"BandTrader/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	format := "json"
	if cfg.Environment == "development" {
		format = "console"
	}
	return logger.New(&logger.Config{Level: "info", Format: format, Output: "stdout"})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideCache creates the window cache backend selected in config.
func ProvideCache(cfg *config.Config) (pkgcache.Service, error) {
	switch cfg.Cache.Backend {
	case "redis":
		c, err := pkgcache.NewRedisCache(
			pkgcache.WithRedisAddr(cfg.Cache.Redis.Addr),
			pkgcache.WithRedisPassword(cfg.Cache.Redis.Password),
			pkgcache.WithRedisDB(cfg.Cache.Redis.DB),
			pkgcache.WithRedisPrefix(cfg.Cache.Redis.Prefix),
		)
		if err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		return c, nil
	default:
		return pkgcache.NewMemoryCache(
			pkgcache.WithMemoryMaxSize(cfg.Cache.MaxSize),
		), nil
	}
}

// ProvideBrokerClient creates the Alpaca REST client.
func ProvideBrokerClient(cfg *config.Config) *alpaca.Client {
	return alpaca.NewClient(
		cfg.Alpaca.BaseURL,
		cfg.Alpaca.DataURL,
		cfg.Alpaca.KeyID,
		cfg.Alpaca.SecretKey,
		alpaca.WithFeed(cfg.Alpaca.Feed),
		alpaca.WithTimeout(cfg.Alpaca.Timeout),
		alpaca.WithRateLimit(cfg.Alpaca.RateLimitPerMin),
	)
}

// ProvideMarketData exposes the broker client as the market-data source.
func ProvideMarketData(client *alpaca.Client) repository.MarketData { return client }

// ProvideTrader exposes the broker client as the order executor.
func ProvideTrader(client *alpaca.Client) repository.Trader { return client }

// ProvideQuoteStream creates the dashboard quote stream.
func ProvideQuoteStream(cfg *config.Config) repository.QuoteStream {
	return alpaca.NewStream(
		cfg.Alpaca.StreamURL,
		cfg.Alpaca.KeyID,
		cfg.Alpaca.SecretKey,
		[]string{cfg.Bot.Symbol},
		cfg.Alpaca.ReconnectDelay,
		cfg.Alpaca.PingInterval,
	)
}

// ProvidePublisher creates the decision-event publisher: Kafka when eventing
// is enabled, a no-op otherwise.
func ProvidePublisher(cfg *config.Config) (repository.Publisher, error) {
	if !cfg.Events.Enabled {
		return internalrepo.NewNoopPublisher(), nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Events.Brokers),
		pkgkafka.WithCompression(cfg.Events.Compression),
		pkgkafka.WithRequiredAcks(cfg.Events.RequiredAcks),
		pkgkafka.WithMaxAttempts(cfg.Events.MaxAttempts),
		pkgkafka.WithTimeouts(cfg.Events.WriteTimeout, cfg.Events.ReadTimeout),
		pkgkafka.WithAsync(cfg.Events.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return internalrepo.NewKafkaPublisher(producer, cfg.Events.Topic), nil
}

// ProvideTradeLog creates the bounded cycle log.
func ProvideTradeLog(cfg *config.Config) *models.TradeLog {
	return models.NewTradeLog(cfg.Bot.TradeLogSize)
}

// ProvideWindowStore creates the cached window store.
func ProvideWindowStore(data repository.MarketData, cache pkgcache.Service, log *logger.Logger) *usecase.WindowStore {
	return usecase.NewWindowStore(data, cache, log)
}

// ProvideRunner creates the cycle runner from config.
func ProvideRunner(
	cfg *config.Config,
	windows *usecase.WindowStore,
	data repository.MarketData,
	trader repository.Trader,
	events repository.Publisher,
	metrics repository.Metrics,
	tradeLog *models.TradeLog,
	log *logger.Logger,
) *usecase.Runner {
	return usecase.NewRunner(
		usecase.RunnerConfig{
			Symbol:         cfg.Bot.Symbol,
			Timeframe:      repository.NormalizeTimeframe(cfg.Bot.Timeframe),
			WindowDays:     cfg.Bot.WindowDays,
			BandMultiplier: cfg.Bot.BandMultiplier,
			StopLossPct:    cfg.Bot.StopLossPct,
			MinSigma:       cfg.Bot.MinSigma,
			OrderQty:       cfg.Bot.OrderQty,
			Sessions:       cfg.Bot.Sessions,
		},
		windows, data, trader, events, metrics, tradeLog, log,
	)
}

// ProvideQuoteWatcher creates the quote watcher use case.
func ProvideQuoteWatcher(stream repository.QuoteStream, metrics repository.Metrics) *usecase.QuoteWatcher {
	return usecase.NewQuoteWatcher(stream, metrics)
}

// ProvideStatusHandler creates the dashboard API handler.
func ProvideStatusHandler(log *logger.Logger, runner *usecase.Runner, watcher *usecase.QuoteWatcher) *api.StatusEchoHandler {
	return api.NewStatusEchoHandler(log, runner, watcher)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	runner *usecase.Runner,
	watcher *usecase.QuoteWatcher,
	handler *api.StatusEchoHandler,
	cache pkgcache.Service,
	events repository.Publisher,
	log *logger.Logger,
) *server.App {
	return server.New(cfg, runner, watcher, handler, cache, events, log)
}
