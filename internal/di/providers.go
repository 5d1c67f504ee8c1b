package di

import (
	"context"
	"fmt"
	"time"

	"MarketDash/internal/domain/models"
	"MarketDash/internal/domain/repository"
	"MarketDash/internal/handler/api"
	mid "MarketDash/internal/middleware"
	internalrepo "MarketDash/internal/repository"
	"MarketDash/internal/service/auth"
	"MarketDash/internal/service/ratelimit"
	"MarketDash/internal/service/yahoo"
	"MarketDash/internal/services/prediction"
	"MarketDash/internal/services/signals"
	"MarketDash/internal/usecase"
	"MarketDash/pkg/cache"
	pkgch "MarketDash/pkg/clickhouse"
	"MarketDash/pkg/config"
	xhttp "MarketDash/pkg/http"
	pkgkafka "MarketDash/pkg/kafka"
	applogger "MarketDash/pkg/logger"
	"MarketDash/pkg/metrics"
	pkgpg "MarketDash/pkg/postgres"
	"MarketDash/pkg/server"
)

const schemaTimeout = 10 * time.Second

// ProvideLogger builds the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvidePostgresClient connects to PostgreSQL and bootstraps the schema.
func ProvidePostgresClient(cfg *config.Config, l *applogger.Logger) (*pkgpg.Client, error) {
	client, err := pkgpg.NewClient(
		pkgpg.WithURL(cfg.Database.URL),
		pkgpg.WithMaxConnections(cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns),
		pkgpg.WithConnMaxLifetime(cfg.Database.ConnMaxLifetime),
	)
	if err != nil {
		return nil, fmt.Errorf("postgres client: %w", err)
	}
	if cfg.Database.SkipSchemaInit {
		return client, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), schemaTimeout)
	defer cancel()
	if err := client.InitSchema(ctx, internalrepo.PostgresSchema); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("postgres schema: %w", err)
	}
	l.Info("postgres ready")
	return client, nil
}

// ProvideClickHouseClient connects only when ClickHouse holds the candles;
// otherwise it returns nil.
func ProvideClickHouseClient(cfg *config.Config, l *applogger.Logger) (*pkgch.Client, error) {
	if cfg.Storage.Candles != "clickhouse" {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithConnMaxLifetime(cfg.ClickHouse.ConnMaxLifetime),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), schemaTimeout)
	defer cancel()
	if err := client.InitSchema(ctx, internalrepo.ClickHouseSchema(cfg.ClickHouse.Database)); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	l.Info("clickhouse ready", applogger.String("database", cfg.ClickHouse.Database))
	return client, nil
}

// ProvideCache builds the configured cache backend.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	if cfg.Cache.Backend == "memory" {
		return cache.NewMemoryCache(cache.WithMemoryMaxSize(cfg.Cache.MemoryMaxSize)), nil
	}
	rc, err := cache.NewRedisCache(
		cache.WithRedisHost(cfg.Cache.Redis.Host),
		cache.WithRedisPort(cfg.Cache.Redis.Port),
		cache.WithRedisPassword(cfg.Cache.Redis.Password),
		cache.WithRedisDB(cfg.Cache.Redis.DB),
		cache.WithRedisPool(cfg.Cache.Redis.PoolSize, 2, 4*time.Second),
		cache.WithRedisPrefix(cfg.Cache.Redis.Prefix),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	if cfg.Cache.Backend == "layered" {
		return cache.NewLayeredCache(rc, cache.WithLayeredMemorySize(cfg.Cache.MemoryMaxSize)), nil
	}
	return rc, nil
}

// ProvideCandleStore selects PostgreSQL or ClickHouse for candles.
func ProvideCandleStore(pg *pkgpg.Client, ch *pkgch.Client, l *applogger.Logger) repository.CandleStore {
	if ch != nil {
		return internalrepo.NewCHCandleStore(ch, l)
	}
	return internalrepo.NewPGCandleStore(pg.DB(), l)
}

func ProvidePredictionStore(pg *pkgpg.Client, l *applogger.Logger) repository.PredictionStore {
	return internalrepo.NewPGPredictionStore(pg.DB(), l)
}

func ProvideSignalStore(pg *pkgpg.Client, l *applogger.Logger) repository.SignalStore {
	return internalrepo.NewPGSignalStore(pg.DB(), l)
}

func ProvideUserStore(pg *pkgpg.Client) repository.UserStore {
	return internalrepo.NewPGUserStore(pg.DB())
}

// ProvideEventPublisher publishes to Kafka when enabled, otherwise drops events.
func ProvideEventPublisher(cfg *config.Config) (repository.EventPublisher, error) {
	if !cfg.Kafka.Enabled {
		return internalrepo.NoopPublisher{}, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.SignalsTopic, cfg.Kafka.PredictionTopic), nil
}

// ProvideMarketDataProvider creates the Yahoo Finance client.
func ProvideMarketDataProvider(cfg *config.Config, l *applogger.Logger, m repository.Metrics) repository.MarketDataProvider {
	return yahoo.New(yahoo.Config{
		BaseURL:        cfg.Market.BaseURL,
		ExchangeSuffix: cfg.Market.ExchangeSuffix,
		Aliases:        cfg.Market.Aliases,
		Timeout:        cfg.Market.Timeout,
		MaxRetries:     cfg.Market.MaxRetries,
		RetryDelay:     cfg.Market.RetryDelay,
		RequestsPerSec: cfg.Market.RequestsPerSec,
		Burst:          cfg.Market.Burst,
		MockFallback:   cfg.Market.MockFallback,
		UserAgent:      cfg.Market.UserAgent,
	}, l.With(applogger.String("component", "yahoo")), m)
}

func ProvideTokenManager(cfg *config.Config) *auth.TokenManager {
	return auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
}

func ProvideMarketUseCase(p repository.MarketDataProvider, store repository.CandleStore, c cache.Service,
	m repository.Metrics, l *applogger.Logger, cfg *config.Config) *usecase.MarketUseCase {
	return usecase.NewMarketUseCase(p, store, c, m, l, usecase.MarketConfig{QuoteTTL: cfg.Cache.QuoteTTL})
}

func ProvideSignalsUseCase(market *usecase.MarketUseCase, store repository.SignalStore, pub repository.EventPublisher,
	c cache.Service, m repository.Metrics, l *applogger.Logger, cfg *config.Config) *usecase.SignalsUseCase {
	gen := signals.NewGenerator(signals.Config{
		TargetPct:       cfg.Signals.TargetPct,
		StopPct:         cfg.Signals.StopPct,
		MaxPositionSize: cfg.Signals.MaxPositionSize,
	})
	return usecase.NewSignalsUseCase(market, gen, store, pub, c, m, l, usecase.SignalsConfig{
		Lookback: cfg.Signals.Lookback,
		CacheTTL: cfg.Cache.SignalTTL,
	})
}

func ProvidePredictionsUseCase(market *usecase.MarketUseCase, store repository.PredictionStore, pub repository.EventPublisher,
	c cache.Service, m repository.Metrics, l *applogger.Logger, cfg *config.Config) *usecase.PredictionsUseCase {
	svc := prediction.NewService(prediction.Config{
		DefaultModel: models.ModelKind(cfg.Prediction.DefaultModel),
		Trees:        cfg.Prediction.Trees,
		TreeDepth:    cfg.Prediction.TreeDepth,
		Seed:         cfg.Prediction.Seed,
	})
	return usecase.NewPredictionsUseCase(market, svc, store, pub, c, m, l, usecase.PredictionsConfig{
		Lookback: cfg.Prediction.Lookback,
		CacheTTL: cfg.Cache.PredictionTTL,
	})
}

func ProvideAuthUseCase(users repository.UserStore, tm *auth.TokenManager, l *applogger.Logger, cfg *config.Config) *usecase.AuthUseCase {
	return usecase.NewAuthUseCase(users, tm, cfg.Auth.BcryptCost, l)
}

func ProvideHealthUseCase(pg *pkgpg.Client, c cache.Service, l *applogger.Logger) *usecase.HealthUseCase {
	return usecase.NewHealthUseCase(pg, c, l)
}

// ProvideRouter assembles the HTTP handlers.
func ProvideRouter(
	authUC *usecase.AuthUseCase,
	market *usecase.MarketUseCase,
	sig *usecase.SignalsUseCase,
	pred *usecase.PredictionsUseCase,
	health *usecase.HealthUseCase,
	tm *auth.TokenManager,
	l *applogger.Logger,
) *api.Router {
	return api.NewRouter(
		api.NewAuthHandler(authUC, l),
		api.NewMarketHandler(market, l),
		api.NewSignalsEchoHandler(l, sig),
		api.NewPredictionsHandler(pred, l),
		api.NewHealthHandler(health),
		mid.JWT(tm, l),
	)
}

// ProvideHTTPServer creates the Echo server with the global middleware chain.
func ProvideHTTPServer(cfg *config.Config, router *api.Router, l *applogger.Logger) *xhttp.Server {
	opts := []xhttp.ServerOption{
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithCORSOrigins(cfg.Server.CORSOrigins),
		xhttp.WithCORSMaxAge(cfg.Server.CORSMaxAge),
		xhttp.WithLogger(l),
		xhttp.WithSlowRequestThreshold(cfg.Server.SlowRequest),
	}
	if !cfg.RateLimit.Disabled {
		limiter := ratelimit.New(cfg.RateLimit.Requests, cfg.RateLimit.Window)
		opts = append(opts, xhttp.WithMiddleware(mid.RateLimit(limiter, l, "/health", "/metrics")))
	}
	return xhttp.NewServer(router, opts...)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	httpServer *xhttp.Server,
	pg *pkgpg.Client,
	ch *pkgch.Client,
	c cache.Service,
	pub repository.EventPublisher,
) *server.App {
	opts := []server.Option{
		server.WithCloser("event publisher", pub),
		server.WithCloser("cache", c),
	}
	if ch != nil {
		opts = append(opts, server.WithCloser("clickhouse", ch))
	}
	opts = append(opts, server.WithCloser("postgres", pg))
	return server.New(cfg, l, httpServer, opts...)
}
