//go:build wireinject
// +build wireinject

package di

import (
	"MarketDash/pkg/config"
	"MarketDash/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvidePostgresClient,
		ProvideClickHouseClient,
		ProvideCache,
		ProvideEventPublisher,
		ProvideMarketDataProvider,
		ProvideTokenManager,

		// Repositories
		ProvideCandleStore,
		ProvidePredictionStore,
		ProvideSignalStore,
		ProvideUserStore,

		// Use cases
		ProvideMarketUseCase,
		ProvideSignalsUseCase,
		ProvidePredictionsUseCase,
		ProvideAuthUseCase,
		ProvideHealthUseCase,

		// HTTP
		ProvideRouter,
		ProvideHTTPServer,

		ProvideApp,
	)
	return &server.App{}, nil
}
