//go:build wireinject
// +build wireinject

package di

import (
	"BandTrader/pkg/config"
	"BandTrader/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient infrastructure
		ProvideLogger,
		ProvideMetrics,
		ProvideCache,

		// Broker collaborators
		ProvideBrokerClient,
		ProvideMarketData,
		ProvideTrader,
		ProvideQuoteStream,
		ProvidePublisher,

		// Use cases
		ProvideTradeLog,
		ProvideWindowStore,
		ProvideRunner,
		ProvideQuoteWatcher,

		// HTTP handler
		ProvideStatusHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
