//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"XetraPull/pkg/config"
	"XetraPull/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application with
// a cleanup that releases the Kafka, ClickHouse and cache clients.
// Building the app resolves the extraction window, so ctx bounds the
// watermark read as well as client setup.
func InitializeApp(ctx context.Context, cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideCache,
		ProvideClickHouseClient,
		ProvideKafkaProducer,

		// Repositories
		ProvideSourceStore,
		ProvideTargetStore,
		ProvideReportSink,
		ProvideRunPublisher,

		// Use cases
		ProvideWatermark,
		ProvideReportAggregator,
		ProvideReportETL,

		ProvideApp,
	)
	return &server.App{}, nil, nil
}
