//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"
	"repx/internal"
	"repx/internal/controllers"
	"repx/internal/models"
	"repx/internal/persistence"
	"repx/internal/providers"
	"repx/internal/services"
	"repx/internal/structures"
	"repx/internal/transport"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewLocalIdentity,
		providers.NewMetricsProvider,
		providers.NewInstrumentedCacheProvider,

		models.NewRatingStore,
		transport.NewRedisTransport,

		services.NewRatingService,
		services.NewReconcileService,
		services.NewSyncService,
		services.NewDirectoryService,
		services.NewNotifierService,

		persistence.NewZstdCompressor,
		persistence.NewFileManager,
		persistence.NewScheduler,

		controllers.NewApiController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}
