//go:build wireinject

package main

import (
	"context"

	"github.com/google/wire"

	"github.com/cory-johannsen/dmengine/internal/config"
	"github.com/cory-johannsen/dmengine/internal/game/session"
	"github.com/cory-johannsen/dmengine/internal/gameserver"
	"github.com/cory-johannsen/dmengine/internal/observability"
)

func initializeApp(ctx context.Context, cfg config.Config, statePath StatePath) (*App, func(), error) {
	wire.Build(
		provideLogger,
		observability.NewMetrics,
		provideRoller,
		provideState,
		session.NewStore,
		provideCommands,
		provideSender,
		provideDispatcher,
		provideChatLog,
		provideNotifier,
		provideStorage,
		provideHost,
		provideCatalog,
		provideConditions,
		provideExecutor,
		gameserver.NewDirectiveService,
		provideListener,
		provideMetricsServer,
		provideLifecycle,
		newApp,
	)
	return nil, nil, nil
}
