package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/cory-johannsen/dmengine/internal/broadcast"
	"github.com/cory-johannsen/dmengine/internal/catalog"
	"github.com/cory-johannsen/dmengine/internal/config"
	"github.com/cory-johannsen/dmengine/internal/executor"
	"github.com/cory-johannsen/dmengine/internal/game/command"
	"github.com/cory-johannsen/dmengine/internal/game/condition"
	"github.com/cory-johannsen/dmengine/internal/game/dice"
	"github.com/cory-johannsen/dmengine/internal/game/session"
	"github.com/cory-johannsen/dmengine/internal/gameserver"
	"github.com/cory-johannsen/dmengine/internal/observability"
	"github.com/cory-johannsen/dmengine/internal/peer/redispeer"
	"github.com/cory-johannsen/dmengine/internal/plugin"
	"github.com/cory-johannsen/dmengine/internal/server"
	"github.com/cory-johannsen/dmengine/internal/storage/postgres"
)

// StatePath is an optional YAML state fixture to start from.
type StatePath string

// App is everything main needs after injection.
type App struct {
	Config    config.Config
	Logger    *zap.Logger
	Host      *plugin.Host
	Lifecycle *server.Lifecycle
}

func newApp(cfg config.Config, logger *zap.Logger, host *plugin.Host, lc *server.Lifecycle) *App {
	return &App{Config: cfg, Logger: logger, Host: host, Lifecycle: lc}
}

func provideLogger(cfg config.Config) (*zap.Logger, func(), error) {
	logger, err := observability.NewLogger(cfg.Logging, "dmserver")
	if err != nil {
		return nil, nil, err
	}
	return logger, func() { _ = logger.Sync() }, nil
}

func provideRoller(logger *zap.Logger) *dice.Roller {
	return dice.NewRoller(dice.NewCryptoSource(), logger)
}

func provideState(path StatePath) (*session.State, error) {
	if path == "" {
		return session.New(), nil
	}
	f, err := os.Open(string(path))
	if err != nil {
		return nil, fmt.Errorf("opening state %s: %w", path, err)
	}
	defer f.Close()
	return session.LoadYAML(f)
}

func provideCommands(roller *dice.Roller) *command.Registry {
	return command.DefaultRegistry(roller)
}

// provideSender selects the peer transport. With no transport configured
// messages are only logged.
func provideSender(cfg config.Config, logger *zap.Logger) (broadcast.Sender, func(), error) {
	if cfg.Peer.Transport != "redis" {
		return broadcast.SenderFunc(func(_ context.Context, channel string, _ any) error {
			logger.Debug("peer message", zap.String("channel", channel))
			return nil
		}), func() {}, nil
	}
	client, err := redispeer.NewClient(cfg.Peer.RedisAddr)
	if err != nil {
		return nil, nil, err
	}
	pub := redispeer.NewPublisher(client, cfg.Peer.ChannelPrefix)
	return pub, func() {
		if err := pub.Close(); err != nil {
			logger.Warn("closing redis publisher", zap.Error(err))
		}
	}, nil
}

func provideDispatcher(cfg config.Config, sender broadcast.Sender, metrics *observability.Metrics, logger *zap.Logger) *broadcast.Dispatcher {
	return broadcast.NewDispatcher(sender, cfg.Engine.OutboxCapacity, metrics, logger)
}

func provideChatLog() *gameserver.ChatLog {
	return gameserver.NewChatLog(gameserver.DefaultChatHistory)
}

func provideNotifier(chat *gameserver.ChatLog, disp *broadcast.Dispatcher) *gameserver.TableNotifier {
	return gameserver.NewTableNotifier(chat, disp)
}

// provideStorage picks the plugin key/value backend.
func provideStorage(ctx context.Context, cfg config.Config, logger *zap.Logger) (plugin.Storage, func(), error) {
	if cfg.Storage.Backend != "postgres" {
		return plugin.NewMemoryStorage(), func() {}, nil
	}
	pool, err := postgres.NewPool(ctx, cfg.Storage.Database, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting plugin storage: %w", err)
	}
	if err := pool.CheckSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return postgres.NewPluginStore(pool.DB()), pool.Close, nil
}

func provideHost(
	cfg config.Config,
	commands *command.Registry,
	storage plugin.Storage,
	notifier *gameserver.TableNotifier,
	metrics *observability.Metrics,
	logger *zap.Logger,
) (*plugin.Host, func(), error) {
	host, err := plugin.NewHost(plugin.HostConfig{
		APIVersion: cfg.Plugins.APIVersion,
		Commands:   commands,
		Storage:    storage,
		Notifier:   notifier,
		Recorder:   metrics,
		Logger:     logger,
	})
	if err != nil {
		return nil, nil, err
	}
	return host, host.UnloadAll, nil
}

func provideCatalog(cfg config.Config) *catalog.Lazy {
	if cfg.Catalog.MonstersFile == "" {
		return nil
	}
	return catalog.NewLazy(catalog.File(cfg.Catalog.MonstersFile))
}

func provideConditions(cfg config.Config) (*condition.Registry, error) {
	if cfg.Catalog.ConditionsDir == "" {
		return condition.DefaultRegistry(), nil
	}
	return condition.LoadDirectory(cfg.Catalog.ConditionsDir)
}

func provideExecutor(
	cfg config.Config,
	store *session.Store,
	roller *dice.Roller,
	host *plugin.Host,
	disp *broadcast.Dispatcher,
	chat *gameserver.ChatLog,
	monsters *catalog.Lazy,
	conditions *condition.Registry,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *executor.Executor {
	return executor.New(executor.Config{
		MaxBatch:        cfg.Engine.MaxBatchSize,
		RequireApproval: cfg.Engine.RequireApproval,
	}, executor.Deps{
		Store:      store,
		Roller:     roller,
		Bus:        host.Bus,
		Actions:    host.Actions,
		Queue:      disp,
		Chat:       chat,
		Catalog:    monsters,
		Conditions: conditions,
		Recorder:   metrics,
		Logger:     logger,
	})
}

func provideListener(cfg config.Config, svc *gameserver.DirectiveService, logger *zap.Logger) *gameserver.Listener {
	return gameserver.NewListener(cfg.Server.Addr(), svc, logger)
}

func provideMetricsServer(cfg config.Config, metrics *observability.Metrics, logger *zap.Logger) *observability.MetricsServer {
	return observability.NewMetricsServer(cfg.Server.MetricsAddr(), metrics, logger)
}

// provideLifecycle registers services in start order: the drainer first
// so nothing is enqueued before it runs, the gRPC listener last.
func provideLifecycle(
	cfg config.Config,
	logger *zap.Logger,
	disp *broadcast.Dispatcher,
	listener *gameserver.Listener,
	metricsSrv *observability.MetricsServer,
) *server.Lifecycle {
	lc := server.NewLifecycle(logger)
	lc.Add("broadcast", disp)
	if cfg.Server.MetricsPort != 0 {
		lc.Add("metrics", metricsSrv)
	}
	lc.Add("grpc", listener)
	return lc
}
