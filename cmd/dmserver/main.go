// Package main provides the DM engine server: it loads plugins and serves
// the directive gRPC service and Prometheus metrics.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/dmengine/internal/config"
	"github.com/cory-johannsen/dmengine/internal/scripting"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "", "path to configuration file; empty uses defaults and DM_* environment")
	statePath := flag.String("state", "", "optional YAML state fixture to start from")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	app, cleanup, err := initializeApp(ctx, cfg, StatePath(*statePath))
	if err != nil {
		log.Fatalf("initializing: %v", err)
	}
	logger := app.Logger

	if cfg.Plugins.Dir != "" {
		loader := scripting.NewLoader(cfg.Plugins.InstructionLimit, logger)
		ids, err := app.Host.LoadDir(ctx, loader, cfg.Plugins.Dir)
		if err != nil {
			logger.Fatal("loading plugins", zap.Error(err))
		}
		logger.Info("plugins loaded",
			zap.Strings("plugins", ids),
			zap.String("dir", cfg.Plugins.Dir),
		)
	}

	logger.Info("dm engine starting",
		zap.String("grpc_addr", cfg.Server.Addr()),
		zap.Int("metrics_port", cfg.Server.MetricsPort),
		zap.Bool("require_approval", cfg.Engine.RequireApproval),
		zap.String("peer_transport", cfg.Peer.Transport),
		zap.String("storage", cfg.Storage.Backend),
		zap.Duration("startup", time.Since(start)),
	)

	runErr := app.Lifecycle.Run(ctx)
	cleanup()
	if runErr != nil {
		log.Fatalf("server stopped: %v", runErr)
	}
}
