// Package server runs the engine's long-lived services and shuts them
// down together.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Service is a component whose Start blocks until Stop is called or it fails.
type Service interface {
	Start() error
	Stop()
}

type entry struct {
	name string
	svc  Service
}

// Lifecycle starts services in registration order and stops them in reverse.
type Lifecycle struct {
	logger *zap.Logger

	mu      sync.Mutex
	entries []entry
}

// NewLifecycle returns an empty Lifecycle.
//
// Precondition: logger is non-nil.
func NewLifecycle(logger *zap.Logger) *Lifecycle {
	return &Lifecycle{logger: logger}
}

// Add registers svc under name. Registration after Run has begun has no
// effect on that run.
func (l *Lifecycle) Add(name string, svc Service) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry{name: name, svc: svc})
}

// Names returns the registered service names in start order.
func (l *Lifecycle) Names() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	names := make([]string, len(l.entries))
	for i, e := range l.entries {
		names[i] = e.name
	}
	return names
}

// Run starts every service and blocks until SIGINT, SIGTERM, ctx
// cancellation, or the first service failure, then stops all services.
//
// Postcondition: Every service has been stopped. The error is the first
// service failure, or nil for a signal or cancellation.
func (l *Lifecycle) Run(ctx context.Context) error {
	l.mu.Lock()
	entries := slices.Clone(l.entries)
	l.mu.Unlock()

	ctx, stopSignals := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	began := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	for _, e := range entries {
		g.Go(func() error {
			l.logger.Info("service starting", zap.String("service", e.name))
			if err := e.svc.Start(); err != nil {
				l.logger.Error("service failed",
					zap.String("service", e.name),
					zap.Duration("uptime", time.Since(began)),
					zap.Error(err),
				)
				return fmt.Errorf("service %s: %w", e.name, err)
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		l.logger.Info("shutting down", zap.NamedError("cause", context.Cause(gctx)))
		l.stopAll(entries)
		return nil
	})

	err := g.Wait()
	l.logger.Info("lifecycle finished",
		zap.Int("services", len(entries)),
		zap.Duration("uptime", time.Since(began)),
	)
	return err
}

func (l *Lifecycle) stopAll(entries []entry) {
	for _, e := range slices.Backward(entries) {
		t := time.Now()
		e.svc.Stop()
		l.logger.Info("service stopped",
			zap.String("service", e.name),
			zap.Duration("elapsed", time.Since(t)),
		)
	}
}
