package observability

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Metrics owns the engine's Prometheus collectors and the registry they
// are registered with. It satisfies executor.Recorder, broadcast.Recorder
// and plugin.Recorder.
type Metrics struct {
	registry *prometheus.Registry

	directives    *prometheus.CounterVec
	pending       prometheus.Gauge
	outboxDropped prometheus.Counter
	plugins       prometheus.Gauge
}

// NewMetrics creates a Metrics with a private registry that also carries
// the Go runtime and process collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		directives: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dmengine_directives_total",
				Help: "Directives processed by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		pending: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dmengine_pending_approvals",
			Help: "Directive batches waiting for DM approval",
		}),
		outboxDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dmengine_outbox_dropped_total",
			Help: "Broadcast messages dropped because the queue was full",
		}),
		plugins: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dmengine_plugins_loaded",
			Help: "Plugins currently loaded",
		}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.directives,
		m.pending,
		m.outboxDropped,
		m.plugins,
	)
	return m
}

// Registry exposes the registry for scraping and tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// DirectiveExecuted counts one directive outcome.
func (m *Metrics) DirectiveExecuted(kind, outcome string) {
	m.directives.WithLabelValues(kind, outcome).Inc()
}

// PendingApprovals sets the pending approval gauge.
func (m *Metrics) PendingApprovals(n int) { m.pending.Set(float64(n)) }

// OutboxDropped adds n dropped broadcast messages.
func (m *Metrics) OutboxDropped(n int) { m.outboxDropped.Add(float64(n)) }

// PluginsLoaded sets the loaded plugin gauge.
func (m *Metrics) PluginsLoaded(n int) { m.plugins.Set(float64(n)) }

// MetricsServer serves /metrics over HTTP. It satisfies server.Service.
type MetricsServer struct {
	addr   string
	srv    *http.Server
	logger *zap.Logger

	mu       sync.Mutex
	listener net.Listener
}

// NewMetricsServer builds a MetricsServer for m on addr.
//
// Precondition: m and logger must be non-nil.
func NewMetricsServer(addr string, m *Metrics, logger *zap.Logger) *MetricsServer {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	}))
	return &MetricsServer{
		addr: addr,
		srv: &http.Server{
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// Start listens on the configured address and serves until Stop.
func (s *MetricsServer) Start() error {
	lis, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.listener = lis
	s.mu.Unlock()
	s.logger.Info("metrics listening", zap.String("addr", lis.Addr().String()))
	if err := s.srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop shuts the HTTP server down, waiting up to five seconds for
// in-flight scrapes.
func (s *MetricsServer) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(ctx); err != nil {
		s.logger.Warn("metrics shutdown", zap.Error(err))
	}
}

// Addr returns the bound address, or "" before Start has listened.
func (s *MetricsServer) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}
