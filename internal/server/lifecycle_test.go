package server

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("os/signal.loop"))
}

// blockingService runs until Stop, recording the stop into log.
type blockingService struct {
	name     string
	log      *stopLog
	startErr error
	started  chan struct{}
	stop     chan struct{}
	once     sync.Once
}

type stopLog struct {
	mu    sync.Mutex
	names []string
}

func (s *stopLog) add(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.names = append(s.names, name)
}

func (s *stopLog) list() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.names...)
}

func newBlocking(name string, log *stopLog) *blockingService {
	return &blockingService{name: name, log: log, started: make(chan struct{}), stop: make(chan struct{})}
}

func (b *blockingService) Start() error {
	close(b.started)
	if b.startErr != nil {
		return b.startErr
	}
	<-b.stop
	return nil
}

func (b *blockingService) Stop() {
	b.once.Do(func() {
		b.log.add(b.name)
		close(b.stop)
	})
}

func runAsync(lc *Lifecycle, ctx context.Context) <-chan error {
	done := make(chan error, 1)
	go func() { done <- lc.Run(ctx) }()
	return done
}

func waitErr(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("lifecycle did not return")
		return nil
	}
}

func TestLifecycle_CancelStopsEverythingInReverse(t *testing.T) {
	log := &stopLog{}
	lc := NewLifecycle(zaptest.NewLogger(t))
	svcs := []*blockingService{newBlocking("broadcast", log), newBlocking("metrics", log), newBlocking("grpc", log)}
	for _, s := range svcs {
		lc.Add(s.name, s)
	}
	assert.Equal(t, []string{"broadcast", "metrics", "grpc"}, lc.Names())

	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(lc, ctx)
	for _, s := range svcs {
		<-s.started
	}
	cancel()

	require.NoError(t, waitErr(t, done))
	assert.Equal(t, []string{"grpc", "metrics", "broadcast"}, log.list())
}

func TestLifecycle_FailureStopsTheRest(t *testing.T) {
	log := &stopLog{}
	lc := NewLifecycle(zaptest.NewLogger(t))
	healthy := newBlocking("broadcast", log)
	broken := newBlocking("grpc", log)
	broken.startErr = errors.New("listen tcp :50051: address already in use")
	lc.Add("broadcast", healthy)
	lc.Add("grpc", broken)

	err := waitErr(t, runAsync(lc, context.Background()))
	require.Error(t, err)
	assert.ErrorIs(t, err, broken.startErr)
	assert.Contains(t, err.Error(), "service grpc")
	assert.Contains(t, log.list(), "broadcast")
}

func TestLifecycle_AddAfterRunIsIgnoredByThatRun(t *testing.T) {
	log := &stopLog{}
	lc := NewLifecycle(zaptest.NewLogger(t))
	first := newBlocking("broadcast", log)
	lc.Add("broadcast", first)

	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(lc, ctx)
	<-first.started
	lc.Add("late", newBlocking("late", log))
	cancel()

	require.NoError(t, waitErr(t, done))
	assert.Equal(t, []string{"broadcast"}, log.list())
	assert.Equal(t, []string{"broadcast", "late"}, lc.Names())
}

func TestLifecycle_NoServices(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, NewLifecycle(zaptest.NewLogger(t)).Run(ctx))
}
