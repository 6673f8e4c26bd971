package broadcast

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Recorder counts messages dropped because the queue was full.
type Recorder interface {
	OutboxDropped(n int)
}

type nopRecorder struct{}

func (nopRecorder) OutboxDropped(int) {}

// Dispatcher drains a bounded queue of messages into a Sender on a single
// goroutine. Enqueue never blocks; sends are never retried.
//
// Dispatcher satisfies server.Service: Start blocks until Stop.
type Dispatcher struct {
	sender   Sender
	queue    chan Message
	recorder Recorder
	logger   *zap.Logger

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
	mu       sync.Mutex
	running  bool
}

// NewDispatcher creates a stopped Dispatcher with room for capacity
// queued messages.
//
// Precondition: sender and logger must be non-nil; capacity > 0.
func NewDispatcher(sender Sender, capacity int, recorder Recorder, logger *zap.Logger) *Dispatcher {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	if capacity < 1 {
		capacity = 1
	}
	return &Dispatcher{
		sender:   sender,
		queue:    make(chan Message, capacity),
		recorder: recorder,
		logger:   logger,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Enqueue queues msgs for delivery. Messages that do not fit are dropped
// and counted.
//
// Postcondition: returns the number of messages dropped.
func (d *Dispatcher) Enqueue(msgs ...Message) int {
	dropped := 0
	for _, m := range msgs {
		select {
		case d.queue <- m:
		default:
			dropped++
		}
	}
	if dropped > 0 {
		d.recorder.OutboxDropped(dropped)
		d.logger.Warn("broadcast queue full, dropping messages", zap.Int("dropped", dropped))
	}
	return dropped
}

// Start delivers queued messages until Stop is called, then flushes what is
// already queued and returns.
func (d *Dispatcher) Start() error {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return nil
	}
	d.running = true
	d.mu.Unlock()
	defer close(d.done)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	for {
		select {
		case m := <-d.queue:
			d.deliver(ctx, m)
		case <-d.stop:
			for {
				select {
				case m := <-d.queue:
					d.deliver(ctx, m)
				default:
					return nil
				}
			}
		}
	}
}

// Stop ends Start and waits for the flush. Calling Stop more than once, or
// before Start, is safe.
func (d *Dispatcher) Stop() {
	d.stopOnce.Do(func() { close(d.stop) })
	d.mu.Lock()
	running := d.running
	d.mu.Unlock()
	if running {
		<-d.done
	}
}

func (d *Dispatcher) deliver(ctx context.Context, m Message) {
	if err := d.sender.Send(ctx, m.Channel, m.Payload); err != nil {
		d.logger.Warn("broadcast send failed",
			zap.String("channel", m.Channel),
			zap.Error(err),
		)
	}
}
