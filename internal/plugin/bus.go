package plugin

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// Lifecycle events emitted by the executor around every directive.
const (
	EventBeforeAction = "dm:before-action"
	EventAfterAction  = "dm:after-action"
)

// HookFunc handles a synchronous event. Returning a non-nil value replaces
// the payload seen by later handlers; returning nil leaves it unchanged.
type HookFunc func(payload any) (any, error)

// AsyncHookFunc handles an event during EmitAsync.
type AsyncHookFunc func(ctx context.Context, payload any) (any, error)

// Unsubscribe removes a single subscription. Calling it twice is harmless.
type Unsubscribe func()

type subscription struct {
	id       uint64
	pluginID string
	priority int
	sync     HookFunc
	async    AsyncHookFunc
}

// Bus is an ordered publish/subscribe hub keyed by event name.
//
// Subscribers run in ascending priority; equal priorities run in
// subscription order. Lists are kept sorted as subscriptions are added.
// All methods are safe for concurrent use.
type Bus struct {
	mu     sync.RWMutex
	subs   map[string][]*subscription
	nextID uint64
	logger *zap.Logger
}

// NewBus returns an empty Bus.
//
// Precondition: logger must be non-nil.
func NewBus(logger *zap.Logger) *Bus {
	return &Bus{subs: make(map[string][]*subscription), logger: logger}
}

// Subscribe registers a synchronous handler for event.
func (b *Bus) Subscribe(pluginID, event string, priority int, fn HookFunc) Unsubscribe {
	return b.add(event, &subscription{pluginID: pluginID, priority: priority, sync: fn})
}

// SubscribeAsync registers a handler that only runs during EmitAsync,
// after every synchronous handler.
func (b *Bus) SubscribeAsync(pluginID, event string, priority int, fn AsyncHookFunc) Unsubscribe {
	return b.add(event, &subscription{pluginID: pluginID, priority: priority, async: fn})
}

func (b *Bus) add(event string, s *subscription) Unsubscribe {
	b.mu.Lock()
	b.nextID++
	s.id = b.nextID
	list := b.subs[event]
	// Insert after every subscription with priority <= s.priority.
	i := sort.Search(len(list), func(i int) bool { return list[i].priority > s.priority })
	list = append(list, nil)
	copy(list[i+1:], list[i:])
	list[i] = s
	b.subs[event] = list
	b.mu.Unlock()

	return func() { b.remove(event, s.id) }
}

func (b *Bus) remove(event string, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	list := b.subs[event]
	for i, s := range list {
		if s.id == id {
			b.subs[event] = append(list[:i:i], list[i+1:]...)
			break
		}
	}
	if len(b.subs[event]) == 0 {
		delete(b.subs, event)
	}
}

// HasSubscribers reports whether event has any handler.
func (b *Bus) HasSubscribers(event string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[event]) > 0
}

// snapshot copies the subscriber list so handlers may subscribe or
// unsubscribe while an emission is running.
func (b *Bus) snapshot(event string) []*subscription {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]*subscription(nil), b.subs[event]...)
}

// Emit runs every synchronous handler for event in priority order,
// threading the payload through them, and returns the final payload.
// A failing handler is logged and skipped.
func (b *Bus) Emit(event string, payload any) any {
	for _, s := range b.snapshot(event) {
		if s.sync == nil {
			continue
		}
		payload = b.call(event, s, payload, func() (any, error) { return s.sync(payload) })
	}
	return payload
}

// EmitAsync runs synchronous handlers first, then asynchronous handlers in
// priority order, awaiting each. It stops early only if ctx is done.
func (b *Bus) EmitAsync(ctx context.Context, event string, payload any) (any, error) {
	subs := b.snapshot(event)
	for _, s := range subs {
		if s.sync != nil {
			payload = b.call(event, s, payload, func() (any, error) { return s.sync(payload) })
		}
	}
	for _, s := range subs {
		if s.async == nil {
			continue
		}
		if err := ctx.Err(); err != nil {
			return payload, err
		}
		payload = b.call(event, s, payload, func() (any, error) { return s.async(ctx, payload) })
	}
	return payload, nil
}

// call runs one handler, recovering panics, and returns the payload to
// pass on.
func (b *Bus) call(event string, s *subscription, payload any, fn func() (any, error)) (out any) {
	out = payload
	defer func() {
		if r := recover(); r != nil {
			b.logger.Warn("event handler panicked",
				zap.String("event", event),
				zap.String("plugin", s.pluginID),
				zap.String("panic", fmt.Sprint(r)),
			)
			out = payload
		}
	}()
	next, err := fn()
	if err != nil {
		b.logger.Warn("event handler failed",
			zap.String("event", event),
			zap.String("plugin", s.pluginID),
			zap.Error(err),
		)
		return payload
	}
	if next != nil {
		return next
	}
	return payload
}

// RemovePlugin deletes every subscription owned by pluginID and returns
// how many were removed.
func (b *Bus) RemovePlugin(pluginID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	removed := 0
	for event, list := range b.subs {
		kept := list[:0]
		for _, s := range list {
			if s.pluginID == pluginID {
				removed++
				continue
			}
			kept = append(kept, s)
		}
		for i := len(kept); i < len(list); i++ {
			list[i] = nil
		}
		if len(kept) == 0 {
			delete(b.subs, event)
		} else {
			b.subs[event] = kept
		}
	}
	return removed
}
