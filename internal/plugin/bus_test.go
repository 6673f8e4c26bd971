package plugin_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/dmengine/internal/plugin"
)

func TestBus_PriorityOrderStable(t *testing.T) {
	bus := plugin.NewBus(zap.NewNop())
	var order []string
	record := func(name string) plugin.HookFunc {
		return func(any) (any, error) { order = append(order, name); return nil, nil }
	}
	bus.Subscribe("p", "evt", 10, record("late"))
	bus.Subscribe("p", "evt", 0, record("first-a"))
	bus.Subscribe("p", "evt", 0, record("first-b"))
	bus.Subscribe("p", "evt", 5, record("middle"))

	bus.Emit("evt", nil)
	assert.Equal(t, []string{"first-a", "first-b", "middle", "late"}, order)
}

func TestBus_FilterSemantics(t *testing.T) {
	bus := plugin.NewBus(zap.NewNop())
	bus.Subscribe("a", "evt", 0, func(p any) (any, error) { return p.(int) + 1, nil })
	bus.Subscribe("b", "evt", 1, func(any) (any, error) { return nil, nil })
	bus.Subscribe("c", "evt", 2, func(p any) (any, error) { return p.(int) * 10, nil })

	assert.Equal(t, 20, bus.Emit("evt", 1))
	assert.Equal(t, "untouched", bus.Emit("other", "untouched"))
}

func TestBus_FailingHandlerLoggedAndSkipped(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	bus := plugin.NewBus(zap.New(core))
	ran := false
	bus.Subscribe("bad", "evt", 0, func(any) (any, error) { return "ignored", errors.New("boom") })
	bus.Subscribe("worse", "evt", 1, func(any) (any, error) { panic("kaboom") })
	bus.Subscribe("good", "evt", 2, func(p any) (any, error) { ran = true; return p, nil })

	out := bus.Emit("evt", "payload")
	assert.True(t, ran)
	assert.Equal(t, "payload", out)

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "bad", logs.All()[0].ContextMap()["plugin"])
	assert.Equal(t, "evt", logs.All()[1].ContextMap()["event"])
}

func TestBus_EmitAsyncRunsSyncFirst(t *testing.T) {
	bus := plugin.NewBus(zap.NewNop())
	var order []string
	bus.SubscribeAsync("p", "evt", -5, func(_ context.Context, p any) (any, error) {
		order = append(order, "async-early")
		return p, nil
	})
	bus.Subscribe("p", "evt", 100, func(p any) (any, error) {
		order = append(order, "sync-late")
		return p, nil
	})
	bus.SubscribeAsync("p", "evt", 0, func(_ context.Context, p any) (any, error) {
		order = append(order, "async-late")
		return "done", nil
	})

	out, err := bus.EmitAsync(context.Background(), "evt", "start")
	require.NoError(t, err)
	assert.Equal(t, "done", out)
	assert.Equal(t, []string{"sync-late", "async-early", "async-late"}, order)

	order = nil
	bus.Emit("evt", nil)
	assert.Equal(t, []string{"sync-late"}, order)
}

func TestBus_EmitAsyncStopsOnCancel(t *testing.T) {
	bus := plugin.NewBus(zap.NewNop())
	ran := false
	bus.SubscribeAsync("p", "evt", 0, func(context.Context, any) (any, error) { ran = true; return nil, nil })
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := bus.EmitAsync(ctx, "evt", nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, ran)
}

func TestBus_UnsubscribeAndRemovePlugin(t *testing.T) {
	bus := plugin.NewBus(zap.NewNop())
	unsub := bus.Subscribe("a", "evt", 0, func(any) (any, error) { return nil, nil })
	bus.Subscribe("b", "evt", 0, func(any) (any, error) { return nil, nil })
	bus.Subscribe("b", "other", 0, func(any) (any, error) { return nil, nil })

	unsub()
	unsub()
	assert.True(t, bus.HasSubscribers("evt"))
	assert.Equal(t, 2, bus.RemovePlugin("b"))
	assert.False(t, bus.HasSubscribers("evt"))
	assert.False(t, bus.HasSubscribers("other"))
	assert.Equal(t, 0, bus.RemovePlugin("b"))
}

func TestBus_HandlerMaySubscribeDuringEmit(t *testing.T) {
	bus := plugin.NewBus(zap.NewNop())
	bus.Subscribe("a", "evt", 0, func(any) (any, error) {
		bus.Subscribe("a", "evt", 1, func(any) (any, error) { return nil, nil })
		return nil, nil
	})
	assert.NotPanics(t, func() { bus.Emit("evt", nil) })
}

// TestProperty_BusOrdersByPriorityThenInsertion verifies emission order is
// the stable sort of subscriptions by priority.
func TestProperty_BusOrdersByPriorityThenInsertion(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		bus := plugin.NewBus(zap.NewNop())
		prios := rapid.SliceOfN(rapid.IntRange(-3, 3), 1, 20).Draw(rt, "prios")
		type rec struct{ prio, idx int }
		var got []rec
		for i, p := range prios {
			i, p := i, p
			bus.Subscribe("p", "evt", p, func(any) (any, error) {
				got = append(got, rec{p, i})
				return nil, nil
			})
		}
		bus.Emit("evt", nil)
		require.Len(rt, got, len(prios))
		for i := 1; i < len(got); i++ {
			prev, cur := got[i-1], got[i]
			if prev.prio == cur.prio {
				assert.Less(rt, prev.idx, cur.idx)
			} else {
				assert.Less(rt, prev.prio, cur.prio)
			}
		}
	})
}
