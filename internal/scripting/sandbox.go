// Package scripting runs plugins written in Lua. Each plugin gets its own
// sandboxed GopherLua VM with only the safe standard libraries and a per-call
// instruction budget; the plugin API is exposed to scripts as the api table.
package scripting

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	lua "github.com/yuin/gopher-lua"
)

// DefaultInstructionLimit is the maximum number of Lua opcodes allowed per
// call into a plugin when no override is configured.
const DefaultInstructionLimit = 100_000

// budget is a context whose Done cancels it after a fixed number of calls.
// GopherLua polls Done once per opcode, so the count is an opcode budget.
type budget struct {
	context.Context
	cancel context.CancelFunc
	left   atomic.Int64
}

func (b *budget) Done() <-chan struct{} {
	if b.left.Add(-1) <= 0 {
		b.cancel()
	}
	return b.Context.Done()
}

func withBudget(parent context.Context, opcodes int) (*budget, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	b := &budget{Context: ctx, cancel: cancel}
	b.left.Store(int64(opcodes))
	return b, cancel
}

// blockedGlobals are removed from every plugin VM: they reach the
// filesystem, load arbitrary chunks, or control the collector.
var blockedGlobals = []string{"dofile", "loadfile", "load", "loadstring", "collectgarbage", "require", "module"}

func newState() *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, open := range []lua.LGFunction{lua.OpenBase, lua.OpenTable, lua.OpenString, lua.OpenMath} {
		open(L)
	}
	for _, name := range blockedGlobals {
		L.SetGlobal(name, lua.LNil)
	}
	return L
}

func limitOrDefault(limit int) int {
	if limit <= 0 {
		return DefaultInstructionLimit
	}
	return limit
}

// VM serializes access to one sandboxed LState. Every entry through Run gets
// a fresh instruction budget.
type VM struct {
	mu     sync.Mutex
	L      *lua.LState
	limit  int
	closed bool

	// emitting is set while the script is inside api.events.emit; events
	// the plugin emits are not delivered back to it.
	emitting atomic.Bool
}

// NewVM returns a VM with the given per-call instruction limit.
//
// Precondition: limit >= 0; 0 uses DefaultInstructionLimit.
func NewVM(limit int) *VM {
	return &VM{L: newState(), limit: limitOrDefault(limit)}
}

// Run calls fn with exclusive access to the LState and an instruction
// budget derived from ctx.
//
// Postcondition: returns an error without calling fn if the VM is closed.
func (v *VM) Run(ctx context.Context, fn func(L *lua.LState) error) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return fmt.Errorf("lua vm closed")
	}
	b, cancel := withBudget(ctx, v.limit)
	defer cancel()
	v.L.SetContext(b)
	defer v.L.RemoveContext()
	return fn(v.L)
}

// Exec loads and runs a chunk.
func (v *VM) Exec(ctx context.Context, name string, src io.Reader) error {
	return v.Run(ctx, func(L *lua.LState) error {
		fn, err := L.Load(src, name)
		if err != nil {
			return err
		}
		L.Push(fn)
		return L.PCall(0, lua.MultRet, nil)
	})
}

// Close releases the LState. Further calls to Run fail.
func (v *VM) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	v.closed = true
	v.L.Close()
}

// call invokes fn with args and returns nret results.
//
// Precondition: called inside Run.
func call(L *lua.LState, fn lua.LValue, nret int, args ...lua.LValue) ([]lua.LValue, error) {
	if err := L.CallByParam(lua.P{Fn: fn, NRet: nret, Protect: true}, args...); err != nil {
		return nil, err
	}
	rets := make([]lua.LValue, nret)
	for i := nret - 1; i >= 0; i-- {
		rets[i] = L.Get(-1)
		L.Pop(1)
	}
	return rets, nil
}
