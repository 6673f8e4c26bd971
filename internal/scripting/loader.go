package scripting

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/dmengine/internal/plugin"
)

// Global function names a plugin script may define.
const (
	HookActivate   = "activate"
	HookDeactivate = "deactivate"
	HookAction     = "handle_dm_action"
)

// Loader loads Lua plugins. It implements plugin.Loader.
type Loader struct {
	// InstructionLimit bounds every call into a plugin; 0 uses
	// DefaultInstructionLimit.
	InstructionLimit int
	Logger           *zap.Logger
}

// NewLoader returns a Loader.
//
// Precondition: logger must be non-nil.
func NewLoader(instructionLimit int, logger *zap.Logger) *Loader {
	return &Loader{InstructionLimit: instructionLimit, Logger: logger}
}

// Load runs the manifest's entry file in a fresh VM. A script that defines
// handle_dm_action yields a handle that also implements
// plugin.ActionProvider.
//
// Postcondition: on error no VM is left open.
func (l *Loader) Load(ctx context.Context, m *plugin.Manifest, dir string) (plugin.Handle, error) {
	path := filepath.Join(dir, m.Entry)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("scripting: opening %q: %w", path, err)
	}
	defer f.Close()

	vm := NewVM(l.InstructionLimit)
	if err := vm.Exec(ctx, m.Entry, f); err != nil {
		vm.Close()
		return nil, fmt.Errorf("scripting: loading %q: %w", path, err)
	}

	logger := l.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &luaPlugin{id: m.ID, vm: vm, logger: logger.With(zap.String("plugin", m.ID))}

	var hasAction bool
	_ = vm.Run(ctx, func(L *lua.LState) error {
		_, hasAction = L.GetGlobal(HookAction).(*lua.LFunction)
		return nil
	})
	if hasAction {
		return &actionPlugin{luaPlugin: p}, nil
	}
	return p, nil
}

// luaPlugin is a loaded Lua script.
type luaPlugin struct {
	id     string
	vm     *VM
	logger *zap.Logger
	api    *plugin.API

	// apiErr is the last error an api function raised into the script;
	// it is returned instead of Lua's string form so callers can match it.
	apiErr error
}

// Activate exposes api to the script and calls its activate function.
//
// Postcondition: on error the VM is closed.
func (p *luaPlugin) Activate(api *plugin.API) error {
	p.api = api
	err := p.vm.Run(context.Background(), func(L *lua.LState) error {
		tbl := p.apiTable(L)
		L.SetGlobal("api", tbl)
		fn, ok := L.GetGlobal(HookActivate).(*lua.LFunction)
		if !ok {
			return nil
		}
		p.apiErr = nil
		_, err := call(L, fn, 0, tbl)
		return p.scriptErr(err)
	})
	if err != nil {
		p.vm.Close()
		return err
	}
	return nil
}

// Deactivate calls the script's deactivate function and closes the VM.
// Errors raised by the script are returned; the VM is closed regardless.
func (p *luaPlugin) Deactivate() error {
	defer p.vm.Close()
	return p.vm.Run(context.Background(), func(L *lua.LState) error {
		fn, ok := L.GetGlobal(HookDeactivate).(*lua.LFunction)
		if !ok {
			return nil
		}
		_, err := call(L, fn, 0)
		return p.scriptErr(err)
	})
}

func (p *luaPlugin) scriptErr(err error) error {
	if err == nil {
		return nil
	}
	if p.apiErr != nil {
		apiErr := p.apiErr
		p.apiErr = nil
		return apiErr
	}
	return err
}

// raise records err and raises it as a Lua error. It does not return.
func (p *luaPlugin) raise(L *lua.LState, err error) {
	p.apiErr = err
	L.RaiseError("%s", err.Error())
}

// actionPlugin is a luaPlugin whose script defines handle_dm_action.
type actionPlugin struct {
	*luaPlugin
}

// HandleAction calls handle_dm_action(directive, ctx). The directive fails
// when the function raises an error or returns false with an optional
// message.
func (p *actionPlugin) HandleAction(ctx context.Context, c plugin.ActionCall) error {
	return p.vm.Run(ctx, func(L *lua.LState) error {
		fn, ok := L.GetGlobal(HookAction).(*lua.LFunction)
		if !ok {
			return fmt.Errorf("plugin %s no longer defines %s", p.id, HookAction)
		}
		p.apiErr = nil
		dir := toLua(L, map[string]any(c.Directive.Fields))
		rets, err := call(L, fn, 2, dir, p.actionContext(L, c))
		if err != nil {
			return p.scriptErr(err)
		}
		return actionResult(rets)
	})
}

func actionResult(rets []lua.LValue) error {
	if rets[0] != lua.LFalse {
		return nil
	}
	if msg, ok := rets[1].(lua.LString); ok && msg != "" {
		return errors.New(string(msg))
	}
	return errors.New("plugin action failed")
}
