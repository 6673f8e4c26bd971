package scripting

import (
	"context"
	"errors"
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/cory-johannsen/dmengine/internal/game/command"
	"github.com/cory-johannsen/dmengine/internal/game/session"
	"github.com/cory-johannsen/dmengine/internal/plugin"
)

// apiTable builds the api global:
//
//	api.id
//	api.events.on(event, fn [, priority]) / api.events.emit(event, payload)
//	api.events.on_async(event, fn [, priority])
//	api.commands.register(name, help, fn [, aliases])
//	api.storage.get(key) / set(key, value) / delete(key)
//	api.ui.notify(message) / api.ui.add(slot, id, label, content)
//	api.log.info(message) / api.log.warn(message)
//	api.sounds.play(name)
//	api.actions.register(kind, fn)
func (p *luaPlugin) apiTable(L *lua.LState) *lua.LTable {
	api := L.NewTable()
	api.RawSetString("id", lua.LString(p.id))

	api.RawSetString("events", p.funcs(L, map[string]lua.LGFunction{
		"on":       p.luaOn,
		"on_async": p.luaOnAsync,
		"emit":     p.luaEmit,
	}))
	api.RawSetString("commands", p.funcs(L, map[string]lua.LGFunction{
		"register": p.luaRegisterCommand,
	}))
	api.RawSetString("storage", p.funcs(L, map[string]lua.LGFunction{
		"get":    p.luaStorageGet,
		"set":    p.luaStorageSet,
		"delete": p.luaStorageDelete,
	}))
	api.RawSetString("ui", p.funcs(L, map[string]lua.LGFunction{
		"notify": p.luaNotify,
		"add":    p.luaContribute,
	}))
	api.RawSetString("log", p.funcs(L, map[string]lua.LGFunction{
		"info": p.luaLogInfo,
		"warn": p.luaLogWarn,
	}))
	api.RawSetString("sounds", p.funcs(L, map[string]lua.LGFunction{
		"play": p.luaPlaySound,
	}))
	api.RawSetString("actions", p.funcs(L, map[string]lua.LGFunction{
		"register": p.luaRegisterAction,
	}))
	return api
}

func (p *luaPlugin) funcs(L *lua.LState, fns map[string]lua.LGFunction) *lua.LTable {
	tbl := L.NewTable()
	L.SetFuncs(tbl, fns)
	return tbl
}

func (p *luaPlugin) check(L *lua.LState, err error) {
	if err != nil {
		p.raise(L, err)
	}
}

func (p *luaPlugin) luaOn(L *lua.LState) int {
	event := L.CheckString(1)
	fn := L.CheckFunction(2)
	priority := L.OptInt(3, 0)
	p.check(L, p.api.Subscribe(event, priority, p.hook(event, fn)))
	return 0
}

// luaOnAsync registers fn to run only when the event is emitted
// asynchronously, after every synchronous handler. The emitter's context
// bounds the call.
func (p *luaPlugin) luaOnAsync(L *lua.LState) int {
	event := L.CheckString(1)
	fn := L.CheckFunction(2)
	priority := L.OptInt(3, 0)
	p.check(L, p.api.SubscribeAsync(event, priority, func(ctx context.Context, payload any) (any, error) {
		return p.runHook(ctx, event, fn, payload)
	}))
	return 0
}

// hook adapts a Lua function to a bus handler. A non-nil return value
// replaces the payload.
func (p *luaPlugin) hook(event string, fn *lua.LFunction) plugin.HookFunc {
	return func(payload any) (any, error) {
		return p.runHook(context.Background(), event, fn, payload)
	}
}

func (p *luaPlugin) runHook(ctx context.Context, event string, fn *lua.LFunction, payload any) (any, error) {
	if p.vm.emitting.Load() {
		return nil, nil
	}
	var out any
	err := p.vm.Run(ctx, func(L *lua.LState) error {
		rets, err := call(L, fn, 1, toLua(L, payload))
		if err != nil {
			return err
		}
		out, err = fromLua(rets[0])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("lua handler for %s: %w", event, err)
	}
	return out, nil
}

func (p *luaPlugin) luaEmit(L *lua.LState) int {
	event := L.CheckString(1)
	payload, err := fromLua(L.Get(2))
	p.check(L, err)
	p.vm.emitting.Store(true)
	out, err := p.api.Emit(event, payload)
	p.vm.emitting.Store(false)
	p.check(L, err)
	L.Push(toLua(L, out))
	return 1
}

func (p *luaPlugin) luaRegisterCommand(L *lua.LState) int {
	name := L.CheckString(1)
	help := L.OptString(2, "")
	fn := L.CheckFunction(3)
	aliases := stringList(L.Get(4))
	p.check(L, p.api.RegisterCommand(name, help, aliases, p.command(fn)))
	return 0
}

// command adapts a Lua function fn(args, raw) returning the chat text.
func (p *luaPlugin) command(fn *lua.LFunction) command.Func {
	return func(in command.ParseResult) (string, error) {
		var text string
		err := p.vm.Run(context.Background(), func(L *lua.LState) error {
			p.apiErr = nil
			rets, err := call(L, fn, 1, toLua(L, in.Args), lua.LString(in.RawArgs))
			if err != nil {
				return p.scriptErr(err)
			}
			if rets[0] != lua.LNil {
				text = lua.LVAsString(rets[0])
			}
			return nil
		})
		return text, err
	}
}

func (p *luaPlugin) luaStorageGet(L *lua.LState) int {
	v, ok, err := p.api.StorageGet(L.Context(), L.CheckString(1))
	p.check(L, err)
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LString(v))
	return 1
}

func (p *luaPlugin) luaStorageSet(L *lua.LState) int {
	p.check(L, p.api.StorageSet(L.Context(), L.CheckString(1), L.CheckString(2)))
	return 0
}

func (p *luaPlugin) luaStorageDelete(L *lua.LState) int {
	p.check(L, p.api.StorageDelete(L.Context(), L.CheckString(1)))
	return 0
}

func (p *luaPlugin) luaNotify(L *lua.LState) int {
	p.check(L, p.api.Notify(L.CheckString(1)))
	return 0
}

func (p *luaPlugin) luaContribute(L *lua.LState) int {
	p.check(L, p.api.Contribute(L.CheckString(1), L.CheckString(2), L.OptString(3, ""), L.OptString(4, "")))
	return 0
}

func (p *luaPlugin) luaLogInfo(L *lua.LState) int {
	p.api.Log().Info(L.CheckString(1))
	return 0
}

func (p *luaPlugin) luaLogWarn(L *lua.LState) int {
	p.api.Log().Warn(L.CheckString(1))
	return 0
}

func (p *luaPlugin) luaPlaySound(L *lua.LState) int {
	p.check(L, p.api.PlaySound(L.CheckString(1)))
	return 0
}

func (p *luaPlugin) luaRegisterAction(L *lua.LState) int {
	kind := L.CheckString(1)
	fn := L.CheckFunction(2)
	p.check(L, p.api.RegisterAction(kind, p.action(fn)))
	return 0
}

// action adapts a Lua function fn(directive, ctx) to a directive handler.
func (p *luaPlugin) action(fn *lua.LFunction) plugin.ActionHandler {
	return func(ctx context.Context, c plugin.ActionCall) error {
		return p.vm.Run(ctx, func(L *lua.LState) error {
			p.apiErr = nil
			rets, err := call(L, fn, 2, toLua(L, map[string]any(c.Directive.Fields)), p.actionContext(L, c))
			if err != nil {
				return p.scriptErr(err)
			}
			return actionResult(rets)
		})
	}
}

// actionContext builds the ctx table passed to directive handlers:
//
//	ctx.kind, ctx.round, ctx.day, ctx.time, ctx.map (nil without an active map)
//	ctx.chat(text)
//	ctx.move_token(label, x, y)
//	ctx.set_hp(label, hp)
func (p *luaPlugin) actionContext(L *lua.LState, c plugin.ActionCall) *lua.LTable {
	tbl := L.NewTable()
	tbl.RawSetString("kind", lua.LString(c.Directive.Name))
	if c.State != nil {
		tbl.RawSetString("round", lua.LNumber(c.State.Round()))
		tbl.RawSetString("day", lua.LNumber(c.State.Time.Day()))
		tbl.RawSetString("time", lua.LString(c.State.Time.String()))
	}
	if c.ActiveMap != nil {
		tbl.RawSetString("map", mapTable(L, c.ActiveMap))
	}

	tbl.RawSetString("chat", L.NewFunction(func(L *lua.LState) int {
		if c.Sync != nil {
			c.Sync.Chat(L.CheckString(1))
		}
		return 0
	}))
	tbl.RawSetString("move_token", L.NewFunction(func(L *lua.LState) int {
		tok := p.actionToken(L, c)
		tok.X, tok.Y = L.CheckInt(2), L.CheckInt(3)
		if c.Sync != nil {
			c.Sync.PushTokens(c.State, c.ActiveMap.ID)
		}
		return 0
	}))
	tbl.RawSetString("set_hp", L.NewFunction(func(L *lua.LState) int {
		tok := p.actionToken(L, c)
		tok.SetHP(L.CheckInt(2))
		if c.Sync != nil {
			c.Sync.PushTokens(c.State, c.ActiveMap.ID)
		}
		return 0
	}))
	return tbl
}

func (p *luaPlugin) actionToken(L *lua.LState, c plugin.ActionCall) *session.Token {
	label := L.CheckString(1)
	if c.ActiveMap == nil {
		p.raise(L, errors.New("No active map"))
	}
	tok, ok := c.ActiveMap.FindToken(label)
	if !ok {
		p.raise(L, fmt.Errorf("Token not found: %s", label))
	}
	return tok
}

func mapTable(L *lua.LState, m *session.Map) *lua.LTable {
	tbl := L.NewTable()
	tbl.RawSetString("id", lua.LString(m.ID))
	tbl.RawSetString("name", lua.LString(m.Name))
	tbl.RawSetString("width", lua.LNumber(m.Width))
	tbl.RawSetString("height", lua.LNumber(m.Height))
	tokens := L.CreateTable(len(m.Tokens), 0)
	for _, t := range m.Tokens {
		tok := L.NewTable()
		tok.RawSetString("id", lua.LString(t.ID))
		tok.RawSetString("label", lua.LString(t.Label))
		tok.RawSetString("gridX", lua.LNumber(t.X))
		tok.RawSetString("gridY", lua.LNumber(t.Y))
		tok.RawSetString("currentHP", lua.LNumber(t.CurrentHP))
		tok.RawSetString("maxHP", lua.LNumber(t.MaxHP))
		tok.RawSetString("ac", lua.LNumber(t.AC))
		tok.RawSetString("conditions", toLua(L, t.Conditions))
		tokens.Append(tok)
	}
	tbl.RawSetString("tokens", tokens)
	return tbl
}
