package scripting

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	lua "github.com/yuin/gopher-lua"
)

// toLua converts a Go value into a Lua value. Maps and slices become
// tables; structs are converted through their JSON form so scripts see the
// same field names as peers do.
func toLua(L *lua.LState, v any) lua.LValue {
	switch t := v.(type) {
	case nil:
		return lua.LNil
	case lua.LValue:
		return t
	case string:
		return lua.LString(t)
	case bool:
		return lua.LBool(t)
	case int:
		return lua.LNumber(t)
	case int32:
		return lua.LNumber(t)
	case int64:
		return lua.LNumber(t)
	case float32:
		return lua.LNumber(t)
	case float64:
		return lua.LNumber(t)
	case []string:
		tbl := L.CreateTable(len(t), 0)
		for _, s := range t {
			tbl.Append(lua.LString(s))
		}
		return tbl
	case []any:
		tbl := L.CreateTable(len(t), 0)
		for _, e := range t {
			tbl.Append(toLua(L, e))
		}
		return tbl
	case map[string]any:
		tbl := L.CreateTable(0, len(t))
		for k, e := range t {
			tbl.RawSetString(k, toLua(L, e))
		}
		return tbl
	}

	data, err := json.Marshal(v)
	if err != nil {
		return lua.LString(fmt.Sprint(v))
	}
	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		return lua.LString(string(data))
	}
	return toLua(L, generic)
}

// MaxTableDepth bounds how deeply nested a table handed back by a script
// may be.
const MaxTableDepth = 64

// ErrTableCycle is returned when a script hands back a table that contains
// itself.
var ErrTableCycle = errors.New("scripting: table references itself")

// fromLua converts a Lua value into plain Go data. Tables whose keys are
// exactly 1..n become []any; other tables become map[string]any. Integral
// numbers become int. Functions and userdata become nil.
//
// Postcondition: returns ErrTableCycle for a self-referencing table and an
// error for tables nested deeper than MaxTableDepth. A table reachable
// twice without a cycle is converted twice.
func fromLua(v lua.LValue) (any, error) {
	return convertValue(v, make(map[*lua.LTable]struct{}), 0)
}

func convertValue(v lua.LValue, path map[*lua.LTable]struct{}, depth int) (any, error) {
	switch t := v.(type) {
	case lua.LString:
		return string(t), nil
	case lua.LBool:
		return bool(t), nil
	case lua.LNumber:
		f := float64(t)
		if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
			return int(f), nil
		}
		return f, nil
	case *lua.LTable:
		return convertTable(t, path, depth+1)
	}
	return nil, nil
}

func convertTable(t *lua.LTable, path map[*lua.LTable]struct{}, depth int) (any, error) {
	if _, seen := path[t]; seen {
		return nil, ErrTableCycle
	}
	if depth > MaxTableDepth {
		return nil, fmt.Errorf("scripting: table nested deeper than %d levels", MaxTableDepth)
	}
	path[t] = struct{}{}
	defer delete(path, t)

	n := t.MaxN()
	count := 0
	t.ForEach(func(lua.LValue, lua.LValue) { count++ })
	if n > 0 && n == count {
		out := make([]any, 0, n)
		for i := 1; i <= n; i++ {
			e, err := convertValue(t.RawGetInt(i), path, depth)
			if err != nil {
				return nil, err
			}
			out = append(out, e)
		}
		return out, nil
	}
	out := make(map[string]any, count)
	var firstErr error
	t.ForEach(func(k, val lua.LValue) {
		if firstErr != nil {
			return
		}
		e, err := convertValue(val, path, depth)
		if err != nil {
			firstErr = err
			return
		}
		out[k.String()] = e
	})
	if firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}

// stringList reads a Lua array of strings, skipping other values.
func stringList(v lua.LValue) []string {
	tbl, ok := v.(*lua.LTable)
	if !ok {
		return nil
	}
	var out []string
	for i := 1; i <= tbl.MaxN(); i++ {
		if s, ok := tbl.RawGetInt(i).(lua.LString); ok {
			out = append(out, string(s))
		}
	}
	return out
}
