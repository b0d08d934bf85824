package loader

import (
	"slices"
	"strings"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/OranPie/rulatro/engine/rules"
	"github.com/OranPie/rulatro/types"
)

// registerAPI registers the globals a mod script may call.
func registerAPI(L *lua.LState, m *LuaMod) {
	// on("trigger", "pre"|"post", fn) or on("trigger", fn) for post.
	L.SetGlobal("on", L.NewFunction(func(L *lua.LState) int {
		trigger := types.Trigger(strings.ToLower(L.CheckString(1)))
		if !slices.Contains(types.Triggers, trigger) {
			L.ArgError(1, "unknown trigger "+string(trigger))
			return 0
		}
		phase := rules.ModPost
		var fn *lua.LFunction
		if L.GetTop() >= 3 {
			phase = rules.ModPhase(strings.ToLower(L.CheckString(2)))
			fn = L.CheckFunction(3)
		} else {
			fn = L.CheckFunction(2)
		}
		if phase != rules.ModPre && phase != rules.ModPost {
			L.ArgError(2, "phase must be pre or post")
			return 0
		}
		key := hookKey{trigger: trigger, phase: phase}
		m.hooks[key] = append(m.hooks[key], fn)
		return 0
	}))

	// log("message") writes to the engine log at debug level.
	L.SetGlobal("log", L.NewFunction(func(L *lua.LState) int {
		m.log.Debug(L.CheckString(1), zap.String("mod", m.name))
		return 0
	}))
}

// openSafeLibs opens only the safe subset of Lua standard libraries.
func openSafeLibs(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// sandbox removes dangerous globals and routes math.random through the
// run RNG so scripted effects replay identically.
func sandbox(L *lua.LState, m *LuaMod) {
	dangerous := []string{
		"dofile", "loadfile", "load", "loadstring", "require",
		"rawset", "rawget", "rawequal",
		"collectgarbage", "module",
	}
	for _, name := range dangerous {
		L.SetGlobal(name, lua.LNil)
	}

	mathTbl, ok := L.GetGlobal("math").(*lua.LTable)
	if !ok {
		return
	}
	mathTbl.RawSetString("randomseed", lua.LNil)
	mathTbl.RawSetString("random", L.NewFunction(func(L *lua.LState) int {
		if m.roll == nil {
			L.RaiseError("math.random is only available inside hooks")
			return 0
		}
		switch L.GetTop() {
		case 0:
			const span = 1 << 30
			L.Push(lua.LNumber(float64(m.roll(span)-1) / span))
		case 1:
			hi := L.CheckInt(1)
			if hi < 1 {
				L.ArgError(1, "interval is empty")
				return 0
			}
			L.Push(lua.LNumber(m.roll(hi)))
		default:
			lo, hi := L.CheckInt(1), L.CheckInt(2)
			if hi < lo {
				L.ArgError(2, "interval is empty")
				return 0
			}
			L.Push(lua.LNumber(lo + m.roll(hi-lo+1) - 1))
		}
		return 1
	}))
}

// getString returns a string field from a Lua table, or "" if missing.
// Numbers are formatted as Lua prints them.
func getString(tbl *lua.LTable, key string) string {
	switch v := tbl.RawGetString(key).(type) {
	case lua.LString:
		return string(v)
	case lua.LNumber:
		return v.String()
	}
	return ""
}

// getTable returns a table field from a Lua table, or nil if missing.
func getTable(tbl *lua.LTable, key string) *lua.LTable {
	if t, ok := tbl.RawGetString(key).(*lua.LTable); ok {
		return t
	}
	return nil
}

// tableList returns the array part of a table.
func tableList(tbl *lua.LTable) []lua.LValue {
	if tbl == nil {
		return nil
	}
	out := make([]lua.LValue, 0, tbl.MaxN())
	for i := 1; i <= tbl.MaxN(); i++ {
		out = append(out, tbl.RawGetInt(i))
	}
	return out
}
