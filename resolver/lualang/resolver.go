// Package lualang evaluates Lua expressions through gopher-lua. Safe mode
// strips the loaders and the os/io tables, empties the package search
// paths, purges package.loaded down to the pure built-ins and replaces
// require with a whitelist version, so an expression cannot reach process
// I/O. Best-effort name binding does not apply here: Lua reads of unknown
// globals yield nil, so there is no unknown-name failure to retry on and
// evaluation errors are returned as-is.
package lualang

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/confweave/confweave/resolver"
)

// Lang is the name this resolver registers under.
const Lang = "lua"

// unsafeGlobals are the entry points a safe evaluation context removes:
// code loaders first, then the process-facing tables.
var unsafeGlobals = []string{
	"dofile", "loadfile", "load", "loadstring", "os", "io",
}

// safeModules is the require whitelist for safe evaluation: pure built-ins
// with no process access.
var safeModules = map[string]bool{
	"string": true,
	"table":  true,
	"math":   true,
	"bit32":  true,
	"utf8":   true,
}

// safeLoaded lists the package.loaded entries that survive sandboxing.
var safeLoaded = map[string]bool{
	"_G": true, "string": true, "table": true, "math": true,
	"bit32": true, "utf8": true, "package": true,
}

// Resolver evaluates Lua expressions. Each call runs on a fresh state, so
// the resolver itself is stateless and safe for concurrent use.
type Resolver struct{}

// New creates a Lua expression resolver.
func New() *Resolver { return &Resolver{} }

// Resolve implements resolver.Resolver.
func (r *Resolver) Resolve(expr string, opts resolver.Options) (any, error) {
	state := lua.NewState()
	defer state.Close()

	if opts.Safe {
		sandbox(state)
	}

	for name, value := range opts.Scope {
		state.SetGlobal(name, toLua(state, value))
	}

	if err := state.DoString("return (" + expr + ")"); err != nil {
		return nil, fmt.Errorf("lua %q: %w", expr, err)
	}

	result := state.Get(-1)
	state.Pop(1)

	if opts.ToStr {
		return result.String(), nil
	}
	return fromLua(result), nil
}

// sandbox restricts the state to pure computation. Nilling the globals is
// not enough on its own: package.loaded still holds the real os/io tables
// and require can hand them back, so the package table is stripped and
// require replaced with a whitelist version.
func sandbox(state *lua.LState) {
	for _, name := range unsafeGlobals {
		state.SetGlobal(name, lua.LNil)
	}

	pkg, ok := state.GetGlobal("package").(*lua.LTable)
	if !ok {
		state.SetGlobal("require", lua.LNil)
		return
	}

	// No module loading from disk.
	state.SetField(pkg, "path", lua.LString(""))
	state.SetField(pkg, "cpath", lua.LString(""))

	if loaded, ok := state.GetField(pkg, "loaded").(*lua.LTable); ok {
		var purge []string
		loaded.ForEach(func(key, _ lua.LValue) {
			if ks, ok := key.(lua.LString); ok && !safeLoaded[string(ks)] {
				purge = append(purge, string(ks))
			}
		})
		for _, key := range purge {
			loaded.RawSetString(key, lua.LNil)
		}
	}

	originalRequire := state.GetGlobal("require")
	state.SetGlobal("require", state.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		if !safeModules[name] {
			L.RaiseError("module %q is not available in a safe expression", name)
			return 0
		}
		L.Push(originalRequire)
		L.Push(lua.LString(name))
		L.Call(1, 1)
		return 1
	}))
}

// toLua converts a native Go value into a Lua value.
func toLua(state *lua.LState, v any) lua.LValue {
	switch tv := v.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(tv)
	case int:
		return lua.LNumber(tv)
	case int64:
		return lua.LNumber(tv)
	case float64:
		return lua.LNumber(tv)
	case string:
		return lua.LString(tv)
	case []any:
		table := state.NewTable()
		for _, item := range tv {
			table.Append(toLua(state, item))
		}
		return table
	case map[string]any:
		table := state.NewTable()
		for k, item := range tv {
			state.SetField(table, k, toLua(state, item))
		}
		return table
	default:
		return lua.LString(fmt.Sprintf("%v", tv))
	}
}

// fromLua converts a Lua value back into its native Go form. Tables with a
// dense integer sequence become slices, anything else a string-keyed map.
func fromLua(v lua.LValue) any {
	switch tv := v.(type) {
	case *lua.LNilType:
		return nil
	case lua.LBool:
		return bool(tv)
	case lua.LNumber:
		f := float64(tv)
		if f == float64(int64(f)) {
			return int64(f)
		}
		return f
	case lua.LString:
		return string(tv)
	case *lua.LTable:
		if n := tv.Len(); n > 0 {
			out := make([]any, 0, n)
			for i := 1; i <= n; i++ {
				out = append(out, fromLua(tv.RawGetInt(i)))
			}
			return out
		}
		out := make(map[string]any)
		tv.ForEach(func(key, value lua.LValue) {
			out[key.String()] = fromLua(value)
		})
		return out
	default:
		return v.String()
	}
}
