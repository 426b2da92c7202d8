package script

import (
	_ "embed"
	"fmt"
	"io"

	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"
)

//go:embed prelude.lua
var preludeSource string

//go:embed shim.lua
var shimSource string

// newSandbox creates a VM with only the safe subset of the standard
// libraries and the bootstrap fragments loaded.
func newSandbox() (*lua.LState, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})

	openSafeLibs(L)
	sandbox(L)

	for _, frag := range []struct{ name, src string }{
		{"prelude", preludeSource},
		{"shim", shimSource},
	} {
		if err := L.DoString(frag.src); err != nil {
			L.Close()
			return nil, fmt.Errorf("loading %s: %w", frag.name, err)
		}
	}
	return L, nil
}

// openSafeLibs opens only the safe subset of Lua standard libraries.
// The coroutine library is hidden again by the shim once it has captured
// coroutine.yield.
func openSafeLibs(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
	lua.OpenCoroutine(L)
	L.SetTop(0)
}

// sandbox removes dangerous globals and functions.
func sandbox(L *lua.LState) {
	dangerous := []string{
		"dofile", "loadfile", "load", "loadstring",
		"rawset", "rawget", "rawequal",
		"collectgarbage",
	}
	for _, name := range dangerous {
		L.SetGlobal(name, lua.LNil)
	}

	// Remove math.randomseed to preserve determinism.
	if tbl, ok := L.GetGlobal("math").(*lua.LTable); ok {
		tbl.RawSetString("randomseed", lua.LNil)
	}
}

// Compile parses and compiles source without running it.
func Compile(name string, r io.Reader) (*lua.FunctionProto, error) {
	chunk, err := parse.Parse(r, name)
	if err != nil {
		return nil, &CompileError{Script: name, Err: err}
	}
	proto, err := lua.Compile(chunk, name)
	if err != nil {
		return nil, &CompileError{Script: name, Err: err}
	}
	return proto, nil
}
