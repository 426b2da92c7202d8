// Package bridge converts values between the host and the Lua runtime.
package bridge

import (
	"errors"
	"fmt"
	"math"

	"github.com/nathoo/ruinscript/types"
	lua "github.com/yuin/gopher-lua"
)

var ErrUnsupported = errors.New("unsupported script value")

// Lua numbers are float64. Ints beyond this magnitude travel to scripts as
// userdata holding a wideInt so they come back unchanged.
const maxExactInt = 1 << 53

type wideInt int64

// ToHost converts a Lua value to a host Value. Tables, functions, foreign
// userdata, threads and non-integral numbers fail with ErrUnsupported.
func ToHost(v lua.LValue) (types.Value, error) {
	switch val := v.(type) {
	case *lua.LNilType:
		return types.None(), nil
	case lua.LBool:
		return types.Bool(bool(val)), nil
	case lua.LString:
		return types.String(string(val)), nil
	case lua.LNumber:
		n, ok := integral(val)
		if !ok {
			return types.None(), fmt.Errorf("number %v is not an integer: %w", float64(val), ErrUnsupported)
		}
		return types.Int(n), nil
	case *lua.LUserData:
		if n, ok := val.Value.(wideInt); ok {
			return types.Int(int64(n)), nil
		}
		return types.None(), fmt.Errorf("%s: %w", v.Type().String(), ErrUnsupported)
	default:
		return types.None(), fmt.Errorf("%s: %w", v.Type().String(), ErrUnsupported)
	}
}

// ToScript converts a host Value to a Lua value.
func ToScript(v types.Value) lua.LValue {
	switch v.Kind {
	case types.KindBool:
		return lua.LBool(v.Bool)
	case types.KindInt:
		if v.Int > maxExactInt || v.Int < -maxExactInt {
			return &lua.LUserData{Value: wideInt(v.Int), Metatable: lua.LNil}
		}
		return lua.LNumber(v.Int)
	case types.KindString:
		return lua.LString(v.Str)
	default:
		return lua.LNil
	}
}

// ArgsTable builds the argument table passed to a script entry point.
func ArgsTable(L *lua.LState, args map[string]types.Value) *lua.LTable {
	tbl := L.CreateTable(0, len(args))
	for k, v := range args {
		tbl.RawSetString(k, ToScript(v))
	}
	return tbl
}

// ToWire converts a Lua value into a JSON-compatible tree: nil, bool, int64,
// float64, string, []any or map[string]any. Tables with a sequence part
// become arrays, the empty table becomes an empty array, and other tables
// become objects. Functions, userdata and non-string keys fail.
func ToWire(v lua.LValue) (any, error) {
	return toWire(v, 0)
}

const maxWireDepth = 32

func toWire(v lua.LValue, depth int) (any, error) {
	if depth > maxWireDepth {
		return nil, fmt.Errorf("table nesting deeper than %d: %w", maxWireDepth, ErrUnsupported)
	}
	switch val := v.(type) {
	case *lua.LNilType:
		return nil, nil
	case lua.LBool:
		return bool(val), nil
	case lua.LString:
		return string(val), nil
	case lua.LNumber:
		if n, ok := integral(val); ok {
			return n, nil
		}
		return float64(val), nil
	case *lua.LUserData:
		if n, ok := val.Value.(wideInt); ok {
			return int64(n), nil
		}
		return nil, fmt.Errorf("%s: %w", v.Type().String(), ErrUnsupported)
	case *lua.LTable:
		if maxN := val.MaxN(); maxN > 0 {
			arr := make([]any, 0, maxN)
			for i := 1; i <= maxN; i++ {
				item, err := toWire(val.RawGetInt(i), depth+1)
				if err != nil {
					return nil, err
				}
				arr = append(arr, item)
			}
			return arr, nil
		}
		m := map[string]any{}
		var err error
		val.ForEach(func(k, item lua.LValue) {
			if err != nil {
				return
			}
			ks, ok := k.(lua.LString)
			if !ok {
				err = fmt.Errorf("table key of type %s: %w", k.Type().String(), ErrUnsupported)
				return
			}
			var w any
			w, err = toWire(item, depth+1)
			m[string(ks)] = w
		})
		if err != nil {
			return nil, err
		}
		if len(m) == 0 {
			return []any{}, nil
		}
		return m, nil
	default:
		return nil, fmt.Errorf("%s: %w", v.Type().String(), ErrUnsupported)
	}
}

func integral(n lua.LNumber) (int64, bool) {
	f := float64(n)
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}
