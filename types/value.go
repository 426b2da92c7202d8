package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ValueKind is the variant tag of a Value.
type ValueKind int

const (
	KindNone ValueKind = iota
	KindBool
	KindInt
	KindString
)

func (k ValueKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindString:
		return "string"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is the closed union of data that crosses the script boundary.
// The zero Value is None. Ints beyond ±2^53 reach scripts as opaque values
// that can be stored and passed back to natives but not used in arithmetic.
type Value struct {
	Kind ValueKind
	Bool bool
	Int  int64
	Str  string
}

func None() Value            { return Value{} }
func Bool(b bool) Value      { return Value{Kind: KindBool, Bool: b} }
func Int(i int64) Value      { return Value{Kind: KindInt, Int: i} }
func String(s string) Value  { return Value{Kind: KindString, Str: s} }
func (v Value) IsNone() bool { return v.Kind == KindNone }

// Equal reports whether v and o hold the same variant and payload.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindBool:
		return v.Bool == o.Bool
	case KindInt:
		return v.Int == o.Int
	case KindString:
		return v.Str == o.Str
	default:
		return true
	}
}

func (v Value) String() string {
	switch v.Kind {
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindString:
		return strconv.Quote(v.Str)
	default:
		return "none"
	}
}

// MarshalJSON encodes None as null and the other variants as their JSON
// scalar.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindNone:
		return []byte("null"), nil
	case KindBool:
		return json.Marshal(v.Bool)
	case KindInt:
		return json.Marshal(v.Int)
	case KindString:
		return json.Marshal(v.Str)
	default:
		return nil, fmt.Errorf("marshal value: unknown kind %d", v.Kind)
	}
}

// UnmarshalJSON accepts null, booleans, integral numbers and strings.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	switch x := raw.(type) {
	case nil:
		*v = None()
	case bool:
		*v = Bool(x)
	case string:
		*v = String(x)
	case json.Number:
		i, err := x.Int64()
		if err != nil {
			return fmt.Errorf("unmarshal value: %q is not an integer", x.String())
		}
		*v = Int(i)
	default:
		return fmt.Errorf("unmarshal value: unsupported JSON %s", bytes.TrimSpace(data))
	}
	return nil
}
