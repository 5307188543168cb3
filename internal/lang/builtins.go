package lang

import (
	"fmt"
	"strconv"
)

// builtin describes one default native function: its name and
// implementation. It mirrors the arity-table approach of a richer
// builtin registry, but since every native closure here receives the
// full argument slice already (missing args come through as Nil per the
// call contract in eval.go), there is no separate required/optional
// arity to track.
type builtin struct {
	name string
	fn   func(args []Value) Value
}

// defaultBuiltins is the standard native-function set every new Runtime
// is seeded with via RegisterDefaults. Embedders that want a bare
// Runtime with none of these can simply not call RegisterDefaults.
var defaultBuiltins = []builtin{
	{"len", builtinLen},
	{"type", builtinType},
	{"to_string", builtinToString},
	{"to_number", builtinToNumber},
	{"print", builtinPrint},
	{"keys", builtinKeys},
	{"values", builtinValues},
	{"entries", builtinEntries},
}

// RegisterDefaults registers the standard native-function set (len,
// type, to_string, to_number, print, keys, values, entries) into the
// runtime's global scope.
func (rt *Runtime) RegisterDefaults() {
	for _, b := range defaultBuiltins {
		rt.RegisterNative(b.name, b.fn)
	}
}

func arg(args []Value, i int) Value {
	if i < 0 || i >= len(args) {
		return NilValue
	}
	return args[i]
}

func builtinLen(args []Value) Value {
	v := arg(args, 0)
	switch v.Type() {
	case Array:
		return NumberValue(float64(len(v.Elements())))
	case Table:
		return NumberValue(float64(len(v.Entries())))
	case String:
		return NumberValue(float64(len([]rune(v.Str()))))
	default:
		return NilValue
	}
}

func builtinType(args []Value) Value {
	return StringValue(arg(args, 0).Type().String())
}

func builtinToString(args []Value) Value {
	return StringValue(asString(arg(args, 0)))
}

func builtinToNumber(args []Value) Value {
	v := arg(args, 0)
	switch v.Type() {
	case Number:
		return v
	case String:
		n, err := strconv.ParseFloat(v.Str(), 64)
		if err != nil {
			return NilValue
		}
		return NumberValue(n)
	case Boolean:
		if v.Bool() {
			return NumberValue(1)
		}
		return NumberValue(0)
	default:
		return NilValue
	}
}

// builtinPrint gives scripts an explicit print(...) call alongside the
// postfix '!' operator (eval.go), for cases where applying '!' to an
// arbitrary expression is awkward syntactically.
func builtinPrint(args []Value) Value {
	v := arg(args, 0)
	fmt.Println(FormatPrint(v))
	return v
}

func builtinKeys(args []Value) Value  { return hashKeys(arg(args, 0)) }
func builtinValues(args []Value) Value { return hashValues(arg(args, 0)) }
func builtinEntries(args []Value) Value { return hashEntries(arg(args, 0)) }
