package lang

import (
	"math"
	"strconv"
)

// add implements the add operator: Number+Number, String+String
// (concatenation), and Array+X (push X onto a copy of the array).
// Anything else yields Nil.
func add(lhs, rhs Value) Value {
	switch {
	case lhs.Type() == Number && rhs.Type() == Number:
		return NumberValue(lhs.Num() + rhs.Num())
	case lhs.Type() == String && rhs.Type() == String:
		return StringValue(lhs.Str() + rhs.Str())
	case lhs.Type() == Array:
		elems := append(append([]Value{}, lhs.Elements()...), rhs)
		return ArrayValue(elems)
	default:
		return NilValue
	}
}

func sub(lhs, rhs Value) Value {
	if lhs.Type() == Number && rhs.Type() == Number {
		return NumberValue(lhs.Num() - rhs.Num())
	}
	return NilValue
}

func mul(lhs, rhs Value) Value {
	if lhs.Type() == Number && rhs.Type() == Number {
		return NumberValue(lhs.Num() * rhs.Num())
	}
	return NilValue
}

func div(lhs, rhs Value) Value {
	if lhs.Type() == Number && rhs.Type() == Number {
		return NumberValue(lhs.Num() / rhs.Num())
	}
	return NilValue
}

func negate(v Value) Value {
	if v.Type() == Number {
		return NumberValue(-v.Num())
	}
	return NilValue
}

// eq implements the eq operator: it is total and never returns Nil.
func eq(lhs, rhs Value) Value {
	return BooleanValue(lhs.Equal(rhs))
}

func neq(lhs, rhs Value) Value {
	return BooleanValue(!lhs.Equal(rhs))
}

func gt(lhs, rhs Value) Value {
	if lhs.Type() == Number && rhs.Type() == Number {
		return BooleanValue(lhs.Num() > rhs.Num())
	}
	return NilValue
}

func lt(lhs, rhs Value) Value {
	if lhs.Type() == Number && rhs.Type() == Number {
		return BooleanValue(lhs.Num() < rhs.Num())
	}
	return NilValue
}

// gte and lte are implemented directly rather than as the boolean
// complement of lt/gt. The complement approach panics on non-numeric
// operands once lt/gt returns Nil instead of a Boolean; implementing
// them directly keeps the same Nil-on-non-numeric contract as every
// other comparison.
func gte(lhs, rhs Value) Value {
	if lhs.Type() == Number && rhs.Type() == Number {
		return BooleanValue(lhs.Num() >= rhs.Num())
	}
	return NilValue
}

func lte(lhs, rhs Value) Value {
	if lhs.Type() == Number && rhs.Type() == Number {
		return BooleanValue(lhs.Num() <= rhs.Num())
	}
	return NilValue
}

func and(lhs, rhs Value) Value {
	if lhs.Type() == Boolean && rhs.Type() == Boolean {
		return BooleanValue(lhs.Bool() && rhs.Bool())
	}
	return NilValue
}

func or(lhs, rhs Value) Value {
	if lhs.Type() == Boolean && rhs.Type() == Boolean {
		return BooleanValue(lhs.Bool() || rhs.Bool())
	}
	return NilValue
}

func not(v Value) Value {
	return BooleanValue(!v.AsBool())
}

// asString stringifies any value for use by the split/join operators;
// it is deliberately permissive, unlike the print/debug formatters in
// format.go.
func asString(v Value) string {
	switch v.Type() {
	case String:
		return v.Str()
	case Number:
		return formatNumber(v.Num())
	case Boolean:
		if v.Bool() {
			return "true"
		}
		return "false"
	case Nil:
		return "nil"
	default:
		return "????"
	}
}

func dollar(lhs, rhs Value) Value {
	switch {
	case lhs.Type() == String && rhs.Type() == String:
		parts := splitAll(lhs.Str(), rhs.Str())
		elems := make([]Value, len(parts))
		for i, p := range parts {
			elems[i] = StringValue(p)
		}
		return ArrayValue(elems)
	case lhs.Type() == Array && rhs.Type() == String:
		strs := make([]string, len(lhs.Elements()))
		for i, e := range lhs.Elements() {
			strs[i] = asString(e)
		}
		return StringValue(joinAll(strs, rhs.Str()))
	default:
		return NilValue
	}
}

func doubleDollar(lhs, rhs Value) Value {
	switch {
	case lhs.Type() == String && rhs.Type() == String:
		before, after, found := splitOnce(lhs.Str(), rhs.Str())
		if !found {
			return ArrayValue([]Value{StringValue(lhs.Str())})
		}
		return ArrayValue([]Value{StringValue(before), StringValue(after)})
	case lhs.Type() == Array && rhs.Type() == String:
		strs := make([]string, len(lhs.Elements()))
		for i, e := range lhs.Elements() {
			strs[i] = asString(e)
		}
		var out []string
		switch len(strs) {
		case 0:
			out = []string{}
		case 1:
			out = []string{strs[0]}
		default:
			out = append([]string{strs[0] + rhs.Str() + strs[1]}, strs[2:]...)
		}
		elems := make([]Value, len(out))
		for i, s := range out {
			elems[i] = StringValue(s)
		}
		return ArrayValue(elems)
	default:
		return NilValue
	}
}

func splitAll(s, sep string) []string {
	if sep == "" {
		out := make([]string, 0, len(s))
		for _, r := range s {
			out = append(out, string(r))
		}
		return out
	}
	var out []string
	for {
		i := indexOf(s, sep)
		if i < 0 {
			out = append(out, s)
			return out
		}
		out = append(out, s[:i])
		s = s[i+len(sep):]
	}
}

func splitOnce(s, sep string) (before, after string, found bool) {
	i := indexOf(s, sep)
	if i < 0 {
		return s, "", false
	}
	return s[:i], s[i+len(sep):], true
}

func joinAll(strs []string, sep string) string {
	out := ""
	for i, s := range strs {
		if i > 0 {
			out += sep
		}
		out += s
	}
	return out
}

func indexOf(s, sub string) int {
	if sub == "" {
		return -1
	}
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}

func exclusiveRange(lhs, rhs Value) Value {
	if lhs.Type() == Number && rhs.Type() == Number {
		return ExclusiveRangeValue(lhs.Num(), rhs.Num())
	}
	return NilValue
}

func inclusiveRange(lhs, rhs Value) Value {
	if lhs.Type() == Number && rhs.Type() == Number {
		return InclusiveRangeValue(lhs.Num(), rhs.Num())
	}
	return NilValue
}

func hashKeys(v Value) Value {
	if v.Type() != Table {
		return NilValue
	}
	elems := make([]Value, 0, len(v.Entries()))
	for k := range v.Entries() {
		elems = append(elems, StringValue(k))
	}
	return ArrayValue(elems)
}

func hashValues(v Value) Value {
	if v.Type() != Table {
		return NilValue
	}
	elems := make([]Value, 0, len(v.Entries()))
	for _, val := range v.Entries() {
		elems = append(elems, val)
	}
	return ArrayValue(elems)
}

func hashEntries(v Value) Value {
	if v.Type() != Table {
		return NilValue
	}
	elems := make([]Value, 0, len(v.Entries()))
	for k, val := range v.Entries() {
		elems = append(elems, ArrayValue([]Value{StringValue(k), val}))
	}
	return ArrayValue(elems)
}

// toIndex normalizes i against len per the non-negative-direct /
// negative-from-end rule. The second return is false if i is out of
// bounds either way.
func toIndex(i float64, length int) (int, bool) {
	idx := int(i)
	if idx >= 0 && idx < length {
		return idx, true
	}
	idx = length + idx
	if idx >= 0 && idx < length {
		return idx, true
	}
	return 0, false
}

func index(v, idx Value) Value {
	switch v.Type() {
	case Array:
		elems := v.Elements()
		switch idx.Type() {
		case Number:
			i, ok := toIndex(idx.Num(), len(elems))
			if !ok {
				return NilValue
			}
			return elems[i]
		case ExclusiveRange:
			start, end := idx.RangeBounds()
			return subArray(elems, start, end-1)
		case InclusiveRange:
			start, end := idx.RangeBounds()
			return subArray(elems, start, end)
		case String:
			n, err := strconv.ParseFloat(idx.Str(), 64)
			if err != nil {
				return NilValue
			}
			return index(v, NumberValue(n))
		default:
			return NilValue
		}
	case Table:
		if idx.Type() != String {
			return NilValue
		}
		val, ok := v.Entries()[idx.Str()]
		if !ok {
			return NilValue
		}
		return val
	default:
		return NilValue
	}
}

func subArray(elems []Value, start, end float64) Value {
	s, ok1 := toIndex(start, len(elems))
	e, ok2 := toIndex(end, len(elems))
	if !ok1 || !ok2 || e < s {
		return NilValue
	}
	return ArrayValue(elems[s : e+1])
}

func dotIndex(v Value, key string) Value {
	return index(v, StringValue(key))
}

// modulo implements the arithmetic Number%Number remainder and the
// supplemental Array%Closure filter. callClosure invokes a Closure value
// with a single argument; it is supplied by the evaluator so this file
// does not need to know how Script closures push scopes.
func modulo(lhs, rhs Value, callClosure func(closure Value, args []Value) Value) Value {
	switch {
	case lhs.Type() == Number && rhs.Type() == Number:
		return NumberValue(math.Mod(lhs.Num(), rhs.Num()))
	case lhs.Type() == Array && rhs.Type() == Closure:
		var kept []Value
		for _, elem := range lhs.Elements() {
			if callClosure(rhs, []Value{elem}).AsBool() {
				kept = append(kept, elem)
			}
		}
		return ArrayValue(kept)
	default:
		return NilValue
	}
}
