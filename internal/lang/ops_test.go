package lang

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Add(t *testing.T) {
	testCases := []struct {
		name   string
		lhs    Value
		rhs    Value
		expect Value
	}{
		{"number+number", NumberValue(1), NumberValue(2), NumberValue(3)},
		{"string+string", StringValue("foo"), StringValue("bar"), StringValue("foobar")},
		{"array+number pushes single element", ArrayValue([]Value{NumberValue(1)}), NumberValue(2), ArrayValue([]Value{NumberValue(1), NumberValue(2)})},
		{"array+array pushes the array as one element", ArrayValue(nil), ArrayValue([]Value{NumberValue(1)}), ArrayValue([]Value{ArrayValue([]Value{NumberValue(1)})})},
		{"mismatched types yield nil", NumberValue(1), StringValue("x"), NilValue},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			assert.Equal(tc.expect, add(tc.lhs, tc.rhs))
		})
	}
}

func Test_ComparisonOperators_NilOnNonNumeric(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(NilValue, gt(StringValue("a"), StringValue("b")))
	assert.Equal(NilValue, lt(StringValue("a"), StringValue("b")))
	assert.Equal(NilValue, gte(StringValue("a"), StringValue("b")))
	assert.Equal(NilValue, lte(StringValue("a"), StringValue("b")))
}

func Test_GteLte_DoNotPanicAndMatchDirectComparison(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(BooleanValue(true), gte(NumberValue(2), NumberValue(2)))
	assert.Equal(BooleanValue(true), gte(NumberValue(3), NumberValue(2)))
	assert.Equal(BooleanValue(false), gte(NumberValue(1), NumberValue(2)))

	assert.Equal(BooleanValue(true), lte(NumberValue(2), NumberValue(2)))
	assert.Equal(BooleanValue(true), lte(NumberValue(1), NumberValue(2)))
	assert.Equal(BooleanValue(false), lte(NumberValue(3), NumberValue(2)))
}

func Test_EqIsTotal(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(BooleanValue(true), eq(NilValue, NilValue))
	assert.Equal(BooleanValue(false), eq(NilValue, NumberValue(0)))
	assert.Equal(BooleanValue(false), eq(NumberValue(1), StringValue("1")))
	assert.Equal(BooleanValue(true), eq(StringValue("a"), StringValue("a")))
}

func Test_AndOr_OnlyBooleanOperands(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(BooleanValue(true), and(BooleanValue(true), BooleanValue(true)))
	assert.Equal(BooleanValue(false), and(BooleanValue(true), BooleanValue(false)))
	assert.Equal(NilValue, and(NumberValue(1), BooleanValue(true)))

	assert.Equal(BooleanValue(true), or(BooleanValue(false), BooleanValue(true)))
	assert.Equal(NilValue, or(NumberValue(1), BooleanValue(true)))
}

func Test_Modulo_NumberRemainder(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(NumberValue(1), modulo(NumberValue(7), NumberValue(3), nil))
	assert.Equal(NumberValue(0.5), modulo(NumberValue(2.5), NumberValue(1), nil))
}

func Test_Modulo_ArrayFilter(t *testing.T) {
	assert := assert.New(t)

	arr := ArrayValue([]Value{NumberValue(1), NumberValue(2), NumberValue(3), NumberValue(4)})
	isEven := NativeClosureValue(func(args []Value) Value {
		n := int64(args[0].Num())
		return BooleanValue(n%2 == 0)
	})

	callClosure := func(closure Value, args []Value) Value {
		return closure.ClosureValue().Native(args)
	}

	result := modulo(arr, isEven, callClosure)
	assert.Equal(ArrayValue([]Value{NumberValue(2), NumberValue(4)}), result)
}

func Test_DollarSplitJoin(t *testing.T) {
	assert := assert.New(t)

	split := dollar(StringValue("a,b,c"), StringValue(","))
	assert.Equal(ArrayValue([]Value{StringValue("a"), StringValue("b"), StringValue("c")}), split)

	joined := dollar(ArrayValue([]Value{StringValue("a"), StringValue("b")}), StringValue("-"))
	assert.Equal(StringValue("a-b"), joined)
}

func Test_DoubleDollarSplitOnceJoinFirstTwo(t *testing.T) {
	assert := assert.New(t)

	splitOnceResult := doubleDollar(StringValue("a=b=c"), StringValue("="))
	assert.Equal(ArrayValue([]Value{StringValue("a"), StringValue("b=c")}), splitOnceResult)

	noSep := doubleDollar(StringValue("abc"), StringValue("="))
	assert.Equal(ArrayValue([]Value{StringValue("abc")}), noSep)

	joined := doubleDollar(ArrayValue([]Value{StringValue("a"), StringValue("b"), StringValue("c")}), StringValue("-"))
	assert.Equal(ArrayValue([]Value{StringValue("a-b"), StringValue("c")}), joined)
}

func Test_Index_ArrayAndNegativeWrap(t *testing.T) {
	assert := assert.New(t)

	arr := ArrayValue([]Value{NumberValue(10), NumberValue(20), NumberValue(30)})
	assert.Equal(NumberValue(10), index(arr, NumberValue(0)))
	assert.Equal(NumberValue(30), index(arr, NumberValue(-1)))
	assert.Equal(NilValue, index(arr, NumberValue(99)))
}

func Test_Index_ArrayByRange(t *testing.T) {
	assert := assert.New(t)

	arr := ArrayValue([]Value{NumberValue(1), NumberValue(2), NumberValue(3), NumberValue(4)})
	assert.Equal(
		ArrayValue([]Value{NumberValue(2), NumberValue(3)}),
		index(arr, ExclusiveRangeValue(1, 3)),
	)
	assert.Equal(
		ArrayValue([]Value{NumberValue(2), NumberValue(3), NumberValue(4)}),
		index(arr, InclusiveRangeValue(1, 3)),
	)
}

func Test_Index_TableByString(t *testing.T) {
	assert := assert.New(t)

	tbl := TableValue(map[string]Value{"a": NumberValue(1)})
	assert.Equal(NumberValue(1), index(tbl, StringValue("a")))
	assert.Equal(NilValue, index(tbl, StringValue("missing")))
}

func Test_HashOperators(t *testing.T) {
	assert := assert.New(t)

	tbl := TableValue(map[string]Value{"a": NumberValue(1)})

	keys := hashKeys(tbl)
	assert.Equal(ArrayValue([]Value{StringValue("a")}), keys)

	values := hashValues(tbl)
	assert.Equal(ArrayValue([]Value{NumberValue(1)}), values)

	entries := hashEntries(tbl)
	assert.Equal(ArrayValue([]Value{ArrayValue([]Value{StringValue("a"), NumberValue(1)})}), entries)

	assert.Equal(NilValue, hashKeys(NumberValue(1)))
}
