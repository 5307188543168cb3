package lang

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func runScript(t *testing.T, src string) Value {
	t.Helper()
	prog, err := Parse(src)
	require.NoError(t, err)
	rt := NewRuntime()
	rt.RegisterDefaults()
	return rt.Run(prog)
}

func Test_Eval_Arithmetic(t *testing.T) {
	require := require.New(t)
	require.Equal(NumberValue(7), runScript(t, "1 + 2 * 3"))
}

func Test_Eval_BlockYieldsLastStatement(t *testing.T) {
	require := require.New(t)
	require.Equal(NumberValue(3), runScript(t, "{ 1 2 3 }"))
}

func Test_Eval_IfExpression(t *testing.T) {
	require := require.New(t)
	require.Equal(StringValue("yes"), runScript(t, `if true { "yes" } else { "no" }`))
	require.Equal(StringValue("no"), runScript(t, `if false { "yes" } else { "no" }`))
	require.Equal(NilValue, runScript(t, `if false { "yes" }`))
}

func Test_Eval_WhileLoop(t *testing.T) {
	require := require.New(t)
	require.Equal(NumberValue(5), runScript(t, `
		let i = 0
		while i < 5 { i += 1 }
		i
	`))
}

func Test_Eval_ForLoop(t *testing.T) {
	require := require.New(t)
	require.Equal(NumberValue(10), runScript(t, `
		let sum = 0
		for let i = 1; i <= 4; i += 1 { sum += i }
		sum
	`))
}

func Test_Eval_FunctionCallAndHoisting(t *testing.T) {
	require := require.New(t)
	require.Equal(NumberValue(6), runScript(t, `
		double(3)
		fn double(x) { x * 2 }
	`))
}

func Test_Eval_UnresolvedCallYieldsNilNotError(t *testing.T) {
	require := require.New(t)
	require.Equal(NilValue, runScript(t, `nonexistent_function(1, 2)`))
}

func Test_Eval_ClosureIsDynamicallyScoped(t *testing.T) {
	require := require.New(t)
	// the closure references `y`, which is not in scope where the
	// closure literal is written but IS in scope at the call site - this
	// only works under dynamic scoping.
	require.Equal(NumberValue(42), runScript(t, `
		fn apply(f) { f() }
		fn withY() {
			let y = 42
			apply(|| y)
		}
		withY()
	`))
}

func Test_Eval_ClosureParamClobbersOuterBinding(t *testing.T) {
	require := require.New(t)
	// f's param n has no prior binding in its own (empty) call scope, so
	// Set falls through to the global scope and the call's argument
	// clobbers the outer n - this is the dynamic-scope behavior the
	// original source exhibits, not lexical shadowing.
	require.Equal(NumberValue(5), runScript(t, `
		let n = 100
		fn f(n) { n }
		f(5)
		n
	`))
}

func Test_Eval_MatchExpression(t *testing.T) {
	require := require.New(t)
	require.Equal(StringValue("two"), runScript(t, `
		match 2 {
			1 => "one",
			2 => "two",
			_ => "other"
		}
	`))
	require.Equal(StringValue("other"), runScript(t, `
		match 99 {
			1 => "one",
			_ => "other"
		}
	`))
}

func Test_Eval_MatchExpression_SemicolonSeparatedArms(t *testing.T) {
	require := require.New(t)
	require.Equal(StringValue("small"), runScript(t, `match 2 { 1 => "one"; 2, 3 => "small"; _ => "big" }`))
}

func Test_Eval_ArrayAndTableLiterals(t *testing.T) {
	require := require.New(t)

	require.Equal(NumberValue(2), runScript(t, `[1, 2, 3][1]`))
	require.Equal(NumberValue(5), runScript(t, `#{a: 5, b: 6}.a`))
}

func Test_Eval_TableDuplicateKeyLastWriteWins(t *testing.T) {
	require := require.New(t)
	require.Equal(NumberValue(2), runScript(t, `#{a: 1, a: 2}.a`))
}

func Test_Eval_SetOnUndeclaredCreatesGlobal(t *testing.T) {
	require := require.New(t)
	require.Equal(NumberValue(5), runScript(t, `
		{ g = 5 }
		g
	`))
}

func Test_Eval_Builtins(t *testing.T) {
	require := require.New(t)

	require.Equal(NumberValue(3), runScript(t, `len([1, 2, 3])`))
	require.Equal(StringValue("number"), runScript(t, `type(1)`))
	require.Equal(NumberValue(42), runScript(t, `to_number("42")`))
	require.Equal(StringValue("5"), runScript(t, `to_string(5)`))
}

func Test_Eval_NoShortCircuitAndOr(t *testing.T) {
	require := require.New(t)
	// both sides must be Boolean for and/or to produce a result at all;
	// if either operand had been skipped this would panic/misbehave
	// rather than yield Nil.
	require.Equal(NilValue, runScript(t, `1 and true`))
}
