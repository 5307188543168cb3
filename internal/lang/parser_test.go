package lang

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Parse_ExpressionPrecedence(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	prog, err := Parse("1 + 2 * 3")
	require.NoError(err)
	require.Len(prog.Statements, 1)

	exprStmt, ok := prog.Statements[0].(ExpressionStmt)
	require.True(ok)

	infix, ok := exprStmt.Expr.(InfixedNode)
	require.True(ok)
	assert.Equal(OpAdd, infix.Op)

	rightMul, ok := infix.Right.(InfixedNode)
	require.True(ok)
	assert.Equal(OpMul, rightMul.Op)
}

func Test_Parse_RangeBindsLikeAdditive(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	prog, err := Parse("1 + 2..3 + 4")
	require.NoError(err)
	require.Len(prog.Statements, 1)

	exprStmt := prog.Statements[0].(ExpressionStmt)
	// left-associative at the same tier: ((1+2)..3)+4
	outer, ok := exprStmt.Expr.(InfixedNode)
	require.True(ok)
	assert.Equal(OpAdd, outer.Op)
}

func Test_Parse_FunctionHoisting(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	prog, err := Parse(`
		f()
		fn f() { 1 }
	`)
	require.NoError(err)
	require.Len(prog.Functions, 1)
	assert.Equal("f", prog.Functions[0].Name)
	require.Len(prog.Statements, 1)
}

func Test_Parse_SetVsDefine(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	prog, err := Parse(`
		let x = 1
		x = 2
		x += 1
		x -= 1
	`)
	require.NoError(err)
	require.Len(prog.Statements, 4)

	_, ok := prog.Statements[0].(DefineAndSetStmt)
	require.True(ok)

	set1 := prog.Statements[1].(SetStmt)
	assert.Equal(SetAssign, set1.Op)
	set2 := prog.Statements[2].(SetStmt)
	assert.Equal(SetIncrement, set2.Op)
	set3 := prog.Statements[3].(SetStmt)
	assert.Equal(SetDecrement, set3.Op)
}

func Test_Parse_IfAsStatementAndExpression(t *testing.T) {
	require := require.New(t)

	prog, err := Parse(`if true { 1 } else { 2 }`)
	require.NoError(err)
	require.Len(prog.Statements, 1)
	_, ok := prog.Statements[0].(IfNode)
	require.True(ok)

	prog2, err := Parse(`let x = if true { 1 } else { 2 }`)
	require.NoError(err)
	ds := prog2.Statements[0].(DefineAndSetStmt)
	_, ok = ds.Value.(IfNode)
	require.True(ok)
}

func Test_Parse_While(t *testing.T) {
	require := require.New(t)

	prog, err := Parse(`
		let i = 0
		while i < 3 { i += 1 }
	`)
	require.NoError(err)
	require.Len(prog.Statements, 2)
	_, ok := prog.Statements[1].(WhileStmt)
	require.True(ok)
}

func Test_Parse_For(t *testing.T) {
	require := require.New(t)

	prog, err := Parse(`for let i = 0; i < 3; i += 1 { i }`)
	require.NoError(err)
	require.Len(prog.Statements, 1)
	forStmt, ok := prog.Statements[0].(ForStmt)
	require.True(ok)
	_, ok = forStmt.Init.(DefineAndSetStmt)
	require.True(ok)
}

func Test_Parse_ArrayTableClosureMatch(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	prog, err := Parse(`
		let arr = [1, 2, 3]
		let tbl = #{a: 1, b: 2}
		let f = |x| x + 1
		let m = match 1 { 1 => "one", _ => "other" }
	`)
	require.NoError(err)
	require.Len(prog.Statements, 4)

	arrDef := prog.Statements[0].(DefineAndSetStmt)
	arrNode, ok := arrDef.Value.(ArrayNode)
	require.True(ok)
	assert.Len(arrNode.Elements, 3)

	tblDef := prog.Statements[1].(DefineAndSetStmt)
	tblNode, ok := tblDef.Value.(TableNode)
	require.True(ok)
	assert.Len(tblNode.Entries, 2)

	fnDef := prog.Statements[2].(DefineAndSetStmt)
	valNode, ok := fnDef.Value.(ValueNode)
	require.True(ok)
	assert.Equal(LitClosure, valNode.Kind)
	assert.Equal([]string{"x"}, valNode.ClosureParams)

	matchDef := prog.Statements[3].(DefineAndSetStmt)
	mapExpr, ok := matchDef.Value.(MapExpression)
	require.True(ok)
	assert.Len(mapExpr.Arms, 2)
}

func Test_Parse_PostfixIndexDotDebugPrint(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	prog, err := Parse(`a[0].b?!`)
	require.NoError(err)
	require.Len(prog.Statements, 1)

	stmt := prog.Statements[0].(ExpressionStmt)
	outer, ok := stmt.Expr.(PostfixedNode)
	require.True(ok)
	assert.Equal(PostfixPrint, outer.Kind)

	inner, ok := outer.Operand.(PostfixedNode)
	require.True(ok)
	assert.Equal(PostfixDebug, inner.Kind)

	dotNode, ok := inner.Operand.(PostfixedNode)
	require.True(ok)
	assert.Equal(PostfixDotIndex, dotNode.Kind)
	assert.Equal("b", dotNode.FieldName)
}

func Test_Parse_SyntaxErrorOnUnexpectedToken(t *testing.T) {
	assert := assert.New(t)

	_, err := Parse("1 +")
	assert.Error(err)

	var synErr SyntaxError
	assert.ErrorAs(err, &synErr)
}
