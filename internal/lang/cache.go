package lang

import (
	"fmt"

	"github.com/dekarrin/rezi"
)

// This file lets a parsed Program round-trip through bytes so a caller
// doesn't have to re-lex and re-parse source it has already seen, grounded
// on sqlite.go's convertToDB_GameStatePtr/convertFromDB_GameStatePtr
// rezi.EncBinary/DecBinary pattern. rezi encodes arbitrary struct/slice/map
// trees by reflection, but it cannot reflect through the Statement and
// Expression interfaces the real AST is built from, so MarshalBinary first
// lowers a Program into an interface-free "wire" shape (plain structs and
// pointers only, one per node kind, picked out by a Kind tag) and hands
// that to rezi. UnmarshalBinary does the reverse.

// MarshalBinary encodes a Program to bytes via rezi.
func (p Program) MarshalBinary() ([]byte, error) {
	w := wireProgram{
		Statements: wireStatements(p.Statements),
		Functions:  wireFunctions(p.Functions),
	}
	return rezi.EncBinary(w), nil
}

// UnmarshalBinary decodes a Program previously produced by MarshalBinary.
func (p *Program) UnmarshalBinary(data []byte) error {
	var w wireProgram
	n, err := rezi.DecBinary(data, &w)
	if err != nil {
		return fmt.Errorf("lang: REZI decode: %w", err)
	}
	if n != len(data) {
		return fmt.Errorf("lang: REZI decoded byte count mismatch; only consumed %d/%d bytes", n, len(data))
	}
	p.Statements = w.Statements.toStatements()
	p.Functions = w.Functions.toFunctions()
	return nil
}

type wireProgram struct {
	Statements wireStmtList
	Functions  wireFuncList
}

type wireFunc struct {
	Name       string
	Parameters []string
	Body       *wireExpr
}

type wireFuncList []wireFunc

func wireFunctions(fns []Function) wireFuncList {
	out := make(wireFuncList, len(fns))
	for i, f := range fns {
		out[i] = wireFunc{Name: f.Name, Parameters: f.Parameters, Body: toWireExpr(f.Body)}
	}
	return out
}

func (w wireFuncList) toFunctions() []Function {
	out := make([]Function, len(w))
	for i, f := range w {
		out[i] = Function{Name: f.Name, Parameters: f.Parameters, Body: f.Body.toExpression()}
	}
	return out
}

// wireStmt mirrors Statement: Kind selects which of the other fields is
// populated. Only one of them is ever non-nil/non-zero at a time.
type wireStmt struct {
	Kind StatementType

	ExprStmt *wireExpr // StmtExpression

	SetName  string // StmtSet, StmtDefine, StmtDefineAndSet
	SetOp    SetOp
	SetValue *wireExpr // StmtSet, StmtDefineAndSet

	If *wireIf // StmtIf

	WhileCond *wireExpr // StmtWhile, StmtFor (as Cond)
	Body      *wireStmt // StmtWhile, StmtFor

	ForInit *wireStmt // StmtFor
	ForPost *wireStmt // StmtFor
}

type wireStmtList []wireStmt

func wireStatements(stmts []Statement) wireStmtList {
	out := make(wireStmtList, len(stmts))
	for i, s := range stmts {
		out[i] = *toWireStmt(s)
	}
	return out
}

func (w wireStmtList) toStatements() []Statement {
	out := make([]Statement, len(w))
	for i := range w {
		out[i] = w[i].toStatement()
	}
	return out
}

func toWireStmt(s Statement) *wireStmt {
	if s == nil {
		return nil
	}
	w := &wireStmt{Kind: s.StmtType()}
	switch w.Kind {
	case StmtExpression:
		w.ExprStmt = toWireExpr(s.AsExpressionStmt().Expr)
	case StmtSet:
		ss := s.AsSetStmt()
		w.SetName, w.SetOp, w.SetValue = ss.Name, ss.Op, toWireExpr(ss.Value)
	case StmtDefine:
		w.SetName = s.AsDefineStmt().Name
	case StmtDefineAndSet:
		ds := s.AsDefineAndSetStmt()
		w.SetName, w.SetValue = ds.Name, toWireExpr(ds.Value)
	case StmtIf:
		w.If = toWireIf(s.AsIfStmt())
	case StmtWhile:
		ws := s.AsWhileStmt()
		w.WhileCond, w.Body = toWireExpr(ws.Cond), toWireStmt(ws.Body)
	case StmtFor:
		fs := s.AsForStmt()
		w.ForInit = toWireStmt(fs.Init)
		w.WhileCond = toWireExpr(fs.Cond)
		w.ForPost = toWireStmt(fs.Post)
		w.Body = toWireStmt(fs.Body)
	}
	return w
}

func (w *wireStmt) toStatement() Statement {
	if w == nil {
		return nil
	}
	switch w.Kind {
	case StmtExpression:
		return ExpressionStmt{Expr: w.ExprStmt.toExpression()}
	case StmtSet:
		return SetStmt{Name: w.SetName, Op: w.SetOp, Value: w.SetValue.toExpression()}
	case StmtDefine:
		return DefineStmt{Name: w.SetName}
	case StmtDefineAndSet:
		return DefineAndSetStmt{Name: w.SetName, Value: w.SetValue.toExpression()}
	case StmtIf:
		return w.If.toIfNode()
	case StmtWhile:
		return WhileStmt{Cond: w.WhileCond.toExpression(), Body: w.Body.toStatement()}
	case StmtFor:
		return ForStmt{
			Init: w.ForInit.toStatement(),
			Cond: w.WhileCond.toExpression(),
			Post: w.ForPost.toStatement(),
			Body: w.Body.toStatement(),
		}
	default:
		return ExpressionStmt{Expr: ValueNode{Kind: LitNil}}
	}
}

type wireCondBranch struct {
	Cond *wireExpr
	Body *wireStmt
}

type wireIf struct {
	Branches []wireCondBranch
	HasElse  bool
	Else     *wireStmt
}

func toWireIf(n IfNode) *wireIf {
	branches := make([]wireCondBranch, len(n.Branches))
	for i, b := range n.Branches {
		branches[i] = wireCondBranch{Cond: toWireExpr(b.Cond), Body: toWireStmt(b.Body)}
	}
	w := &wireIf{Branches: branches}
	if n.Else != nil {
		w.HasElse = true
		w.Else = toWireStmt(n.Else)
	}
	return w
}

func (w *wireIf) toIfNode() IfNode {
	branches := make([]CondBranch, len(w.Branches))
	for i, b := range w.Branches {
		branches[i] = CondBranch{Cond: b.Cond.toExpression(), Body: b.Body.toStatement()}
	}
	n := IfNode{Branches: branches}
	if w.HasElse {
		n.Else = w.Else.toStatement()
	}
	return n
}

// wireExpr mirrors Expression the same way wireStmt mirrors Statement.
type wireExpr struct {
	Kind ExpressionType

	Value *wireValue // ExprValue

	Left  *wireExpr // ExprInfixed
	Op    Operator
	Right *wireExpr // ExprInfixed

	PrefixOp      PrefixOp
	PrefixOperand *wireExpr // ExprPrefixed

	PostfixOperand *wireExpr // ExprPostfixed
	PostfixKind    PostfixKind
	IndexExpr      *wireExpr // ExprPostfixed (PostfixIndex)
	FieldName      string    // ExprPostfixed (PostfixDotIndex)

	Name string // ExprIdentifier, ExprFunctionCall

	Block *wireBlock // ExprBlock

	MapInput *wireExpr  // ExprMap
	MapArms  []wireArm  // ExprMap

	CallArgs []wireExpr // ExprFunctionCall

	ArrayElements []wireExpr // ExprArray

	TableEntries []wireTableEntry // ExprTable

	If *wireIf // ExprIf
}

type wireValue struct {
	Kind    LiteralKind
	Number  float64
	Str     string
	Boolean bool

	ClosureParams []string
	ClosureBody   *wireExpr
}

type wireArm struct {
	Cases  []wireExpr
	Result *wireExpr
}

type wireTableEntry struct {
	Key   string
	Value *wireExpr
}

type wireBlock struct {
	Statements wireStmtList
	Functions  wireFuncList
}

func toWireExpr(e Expression) *wireExpr {
	if e == nil {
		return nil
	}
	w := &wireExpr{Kind: e.ExprType()}
	switch w.Kind {
	case ExprValue:
		v := e.AsValueNode()
		w.Value = &wireValue{
			Kind: v.Kind, Number: v.Number, Str: v.Str, Boolean: v.Boolean,
			ClosureParams: v.ClosureParams, ClosureBody: toWireExpr(v.ClosureBody),
		}
	case ExprInfixed:
		n := e.AsInfixedNode()
		w.Left, w.Op, w.Right = toWireExpr(n.Left), n.Op, toWireExpr(n.Right)
	case ExprPrefixed:
		n := e.AsPrefixedNode()
		w.PrefixOp, w.PrefixOperand = n.Op, toWireExpr(n.Operand)
	case ExprPostfixed:
		n := e.AsPostfixedNode()
		w.PostfixOperand, w.PostfixKind = toWireExpr(n.Operand), n.Kind
		w.IndexExpr, w.FieldName = toWireExpr(n.IndexExpr), n.FieldName
	case ExprIdentifier:
		w.Name = e.AsIdentifierNode().Name
	case ExprBlock:
		b := e.AsBlockNode()
		w.Block = &wireBlock{Statements: wireStatements(b.Statements), Functions: wireFunctions(b.Functions)}
	case ExprMap:
		m := e.AsMapNode()
		w.MapInput = toWireExpr(m.Input)
		w.MapArms = make([]wireArm, len(m.Arms))
		for i, a := range m.Arms {
			cases := make([]wireExpr, len(a.Cases))
			for j, c := range a.Cases {
				cases[j] = *toWireExpr(c)
			}
			w.MapArms[i] = wireArm{Cases: cases, Result: toWireExpr(a.Result)}
		}
	case ExprFunctionCall:
		c := e.AsFunctionCallNode()
		w.Name = c.Name
		w.CallArgs = make([]wireExpr, len(c.Args))
		for i, a := range c.Args {
			w.CallArgs[i] = *toWireExpr(a)
		}
	case ExprArray:
		a := e.AsArrayNode()
		w.ArrayElements = make([]wireExpr, len(a.Elements))
		for i, el := range a.Elements {
			w.ArrayElements[i] = *toWireExpr(el)
		}
	case ExprTable:
		t := e.AsTableNode()
		w.TableEntries = make([]wireTableEntry, len(t.Entries))
		for i, en := range t.Entries {
			w.TableEntries[i] = wireTableEntry{Key: en.Key, Value: toWireExpr(en.Value)}
		}
	case ExprIf:
		w.If = toWireIf(e.AsIfNode())
	}
	return w
}

func (w *wireExpr) toExpression() Expression {
	if w == nil {
		return ValueNode{Kind: LitNil}
	}
	switch w.Kind {
	case ExprValue:
		v := w.Value
		return ValueNode{
			Kind: v.Kind, Number: v.Number, Str: v.Str, Boolean: v.Boolean,
			ClosureParams: v.ClosureParams, ClosureBody: v.ClosureBody.toExpression(),
		}
	case ExprInfixed:
		return InfixedNode{Left: w.Left.toExpression(), Op: w.Op, Right: w.Right.toExpression()}
	case ExprPrefixed:
		return PrefixedNode{Op: w.PrefixOp, Operand: w.PrefixOperand.toExpression()}
	case ExprPostfixed:
		return PostfixedNode{
			Operand: w.PostfixOperand.toExpression(), Kind: w.PostfixKind,
			IndexExpr: w.IndexExpr.toExpression(), FieldName: w.FieldName,
		}
	case ExprIdentifier:
		return IdentifierNode{Name: w.Name}
	case ExprBlock:
		return Block{Statements: w.Block.Statements.toStatements(), Functions: w.Block.Functions.toFunctions()}
	case ExprMap:
		arms := make([]MapArm, len(w.MapArms))
		for i, a := range w.MapArms {
			cases := make([]Expression, len(a.Cases))
			for j := range a.Cases {
				cases[j] = a.Cases[j].toExpression()
			}
			arms[i] = MapArm{Cases: cases, Result: a.Result.toExpression()}
		}
		return MapExpression{Input: w.MapInput.toExpression(), Arms: arms}
	case ExprFunctionCall:
		args := make([]Expression, len(w.CallArgs))
		for i := range w.CallArgs {
			args[i] = w.CallArgs[i].toExpression()
		}
		return FunctionCallNode{Name: w.Name, Args: args}
	case ExprArray:
		elems := make([]Expression, len(w.ArrayElements))
		for i := range w.ArrayElements {
			elems[i] = w.ArrayElements[i].toExpression()
		}
		return ArrayNode{Elements: elems}
	case ExprTable:
		entries := make([]TableEntry, len(w.TableEntries))
		for i, en := range w.TableEntries {
			entries[i] = TableEntry{Key: en.Key, Value: en.Value.toExpression()}
		}
		return TableNode{Entries: entries}
	case ExprIf:
		return w.If.toIfNode()
	default:
		return ValueNode{Kind: LitNil}
	}
}
