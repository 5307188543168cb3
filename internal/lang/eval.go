package lang

import "fmt"

// Runtime owns a Storage and evaluates Programs against it. A Runtime is
// not safe to share across concurrent evaluations; embedders that need
// concurrency should construct one Runtime per goroutine (the hosting
// server in server/ follows this rule: one Runtime per script run).
type Runtime struct {
	storage *Storage
}

// NewRuntime constructs a Runtime with an empty global scope.
func NewRuntime() *Runtime {
	return &Runtime{storage: NewStorage()}
}

// RegisterNative inserts a Native closure into the global scope. Must be
// called before Run if the script is meant to see it.
func (rt *Runtime) RegisterNative(name string, fn func(args []Value) Value) {
	rt.storage.GlobalScopeDefine(name, NativeClosureValue(fn))
}

// Storage exposes the runtime's storage, primarily so cmd/kelp's REPL can
// keep one Runtime (and its accumulated globals) alive across lines.
func (rt *Runtime) Storage() *Storage {
	return rt.storage
}

// Run evaluates every top-level statement of program against the
// runtime's storage and returns the value of the last one (Nil if the
// program has no statements). Hoisted top-level functions are bound into
// the global scope before any statement runs.
func (rt *Runtime) Run(program Program) Value {
	bindFunctions(rt.storage, program.Functions)

	result := NilValue
	for _, stmt := range program.Statements {
		result = evalStatement(stmt, rt.storage)
		rt.storage.Set("_", result)
	}
	return rt.storage.Get("_")
}

func bindFunctions(storage *Storage, fns []Function) {
	for _, fn := range fns {
		storage.Define(fn.Name, ScriptClosureValue(fn.Parameters, fn.Body))
	}
}

func evalStatement(s Statement, storage *Storage) Value {
	switch s.StmtType() {
	case StmtExpression:
		return evalExpression(s.AsExpressionStmt().Expr, storage)
	case StmtSet:
		return evalSet(s.AsSetStmt(), storage)
	case StmtDefine:
		storage.Define(s.AsDefineStmt().Name, NilValue)
		return NilValue
	case StmtDefineAndSet:
		ds := s.AsDefineAndSetStmt()
		v := evalExpression(ds.Value, storage)
		storage.Define(ds.Name, v)
		return v
	case StmtIf:
		return evalIf(s.AsIfStmt(), storage)
	case StmtWhile:
		return evalWhile(s.AsWhileStmt(), storage)
	case StmtFor:
		return evalFor(s.AsForStmt(), storage)
	default:
		return NilValue
	}
}

func evalSet(s SetStmt, storage *Storage) Value {
	rhs := evalExpression(s.Value, storage)

	var toStore Value
	switch s.Op {
	case SetIncrement:
		toStore = add(storage.Get(s.Name), rhs)
	case SetDecrement:
		toStore = sub(storage.Get(s.Name), rhs)
	default:
		toStore = rhs
	}

	storage.Set(s.Name, toStore)
	return toStore
}

func evalIf(n IfNode, storage *Storage) Value {
	storage.PushScope()
	defer storage.PopScope()

	for _, branch := range n.Branches {
		cond := evalExpression(branch.Cond, storage)
		if cond.AsBool() {
			return evalStatement(branch.Body, storage)
		}
	}
	if n.Else != nil {
		return evalStatement(n.Else, storage)
	}
	return NilValue
}

func evalWhile(n WhileStmt, storage *Storage) Value {
	storage.PushScope()
	defer storage.PopScope()

	result := NilValue
	for evalExpression(n.Cond, storage).AsBool() {
		result = evalStatement(n.Body, storage)
	}
	return result
}

func evalFor(n ForStmt, storage *Storage) Value {
	storage.PushScope()
	defer storage.PopScope()

	evalStatement(n.Init, storage)
	for evalExpression(n.Cond, storage).AsBool() {
		evalStatement(n.Body, storage)
		evalStatement(n.Post, storage)
	}
	return NilValue
}

func evalExpression(e Expression, storage *Storage) Value {
	switch e.ExprType() {
	case ExprValue:
		return evalValueNode(e.AsValueNode(), storage)
	case ExprInfixed:
		return evalInfixed(e.AsInfixedNode(), storage)
	case ExprPrefixed:
		return evalPrefixed(e.AsPrefixedNode(), storage)
	case ExprPostfixed:
		return evalPostfixed(e.AsPostfixedNode(), storage)
	case ExprIdentifier:
		return storage.Get(e.AsIdentifierNode().Name)
	case ExprBlock:
		return evalBlock(e.AsBlockNode(), storage)
	case ExprMap:
		return evalMap(e.AsMapNode(), storage)
	case ExprFunctionCall:
		return evalFunctionCall(e.AsFunctionCallNode(), storage)
	case ExprArray:
		return evalArray(e.AsArrayNode(), storage)
	case ExprTable:
		return evalTable(e.AsTableNode(), storage)
	case ExprIf:
		return evalIf(e.AsIfNode(), storage)
	default:
		return NilValue
	}
}

func evalValueNode(v ValueNode, storage *Storage) Value {
	switch v.Kind {
	case LitNumber:
		return NumberValue(v.Number)
	case LitString:
		return StringValue(v.Str)
	case LitBoolean:
		return BooleanValue(v.Boolean)
	case LitNil:
		return NilValue
	case LitClosure:
		return ScriptClosureValue(v.ClosureParams, v.ClosureBody)
	default:
		return NilValue
	}
}

func evalBlock(b Block, storage *Storage) Value {
	storage.PushScope()
	defer storage.PopScope()

	bindFunctions(storage, b.Functions)

	storage.Define("_", NilValue)
	for _, stmt := range b.Statements {
		v := evalStatement(stmt, storage)
		storage.Set("_", v)
	}
	return storage.Get("_")
}

func evalInfixed(n InfixedNode, storage *Storage) Value {
	// Both operands are always evaluated; unlike most languages' and/or,
	// there is no short-circuiting here even though and/or are among the
	// operators dispatched below.
	lhs := evalExpression(n.Left, storage)
	rhs := evalExpression(n.Right, storage)

	switch n.Op {
	case OpAdd:
		return add(lhs, rhs)
	case OpSub:
		return sub(lhs, rhs)
	case OpMul:
		return mul(lhs, rhs)
	case OpDiv:
		return div(lhs, rhs)
	case OpMod:
		return modulo(lhs, rhs, func(closure Value, args []Value) Value {
			return callClosure(closure, args, storage)
		})
	case OpEq:
		return eq(lhs, rhs)
	case OpNeq:
		return neq(lhs, rhs)
	case OpGt:
		return gt(lhs, rhs)
	case OpLt:
		return lt(lhs, rhs)
	case OpGte:
		return gte(lhs, rhs)
	case OpLte:
		return lte(lhs, rhs)
	case OpAnd:
		return and(lhs, rhs)
	case OpOr:
		return or(lhs, rhs)
	case OpDollar:
		return dollar(lhs, rhs)
	case OpDoubleDollar:
		return doubleDollar(lhs, rhs)
	case OpExclusiveRange:
		return exclusiveRange(lhs, rhs)
	case OpInclusiveRange:
		return inclusiveRange(lhs, rhs)
	default:
		return NilValue
	}
}

func evalPrefixed(n PrefixedNode, storage *Storage) Value {
	v := evalExpression(n.Operand, storage)
	switch n.Op {
	case PrefixNegate:
		return negate(v)
	case PrefixNot:
		return not(v)
	case PrefixHash:
		return hashKeys(v)
	case PrefixDoubleHash:
		return hashValues(v)
	case PrefixTripleHash:
		return hashEntries(v)
	default:
		return NilValue
	}
}

func evalPostfixed(n PostfixedNode, storage *Storage) Value {
	switch n.Kind {
	case PostfixDebug:
		v := evalExpression(n.Operand, storage)
		fmt.Println(FormatDebug(v))
		return v
	case PostfixPrint:
		v := evalExpression(n.Operand, storage)
		fmt.Println(FormatPrint(v))
		return v
	case PostfixIndex:
		v := evalExpression(n.Operand, storage)
		i := evalExpression(n.IndexExpr, storage)
		return index(v, i)
	case PostfixDotIndex:
		v := evalExpression(n.Operand, storage)
		return dotIndex(v, n.FieldName)
	default:
		return NilValue
	}
}

func evalArray(n ArrayNode, storage *Storage) Value {
	elems := make([]Value, len(n.Elements))
	for i, el := range n.Elements {
		elems[i] = evalExpression(el, storage)
	}
	return ArrayValue(elems)
}

func evalTable(n TableNode, storage *Storage) Value {
	entries := make(map[string]Value, len(n.Entries))
	for _, e := range n.Entries {
		// Later entries with the same key overwrite earlier ones:
		// last-write-wins.
		entries[e.Key] = evalExpression(e.Value, storage)
	}
	return TableValue(entries)
}

func evalMap(m MapExpression, storage *Storage) Value {
	input := evalExpression(m.Input, storage)

	var fallback Value
	haveFallback := false

	for _, arm := range m.Arms {
		for _, c := range arm.Cases {
			if ident, ok := c.(IdentifierNode); ok && ident.Name == "_" {
				fallback = evalExpression(arm.Result, storage)
				haveFallback = true
				continue
			}
			caseVal := evalExpression(c, storage)
			if eq(input, caseVal).AsBool() {
				return evalExpression(arm.Result, storage)
			}
		}
	}

	if haveFallback {
		return fallback
	}
	return NilValue
}

func evalFunctionCall(n FunctionCallNode, storage *Storage) Value {
	closure, ok := storage.GetOptional(n.Name)
	if !ok || closure.Type() != Closure {
		return NilValue
	}

	args := make([]Value, len(n.Args))
	for i, a := range n.Args {
		args[i] = evalExpression(a, storage)
	}

	return callClosure(closure, args, storage)
}

// callClosure invokes a Closure value with the given arguments. Script
// closures are dynamically scoped: the body is evaluated against
// whatever storage is active at the call site (a fresh child scope
// pushed on top of it), not the storage in effect when the closure
// literal itself was evaluated. This is a deliberate divergence from
// lexical closures and must be preserved.
func callClosure(closure Value, args []Value, storage *Storage) Value {
	c := closure.ClosureValue()
	if c.Kind == NativeClosure {
		return c.Native(args)
	}

	storage.PushScope()
	defer storage.PopScope()

	// Params bind via Set, not Define: the freshly-pushed scope is empty,
	// so Set falls through to the global scope, matching run_closure in
	// the original source. A param name colliding with an existing outer
	// binding clobbers it for the rest of the program.
	for i, param := range c.Params {
		if i < len(args) {
			storage.Set(param, args[i])
		} else {
			storage.Set(param, NilValue)
		}
	}

	return evalExpression(c.Body, storage)
}
