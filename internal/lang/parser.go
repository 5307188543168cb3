package lang

import (
	"fmt"
	"strconv"

	"github.com/dekarrin/kelp/internal/util"
)

// Parse builds a Program from source text. Lexing and parsing errors are
// both returned as SyntaxError.
func Parse(src string) (Program, error) {
	toks, err := Lex(src)
	if err != nil {
		return Program{}, err
	}

	p := &parser{ts: newTokenStream(toks)}
	stmts, fns, err := p.parseBody(tkEOF)
	if err != nil {
		return Program{}, err
	}
	return Program{Statements: stmts, Functions: fns}, nil
}

// parser drives the grammar's statement productions and hands expression
// productions off to a Pratt precedence-climbing loop.
type parser struct {
	ts *tokenStream
}

// parseBody reads statements (hoisting any function_definition into a
// separate list) until the next token's class matches stop. The caller
// is responsible for consuming stop itself.
func (p *parser) parseBody(stop tokenClass) ([]Statement, []Function, error) {
	var stmts []Statement
	var fns []Function

	for p.ts.Peek().class.id != stop.id {
		if p.ts.Peek().class.id == tkEOF.id {
			return nil, nil, syntaxErrorFromToken(fmt.Sprintf("unexpected end of input, expected %s", stop.Human()), p.ts.Peek())
		}

		if p.ts.Peek().class.id == tkFn.id {
			fn, err := p.parseFunctionDef()
			if err != nil {
				return nil, nil, err
			}
			fns = append(fns, fn)
			continue
		}

		stmt, err := p.parseStatement()
		if err != nil {
			return nil, nil, err
		}
		stmts = append(stmts, stmt)
	}

	return stmts, fns, nil
}

func (p *parser) expect(tc tokenClass) (token, error) {
	t := p.ts.Next()
	if t.class.id != tc.id {
		return t, syntaxErrorFromToken(fmt.Sprintf("expected %s, found %s", tc.Human(), t.class.Human()), t)
	}
	return t, nil
}

func (p *parser) parseFunctionDef() (Function, error) {
	p.ts.Next() // 'fn'
	name, err := p.expect(tkIdent)
	if err != nil {
		return Function{}, err
	}
	if _, err := p.expect(tkLParen); err != nil {
		return Function{}, err
	}

	var params []string
	if p.ts.Peek().class.id != tkRParen.id {
		for {
			paramTok, err := p.expect(tkIdent)
			if err != nil {
				return Function{}, err
			}
			params = append(params, paramTok.lexeme)
			if p.ts.Peek().class.id == tkComma.id {
				p.ts.Next()
				continue
			}
			break
		}
	}
	if _, err := p.expect(tkRParen); err != nil {
		return Function{}, err
	}

	body, err := p.parseExpression(0)
	if err != nil {
		return Function{}, err
	}

	return Function{Name: name.lexeme, Parameters: params, Body: body}, nil
}

// parseStatement parses one of: define, define-and-set, while, for, set,
// or a bare expression. An if_expression reached via the bare-expression
// path is returned directly as a Statement, since IfNode implements both
// interfaces.
func (p *parser) parseStatement() (Statement, error) {
	switch p.ts.Peek().class.id {
	case tkLet.id:
		return p.parseDefine()
	case tkWhile.id:
		return p.parseWhile()
	case tkFor.id:
		return p.parseFor()
	case tkIdent.id:
		if isAssignOp(p.ts.PeekAt(1).class) {
			return p.parseSet()
		}
	}

	expr, err := p.parseExpression(0)
	if err != nil {
		return nil, err
	}
	if ifn, ok := expr.(IfNode); ok {
		return ifn, nil
	}
	return ExpressionStmt{Expr: expr}, nil
}

func isAssignOp(tc tokenClass) bool {
	return tc.id == tkAssign.id || tc.id == tkPlusAssign.id || tc.id == tkMinusAssign.id
}

func (p *parser) parseDefine() (Statement, error) {
	p.ts.Next() // 'let'
	name, err := p.expect(tkIdent)
	if err != nil {
		return nil, err
	}

	if p.ts.Peek().class.id != tkAssign.id {
		return DefineStmt{Name: name.lexeme}, nil
	}
	p.ts.Next() // '='

	value, err := p.parseExpression(0)
	if err != nil {
		return nil, err
	}
	return DefineAndSetStmt{Name: name.lexeme, Value: value}, nil
}

func (p *parser) parseSet() (Statement, error) {
	name := p.ts.Next() // identifier
	opTok := p.ts.Next()

	var op SetOp
	switch opTok.class.id {
	case tkAssign.id:
		op = SetAssign
	case tkPlusAssign.id:
		op = SetIncrement
	case tkMinusAssign.id:
		op = SetDecrement
	default:
		want := util.MakeTextList([]string{"=", "+=", "-="})
		return nil, syntaxErrorFromToken(fmt.Sprintf("expected one of %s, found %s", want, opTok.class.Human()), opTok)
	}

	value, err := p.parseExpression(0)
	if err != nil {
		return nil, err
	}
	return SetStmt{Name: name.lexeme, Op: op, Value: value}, nil
}

func (p *parser) parseWhile() (Statement, error) {
	p.ts.Next() // 'while'
	cond, err := p.parseExpression(0)
	if err != nil {
		return nil, err
	}
	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return WhileStmt{Cond: cond, Body: body}, nil
}

func (p *parser) parseFor() (Statement, error) {
	p.ts.Next() // 'for'
	init, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tkSemicolon); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression(0)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tkSemicolon); err != nil {
		return nil, err
	}
	post, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return ForStmt{Init: init, Cond: cond, Post: post, Body: body}, nil
}

// parseExpression is the Pratt precedence-climbing loop: it keeps
// extending `left` with led() productions for as long as the next
// token's left-binding-power exceeds rbp, the binding power of whatever
// is waiting to its left.
func (p *parser) parseExpression(rbp int) (Expression, error) {
	t := p.ts.Next()
	left, err := p.nud(t)
	if err != nil {
		return nil, err
	}
	if left == nil {
		return nil, syntaxErrorFromToken(fmt.Sprintf("unexpected %s (cannot start an expression)", t.class.Human()), t)
	}

	for rbp < p.ts.Peek().class.lbp {
		t = p.ts.Next()
		left, err = p.led(t, left)
		if err != nil {
			return nil, err
		}
	}
	return left, nil
}

// nud ("null denotation") parses a token that starts an expression: a
// literal, identifier, prefix operator, or a grouping/block/control
// construct.
func (p *parser) nud(t token) (Expression, error) {
	switch t.class.id {
	case tkNumber.id:
		n, err := strconv.ParseFloat(t.lexeme, 64)
		if err != nil {
			return nil, syntaxErrorFromToken("malformed number literal", t)
		}
		return ValueNode{Kind: LitNumber, Number: n}, nil
	case tkString.id:
		return ValueNode{Kind: LitString, Str: t.lexeme}, nil
	case tkTrue.id:
		return ValueNode{Kind: LitBoolean, Boolean: true}, nil
	case tkFalse.id:
		return ValueNode{Kind: LitBoolean, Boolean: false}, nil
	case tkNil.id:
		return ValueNode{Kind: LitNil}, nil
	case tkIdent.id:
		if p.ts.Peek().class.id == tkLParen.id {
			return p.parseFunctionCall(t.lexeme)
		}
		return IdentifierNode{Name: t.lexeme}, nil
	case tkMinus.id:
		operand, err := p.parseExpression(lbpPrefix)
		if err != nil {
			return nil, err
		}
		return PrefixedNode{Op: PrefixNegate, Operand: operand}, nil
	case tkBang.id:
		operand, err := p.parseExpression(lbpPrefix)
		if err != nil {
			return nil, err
		}
		return PrefixedNode{Op: PrefixNot, Operand: operand}, nil
	case tkHash.id:
		operand, err := p.parseExpression(lbpPrefix)
		if err != nil {
			return nil, err
		}
		return PrefixedNode{Op: PrefixHash, Operand: operand}, nil
	case tkDoubleHash.id:
		operand, err := p.parseExpression(lbpPrefix)
		if err != nil {
			return nil, err
		}
		return PrefixedNode{Op: PrefixDoubleHash, Operand: operand}, nil
	case tkTripleHash.id:
		operand, err := p.parseExpression(lbpPrefix)
		if err != nil {
			return nil, err
		}
		return PrefixedNode{Op: PrefixTripleHash, Operand: operand}, nil
	case tkLParen.id:
		inner, err := p.parseExpression(0)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tkRParen); err != nil {
			return nil, err
		}
		return inner, nil
	case tkLBrace.id:
		return p.parseBlock()
	case tkMatch.id:
		return p.parseMap()
	case tkIf.id:
		return p.parseIf()
	case tkLBracket.id:
		return p.parseArray()
	case tkHashBrace.id:
		return p.parseTable()
	case tkPipe.id:
		return p.parseClosure()
	default:
		return nil, nil
	}
}

// led ("left denotation") parses a token that continues an expression
// already started by left: an infix operator, or a postfix
// debug/print/index/dot-index.
func (p *parser) led(t token, left Expression) (Expression, error) {
	switch t.class.id {
	case tkPlus.id:
		return p.parseInfix(left, OpAdd, t.class.lbp)
	case tkMinus.id:
		return p.parseInfix(left, OpSub, t.class.lbp)
	case tkStar.id:
		return p.parseInfix(left, OpMul, t.class.lbp)
	case tkSlash.id:
		return p.parseInfix(left, OpDiv, t.class.lbp)
	case tkPercent.id:
		return p.parseInfix(left, OpMod, t.class.lbp)
	case tkEqEq.id:
		return p.parseInfix(left, OpEq, t.class.lbp)
	case tkNotEq.id:
		return p.parseInfix(left, OpNeq, t.class.lbp)
	case tkGt.id:
		return p.parseInfix(left, OpGt, t.class.lbp)
	case tkLt.id:
		return p.parseInfix(left, OpLt, t.class.lbp)
	case tkGte.id:
		return p.parseInfix(left, OpGte, t.class.lbp)
	case tkLte.id:
		return p.parseInfix(left, OpLte, t.class.lbp)
	case tkAnd.id:
		return p.parseInfix(left, OpAnd, t.class.lbp)
	case tkOr.id:
		return p.parseInfix(left, OpOr, t.class.lbp)
	case tkDollar.id:
		return p.parseInfix(left, OpDollar, t.class.lbp)
	case tkDoubleDollar.id:
		return p.parseInfix(left, OpDoubleDollar, t.class.lbp)
	case tkDotDot.id:
		return p.parseInfix(left, OpExclusiveRange, t.class.lbp)
	case tkDotDotEq.id:
		return p.parseInfix(left, OpInclusiveRange, t.class.lbp)
	case tkQuestion.id:
		return PostfixedNode{Operand: left, Kind: PostfixDebug}, nil
	case tkBang.id:
		return PostfixedNode{Operand: left, Kind: PostfixPrint}, nil
	case tkLBracket.id:
		idx, err := p.parseExpression(0)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tkRBracket); err != nil {
			return nil, err
		}
		return PostfixedNode{Operand: left, Kind: PostfixIndex, IndexExpr: idx}, nil
	case tkDot.id:
		field, err := p.expect(tkIdent)
		if err != nil {
			return nil, err
		}
		return PostfixedNode{Operand: left, Kind: PostfixDotIndex, FieldName: field.lexeme}, nil
	default:
		return nil, syntaxErrorFromToken(fmt.Sprintf("unexpected %s", t.class.Human()), t)
	}
}

func (p *parser) parseInfix(left Expression, op Operator, lbp int) (Expression, error) {
	right, err := p.parseExpression(lbp)
	if err != nil {
		return nil, err
	}
	return InfixedNode{Left: left, Op: op, Right: right}, nil
}

func (p *parser) parseFunctionCall(name string) (Expression, error) {
	p.ts.Next() // '('

	var args []Expression
	if p.ts.Peek().class.id != tkRParen.id {
		for {
			arg, err := p.parseExpression(0)
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.ts.Peek().class.id == tkComma.id {
				p.ts.Next()
				continue
			}
			break
		}
	}
	if _, err := p.expect(tkRParen); err != nil {
		return nil, err
	}
	return FunctionCallNode{Name: name, Args: args}, nil
}

func (p *parser) parseArray() (Expression, error) {
	// '[' already consumed by parseExpression's call to Next before nud.
	var elems []Expression
	if p.ts.Peek().class.id != tkRBracket.id {
		for {
			e, err := p.parseExpression(0)
			if err != nil {
				return nil, err
			}
			elems = append(elems, e)
			if p.ts.Peek().class.id == tkComma.id {
				p.ts.Next()
				continue
			}
			break
		}
	}
	if _, err := p.expect(tkRBracket); err != nil {
		return nil, err
	}
	return ArrayNode{Elements: elems}, nil
}

func (p *parser) parseTable() (Expression, error) {
	// '#{' already consumed.
	var entries []TableEntry
	for p.ts.Peek().class.id != tkRBrace.id {
		keyTok, err := p.expect(tkIdent)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tkColon); err != nil {
			return nil, err
		}
		val, err := p.parseExpression(0)
		if err != nil {
			return nil, err
		}
		entries = append(entries, TableEntry{Key: keyTok.lexeme, Value: val})
	}
	if _, err := p.expect(tkRBrace); err != nil {
		return nil, err
	}
	return TableNode{Entries: entries}, nil
}

func (p *parser) parseClosure() (Expression, error) {
	// leading '|' already consumed.
	var params []string
	if p.ts.Peek().class.id != tkPipe.id {
		for {
			paramTok, err := p.expect(tkIdent)
			if err != nil {
				return nil, err
			}
			params = append(params, paramTok.lexeme)
			if p.ts.Peek().class.id == tkComma.id {
				p.ts.Next()
				continue
			}
			break
		}
	}
	if _, err := p.expect(tkPipe); err != nil {
		return nil, err
	}
	body, err := p.parseExpression(0)
	if err != nil {
		return nil, err
	}
	return ValueNode{Kind: LitClosure, ClosureParams: params, ClosureBody: body}, nil
}

func (p *parser) parseBlock() (Expression, error) {
	// '{' already consumed.
	stmts, fns, err := p.parseBody(tkRBrace)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tkRBrace); err != nil {
		return nil, err
	}
	return Block{Statements: stmts, Functions: fns}, nil
}

func (p *parser) parseMap() (Expression, error) {
	// 'match' already consumed.
	input, err := p.parseExpression(0)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tkLBrace); err != nil {
		return nil, err
	}

	var arms []MapArm
	for p.ts.Peek().class.id != tkRBrace.id {
		var cases []Expression
		for {
			c, err := p.parseExpression(0)
			if err != nil {
				return nil, err
			}
			cases = append(cases, c)
			if p.ts.Peek().class.id == tkComma.id {
				p.ts.Next()
				continue
			}
			break
		}
		if _, err := p.expect(tkArrow); err != nil {
			return nil, err
		}
		result, err := p.parseExpression(0)
		if err != nil {
			return nil, err
		}
		arms = append(arms, MapArm{Cases: cases, Result: result})

		// ';' is an optional separator between arms, same role as the
		// newline a caller would otherwise put there.
		if p.ts.Peek().class.id == tkSemicolon.id {
			p.ts.Next()
		}
	}
	if _, err := p.expect(tkRBrace); err != nil {
		return nil, err
	}
	return MapExpression{Input: input, Arms: arms}, nil
}

func (p *parser) parseIf() (Expression, error) {
	// 'if' already consumed.
	var branches []CondBranch

	cond, err := p.parseExpression(0)
	if err != nil {
		return nil, err
	}
	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	branches = append(branches, CondBranch{Cond: cond, Body: body})

	for p.ts.Peek().class.id == tkElif.id {
		p.ts.Next()
		cond, err := p.parseExpression(0)
		if err != nil {
			return nil, err
		}
		body, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		branches = append(branches, CondBranch{Cond: cond, Body: body})
	}

	var elseBody Statement
	if p.ts.Peek().class.id == tkElse.id {
		p.ts.Next()
		elseBody, err = p.parseStatement()
		if err != nil {
			return nil, err
		}
	}

	return IfNode{Branches: branches, Else: elseBody}, nil
}
