package lang

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Lex_Basic(t *testing.T) {
	testCases := []struct {
		name   string
		input  string
		expect []tokenClass
	}{
		{
			name:  "empty",
			input: "",
			expect: []tokenClass{tkEOF},
		},
		{
			name:  "number and operators",
			input: "1 + 2.5 * 3",
			expect: []tokenClass{tkNumber, tkPlus, tkNumber, tkStar, tkNumber, tkEOF},
		},
		{
			name:  "keywords vs identifiers",
			input: "let x = fn while for match if elif else and or true false nil y",
			expect: []tokenClass{
				tkLet, tkIdent, tkAssign, tkFn, tkWhile, tkFor, tkMatch, tkIf, tkElif,
				tkElse, tkAnd, tkOr, tkTrue, tkFalse, tkNil, tkIdent, tkEOF,
			},
		},
		{
			name:  "longest match symbols",
			input: "..= .. # ## ### #{ == != <= >= += -= =>",
			expect: []tokenClass{
				tkDotDotEq, tkDotDot, tkHash, tkDoubleHash, tkTripleHash, tkHashBrace,
				tkEqEq, tkNotEq, tkLte, tkGte, tkPlusAssign, tkMinusAssign, tkArrow, tkEOF,
			},
		},
		{
			name:  "line comment is skipped",
			input: "1 // a comment\n+ 2",
			expect: []tokenClass{tkNumber, tkPlus, tkNumber, tkEOF},
		},
		{
			name:  "string literal with escape passed through raw",
			input: `"hi \"there\""`,
			expect: []tokenClass{tkString, tkEOF},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			toks, err := Lex(tc.input)
			if !assert.NoError(err) {
				return
			}

			classes := make([]tokenClass, len(toks))
			for i, tok := range toks {
				classes[i] = tok.class
			}
			assert.Equal(tc.expect, classes)
		})
	}
}

func Test_Lex_StringLexeme(t *testing.T) {
	assert := assert.New(t)

	toks, err := Lex(`"hello \"world\""`)
	if !assert.NoError(err) {
		return
	}
	if !assert.Len(toks, 2) {
		return
	}
	assert.Equal(`hello \"world\"`, toks[0].lexeme)
}

func Test_Lex_UnterminatedString(t *testing.T) {
	assert := assert.New(t)

	_, err := Lex(`"unterminated`)
	assert.Error(err)

	var synErr SyntaxError
	assert.ErrorAs(err, &synErr)
}

func Test_Lex_UnrecognizedCharacter(t *testing.T) {
	assert := assert.New(t)

	_, err := Lex("1 @ 2")
	assert.Error(err)
}

func Test_TokenStream_PeekAt(t *testing.T) {
	assert := assert.New(t)

	toks, err := Lex("1 + 2")
	if !assert.NoError(err) {
		return
	}
	ts := newTokenStream(toks)

	assert.True(ts.Peek().class.Equal(tkNumber))
	assert.True(ts.PeekAt(1).class.Equal(tkPlus))
	assert.True(ts.PeekAt(2).class.Equal(tkNumber))
	// past the end clamps to EOF
	assert.True(ts.PeekAt(100).class.Equal(tkEOF))
}
