package lang

import (
	"strings"
	"unicode"
)

// symbolRule is one entry in the longest-match table the lexer uses for
// punctuation and operator symbols. Multi-character symbols must be listed
// before any of their single-character prefixes so the longest-match scan
// below picks them first.
type symbolRule struct {
	literal string
	class   tokenClass
}

var symbolRules = []symbolRule{
	{"..=", tkDotDotEq},
	{"...", tkHash}, // unreachable placeholder kept out of the match table below; see init()
	{"###", tkTripleHash},
	{"##", tkDoubleHash},
	{"#{", tkHashBrace},
	{"#", tkHash},
	{"..", tkDotDot},
	{"==", tkEqEq},
	{"!=", tkNotEq},
	{"<=", tkLte},
	{">=", tkGte},
	{"+=", tkPlusAssign},
	{"-=", tkMinusAssign},
	{"=>", tkArrow},
	{"$$", tkDoubleDollar},
	{"$", tkDollar},
	{"+", tkPlus},
	{"-", tkMinus},
	{"*", tkStar},
	{"/", tkSlash},
	{"%", tkPercent},
	{"<", tkLt},
	{">", tkGt},
	{"=", tkAssign},
	{"?", tkQuestion},
	{"!", tkBang},
	{"[", tkLBracket},
	{"]", tkRBracket},
	{".", tkDot},
	{"(", tkLParen},
	{")", tkRParen},
	{"{", tkLBrace},
	{"}", tkRBrace},
	{",", tkComma},
	{";", tkSemicolon},
	{":", tkColon},
	{"|", tkPipe},
}

func init() {
	// drop the placeholder; it exists only so the "longest literal first"
	// ordering above stays easy to eyeball without a real 4-char operator.
	filtered := symbolRules[:0]
	for _, r := range symbolRules {
		if r.literal == "..." {
			continue
		}
		filtered = append(filtered, r)
	}
	symbolRules = filtered
}

// Lex converts source text into a stream of tokens, or returns a
// SyntaxError if the text contains something the lexer cannot classify
// (principally an unterminated string literal).
func Lex(src string) ([]token, error) {
	runes := []rune(src)
	var toks []token

	line, col := 1, 1
	lineStart := 0

	currentFullLine := func(from int) string {
		end := from
		for end < len(runes) && runes[end] != '\n' {
			end++
		}
		return string(runes[from:end])
	}

	advance := func(i *int, n int) {
		for k := 0; k < n; k++ {
			if runes[*i] == '\n' {
				line++
				col = 1
				lineStart = *i + 1
			} else {
				col++
			}
			*i++
		}
	}
	_ = lineStart

	for i := 0; i < len(runes); {
		ch := runes[i]

		switch {
		case unicode.IsSpace(ch):
			advance(&i, 1)

		case ch == '/' && i+1 < len(runes) && runes[i+1] == '/':
			for i < len(runes) && runes[i] != '\n' {
				advance(&i, 1)
			}

		case ch == '"':
			startLine, startCol := line, col
			fullLine := currentFullLine(i - (col - 1))
			var sb strings.Builder
			advance(&i, 1) // opening quote
			closed := false
			for i < len(runes) {
				c := runes[i]
				if c == '\\' && i+1 < len(runes) {
					sb.WriteRune(c)
					sb.WriteRune(runes[i+1])
					advance(&i, 2)
					continue
				}
				if c == '"' {
					advance(&i, 1)
					closed = true
					break
				}
				sb.WriteRune(c)
				advance(&i, 1)
			}
			if !closed {
				return nil, SyntaxError{
					message:  "unterminated string literal; missing closing '\"'",
					line:     startLine,
					col:      startCol,
					fullLine: fullLine,
				}
			}
			toks = append(toks, token{lexeme: sb.String(), class: tkString, line: startLine, col: startCol, fullLine: fullLine})

		case unicode.IsDigit(ch):
			startLine, startCol := line, col
			fullLine := currentFullLine(i - (col - 1))
			start := i
			for i < len(runes) && unicode.IsDigit(runes[i]) {
				advance(&i, 1)
			}
			if i < len(runes) && runes[i] == '.' && i+1 < len(runes) && unicode.IsDigit(runes[i+1]) {
				advance(&i, 1)
				for i < len(runes) && unicode.IsDigit(runes[i]) {
					advance(&i, 1)
				}
			}
			toks = append(toks, token{lexeme: string(runes[start:i]), class: tkNumber, line: startLine, col: startCol, fullLine: fullLine})

		case isIdentStart(ch):
			startLine, startCol := line, col
			fullLine := currentFullLine(i - (col - 1))
			start := i
			for i < len(runes) && isIdentPart(runes[i]) {
				advance(&i, 1)
			}
			word := string(runes[start:i])
			class := tkIdent
			if kw, ok := keywords[word]; ok {
				class = kw
			}
			toks = append(toks, token{lexeme: word, class: class, line: startLine, col: startCol, fullLine: fullLine})

		default:
			startLine, startCol := line, col
			fullLine := currentFullLine(i - (col - 1))
			rule, ok := matchSymbol(runes[i:])
			if !ok {
				return nil, SyntaxError{
					message:  "unrecognized character '" + string(ch) + "'",
					line:     startLine,
					col:      startCol,
					fullLine: fullLine,
				}
			}
			toks = append(toks, token{lexeme: rule.literal, class: rule.class, line: startLine, col: startCol, fullLine: fullLine})
			advance(&i, len([]rune(rule.literal)))
		}
	}

	toks = append(toks, token{class: tkEOF, line: line, col: col})
	return toks, nil
}

func matchSymbol(remaining []rune) (symbolRule, bool) {
	for _, r := range symbolRules {
		lit := []rune(r.literal)
		if len(lit) > len(remaining) {
			continue
		}
		match := true
		for k := range lit {
			if remaining[k] != lit[k] {
				match = false
				break
			}
		}
		if match {
			return r, true
		}
	}
	return symbolRule{}, false
}

func isIdentStart(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch)
}

func isIdentPart(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch) || unicode.IsDigit(ch)
}

// tokenStream is a cursor over a slice of tokens, matching the teacher's
// tokenStream shape (Next/Peek/Remaining) from its older tunascript lexer.
type tokenStream struct {
	tokens []token
	cur    int
}

func newTokenStream(toks []token) *tokenStream {
	return &tokenStream{tokens: toks}
}

func (ts *tokenStream) Next() token {
	t := ts.tokens[ts.cur]
	if ts.cur < len(ts.tokens)-1 {
		ts.cur++
	}
	return t
}

func (ts *tokenStream) Peek() token {
	return ts.tokens[ts.cur]
}

// PeekAt returns the token n positions past the current one, clamped to
// the final token (always EOF) if n runs past the end. Used by the
// parser to disambiguate a bare identifier from the start of a set
// statement without consuming either token.
func (ts *tokenStream) PeekAt(n int) token {
	i := ts.cur + n
	if i >= len(ts.tokens) {
		i = len(ts.tokens) - 1
	}
	return ts.tokens[i]
}

func (ts *tokenStream) Remaining() int {
	return len(ts.tokens) - ts.cur
}
