package lang

// tokenClass identifies the kind of a lexeme and carries the left-binding
// power used by the Pratt expression parser in parser.go. Precedence tiers
// are spaced by 10 so new operators can be slotted between existing ones
// without renumbering everything.
type tokenClass struct {
	id    string
	human string
	lbp   int
}

func (tc tokenClass) String() string {
	return tc.id
}

// Human returns a human-readable description of the token class, used in
// parser diagnostics.
func (tc tokenClass) Human() string {
	return tc.human
}

func (tc tokenClass) Equal(o tokenClass) bool {
	return tc.id == o.id
}

const (
	lbpNone       = 0
	lbpOr         = 10
	lbpAnd        = 20
	lbpCompare    = 30
	lbpAdditive   = 40 // also binds the range operators, per the resolved Open Question
	lbpMultiplic  = 50
	lbpSplitJoin  = 60
	lbpDebugPrint = 70
	lbpIndexDot   = 80
	lbpPrefix     = 90
)

var (
	tkEOF        = tokenClass{"EOF", "end of input", lbpNone}
	tkNumber     = tokenClass{"NUMBER", "number", lbpNone}
	tkString     = tokenClass{"STRING", "string literal", lbpNone}
	tkIdent      = tokenClass{"IDENT", "identifier", lbpNone}
	tkNil        = tokenClass{"NIL", "'nil'", lbpNone}
	tkTrue       = tokenClass{"TRUE", "'true'", lbpNone}
	tkFalse      = tokenClass{"FALSE", "'false'", lbpNone}
	tkFn         = tokenClass{"FN", "'fn'", lbpNone}
	tkLet        = tokenClass{"LET", "'let'", lbpNone}
	tkWhile      = tokenClass{"WHILE", "'while'", lbpNone}
	tkFor        = tokenClass{"FOR", "'for'", lbpNone}
	tkMatch      = tokenClass{"MATCH", "'match'", lbpNone}
	tkIf         = tokenClass{"IF", "'if'", lbpNone}
	tkElif       = tokenClass{"ELIF", "'elif'", lbpNone}
	tkElse       = tokenClass{"ELSE", "'else'", lbpNone}
	tkAnd        = tokenClass{"AND", "'and'", lbpAnd}
	tkOr         = tokenClass{"OR", "'or'", lbpOr}
	tkPlus       = tokenClass{"PLUS", "'+'", lbpAdditive}
	tkMinus      = tokenClass{"MINUS", "'-'", lbpAdditive}
	tkStar       = tokenClass{"STAR", "'*'", lbpMultiplic}
	tkSlash      = tokenClass{"SLASH", "'/'", lbpMultiplic}
	tkPercent    = tokenClass{"PERCENT", "'%'", lbpMultiplic}
	tkEqEq       = tokenClass{"EQEQ", "'=='", lbpCompare}
	tkNotEq      = tokenClass{"NOTEQ", "'!='", lbpCompare}
	tkLt         = tokenClass{"LT", "'<'", lbpCompare}
	tkGt         = tokenClass{"GT", "'>'", lbpCompare}
	tkLte        = tokenClass{"LTE", "'<='", lbpCompare}
	tkGte        = tokenClass{"GTE", "'>='", lbpCompare}
	tkAssign     = tokenClass{"ASSIGN", "'='", lbpNone}
	tkPlusAssign = tokenClass{"PLUSASSIGN", "'+='", lbpNone}
	tkMinusAssign = tokenClass{"MINUSASSIGN", "'-='", lbpNone}
	tkDollar     = tokenClass{"DOLLAR", "'$'", lbpSplitJoin}
	tkDoubleDollar = tokenClass{"DOLLARDOLLAR", "'$$'", lbpSplitJoin}
	tkQuestion   = tokenClass{"QUESTION", "'?'", lbpDebugPrint}
	tkBang       = tokenClass{"BANG", "'!'", lbpDebugPrint}
	tkLBracket   = tokenClass{"LBRACKET", "'['", lbpIndexDot}
	tkRBracket   = tokenClass{"RBRACKET", "']'", lbpNone}
	tkDot        = tokenClass{"DOT", "'.'", lbpIndexDot}
	tkHash       = tokenClass{"HASH", "'#'", lbpNone}
	tkDoubleHash = tokenClass{"HASHHASH", "'##'", lbpNone}
	tkTripleHash = tokenClass{"HASHHASHHASH", "'###'", lbpNone}
	tkDotDot     = tokenClass{"DOTDOT", "'..'", lbpAdditive}
	tkDotDotEq   = tokenClass{"DOTDOTEQ", "'..='", lbpAdditive}
	tkLParen     = tokenClass{"LPAREN", "'('", lbpNone}
	tkRParen     = tokenClass{"RPAREN", "')'", lbpNone}
	tkLBrace     = tokenClass{"LBRACE", "'{'", lbpNone}
	tkRBrace     = tokenClass{"RBRACE", "'}'", lbpNone}
	tkHashBrace  = tokenClass{"HASHBRACE", "'#{'", lbpNone}
	tkComma      = tokenClass{"COMMA", "','", lbpNone}
	tkSemicolon  = tokenClass{"SEMICOLON", "';'", lbpNone}
	tkColon      = tokenClass{"COLON", "':'", lbpNone}
	tkPipe       = tokenClass{"PIPE", "'|'", lbpNone}
	tkArrow      = tokenClass{"ARROW", "'=>'", lbpNone}
)

var keywords = map[string]tokenClass{
	"fn":    tkFn,
	"let":   tkLet,
	"while": tkWhile,
	"for":   tkFor,
	"match": tkMatch,
	"if":    tkIf,
	"elif":  tkElif,
	"else":  tkElse,
	"and":   tkAnd,
	"or":    tkOr,
	"nil":   tkNil,
	"true":  tkTrue,
	"false": tkFalse,
}

// token is a single lexeme produced by the lexer, along with its source
// position for diagnostics.
type token struct {
	lexeme string
	class  tokenClass
	line   int
	col    int
	fullLine string
}

func (t token) String() string {
	return t.lexeme
}
