package rholang

import (
	"unicode/utf8"

	"github.com/a-k-l-sdao/rholang-lsp/internal/syntax"
)

// kindEOF marks the end of the token stream.
const kindEOF = syntax.KindUnknown

type token struct {
	kind  syntax.Kind
	start uint32
	end   uint32
}

func (t token) bad() bool {
	return t.kind == syntax.KindError
}

var keywords = map[string]syntax.Kind{
	"new":      syntax.KwNew,
	"in":       syntax.KwIn,
	"contract": syntax.KwContract,
	"for":      syntax.KwFor,
	"select":   syntax.KwSelect,
	"match":    syntax.KwMatch,
	"if":       syntax.KwIf,
	"else":     syntax.KwElse,
	"let":      syntax.KwLet,
	"not":      syntax.KwNot,
	"and":      syntax.KwAnd,
	"or":       syntax.KwOr,
	"matches":  syntax.KwMatches,
	"bundle":   syntax.KwBundle,
	"Set":      syntax.KwSet,

	"true":      syntax.KindBoolLiteral,
	"false":     syntax.KindBoolLiteral,
	"Nil":       syntax.KindNil,
	"Bool":      syntax.KindSimpleType,
	"Int":       syntax.KindSimpleType,
	"String":    syntax.KindSimpleType,
	"Uri":       syntax.KindSimpleType,
	"ByteArray": syntax.KindSimpleType,
}

// Operators and punctuation, longest spelling first within each leading
// byte.
var symbols = []struct {
	text string
	kind syntax.Kind
}{
	{"<<-", syntax.OpPeekArrow},
	{"<-", syntax.OpLinearArrow},
	{"<=", syntax.OpRepeatedArrow},
	{"<", syntax.OpLt},
	{">=", syntax.OpGte},
	{">", syntax.OpGt},
	{"!!", syntax.OpSendMulti},
	{"!?", syntax.OpSendSync},
	{"!=", syntax.OpNeq},
	{"!", syntax.OpSend},
	{"=>", syntax.OpArrow},
	{"==", syntax.OpEq},
	{"=", syntax.OpAssign},
	{"++", syntax.OpConcat},
	{"+", syntax.OpPlus},
	{"--", syntax.OpDiff},
	{"-", syntax.OpMinus},
	{"%%", syntax.OpInterpolate},
	{"%", syntax.OpPercent},
	{"*", syntax.OpStar},
	{"/\\", syntax.OpConjunction},
	{"/", syntax.OpSlash},
	{"\\/", syntax.OpDisjunction},
	{"~", syntax.OpNegation},
	{"|", syntax.OpPar},
	{"&", syntax.OpAmp},
	{"...", syntax.PunctEllipsis},
	{".", syntax.PunctDot},
	{"(", syntax.PunctLParen},
	{")", syntax.PunctRParen},
	{"{", syntax.PunctLBrace},
	{"}", syntax.PunctRBrace},
	{"[", syntax.PunctLBracket},
	{"]", syntax.PunctRBracket},
	{",", syntax.PunctComma},
	{";", syntax.PunctSemicolon},
	{":", syntax.PunctColon},
	{"@", syntax.PunctAt},
}

// lex splits src into tokens and comments. Malformed input becomes
// KindError tokens: an unterminated string or URI runs to the end of its
// line and an unknown byte is a token of its own.
func lex(src []byte) (tokens, comments []token) {
	i := 0
	for {
		for i < len(src) && isSpace(src[i]) {
			i++
		}
		if i >= len(src) {
			tokens = append(tokens, token{kind: kindEOF, start: uint32(len(src)), end: uint32(len(src))})
			return tokens, comments
		}
		start := i
		c := src[i]
		switch {
		case c == '/' && i+1 < len(src) && src[i+1] == '/':
			for i < len(src) && src[i] != '\n' {
				i++
			}
			if i > start && src[i-1] == '\r' {
				i--
			}
			comments = append(comments, token{kind: syntax.KindLineComment, start: uint32(start), end: uint32(i)})
			continue
		case c == '/' && i+1 < len(src) && src[i+1] == '*':
			i += 2
			for i < len(src) && !(src[i] == '*' && i+1 < len(src) && src[i+1] == '/') {
				i++
			}
			i = min(i+2, len(src))
			comments = append(comments, token{kind: syntax.KindBlockComment, start: uint32(start), end: uint32(i)})
			continue
		case c == '"':
			var tok token
			tok, i = quoted(src, start, syntax.KindStringLiteral)
			tokens = append(tokens, tok)
			continue
		case c == '`':
			var tok token
			tok, i = quoted(src, start, syntax.KindURILiteral)
			tokens = append(tokens, tok)
			continue
		case isDigit(c):
			for i < len(src) && isDigit(src[i]) {
				i++
			}
			tokens = append(tokens, token{kind: syntax.KindLongLiteral, start: uint32(start), end: uint32(i)})
			continue
		case isIdentStart(c):
			for i < len(src) && isIdentPart(src[i]) {
				i++
			}
			kind, ok := keywords[string(src[start:i])]
			if !ok {
				kind = syntax.KindVar
			}
			if kind == syntax.KwBundle && i < len(src) {
				switch src[i] {
				case '+':
					kind, i = syntax.KwBundleRead, i+1
				case '-':
					kind, i = syntax.KwBundleWrite, i+1
				case '0':
					kind, i = syntax.KwBundleEquiv, i+1
				}
			}
			tokens = append(tokens, token{kind: kind, start: uint32(start), end: uint32(i)})
			continue
		}

		kind := syntax.KindError
		_, size := utf8.DecodeRune(src[i:])
		i += size
		for _, s := range symbols {
			if hasPrefix(src[start:], s.text) {
				kind, i = s.kind, start+len(s.text)
				break
			}
		}
		tokens = append(tokens, token{kind: kind, start: uint32(start), end: uint32(i)})
	}
}

// lexQuoted returns the offset just past the literal opened at i and
// whether it was closed. An unterminated literal stops before the line
// break, or before the first closing bracket on the line that it did not
// open itself, so the brackets around it still close their constructs.
func lexQuoted(src []byte, i int, quote byte) (int, bool) {
	depth, cut := 0, -1
	for i++; i < len(src); i++ {
		switch src[i] {
		case '\\':
			if i+1 < len(src) && src[i+1] != '\n' {
				i++
			}
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			if depth == 0 && cut < 0 {
				cut = i
			}
			depth--
		case '\n':
			if cut >= 0 {
				return cut, false
			}
			if src[i-1] == '\r' {
				return i - 1, false
			}
			return i, false
		case quote:
			return i + 1, true
		}
	}
	if cut >= 0 {
		return cut, false
	}
	return i, false
}

func quoted(src []byte, start int, kind syntax.Kind) (token, int) {
	end, ok := lexQuoted(src, start, src[start])
	if !ok {
		kind = syntax.KindError
	}
	return token{kind: kind, start: uint32(start), end: uint32(end)}, end
}

func hasPrefix(b []byte, s string) bool {
	return len(b) >= len(s) && string(b[:len(s)]) == s
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

func isIdentStart(c byte) bool {
	return c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c) || c == '\''
}
