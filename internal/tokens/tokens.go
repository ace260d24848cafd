// Package tokens classifies the nodes of a syntax tree for semantic
// highlighting.
package tokens

import (
	"sort"
	"strings"

	"github.com/a-k-l-sdao/rholang-lsp/internal/syntax"
)

// Type is a semantic token type. Its value is the index into Legend.
type Type uint32

const (
	Keyword Type = iota
	Variable
	Function
	String
	Number
	Operator
	Comment
	TypeName
	Parameter
	Method
)

// Legend lists the token type names in wire order.
var Legend = []string{
	"keyword",
	"variable",
	"function",
	"string",
	"number",
	"operator",
	"comment",
	"type",
	"parameter",
	"method",
}

// Token is one classified span. Columns and lengths are in bytes.
type Token struct {
	Line   uint32
	Column uint32
	Length uint32
	Type   Type
}

// Collect classifies the tree and returns its tokens ordered by position.
func Collect(tree *syntax.Tree) []Token {
	var toks []Token
	collect(tree.Root(), &toks)
	sort.SliceStable(toks, func(i, j int) bool {
		if toks[i].Line != toks[j].Line {
			return toks[i].Line < toks[j].Line
		}
		return toks[i].Column < toks[j].Column
	})
	return toks
}

func collect(n syntax.Node, toks *[]Token) {
	k := n.Kind()
	switch {
	case k.IsKeyword(), k == syntax.KindBoolLiteral, k == syntax.KindNil:
		*toks = append(*toks, span(n, Keyword))
	case k.IsOperator():
		*toks = append(*toks, span(n, Operator))
	case k == syntax.KindLineComment, k == syntax.KindBlockComment:
		*toks = appendComment(*toks, n)
		return
	case k == syntax.KindStringLiteral, k == syntax.KindURILiteral:
		*toks = append(*toks, span(n, String))
		return
	case k == syntax.KindLongLiteral:
		*toks = append(*toks, span(n, Number))
		return
	case k == syntax.KindSimpleType:
		*toks = append(*toks, span(n, TypeName))
	case k == syntax.KindVar:
		*toks = append(*toks, span(n, classifyVar(n)))
	}
	if !n.IsNamed() {
		return
	}
	for i := 0; i < n.ChildCount(); i++ {
		collect(n.Child(i), toks)
	}
}

func classifyVar(n syntax.Node) Type {
	parent := n.Parent()
	switch parent.Kind() {
	case syntax.KindContract:
		if n.FieldInParent() == syntax.FieldName {
			return Function
		}
	case syntax.KindMethod:
		if n.FieldInParent() == syntax.FieldName {
			return Method
		}
	case syntax.KindNameDecl:
		return Parameter
	case syntax.KindNames:
		if parent.Parent().Kind() == syntax.KindContract {
			return Parameter
		}
	}
	return Variable
}

// span covers n on its first line. A token spanning lines is measured in
// bytes from its start.
func span(n syntax.Node, t Type) Token {
	start, end := n.StartPoint(), n.EndPoint()
	length := end.Column - start.Column
	if start.Row != end.Row {
		length = n.EndByte() - n.StartByte()
	}
	return Token{Line: start.Row, Column: start.Column, Length: length, Type: t}
}

// appendComment emits one token per physical line of a comment. Lines after
// the first start at column 0.
func appendComment(toks []Token, n syntax.Node) []Token {
	start := n.StartPoint()
	lines := strings.Split(n.Text(), "\n")
	if len(lines) > 1 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	line, col := start.Row, start.Column
	for _, l := range lines {
		l = strings.TrimSuffix(l, "\r")
		toks = append(toks, Token{Line: line, Column: col, Length: uint32(len(l)), Type: Comment})
		line++
		col = 0
	}
	return toks
}

// Encode delta-encodes sorted tokens into five integers each: line delta,
// start delta, length, type and modifiers. The start delta is the absolute
// column whenever the line changes.
func Encode(toks []Token) []uint32 {
	data := make([]uint32, 0, len(toks)*5)
	var prevLine, prevCol uint32
	for _, t := range toks {
		dl := t.Line - prevLine
		dc := t.Column
		if dl == 0 {
			dc = t.Column - prevCol
		}
		data = append(data, dl, dc, t.Length, uint32(t.Type), 0)
		prevLine, prevCol = t.Line, t.Column
	}
	return data
}
