// Package rholang parses Rholang source into syntax trees.
//
// The parser is a hand-written recursive descent over the token stream with
// statement-level error recovery: a process that fails to parse is replaced
// by an ERROR node spanning its tokens up to the next `|` or closing bracket,
// and an absent closing bracket before another closer or the end of input
// becomes a MISSING node.
package rholang

import (
	"context"

	"github.com/a-k-l-sdao/rholang-lsp/internal/syntax"
)

// Parser implements syntax.Parser for Rholang.
type Parser struct{}

// NewParser returns a Rholang parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse parses src from scratch. The previous tree and edit are accepted for
// interface compatibility; parsing is linear in the size of src.
func (*Parser) Parse(ctx context.Context, src []byte, _ *syntax.Tree, _ *syntax.InputEdit) (*syntax.Tree, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Parse(src), nil
}

func (*Parser) Close() error { return nil }

// Parse parses src into a tree rooted at a source_file node. It never fails;
// malformed input is represented by ERROR and MISSING nodes.
func Parse(src []byte) *syntax.Tree {
	toks, comments := lex(src)
	p := &parser{src: src, toks: toks, b: syntax.NewBuilder(src)}

	var children []syntax.Child
	for !p.at(kindEOF) {
		if isCloser(p.peek().kind) {
			leaf := p.leaf()
			children = append(children, syntax.Child{ID: p.b.Branch(syntax.KindError, 0, []syntax.Child{{ID: leaf}})})
			continue
		}
		children = append(children, syntax.Child{ID: p.par(true)})
	}
	for _, c := range comments {
		p.b.Extra(c.kind, c.start, c.end)
	}
	return p.b.Finish(p.b.Branch(syntax.KindSourceFile, 0, children))
}

type bailout struct{}

type parser struct {
	src  []byte
	toks []token
	pos  int
	b    *syntax.Builder
}

func (p *parser) peek() token {
	return p.toks[p.pos]
}

func (p *parser) peekAt(n int) token {
	if p.pos+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+n]
}

func (p *parser) at(k syntax.Kind) bool {
	return p.peek().kind == k
}

func (p *parser) prevEnd() uint32 {
	if p.pos == 0 {
		return 0
	}
	return p.toks[p.pos-1].end
}

func (p *parser) fail() {
	panic(bailout{})
}

// leaf consumes the current token as a leaf node.
func (p *parser) leaf() syntax.NodeID {
	t := p.peek()
	if t.kind == kindEOF {
		p.fail()
	}
	p.pos++
	kind := t.kind
	if kind == syntax.KindVar && t.end-t.start == 1 && p.src[t.start] == '_' {
		kind = syntax.KindWildcard
	}
	return p.b.Leaf(kind, t.start, t.end)
}

func (p *parser) leafAs(kind syntax.Kind) syntax.NodeID {
	t := p.peek()
	p.pos++
	return p.b.Leaf(kind, t.start, t.end)
}

// expect consumes a token of kind k. A closing bracket that is absent
// before another closer or the end of input is recorded as missing.
func (p *parser) expect(k syntax.Kind) syntax.NodeID {
	if p.at(k) {
		return p.leaf()
	}
	if isCloser(k) && (p.at(kindEOF) || isCloser(p.peek().kind)) {
		return p.b.Missing(k, p.prevEnd())
	}
	p.fail()
	return 0
}

func isOpener(k syntax.Kind) bool {
	return k == syntax.PunctLParen || k == syntax.PunctLBrace || k == syntax.PunctLBracket
}

func isCloser(k syntax.Kind) bool {
	return k == syntax.PunctRParen || k == syntax.PunctRBrace || k == syntax.PunctRBracket
}

// par parses processes joined by `|`. With recovery, each operand that
// fails to parse becomes an ERROR node.
func (p *parser) par(recovery bool) syntax.NodeID {
	operand := p.proc
	if recovery {
		operand = p.statement
	}
	children := []syntax.Child{{ID: operand()}}
	for p.at(syntax.OpPar) {
		bar := p.leaf()
		if p.at(kindEOF) || isCloser(p.peek().kind) {
			if !recovery {
				p.fail()
			}
			children = append(children, syntax.Child{ID: p.b.Branch(syntax.KindError, 0, []syntax.Child{{ID: bar}})})
			break
		}
		children = append(children, syntax.Child{ID: bar}, syntax.Child{ID: operand()})
	}
	if len(children) == 1 {
		return children[0].ID
	}
	return p.b.Branch(syntax.KindPar, 0, children)
}

// statement parses one process, replacing it by an ERROR node when it
// does not parse.
func (p *parser) statement() (id syntax.NodeID) {
	mark, pos := p.b.Mark(), p.pos
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(bailout); !ok {
				panic(r)
			}
			p.b.Reset(mark)
			p.pos = pos
			id = p.skip()
		}
	}()
	return p.proc()
}

// skip wraps tokens in an ERROR node up to the next `|` or closing bracket
// outside the brackets it opened. A closer that does not match the
// innermost open bracket belongs to an enclosing construct and also stops
// the skip.
func (p *parser) skip() syntax.NodeID {
	var children []syntax.Child
	var open []syntax.Kind
	for first := true; !p.at(kindEOF); first = false {
		k := p.peek().kind
		if len(open) == 0 && (isCloser(k) || (!first && k == syntax.OpPar)) {
			break
		}
		switch {
		case isOpener(k):
			open = append(open, k)
		case isCloser(k):
			if open[len(open)-1] != openerOf(k) {
				return p.b.Branch(syntax.KindError, p.prevEnd(), children)
			}
			open = open[:len(open)-1]
		}
		children = append(children, syntax.Child{ID: p.leaf()})
	}
	return p.b.Branch(syntax.KindError, p.prevEnd(), children)
}

func openerOf(closer syntax.Kind) syntax.Kind {
	switch closer {
	case syntax.PunctRParen:
		return syntax.PunctLParen
	case syntax.PunctRBracket:
		return syntax.PunctLBracket
	}
	return syntax.PunctLBrace
}

// proc parses a single process without `|`.
func (p *parser) proc() syntax.NodeID {
	switch p.peek().kind {
	case syntax.KwNew:
		return p.newProc()
	case syntax.KwContract:
		return p.contract()
	case syntax.KwFor:
		return p.input()
	case syntax.KwSelect:
		return p.choice()
	case syntax.KwMatch:
		return p.match()
	case syntax.KwLet:
		return p.let()
	case syntax.KwIf:
		return p.ifElse()
	case syntax.KwBundle, syntax.KwBundleRead, syntax.KwBundleWrite, syntax.KwBundleEquiv:
		kw := p.leaf()
		return p.b.Branch(syntax.KindBundle, 0, []syntax.Child{{ID: kw}, {ID: p.block(), Field: syntax.FieldProc}})
	}
	return p.send(p.expr(0))
}

// send parses a send on channel, if one follows.
func (p *parser) send(channel syntax.NodeID) syntax.NodeID {
	kind := syntax.KindSend
	switch p.peek().kind {
	case syntax.OpSend, syntax.OpSendMulti:
	case syntax.OpSendSync:
		kind = syntax.KindSendSync
	default:
		return channel
	}
	children := []syntax.Child{
		{ID: channel, Field: syntax.FieldChannel},
		{ID: p.leaf(), Field: syntax.FieldSendType},
		{ID: p.expect(syntax.PunctLParen)},
	}
	at := p.prevEnd()
	children = append(children, syntax.Child{ID: p.b.Branch(syntax.KindInputs, at, p.elems(syntax.PunctRParen)), Field: syntax.FieldInputs})
	children = append(children, syntax.Child{ID: p.expect(syntax.PunctRParen)})
	if kind == syntax.KindSendSync && p.at(syntax.PunctSemicolon) {
		children = append(children, syntax.Child{ID: p.leaf()}, syntax.Child{ID: p.proc(), Field: syntax.FieldCont})
	}
	return p.b.Branch(kind, 0, children)
}

// elems parses comma separated processes up to closer, with an optional
// `...` remainder.
func (p *parser) elems(closer syntax.Kind) []syntax.Child {
	var children []syntax.Child
	for !p.at(closer) && !p.at(kindEOF) {
		if p.at(syntax.PunctEllipsis) {
			children = append(children, syntax.Child{ID: p.leaf()}, syntax.Child{ID: p.name(), Field: syntax.FieldRemainder})
			break
		}
		children = append(children, syntax.Child{ID: p.par(false)})
		if p.at(syntax.PunctEllipsis) {
			continue
		}
		if !p.at(syntax.PunctComma) {
			break
		}
		children = append(children, syntax.Child{ID: p.leaf()})
	}
	return children
}

func (p *parser) newProc() syntax.NodeID {
	kw := p.leaf()
	declsAt := p.prevEnd()
	var decls []syntax.Child
	for {
		decls = append(decls, syntax.Child{ID: p.nameDecl(), Field: syntax.FieldDecl})
		if !p.at(syntax.PunctComma) {
			break
		}
		decls = append(decls, syntax.Child{ID: p.leaf()})
	}
	return p.b.Branch(syntax.KindNew, 0, []syntax.Child{
		{ID: kw},
		{ID: p.b.Branch(syntax.KindNameDecls, declsAt, decls), Field: syntax.FieldDecls},
		{ID: p.want(syntax.KwIn)},
		{ID: p.proc(), Field: syntax.FieldProc},
	})
}

// want consumes a token of kind k and fails without one.
func (p *parser) want(k syntax.Kind) syntax.NodeID {
	if !p.at(k) {
		p.fail()
	}
	return p.leaf()
}

func (p *parser) nameDecl() syntax.NodeID {
	if !p.at(syntax.KindVar) {
		p.fail()
	}
	children := []syntax.Child{{ID: p.leaf()}}
	if p.at(syntax.PunctLParen) {
		children = append(children, syntax.Child{ID: p.leaf()})
		if !p.at(syntax.KindURILiteral) {
			p.fail()
		}
		children = append(children, syntax.Child{ID: p.leaf(), Field: syntax.FieldURI})
		children = append(children, syntax.Child{ID: p.expect(syntax.PunctRParen)})
	}
	return p.b.Branch(syntax.KindNameDecl, 0, children)
}

// name parses a channel name: a variable, a wildcard or a quoted process.
func (p *parser) name() syntax.NodeID {
	switch p.peek().kind {
	case syntax.KindVar:
		return p.leaf()
	case syntax.PunctAt:
		return p.quote()
	}
	p.fail()
	return 0
}

func (p *parser) quote() syntax.NodeID {
	at := p.leaf()
	return p.b.Branch(syntax.KindQuote, 0, []syntax.Child{{ID: at}, {ID: p.primary()}})
}

// names parses a comma separated list of names with an optional
// `...@rest` remainder.
func (p *parser) names() syntax.NodeID {
	at := p.prevEnd()
	var children []syntax.Child
	for {
		if p.at(syntax.PunctEllipsis) {
			children = append(children, syntax.Child{ID: p.leaf()}, syntax.Child{ID: p.name(), Field: syntax.FieldRemainder})
			break
		}
		children = append(children, syntax.Child{ID: p.name()})
		if !p.at(syntax.PunctComma) {
			break
		}
		children = append(children, syntax.Child{ID: p.leaf()})
	}
	return p.b.Branch(syntax.KindNames, at, children)
}

func (p *parser) contract() syntax.NodeID {
	children := []syntax.Child{
		{ID: p.leaf()},
		{ID: p.name(), Field: syntax.FieldName},
		{ID: p.expect(syntax.PunctLParen)},
	}
	if !p.at(syntax.PunctRParen) {
		children = append(children, syntax.Child{ID: p.names(), Field: syntax.FieldFormals})
	}
	children = append(children,
		syntax.Child{ID: p.expect(syntax.PunctRParen)},
		syntax.Child{ID: p.want(syntax.OpAssign)},
		syntax.Child{ID: p.block(), Field: syntax.FieldProc},
	)
	return p.b.Branch(syntax.KindContract, 0, children)
}

func (p *parser) input() syntax.NodeID {
	kw := p.leaf()
	lparen := p.expect(syntax.PunctLParen)
	at := p.prevEnd()
	var receipts []syntax.Child
	for {
		receipts = append(receipts, syntax.Child{ID: p.receipt()})
		if !p.at(syntax.PunctSemicolon) {
			break
		}
		receipts = append(receipts, syntax.Child{ID: p.leaf()})
	}
	return p.b.Branch(syntax.KindInput, 0, []syntax.Child{
		{ID: kw},
		{ID: lparen},
		{ID: p.b.Branch(syntax.KindReceipts, at, receipts), Field: syntax.FieldReceipts},
		{ID: p.expect(syntax.PunctRParen)},
		{ID: p.block(), Field: syntax.FieldProc},
	})
}

// receipt parses binds joined by `&`.
func (p *parser) receipt() syntax.NodeID {
	children := []syntax.Child{{ID: p.bind()}}
	for p.at(syntax.OpAmp) {
		children = append(children, syntax.Child{ID: p.leaf()}, syntax.Child{ID: p.bind()})
	}
	return p.b.Branch(syntax.KindReceipt, 0, children)
}

func (p *parser) bind() syntax.NodeID {
	names := p.names()
	var kind syntax.Kind
	switch p.peek().kind {
	case syntax.OpLinearArrow:
		kind = syntax.KindLinearBind
	case syntax.OpRepeatedArrow:
		kind = syntax.KindRepeatedBind
	case syntax.OpPeekArrow:
		kind = syntax.KindPeekBind
	default:
		p.fail()
	}
	return p.b.Branch(kind, 0, []syntax.Child{
		{ID: names, Field: syntax.FieldNames},
		{ID: p.leaf()},
		{ID: p.name(), Field: syntax.FieldInput},
	})
}

func (p *parser) choice() syntax.NodeID {
	children := []syntax.Child{{ID: p.leaf()}, {ID: p.expect(syntax.PunctLBrace)}}
	for !p.at(syntax.PunctRBrace) && !p.at(kindEOF) {
		children = append(children, syntax.Child{ID: p.branch(), Field: syntax.FieldBranches})
	}
	children = append(children, syntax.Child{ID: p.expect(syntax.PunctRBrace)})
	return p.b.Branch(syntax.KindChoice, 0, children)
}

func (p *parser) branch() syntax.NodeID {
	return p.b.Branch(syntax.KindBranch, 0, []syntax.Child{
		{ID: p.receipt(), Field: syntax.FieldPattern},
		{ID: p.want(syntax.OpArrow)},
		{ID: p.par(true), Field: syntax.FieldProc},
	})
}

func (p *parser) match() syntax.NodeID {
	children := []syntax.Child{
		{ID: p.leaf()},
		{ID: p.expr(0), Field: syntax.FieldExpression},
		{ID: p.expect(syntax.PunctLBrace)},
	}
	for !p.at(syntax.PunctRBrace) && !p.at(kindEOF) {
		pattern := p.proc()
		children = append(children, syntax.Child{ID: p.b.Branch(syntax.KindCase, 0, []syntax.Child{
			{ID: pattern, Field: syntax.FieldPattern},
			{ID: p.want(syntax.OpArrow)},
			{ID: p.par(true), Field: syntax.FieldProc},
		}), Field: syntax.FieldCases})
	}
	children = append(children, syntax.Child{ID: p.expect(syntax.PunctRBrace)})
	return p.b.Branch(syntax.KindMatch, 0, children)
}

func (p *parser) let() syntax.NodeID {
	kw := p.leaf()
	at := p.prevEnd()
	var decls []syntax.Child
	for {
		decls = append(decls, syntax.Child{ID: p.decl(), Field: syntax.FieldDecl})
		if !p.at(syntax.PunctSemicolon) && !p.at(syntax.OpAmp) {
			break
		}
		decls = append(decls, syntax.Child{ID: p.leaf()})
	}
	return p.b.Branch(syntax.KindLet, 0, []syntax.Child{
		{ID: kw},
		{ID: p.b.Branch(syntax.KindDecls, at, decls), Field: syntax.FieldDecls},
		{ID: p.want(syntax.KwIn)},
		{ID: p.proc(), Field: syntax.FieldProc},
	})
}

func (p *parser) decl() syntax.NodeID {
	children := []syntax.Child{{ID: p.names(), Field: syntax.FieldNames}}
	if !p.at(syntax.OpLinearArrow) {
		p.fail()
	}
	children = append(children, syntax.Child{ID: p.leaf()})
	for {
		children = append(children, syntax.Child{ID: p.proc(), Field: syntax.FieldInput})
		if !p.at(syntax.PunctComma) {
			break
		}
		children = append(children, syntax.Child{ID: p.leaf()})
	}
	return p.b.Branch(syntax.KindDecl, 0, children)
}

func (p *parser) ifElse() syntax.NodeID {
	children := []syntax.Child{
		{ID: p.leaf()},
		{ID: p.expect(syntax.PunctLParen)},
		{ID: p.par(false), Field: syntax.FieldCondition},
		{ID: p.expect(syntax.PunctRParen)},
		{ID: p.proc(), Field: syntax.FieldConsequence},
	}
	if p.at(syntax.KwElse) {
		children = append(children, syntax.Child{ID: p.leaf()}, syntax.Child{ID: p.proc(), Field: syntax.FieldAlternative})
	}
	return p.b.Branch(syntax.KindIfElse, 0, children)
}

func (p *parser) block() syntax.NodeID {
	if !p.at(syntax.PunctLBrace) {
		p.fail()
	}
	children := []syntax.Child{{ID: p.leaf()}}
	if !p.at(syntax.PunctRBrace) && !p.at(kindEOF) {
		children = append(children, syntax.Child{ID: p.par(true)})
	}
	children = append(children, syntax.Child{ID: p.expect(syntax.PunctRBrace)})
	return p.b.Branch(syntax.KindBlock, 0, children)
}

// Binary operator precedence, loosest first.
var binaryLevels = [][]syntax.Kind{
	{syntax.OpDisjunction},
	{syntax.OpConjunction},
	{syntax.KwOr},
	{syntax.KwAnd},
	{syntax.KwMatches},
	{syntax.OpEq, syntax.OpNeq},
	{syntax.OpLt, syntax.OpRepeatedArrow, syntax.OpGt, syntax.OpGte},
	{syntax.OpConcat, syntax.OpDiff, syntax.OpInterpolate},
	{syntax.OpPlus, syntax.OpMinus},
	{syntax.OpStar, syntax.OpSlash, syntax.OpPercent},
}

func (p *parser) atLevel(level int) bool {
	for _, k := range binaryLevels[level] {
		if p.at(k) {
			return true
		}
	}
	return false
}

// expr parses a left-associative binary expression at level and tighter.
func (p *parser) expr(level int) syntax.NodeID {
	if level == len(binaryLevels) {
		return p.unary()
	}
	left := p.expr(level + 1)
	for p.atLevel(level) {
		var op syntax.NodeID
		if p.at(syntax.OpRepeatedArrow) {
			op = p.leafAs(syntax.OpLte)
		} else {
			op = p.leaf()
		}
		right := p.expr(level + 1)
		left = p.b.Branch(syntax.KindBinaryExpression, 0, []syntax.Child{
			{ID: left, Field: syntax.FieldLeft},
			{ID: op, Field: syntax.FieldOperator},
			{ID: right, Field: syntax.FieldRight},
		})
	}
	return left
}

func (p *parser) unary() syntax.NodeID {
	switch p.peek().kind {
	case syntax.KwNot, syntax.OpMinus, syntax.OpNegation:
		op := p.leaf()
		return p.b.Branch(syntax.KindUnaryExpression, 0, []syntax.Child{
			{ID: op, Field: syntax.FieldOperator},
			{ID: p.unary(), Field: syntax.FieldOperand},
		})
	}
	return p.postfix(p.primary())
}

// postfix parses method calls on receiver.
func (p *parser) postfix(receiver syntax.NodeID) syntax.NodeID {
	for p.at(syntax.PunctDot) {
		dot := p.leaf()
		if !p.at(syntax.KindVar) {
			p.fail()
		}
		children := []syntax.Child{
			{ID: receiver, Field: syntax.FieldReceiver},
			{ID: dot},
			{ID: p.leaf(), Field: syntax.FieldName},
			{ID: p.expect(syntax.PunctLParen)},
		}
		at := p.prevEnd()
		children = append(children,
			syntax.Child{ID: p.b.Branch(syntax.KindArgs, at, p.elems(syntax.PunctRParen)), Field: syntax.FieldArgs},
			syntax.Child{ID: p.expect(syntax.PunctRParen)},
		)
		receiver = p.b.Branch(syntax.KindMethod, 0, children)
	}
	return receiver
}

func (p *parser) primary() syntax.NodeID {
	switch p.peek().kind {
	case syntax.KindVar, syntax.KindStringLiteral, syntax.KindLongLiteral, syntax.KindBoolLiteral,
		syntax.KindURILiteral, syntax.KindNil, syntax.KindSimpleType:
		return p.leaf()
	case syntax.PunctAt:
		return p.quote()
	case syntax.OpStar:
		star := p.leaf()
		return p.b.Branch(syntax.KindEval, 0, []syntax.Child{{ID: star}, {ID: p.name()}})
	case syntax.OpAssign:
		eq := p.leaf()
		var target syntax.NodeID
		if p.at(syntax.OpStar) {
			star := p.leaf()
			target = p.b.Branch(syntax.KindEval, 0, []syntax.Child{{ID: star}, {ID: p.name()}})
		} else if p.at(syntax.KindVar) {
			target = p.leaf()
		} else {
			p.fail()
		}
		return p.b.Branch(syntax.KindVarRef, 0, []syntax.Child{{ID: eq}, {ID: target}})
	case syntax.PunctLParen:
		return p.parenthesized()
	case syntax.PunctLBracket:
		children := []syntax.Child{{ID: p.leaf()}}
		children = append(children, p.elems(syntax.PunctRBracket)...)
		children = append(children, syntax.Child{ID: p.expect(syntax.PunctRBracket)})
		return p.b.Branch(syntax.KindList, 0, children)
	case syntax.KwSet:
		children := []syntax.Child{{ID: p.leaf()}, {ID: p.expect(syntax.PunctLParen)}}
		children = append(children, p.elems(syntax.PunctRParen)...)
		children = append(children, syntax.Child{ID: p.expect(syntax.PunctRParen)})
		return p.b.Branch(syntax.KindSet, 0, children)
	case syntax.PunctLBrace:
		if p.peekAt(1).kind == syntax.PunctRBrace || p.peekAt(2).kind == syntax.PunctColon {
			return p.mapLiteral()
		}
		return p.block()
	}
	p.fail()
	return 0
}

// parenthesized parses a tuple or a process in parentheses. A
// parenthesized process is returned without a node of its own.
func (p *parser) parenthesized() syntax.NodeID {
	open := p.peek()
	p.pos++
	if p.at(syntax.PunctRParen) || p.at(syntax.PunctComma) {
		p.fail()
	}
	first := p.par(false)
	if !p.at(syntax.PunctComma) {
		if !p.at(syntax.PunctRParen) {
			p.fail()
		}
		p.pos++
		return first
	}
	children := []syntax.Child{
		{ID: p.b.Leaf(syntax.PunctLParen, open.start, open.end)},
		{ID: first},
		{ID: p.leaf()},
	}
	children = append(children, p.elems(syntax.PunctRParen)...)
	children = append(children, syntax.Child{ID: p.expect(syntax.PunctRParen)})
	return p.b.Branch(syntax.KindTuple, 0, children)
}

func (p *parser) mapLiteral() syntax.NodeID {
	children := []syntax.Child{{ID: p.leaf()}}
	for !p.at(syntax.PunctRBrace) && !p.at(kindEOF) {
		key := p.expr(0)
		colon := p.want(syntax.PunctColon)
		children = append(children, syntax.Child{ID: p.b.Branch(syntax.KindKeyValuePair, 0, []syntax.Child{
			{ID: key, Field: syntax.FieldKey},
			{ID: colon},
			{ID: p.par(false), Field: syntax.FieldValue},
		})})
		if !p.at(syntax.PunctComma) {
			break
		}
		children = append(children, syntax.Child{ID: p.leaf()})
	}
	children = append(children, syntax.Child{ID: p.expect(syntax.PunctRBrace)})
	return p.b.Branch(syntax.KindMap, 0, children)
}
