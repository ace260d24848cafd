package syntax

// Kind is the closed set of node kinds the analyses know about. Named
// constructs and anonymous tokens that share spelling (the `new` construct
// and the `new` keyword, say) are distinct kinds.
type Kind uint16

const (
	KindUnknown Kind = iota
	KindError

	// Named constructs.
	KindSourceFile
	KindBlock
	KindPar
	KindNew
	KindNameDecls
	KindNameDecl
	KindContract
	KindNames
	KindInput
	KindReceipts
	KindReceipt
	KindLinearBind
	KindRepeatedBind
	KindPeekBind
	KindSend
	KindSendSync
	KindInputs
	KindEval
	KindQuote
	KindMethod
	KindArgs
	KindLet
	KindDecls
	KindDecl
	KindMatch
	KindCase
	KindChoice
	KindBranch
	KindIfElse
	KindBundle
	KindBinaryExpression
	KindUnaryExpression
	KindVar
	KindWildcard
	KindVarRef
	KindList
	KindTuple
	KindSet
	KindMap
	KindKeyValuePair
	KindStringLiteral
	KindLongLiteral
	KindBoolLiteral
	KindURILiteral
	KindNil
	KindSimpleType
	KindLineComment
	KindBlockComment

	// Keywords.
	KwNew
	KwIn
	KwContract
	KwFor
	KwSelect
	KwMatch
	KwIf
	KwElse
	KwLet
	KwNot
	KwAnd
	KwOr
	KwMatches
	KwBundle
	KwBundleWrite
	KwBundleRead
	KwBundleEquiv
	KwSet

	// Operators.
	OpSend
	OpSendMulti
	OpSendSync
	OpLinearArrow
	OpRepeatedArrow
	OpPeekArrow
	OpArrow
	OpPlus
	OpMinus
	OpStar
	OpSlash
	OpPercent
	OpConcat
	OpDiff
	OpInterpolate
	OpEq
	OpNeq
	OpLt
	OpGt
	OpLte
	OpGte
	OpDisjunction
	OpConjunction
	OpNegation
	OpAssign
	OpPar
	OpAmp

	// Punctuation.
	PunctLParen
	PunctRParen
	PunctLBrace
	PunctRBrace
	PunctLBracket
	PunctRBracket
	PunctComma
	PunctSemicolon
	PunctDot
	PunctAt
	PunctEllipsis
	PunctColon

	kindCount
)

type kindInfo struct {
	name  string
	named bool
}

var kinds = [kindCount]kindInfo{
	KindUnknown:          {"", true},
	KindError:            {"ERROR", true},
	KindSourceFile:       {"source_file", true},
	KindBlock:            {"block", true},
	KindPar:              {"par", true},
	KindNew:              {"new", true},
	KindNameDecls:        {"name_decls", true},
	KindNameDecl:         {"name_decl", true},
	KindContract:         {"contract", true},
	KindNames:            {"names", true},
	KindInput:            {"input", true},
	KindReceipts:         {"receipts", true},
	KindReceipt:          {"receipt", true},
	KindLinearBind:       {"linear_bind", true},
	KindRepeatedBind:     {"repeated_bind", true},
	KindPeekBind:         {"peek_bind", true},
	KindSend:             {"send", true},
	KindSendSync:         {"send_sync", true},
	KindInputs:           {"inputs", true},
	KindEval:             {"eval", true},
	KindQuote:            {"quote", true},
	KindMethod:           {"method", true},
	KindArgs:             {"args", true},
	KindLet:              {"let", true},
	KindDecls:            {"decls", true},
	KindDecl:             {"decl", true},
	KindMatch:            {"match", true},
	KindCase:             {"case", true},
	KindChoice:           {"choice", true},
	KindBranch:           {"branch", true},
	KindIfElse:           {"ifElse", true},
	KindBundle:           {"bundle", true},
	KindBinaryExpression: {"binary_expression", true},
	KindUnaryExpression:  {"unary_expression", true},
	KindVar:              {"var", true},
	KindWildcard:         {"wildcard", true},
	KindVarRef:           {"var_ref", true},
	KindList:             {"list", true},
	KindTuple:            {"tuple", true},
	KindSet:              {"set", true},
	KindMap:              {"map", true},
	KindKeyValuePair:     {"key_value_pair", true},
	KindStringLiteral:    {"string_literal", true},
	KindLongLiteral:      {"long_literal", true},
	KindBoolLiteral:      {"bool_literal", true},
	KindURILiteral:       {"uri_literal", true},
	KindNil:              {"nil", true},
	KindSimpleType:       {"simple_type", true},
	KindLineComment:      {"line_comment", true},
	KindBlockComment:     {"block_comment", true},

	KwNew:         {"new", false},
	KwIn:          {"in", false},
	KwContract:    {"contract", false},
	KwFor:         {"for", false},
	KwSelect:      {"select", false},
	KwMatch:       {"match", false},
	KwIf:          {"if", false},
	KwElse:        {"else", false},
	KwLet:         {"let", false},
	KwNot:         {"not", false},
	KwAnd:         {"and", false},
	KwOr:          {"or", false},
	KwMatches:     {"matches", false},
	KwBundle:      {"bundle", false},
	KwBundleWrite: {"bundle-", false},
	KwBundleRead:  {"bundle+", false},
	KwBundleEquiv: {"bundle0", false},
	KwSet:         {"Set", false},

	OpSend:          {"!", false},
	OpSendMulti:     {"!!", false},
	OpSendSync:      {"!?", false},
	OpLinearArrow:   {"<-", false},
	OpRepeatedArrow: {"<=", false},
	OpPeekArrow:     {"<<-", false},
	OpArrow:         {"=>", false},
	OpPlus:          {"+", false},
	OpMinus:         {"-", false},
	OpStar:          {"*", false},
	OpSlash:         {"/", false},
	OpPercent:       {"%", false},
	OpConcat:        {"++", false},
	OpDiff:          {"--", false},
	OpInterpolate:   {"%%", false},
	OpEq:            {"==", false},
	OpNeq:           {"!=", false},
	OpLt:            {"<", false},
	OpGt:            {">", false},
	OpLte:           {"<=", false},
	OpGte:           {">=", false},
	OpDisjunction:   {"\\/", false},
	OpConjunction:   {"/\\", false},
	OpNegation:      {"~", false},
	OpAssign:        {"=", false},
	OpPar:           {"|", false},
	OpAmp:           {"&", false},

	PunctLParen:    {"(", false},
	PunctRParen:    {")", false},
	PunctLBrace:    {"{", false},
	PunctRBrace:    {"}", false},
	PunctLBracket:  {"[", false},
	PunctRBracket:  {"]", false},
	PunctComma:     {",", false},
	PunctSemicolon: {";", false},
	PunctDot:       {".", false},
	PunctAt:        {"@", false},
	PunctEllipsis:  {"...", false},
	PunctColon:     {":", false},
}

type kindKey struct {
	name  string
	named bool
}

var kindsByName = func() map[kindKey]Kind {
	m := make(map[kindKey]Kind, kindCount)
	for k := Kind(1); k < kindCount; k++ {
		key := kindKey{kinds[k].name, kinds[k].named}
		// "<=" is both the repeated-bind arrow and less-or-equal; the
		// first declaration wins.
		if _, dup := m[key]; !dup {
			m[key] = k
		}
	}
	return m
}()

// KindOf maps a provider's type string and named flag onto a Kind. Types the
// analyses do not know map to KindUnknown.
func KindOf(typ string, named bool) Kind {
	return kindsByName[kindKey{typ, named}]
}

// String returns the grammar spelling of the kind.
func (k Kind) String() string {
	if k >= kindCount {
		return ""
	}
	return kinds[k].name
}

// IsNamed reports whether the kind is a named construct rather than an
// anonymous token.
func (k Kind) IsNamed() bool {
	return k < kindCount && kinds[k].named
}

// IsKeyword reports whether k is an anonymous keyword token.
func (k Kind) IsKeyword() bool {
	return k >= KwNew && k <= KwSet
}

// IsOperator reports whether k is an anonymous operator token.
func (k Kind) IsOperator() bool {
	return k >= OpSend && k <= OpAmp
}

// Field labels an edge from a node to one of its children.
type Field uint8

const (
	FieldNone Field = iota
	FieldName
	FieldDecls
	FieldDecl
	FieldFormals
	FieldProc
	FieldPattern
	FieldReceipts
	FieldNames
	FieldInput
	FieldChannel
	FieldInputs
	FieldReceiver
	FieldArgs
	FieldCondition
	FieldConsequence
	FieldAlternative
	FieldExpression
	FieldCases
	FieldBranches
	FieldLeft
	FieldRight
	FieldOperator
	FieldOperand
	FieldURI
	FieldCont
	FieldRemainder
	FieldKey
	FieldValue
	FieldSendType

	fieldCount
)

var fieldNames = [fieldCount]string{
	FieldNone:        "",
	FieldName:        "name",
	FieldDecls:       "decls",
	FieldDecl:        "decl",
	FieldFormals:     "formals",
	FieldProc:        "proc",
	FieldPattern:     "pattern",
	FieldReceipts:    "receipts",
	FieldNames:       "names",
	FieldInput:       "input",
	FieldChannel:     "channel",
	FieldInputs:      "inputs",
	FieldReceiver:    "receiver",
	FieldArgs:        "args",
	FieldCondition:   "condition",
	FieldConsequence: "consequence",
	FieldAlternative: "alternative",
	FieldExpression:  "expression",
	FieldCases:       "cases",
	FieldBranches:    "branches",
	FieldLeft:        "left",
	FieldRight:       "right",
	FieldOperator:    "operator",
	FieldOperand:     "operand",
	FieldURI:         "uri",
	FieldCont:        "cont",
	FieldRemainder:   "remainder",
	FieldKey:         "key",
	FieldValue:       "value",
	FieldSendType:    "send_type",
}

// FieldOf maps a provider's field name onto a Field; unknown names map to
// FieldNone.
func FieldOf(name string) Field {
	for f := Field(1); f < fieldCount; f++ {
		if fieldNames[f] == name {
			return f
		}
	}
	return FieldNone
}

func (f Field) String() string {
	if f >= fieldCount {
		return ""
	}
	return fieldNames[f]
}
