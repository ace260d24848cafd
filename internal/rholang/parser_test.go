package rholang_test

import (
	"context"
	"testing"

	"github.com/a-k-l-sdao/rholang-lsp/internal/rholang"
	"github.com/a-k-l-sdao/rholang-lsp/internal/syntax"
	"kr.dev/diff"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "new and send",
			src:  `new x in { x!(1) }`,
			want: `(source_file (new decls: (name_decls decl: (name_decl (var))) proc: (block (send channel: (var) inputs: (inputs (long_literal))))))`,
		},
		{
			name: "contract",
			src:  `contract Foo(x) = { x }`,
			want: `(source_file (contract name: (var) formals: (names (var)) proc: (block (var))))`,
		},
		{
			name: "contract without formals",
			src:  `contract @"foo"() = { Nil }`,
			want: `(source_file (contract name: (quote (string_literal)) proc: (block (nil))))`,
		},
		{
			name: "par",
			src:  `x!(1) | y!(2) | Nil`,
			want: `(source_file (par (send channel: (var) inputs: (inputs (long_literal))) (send channel: (var) inputs: (inputs (long_literal))) (nil)))`,
		},
		{
			name: "receive",
			src:  `for (@a, b <- ch; c <= d & e <<- f) { Nil }`,
			want: `(source_file (input receipts: (receipts (receipt (linear_bind names: (names (quote (var)) (var)) input: (var))) (receipt (repeated_bind names: (names (var)) input: (var)) (peek_bind names: (names (var)) input: (var)))) proc: (block (nil))))`,
		},
		{
			name: "let",
			src:  `let x <- 1; y <- 2 in { x + y }`,
			want: `(source_file (let decls: (decls decl: (decl names: (names (var)) input: (long_literal)) decl: (decl names: (names (var)) input: (long_literal))) proc: (block (binary_expression left: (var) right: (var)))))`,
		},
		{
			name: "match",
			src:  "match x {\n  [a, b] => a!(b)\n  _ => Nil\n}",
			want: `(source_file (match expression: (var) cases: (case pattern: (list (var) (var)) proc: (send channel: (var) inputs: (inputs (var)))) cases: (case pattern: (wildcard) proc: (nil))))`,
		},
		{
			name: "select",
			src:  `select { x <- a => Nil  y <- b & z <- c => Nil }`,
			want: `(source_file (choice branches: (branch pattern: (receipt (linear_bind names: (names (var)) input: (var))) proc: (nil)) branches: (branch pattern: (receipt (linear_bind names: (names (var)) input: (var)) (linear_bind names: (names (var)) input: (var))) proc: (nil))))`,
		},
		{
			name: "if else",
			src:  `if (x == 1) { Nil } else { Nil }`,
			want: `(source_file (ifElse condition: (binary_expression left: (var) right: (long_literal)) consequence: (block (nil)) alternative: (block (nil))))`,
		},
		{
			name: "method and uri",
			src:  "new out(`rho:io:stdout`) in { out!(\"a\".length()) }",
			want: `(source_file (new decls: (name_decls decl: (name_decl (var) uri: (uri_literal))) proc: (block (send channel: (var) inputs: (inputs (method receiver: (string_literal) name: (var) args: (args)))))))`,
		},
		{
			name: "collections",
			src:  `x!([1, 2 ...r], (1, 2), Set(true), {"k": false}, {})`,
			want: `(source_file (send channel: (var) inputs: (inputs (list (long_literal) (long_literal) remainder: (var)) (tuple (long_literal) (long_literal)) (set (bool_literal)) (map (key_value_pair key: (string_literal) value: (bool_literal))) (map))))`,
		},
		{
			name: "eval, var ref and bundle",
			src:  `bundle+ { *x | =y }`,
			want: `(source_file (bundle proc: (block (par (eval (var)) (var_ref (var))))))`,
		},
		{
			name: "comments attach to the smallest enclosing node",
			src:  "// top\nnew x in {\n  /* inner */ x!(1)\n}",
			want: `(source_file (line_comment) (new decls: (name_decls decl: (name_decl (var))) proc: (block (block_comment) (send channel: (var) inputs: (inputs (long_literal))))))`,
		},
		{
			name: "missing closer",
			src:  "x!(1",
			want: `(source_file (send channel: (var) inputs: (inputs (long_literal)) (MISSING ")")))`,
		},
		{
			name: "unterminated string",
			src:  "new ok in { ok!(1) }\n|\nnew bad in {\n  bad!(\"oops\n}",
			want: `(source_file (par (new decls: (name_decls decl: (name_decl (var))) proc: (block (send channel: (var) inputs: (inputs (long_literal))))) (new decls: (name_decls decl: (name_decl (var))) proc: (block (ERROR (var) (ERROR))))))`,
		},
		{
			name: "unterminated string keeps its closers",
			src:  "new a in { a!(\"abc) }\n|\nnew z in { a!(2) }",
			want: `(source_file (par (new decls: (name_decls decl: (name_decl (var))) proc: (block (ERROR (var) (ERROR)))) (new decls: (name_decls decl: (name_decl (var))) proc: (block (send channel: (var) inputs: (inputs (long_literal)))))))`,
		},
		{
			name: "stray closer",
			src:  "Nil }",
			want: `(source_file (nil) (ERROR))`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := rholang.Parse([]byte(tt.src))
			diff.Test(t, t.Errorf, tree.Root().String(), tt.want)
		})
	}
}

func TestParseRanges(t *testing.T) {
	src := "new x in {\n  x!(1)\n}"
	root := rholang.Parse([]byte(src)).Root()

	if root.StartByte() != 0 || root.EndByte() != uint32(len(src)) {
		t.Fatalf("root spans [%d, %d), want [0, %d)", root.StartByte(), root.EndByte(), len(src))
	}

	use := root.NamedDescendantForPointRange(syntax.Point{Row: 1, Column: 2}, syntax.Point{Row: 1, Column: 2})
	if use.Kind() != syntax.KindVar || use.Text() != "x" {
		t.Fatalf("expected var x at 1:2, got %s %q", use.Type(), use.Text())
	}
	if got, want := use.StartPoint(), (syntax.Point{Row: 1, Column: 2}); got != want {
		t.Errorf("start point = %v, want %v", got, want)
	}
	if got := use.Parent().Kind(); got != syntax.KindSend {
		t.Errorf("parent = %s, want send", got)
	}
	if got := use.FieldInParent(); got != syntax.FieldChannel {
		t.Errorf("field = %s, want channel", got)
	}

	kw := root.NamedDescendantForByteRange(0, 0)
	if kw.Kind() != syntax.KindNew {
		t.Errorf("cursor on keyword selects %s, want new", kw.Type())
	}
}

func TestParseErrorFlags(t *testing.T) {
	root := rholang.Parse([]byte("new a in { a!(1) }\n|\nfor (x) { Nil }")).Root()
	if !root.HasError() {
		t.Fatal("expected root to contain an error")
	}
	par := root.NamedChild(0)
	if par.Kind() != syntax.KindPar {
		t.Fatalf("expected par, got %s", par.Type())
	}
	if par.NamedChild(0).HasError() {
		t.Error("well-formed sibling marked as containing an error")
	}
	if !par.NamedChild(1).IsError() {
		t.Errorf("expected ERROR, got %s", par.NamedChild(1).Type())
	}
}

func TestParserInterface(t *testing.T) {
	pool, err := syntax.NewPool(1, func() (syntax.Parser, error) { return rholang.NewParser(), nil })
	if err != nil {
		t.Fatal(err)
	}
	defer pool.Close()

	tree, err := pool.Parse(context.Background(), []byte("Nil"), nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := tree.Root().String(); got != "(source_file (nil))" {
		t.Errorf("got %s", got)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := pool.Parse(ctx, []byte("Nil"), nil, nil); err == nil {
		t.Error("expected an error for a cancelled context")
	}
}
