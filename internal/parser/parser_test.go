package parser_test

import (
	"bytes"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/funvibe/serpent/internal/ast"
	"github.com/funvibe/serpent/internal/diagnostics"
	"github.com/funvibe/serpent/internal/fuzz/generators"
	"github.com/funvibe/serpent/internal/lexer"
	"github.com/funvibe/serpent/internal/parser"
	"github.com/funvibe/serpent/internal/pipeline"
	"github.com/funvibe/serpent/internal/token"
)

var update = flag.Bool("update", false, "update snapshot files")

func TestParser(t *testing.T) {
	testCases := []struct {
		name  string
		input string
	}{
		{"precedence", "x = 1+2*3"},
		{"do_while", "i = 0\ndo:\n    i += 1\nwhile i < 3"},
		{"class_method", "class S:\n    def __init__(self, s):\n        self.s = s"},
		{"suffix_chain", "d = {\"a\": [1, 2][0:], \"b\": x.y(1)[2]}"},
		{"multi_assign", "a, b = (1, 2)"},
		{"unary_chain", "x = not -y"},
		{"if_elif_else", "if a:\n    pass\nelif b:\n    x = 1\nelse:\n    y = None"},
		{"multiline_list", "x = [1,\n     2]\n\nprint(x)"},
		{"imports", "import a, b\nfrom c import d"},
		{"def_return", "def f(n):\n    while n > 0:\n        n -= 1\n    return"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := &pipeline.Context{Module: "main", Source: tc.input}
			ctx = pipeline.New(&lexer.LexerProcessor{}, &parser.ParserProcessor{}).Run(ctx)
			if ctx.Err != nil {
				t.Fatalf("parsing failed: %s", ctx.Err)
			}

			actual := "--- Input ---\n" + tc.input + "\n\n--- AST Tree ---\n" + ast.Dump(ctx.Root)

			snapshotFile := filepath.Join("testdata", tc.name+".snap")
			if *update {
				if err := os.WriteFile(snapshotFile, []byte(actual), 0644); err != nil {
					t.Fatalf("failed to update snapshot: %v", err)
				}
				return
			}

			expected, err := os.ReadFile(snapshotFile)
			if err != nil {
				t.Fatalf("failed to read snapshot file: %v. Run with -update flag to create it.", err)
			}
			if string(expected) != actual {
				t.Errorf("snapshot mismatch:\n--- expected\n%s\n--- actual\n%s", string(expected), actual)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		code  diagnostics.ErrorCode
		line  int
		col   int
	}{
		{"unexpected eof", "x = (1 +", diagnostics.ErrP001, 0, 8},
		{"missing indent", "if x:\ny = 1", diagnostics.ErrP002, 1, 0},
		{"over indented", "if x:\n    a = 1\n      b = 2", diagnostics.ErrP002, 2, 6},
		{"return outside def", "return 1", diagnostics.ErrP001, 0, 0},
		{"junk after statement", "x = 1 2", diagnostics.ErrP001, 0, 6},
		{"dedent below module column", "  x = 1\ny = 2", diagnostics.ErrP003, 1, 0},
		{"unterminated string", `x = "abc`, diagnostics.ErrL001, 0, 4},
		{"self not first", "def f(a, self):\n    pass", diagnostics.ErrP001, 0, 9},
		{"duplicate parameter", "def f(a, a):\n    pass", diagnostics.ErrP001, 0, 9},
		{"assign to literal", "1 = x", diagnostics.ErrP001, 0, 0},
		{"assign to call", "f() = x", diagnostics.ErrP001, 0, 0},
		{"augmented multi target", "a, b += 1", diagnostics.ErrP001, 0, 5},
		{"do without while", "do:\n    x = 1\ny = 2", diagnostics.ErrP001, 2, 0},
		{"dangling else", "else:\n    pass", diagnostics.ErrP001, 0, 0},
		{"statement in class body", "class C:\n    x = 1", diagnostics.ErrP001, 1, 4},
		{"unknown character", "x = a @ b", diagnostics.ErrL001, 0, 6},
		{"empty parens", "x = ()", diagnostics.ErrP001, 0, 5},
		{"misaligned elif", "if a:\n    pass\n elif b:\n    pass", diagnostics.ErrP002, 2, 1},
		{"header without newline", "while x: pass", diagnostics.ErrP001, 0, 9},
		{"return in class body", "class C:\n    return", diagnostics.ErrP001, 1, 4},
		{"indent error before bad character", "while x:\nfoo()\nz = a @ b", diagnostics.ErrP002, 1, 0},
		{"syntax error before open string", "x = = 1\ny = \"abc", diagnostics.ErrP001, 0, 4},
		{"bad character in block", "if x:\n    y = 1\n    $", diagnostics.ErrL001, 2, 4},
		{"bad character as block start", "if x:\n@", diagnostics.ErrL001, 1, 0},
		{"double trailing comma", "x = [1,,]", diagnostics.ErrP001, 0, 7},
		{"lone comma in parens", "x = (,)", diagnostics.ErrP001, 0, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parser.Parse("main", tt.input, false)
			if err == nil {
				t.Fatalf("expected %s error, got none", tt.code)
			}
			if err.Code != tt.code {
				t.Fatalf("expected code %s, got %s", tt.code, err)
			}
			if !err.HasRange() {
				t.Fatalf("parse error without range: %s", err)
			}
			if err.Range.Start.Line != tt.line || err.Range.Start.Column != tt.col {
				t.Errorf("expected error at %d:%d, got %s", tt.line, tt.col, err)
			}
			if err.Module != "main" {
				t.Errorf("expected module main, got %q", err.Module)
			}
		})
	}
}

func TestRanges(t *testing.T) {
	root, err := parser.Parse("main", "1+2*3", false)
	if err != nil {
		t.Fatal(err)
	}
	want := token.Range{End: token.Position{Column: 5}}
	if root.Range != want {
		t.Errorf("module range: expected %s, got %s", want, root.Range)
	}

	sum := root.Children[0].Left()
	if sum.Kind != ast.BinaryOp || sum.Children[1].Text() != "+" {
		t.Fatalf("expected + at the top, got\n%s", ast.Dump(root))
	}
	product := sum.Right()
	if product.Kind != ast.BinaryOp || product.Children[1].Text() != "*" {
		t.Fatalf("expected * as the deeper node, got\n%s", ast.Dump(root))
	}
	want = token.Range{Start: token.Position{Column: 2}, End: token.Position{Column: 5}}
	if product.Range != want {
		t.Errorf("product range: expected %s, got %s", want, product.Range)
	}
}

func TestBlockRangeSpansLines(t *testing.T) {
	root, err := parser.Parse("main", "while x:\n    y = 1\n", false)
	if err != nil {
		t.Fatal(err)
	}
	loop := root.Children[0]
	want := token.Range{End: token.Position{Line: 1, Column: 9}}
	if loop.Range != want {
		t.Errorf("while range: expected %s, got %s", want, loop.Range)
	}
}

func TestEmptyModule(t *testing.T) {
	for _, src := range []string{"", "\n\n", "# only a comment\n"} {
		root, err := parser.Parse("main", src, false)
		if err != nil {
			t.Fatalf("%q: %s", src, err)
		}
		if root.Kind != ast.Block || len(root.Children) != 0 {
			t.Errorf("%q: expected empty block, got\n%s", src, ast.Dump(root))
		}
	}
}

func TestTrailingComma(t *testing.T) {
	tests := []struct {
		name  string
		input string
		kind  ast.Kind
		items int
	}{
		{"list", "x = [1, 2,]", ast.List, 2},
		{"dict across lines", "x = {\n    \"a\": 1,\n    \"b\": 2,\n}", ast.Dict, 2},
		{"tuple", "x = (1, 2,)", ast.Tuple, 2},
		{"one element tuple", "x = (1,)", ast.Tuple, 1},
		{"arguments", "x = f(1,)", ast.ArgList, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root, err := parser.Parse("main", tt.input, false)
			if err != nil {
				t.Fatal(err)
			}
			node := root.Children[0].Right()
			if node.Kind == ast.Call {
				node = node.Right()
			}
			if node.Kind != tt.kind || len(node.Inner()) != tt.items {
				t.Errorf("expected %s with %d items, got\n%s", tt.kind, tt.items, ast.Dump(root))
			}
		})
	}

	root, err := parser.Parse("main", "x = (1)", false)
	if err != nil {
		t.Fatal(err)
	}
	if value := root.Children[0].Right(); !value.Is(token.NUM) {
		t.Errorf("parenthesized expression should not be a tuple:\n%s", ast.Dump(root))
	}
}

func TestTrace(t *testing.T) {
	var buf bytes.Buffer
	p := parser.New(lexer.New("x = 1"), "main")
	p.SetTrace(&buf)
	if _, err := p.ParseModule(); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, production := range []string{"Module", "Block", "Statement", "AtribExpr", "Term"} {
		if !strings.Contains(out, production) {
			t.Errorf("trace missing %s:\n%s", production, out)
		}
	}
}

// FuzzParser feeds raw and generated programs to the parser. It must never
// panic, and every failure must be a located diagnostic.
func FuzzParser(f *testing.F) {
	f.Add([]byte("x = 1 + 2"))
	f.Add([]byte("def f(self, a):\n    return a\n"))
	f.Add([]byte("do:\n  pass\nwhile x"))
	f.Add([]byte{7, 0, 3, 2, 9, 1})

	f.Fuzz(func(t *testing.T, data []byte) {
		for _, src := range []string{string(data), generators.NewFromData(data).GenerateProgram()} {
			root, err := parser.Parse("fuzz", src, false)
			if err != nil {
				if err.Module != "fuzz" || !err.HasRange() {
					t.Fatalf("unlocated error for %q: %s", src, err)
				}
				continue
			}
			if root == nil || root.Kind != ast.Block {
				t.Fatalf("no module block for %q", src)
			}
		}
	})
}
