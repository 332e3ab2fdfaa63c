package lexer

import (
	"testing"

	"github.com/funvibe/serpent/internal/pipeline"
	"github.com/funvibe/serpent/internal/token"
)

func TestNextToken(t *testing.T) {
	input := `x += 10 # comment
if a != "q\"\n": pass
`
	tests := []struct {
		kind token.Kind
		text string
	}{
		{token.ID, "x"},
		{token.ASSIGN_PLUS, "+="},
		{token.NUM, "10"},
		{token.NL, "\n"},
		{token.IF, "if"},
		{token.ID, "a"},
		{token.DIFF, "!="},
		{token.STR, "q\"\n"},
		{token.COLON, ":"},
		{token.PASS, "pass"},
		{token.NL, "\n"},
		{token.EOF, ""},
	}

	l := New(input)
	for i, tt := range tests {
		tok := l.Next()
		if tok.Kind != tt.kind {
			t.Fatalf("tests[%d] - kind wrong. expected=%s, got=%s (%s)", i, tt.kind, tok.Kind, tok)
		}
		if tok.Text != tt.text {
			t.Fatalf("tests[%d] - text wrong. expected=%q, got=%q", i, tt.text, tok.Text)
		}
	}
}

func TestOperators(t *testing.T) {
	input := "+ - * / % = += -= *= /= %= == != > >= < <= ( ) [ ] { } : , ."
	expected := []token.Kind{
		token.PLUS, token.MINUS, token.MULT, token.DIV, token.REM,
		token.ASSIGN, token.ASSIGN_PLUS, token.ASSIGN_MINUS, token.ASSIGN_MULT, token.ASSIGN_DIV, token.ASSIGN_REM,
		token.EQUALS, token.DIFF, token.GREATER, token.GREATER_OR_EQUALS, token.LESS, token.LESS_OR_EQUALS,
		token.LEFT_PAREN, token.RIGHT_PAREN, token.LEFT_BRACKET, token.RIGHT_BRACKET,
		token.LEFT_BRACE, token.RIGHT_BRACE, token.COLON, token.COMMA, token.DOT,
		token.EOF,
	}
	tokens := New(input).Tokens()
	if len(tokens) != len(expected) {
		t.Fatalf("expected %d tokens, got %d: %v", len(expected), len(tokens), tokens)
	}
	for i, kind := range expected {
		if tokens[i].Kind != kind {
			t.Errorf("tokens[%d]: expected %s, got %s", i, kind, tokens[i].Kind)
		}
	}
}

func TestKeywords(t *testing.T) {
	for _, kw := range []string{"True", "False", "not", "and", "or", "self", "None", "if", "elif",
		"else", "in", "do", "while", "return", "def", "class", "import", "from", "pass"} {
		tok := New(kw).Next()
		if tok.Kind == token.ID || tok.Kind == token.INVALID {
			t.Errorf("%q lexed as %s", kw, tok.Kind)
		}
	}
	if tok := New("true").Next(); tok.Kind != token.ID {
		t.Errorf("true should be an identifier, got %s", tok.Kind)
	}
}

func TestRanges(t *testing.T) {
	tokens := New("ab = \"c\"\n  12").Tokens()
	expected := []token.Range{
		{Start: token.Position{Line: 0, Column: 0}, End: token.Position{Line: 0, Column: 2}},
		{Start: token.Position{Line: 0, Column: 3}, End: token.Position{Line: 0, Column: 4}},
		{Start: token.Position{Line: 0, Column: 5}, End: token.Position{Line: 0, Column: 8}},
		{Start: token.Position{Line: 0, Column: 8}, End: token.Position{Line: 0, Column: 9}},
		{Start: token.Position{Line: 1, Column: 2}, End: token.Position{Line: 1, Column: 4}},
		{Start: token.Position{Line: 1, Column: 4}, End: token.Position{Line: 1, Column: 4}},
	}
	if len(tokens) != len(expected) {
		t.Fatalf("expected %d tokens, got %d: %v", len(expected), len(tokens), tokens)
	}
	for i, r := range expected {
		if tokens[i].Range != r {
			t.Errorf("tokens[%d] %s: expected range %s, got %s", i, tokens[i], r, tokens[i].Range)
		}
	}
}

func TestInvalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
		at    token.Position
	}{
		{"unterminated string", `x = "abc`, token.Position{Line: 0, Column: 4}},
		{"string across lines", "x = \"ab\ncd\"", token.Position{Line: 0, Column: 4}},
		{"bad escape", `"a\tb"`, token.Position{Line: 0, Column: 0}},
		{"unknown character", "a @ b", token.Position{Line: 0, Column: 2}},
		{"lone bang", "!x", token.Position{Line: 0, Column: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := New(tt.input).Tokens()
			last := tokens[len(tokens)-1]
			if last.Kind != token.INVALID {
				t.Fatalf("expected INVALID as last token, got %v", tokens)
			}
			if last.Range.Start != tt.at {
				t.Errorf("expected INVALID at %s, got %s", tt.at, last.Range.Start)
			}
		})
	}
}

func TestPeek(t *testing.T) {
	l := New("a b")
	if p := l.Peek(); p.Text != "a" {
		t.Fatalf("peek: expected a, got %s", p)
	}
	if p := l.Peek(); p.Text != "a" {
		t.Fatalf("second peek must not advance, got %s", p)
	}
	if n := l.Next(); n.Text != "a" {
		t.Fatalf("next: expected a, got %s", n)
	}
	if n := l.Next(); n.Text != "b" {
		t.Fatalf("next: expected b, got %s", n)
	}
	for range 3 {
		if n := l.Next(); n.Kind != token.EOF {
			t.Fatalf("expected EOF forever, got %s", n)
		}
	}
}

func TestAllStopsEarly(t *testing.T) {
	count := 0
	for range New("a b c d").All() {
		count++
		if count == 2 {
			break
		}
	}
	if count != 2 {
		t.Fatalf("expected to stop after 2 tokens, got %d", count)
	}
}

func TestStream(t *testing.T) {
	s := NewStream(New("a").Tokens())
	if tok := s.Next(); tok.Text != "a" {
		t.Fatalf("expected a, got %s", tok)
	}
	for range 2 {
		if tok := s.Next(); tok.Kind != token.EOF {
			t.Fatalf("expected EOF, got %s", tok)
		}
	}
}

func TestComments(t *testing.T) {
	l := New("# head\nx = \"#not\" # tail\n")
	l.Tokens()

	want := []token.Range{
		{Start: token.Position{Line: 0, Column: 0}, End: token.Position{Line: 0, Column: 6}},
		{Start: token.Position{Line: 1, Column: 11}, End: token.Position{Line: 1, Column: 17}},
	}
	got := l.Comments()
	if len(got) != len(want) {
		t.Fatalf("expected %d comments, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("comment %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestProcessorLeavesErrorsToParser(t *testing.T) {
	ctx := (&LexerProcessor{}).Process(&pipeline.Context{Module: "main", Source: "x = 1\ny = a @ b"})
	if ctx.Err != nil {
		t.Fatalf("lexer stage must not report errors, got %s", ctx.Err)
	}
	last := ctx.Tokens[len(ctx.Tokens)-1]
	if last.Kind != token.INVALID || last.Range.Start != (token.Position{Line: 1, Column: 6}) {
		t.Errorf("expected INVALID at 1:6 ending the stream, got %s", last)
	}
}
