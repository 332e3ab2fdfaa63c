package diagnostics

import (
	"fmt"
	"strings"
	"testing"

	"github.com/funvibe/serpent/internal/token"
)

func rng(sl, sc, el, ec int) token.Range {
	return token.Range{Start: token.Position{Line: sl, Column: sc}, End: token.Position{Line: el, Column: ec}}
}

func TestErrorString(t *testing.T) {
	tests := []struct {
		err  *Error
		want string
	}{
		{NewError(ErrP001, "main", rng(2, 4, 2, 5), "unexpected %s", "')'"), "main:2:4: P001: unexpected ')'"},
		{Errorf(ErrA001, "division by zero"), "A001: division by zero"},
		{&Error{Code: ErrM001, Module: "lib", Message: "x"}, "lib: M001: x"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("expected %q, got %q", tt.want, got)
		}
	}
}

func TestWithRange(t *testing.T) {
	err := Errorf(ErrN001, "name 'x' is not defined")
	if err.HasRange() {
		t.Fatal("Errorf must not carry a range")
	}
	err.WithRange("inner", rng(1, 2, 1, 3))
	err.WithRange("outer", rng(5, 0, 5, 9))
	if err.Module != "inner" || *err.Range != rng(1, 2, 1, 3) {
		t.Errorf("first range must win, got %s %v", err.Module, err.Range)
	}

	moduleless := &Error{Code: ErrT001, Range: &token.Range{}}
	moduleless.WithRange("main", rng(3, 3, 3, 3))
	if moduleless.Module != "main" || *moduleless.Range != (token.Range{}) {
		t.Errorf("expected module filled and range kept, got %s %v", moduleless.Module, moduleless.Range)
	}
}

func TestEditorView(t *testing.T) {
	err := NewError(ErrR001, "main", rng(0, 4, 0, 14), "out of range")
	err.Trace = []Frame{{Name: "f", Module: "main", Range: rng(3, 0, 3, 4)}}

	view := err.EditorView()
	if *view.Range != rng(1, 5, 1, 15) {
		t.Errorf("unexpected range %s", view.Range)
	}
	if view.Trace[0].Range != rng(4, 1, 4, 5) {
		t.Errorf("unexpected trace range %s", view.Trace[0].Range)
	}
	if *err.Range != rng(0, 4, 0, 14) || err.Trace[0].Range != rng(3, 0, 3, 4) {
		t.Error("EditorView must not modify the original")
	}
}

func TestRender(t *testing.T) {
	source := "x = [1,2,3][5]\nprint(x)"
	err := NewError(ErrR001, "main", rng(0, 4, 0, 14), "index 5 out of range for length 3")

	plain := Render(err, source, false)
	want := "main:1:5: R001: index 5 out of range for length 3\n" +
		"1 | x = [1,2,3][5]\n" +
		"        ^~~~~~~~~\n"
	if plain != want {
		t.Errorf("plain render mismatch:\n--- expected\n%s--- actual\n%s", want, plain)
	}

	colored := Render(err, source, true)
	if !strings.Contains(colored, "1 | x = "+ansiRed+"[1,2,3][5]"+ansiReset+"\n") {
		t.Errorf("expected highlighted span, got %q", colored)
	}
	if strings.Contains(colored, "^") {
		t.Error("colored output must not underline")
	}
}

func TestRenderNonASCII(t *testing.T) {
	source := "s = \"día\" + n"
	err := NewError(ErrN001, "main", rng(0, 12, 0, 13), "name 'n' not found")

	plain := Render(err, source, false)
	want := "main:1:13: N001: name 'n' not found\n" +
		"1 | s = \"día\" + n\n" +
		strings.Repeat(" ", 16) + "^\n"
	if plain != want {
		t.Errorf("plain render mismatch:\n--- expected\n%s--- actual\n%s", want, plain)
	}

	colored := Render(err, source, true)
	if !strings.Contains(colored, "1 | s = \"día\" + "+ansiRed+"n"+ansiReset+"\n") {
		t.Errorf("expected highlighted span, got %q", colored)
	}
}

func TestRenderMultiline(t *testing.T) {
	source := "if x:\n    y = 1\nz"
	err := NewError(ErrP002, "main", rng(0, 3, 1, 9), "bad block")
	got := Render(err, source, false)
	want := "main:1:4: P002: bad block\n" +
		"1 | if x:\n" +
		"       ^~\n" +
		"2 |     y = 1\n" +
		"    ^~~~~~~~\n"
	if got != want {
		t.Errorf("render mismatch:\n--- expected\n%s--- actual\n%s", want, got)
	}
}

func TestRenderWithoutSource(t *testing.T) {
	err := Errorf(ErrM001, "module 'x' not found")
	if got := Render(err, "", false); got != "M001: module 'x' not found\n" {
		t.Errorf("unexpected render %q", got)
	}

	eof := NewError(ErrP001, "main", rng(4, 0, 4, 0), "unexpected end of input")
	if got := Render(eof, "a\nb", false); got != "main:5:1: P001: unexpected end of input\n" {
		t.Errorf("range past the source must only print the header, got %q", got)
	}
}

func TestRenderTrace(t *testing.T) {
	err := NewError(ErrX001, "main", rng(1, 11, 1, 15), "maximum recursion depth 20 exceeded")
	for i := 0; i < 20; i++ {
		err.Trace = append(err.Trace, Frame{Name: fmt.Sprintf("f%d", i), Module: "main", Range: rng(1, 11, 1, 15)})
	}
	got := Render(err, "", false)
	if !strings.Contains(got, "  at f0 (main:2:12)\n") || !strings.Contains(got, "  at f9 (main:2:12)\n") {
		t.Errorf("missing trace frames:\n%s", got)
	}
	if strings.Contains(got, "f10") {
		t.Errorf("trace must be truncated:\n%s", got)
	}
	if !strings.Contains(got, "  ... (10 more)\n") {
		t.Errorf("missing truncation marker:\n%s", got)
	}
}
