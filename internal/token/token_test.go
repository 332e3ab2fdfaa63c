package token

import "testing"

func TestLookupIdent(t *testing.T) {
	tests := map[string]Kind{
		"while":  WHILE,
		"True":   TRUE,
		"None":   NONE,
		"self":   SELF,
		"true":   ID,
		"whiles": ID,
		"_x1":    ID,
	}
	for ident, want := range tests {
		if got := LookupIdent(ident); got != want {
			t.Errorf("%s: expected %s, got %s", ident, want, got)
		}
	}
}

func TestKindString(t *testing.T) {
	for k := INVALID; k <= DOT; k++ {
		if k.String() == "??" {
			t.Errorf("kind %d has no name", k)
		}
	}
	if Kind(-1).String() != "??" || (DOT + 1).String() != "??" {
		t.Error("unknown kinds must print as ??")
	}
}

func TestRange(t *testing.T) {
	a := Range{Start: Position{0, 4}, End: Position{0, 9}}
	b := Range{Start: Position{1, 0}, End: Position{2, 3}}

	if u := a.Union(b); u != (Range{Start: Position{0, 4}, End: Position{2, 3}}) {
		t.Errorf("unexpected union %s", u)
	}
	if a.Union(b) != b.Union(a) {
		t.Error("union must be symmetric")
	}
	if !a.Start.Less(b.Start) || !b.End.More(a.End) || a.Start.Less(a.Start) {
		t.Error("position ordering is wrong")
	}
	if got := a.EditorView().String(); got != "1:5-1:10" {
		t.Errorf("unexpected editor view %s", got)
	}
}

func TestTokenIs(t *testing.T) {
	tok := Token{Text: "+=", Kind: ASSIGN_PLUS}
	if !tok.Is(ASSIGN, ASSIGN_PLUS) || tok.Is(PLUS) {
		t.Error("Is does not match kinds")
	}
	if got := tok.String(); got != `("+=", ASSIGN_PLUS, 0:0-0:0)` {
		t.Errorf("unexpected token string %s", got)
	}
}
