package token

import "fmt"

// Position is a zero-based line/column pair.
type Position struct {
	Line   int
	Column int
}

func (p Position) Less(o Position) bool {
	if p.Line != o.Line {
		return p.Line < o.Line
	}
	return p.Column < o.Column
}

func (p Position) More(o Position) bool {
	return o.Less(p)
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Range is a contiguous source span; End is exclusive in the column dimension.
type Range struct {
	Start Position
	End   Position
}

// Union returns the smallest range covering both r and o.
func (r Range) Union(o Range) Range {
	out := r
	if o.Start.Less(out.Start) {
		out.Start = o.Start
	}
	if o.End.More(out.End) {
		out.End = o.End
	}
	return out
}

// EditorView shifts the range to the 1-based coordinates editors display.
func (r Range) EditorView() Range {
	return Range{
		Start: Position{Line: r.Start.Line + 1, Column: r.Start.Column + 1},
		End:   Position{Line: r.End.Line + 1, Column: r.End.Column + 1},
	}
}

func (r Range) String() string {
	return r.Start.String() + "-" + r.End.String()
}
