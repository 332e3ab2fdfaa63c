package diagnostics

import (
	"fmt"
	"strings"

	"github.com/funvibe/serpent/internal/config"
)

const (
	ansiRed   = "\033[0;31m"
	ansiReset = "\033[0m"
)

// Render formats err for a terminal: a 1-based header, the call trace and the
// offending source lines, highlighted in red when color is set and underlined
// with carets otherwise. source is the text of err.Module; it may be empty.
func Render(err *Error, source string, color bool) string {
	view := err.EditorView()
	var b strings.Builder

	b.WriteString(view.Error())
	b.WriteByte('\n')

	for i, f := range view.Trace {
		if i == config.MaxTraceFrames {
			fmt.Fprintf(&b, "  ... (%d more)\n", len(view.Trace)-i)
			break
		}
		fmt.Fprintf(&b, "  at %s (%s:%s)\n", f.Name, f.Module, f.Range.Start)
	}

	if err.Range == nil || source == "" {
		return b.String()
	}
	b.WriteString(snippet(source, err, color))
	return b.String()
}

func snippet(source string, err *Error, color bool) string {
	lines := strings.Split(source, "\n")
	r := *err.Range
	if r.Start.Line >= len(lines) {
		return ""
	}
	last := r.End.Line
	if last >= len(lines) {
		last = len(lines) - 1
	}

	var b strings.Builder
	width := len(fmt.Sprint(last + 1))
	for i := r.Start.Line; i <= last; i++ {
		// Columns count runes.
		line := []rune(lines[i])
		from, to := 0, len(line)
		if i == r.Start.Line {
			from = clamp(r.Start.Column, 0, len(line))
		}
		if i == r.End.Line {
			to = clamp(r.End.Column, from, len(line))
		}
		gutter := fmt.Sprintf("%*d | ", width, i+1)
		if color {
			fmt.Fprintf(&b, "%s%s%s%s%s%s\n", gutter, string(line[:from]), ansiRed, string(line[from:to]), ansiReset, string(line[to:]))
			continue
		}
		fmt.Fprintf(&b, "%s%s\n", gutter, string(line))
		underline := to - from
		if underline < 1 {
			underline = 1
		}
		fmt.Fprintf(&b, "%s%s%s\n", strings.Repeat(" ", len(gutter)+from), "^", strings.Repeat("~", underline-1))
	}
	return b.String()
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
