package evaluator

import "strings"

// Repr renders obj for an echo or a message: strings are quoted,
// everything else matches Inspect.
func Repr(obj Object) string {
	if s, ok := obj.(*Str); ok {
		return quote(s.Value)
	}
	return obj.Inspect()
}

var quoter = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

func quote(s string) string {
	return `"` + quoter.Replace(s) + `"`
}

// Containers render their elements like print does; only string dict keys
// are quoted.
func inspectList(l *List) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, cell := range l.Elements {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(cell.Get().Inspect())
	}
	b.WriteByte(']')
	return b.String()
}

func inspectDict(d *Dict) string {
	var b strings.Builder
	b.WriteByte('{')
	first := true
	d.Each(func(key Object, value *Cell) {
		if !first {
			b.WriteString(", ")
		}
		first = false
		b.WriteString(Repr(key))
		b.WriteString(": ")
		b.WriteString(value.Get().Inspect())
	})
	b.WriteByte('}')
	return b.String()
}
