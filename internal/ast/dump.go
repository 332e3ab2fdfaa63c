package ast

import (
	"fmt"
	"strings"
)

// Dump renders the tree one node per line, children indented by two spaces.
func Dump(n *Node) string {
	var b strings.Builder
	dump(&b, n, 0)
	return b.String()
}

func dump(b *strings.Builder, n *Node, depth int) {
	b.WriteString(strings.Repeat("  ", depth))
	switch {
	case n == nil:
		b.WriteString("<nil>\n")
		return
	case n.Kind == Terminal:
		fmt.Fprintf(b, "%s %q\n", n.Token.Kind, n.Token.Text)
		return
	}
	b.WriteString(n.Kind.String())
	b.WriteByte('\n')
	for _, child := range n.Children {
		dump(b, child, depth+1)
	}
}
