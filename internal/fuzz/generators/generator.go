// Package generators produces random, syntactically valid programs for the
// fuzz targets of the parser and the pretty printer.
package generators

import (
	"fmt"
	"math/rand"
	"strings"
)

// RandomSource abstracts the source of randomness.
type RandomSource interface {
	Intn(n int) int
}

// ByteSource uses a byte slice as a source of randomness. Once the data is
// exhausted every choice is 0, which always picks the simplest production.
type ByteSource struct {
	data []byte
	pos  int
}

func (s *ByteSource) Intn(n int) int {
	if n <= 0 || s.pos >= len(s.data) {
		return 0
	}
	v := int(s.data[s.pos])
	s.pos++
	return v % n
}

const (
	MaxDepth      = 4
	MaxStatements = 4
)

var (
	binaryOps  = []string{"+", "-", "*", "/", "%", "==", "!=", "<", "<=", ">", ">=", "in", "and", "or"}
	augOps     = []string{"+=", "-=", "*=", "/=", "%="}
	stringLits = []string{`""`, `"s"`, `"a\"b"`, `"line\n"`, `"\\"`, `"# not a comment"`}
	modules    = []string{"lib", "util"}
)

type Generator struct {
	src    RandomSource
	depth  int
	inFunc bool
	vars   []string
}

func New(seed int64) *Generator {
	return &Generator{
		src:  rand.New(rand.NewSource(seed)),
		vars: []string{"x", "y", "z", "a", "b"},
	}
}

func NewFromData(data []byte) *Generator {
	return &Generator{
		src:  &ByteSource{data: data},
		vars: []string{"x", "y", "z", "a", "b"},
	}
}

func (g *Generator) pick(items []string) string {
	return items[g.src.Intn(len(items))]
}

// GenerateProgram returns a module of one or more top-level statements.
func (g *Generator) GenerateProgram() string {
	var sb strings.Builder
	count := g.src.Intn(MaxStatements) + 1
	for i := 0; i < count; i++ {
		sb.WriteString(g.GenerateTopLevelStatement())
		sb.WriteString(g.GenerateNoise())
	}
	return sb.String()
}

// GenerateNoise returns blank or comment-only lines now and then.
func (g *Generator) GenerateNoise() string {
	switch g.src.Intn(8) {
	case 0:
		return "\n"
	case 1:
		return "# note\n"
	case 2:
		return "  \n"
	}
	return ""
}

// MaybeNewline returns a line break where brackets make it insignificant.
func (g *Generator) MaybeNewline() string {
	if g.src.Intn(4) == 0 {
		return "\n"
	}
	return " "
}

func (g *Generator) GenerateTopLevelStatement() string {
	switch g.src.Intn(8) {
	case 0:
		return g.GenerateClass()
	case 1:
		return g.GenerateImport()
	}
	return g.GenerateStatement("")
}

// GenerateStatement returns one statement, lines prefixed with indent and
// terminated by a newline.
func (g *Generator) GenerateStatement(indent string) string {
	if g.depth >= MaxDepth {
		return indent + g.GenerateSimpleStatement() + "\n"
	}
	g.depth++
	defer func() { g.depth-- }()

	switch g.src.Intn(10) {
	case 0:
		return g.GenerateIf(indent)
	case 1:
		return g.GenerateWhile(indent)
	case 2:
		return g.GenerateDoWhile(indent)
	case 3:
		return g.GenerateFunction(indent, false)
	}
	return indent + g.GenerateSimpleStatement() + g.GenerateTrailingComment() + "\n"
}

func (g *Generator) GenerateTrailingComment() string {
	if g.src.Intn(6) == 0 {
		return "  # trailing"
	}
	return ""
}

func (g *Generator) GenerateSimpleStatement() string {
	switch g.src.Intn(8) {
	case 0:
		return "pass"
	case 1:
		return fmt.Sprintf("%s %s %s", g.GenerateTarget(), g.pick(augOps), g.GenerateExpression())
	case 2:
		return fmt.Sprintf("%s, %s = %s, %s", g.pick(g.vars), g.pick(g.vars), g.GenerateExpression(), g.GenerateExpression())
	case 3:
		return fmt.Sprintf("print(%s)", g.GenerateExpression())
	case 4:
		if g.inFunc {
			if g.src.Intn(3) == 0 {
				return "return"
			}
			return "return " + g.GenerateExpression()
		}
	case 5:
		return g.GenerateExpression()
	}
	return fmt.Sprintf("%s = %s", g.GenerateTarget(), g.GenerateExpression())
}

// GenerateTarget returns an assignable expression.
func (g *Generator) GenerateTarget() string {
	switch g.src.Intn(5) {
	case 0:
		return fmt.Sprintf("%s[%s]", g.pick(g.vars), g.GenerateExpression())
	case 1:
		return fmt.Sprintf("%s.%s", g.pick(g.vars), g.pick(g.vars))
	}
	return g.pick(g.vars)
}

func (g *Generator) GenerateBlock(indent string) string {
	var sb strings.Builder
	count := g.src.Intn(MaxStatements) + 1
	for i := 0; i < count; i++ {
		sb.WriteString(g.GenerateStatement(indent))
		sb.WriteString(g.GenerateNoise())
	}
	return sb.String()
}

func (g *Generator) GenerateIf(indent string) string {
	inner := indent + "    "
	var sb strings.Builder
	fmt.Fprintf(&sb, "%sif %s:\n%s", indent, g.GenerateExpression(), g.GenerateBlock(inner))
	for i := g.src.Intn(3); i > 0; i-- {
		fmt.Fprintf(&sb, "%selif %s:\n%s", indent, g.GenerateExpression(), g.GenerateBlock(inner))
	}
	if g.src.Intn(2) == 0 {
		fmt.Fprintf(&sb, "%selse:\n%s", indent, g.GenerateBlock(inner))
	}
	return sb.String()
}

func (g *Generator) GenerateWhile(indent string) string {
	return fmt.Sprintf("%swhile %s:\n%s", indent, g.GenerateExpression(), g.GenerateBlock(indent+"  "))
}

func (g *Generator) GenerateDoWhile(indent string) string {
	return fmt.Sprintf("%sdo:\n%s%swhile %s\n", indent, g.GenerateBlock(indent+"    "), indent, g.GenerateExpression())
}

func (g *Generator) GenerateFunction(indent string, method bool) string {
	var params []string
	if method {
		params = append(params, "self")
	}
	for i := g.src.Intn(3); i > 0; i-- {
		params = append(params, fmt.Sprintf("p%d", len(params)))
	}
	name := "fn_" + g.pick(g.vars)

	outer := g.inFunc
	g.inFunc = true
	body := g.GenerateBlock(indent + "    ")
	g.inFunc = outer

	return fmt.Sprintf("%sdef %s(%s):\n%s", indent, name, strings.Join(params, ", "), body)
}

func (g *Generator) GenerateClass() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "class C%d:\n", g.src.Intn(3))
	count := g.src.Intn(3)
	if count == 0 {
		sb.WriteString("    pass\n")
	}
	for i := 0; i < count; i++ {
		sb.WriteString(g.GenerateFunction("    ", true))
	}
	return sb.String()
}

func (g *Generator) GenerateImport() string {
	if g.src.Intn(2) == 0 {
		return fmt.Sprintf("import %s\n", g.pick(modules))
	}
	return fmt.Sprintf("from %s import %s, %s\n", g.pick(modules), g.pick(g.vars), g.pick(g.vars))
}

func (g *Generator) GenerateExpression() string {
	if g.depth >= MaxDepth {
		return g.GenerateTerminal()
	}
	g.depth++
	defer func() { g.depth-- }()

	switch g.src.Intn(12) {
	case 0, 1:
		return fmt.Sprintf("%s %s %s", g.GenerateExpression(), g.pick(binaryOps), g.GenerateExpression())
	case 2:
		return fmt.Sprintf("(%s)", g.GenerateExpression())
	case 3:
		if g.src.Intn(2) == 0 {
			return "not " + g.GenerateExpression()
		}
		return "-" + g.GenerateExpression()
	case 4:
		return fmt.Sprintf("%s(%s)", g.pick(g.vars), g.GenerateItems(3, g.GenerateExpression))
	case 5:
		return fmt.Sprintf("%s[%s]", g.pick(g.vars), g.GenerateExpression())
	case 6:
		lo, hi := "", ""
		if g.src.Intn(2) == 0 {
			lo = g.GenerateExpression()
		}
		if g.src.Intn(2) == 0 {
			hi = g.GenerateExpression()
		}
		return fmt.Sprintf("%s[%s:%s]", g.pick(g.vars), lo, hi)
	case 7:
		return fmt.Sprintf("%s.%s", g.pick(g.vars), g.pick(g.vars))
	case 8:
		return fmt.Sprintf("[%s]", g.GenerateItems(3, g.GenerateExpression))
	case 9:
		if g.src.Intn(4) == 0 {
			return fmt.Sprintf("(%s,)", g.GenerateExpression())
		}
		return fmt.Sprintf("(%s,%s%s)", g.GenerateExpression(), g.MaybeNewline(), g.GenerateExpression())
	case 10:
		return fmt.Sprintf("{%s}", g.GenerateItems(2, func() string {
			return g.GenerateExpression() + ": " + g.GenerateExpression()
		}))
	}
	return g.GenerateTerminal()
}

// GenerateItems joins up to limit items with commas, breaking lines now and
// then. A non-empty list sometimes ends with a comma.
func (g *Generator) GenerateItems(limit int, item func() string) string {
	var sb strings.Builder
	count := g.src.Intn(limit + 1)
	for i := count; i > 0; i-- {
		sb.WriteString(item())
		if i > 1 {
			sb.WriteString(",")
			sb.WriteString(g.MaybeNewline())
		}
	}
	if count > 0 && g.src.Intn(4) == 0 {
		sb.WriteString(",")
	}
	return sb.String()
}

func (g *Generator) GenerateTerminal() string {
	switch g.src.Intn(6) {
	case 0:
		return fmt.Sprint(g.src.Intn(1000))
	case 1:
		return g.pick(stringLits)
	case 2:
		return g.pick([]string{"True", "False", "None"})
	}
	return g.pick(g.vars)
}
