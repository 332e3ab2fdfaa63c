// Package prettyprinter turns a syntax tree back into source code in the
// canonical layout: four-space indentation, one space around binary and
// assignment operators, ", " between items and parentheses only where
// precedence needs them.
package prettyprinter

import (
	"bytes"
	"strings"

	"github.com/funvibe/serpent/internal/ast"
	"github.com/funvibe/serpent/internal/token"
)

// Operator precedence (higher = binds tighter). All binary operators are
// left-associative.
const (
	precLowest = iota
	precOr
	precAnd
	precComp
	precSum
	precMult
	precUnary
	precPostfix
)

var operatorPrecedence = map[token.Kind]int{
	token.OR:                precOr,
	token.AND:               precAnd,
	token.EQUALS:            precComp,
	token.DIFF:              precComp,
	token.GREATER:           precComp,
	token.GREATER_OR_EQUALS: precComp,
	token.LESS:              precComp,
	token.LESS_OR_EQUALS:    precComp,
	token.IN:                precComp,
	token.PLUS:              precSum,
	token.MINUS:             precSum,
	token.MULT:              precMult,
	token.DIV:               precMult,
	token.REM:               precMult,
}

var stringEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

type CodePrinter struct {
	buf    bytes.Buffer
	indent int
}

func NewCodePrinter() *CodePrinter {
	return &CodePrinter{}
}

// Print formats a module.
func Print(root *ast.Node) string {
	p := NewCodePrinter()
	p.PrintModule(root)
	return p.String()
}

// PrintExpr formats a single expression or expression list.
func PrintExpr(n *ast.Node) string {
	p := NewCodePrinter()
	p.printExpr(n, precLowest)
	return p.String()
}

func (p *CodePrinter) String() string {
	return p.buf.String()
}

func (p *CodePrinter) write(s string) {
	p.buf.WriteString(s)
}

func (p *CodePrinter) writeIndent() {
	for i := 0; i < p.indent; i++ {
		p.buf.WriteString("    ")
	}
}

// PrintModule prints the statements of a module Block. Definitions are
// set apart from their neighbours by a blank line.
func (p *CodePrinter) PrintModule(root *ast.Node) {
	p.printStatements(root.Children)
}

func isDefinition(n *ast.Node) bool {
	return n.Kind == ast.FuncDecl || n.Kind == ast.ClassDecl
}

func (p *CodePrinter) printStatements(stmts []*ast.Node) {
	for i, stmt := range stmts {
		if i > 0 && (isDefinition(stmt) || isDefinition(stmts[i-1])) {
			p.write("\n")
		}
		p.printStatement(stmt)
	}
}

func (p *CodePrinter) printBlock(block *ast.Node) {
	p.indent++
	p.printStatements(block.Children)
	p.indent--
}

// header prints "keyword [expr]:" on its own line.
func (p *CodePrinter) header(keyword string, expr *ast.Node) {
	p.writeIndent()
	p.write(keyword)
	if expr != nil {
		p.write(" ")
		p.printExpr(expr, precLowest)
	}
	p.write(":\n")
}

func (p *CodePrinter) printStatement(n *ast.Node) {
	switch n.Kind {
	case ast.While:
		p.header("while", n.Children[1])
		p.printBlock(n.Children[2])

	case ast.DoWhile:
		p.header("do", nil)
		p.printBlock(n.Children[1])
		p.writeIndent()
		p.write("while ")
		p.printExpr(n.Children[2], precLowest)
		p.write("\n")

	case ast.If:
		p.header("if", n.Children[1])
		p.printBlock(n.Children[2])
		for _, branch := range n.Children[3:] {
			if branch.Kind == ast.Elif {
				p.header("elif", branch.Children[1])
				p.printBlock(branch.Children[2])
			} else {
				p.header("else", nil)
				p.printBlock(branch.Children[1])
			}
		}

	case ast.FuncDecl:
		p.writeIndent()
		p.write("def " + n.Children[1].Text() + "(")
		for i, param := range n.Children[2].Inner() {
			if i > 0 {
				p.write(", ")
			}
			p.write(param.Text())
		}
		p.write("):\n")
		p.printBlock(n.Children[3])

	case ast.ClassDecl:
		p.header("class "+n.Children[1].Text(), nil)
		p.printBlock(n.Children[2])

	default:
		p.writeIndent()
		p.printSimple(n)
		p.write("\n")
	}
}

func (p *CodePrinter) printSimple(n *ast.Node) {
	switch n.Kind {
	case ast.Assign, ast.MultiAssign:
		p.printExpr(n.Children[0], precLowest)
		p.write(" = ")
		p.printExpr(n.Children[1], precLowest)
	case ast.AugAssign:
		p.printExpr(n.Children[0], precLowest)
		p.write(" " + n.Children[1].Text() + " ")
		p.printExpr(n.Children[2], precLowest)
	case ast.ExprStmt:
		p.printExpr(n.Children[0], precLowest)
	case ast.Return:
		p.write("return")
		if value := n.Children[1]; value != nil {
			p.write(" ")
			p.printExpr(value, precLowest)
		}
	case ast.Pass:
		p.write("pass")
	case ast.Import:
		p.write("import ")
		p.printNames(n.Children[1])
	case ast.FromImport:
		p.write("from " + n.Children[1].Text() + " import ")
		p.printNames(n.Children[2])
	}
}

func (p *CodePrinter) printNames(list *ast.Node) {
	for i, id := range list.Children {
		if i > 0 {
			p.write(", ")
		}
		p.write(id.Text())
	}
}

func (p *CodePrinter) printList(items []*ast.Node) {
	for i, item := range items {
		if i > 0 {
			p.write(", ")
		}
		p.printExpr(item, precLowest)
	}
}

// printExpr prints an expression, adding parentheses only if needed
func (p *CodePrinter) printExpr(n *ast.Node, parentPrec int) {
	switch n.Kind {
	case ast.Terminal:
		if n.Token.Kind == token.STR {
			p.write(`"` + stringEscaper.Replace(n.Text()) + `"`)
			return
		}
		p.write(n.Text())

	case ast.BinaryOp:
		prec := operatorPrecedence[n.Children[1].Token.Kind]
		needParens := prec < parentPrec
		if needParens {
			p.write("(")
		}
		p.printExpr(n.Children[0], prec)
		p.write(" " + n.Children[1].Text() + " ")
		// Same precedence on the right must keep its grouping.
		p.printExpr(n.Children[2], prec+1)
		if needParens {
			p.write(")")
		}

	case ast.UnaryOp:
		needParens := precUnary < parentPrec
		if needParens {
			p.write("(")
		}
		op := n.Children[0]
		if op.Is(token.NOT) {
			p.write("not ")
		} else {
			p.write(op.Text())
		}
		p.printExpr(n.Children[1], precUnary)
		if needParens {
			p.write(")")
		}

	case ast.Call:
		p.printExpr(n.Children[0], precPostfix)
		p.write("(")
		p.printList(n.Children[1].Inner())
		p.write(")")

	case ast.Index:
		p.printExpr(n.Children[0], precPostfix)
		p.write("[")
		p.printExpr(n.Children[1], precLowest)
		p.write("]")

	case ast.Slice:
		p.printExpr(n.Children[0], precPostfix)
		p.write("[")
		if lo := n.Children[1]; lo != nil {
			p.printExpr(lo, precLowest)
		}
		p.write(":")
		if hi := n.Children[2]; hi != nil {
			p.printExpr(hi, precLowest)
		}
		p.write("]")

	case ast.FieldAccess:
		p.printExpr(n.Children[0], precPostfix)
		p.write("." + n.Children[1].Text())

	case ast.List:
		p.write("[")
		p.printList(n.Inner())
		p.write("]")

	case ast.Tuple:
		p.write("(")
		p.printList(n.Inner())
		if len(n.Inner()) == 1 {
			p.write(",")
		}
		p.write(")")

	case ast.Dict:
		p.write("{")
		for i, kv := range n.Inner() {
			if i > 0 {
				p.write(", ")
			}
			p.printExpr(kv.Children[0], precLowest)
			p.write(": ")
			p.printExpr(kv.Children[1], precLowest)
		}
		p.write("}")

	case ast.ExprList:
		p.printList(n.Children)
	}
}
