package main

import (
	"io"
	"strings"

	"github.com/funvibe/serpent/internal/ast"
	"github.com/funvibe/serpent/internal/builtins"
	"github.com/funvibe/serpent/internal/evaluator"
	"github.com/funvibe/serpent/internal/prettyprinter"
	"github.com/funvibe/serpent/internal/token"
)

// binding is a name introduced by a statement of the document.
type binding struct {
	Name   string
	Kind   string      // function, method, class, parameter, variable, module or import
	Detail string      // source-like summary shown on hover
	Range  token.Range // the defining identifier
}

var builtinScope = builtins.NewScope(io.Discard)

func contains(r token.Range, pos token.Position) bool {
	return !pos.Less(r.Start) && pos.Less(r.End)
}

// tokenAt returns the token under pos. Tokens never span lines.
func tokenAt(tokens []token.Token, pos token.Position) (token.Token, bool) {
	for _, tok := range tokens {
		if tok.Is(token.NL, token.EOF, token.INVALID) {
			continue
		}
		if contains(tok.Range, pos) {
			return tok, true
		}
	}
	return token.Token{}, false
}

// resolve finds what name refers to at pos: bindings of the innermost
// enclosing function first, then of the module. Methods are matched by name
// last, which covers attribute accesses like self.name.
func resolve(root *ast.Node, name string, pos token.Position) (binding, bool) {
	if root == nil {
		return binding{}, false
	}

	var functions []*ast.Node
	ast.Walk(root, func(n *ast.Node) bool {
		if !contains(n.Range, pos) {
			return false
		}
		if n.Kind == ast.FuncDecl {
			functions = append(functions, n)
		}
		return true
	})
	for i := len(functions) - 1; i >= 0; i-- {
		if b, ok := lookup(functionBindings(functions[i]), name); ok {
			return b, true
		}
	}
	if b, ok := lookup(blockBindings(root, nil), name); ok {
		return b, true
	}

	var method binding
	found := false
	ast.Walk(root, func(n *ast.Node) bool {
		if found {
			return false
		}
		if n.Kind != ast.ClassDecl {
			return true
		}
		for _, stmt := range n.Children[2].Children {
			if stmt.Kind == ast.FuncDecl && stmt.Children[1].Text() == name {
				method = funcBinding(stmt, "method", n.Children[1].Text()+".")
				found = true
				break
			}
		}
		return false
	})
	return method, found
}

func lookup(bindings []binding, name string) (binding, bool) {
	for _, b := range bindings {
		if b.Name == name {
			return b, true
		}
	}
	return binding{}, false
}

func functionBindings(fn *ast.Node) []binding {
	var out []binding
	for _, param := range fn.Children[2].Inner() {
		out = append(out, binding{Name: param.Text(), Kind: "parameter", Detail: param.Text(), Range: param.Range})
	}
	return blockBindings(fn.Children[3], out)
}

// blockBindings appends the names bound by the statements of block,
// descending into compound statements but not into definitions.
func blockBindings(block *ast.Node, out []binding) []binding {
	for _, stmt := range block.Children {
		switch stmt.Kind {
		case ast.Assign:
			if target := stmt.Children[0]; target.Is(token.ID) {
				out = append(out, binding{
					Name:   target.Text(),
					Kind:   "variable",
					Detail: target.Text() + " = " + prettyprinter.PrintExpr(stmt.Children[1]),
					Range:  target.Range,
				})
			}
		case ast.MultiAssign:
			for _, target := range stmt.Children[0].Children {
				if target.Is(token.ID) {
					out = append(out, binding{Name: target.Text(), Kind: "variable", Detail: target.Text(), Range: target.Range})
				}
			}
		case ast.FuncDecl:
			out = append(out, funcBinding(stmt, "function", ""))
		case ast.ClassDecl:
			name := stmt.Children[1]
			out = append(out, binding{Name: name.Text(), Kind: "class", Detail: "class " + name.Text(), Range: name.Range})
		case ast.Import:
			for _, id := range stmt.Children[1].Children {
				out = append(out, binding{Name: id.Text(), Kind: "module", Detail: "import " + id.Text(), Range: id.Range})
			}
		case ast.FromImport:
			from := stmt.Children[1].Text()
			for _, id := range stmt.Children[2].Children {
				out = append(out, binding{Name: id.Text(), Kind: "import", Detail: "from " + from + " import " + id.Text(), Range: id.Range})
			}
		case ast.While:
			out = blockBindings(stmt.Children[2], out)
		case ast.DoWhile:
			out = blockBindings(stmt.Children[1], out)
		case ast.If:
			out = blockBindings(stmt.Children[2], out)
			for _, branch := range stmt.Children[3:] {
				out = blockBindings(branch.Right(), out)
			}
		}
	}
	return out
}

// funcBinding describes a def; owner prefixes the name of methods.
func funcBinding(fn *ast.Node, kind, owner string) binding {
	name := fn.Children[1]
	var params []string
	for _, param := range fn.Children[2].Inner() {
		params = append(params, param.Text())
	}
	return binding{
		Name:   name.Text(),
		Kind:   kind,
		Detail: "def " + owner + name.Text() + "(" + strings.Join(params, ", ") + ")",
		Range:  name.Range,
	}
}

// builtinBinding describes a name of the builtin scope.
func builtinBinding(name string) (binding, bool) {
	cell, ok := builtinScope.Lookup(name)
	if !ok {
		return binding{}, false
	}
	b, ok := cell.Get().(*evaluator.Builtin)
	if !ok {
		return binding{}, false
	}
	params := make([]string, b.Arity)
	for i := range params {
		params[i] = "x"
	}
	return binding{Name: name, Kind: "builtin", Detail: name + "(" + strings.Join(params, ", ") + ")"}, true
}
