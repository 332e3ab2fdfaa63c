package parser

import (
	"github.com/funvibe/serpent/internal/ast"
	"github.com/funvibe/serpent/internal/diagnostics"
	"github.com/funvibe/serpent/internal/token"
)

// parseBlock parses statements aligned on the column of the first one.
// The first statement must start at or right of minCol. A deeper statement
// is a P002 error; a shallower one ends the block.
func (p *Parser) parseBlock(minCol int, statement func() (*ast.Node, *diagnostics.Error)) (*ast.Node, *diagnostics.Error) {
	defer p.enter("Block")()

	p.skipNewlines()
	if p.curIs(token.EOF) || p.cur.Range.Start.Column < minCol {
		return nil, p.errorf(diagnostics.ErrP002, p.cur, "expected an indented block")
	}
	base := p.cur.Range.Start.Column

	block := ast.New(ast.Block)
	for {
		stmt, err := statement()
		if err != nil {
			return nil, err
		}
		block.Children = append(block.Children, stmt)

		p.skipNewlines()
		if p.curIs(token.EOF) {
			break
		}
		col := p.cur.Range.Start.Column
		if col > base {
			return nil, p.errorf(diagnostics.ErrP002, p.cur, "unexpected indent")
		}
		if col < base {
			break
		}
	}
	return block, nil
}

// parseBody parses the ":" NL Block tail of a compound statement whose
// keyword sits at column kwCol.
func (p *Parser) parseBody(kwCol int, statement func() (*ast.Node, *diagnostics.Error)) (*ast.Node, *diagnostics.Error) {
	if _, err := p.expect(token.COLON); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.NL); err != nil {
		return nil, err
	}
	return p.parseBlock(kwCol+1, statement)
}

func (p *Parser) parseStatement() (*ast.Node, *diagnostics.Error) {
	defer p.enter("Statement")()

	switch p.cur.Kind {
	case token.WHILE:
		return p.parseWhile()
	case token.DO:
		return p.parseDoWhile()
	case token.IF:
		return p.parseIf()
	case token.RETURN:
		return p.parseReturn()
	case token.FROM:
		return p.parseFromImport()
	case token.IMPORT:
		return p.parseImport()
	case token.CLASS:
		return p.parseClass()
	case token.PASS:
		return p.parsePass()
	case token.DEF:
		return p.parseDef()
	case token.ELIF, token.ELSE:
		return nil, p.errorf(diagnostics.ErrP001, p.cur, "'%s' without matching 'if'", p.cur.Text)
	}
	return p.parseAtribExpr()
}

func (p *Parser) parseWhile() (*ast.Node, *diagnostics.Error) {
	defer p.enter("While")()

	col := p.cur.Range.Start.Column
	kw := p.terminal()
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBody(col, p.parseStatement)
	if err != nil {
		return nil, err
	}
	return ast.New(ast.While, kw, cond, body), nil
}

// parseDoWhile parses
//
//	do:
//	    body
//	while cond
//
// with the closing while at the column of do.
func (p *Parser) parseDoWhile() (*ast.Node, *diagnostics.Error) {
	defer p.enter("DoWhile")()

	col := p.cur.Range.Start.Column
	kw := p.terminal()
	body, err := p.parseBody(col, p.parseStatement)
	if err != nil {
		return nil, err
	}
	if !p.curIs(token.WHILE) || p.cur.Range.Start.Column != col {
		return nil, p.errorf(diagnostics.ErrP001, p.cur, "expected 'while' closing 'do' block, got %s", describe(p.cur))
	}
	p.next()
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.endStatement(); err != nil {
		return nil, err
	}
	return ast.New(ast.DoWhile, kw, body, cond), nil
}

func (p *Parser) parseIf() (*ast.Node, *diagnostics.Error) {
	defer p.enter("If")()

	col := p.cur.Range.Start.Column
	kw := p.terminal()
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBody(col, p.parseStatement)
	if err != nil {
		return nil, err
	}
	node := ast.New(ast.If, kw, cond, body)

	for p.curIs(token.ELIF) && p.cur.Range.Start.Column == col {
		kw := p.terminal()
		cond, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		body, err := p.parseBody(col, p.parseStatement)
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, ast.New(ast.Elif, kw, cond, body))
	}
	if p.curIs(token.ELSE) && p.cur.Range.Start.Column == col {
		kw := p.terminal()
		body, err := p.parseBody(col, p.parseStatement)
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, ast.New(ast.Else, kw, body))
	}
	return node, nil
}

func (p *Parser) parseReturn() (*ast.Node, *diagnostics.Error) {
	defer p.enter("Return")()

	if p.funcDepth == 0 {
		return nil, p.errorf(diagnostics.ErrP001, p.cur, "'return' outside function")
	}
	kw := p.terminal()
	var value *ast.Node
	if !p.curIs(token.NL, token.EOF) {
		var err *diagnostics.Error
		if value, err = p.parseExprList(); err != nil {
			return nil, err
		}
	}
	if err := p.endStatement(); err != nil {
		return nil, err
	}
	return ast.New(ast.Return, kw, value), nil
}

func (p *Parser) parsePass() (*ast.Node, *diagnostics.Error) {
	kw := p.terminal()
	if err := p.endStatement(); err != nil {
		return nil, err
	}
	return ast.New(ast.Pass, kw), nil
}

// parseImport parses "import a, b".
func (p *Parser) parseImport() (*ast.Node, *diagnostics.Error) {
	defer p.enter("Import")()

	kw := p.terminal()
	ids, err := p.parseIDList()
	if err != nil {
		return nil, err
	}
	if err := p.endStatement(); err != nil {
		return nil, err
	}
	return ast.New(ast.Import, kw, ids), nil
}

// parseFromImport parses "from m import a, b".
func (p *Parser) parseFromImport() (*ast.Node, *diagnostics.Error) {
	defer p.enter("FromImport")()

	kw := p.terminal()
	name, err := p.expect(token.ID)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.IMPORT); err != nil {
		return nil, err
	}
	ids, err := p.parseIDList()
	if err != nil {
		return nil, err
	}
	if err := p.endStatement(); err != nil {
		return nil, err
	}
	return ast.New(ast.FromImport, kw, name, ids), nil
}

func (p *Parser) parseIDList() (*ast.Node, *diagnostics.Error) {
	list := ast.New(ast.IDList)
	for {
		id, err := p.expect(token.ID)
		if err != nil {
			return nil, err
		}
		list.Children = append(list.Children, id)
		if !p.curIs(token.COMMA) {
			return list, nil
		}
		p.next()
	}
}

func (p *Parser) parseDef() (*ast.Node, *diagnostics.Error) {
	defer p.enter("Def")()

	col := p.cur.Range.Start.Column
	kw := p.terminal()
	name, err := p.expect(token.ID)
	if err != nil {
		return nil, err
	}
	params, err := p.parseParams()
	if err != nil {
		return nil, err
	}

	p.funcDepth++
	body, err := p.parseBody(col, p.parseStatement)
	p.funcDepth--
	if err != nil {
		return nil, err
	}
	return ast.New(ast.FuncDecl, kw, name, params, body), nil
}

// parseParams parses "(" [ ("self" | ID) { "," ID } ] ")".
func (p *Parser) parseParams() (*ast.Node, *diagnostics.Error) {
	if !p.curIs(token.LEFT_PAREN) {
		return nil, p.fail()
	}
	list := ast.New(ast.ParamList, p.open())
	seen := map[string]bool{}
	for !p.curIs(token.RIGHT_PAREN) {
		if len(list.Children) > 1 {
			if _, err := p.expect(token.COMMA); err != nil {
				return nil, err
			}
		}
		switch {
		case p.curIs(token.SELF):
			if len(list.Children) > 1 {
				return nil, p.errorf(diagnostics.ErrP001, p.cur, "'self' must be the first parameter")
			}
		case p.curIs(token.ID):
			if seen[p.cur.Text] {
				return nil, p.errorf(diagnostics.ErrP001, p.cur, "duplicate parameter '%s'", p.cur.Text)
			}
			seen[p.cur.Text] = true
		default:
			return nil, p.fail()
		}
		list.Children = append(list.Children, p.terminal())
	}
	closing, err := p.close(token.RIGHT_PAREN)
	if err != nil {
		return nil, err
	}
	list.Children = append(list.Children, closing)
	return list, nil
}

func (p *Parser) parseClass() (*ast.Node, *diagnostics.Error) {
	defer p.enter("Class")()

	col := p.cur.Range.Start.Column
	kw := p.terminal()
	name, err := p.expect(token.ID)
	if err != nil {
		return nil, err
	}
	body, err := p.parseBody(col, p.parseClassStatement)
	if err != nil {
		return nil, err
	}
	return ast.New(ast.ClassDecl, kw, name, body), nil
}

// parseClassStatement accepts only method definitions and pass.
func (p *Parser) parseClassStatement() (*ast.Node, *diagnostics.Error) {
	switch p.cur.Kind {
	case token.DEF:
		return p.parseDef()
	case token.PASS:
		return p.parsePass()
	}
	return nil, p.errorf(diagnostics.ErrP001, p.cur, "expected method definition in class body, got %s", describe(p.cur))
}

// parseAtribExpr parses an expression statement, optionally followed by a
// plain or augmented assignment.
func (p *Parser) parseAtribExpr() (*ast.Node, *diagnostics.Error) {
	defer p.enter("AtribExpr")()

	lhs, err := p.parseExprList()
	if err != nil {
		return nil, err
	}

	var node *ast.Node
	switch {
	case p.curIs(token.ASSIGN):
		p.next()
		rhs, err := p.parseExprList()
		if err != nil {
			return nil, err
		}
		if lhs.Kind == ast.ExprList {
			for _, target := range lhs.Children {
				if err := p.checkTarget(target); err != nil {
					return nil, err
				}
			}
			node = ast.New(ast.MultiAssign, lhs, rhs)
		} else {
			if err := p.checkTarget(lhs); err != nil {
				return nil, err
			}
			node = ast.New(ast.Assign, lhs, rhs)
		}

	case p.curIs(token.ASSIGN_PLUS, token.ASSIGN_MINUS, token.ASSIGN_MULT, token.ASSIGN_DIV, token.ASSIGN_REM):
		if lhs.Kind == ast.ExprList {
			return nil, p.errorf(diagnostics.ErrP001, p.cur, "augmented assignment takes a single target")
		}
		if err := p.checkTarget(lhs); err != nil {
			return nil, err
		}
		op := p.terminal()
		rhs, err := p.parseExprList()
		if err != nil {
			return nil, err
		}
		node = ast.New(ast.AugAssign, lhs, op, rhs)

	default:
		node = ast.New(ast.ExprStmt, lhs)
	}

	if err := p.endStatement(); err != nil {
		return nil, err
	}
	return node, nil
}

// checkTarget accepts identifiers, index and field accesses.
func (p *Parser) checkTarget(n *ast.Node) *diagnostics.Error {
	if n.Is(token.ID) || n.Kind == ast.Index || n.Kind == ast.FieldAccess {
		return nil
	}
	ast.ComputeRanges(n)
	return diagnostics.NewError(diagnostics.ErrP001, p.module, n.Range, "cannot assign to %s", targetName(n))
}

func targetName(n *ast.Node) string {
	if n.Kind == ast.Terminal {
		return "'" + n.Text() + "'"
	}
	return n.Kind.String()
}
