package parser

import (
	"github.com/funvibe/serpent/internal/ast"
	"github.com/funvibe/serpent/internal/diagnostics"
	"github.com/funvibe/serpent/internal/token"
)

var (
	compOps = []token.Kind{
		token.EQUALS, token.DIFF, token.GREATER, token.GREATER_OR_EQUALS,
		token.LESS, token.LESS_OR_EQUALS, token.IN,
	}
	sumOps  = []token.Kind{token.PLUS, token.MINUS}
	multOps = []token.Kind{token.MULT, token.DIV, token.REM}
)

// parseExprList parses Expr { "," Expr }. A single expression is returned
// as is; several are wrapped in an ExprList.
func (p *Parser) parseExprList() (*ast.Node, *diagnostics.Error) {
	defer p.enter("ExprList")()

	first, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if !p.curIs(token.COMMA) {
		return first, nil
	}
	list := ast.New(ast.ExprList, first)
	for p.curIs(token.COMMA) {
		p.next()
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		list.Children = append(list.Children, expr)
	}
	return list, nil
}

func (p *Parser) parseExpr() (*ast.Node, *diagnostics.Error) {
	defer p.enter("Expr")()
	return p.parseBinary(p.parseAnd, token.OR)
}

func (p *Parser) parseAnd() (*ast.Node, *diagnostics.Error) {
	return p.parseBinary(p.parseComp, token.AND)
}

func (p *Parser) parseComp() (*ast.Node, *diagnostics.Error) {
	return p.parseBinary(p.parseSum, compOps...)
}

func (p *Parser) parseSum() (*ast.Node, *diagnostics.Error) {
	return p.parseBinary(p.parseMult, sumOps...)
}

func (p *Parser) parseMult() (*ast.Node, *diagnostics.Error) {
	return p.parseBinary(p.parseUnaryPrefix, multOps...)
}

// parseBinary parses a left-associative chain of operand (op operand)*.
func (p *Parser) parseBinary(operand func() (*ast.Node, *diagnostics.Error), ops ...token.Kind) (*ast.Node, *diagnostics.Error) {
	left, err := operand()
	if err != nil {
		return nil, err
	}
	for p.curIs(ops...) {
		op := p.terminal()
		right, err := operand()
		if err != nil {
			return nil, err
		}
		left = ast.New(ast.BinaryOp, left, op, right)
	}
	return left, nil
}

// parseUnaryPrefix parses {not|-} UnarySuffix. The operators nest right to
// left, so "not -x" is not(-(x)).
func (p *Parser) parseUnaryPrefix() (*ast.Node, *diagnostics.Error) {
	var ops []*ast.Node
	for p.curIs(token.NOT, token.MINUS) {
		ops = append(ops, p.terminal())
	}
	operand, err := p.parseUnarySuffix()
	if err != nil {
		return nil, err
	}
	for i := len(ops) - 1; i >= 0; i-- {
		operand = ast.New(ast.UnaryOp, ops[i], operand)
	}
	return operand, nil
}

// parseUnarySuffix parses Term { Call | Index | Slice | DotAccess }.
func (p *Parser) parseUnarySuffix() (*ast.Node, *diagnostics.Error) {
	node, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		switch p.cur.Kind {
		case token.LEFT_PAREN:
			args, err := p.parseDelimited(ast.ArgList, token.RIGHT_PAREN, p.parseExpr)
			if err != nil {
				return nil, err
			}
			node = ast.New(ast.Call, node, args)

		case token.LEFT_BRACKET:
			if node, err = p.parseSubscript(node); err != nil {
				return nil, err
			}

		case token.DOT:
			p.next()
			field, err := p.expect(token.ID)
			if err != nil {
				return nil, err
			}
			node = ast.New(ast.FieldAccess, node, field)

		default:
			return node, nil
		}
	}
}

// parseSubscript parses "[" Expr "]" or "[" [Expr] ":" [Expr] "]".
func (p *Parser) parseSubscript(target *ast.Node) (*ast.Node, *diagnostics.Error) {
	p.open()

	var lo *ast.Node
	if !p.curIs(token.COLON) {
		var err *diagnostics.Error
		if lo, err = p.parseExpr(); err != nil {
			return nil, err
		}
		if p.curIs(token.RIGHT_BRACKET) {
			closing, err := p.close(token.RIGHT_BRACKET)
			if err != nil {
				return nil, err
			}
			return ast.New(ast.Index, target, lo, closing), nil
		}
	}

	if _, err := p.expect(token.COLON); err != nil {
		return nil, err
	}
	var hi *ast.Node
	if !p.curIs(token.RIGHT_BRACKET) {
		var err *diagnostics.Error
		if hi, err = p.parseExpr(); err != nil {
			return nil, err
		}
	}
	closing, err := p.close(token.RIGHT_BRACKET)
	if err != nil {
		return nil, err
	}
	return ast.New(ast.Slice, target, lo, hi, closing), nil
}

func (p *Parser) parseTerm() (*ast.Node, *diagnostics.Error) {
	defer p.enter("Term")()

	switch p.cur.Kind {
	case token.NUM, token.STR, token.ID, token.TRUE, token.FALSE, token.NONE, token.SELF:
		return p.terminal(), nil

	case token.LEFT_PAREN:
		tuple, trailing, err := p.parseItems(ast.Tuple, token.RIGHT_PAREN, p.parseExpr)
		if err != nil {
			return nil, err
		}
		switch elems := tuple.Inner(); len(elems) {
		case 0:
			return nil, p.errorf(diagnostics.ErrP001, *tuple.Right().Token, "empty parentheses")
		case 1:
			// (x,) is a one-element tuple, (x) just x.
			if !trailing {
				return elems[0], nil
			}
		}
		return tuple, nil

	case token.LEFT_BRACKET:
		return p.parseDelimited(ast.List, token.RIGHT_BRACKET, p.parseExpr)

	case token.LEFT_BRACE:
		return p.parseDelimited(ast.Dict, token.RIGHT_BRACE, p.parseKeyValue)
	}
	return nil, p.fail()
}

func (p *Parser) parseKeyValue() (*ast.Node, *diagnostics.Error) {
	key, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.COLON); err != nil {
		return nil, err
	}
	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return ast.New(ast.KeyValue, key, value), nil
}

// parseDelimited parses open [item {"," item} [","]] close, keeping both
// delimiters as the first and last children.
func (p *Parser) parseDelimited(kind ast.Kind, closeKind token.Kind, item func() (*ast.Node, *diagnostics.Error)) (*ast.Node, *diagnostics.Error) {
	node, _, err := p.parseItems(kind, closeKind, item)
	return node, err
}

// parseItems is parseDelimited that also reports whether the list ended
// with a comma.
func (p *Parser) parseItems(kind ast.Kind, closeKind token.Kind, item func() (*ast.Node, *diagnostics.Error)) (*ast.Node, bool, *diagnostics.Error) {
	node := ast.New(kind, p.open())
	trailing := false
	for !p.curIs(closeKind) {
		if len(node.Children) > 1 {
			if _, err := p.expect(token.COMMA); err != nil {
				return nil, false, err
			}
			if trailing = p.curIs(closeKind); trailing {
				break
			}
		}
		elem, err := item()
		if err != nil {
			return nil, false, err
		}
		node.Children = append(node.Children, elem)
	}
	closing, err := p.close(closeKind)
	if err != nil {
		return nil, false, err
	}
	node.Children = append(node.Children, closing)
	return node, trailing, nil
}
