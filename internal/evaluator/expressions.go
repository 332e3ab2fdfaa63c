package evaluator

import (
	"math/big"

	"github.com/funvibe/serpent/internal/ast"
	"github.com/funvibe/serpent/internal/diagnostics"
	"github.com/funvibe/serpent/internal/token"
)

// evalExpr evaluates an expression to a cell. Literals and operators yield
// fresh cells; a variable yields the cell bound to it. Errors that do not
// carry a range yet get the expression's.
func (e *Evaluator) evalExpr(node *ast.Node) (*Cell, *diagnostics.Error) {
	cell, err := e.evalCore(node)
	if err != nil {
		return nil, err.WithRange(e.moduleName(), node.Range)
	}
	return cell, nil
}

func (e *Evaluator) evalCore(node *ast.Node) (*Cell, *diagnostics.Error) {
	switch node.Kind {
	case ast.Terminal:
		return e.evalTerminal(node)
	case ast.BinaryOp:
		return e.evalBinary(node)
	case ast.UnaryOp:
		return e.evalUnary(node)
	case ast.Call:
		return e.evalCall(node)
	case ast.Index:
		return e.evalIndex(node)
	case ast.Slice:
		return e.evalSlice(node)
	case ast.FieldAccess:
		return e.evalFieldAccess(node)
	case ast.List, ast.Tuple:
		return e.evalElements(node.Inner())
	case ast.ExprList:
		return e.evalElements(node.Children)
	case ast.Dict:
		return e.evalDict(node)
	}
	return nil, diagnostics.Errorf(diagnostics.ErrC001, "unexpected %s in expression", node.Kind)
}

func (e *Evaluator) evalTerminal(node *ast.Node) (*Cell, *diagnostics.Error) {
	tok := node.Token
	switch tok.Kind {
	case token.NUM:
		n, ok := new(big.Int).SetString(tok.Text, 10)
		if !ok {
			return nil, diagnostics.Errorf(diagnostics.ErrT001, "invalid number literal %s", tok.Text)
		}
		return NewCell(&Num{Value: n}), nil
	case token.STR:
		return NewCell(&Str{Value: tok.Text}), nil
	case token.TRUE:
		return NewCell(TRUE), nil
	case token.FALSE:
		return NewCell(FALSE), nil
	case token.NONE:
		return NewCell(NONE), nil
	case token.ID:
		if cell, ok := e.scope().Lookup(tok.Text); ok {
			return cell, nil
		}
		return nil, diagnostics.Errorf(diagnostics.ErrN001, "name '%s' is not defined", tok.Text)
	case token.SELF:
		if cell, ok := e.scope().Lookup("self"); ok {
			return cell, nil
		}
		return nil, diagnostics.Errorf(diagnostics.ErrN001, "'self' used outside of a method")
	}
	return nil, diagnostics.Errorf(diagnostics.ErrC001, "unexpected token %s", tok.Kind)
}

// BinaryOp: left op right
func (e *Evaluator) evalBinary(node *ast.Node) (*Cell, *diagnostics.Error) {
	op := node.Children[1]
	if op.Is(token.AND, token.OR) {
		return e.evalLogical(node)
	}
	left, err := e.evalExpr(node.Children[0])
	if err != nil {
		return nil, err
	}
	right, err := e.evalExpr(node.Children[2])
	if err != nil {
		return nil, err
	}
	result, err := binaryOp(op.Token.Kind, op.Text(), left.Get(), right.Get())
	if err != nil {
		return nil, err
	}
	return NewCell(result), nil
}

// evalLogical short-circuits: the right operand is only evaluated when the
// left one does not decide the result.
func (e *Evaluator) evalLogical(node *ast.Node) (*Cell, *diagnostics.Error) {
	op := node.Children[1]
	left, err := e.logicalOperand(op, node.Children[0])
	if err != nil {
		return nil, err
	}
	if op.Is(token.AND) && !left || op.Is(token.OR) && left {
		return NewCell(nativeBool(left)), nil
	}
	right, err := e.logicalOperand(op, node.Children[2])
	if err != nil {
		return nil, err
	}
	return NewCell(nativeBool(right)), nil
}

func (e *Evaluator) logicalOperand(op, node *ast.Node) (bool, *diagnostics.Error) {
	cell, err := e.evalExpr(node)
	if err != nil {
		return false, err
	}
	b, ok := cell.Get().(*Boolean)
	if !ok {
		return false, diagnostics.Errorf(diagnostics.ErrT001, "operand of '%s' must be Bool, got %s", op.Text(), cell.Get().Type())
	}
	return b.Value, nil
}

// UnaryOp: op operand
func (e *Evaluator) evalUnary(node *ast.Node) (*Cell, *diagnostics.Error) {
	op := node.Children[0]
	operand, err := e.evalExpr(node.Children[1])
	if err != nil {
		return nil, err
	}
	switch v := operand.Get().(type) {
	case *Boolean:
		if op.Is(token.NOT) {
			return NewCell(nativeBool(!v.Value)), nil
		}
	case *Num:
		if op.Is(token.MINUS) {
			return NewCell(&Num{Value: new(big.Int).Neg(v.Value)}), nil
		}
	}
	return nil, diagnostics.Errorf(diagnostics.ErrT001, "bad operand type for unary %s: '%s'", op.Text(), operand.Get().Type())
}

// evalElements builds a list whose cells are copies of the element values,
// so the new list does not alias the variables it was built from.
func (e *Evaluator) evalElements(nodes []*ast.Node) (*Cell, *diagnostics.Error) {
	l := &List{Elements: make([]*Cell, 0, len(nodes))}
	for _, node := range nodes {
		cell, err := e.evalExpr(node)
		if err != nil {
			return nil, err
		}
		l.Elements = append(l.Elements, NewCell(cell.Get()))
	}
	return NewCell(l), nil
}

// Dict: "{" KeyValue... "}"
func (e *Evaluator) evalDict(node *ast.Node) (*Cell, *diagnostics.Error) {
	d := NewDict()
	for _, kv := range node.Inner() {
		key, err := e.evalExpr(kv.Children[0])
		if err != nil {
			return nil, err
		}
		value, err := e.evalExpr(kv.Children[1])
		if err != nil {
			return nil, err
		}
		cell, err := d.Upsert(key.Get())
		if err != nil {
			return nil, err.WithRange(e.moduleName(), kv.Children[0].Range)
		}
		cell.Set(value.Get())
	}
	return NewCell(d), nil
}

func copyCells(cells []*Cell) []*Cell {
	out := make([]*Cell, len(cells))
	for i, c := range cells {
		out[i] = NewCell(c.Get())
	}
	return out
}
