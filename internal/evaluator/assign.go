package evaluator

import (
	"github.com/funvibe/serpent/internal/ast"
	"github.com/funvibe/serpent/internal/diagnostics"
	"github.com/funvibe/serpent/internal/token"
)

var augmentedOps = map[token.Kind]token.Kind{
	token.ASSIGN_PLUS:  token.PLUS,
	token.ASSIGN_MINUS: token.MINUS,
	token.ASSIGN_MULT:  token.MULT,
	token.ASSIGN_DIV:   token.DIV,
	token.ASSIGN_REM:   token.REM,
}

// Assign: target value
func (e *Evaluator) execAssign(stmt *ast.Node) *diagnostics.Error {
	value, err := e.evalExpr(stmt.Right())
	if err != nil {
		return err
	}
	return e.assign(stmt.Left(), value.Get())
}

// AugAssign: target op value
func (e *Evaluator) execAugAssign(stmt *ast.Node) *diagnostics.Error {
	target, opNode, valueNode := stmt.Children[0], stmt.Children[1], stmt.Children[2]
	cell, err := e.augTarget(target)
	if err != nil {
		return err
	}
	value, err := e.evalExpr(valueNode)
	if err != nil {
		return err
	}

	// += on a list extends it in place so aliases observe the change.
	if l, ok := cell.Get().(*List); ok && opNode.Is(token.ASSIGN_PLUS) {
		r, ok := value.Get().(*List)
		if !ok {
			return diagnostics.Errorf(diagnostics.ErrT001, "unsupported operand types for +=: 'List' and '%s'", value.Get().Type())
		}
		l.Elements = append(l.Elements, copyCells(r.Elements)...)
		return nil
	}

	result, err := binaryOp(augmentedOps[opNode.Token.Kind], opNode.Text(), cell.Get(), value.Get())
	if err != nil {
		return err
	}
	if target.Kind == ast.Terminal {
		return e.assign(target, result)
	}
	return cell.Set(result)
}

// augTarget returns the cell an augmented assignment reads. A bare name must
// already be bound; it is written through assign only once the operation
// has succeeded, so a failed "x += 1" binds nothing.
func (e *Evaluator) augTarget(target *ast.Node) (*Cell, *diagnostics.Error) {
	if target.Kind != ast.Terminal {
		cell, err := e.lvalue(target)
		if err != nil {
			return nil, err
		}
		if !cell.Mutable {
			return nil, diagnostics.Errorf(diagnostics.ErrC001, "cannot assign to immutable binding")
		}
		return cell, nil
	}

	name := target.Text()
	if local, ok := e.scope().Local(name); ok && !local.Mutable {
		return nil, diagnostics.NewError(diagnostics.ErrC001, e.moduleName(), target.Range, "cannot assign to immutable binding '%s'", name)
	}
	cell, ok := e.scope().Lookup(name)
	if !ok {
		return nil, diagnostics.NewError(diagnostics.ErrN001, e.moduleName(), target.Range, "name '%s' is not defined", name)
	}
	return cell, nil
}

// MultiAssign: ExprList value. The right side is evaluated completely
// before any target is written, so "a, b = b, a" swaps.
func (e *Evaluator) execMultiAssign(stmt *ast.Node) *diagnostics.Error {
	targets := stmt.Left().Children
	valueNode := stmt.Right()

	var values []Object
	if valueNode.Kind == ast.ExprList {
		for _, expr := range valueNode.Children {
			cell, err := e.evalExpr(expr)
			if err != nil {
				return err
			}
			values = append(values, cell.Get())
		}
	} else {
		cell, err := e.evalExpr(valueNode)
		if err != nil {
			return err
		}
		l, ok := cell.Get().(*List)
		if !ok {
			return diagnostics.Errorf(diagnostics.ErrT001, "cannot unpack non-List value of type '%s'", cell.Get().Type())
		}
		for _, c := range l.Elements {
			values = append(values, c.Get())
		}
	}

	if len(values) != len(targets) {
		return diagnostics.Errorf(diagnostics.ErrT001, "cannot unpack %d values into %d targets", len(values), len(targets))
	}
	for i, target := range targets {
		if err := e.assign(target, values[i]); err != nil {
			return err
		}
	}
	return nil
}

func (e *Evaluator) assign(target *ast.Node, value Object) *diagnostics.Error {
	cell, err := e.lvalue(target)
	if err != nil {
		return err
	}
	if err := cell.Set(value); err != nil {
		if target.Kind == ast.Terminal {
			err.Message = "cannot assign to immutable binding '" + target.Text() + "'"
		}
		return err.WithRange(e.moduleName(), target.Range)
	}
	return nil
}

// lvalue resolves the cell an assignment writes to. A bare name is created
// in the innermost scope if absent, a dict item is created if absent and an
// object property is created on first write.
func (e *Evaluator) lvalue(target *ast.Node) (*Cell, *diagnostics.Error) {
	cell, err := e.lvalueCore(target)
	if err != nil {
		return nil, err.WithRange(e.moduleName(), target.Range)
	}
	return cell, nil
}

func (e *Evaluator) lvalueCore(target *ast.Node) (*Cell, *diagnostics.Error) {
	switch target.Kind {
	case ast.Terminal:
		return e.scope().Upsert(target.Text()), nil

	case ast.Index:
		container, err := e.evalExpr(target.Children[0])
		if err != nil {
			return nil, err
		}
		key, err := e.evalExpr(target.Children[1])
		if err != nil {
			return nil, err
		}
		switch c := container.Get().(type) {
		case *List:
			i, err := listIndex(key.Get(), len(c.Elements))
			if err != nil {
				return nil, err
			}
			return c.Elements[i], nil
		case *Dict:
			return c.Upsert(key.Get())
		case *Str:
			return nil, diagnostics.Errorf(diagnostics.ErrC001, "cannot assign to an item of a Str")
		}
		return nil, diagnostics.Errorf(diagnostics.ErrT001, "'%s' object does not support item assignment", container.Get().Type())

	case ast.FieldAccess:
		owner, err := e.evalExpr(target.Children[0])
		if err != nil {
			return nil, err
		}
		name := target.Children[1].Text()
		switch o := owner.Get().(type) {
		case *Instance:
			if _, ok := o.Class.Methods[name]; ok {
				return nil, diagnostics.Errorf(diagnostics.ErrC001, "cannot assign to method '%s' of %s", name, o.Inspect())
			}
			cell, ok := o.Props[name]
			if !ok {
				cell = NewCell(NONE)
				o.Props[name] = cell
			}
			return cell, nil
		case *Module:
			return nil, diagnostics.Errorf(diagnostics.ErrC001, "cannot assign to member '%s' of %s", name, o.Inspect())
		}
		return nil, diagnostics.Errorf(diagnostics.ErrT001, "'%s' object has no assignable attributes", owner.Get().Type())
	}
	return nil, diagnostics.Errorf(diagnostics.ErrC001, "cannot assign to %s", target.Kind)
}
