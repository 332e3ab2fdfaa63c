package evaluator

import (
	"github.com/funvibe/serpent/internal/ast"
	"github.com/funvibe/serpent/internal/diagnostics"
)

// listIndex checks that key is a Num in [0, length).
func listIndex(key Object, length int) (int, *diagnostics.Error) {
	n, ok := key.(*Num)
	if !ok {
		return 0, diagnostics.Errorf(diagnostics.ErrT001, "indices must be Num, not %s", key.Type())
	}
	if !n.Value.IsInt64() || n.Value.Sign() < 0 || n.Value.Int64() >= int64(length) {
		return 0, diagnostics.Errorf(diagnostics.ErrR001, "index %s out of range for length %d", n.Value, length)
	}
	return int(n.Value.Int64()), nil
}

// Index: target index "]". A list element is returned as its own cell.
func (e *Evaluator) evalIndex(node *ast.Node) (*Cell, *diagnostics.Error) {
	container, err := e.evalExpr(node.Children[0])
	if err != nil {
		return nil, err
	}
	key, err := e.evalExpr(node.Children[1])
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
	case *Str:
		runes := []rune(c.Value)
		i, err := listIndex(key.Get(), len(runes))
		if err != nil {
			return nil, err
		}
		return NewCell(&Str{Value: string(runes[i])}), nil
	case *Dict:
		cell, ok, err := c.Get(key.Get())
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, diagnostics.Errorf(diagnostics.ErrN001, "key %s not found", Repr(key.Get()))
		}
		return cell, nil
	}
	return nil, diagnostics.Errorf(diagnostics.ErrT001, "'%s' object is not subscriptable", container.Get().Type())
}

// Slice: target lo|nil hi|nil "]"
func (e *Evaluator) evalSlice(node *ast.Node) (*Cell, *diagnostics.Error) {
	container, err := e.evalExpr(node.Children[0])
	if err != nil {
		return nil, err
	}

	var (
		list  *List
		runes []rune
	)
	switch c := container.Get().(type) {
	case *List:
		list = c
	case *Str:
		runes = []rune(c.Value)
	default:
		return nil, diagnostics.Errorf(diagnostics.ErrT001, "'%s' object is not sliceable", container.Get().Type())
	}
	length := len(runes)
	if list != nil {
		length = len(list.Elements)
	}

	lo, err := e.sliceBound(node.Children[1], 0)
	if err != nil {
		return nil, err
	}
	hi, err := e.sliceBound(node.Children[2], length)
	if err != nil {
		return nil, err
	}
	if lo < 0 || hi < lo || hi > length {
		return nil, diagnostics.Errorf(diagnostics.ErrR001, "slice [%d:%d] out of bounds for length %d", lo, hi, length)
	}

	if list != nil {
		return NewCell(&List{Elements: copyCells(list.Elements[lo:hi])}), nil
	}
	return NewCell(&Str{Value: string(runes[lo:hi])}), nil
}

func (e *Evaluator) sliceBound(node *ast.Node, omitted int) (int, *diagnostics.Error) {
	if node == nil {
		return omitted, nil
	}
	cell, err := e.evalExpr(node)
	if err != nil {
		return 0, err
	}
	n, ok := cell.Get().(*Num)
	if !ok {
		return 0, diagnostics.Errorf(diagnostics.ErrT001, "slice bounds must be Num, not %s", cell.Get().Type())
	}
	if !n.Value.IsInt64() || n.Value.Int64() < -1<<31 || n.Value.Int64() > 1<<31 {
		return 0, diagnostics.Errorf(diagnostics.ErrR001, "slice bound %s out of bounds", n.Value)
	}
	return int(n.Value.Int64()), nil
}

// FieldAccess: target ID. On an object, methods shadow properties and
// reading a missing property is an error.
func (e *Evaluator) evalFieldAccess(node *ast.Node) (*Cell, *diagnostics.Error) {
	owner, err := e.evalExpr(node.Children[0])
	if err != nil {
		return nil, err
	}
	name := node.Children[1].Text()

	switch o := owner.Get().(type) {
	case *Module:
		if cell, ok := o.Scope.Local(name); ok {
			return cell, nil
		}
		return nil, diagnostics.Errorf(diagnostics.ErrN001, "module '%s' has no member '%s'", o.Name, name)
	case *Instance:
		if method, ok := o.Class.Methods[name]; ok {
			return NewCell(bindMethod(method, o)), nil
		}
		if cell, ok := o.Props[name]; ok {
			return cell, nil
		}
		return nil, diagnostics.Errorf(diagnostics.ErrN001, "%s has no attribute '%s'", o.Inspect(), name)
	}
	return nil, diagnostics.Errorf(diagnostics.ErrT001, "'%s' object has no attributes", owner.Get().Type())
}

// bindMethod returns a copy of method whose scope holds self = inst on top
// of the method's defining scope. Every access binds anew.
func bindMethod(method *Function, inst *Instance) *Function {
	scope := NewScope(MethodScope, method.Name, method.Env)
	scope.Define("self", NewImmutableCell(inst))
	bound := *method
	bound.Env = scope
	return &bound
}
