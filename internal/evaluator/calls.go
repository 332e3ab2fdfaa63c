package evaluator

import (
	"github.com/funvibe/serpent/internal/ast"
	"github.com/funvibe/serpent/internal/diagnostics"
)

// Call: callee ArgList
func (e *Evaluator) evalCall(node *ast.Node) (*Cell, *diagnostics.Error) {
	callee, err := e.evalExpr(node.Children[0])
	if err != nil {
		return nil, err
	}
	argNodes := node.Children[1].Inner()
	args := make([]Object, 0, len(argNodes))
	for _, argNode := range argNodes {
		arg, err := e.evalExpr(argNode)
		if err != nil {
			return nil, err
		}
		args = append(args, arg.Get())
	}

	result, err := e.call(callee.Get(), args, node)
	if err != nil {
		return nil, err
	}
	return NewCell(result), nil
}

func (e *Evaluator) call(callee Object, args []Object, node *ast.Node) (Object, *diagnostics.Error) {
	switch fn := callee.(type) {
	case *Function:
		return e.callFunction(fn, args, node)
	case *Builtin:
		if len(args) != fn.Arity {
			return nil, arityError(fn.Name, fn.Arity, len(args))
		}
		return fn.Fn(args)
	case *Class:
		init, ok := fn.Methods["__init__"]
		if !ok {
			return nil, diagnostics.Errorf(diagnostics.ErrC001, "class %s has no __init__ method", fn.Name)
		}
		inst := &Instance{Class: fn, Props: make(map[string]*Cell)}
		if _, err := e.callFunction(bindMethod(init, inst), args, node); err != nil {
			return nil, err
		}
		return inst, nil
	}
	return nil, diagnostics.Errorf(diagnostics.ErrT001, "'%s' object is not callable", callee.Type())
}

func arityError(name string, want, got int) *diagnostics.Error {
	plural := "s"
	if want == 1 {
		plural = ""
	}
	return diagnostics.Errorf(diagnostics.ErrT001, "%s() takes %d argument%s (%d given)", name, want, plural, got)
}

// callFunction runs fn's body in a fresh child of its captured scope.
// Errors leaving the body get a trace frame for this call.
func (e *Evaluator) callFunction(fn *Function, args []Object, node *ast.Node) (Object, *diagnostics.Error) {
	if len(args) != len(fn.Params) {
		return nil, arityError(fn.Name, len(fn.Params), len(args))
	}
	if err := e.checkContext(); err != nil {
		return nil, err
	}
	if e.depth >= e.maxDepth {
		return nil, diagnostics.Errorf(diagnostics.ErrX001, "maximum recursion depth %d exceeded", e.maxDepth)
	}
	e.depth++
	defer func() { e.depth-- }()

	scope := NewScope(FunctionScope, fn.Name, fn.Env)
	for i, param := range fn.Params {
		scope.Define(param, NewCell(args[i]))
	}

	caller := e.frame
	frame := &Frame{Scope: scope, Parent: caller, Module: fn.Module, Name: fn.Name, Call: node.Range}
	e.frame = frame
	e.tracef("call %s", fn.Name)
	_, err := e.execBlock(fn.Body)
	e.frame = caller

	if err != nil {
		err.Trace = append(err.Trace, diagnostics.Frame{Name: fn.Name, Module: caller.Module.Name, Range: node.Range})
		return nil, err
	}
	if frame.Return == nil {
		return NONE, nil
	}
	return frame.Return, nil
}
