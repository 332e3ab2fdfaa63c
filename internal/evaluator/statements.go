package evaluator

import (
	"github.com/funvibe/serpent/internal/ast"
	"github.com/funvibe/serpent/internal/diagnostics"
	"github.com/funvibe/serpent/internal/token"
)

// execBlock runs statements in order and stops early on an error or once a
// return statement has fired.
func (e *Evaluator) execBlock(block *ast.Node) (signal, *diagnostics.Error) {
	for _, stmt := range block.Children {
		ctl, err := e.execStmt(stmt)
		if err != nil {
			return ctlNone, err
		}
		if ctl == ctlReturn {
			return ctlReturn, nil
		}
	}
	return ctlNone, nil
}

// execStmt runs one statement. Errors that do not carry a range yet get the
// statement's.
func (e *Evaluator) execStmt(stmt *ast.Node) (signal, *diagnostics.Error) {
	ctl, err := e.execCore(stmt)
	if err != nil {
		return ctlNone, err.WithRange(e.moduleName(), stmt.Range)
	}
	return ctl, nil
}

func (e *Evaluator) execCore(stmt *ast.Node) (signal, *diagnostics.Error) {
	switch stmt.Kind {
	case ast.ExprStmt:
		_, err := e.evalExpr(stmt.Left())
		return ctlNone, err
	case ast.Assign:
		return ctlNone, e.execAssign(stmt)
	case ast.AugAssign:
		return ctlNone, e.execAugAssign(stmt)
	case ast.MultiAssign:
		return ctlNone, e.execMultiAssign(stmt)
	case ast.While:
		return e.execWhile(stmt)
	case ast.DoWhile:
		return e.execDoWhile(stmt)
	case ast.If:
		return e.execIf(stmt)
	case ast.Return:
		return e.execReturn(stmt)
	case ast.Pass:
		return ctlNone, nil
	case ast.FuncDecl:
		fn := e.newFunction(stmt)
		return ctlNone, e.bind(fn.Name, fn)
	case ast.ClassDecl:
		return ctlNone, e.execClass(stmt)
	case ast.Import:
		return ctlNone, e.execImport(stmt)
	case ast.FromImport:
		return ctlNone, e.execFromImport(stmt)
	}
	return ctlNone, diagnostics.Errorf(diagnostics.ErrC001, "unexpected %s statement", stmt.Kind)
}

// condition evaluates a loop or branch predicate, which must be a Bool.
func (e *Evaluator) condition(node *ast.Node) (bool, *diagnostics.Error) {
	cell, err := e.evalExpr(node)
	if err != nil {
		return false, err
	}
	b, ok := cell.Get().(*Boolean)
	if !ok {
		err := diagnostics.Errorf(diagnostics.ErrT001, "condition must be Bool, got %s", cell.Get().Type())
		return false, err.WithRange(e.moduleName(), node.Range)
	}
	return b.Value, nil
}

// While: "while" cond Block
func (e *Evaluator) execWhile(stmt *ast.Node) (signal, *diagnostics.Error) {
	cond, body := stmt.Children[1], stmt.Children[2]
	for {
		if err := e.checkContext(); err != nil {
			return ctlNone, err
		}
		ok, err := e.condition(cond)
		if err != nil {
			return ctlNone, err
		}
		if !ok {
			return ctlNone, nil
		}
		ctl, err := e.execBlock(body)
		if err != nil || ctl == ctlReturn {
			return ctl, err
		}
	}
}

// DoWhile: "do" Block cond
func (e *Evaluator) execDoWhile(stmt *ast.Node) (signal, *diagnostics.Error) {
	body, cond := stmt.Children[1], stmt.Children[2]
	for {
		if err := e.checkContext(); err != nil {
			return ctlNone, err
		}
		ctl, err := e.execBlock(body)
		if err != nil || ctl == ctlReturn {
			return ctl, err
		}
		ok, err := e.condition(cond)
		if err != nil {
			return ctlNone, err
		}
		if !ok {
			return ctlNone, nil
		}
	}
}

// If: "if" cond Block Elif... Else?
func (e *Evaluator) execIf(stmt *ast.Node) (signal, *diagnostics.Error) {
	ok, err := e.condition(stmt.Children[1])
	if err != nil {
		return ctlNone, err
	}
	if ok {
		return e.execBlock(stmt.Children[2])
	}
	for _, branch := range stmt.Children[3:] {
		if branch.Kind == ast.Else {
			return e.execBlock(branch.Children[1])
		}
		ok, err := e.condition(branch.Children[1])
		if err != nil {
			return ctlNone, err
		}
		if ok {
			return e.execBlock(branch.Children[2])
		}
	}
	return ctlNone, nil
}

func (e *Evaluator) execReturn(stmt *ast.Node) (signal, *diagnostics.Error) {
	var result Object = NONE
	if value := stmt.Children[1]; value != nil {
		cell, err := e.evalExpr(value)
		if err != nil {
			return ctlNone, err
		}
		result = cell.Get()
	}
	e.frame.Return = result
	return ctlReturn, nil
}

func (e *Evaluator) newFunction(decl *ast.Node) *Function {
	fn := &Function{
		Name:   decl.Children[1].Text(),
		Body:   decl.Children[3],
		Env:    e.scope(),
		Module: e.frame.Module,
	}
	for _, param := range decl.Children[2].Inner() {
		if param.Is(token.SELF) {
			continue
		}
		fn.Params = append(fn.Params, param.Text())
	}
	return fn
}

// bind assigns obj to name in the innermost scope.
func (e *Evaluator) bind(name string, obj Object) *diagnostics.Error {
	if err := e.scope().Upsert(name).Set(obj); err != nil {
		err.Message = "cannot assign to immutable binding '" + name + "'"
		return err
	}
	return nil
}

// ClassDecl: "class" ID Block of FuncDecl and Pass statements
func (e *Evaluator) execClass(stmt *ast.Node) *diagnostics.Error {
	class := &Class{Name: stmt.Children[1].Text(), Methods: make(map[string]*Function)}
	for _, member := range stmt.Children[2].Children {
		if member.Kind != ast.FuncDecl {
			continue
		}
		fn := e.newFunction(member)
		class.Methods[fn.Name] = fn
	}
	return e.bind(class.Name, class)
}

func (e *Evaluator) execImport(stmt *ast.Node) *diagnostics.Error {
	for _, id := range stmt.Children[1].Children {
		mod, err := e.importModule(id.Text())
		if err != nil {
			return err.WithRange(e.moduleName(), id.Range)
		}
		e.scope().Define(id.Text(), NewImmutableCell(mod))
	}
	return nil
}

// execFromImport copies each named member into a fresh local cell.
func (e *Evaluator) execFromImport(stmt *ast.Node) *diagnostics.Error {
	name := stmt.Children[1]
	mod, err := e.importModule(name.Text())
	if err != nil {
		return err.WithRange(e.moduleName(), name.Range)
	}
	for _, id := range stmt.Children[2].Children {
		cell, ok := mod.Scope.Local(id.Text())
		if !ok {
			return diagnostics.NewError(diagnostics.ErrN001, e.moduleName(), id.Range,
				"module '%s' has no member '%s'", mod.Name, id.Text())
		}
		e.scope().Define(id.Text(), NewCell(cell.Get()))
	}
	return nil
}
