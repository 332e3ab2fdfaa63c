// Package builtins provides the root scope every module resolves names in.
package builtins

import (
	"fmt"
	"io"
	"math/big"
	"unicode/utf8"

	"github.com/funvibe/serpent/internal/config"
	"github.com/funvibe/serpent/internal/diagnostics"
	"github.com/funvibe/serpent/internal/evaluator"
)

// NewScope returns a fresh builtin scope whose print writes to out.
// Scopes hold mutable state, so concurrent runs each need their own.
func NewScope(out io.Writer) *evaluator.Scope {
	scope := evaluator.NewScope(evaluator.BuiltinScope, "builtins", nil)
	for _, b := range []*evaluator.Builtin{
		{Name: config.PrintFuncName, Arity: 1, Fn: printFn(out)},
		{Name: config.IntFuncName, Arity: 1, Fn: intFn},
		{Name: config.StrFuncName, Arity: 1, Fn: strFn},
		{Name: config.LenFuncName, Arity: 1, Fn: lenFn},
	} {
		scope.Define(b.Name, evaluator.NewImmutableCell(b))
	}
	return scope
}

func printFn(out io.Writer) evaluator.BuiltinFunction {
	return func(args []evaluator.Object) (evaluator.Object, *diagnostics.Error) {
		if _, err := fmt.Fprintln(out, args[0].Inspect()); err != nil {
			return nil, diagnostics.Errorf(diagnostics.ErrX001, "print: %v", err)
		}
		return evaluator.NONE, nil
	}
}

func intFn(args []evaluator.Object) (evaluator.Object, *diagnostics.Error) {
	switch arg := args[0].(type) {
	case *evaluator.Num:
		return arg, nil
	case *evaluator.Str:
		n, ok := new(big.Int).SetString(arg.Value, 10)
		if !ok {
			return nil, diagnostics.Errorf(diagnostics.ErrT001, "invalid literal for int(): %s", evaluator.Repr(arg))
		}
		return &evaluator.Num{Value: n}, nil
	}
	return nil, diagnostics.Errorf(diagnostics.ErrT001, "int() argument must be Str or Num, not %s", args[0].Type())
}

func strFn(args []evaluator.Object) (evaluator.Object, *diagnostics.Error) {
	return &evaluator.Str{Value: args[0].Inspect()}, nil
}

func lenFn(args []evaluator.Object) (evaluator.Object, *diagnostics.Error) {
	switch arg := args[0].(type) {
	case *evaluator.Str:
		return evaluator.NewNum(int64(utf8.RuneCountInString(arg.Value))), nil
	case *evaluator.List:
		return evaluator.NewNum(int64(len(arg.Elements))), nil
	case *evaluator.Dict:
		return evaluator.NewNum(int64(arg.Len())), nil
	}
	return nil, diagnostics.Errorf(diagnostics.ErrT001, "object of type '%s' has no len()", args[0].Type())
}
