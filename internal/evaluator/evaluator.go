package evaluator

import (
	"context"
	"io"
	"log"
	"os"

	"github.com/funvibe/serpent/internal/ast"
	"github.com/funvibe/serpent/internal/config"
	"github.com/funvibe/serpent/internal/diagnostics"
	"github.com/funvibe/serpent/internal/lexer"
	"github.com/funvibe/serpent/internal/parser"
	"github.com/funvibe/serpent/internal/pipeline"
)

type moduleState int

const (
	moduleParsing moduleState = iota + 1
	moduleEvaluating
	moduleCached
)

type moduleEntry struct {
	state  moduleState
	module *Module
}

// Evaluator runs one program. It owns the module cache and the call stack,
// so concurrent runs each need their own Evaluator and builtin scope.
type Evaluator struct {
	builtins *Scope
	sources  map[string]string
	modules  map[string]*moduleEntry

	ctx      context.Context
	trace    *log.Logger
	traceOut io.Writer
	maxDepth int

	frame *Frame
	depth int
}

type Option func(*Evaluator)

// WithTrace logs parsing, module loads and calls to w.
func WithTrace(w io.Writer) Option {
	return func(e *Evaluator) {
		if w != nil {
			e.traceOut = w
			e.trace = log.New(w, "eval: ", 0)
		}
	}
}

// WithMaxDepth bounds the number of nested user function calls.
func WithMaxDepth(n int) Option {
	return func(e *Evaluator) {
		if n > 0 {
			e.maxDepth = n
		}
	}
}

// WithContext makes loops and calls stop once ctx is done.
func WithContext(ctx context.Context) Option {
	return func(e *Evaluator) {
		if ctx != nil {
			e.ctx = ctx
		}
	}
}

func New(builtins *Scope, sources map[string]string, opts ...Option) *Evaluator {
	e := &Evaluator{
		builtins: builtins,
		sources:  sources,
		modules:  make(map[string]*moduleEntry),
		ctx:      context.Background(),
		maxDepth: config.DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate runs the entry module of sources against builtins.
func Evaluate(builtins *Scope, sources map[string]string, entry string, trace bool) *diagnostics.Error {
	var opts []Option
	if trace {
		opts = append(opts, WithTrace(os.Stderr))
	}
	return New(builtins, sources, opts...).Run(entry)
}

// Run imports entry as the main module.
func (e *Evaluator) Run(entry string) *diagnostics.Error {
	_, err := e.importModule(entry)
	return err
}

// Module returns a loaded module by name.
func (e *Evaluator) Module(name string) (*Module, bool) {
	entry, ok := e.modules[name]
	if !ok || entry.module == nil {
		return nil, false
	}
	return entry.module, true
}

// Exec evaluates source as a continuation of module, creating the module on
// first use. If the last statement is an expression its value is returned,
// otherwise None.
func (e *Evaluator) Exec(module, source string) (Object, *diagnostics.Error) {
	entry, ok := e.modules[module]
	if !ok {
		entry = &moduleEntry{
			state:  moduleCached,
			module: &Module{Name: module, Scope: NewScope(ModuleScope, module, e.builtins)},
		}
		e.modules[module] = entry
	}
	mod := entry.module
	mod.Source = source

	root, err := e.parse(module, source)
	if err != nil {
		return nil, err
	}

	e.frame = &Frame{Scope: mod.Scope, Module: mod, Name: module}
	defer func() { e.frame = nil }()

	var result Object = NONE
	for i, stmt := range root.Children {
		if i == len(root.Children)-1 && stmt.Kind == ast.ExprStmt {
			cell, err := e.evalExpr(stmt.Left())
			if err != nil {
				return nil, err.WithRange(module, stmt.Range)
			}
			result = cell.Get()
			break
		}
		if _, err := e.execStmt(stmt); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (e *Evaluator) parse(module, source string) (*ast.Node, *diagnostics.Error) {
	ctx := &pipeline.Context{
		Module:   module,
		Source:   source,
		Trace:    e.trace != nil,
		TraceOut: e.traceOut,
	}
	ctx = pipeline.New(&lexer.LexerProcessor{}, &parser.ParserProcessor{}).Run(ctx)
	return ctx.Root, ctx.Err
}

func (e *Evaluator) tracef(format string, args ...interface{}) {
	if e.trace != nil {
		e.trace.Printf(format, args...)
	}
}

func (e *Evaluator) checkContext() *diagnostics.Error {
	select {
	case <-e.ctx.Done():
		return diagnostics.Errorf(diagnostics.ErrX001, "execution cancelled: %v", e.ctx.Err())
	default:
		return nil
	}
}

func (e *Evaluator) scope() *Scope {
	return e.frame.Scope
}

func (e *Evaluator) moduleName() string {
	if e.frame == nil || e.frame.Module == nil {
		return ""
	}
	return e.frame.Module.Name
}
