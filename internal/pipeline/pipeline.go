package pipeline

import (
	"io"

	"github.com/funvibe/serpent/internal/ast"
	"github.com/funvibe/serpent/internal/diagnostics"
	"github.com/funvibe/serpent/internal/token"
)

// Context carries one module's source through the stages.
type Context struct {
	Module   string
	Source   string
	Trace    bool
	TraceOut io.Writer

	Tokens []token.Token
	Root   *ast.Node
	Err    *diagnostics.Error
}

// Processor is a single stage of the pipeline.
type Processor interface {
	Process(ctx *Context) *Context
}

// Pipeline represents a sequence of processing stages.
type Pipeline struct {
	processors []Processor
}

func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Run executes the pipeline. Stages still run after an error; each one
// checks ctx.Err and skips work it cannot do.
func (p *Pipeline) Run(initialCtx *Context) *Context {
	ctx := initialCtx
	for _, processor := range p.processors {
		ctx = processor.Process(ctx)
	}
	return ctx
}
