package parser

import (
	"github.com/funvibe/serpent/internal/lexer"
	"github.com/funvibe/serpent/internal/pipeline"
)

type ParserProcessor struct{}

func (pp *ParserProcessor) Process(ctx *pipeline.Context) *pipeline.Context {
	if ctx.Err != nil {
		return ctx
	}
	p := New(lexer.NewStream(ctx.Tokens), ctx.Module)
	if ctx.Trace {
		p.SetTrace(ctx.TraceOut)
	}
	ctx.Root, ctx.Err = p.ParseModule()
	return ctx
}
