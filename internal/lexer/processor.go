package lexer

import (
	"github.com/funvibe/serpent/internal/pipeline"
)

type LexerProcessor struct{}

// Process lexes ctx.Source into ctx.Tokens. A lexical error stays in the
// stream as a final INVALID token for the parser to report when it gets
// there.
func (lp *LexerProcessor) Process(ctx *pipeline.Context) *pipeline.Context {
	ctx.Tokens = New(ctx.Source).Tokens()
	return ctx
}
