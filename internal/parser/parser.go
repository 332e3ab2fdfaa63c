package parser

import (
	"io"
	"log"
	"os"
	"strings"

	"github.com/funvibe/serpent/internal/ast"
	"github.com/funvibe/serpent/internal/diagnostics"
	"github.com/funvibe/serpent/internal/lexer"
	"github.com/funvibe/serpent/internal/pipeline"
	"github.com/funvibe/serpent/internal/token"
)

// TokenStream is satisfied by both *lexer.Lexer and *lexer.Stream.
type TokenStream interface {
	Next() token.Token
	Peek() token.Token
}

type Parser struct {
	stream TokenStream
	module string

	cur token.Token

	// nesting counts open (), [] and {}; newlines inside them are skipped.
	nesting int
	// funcDepth counts enclosing def bodies; return is only legal inside one.
	funcDepth int

	trace *log.Logger
	depth int
}

func New(stream TokenStream, module string) *Parser {
	p := &Parser{stream: stream, module: module}
	p.next()
	return p
}

// SetTrace logs every production entered to w.
func (p *Parser) SetTrace(w io.Writer) {
	if w == nil {
		p.trace = nil
		return
	}
	p.trace = log.New(w, "parse: ", 0)
}

// Parse lexes and parses one module.
func Parse(module, source string, trace bool) (*ast.Node, *diagnostics.Error) {
	ctx := &pipeline.Context{Module: module, Source: source, Trace: trace, TraceOut: os.Stderr}
	ctx = pipeline.New(&lexer.LexerProcessor{}, &ParserProcessor{}).Run(ctx)
	return ctx.Root, ctx.Err
}

// ParseModule parses the whole stream as a module body and computes ranges.
// An empty module is an empty Block.
func (p *Parser) ParseModule() (*ast.Node, *diagnostics.Error) {
	defer p.enter("Module")()

	p.skipNewlines()
	root := ast.New(ast.Block)
	if !p.curIs(token.EOF) {
		block, err := p.parseBlock(0, p.parseStatement)
		if err != nil {
			return nil, err
		}
		root = block
	}
	if !p.curIs(token.EOF) {
		return nil, p.errorf(diagnostics.ErrP003, p.cur, "unexpected %s after end of module", describe(p.cur))
	}
	ast.ComputeRanges(root)
	return root, nil
}

func (p *Parser) next() {
	p.cur = p.stream.Next()
	for p.nesting > 0 && p.cur.Kind == token.NL {
		p.cur = p.stream.Next()
	}
}

func (p *Parser) curIs(kinds ...token.Kind) bool {
	return p.cur.Is(kinds...)
}

func (p *Parser) skipNewlines() {
	for p.curIs(token.NL) {
		p.next()
	}
}

// terminal wraps the current token and advances.
func (p *Parser) terminal() *ast.Node {
	n := ast.NewTerminal(p.cur)
	p.next()
	return n
}

// expect consumes a token of the given kind.
func (p *Parser) expect(kind token.Kind) (*ast.Node, *diagnostics.Error) {
	if !p.curIs(kind) {
		return nil, p.errorf(diagnostics.ErrP001, p.cur, "expected %s, got %s", kind, describe(p.cur))
	}
	return p.terminal(), nil
}

// open consumes an opening delimiter; newlines are insignificant until the
// matching close.
func (p *Parser) open() *ast.Node {
	n := ast.NewTerminal(p.cur)
	p.nesting++
	p.next()
	return n
}

func (p *Parser) close(kind token.Kind) (*ast.Node, *diagnostics.Error) {
	if !p.curIs(kind) {
		return nil, p.fail()
	}
	n := ast.NewTerminal(p.cur)
	p.nesting--
	p.next()
	return n, nil
}

// endStatement requires a simple statement to end at a newline or EOF.
func (p *Parser) endStatement() *diagnostics.Error {
	switch p.cur.Kind {
	case token.NL:
		p.next()
		return nil
	case token.EOF:
		return nil
	}
	return p.errorf(diagnostics.ErrP001, p.cur, "expected end of line, got %s", describe(p.cur))
}

// fail reports the current token as unexpected.
func (p *Parser) fail() *diagnostics.Error {
	return p.errorf(diagnostics.ErrP001, p.cur, "unexpected %s", describe(p.cur))
}

// errorf builds a diagnostic at tok. Whatever the parser expected, running
// into an INVALID token reports the lexical error it carries.
func (p *Parser) errorf(code diagnostics.ErrorCode, tok token.Token, format string, args ...interface{}) *diagnostics.Error {
	if tok.Kind == token.INVALID {
		return diagnostics.NewError(diagnostics.ErrL001, p.module, tok.Range, "%s", tok.Text)
	}
	return diagnostics.NewError(code, p.module, tok.Range, format, args...)
}

// enter logs a production in trace mode; call the result on exit.
func (p *Parser) enter(production string) func() {
	if p.trace == nil {
		return func() {}
	}
	p.trace.Printf("%s%s %s", strings.Repeat("  ", p.depth), production, p.cur)
	p.depth++
	return func() { p.depth-- }
}

func describe(tok token.Token) string {
	switch tok.Kind {
	case token.EOF:
		return "end of input"
	case token.NL:
		return "end of line"
	case token.STR:
		return "string"
	case token.NUM:
		return "number " + tok.Text
	}
	return "'" + tok.Text + "'"
}
