package main

import (
	"fmt"
	"log"

	"github.com/funvibe/serpent/internal/ast"
	"github.com/funvibe/serpent/internal/evaluator"
	"github.com/funvibe/serpent/internal/token"
)

func (s *LanguageServer) handleHover(id interface{}, params HoverParams) error {
	log.Printf("Handling hover request for %s at line %d, char %d", params.TextDocument.URI, params.Position.Line, params.Position.Character)

	_, ctx, ok := s.snapshot(params.TextDocument.URI)
	if !ok {
		return s.respond(id, nil)
	}

	pos := token.Position{Line: params.Position.Line, Column: params.Position.Character}
	tok, ok := tokenAt(ctx.Tokens, pos)
	if !ok {
		return s.respond(id, nil)
	}
	text := hoverText(ctx.Root, tok, pos)
	if text == "" {
		return s.respond(id, nil)
	}

	rng := toLSPRange(tok.Range)
	return s.respond(id, Hover{
		Contents: MarkupContent{Kind: "markdown", Value: text},
		Range:    &rng,
	})
}

func hoverText(root *ast.Node, tok token.Token, pos token.Position) string {
	switch tok.Kind {
	case token.ID:
		if b, ok := resolve(root, tok.Text, pos); ok {
			return codeBlock(b.Detail) + "\n\n" + b.Kind
		}
		if b, ok := builtinBinding(tok.Text); ok {
			return codeBlock(b.Detail) + "\n\n" + b.Kind
		}
		return ""
	case token.SELF:
		return codeBlock("self") + "\n\nthe instance a method was called on"
	case token.NUM:
		return codeBlock(evaluator.NUM_OBJ)
	case token.STR:
		return codeBlock(evaluator.STR_OBJ)
	case token.TRUE, token.FALSE:
		return codeBlock(evaluator.BOOL_OBJ)
	case token.NONE:
		return codeBlock(evaluator.NONE_OBJ)
	}
	if token.LookupIdent(tok.Text) == tok.Kind {
		return fmt.Sprintf("keyword `%s`", tok.Text)
	}
	return ""
}

func codeBlock(code string) string {
	return "```python\n" + code + "\n```"
}
