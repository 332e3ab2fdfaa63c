package main

import (
	"log"

	"github.com/funvibe/serpent/internal/token"
)

func (s *LanguageServer) handleDefinition(id interface{}, params DefinitionParams) error {
	log.Printf("Handling definition request for %s at line %d, char %d", params.TextDocument.URI, params.Position.Line, params.Position.Character)

	_, ctx, ok := s.snapshot(params.TextDocument.URI)
	if !ok {
		return s.respond(id, nil)
	}

	pos := token.Position{Line: params.Position.Line, Column: params.Position.Character}
	tok, ok := tokenAt(ctx.Tokens, pos)
	if !ok || !tok.Is(token.ID) {
		return s.respond(id, nil)
	}

	// Bindings only come from a tree, so documents with syntax errors have none
	b, ok := resolve(ctx.Root, tok.Text, pos)
	if !ok {
		return s.respond(id, nil)
	}
	return s.respond(id, Location{URI: params.TextDocument.URI, Range: toLSPRange(b.Range)})
}
