package main

import (
	"log"
	"strings"

	"github.com/funvibe/serpent/internal/lexer"
	"github.com/funvibe/serpent/internal/prettyprinter"
)

// handleFormatting replaces the whole document with its canonical layout.
// Documents with syntax errors or comments are left alone, since the tree
// keeps no comments.
func (s *LanguageServer) handleFormatting(id interface{}, params DocumentFormattingParams) error {
	log.Printf("Handling formatting request for %s", params.TextDocument.URI)

	content, ctx, ok := s.snapshot(params.TextDocument.URI)
	if !ok || ctx.Root == nil {
		return s.respond(id, []TextEdit{})
	}

	lx := lexer.New(content)
	lx.Tokens()
	if len(lx.Comments()) > 0 {
		return s.respond(id, []TextEdit{})
	}

	formatted := prettyprinter.Print(ctx.Root)
	if formatted == content {
		return s.respond(id, []TextEdit{})
	}

	lines := strings.Split(content, "\n")
	edit := TextEdit{
		Range: Range{
			Start: Position{Line: 0, Character: 0},
			End:   Position{Line: len(lines) - 1, Character: len([]rune(lines[len(lines)-1]))},
		},
		NewText: formatted,
	}
	return s.respond(id, []TextEdit{edit})
}
