package main

import (
	"log"

	"github.com/funvibe/serpent/internal/config"
)

func (s *LanguageServer) handleInitialize(id interface{}, params InitializeParams) error {
	log.Printf("Handling initialize request with ID: %v", id)

	if params.ProcessID != nil {
		log.Printf("Client process: %d", *params.ProcessID)
	}

	return s.respond(id, InitializeResult{
		Capabilities: ServerCapabilities{
			TextDocumentSync:           1, // Full sync
			HoverProvider:              true,
			DefinitionProvider:         true,
			DocumentFormattingProvider: true,
		},
		ServerInfo: &ServerInfo{Name: "serpent-lsp", Version: config.Version},
	})
}

func (s *LanguageServer) handleShutdown(id interface{}) error {
	s.shutdown = true
	return s.respond(id, nil)
}
