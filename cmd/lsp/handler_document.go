package main

import (
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/funvibe/serpent/internal/lexer"
	"github.com/funvibe/serpent/internal/modules"
	"github.com/funvibe/serpent/internal/parser"
	"github.com/funvibe/serpent/internal/pipeline"
)

// DocumentState stores the state of a single open document
type DocumentState struct {
	Content string            // Current file content
	Context *pipeline.Context // Result of the last analysis (tokens, tree, error)
	Mu      sync.RWMutex      // Mutex to protect access to state
}

func (s *LanguageServer) handleDidOpen(params DidOpenTextDocumentParams) error {
	uri := params.TextDocument.URI
	content := params.TextDocument.Text

	docState := &DocumentState{
		Content: content,
		Context: analyzeDocument(content, uri),
	}

	s.mu.Lock()
	s.documents[uri] = docState
	s.mu.Unlock()

	log.Printf("Opened file: %s", uri)
	return s.publishDiagnostics(uri, docState.Context)
}

func (s *LanguageServer) handleDidChange(params DidChangeTextDocumentParams) error {
	// Full sync: the last change carries the whole text
	if len(params.ContentChanges) == 0 {
		return nil
	}
	uri := params.TextDocument.URI
	newContent := params.ContentChanges[len(params.ContentChanges)-1].Text

	docState := s.document(uri)
	if docState == nil {
		return fmt.Errorf("document %s not found", uri)
	}

	ctx := analyzeDocument(newContent, uri)
	docState.Mu.Lock()
	docState.Content = newContent
	docState.Context = ctx
	docState.Mu.Unlock()

	log.Printf("Changed file: %s", uri)
	return s.publishDiagnostics(uri, ctx)
}

func (s *LanguageServer) handleDidClose(params DidCloseTextDocumentParams) error {
	s.mu.Lock()
	delete(s.documents, params.TextDocument.URI)
	s.mu.Unlock()
	log.Printf("Closed file: %s", params.TextDocument.URI)

	// Clear the diagnostics of the closed file
	return s.sendNotification(NotificationMessage{
		Jsonrpc: "2.0",
		Method:  "textDocument/publishDiagnostics",
		Params:  PublishDiagnosticsParams{URI: params.TextDocument.URI, Diagnostics: []Diagnostic{}},
	})
}

// document returns the state of an open document, or nil.
func (s *LanguageServer) document(uri string) *DocumentState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.documents[uri]
}

// snapshot returns the content and analysis of an open document.
func (s *LanguageServer) snapshot(uri string) (string, *pipeline.Context, bool) {
	docState := s.document(uri)
	if docState == nil {
		return "", nil, false
	}
	docState.Mu.RLock()
	defer docState.Mu.RUnlock()
	return docState.Content, docState.Context, true
}

// analyzeDocument lexes and parses content as the module named after uri.
func analyzeDocument(content string, uri string) *pipeline.Context {
	ctx := &pipeline.Context{Module: modules.ModuleName(uriToPath(uri)), Source: content}
	return pipeline.New(&lexer.LexerProcessor{}, &parser.ParserProcessor{}).Run(ctx)
}

func uriToPath(uri string) string {
	return strings.TrimPrefix(uri, "file://")
}
