package main

import (
	"github.com/funvibe/serpent/internal/diagnostics"
	"github.com/funvibe/serpent/internal/pipeline"
	"github.com/funvibe/serpent/internal/token"
)

func (s *LanguageServer) publishDiagnostics(uri string, ctx *pipeline.Context) error {
	notification := NotificationMessage{
		Jsonrpc: "2.0",
		Method:  "textDocument/publishDiagnostics",
		Params: PublishDiagnosticsParams{
			URI:         uri,
			Diagnostics: convertDiagnostics(ctx.Err),
		},
	}
	return s.sendNotification(notification)
}

// convertDiagnostics maps the document's error, if any. Both sides use
// zero-based positions, so ranges carry over as they are.
func convertDiagnostics(err *diagnostics.Error) []Diagnostic {
	result := make([]Diagnostic, 0, 1)
	if err == nil {
		return result
	}

	var rng Range
	if err.Range != nil {
		rng = toLSPRange(*err.Range)
	}
	return append(result, Diagnostic{
		Range:    rng,
		Severity: SeverityError,
		Code:     string(err.Code),
		Message:  err.Message,
		Source:   "serpent",
	})
}

func toLSPRange(r token.Range) Range {
	return Range{
		Start: Position{Line: r.Start.Line, Character: r.Start.Column},
		End:   Position{Line: r.End.Line, Character: r.End.Column},
	}
}
