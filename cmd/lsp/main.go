// Command lsp serves serpent diagnostics, hover, go-to-definition and
// formatting to editors over the Language Server Protocol on stdio.
package main

import (
	"log"
	"os"
)

func main() {
	log.SetFlags(0)          // Disable timestamp in logs
	log.SetOutput(os.Stderr) // Log to stderr, not stdout (stdout is for LSP protocol)

	server := NewLanguageServer(os.Stdout)
	server.Start(os.Stdin)
	os.Exit(server.exitCode())
}
