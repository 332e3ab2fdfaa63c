package main

import (
	"bytes"
	"context"
	"log"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/funvibe/serpent/internal/ast"
	"github.com/funvibe/serpent/internal/config"
	"github.com/funvibe/serpent/internal/diagnostics"
	"github.com/funvibe/serpent/internal/parser"
)

// toolSession serializes MCP tool calls onto one interpreter session.
type toolSession struct {
	mu      sync.Mutex
	sources map[string]string
	buf     bytes.Buffer
	sess    *session
}

func newToolSession(sources map[string]string) *toolSession {
	ts := &toolSession{sources: sources}
	ts.reset()
	return ts
}

func (ts *toolSession) reset() {
	ts.buf.Reset()
	ts.sess = newSession(ts.sources, &ts.buf, &ts.buf, false)
}

func (ts *toolSession) handleExec(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	code, err := request.RequireString("code")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.buf.Reset()
	ok := ts.sess.exec(code)
	out := ts.buf.String()
	if !ok {
		return mcp.NewToolResultError(out), nil
	}
	return mcp.NewToolResultText(out), nil
}

func (ts *toolSession) handleParse(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	code, err := request.RequireString("code")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	root, perr := parser.Parse("input", code, false)
	if perr != nil {
		return mcp.NewToolResultError(diagnostics.Render(perr, code, false)), nil
	}
	return mcp.NewToolResultText(ast.Dump(root)), nil
}

func (ts *toolSession) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.reset()
	return mcp.NewToolResultText("session reset"), nil
}

func (ts *toolSession) server() *server.MCPServer {
	s := server.NewMCPServer(
		"serpent",
		config.Version,
		server.WithToolCapabilities(false),
	)

	s.AddTool(
		mcp.NewTool("serpent_exec",
			mcp.WithDescription("Run statements in a persistent session. Returns what they printed and the value of a trailing expression."),
			mcp.WithString("code",
				mcp.Required(),
				mcp.Description("Source code; statements are separated by newlines"),
			),
		),
		ts.handleExec,
	)

	s.AddTool(
		mcp.NewTool("serpent_parse",
			mcp.WithDescription("Parse source code and return its syntax tree."),
			mcp.WithString("code",
				mcp.Required(),
				mcp.Description("Source code to parse"),
			),
		),
		ts.handleParse,
	)

	s.AddTool(
		mcp.NewTool("serpent_reset",
			mcp.WithDescription("Discard all session state and the module cache."),
		),
		ts.handleReset,
	)
	return s
}

// cmdMCP serves a session over stdio. Modules of dir, or of the enclosing
// project, can be imported.
func (a *app) cmdMCP(args []string) int {
	fs := a.flagSet("mcp")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	sources := map[string]string{}
	if fs.NArg() == 1 {
		prog, err := loadDir(fs.Arg(0))
		if err != nil {
			return a.errorf("%s", err)
		}
		sources = prog.sources
	} else if prog, err := loadProject(".", ""); err == nil {
		sources = prog.sources
	}

	logger := log.New(a.stderr, "", 0)
	logger.Printf("serpent %s: serving %d modules over stdio", config.Version, len(sources))
	if err := server.ServeStdio(newToolSession(sources).server()); err != nil {
		logger.Printf("server error: %v", err)
		return 1
	}
	return 0
}
