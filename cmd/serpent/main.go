package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/funvibe/serpent/internal/config"
)

const usage = `Usage: serpent <command> [arguments]

Commands:
  run [--trace] [--color=auto|always|never] [--bundle file] [file.py | module]
                 run a program
  test [-j N] <dir>
                 run every module of dir as a separate program
  parse [--yaml] <file.py>
                 print the syntax tree
  tokens <file.py>
                 print the token stream
  fmt [-w] <file.py>
                 print the file in canonical layout, or rewrite it with -w
  pack <dir> <bundle.db> [entry]
                 archive the modules of dir into a bundle
  repl [dir]     start an interactive session
  mcp [dir]      serve an interactive session to MCP clients over stdio
  version        print the version
`

// app holds the streams a command writes to, so commands can be run from tests.
type app struct {
	stdout io.Writer
	stderr io.Writer
}

func main() {
	// Catch panics and show user-friendly error
	defer func() {
		if r := recover(); r != nil {
			if os.Getenv("DEBUG") == "1" {
				panic(r)
			}
			fmt.Fprintf(os.Stderr, "Internal error: %v\n", r)
			fmt.Fprintln(os.Stderr, "This is a bug. Please report it.")
			os.Exit(1)
		}
	}()

	a := &app{stdout: os.Stdout, stderr: os.Stderr}
	os.Exit(a.dispatch(os.Args[1:]))
}

func (a *app) dispatch(args []string) int {
	if len(args) == 0 {
		fmt.Fprint(a.stderr, usage)
		return 2
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "run":
		return a.cmdRun(rest)
	case "test":
		return a.cmdTest(rest)
	case "parse":
		return a.cmdParse(rest)
	case "tokens":
		return a.cmdTokens(rest)
	case "fmt":
		return a.cmdFmt(rest)
	case "pack":
		return a.cmdPack(rest)
	case "repl":
		return a.cmdRepl(rest)
	case "mcp":
		return a.cmdMCP(rest)
	case "version", "-version", "--version":
		fmt.Fprintf(a.stdout, "serpent %s\n", config.Version)
		return 0
	case "help", "-help", "--help", "-h":
		fmt.Fprint(a.stdout, usage)
		return 0
	}

	// "serpent prog.py" is short for "serpent run prog.py".
	if isSourceFile(cmd) {
		return a.cmdRun(args)
	}
	fmt.Fprintf(a.stderr, "unknown command %q\n\n%s", cmd, usage)
	return 2
}

// isSourceFile checks if a file has a recognized source extension
func isSourceFile(path string) bool {
	for _, ext := range config.SourceFileExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

func (a *app) errorf(format string, args ...interface{}) int {
	fmt.Fprintf(a.stderr, "Error: "+format+"\n", args...)
	return 1
}
