package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/funvibe/serpent/internal/ast"
	"github.com/funvibe/serpent/internal/config"
	"github.com/funvibe/serpent/internal/diagnostics"
	"github.com/funvibe/serpent/internal/lexer"
	"github.com/funvibe/serpent/internal/modules"
	"github.com/funvibe/serpent/internal/parser"
	"github.com/funvibe/serpent/internal/prettyprinter"
)

func (a *app) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return fs
}

func validColor(mode string) bool {
	switch mode {
	case config.ColorAuto, config.ColorAlways, config.ColorNever:
		return true
	}
	return false
}

func (a *app) cmdRun(args []string) int {
	fs := a.flagSet("run")
	trace := fs.Bool("trace", false, "log parsing and evaluation to stderr")
	color := fs.String("color", "", "highlight errors: auto, always or never")
	bundle := fs.String("bundle", "", "run the modules of a bundle created by pack")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() > 1 {
		fmt.Fprintln(a.stderr, "Usage: serpent run [flags] [file.py | module]")
		return 2
	}
	if *color != "" && !validColor(*color) {
		return a.errorf("--color must be auto, always or never")
	}

	prog, err := loadProgram(fs.Arg(0), *bundle)
	if err != nil {
		return a.errorf("%s", err)
	}
	if *trace {
		prog.trace = true
	}
	if *color != "" {
		prog.color = *color
	}

	if !prog.run(prog.entry, a.stdout, a.stderr, useColor(prog.color, a.stderr)) {
		return 1
	}
	return 0
}

type testResult struct {
	module string
	ok     bool
	output string
}

// cmdTest runs every module of a directory as its own program. Each run gets
// a separate builtin scope and module cache, so runs share only sources.
func (a *app) cmdTest(args []string) int {
	fs := a.flagSet("test")
	jobs := fs.Int("j", runtime.NumCPU(), "number of programs to run in parallel")
	verbose := fs.Bool("v", false, "print the output of passing programs too")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(a.stderr, "Usage: serpent test [-j N] [-v] <dir>")
		return 2
	}

	prog, err := loadDir(fs.Arg(0))
	if err != nil {
		return a.errorf("%s", err)
	}
	names := make([]string, 0, len(prog.sources))
	for name := range prog.sources {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make([]testResult, len(names))
	var g errgroup.Group
	g.SetLimit(max(*jobs, 1))
	for i, name := range names {
		g.Go(func() error {
			var buf bytes.Buffer
			ok := prog.run(name, &buf, &buf, false)
			results[i] = testResult{module: name, ok: ok, output: buf.String()}
			return nil
		})
	}
	g.Wait()

	failed := 0
	for _, r := range results {
		status := "ok  "
		if !r.ok {
			status = "FAIL"
			failed++
		}
		fmt.Fprintf(a.stdout, "%s %s\n", status, r.module)
		if (!r.ok || *verbose) && r.output != "" {
			for _, line := range strings.Split(strings.TrimSuffix(r.output, "\n"), "\n") {
				fmt.Fprintf(a.stdout, "    %s\n", line)
			}
		}
	}
	fmt.Fprintf(a.stdout, "%d passed, %d failed\n", len(results)-failed, failed)
	if failed > 0 {
		return 1
	}
	return 0
}

func (a *app) readSource(fs *flag.FlagSet) (string, string, bool) {
	if fs.NArg() != 1 {
		fmt.Fprintf(a.stderr, "Usage: serpent %s <file%s>\n", fs.Name(), config.SourceFileExt)
		return "", "", false
	}
	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		a.errorf("%s", err)
		return "", "", false
	}
	return modules.ModuleName(fs.Arg(0)), string(data), true
}

func (a *app) cmdParse(args []string) int {
	fs := a.flagSet("parse")
	asYAML := fs.Bool("yaml", false, "print the tree as YAML")
	trace := fs.Bool("trace", false, "log every production entered")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	name, source, ok := a.readSource(fs)
	if !ok {
		return 1
	}

	root, perr := parser.Parse(name, source, *trace)
	if perr != nil {
		fmt.Fprint(a.stderr, diagnostics.Render(perr, source, useColor(config.ColorAuto, a.stderr)))
		return 1
	}
	if *asYAML {
		out, err := ast.ToYAML(root)
		if err != nil {
			return a.errorf("%s", err)
		}
		a.stdout.Write(out)
		return 0
	}
	fmt.Fprint(a.stdout, ast.Dump(root))
	return 0
}

func (a *app) cmdTokens(args []string) int {
	fs := a.flagSet("tokens")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	_, source, ok := a.readSource(fs)
	if !ok {
		return 1
	}
	for tok := range lexer.New(source).All() {
		fmt.Fprintln(a.stdout, tok)
	}
	return 0
}

// cmdFmt prints a file in canonical layout, or rewrites it in place with -w.
// Comments do not survive parsing, so -w refuses files that have any.
func (a *app) cmdFmt(args []string) int {
	fs := a.flagSet("fmt")
	write := fs.Bool("w", false, "write the result to the file instead of stdout")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	name, source, ok := a.readSource(fs)
	if !ok {
		return 1
	}

	root, perr := parser.Parse(name, source, false)
	if perr != nil {
		fmt.Fprint(a.stderr, diagnostics.Render(perr, source, useColor(config.ColorAuto, a.stderr)))
		return 1
	}
	formatted := prettyprinter.Print(root)
	if !*write {
		fmt.Fprint(a.stdout, formatted)
		return 0
	}

	lx := lexer.New(source)
	lx.Tokens()
	if comments := lx.Comments(); len(comments) > 0 {
		return a.errorf("%s:%s: file has comments, which formatting would drop", fs.Arg(0), comments[0].EditorView().Start)
	}
	if formatted == source {
		return 0
	}
	if err := os.WriteFile(fs.Arg(0), []byte(formatted), 0644); err != nil {
		return a.errorf("%s", err)
	}
	return 0
}

// cmdPack archives a source tree. Without an explicit entry it uses the
// project's, then a module named after the directory.
func (a *app) cmdPack(args []string) int {
	fs := a.flagSet("pack")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() < 2 || fs.NArg() > 3 {
		fmt.Fprintln(a.stderr, "Usage: serpent pack <dir> <bundle.db> [entry]")
		return 2
	}
	dir, out := fs.Arg(0), fs.Arg(1)

	prog, err := loadDir(dir)
	if err != nil {
		return a.errorf("%s", err)
	}
	entry := fs.Arg(2)
	if entry == "" {
		entry = prog.entry
	}
	if entry == "" {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return a.errorf("%s", err)
		}
		entry = filepath.Base(abs)
	}

	b, err := modules.CreateBundle(out, prog.sources, entry)
	if err != nil {
		return a.errorf("%s", err)
	}
	defer b.Close()
	fmt.Fprintf(a.stdout, "packed %d modules into %s (entry %s, id %s)\n", len(prog.sources), out, b.Entry(), b.ID())
	return 0
}
