package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/funvibe/serpent/internal/builtins"
	"github.com/funvibe/serpent/internal/config"
	"github.com/funvibe/serpent/internal/diagnostics"
	"github.com/funvibe/serpent/internal/evaluator"
	"github.com/funvibe/serpent/internal/modules"
)

// program is a set of module sources plus the settings a run applies to them.
type program struct {
	sources  map[string]string
	entry    string
	maxDepth int
	timeout  time.Duration
	color    string
	trace    bool
}

func newProgram(sources map[string]string, entry string) *program {
	return &program{
		sources:  sources,
		entry:    entry,
		maxDepth: config.DefaultMaxDepth,
		color:    config.ColorAuto,
	}
}

func (p *program) apply(proj *config.Project) {
	p.maxDepth = proj.MaxDepth
	p.timeout = proj.TimeoutDuration()
	p.color = proj.Color
	p.trace = proj.Trace
}

// run evaluates entry with a fresh builtin scope and module cache. Program
// output goes to out; trace output and a rendered failure go to errOut.
func (p *program) run(entry string, out, errOut io.Writer, color bool) bool {
	ctx := context.Background()
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	opts := []evaluator.Option{evaluator.WithContext(ctx), evaluator.WithMaxDepth(p.maxDepth)}
	if p.trace {
		opts = append(opts, evaluator.WithTrace(errOut))
	}
	e := evaluator.New(builtins.NewScope(out), p.sources, opts...)
	if err := e.Run(entry); err != nil {
		fmt.Fprint(errOut, diagnostics.Render(err, p.sources[err.Module], color))
		return false
	}
	return true
}

// loadProgram resolves the target of "serpent run": a source file, a module
// of the enclosing project, or the project's entry when target is empty.
func loadProgram(target, bundlePath string) (*program, error) {
	switch {
	case bundlePath != "":
		return loadBundle(bundlePath, target)
	case isSourceFile(target):
		return loadFile(target)
	default:
		return loadProject(".", target)
	}
}

func loadBundle(path, entry string) (*program, error) {
	b, err := modules.OpenBundle(path)
	if err != nil {
		return nil, err
	}
	defer b.Close()

	sources, err := b.Sources()
	if err != nil {
		return nil, err
	}
	if entry == "" {
		entry = b.Entry()
	}
	return newProgram(sources, entry), nil
}

// loadFile runs a file together with the other modules of its directory.
// Settings come from the enclosing project, if there is one.
func loadFile(path string) (*program, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	dir := filepath.Dir(path)
	proj, err := findProject(dir)
	if err != nil {
		return nil, err
	}

	exts := config.SourceFileExtensions
	if proj != nil {
		exts = proj.Extensions
	}
	sources, err := modules.LoadDir(dir, exts)
	if err != nil {
		return nil, err
	}
	p := newProgram(sources, modules.ModuleName(path))
	if proj != nil {
		p.apply(proj)
	}
	return p, nil
}

// loadDir loads every module under dir, with project settings if any.
func loadDir(dir string) (*program, error) {
	proj, err := findProject(dir)
	if err != nil {
		return nil, err
	}
	exts := config.SourceFileExtensions
	if proj != nil {
		exts = proj.Extensions
	}
	sources, err := modules.LoadDir(dir, exts)
	if err != nil {
		return nil, err
	}
	p := newProgram(sources, "")
	if proj != nil {
		p.apply(proj)
		p.entry = proj.Entry
	}
	return p, nil
}

func loadProject(dir, entry string) (*program, error) {
	proj, err := findProject(dir)
	if err != nil {
		return nil, err
	}
	if proj == nil {
		return nil, fmt.Errorf("no %s found in %s or its parents; pass a %s file", config.ConfigFileNames[0], dir, config.SourceFileExt)
	}
	sources, err := modules.LoadDirs(proj.SourcePaths(), proj.Extensions)
	if err != nil {
		return nil, err
	}
	if entry == "" {
		entry = proj.Entry
	}
	p := newProgram(sources, entry)
	p.apply(proj)
	return p, nil
}

// findProject returns the project enclosing dir, or nil if there is none.
func findProject(dir string) (*config.Project, error) {
	path, err := config.FindProject(dir)
	if err != nil || path == "" {
		return nil, err
	}
	return config.LoadProject(path)
}

// useColor resolves a color mode against the stream errors are written to.
func useColor(mode string, w io.Writer) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
