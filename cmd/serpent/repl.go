package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/funvibe/serpent/internal/builtins"
	"github.com/funvibe/serpent/internal/config"
	"github.com/funvibe/serpent/internal/diagnostics"
	"github.com/funvibe/serpent/internal/evaluator"
)

const (
	historyFile = ".serpent_history"
	promptMain  = ">>> "
	promptCont  = "... "
	replModule  = "__repl__"
)

// readChunk reads one unit of input: a single line, or, when the line opens
// a block with a trailing ':', every line up to the next empty one.
func readChunk(prompt func(string) (string, error)) (string, error) {
	line, err := prompt(promptMain)
	if err != nil {
		return "", err
	}
	if !strings.HasSuffix(strings.TrimRight(line, " \t"), ":") {
		return line, nil
	}

	var b strings.Builder
	b.WriteString(line)
	for {
		line, err := prompt(promptCont)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(line) == "" {
			break
		}
		b.WriteByte('\n')
		b.WriteString(line)
	}
	return b.String(), nil
}

// session evaluates chunks against one persistent module.
type session struct {
	eval   *evaluator.Evaluator
	out    io.Writer
	errOut io.Writer
	color  bool
}

func newSession(sources map[string]string, out, errOut io.Writer, color bool) *session {
	return &session{
		eval:   evaluator.New(builtins.NewScope(out), sources),
		out:    out,
		errOut: errOut,
		color:  color,
	}
}

// exec runs one chunk and echoes the value of a trailing expression unless
// it is None.
func (s *session) exec(code string) bool {
	result, err := s.eval.Exec(replModule, code)
	if err != nil {
		source := code
		if mod, ok := s.eval.Module(err.Module); ok && err.Module != replModule {
			source = mod.Source
		}
		fmt.Fprint(s.errOut, diagnostics.Render(err, source, s.color))
		return false
	}
	if result != evaluator.NONE {
		fmt.Fprintln(s.out, evaluator.Repr(result))
	}
	return true
}

func (a *app) cmdRepl(args []string) int {
	fs := a.flagSet("repl")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	// Modules of the enclosing project, or of the given directory, can be
	// imported from the session.
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

	fmt.Fprintf(a.stdout, "serpent %s, Ctrl-D to exit\n", config.Version)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	s := newSession(sources, a.stdout, a.stderr, useColor(config.ColorAuto, a.stderr))
	for {
		code, err := readChunk(ln.Prompt)
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if err != nil {
			fmt.Fprintln(a.stdout)
			return 0
		}
		if strings.TrimSpace(code) == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))
		s.exec(code)
	}
}
